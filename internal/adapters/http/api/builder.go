package api

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/okian/hookah/internal/domain/composition"
	"github.com/okian/hookah/internal/domain/model"
)

// BuilderHandler serves the stateless mix builder: the client sends the
// draft with every call and gets the edited parts back with a preview.
type BuilderHandler struct {
	deps BuilderDependencies
}

// NewBuilderHandler creates a new builder handler.
func NewBuilderHandler(deps BuilderDependencies) *BuilderHandler {
	return &BuilderHandler{deps: deps}
}

type builderRequest struct {
	model.Draft
	FlavorID string          `json:"flavorId"`
	Percent  json.RawMessage `json:"percent"`
}

// percent coerces the requested share; anything unparsable counts as 0.
func (b builderRequest) percent() float64 {
	v, _ := model.ParseNumber(b.Percent)
	return v
}

func (h *BuilderHandler) decode(w http.ResponseWriter, r *http.Request, op string) (builderRequest, bool) {
	var req builderRequest
	if err := decodeBody(r, &req); err != nil {
		writeFailure(w, Wrap(op, err))
		return req, false
	}
	req.Parts = composition.Dedupe(req.Parts)
	req.FlavorID = strings.TrimSpace(req.FlavorID)
	return req, true
}

// HandlePreview handles POST /api/mixes/preview.
func (h *BuilderHandler) HandlePreview(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decode(w, r, "api.preview")
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, h.deps.Preview(req.Draft))
}

// HandleAdd handles POST /api/mixes/parts/add.
func (h *BuilderHandler) HandleAdd(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decode(w, r, "api.add_part")
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, h.deps.AddPart(req.Draft, req.FlavorID))
}

// HandleUpdate handles POST /api/mixes/parts/update.
func (h *BuilderHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decode(w, r, "api.update_part")
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, h.deps.UpdatePercent(req.Draft, req.FlavorID, req.percent()))
}

// HandleRemove handles POST /api/mixes/parts/remove.
func (h *BuilderHandler) HandleRemove(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decode(w, r, "api.remove_part")
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, h.deps.RemovePart(req.Draft, req.FlavorID))
}
