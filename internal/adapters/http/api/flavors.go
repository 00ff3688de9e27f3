package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/okian/hookah/internal/adapters/repository"
	"github.com/okian/hookah/internal/domain/model"
)

// FlavorsHandler handles catalog requests.
type FlavorsHandler struct {
	deps FlavorDependencies
}

// NewFlavorsHandler creates a new flavors handler.
func NewFlavorsHandler(deps FlavorDependencies) *FlavorsHandler {
	return &FlavorsHandler{deps: deps}
}

// flavorRequest accepts the field aliases older clients send:
// producer for brand, title for name, strength for strength10.
type flavorRequest struct {
	ID          *string         `json:"id"`
	Brand       *string         `json:"brand"`
	Producer    *string         `json:"producer"`
	Name        *string         `json:"name"`
	Title       *string         `json:"title"`
	Description *string         `json:"description"`
	Tags        *model.Tags     `json:"tags"`
	Strength10  json.RawMessage `json:"strength10"`
	Strength    json.RawMessage `json:"strength"`
}

func (r flavorRequest) brand() *string {
	if r.Brand != nil && *r.Brand != "" {
		return r.Brand
	}
	if r.Producer != nil {
		return r.Producer
	}
	return r.Brand
}

func (r flavorRequest) name() *string {
	if r.Name != nil && *r.Name != "" {
		return r.Name
	}
	if r.Title != nil {
		return r.Title
	}
	return r.Name
}

func (r flavorRequest) strength() *float64 {
	for _, raw := range []json.RawMessage{r.Strength10, r.Strength} {
		s := bytes.TrimSpace(raw)
		if len(s) == 0 || bytes.Equal(s, []byte("null")) {
			continue
		}
		if v, ok := model.ParseNumber(s); ok {
			return &v
		}
	}
	return nil
}

func (r flavorRequest) flavor() model.Flavor {
	return model.Flavor{
		ID:          deref(r.ID),
		Brand:       deref(r.brand()),
		Name:        deref(r.name()),
		Description: deref(r.Description),
		Tags:        derefTags(r.Tags),
		Strength10:  r.strength(),
	}
}

func (r flavorRequest) patch() repository.FlavorPatch {
	return repository.FlavorPatch{
		Brand:       r.brand(),
		Name:        r.name(),
		Description: r.Description,
		Tags:        r.Tags,
		Strength10:  r.strength(),
	}
}

type flavorResponse struct {
	OK     bool         `json:"ok"`
	Flavor model.Flavor `json:"flavor"`
}

// HandleList handles GET /api/flavors and /api/all-flavors with optional ?q=.
func (h *FlavorsHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	const op = "api.list_flavors"
	list, err := h.deps.ListFlavors(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		writeFailure(w, Wrap(op, err))
		return
	}
	if list == nil {
		list = []model.Flavor{}
	}
	writeJSON(w, http.StatusOK, list)
}

// HandleBrands handles GET /api/brands.
func (h *FlavorsHandler) HandleBrands(w http.ResponseWriter, r *http.Request) {
	brands := h.deps.Brands(r.Context())
	if brands == nil {
		brands = []string{}
	}
	writeJSON(w, http.StatusOK, brands)
}

// HandleCreate handles POST /api/flavors and its aliases.
func (h *FlavorsHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	const op = "api.create_flavor"
	var req flavorRequest
	if err := decodeBody(r, &req); err != nil {
		writeFailure(w, Wrap(op, err))
		return
	}
	f, err := h.deps.CreateFlavor(r.Context(), req.flavor())
	if err != nil {
		writeFailure(w, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusCreated, flavorResponse{OK: true, Flavor: f})
}

// HandleUpdate handles PUT /api/flavors/{id}.
func (h *FlavorsHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	const op = "api.update_flavor"
	var req flavorRequest
	if err := decodeBody(r, &req); err != nil {
		writeFailure(w, Wrap(op, err))
		return
	}
	f, err := h.deps.UpdateFlavor(r.Context(), r.PathValue("id"), req.patch())
	if err != nil {
		writeFailure(w, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, flavorResponse{OK: true, Flavor: f})
}

// HandleDelete handles DELETE /api/flavors/{id}. Deleting an unknown id
// succeeds with deleted=false.
func (h *FlavorsHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	const op = "api.delete_flavor"
	err := h.deps.DeleteFlavor(r.Context(), r.PathValue("id"))
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, deletedResponse{OK: true, Deleted: true})
	case errors.Is(err, repository.ErrNotFound):
		writeJSON(w, http.StatusOK, deletedResponse{OK: true, Deleted: false})
	default:
		writeFailure(w, Wrap(op, err))
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func derefTags(t *model.Tags) model.Tags {
	if t == nil {
		return nil
	}
	return *t
}
