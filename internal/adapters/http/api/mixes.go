package api

import (
	"context"
	"net/http"
	"strings"

	"github.com/okian/hookah/internal/domain/model"
	"github.com/okian/hookah/internal/domain/types"
)

// MixesHandler handles guest mix requests.
type MixesHandler struct {
	deps MixDependencies
}

// NewMixesHandler creates a new mixes handler.
func NewMixesHandler(deps MixDependencies) *MixesHandler {
	return &MixesHandler{deps: deps}
}

// mixRequest mirrors the OpenAPI schema for POST /api/guest-mixes.
type mixRequest struct {
	Title    string      `json:"title"`
	Notes    string      `json:"notes"`
	Author   string      `json:"author"`
	UserName string      `json:"userName"`
	Parts    model.Parts `json:"parts"`
}

func (m mixRequest) input() types.MixInput {
	author := m.Author
	if strings.TrimSpace(author) == "" {
		author = m.UserName
	}
	return types.MixInput{Title: m.Title, Notes: m.Notes, Author: author, Parts: m.Parts}
}

type likeRequest struct {
	UserID string `json:"userId"`
}

type likeResponse struct {
	OK    bool `json:"ok"`
	Liked bool `json:"liked"`
	Likes int  `json:"likes"`
}

type deleteRequest struct {
	ID string `json:"id"`
}

// HandleList handles GET /api/guest-mixes.
func (h *MixesHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	const op = "api.list_mixes"
	list, err := h.deps.ListMixes(r.Context())
	if err != nil {
		writeFailure(w, Wrap(op, err))
		return
	}
	if list == nil {
		list = []model.Mix{}
	}
	writeJSON(w, http.StatusOK, list)
}

// HandleCreate handles POST /api/guest-mixes.
func (h *MixesHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	const op = "api.create_mix"
	var req mixRequest
	if err := decodeBody(r, &req); err != nil {
		writeFailure(w, Wrap(op, err))
		return
	}
	mix, err := h.deps.CreateMix(r.Context(), req.input())
	if err != nil {
		writeFailure(w, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusCreated, mix)
}

// HandleDelete handles the three delete forms: DELETE /api/guest-mixes/{id},
// DELETE /api/guest-mixes?id= and POST /api/delete-guest-mix {"id"}.
func (h *MixesHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	const op = "api.delete_mix"
	id := r.PathValue("id")
	if id == "" {
		id = r.URL.Query().Get("id")
	}
	if id == "" && r.Method == http.MethodPost {
		var req deleteRequest
		if err := decodeBody(r, &req); err != nil {
			writeFailure(w, Wrap(op, err))
			return
		}
		id = req.ID
	}
	id = strings.TrimSpace(id)
	if id == "" {
		writeJSON(w, http.StatusOK, deletedResponse{OK: true, Deleted: false})
		return
	}

	deleted, err := h.deps.DeleteMix(r.Context(), id)
	if err != nil {
		writeFailure(w, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, deletedResponse{OK: true, Deleted: deleted})
}

// HandleLike handles POST /api/guest-mixes/{id}/like.
func (h *MixesHandler) HandleLike(w http.ResponseWriter, r *http.Request) {
	h.handleLike(w, r, "api.like_mix", h.deps.LikeMix)
}

// HandleUnlike handles DELETE /api/guest-mixes/{id}/like.
func (h *MixesHandler) HandleUnlike(w http.ResponseWriter, r *http.Request) {
	h.handleLike(w, r, "api.unlike_mix", h.deps.UnlikeMix)
}

func (h *MixesHandler) handleLike(w http.ResponseWriter, r *http.Request, op string, fn func(ctx context.Context, id, userID string) (types.LikeResult, error)) {
	var req likeRequest
	if err := decodeBody(r, &req); err != nil {
		writeFailure(w, Wrap(op, err))
		return
	}
	res, err := fn(r.Context(), strings.TrimSpace(r.PathValue("id")), req.UserID)
	if err != nil {
		writeFailure(w, Wrap(op, err))
		return
	}
	// An unknown mix is reported as not liked rather than 404.
	writeJSON(w, http.StatusOK, likeResponse{OK: true, Liked: res.Liked && res.Found, Likes: res.Likes})
}
