// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/okian/hookah/internal/adapters/repository"
	"github.com/okian/hookah/internal/domain/model"
	"github.com/okian/hookah/internal/domain/types"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	FlavorDependencies
	MixDependencies
	BuilderDependencies
}

// FlavorDependencies covers catalog reads and admin edits.
type FlavorDependencies interface {
	ListFlavors(ctx context.Context, query string) ([]model.Flavor, error)
	Brands(ctx context.Context) []string
	CreateFlavor(ctx context.Context, f model.Flavor) (model.Flavor, error)
	UpdateFlavor(ctx context.Context, id string, patch repository.FlavorPatch) (model.Flavor, error)
	DeleteFlavor(ctx context.Context, id string) error
}

// MixDependencies covers guest mixes.
type MixDependencies interface {
	ListMixes(ctx context.Context) ([]model.Mix, error)
	CreateMix(ctx context.Context, in types.MixInput) (model.Mix, error)
	DeleteMix(ctx context.Context, id string) (bool, error)
	LikeMix(ctx context.Context, id, userID string) (types.LikeResult, error)
	UnlikeMix(ctx context.Context, id, userID string) (types.LikeResult, error)
}

// BuilderDependencies covers the stateless mix builder.
type BuilderDependencies interface {
	Preview(d model.Draft) types.Preview
	AddPart(d model.Draft, flavorID string) types.BuilderResult
	UpdatePercent(d model.Draft, flavorID string, percent float64) types.BuilderResult
	RemovePart(d model.Draft, flavorID string) types.BuilderResult
}

// Option configures the Server.
type Option func(*Server)

// WithAdminKey requires key for admin routes. Empty allows everyone.
func WithAdminKey(key string) Option {
	return func(s *Server) {
		s.adminKey = key
	}
}

// WithBodyLimit caps request body size in bytes.
func WithBodyLimit(n int64) Option {
	return func(s *Server) {
		if n > 0 {
			s.bodyLimit = n
		}
	}
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler  *HealthHandler
	statsHandler   *StatsHandler
	flavorsHandler *FlavorsHandler
	mixesHandler   *MixesHandler
	builderHandler *BuilderHandler

	adminKey  string
	bodyLimit int64
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider, opts ...Option) *Server {
	s := &Server{
		healthHandler:  NewHealthHandler(),
		statsHandler:   NewStatsHandler(statsProvider),
		flavorsHandler: NewFlavorsHandler(deps),
		mixesHandler:   NewMixesHandler(deps),
		builderHandler: NewBuilderHandler(deps),
		bodyLimit:      2 << 20,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(mux *http.ServeMux) {
	admin := func(next http.HandlerFunc) http.HandlerFunc { return AdminMiddleware(next, s.adminKey) }
	route := func(pattern, endpoint string, h http.HandlerFunc) {
		mux.HandleFunc(pattern, MetricsMiddleware(BodyLimitMiddleware(h, s.bodyLimit), endpoint))
	}

	route("GET /api/health", "health", s.healthHandler.HandleHealth)
	route("GET /metrics", "metrics", s.healthHandler.HandleMetrics)
	route("GET /stats", "stats", s.statsHandler.HandleStats)

	f := s.flavorsHandler
	route("GET /api/flavors", "flavors", f.HandleList)
	route("GET /api/all-flavors", "flavors", f.HandleList)
	route("GET /api/brands", "brands", f.HandleBrands)
	route("POST /api/flavors", "flavors_create", admin(f.HandleCreate))
	route("POST /api/add-flavor", "flavors_create", admin(f.HandleCreate))
	route("POST /api/flavors/add", "flavors_create", admin(f.HandleCreate))
	route("PUT /api/flavors/{id}", "flavors_update", admin(f.HandleUpdate))
	route("DELETE /api/flavors/{id}", "flavors_delete", admin(f.HandleDelete))

	m := s.mixesHandler
	route("GET /api/guest-mixes", "mixes", m.HandleList)
	route("POST /api/guest-mixes", "mixes_create", m.HandleCreate)
	route("DELETE /api/guest-mixes/{id}", "mixes_delete", admin(m.HandleDelete))
	route("DELETE /api/guest-mixes", "mixes_delete", admin(m.HandleDelete))
	route("POST /api/delete-guest-mix", "mixes_delete", admin(m.HandleDelete))
	route("POST /api/guest-mixes/{id}/like", "mixes_like", m.HandleLike)
	route("DELETE /api/guest-mixes/{id}/like", "mixes_like", m.HandleUnlike)

	b := s.builderHandler
	route("POST /api/mixes/preview", "builder_preview", b.HandlePreview)
	route("POST /api/mixes/parts/add", "builder_parts", b.HandleAdd)
	route("POST /api/mixes/parts/update", "builder_parts", b.HandleUpdate)
	route("POST /api/mixes/parts/remove", "builder_parts", b.HandleRemove)
}

type okResponse struct {
	OK bool `json:"ok"`
}

type deletedResponse struct {
	OK      bool `json:"ok"`
	Deleted bool `json:"deleted"`
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// writeFailure translates err into a status and code by its kind.
func writeFailure(w http.ResponseWriter, err error) {
	status, code := classify(err)
	writeError(w, status, code, err)
}

func classify(err error) (int, string) {
	var maxBytes *http.MaxBytesError
	switch {
	case errors.As(err, &maxBytes):
		return http.StatusRequestEntityTooLarge, "too_large"
	case errors.Is(err, ErrBadRequest),
		errors.Is(err, repository.ErrInvalidFlavor),
		errors.Is(err, repository.ErrInvalidID):
		return http.StatusBadRequest, "bad_request"
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden, "forbidden"
	case errors.Is(err, repository.ErrNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, repository.ErrExists):
		return http.StatusConflict, "conflict"
	case errors.Is(err, types.ErrInvalidMix):
		return http.StatusUnprocessableEntity, "invalid_mix"
	case errors.Is(err, types.ErrRejected):
		return http.StatusUnprocessableEntity, "rejected"
	default:
		return http.StatusInternalServerError, "internal_error"
	}
}

// decodeBody decodes a JSON body into v. An empty body leaves v untouched.
func decodeBody(r *http.Request, v any) error {
	err := json.NewDecoder(r.Body).Decode(v)
	var maxBytes *http.MaxBytesError
	switch {
	case err == nil:
		return nil
	case errors.Is(err, io.EOF):
		return nil
	case errors.As(err, &maxBytes):
		return err
	default:
		return WrapKind("decode body", ErrBadRequest, err)
	}
}
