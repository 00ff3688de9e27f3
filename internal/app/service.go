// Package service provides the core business service that implements
// the dependencies required by the HTTP API.
package service

import (
	"context"
	"runtime"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/okian/hookah/internal/adapters/catalog"
	"github.com/okian/hookah/internal/adapters/repository"
	"github.com/okian/hookah/internal/domain/attributes"
	"github.com/okian/hookah/internal/domain/model"
	"github.com/okian/hookah/internal/domain/moderation"
	"github.com/okian/hookah/pkg/logger"
	"github.com/okian/hookah/pkg/metrics"
)

// FlavorRepository is the flavor persistence the service needs.
type FlavorRepository interface {
	List(ctx context.Context, query string) ([]model.Flavor, error)
	Create(ctx context.Context, f model.Flavor) (model.Flavor, error)
	Update(ctx context.Context, id string, patch repository.FlavorPatch) (model.Flavor, error)
	Delete(ctx context.Context, id string) error
	Replace(ctx context.Context, flavors []model.Flavor) (int, error)
	Count(ctx context.Context) (int, error)
}

// MixRepository is the mix persistence the service needs.
type MixRepository interface {
	List(ctx context.Context) ([]model.Mix, error)
	Add(ctx context.Context, m model.Mix) (model.Mix, error)
	Delete(ctx context.Context, id string) (bool, error)
	Like(ctx context.Context, id, userID string) (bool, int, bool, error)
	Unlike(ctx context.Context, id, userID string) (bool, int, bool, error)
	Count(ctx context.Context) (int, error)
}

// Reloader refreshes the catalog from the flavor store.
type Reloader func(ctx context.Context) (bool, error)

// Service implements the API dependencies for the mix service.
type Service struct {
	mu sync.RWMutex

	flavors FlavorRepository
	mixes   MixRepository
	catalog *catalog.Catalog
	reload  Reloader

	deriver   *attributes.Deriver
	filter    *moderation.Filter
	normalize bool

	now   func() time.Time
	newID func() string

	started   bool
	startedAt time.Time

	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithDeriver sets the attribute deriver used at submission and preview.
func WithDeriver(d *attributes.Deriver) Option {
	return func(s *Service) {
		if d != nil {
			s.deriver = d
		}
	}
}

// WithBannedWords enables moderation of mix titles, notes and authors.
func WithBannedWords(words []string) Option {
	return func(s *Service) {
		s.filter = moderation.New(words)
	}
}

// WithNormalizeOnSubmit rescales submitted parts to 100 before validation.
func WithNormalizeOnSubmit(on bool) Option {
	return func(s *Service) {
		s.normalize = on
	}
}

// WithReloader sets how the catalog is refreshed after flavor writes.
// By default the catalog is rebuilt from the flavor store.
func WithReloader(r Reloader) Option {
	return func(s *Service) {
		if r != nil {
			s.reload = r
		}
	}
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithIDGenerator overrides mix id generation.
func WithIDGenerator(gen func() string) Option {
	return func(s *Service) {
		if gen != nil {
			s.newID = gen
		}
	}
}

// New constructs a new Service over the given stores and catalog.
func New(flavors FlavorRepository, mixes MixRepository, cat *catalog.Catalog, opts ...Option) *Service {
	s := &Service{
		flavors: flavors,
		mixes:   mixes,
		catalog: cat,
		deriver: attributes.New(),
		filter:  moderation.New(nil),
		now:     time.Now,
		newID:   uuid.NewString,
	}
	if s.catalog == nil {
		s.catalog = catalog.New(nil)
	}
	s.reload = s.rebuildCatalog

	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start loads the catalog and primes the gauges.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	if s.logger == nil {
		s.logger = logger.Named("service")
	}

	s.logger.Info(ctx, "starting mix service...")
	if _, err := s.reload(ctx); err != nil {
		return err
	}
	if n, err := s.mixes.Count(ctx); err == nil {
		metrics.UpdateMixesTotal(n)
	}

	s.started = true
	s.startedAt = s.now()
	s.logger.Info(ctx, "mix service started",
		logger.Int("flavors", s.catalog.Len()),
		logger.Int("bannedWords", s.filter.Len()),
		logger.Bool("normalizeOnSubmit", s.normalize),
	)
	return nil
}

// Stop marks the service stopped.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}
	s.started = false
	s.logger.Info(context.Background(), "mix service stopped")
}

// Catalog returns the catalog the service derives attributes from.
func (s *Service) Catalog() *catalog.Catalog {
	return s.catalog
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx := context.Background()
	stats := map[string]interface{}{
		"started":           s.started,
		"flavors":           s.catalog.Len(),
		"brands":            len(s.catalog.Brands()),
		"bannedWords":       s.filter.Len(),
		"normalizeOnSubmit": s.normalize,
	}

	if s.started {
		stats["uptimeSeconds"] = int(s.now().Sub(s.startedAt).Seconds())
		if n, err := s.mixes.Count(ctx); err == nil {
			stats["mixes"] = n
			metrics.UpdateMixesTotal(n)
		}

		var mem runtime.MemStats
		runtime.ReadMemStats(&mem)
		metrics.UpdateSystemMemoryUsage(mem.Alloc)
		metrics.UpdateSystemGoroutineCount(runtime.NumGoroutine())
		metrics.UpdateFlavorsTotal(s.catalog.Len())
	}

	return stats
}

func (s *Service) rebuildCatalog(ctx context.Context) (bool, error) {
	list, err := s.flavors.List(ctx, "")
	if err != nil {
		return false, err
	}
	n := s.catalog.Set(list)
	metrics.UpdateFlavorsTotal(n)
	return true, nil
}

func (s *Service) log() logger.Logger {
	if s.logger != nil {
		return s.logger
	}
	return logger.Named("service")
}
