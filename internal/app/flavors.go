package service

import (
	"context"
	"fmt"

	"github.com/okian/hookah/internal/adapters/catalog"
	"github.com/okian/hookah/internal/adapters/repository"
	"github.com/okian/hookah/internal/domain/model"
	"github.com/okian/hookah/pkg/logger"
	"github.com/okian/hookah/pkg/metrics"
)

// ListFlavors searches the flavor store; see repository.FlavorStore.List.
func (s *Service) ListFlavors(ctx context.Context, query string) ([]model.Flavor, error) {
	return s.flavors.List(ctx, query)
}

// Brands returns the distinct catalog brands.
func (s *Service) Brands(_ context.Context) []string {
	return s.catalog.Brands()
}

// CreateFlavor adds a flavor and refreshes the catalog.
func (s *Service) CreateFlavor(ctx context.Context, f model.Flavor) (model.Flavor, error) {
	rec, err := s.flavors.Create(ctx, f)
	if err != nil {
		return model.Flavor{}, fmt.Errorf("create flavor: %w", err)
	}
	metrics.RecordFlavorWrite("create")
	s.refresh(ctx)
	return rec, nil
}

// UpdateFlavor patches a flavor and refreshes the catalog.
func (s *Service) UpdateFlavor(ctx context.Context, id string, patch repository.FlavorPatch) (model.Flavor, error) {
	rec, err := s.flavors.Update(ctx, id, patch)
	if err != nil {
		return model.Flavor{}, fmt.Errorf("update flavor %q: %w", id, err)
	}
	metrics.RecordFlavorWrite("update")
	s.refresh(ctx)
	return rec, nil
}

// DeleteFlavor removes a flavor and refreshes the catalog.
func (s *Service) DeleteFlavor(ctx context.Context, id string) error {
	if err := s.flavors.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete flavor %q: %w", id, err)
	}
	metrics.RecordFlavorWrite("delete")
	s.refresh(ctx)
	return nil
}

// ImportFlavors writes flavors into the store. With replace the store is
// overwritten; otherwise flavors whose id already exists are skipped.
// It returns the number of flavors added.
func (s *Service) ImportFlavors(ctx context.Context, flavors []model.Flavor, replace bool) (int, error) {
	if replace {
		n, err := s.flavors.Replace(ctx, flavors)
		if err != nil {
			return 0, fmt.Errorf("replace flavors: %w", err)
		}
		metrics.RecordFlavorWrite("replace")
		s.refresh(ctx)
		return n, nil
	}

	added := 0
	for _, f := range flavors {
		if _, err := s.flavors.Create(ctx, f); err != nil {
			s.log().Debug(ctx, "skip flavor", logger.String("id", f.ID), logger.Error(err))
			continue
		}
		added++
	}
	if added > 0 {
		metrics.RecordFlavorWrite("import")
		s.refresh(ctx)
	}
	return added, nil
}

// SeedIfEmpty imports the seed file when the flavor store holds nothing.
// An empty path is a no-op.
func (s *Service) SeedIfEmpty(ctx context.Context, path string) (int, error) {
	if path == "" {
		return 0, nil
	}
	n, err := s.flavors.Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrSeedCatalog, err)
	}
	if n > 0 {
		return 0, nil
	}
	flavors, err := catalog.LoadSeed(path)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrSeedCatalog, err)
	}
	added, err := s.ImportFlavors(ctx, flavors, true)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrSeedCatalog, err)
	}
	s.log().Info(ctx, "catalog seeded", logger.String("file", path), logger.Int("flavors", added))
	return added, nil
}

// refresh reloads the catalog after a write. The write already succeeded,
// so a failed reload is only logged; the watcher retries on its next tick.
func (s *Service) refresh(ctx context.Context) {
	if _, err := s.reload(ctx); err != nil {
		s.log().Warn(ctx, "catalog refresh failed", logger.Error(err))
	}
}
