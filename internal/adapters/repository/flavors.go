package repository

import (
	"context"
	"encoding/json"
	"errors"
	"slices"
	"strings"
	"sync"

	"github.com/okian/hookah/internal/domain/model"
)

// FlavorPatch holds the fields of a flavor update. Nil fields are left alone.
type FlavorPatch struct {
	Brand       *string
	Name        *string
	Description *string
	Tags        *model.Tags
	Strength10  *float64
}

// FlavorStore keeps the flavor catalog in a JSON file.
type FlavorStore struct {
	mu   sync.Mutex
	file jsonFile
}

// NewFlavorStore returns a store backed by the file at path.
// The file and its directory are created on first access.
func NewFlavorStore(path string, opts ...Option) *FlavorStore {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return &FlavorStore{file: jsonFile{path: path, store: "flavors", perm: o.perm}}
}

// Path returns the backing file path.
func (s *FlavorStore) Path() string { return s.file.Path() }

// List returns the flavors whose "brand name tags" text contains query,
// case-insensitively. An empty query returns everything.
func (s *FlavorStore) List(ctx context.Context, query string) ([]model.Flavor, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	list, err := s.snapshot()
	s.mu.Unlock()
	if err != nil {
		return nil, err
	}

	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return list, nil
	}
	out := make([]model.Flavor, 0, len(list))
	for _, f := range list {
		if strings.Contains(searchText(f), q) {
			out = append(out, f)
		}
	}
	return out, nil
}

// Get returns the flavor with the given id.
func (s *FlavorStore) Get(ctx context.Context, id string) (model.Flavor, error) {
	if err := ctx.Err(); err != nil {
		return model.Flavor{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	list, err := s.snapshot()
	if err != nil {
		return model.Flavor{}, err
	}
	if i := indexOfFlavor(list, strings.TrimSpace(id)); i >= 0 {
		return list[i], nil
	}
	return model.Flavor{}, ErrNotFound
}

// Count returns the number of stored flavors. Unlike List it reports
// ErrCorruptFile, so a broken file is never mistaken for an empty one.
func (s *FlavorStore) Count(ctx context.Context) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	list, _, err := s.load()
	return len(list), err
}

// Create validates and appends a flavor. The id defaults to MakeFlavorID.
func (s *FlavorStore) Create(ctx context.Context, f model.Flavor) (model.Flavor, error) {
	if err := ctx.Err(); err != nil {
		return model.Flavor{}, err
	}
	rec, err := sanitize(f)
	if err != nil {
		return model.Flavor{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	list, kept, err := s.load()
	if err != nil {
		return model.Flavor{}, err
	}
	if indexOfFlavor(list, rec.ID) >= 0 {
		return model.Flavor{}, ErrExists
	}
	list = append(list, rec)
	if err := s.file.write(withKept(list, kept)); err != nil {
		return model.Flavor{}, err
	}
	return rec, nil
}

// Update applies patch to the flavor with the given id. The id never changes.
func (s *FlavorStore) Update(ctx context.Context, id string, patch FlavorPatch) (model.Flavor, error) {
	if err := ctx.Err(); err != nil {
		return model.Flavor{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	list, kept, err := s.load()
	if err != nil {
		return model.Flavor{}, err
	}
	i := indexOfFlavor(list, strings.TrimSpace(id))
	if i < 0 {
		return model.Flavor{}, ErrNotFound
	}

	f := list[i]
	if patch.Brand != nil {
		f.Brand = *patch.Brand
	}
	if patch.Name != nil {
		f.Name = *patch.Name
	}
	if patch.Description != nil {
		f.Description = *patch.Description
	}
	if patch.Tags != nil {
		f.Tags = *patch.Tags
	}
	if patch.Strength10 != nil {
		f.Strength10 = patch.Strength10
	}
	rec, err := sanitize(f)
	if err != nil {
		return model.Flavor{}, err
	}
	list[i] = rec
	if err := s.file.write(withKept(list, kept)); err != nil {
		return model.Flavor{}, err
	}
	return rec, nil
}

// Delete removes the flavor with the given id.
func (s *FlavorStore) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	key := strings.TrimSpace(id)
	if key == "" {
		return ErrInvalidID
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	list, kept, err := s.load()
	if err != nil {
		return err
	}
	n := len(list)
	list = slices.DeleteFunc(list, func(f model.Flavor) bool { return f.ID == key })
	if len(list) == n {
		return ErrNotFound
	}
	return s.file.write(withKept(list, kept))
}

// Replace overwrites the whole catalog. Entries failing validation or
// repeating an earlier id are skipped; the number written is returned.
func (s *FlavorStore) Replace(ctx context.Context, flavors []model.Flavor) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	out := make([]model.Flavor, 0, len(flavors))
	seen := make(map[string]struct{}, len(flavors))
	for _, f := range flavors {
		rec, err := sanitize(f)
		if err != nil {
			continue
		}
		if _, dup := seen[rec.ID]; dup {
			continue
		}
		seen[rec.ID] = struct{}{}
		out = append(out, rec)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.file.write(out); err != nil {
		return 0, err
	}
	return len(out), nil
}

// load returns the decoded flavors and the records that did not decode.
func (s *FlavorStore) load() ([]model.Flavor, []json.RawMessage, error) {
	items, err := s.file.read()
	if err != nil {
		return nil, nil, err
	}
	list, kept := decodeList[model.Flavor](items)
	return list, kept, nil
}

// snapshot is load for readers: a corrupt file reads as empty.
func (s *FlavorStore) snapshot() ([]model.Flavor, error) {
	list, _, err := s.load()
	if errors.Is(err, ErrCorruptFile) {
		return []model.Flavor{}, nil
	}
	return list, err
}

func sanitize(f model.Flavor) (model.Flavor, error) {
	rec := model.Flavor{
		ID:          strings.TrimSpace(f.ID),
		Brand:       strings.TrimSpace(f.Brand),
		Name:        strings.TrimSpace(f.Name),
		Description: strings.TrimSpace(f.Description),
		Tags:        normalizeTags(f.Tags),
	}
	if rec.Brand == "" || rec.Name == "" {
		return model.Flavor{}, ErrInvalidFlavor
	}
	if rec.ID == "" {
		rec.ID = model.MakeFlavorID(rec.Brand, rec.Name)
	}
	if f.Strength10 != nil {
		if v, ok := model.Finite(*f.Strength10); ok {
			rec.Strength10 = &v
		}
	}
	return rec, nil
}

// normalizeTags lower-cases, trims and de-duplicates tags, keeping order.
func normalizeTags(tags model.Tags) model.Tags {
	out := make(model.Tags, 0, len(tags))
	for _, t := range tags {
		t = strings.ToLower(strings.TrimSpace(t))
		if t == "" || slices.Contains(out, t) {
			continue
		}
		out = append(out, t)
	}
	return out
}

func searchText(f model.Flavor) string {
	return strings.ToLower(f.Brand + " " + f.Name + " " + strings.Join(f.Tags, " "))
}

func indexOfFlavor(list []model.Flavor, id string) int {
	return slices.IndexFunc(list, func(f model.Flavor) bool { return f.ID == id })
}
