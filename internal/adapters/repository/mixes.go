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

// MixStore keeps guest mixes in a JSON file.
type MixStore struct {
	mu       sync.Mutex
	file     jsonFile
	maxMixes int
}

// NewMixStore returns a store backed by the file at path.
func NewMixStore(path string, opts ...Option) *MixStore {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return &MixStore{
		file:     jsonFile{path: path, store: "mixes", perm: o.perm},
		maxMixes: o.maxMixes,
	}
}

// Path returns the backing file path.
func (s *MixStore) Path() string { return s.file.Path() }

// List returns all mixes, newest first.
func (s *MixStore) List(ctx context.Context) ([]model.Mix, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	list, err := s.snapshot()
	s.mu.Unlock()
	if err != nil {
		return nil, err
	}
	sortNewestFirst(list)
	return list, nil
}

// Get returns the mix with the given id.
func (s *MixStore) Get(ctx context.Context, id string) (model.Mix, error) {
	if err := ctx.Err(); err != nil {
		return model.Mix{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	list, err := s.snapshot()
	if err != nil {
		return model.Mix{}, err
	}
	if i := indexOfMix(list, id); i >= 0 {
		return list[i], nil
	}
	return model.Mix{}, ErrNotFound
}

// Count returns the number of stored mixes. Unlike List it reports
// ErrCorruptFile.
func (s *MixStore) Count(ctx context.Context) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	list, _, err := s.load()
	return len(list), err
}

// Add stores a new mix. When a cap is configured only the newest mixes are kept.
func (s *MixStore) Add(ctx context.Context, m model.Mix) (model.Mix, error) {
	if err := ctx.Err(); err != nil {
		return model.Mix{}, err
	}
	if strings.TrimSpace(m.ID) == "" {
		return model.Mix{}, ErrInvalidID
	}
	m.Likers = uniqueLikers(m.Likers)
	if m.Parts == nil {
		m.Parts = model.Parts{}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	list, kept, err := s.load()
	if err != nil {
		return model.Mix{}, err
	}
	if indexOfMix(list, m.ID) >= 0 {
		return model.Mix{}, ErrExists
	}
	list = append(list, m)
	if s.maxMixes > 0 && len(list) > s.maxMixes {
		sortNewestFirst(list)
		list = list[:s.maxMixes]
	}
	if err := s.file.write(withKept(list, kept)); err != nil {
		return model.Mix{}, err
	}
	return m, nil
}

// Delete removes the mix with the given id and reports whether it existed.
func (s *MixStore) Delete(ctx context.Context, id string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	list, kept, err := s.load()
	if err != nil {
		return false, err
	}
	n := len(list)
	list = slices.DeleteFunc(list, func(m model.Mix) bool { return m.ID == id })
	if len(list) == n {
		return false, nil
	}
	return true, s.file.write(withKept(list, kept))
}

// Like records userID as a liker of the mix. Liking twice is a no-op.
// found is false when no such mix exists.
func (s *MixStore) Like(ctx context.Context, id, userID string) (liked bool, likes int, found bool, err error) {
	return s.toggle(ctx, id, userID, true)
}

// Unlike removes userID from the likers of the mix.
func (s *MixStore) Unlike(ctx context.Context, id, userID string) (liked bool, likes int, found bool, err error) {
	return s.toggle(ctx, id, userID, false)
}

func (s *MixStore) toggle(ctx context.Context, id, userID string, like bool) (bool, int, bool, error) {
	if err := ctx.Err(); err != nil {
		return false, 0, false, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	list, kept, err := s.load()
	if err != nil {
		return false, 0, false, err
	}
	i := indexOfMix(list, id)
	if i < 0 {
		return false, 0, false, nil
	}

	m := &list[i]
	has := slices.Contains(m.Likers, userID)
	switch {
	case like && !has:
		m.Likers = append(m.Likers, userID)
	case !like && has:
		m.Likers = slices.DeleteFunc(m.Likers, func(u string) bool { return u == userID })
	default:
		return like, m.Likes(), true, nil
	}
	if err := s.file.write(withKept(list, kept)); err != nil {
		return false, 0, true, err
	}
	return like, m.Likes(), true, nil
}

// load returns the decoded mixes and the records that did not decode.
func (s *MixStore) load() ([]model.Mix, []json.RawMessage, error) {
	items, err := s.file.read()
	if err != nil {
		return nil, nil, err
	}
	list, kept := decodeList[model.Mix](items)
	for i := range list {
		list[i].Likers = uniqueLikers(list[i].Likers)
		if list[i].Parts == nil {
			list[i].Parts = model.Parts{}
		}
	}
	return list, kept, nil
}

// snapshot is load for readers: a corrupt file reads as empty. Writers use
// load and fail instead of replacing the file.
func (s *MixStore) snapshot() ([]model.Mix, error) {
	list, _, err := s.load()
	if errors.Is(err, ErrCorruptFile) {
		return []model.Mix{}, nil
	}
	return list, err
}

func sortNewestFirst(list []model.Mix) {
	slices.SortStableFunc(list, func(a, b model.Mix) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
}

func uniqueLikers(in []string) []string {
	out := make([]string, 0, len(in))
	for _, u := range in {
		if !slices.Contains(out, u) {
			out = append(out, u)
		}
	}
	return out
}

func indexOfMix(list []model.Mix, id string) int {
	return slices.IndexFunc(list, func(m model.Mix) bool { return m.ID == id })
}
