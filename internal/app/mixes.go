package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/okian/hookah/internal/domain/composition"
	"github.com/okian/hookah/internal/domain/model"
	"github.com/okian/hookah/internal/domain/types"
	"github.com/okian/hookah/pkg/logger"
	"github.com/okian/hookah/pkg/metrics"
)

// DefaultAuthor names mixes submitted without an author.
const DefaultAuthor = "гость"

// CreateMix validates, moderates, derives attributes for and stores a mix.
func (s *Service) CreateMix(ctx context.Context, in types.MixInput) (model.Mix, error) {
	title := strings.TrimSpace(in.Title)
	notes := strings.TrimSpace(in.Notes)
	author := strings.TrimSpace(in.Author)
	if author == "" {
		author = DefaultAuthor
	}

	parts := make(model.Parts, 0, len(in.Parts))
	for _, p := range in.Parts {
		parts = append(parts, model.MixPart{FlavorID: strings.TrimSpace(p.FlavorID), Percent: composition.SafePercent(p.Percent)})
	}
	parts = composition.Dedupe(parts)
	if s.normalize {
		parts = composition.Normalize(parts)
	}

	if !composition.IsValid(parts, title) {
		metrics.RecordMixRejected("invalid")
		return model.Mix{}, fmt.Errorf("%w: sum %g", types.ErrInvalidMix, composition.PercentSum(parts))
	}
	if word, found := s.filter.Check(title, notes, author); found {
		metrics.RecordMixRejected("moderation")
		s.log().Info(ctx, "mix rejected", logger.String("word", word))
		return model.Mix{}, fmt.Errorf("%w: contains %q", types.ErrRejected, word)
	}

	attrs := s.deriver.Derive(parts, s.catalog)
	mix := model.Mix{
		ID:         s.newID(),
		Title:      title,
		Parts:      parts,
		Notes:      notes,
		Author:     author,
		CreatedAt:  s.now().UTC(),
		Taste:      attrs.Taste,
		Strength10: attrs.Strength10,
		Likers:     []string{},
	}
	stored, err := s.mixes.Add(ctx, mix)
	if err != nil {
		return model.Mix{}, fmt.Errorf("store mix: %w", err)
	}

	metrics.RecordMixCreated(stored.Strength10, stored.Taste)
	if n, err := s.mixes.Count(ctx); err == nil {
		metrics.UpdateMixesTotal(n)
	}
	s.log().Debug(ctx, "mix created",
		logger.String("id", stored.ID),
		logger.Int("parts", len(stored.Parts)),
	)
	return stored, nil
}

// ListMixes returns stored mixes, newest first.
func (s *Service) ListMixes(ctx context.Context) ([]model.Mix, error) {
	return s.mixes.List(ctx)
}

// DeleteMix removes a mix and reports whether it existed.
func (s *Service) DeleteMix(ctx context.Context, id string) (bool, error) {
	ok, err := s.mixes.Delete(ctx, strings.TrimSpace(id))
	if err != nil {
		return false, fmt.Errorf("delete mix %q: %w", id, err)
	}
	if ok {
		metrics.RecordMixDeleted()
		if n, err := s.mixes.Count(ctx); err == nil {
			metrics.UpdateMixesTotal(n)
		}
	}
	return ok, nil
}

// LikeMix adds userID to the likers of a mix.
func (s *Service) LikeMix(ctx context.Context, id, userID string) (types.LikeResult, error) {
	liked, likes, found, err := s.mixes.Like(ctx, id, likerID(userID))
	if err != nil {
		return types.LikeResult{}, fmt.Errorf("like mix %q: %w", id, err)
	}
	if found {
		metrics.RecordLike("like")
	}
	return types.LikeResult{Liked: liked, Likes: likes, Found: found}, nil
}

// UnlikeMix removes userID from the likers of a mix.
func (s *Service) UnlikeMix(ctx context.Context, id, userID string) (types.LikeResult, error) {
	liked, likes, found, err := s.mixes.Unlike(ctx, id, likerID(userID))
	if err != nil {
		return types.LikeResult{}, fmt.Errorf("unlike mix %q: %w", id, err)
	}
	if found {
		metrics.RecordLike("unlike")
	}
	return types.LikeResult{Liked: liked, Likes: likes, Found: found}, nil
}

func likerID(userID string) string {
	if u := strings.TrimSpace(userID); u != "" {
		return u
	}
	return "anon"
}
