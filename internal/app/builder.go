package service

import (
	"github.com/okian/hookah/internal/domain/attributes"
	"github.com/okian/hookah/internal/domain/composition"
	"github.com/okian/hookah/internal/domain/model"
	"github.com/okian/hookah/internal/domain/types"
)

// Preview summarizes a draft against the current catalog.
func (s *Service) Preview(d model.Draft) types.Preview {
	sum := composition.PercentSum(d.Parts)
	attrs := s.deriver.Derive(d.Parts, s.catalog)
	return types.Preview{
		Sum:        sum,
		Remaining:  max(0, composition.Total-sum),
		Valid:      composition.IsValid(d.Parts, d.Title),
		Strength10: attrs.Strength10,
		Band:       attributes.Band(attrs.Strength10),
		Taste:      attrs.Taste,
	}
}

// AddPart adds flavorID to the draft with the default share.
func (s *Service) AddPart(d model.Draft, flavorID string) types.BuilderResult {
	d.Parts = composition.AddPart(d.Parts, flavorID)
	return s.result(d)
}

// UpdatePercent sets the share of flavorID, clamped so the total stays within 100.
func (s *Service) UpdatePercent(d model.Draft, flavorID string, percent float64) types.BuilderResult {
	d.Parts = composition.UpdatePercent(d.Parts, flavorID, percent)
	return s.result(d)
}

// RemovePart drops flavorID from the draft.
func (s *Service) RemovePart(d model.Draft, flavorID string) types.BuilderResult {
	d.Parts = composition.RemovePart(d.Parts, flavorID)
	return s.result(d)
}

func (s *Service) result(d model.Draft) types.BuilderResult {
	if d.Parts == nil {
		d.Parts = model.Parts{}
	}
	return types.BuilderResult{Parts: d.Parts, Preview: s.Preview(d)}
}
