package attributes

import (
	"math"
	"strings"

	"github.com/okian/hookah/internal/domain/composition"
	"github.com/okian/hookah/internal/domain/model"
)

// Strength bands used by the UI to color a strength badge.
const (
	BandUnknown = "unknown"
	BandLight   = "light"
	BandMedium  = "medium"
	BandStrong  = "strong"

	lightBelow  = 4
	mediumBelow = 7
)

// Strength10 returns a flavor's strength on the 1..10 scale: its explicit
// rating clamped to [1, 10], else its brand default, else the fallback.
func (d *Deriver) Strength10(f *model.Flavor) float64 {
	if f == nil {
		return d.fallback
	}
	if f.Strength10 != nil {
		if v, ok := model.Finite(*f.Strength10); ok {
			return clampStrength(v)
		}
	}
	if v, ok := d.brandStrength[strings.TrimSpace(f.Brand)]; ok {
		return v
	}
	return d.fallback
}

// Strength returns the percent-weighted average strength of the mix,
// rounded to one decimal. The weights are normalized by the mix's full
// percent sum; parts with no share or an unknown flavor add nothing.
// It reports false when there is nothing to average.
func (d *Deriver) Strength(parts []model.MixPart, catalog Lookup) (float64, bool) {
	if len(parts) == 0 || catalog == nil {
		return 0, false
	}
	total := composition.PercentSum(parts)
	if total <= 0 {
		return 0, false
	}

	var weighted float64
	for _, p := range parts {
		percent := composition.SafePercent(p.Percent)
		if percent <= 0 {
			continue
		}
		fl, ok := catalog.Lookup(p.FlavorID)
		if !ok {
			continue
		}
		weighted += d.Strength10(&fl) * (percent / total)
	}
	if weighted == 0 {
		return 0, false
	}
	return math.Round(weighted*10) / 10, true
}

// DeriveStrength is Strength over a flavor slice.
func (d *Deriver) DeriveStrength(parts []model.MixPart, flavors []model.Flavor) (float64, bool) {
	if len(flavors) == 0 {
		return 0, false
	}
	return d.Strength(parts, NewIndex(flavors))
}

// Band classifies a strength value for display.
func Band(v *float64) string {
	switch {
	case v == nil:
		return BandUnknown
	case *v < lightBelow:
		return BandLight
	case *v < mediumBelow:
		return BandMedium
	default:
		return BandStrong
	}
}

func clampStrength(v float64) float64 {
	return math.Max(MinStrength, math.Min(MaxStrength, v))
}
