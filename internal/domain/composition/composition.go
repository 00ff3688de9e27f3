// Package composition enforces the percentage rules of a flavor mix.
//
// Every function here is total: malformed percents are coerced to 0 and
// clamped to [0, 100], missing parts are ignored, and nothing panics or
// returns an error. IsValid is the only pass/fail gate.
package composition

import (
	"math"
	"strings"
	"unicode/utf8"

	"github.com/okian/hookah/internal/domain/model"
)

// Composition rules.
const (
	// Total is the exact sum a mix must reach before it can be saved.
	Total = 100
	// DefaultShare is the most a newly added part takes from the remaining headroom.
	DefaultShare = 30
	// MinTitleLen is the shortest accepted title, in characters, after trimming.
	MinTitleLen = 3
)

// SafePercent coerces v into [0, 100]. NaN and infinities become 0.
func SafePercent(v float64) float64 {
	return math.Max(0, math.Min(Total, model.FiniteOr(v, 0)))
}

// PercentSum returns the sum of the parts' safe percents.
func PercentSum(parts []model.MixPart) float64 {
	var sum float64
	for _, p := range parts {
		sum += SafePercent(p.Percent)
	}
	return sum
}

// Contains reports whether a part for flavorID is present.
func Contains(parts []model.MixPart, flavorID string) bool {
	return indexOf(parts, flavorID) >= 0
}

// AddPart appends flavorID with a default share of min(30, headroom).
// It is a no-op for an empty id or a flavor already in the mix.
func AddPart(parts []model.MixPart, flavorID string) []model.MixPart {
	if flavorID == "" || Contains(parts, flavorID) {
		return clone(parts)
	}
	share := math.Min(DefaultShare, math.Max(0, Total-PercentSum(parts)))
	return append(clone(parts), model.MixPart{FlavorID: flavorID, Percent: share})
}

// ClampPercentForPart returns the share flavorID may take given every other part:
// SafePercent(v) capped at 100 minus the others' sum, floored at 0.
func ClampPercentForPart(parts []model.MixPart, flavorID string, v float64) float64 {
	var others float64
	for _, p := range parts {
		if p.FlavorID != flavorID {
			others += SafePercent(p.Percent)
		}
	}
	return math.Max(0, math.Min(SafePercent(v), Total-others))
}

// UpdatePercent sets flavorID's share to the clamped value of v. Other parts
// are left as they are, so the sum never rises above 100 through this call.
func UpdatePercent(parts []model.MixPart, flavorID string, v float64) []model.MixPart {
	out := clone(parts)
	if i := indexOf(out, flavorID); i >= 0 {
		out[i].Percent = ClampPercentForPart(parts, flavorID, v)
	}
	return out
}

// RemovePart drops flavorID from the mix. Absent ids are ignored.
func RemovePart(parts []model.MixPart, flavorID string) []model.MixPart {
	out := make([]model.MixPart, 0, len(parts))
	for _, p := range parts {
		if p.FlavorID != flavorID {
			out = append(out, p)
		}
	}
	return out
}

// IsValid reports whether a mix may be submitted: at least one part, shares
// summing to exactly 100 and a trimmed title of three characters or more.
func IsValid(parts []model.MixPart, title string) bool {
	return len(parts) > 0 &&
		PercentSum(parts) == Total &&
		utf8.RuneCountInString(strings.TrimSpace(title)) >= MinTitleLen
}

// Normalize rescales shares so they add up to 100: each part becomes
// round(share/sum*100) and the rounding remainder goes to the last part.
// Mixes already at 100 or with nothing to scale are returned as they are.
func Normalize(parts []model.MixPart) []model.MixPart {
	out := clone(parts)
	sum := PercentSum(parts)
	if sum == Total || sum <= 0 {
		return out
	}
	var scaled float64
	for i := range out {
		out[i].Percent = math.Round(SafePercent(out[i].Percent) / sum * Total)
		scaled += out[i].Percent
	}
	if len(out) > 0 {
		out[len(out)-1].Percent += Total - scaled
	}
	return out
}

// Dedupe keeps the first part of each flavor and drops later repeats, so a
// draft holds at most one part per flavorId. Order is preserved.
func Dedupe(parts []model.MixPart) []model.MixPart {
	out := make([]model.MixPart, 0, len(parts))
	for _, p := range parts {
		if indexOf(out, p.FlavorID) < 0 {
			out = append(out, p)
		}
	}
	return out
}

func indexOf(parts []model.MixPart, flavorID string) int {
	for i, p := range parts {
		if p.FlavorID == flavorID {
			return i
		}
	}
	return -1
}

func clone(parts []model.MixPart) []model.MixPart {
	out := make([]model.MixPart, len(parts))
	copy(out, parts)
	return out
}
