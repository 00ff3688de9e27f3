// Package attributes derives display attributes of a mix from its parts and
// the flavor catalog: an overall strength score and a dominant taste label.
//
// A Deriver is immutable once built and safe for concurrent use.
package attributes

import (
	"maps"
	"strings"

	"github.com/okian/hookah/internal/domain/model"
)

// Strength scale.
const (
	MinStrength      = 1
	MaxStrength      = 10
	fallbackStrength = 5
)

// defaultBrandStrength holds per-brand strengths for flavors without an explicit rating.
var defaultBrandStrength = map[string]float64{ //nolint:gochecknoglobals // read-only table, copied into each Deriver
	"Darkside":   5,
	"Black Burn": 6,
	"BlackBurn":  6,
	"MustHave":   5,
	"Overdos":    6,
	"Bonch":      7,
	"Starline":   3,
}

// DefaultBrandStrength returns a copy of the built-in brand strength table.
func DefaultBrandStrength() map[string]float64 {
	return maps.Clone(defaultBrandStrength)
}

// Lookup resolves flavor ids against a catalog.
type Lookup interface {
	Lookup(id string) (model.Flavor, bool)
}

// Index is a Lookup over a flavor slice.
type Index map[string]model.Flavor

// NewIndex indexes flavors by id. When ids repeat, the first flavor wins.
func NewIndex(flavors []model.Flavor) Index {
	idx := make(Index, len(flavors))
	for _, f := range flavors {
		if _, seen := idx[f.ID]; !seen {
			idx[f.ID] = f
		}
	}
	return idx
}

// Lookup implements Lookup.
func (idx Index) Lookup(id string) (model.Flavor, bool) {
	f, ok := idx[id]
	return f, ok
}

// Attributes are the derived attributes of a mix. Nil means no data.
type Attributes struct {
	Strength10 *float64 `json:"strength10"`
	Taste      *string  `json:"taste"`
}

// Option applies a configuration option to the Deriver.
type Option func(*Deriver)

// WithBrandDefaults merges brand strengths over the built-in table.
// Brand names are trimmed; non-positive strengths are ignored.
func WithBrandDefaults(brands map[string]float64) Option {
	return func(d *Deriver) {
		for brand, v := range brands {
			if v, ok := model.Finite(v); ok && v > 0 {
				d.brandStrength[strings.TrimSpace(brand)] = clampStrength(v)
			}
		}
	}
}

// WithFallbackStrength sets the strength used for unknown brands.
func WithFallbackStrength(v float64) Option {
	return func(d *Deriver) {
		if v, ok := model.Finite(v); ok && v > 0 {
			d.fallback = clampStrength(v)
		}
	}
}

// WithTasteRules replaces the ordered taste rule list. An empty list is ignored.
func WithTasteRules(rules []TasteRule) Option {
	return func(d *Deriver) {
		if len(rules) > 0 {
			d.rules = append([]TasteRule(nil), rules...)
		}
	}
}

// Deriver computes mix strength and taste.
type Deriver struct {
	brandStrength map[string]float64
	fallback      float64
	rules         []TasteRule
}

// New creates a Deriver with the built-in brand table and taste rules.
func New(opts ...Option) *Deriver {
	d := &Deriver{
		brandStrength: DefaultBrandStrength(),
		fallback:      fallbackStrength,
		rules:         DefaultTasteRules(),
	}

	for _, opt := range opts {
		opt(d)
	}

	return d
}

// Derive computes both attributes of parts against catalog.
func (d *Deriver) Derive(parts []model.MixPart, catalog Lookup) Attributes {
	var a Attributes
	if v, ok := d.Strength(parts, catalog); ok {
		a.Strength10 = &v
	}
	if label, ok := d.Taste(parts, catalog); ok {
		a.Taste = &label
	}
	return a
}

var defaultDeriver = New() //nolint:gochecknoglobals // immutable default

// DeriveStrength computes the mix strength with the built-in tables.
func DeriveStrength(parts []model.MixPart, flavors []model.Flavor) (float64, bool) {
	return defaultDeriver.DeriveStrength(parts, flavors)
}

// DeriveTaste computes the mix taste label with the built-in rules.
func DeriveTaste(parts []model.MixPart, flavors []model.Flavor) (string, bool) {
	return defaultDeriver.DeriveTaste(parts, flavors)
}
