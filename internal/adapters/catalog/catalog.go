// Package catalog holds the in-memory flavor catalog used to derive mix
// attributes, keeps it in sync with the flavors file and imports seed files.
package catalog

import (
	"slices"
	"sort"
	"strings"
	"sync/atomic"

	"github.com/okian/hookah/internal/domain/attributes"
	"github.com/okian/hookah/internal/domain/model"
)

type snapshot struct {
	flavors []model.Flavor
	index   attributes.Index
	brands  []string
}

// Catalog is a read-mostly flavor set. Readers see an immutable snapshot
// that Set swaps atomically.
type Catalog struct {
	snap atomic.Pointer[snapshot]
}

// New returns a catalog holding the cleaned flavors.
func New(flavors []model.Flavor) *Catalog {
	c := &Catalog{}
	c.Set(flavors)
	return c
}

// Set replaces the catalog contents and returns the number of flavors kept.
func (c *Catalog) Set(flavors []model.Flavor) int {
	clean := Clean(flavors)
	c.snap.Store(&snapshot{
		flavors: clean,
		index:   attributes.NewIndex(clean),
		brands:  brandsOf(clean),
	})
	return len(clean)
}

func (c *Catalog) load() *snapshot {
	if s := c.snap.Load(); s != nil {
		return s
	}
	return &snapshot{}
}

// Flavors returns a copy of all flavors in catalog order.
func (c *Catalog) Flavors() []model.Flavor {
	return slices.Clone(c.load().flavors)
}

// Len returns the number of flavors.
func (c *Catalog) Len() int {
	return len(c.load().flavors)
}

// Lookup implements attributes.Lookup.
func (c *Catalog) Lookup(id string) (model.Flavor, bool) {
	return c.load().index.Lookup(id)
}

// Brands returns the distinct brands, sorted.
func (c *Catalog) Brands() []string {
	return slices.Clone(c.load().brands)
}

// ByBrand returns the flavors of one brand, matched case-insensitively.
func (c *Catalog) ByBrand(brand string) []model.Flavor {
	b := strings.TrimSpace(brand)
	var out []model.Flavor
	for _, f := range c.load().flavors {
		if strings.EqualFold(f.Brand, b) {
			out = append(out, f)
		}
	}
	return out
}

// Clean trims fields, fills blank ids from brand and name, and drops
// entries without id, brand or name. Later duplicates of an id are dropped.
func Clean(flavors []model.Flavor) []model.Flavor {
	out := make([]model.Flavor, 0, len(flavors))
	seen := make(map[string]struct{}, len(flavors))
	for _, f := range flavors {
		f.ID = strings.TrimSpace(f.ID)
		f.Brand = strings.TrimSpace(f.Brand)
		f.Name = strings.TrimSpace(f.Name)
		f.Description = strings.TrimSpace(f.Description)
		if f.ID == "" && f.Brand != "" && f.Name != "" {
			f.ID = model.MakeFlavorID(f.Brand, f.Name)
		}
		if f.ID == "" || f.Brand == "" || f.Name == "" {
			continue
		}
		if _, dup := seen[f.ID]; dup {
			continue
		}
		seen[f.ID] = struct{}{}
		f.Tags = cleanTags(f.Tags)
		out = append(out, f)
	}
	return out
}

func cleanTags(tags model.Tags) model.Tags {
	var out model.Tags
	for _, t := range tags {
		if t = strings.TrimSpace(t); t != "" {
			out = append(out, t)
		}
	}
	return out
}

func brandsOf(flavors []model.Flavor) []string {
	set := make(map[string]struct{})
	for _, f := range flavors {
		set[f.Brand] = struct{}{}
	}
	out := make([]string, 0, len(set))
	for b := range set {
		out = append(out, b)
	}
	sort.Strings(out)
	return out
}
