// Package model contains domain models passed between layers.
package model

import (
	"bytes"
	"encoding/json"
	"regexp"
	"strings"
)

var (
	whitespaceRun = regexp.MustCompile(`\s+`)
	tagSeparators = regexp.MustCompile(`[;,|]`)
)

// Flavor is a catalog entry: one tobacco flavor of one brand.
type Flavor struct {
	ID          string   `json:"id"`
	Brand       string   `json:"brand"`
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	Tags        Tags     `json:"tags,omitempty"`
	Strength10  *float64 `json:"strength10,omitempty"` // explicit 1..10 rating, nil when unrated
}

// MakeFlavorID derives a stable flavor id from brand and name,
// e.g. ("Black Burn", "Peach Ice") -> "black-burn-peach-ice".
func MakeFlavorID(brand, name string) string {
	id := strings.TrimSpace(brand) + "-" + strings.TrimSpace(name)
	return whitespaceRun.ReplaceAllString(strings.ToLower(id), "-")
}

// UnmarshalJSON accepts catalog files written by hand: strength10 is kept
// only when it is a JSON number, tags may be an array or a separated string.
func (f *Flavor) UnmarshalJSON(data []byte) error {
	var raw struct {
		ID          json.RawMessage `json:"id"`
		Brand       json.RawMessage `json:"brand"`
		Name        json.RawMessage `json:"name"`
		Description json.RawMessage `json:"description"`
		Tags        Tags            `json:"tags"`
		Strength10  json.RawMessage `json:"strength10"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*f = Flavor{
		ID:          parseString(raw.ID),
		Brand:       parseString(raw.Brand),
		Name:        parseString(raw.Name),
		Description: parseString(raw.Description),
		Tags:        raw.Tags,
	}
	if s := bytes.TrimSpace(raw.Strength10); len(s) > 0 && (s[0] == '-' || (s[0] >= '0' && s[0] <= '9')) {
		if v, ok := ParseNumber(s); ok {
			f.Strength10 = &v
		}
	}
	return nil
}

// Tags is an ordered list of free-form flavor tags.
type Tags []string

// UnmarshalJSON accepts either an array of strings or a single string
// separated by ';', ',' or '|'. Other shapes decode to nil.
func (t *Tags) UnmarshalJSON(data []byte) error {
	s := bytes.TrimSpace(data)
	if len(s) == 0 {
		*t = nil
		return nil
	}
	switch s[0] {
	case '[':
		var items []json.RawMessage
		if err := json.Unmarshal(s, &items); err != nil {
			*t = nil
			return nil //nolint:nilerr // malformed tags degrade to none
		}
		out := make(Tags, 0, len(items))
		for _, it := range items {
			out = append(out, parseString(it))
		}
		*t = out
	case '"':
		var str string
		if err := json.Unmarshal(s, &str); err != nil {
			*t = nil
			return nil //nolint:nilerr // malformed tags degrade to none
		}
		*t = SplitTags(str)
	default:
		*t = nil
	}
	return nil
}

// SplitTags splits a "sweet; ice|fruit" style string into trimmed, non-empty tags.
func SplitTags(s string) Tags {
	var out Tags
	for _, p := range tagSeparators.Split(s, -1) {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
