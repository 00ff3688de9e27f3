package model

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"
)

// ErrMixID reports a stored mix whose id is not a string or number.
var ErrMixID = errors.New("mix id missing")

// MixPart is one ingredient of a mix: a flavor reference and its share in percent.
type MixPart struct {
	FlavorID string  `json:"flavorId"`
	Percent  float64 `json:"percent"`
}

// UnmarshalJSON never fails on a well-formed JSON value. A non-object decodes
// to the zero part, and a percent that is not a finite number decodes to 0.
func (p *MixPart) UnmarshalJSON(data []byte) error {
	*p = MixPart{}
	s := bytes.TrimSpace(data)
	if len(s) == 0 || s[0] != '{' {
		return nil
	}
	var raw struct {
		FlavorID json.RawMessage `json:"flavorId"`
		Percent  json.RawMessage `json:"percent"`
	}
	if err := json.Unmarshal(s, &raw); err != nil {
		return err
	}
	p.FlavorID = parseString(raw.FlavorID)
	if v, ok := ParseNumber(raw.Percent); ok {
		p.Percent = v
	}
	return nil
}

// Parts is the ordered list of parts of a mix, in the order they were added.
type Parts []MixPart

// UnmarshalJSON decodes anything that is not an array as an empty list.
func (ps *Parts) UnmarshalJSON(data []byte) error {
	s := bytes.TrimSpace(data)
	if len(s) == 0 || s[0] != '[' {
		*ps = Parts{}
		return nil
	}
	var items []MixPart
	if err := json.Unmarshal(s, &items); err != nil {
		return err
	}
	*ps = items
	return nil
}

// Draft is a mix being edited in the builder.
type Draft struct {
	Parts Parts  `json:"parts"`
	Title string `json:"title"`
	Notes string `json:"notes"`
}

// Mix is a submitted, persisted mix. Taste and Strength10 are derived at
// submission time and are nil when the catalog gave no signal.
type Mix struct {
	ID         string    `json:"id"`
	Title      string    `json:"title"`
	Parts      Parts     `json:"parts"`
	Notes      string    `json:"notes"`
	Author     string    `json:"author"`
	CreatedAt  time.Time `json:"createdAt"`
	Taste      *string   `json:"taste"`
	Strength10 *float64  `json:"strength10"`
	Likers     []string  `json:"likers"`
}

// UnmarshalJSON reads mixes written by older clients: id may be a number,
// createdAt may be RFC 3339 text or epoch milliseconds, and strength10 counts
// only when it is a number. A mix without a usable id or createdAt fails so
// the store can keep the record untouched.
func (m *Mix) UnmarshalJSON(data []byte) error {
	var raw struct {
		ID         json.RawMessage `json:"id"`
		Title      json.RawMessage `json:"title"`
		Parts      Parts           `json:"parts"`
		Notes      json.RawMessage `json:"notes"`
		Author     json.RawMessage `json:"author"`
		CreatedAt  json.RawMessage `json:"createdAt"`
		Taste      json.RawMessage `json:"taste"`
		Strength10 json.RawMessage `json:"strength10"`
		Likers     json.RawMessage `json:"likers"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	id := parseString(raw.ID)
	if strings.TrimSpace(id) == "" {
		return ErrMixID
	}
	created, err := parseTime(raw.CreatedAt)
	if err != nil {
		return err
	}

	*m = Mix{
		ID:        id,
		Title:     parseString(raw.Title),
		Parts:     raw.Parts,
		Notes:     parseString(raw.Notes),
		Author:    parseString(raw.Author),
		CreatedAt: created,
		Likers:    parseStrings(raw.Likers),
	}
	if m.Parts == nil {
		m.Parts = Parts{}
	}
	if t := parseString(raw.Taste); t != "" {
		m.Taste = &t
	}
	if s := bytes.TrimSpace(raw.Strength10); len(s) > 0 && (s[0] == '-' || (s[0] >= '0' && s[0] <= '9')) {
		if v, ok := ParseNumber(s); ok {
			m.Strength10 = &v
		}
	}
	return nil
}

// parseTime accepts RFC 3339 text, epoch milliseconds as a number or a
// numeric string, and null or absence as the zero time.
func parseTime(raw json.RawMessage) (time.Time, error) {
	s := bytes.TrimSpace(raw)
	if len(s) == 0 || string(s) == "null" {
		return time.Time{}, nil
	}
	if s[0] == '"' {
		var str string
		if err := json.Unmarshal(s, &str); err != nil {
			return time.Time{}, err
		}
		if str = strings.TrimSpace(str); str == "" {
			return time.Time{}, nil
		}
		if t, err := time.Parse(time.RFC3339Nano, str); err == nil {
			return t, nil
		}
	}
	ms, ok := ParseNumber(s)
	if !ok || s[0] == 't' || s[0] == 'f' {
		return time.Time{}, fmt.Errorf("createdAt: unsupported value %s", s)
	}
	return time.UnixMilli(int64(math.Round(ms))).UTC(), nil
}

// parseStrings reads an array of strings or numbers; other shapes read as none.
func parseStrings(raw json.RawMessage) []string {
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return []string{}
	}
	out := make([]string, 0, len(items))
	for _, it := range items {
		if v := parseString(it); v != "" {
			out = append(out, v)
		}
	}
	return out
}

// Likes returns the number of distinct users who liked the mix.
func (m *Mix) Likes() int {
	return len(m.Likers)
}
