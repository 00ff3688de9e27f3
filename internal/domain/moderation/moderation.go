// Package moderation screens user-submitted text against a banned-word list.
package moderation

import (
	"strings"
)

// Filter matches text against banned words by case-insensitive substring.
// It is immutable after construction and safe for concurrent use.
type Filter struct {
	words []string
}

// New creates a filter. Words are lower-cased, trimmed and de-duplicated;
// blank entries are dropped.
func New(words []string) *Filter {
	f := &Filter{}
	seen := make(map[string]struct{}, len(words))
	for _, w := range words {
		w = strings.ToLower(strings.TrimSpace(w))
		if w == "" {
			continue
		}
		if _, ok := seen[w]; ok {
			continue
		}
		seen[w] = struct{}{}
		f.words = append(f.words, w)
	}
	return f
}

// Check returns the first banned word found in any of texts.
func (f *Filter) Check(texts ...string) (string, bool) {
	if f == nil || len(f.words) == 0 {
		return "", false
	}
	for _, t := range texts {
		t = strings.ToLower(t)
		for _, w := range f.words {
			if strings.Contains(t, w) {
				return w, true
			}
		}
	}
	return "", false
}

// Len returns the number of banned words.
func (f *Filter) Len() int {
	if f == nil {
		return 0
	}
	return len(f.words)
}
