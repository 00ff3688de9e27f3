// Package types contains common types used across the application
package types

import (
	"errors"

	"github.com/okian/hookah/internal/domain/model"
)

// Error kinds shared by the service and the HTTP layer.
var (
	ErrInvalidMix = errors.New("mix needs parts summing to 100 and a title of at least 3 characters")
	ErrRejected   = errors.New("mix rejected by moderation")
)

// MixInput is a mix submission.
type MixInput struct {
	Title  string
	Notes  string
	Author string
	Parts  model.Parts
}

// LikeResult is the like state of a mix after a like or unlike.
type LikeResult struct {
	Liked bool `json:"liked"`
	Likes int  `json:"likes"`
	Found bool `json:"-"`
}

// Preview is the live summary the builder shows while a mix is edited.
type Preview struct {
	Sum        float64  `json:"sum"`
	Remaining  float64  `json:"remaining"`
	Valid      bool     `json:"valid"`
	Strength10 *float64 `json:"strength10"`
	Band       string   `json:"band"`
	Taste      *string  `json:"taste"`
}

// BuilderResult echoes the edited parts together with their preview.
type BuilderResult struct {
	Parts   model.Parts `json:"parts"`
	Preview Preview     `json:"preview"`
}
