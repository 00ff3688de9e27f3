package repository

import "errors"

// Sentinel kinds for store errors.
var (
	ErrNotFound      = errors.New("not found")
	ErrExists        = errors.New("id already exists")
	ErrInvalidFlavor = errors.New("brand and name required")
	ErrInvalidID     = errors.New("id required")
	ErrCorruptFile   = errors.New("store file is not a JSON array")
)
