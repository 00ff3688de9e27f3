package service

import "errors"

// Sentinel kinds for service errors. Mix validation kinds live in the types
// package; store errors (ErrNotFound, ErrExists, ErrInvalidFlavor) pass
// through from the repository package wrapped.
var (
	ErrSeedCatalog = errors.New("seed catalog failed")
)
