package catalog

import "errors"

// Sentinel kinds for catalog errors.
var (
	ErrSeedFormat = errors.New("unsupported seed file format")
	ErrSeedRead   = errors.New("read seed file failed")
)
