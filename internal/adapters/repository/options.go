package repository

import "os"

type options struct {
	maxMixes int
	perm     os.FileMode
}

func defaultOptions() options {
	return options{perm: 0o644}
}

// Option applies a configuration option to a store.
type Option func(*options)

// WithMaxMixes caps the number of stored mixes; the oldest are dropped first.
// Zero or negative keeps everything.
func WithMaxMixes(n int) Option {
	return func(o *options) {
		o.maxMixes = n
	}
}

// WithFileMode sets the permission bits of newly written data files.
func WithFileMode(perm os.FileMode) Option {
	return func(o *options) {
		if perm != 0 {
			o.perm = perm
		}
	}
}
