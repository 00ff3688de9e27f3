// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Defaults live in New(); Load layers a YAML file and environment on top.
// - Keys are flat snake_case, matching the koanf tags below.
// - Errors are wrapped with this package's sentinel kinds.
package config

import (
	"path/filepath"
	"time"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects the log handler: text or json.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":3000".
	Addr string `koanf:"addr"`

	// DataDir holds the JSON data files.
	DataDir string `koanf:"data_dir"`

	// PublicDir is served as the frontend when it exists.
	PublicDir string `koanf:"public_dir"`

	// MixesFile and FlavorsFile override the data file paths.
	// Empty means guest_mixes.json and flavors.json inside DataDir.
	MixesFile   string `koanf:"mixes_file"`
	FlavorsFile string `koanf:"flavors_file"`

	// CatalogSeedFile is a JSON or YAML flavors file imported at startup
	// when the flavor store is empty.
	CatalogSeedFile string `koanf:"catalog_seed_file"`

	// AdminKey guards moderation and catalog edits. Empty allows everyone.
	AdminKey string `koanf:"admin_key"`

	// CatalogPollIntervalMS is the catalog file poll period; 0 disables polling.
	CatalogPollIntervalMS int `koanf:"catalog_poll_interval_ms"`

	// MaxMixes caps the number of stored mixes, oldest dropped first; 0 is unlimited.
	MaxMixes int `koanf:"max_mixes"`

	// NormalizeOnSubmit rescales submitted shares to 100 before validation.
	NormalizeOnSubmit bool `koanf:"normalize_on_submit"`

	// BannedWords are rejected in mix titles and notes.
	BannedWords []string `koanf:"banned_words"`

	// BrandStrength maps brand names to default strengths, merged over the built-ins.
	BrandStrength map[string]float64 `koanf:"brand_strength"`

	// FallbackStrength is the strength of flavors of unknown brands.
	FallbackStrength float64 `koanf:"fallback_strength"`

	// BodyLimitBytes caps request body size.
	BodyLimitBytes int64 `koanf:"body_limit_bytes"`
}

// New creates a Config with defaults.
func New() *Config {
	return &Config{
		LogLevel:              "info",
		LogFormat:             "text",
		Addr:                  ":3000",
		DataDir:               "data",
		PublicDir:             "public",
		CatalogPollIntervalMS: 8000,
		MaxMixes:              500,
		NormalizeOnSubmit:     false,
		BannedWords:           []string{},
		BrandStrength:         map[string]float64{},
		FallbackStrength:      5,
		BodyLimitBytes:        2 << 20,
	}
}

// MixesPath returns the guest mixes file path.
func (c *Config) MixesPath() string {
	if c.MixesFile != "" {
		return c.MixesFile
	}
	return filepath.Join(c.DataDir, "guest_mixes.json")
}

// FlavorsPath returns the flavors file path.
func (c *Config) FlavorsPath() string {
	if c.FlavorsFile != "" {
		return c.FlavorsFile
	}
	return filepath.Join(c.DataDir, "flavors.json")
}

// CatalogPollInterval returns the poll period as a duration.
func (c *Config) CatalogPollInterval() time.Duration {
	return time.Duration(c.CatalogPollIntervalMS) * time.Millisecond
}
