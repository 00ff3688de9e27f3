package config_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/okian/hookah/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfigLoader(t *testing.T) {
	ctx := context.Background()

	convey.Convey("Given a config loader", t, func() {
		convey.Convey("When loading config with defaults only", func() {
			clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should load successfully with defaults", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg, convey.ShouldNotBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":3000")
				convey.So(cfg.MaxMixes, convey.ShouldEqual, 500)
				convey.So(cfg.BannedWords, convey.ShouldBeEmpty)
			})
		})

		convey.Convey("When loading config with environment variables", func() {
			_ = os.Setenv("HOOKAH_ADDR", ":8080")
			_ = os.Setenv("HOOKAH_ADMIN_KEY", "secret")
			_ = os.Setenv("HOOKAH_MAX_MIXES", "10")
			_ = os.Setenv("HOOKAH_NORMALIZE_ON_SUBMIT", "true")
			_ = os.Setenv("HOOKAH_BANNED_WORDS", "spam, scam ,")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should override defaults with env vars", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8080")
				convey.So(cfg.AdminKey, convey.ShouldEqual, "secret")
				convey.So(cfg.MaxMixes, convey.ShouldEqual, 10)
				convey.So(cfg.NormalizeOnSubmit, convey.ShouldBeTrue)
				convey.So(cfg.BannedWords, convey.ShouldResemble, []string{"spam", "scam"})
			})
		})

		convey.Convey("When loading config with both file and environment variables", func() {
			tmpFile := createTempConfigFile(t, `
addr: ":9090"
data_dir: /var/lib/hookah
max_mixes: 50
fallback_strength: 4
brand_strength:
  Tangiers: 8
banned_words: [casino]
`)
			_ = os.Setenv("HOOKAH_CONFIG", tmpFile)
			_ = os.Setenv("HOOKAH_ADDR", ":8080")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then environment variables should override file values", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8080")
				convey.So(cfg.DataDir, convey.ShouldEqual, "/var/lib/hookah")
				convey.So(cfg.MaxMixes, convey.ShouldEqual, 50)
				convey.So(cfg.FallbackStrength, convey.ShouldEqual, 4)
				convey.So(cfg.BrandStrength["Tangiers"], convey.ShouldEqual, 8)
				convey.So(cfg.BannedWords, convey.ShouldResemble, []string{"casino"})
				convey.So(cfg.CatalogPollIntervalMS, convey.ShouldEqual, 8000)
			})
		})

		convey.Convey("When loading config with invalid YAML file", func() {
			tmpFile := createTempConfigFile(t, `invalid: yaml: content: [`)
			_ = os.Setenv("HOOKAH_CONFIG", tmpFile)
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return a load error", func() {
				convey.So(errors.Is(err, config.ErrLoadConfig), convey.ShouldBeTrue)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When the config file does not exist", func() {
			_ = os.Setenv("HOOKAH_CONFIG", filepath.Join(t.TempDir(), "missing.yaml"))
			defer clearConfigEnvVars()

			_, err := config.Load(ctx)

			convey.Convey("Then it should return a load error", func() {
				convey.So(errors.Is(err, config.ErrLoadConfig), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When loading config with empty addr", func() {
			_ = os.Setenv("HOOKAH_ADDR", "")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return a validation error", func() {
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
				convey.So(err.Error(), convey.ShouldContainSubstring, "addr must not be empty")
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When loading config with negative limits", func() {
			_ = os.Setenv("HOOKAH_MAX_MIXES", "-1")
			defer clearConfigEnvVars()

			_, err := config.Load(ctx)

			convey.Convey("Then it should return a validation error", func() {
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When loading config with invalid numeric environment variables", func() {
			_ = os.Setenv("HOOKAH_MAX_MIXES", "not_a_number")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return an error", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})
	})
}

func createTempConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func clearConfigEnvVars() {
	for _, k := range []string{
		"HOOKAH_CONFIG",
		"HOOKAH_ADDR",
		"HOOKAH_ADMIN_KEY",
		"HOOKAH_MAX_MIXES",
		"HOOKAH_NORMALIZE_ON_SUBMIT",
		"HOOKAH_BANNED_WORDS",
	} {
		_ = os.Unsetenv(k)
	}
}
