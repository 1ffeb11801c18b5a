// Package config loads engine and service configuration: a TOML file
// layered under DOCWEAVE_-prefixed environment variable overrides, with
// env vars carrying deployment-specific values and the file carrying the
// rest.
package config

import (
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml"

	"docweave/common"
)

// EngineConfig holds the service-wide settings Load reads: the formatter
// strictness policy, default locale, and cache settings. The render API
// does not read them; each render takes its options from its own request.
type EngineConfig struct {
	// Strict is the configured formatter strictness. A render request's
	// own strict flag decides strictness; this value is not applied to it.
	Strict bool `toml:"strict"`
	// DefaultLocale is the configured fallback locale. A request that
	// carries no locale renders with an empty locale; this value is not
	// applied to it.
	DefaultLocale string `toml:"default_locale" validate:"required"`
	// CacheTTLSeconds is the configured lifetime of a cached render; no
	// render path in this module caches output.
	CacheTTLSeconds int `toml:"cache_ttl_seconds" validate:"min=0"`
	// CacheDir is the configured directory for on-disk dictionaries and
	// caches; no code in this module reads it.
	CacheDir string `toml:"cache_dir"`
}

// DefaultEngineConfig returns the defaults applied before any file or
// environment override: strictness off, a short cache window, English
// fallback.
func DefaultEngineConfig() EngineConfig {
	return EngineConfig{
		Strict:          false,
		DefaultLocale:   "en",
		CacheTTLSeconds: 300,
		CacheDir:        "./_data/cache",
	}
}

var validate = validator.New()

// Load reads a TOML file at path (if it exists) over DefaultEngineConfig,
// then applies DOCWEAVE_-prefixed environment variable overrides, and
// validates the result. A missing file is not an error: the defaults, as
// overridden by environment, apply, so local development works with no
// config file at all.
func Load(path string) (EngineConfig, error) {
	cfg := DefaultEngineConfig()

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			data, err := os.ReadFile(path)
			if err != nil {
				return cfg, fmt.Errorf("reading config file %s: %w", path, err)
			}
			if err := toml.Unmarshal(data, &cfg); err != nil {
				return cfg, fmt.Errorf("parsing config file %s: %w", path, err)
			}
		}
	}

	applyEnvOverrides(&cfg)

	if err := validate.Struct(cfg); err != nil {
		return cfg, fmt.Errorf("invalid engine configuration: %w", err)
	}
	return cfg, nil
}

func applyEnvOverrides(cfg *EngineConfig) {
	cfg.Strict = common.GetEnvBool("DOCWEAVE_STRICT", cfg.Strict)
	cfg.DefaultLocale = common.GetEnv("DOCWEAVE_DEFAULT_LOCALE", cfg.DefaultLocale)
	cfg.CacheTTLSeconds = common.GetEnvInt("DOCWEAVE_CACHE_TTL_SECONDS", cfg.CacheTTLSeconds)
	cfg.CacheDir = common.GetEnv("DOCWEAVE_CACHE_DIR", cfg.CacheDir)
}

// LoadDotEnv loads a .env file into the process environment. A missing or
// unreadable file is not an error: the failure is logged at debug level.
func LoadDotEnv(paths ...string) {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	if err := godotenv.Load(paths...); err != nil {
		common.Debug("no .env file loaded: %v", err)
	}
}
