package config

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

const (
	envPrefix  = "RACERDASH_"
	envConfig  = envPrefix + "CONFIG"
	envDotFile = envPrefix + "DOTENV"
)

// Load builds a Config by layering defaults, optional file, .env and env vars.
// Order of precedence (low -> high):
//  1. defaults (New(ctx))
//  2. file (YAML) if RACERDASH_CONFIG is set
//  3. .env (or RACERDASH_DOTENV) merged into the process environment
//  4. env (prefix RACERDASH_)
func Load(ctx context.Context) (*Config, error) {
	base := New(ctx)

	k := koanf.New(".")

	if path := os.Getenv(envConfig); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrLoadConfig, path, err)
		}
	}

	// godotenv never overrides variables that are already set.
	dotenv := os.Getenv(envDotFile)
	if dotenv == "" {
		dotenv = ".env"
	}
	if err := godotenv.Load(dotenv); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s: %w", ErrLoadConfig, dotenv, err)
	}

	// RACERDASH_UPSTREAM_BASE_URL -> upstream_base_url (flat keys).
	envProvider := env.Provider(envPrefix, ".", func(s string) string {
		s = strings.ToLower(s)
		return strings.TrimPrefix(s, strings.ToLower(envPrefix))
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: env: %w", ErrLoadConfig, err)
	}

	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate reports the first invalid field.
func (c *Config) Validate() error {
	switch {
	case c.Addr == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case c.UpstreamBaseURL == "":
		return fmt.Errorf("%w: upstream_base_url must not be empty", ErrInvalidConfig)
	case c.UpstreamTimeoutMS < 0:
		return fmt.Errorf("%w: upstream_timeout_ms must not be negative", ErrInvalidConfig)
	case c.FilterDebounceMS < 0:
		return fmt.Errorf("%w: filter_debounce_ms must not be negative", ErrInvalidConfig)
	case c.DefaultPageSize <= 0:
		return fmt.Errorf("%w: default_page_size must be positive", ErrInvalidConfig)
	case c.MaxPageSize < c.DefaultPageSize:
		return fmt.Errorf("%w: max_page_size must be >= default_page_size", ErrInvalidConfig)
	case c.ExportColumnWidth <= 0:
		return fmt.Errorf("%w: export_column_width must be positive", ErrInvalidConfig)
	case c.DetailFetchWorkers <= 0:
		return fmt.Errorf("%w: detail_fetch_workers must be positive", ErrInvalidConfig)
	case c.MetricsRefreshMS <= 0:
		return fmt.Errorf("%w: metrics_refresh_ms must be positive", ErrInvalidConfig)
	}
	switch strings.ToLower(c.LogFormat) {
	case "", "text", "json":
	default:
		return fmt.Errorf("%w: log_format must be text or json", ErrInvalidConfig)
	}
	u, err := url.Parse(c.UpstreamBaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("%w: upstream_base_url %q is not an absolute URL", ErrInvalidConfig, c.UpstreamBaseURL)
	}
	return nil
}
