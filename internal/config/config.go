// Package config defines the racerdash service configuration and its loader.
//
// Conventions:
// - Provide New(ctx) to build a Config with defaults.
// - Load layers a YAML file, a .env file and environment variables on top.
// - External errors are wrapped with this package's sentinels.
package config

import (
	"context"
	"time"
)

// Config contains process configuration shared by the server and the console.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects the log handler: text or json.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// UpstreamBaseURL is the leaderboard REST API, e.g. https://leaderboard.runasp.net/api.
	UpstreamBaseURL string `koanf:"upstream_base_url"`

	// UpstreamTimeoutMS bounds each upstream call; 0 keeps the transport default.
	UpstreamTimeoutMS int `koanf:"upstream_timeout_ms"`

	// AuthEnabled turns on upstream login; when false login is a local flip.
	AuthEnabled bool `koanf:"auth_enabled"`

	// FilterDebounceMS is the delay between the last keystroke and filtering.
	FilterDebounceMS int `koanf:"filter_debounce_ms"`

	// DefaultPageSize and MaxPageSize bound table pagination.
	DefaultPageSize int `koanf:"default_page_size"`
	MaxPageSize     int `koanf:"max_page_size"`

	// ExportColumnWidth is the fixed spreadsheet column width in characters.
	ExportColumnWidth float64 `koanf:"export_column_width"`

	// ExportSheetName names the single worksheet in exported workbooks.
	ExportSheetName string `koanf:"export_sheet_name"`

	// DetailFetchWorkers caps concurrent detail fetches in the results view.
	DetailFetchWorkers int `koanf:"detail_fetch_workers"`

	// ResultsStrictJoin fails the whole results view when any detail fetch fails.
	ResultsStrictJoin bool `koanf:"results_strict_join"`

	// TokenFile persists the console session token between runs.
	TokenFile string `koanf:"token_file"`

	// MetricsRefreshMS is how often process gauges are sampled.
	MetricsRefreshMS int `koanf:"metrics_refresh_ms"`
}

// New creates a Config with defaults. Context is accepted first to follow
// the project-wide convention.
func New(_ context.Context) *Config {
	return &Config{
		LogLevel:           "info",
		LogFormat:          "text",
		Addr:               ":9080",
		UpstreamBaseURL:    "https://leaderboard.runasp.net/api",
		UpstreamTimeoutMS:  0,
		AuthEnabled:        false,
		FilterDebounceMS:   200,
		DefaultPageSize:    10,
		MaxPageSize:        50,
		ExportColumnWidth:  16,
		ExportSheetName:    "Table",
		DetailFetchWorkers: 8,
		ResultsStrictJoin:  false,
		TokenFile:          ".racerdash-token",
		MetricsRefreshMS:   10000,
	}
}

// UpstreamTimeout returns the upstream timeout as a duration.
func (c *Config) UpstreamTimeout() time.Duration {
	return time.Duration(c.UpstreamTimeoutMS) * time.Millisecond
}

// MetricsRefresh returns the gauge sampling interval as a duration.
func (c *Config) MetricsRefresh() time.Duration {
	return time.Duration(c.MetricsRefreshMS) * time.Millisecond
}

// FilterDebounce returns the filter debounce delay as a duration.
func (c *Config) FilterDebounce() time.Duration {
	return time.Duration(c.FilterDebounceMS) * time.Millisecond
}
