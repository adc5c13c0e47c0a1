package config_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/okian/racerdash/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfigLoader(t *testing.T) {
	convey.Convey("Given a config loader", t, func() {
		ctx := context.Background()
		clearConfigEnvVars()

		convey.Convey("When loading config with defaults only", func() {
			cfg, err := config.Load(ctx)

			convey.Convey("Then it should load successfully with defaults", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg, convey.ShouldNotBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":9080")
				convey.So(cfg.DefaultPageSize, convey.ShouldEqual, 10)
				convey.So(cfg.DetailFetchWorkers, convey.ShouldEqual, 8)
			})
		})

		convey.Convey("When loading config with environment variables", func() {
			_ = os.Setenv("RACERDASH_ADDR", ":8080")
			_ = os.Setenv("RACERDASH_UPSTREAM_BASE_URL", "http://localhost:5000/api")
			_ = os.Setenv("RACERDASH_AUTH_ENABLED", "true")
			_ = os.Setenv("RACERDASH_RESULTS_STRICT_JOIN", "true")
			_ = os.Setenv("RACERDASH_DETAIL_FETCH_WORKERS", "3")
			_ = os.Setenv("RACERDASH_FILTER_DEBOUNCE_MS", "50")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should override defaults with env vars", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8080")
				convey.So(cfg.UpstreamBaseURL, convey.ShouldEqual, "http://localhost:5000/api")
				convey.So(cfg.AuthEnabled, convey.ShouldBeTrue)
				convey.So(cfg.ResultsStrictJoin, convey.ShouldBeTrue)
				convey.So(cfg.DetailFetchWorkers, convey.ShouldEqual, 3)
				convey.So(cfg.FilterDebounceMS, convey.ShouldEqual, 50)
			})
		})

		convey.Convey("When loading config with YAML file", func() {
			yamlContent := `
addr: ":9090"
default_page_size: 20
export_sheet_name: "Results"
log_format: json
`
			tmpFile := createTempConfigFile(yamlContent)
			defer func() { _ = os.Remove(tmpFile) }()

			_ = os.Setenv("RACERDASH_CONFIG", tmpFile)
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should load from YAML file", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":9090")
				convey.So(cfg.DefaultPageSize, convey.ShouldEqual, 20)
				convey.So(cfg.ExportSheetName, convey.ShouldEqual, "Results")
				convey.So(cfg.LogFormat, convey.ShouldEqual, "json")
				convey.So(cfg.MaxPageSize, convey.ShouldEqual, 50) // From defaults
			})
		})

		convey.Convey("When loading config with both file and environment variables", func() {
			yamlContent := `
addr: ":9090"
default_page_size: 20
`
			tmpFile := createTempConfigFile(yamlContent)
			defer func() { _ = os.Remove(tmpFile) }()

			_ = os.Setenv("RACERDASH_CONFIG", tmpFile)
			_ = os.Setenv("RACERDASH_ADDR", ":8080")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then environment variables should override file values", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8080")        // Overridden by env
				convey.So(cfg.DefaultPageSize, convey.ShouldEqual, 20) // From file
			})
		})

		convey.Convey("When a .env file is present", func() {
			dir, _ := os.MkdirTemp("", "racerdash-dotenv")
			defer func() { _ = os.RemoveAll(dir) }()
			dotenv := filepath.Join(dir, ".env")
			_ = os.WriteFile(dotenv, []byte("RACERDASH_MAX_PAGE_SIZE=40\nRACERDASH_ADDR=:7000\n"), 0o600)

			_ = os.Setenv("RACERDASH_DOTENV", dotenv)
			_ = os.Setenv("RACERDASH_ADDR", ":8080")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it fills unset variables without overriding set ones", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.MaxPageSize, convey.ShouldEqual, 40)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8080")
			})
		})

		convey.Convey("When the .env file is malformed", func() {
			dir, _ := os.MkdirTemp("", "racerdash-dotenv")
			defer func() { _ = os.RemoveAll(dir) }()
			dotenv := filepath.Join(dir, ".env")
			_ = os.WriteFile(dotenv, []byte("RACERDASH_ADDR='unterminated\n"), 0o600)
			_ = os.Setenv("RACERDASH_DOTENV", dotenv)
			defer clearConfigEnvVars()

			_, err := config.Load(ctx)

			convey.Convey("Then it should return a load error", func() {
				convey.So(errors.Is(err, config.ErrLoadConfig), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When loading config with invalid YAML file", func() {
			tmpFile := createTempConfigFile(`invalid: yaml: content: [`)
			defer func() { _ = os.Remove(tmpFile) }()

			_ = os.Setenv("RACERDASH_CONFIG", tmpFile)
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return an error", func() {
				convey.So(errors.Is(err, config.ErrLoadConfig), convey.ShouldBeTrue)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When loading config with non-existent file", func() {
			_ = os.Setenv("RACERDASH_CONFIG", "/non/existent/file.yaml")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return an error", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When loading config with empty addr", func() {
			_ = os.Setenv("RACERDASH_ADDR", "")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return a validation error", func() {
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
				convey.So(err.Error(), convey.ShouldContainSubstring, "addr must not be empty")
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When loading config with invalid numeric environment variables", func() {
			_ = os.Setenv("RACERDASH_DEFAULT_PAGE_SIZE", "not_a_number")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return an error", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})
	})
}

// clearConfigEnvVars unsets every RACERDASH_ variable, including ones set by .env files.
func clearConfigEnvVars() {
	for _, kv := range os.Environ() {
		key, _, _ := strings.Cut(kv, "=")
		if strings.HasPrefix(key, "RACERDASH_") {
			_ = os.Unsetenv(key)
		}
	}
}

// createTempConfigFile creates a temporary YAML config file with the given content.
func createTempConfigFile(content string) string {
	tmpFile, err := os.CreateTemp("", "racerdash-config-*.yaml")
	if err != nil {
		panic(err)
	}
	defer func() { _ = tmpFile.Close() }()

	if _, err := tmpFile.WriteString(content); err != nil {
		panic(err)
	}
	return tmpFile.Name()
}
