package config_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/okian/racerdash/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfig_New(t *testing.T) {
	convey.Convey("Given a new config with default options", t, func() {
		cfg := config.New(context.Background())

		convey.Convey("Then it should have sensible defaults", func() {
			convey.So(cfg.Addr, convey.ShouldEqual, ":9080")
			convey.So(cfg.UpstreamBaseURL, convey.ShouldEqual, "https://leaderboard.runasp.net/api")
			convey.So(cfg.FilterDebounce(), convey.ShouldEqual, 200*time.Millisecond)
			convey.So(cfg.UpstreamTimeout(), convey.ShouldEqual, time.Duration(0))
			convey.So(cfg.DefaultPageSize, convey.ShouldEqual, 10)
			convey.So(cfg.MaxPageSize, convey.ShouldEqual, 50)
			convey.So(cfg.ExportColumnWidth, convey.ShouldEqual, 16.0)
			convey.So(cfg.ResultsStrictJoin, convey.ShouldBeFalse)
			convey.So(cfg.MetricsRefresh(), convey.ShouldEqual, 10*time.Second)
			convey.So(cfg.Validate(), convey.ShouldBeNil)
		})
	})
}

func TestConfig_Validate(t *testing.T) {
	convey.Convey("Given a default config", t, func() {
		cfg := config.New(context.Background())

		convey.Convey("When the upstream URL is relative", func() {
			cfg.UpstreamBaseURL = "/api"

			convey.Convey("Then validation fails with ErrInvalidConfig", func() {
				err := cfg.Validate()
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
				convey.So(err.Error(), convey.ShouldContainSubstring, "absolute URL")
			})
		})

		convey.Convey("When max page size is below the default", func() {
			cfg.MaxPageSize = 5

			convey.Convey("Then validation fails", func() {
				convey.So(cfg.Validate(), convey.ShouldNotBeNil)
			})
		})

		convey.Convey("When the log format is unknown", func() {
			cfg.LogFormat = "xml"

			convey.Convey("Then validation fails", func() {
				convey.So(errors.Is(cfg.Validate(), config.ErrInvalidConfig), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When the metrics refresh interval is zero", func() {
			cfg.MetricsRefreshMS = 0

			convey.Convey("Then validation fails", func() {
				err := cfg.Validate()
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
				convey.So(err.Error(), convey.ShouldContainSubstring, "metrics_refresh_ms")
			})
		})

		convey.Convey("When no workers are allowed", func() {
			cfg.DetailFetchWorkers = 0

			convey.Convey("Then validation fails", func() {
				convey.So(cfg.Validate(), convey.ShouldNotBeNil)
			})
		})
	})
}
