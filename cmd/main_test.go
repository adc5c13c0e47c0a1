package main

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/smartystreets/goconvey/convey"

	"github.com/okian/racerdash/internal/config"
	"github.com/okian/racerdash/pkg/logger"
	"github.com/okian/racerdash/pkg/metrics"
)

func init() {
	_ = logger.InitWithOptions(logger.Options{Output: io.Discard})
}

func fakeUpstream() *httptest.Server {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/Racer/Details", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `[{"id":1,"name":"Ana","description":"A","totalOfStars":7},{"id":2,"name":"Bo","description":"B","totalOfStars":9}]`)
	})
	mux.HandleFunc("GET /api/ping", func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, "pong "+r.URL.RawQuery)
	})
	return httptest.NewServer(mux)
}

func get(h http.Handler, target string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, target, http.NoBody))
	return w
}

func TestNewHandler(t *testing.T) {
	convey.Convey("Given the wired handler in front of a fake upstream", t, func() {
		up := fakeUpstream()
		defer up.Close()

		ctx := context.Background()
		cfg := config.New(ctx)
		cfg.UpstreamBaseURL = up.URL + "/api"
		cfg.UpstreamTimeoutMS = 2000

		h, err := newHandler(ctx, cfg, logger.Get())
		convey.So(err, convey.ShouldBeNil)

		convey.Convey("When the leaderboard view is requested", func() {
			w := get(h, "/views/leaderboard")

			convey.Convey("Then standings come back ranked", func() {
				convey.So(w.Code, convey.ShouldEqual, http.StatusOK)
				var body struct {
					Data []struct {
						Rank int    `json:"rank"`
						Name string `json:"name"`
					} `json:"data"`
				}
				convey.So(json.Unmarshal(w.Body.Bytes(), &body), convey.ShouldBeNil)
				convey.So(body.Data, convey.ShouldHaveLength, 2)
				convey.So(body.Data[0].Name, convey.ShouldEqual, "Bo")
				convey.So(w.Header().Get("X-Request-ID"), convey.ShouldNotBeEmpty)
			})
		})

		convey.Convey("When an /api path is requested", func() {
			w := get(h, "/api/ping?x=1")

			convey.Convey("Then it is proxied upstream", func() {
				convey.So(w.Code, convey.ShouldEqual, http.StatusOK)
				convey.So(w.Body.String(), convey.ShouldEqual, "pong x=1")
			})
		})

		convey.Convey("When the supporting routes are requested", func() {
			convey.Convey("Then each one answers", func() {
				convey.So(get(h, "/healthz").Code, convey.ShouldEqual, http.StatusOK)
				convey.So(get(h, "/openapi.yaml").Code, convey.ShouldEqual, http.StatusOK)
				convey.So(get(h, "/api-docs").Code, convey.ShouldEqual, http.StatusOK)
				convey.So(get(h, "/").Code, convey.ShouldEqual, http.StatusOK)
			})

			convey.Convey("And metrics are exposed", func() {
				updateSystemMetrics()
				w := get(h, "/metrics")
				convey.So(w.Code, convey.ShouldEqual, http.StatusOK)
				convey.So(w.Body.String(), convey.ShouldContainSubstring, "racerdash_")
			})
		})
	})

	convey.Convey("Given an upstream URL that is not absolute", t, func() {
		ctx := context.Background()
		cfg := config.New(ctx)
		cfg.UpstreamBaseURL = "not a url"

		convey.Convey("Then wiring fails", func() {
			_, err := newHandler(ctx, cfg, logger.Get())
			convey.So(err, convey.ShouldNotBeNil)
		})
	})
}

func TestConfigFromEnv(t *testing.T) {
	convey.Convey("Given environment overrides", t, func() {
		_ = os.Setenv("RACERDASH_ADDR", ":8181")
		_ = os.Setenv("RACERDASH_RESULTS_STRICT_JOIN", "true")
		defer func() {
			_ = os.Unsetenv("RACERDASH_ADDR")
			_ = os.Unsetenv("RACERDASH_RESULTS_STRICT_JOIN")
		}()

		convey.Convey("Then the loaded config carries them", func() {
			cfg, err := config.Load(context.Background())
			convey.So(err, convey.ShouldBeNil)
			convey.So(cfg.Addr, convey.ShouldEqual, ":8181")
			convey.So(cfg.ResultsStrictJoin, convey.ShouldBeTrue)
		})
	})
}

func TestSystemMetricsUpdater(t *testing.T) {
	convey.Convey("Given a short lived context", t, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
		defer cancel()

		convey.Convey("Then the updater samples the gauges and returns once it is done", func() {
			convey.So(func() { startSystemMetricsUpdater(ctx, 10*time.Millisecond) }, convey.ShouldNotPanic)

			families, err := metrics.GetRegistry().Gather()
			convey.So(err, convey.ShouldBeNil)
			var goroutines float64
			for _, f := range families {
				if f.GetName() == "racerdash_dashboard_system_goroutine_count" {
					goroutines = f.GetMetric()[0].GetGauge().GetValue()
				}
			}
			convey.So(goroutines, convey.ShouldBeGreaterThan, 0)
		})
	})
}
