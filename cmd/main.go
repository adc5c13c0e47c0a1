package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/okian/racerdash/internal/adapters/http/api"
	"github.com/okian/racerdash/internal/adapters/http/proxy"
	"github.com/okian/racerdash/internal/adapters/http/site"
	"github.com/okian/racerdash/internal/adapters/http/swagger"
	"github.com/okian/racerdash/internal/adapters/leaderboardapi"
	"github.com/okian/racerdash/internal/app"
	"github.com/okian/racerdash/internal/config"
	"github.com/okian/racerdash/internal/domain/export"
	"github.com/okian/racerdash/pkg/logger"
	"github.com/okian/racerdash/pkg/metrics"
)

// HTTP server timeout constants.
const (
	readTimeout       = 10 * time.Second
	writeTimeout      = 30 * time.Second
	idleTimeout       = 60 * time.Second
	readHeaderTimeout = 5 * time.Second
	shutdownTimeout   = 30 * time.Second
)

func main() {
	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load configuration (defaults -> optional file -> .env -> env)
	cfg, err := config.Load(ctx)
	if err != nil {
		// logger isn't configured yet
		os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		os.Exit(1)
	}

	if err := logger.InitWithOptions(logger.Options{Format: cfg.LogFormat}); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	log := logger.Get()
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		log.Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	metrics.Init(metrics.WithRefreshInterval(cfg.MetricsRefresh()))

	handler, err := newHandler(ctx, cfg, log)
	if err != nil {
		log.Error(ctx, "failed to build handlers", logger.Error(err))
		os.Exit(1)
	}

	go startSystemMetricsUpdater(ctx, metrics.RefreshInterval())

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           handler,
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	go func() {
		log.Info(ctx, "starting HTTP server",
			logger.String("addr", cfg.Addr),
			logger.String("upstream", cfg.UpstreamBaseURL),
			logger.Bool("auth_enabled", cfg.AuthEnabled),
			logger.Bool("results_strict_join", cfg.ResultsStrictJoin))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error(ctx, "HTTP server failed", logger.Error(err))
			stop()
		}
	}()

	<-ctx.Done()
	log.Info(ctx, "shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error(ctx, "server shutdown failed", logger.Error(err))
	}
	log.Info(ctx, "server stopped")
}

// newHandler wires the upstream client, the dashboard service and every
// route onto one mux.
func newHandler(ctx context.Context, cfg *config.Config, log logger.Logger) (http.Handler, error) {
	client, err := leaderboardapi.New(cfg.UpstreamBaseURL,
		leaderboardapi.WithTimeout(cfg.UpstreamTimeout()),
		leaderboardapi.WithLogger(log),
	)
	if err != nil {
		return nil, fmt.Errorf("upstream client: %w", err)
	}
	upstream, err := proxy.Parse(cfg.UpstreamBaseURL)
	if err != nil {
		return nil, fmt.Errorf("proxy: %w", err)
	}

	svc := app.New(client,
		app.WithLogger(log),
		app.WithDetailWorkers(cfg.DetailFetchWorkers),
		app.WithStrictJoin(cfg.ResultsStrictJoin),
		app.WithAuthEnabled(cfg.AuthEnabled),
	)
	apiServer := api.NewServer(svc,
		api.WithLogger(log),
		api.WithPageSizes(cfg.DefaultPageSize, cfg.MaxPageSize),
		api.WithExportOptions(export.Options{SheetName: cfg.ExportSheetName, ColumnWidth: cfg.ExportColumnWidth}),
	)

	mux := http.NewServeMux()
	apiServer.Register(ctx, mux)
	mux.Handle(proxy.Prefix, proxy.New(upstream,
		proxy.WithTimeout(cfg.UpstreamTimeout()),
		proxy.WithLogger(log),
	))
	mux.Handle("GET /metrics", promhttp.HandlerFor(metrics.GetRegistry(), promhttp.HandlerOpts{}))
	swagger.Register(ctx, mux)
	site.Register(ctx, mux)

	return api.RequestID(mux), nil
}

// startSystemMetricsUpdater samples process gauges every interval until ctx
// is done.
func startSystemMetricsUpdater(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	updateSystemMetrics()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			updateSystemMetrics()
		}
	}
}

func updateSystemMetrics() {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	metrics.UpdateSystemMemoryUsage(m.Alloc)
	metrics.UpdateSystemGoroutineCount(runtime.NumGoroutine())
}
