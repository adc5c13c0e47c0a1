// Package proxy forwards /api/* requests to the upstream leaderboard API.
package proxy

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httputil"
	"net/url"
	"strings"
	"time"

	"github.com/okian/racerdash/pkg/logger"
	"github.com/okian/racerdash/pkg/metrics"
)

// Prefix is the local path forwarded upstream.
const Prefix = "/api/"

// errorBody is the JSON returned when the upstream cannot be reached.
type errorBody struct {
	Error   string `json:"error"`
	Details string `json:"details"`
}

// Option configures the proxy.
type Option func(*config)

type config struct {
	transport http.RoundTripper
	timeout   time.Duration
	log       logger.Logger
}

// WithTransport replaces the upstream round tripper.
func WithTransport(rt http.RoundTripper) Option {
	return func(c *config) {
		if rt != nil {
			c.transport = rt
		}
	}
}

// WithTimeout bounds each proxied request; zero keeps the transport default.
func WithTimeout(d time.Duration) Option {
	return func(c *config) { c.timeout = d }
}

// WithLogger sets the logger.
func WithLogger(l logger.Logger) Option {
	return func(c *config) {
		if l != nil {
			c.log = l
		}
	}
}

// New returns a handler forwarding <Prefix><rest>?<query> to <upstream>/<rest>?<query>.
// Method, body, query and headers pass through; Host becomes the upstream host.
func New(upstream *url.URL, opts ...Option) http.Handler {
	cfg := config{transport: http.DefaultTransport}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.log == nil {
		cfg.log = logger.Get()
	}
	log := cfg.log.Named("proxy")

	base := *upstream
	if base.Path == "" {
		base.Path = "/"
	}

	rp := &httputil.ReverseProxy{
		Rewrite: func(r *httputil.ProxyRequest) {
			rest := strings.TrimPrefix(r.In.URL.EscapedPath(), strings.TrimSuffix(Prefix, "/"))
			out := base.JoinPath(strings.TrimPrefix(rest, "/"))
			out.RawQuery = r.In.URL.RawQuery
			r.Out.URL = out
			r.Out.Host = base.Host
		},
		Transport: cfg.transport,
		ErrorHandler: func(w http.ResponseWriter, r *http.Request, err error) {
			metrics.RecordProxyError()
			log.Warn(r.Context(), "proxy error",
				logger.String("method", r.Method),
				logger.String("path", r.URL.Path),
				logger.Error(err))
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusBadGateway)
			_ = json.NewEncoder(w).Encode(errorBody{Error: "Proxy error", Details: err.Error()})
		},
	}

	if cfg.timeout <= 0 {
		return rp
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), cfg.timeout)
		defer cancel()
		rp.ServeHTTP(w, r.WithContext(ctx))
	})
}

// Parse validates an upstream base URL for New.
func Parse(raw string) (*url.URL, error) {
	u, err := url.Parse(strings.TrimRight(raw, "/"))
	if err != nil {
		return nil, fmt.Errorf("proxy upstream: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("proxy upstream %q: not an absolute URL", raw)
	}
	return u, nil
}
