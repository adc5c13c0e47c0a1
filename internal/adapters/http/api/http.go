// Package api serves the dashboard views, exports, mutations and session
// endpoints over HTTP.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/okian/racerdash/internal/adapters/leaderboardapi"
	"github.com/okian/racerdash/internal/app"
	"github.com/okian/racerdash/internal/domain/awards"
	"github.com/okian/racerdash/internal/domain/export"
	"github.com/okian/racerdash/internal/domain/model"
	"github.com/okian/racerdash/internal/domain/table"
	"github.com/okian/racerdash/pkg/logger"
	"github.com/okian/racerdash/pkg/metrics"
)

const maxBodyBytes = 1 << 20

// Dependencies required by HTTP handlers. *app.Service satisfies it.
type Dependencies interface {
	Leaderboard(ctx context.Context, s *leaderboardapi.Session) ([]awards.Standing, error)
	ContestantLog(ctx context.Context, s *leaderboardapi.Session, name string) (app.ContestantView, error)
	Results(ctx context.Context, s *leaderboardapi.Session, from, to string) (app.ResultsView, error)

	CreateContestant(ctx context.Context, s *leaderboardapi.Session, in app.ContestantInput) (app.MutationResult[[]model.Contestant], error)
	DeleteContestant(ctx context.Context, s *leaderboardapi.Session, id model.ID) (app.MutationResult[[]model.Contestant], error)
	AddPoints(ctx context.Context, s *leaderboardapi.Session, ref app.ContestantRef, in app.PointsInput) (app.MutationResult[app.ContestantView], error)
	GrantAccolade(ctx context.Context, s *leaderboardapi.Session, ref app.ContestantRef, in app.AccoladeInput) (app.MutationResult[app.ContestantView], error)

	Login(ctx context.Context, s *leaderboardapi.Session, in app.LoginInput) error
	AuthEnabled() bool
}

// Server wires HTTP routes for the dashboard.
type Server struct {
	deps        Dependencies
	logger      logger.Logger
	pageSize    int
	maxPageSize int
	export      export.Options
	now         func() time.Time
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the logger.
func WithLogger(l logger.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithPageSizes sets the default and maximum table page sizes.
func WithPageSizes(def, maxSize int) Option {
	return func(s *Server) {
		if def > 0 {
			s.pageSize = def
		}
		if maxSize >= s.pageSize {
			s.maxPageSize = maxSize
		}
	}
}

// WithExportOptions sets the workbook layout of exports.
func WithExportOptions(o export.Options) Option {
	return func(s *Server) { s.export = o }
}

// WithClock sets the time source used for export file names.
func WithClock(now func() time.Time) Option {
	return func(s *Server) {
		if now != nil {
			s.now = now
		}
	}
}

// NewServer creates a new API server.
func NewServer(deps Dependencies, opts ...Option) *Server {
	s := &Server{
		deps:        deps,
		pageSize:    table.DefaultPageSize,
		maxPageSize: table.MaxPageSize,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = logger.Get()
	}
	s.logger = s.logger.Named("api")
	return s
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	if mux == nil {
		panic("mux is nil")
	}
	mux.HandleFunc("GET /healthz", MetricsMiddleware(s.handleHealth, "healthz"))

	mux.HandleFunc("GET /views/leaderboard", MetricsMiddleware(s.handleLeaderboard, "views_leaderboard"))
	mux.HandleFunc("GET /views/contestants/{name}/log", MetricsMiddleware(s.handleContestantLog, "views_contestant_log"))
	mux.HandleFunc("GET /views/results", MetricsMiddleware(s.handleResults, "views_results"))

	mux.HandleFunc("GET /export/leaderboard.xlsx", MetricsMiddleware(s.handleExportLeaderboard, "export_leaderboard"))
	mux.HandleFunc("GET /export/contestants/{name}/log.xlsx", MetricsMiddleware(s.handleExportContestantLog, "export_contestant_log"))
	mux.HandleFunc("GET /export/results.xlsx", MetricsMiddleware(s.handleExportResults, "export_results"))

	mux.HandleFunc("POST /views/contestants", MetricsMiddleware(s.handleCreateContestant, "create_contestant"))
	mux.HandleFunc("POST /views/contestants/{id}/points", MetricsMiddleware(s.handleAddPoints, "add_points"))
	mux.HandleFunc("POST /views/contestants/{id}/accolades", MetricsMiddleware(s.handleGrantAccolade, "grant_accolade"))
	mux.HandleFunc("DELETE /views/contestants/{id}", MetricsMiddleware(s.handleDeleteContestant, "delete_contestant"))

	mux.HandleFunc("POST /session/login", MetricsMiddleware(s.handleLogin, "session_login"))
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// fail maps err onto a status and code and writes it.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, op string, err error) {
	reply := func(status int, code string, err error) {
		metrics.RecordErrorByComponent("api", code)
		writeError(w, status, code, err)
	}
	var verr *app.ValidationError
	switch {
	case errors.As(err, &verr):
		reply(http.StatusBadRequest, "validation_failed", verr)
	case errors.Is(err, ErrBadRequest),
		errors.Is(err, table.ErrUnknownColumn),
		errors.Is(err, table.ErrNotSortable),
		errors.Is(err, table.ErrInvalidDirection),
		errors.Is(err, table.ErrInvalidPageSize):
		reply(http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
	case errors.Is(err, app.ErrNotFound):
		reply(http.StatusNotFound, "not_found", WrapKind(op, ErrNotFound, err))
	case leaderboardapi.IsUnauthorized(err):
		reply(http.StatusUnauthorized, "unauthorized", WrapKind(op, ErrUnauthorized, err))
	case errors.Is(err, export.ErrExport):
		s.logger.Error(r.Context(), "export failed",
			logger.String("op", op),
			logger.String("request_id", RequestIDFrom(r.Context())),
			logger.Error(err))
		reply(http.StatusInternalServerError, "export_failed", WrapKind(op, ErrExportFailed, err))
	case errors.Is(err, app.ErrFetch),
		errors.Is(err, leaderboardapi.ErrTransport),
		errors.Is(err, leaderboardapi.ErrStatus),
		errors.Is(err, leaderboardapi.ErrDecode),
		errors.Is(err, leaderboardapi.ErrEmptyToken):
		reply(http.StatusBadGateway, "upstream_error", WrapKind(op, ErrUpstream, err))
	default:
		s.logger.Error(r.Context(), "request failed",
			logger.String("op", op),
			logger.String("request_id", RequestIDFrom(r.Context())),
			logger.Error(err))
		reply(http.StatusInternalServerError, "internal_error", Wrap(op, err))
	}
}

// sessionFrom builds the caller's session from an Authorization header.
func sessionFrom(r *http.Request) *leaderboardapi.Session {
	h := r.Header.Get("Authorization")
	token, ok := strings.CutPrefix(h, "Bearer ")
	if !ok {
		return leaderboardapi.SessionFromToken("")
	}
	return leaderboardapi.SessionFromToken(strings.TrimSpace(token))
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil {
		return &app.ValidationError{Message: "invalid JSON body"}
	}
	return nil
}
