// Package app holds the dashboard use cases shared by the HTTP server and
// the console: loading views, validating input and running mutations
// against the upstream leaderboard API.
package app

import (
	"context"

	"github.com/go-playground/validator/v10"

	"github.com/okian/racerdash/internal/adapters/leaderboardapi"
	"github.com/okian/racerdash/internal/domain/model"
	"github.com/okian/racerdash/pkg/logger"
)

const defaultDetailWorkers = 8

// Upstream is the subset of the leaderboard API the service uses.
type Upstream interface {
	Contestants(ctx context.Context, s *leaderboardapi.Session) ([]model.Contestant, error)
	ContestantDetails(ctx context.Context, s *leaderboardapi.Session, name string) (model.Contestant, error)
	CreateContestant(ctx context.Context, s *leaderboardapi.Session, req leaderboardapi.CreateContestantRequest) error
	AddPoints(ctx context.Context, s *leaderboardapi.Session, id model.ID, req leaderboardapi.PointGrantRequest) error
	GrantAccolade(ctx context.Context, s *leaderboardapi.Session, id model.ID, req leaderboardapi.AccoladeGrantRequest) error
	DeleteContestant(ctx context.Context, s *leaderboardapi.Session, id model.ID) error
	Accolades(ctx context.Context, s *leaderboardapi.Session) ([]model.AccoladeType, error)
	Login(ctx context.Context, s *leaderboardapi.Session, username, password string) (string, error)
}

// Service implements the dashboard views and mutations.
type Service struct {
	upstream      Upstream
	logger        logger.Logger
	validator     *validator.Validate
	detailWorkers int
	strictJoin    bool
	authEnabled   bool
}

// Option is a functional option for configuring the service.
type Option func(*Service)

// WithLogger sets the logger.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithDetailWorkers bounds concurrent detail fetches of the results view.
func WithDetailWorkers(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.detailWorkers = n
		}
	}
}

// WithStrictJoin makes the results view fail when any detail fetch fails.
func WithStrictJoin(strict bool) Option {
	return func(s *Service) {
		s.strictJoin = strict
	}
}

// WithAuthEnabled makes Login call the upstream. When disabled, login only
// marks the session as signed in.
func WithAuthEnabled(enabled bool) Option {
	return func(s *Service) {
		s.authEnabled = enabled
	}
}

// New constructs a Service over upstream.
func New(upstream Upstream, opts ...Option) *Service {
	s := &Service{
		upstream:      upstream,
		validator:     newValidator(),
		detailWorkers: defaultDetailWorkers,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = logger.Get()
	}
	s.logger = s.logger.Named("app")
	return s
}

// AuthEnabled reports whether Login goes to the upstream.
func (s *Service) AuthEnabled() bool { return s.authEnabled }

// StrictJoin reports whether the results view is all-or-nothing.
func (s *Service) StrictJoin() bool { return s.strictJoin }
