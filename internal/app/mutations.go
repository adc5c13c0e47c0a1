package app

import (
	"context"
	"strings"

	"github.com/okian/racerdash/internal/adapters/leaderboardapi"
	"github.com/okian/racerdash/internal/domain/model"
	"github.com/okian/racerdash/pkg/logger"
	"github.com/okian/racerdash/pkg/metrics"
)

// Mutation kinds, also used as metric labels.
const (
	KindCreate   = "create"
	KindPoints   = "points"
	KindAccolade = "accolade"
	KindDelete   = "delete"
)

// ContestantInput is the add contestant form.
type ContestantInput struct {
	Name  string `json:"name" validate:"required,max=100"`
	Batch string `json:"batch" validate:"required,max=100"`
}

// PointsInput is the add points form.
type PointsInput struct {
	Points float64 `json:"points" validate:"gt=0"`
	Reason string  `json:"reason" validate:"required,max=500"`
}

// AccoladeInput is the grant accolade form. An empty reason is replaced
// by the client default.
type AccoladeInput struct {
	AccoladeID model.ID `json:"accoladeId" validate:"required"`
	Reason     string   `json:"reason" validate:"max=500"`
}

// LoginInput carries credentials for the upstream login.
type LoginInput struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// ContestantRef identifies the contestant a mutation targets. Name is used
// to reload details afterwards and is looked up by ID when empty.
type ContestantRef struct {
	ID   model.ID
	Name string
}

// MutationResult is the outcome of a submitted mutation. Err is the
// upstream failure, if any. A refresh is attempted either way; its data or
// failure is reported separately.
type MutationResult[T any] struct {
	Kind       string `json:"kind"`
	Notice     string `json:"notice"`
	Err        error  `json:"-"`
	Refreshed  T      `json:"refreshed"`
	RefreshErr error  `json:"-"`
}

// OK reports whether the mutation itself succeeded.
func (r MutationResult[T]) OK() bool { return r.Err == nil }

var notices = map[string][2]string{ //nolint:gochecknoglobals // read-only messages
	KindCreate:   {"Contestant added.", "Failed to add contestant."},
	KindPoints:   {"Points added.", "Failed to add points."},
	KindAccolade: {"Award granted.", "Failed to grant award."},
	KindDelete:   {"Contestant deleted.", "Failed to delete contestant."},
}

func (s *Service) finish(ctx context.Context, kind string, err error) (string, error) {
	outcome := "ok"
	notice := notices[kind][0]
	if err != nil {
		outcome = "error"
		notice = notices[kind][1]
		s.logger.Error(ctx, "mutation failed", logger.String("kind", kind), logger.Error(err))
	} else {
		s.logger.Info(ctx, "mutation applied", logger.String("kind", kind))
	}
	metrics.RecordMutation(kind, outcome)
	return notice, err
}

func rejected(kind string) {
	metrics.RecordMutation(kind, "invalid")
}

// CreateContestant validates in, creates the contestant and reloads the list.
func (s *Service) CreateContestant(ctx context.Context, sess *leaderboardapi.Session, in ContestantInput) (MutationResult[[]model.Contestant], error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Batch = strings.TrimSpace(in.Batch)
	if err := s.validate(in); err != nil {
		rejected(KindCreate)
		return MutationResult[[]model.Contestant]{Kind: KindCreate}, err
	}
	res := MutationResult[[]model.Contestant]{Kind: KindCreate}
	res.Notice, res.Err = s.finish(ctx, KindCreate, s.upstream.CreateContestant(ctx, sess, leaderboardapi.CreateContestantRequest{
		Name:        in.Name,
		Description: in.Batch,
	}))
	res.Refreshed, res.RefreshErr = s.Contestants(ctx, sess)
	return res, nil
}

// DeleteContestant deletes the contestant and reloads the list.
func (s *Service) DeleteContestant(ctx context.Context, sess *leaderboardapi.Session, id model.ID) (MutationResult[[]model.Contestant], error) {
	if id.IsZero() {
		rejected(KindDelete)
		return MutationResult[[]model.Contestant]{Kind: KindDelete}, invalid("id is required")
	}
	res := MutationResult[[]model.Contestant]{Kind: KindDelete}
	res.Notice, res.Err = s.finish(ctx, KindDelete, s.upstream.DeleteContestant(ctx, sess, id))
	res.Refreshed, res.RefreshErr = s.Contestants(ctx, sess)
	return res, nil
}

// AddPoints validates in, grants the points and reloads the contestant.
func (s *Service) AddPoints(ctx context.Context, sess *leaderboardapi.Session, ref ContestantRef, in PointsInput) (MutationResult[ContestantView], error) {
	in.Reason = strings.TrimSpace(in.Reason)
	if err := s.validateRef(ref); err != nil {
		rejected(KindPoints)
		return MutationResult[ContestantView]{Kind: KindPoints}, err
	}
	if err := s.validate(in); err != nil {
		rejected(KindPoints)
		return MutationResult[ContestantView]{Kind: KindPoints}, err
	}
	res := MutationResult[ContestantView]{Kind: KindPoints}
	res.Notice, res.Err = s.finish(ctx, KindPoints, s.upstream.AddPoints(ctx, sess, ref.ID, leaderboardapi.PointGrantRequest{
		Number: in.Points,
		Reason: in.Reason,
	}))
	res.Refreshed, res.RefreshErr = s.reload(ctx, sess, ref)
	return res, nil
}

// GrantAccolade validates in, grants the accolade and reloads the contestant.
func (s *Service) GrantAccolade(ctx context.Context, sess *leaderboardapi.Session, ref ContestantRef, in AccoladeInput) (MutationResult[ContestantView], error) {
	in.Reason = strings.TrimSpace(in.Reason)
	if err := s.validateRef(ref); err != nil {
		rejected(KindAccolade)
		return MutationResult[ContestantView]{Kind: KindAccolade}, err
	}
	if err := s.validate(in); err != nil {
		rejected(KindAccolade)
		return MutationResult[ContestantView]{Kind: KindAccolade}, err
	}
	res := MutationResult[ContestantView]{Kind: KindAccolade}
	res.Notice, res.Err = s.finish(ctx, KindAccolade, s.upstream.GrantAccolade(ctx, sess, ref.ID, leaderboardapi.AccoladeGrantRequest{
		AccoladeID: in.AccoladeID,
		Reason:     in.Reason,
	}))
	res.Refreshed, res.RefreshErr = s.reload(ctx, sess, ref)
	return res, nil
}

func (s *Service) validateRef(ref ContestantRef) error {
	if ref.ID.IsZero() {
		return invalid("id is required")
	}
	return nil
}

// reload fetches the contestant view after a mutation, resolving the name
// from the contestant list when the caller only knows the id.
func (s *Service) reload(ctx context.Context, sess *leaderboardapi.Session, ref ContestantRef) (ContestantView, error) {
	name := ref.Name
	if name == "" {
		list, err := s.Contestants(ctx, sess)
		if err != nil {
			return ContestantView{}, err
		}
		for _, c := range list {
			if c.ID == ref.ID {
				name = c.Name
				break
			}
		}
		if name == "" {
			return ContestantView{}, ErrNotFound
		}
	}
	return s.ContestantLog(ctx, sess, name)
}

// Login signs the session in. With upstream auth the credentials are
// exchanged for a token; otherwise the session is marked signed in locally.
func (s *Service) Login(ctx context.Context, sess *leaderboardapi.Session, in LoginInput) error {
	if !s.authEnabled {
		s.logger.Info(ctx, "local sign in")
		return sess.Begin("")
	}
	in.Username = strings.TrimSpace(in.Username)
	if err := s.validate(in); err != nil {
		return err
	}
	if _, err := s.upstream.Login(ctx, sess, in.Username, in.Password); err != nil {
		s.logger.Warn(ctx, "sign in failed", logger.String("username", in.Username), logger.Error(err))
		return err
	}
	s.logger.Info(ctx, "signed in", logger.String("username", in.Username))
	return nil
}

// Logout ends the session and forgets any stored token.
func (s *Service) Logout(ctx context.Context, sess *leaderboardapi.Session) error {
	s.logger.Info(ctx, "signed out")
	return sess.End()
}
