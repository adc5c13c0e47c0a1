package app

import (
	"context"
	"errors"
	"regexp"
	"strings"

	"github.com/okian/racerdash/internal/adapters/fanout"
	"github.com/okian/racerdash/internal/adapters/leaderboardapi"
	"github.com/okian/racerdash/internal/domain/awards"
	"github.com/okian/racerdash/internal/domain/eventlog"
	"github.com/okian/racerdash/internal/domain/model"
	"github.com/okian/racerdash/internal/domain/timestamp"
	"github.com/okian/racerdash/pkg/logger"
)

var dateOnly = regexp.MustCompile(`^\d{4}[-/]\d{2}[-/]\d{2}$`)

// ContestantView is everything the contestant details page renders.
type ContestantView struct {
	Contestant model.Contestant     `json:"contestant"`
	Log        []model.LogEntry     `json:"log"`
	Shelf      []awards.Badge       `json:"shelf"`
	Catalog    []model.AccoladeType `json:"catalog"`
}

// DetailFailure reports one contestant whose details could not be loaded.
type DetailFailure struct {
	Name  string `json:"name"`
	Error string `json:"error"`
}

// ResultsView is the cross-contestant event list.
type ResultsView struct {
	Rows     []eventlog.ResultRow `json:"rows"`
	Failures []DetailFailure      `json:"failures,omitempty"`
}

// Contestants lists every contestant as delivered by upstream.
func (s *Service) Contestants(ctx context.Context, sess *leaderboardapi.Session) ([]model.Contestant, error) {
	list, err := s.upstream.Contestants(ctx, sess)
	if err != nil {
		s.logger.Error(ctx, "failed to load contestants", logger.Error(err))
		return nil, fetchErr("contestants", err)
	}
	return list, nil
}

// Leaderboard ranks every contestant for the public standings.
func (s *Service) Leaderboard(ctx context.Context, sess *leaderboardapi.Session) ([]awards.Standing, error) {
	list, err := s.upstream.Contestants(ctx, sess)
	if err != nil {
		s.logger.Error(ctx, "failed to load leaderboard", logger.Error(err))
		return nil, fetchErr("leaderboard", err)
	}
	return awards.Standings(list), nil
}

// ContestantLog loads a contestant's details and merges its grants into one
// log. When the accolade catalog cannot be loaded the log falls back to raw
// accolade names.
func (s *Service) ContestantLog(ctx context.Context, sess *leaderboardapi.Session, name string) (ContestantView, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return ContestantView{}, invalid("name is required")
	}
	c, err := s.upstream.ContestantDetails(ctx, sess, name)
	if errors.Is(err, leaderboardapi.ErrDetailNotFound) {
		return ContestantView{}, ErrNotFound
	}
	if err != nil {
		s.logger.Error(ctx, "failed to load contestant details",
			logger.String("name", name),
			logger.Error(err),
		)
		return ContestantView{}, fetchErr("contestant", err)
	}

	types, err := s.upstream.Accolades(ctx, sess)
	if err != nil {
		s.logger.Warn(ctx, "accolade catalog unavailable, showing raw names", logger.Error(err))
		types = nil
	}
	return ContestantView{
		Contestant: c,
		Log:        eventlog.Merge(c.Points, c.Accolades, model.NewCatalog(types)),
		Shelf:      awards.Shelf(c.Accolades),
		Catalog:    types,
	}, nil
}

// AccoladeCatalog lists the accolade types that can be granted.
func (s *Service) AccoladeCatalog(ctx context.Context, sess *leaderboardapi.Session) ([]model.AccoladeType, error) {
	types, err := s.upstream.Accolades(ctx, sess)
	if err != nil {
		s.logger.Error(ctx, "failed to load accolade catalog", logger.Error(err))
		return nil, fetchErr("accolades", err)
	}
	return types, nil
}

// DateRange parses the results filter bounds. Empty bounds are open; a
// date-only upper bound covers the whole day.
func DateRange(from, to string) (timestamp.Value, timestamp.Value, error) {
	lo, err := parseBound("from", from)
	if err != nil {
		return timestamp.Unknown, timestamp.Unknown, err
	}
	hi, err := parseBound("to", to)
	if err != nil {
		return timestamp.Unknown, timestamp.Unknown, err
	}
	if hi.Known() && dateOnly.MatchString(strings.TrimSpace(to)) {
		hi = timestamp.EndOfDay(hi)
	}
	if lo.Known() && hi.Known() && lo.Time().After(hi.Time()) {
		return timestamp.Unknown, timestamp.Unknown, invalid("from must not be after to")
	}
	return lo, hi, nil
}

func parseBound(field, raw string) (timestamp.Value, error) {
	if strings.TrimSpace(raw) == "" {
		return timestamp.Unknown, nil
	}
	v := timestamp.Parse(raw)
	if !v.Known() {
		return timestamp.Unknown, invalid("%s is not a valid date", field)
	}
	return v, nil
}

// Results fetches every contestant's details concurrently and flattens
// their grants. Contestants whose details are missing are skipped. Other
// failures are reported per contestant, or fail the whole view when strict
// joining is enabled.
func (s *Service) Results(ctx context.Context, sess *leaderboardapi.Session, from, to string) (ResultsView, error) {
	lo, hi, err := DateRange(from, to)
	if err != nil {
		return ResultsView{}, err
	}
	list, err := s.upstream.Contestants(ctx, sess)
	if err != nil {
		s.logger.Error(ctx, "failed to load contestants for results", logger.Error(err))
		return ResultsView{}, fetchErr("results", err)
	}

	fetch := func(ctx context.Context, c model.Contestant) (*model.Contestant, error) {
		d, err := s.upstream.ContestantDetails(ctx, sess, c.Name)
		if errors.Is(err, leaderboardapi.ErrDetailNotFound) {
			return nil, nil
		}
		if err != nil {
			return nil, err
		}
		return &d, nil
	}
	settled := fanout.Run(ctx, list, fetch,
		fanout.WithWorkers(s.detailWorkers),
		fanout.WithLogger(s.logger),
		fanout.WithName("details"),
	)

	var (
		found    []*model.Contestant
		failures []DetailFailure
	)
	if s.strictJoin {
		found, err = fanout.Strict(settled)
		if err != nil {
			return ResultsView{}, fetchErr("results", err)
		}
	} else {
		var failed []fanout.Result[model.Contestant, *model.Contestant]
		found, failed = fanout.Partial(settled)
		for _, f := range failed {
			failures = append(failures, DetailFailure{Name: f.Input.Name, Error: f.Err.Error()})
		}
	}

	details := make([]model.Contestant, 0, len(found))
	for _, d := range found {
		if d != nil {
			details = append(details, *d)
		}
	}
	return ResultsView{
		Rows:     eventlog.Results(details, lo, hi),
		Failures: failures,
	}, nil
}
