package app

import (
	"fmt"

	"github.com/okian/racerdash/internal/domain/awards"
	"github.com/okian/racerdash/internal/domain/eventlog"
	"github.com/okian/racerdash/internal/domain/model"
	"github.com/okian/racerdash/internal/domain/table"
	"github.com/okian/racerdash/internal/domain/timestamp"
)

// Table names, used for metrics and export file prefixes.
const (
	TableLeaderboard = "leaderboard"
	TableContestant  = "contestant-log"
	TableResults     = "results"
)

const noDate = "—"

// DisplayDate renders a grant date as YYYY/MM/DD, or a dash when unknown.
func DisplayDate(v timestamp.Value) string {
	if !v.Known() {
		return noDate
	}
	return v.Time().Format("2006/01/02")
}

func byTimestamp[T any](ts func(T) timestamp.Value) func(a, b T) int {
	return func(a, b T) int {
		// ascending; the engine reverses for desc
		return -timestamp.CompareDesc(ts(a), ts(b))
	}
}

// LeaderboardColumns are the public standings columns.
func LeaderboardColumns() []table.Column[awards.Standing] {
	return []table.Column[awards.Standing]{
		{ID: "rank", Header: "#", Accessor: func(s awards.Standing) any { return s.Rank }},
		{ID: "name", Header: "Name", Accessor: func(s awards.Standing) any { return s.Name }},
		{ID: "description", Header: "Batch", Accessor: func(s awards.Standing) any { return s.Batch }},
		{ID: "points", Header: "Points", Accessor: func(s awards.Standing) any { return s.Points }},
		{
			ID:            "awards",
			Header:        "Awards",
			DisableSort:   true,
			DisableFilter: true,
			Accessor: func(s awards.Standing) any {
				return fmt.Sprintf("%d/%d/%d/%d",
					s.StarOfCreativity, s.StarOfParticipation, s.MedalOfCreativity, s.MedalOfParticipation)
			},
		},
	}
}

// ContestantLogColumns are the merged activity log columns.
func ContestantLogColumns() []table.Column[model.LogEntry] {
	return []table.Column[model.LogEntry]{
		{ID: "value", Header: "Event", Accessor: func(e model.LogEntry) any { return e.Value }},
		{ID: "reason", Header: "Reason", Accessor: func(e model.LogEntry) any { return e.Reason }},
		{
			ID:       "date",
			Header:   "Date",
			Accessor: func(e model.LogEntry) any { return DisplayDate(e.Timestamp) },
			Compare:  byTimestamp(func(e model.LogEntry) timestamp.Value { return e.Timestamp }),
		},
	}
}

// ResultsColumns are the cross-contestant results columns.
func ResultsColumns() []table.Column[eventlog.ResultRow] {
	return []table.Column[eventlog.ResultRow]{
		{ID: "type", Header: "Type", Accessor: func(r eventlog.ResultRow) any { return kindLabel(r.Kind) }},
		{ID: "contestantName", Header: "Contestant", Accessor: func(r eventlog.ResultRow) any { return r.ContestantName }},
		{ID: "contestantBatch", Header: "Batch", Accessor: func(r eventlog.ResultRow) any { return r.ContestantBatch }},
		{ID: "points", Header: "Points", Accessor: func(r eventlog.ResultRow) any { return r.Points }},
		{ID: "reason", Header: "Reason", Accessor: func(r eventlog.ResultRow) any { return r.Reason }},
		{
			ID:       "date",
			Header:   "Date",
			Accessor: func(r eventlog.ResultRow) any { return DisplayDate(r.Timestamp) },
			Compare:  byTimestamp(func(r eventlog.ResultRow) timestamp.Value { return r.Timestamp }),
		},
	}
}

func kindLabel(k model.Kind) string {
	if k == model.KindPoint {
		return "Points"
	}
	return "Award"
}
