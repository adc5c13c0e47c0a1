package eventlog

import (
	"slices"
	"strconv"

	"github.com/okian/racerdash/internal/domain/model"
	"github.com/okian/racerdash/internal/domain/timestamp"
)

// ResultsAccoladeReason is shown in the results view when an accolade has no reason.
const ResultsAccoladeReason = "—"

// ResultRow is one event of the cross-contestant results view.
type ResultRow struct {
	Kind            model.Kind      `json:"type"`
	ContestantName  string          `json:"contestantName"`
	ContestantBatch string          `json:"contestantBatch"`
	Points          float64         `json:"points"`
	Reason          string          `json:"reason"`
	Date            *string         `json:"date"`
	Timestamp       timestamp.Value `json:"-"`
	Key             string          `json:"key"`
}

// Results flattens every contestant's grants, keeps events inside the
// inclusive [from, to] range (undated events always stay) and orders them
// newest first with undated events last. Accolades carry zero points.
func Results(contestants []model.Contestant, from, to timestamp.Value) []ResultRow {
	var out []ResultRow
	for _, c := range contestants {
		ck := c.Key()
		for i, p := range c.Points {
			out = append(out, ResultRow{
				Kind:            model.KindPoint,
				ContestantName:  c.Name,
				ContestantBatch: c.Batch,
				Points:          p.Number,
				Reason:          p.Reason,
				Date:            p.DateTime,
				Timestamp:       timestamp.ParsePtr(p.DateTime),
				Key:             rowKey("p", ck, p.ID, i),
			})
		}
		for i, a := range c.Accolades {
			reason := a.Reason
			if reason == "" {
				reason = ResultsAccoladeReason
			}
			out = append(out, ResultRow{
				Kind:            model.KindAccolade,
				ContestantName:  c.Name,
				ContestantBatch: c.Batch,
				Reason:          reason,
				Date:            a.DateTime,
				Timestamp:       timestamp.ParsePtr(a.DateTime),
				Key:             rowKey("a", ck, a.ID, i),
			})
		}
	}
	out = slices.DeleteFunc(out, func(r ResultRow) bool {
		return !timestamp.InRange(r.Timestamp, from, to)
	})
	slices.SortStableFunc(out, func(a, b ResultRow) int {
		return timestamp.CompareDesc(a.Timestamp, b.Timestamp)
	})
	return out
}

func rowKey(prefix, contestant string, id model.ID, idx int) string {
	suffix := strconv.Itoa(idx)
	if !id.IsZero() {
		suffix = id.String()
	}
	return prefix + "-" + contestant + "-" + suffix
}
