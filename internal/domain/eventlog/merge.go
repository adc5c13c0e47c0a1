// Package eventlog unifies point grants and accolade grants into one
// chronologically ordered, type-discriminated activity log.
package eventlog

import (
	"slices"
	"strconv"

	"github.com/okian/racerdash/internal/domain/model"
	"github.com/okian/racerdash/internal/domain/timestamp"
)

// DefaultAccoladeReason is shown for accolades granted without a reason.
const DefaultAccoladeReason = "Granted"

// Merge returns points followed by accolades, stable sorted newest first
// with undated entries last. The inputs are not modified.
func Merge(points []model.PointGrant, accolades []model.AccoladeGrant, catalog model.Catalog) []model.LogEntry {
	out := make([]model.LogEntry, 0, len(points)+len(accolades))
	for i, p := range points {
		out = append(out, model.LogEntry{
			Kind:      model.KindPoint,
			Value:     "+" + FormatPoints(p.Number),
			Reason:    p.Reason,
			Timestamp: timestamp.ParsePtr(p.DateTime),
			Date:      p.DateTime,
			Key:       entryKey("point", p.ID, i),
		})
	}
	for i, a := range accolades {
		reason := a.Reason
		if reason == "" {
			reason = DefaultAccoladeReason
		}
		out = append(out, model.LogEntry{
			Kind:      model.KindAccolade,
			Value:     accoladeLabel(a.Name, catalog),
			Reason:    reason,
			Timestamp: timestamp.ParsePtr(a.DateTime),
			Date:      a.DateTime,
			Key:       entryKey("accolade", a.ID, i),
			IconType:  a.Name,
		})
	}
	slices.SortStableFunc(out, func(a, b model.LogEntry) int {
		return timestamp.CompareDesc(a.Timestamp, b.Timestamp)
	})
	return out
}

// FormatPoints renders a point magnitude without trailing zeros.
func FormatPoints(n float64) string {
	return strconv.FormatFloat(n, 'f', -1, 64)
}

func accoladeLabel(name string, catalog model.Catalog) string {
	if t, ok := catalog.Lookup(name); ok && t.Description != "" {
		return t.Description
	}
	return name
}

func entryKey(prefix string, id model.ID, idx int) string {
	if !id.IsZero() {
		return prefix + "-" + id.String()
	}
	return prefix + "-" + strconv.Itoa(idx)
}
