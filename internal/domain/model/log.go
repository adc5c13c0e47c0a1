package model

import "github.com/okian/racerdash/internal/domain/timestamp"

// Kind discriminates merged log entries.
type Kind string

const (
	KindPoint    Kind = "point"
	KindAccolade Kind = "accolade"
)

// LogEntry is one row of a contestant's merged activity log.
type LogEntry struct {
	Kind      Kind            `json:"type"`
	Value     string          `json:"value"`
	Reason    string          `json:"reason"`
	Timestamp timestamp.Value `json:"-"`
	Date      *string         `json:"date"`
	Key       string          `json:"key"`
	// IconType is the accolade type name; empty for points.
	IconType string `json:"iconType,omitempty"`
}
