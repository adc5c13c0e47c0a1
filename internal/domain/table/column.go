package table

import (
	"fmt"
	"strings"
)

// ActionsColumnID is reserved for interactive controls. It is never
// filtered, sorted or exported whatever its flags say.
const ActionsColumnID = "actions"

// Column describes one column of a table over rows of type T.
type Column[T any] struct {
	// ID is unique within a table and used by the sort and export code.
	ID string
	// Header is the display text; export falls back to ID when empty.
	Header string
	// Accessor returns the cell value. Columns without one only render.
	Accessor func(T) any
	// Compare, when set, replaces value comparison for sorting.
	Compare func(a, b T) int

	DisableSort   bool
	DisableFilter bool
	DisableExport bool
}

// HeaderText is the header, or the id when the header is empty.
func (c Column[T]) HeaderText() string {
	if c.Header != "" {
		return c.Header
	}
	return c.ID
}

// Sortable reports whether the column can be sorted.
func (c Column[T]) Sortable() bool {
	return c.ID != ActionsColumnID && !c.DisableSort && (c.Compare != nil || c.Accessor != nil)
}

// Filterable reports whether the column takes part in the global filter.
func (c Column[T]) Filterable() bool {
	return c.ID != ActionsColumnID && !c.DisableFilter && c.Accessor != nil
}

// Exportable reports whether the column is written by the exporter.
func (c Column[T]) Exportable() bool {
	return c.ID != ActionsColumnID && !c.DisableExport && c.Accessor != nil
}

// Value returns the cell value for row, nil when the column has no accessor.
func (c Column[T]) Value(row T) any {
	if c.Accessor == nil {
		return nil
	}
	return c.Accessor(row)
}

// Direction is a sort direction. The zero value means unsorted.
type Direction int

const (
	None Direction = iota
	Asc
	Desc
)

func (d Direction) String() string {
	switch d {
	case Asc:
		return "asc"
	case Desc:
		return "desc"
	default:
		return "none"
	}
}

// Next is the toggle cycle: none -> asc -> desc -> none.
func (d Direction) Next() Direction {
	switch d {
	case None:
		return Asc
	case Asc:
		return Desc
	default:
		return None
	}
}

// ParseDirection reads asc, desc, none or the empty string.
func ParseDirection(s string) (Direction, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "none":
		return None, nil
	case "asc":
		return Asc, nil
	case "desc":
		return Desc, nil
	default:
		return None, fmt.Errorf("%w: %q", ErrInvalidDirection, s)
	}
}

// Sort is the single active sort key.
type Sort struct {
	ColumnID  string    `json:"column,omitempty"`
	Direction Direction `json:"-"`
}

// Active reports whether a column is sorted.
func (s Sort) Active() bool { return s.ColumnID != "" && s.Direction != None }
