package table

import "time"

const (
	// DefaultPageSize is the initial page size of every table.
	DefaultPageSize = 10
	// MaxPageSize is the largest of PageSizeOptions. The engine itself
	// accepts any positive size.
	MaxPageSize = 50
	// DefaultFilterDebounce is the pause after the last keystroke before filtering.
	DefaultFilterDebounce = 200 * time.Millisecond
)

// PageSizeOptions are the page sizes offered to users.
var PageSizeOptions = []int{10, 20, 30, 40, 50} //nolint:gochecknoglobals // UI constant

type settings struct {
	pageSize      int
	debounce      time.Duration
	filterColumns []string
	afterFunc     AfterFunc
	onFilter      func(text string)
}

// Option configures an Engine.
type Option func(*settings)

// WithPageSize sets the initial page size.
func WithPageSize(n int) Option {
	return func(s *settings) {
		if n > 0 {
			s.pageSize = n
		}
	}
}

// WithFilterDebounce sets the filter debounce delay; zero filters on every call.
func WithFilterDebounce(d time.Duration) Option {
	return func(s *settings) {
		if d >= 0 {
			s.debounce = d
		}
	}
}

// WithFilterColumns restricts the global filter to the given column ids.
func WithFilterColumns(ids ...string) Option {
	return func(s *settings) {
		s.filterColumns = append([]string(nil), ids...)
	}
}

// WithAfterFunc replaces the timer used for debouncing.
func WithAfterFunc(f AfterFunc) Option {
	return func(s *settings) {
		if f != nil {
			s.afterFunc = f
		}
	}
}

// WithOnFilterApplied registers a callback run after a debounced filter lands.
func WithOnFilterApplied(fn func(text string)) Option {
	return func(s *settings) {
		s.onFilter = fn
	}
}
