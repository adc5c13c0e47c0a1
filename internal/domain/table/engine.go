// Package table implements the filter, sort and paginate engine behind
// every list view, independent of how the rows are rendered.
package table

import (
	"fmt"
	"slices"
	"strings"
	"sync"
)

// NoMatchesPlaceholder is rendered as the single row of an empty page.
const NoMatchesPlaceholder = "No matching records"

// View is a rendered page with its metadata.
type View[T any] struct {
	Rows          []T
	Empty         bool
	Placeholder   string
	PageIndex     int
	PageCount     int
	PageSize      int
	FilteredCount int
	TotalCount    int
	CanPrev       bool
	CanNext       bool
	Sort          Sort
	FilterText    string
}

// Engine holds table state over rows of type T. Rows are always processed
// as filter, then sort, then paginate over the full dataset. It is safe for
// concurrent use since the debounced filter lands on a timer goroutine.
type Engine[T any] struct {
	mu        sync.Mutex
	rows      []T
	cols      []Column[T]
	filter    string
	sort      Sort
	pageIndex int
	pageSize  int
	filterSet map[string]bool
	onFilter  func(string)
	debounce  *Debouncer
}

// New creates an engine over rows and columns.
func New[T any](rows []T, cols []Column[T], opts ...Option) *Engine[T] {
	s := settings{
		pageSize:  DefaultPageSize,
		debounce:  DefaultFilterDebounce,
		afterFunc: StdAfterFunc,
	}
	for _, opt := range opts {
		opt(&s)
	}
	e := &Engine[T]{
		rows:     rows,
		cols:     slices.Clone(cols),
		pageSize: s.pageSize,
		onFilter: s.onFilter,
		debounce: NewDebouncer(s.debounce, s.afterFunc),
	}
	if len(s.filterColumns) > 0 {
		e.filterSet = make(map[string]bool, len(s.filterColumns))
		for _, id := range s.filterColumns {
			e.filterSet[id] = true
		}
	}
	return e
}

// Columns returns the column descriptors in table order.
func (e *Engine[T]) Columns() []Column[T] {
	return slices.Clone(e.cols)
}

// SetRows replaces the dataset and clamps the page index.
func (e *Engine[T]) SetRows(rows []T) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.rows = rows
	e.clampLocked()
}

// SetFilterText schedules text as the global filter. Only the last value
// of a burst is applied, once the debounce delay has passed.
func (e *Engine[T]) SetFilterText(text string) {
	e.debounce.Trigger(func() {
		e.ApplyFilter(text)
		if e.onFilter != nil {
			e.onFilter(text)
		}
	})
}

// ApplyFilter sets the global filter immediately.
func (e *Engine[T]) ApplyFilter(text string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.filter = text
	e.clampLocked()
}

// Flush applies a pending debounced filter now.
func (e *Engine[T]) Flush() bool {
	return e.debounce.Flush()
}

// FilterPending reports whether a debounced filter has not landed yet.
func (e *Engine[T]) FilterPending() bool {
	return e.debounce.Pending()
}

// Close stops the debounce timer.
func (e *Engine[T]) Close() {
	e.debounce.Cancel()
}

// FilterText is the applied global filter.
func (e *Engine[T]) FilterText() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.filter
}

// SetSort sorts by columnID in dir. None clears sorting and accepts any id.
func (e *Engine[T]) SetSort(columnID string, dir Direction) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if dir == None {
		e.sort = Sort{}
		return nil
	}
	if dir != Asc && dir != Desc {
		return fmt.Errorf("%w: %d", ErrInvalidDirection, dir)
	}
	if _, err := e.sortableLocked(columnID); err != nil {
		return err
	}
	e.sort = Sort{ColumnID: columnID, Direction: dir}
	return nil
}

// ToggleSort cycles columnID through asc, desc and none. A different
// column starts again at asc.
func (e *Engine[T]) ToggleSort(columnID string) (Sort, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if _, err := e.sortableLocked(columnID); err != nil {
		return e.sort, err
	}
	next := Asc
	if e.sort.ColumnID == columnID {
		next = e.sort.Direction.Next()
	}
	if next == None {
		e.sort = Sort{}
	} else {
		e.sort = Sort{ColumnID: columnID, Direction: next}
	}
	return e.sort, nil
}

// Sort returns the active sort.
func (e *Engine[T]) Sort() Sort {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.sort
}

// SetPage moves to page i, clamped to the valid range.
func (e *Engine[T]) SetPage(i int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.pageIndex = i
	e.clampLocked()
}

// NextPage and PrevPage step one page within bounds.
func (e *Engine[T]) NextPage() { e.step(1) }
func (e *Engine[T]) PrevPage() { e.step(-1) }

func (e *Engine[T]) step(delta int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.pageIndex += delta
	e.clampLocked()
}

// SetPageSize changes the page size and clamps the page index. Any positive
// size is accepted; callers enforce their own upper bound.
func (e *Engine[T]) SetPageSize(n int) error {
	if n <= 0 {
		return fmt.Errorf("%w: %d", ErrInvalidPageSize, n)
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.pageSize = n
	e.clampLocked()
	return nil
}

// PageSize returns the current page size.
func (e *Engine[T]) PageSize() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.pageSize
}

// PageCount is ceil(filtered/pageSize), never less than one.
func (e *Engine[T]) PageCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return pageCount(len(e.filteredLocked()), e.pageSize)
}

// VisibleRows returns the current page.
func (e *Engine[T]) VisibleRows() []T {
	return e.View().Rows
}

// View renders the current page and its metadata.
func (e *Engine[T]) View() View[T] {
	e.mu.Lock()
	defer e.mu.Unlock()
	rows := e.processedLocked()
	pc := pageCount(len(rows), e.pageSize)
	start := min(e.pageIndex*e.pageSize, len(rows))
	end := min(start+e.pageSize, len(rows))
	v := View[T]{
		Rows:          slices.Clone(rows[start:end]),
		PageIndex:     e.pageIndex,
		PageCount:     pc,
		PageSize:      e.pageSize,
		FilteredCount: len(rows),
		TotalCount:    len(e.rows),
		CanPrev:       e.pageIndex > 0,
		CanNext:       e.pageIndex < pc-1,
		Sort:          e.sort,
		FilterText:    e.filter,
	}
	if len(v.Rows) == 0 {
		v.Empty = true
		v.Placeholder = NoMatchesPlaceholder
	}
	return v
}

// PrePaginationRows returns every filtered row in sort order.
func (e *Engine[T]) PrePaginationRows() []T {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.processedLocked()
}

// ExportColumns returns the columns the exporter writes, in table order.
func (e *Engine[T]) ExportColumns() []Column[T] {
	out := make([]Column[T], 0, len(e.cols))
	for _, c := range e.cols {
		if c.Exportable() {
			out = append(out, c)
		}
	}
	return out
}

func (e *Engine[T]) sortableLocked(id string) (Column[T], error) {
	for _, c := range e.cols {
		if c.ID != id {
			continue
		}
		if !c.Sortable() {
			return c, fmt.Errorf("%w: %s", ErrNotSortable, id)
		}
		return c, nil
	}
	return Column[T]{}, fmt.Errorf("%w: %s", ErrUnknownColumn, id)
}

func (e *Engine[T]) clampLocked() {
	pc := pageCount(len(e.filteredLocked()), e.pageSize)
	e.pageIndex = max(0, min(e.pageIndex, pc-1))
}

func (e *Engine[T]) filteredLocked() []T {
	if e.filter == "" {
		return e.rows
	}
	needle := strings.ToLower(e.filter)
	var cols []Column[T]
	for _, c := range e.cols {
		if c.Filterable() && (e.filterSet == nil || e.filterSet[c.ID]) {
			cols = append(cols, c)
		}
	}
	out := make([]T, 0, len(e.rows))
	for _, row := range e.rows {
		for _, c := range cols {
			if strings.Contains(strings.ToLower(CellString(c.Value(row))), needle) {
				out = append(out, row)
				break
			}
		}
	}
	return out
}

func (e *Engine[T]) processedLocked() []T {
	rows := slices.Clone(e.filteredLocked())
	if !e.sort.Active() {
		return rows
	}
	col, err := e.sortableLocked(e.sort.ColumnID)
	if err != nil {
		return rows
	}
	less := col.Compare
	if less == nil {
		less = func(a, b T) int { return CompareValues(col.Value(a), col.Value(b)) }
	}
	if e.sort.Direction == Desc {
		asc := less
		less = func(a, b T) int { return asc(b, a) }
	}
	slices.SortStableFunc(rows, less)
	return rows
}

func pageCount(n, size int) int {
	if size <= 0 || n == 0 {
		return 1
	}
	return (n + size - 1) / size
}
