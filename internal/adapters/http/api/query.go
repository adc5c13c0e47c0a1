package api

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/okian/racerdash/internal/domain/table"
	"github.com/okian/racerdash/pkg/metrics"
)

// pageMeta mirrors the pagination block of list responses.
type pageMeta struct {
	CurrentPage   int    `json:"current_page"`
	TotalPages    int    `json:"total_pages"`
	TotalItems    int    `json:"total_items"`
	FilteredItems int    `json:"filtered_items"`
	Limit         int    `json:"limit"`
	Query         string `json:"q,omitempty"`
	Sort          string `json:"sort,omitempty"`
	Dir           string `json:"dir,omitempty"`
}

type pageResponse[T any] struct {
	Data        []T      `json:"data"`
	Meta        pageMeta `json:"meta"`
	Placeholder string   `json:"placeholder,omitempty"`
	Extra       any      `json:"extra,omitempty"`
}

// tableQuery is the parsed q, sort, dir, page and size parameters.
type tableQuery struct {
	filter string
	sortID string
	dir    table.Direction
	page   int
	size   int
}

// parseTableQuery reads the list parameters. A size above maxSize is
// rejected; maxSize 0 means no upper bound.
func parseTableQuery(v url.Values, maxSize int) (tableQuery, error) {
	q := tableQuery{
		filter: strings.TrimSpace(v.Get("q")),
		sortID: strings.TrimSpace(v.Get("sort")),
	}
	if q.sortID != "" {
		q.dir = table.Asc
		if raw := v.Get("dir"); raw != "" {
			d, err := table.ParseDirection(raw)
			if err != nil {
				return q, err
			}
			q.dir = d
		}
	}
	if raw := v.Get("page"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			return q, fmt.Errorf("%w: page must be a positive integer", ErrBadRequest)
		}
		q.page = n - 1
	}
	if raw := v.Get("size"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return q, fmt.Errorf("%w: size must be an integer", ErrBadRequest)
		}
		if n <= 0 {
			return q, fmt.Errorf("%w: %d", table.ErrInvalidPageSize, n)
		}
		if maxSize > 0 && n > maxSize {
			return q, fmt.Errorf("%w: size must not exceed %d", ErrBadRequest, maxSize)
		}
		q.size = n
	}
	return q, nil
}

// newEngine builds an engine over rows with q applied. The filter is applied
// at once and the page set last so it is clamped against the filtered rows.
func newEngine[T any](s *Server, rows []T, cols []table.Column[T], q tableQuery) (*table.Engine[T], error) {
	e := table.New(rows, cols, table.WithPageSize(s.pageSize))
	if q.size > 0 {
		if err := e.SetPageSize(q.size); err != nil {
			e.Close()
			return nil, err
		}
	}
	if q.sortID != "" {
		if err := e.SetSort(q.sortID, q.dir); err != nil {
			e.Close()
			return nil, err
		}
	}
	e.ApplyFilter(q.filter)
	e.SetPage(q.page)
	return e, nil
}

// renderPage turns the engine's current view into a list response.
func renderPage[T any](name string, e *table.Engine[T]) pageResponse[T] {
	v := e.View()
	metrics.UpdateTableFilteredRows(name, v.FilteredCount)
	rows := v.Rows
	if rows == nil {
		rows = []T{}
	}
	resp := pageResponse[T]{
		Data: rows,
		Meta: pageMeta{
			CurrentPage:   v.PageIndex + 1,
			TotalPages:    v.PageCount,
			TotalItems:    v.TotalCount,
			FilteredItems: v.FilteredCount,
			Limit:         v.PageSize,
			Query:         v.FilterText,
		},
		Placeholder: v.Placeholder,
	}
	if v.Sort.Active() {
		resp.Meta.Sort = v.Sort.ColumnID
		resp.Meta.Dir = v.Sort.Direction.String()
	}
	return resp
}
