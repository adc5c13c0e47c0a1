package console

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/okian/racerdash/internal/domain/export"
	"github.com/okian/racerdash/internal/domain/table"
	"github.com/okian/racerdash/pkg/metrics"
)

// screen is the table shown by the current page.
type screen interface {
	render(r *Renderer)
	command(cmd, arg string) (bool, error)
	exportTo(dir, name string, opts export.Options, now time.Time) (string, error)
	close()
}

type tableScreen[T any] struct {
	name    string
	maxSize int
	engine  *table.Engine[T]
}

func newTableScreen[T any](c *Console, name string, rows []T, cols []table.Column[T]) *tableScreen[T] {
	return &tableScreen[T]{
		name:    name,
		maxSize: c.maxPageSize,
		engine: table.New(rows, cols,
			table.WithPageSize(c.pageSize),
			table.WithFilterDebounce(c.debounce),
		),
	}
}

func (s *tableScreen[T]) render(r *Renderer) {
	RenderTable(r, s.engine)
	metrics.UpdateTableFilteredRows(s.name, s.engine.View().FilteredCount)
}

func (s *tableScreen[T]) close() { s.engine.Close() }

// command runs the table commands shared by every page.
func (s *tableScreen[T]) command(cmd, arg string) (bool, error) {
	switch cmd {
	case "f", "filter":
		s.engine.SetFilterText(arg)
	case "clear":
		s.engine.SetFilterText("")
	case "s", "sort":
		if arg == "" {
			return true, usage("sort <column>")
		}
		if _, err := s.engine.ToggleSort(arg); err != nil {
			return true, err
		}
	case "n", "next":
		s.engine.NextPage()
	case "p", "prev":
		s.engine.PrevPage()
	case "page":
		n, err := strconv.Atoi(arg)
		if err != nil || n < 1 {
			return true, usage("page <number>")
		}
		s.engine.SetPage(n - 1)
	case "size":
		n, err := strconv.Atoi(arg)
		if err != nil || (s.maxSize > 0 && n > s.maxSize) {
			return true, usage(fmt.Sprintf("size <1 to %d, e.g. one of %v>", s.maxSize, table.PageSizeOptions))
		}
		if err := s.engine.SetPageSize(n); err != nil {
			return true, err
		}
	default:
		return false, nil
	}
	return true, nil
}

// exportTo writes the filtered and sorted rows to a workbook in dir, named
// after name or, when that is empty, the table and the date.
func (s *tableScreen[T]) exportTo(dir, name string, opts export.Options, now time.Time) (string, error) {
	s.engine.Flush()
	path := filepath.Join(dir, export.FileNameOr(name, s.name, now))
	f, err := os.Create(path)
	if err != nil {
		metrics.RecordExport(s.name, "error")
		return "", fmt.Errorf("%w: %w", export.ErrExport, err)
	}
	if err := export.Table(f, s.engine, opts); err != nil {
		metrics.RecordExport(s.name, "error")
		return "", errors.Join(err, f.Close(), os.Remove(path))
	}
	if err := f.Close(); err != nil {
		metrics.RecordExport(s.name, "error")
		return "", fmt.Errorf("%w: %w", export.ErrExport, err)
	}
	metrics.RecordExport(s.name, "ok")
	return path, nil
}
