// Package export writes table rows to single-sheet xlsx workbooks.
package export

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path"
	"reflect"
	"strings"
	"time"

	"github.com/okian/racerdash/internal/domain/table"
	"github.com/xuri/excelize/v2"
)

const (
	// DefaultSheetName names the only worksheet.
	DefaultSheetName = "Table"
	// DefaultColumnWidth is the width of every column, in characters.
	DefaultColumnWidth = 16
	// ContentType is the MIME type of the produced files.
	ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// ErrExport wraps every failure while building or writing a workbook.
var ErrExport = errors.New("export failed")

// Options controls the workbook layout.
type Options struct {
	SheetName   string
	ColumnWidth float64
}

func (o Options) withDefaults() Options {
	if o.SheetName == "" {
		o.SheetName = DefaultSheetName
	}
	if o.ColumnWidth <= 0 {
		o.ColumnWidth = DefaultColumnWidth
	}
	return o
}

// Records flattens rows into a header row and one record per row, in
// column order. Only exportable columns are written.
func Records[T any](cols []table.Column[T], rows []T) ([]string, [][]any) {
	var exp []table.Column[T]
	for _, c := range cols {
		if c.Exportable() {
			exp = append(exp, c)
		}
	}
	headers := make([]string, len(exp))
	for i, c := range exp {
		headers[i] = c.HeaderText()
	}
	records := make([][]any, len(rows))
	for r, row := range rows {
		rec := make([]any, len(exp))
		for i, c := range exp {
			rec[i] = Cell(c.Value(row))
		}
		records[r] = rec
	}
	return headers, records
}

// Cell converts a value to something a spreadsheet cell holds: primitives
// are kept, nil becomes empty and anything else is JSON encoded.
func Cell(v any) any {
	switch x := v.(type) {
	case nil:
		return ""
	case string, bool,
		int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64,
		float32, float64:
		return x
	case time.Time:
		if x.IsZero() {
			return ""
		}
		return x.Format(time.RFC3339)
	case fmt.Stringer:
		return x.String()
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer:
		if rv.IsNil() {
			return ""
		}
		return Cell(rv.Elem().Interface())
	case reflect.Slice, reflect.Map:
		if rv.IsNil() {
			return ""
		}
	}
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprint(v)
	}
	return string(b)
}

// Write stores headers and records as a workbook on w.
func Write(w io.Writer, headers []string, records [][]any, opts Options) (err error) {
	opts = opts.withDefaults()
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", ErrExport, r)
		}
	}()

	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	sheet := opts.SheetName
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return fmt.Errorf("%w: sheet name: %w", ErrExport, err)
	}

	head := make([]any, len(headers))
	for i, h := range headers {
		head[i] = h
	}
	if err := f.SetSheetRow(sheet, "A1", &head); err != nil {
		return fmt.Errorf("%w: header: %w", ErrExport, err)
	}
	for i, rec := range records {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return fmt.Errorf("%w: %w", ErrExport, err)
		}
		row := rec
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("%w: row %d: %w", ErrExport, i+1, err)
		}
	}

	if n := len(headers); n > 0 {
		last, err := excelize.ColumnNumberToName(n)
		if err != nil {
			return fmt.Errorf("%w: %w", ErrExport, err)
		}
		if err := f.SetColWidth(sheet, "A", last, opts.ColumnWidth); err != nil {
			return fmt.Errorf("%w: column width: %w", ErrExport, err)
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("%w: %w", ErrExport, err)
	}
	return nil
}

// Table exports the filtered and sorted rows of e, ignoring pagination.
func Table[T any](w io.Writer, e *table.Engine[T], opts Options) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", ErrExport, r)
		}
	}()
	headers, records := Records(e.ExportColumns(), e.PrePaginationRows())
	return Write(w, headers, records, opts)
}

// FileName is the default download name: <prefix>-YYYY-MM-DD.xlsx.
func FileName(prefix string, now time.Time) string {
	if prefix == "" {
		prefix = "export"
	}
	return prefix + "-" + now.Format(time.DateOnly) + ext
}

const ext = ".xlsx"

// FileNameOr returns custom reduced to a bare, safe file name ending in
// .xlsx, or FileName(prefix, now) when nothing usable is left of it.
func FileNameOr(custom, prefix string, now time.Time) string {
	name := path.Base(strings.ReplaceAll(strings.TrimSpace(custom), `\`, "/"))
	name = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		case r == '-', r == '_', r == '.', r == ' ':
			return r
		}
		return '_'
	}, name)
	name = strings.TrimSpace(name)
	if len(name) >= len(ext) && strings.EqualFold(name[len(name)-len(ext):], ext) {
		name = name[:len(name)-len(ext)]
	}
	name = strings.Trim(name, ". ")
	if name == "" || strings.Trim(name, "_") == "" {
		return FileName(prefix, now)
	}
	return name + ext
}
