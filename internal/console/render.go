package console

import (
	"fmt"
	"io"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"

	"github.com/okian/racerdash/internal/domain/awards"
	"github.com/okian/racerdash/internal/domain/table"
)

// Renderer prints pages, tables and notices to a terminal.
type Renderer struct {
	out     io.Writer
	heading *color.Color
	notice  *color.Color
	failure *color.Color
	hint    *color.Color
}

// NewRenderer writes to out.
func NewRenderer(out io.Writer) *Renderer {
	return &Renderer{
		out:     out,
		heading: color.New(color.FgCyan, color.Bold),
		notice:  color.New(color.FgGreen),
		failure: color.New(color.FgRed),
		hint:    color.New(color.FgYellow),
	}
}

// Heading prints a page title.
func (r *Renderer) Heading(title string) {
	r.heading.Fprintf(r.out, "\n=== %s ===\n", title)
}

// Notice prints a success message.
func (r *Renderer) Notice(msg string) {
	r.notice.Fprintln(r.out, msg)
}

// Failure prints an error message.
func (r *Renderer) Failure(msg string) {
	r.failure.Fprintln(r.out, msg)
}

// Hint prints the commands available on a page.
func (r *Renderer) Hint(cmds ...string) {
	r.hint.Fprintln(r.out, strings.Join(cmds, "  "))
}

// Printf prints plain text.
func (r *Renderer) Printf(format string, args ...any) {
	fmt.Fprintf(r.out, format, args...)
}

// Prompt prints label without a trailing newline.
func (r *Renderer) Prompt(label string) {
	fmt.Fprint(r.out, label)
}

// Shelf prints the visible badges, or the empty shelf message.
func (r *Renderer) Shelf(badges []awards.Badge) {
	var parts []string
	for _, b := range badges {
		if !b.Visible {
			continue
		}
		s := b.Title
		if b.ShowCount {
			s += fmt.Sprintf(" x%d", b.Count)
		}
		parts = append(parts, s)
	}
	if len(parts) == 0 {
		r.Printf("Awards: %s\n", awards.EmptyShelf)
		return
	}
	r.Printf("Awards: %s\n", strings.Join(parts, ", "))
}

// FormatCell renders a cell for the terminal. Numbers get thousands
// separators.
func FormatCell(v any) string {
	switch x := v.(type) {
	case float64:
		return humanize.Commaf(x)
	case int:
		return humanize.Comma(int64(x))
	}
	return table.CellString(v)
}

// RenderTable prints the current page of e. A pending filter is applied
// first so the table never shows stale rows.
func RenderTable[T any](r *Renderer, e *table.Engine[T]) {
	e.Flush()
	v := e.View()
	cols := e.Columns()

	tw := tablewriter.NewWriter(r.out)
	tw.SetAutoFormatHeaders(false)
	tw.SetAutoWrapText(false)

	headers := make([]string, len(cols))
	for i, c := range cols {
		h := c.HeaderText()
		if v.Sort.Active() && v.Sort.ColumnID == c.ID {
			h += sortMarker(v.Sort.Direction)
		}
		headers[i] = h
	}
	tw.SetHeader(headers)

	if v.Empty {
		row := make([]string, len(cols))
		row[0] = v.Placeholder
		tw.Append(row)
	}
	for _, row := range v.Rows {
		cells := make([]string, len(cols))
		for i, c := range cols {
			cells[i] = FormatCell(c.Value(row))
		}
		tw.Append(cells)
	}
	tw.Render()

	footer := fmt.Sprintf("Page %d of %d, %d of %d rows", v.PageIndex+1, v.PageCount, v.FilteredCount, v.TotalCount)
	if v.FilterText != "" {
		footer += fmt.Sprintf(", filter %q", v.FilterText)
	}
	r.Printf("%s\n", footer)
}

func sortMarker(d table.Direction) string {
	if d == table.Desc {
		return " v"
	}
	return " ^"
}
