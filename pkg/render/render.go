// Package render writes command results as tables, JSON, or YAML.
package render

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"gopkg.in/yaml.v3"
)

// Output formats.
const (
	FormatTable = "table"
	FormatJSON  = "json"
	FormatYAML  = "yaml"
)

const (
	yamlIndent     = 2
	percentScale   = 100
	footerRowCount = "Total: %d rows"
)

// ErrUnknownFormat is returned for an output format other than table, json
// or yaml.
var ErrUnknownFormat = errors.New("unknown output format")

// Field is one labeled value in a table summary.
type Field struct {
	Name  string
	Value any
}

// Table is the human-readable view of a result.
type Table struct {
	Title   string
	Summary []Field
	Header  []string
	Rows    [][]any
}

// Tabular is implemented by results that have a table view. JSON and YAML
// output encode the result value itself.
type Tabular interface {
	Table() Table
}

// Verdict is a table cell shown as Yes in green or No in red.
type Verdict struct {
	OK  bool
	Yes string
	No  string
}

// Renderer writes results in one output format.
type Renderer struct {
	w      io.Writer
	format string
	good   *color.Color
	bad    *color.Color
	title  *color.Color
}

// New returns a Renderer for format. Colors apply to table output only and
// only when useColor is set.
func New(w io.Writer, format string, useColor bool) (*Renderer, error) {
	switch format {
	case FormatTable, FormatJSON, FormatYAML:
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}

	r := &Renderer{
		w:      w,
		format: format,
		good:   color.New(color.FgGreen),
		bad:    color.New(color.FgRed),
		title:  color.New(color.Bold),
	}

	for _, c := range []*color.Color{r.good, r.bad, r.title} {
		if useColor {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}

	return r, nil
}

// Format returns the renderer's output format.
func (r *Renderer) Format() string { return r.format }

// Render writes v.
func (r *Renderer) Render(v Tabular) error {
	switch r.format {
	case FormatJSON:
		enc := json.NewEncoder(r.w)
		enc.SetIndent("", "  ")

		err := enc.Encode(v)
		if err != nil {
			return fmt.Errorf("encode json: %w", err)
		}

		return nil
	case FormatYAML:
		enc := yaml.NewEncoder(r.w)
		enc.SetIndent(yamlIndent)

		err := enc.Encode(v)
		if err != nil {
			return fmt.Errorf("encode yaml: %w", err)
		}

		return enc.Close()
	default:
		_, err := io.WriteString(r.w, r.table(v.Table()))
		if err != nil {
			return fmt.Errorf("write table: %w", err)
		}

		return nil
	}
}

func (r *Renderer) table(t Table) string {
	var parts []string

	if t.Title != "" {
		parts = append(parts, r.title.Sprint(t.Title))
	}

	if len(t.Summary) > 0 {
		tbl := newWriter()
		for _, f := range t.Summary {
			tbl.AppendRow(table.Row{f.Name, r.cell(f.Value)})
		}

		parts = append(parts, tbl.Render())
	}

	if len(t.Header) > 0 {
		tbl := newWriter()

		header := make(table.Row, len(t.Header))
		for i, h := range t.Header {
			header[i] = h
		}

		tbl.AppendHeader(header)

		for _, row := range t.Rows {
			cells := make(table.Row, len(row))
			for i, v := range row {
				cells[i] = r.cell(v)
			}

			tbl.AppendRow(cells)
		}

		tbl.AppendFooter(table.Row{fmt.Sprintf(footerRowCount, len(t.Rows))})
		parts = append(parts, tbl.Render())
	}

	return strings.Join(parts, "\n\n") + "\n"
}

func (r *Renderer) cell(v any) any {
	verdict, ok := v.(Verdict)
	if !ok {
		return v
	}

	if verdict.OK {
		return r.good.Sprint(verdict.Yes)
	}

	return r.bad.Sprint(verdict.No)
}

func newWriter() table.Writer {
	tbl := table.NewWriter()
	tbl.SetStyle(table.StyleLight)
	tbl.Style().Options.DrawBorder = false
	tbl.Style().Options.SeparateColumns = false
	tbl.Style().Options.SeparateRows = false
	tbl.Style().Format.Header = text.FormatDefault
	tbl.Style().Format.Footer = text.FormatDefault

	return tbl
}

// Bytes formats a byte count in IEC units, e.g. "3.5 KiB".
func Bytes(n int) string {
	if n < 0 {
		n = 0
	}

	return humanize.IBytes(uint64(n))
}

// Count formats an integer with thousands separators.
func Count(n int) string {
	return humanize.Comma(int64(n))
}

// Percent formats a ratio in [0, 1] as a percentage with two decimals.
func Percent(ratio float64) string {
	return humanize.FormatFloat("#,###.##", ratio*percentScale) + "%"
}
