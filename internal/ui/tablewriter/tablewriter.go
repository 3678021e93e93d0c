// Package tablewriter renders command output as aligned text tables.
package tablewriter

import (
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/fatih/color"
)

const gap = 2

// Column describes one table column.
type Column struct {
	Name         string
	SeparateLine bool // printed under the row as "name: value" instead of a cell
	RightAlign   bool
}

type columnCfg struct {
	rightAlign bool
}

type ColumnOption func(*columnCfg)

func RightAlign() ColumnOption {
	return func(c *columnCfg) {
		c.rightAlign = true
	}
}

// TableWriter buffers rows and writes them on Flush.
type TableWriter struct {
	cols   []Column
	rows   []map[string]string
	empty  string
	header *color.Color
}

func Col(name string, opts ...ColumnOption) Column {
	cfg := &columnCfg{}
	for _, o := range opts {
		o(cfg)
	}
	return Column{Name: name, RightAlign: cfg.rightAlign}
}

func NewLineCol(name string) Column {
	return Column{Name: name, SeparateLine: true}
}

func New(cols ...Column) *TableWriter {
	return &TableWriter{
		cols:   cols,
		header: color.New(color.Bold),
	}
}

// Empty sets the line printed instead of the table when no rows were written.
func (w *TableWriter) Empty(msg string) *TableWriter {
	w.empty = msg
	return w
}

// Write adds one row keyed by column name.
func (w *TableWriter) Write(r map[string]interface{}) {
	row := make(map[string]string, len(r))
	for k, v := range r {
		if v == nil {
			continue
		}
		row[k] = fmt.Sprint(v)
	}
	w.rows = append(w.rows, row)
}

func (w *TableWriter) Len() int { return len(w.rows) }

func (w *TableWriter) Flush(out io.Writer) error {
	if len(w.rows) == 0 {
		if w.empty == "" {
			return nil
		}
		_, err := fmt.Fprintln(out, w.empty)
		return err
	}

	var cells []Column
	for _, col := range w.cols {
		if !col.SeparateLine {
			cells = append(cells, col)
		}
	}

	widths := make([]int, len(cells))
	for i, col := range cells {
		widths[i] = utf8.RuneCountInString(col.Name)
		for _, row := range w.rows {
			if n := utf8.RuneCountInString(row[col.Name]); n > widths[i] {
				widths[i] = n
			}
		}
	}

	if len(cells) > 0 {
		names := make([]string, len(cells))
		for i, col := range cells {
			names[i] = col.Name
		}
		// pad before coloring so escape codes do not count towards the width
		line := w.line(cells, widths, names)
		if _, err := w.header.Fprintln(out, line); err != nil {
			return err
		}
	}

	for _, row := range w.rows {
		if len(cells) > 0 {
			values := make([]string, len(cells))
			for i, col := range cells {
				values[i] = row[col.Name]
			}
			if _, err := fmt.Fprintln(out, w.line(cells, widths, values)); err != nil {
				return err
			}
		}

		for _, col := range w.cols {
			if !col.SeparateLine {
				continue
			}
			if val := row[col.Name]; val != "" {
				if _, err := fmt.Fprintf(out, "  %s: %s\n", col.Name, val); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

func (w *TableWriter) line(cells []Column, widths []int, values []string) string {
	var sb strings.Builder
	for i, v := range values {
		pad := widths[i] - utf8.RuneCountInString(v)
		last := i == len(values)-1
		switch {
		case cells[i].RightAlign:
			sb.WriteString(strings.Repeat(" ", pad))
			sb.WriteString(v)
		case last:
			sb.WriteString(v)
		default:
			sb.WriteString(v)
			sb.WriteString(strings.Repeat(" ", pad))
		}
		if !last {
			sb.WriteString(strings.Repeat(" ", gap))
		}
	}
	return strings.TrimRight(sb.String(), " ")
}
