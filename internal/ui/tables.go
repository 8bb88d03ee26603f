package ui

import (
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

// Align is a column alignment
type Align int

const (
	AlignLeft Align = iota
	AlignRight
)

// Table collects rows and renders them with go-pretty
type Table struct {
	headers  []string
	rows     [][]string
	aligns   []Align
	maxWidth int // per column, 0 for unlimited
}

// NewTable creates a new table
func NewTable(headers ...string) *Table {
	return &Table{headers: headers}
}

// SetAligns sets column alignments in header order
func (t *Table) SetAligns(aligns ...Align) {
	t.aligns = aligns
}

// SetMaxColumnWidth wraps cells wider than width
func (t *Table) SetMaxColumnWidth(width int) {
	t.maxWidth = width
}

// AddRow adds a row to the table. Missing cells are blank.
func (t *Table) AddRow(values ...string) {
	row := make([]string, len(t.headers))
	copy(row, values)
	t.rows = append(t.rows, row)
}

// Len returns the number of rows
func (t *Table) Len() int {
	return len(t.rows)
}

// String renders the table
func (t *Table) String() string {
	columns := len(t.headers)
	if columns == 0 {
		return ""
	}

	tw := table.NewWriter()
	if IsTerminal() {
		tw.SetStyle(table.StyleRounded)
	} else {
		tw.SetStyle(table.StyleLight)
	}

	header := make(table.Row, columns)
	for i, h := range t.headers {
		header[i] = h
	}
	tw.AppendHeader(header)

	for _, row := range t.rows {
		r := make(table.Row, columns)
		for i := 0; i < columns; i++ {
			r[i] = row[i]
		}
		tw.AppendRow(r)
	}

	configs := make([]table.ColumnConfig, 0, columns)
	for i := 0; i < columns; i++ {
		align := text.AlignLeft
		if i < len(t.aligns) && t.aligns[i] == AlignRight {
			align = text.AlignRight
		}
		configs = append(configs, table.ColumnConfig{
			Number:           i + 1,
			Align:            align,
			AlignHeader:      text.AlignLeft,
			WidthMax:         t.maxWidth,
			WidthMaxEnforcer: text.WrapSoft,
		})
	}
	tw.SetColumnConfigs(configs)

	return tw.Render()
}

// Render prints the table to the ui output
func (t *Table) Render() {
	if s := t.String(); s != "" {
		fmt.Fprintln(out, s)
	}
}

// KeyValue prints aligned "key: value" lines
func KeyValue(pairs ...[2]string) {
	width := 0
	for _, p := range pairs {
		if len(p[0]) > width {
			width = len(p[0])
		}
	}
	for _, p := range pairs {
		fmt.Fprintf(out, "  %-*s  %s\n", width+1, p[0]+":", p[1])
	}
}
