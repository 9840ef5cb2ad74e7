package positions

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
)

// Summary returns a one-line description of the row.
func (r RowRecord) Summary() string {
	return fmt.Sprintf("#%s %s %s %s", r.ID, r.Product, r.Quantity.String(), r.Unit)
}

// PagerInfo returns the pager line shown under the grid.
func (p *Page) PagerInfo() string {
	return fmt.Sprintf("page %d of %d (%d records)", p.Page, p.Total, p.Records)
}

// FormatTable renders the rows as a bordered terminal table. fields selects
// the columns; nil means RowFields.
func (p *Page) FormatTable(fields []string) string {
	if fields == nil {
		fields = RowFields
	}

	rows := make([][]string, 0, len(p.Rows))
	for _, r := range p.Rows {
		row := make([]string, len(fields))
		for i, f := range fields {
			row[i] = r.Cell(f)
		}
		rows = append(rows, row)
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers(fields...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})

	return t.String() + "\n" + p.PagerInfo() + "\n"
}

// FormatCandidates renders lookup results one per line.
func FormatCandidates(candidates []Candidate) string {
	if len(candidates) == 0 {
		return "(no matches)\n"
	}
	var b strings.Builder
	for _, c := range candidates {
		b.WriteString(fmt.Sprintf("%-8s %s\n", c.ID, c.Label()))
	}
	return b.String()
}

// FormatOptions renders a vocabulary as key=value lines.
func FormatOptions(options []Option) string {
	var b strings.Builder
	for _, o := range options {
		b.WriteString(fmt.Sprintf("%s=%s\n", o.Key, o.Value))
	}
	return b.String()
}
