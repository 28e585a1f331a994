// Package render draws prepared tab views for a terminal.
package render

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/deepbluedave/csv-visualiser-sub000/app"
	"github.com/deepbluedave/csv-visualiser-sub000/app/settings"
	"github.com/deepbluedave/csv-visualiser-sub000/app/style"
)

// Renderer turns views into styled text for one output
type Renderer struct {
	renderer *lipgloss.Renderer

	base    lipgloss.Style
	header  lipgloss.Style
	heading lipgloss.Style
	dim     lipgloss.Style
	link    lipgloss.Style
	border  lipgloss.Style
}

// New creates a renderer whose color support is detected from w
func New(w io.Writer) *Renderer {
	r := lipgloss.NewRenderer(w)
	base := r.NewStyle().Padding(0, 1)
	return &Renderer{
		renderer: r,
		base:     base,
		header:   base.Foreground(lipgloss.Color("252")).Bold(true),
		heading:  r.NewStyle().Bold(true).Underline(true),
		dim:      r.NewStyle().Foreground(lipgloss.Color("245")),
		link:     r.NewStyle().Foreground(lipgloss.Color("#5fafff")).Underline(true),
		border:   r.NewStyle().Foreground(lipgloss.Color("238")),
	}
}

// Descriptor renders one styled value
func (r *Renderer) Descriptor(d style.Descriptor) string {
	switch d.Kind {
	case style.KindNothing:
		return ""
	case style.KindTag:
		s := r.renderer.NewStyle().Padding(0, 1)
		if d.BgColor != "" {
			s = s.Background(lipgloss.Color(d.BgColor))
		}
		if d.TextColor != "" {
			s = s.Foreground(lipgloss.Color(d.TextColor))
		}
		return s.Render(d.Text)
	case style.KindLink:
		return r.link.Render(d.Text)
	default:
		return d.Text
	}
}

// Cell renders every value of a cell separated by spaces
func (r *Renderer) Cell(cell app.StyledCell) string {
	parts := make([]string, 0, len(cell))
	for _, d := range cell {
		if s := r.Descriptor(d); s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, " ")
}

// View renders a tab of any type
func (r *Renderer) View(v *app.View) string {
	var b strings.Builder
	title := v.Tab.Title
	if title == "" {
		title = v.Tab.ID
	}
	b.WriteString(r.heading.Render(title))
	b.WriteString(r.dim.Render(fmt.Sprintf("  %d records", v.Total)))
	b.WriteString("\n\n")

	switch {
	case v.Table != nil:
		b.WriteString(r.Table(v.Table))
	case v.Hierarchy != nil:
		b.WriteString(r.Table(v.Hierarchy))
	case v.Board != nil:
		b.WriteString(r.Board(v.Board))
	case v.Summary != nil:
		b.WriteString(r.Summary(v.Summary))
	case v.Counts != nil:
		b.WriteString(r.Counts(v.Counts))
	}
	return strings.TrimRight(b.String(), "\n") + "\n"
}

func (r *Renderer) grid(headers []string, rows [][]string) string {
	return table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(r.border).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return r.header
			}
			return r.base
		}).
		Render()
}

// Table renders a table or hierarchy view. Hierarchy rows are indented by level.
func (r *Renderer) Table(tv *app.TableView) string {
	rows := make([][]string, 0, len(tv.Rows))
	for i, row := range tv.Rows {
		out := make([]string, len(row))
		for j, cell := range row {
			out[j] = r.Cell(cell)
		}
		if tv.Levels != nil && len(out) > 0 && tv.Levels[i] > 0 {
			out[0] = strings.Repeat("  ", tv.Levels[i]-1) + "└ " + out[0]
		}
		rows = append(rows, out)
	}
	s := r.grid(tv.Labels, rows)
	if tv.More > 0 {
		s += "\n" + r.dim.Render(fmt.Sprintf("… %d more rows", tv.More))
	}
	return s + "\n"
}

func (r *Renderer) card(c app.Card) string {
	var b strings.Builder
	b.WriteString("• ")
	b.WriteString(r.Cell(c.Title))
	for _, ind := range c.Indicators {
		b.WriteString("  ")
		b.WriteString(r.Cell(ind.Cell))
	}
	if c.Link != "" {
		b.WriteString("  ")
		b.WriteString(r.link.Render(c.Link))
	}
	return b.String()
}

func (r *Renderer) lanes(lanes []app.Lane, indent string) string {
	var b strings.Builder
	for _, lane := range lanes {
		b.WriteString(indent)
		b.WriteString(r.header.Render(fmt.Sprintf("%s (%d)", lane.Key, len(lane.Cards))))
		b.WriteString("\n")
		for _, c := range lane.Cards {
			b.WriteString(indent + "  " + r.card(c) + "\n")
		}
	}
	return b.String()
}

// Board renders a kanban view, one lane after another
func (r *Renderer) Board(bv *app.BoardView) string {
	if len(bv.Lanes) == 0 {
		return r.dim.Render("No items") + "\n"
	}
	return r.lanes(bv.Lanes, "")
}

// Summary renders each section with its own colors
func (r *Renderer) Summary(sv *app.SummaryView) string {
	var b strings.Builder
	for _, sec := range sv.Sections {
		s := r.renderer.NewStyle().Bold(true).Padding(0, 1)
		if sec.BgColor != "" {
			s = s.Background(lipgloss.Color(sec.BgColor))
		}
		if sec.TextColor != "" {
			s = s.Foreground(lipgloss.Color(sec.TextColor))
		}
		b.WriteString(s.Render(fmt.Sprintf("%s (%d)", sec.Title, sec.Count)))
		b.WriteString("\n")
		if sec.Count == 0 {
			b.WriteString("  " + r.dim.Render("No items") + "\n")
		}
		for _, c := range sec.Cards {
			b.WriteString("  " + r.card(c) + "\n")
		}
		b.WriteString(r.lanes(sec.Lanes, "  "))
		b.WriteString("\n")
	}
	return b.String()
}

// Counts renders the counter table and, when present, the distinct-value tallies
func (r *Renderer) Counts(cv *app.CountsView) string {
	var b strings.Builder
	if len(cv.Counters) > 0 {
		headers := append([]string{cv.GroupByColumn}, cv.GroupKeys...)
		headers = append(headers, "Total")
		rows := make([][]string, 0, len(cv.Counters))
		for _, c := range cv.Counters {
			title := c.Title
			if c.Display != nil && c.Display.Value != "" {
				title = c.Display.Value + " " + title
			}
			row := []string{title}
			for _, n := range c.Counts {
				row = append(row, strconv.Itoa(n))
			}
			rows = append(rows, append(row, strconv.Itoa(c.Total)))
		}
		b.WriteString(r.grid(headers, rows))
		b.WriteString("\n")
	}
	if len(cv.Distinct) > 0 {
		rows := make([][]string, 0, len(cv.Distinct))
		for _, d := range cv.Distinct {
			rows = append(rows, []string{d.Group, d.Column, r.Cell(d.Value), strconv.Itoa(d.Count)})
		}
		b.WriteString(r.grid([]string{cv.GroupByColumn, "Column", "Value", "Count"}, rows))
		b.WriteString("\n")
	}
	if b.Len() == 0 {
		return r.dim.Render("Nothing counted") + "\n"
	}
	return b.String()
}

// TabList renders the tabs of a configuration
func (r *Renderer) TabList(tabs []*settings.Tab) string {
	rows := make([][]string, 0, len(tabs))
	for _, t := range tabs {
		rows = append(rows, []string{t.ID, t.Type, t.Title})
	}
	return r.grid([]string{"ID", "Type", "Title"}, rows) + "\n"
}
