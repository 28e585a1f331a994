// Package export turns the records behind a tab into rows of text, and writes
// those rows as CSV, XLSX or clipboard text.
package export

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/deepbluedave/csv-visualiser-sub000/app/aggregate"
	"github.com/deepbluedave/csv-visualiser-sub000/app/interfaces"
	"github.com/deepbluedave/csv-visualiser-sub000/app/query"
	"github.com/deepbluedave/csv-visualiser-sub000/app/settings"
	"github.com/deepbluedave/csv-visualiser-sub000/app/style"
)

// Fixed header labels
const (
	SectionTitleHeader  = "Section Title"
	CountedColumnHeader = "Counted Column"
	CountedValueHeader  = "Counted Value"
	CountHeader         = "Count"
	LevelHeader         = "Level"
)

// Composer builds export rows. Cells are written as their export text, so a
// styled value exports as its label rather than the raw data.
type Composer struct {
	Config  *settings.Config
	Context *query.Context
	Styles  *style.Resolver
}

// NewComposer creates a composer over one loaded table
func NewComposer(cfg *settings.Config, qctx *query.Context, styles *style.Resolver) *Composer {
	return &Composer{Config: cfg, Context: qctx, Styles: styles}
}

// Rows dispatches on the tab type. res is the tab's pipeline output: its
// records are already filtered and its headers are the visible columns.
func (c *Composer) Rows(tab *settings.Tab, res *query.QueryResult) ([][]string, error) {
	if tab == nil {
		return nil, fmt.Errorf("no tab given")
	}
	if res == nil {
		res = &query.QueryResult{Headers: c.Context.Headers.Columns()}
	}
	switch tab.Type {
	case settings.TabTable:
		return c.TableRows(res.Headers, res.Records), nil
	case settings.TabKanban:
		return c.KanbanRows(tab, res.Records)
	case settings.TabSummary:
		return c.SummaryRows(tab, res.Records)
	case settings.TabCounts:
		return c.CountsRows(tab, res.Records)
	case settings.TabHierarchy:
		return c.HierarchyRows(tab, res.Headers, res.Records)
	default:
		return nil, fmt.Errorf("tab %q has unsupported type %q", tab.ID, tab.Type)
	}
}

func (c *Composer) text(rec interfaces.Record, column string) string {
	return c.Styles.RecordExportText(rec, column)
}

func (c *Composer) row(rec interfaces.Record, columns []string) []string {
	out := make([]string, len(columns))
	for i, col := range columns {
		out[i] = c.text(rec, col)
	}
	return out
}

// TableRows exports the records in the given order under columns
func (c *Composer) TableRows(columns []string, records []interfaces.Record) [][]string {
	rows := make([][]string, 0, len(records)+1)
	rows = append(rows, columns)
	for _, rec := range records {
		rows = append(rows, c.row(rec, columns))
	}
	return rows
}

func (c *Composer) indicators(tab *settings.Tab) []string {
	return c.Context.Headers.Filter(c.Config.IndicatorColumnsFor(tab))
}

// KanbanRows exports one row per card: group key, card title, indicators.
// Groups follow groupSortBy and cards the item sort.
func (c *Composer) KanbanRows(tab *settings.Tab, records []interfaces.Record) ([][]string, error) {
	groupBy, title := tab.Config.GroupByColumn, tab.Config.CardTitleColumn
	if !c.Context.Headers.Has(groupBy) {
		return nil, fmt.Errorf("tab %q: groupByColumn %q is not in the data", tab.ID, groupBy)
	}
	if !c.Context.Headers.Has(title) {
		return nil, fmt.Errorf("tab %q: cardTitleColumn %q is not in the data", tab.ID, title)
	}
	indicators := c.indicators(tab)

	groups := aggregate.GroupForDisplay(records, groupBy, c.Context)
	criteria := c.Config.ItemSortFor(tab)

	rows := [][]string{append([]string{groupBy, title}, indicators...)}
	for _, key := range aggregate.OrderKeys(groups, tab.Config.GroupSortBy) {
		for _, rec := range query.Sort(groups.Items[key], criteria, c.Context) {
			row := append([]string{key, rec.Text(title)}, c.row(rec, indicators)...)
			rows = append(rows, row)
		}
	}
	return rows, nil
}

// SummaryRows exports one row per record per section. Each record lands in
// the first specific section it matches; the catch-all takes the rest.
func (c *Composer) SummaryRows(tab *settings.Tab, records []interfaces.Record) ([][]string, error) {
	title := tab.Config.CardTitleColumn
	if !c.Context.Headers.Has(title) {
		return nil, fmt.Errorf("tab %q: cardTitleColumn %q is not in the data", tab.ID, title)
	}
	if len(tab.Config.Sections) == 0 {
		return nil, fmt.Errorf("tab %q has no sections", tab.ID)
	}
	groupBy := tab.Config.GroupByColumn
	withGroup := c.Context.Headers.Has(groupBy)
	indicators := c.indicators(tab)

	header := []string{SectionTitleHeader}
	if withGroup {
		header = append(header, groupBy)
	}
	header = append(header, title)
	rows := [][]string{append(header, indicators...)}

	sorted := query.Sort(append([]interfaces.Record(nil), records...), c.Config.ItemSortFor(tab), c.Context)
	for _, section := range aggregate.Summarize(sorted, tab.Config.Sections, c.Context, true) {
		for _, rec := range section.Records {
			row := []string{section.Title}
			if withGroup {
				row = append(row, rec.Text(groupBy))
			}
			row = append(row, rec.Text(title))
			rows = append(rows, append(row, c.row(rec, indicators)...))
		}
	}
	return rows, nil
}

// CountsRows exports a counts tab. With any distinct-value counter the rows
// are long (group, column, value, count); otherwise one row per counter with
// a column per group key.
func (c *Composer) CountsRows(tab *settings.Tab, records []interfaces.Record) ([][]string, error) {
	groupBy := tab.Config.GroupByColumn
	if !c.Context.Headers.Has(groupBy) {
		return nil, fmt.Errorf("tab %q: groupByColumn %q is not in the data", tab.ID, groupBy)
	}
	if len(tab.Config.Counters) == 0 {
		return nil, fmt.Errorf("tab %q has no counters", tab.ID)
	}
	res := aggregate.Count(records, groupBy, tab.Config.Counters, c.Context)
	if res.HasDistinct() {
		return c.longCounts(res), nil
	}
	return wideCounts(res), nil
}

func wideCounts(res *aggregate.CountsResult) [][]string {
	rows := [][]string{append([]string{res.GroupByColumn}, res.GroupKeys...)}
	for _, title := range res.Titles() {
		tally := res.Tallies[title]
		row := make([]string, 0, len(res.GroupKeys)+1)
		row = append(row, title)
		for _, k := range res.GroupKeys {
			row = append(row, strconv.Itoa(tally[k]))
		}
		rows = append(rows, row)
	}
	return rows
}

type countLine struct {
	group, column, value string
	count                int
}

func (c *Composer) longCounts(res *aggregate.CountsResult) [][]string {
	var lines []countLine
	for column, byGroup := range res.Distinct {
		for group, values := range byGroup {
			for value, n := range values {
				text := value
				if value != aggregate.NotAvailable {
					text = c.Styles.ResolveExportText(column, interfaces.ScalarCell(value))
				}
				if text == "" {
					text = aggregate.NotAvailable
				}
				lines = append(lines, countLine{group: group, column: column, value: text, count: n})
			}
		}
	}

	natural := query.NaturalSorter()
	sort.SliceStable(lines, func(i, j int) bool {
		a, b := lines[i], lines[j]
		if a.column != b.column {
			return natural(a.column, b.column) < 0
		}
		if a.group != b.group {
			return natural(a.group, b.group) < 0
		}
		return natural(a.value, b.value) < 0
	})

	rows := [][]string{{res.GroupByColumn, CountedColumnHeader, CountedValueHeader, CountHeader}}
	for _, l := range lines {
		rows = append(rows, []string{l.group, l.column, l.value, strconv.Itoa(l.count)})
	}
	return rows
}

// HierarchyRows exports the tree depth first with the depth as a leading Level column
func (c *Composer) HierarchyRows(tab *settings.Tab, columns []string, records []interfaces.Record) ([][]string, error) {
	idCol, parentCol := tab.Config.IDColumn, tab.Config.ParentColumn
	if !c.Context.Headers.Has(idCol) {
		return nil, fmt.Errorf("tab %q: idColumn %q is not in the data", tab.ID, idCol)
	}
	if !c.Context.Headers.Has(parentCol) {
		return nil, fmt.Errorf("tab %q: parentColumn %q is not in the data", tab.ID, parentCol)
	}
	cmp := query.Comparator(c.Config.TableSortFor(tab), c.Context)
	roots := aggregate.BuildHierarchy(records, idCol, parentCol, cmp, c.Context)

	rows := [][]string{append([]string{LevelHeader}, columns...)}
	for _, n := range aggregate.Flatten(roots) {
		rows = append(rows, append([]string{strconv.Itoa(n.Level)}, c.row(n.Record, columns)...))
	}
	return rows, nil
}
