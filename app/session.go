package app

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/deepbluedave/csv-visualiser-sub000/app/aggregate"
	"github.com/deepbluedave/csv-visualiser-sub000/app/cache"
	"github.com/deepbluedave/csv-visualiser-sub000/app/export"
	"github.com/deepbluedave/csv-visualiser-sub000/app/interfaces"
	"github.com/deepbluedave/csv-visualiser-sub000/app/query"
	"github.com/deepbluedave/csv-visualiser-sub000/app/settings"
	"github.com/deepbluedave/csv-visualiser-sub000/app/style"
)

// Session is one loaded table together with the configuration it is shown
// with. Every engine call made for the table goes through it.
type Session struct {
	ID        string
	Source    string
	SourceKey string
	Config    *settings.Config
	Table     *interfaces.Table
	Context   *query.Context
	Styles    *style.Resolver

	composer *export.Composer
	cache    *cache.Cache
	logger   interfaces.Logger
}

// NewSession builds the evaluation context and style resolver for table.
// c and sourceKey may be empty, which disables result caching.
func NewSession(id string, cfg *settings.Config, table *interfaces.Table, c *cache.Cache, sourceKey string, logger interfaces.Logger) *Session {
	if cfg == nil {
		cfg = &settings.Config{}
	}
	logger = interfaces.OrNop(logger)
	qctx := query.NewContext(table, cfg, logger)
	styles := style.NewResolver(cfg, table, logger)
	return &Session{
		ID:        id,
		SourceKey: sourceKey,
		Config:    cfg,
		Table:     table,
		Context:   qctx,
		Styles:    styles,
		composer:  export.NewComposer(cfg, qctx, styles),
		cache:     c,
		logger:    logger,
	}
}

// Tabs returns the enabled tabs in configuration order
func (s *Session) Tabs() []*settings.Tab {
	return s.Config.EnabledTabs()
}

// Tab finds an enabled tab; an empty ID selects the first one
func (s *Session) Tab(tabID string) (*settings.Tab, error) {
	if tabID == "" {
		tabs := s.Tabs()
		if len(tabs) == 0 {
			return nil, fmt.Errorf("configuration has no enabled tabs")
		}
		return tabs[0], nil
	}
	tab, ok := s.Config.Tab(tabID)
	if !ok {
		return nil, fmt.Errorf("unknown tab %q", tabID)
	}
	if !tab.IsEnabled() {
		return nil, fmt.Errorf("tab %q is disabled", tabID)
	}
	return tab, nil
}

// Query narrows what a tab shows. Limit applies to table tabs after sorting;
// zero shows every record.
type Query struct {
	Where string
	Limit int
}

// Records runs the tab pipeline: the tab filter and the optional where
// expression, then for table tabs the sort, display columns and limit.
// Hierarchy tabs get their display columns too. The returned records may be
// shared with the cache and must not be reordered.
func (s *Session) Records(ctx context.Context, tab *settings.Tab, q Query) (*query.QueryResult, error) {
	var expr query.Expr
	if strings.TrimSpace(q.Where) != "" {
		var err error
		if expr, err = query.ParseFilterExpression(q.Where); err != nil {
			return nil, fmt.Errorf("invalid where expression: %w", err)
		}
	}

	b := query.NewPipelineBuilder(ctx, s.Context, s.cache, s.resultKey()).
		AddFilter(tab.Filter).
		AddExpr(expr)
	switch tab.Type {
	case settings.TabTable:
		b.AddSort(s.Config.TableSortFor(tab)).
			AddColumns(tab.Config.DisplayColumns).
			AddLimit(q.Limit)
	case settings.TabHierarchy:
		b.AddColumns(tab.Config.DisplayColumns)
	}
	res, err := b.Build().Execute(query.RecordsResult(s.Table))
	if err != nil {
		return nil, err
	}
	s.logger.Log("debug", fmt.Sprintf("[TAB_RECORDS] Tab: %s, Records: %d, Shown: %d, Cached: %t",
		tab.ID, res.Total, len(res.Records), res.Cached))
	return res, nil
}

// resultKey scopes cached pipeline results to the truth values and timezone
// they were computed with
func (s *Session) resultKey() string {
	if s.SourceKey == "" {
		return ""
	}
	loc := "UTC"
	if s.Context.Location != nil {
		loc = s.Context.Location.String()
	}
	return cache.StageKey(s.SourceKey, "ctx", strings.Join(s.Context.Truthy, "\x1f")+"@"+loc)
}

// View prepares a tab for display
func (s *Session) View(ctx context.Context, tabID string, q Query) (*View, error) {
	tab, err := s.Tab(tabID)
	if err != nil {
		return nil, err
	}
	res, err := s.Records(ctx, tab, q)
	if err != nil {
		return nil, err
	}
	records := res.Records

	v := &View{Tab: tab, Total: res.Total}
	switch tab.Type {
	case settings.TabTable:
		v.Table = s.tableView(tab, res)
	case settings.TabKanban:
		v.Board = s.boardView(tab, records)
	case settings.TabSummary:
		v.Summary = s.summaryView(tab, records)
	case settings.TabCounts:
		v.Counts = s.countsView(tab, records)
	case settings.TabHierarchy:
		v.Hierarchy = s.hierarchyView(tab, res.Headers, records)
	default:
		return nil, fmt.Errorf("tab %q has unsupported type %q", tab.ID, tab.Type)
	}
	return v, nil
}

// Export returns the tab as rows of export text, header first
func (s *Session) Export(ctx context.Context, tabID string, q Query) ([][]string, error) {
	tab, err := s.Tab(tabID)
	if err != nil {
		return nil, err
	}
	res, err := s.Records(ctx, tab, q)
	if err != nil {
		return nil, err
	}
	return s.composer.Rows(tab, res)
}

func (s *Session) styled(rec interfaces.Record, column string) StyledCell {
	cell, ok := rec.Get(column)
	if !ok {
		return StyledCell{{Kind: style.KindNothing}}
	}
	return s.Styles.ResolveDisplay(column, cell)
}

func (s *Session) labels(tab *settings.Tab, columns []string) []string {
	out := make([]string, len(columns))
	for i, c := range columns {
		out[i] = c
		if l := tab.Config.ColumnLabels[c]; l != "" {
			out[i] = l
		}
	}
	return out
}

func (s *Session) tableView(tab *settings.Tab, res *query.QueryResult) *TableView {
	columns := res.Headers
	tv := &TableView{Columns: columns, Labels: s.labels(tab, columns), More: res.Total - len(res.Records)}
	for _, rec := range res.Records {
		row := make([]StyledCell, len(columns))
		for i, c := range columns {
			row[i] = s.styled(rec, c)
		}
		tv.Rows = append(tv.Rows, row)
	}
	return tv
}

func (s *Session) card(tab *settings.Tab, rec interfaces.Record, indicators []string) Card {
	c := Card{Title: s.styled(rec, tab.Config.CardTitleColumn)}
	if col := tab.Config.CardLinkColumn; s.Context.Headers.Has(col) {
		c.Link = strings.TrimSpace(s.Styles.RecordExportText(rec, col))
	}
	for _, col := range indicators {
		cell := s.styled(rec, col)
		if !hasContent(cell) {
			continue
		}
		c.Indicators = append(c.Indicators, Indicator{Column: col, Cell: cell})
	}
	return c
}

func hasContent(cell StyledCell) bool {
	for _, d := range cell {
		if d.Kind != style.KindNothing {
			return true
		}
	}
	return false
}

// lanes groups records by the display key and sorts each lane by the item sort
func (s *Session) lanes(tab *settings.Tab, records []interfaces.Record) []Lane {
	groups := aggregate.GroupForDisplay(records, tab.Config.GroupByColumn, s.Context)
	criteria := s.Config.ItemSortFor(tab)
	indicators := s.Context.Headers.Filter(s.Config.IndicatorColumnsFor(tab))

	var lanes []Lane
	for _, key := range aggregate.OrderKeys(groups, tab.Config.GroupSortBy) {
		lane := Lane{Key: key}
		for _, rec := range query.Sort(groups.Items[key], criteria, s.Context) {
			lane.Cards = append(lane.Cards, s.card(tab, rec, indicators))
		}
		lanes = append(lanes, lane)
	}
	return lanes
}

func (s *Session) boardView(tab *settings.Tab, records []interfaces.Record) *BoardView {
	return &BoardView{Column: tab.Config.GroupByColumn, Lanes: s.lanes(tab, records)}
}

// summaryView shows every section a record matches; only the catch-all is
// limited to records no other section took
func (s *Session) summaryView(tab *settings.Tab, records []interfaces.Record) *SummaryView {
	sorted := query.Sort(append([]interfaces.Record(nil), records...), s.Config.ItemSortFor(tab), s.Context)
	grouped := s.Context.Headers.Has(tab.Config.GroupByColumn)
	indicators := s.Context.Headers.Filter(s.Config.IndicatorColumnsFor(tab))

	sv := &SummaryView{}
	for _, res := range aggregate.Summarize(sorted, tab.Config.Sections, s.Context, false) {
		section := SectionView{
			Title:     res.Title,
			CatchAll:  res.CatchAll,
			BgColor:   res.Section.BgColor,
			TextColor: res.Section.TextColor,
			Count:     len(res.Records),
		}
		if grouped {
			section.Lanes = s.lanes(tab, res.Records)
		} else {
			for _, rec := range res.Records {
				section.Cards = append(section.Cards, s.card(tab, rec, indicators))
			}
		}
		sv.Sections = append(sv.Sections, section)
	}
	return sv
}

func (s *Session) countsView(tab *settings.Tab, records []interfaces.Record) *CountsView {
	res := aggregate.Count(records, tab.Config.GroupByColumn, tab.Config.Counters, s.Context)
	cv := &CountsView{GroupByColumn: res.GroupByColumn, GroupKeys: res.GroupKeys}

	for _, title := range res.Titles() {
		row := CounterRow{Title: title, Display: res.Display[title], Total: res.Total(title)}
		for _, k := range res.GroupKeys {
			row.Counts = append(row.Counts, res.Tallies[title][k])
		}
		cv.Counters = append(cv.Counters, row)
	}

	for column, byGroup := range res.Distinct {
		for group, values := range byGroup {
			for value, n := range values {
				cell := StyledCell{{Kind: style.KindText, Text: value}}
				if value != aggregate.NotAvailable {
					cell = s.Styles.ResolveDisplay(column, interfaces.ScalarCell(value))
				}
				cv.Distinct = append(cv.Distinct, DistinctRow{Group: group, Column: column, Value: cell, Count: n})
			}
		}
	}
	natural := query.NaturalSorter()
	sort.SliceStable(cv.Distinct, func(i, j int) bool {
		a, b := cv.Distinct[i], cv.Distinct[j]
		if a.Column != b.Column {
			return natural(a.Column, b.Column) < 0
		}
		if a.Group != b.Group {
			return natural(a.Group, b.Group) < 0
		}
		if a.Count != b.Count {
			return a.Count > b.Count
		}
		return natural(a.Value[0].Text, b.Value[0].Text) < 0
	})
	return cv
}

func (s *Session) hierarchyView(tab *settings.Tab, columns []string, records []interfaces.Record) *TableView {
	cmp := query.Comparator(s.Config.TableSortFor(tab), s.Context)
	roots := aggregate.BuildHierarchy(records, tab.Config.IDColumn, tab.Config.ParentColumn, cmp, s.Context)

	tv := &TableView{Columns: columns, Labels: s.labels(tab, columns)}
	for _, n := range aggregate.Flatten(roots) {
		row := make([]StyledCell, len(columns))
		for i, c := range columns {
			row[i] = s.styled(n.Record, c)
		}
		tv.Rows = append(tv.Rows, row)
		tv.Levels = append(tv.Levels, n.Level)
	}
	return tv
}
