package app

import (
	"github.com/deepbluedave/csv-visualiser-sub000/app/settings"
	"github.com/deepbluedave/csv-visualiser-sub000/app/style"
)

// View is one tab prepared for display. Exactly one of the per-type parts is
// set, matching Tab.Type.
type View struct {
	Tab   *settings.Tab
	Total int // records left after the tab filter and the where expression

	Table     *TableView
	Board     *BoardView
	Summary   *SummaryView
	Counts    *CountsView
	Hierarchy *TableView
}

// StyledCell is the display of one cell, one descriptor per value
type StyledCell []style.Descriptor

// TableView is a header and styled rows. For hierarchies Levels holds each
// row's depth.
type TableView struct {
	Columns []string
	Labels  []string
	Rows    [][]StyledCell
	Levels  []int
	// More counts matching records left out by the row limit
	More int
}

// Card is one record shown on a board or in a summary section
type Card struct {
	Title      StyledCell
	Link       string
	Indicators []Indicator
}

// Indicator is one styled indicator column of a card
type Indicator struct {
	Column string
	Cell   StyledCell
}

// Lane is the cards of one group key
type Lane struct {
	Key   string
	Cards []Card
}

// BoardView is a kanban tab
type BoardView struct {
	Column string
	Lanes  []Lane
}

// SectionView is one summary section. When the tab groups, Lanes holds the
// section's cards per group key and Cards is empty.
type SectionView struct {
	Title     string
	CatchAll  bool
	BgColor   string
	TextColor string
	Count     int
	Cards     []Card
	Lanes     []Lane
}

// SummaryView is a summary tab
type SummaryView struct {
	Sections []SectionView
}

// CounterRow is one predicate counter across the group keys
type CounterRow struct {
	Title   string
	Display *settings.CounterDisplay
	Counts  []int
	Total   int
}

// DistinctRow is one value tally of a countAllValues counter
type DistinctRow struct {
	Group  string
	Column string
	Value  StyledCell
	Count  int
}

// CountsView is a counts tab
type CountsView struct {
	GroupByColumn string
	GroupKeys     []string
	Counters      []CounterRow
	Distinct      []DistinctRow
}
