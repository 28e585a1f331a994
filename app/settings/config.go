package settings

import (
	"strings"
)

// Filter types understood by the condition evaluator
const (
	FilterValueEquals    = "valueEquals"
	FilterValueIsNot     = "valueIsNot"
	FilterValueInList    = "valueInList"
	FilterValueNotInList = "valueNotInList"
	FilterValueNotEmpty  = "valueNotEmpty"
	FilterValueIsEmpty   = "valueIsEmpty"
	FilterBooleanTrue    = "booleanTrue"
	FilterBooleanFalse   = "booleanFalse"
	FilterContains       = "contains"
	FilterDoesNotContain = "doesNotContain"
	FilterCatchAll       = "catchAll"

	// CountAllValues marks a counter that tallies distinct values instead of testing a predicate
	CountAllValues = "countAllValues"
)

// Tab types
const (
	TabTable     = "table"
	TabKanban    = "kanban"
	TabSummary   = "summary"
	TabCounts    = "counts"
	TabHierarchy = "hierarchy"
)

// Style types
const (
	StyleNone   = "none"
	StyleIcon   = "icon"
	StyleTag    = "tag"
	StyleLookup = "lookup"
)

// Sort directions
const (
	SortAsc    = "asc"
	SortDesc   = "desc"
	SortCustom = "custom"
)

// DefaultTrueValues is used when the configuration does not list any
var DefaultTrueValues = []string{"true", "yes", "1", "y", "x", "on", "✓"}

// Config is the dashboard configuration: general settings, per-column styles and tabs.
type Config struct {
	ConfigVersion   float64                `yaml:"configVersion" json:"configVersion"`
	General         GeneralSettings        `yaml:"generalSettings" json:"generalSettings"`
	IndicatorStyles map[string]ColumnStyle `yaml:"indicatorStyles" json:"indicatorStyles"`
	Tabs            []Tab                  `yaml:"tabs" json:"tabs"`
}

// GeneralSettings apply to every tab
type GeneralSettings struct {
	DashboardTitle              string            `yaml:"dashboardTitle" json:"dashboardTitle"`
	CSVUrl                      string            `yaml:"csvUrl" json:"csvUrl"`
	TrueValues                  []string          `yaml:"trueValues" json:"trueValues"`
	CSVDelimiter                string            `yaml:"csvDelimiter" json:"csvDelimiter"`
	MultiValueColumns           []string          `yaml:"multiValueColumns" json:"multiValueColumns"`
	LinkColumns                 []string          `yaml:"linkColumns" json:"linkColumns"`
	LinkPrefixes                map[string]string `yaml:"linkPrefixes" json:"linkPrefixes"`
	DefaultCardIndicatorColumns []string          `yaml:"defaultCardIndicatorColumns" json:"defaultCardIndicatorColumns"`
	DefaultItemSortBy           []SortCriterion   `yaml:"defaultItemSortBy" json:"defaultItemSortBy"`
}

// ColumnStyle is the per-column style configuration
type ColumnStyle struct {
	Type        string `yaml:"type" json:"type"`
	TitlePrefix string `yaml:"titlePrefix" json:"titlePrefix"`

	// icon
	TrueCondition *Style `yaml:"trueCondition" json:"trueCondition"`

	// icon and legacy tag lookup; the "default" key is the fallback entry
	ValueMap map[string]Style `yaml:"valueMap" json:"valueMap"`

	// tag; nil means the key was absent, which selects the legacy valueMap
	StyleRules   []StyleRule `yaml:"styleRules" json:"styleRules"`
	DefaultStyle *Style      `yaml:"defaultStyle" json:"defaultStyle"`

	// lookup
	Source  *LookupSource `yaml:"source" json:"source"`
	StyleAs string        `yaml:"styleAs" json:"styleAs"`
}

// Style is a glyph (icon columns) or a tag style (tag columns).
// Text and Value are pointers: nil means unset, "" means render nothing.
type Style struct {
	Value       *string `yaml:"value" json:"value"`
	Text        *string `yaml:"text" json:"text"`
	BgColor     string  `yaml:"bgColor" json:"bgColor"`
	TextColor   string  `yaml:"textColor" json:"textColor"`
	BorderColor string  `yaml:"borderColor" json:"borderColor"`
	Title       string  `yaml:"title" json:"title"`
	CSSClass    string  `yaml:"cssClass" json:"cssClass"`
}

// Hidden reports whether the style asks for the value not to be shown
func (s *Style) Hidden() bool {
	if s == nil {
		return false
	}
	return (s.Text != nil && *s.Text == "") || (s.Value != nil && *s.Value == "")
}

// StyleRule is one entry of a tag column's ordered rule list
type StyleRule struct {
	MatchType string `yaml:"matchType" json:"matchType"`
	Value     string `yaml:"value" json:"value"`
	Pattern   string `yaml:"pattern" json:"pattern"`
	Style     *Style `yaml:"style" json:"style"`
}

// LookupSource resolves an ID through another column of the full table
type LookupSource struct {
	DataColumn    string `yaml:"dataColumn" json:"dataColumn"`
	DisplayColumn string `yaml:"displayColumn" json:"displayColumn"`
}

// Condition is a single declarative filter
type Condition struct {
	Column      string      `yaml:"column" json:"column"`
	FilterType  string      `yaml:"filterType" json:"filterType"`
	FilterValue FilterValue `yaml:"filterValue" json:"filterValue"`
}

// FilterGroup combines conditions with AND (default) or OR
type FilterGroup struct {
	Logic      string      `yaml:"logic" json:"logic"`
	Conditions []Condition `yaml:"conditions" json:"conditions"`
}

// IsOr reports whether the group uses OR logic
func (g *FilterGroup) IsOr() bool {
	return g != nil && strings.EqualFold(strings.TrimSpace(g.Logic), "OR")
}

// IsEmpty is true for a nil group or one without conditions
func (g *FilterGroup) IsEmpty() bool {
	return g == nil || len(g.Conditions) == 0
}

// SortCriterion orders records by one column
type SortCriterion struct {
	Column    string   `yaml:"column" json:"column"`
	Direction string   `yaml:"direction" json:"direction"`
	Order     []string `yaml:"order" json:"order"`
}

// Tab is one presentation of the table
type Tab struct {
	ID        string       `yaml:"id" json:"id"`
	Title     string       `yaml:"title" json:"title"`
	Type      string       `yaml:"type" json:"type"`
	Enabled   *bool        `yaml:"enabled" json:"enabled"`
	BgColor   string       `yaml:"bgColor" json:"bgColor"`
	TextColor string       `yaml:"textColor" json:"textColor"`
	Filter    *FilterGroup `yaml:"filter" json:"filter"`
	Config    TabConfig    `yaml:"config" json:"config"`
}

// IsEnabled defaults to true when the flag is absent
func (t *Tab) IsEnabled() bool {
	return t.Enabled == nil || *t.Enabled
}

// TabConfig carries the per-type presentation settings; each tab type reads its own subset.
type TabConfig struct {
	// table, hierarchy
	DisplayColumns []string          `yaml:"displayColumns" json:"displayColumns"`
	ColumnLabels   map[string]string `yaml:"columnLabels" json:"columnLabels"`
	SortBy         []SortCriterion   `yaml:"sortBy" json:"sortBy"`
	IDColumn       string            `yaml:"idColumn" json:"idColumn"`
	ParentColumn   string            `yaml:"parentColumn" json:"parentColumn"`

	// kanban, summary, counts
	GroupByColumn        string          `yaml:"groupByColumn" json:"groupByColumn"`
	GroupSortBy          GroupSortBy     `yaml:"groupSortBy" json:"groupSortBy"`
	CardTitleColumn      string          `yaml:"cardTitleColumn" json:"cardTitleColumn"`
	CardLinkColumn       string          `yaml:"cardLinkColumn" json:"cardLinkColumn"`
	CardIndicatorColumns []string        `yaml:"cardIndicatorColumns" json:"cardIndicatorColumns"`
	ItemSortBy           []SortCriterion `yaml:"itemSortBy" json:"itemSortBy"`

	// summary
	Sections []Section `yaml:"sections" json:"sections"`

	// counts
	Counters []Counter `yaml:"counters" json:"counters"`
}

// Section is one block of a summary tab
type Section struct {
	ID           string       `yaml:"id" json:"id"`
	Title        string       `yaml:"title" json:"title"`
	FilterColumn string       `yaml:"filterColumn" json:"filterColumn"`
	FilterType   string       `yaml:"filterType" json:"filterType"`
	FilterValue  FilterValue  `yaml:"filterValue" json:"filterValue"`
	Filter       *FilterGroup `yaml:"filter" json:"filter"`
	BgColor      string       `yaml:"bgColor" json:"bgColor"`
	TextColor    string       `yaml:"textColor" json:"textColor"`
}

// IsCatchAll reports whether the section collects the records no other section claimed
func (s *Section) IsCatchAll() bool {
	return s.FilterType == FilterCatchAll
}

// Condition returns the section's own condition
func (s *Section) Condition() Condition {
	return Condition{Column: s.FilterColumn, FilterType: s.FilterType, FilterValue: s.FilterValue}
}

// Counter is a named predicate, or a distinct-value tally, of a counts tab
type Counter struct {
	Title       string          `yaml:"title" json:"title"`
	Column      string          `yaml:"column" json:"column"`
	FilterType  string          `yaml:"filterType" json:"filterType"`
	FilterValue FilterValue     `yaml:"filterValue" json:"filterValue"`
	Filter      *FilterGroup    `yaml:"filter" json:"filter"`
	Display     *CounterDisplay `yaml:"display" json:"display"`
}

// IsDistinct reports whether the counter tallies every distinct value of its column
func (c *Counter) IsDistinct() bool {
	return c.FilterType == CountAllValues
}

// Condition returns the counter's single condition
func (c *Counter) Condition() Condition {
	return Condition{Column: c.Column, FilterType: c.FilterType, FilterValue: c.FilterValue}
}

// CounterDisplay decorates a counter heading with an icon or a text badge
type CounterDisplay struct {
	Type     string `yaml:"type" json:"type"`
	Value    string `yaml:"value" json:"value"`
	CSSClass string `yaml:"cssClass" json:"cssClass"`
}

// TruthyValues returns the configured truth list, or the default one
func (c *Config) TruthyValues() []string {
	if c == nil || len(c.General.TrueValues) == 0 {
		return DefaultTrueValues
	}
	return c.General.TrueValues
}

// Delimiter returns the configured field delimiter, "," when unset
func (c *Config) Delimiter() string {
	if c == nil || c.General.CSVDelimiter == "" {
		return ","
	}
	return c.General.CSVDelimiter
}

// Tab finds a tab by ID
func (c *Config) Tab(id string) (*Tab, bool) {
	if c == nil {
		return nil, false
	}
	for i := range c.Tabs {
		if c.Tabs[i].ID == id {
			return &c.Tabs[i], true
		}
	}
	return nil, false
}

// EnabledTabs returns the tabs that are not switched off, in configuration order
func (c *Config) EnabledTabs() []*Tab {
	if c == nil {
		return nil
	}
	tabs := make([]*Tab, 0, len(c.Tabs))
	for i := range c.Tabs {
		if c.Tabs[i].IsEnabled() {
			tabs = append(tabs, &c.Tabs[i])
		}
	}
	return tabs
}

// ItemSortFor resolves a card tab's item sort: the tab's own list, else the general default
func (c *Config) ItemSortFor(tab *Tab) []SortCriterion {
	if tab != nil && tab.Config.ItemSortBy != nil {
		return tab.Config.ItemSortBy
	}
	if c == nil {
		return nil
	}
	return c.General.DefaultItemSortBy
}

// TableSortFor resolves a table tab's sort: sortBy, else the general item sort default
func (c *Config) TableSortFor(tab *Tab) []SortCriterion {
	if tab != nil && tab.Config.SortBy != nil {
		return tab.Config.SortBy
	}
	if c == nil {
		return nil
	}
	return c.General.DefaultItemSortBy
}

// IndicatorColumnsFor resolves a card tab's indicator columns with the general default
func (c *Config) IndicatorColumnsFor(tab *Tab) []string {
	if tab != nil && tab.Config.CardIndicatorColumns != nil {
		return tab.Config.CardIndicatorColumns
	}
	if c == nil {
		return nil
	}
	return c.General.DefaultCardIndicatorColumns
}
