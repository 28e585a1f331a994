package style

import (
	"fmt"
	"strings"

	"github.com/deepbluedave/csv-visualiser-sub000/app/interfaces"
	"github.com/deepbluedave/csv-visualiser-sub000/app/query"
	"github.com/deepbluedave/csv-visualiser-sub000/app/settings"
)

// Kind is the shape of a resolved value
type Kind int

const (
	KindNothing Kind = iota
	KindText
	KindIcon
	KindTag
	KindLink
)

func (k Kind) String() string {
	switch k {
	case KindText:
		return "text"
	case KindIcon:
		return "icon"
	case KindTag:
		return "tag"
	case KindLink:
		return "link"
	default:
		return "nothing"
	}
}

// Descriptor describes how one value is shown
type Descriptor struct {
	Kind        Kind
	Text        string
	Title       string
	URL         string
	BgColor     string
	TextColor   string
	BorderColor string
	CSSClass    string
}

const (
	genericTagClass = "tag-default"

	notFoundBg  = "#fff3cd"
	notFoundFg  = "#664d03"
	configErrBg = "#f8d7da"
	configErrFg = "#58151c"
)

// column is the compiled style of one column
type column struct {
	name  string
	cfg   settings.ColumnStyle
	kind  string
	rules []Rule
	// styleRules key was present; it replaces the legacy valueMap
	hasRules bool
	// an empty value has a style of its own
	explicitEmpty bool
	lookup        *lookupIndex
}

// Resolver maps cell values to display descriptors and export text.
// It is built once per loaded table and is read-only afterwards.
type Resolver struct {
	cfg     *settings.Config
	qctx    *query.Context
	columns map[string]*column
	links   map[string]bool
	logger  interfaces.Logger
}

// NewResolver compiles every configured column style against table.
// cfg may be nil.
func NewResolver(cfg *settings.Config, table *interfaces.Table, logger interfaces.Logger) *Resolver {
	logger = interfaces.OrNop(logger)
	if table == nil {
		table = &interfaces.Table{}
	}
	r := &Resolver{
		cfg:     cfg,
		qctx:    query.NewContext(table, cfg, logger),
		columns: map[string]*column{},
		links:   map[string]bool{},
		logger:  logger,
	}
	if cfg == nil {
		return r
	}
	for _, l := range cfg.General.LinkColumns {
		r.links[l] = true
	}
	for name, cs := range cfg.IndicatorStyles {
		r.columns[name] = compileColumn(name, cs, table, logger)
	}
	return r
}

func compileColumn(name string, cs settings.ColumnStyle, table *interfaces.Table, logger interfaces.Logger) *column {
	c := &column{name: name, cfg: cs, kind: strings.ToLower(strings.TrimSpace(cs.Type))}
	switch c.kind {
	case settings.StyleIcon, settings.StyleNone:
	case settings.StyleTag:
		if cs.StyleRules != nil {
			c.hasRules = true
			c.rules = CompileRules(name, cs.StyleRules, logger)
		}
	case settings.StyleLookup:
		c.lookup = buildLookup(name, cs.Source, table, logger)
	case "":
		c.kind = settings.StyleNone
	default:
		logger.Log("warn", fmt.Sprintf("[STYLE_UNKNOWN_TYPE] Column %q has unknown style type %q, treated as none", name, cs.Type))
		c.kind = settings.StyleNone
	}

	if _, ok := cs.ValueMap[""]; ok {
		c.explicitEmpty = true
	}
	if _, ok := firstMatch(c.rules, ""); ok {
		c.explicitEmpty = true
	}
	return c
}

// IsTruthy reports whether value is one of the configured truth values
func (r *Resolver) IsTruthy(value string) bool {
	return r.qctx.IsTruthy(value)
}

// ResolveDisplay returns one descriptor per element of cell
func (r *Resolver) ResolveDisplay(columnName string, cell interfaces.Cell) []Descriptor {
	values := cell.Values()
	if len(values) == 0 {
		values = []string{""}
	}
	out := make([]Descriptor, 0, len(values))
	for _, v := range values {
		out = append(out, r.displayValue(columnName, v))
	}
	return out
}

// ResolveExportText renders cell as plain text the way it is displayed.
// Multi-value elements are resolved one by one and the non-empty results
// joined with ", ".
func (r *Resolver) ResolveExportText(columnName string, cell interfaces.Cell) string {
	if !cell.IsMulti() {
		return r.exportValue(columnName, cell.First())
	}
	parts := make([]string, 0, len(cell.Values()))
	for _, v := range cell.Values() {
		if t := r.exportValue(columnName, v); t != "" {
			parts = append(parts, t)
		}
	}
	return strings.Join(parts, ", ")
}

// RecordExportText is ResolveExportText for a record's column; a missing
// column exports as empty
func (r *Resolver) RecordExportText(rec interfaces.Record, columnName string) string {
	cell, ok := rec.Get(columnName)
	if !ok {
		return ""
	}
	return r.ResolveExportText(columnName, cell)
}

// linkURL returns the target of a link column value, if it has one
func (r *Resolver) linkURL(columnName, value string) string {
	v := strings.TrimSpace(value)
	if v == "" {
		return ""
	}
	if r.cfg != nil {
		if prefix := r.cfg.General.LinkPrefixes[columnName]; prefix != "" {
			return prefix + v
		}
	}
	if strings.HasPrefix(v, "http://") || strings.HasPrefix(v, "https://") {
		return v
	}
	return ""
}

func (r *Resolver) displayValue(columnName, value string) Descriptor {
	if r.links[columnName] {
		if url := r.linkURL(columnName, value); url != "" {
			return Descriptor{Kind: KindLink, Text: strings.TrimSpace(value), URL: url, Title: "Open Link: " + url}
		}
		return textDescriptor(strings.TrimSpace(value))
	}

	c, ok := r.columns[columnName]
	if !ok {
		return textDescriptor(value)
	}
	switch c.kind {
	case settings.StyleIcon:
		return r.displayIcon(c, value)
	case settings.StyleTag:
		return c.displayTag(value)
	case settings.StyleLookup:
		return c.displayLookup(value)
	default:
		return textDescriptor(value)
	}
}

func (r *Resolver) exportValue(columnName, value string) string {
	if r.links[columnName] {
		if url := r.linkURL(columnName, value); url != "" {
			return url
		}
		return strings.TrimSpace(value)
	}

	c, ok := r.columns[columnName]
	if !ok {
		return value
	}
	switch c.kind {
	case settings.StyleIcon:
		if s, _, matched := r.iconStyle(c, value); matched {
			return *s.Value
		}
		return value
	case settings.StyleTag:
		s := c.tagStyle(value)
		if s == nil {
			return value
		}
		if s.Hidden() {
			return ""
		}
		if s.Text != nil {
			return *s.Text
		}
		return value
	case settings.StyleLookup:
		return c.displayLookup(value).Text
	default:
		return value
	}
}

func textDescriptor(value string) Descriptor {
	if value == "" {
		return Descriptor{Kind: KindNothing}
	}
	return Descriptor{Kind: KindText, Text: value}
}

// iconStyle walks trueCondition, then the valueMap chain, then valueMap.default.
// Only map entries that carry a value count as a match. truthy reports that
// trueCondition matched.
func (r *Resolver) iconStyle(c *column, value string) (s *settings.Style, truthy bool, ok bool) {
	if c.cfg.TrueCondition != nil && r.IsTruthy(value) {
		tc := *c.cfg.TrueCondition
		if tc.Value == nil || *tc.Value == "" {
			q := "?"
			tc.Value = &q
		}
		return &tc, true, true
	}
	if m, found := lookupValueMap(c.cfg.ValueMap, value); found && m.Value != nil {
		return m, false, true
	}
	if def, found := c.cfg.ValueMap["default"]; found && def.Value != nil {
		return &def, false, true
	}
	return nil, false, false
}

func (r *Resolver) displayIcon(c *column, value string) Descriptor {
	s, truthy, ok := r.iconStyle(c, value)
	if !ok {
		return textDescriptor(value)
	}
	if *s.Value == "" {
		return Descriptor{Kind: KindNothing}
	}
	title := s.Title
	switch {
	case title != "":
	case truthy:
		title = c.name
	default:
		title = c.name + ": " + value
	}
	return Descriptor{Kind: KindIcon, Text: *s.Value, Title: title, CSSClass: s.CSSClass}
}

// lookupValueMap tries the exact key, the lower-cased key, then the keys
// used to hide falsy spellings
func lookupValueMap(m map[string]settings.Style, value string) (*settings.Style, bool) {
	if m == nil {
		return nil, false
	}
	if s, ok := m[value]; ok {
		return &s, true
	}
	lower := strings.ToLower(value)
	if s, ok := m[lower]; ok {
		return &s, true
	}
	candidates := []struct {
		key  string
		when bool
	}{
		{"false", lower == "false"},
		{"FALSE", value == "FALSE"},
		{"0", value == "0"},
		{"", value == ""},
	}
	for _, c := range candidates {
		if !c.when {
			continue
		}
		if s, ok := m[c.key]; ok {
			return &s, true
		}
	}
	return nil, false
}

// tagStyle resolves a tag value: styleRules then defaultStyle, or the legacy
// valueMap when styleRules is absent. nil means nothing resolved.
func (c *column) tagStyle(value string) *settings.Style {
	if c.hasRules {
		if s, ok := firstMatch(c.rules, value); ok {
			return s
		}
		return c.cfg.DefaultStyle
	}
	if s, ok := lookupValueMap(c.cfg.ValueMap, value); ok {
		return s
	}
	if def, ok := c.cfg.ValueMap["default"]; ok {
		return &def
	}
	return nil
}

func (c *column) displayTag(value string) Descriptor {
	if value == "" && !c.explicitEmpty {
		return Descriptor{Kind: KindNothing}
	}
	s := c.tagStyle(value)
	if s == nil {
		return genericTag(value, c.cfg.TitlePrefix+value)
	}
	if s.Hidden() {
		return Descriptor{Kind: KindNothing}
	}
	return styledTag(s, value, c.cfg.TitlePrefix)
}

func genericTag(value, title string) Descriptor {
	if value == "" {
		return Descriptor{Kind: KindNothing}
	}
	return Descriptor{Kind: KindTag, Text: value, Title: title, CSSClass: genericTagClass}
}

func styledTag(s *settings.Style, value, titlePrefix string) Descriptor {
	d := Descriptor{
		Kind:        KindTag,
		Text:        value,
		Title:       s.Title,
		BgColor:     s.BgColor,
		TextColor:   s.TextColor,
		BorderColor: s.BorderColor,
		CSSClass:    s.CSSClass,
	}
	if s.Text != nil {
		d.Text = *s.Text
	}
	if d.Title == "" {
		d.Title = titlePrefix + value
	}
	if d.BorderColor == "" {
		d.BorderColor = d.BgColor
	}
	return d
}
