package query

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/deepbluedave/csv-visualiser-sub000/app/interfaces"
	"github.com/deepbluedave/csv-visualiser-sub000/app/settings"
)

// FilterStage keeps the records passing a declarative filter group
type FilterStage struct {
	group *settings.FilterGroup
	name  string
}

// NewFilterStage creates a new filter stage
func NewFilterStage(group *settings.FilterGroup) *FilterStage {
	return &FilterStage{group: group, name: "filter"}
}

func (f *FilterStage) Execute(input *StageResult, ctx *Context) (*StageResult, error) {
	return &StageResult{
		Headers: input.Headers,
		Records: ApplyFilter(input.Records, f.group, ctx),
	}, nil
}

func (f *FilterStage) CanCache() bool {
	return true
}

func (f *FilterStage) CacheKey() string {
	return FilterGroupKey(f.group)
}

func (f *FilterStage) Name() string {
	return f.name
}

// FilterGroupKey renders a filter group as a stable string
func FilterGroupKey(group *settings.FilterGroup) string {
	if group.IsEmpty() {
		return "none"
	}
	parts := make([]string, len(group.Conditions))
	for i, c := range group.Conditions {
		parts[i] = conditionKey(c)
	}
	logic := "and"
	if group.IsOr() {
		logic = "or"
	}
	return logic + "(" + strings.Join(parts, ";") + ")"
}

func conditionKey(c settings.Condition) string {
	value := strconv.Quote(c.FilterValue.Text)
	if c.FilterValue.IsList {
		quoted := make([]string, len(c.FilterValue.List))
		for i, v := range c.FilterValue.List {
			quoted[i] = strconv.Quote(v)
		}
		value = "[" + strings.Join(quoted, ",") + "]"
	}
	return strconv.Quote(c.Column) + " " + c.FilterType + " " + value
}

// ExprStage keeps the records for which a compiled expression holds
type ExprStage struct {
	expr Expr
	name string
}

// NewExprStage creates a stage from a compiled expression
func NewExprStage(expr Expr) *ExprStage {
	return &ExprStage{expr: expr, name: "where"}
}

func (e *ExprStage) Execute(input *StageResult, ctx *Context) (*StageResult, error) {
	return &StageResult{
		Headers: input.Headers,
		Records: Filter(input.Records, e.expr, ctx),
	}, nil
}

func (e *ExprStage) CanCache() bool {
	return e.expr != nil
}

func (e *ExprStage) CacheKey() string {
	if e.expr == nil {
		return ""
	}
	return e.expr.String()
}

func (e *ExprStage) Name() string {
	return e.name
}

// SortStage orders records by sort criteria
type SortStage struct {
	criteria []settings.SortCriterion
	name     string
}

// NewSortStage creates a new sort stage
func NewSortStage(criteria []settings.SortCriterion) *SortStage {
	return &SortStage{criteria: criteria, name: "sort"}
}

func (s *SortStage) Execute(input *StageResult, ctx *Context) (*StageResult, error) {
	records := make([]interfaces.Record, len(input.Records))
	copy(records, input.Records)
	return &StageResult{
		Headers: input.Headers,
		Records: Sort(records, s.criteria, ctx),
	}, nil
}

func (s *SortStage) CanCache() bool {
	return true
}

func (s *SortStage) CacheKey() string {
	parts := make([]string, len(s.criteria))
	for i, c := range s.criteria {
		parts[i] = strconv.Quote(c.Column) + ":" + strings.ToLower(c.Direction)
		if len(c.Order) > 0 {
			parts[i] += ":" + strings.Join(c.Order, "\x1f")
		}
	}
	return strings.Join(parts, ",")
}

func (s *SortStage) Name() string {
	return s.name
}

// ColumnsStage narrows the visible columns. Unknown columns are skipped;
// when none is known the headers are left unchanged.
type ColumnsStage struct {
	columns []string
	name    string
}

// NewColumnsStage creates a new columns stage
func NewColumnsStage(columns []string) *ColumnsStage {
	return &ColumnsStage{columns: columns, name: "columns"}
}

func (c *ColumnsStage) Execute(input *StageResult, ctx *Context) (*StageResult, error) {
	if len(c.columns) == 0 || ctx == nil {
		return input, nil
	}
	valid := ctx.Headers.Filter(c.columns)
	if len(valid) < len(c.columns) {
		ctx.logger().Log("warn", fmt.Sprintf("[COLUMNS_SKIP] %d of %d display columns are not in the data",
			len(c.columns)-len(valid), len(c.columns)))
	}
	if len(valid) == 0 {
		return input, nil
	}
	return &StageResult{Headers: valid, Records: input.Records}, nil
}

func (c *ColumnsStage) CanCache() bool {
	return true
}

func (c *ColumnsStage) CacheKey() string {
	return strings.Join(c.columns, "\x1f")
}

func (c *ColumnsStage) Name() string {
	return c.name
}

// LimitStage keeps the first count records; count <= 0 keeps everything
type LimitStage struct {
	count int
	name  string
}

// NewLimitStage creates a new limit stage
func NewLimitStage(count int) *LimitStage {
	return &LimitStage{count: count, name: "limit"}
}

func (l *LimitStage) Execute(input *StageResult, ctx *Context) (*StageResult, error) {
	records := input.Records
	if l.count > 0 && l.count < len(records) {
		records = records[:l.count:l.count]
	}
	return &StageResult{Headers: input.Headers, Records: records}, nil
}

func (l *LimitStage) CanCache() bool {
	return false
}

func (l *LimitStage) CacheKey() string {
	return strconv.Itoa(l.count)
}

func (l *LimitStage) Name() string {
	return l.name
}
