package query

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/deepbluedave/csv-visualiser-sub000/app/interfaces"
	"github.com/deepbluedave/csv-visualiser-sub000/app/settings"
	"github.com/deepbluedave/csv-visualiser-sub000/app/timestamps"
)

// sortKey is a validated criterion ready for comparison
type sortKey struct {
	column    string
	direction string
	order     map[string]int // custom direction only, lower-cased value -> position
}

// ValidateCriteria drops criteria that cannot be applied and repairs the rest:
// unknown columns are dropped, an invalid direction becomes asc, and a custom
// direction without an order becomes asc.
func ValidateCriteria(criteria []settings.SortCriterion, ctx *Context) []settings.SortCriterion {
	valid := make([]settings.SortCriterion, 0, len(criteria))
	for _, c := range criteria {
		if c.Column == "" {
			ctx.logger().Log("warn", "[SORT_DROP] Criterion without a column")
			continue
		}
		if ctx == nil || !ctx.Headers.Has(c.Column) {
			ctx.logger().Log("warn", fmt.Sprintf("[SORT_DROP] Column %q is not in the data", c.Column))
			continue
		}
		dir := strings.ToLower(strings.TrimSpace(c.Direction))
		switch dir {
		case settings.SortAsc, settings.SortDesc:
		case settings.SortCustom:
			if len(c.Order) == 0 {
				ctx.logger().Log("warn", fmt.Sprintf("[SORT_FALLBACK] Column %q uses custom order without an order list; using asc", c.Column))
				dir = settings.SortAsc
			}
		default:
			if dir != "" {
				ctx.logger().Log("warn", fmt.Sprintf("[SORT_FALLBACK] Invalid direction %q for column %q; using asc", c.Direction, c.Column))
			}
			dir = settings.SortAsc
		}
		c.Direction = dir
		valid = append(valid, c)
	}
	return valid
}

// Sort orders records in place by criteria and returns the same slice.
// The sort is stable. Empty and missing values sort last in every direction.
func Sort(records []interfaces.Record, criteria []settings.SortCriterion, ctx *Context) []interfaces.Record {
	if len(records) < 2 || len(criteria) == 0 {
		return records
	}
	keys := buildSortKeys(ValidateCriteria(criteria, ctx))
	if len(keys) == 0 {
		return records
	}

	cmp := newComparerFor(ctx)
	sort.SliceStable(records, func(i, j int) bool {
		return cmp.compareRecords(records[i], records[j], keys) < 0
	})
	return records
}

// Comparator returns a three-way record comparison for criteria, for callers
// that sort something other than a record slice (hierarchy children)
func Comparator(criteria []settings.SortCriterion, ctx *Context) func(a, b interfaces.Record) int {
	keys := buildSortKeys(ValidateCriteria(criteria, ctx))
	cmp := newComparerFor(ctx)
	return func(a, b interfaces.Record) int {
		return cmp.compareRecords(a, b, keys)
	}
}

func buildSortKeys(criteria []settings.SortCriterion) []sortKey {
	keys := make([]sortKey, 0, len(criteria))
	for _, c := range criteria {
		k := sortKey{column: c.Column, direction: c.Direction}
		if c.Direction == settings.SortCustom {
			k.order = make(map[string]int, len(c.Order))
			for i, v := range c.Order {
				lv := strings.ToLower(v)
				if _, dup := k.order[lv]; !dup {
					k.order[lv] = i
				}
			}
		}
		keys = append(keys, k)
	}
	return keys
}

// comparer owns a collator; collators are not safe for concurrent use
type comparer struct {
	collator *collate.Collator
	loc      *time.Location
}

func newComparer() *comparer {
	return &comparer{
		collator: collate.New(language.Und, collate.Numeric, collate.IgnoreCase, collate.IgnoreDiacritics),
		loc:      time.UTC,
	}
}

func newComparerFor(ctx *Context) *comparer {
	c := newComparer()
	if ctx != nil && ctx.Location != nil {
		c.loc = ctx.Location
	}
	return c
}

func (c *comparer) compareRecords(a, b interfaces.Record, keys []sortKey) int {
	for _, k := range keys {
		va, aNull := sortValue(a, k.column)
		vb, bNull := sortValue(b, k.column)

		switch {
		case aNull && bNull:
			continue
		case aNull:
			return 1
		case bNull:
			return -1
		}

		var result int
		if k.direction == settings.SortCustom {
			result = c.compareCustom(va, vb, k.order)
		} else {
			result = c.compareValues(va, vb)
			if k.direction == settings.SortDesc {
				result = -result
			}
		}
		if result != 0 {
			return result
		}
	}
	return 0
}

// sortValue returns the comparable text of a cell and whether it counts as null
func sortValue(rec interfaces.Record, column string) (string, bool) {
	cell, ok := rec.Get(column)
	if !ok || cell.IsEmpty() {
		return "", true
	}
	return strings.TrimSpace(cell.String()), false
}

func (c *comparer) compareCustom(a, b string, order map[string]int) int {
	ia, okA := order[strings.ToLower(a)]
	ib, okB := order[strings.ToLower(b)]
	switch {
	case okA && okB:
		return compareInts(ia, ib)
	case okA:
		return -1
	case okB:
		return 1
	default:
		return c.Natural(a, b)
	}
}

// compareValues compares numerically, then chronologically, then naturally
func (c *comparer) compareValues(a, b string) int {
	if na, ok := parseNumber(a); ok {
		if nb, ok := parseNumber(b); ok {
			return compareFloats(na, nb)
		}
	}
	if ta, ok := timestamps.ParseTimestamp(a, c.loc); ok {
		if tb, ok := timestamps.ParseTimestamp(b, c.loc); ok {
			return ta.Compare(tb)
		}
	}
	return c.Natural(a, b)
}

// Natural is a case and accent insensitive comparison in which digit runs
// compare by value, so "Item 9" sorts before "Item 10"
func (c *comparer) Natural(a, b string) int {
	return c.collator.CompareString(a, b)
}

// NaturalSorter returns a reusable natural comparison; not safe for concurrent use
func NaturalSorter() func(a, b string) int {
	return newComparer().Natural
}

func parseNumber(s string) (float64, bool) {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

func compareFloats(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func compareInts(a, b int) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}
