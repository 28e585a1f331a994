package aggregate

import (
	"fmt"
	"strings"

	"github.com/deepbluedave/csv-visualiser-sub000/app/interfaces"
	"github.com/deepbluedave/csv-visualiser-sub000/app/query"
	"github.com/deepbluedave/csv-visualiser-sub000/app/settings"
)

// TotalKey holds a counter's grand total inside its tally
const TotalKey = "__total__"

// NotAvailable stands in for an empty value in distinct-value tallies
const NotAvailable = "N/A"

// CountsResult is the outcome of a counts tab
type CountsResult struct {
	GroupByColumn string
	// Tallies maps counter title -> group key -> matches, plus TotalKey
	Tallies map[string]map[string]int
	// Distinct maps counted column -> group key -> value -> occurrences
	Distinct map[string]map[string]map[string]int
	// GroupKeys are every group key seen, whether or not a counter matched
	GroupKeys []string
	Display   map[string]*settings.CounterDisplay
}

// Titles returns the titles of the counters that matched at least once, ordered
func (r *CountsResult) Titles() []string {
	return SortedKeys(r.Tallies)
}

// HasDistinct reports whether any distinct-value counter was configured
func (r *CountsResult) HasDistinct() bool {
	return r.Distinct != nil
}

// Total returns a counter's grand total
func (r *CountsResult) Total(title string) int {
	return r.Tallies[title][TotalKey]
}

// Count tests every record against every counter, per group key. A record
// with several group values is counted under each of them; the grand total
// counts it once. Counters missing a title, a column or a filter type, or
// naming a column that is not in the data, are skipped.
func Count(records []interfaces.Record, groupByColumn string, counters []settings.Counter, ctx *query.Context) *CountsResult {
	res := &CountsResult{
		GroupByColumn: groupByColumn,
		Tallies:       map[string]map[string]int{},
		Display:       map[string]*settings.CounterDisplay{},
	}
	log := ctx.Log
	if ctx == nil || !ctx.Headers.Has(groupByColumn) {
		log("warn", fmt.Sprintf("[COUNTS_SKIP] groupByColumn %q is not in the data", groupByColumn))
		return res
	}

	var predicates, distinct []settings.Counter
	for _, c := range counters {
		switch {
		case c.IsDistinct() && c.Column != "" && ctx.Headers.Has(c.Column):
			distinct = append(distinct, c)
		case c.IsDistinct():
			log("warn", fmt.Sprintf("[COUNTS_SKIP] Distinct counter %q has no usable column", c.Title))
		case c.Title == "":
			log("warn", "[COUNTS_SKIP] Counter without a title")
		case !c.Filter.IsEmpty():
			predicates = append(predicates, c)
		case c.Column == "" || c.FilterType == "" || !ctx.Headers.Has(c.Column):
			log("warn", fmt.Sprintf("[COUNTS_SKIP] Counter %q needs a known column and a filter type", c.Title))
		default:
			predicates = append(predicates, c)
		}
	}
	if len(distinct) > 0 {
		res.Distinct = map[string]map[string]map[string]int{}
	}

	seenKeys := map[string]bool{}
	for _, rec := range records {
		keys := CountingKeys(rec, groupByColumn)
		for _, k := range keys {
			seenKeys[k] = true
		}

		for i := range predicates {
			c := &predicates[i]
			if !counterMatches(rec, c, ctx) {
				continue
			}
			tally := res.Tallies[c.Title]
			if tally == nil {
				tally = map[string]int{TotalKey: 0}
				res.Tallies[c.Title] = tally
				res.Display[c.Title] = c.Display
			}
			for _, k := range keys {
				tally[k]++
			}
			tally[TotalKey]++
		}

		for _, c := range distinct {
			byGroup := res.Distinct[c.Column]
			if byGroup == nil {
				byGroup = map[string]map[string]int{}
				res.Distinct[c.Column] = byGroup
			}
			values := distinctValues(rec, c.Column)
			for _, k := range keys {
				if byGroup[k] == nil {
					byGroup[k] = map[string]int{}
				}
				for _, v := range values {
					byGroup[k][v]++
				}
			}
		}
	}

	res.GroupKeys = SortedKeys(seenKeys)
	return res
}

func counterMatches(rec interfaces.Record, c *settings.Counter, ctx *query.Context) bool {
	if !c.Filter.IsEmpty() {
		return query.MatchGroup(rec, c.Filter, ctx)
	}
	return query.Check(rec, c.Condition(), ctx)
}

// distinctValues are the trimmed non-empty values of a cell; an empty scalar
// counts as NotAvailable
func distinctValues(rec interfaces.Record, column string) []string {
	cell, ok := rec.Get(column)
	if !ok {
		return []string{NotAvailable}
	}
	if !cell.IsMulti() {
		v := strings.TrimSpace(cell.First())
		if v == "" {
			v = NotAvailable
		}
		return []string{v}
	}
	var out []string
	for _, v := range cell.Values() {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
