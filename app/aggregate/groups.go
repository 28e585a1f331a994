// Package aggregate buckets records by a group column for the board, summary,
// counts and hierarchy presentations.
package aggregate

import (
	"strings"

	"github.com/deepbluedave/csv-visualiser-sub000/app/interfaces"
	"github.com/deepbluedave/csv-visualiser-sub000/app/query"
)

// Uncategorized is the key of records whose group column is empty or missing
const Uncategorized = "Uncategorized"

// Groups holds records bucketed by key. Keys are in first-seen order.
type Groups struct {
	Column string
	Keys   []string
	Items  map[string][]interfaces.Record
}

func newGroups(column string) *Groups {
	return &Groups{Column: column, Items: map[string][]interfaces.Record{}}
}

func (g *Groups) add(key string, rec interfaces.Record) {
	if _, ok := g.Items[key]; !ok {
		g.Keys = append(g.Keys, key)
	}
	g.Items[key] = append(g.Items[key], rec)
}

// Count returns the number of records under key
func (g *Groups) Count(key string) int {
	return len(g.Items[key])
}

// Len is the number of keys
func (g *Groups) Len() int {
	return len(g.Keys)
}

// DisplayKey is the bucket a record is drawn in: the first value of the
// column, trimmed. Multi-value columns do not duplicate cards.
func DisplayKey(rec interfaces.Record, column string) string {
	cell, ok := rec.Get(column)
	if !ok {
		return Uncategorized
	}
	for _, v := range cell.Values() {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return Uncategorized
}

// CountingKeys are the buckets a record is counted in: every non-empty value
// of the column.
func CountingKeys(rec interfaces.Record, column string) []string {
	cell, ok := rec.Get(column)
	if !ok {
		return []string{Uncategorized}
	}
	var keys []string
	seen := map[string]bool{}
	for _, v := range cell.Values() {
		v = strings.TrimSpace(v)
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		keys = append(keys, v)
	}
	if len(keys) == 0 {
		return []string{Uncategorized}
	}
	return keys
}

// GroupForDisplay buckets each record once by DisplayKey. A column that is not
// in the data puts every record in Uncategorized.
func GroupForDisplay(records []interfaces.Record, column string, ctx *query.Context) *Groups {
	g := newGroups(column)
	valid := ctx != nil && ctx.Headers.Has(column)
	for _, rec := range records {
		key := Uncategorized
		if valid {
			key = DisplayKey(rec, column)
		}
		g.add(key, rec)
	}
	return g
}

// GroupForCounting buckets each record under every one of its CountingKeys
func GroupForCounting(records []interfaces.Record, column string, ctx *query.Context) *Groups {
	g := newGroups(column)
	valid := ctx != nil && ctx.Headers.Has(column)
	for _, rec := range records {
		if !valid {
			g.add(Uncategorized, rec)
			continue
		}
		for _, key := range CountingKeys(rec, column) {
			g.add(key, rec)
		}
	}
	return g
}
