package query

import (
	"github.com/deepbluedave/csv-visualiser-sub000/app/interfaces"
	"github.com/deepbluedave/csv-visualiser-sub000/app/settings"
)

// MatchGroup reports whether rec passes the group. A nil or empty group matches everything.
func MatchGroup(rec interfaces.Record, group *settings.FilterGroup, ctx *Context) bool {
	if group.IsEmpty() {
		return true
	}
	if group.IsOr() {
		for _, cond := range group.Conditions {
			if Check(rec, cond, ctx) {
				return true
			}
		}
		return false
	}
	for _, cond := range group.Conditions {
		if !Check(rec, cond, ctx) {
			return false
		}
	}
	return true
}

// ApplyFilter returns the records passing group, in input order.
// A nil or empty group returns records unchanged.
func ApplyFilter(records []interfaces.Record, group *settings.FilterGroup, ctx *Context) []interfaces.Record {
	if group.IsEmpty() {
		return records
	}
	out := make([]interfaces.Record, 0, len(records))
	for _, rec := range records {
		if MatchGroup(rec, group, ctx) {
			out = append(out, rec)
		}
	}
	return out
}

// Intersect keeps the records passing every group, e.g. a tab filter and a section filter
func Intersect(records []interfaces.Record, ctx *Context, groups ...*settings.FilterGroup) []interfaces.Record {
	active := make([]*settings.FilterGroup, 0, len(groups))
	for _, g := range groups {
		if !g.IsEmpty() {
			active = append(active, g)
		}
	}
	if len(active) == 0 {
		return records
	}
	out := make([]interfaces.Record, 0, len(records))
	for _, rec := range records {
		keep := true
		for _, g := range active {
			if !MatchGroup(rec, g, ctx) {
				keep = false
				break
			}
		}
		if keep {
			out = append(out, rec)
		}
	}
	return out
}
