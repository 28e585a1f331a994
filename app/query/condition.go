package query

import (
	"fmt"
	"strings"

	"github.com/deepbluedave/csv-visualiser-sub000/app/interfaces"
	"github.com/deepbluedave/csv-visualiser-sub000/app/settings"
)

func normalizeTruth(v string) string {
	return strings.ToLower(strings.TrimSpace(v))
}

// IsTruthy reports whether value, lower-cased and trimmed, is in truthy.
// An empty truthy list selects settings.DefaultTrueValues. Empty values are never truthy.
func IsTruthy(value string, truthy []string) bool {
	v := normalizeTruth(value)
	if v == "" {
		return false
	}
	if len(truthy) == 0 {
		truthy = settings.DefaultTrueValues
	}
	for _, t := range truthy {
		if normalizeTruth(t) == v {
			return true
		}
	}
	return false
}

// Check evaluates one condition against a record. It never fails: a missing
// or unknown column, or an unknown filter type, makes the condition false.
func Check(rec interfaces.Record, cond settings.Condition, ctx *Context) bool {
	if cond.FilterType == settings.FilterCatchAll {
		return true
	}
	if cond.Column == "" || ctx == nil || !ctx.Headers.Has(cond.Column) {
		return false
	}

	values := cellValues(rec, cond.Column)

	switch cond.FilterType {
	case settings.FilterValueEquals:
		target := strings.ToLower(filterText(cond.FilterValue))
		return anyValue(values, func(v string) bool { return strings.ToLower(v) == target })
	case settings.FilterValueIsNot:
		target := strings.ToLower(filterText(cond.FilterValue))
		return everyValue(values, func(v string) bool { return strings.ToLower(v) != target })
	case settings.FilterValueInList:
		list := filterList(cond.FilterValue)
		if len(list) == 0 {
			return false
		}
		return anyValue(values, func(v string) bool { return list[strings.ToLower(v)] })
	case settings.FilterValueNotInList:
		list := filterList(cond.FilterValue)
		if len(list) == 0 {
			return true
		}
		return everyValue(values, func(v string) bool { return !list[strings.ToLower(v)] })
	case settings.FilterValueNotEmpty:
		return anyValue(values, func(v string) bool { return v != "" })
	case settings.FilterValueIsEmpty:
		return everyValue(values, func(v string) bool { return v == "" })
	case settings.FilterBooleanTrue:
		return anyValue(values, ctx.IsTruthy)
	case settings.FilterBooleanFalse:
		return everyValue(values, func(v string) bool { return !ctx.IsTruthy(v) })
	case settings.FilterContains:
		term := strings.ToLower(filterText(cond.FilterValue))
		if term == "" {
			return false
		}
		return anyValue(values, func(v string) bool { return strings.Contains(strings.ToLower(v), term) })
	case settings.FilterDoesNotContain:
		term := strings.ToLower(filterText(cond.FilterValue))
		if term == "" {
			return true
		}
		return everyValue(values, func(v string) bool { return !strings.Contains(strings.ToLower(v), term) })
	default:
		ctx.logger().Log("warn", fmt.Sprintf("[FILTER_UNKNOWN_TYPE] Type: %q, Column: %s; condition fails", cond.FilterType, cond.Column))
		return false
	}
}

// cellValues normalizes a cell to trimmed strings; a missing cell is [""]
func cellValues(rec interfaces.Record, column string) []string {
	cell, ok := rec.Get(column)
	if !ok {
		return []string{""}
	}
	raw := cell.Values()
	out := make([]string, len(raw))
	for i, v := range raw {
		out[i] = strings.TrimSpace(v)
	}
	return out
}

// filterText is the single-string form of a filter value; a list is comma joined
func filterText(fv settings.FilterValue) string {
	if fv.IsList {
		return strings.Join(fv.List, ",")
	}
	return fv.Text
}

// filterList is the lower-cased set of a list filter value. A scalar is not a list.
func filterList(fv settings.FilterValue) map[string]bool {
	if !fv.IsList {
		return nil
	}
	set := make(map[string]bool, len(fv.List))
	for _, v := range fv.List {
		set[strings.ToLower(v)] = true
	}
	return set
}

func anyValue(values []string, pred func(string) bool) bool {
	for _, v := range values {
		if pred(v) {
			return true
		}
	}
	return false
}

func everyValue(values []string, pred func(string) bool) bool {
	for _, v := range values {
		if !pred(v) {
			return false
		}
	}
	return true
}
