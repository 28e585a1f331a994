package aggregate

import (
	"github.com/deepbluedave/csv-visualiser-sub000/app/interfaces"
	"github.com/deepbluedave/csv-visualiser-sub000/app/query"
	"github.com/deepbluedave/csv-visualiser-sub000/app/settings"
)

// Default section titles
const (
	DefaultSectionTitle  = "Unnamed Section"
	DefaultCatchAllTitle = "Other"
)

// SectionResult is one summary section with the records it shows
type SectionResult struct {
	Section  settings.Section
	Title    string
	CatchAll bool
	Records  []interfaces.Record
}

// Summarize splits records into the configured sections. Specific sections
// come first in configuration order; the first catch-all section follows with
// every record no specific section matched. With exclusive set a record is
// only placed in the first specific section it matches, otherwise it appears
// in each one.
func Summarize(records []interfaces.Record, sections []settings.Section, ctx *query.Context, exclusive bool) []SectionResult {
	claimed := make([]bool, len(records))
	out := make([]SectionResult, 0, len(sections))

	for _, s := range sections {
		if s.IsCatchAll() {
			continue
		}
		res := SectionResult{Section: s, Title: s.Title}
		if res.Title == "" {
			res.Title = DefaultSectionTitle
		}
		for i, rec := range records {
			if exclusive && claimed[i] {
				continue
			}
			if sectionMatches(rec, &s, ctx) {
				claimed[i] = true
				res.Records = append(res.Records, rec)
			}
		}
		out = append(out, res)
	}

	for _, s := range sections {
		if !s.IsCatchAll() {
			continue
		}
		res := SectionResult{Section: s, Title: s.Title, CatchAll: true}
		if res.Title == "" {
			res.Title = DefaultCatchAllTitle
		}
		for i, rec := range records {
			if !claimed[i] {
				res.Records = append(res.Records, rec)
			}
		}
		out = append(out, res)
		break
	}
	return out
}

// sectionMatches applies the section condition and, when set, its own filter group
func sectionMatches(rec interfaces.Record, s *settings.Section, ctx *query.Context) bool {
	if s.FilterType == "" && s.Filter.IsEmpty() {
		return false
	}
	if s.FilterType != "" && !query.Check(rec, s.Condition(), ctx) {
		return false
	}
	return query.MatchGroup(rec, s.Filter, ctx)
}
