package aggregate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deepbluedave/csv-visualiser-sub000/app/interfaces"
	"github.com/deepbluedave/csv-visualiser-sub000/app/query"
	"github.com/deepbluedave/csv-visualiser-sub000/app/settings"
)

func rec(pairs ...string) interfaces.Record {
	r := interfaces.Record{}
	for i := 0; i+1 < len(pairs); i += 2 {
		r[pairs[i]] = interfaces.ScalarCell(pairs[i+1])
	}
	return r
}

func multi(r interfaces.Record, column string, values ...string) interfaces.Record {
	r[column] = interfaces.MultiCell(values)
	return r
}

func ctxFor(headers ...string) *query.Context {
	return query.NewContextFor(interfaces.NewHeaderSet(headers), nil, nil)
}

func titles(records []interfaces.Record) []string {
	out := make([]string, len(records))
	for i, r := range records {
		out[i] = r.Text("Title")
	}
	return out
}

func TestGrouping_DisplayUsesFirstValueCountingFansOut(t *testing.T) {
	ctx := ctxFor("Title", "Team")
	records := []interfaces.Record{
		multi(rec("Title", "A"), "Team", "red", "blue"),
		rec("Title", "B", "Team", "blue"),
		rec("Title", "C", "Team", "  "),
		rec("Title", "D"),
	}

	display := GroupForDisplay(records, "Team", ctx)
	assert.Equal(t, []string{"red", "blue", Uncategorized}, display.Keys)
	assert.Equal(t, []string{"A"}, titles(display.Items["red"]))
	assert.Equal(t, []string{"B"}, titles(display.Items["blue"]))
	assert.Equal(t, []string{"C", "D"}, titles(display.Items[Uncategorized]))

	counting := GroupForCounting(records, "Team", ctx)
	assert.Equal(t, []string{"A", "B"}, titles(counting.Items["blue"]))
	assert.Equal(t, 1, counting.Count("red"))

	unknown := GroupForDisplay(records, "Ghost", ctx)
	assert.Equal(t, []string{Uncategorized}, unknown.Keys)
	assert.Equal(t, 4, unknown.Count(Uncategorized))
}

func TestOrderKeys(t *testing.T) {
	ctx := ctxFor("Title", "Stage")
	records := []interfaces.Record{
		rec("Title", "1", "Stage", "Review"),
		rec("Title", "2", "Stage", "Backlog"),
		rec("Title", "3", "Stage", "Done"),
		rec("Title", "4", "Stage", "Done"),
		rec("Title", "5", "Stage", "Archive"),
		rec("Title", "6", "Stage", "Done"),
		rec("Title", "7", "Stage", "Backlog"),
	}
	g := GroupForDisplay(records, "Stage", ctx)

	tests := []struct {
		name     string
		by       settings.GroupSortBy
		expected []string
	}{
		{"default", settings.GroupSortBy{}, []string{"Archive", "Backlog", "Done", "Review"}},
		{"keyDesc", settings.GroupSortBy{Mode: "keyDesc"}, []string{"Review", "Done", "Backlog", "Archive"}},
		{"countAsc", settings.GroupSortBy{Mode: "countAsc"}, []string{"Archive", "Review", "Backlog", "Done"}},
		{"countDesc", settings.GroupSortBy{Mode: "COUNTDESC"}, []string{"Done", "Backlog", "Archive", "Review"}},
		{"unknown mode", settings.GroupSortBy{Mode: "random"}, []string{"Archive", "Backlog", "Done", "Review"}},
		{"predefined", settings.GroupSortBy{Order: []string{"Review", "Missing", "Backlog"}}, []string{"Review", "Backlog", "Archive", "Done"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, OrderKeys(g, tt.by))
		})
	}
}

func TestCount_Predicates(t *testing.T) {
	ctx := query.NewContextFor(interfaces.NewHeaderSet([]string{"Team", "Art", "Risk"}), []string{"yes"}, nil)
	records := []interfaces.Record{
		rec("Team", "red", "Art", "yes", "Risk", "High"),
		multi(rec("Art", "yes", "Risk", "Low"), "Team", "red", "blue"),
		rec("Team", "", "Art", "no", "Risk", "High"),
	}
	counters := []settings.Counter{
		{Title: "Needs Art", Column: "Art", FilterType: settings.FilterBooleanTrue},
		{Title: "High Risk", Column: "Risk", FilterType: settings.FilterValueEquals, FilterValue: settings.TextValue("high")},
		{Title: "Ghost", Column: "Ghost", FilterType: settings.FilterValueNotEmpty},
		{Title: "", Column: "Art", FilterType: settings.FilterValueNotEmpty},
		{Title: "Never", Column: "Risk", FilterType: settings.FilterValueEquals, FilterValue: settings.TextValue("none")},
	}

	res := Count(records, "Team", counters, ctx)
	assert.False(t, res.HasDistinct())
	assert.Equal(t, []string{"High Risk", "Needs Art"}, res.Titles())
	assert.Equal(t, []string{"blue", "red", Uncategorized}, res.GroupKeys)

	assert.Equal(t, 2, res.Tallies["Needs Art"]["red"])
	assert.Equal(t, 1, res.Tallies["Needs Art"]["blue"])
	assert.Equal(t, 2, res.Total("Needs Art"))
	assert.Equal(t, 1, res.Tallies["High Risk"][Uncategorized])
	assert.Equal(t, 2, res.Total("High Risk"))
}

func TestCount_FilterGroupCounter(t *testing.T) {
	ctx := ctxFor("Team", "Risk", "Owner")
	records := []interfaces.Record{
		rec("Team", "red", "Risk", "High", "Owner", ""),
		rec("Team", "red", "Risk", "High", "Owner", "amy"),
	}
	counters := []settings.Counter{{
		Title: "Unowned high risk",
		Filter: &settings.FilterGroup{Conditions: []settings.Condition{
			{Column: "Risk", FilterType: settings.FilterValueEquals, FilterValue: settings.TextValue("High")},
			{Column: "Owner", FilterType: settings.FilterValueIsEmpty},
		}},
	}}
	res := Count(records, "Team", counters, ctx)
	assert.Equal(t, 1, res.Total("Unowned high risk"))
}

func TestCount_DistinctValues(t *testing.T) {
	ctx := ctxFor("Team", "Tags")
	records := []interfaces.Record{
		multi(rec("Team", "red"), "Tags", "ui", " api ", ""),
		multi(rec("Team", "red"), "Tags", "ui"),
		rec("Team", "blue", "Tags", ""),
	}
	res := Count(records, "Team", []settings.Counter{{Title: "Tags", Column: "Tags", FilterType: settings.CountAllValues}}, ctx)
	require.True(t, res.HasDistinct())
	assert.Equal(t, map[string]int{"ui": 2, "api": 1}, res.Distinct["Tags"]["red"])
	assert.Equal(t, map[string]int{NotAvailable: 1}, res.Distinct["Tags"]["blue"])
	assert.Empty(t, res.Tallies)
}

func TestCount_UnknownGroupColumn(t *testing.T) {
	log := &interfaces.RecordingLogger{}
	ctx := query.NewContextFor(interfaces.NewHeaderSet([]string{"A"}), nil, log)
	res := Count([]interfaces.Record{rec("A", "1")}, "Ghost", []settings.Counter{{Title: "x", Column: "A", FilterType: settings.FilterValueNotEmpty}}, ctx)
	assert.Empty(t, res.Tallies)
	assert.True(t, log.Contains("[COUNTS_SKIP]"))
}

func TestSummarize(t *testing.T) {
	ctx := ctxFor("Title", "Status", "Owner")
	records := []interfaces.Record{
		rec("Title", "A", "Status", "Active", "Owner", "bob"),
		rec("Title", "B", "Status", "Active", "Owner", ""),
		rec("Title", "C", "Status", "Closed", "Owner", "amy"),
		rec("Title", "D", "Status", "Review", "Owner", "bob"),
	}
	sections := []settings.Section{
		{Title: "Everything else", FilterType: settings.FilterCatchAll},
		{Title: "Active", FilterColumn: "Status", FilterType: settings.FilterValueEquals, FilterValue: settings.TextValue("active")},
		{FilterColumn: "Owner", FilterType: settings.FilterValueEquals, FilterValue: settings.TextValue("bob")},
		{Title: "Broken", FilterColumn: "Ghost", FilterType: settings.FilterValueNotEmpty},
	}

	shared := Summarize(records, sections, ctx, false)
	require.Len(t, shared, 4)
	assert.Equal(t, "Active", shared[0].Title)
	assert.Equal(t, []string{"A", "B"}, titles(shared[0].Records))
	assert.Equal(t, DefaultSectionTitle, shared[1].Title)
	assert.Equal(t, []string{"A", "D"}, titles(shared[1].Records))
	assert.Empty(t, shared[2].Records)
	assert.True(t, shared[3].CatchAll)
	assert.Equal(t, "Everything else", shared[3].Title)
	assert.Equal(t, []string{"C"}, titles(shared[3].Records))

	exclusive := Summarize(records, sections, ctx, true)
	assert.Equal(t, []string{"D"}, titles(exclusive[1].Records))
	assert.Equal(t, []string{"C"}, titles(exclusive[3].Records))
}

func TestSummarize_SectionFilterGroup(t *testing.T) {
	ctx := ctxFor("Title", "Status", "Owner")
	records := []interfaces.Record{
		rec("Title", "A", "Status", "Active", "Owner", "bob"),
		rec("Title", "B", "Status", "Active", "Owner", ""),
	}
	sections := []settings.Section{
		{
			Title: "Active and unowned", FilterColumn: "Status", FilterType: settings.FilterValueEquals, FilterValue: settings.TextValue("Active"),
			Filter: &settings.FilterGroup{Conditions: []settings.Condition{{Column: "Owner", FilterType: settings.FilterValueIsEmpty}}},
		},
		{FilterType: settings.FilterCatchAll},
	}
	res := Summarize(records, sections, ctx, true)
	assert.Equal(t, []string{"B"}, titles(res[0].Records))
	assert.Equal(t, DefaultCatchAllTitle, res[1].Title)
	assert.Equal(t, []string{"A"}, titles(res[1].Records))
}

func TestBuildHierarchy(t *testing.T) {
	ctx := ctxFor("ID", "Parent", "Title")
	records := []interfaces.Record{
		rec("ID", "3", "Parent", "1", "Title", "b child"),
		rec("ID", "1", "Parent", "", "Title", "root"),
		rec("ID", "2", "Parent", "1", "Title", "a child"),
		rec("ID", "4", "Parent", "99", "Title", "orphan"),
		multi(rec("ID", "5", "Title", "grandchild"), "Parent", "2", "3"),
	}
	cmp := query.Comparator([]settings.SortCriterion{{Column: "Title"}}, ctx)

	roots := BuildHierarchy(records, "ID", "Parent", cmp, ctx)
	require.Len(t, roots, 2)
	assert.Equal(t, "orphan", roots[0].Record.Text("Title"))
	assert.Equal(t, "root", roots[1].Record.Text("Title"))

	flat := Flatten(roots)
	var order []string
	var levels []int
	for _, n := range flat {
		order = append(order, n.Record.Text("Title"))
		levels = append(levels, n.Level)
	}
	assert.Equal(t, []string{"orphan", "root", "a child", "grandchild", "b child"}, order)
	assert.Equal(t, []int{0, 0, 1, 2, 1}, levels)
}

func TestBuildHierarchy_NoRootsIsFlat(t *testing.T) {
	log := &interfaces.RecordingLogger{}
	ctx := query.NewContextFor(interfaces.NewHeaderSet([]string{"ID", "Parent"}), nil, log)
	records := []interfaces.Record{
		rec("ID", "1", "Parent", "2"),
		rec("ID", "2", "Parent", "1"),
	}
	roots := BuildHierarchy(records, "ID", "Parent", nil, ctx)
	require.Len(t, roots, 2)
	assert.Empty(t, roots[0].Children)
	assert.True(t, log.Contains("[HIERARCHY_FLAT]"))
}

func TestBuildHierarchy_CycleBesideRoot(t *testing.T) {
	log := &interfaces.RecordingLogger{}
	ctx := query.NewContextFor(interfaces.NewHeaderSet([]string{"ID", "Parent"}), nil, log)
	records := []interfaces.Record{
		rec("ID", "r"),
		rec("ID", "1", "Parent", "2"),
		rec("ID", "2", "Parent", "1"),
		rec("ID", "3", "Parent", "3"),
	}
	roots := BuildHierarchy(records, "ID", "Parent", nil, ctx)
	assert.Len(t, roots, 4)
	assert.Len(t, Flatten(roots), 4)
	assert.True(t, log.Contains("[HIERARCHY_CYCLE]"))
}
