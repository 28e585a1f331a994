package export

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deepbluedave/csv-visualiser-sub000/app/fileloader"
	"github.com/deepbluedave/csv-visualiser-sub000/app/interfaces"
	"github.com/deepbluedave/csv-visualiser-sub000/app/query"
	"github.com/deepbluedave/csv-visualiser-sub000/app/settings"
	"github.com/deepbluedave/csv-visualiser-sub000/app/style"
)

const exportConfig = `
generalSettings:
  multiValueColumns: [Team]
  defaultItemSortBy:
    - { column: Title, direction: asc }
indicatorStyles:
  Status:
    type: tag
    styleRules:
      - matchType: exact
        value: done
        style: { text: "Done ✓" }
  Flag:
    type: icon
    trueCondition: { value: "🚩" }
tabs:
  - id: all
    title: All
    type: table
    config:
      displayColumns: [Title, Status, Ghost]
  - id: everything
    title: Everything
    type: table
  - id: board
    title: Board
    type: kanban
    config:
      groupByColumn: Team
      cardTitleColumn: Title
      cardIndicatorColumns: [Status, Flag]
      groupSortBy: countdesc
  - id: overview
    title: Overview
    type: summary
    config:
      groupByColumn: Team
      cardTitleColumn: Title
      cardIndicatorColumns: [Status]
      sections:
        - { title: Finished, filterColumn: Status, filterType: valueEquals, filterValue: done }
        - { title: Flagged, filterColumn: Flag, filterType: booleanTrue }
        - { filterType: catchAll }
  - id: tallies
    title: Tallies
    type: counts
    config:
      groupByColumn: Team
      counters:
        - { title: Open, column: Status, filterType: valueEquals, filterValue: open }
        - { title: Flagged, column: Flag, filterType: booleanTrue }
  - id: statuses
    title: Statuses
    type: counts
    config:
      groupByColumn: Team
      counters:
        - { title: Statuses, column: Status, filterType: countAllValues }
  - id: tree
    title: Tree
    type: hierarchy
    config:
      idColumn: ID
      parentColumn: Parent
      displayColumns: [ID, Title]
      sortBy:
        - { column: Title, direction: asc }
  - id: broken
    title: Broken
    type: kanban
    config:
      groupByColumn: Missing
      cardTitleColumn: Title
`

const exportData = `ID,Title,Team,Status,Flag,Parent
1,Alpha,"red, blue",done,yes,
2,Beta,blue,open,no,1
3,Gamma,,done,,1
4,"Delta, Inc",red,open,yes,2
`

func newTestComposer(t *testing.T) (*Composer, *settings.Config, *interfaces.Table) {
	t.Helper()
	cfg, _, err := settings.ParseConfig([]byte(exportConfig))
	require.NoError(t, err)
	table := fileloader.Parse(exportData, fileloader.ParseOptions{MultiValueColumns: cfg.General.MultiValueColumns})
	require.Len(t, table.Records, 4)
	qctx := query.NewContext(table, cfg, nil)
	return NewComposer(cfg, qctx, style.NewResolver(cfg, table, nil)), cfg, table
}

// tabResult narrows records to the tab's display columns like a session does
func tabResult(t *testing.T, c *Composer, tab *settings.Tab, headers []string, records []interfaces.Record) *query.QueryResult {
	t.Helper()
	b := query.NewPipelineBuilder(context.Background(), c.Context, nil, "")
	if tab.Type == settings.TabTable || tab.Type == settings.TabHierarchy {
		b.AddColumns(tab.Config.DisplayColumns)
	}
	res, err := b.Build().Execute(&query.StageResult{Headers: headers, Records: records})
	require.NoError(t, err)
	return res
}

func rowsFor(t *testing.T, tabID string) [][]string {
	t.Helper()
	c, cfg, table := newTestComposer(t)
	tab, ok := cfg.Tab(tabID)
	require.True(t, ok, tabID)
	rows, err := c.Rows(tab, tabResult(t, c, tab, table.Headers, table.Clone()))
	require.NoError(t, err)
	return rows
}

func TestEscapeField(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"plain", "plain"},
		{"", ""},
		{"a,b", `"a,b"`},
		{`say "hi"`, `"say ""hi"""`},
		{"two\nlines", "\"two\nlines\""},
		{"cr\rhere", "\"cr\rhere\""},
		{"  spaced  ", "  spaced  "},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, EscapeField(tt.in), "EscapeField(%q)", tt.in)
	}
}

func TestJoinCSV(t *testing.T) {
	rows := [][]string{{"A", "B"}, {"1", "x,y"}, {"", `q"`}}
	assert.Equal(t, "A,B\r\n1,\"x,y\"\r\n,\"q\"\"\"", JoinCSV(rows))
	assert.Equal(t, "", JoinCSV(nil))
}

func TestWriteCSV_PrefixesByteOrderMark(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, [][]string{{"A"}, {"1"}}))
	assert.Equal(t, "\ufeffA\r\n1", buf.String())
}

func TestTableRows(t *testing.T) {
	rows := rowsFor(t, "all")
	assert.Equal(t, [][]string{
		{"Title", "Status"},
		{"Alpha", "Done ✓"},
		{"Beta", "open"},
		{"Gamma", "Done ✓"},
		{"Delta, Inc", "open"},
	}, rows)

	all := rowsFor(t, "everything")
	assert.Equal(t, []string{"ID", "Title", "Team", "Status", "Flag", "Parent"}, all[0])
	assert.Equal(t, []string{"1", "Alpha", "red, blue", "Done ✓", "🚩", ""}, all[1])
}

func TestExport_RoundTripKeepsExportTextNotRawValue(t *testing.T) {
	rows := rowsFor(t, "all")
	reparsed := fileloader.Parse(JoinCSV(rows), fileloader.ParseOptions{})

	require.Len(t, reparsed.Records, 4)
	assert.Equal(t, []string{"Title", "Status"}, reparsed.Headers)
	for i, rec := range reparsed.Records {
		assert.Equal(t, rows[i+1][0], rec.Text("Title"))
		assert.Equal(t, rows[i+1][1], rec.Text("Status"))
	}
	assert.Equal(t, "Done ✓", reparsed.Records[0].Text("Status"))
	assert.NotEqual(t, "done", reparsed.Records[0].Text("Status"))
	assert.Equal(t, "Delta, Inc", reparsed.Records[3].Text("Title"))
}

// Line breaks come from XLSX and JSON sources. They are quoted on export, but
// the text parser splits lines before fields, so such exports do not re-parse
// into the same records.
func TestExport_RoundTripSplitsQuotedLineBreaks(t *testing.T) {
	rows := [][]string{{"Title", "Notes"}, {"Alpha", "first\nsecond"}}
	text := JoinCSV(rows)
	assert.Equal(t, "Title,Notes\r\nAlpha,\"first\nsecond\"", text)

	reparsed := fileloader.Parse(text, fileloader.ParseOptions{})
	require.Len(t, reparsed.Records, 2)
	assert.Equal(t, "Alpha", reparsed.Records[0].Text("Title"))
	assert.Equal(t, "first", reparsed.Records[0].Text("Notes"))
	assert.Equal(t, `second"`, reparsed.Records[1].Text("Title"))
	assert.Equal(t, "", reparsed.Records[1].Text("Notes"))
	assert.Len(t, reparsed.Warnings, 1)
}

func TestKanbanRows(t *testing.T) {
	assert.Equal(t, [][]string{
		{"Team", "Title", "Status", "Flag"},
		{"red", "Alpha", "Done ✓", "🚩"},
		{"red", "Delta, Inc", "open", "🚩"},
		{"blue", "Beta", "open", "no"},
		{"Uncategorized", "Gamma", "Done ✓", ""},
	}, rowsFor(t, "board"))
}

func TestKanbanRows_LeavesInputOrder(t *testing.T) {
	c, cfg, table := newTestComposer(t)
	tab, _ := cfg.Tab("board")
	records := []interfaces.Record{table.Records[3], table.Records[0]}
	_, err := c.KanbanRows(tab, records)
	require.NoError(t, err)
	assert.Equal(t, "4", records[0].Text("ID"))
}

func TestSummaryRows_RecordsAppearOnce(t *testing.T) {
	c, cfg, table := newTestComposer(t)
	tab, _ := cfg.Tab("overview")
	input := table.Clone()
	rows, err := c.SummaryRows(tab, input)
	require.NoError(t, err)

	assert.Equal(t, [][]string{
		{"Section Title", "Team", "Title", "Status"},
		{"Finished", "red, blue", "Alpha", "Done ✓"},
		{"Finished", "", "Gamma", "Done ✓"},
		{"Flagged", "red", "Delta, Inc", "open"},
		{"Other", "blue", "Beta", "open"},
	}, rows)
	assert.Equal(t, "1", input[0].Text("ID"), "input slice must not be reordered")
	assert.Equal(t, "4", input[3].Text("ID"))
}

func TestCountsRows_Wide(t *testing.T) {
	assert.Equal(t, [][]string{
		{"Team", "blue", "red", "Uncategorized"},
		{"Flagged", "1", "2", "0"},
		{"Open", "1", "1", "0"},
	}, rowsFor(t, "tallies"))
}

func TestCountsRows_LongWhenCountingAllValues(t *testing.T) {
	assert.Equal(t, [][]string{
		{"Team", "Counted Column", "Counted Value", "Count"},
		{"blue", "Status", "Done ✓", "1"},
		{"blue", "Status", "open", "1"},
		{"red", "Status", "Done ✓", "1"},
		{"red", "Status", "open", "1"},
		{"Uncategorized", "Status", "Done ✓", "1"},
	}, rowsFor(t, "statuses"))
}

func TestHierarchyRows(t *testing.T) {
	assert.Equal(t, [][]string{
		{"Level", "ID", "Title"},
		{"0", "1", "Alpha"},
		{"1", "2", "Beta"},
		{"2", "4", "Delta, Inc"},
		{"1", "3", "Gamma"},
	}, rowsFor(t, "tree"))
}

func TestRows_InvalidConfiguration(t *testing.T) {
	c, cfg, table := newTestComposer(t)

	all := &query.QueryResult{Headers: table.Headers, Records: table.Records}
	tab, _ := cfg.Tab("broken")
	_, err := c.Rows(tab, all)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Missing")

	_, err = c.Rows(&settings.Tab{ID: "odd", Type: "gallery"}, all)
	assert.Error(t, err)

	_, err = c.Rows(nil, all)
	assert.Error(t, err)

	_, err = c.SummaryRows(&settings.Tab{ID: "empty", Config: settings.TabConfig{CardTitleColumn: "Title"}}, table.Records)
	assert.Error(t, err)
}

func TestRows_EmptyDataExportsHeaderOnly(t *testing.T) {
	c, cfg, table := newTestComposer(t)
	tab, _ := cfg.Tab("board")
	rows, err := c.Rows(tab, nil)
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"Team", "Title", "Status", "Flag"}}, rows)

	tab, _ = cfg.Tab("all")
	rows, err = c.Rows(tab, tabResult(t, c, tab, table.Headers, nil))
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"Title", "Status"}}, rows)
}

func TestWriteXLSX_ReadsBack(t *testing.T) {
	rows := rowsFor(t, "tree")
	var buf bytes.Buffer
	require.NoError(t, WriteXLSX(&buf, "Tree", rows))

	names, err := fileloader.SheetNames(buf.Bytes())
	require.NoError(t, err)
	assert.Equal(t, []string{"Tree"}, names)

	table, err := fileloader.ReadXLSX(buf.Bytes(), fileloader.FileOptions{})
	require.NoError(t, err)
	assert.Equal(t, []string{"Level", "ID", "Title"}, table.Headers)
	require.Len(t, table.Records, 4)
	assert.Equal(t, "2", table.Records[2].Text("Level"))
	assert.Equal(t, "Delta, Inc", table.Records[2].Text("Title"))
}

func TestWriteXLSX_LongSheetName(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteXLSX(&buf, strings.Repeat("s", 40), [][]string{{"A"}, {"007"}}))

	names, err := fileloader.SheetNames(buf.Bytes())
	require.NoError(t, err)
	assert.Equal(t, []string{strings.Repeat("s", 31)}, names)

	table, err := fileloader.ReadXLSX(buf.Bytes(), fileloader.FileOptions{})
	require.NoError(t, err)
	assert.Equal(t, "007", table.Records[0].Text("A"))
}

func TestSafeClipboardWrite_RejectsOversizedData(t *testing.T) {
	err := safeClipboardWrite(0, make([]byte, maxClipboardSize+1))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "too large")
}
