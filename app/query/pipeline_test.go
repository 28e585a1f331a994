package query

import (
	"context"
	"strings"
	"testing"

	"github.com/deepbluedave/csv-visualiser-sub000/app/cache"
	"github.com/deepbluedave/csv-visualiser-sub000/app/interfaces"
	"github.com/deepbluedave/csv-visualiser-sub000/app/settings"
)

func pipelineTable() *interfaces.Table {
	return &interfaces.Table{
		Headers: []string{"Status", "Owner", "Score"},
		Records: []interfaces.Record{
			rec("Status", "Active", "Owner", "bob", "Score", "3"),
			rec("Status", "Closed", "Owner", "amy", "Score", "1"),
			rec("Status", "Active", "Owner", "amy", "Score", "2"),
			rec("Status", "Active", "Owner", "bob", "Score", "3"),
		},
	}
}

func activeGroup() *settings.FilterGroup {
	return &settings.FilterGroup{Conditions: []settings.Condition{
		cond("Status", settings.FilterValueEquals, settings.TextValue("Active")),
	}}
}

func TestPipeline_Stages(t *testing.T) {
	table := pipelineTable()
	qctx := NewContext(table, nil, nil)

	result, err := NewPipelineBuilder(context.Background(), qctx, nil, "").
		AddFilter(activeGroup()).
		AddSort([]settings.SortCriterion{{Column: "Score", Direction: "asc"}}).
		AddColumns([]string{"Owner", "Ghost", "Score"}).
		AddLimit(5).
		Build().
		Execute(RecordsResult(table))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Total != 3 || len(result.Records) != 3 {
		t.Fatalf("expected 3 records, got %d of %d", len(result.Records), result.Total)
	}
	if strings.Join(result.Headers, ",") != "Owner,Score" {
		t.Errorf("unexpected headers %v", result.Headers)
	}
	assertOrder(t, result.Records, "Score", "2", "3", "3")
	if result.Cached {
		t.Error("no cache was configured")
	}
}

func TestPipeline_SortDoesNotReorderInput(t *testing.T) {
	table := pipelineTable()
	qctx := NewContext(table, nil, nil)
	_, err := NewPipelineBuilder(context.Background(), qctx, nil, "").
		AddSort([]settings.SortCriterion{{Column: "Score"}}).
		Build().
		Execute(RecordsResult(table))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	assertOrder(t, table.Records, "Score", "3", "1", "2", "3")
}

func TestPipeline_Limit(t *testing.T) {
	table := pipelineTable()
	qctx := NewContext(table, nil, nil)
	result, err := NewPipelineBuilder(context.Background(), qctx, nil, "").
		AddFilter(activeGroup()).
		AddLimit(1).
		Build().
		Execute(RecordsResult(table))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Records) != 1 {
		t.Errorf("expected 1 record, got %d", len(result.Records))
	}
	if result.Total != 3 {
		t.Errorf("expected the 3 matching records to be counted, got %d", result.Total)
	}
}

func TestPipeline_LimitIsNotCached(t *testing.T) {
	table := pipelineTable()
	c := cache.NewCache(cache.DefaultCacheMaxSize, nil)
	qctx := NewContext(table, nil, nil)
	sourceKey := cache.SourceKey("abc", "opts")

	for _, limit := range []int{1, 2} {
		result, err := NewPipelineBuilder(context.Background(), qctx, c, sourceKey).
			AddFilter(activeGroup()).
			AddLimit(limit).
			Build().
			Execute(RecordsResult(table))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(result.Records) != limit || result.Cached {
			t.Errorf("limit %d: got %d records, cached %t", limit, len(result.Records), result.Cached)
		}
	}
	if c.EntryCount() != 1 {
		t.Errorf("expected only the filter output to be cached, got %v", c.Keys())
	}
}

func TestPipeline_CachesStageResults(t *testing.T) {
	table := pipelineTable()
	c := cache.NewCache(cache.DefaultCacheMaxSize, nil)
	qctx := NewContext(table, nil, nil)
	sourceKey := cache.SourceKey("abc", "opts")

	build := func() *QueryPipeline {
		return NewPipelineBuilder(context.Background(), qctx, c, sourceKey).
			AddFilter(activeGroup()).
			AddSort([]settings.SortCriterion{{Column: "Owner"}}).
			Build()
	}

	first, err := build().Execute(RecordsResult(table))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if first.Cached {
		t.Error("first run cannot be cached")
	}
	if c.EntryCount() != 2 {
		t.Errorf("expected one entry per stage, got %v", c.Keys())
	}

	second, err := build().Execute(RecordsResult(table))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !second.Cached || second.Total != first.Total {
		t.Errorf("expected a cached result of %d records, got %+v", first.Total, second)
	}

	// A longer pipeline reuses the filter output
	longer := NewPipelineBuilder(context.Background(), qctx, c, sourceKey).
		AddFilter(activeGroup()).
		AddColumns([]string{"Owner"}).
		Build()
	if _, err := longer.Execute(RecordsResult(table)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	stats := c.GetCacheStats()
	if stats.StageHits == 0 {
		t.Errorf("expected a stage hit, got %+v", stats)
	}
	if !strings.HasPrefix(longer.CacheKey(), sourceKey+"|") {
		t.Errorf("pipeline key %q must extend the source key", longer.CacheKey())
	}
}

func TestPipeline_CancelledContext(t *testing.T) {
	table := pipelineTable()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewPipelineBuilder(ctx, NewContext(table, nil, nil), nil, "").
		AddFilter(activeGroup()).
		Build().
		Execute(RecordsResult(table))
	if err == nil {
		t.Error("expected a cancellation error")
	}
}

func TestFilterGroupKey_DistinguishesGroups(t *testing.T) {
	a := FilterGroupKey(activeGroup())
	or := activeGroup()
	or.Logic = "OR"
	if a == FilterGroupKey(or) {
		t.Error("logic must be part of the key")
	}
	other := activeGroup()
	other.Conditions[0].FilterValue = settings.TextValue("Closed")
	if a == FilterGroupKey(other) {
		t.Error("filter value must be part of the key")
	}
}
