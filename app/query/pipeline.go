package query

import (
	"context"
	"fmt"

	"github.com/deepbluedave/csv-visualiser-sub000/app/cache"
	"github.com/deepbluedave/csv-visualiser-sub000/app/interfaces"
	"github.com/deepbluedave/csv-visualiser-sub000/app/settings"
)

// QueryPipeline runs stages in order over a loaded table. With a cache and a
// source key every cacheable stage output is stored under the key of the
// stages that produced it, so a longer pipeline reuses a shorter one's work.
type QueryPipeline struct {
	stages    []PipelineStage
	cache     *cache.Cache
	ctx       context.Context
	qctx      *Context
	sourceKey string
}

// NewQueryPipeline creates a new query pipeline. c may be nil.
func NewQueryPipeline(ctx context.Context, qctx *Context, c *cache.Cache, sourceKey string) *QueryPipeline {
	if ctx == nil {
		ctx = context.Background()
	}
	return &QueryPipeline{
		ctx:       ctx,
		qctx:      qctx,
		cache:     c,
		sourceKey: sourceKey,
	}
}

// AddStage adds a pipeline stage
func (p *QueryPipeline) AddStage(stage PipelineStage) {
	p.stages = append(p.stages, stage)
}

// CacheKey returns the key of the pipeline's final cacheable output
func (p *QueryPipeline) CacheKey() string {
	return BuildCacheKey(p.sourceKey, p.stages)
}

// BuildCacheKey appends every cacheable stage to the source key
func BuildCacheKey(sourceKey string, stages []PipelineStage) string {
	key := sourceKey
	for _, stage := range stages {
		if stage.CanCache() {
			key = cache.StageKey(key, stage.Name(), stage.CacheKey())
		}
	}
	return key
}

func (p *QueryPipeline) caching() bool {
	return p.cache != nil && p.sourceKey != ""
}

func (p *QueryPipeline) canCacheResult() bool {
	for _, stage := range p.stages {
		if !stage.CanCache() {
			return false
		}
	}
	return true
}

// Execute runs the pipeline with the given input data
func (p *QueryPipeline) Execute(input *StageResult) (*QueryResult, error) {
	log := p.qctx.logger()

	if len(p.stages) == 0 {
		return &QueryResult{Headers: input.Headers, Records: input.Records, Total: len(input.Records)}, nil
	}

	if p.caching() && p.canCacheResult() {
		if entry, found := p.cache.Get(p.CacheKey()); found {
			return &QueryResult{Headers: entry.Headers, Records: entry.Records, Total: len(entry.Records), Cached: true}, nil
		}
	}

	current := input
	matched := -1
	executed := make([]PipelineStage, 0, len(p.stages))
	for _, stage := range p.stages {
		if err := p.ctx.Err(); err != nil {
			return nil, err
		}
		if _, ok := stage.(*LimitStage); ok && matched < 0 {
			matched = len(current.Records)
		}
		executed = append(executed, stage)
		stageKey := BuildCacheKey(p.sourceKey, executed)

		if p.caching() && stage.CanCache() {
			if entry, found := p.cache.Get(stageKey); found {
				current = &StageResult{Headers: entry.Headers, Records: entry.Records}
				continue
			}
		}

		result, err := stage.Execute(current, p.qctx)
		if err != nil {
			return nil, fmt.Errorf("stage %s failed: %w", stage.Name(), err)
		}
		log.Log("debug", fmt.Sprintf("[STAGE_DONE] Stage: %s, In: %d, Out: %d", stage.Name(), len(current.Records), len(result.Records)))

		if p.caching() && stage.CanCache() {
			p.cache.StoreShared(stageKey, result.Headers, result.Records)
		}
		current = result
	}

	if matched < 0 {
		matched = len(current.Records)
	}
	return &QueryResult{
		Headers: current.Headers,
		Records: current.Records,
		Total:   matched,
	}, nil
}

// PipelineBuilder helps construct query pipelines
type PipelineBuilder struct {
	pipeline *QueryPipeline
}

// NewPipelineBuilder creates a new pipeline builder
func NewPipelineBuilder(ctx context.Context, qctx *Context, c *cache.Cache, sourceKey string) *PipelineBuilder {
	return &PipelineBuilder{pipeline: NewQueryPipeline(ctx, qctx, c, sourceKey)}
}

// AddFilter adds a filter stage; an empty group adds nothing
func (b *PipelineBuilder) AddFilter(group *settings.FilterGroup) *PipelineBuilder {
	if !group.IsEmpty() {
		b.pipeline.AddStage(NewFilterStage(group))
	}
	return b
}

// AddExpr adds an expression stage; nil adds nothing
func (b *PipelineBuilder) AddExpr(expr Expr) *PipelineBuilder {
	if expr != nil {
		b.pipeline.AddStage(NewExprStage(expr))
	}
	return b
}

// AddSort adds a sort stage; no criteria adds nothing
func (b *PipelineBuilder) AddSort(criteria []settings.SortCriterion) *PipelineBuilder {
	if len(criteria) > 0 {
		b.pipeline.AddStage(NewSortStage(criteria))
	}
	return b
}

// AddColumns adds a columns stage; no columns adds nothing
func (b *PipelineBuilder) AddColumns(columns []string) *PipelineBuilder {
	if len(columns) > 0 {
		b.pipeline.AddStage(NewColumnsStage(columns))
	}
	return b
}

// AddLimit adds a limit stage; count <= 0 adds nothing
func (b *PipelineBuilder) AddLimit(count int) *PipelineBuilder {
	if count > 0 {
		b.pipeline.AddStage(NewLimitStage(count))
	}
	return b
}

// Build returns the constructed pipeline
func (b *PipelineBuilder) Build() *QueryPipeline {
	return b.pipeline
}

// RecordsResult wraps a table as pipeline input
func RecordsResult(table *interfaces.Table) *StageResult {
	return &StageResult{Headers: table.Headers, Records: table.Records}
}
