package query

import (
	"github.com/deepbluedave/csv-visualiser-sub000/app/interfaces"
)

// StageResult is the data flowing between pipeline stages. Headers are the
// columns visible at this point; records always keep every column.
type StageResult struct {
	Headers []string
	Records []interfaces.Record
}

// PipelineStage represents a single stage in the query pipeline
type PipelineStage interface {
	// Execute processes the input data. It must not reorder or modify the
	// input slice in place: cached results share it.
	Execute(input *StageResult, ctx *Context) (*StageResult, error)

	// CanCache returns true if this stage's results can be cached
	CanCache() bool

	// CacheKey returns a unique key for caching this stage's results
	CacheKey() string

	// Name returns the stage name used in cache keys and logs
	Name() string
}

// QueryResult contains the final result of pipeline execution. Total counts
// the records that matched before any limit was applied.
type QueryResult struct {
	Headers []string
	Records []interfaces.Record
	Total   int
	Cached  bool
}
