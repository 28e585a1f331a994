package cache

import (
	"time"

	"github.com/deepbluedave/csv-visualiser-sub000/app/interfaces"
)

// Entry is one cached table: a parsed source or the output of a pipeline
// over it. Pipeline outputs share Record maps with their source entry.
type Entry struct {
	Headers    []string
	Records    []interfaces.Record
	Warnings   []string
	Shared     bool // Records point into another entry; only slice overhead is counted
	Size       int64
	AccessTime int64
	CreateTime time.Time
}

// CacheStats contains detailed cache statistics
type CacheStats struct {
	TotalEntries int
	TotalSize    int64
	MaxSize      int64
	UsagePercent float64
	StageStats   map[string]StageStats

	SourceHits  int64 // Hits on parsed sources
	StageHits   int64 // Hits on pipeline outputs
	CacheMisses int64
	HitRate     float64
}

// StageStats contains statistics for a specific stage type
type StageStats struct {
	EntryCount int
	TotalSize  int64
}

// DefaultCacheMaxSize is the default cache size limit (100MB)
const DefaultCacheMaxSize = 100 * 1024 * 1024

const (
	recordOverhead  = 48 // map header
	cellOverhead    = 56 // map slot, key header and Cell struct
	pointerOverhead = 8
)
