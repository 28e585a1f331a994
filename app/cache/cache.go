package cache

import (
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/deepbluedave/csv-visualiser-sub000/app/interfaces"
)

// Cache is a size-bounded LRU cache of parsed sources and pipeline outputs
type Cache struct {
	storage     map[string]*Entry
	maxSize     int64
	currentSize int64
	lru         *lruList
	mutex       sync.Mutex
	logger      interfaces.Logger

	sourceHits int64
	stageHits  int64
	misses     int64
}

// NewCache creates a new cache. maxSize <= 0 selects DefaultCacheMaxSize.
func NewCache(maxSize int64, logger interfaces.Logger) *Cache {
	if maxSize <= 0 {
		maxSize = DefaultCacheMaxSize
	}
	return &Cache{
		storage: make(map[string]*Entry),
		maxSize: maxSize,
		lru:     newLRUList(),
		logger:  interfaces.OrNop(logger),
	}
}

// Get retrieves a cache entry and marks it as recently used
func (c *Cache) Get(key string) (*Entry, bool) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	entry, exists := c.storage[key]
	if !exists {
		atomic.AddInt64(&c.misses, 1)
		c.logger.Log("debug", fmt.Sprintf("[CACHE_MISS] Key: %s", key))
		return nil, false
	}

	if ExtractStageCount(key) == 0 {
		atomic.AddInt64(&c.sourceHits, 1)
		c.logger.Log("debug", fmt.Sprintf("[CACHE_HIT_SOURCE] Key: %s, Rows: %d, Size: %d bytes",
			key, len(entry.Records), entry.Size))
	} else {
		atomic.AddInt64(&c.stageHits, 1)
		c.logger.Log("debug", fmt.Sprintf("[CACHE_HIT_STAGE] Key: %s, Rows: %d, Size: %d bytes",
			key, len(entry.Records), entry.Size))
	}

	entry.AccessTime = time.Now().Unix()
	c.lru.touch(key)
	return entry, true
}

// StoreTable caches a parsed source; its records are counted in full
func (c *Cache) StoreTable(key string, table *interfaces.Table) bool {
	return c.store(key, &Entry{
		Headers:  table.Headers,
		Records:  table.Records,
		Warnings: table.Warnings,
		Size:     tableSize(table.Headers, table.Records),
	})
}

// StoreShared caches a pipeline output whose records belong to a cached source
func (c *Cache) StoreShared(key string, headers []string, records []interfaces.Record) bool {
	return c.store(key, &Entry{
		Headers: headers,
		Records: records,
		Shared:  true,
		Size:    sharedSize(headers, len(records)),
	})
}

func (c *Cache) store(key string, entry *Entry) bool {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	if entry.Size > c.maxSize {
		c.logger.Log("warning", fmt.Sprintf("[CACHE_REJECT] Entry too large: %d bytes > %d cache limit", entry.Size, c.maxSize))
		return false
	}

	if old, exists := c.storage[key]; exists {
		c.currentSize -= old.Size
		delete(c.storage, key)
		c.lru.remove(key)
	}

	if !c.evictToMakeSpace(entry.Size) {
		c.logger.Log("warning", fmt.Sprintf("[CACHE_REJECT] Could not make space for entry: %d bytes needed, %d available",
			entry.Size, c.maxSize-c.currentSize))
		return false
	}

	now := time.Now()
	entry.CreateTime = now
	entry.AccessTime = now.Unix()
	c.storage[key] = entry
	c.currentSize += entry.Size
	c.lru.touch(key)

	c.logger.Log("debug", fmt.Sprintf("[CACHE_STORE] Key: %s, Rows: %d, Size: %d bytes, Total Cache: %d/%d bytes",
		key, len(entry.Records), entry.Size, c.currentSize, c.maxSize))
	return true
}

func (c *Cache) removeLocked(key string) {
	if entry, exists := c.storage[key]; exists {
		delete(c.storage, key)
		c.currentSize -= entry.Size
		c.lru.remove(key)
	}
}

// Clear removes all cache entries
func (c *Cache) Clear() {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.storage = make(map[string]*Entry)
	c.currentSize = 0
	c.lru = newLRUList()
}

// Size returns the current cache size in bytes
func (c *Cache) Size() int64 {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	return c.currentSize
}

// MaxSize returns the maximum cache size
func (c *Cache) MaxSize() int64 {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	return c.maxSize
}

// EntryCount returns the number of cached entries
func (c *Cache) EntryCount() int {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	return len(c.storage)
}

// Keys lists cached keys from most to least recently used
func (c *Cache) Keys() []string {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	return c.lru.keys()
}

// evictToMakeSpace removes least recently used entries until neededSize fits
func (c *Cache) evictToMakeSpace(neededSize int64) bool {
	if neededSize > c.maxSize {
		return false
	}
	for c.currentSize+neededSize > c.maxSize {
		oldestKey, ok := c.lru.popOldest()
		if !ok {
			return false
		}
		if entry, exists := c.storage[oldestKey]; exists {
			delete(c.storage, oldestKey)
			c.currentSize -= entry.Size
			c.logger.Log("debug", fmt.Sprintf("[CACHE_EVICT] Evicted entry: %s, Size: %d bytes, Remaining Cache: %d/%d bytes",
				oldestKey, entry.Size, c.currentSize, c.maxSize))
		}
	}
	return true
}

// UpdateMaxSize updates the maximum cache size and evicts if necessary
func (c *Cache) UpdateMaxSize(newMaxSize int64) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	if newMaxSize <= 0 {
		newMaxSize = DefaultCacheMaxSize
	}
	oldMaxSize := c.maxSize
	c.maxSize = newMaxSize
	c.logger.Log("info", fmt.Sprintf("[CACHE_RESIZE] Cache size updated from %d to %d bytes", oldMaxSize, newMaxSize))

	evictedCount := 0
	for c.currentSize > c.maxSize {
		oldestKey, ok := c.lru.popOldest()
		if !ok {
			break
		}
		if entry, exists := c.storage[oldestKey]; exists {
			delete(c.storage, oldestKey)
			c.currentSize -= entry.Size
			evictedCount++
		}
	}
	if evictedCount > 0 {
		c.logger.Log("info", fmt.Sprintf("[CACHE_RESIZE_EVICT] Evicted %d entries due to cache size reduction, Final Cache: %d/%d bytes",
			evictedCount, c.currentSize, c.maxSize))
	}
}

// GetCacheStats returns detailed cache statistics
func (c *Cache) GetCacheStats() CacheStats {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	stats := CacheStats{
		TotalEntries: len(c.storage),
		TotalSize:    c.currentSize,
		MaxSize:      c.maxSize,
		UsagePercent: float64(c.currentSize) / float64(c.maxSize) * 100,
		StageStats:   make(map[string]StageStats),
		SourceHits:   atomic.LoadInt64(&c.sourceHits),
		StageHits:    atomic.LoadInt64(&c.stageHits),
		CacheMisses:  atomic.LoadInt64(&c.misses),
	}

	total := stats.SourceHits + stats.StageHits + stats.CacheMisses
	if total > 0 {
		stats.HitRate = float64(stats.SourceHits+stats.StageHits) / float64(total)
	}

	for key, entry := range c.storage {
		name := ExtractStageNameFromKey(key)
		s := stats.StageStats[name]
		s.EntryCount++
		s.TotalSize += entry.Size
		stats.StageStats[name] = s
	}
	return stats
}

func headersSize(headers []string) int64 {
	var size int64
	for _, h := range headers {
		size += int64(len(h)) + 16
	}
	return size
}

// tableSize estimates the memory held by records that are owned by the entry
func tableSize(headers []string, records []interfaces.Record) int64 {
	size := headersSize(headers)
	for _, rec := range records {
		size += recordOverhead
		for col, cell := range rec {
			size += cellOverhead + int64(len(col))
			for _, v := range cell.Values() {
				size += int64(len(v))
			}
		}
	}
	return size
}

// sharedSize only counts the slice of record references
func sharedSize(headers []string, recordCount int) int64 {
	return headersSize(headers) + int64(recordCount)*pointerOverhead
}

// String renders the stats for log lines and the CLI
func (s CacheStats) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "entries=%d size=%d/%d (%.1f%%) hits=%d/%d misses=%d",
		s.TotalEntries, s.TotalSize, s.MaxSize, s.UsagePercent, s.SourceHits, s.StageHits, s.CacheMisses)
	return b.String()
}
