package cache

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deepbluedave/csv-visualiser-sub000/app/interfaces"
)

func sampleTable(n int) *interfaces.Table {
	t := &interfaces.Table{Headers: []string{"id", "status"}}
	for i := 0; i < n; i++ {
		t.Records = append(t.Records, interfaces.Record{
			"id":     interfaces.ScalarCell("row"),
			"status": interfaces.ScalarCell("open"),
		})
	}
	return t
}

func TestCacheStoreAndGet(t *testing.T) {
	log := &interfaces.RecordingLogger{}
	c := NewCache(1<<20, log)
	key := SourceKey("abc", "opts")

	_, ok := c.Get(key)
	assert.False(t, ok)
	assert.True(t, log.Contains("[CACHE_MISS]"))

	require.True(t, c.StoreTable(key, sampleTable(3)))
	entry, ok := c.Get(key)
	require.True(t, ok)
	assert.Len(t, entry.Records, 3)
	assert.True(t, log.Contains("[CACHE_HIT_SOURCE]"))

	stageKey := StageKey(key, "filter", "status=open")
	require.True(t, c.StoreShared(stageKey, entry.Headers, entry.Records[:1]))
	_, ok = c.Get(stageKey)
	require.True(t, ok)
	assert.True(t, log.Contains("[CACHE_HIT_STAGE]"))

	stats := c.GetCacheStats()
	assert.Equal(t, 2, stats.TotalEntries)
	assert.Equal(t, int64(1), stats.SourceHits)
	assert.Equal(t, int64(1), stats.StageHits)
	assert.Equal(t, int64(1), stats.CacheMisses)
	assert.Equal(t, 1, stats.StageStats["filter"].EntryCount)
	assert.Equal(t, 1, stats.StageStats["source"].EntryCount)
}

func TestCacheEvictsLeastRecentlyUsed(t *testing.T) {
	one := tableSize([]string{"id", "status"}, sampleTable(10).Records)
	c := NewCache(one*2+1, nil)

	require.True(t, c.StoreTable("a", sampleTable(10)))
	require.True(t, c.StoreTable("b", sampleTable(10)))
	_, _ = c.Get("a")
	require.True(t, c.StoreTable("c", sampleTable(10)))

	_, okA := c.Get("a")
	_, okB := c.Get("b")
	_, okC := c.Get("c")
	assert.True(t, okA)
	assert.False(t, okB, "b was least recently used")
	assert.True(t, okC)
	assert.LessOrEqual(t, c.Size(), c.MaxSize())
}

func TestCacheRejectsOversizedEntry(t *testing.T) {
	c := NewCache(10, nil)
	assert.False(t, c.StoreTable("big", sampleTable(5)))
	assert.Equal(t, 0, c.EntryCount())
}

func TestCacheUpdateMaxSizeEvicts(t *testing.T) {
	c := NewCache(1<<20, nil)
	c.StoreTable("a", sampleTable(10))
	c.StoreTable("b", sampleTable(10))

	c.UpdateMaxSize(c.Size() - 1)
	assert.Equal(t, 1, c.EntryCount())
	assert.Equal(t, []string{"b"}, c.Keys())
}

func TestKeys(t *testing.T) {
	key := StageKey(StageKey(SourceKey("h", "o"), "filter", "x"), "sort", "y")
	assert.Equal(t, 2, ExtractStageCount(key))
	assert.Equal(t, "sort", ExtractStageNameFromKey(key))
	assert.Equal(t, "source", ExtractStageNameFromKey(SourceKey("h", "o")))
}
