package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/deepbluedave/csv-visualiser-sub000/app/cache"
	"github.com/deepbluedave/csv-visualiser-sub000/app/fileloader"
	"github.com/deepbluedave/csv-visualiser-sub000/app/interfaces"
	"github.com/deepbluedave/csv-visualiser-sub000/app/settings"
	"github.com/deepbluedave/csv-visualiser-sub000/app/timestamps"
)

// App struct
type App struct {
	settings settings.Settings
	logger   interfaces.Logger

	// parsed-table cache, nil when disabled in settings
	tableCache *cache.Cache
}

// NewApp creates a new App from the effective settings
func NewApp(s settings.Settings, logger interfaces.Logger) *App {
	logger = interfaces.OrNop(logger)
	a := &App{settings: s, logger: logger}
	if s.EnableTableCache {
		cacheSizeBytes := int64(s.CacheSizeLimitMB) * 1024 * 1024
		a.tableCache = cache.NewCache(cacheSizeBytes, logger)
	}
	return a
}

// Log writes a line through the app logger
func (a *App) Log(level, message string) {
	if a == nil {
		return
	}
	a.logger.Log(level, message)
}

// Settings returns the settings the app was created with
func (a *App) Settings() settings.Settings {
	return a.settings
}

// CacheStatsResponse contains cache statistics
type CacheStatsResponse struct {
	TotalSize    int64   `json:"totalSize"`
	MaxSize      int64   `json:"maxSize"`
	UsagePercent float64 `json:"usagePercent"`
	EntryCount   int     `json:"entryCount"`
	HitRate      float64 `json:"hitRate"`
}

// GetCacheStats returns the current cache statistics
func (a *App) GetCacheStats() CacheStatsResponse {
	if a.tableCache == nil {
		return CacheStatsResponse{}
	}
	stats := a.tableCache.GetCacheStats()
	return CacheStatsResponse{
		TotalSize:    stats.TotalSize,
		MaxSize:      stats.MaxSize,
		UsagePercent: stats.UsagePercent,
		EntryCount:   stats.TotalEntries,
		HitRate:      stats.HitRate,
	}
}

// ClearCache drops every cached table and result
func (a *App) ClearCache() {
	if a.tableCache != nil {
		a.tableCache.Clear()
	}
}

// fileOptions fills unset options from the configuration and settings
func (a *App) fileOptions(cfg *settings.Config, options fileloader.FileOptions) fileloader.FileOptions {
	if options.Delimiter == "" && cfg.General.CSVDelimiter != "" {
		options.Delimiter = cfg.Delimiter()
	}
	if options.MultiValueColumns == nil {
		options.MultiValueColumns = cfg.General.MultiValueColumns
	}
	if options.MaxFiles == 0 {
		options.MaxFiles = a.settings.MaxDirectoryFiles
	}
	return options
}

// Open loads source (a file, a directory or an http(s) URL; the configured
// csvUrl when empty) and returns a session over it. Tables are cached by
// content hash and load options, so reopening unchanged data skips parsing.
func (a *App) Open(ctx context.Context, cfg *settings.Config, source string, options fileloader.FileOptions) (*Session, error) {
	if cfg == nil {
		cfg = &settings.Config{}
	}
	if source == "" {
		source = cfg.General.CSVUrl
	}
	if source == "" {
		return nil, fmt.Errorf("no data source: pass a file, directory or URL, or set generalSettings.csvUrl")
	}
	options = a.fileOptions(cfg, options)

	start := time.Now()
	table, sourceKey, err := a.load(ctx, source, options)
	if err != nil {
		return nil, err
	}
	for _, w := range table.Warnings {
		a.Log("warn", fmt.Sprintf("[LOAD_WARNING] %s: %s", source, w))
	}
	a.Log("info", fmt.Sprintf("[LOAD_DONE] Source: %s, Rows: %d, Columns: %d, Elapsed: %s",
		source, table.Len(), len(table.Headers), time.Since(start).Round(time.Millisecond)))

	s := NewSession(uuid.NewString(), cfg, table, a.tableCache, sourceKey, a.logger)
	s.Source = source
	s.Context.Location = timestamps.GetLocationForTZ(a.settings.DefaultIngestTimezone)
	return s, nil
}

// load returns the table for source and its cache key
func (a *App) load(ctx context.Context, source string, options fileloader.FileOptions) (*interfaces.Table, string, error) {
	var (
		data []byte
		name string
		hash string
		err  error
	)
	dir := false
	switch {
	case fileloader.IsURL(source):
		timeout := time.Duration(a.settings.HTTPTimeoutSeconds) * time.Second
		if data, err = fileloader.FetchURL(ctx, source, timeout); err != nil {
			return nil, "", err
		}
		name, hash = source, fileloader.HashBytes(data)
	case fileloader.IsDirectory(source):
		dir = true
		if options.FilePattern == "" {
			options.FilePattern = fileloader.DefaultDirectoryPattern
		}
		info, err := fileloader.DiscoverFiles(source, options.FilePattern, options.MaxFiles)
		if err != nil {
			return nil, "", err
		}
		if hash, err = fileloader.HashDirectory(info); err != nil {
			return nil, "", err
		}
	default:
		if data, err = os.ReadFile(source); err != nil {
			return nil, "", fmt.Errorf("failed to read %s: %w", source, err)
		}
		name, hash = filepath.Base(source), fileloader.HashBytes(data)
	}

	key := cache.SourceKey(hash, options.Key())
	if a.tableCache != nil {
		if entry, ok := a.tableCache.Get(key); ok {
			return &interfaces.Table{Headers: entry.Headers, Records: entry.Records, Warnings: entry.Warnings}, key, nil
		}
	}

	var table *interfaces.Table
	if dir {
		table, err = fileloader.LoadDirectory(ctx, source, options)
	} else {
		table, err = fileloader.LoadBytes(name, data, options)
	}
	if err != nil {
		return nil, "", err
	}
	if a.tableCache != nil {
		a.tableCache.StoreTable(key, table)
	}
	return table, key, nil
}

// Merge loads every file under dir matching pattern as one table
func (a *App) Merge(ctx context.Context, dir, pattern string, includeSource bool) (*interfaces.Table, error) {
	if !fileloader.IsDirectory(dir) {
		return nil, fmt.Errorf("%s is not a directory", dir)
	}
	if pattern == "" {
		pattern = fileloader.DefaultDirectoryPattern
	}
	options := fileloader.FileOptions{
		FilePattern:         pattern,
		IncludeSourceColumn: includeSource,
		MaxFiles:            a.settings.MaxDirectoryFiles,
	}
	return fileloader.LoadDirectory(ctx, dir, options)
}
