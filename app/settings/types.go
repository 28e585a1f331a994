package settings

// Settings holds application settings that can be overridden by the user.
type Settings struct {
	// Remove omitempty so that false is serialized (we need to persist explicit overrides)
	EnableTableCache bool `yaml:"enable_table_cache" json:"enable_table_cache"`
	// Cache size limit in MB for the parsed-table cache
	CacheSizeLimitMB int `yaml:"cache_size_limit_mb" json:"cache_size_limit_mb"`
	// Maximum number of files when loading a directory as one table
	MaxDirectoryFiles int `yaml:"max_directory_files" json:"max_directory_files"`
	// Timezone assumed for dates without an explicit zone when sorting.
	// "Local", "UTC" or any IANA name such as "Europe/London"
	DefaultIngestTimezone string `yaml:"default_ingest_timezone" json:"default_ingest_timezone"`
	// debug, info, warn or error
	LogLevel string `yaml:"log_level" json:"log_level"`
	// text or json
	LogFormat string `yaml:"log_format" json:"log_format"`
	// Timeout for loading a table from an http(s) URL
	HTTPTimeoutSeconds int `yaml:"http_timeout_seconds" json:"http_timeout_seconds"`
}

// defaultSettings defines the built-in defaults.
var defaultSettings = Settings{
	EnableTableCache:      true,
	CacheSizeLimitMB:      100,
	MaxDirectoryFiles:     500,
	DefaultIngestTimezone: "Local",
	LogLevel:              "info",
	LogFormat:             "text",
	HTTPTimeoutSeconds:    30,
}

// DefaultSettings returns a copy of the built-in defaults
func DefaultSettings() Settings {
	return defaultSettings
}
