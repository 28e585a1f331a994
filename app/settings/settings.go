package settings

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// SettingsFileName is looked up next to the executable
const SettingsFileName = "csv-visualiser.yml"

// GetEffectiveSettings returns the effective settings (defaults overlaid with file overrides if any).
// If anything goes wrong, it returns defaults.
func GetEffectiveSettings() Settings {
	path, err := settingsFilePath()
	if err != nil {
		return defaultSettings
	}
	return LoadSettingsFile(path)
}

// LoadSettingsFile overlays the overrides found in path onto the defaults.
// A missing or unreadable file yields the defaults.
func LoadSettingsFile(path string) Settings {
	settings := defaultSettings
	if _, err := os.Stat(path); err != nil {
		// no file or other stat error -> return defaults
		return settings
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return settings
	}
	var m map[string]any
	if err := yaml.Unmarshal(b, &m); err != nil {
		return settings
	}
	return overlay(settings, m)
}

// settingKeys are the keys understood in a settings file
var settingKeys = []string{
	"enable_table_cache",
	"cache_size_limit_mb",
	"max_directory_files",
	"default_ingest_timezone",
	"log_level",
	"log_format",
	"http_timeout_seconds",
}

// WithOverride returns s with one setting changed. value is read as YAML, so
// "false" is a bool and "200" an int. Unknown keys and values the setting
// does not accept are errors.
func WithOverride(s Settings, key, value string) (Settings, error) {
	known := false
	for _, k := range settingKeys {
		if k == key {
			known = true
			break
		}
	}
	if !known {
		return s, fmt.Errorf("unknown setting %q (known: %s)", key, strings.Join(settingKeys, ", "))
	}
	var v any
	if err := yaml.Unmarshal([]byte(value), &v); err != nil {
		return s, fmt.Errorf("invalid value for %s: %w", key, err)
	}
	m := map[string]any{key: v}
	// overlay ignores rejected values, so a value that changes neither base was rejected
	zero, flipped := Settings{}, Settings{EnableTableCache: true}
	if overlay(zero, m) == zero && overlay(flipped, m) == flipped {
		return s, fmt.Errorf("invalid value %q for %s", value, key)
	}
	return overlay(s, m), nil
}

func overlay(settings Settings, m map[string]any) Settings {
	if v, ok := m["enable_table_cache"]; ok {
		if vb, okb := v.(bool); okb {
			settings.EnableTableCache = vb
		}
	}
	if v, ok := m["cache_size_limit_mb"]; ok {
		if vi, oki := v.(int); oki && vi > 0 {
			settings.CacheSizeLimitMB = vi
		}
	}
	if v, ok := m["max_directory_files"]; ok {
		if vi, oki := v.(int); oki && vi >= 1 {
			settings.MaxDirectoryFiles = vi
		}
	}
	if v, ok := m["default_ingest_timezone"]; ok {
		if vs, oks := v.(string); oks && vs != "" {
			settings.DefaultIngestTimezone = vs
		}
	}
	if v, ok := m["log_level"]; ok {
		if vs, oks := v.(string); oks {
			switch strings.ToLower(vs) {
			case "debug", "info", "warn", "error":
				settings.LogLevel = strings.ToLower(vs)
			}
		}
	}
	if v, ok := m["log_format"]; ok {
		if vs, oks := v.(string); oks {
			switch strings.ToLower(vs) {
			case "text", "json":
				settings.LogFormat = strings.ToLower(vs)
			}
		}
	}
	if v, ok := m["http_timeout_seconds"]; ok {
		if vi, oki := v.(int); oki && vi > 0 {
			settings.HTTPTimeoutSeconds = vi
		}
	}
	return settings
}

// SaveSettings writes only the values that differ from the defaults, so that a
// later change of default still reaches users who never touched that setting.
func SaveSettings(path string, in Settings) error {
	data := map[string]any{}
	if in.EnableTableCache != defaultSettings.EnableTableCache {
		data["enable_table_cache"] = in.EnableTableCache
	}
	if in.CacheSizeLimitMB != defaultSettings.CacheSizeLimitMB {
		data["cache_size_limit_mb"] = in.CacheSizeLimitMB
	}
	if in.MaxDirectoryFiles != defaultSettings.MaxDirectoryFiles {
		data["max_directory_files"] = in.MaxDirectoryFiles
	}
	if in.DefaultIngestTimezone != defaultSettings.DefaultIngestTimezone {
		data["default_ingest_timezone"] = in.DefaultIngestTimezone
	}
	if in.LogLevel != defaultSettings.LogLevel {
		data["log_level"] = in.LogLevel
	}
	if in.LogFormat != defaultSettings.LogFormat {
		data["log_format"] = in.LogFormat
	}
	if in.HTTPTimeoutSeconds != defaultSettings.HTTPTimeoutSeconds {
		data["http_timeout_seconds"] = in.HTTPTimeoutSeconds
	}

	if len(data) == 0 {
		// Nothing overridden; remove a stale file if present
		if _, err := os.Stat(path); err == nil {
			return os.Remove(path)
		}
		return nil
	}

	b, err := yaml.Marshal(data)
	if err != nil {
		return err
	}
	// Ensure parent directory exists
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, b, 0o644)
}

// SettingsFilePath returns the default settings location
func SettingsFilePath() (string, error) {
	return settingsFilePath()
}

func settingsFilePath() (string, error) {
	exe, err := os.Executable()
	if err != nil {
		return "", err
	}
	dir := filepath.Dir(exe)
	return filepath.Join(dir, SettingsFileName), nil
}
