package cache

import (
	"strings"
)

// Keys are "|"-joined segments. The first segment names the source
// ("source:<hash>:<options>"), every following one a pipeline stage
// ("filter:<group>", "sort:<criteria>", ...). A key is therefore also a
// prefix of the keys of every longer pipeline over the same source.

// SourceKey builds the key for a parsed source
func SourceKey(contentHash, optionsKey string) string {
	return "source:" + contentHash + ":" + optionsKey
}

// StageKey appends one stage segment to a key
func StageKey(prefix, stageName, stageArg string) string {
	return prefix + "|" + stageName + ":" + stageArg
}

// ExtractStageCount returns the number of stage segments after the source
func ExtractStageCount(key string) int {
	return strings.Count(key, "|")
}

// ExtractStageNameFromKey returns the name of the last stage, or "source"
func ExtractStageNameFromKey(key string) string {
	i := strings.LastIndex(key, "|")
	if i < 0 {
		return "source"
	}
	last := key[i+1:]
	if j := strings.Index(last, ":"); j >= 0 {
		return last[:j]
	}
	return last
}
