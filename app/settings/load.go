package settings

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
)

// LoadConfig reads a YAML or JSON dashboard configuration file.
// Warnings describe fields that were ignored or defaulted.
func LoadConfig(path string) (*Config, []string, error) {
	if path == "" {
		return nil, nil, fmt.Errorf("config path is empty")
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read config: %w", err)
	}
	return ParseConfig(b)
}

// ParseConfig decodes a dashboard configuration. Values of the wrong type are
// reported as warnings and left at their defaults; only unparseable documents
// are errors.
func ParseConfig(data []byte) (*Config, []string, error) {
	cfg := &Config{}
	var warnings []string

	if err := yaml.Unmarshal(data, cfg); err != nil {
		var typeErr *yaml.TypeError
		if !errors.As(err, &typeErr) {
			return nil, nil, fmt.Errorf("failed to parse config: %w", err)
		}
		for _, e := range typeErr.Errors {
			warnings = append(warnings, "ignored config value: "+e)
		}
	}

	warnings = append(warnings, cfg.normalize()...)
	return cfg, warnings, nil
}

// normalize fills generated IDs and canonical spellings and returns warnings
// for entries that will be ignored at run time.
func (c *Config) normalize() []string {
	var warnings []string

	if d := c.General.CSVDelimiter; d != "" && utf8.RuneCountInString(d) != 1 {
		r, _ := utf8.DecodeRuneInString(d)
		warnings = append(warnings, fmt.Sprintf("csvDelimiter %q is longer than one character, using %q", d, string(r)))
		c.General.CSVDelimiter = string(r)
	}

	for col, style := range c.IndicatorStyles {
		style.Type = strings.ToLower(strings.TrimSpace(style.Type))
		switch style.Type {
		case StyleIcon, StyleTag, StyleLookup, StyleNone:
		case "":
			style.Type = StyleNone
		default:
			warnings = append(warnings, fmt.Sprintf("indicatorStyles[%q]: unknown type %q, treated as none", col, style.Type))
			style.Type = StyleNone
		}
		for i, rule := range style.StyleRules {
			switch rule.MatchType {
			case "exact":
			case "regex":
				if rule.Pattern == "" {
					warnings = append(warnings, fmt.Sprintf("indicatorStyles[%q].styleRules[%d]: empty regex pattern, rule skipped", col, i))
				} else if _, err := regexp.Compile(rule.Pattern); err != nil {
					warnings = append(warnings, fmt.Sprintf("indicatorStyles[%q].styleRules[%d]: invalid regex %q never matches: %v", col, i, rule.Pattern, err))
				}
			default:
				warnings = append(warnings, fmt.Sprintf("indicatorStyles[%q].styleRules[%d]: unknown matchType %q, rule skipped", col, i, rule.MatchType))
			}
		}
		if style.Type == StyleLookup && (style.Source == nil || style.Source.DataColumn == "" || style.Source.DisplayColumn == "") {
			warnings = append(warnings, fmt.Sprintf("indicatorStyles[%q]: lookup needs source.dataColumn and source.displayColumn", col))
		}
		c.IndicatorStyles[col] = style
	}

	seen := make(map[string]bool, len(c.Tabs))
	for i := range c.Tabs {
		tab := &c.Tabs[i]
		if strings.TrimSpace(tab.ID) == "" {
			tab.ID = uuid.New().String()
		}
		if seen[tab.ID] {
			warnings = append(warnings, fmt.Sprintf("duplicate tab id %q; only the first is addressable", tab.ID))
		}
		seen[tab.ID] = true

		tab.Type = strings.ToLower(strings.TrimSpace(tab.Type))
		switch tab.Type {
		case TabTable, TabKanban, TabSummary, TabCounts, TabHierarchy:
		default:
			warnings = append(warnings, fmt.Sprintf("tab %q: unsupported type %q", tab.ID, tab.Type))
		}
		if tab.Title == "" {
			tab.Title = tab.ID
		}
		warnings = append(warnings, validateCriteria(tab.ID, "sortBy", tab.Config.SortBy)...)
		warnings = append(warnings, validateCriteria(tab.ID, "itemSortBy", tab.Config.ItemSortBy)...)
	}
	return warnings
}

func validateCriteria(tabID, field string, criteria []SortCriterion) []string {
	var warnings []string
	for i, c := range criteria {
		if c.Column == "" {
			warnings = append(warnings, fmt.Sprintf("tab %q: %s[%d] has no column", tabID, field, i))
		}
		switch strings.ToLower(c.Direction) {
		case "", SortAsc, SortDesc:
		case SortCustom:
			if len(c.Order) == 0 {
				warnings = append(warnings, fmt.Sprintf("tab %q: %s[%d] is custom without an order, sorting asc", tabID, field, i))
			}
		default:
			warnings = append(warnings, fmt.Sprintf("tab %q: %s[%d] has direction %q, sorting asc", tabID, field, i, c.Direction))
		}
	}
	return warnings
}
