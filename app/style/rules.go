package style

import (
	"fmt"
	"regexp"

	"github.com/deepbluedave/csv-visualiser-sub000/app/interfaces"
	"github.com/deepbluedave/csv-visualiser-sub000/app/settings"
)

// Rule is one compiled entry of a tag column's styleRules
type Rule interface {
	Match(value string) bool
	Style() *settings.Style
}

// ExactRule matches a value verbatim, case-sensitive
type ExactRule struct {
	Value string
	style *settings.Style
}

func (r *ExactRule) Match(value string) bool { return value == r.Value }
func (r *ExactRule) Style() *settings.Style  { return r.style }

// RegexRule matches when the pattern is found anywhere in the value.
// A pattern that failed to compile never matches.
type RegexRule struct {
	Pattern string
	re      *regexp.Regexp
	style   *settings.Style
}

func (r *RegexRule) Match(value string) bool {
	return r.re != nil && r.re.MatchString(value)
}

func (r *RegexRule) Style() *settings.Style { return r.style }

// CompileRules turns configured rules into matchers, in order. Rules without a
// style and rules with an unknown match type are skipped.
func CompileRules(column string, rules []settings.StyleRule, logger interfaces.Logger) []Rule {
	logger = interfaces.OrNop(logger)
	compiled := make([]Rule, 0, len(rules))
	for i, r := range rules {
		if r.Style == nil {
			logger.Log("warn", fmt.Sprintf("[STYLE_RULE_SKIP] Column %q rule %d has no style", column, i))
			continue
		}
		switch r.MatchType {
		case "exact":
			compiled = append(compiled, &ExactRule{Value: r.Value, style: r.Style})
		case "regex":
			if r.Pattern == "" {
				logger.Log("warn", fmt.Sprintf("[STYLE_RULE_SKIP] Column %q rule %d has an empty pattern", column, i))
				continue
			}
			re, err := regexp.Compile(r.Pattern)
			if err != nil {
				logger.Log("warn", fmt.Sprintf("[STYLE_BAD_REGEX] Column %q rule %d: %v", column, i, err))
			}
			compiled = append(compiled, &RegexRule{Pattern: r.Pattern, re: re, style: r.Style})
		default:
			logger.Log("warn", fmt.Sprintf("[STYLE_RULE_SKIP] Column %q rule %d has unknown matchType %q", column, i, r.MatchType))
		}
	}
	return compiled
}

// firstMatch folds over rules; the first match wins
func firstMatch(rules []Rule, value string) (*settings.Style, bool) {
	for _, r := range rules {
		if r.Match(value) {
			return r.Style(), true
		}
	}
	return nil, false
}
