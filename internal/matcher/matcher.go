// Package matcher filters catalog entries with glob or regex patterns.
package matcher

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/waajacu/minerals/pkg/minerals"
)

// PatternType represents the type of pattern matching to use.
type PatternType int

const (
	// Glob uses shell-style glob patterns (*, ?, []).
	Glob PatternType = iota
	// Regex uses regular expressions.
	Regex
	// Auto detects the pattern type from its metacharacters.
	Auto
)

// String returns a string representation of the PatternType.
func (pt PatternType) String() string {
	switch pt {
	case Glob:
		return "glob"
	case Regex:
		return "regex"
	case Auto:
		return "auto"
	default:
		return "unknown"
	}
}

// Matcher matches strings against one compiled pattern. Matching is case
// insensitive because operators type names the way they remember them.
type Matcher struct {
	pattern     string
	patternType PatternType
	glob        string
	compiled    *regexp.Regexp
}

// New compiles pattern. Glob patterns without metacharacters match as
// substrings.
func New(patternType PatternType, pattern string) (*Matcher, error) {
	m := &Matcher{pattern: pattern, patternType: patternType}
	if patternType == Auto {
		m.patternType = detectPatternType(pattern)
	}

	switch m.patternType {
	case Glob:
		m.glob = strings.ToLower(pattern)
		if !strings.ContainsAny(m.glob, "*?[") {
			m.glob = "*" + m.glob + "*"
		}
		if _, err := filepath.Match(m.glob, ""); err != nil {
			return nil, fmt.Errorf("invalid glob pattern %q: %w", pattern, err)
		}
	case Regex:
		compiled, err := regexp.Compile("(?i)" + strings.TrimPrefix(pattern, "(?i)"))
		if err != nil {
			return nil, fmt.Errorf("invalid regex pattern %q: %w", pattern, err)
		}
		m.compiled = compiled
	default:
		return nil, fmt.Errorf("unsupported pattern type: %v", patternType)
	}
	return m, nil
}

// Pattern returns the original pattern string.
func (m *Matcher) Pattern() string { return m.pattern }

// Type returns the resolved pattern type.
func (m *Matcher) Type() PatternType { return m.patternType }

// Match reports whether input matches the pattern.
func (m *Matcher) Match(input string) bool {
	if m.compiled != nil {
		return m.compiled.MatchString(input)
	}
	ok, _ := filepath.Match(m.glob, strings.ToLower(input))
	return ok
}

// MatchMineral reports whether the identifier, common name or family of
// mineral matches.
func (m *Matcher) MatchMineral(mineral minerals.Mineral) bool {
	return m.Match(mineral.ID) || m.Match(mineral.CommonName) || m.Match(mineral.Family)
}

// Filter returns the minerals that match, keeping their order.
func (m *Matcher) Filter(items []minerals.Mineral) []minerals.Mineral {
	out := make([]minerals.Mineral, 0, len(items))
	for _, item := range items {
		if m.MatchMineral(item) {
			out = append(out, item)
		}
	}
	return out
}

// detectPatternType treats a pattern with regex-only metacharacters as a
// regex and anything else as a glob.
func detectPatternType(pattern string) PatternType {
	regexIndicators := []string{
		"^", "$", `\d`, `\w`, `\s`, "(?", "{", "}", "+", "|", "(", ")",
	}
	for _, indicator := range regexIndicators {
		if strings.Contains(pattern, indicator) {
			return Regex
		}
	}
	return Glob
}
