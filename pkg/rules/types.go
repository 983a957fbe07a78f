package rules

import (
	"fmt"
	"regexp"
)

// Rule is one compiled line of the configuration text
type Rule struct {
	Pattern string // Source text of the line
	Line    int    // 1-based line number in the configuration text

	re *regexp.Regexp
}

// Match reports whether the rule matches anywhere in path
func (r Rule) Match(path string) bool {
	if r.re == nil {
		return false
	}
	return r.re.MatchString(path)
}

// String returns the rule as "line:pattern"
func (r Rule) String() string {
	return fmt.Sprintf("%d:%s", r.Line, r.Pattern)
}

// LineError describes a configuration line that failed to compile
type LineError struct {
	Line    int
	Pattern string
	Err     error
}

// Error implements the error interface
func (e *LineError) Error() string {
	return fmt.Sprintf("line %d: invalid pattern %q: %v", e.Line, e.Pattern, e.Err)
}

// Unwrap returns the underlying regexp error
func (e *LineError) Unwrap() error {
	return e.Err
}
