package rules

import (
	stderrors "errors"
	"regexp"
	"strings"

	"github.com/arthur-debert/hidefolder/pkg/errors"
)

// Set is an ordered list of compiled rules
type Set struct {
	rules  []Rule
	errors []*LineError
}

// Compile builds a rule set from the raw configuration text.
// Empty text yields an empty set. Blank lines are ignored and lines that fail
// to compile are skipped and recorded on the set.
func Compile(text string) *Set {
	set := &Set{}
	if text == "" {
		return set
	}

	for i, line := range strings.Split(text, "\n") {
		line = strings.TrimSuffix(line, "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}

		re, err := regexp.Compile(line)
		if err != nil {
			set.errors = append(set.errors, &LineError{Line: i + 1, Pattern: line, Err: err})
			continue
		}

		set.rules = append(set.rules, Rule{Pattern: line, Line: i + 1, re: re})
	}

	return set
}

// Len returns the number of compiled rules
func (s *Set) Len() int {
	if s == nil {
		return 0
	}
	return len(s.rules)
}

// Empty reports whether the set holds no usable rule
func (s *Set) Empty() bool {
	return s.Len() == 0
}

// Rules returns a copy of the compiled rules in evaluation order
func (s *Set) Rules() []Rule {
	if s == nil {
		return nil
	}
	out := make([]Rule, len(s.rules))
	copy(out, s.rules)
	return out
}

// Match returns the first rule matching path
func (s *Set) Match(path string) (Rule, bool) {
	if s == nil {
		return Rule{}, false
	}
	for _, r := range s.rules {
		if r.Match(path) {
			return r, true
		}
	}
	return Rule{}, false
}

// Errors returns the lines that failed to compile
func (s *Set) Errors() []*LineError {
	if s == nil {
		return nil
	}
	return s.errors
}

// Err returns a RULE_INVALID error describing every skipped line, or nil
func (s *Set) Err() error {
	if s == nil || len(s.errors) == 0 {
		return nil
	}
	errs := make([]error, len(s.errors))
	lines := make([]int, len(s.errors))
	for i, e := range s.errors {
		errs[i] = e
		lines[i] = e.Line
	}
	return errors.Wrapf(stderrors.Join(errs...), errors.ErrRuleInvalid,
		"%d invalid pattern line(s) skipped", len(s.errors)).
		WithDetail("lines", lines)
}
