// Package rules holds the standard fuzz rules.
package rules

import (
	"regexp"

	"github.com/harrison/fuzz/internal/rule"
	"github.com/harrison/fuzz/internal/target"
)

// cppExts are the C and C++ source and header extensions.
var cppExts = []string{"h", "hxx", "hpp", "c", "cc", "cxx", "cpp", "H", "C"}

// PatternRule flags every line matching a regular expression.
// It never fixes anything.
type PatternRule struct {
	rule.Base
	exts    map[string]bool
	pattern *regexp.Regexp
}

// NewPatternRule creates a line pattern rule. With no extensions the rule
// applies to every file; directories are never inspected.
func NewPatternRule(base rule.Base, pattern *regexp.Regexp, exts ...string) *PatternRule {
	r := &PatternRule{Base: base, pattern: pattern}
	if len(exts) > 0 {
		r.exts = make(map[string]bool, len(exts))
		for _, ext := range exts {
			r.exts[ext] = true
		}
	}
	return r
}

// NewIDTagRule flags $Id$ keyword tags in comments.
func NewIDTagRule() *PatternRule {
	return NewPatternRule(rule.Base{
		RuleID:          "check_id_tag",
		RuleDescription: "checks against the use of the $Id$ tag",
		RuleErrorMsg:    "detected use of $Id:$",
	}, regexp.MustCompile(`(?i)^\s*(\*|//|#)\s*\$Id`))
}

// NewAceErrorRule flags the old ACE logging macros.
func NewAceErrorRule() *PatternRule {
	return NewPatternRule(rule.Base{
		RuleID:          "check_ace_error",
		RuleDescription: "checks against the use of the old ACE logging macros in test code",
		RuleErrorMsg:    "detected use of ACE_ERROR, ACE_DEBUG, and/or ACE_ERROR_RETURN",
	}, regexp.MustCompile(`(^|\s+)(ACE_ERROR|ACE_ERROR_RETURN|ACE_DEBUG)(\s+|$)`), append(cppExts, "asm")...)
}

// NewExitKeywordRule flags bare uses of exit.
func NewExitKeywordRule() *PatternRule {
	return NewPatternRule(rule.Base{
		RuleID:          "check_exit_keyword",
		RuleDescription: "checks against the use of the exit keyword in test code",
		RuleErrorMsg:    "detected use of exit",
	}, regexp.MustCompile(`(^|\s+)exit(\s+|$)`), cppExts...)
}

// NewNamespaceRule flags the TAOX11 namespace macros in user code.
func NewNamespaceRule() *PatternRule {
	return NewPatternRule(rule.Base{
		RuleID:          "check_taox11_namespace",
		RuleDescription: "checks against the use of the TAOX11_NAMESPACE macro in user/test code",
		RuleErrorMsg:    "detected use TAOX11_xxx namespace macro",
	}, regexp.MustCompile(`(TAOX11_NAMESPACE|TAOX11_CORBA|TAOX11_PORTABLE_SERVER)::|namespace\s+(TAOX11_NAMESPACE|TAOX11_CORBA|TAOX11_PORTABLE_SERVER)`), cppExts...)
}

// AppliesTo accepts files with one of the rule's extensions.
func (r *PatternRule) AppliesTo(t *target.Target) bool {
	if !t.IsFile() {
		return false
	}
	return r.exts == nil || r.exts[t.Ext]
}

// Run flags every unsuppressed line the pattern matches.
func (r *PatternRule) Run(ctx *rule.Context, t *target.Target) (bool, error) {
	return rule.Scan(ctx, r, t, func(c *target.Cursor) error {
		if r.pattern.MatchString(c.Line()) {
			c.MarkViolation()
		}
		return nil
	})
}
