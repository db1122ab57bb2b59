package target

import (
	"errors"
	"fmt"
	"regexp"
)

// DirectiveKeyword prefixes every in-file directive.
const DirectiveKeyword = "X11_FUZZ:"

// ErrMalformedDirective is returned when a line carries a directive keyword
// and verb but no rule id.
var ErrMalformedDirective = errors.New("malformed directive")

// directiveRE matches "X11_FUZZ: enable <id>" and "X11_FUZZ: disable <id>".
// Group 1 is the verb, group 3 the rule id (empty when malformed).
var directiveRE = regexp.MustCompile(`X11_FUZZ: (enable|disable)\b( (\S+))?`)

// Directive is a single enable/disable marker found on a line.
type Directive struct {
	Enable bool
	RuleID string
}

// ParseDirectives returns the directives found on line, left to right.
// lineNumber is only used for error reporting.
func ParseDirectives(line string, lineNumber int) ([]Directive, error) {
	matches := directiveRE.FindAllStringSubmatchIndex(line, -1)
	if len(matches) == 0 {
		return nil, nil
	}
	directives := make([]Directive, 0, len(matches))
	for _, m := range matches {
		if m[6] < 0 {
			return nil, fmt.Errorf("%w in line %d: %q", ErrMalformedDirective, lineNumber, line[m[0]:m[1]])
		}
		directives = append(directives, Directive{
			Enable: line[m[2]:m[3]] == "enable",
			RuleID: line[m[6]:m[7]],
		})
	}
	return directives, nil
}

// applyDirectives folds the directives on line for ruleID into suppressed.
func applyDirectives(suppressed bool, line string, lineNumber int, ruleID string) (bool, error) {
	directives, err := ParseDirectives(line, lineNumber)
	if err != nil {
		return suppressed, err
	}
	for _, d := range directives {
		if d.RuleID == ruleID {
			suppressed = !d.Enable
		}
	}
	return suppressed, nil
}
