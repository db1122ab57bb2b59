package rules

import (
	"strings"

	"github.com/harrison/fuzz/internal/rule"
	"github.com/harrison/fuzz/internal/target"
	"github.com/spf13/pflag"
)

const (
	defaultTabSpacing = 2
	trailingChars     = " \t\f\r\v"
	tabsDetectedMsg   = "tab(s) detected"
)

// WhitespaceRule flags trailing whitespace, CR line endings and tabs.
// With fixing enabled it strips the former and expands tabs to spaces.
type WhitespaceRule struct {
	rule.Base
	tabSpacing int
}

// NewWhitespaceRule creates the whitespace checker.
func NewWhitespaceRule() *WhitespaceRule {
	return &WhitespaceRule{
		Base: rule.Base{
			RuleID:          "check_whitespace",
			RuleDescription: "checks for trailing whitespace, incorrect line endings and tabs",
			RuleErrorMsg:    "trailing whitespace or incorrect line ending detected",
		},
	}
}

// BindFlags registers --wsc-tab-spacing.
func (r *WhitespaceRule) BindFlags(fs *pflag.FlagSet) {
	fs.IntVar(&r.tabSpacing, "wsc-tab-spacing", 0,
		"check_whitespace: number of spaces a tab is replaced with when --apply-fix is set (default 2)")
}

// AppliesTo accepts files only.
func (r *WhitespaceRule) AppliesTo(t *target.Target) bool {
	return t.IsFile()
}

// TabSpacing resolves the tab width: the flag wins over the tab_spacing
// setting, which wins over the default.
func (r *WhitespaceRule) TabSpacing(settings rule.Settings) int {
	if r.tabSpacing > 0 {
		return r.tabSpacing
	}
	if n := settings.Int("tab_spacing", defaultTabSpacing); n > 0 {
		return n
	}
	return defaultTabSpacing
}

func (r *WhitespaceRule) Run(ctx *rule.Context, t *target.Target) (bool, error) {
	tab := strings.Repeat(" ", r.TabSpacing(ctx.Settings))
	var trailing, tabs []int

	_, err := t.Iterate(r.ID(), func(c *target.Cursor) error {
		line := c.Line()
		if hasTrailingWhitespace(line) {
			if ctx.ApplyFix {
				ctx.Debugf("%s:%d - stripping trailing whitespace", t.Path, c.LineNumber())
				line = stripTrailingWhitespace(line)
				c.SetLine(line)
			} else {
				trailing = append(trailing, c.LineNumber())
			}
		}
		if strings.Contains(line, "\t") {
			if ctx.ApplyFix {
				ctx.Warnf("%s:%d - replacing tabs", t.Path, c.LineNumber())
				c.SetLine(strings.ReplaceAll(line, "\t", tab))
			} else {
				tabs = append(tabs, c.LineNumber())
			}
		}
		return nil
	})
	if err != nil {
		return false, err
	}

	if len(trailing) > 0 {
		ctx.Errorf("%s", rule.FormatViolation(t.Path, trailing, r.ErrorMessage()))
	}
	if len(tabs) > 0 {
		ctx.Errorf("%s", rule.FormatViolation(t.Path, tabs, tabsDetectedMsg))
	}
	return len(trailing) == 0 && len(tabs) == 0, nil
}

// hasTrailingWhitespace reports whether the line body before its "\n"
// ends in whitespace, which includes a CR line ending.
func hasTrailingWhitespace(line string) bool {
	body := strings.TrimSuffix(line, "\n")
	return body != "" && strings.ContainsRune(trailingChars, rune(body[len(body)-1]))
}

func stripTrailingWhitespace(line string) string {
	body, hadNewline := strings.CutSuffix(line, "\n")
	body = strings.TrimRight(body, trailingChars)
	if hadNewline {
		body += "\n"
	}
	return body
}
