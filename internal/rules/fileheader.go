package rules

import (
	"regexp"
	"strings"

	"github.com/harrison/fuzz/internal/rule"
	"github.com/harrison/fuzz/internal/target"
)

const minHeaderLines = 6

var headerOpenRE = regexp.MustCompile(`^(/\*|#)`)

// FileHeaderRule checks that a file starts with a comment header of at
// least six lines naming the file on its second line.
//
// The header opens on line 1 or 2 with "/*" or "#" (a "#!" line does not
// open it). A C header closes at the first "*/"; a script header closes at
// the first line without '#'.
type FileHeaderRule struct {
	rule.Base
}

func NewFileHeaderRule() *FileHeaderRule {
	return &FileHeaderRule{
		Base: rule.Base{
			RuleID:          "check_fileheader",
			RuleDescription: "checks whether a file contains a correct file header",
			RuleErrorMsg: "incorrect or no fileheader detected. Fileheaders should start on the first or second line, " +
				"should have a size of 6 lines and the file name should be on the second line of the header.",
		},
	}
}

func (r *FileHeaderRule) AppliesTo(t *target.Target) bool {
	return t.IsFile()
}

func (r *FileHeaderRule) Run(ctx *rule.Context, t *target.Target) (bool, error) {
	start := 0
	script := false

	return rule.Scan(ctx, r, t, func(c *target.Cursor) error {
		line := c.Line()
		n := c.LineNumber()

		switch {
		case n == 1:
			if headerOpenRE.MatchString(line) && !strings.HasPrefix(line, "#!") {
				start = 1
			}
			script = strings.HasPrefix(line, "#")

		case n == 2 && start == 0:
			if !headerOpenRE.MatchString(line) {
				c.MarkLine(1)
				c.SkipToEnd()
				return nil
			}
			start = 2
			script = script || strings.HasPrefix(line, "#")

		case n == 2:
			if strings.Contains(line, "*/") {
				c.MarkViolation()
			}
			if !strings.Contains(line, t.Name) {
				c.MarkViolation()
			}

		case n >= 3 && start > 0:
			// a header opened on line 2 names the file on line 3
			if n == 3 && start == 2 && !strings.Contains(line, t.Name) {
				c.MarkViolation()
			}
			closed := strings.Contains(line, "*/") || (script && !strings.Contains(line, "#"))
			if !closed {
				return nil
			}
			if 1+n-start < minHeaderLines {
				c.MarkViolation()
			}
			c.SkipToEnd()
		}
		return nil
	})
}
