package rules

import (
	"regexp"

	"github.com/harrison/fuzz/internal/rule"
	"github.com/harrison/fuzz/internal/target"
)

var upperRE = regexp.MustCompile(`[A-Z]`)

// FilenameRule rejects file and directory names containing uppercase letters.
type FilenameRule struct {
	rule.Base
}

func NewFilenameRule() *FilenameRule {
	return &FilenameRule{
		Base: rule.Base{
			RuleID:          "check_filename",
			RuleDescription: "checks against the use of uppercase in file/directory names",
		},
	}
}

func (r *FilenameRule) Run(ctx *rule.Context, t *target.Target) (bool, error) {
	if upperRE.MatchString(t.Name) {
		ctx.Errorf("name for %s contains uppercase", t.Path)
		return false, nil
	}
	return true, nil
}
