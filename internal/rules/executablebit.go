package rules

import (
	"fmt"
	"os"

	"github.com/harrison/fuzz/internal/rule"
	"github.com/harrison/fuzz/internal/target"
)

// ExecutableBitRule requires scripts to carry an executable permission bit.
type ExecutableBitRule struct {
	rule.Base
	exts map[string]bool
}

func NewExecutableBitRule() *ExecutableBitRule {
	return &ExecutableBitRule{
		Base: rule.Base{
			RuleID:          "check_executablebit",
			RuleDescription: "checks for executable bit set",
		},
		exts: map[string]bool{"pl": true, "sh": true, "bat": true},
	}
}

func (r *ExecutableBitRule) AppliesTo(t *target.Target) bool {
	return t.IsFile() && r.exts[t.Ext]
}

func (r *ExecutableBitRule) Run(ctx *rule.Context, t *target.Target) (bool, error) {
	info, err := os.Stat(t.FullPath)
	if err != nil {
		return false, fmt.Errorf("failed to stat %s: %w", t.Path, err)
	}
	if info.Mode().Perm()&0111 == 0 {
		ctx.Errorf("%s - lacks executable bit", t.Path)
		return false, nil
	}
	return true, nil
}
