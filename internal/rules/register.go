package rules

import (
	"github.com/harrison/fuzz/internal/rule"
)

// Defaults returns the built-in rules in registration order.
func Defaults() []rule.Rule {
	return []rule.Rule{
		NewWhitespaceRule(),
		NewFilenameRule(),
		NewFileHeaderRule(),
		NewIDTagRule(),
		NewAceErrorRule(),
		NewExitKeywordRule(),
		NewNamespaceRule(),
		NewExecutableBitRule(),
	}
}

// RegisterDefaults registers all built-in rules with reg.
func RegisterDefaults(reg *rule.Registry) error {
	for _, r := range Defaults() {
		if err := reg.Register(r); err != nil {
			return err
		}
	}
	return nil
}
