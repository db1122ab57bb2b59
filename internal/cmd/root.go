package cmd

import (
	"github.com/harrison/fuzz/internal/rule"
	"github.com/harrison/fuzz/internal/rules"
	"github.com/spf13/cobra"
)

// Version is injected at build time via -ldflags
var Version = "dev"

// NewRootCommand creates and returns the root cobra command for fuzz
func NewRootCommand() *cobra.Command {
	reg, regErr := defaultRegistry()

	cmd := &cobra.Command{
		Use:   "fuzz",
		Short: "Line-oriented source linter with pluggable rules",
		Long: `Fuzz walks files and directories and runs a set of checking rules
over every line, reporting violations as <path>:[<line>,...] <message>.

Rules can be switched off for a stretch of a file with in-file directives:

  // X11_FUZZ: disable check_whitespace
  ...
  // X11_FUZZ: enable check_whitespace

With --apply-fix, rules that support it repair what they find and changed
files are replaced atomically.`,
		Version: Version,
		// Silence usage on errors to avoid duplicate help text
		SilenceUsage: true,
		// main prints the error once
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return regErr
		},
	}

	// Add subcommands
	cmd.AddCommand(NewCheckCommand(reg))
	cmd.AddCommand(NewListCommand(reg))
	cmd.AddCommand(NewConfigCommand())

	return cmd
}

// defaultRegistry registers the built-in rules. A duplicate id is reported
// when any command runs.
func defaultRegistry() (*rule.Registry, error) {
	reg := rule.NewRegistry()
	if err := rules.RegisterDefaults(reg); err != nil {
		return reg, err
	}
	return reg, nil
}
