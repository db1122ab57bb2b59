package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/harrison/fuzz/internal/engine"
	"github.com/harrison/fuzz/internal/filelock"
	"github.com/harrison/fuzz/internal/logger"
	"github.com/harrison/fuzz/internal/rule"
	"github.com/spf13/cobra"
)

// ErrCheckFailed is returned when at least one target did not pass.
// The violations have already been reported, so main exits without
// printing it.
var ErrCheckFailed = errors.New("check failed")

type checkOptions struct {
	config    configFlags
	files     []string
	output    string
	applyFix  bool
	noRecurse bool
	verbose   int
}

// NewCheckCommand creates the check command running the rules in reg
func NewCheckCommand(reg *rule.Registry) *cobra.Command {
	opts := &checkOptions{}

	cmd := &cobra.Command{
		Use:   "check [glob...]",
		Short: "Check files and directories against the registered rules",
		Long: `Check expands each argument as a glob pattern (** matches any number of
directories) and checks every matching file and directory, descending into
directories unless --no-recurse is given. Without arguments every
non-hidden entry of the working directory is checked.

Configuration is read from ~/.fuzzrc, the files in $FUZZRC, files given
with --config and every .fuzzrc from the filesystem root down to the
working directory. Command line flags are applied last.

Examples:
  fuzz check                          # check the working directory
  fuzz check 'src/**/*.cpp'           # check C++ sources below src
  fuzz check -p src                   # fix what can be fixed
  fuzz check -B check_fileheader .    # skip one rule
  fuzz check -p --wsc-tab-spacing=4 . # expand tabs to four spaces`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(cmd, reg, opts, args)
		},
	}

	opts.config.bind(cmd.Flags())
	cmd.Flags().StringArrayVarP(&opts.files, "config", "c", nil, "Load configuration from FILE (repeatable)")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "Write the report to FILE instead of stdout")
	cmd.Flags().BoolVarP(&opts.applyFix, "apply-fix", "p", false, "Fix violations where the rule supports it")
	cmd.Flags().BoolVarP(&opts.noRecurse, "no-recurse", "n", false, "Do not descend into directories")
	cmd.Flags().CountVarP(&opts.verbose, "verbose", "v", "Increase verbosity (repeatable)")

	for _, r := range reg.Rules() {
		if fb, ok := r.(rule.FlagBinder); ok {
			fb.BindFlags(cmd.Flags())
		}
	}

	return cmd
}

func runCheck(cmd *cobra.Command, reg *rule.Registry, opts *checkOptions, args []string) error {
	var out io.Writer = cmd.OutOrStdout()
	if opts.output != "" {
		f, err := os.Create(opts.output)
		if err != nil {
			return fmt.Errorf("open output file: %w", err)
		}
		defer f.Close()
		out = f
	}
	log := logger.NewConsoleLogger(out, logger.VerbosityLevel(opts.verbose))

	cfg, err := loadConfig(opts.files, &opts.config, log)
	if err != nil {
		return err
	}

	paths, err := expandPaths(args)
	if err != nil {
		return err
	}

	eng, err := engine.New(reg, filelock.NewReplacer(), log, engine.Options{
		ApplyFix:       opts.applyFix,
		Recurse:        !opts.noRecurse,
		FollowSymlinks: cfg.Follows(),
		Includes:       cfg.Includes(),
		Excludes:       cfg.Excludes,
		RulePaths:      cfg.RulePaths,
		Disabled:       cfg.DisabledRules,
		Settings:       cfg.RuleSettings(),
	})
	if err != nil {
		return fmt.Errorf("failed to set up rules: %w", err)
	}

	start := time.Now()
	ok := eng.Walk(paths)
	stats := eng.Stats()
	log.LogSummary(logger.Summary{
		Targets:  stats.Targets,
		Failed:   stats.Failed,
		Aborted:  stats.Aborted,
		Fixed:    stats.Fixed,
		Duration: time.Since(start),
	})

	if !ok {
		return ErrCheckFailed
	}
	return nil
}

// expandPaths expands every argument as a doublestar glob, keeping the
// first occurrence of each path. An argument without matches is kept
// literally so the walk reports it. Hidden entries are only matched by
// patterns that name them explicitly. No arguments means "*".
func expandPaths(args []string) ([]string, error) {
	if len(args) == 0 {
		args = []string{"*"}
	}

	seen := make(map[string]bool)
	var paths []string
	add := func(p string) {
		if !seen[p] {
			seen[p] = true
			paths = append(paths, p)
		}
	}

	for _, arg := range args {
		matches, err := doublestar.FilepathGlob(arg)
		if err != nil {
			return nil, fmt.Errorf("invalid pattern %q: %w", arg, err)
		}
		if len(matches) == 0 {
			if !hasMeta(arg) {
				add(arg)
			}
			continue
		}
		for _, m := range matches {
			if hidden(m) && !hidden(arg) {
				continue
			}
			add(m)
		}
	}
	return paths, nil
}

func hasMeta(pattern string) bool {
	return strings.ContainsAny(pattern, `*?[{\`)
}

func hidden(path string) bool {
	base := filepath.Base(path)
	return strings.HasPrefix(base, ".") && base != "." && base != ".."
}
