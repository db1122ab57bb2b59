package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/harrison/fuzz/internal/config"
	"github.com/spf13/pflag"
)

// configFlags are the command line flags that map onto config keys.
type configFlags struct {
	filetypes  []string
	filenames  []string
	addFiles   bool
	noSymlinks bool
	rulePaths  []string
	disabled   []string
	excludes   []string
}

func (f *configFlags) bind(fs *pflag.FlagSet) {
	fs.StringArrayVarP(&f.filetypes, "filetype", "t", nil, "Check files with extension EXT (repeatable)")
	fs.StringArrayVarP(&f.filenames, "file", "f", nil, "Check files named NAME (repeatable)")
	fs.BoolVarP(&f.addFiles, "add-files", "a", false, "Add --filetype and --file values to the defaults instead of replacing them")
	fs.BoolVarP(&f.noSymlinks, "no-symlinks", "S", false, "Do not follow symlinks")
	fs.StringArrayVarP(&f.rulePaths, "rule-path", "P", nil, "Search PATH for <rule-id>.excludes files (repeatable)")
	fs.StringArrayVarP(&f.disabled, "disable", "B", nil, "Disable rule RULEID (repeatable)")
	fs.StringArrayVarP(&f.excludes, "exclude", "X", nil, "Exclude paths matching REGEX from all rules (repeatable)")
}

// overrides converts the flags into the topmost config layer.
func (f *configFlags) overrides() (*config.Config, error) {
	cfg := &config.Config{
		Extensions:    f.filetypes,
		Filenames:     f.filenames,
		AddFiles:      f.addFiles,
		DisabledRules: f.disabled,
		Excludes:      f.excludes,
	}
	if f.noSymlinks {
		follow := false
		cfg.FollowSymlinks = &follow
	}
	for _, p := range f.rulePaths {
		abs, err := filepath.Abs(p)
		if err != nil {
			return nil, fmt.Errorf("resolve rule path %s: %w", p, err)
		}
		cfg.RulePaths = append(cfg.RulePaths, abs)
	}
	return cfg, nil
}

// loadConfig merges every config layer with the flag overrides on top.
func loadConfig(files []string, flags *configFlags, log config.Tracer) (*config.Config, error) {
	overrides, err := flags.overrides()
	if err != nil {
		return nil, err
	}
	loader, err := config.NewLoader()
	if err != nil {
		return nil, err
	}
	loader.Log = log
	cfg, err := loader.Load(files, overrides)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return cfg, nil
}
