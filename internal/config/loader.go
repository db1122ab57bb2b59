package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"slices"
)

// ErrUnreadableConfig is returned when an explicitly requested config file
// cannot be read.
var ErrUnreadableConfig = errors.New("inaccessible config file")

var rcListSeparator = regexp.MustCompile(`[:;]`)

// Tracer receives config discovery details.
type Tracer interface {
	LogTrace(message string)
}

// Loader discovers and merges the layered .fuzzrc files.
//
// Layers are merged in this order, each over the previous one:
//  1. defaults, plus RuleDir as the first rule search directory
//  2. ~/.fuzzrc
//  3. the files listed in $FUZZRC (separated by ':' or ';')
//  4. explicitly requested files
//  5. every .fuzzrc from the filesystem root down to the working directory
//  6. the caller's overrides (command line flags)
//
// No file is loaded twice.
type Loader struct {
	// HomeDir holds the user's global .fuzzrc; empty skips it
	HomeDir string
	// WorkDir is where the upward .fuzzrc scan starts
	WorkDir string
	// Getenv looks up environment variables
	Getenv func(string) string
	// RuleDir is the standard rule search directory, searched before any
	// configured rule_paths; empty skips it
	RuleDir string
	// Log receives trace messages; may be nil
	Log Tracer

	loaded []string
}

// NewLoader creates a Loader for the process environment.
func NewLoader() (*Loader, error) {
	wd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("get working directory: %w", err)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		home = ""
	}
	return &Loader{HomeDir: home, WorkDir: wd, Getenv: os.Getenv, RuleDir: StandardRuleDir()}, nil
}

// StandardRuleDir returns the directory holding the user's standard
// <rule-id>.excludes files, $XDG_CONFIG_HOME/fuzz/rules on Linux.
// It returns "" when no config directory is known.
func StandardRuleDir() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "fuzz", "rules")
}

// Loaded returns the absolute paths of the files merged so far, in order.
func (l *Loader) Loaded() []string {
	return append([]string(nil), l.loaded...)
}

// Load builds the effective configuration from every layer.
// explicit files must be readable; any other missing file is skipped.
// Malformed YAML in any file is an error.
func (l *Loader) Load(explicit []string, overrides *Config) (*Config, error) {
	for _, path := range explicit {
		if _, err := os.Stat(path); err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrUnreadableConfig, path, err)
		}
	}

	cfg := DefaultConfig()
	if l.RuleDir != "" {
		cfg.RulePaths = append(cfg.RulePaths, l.RuleDir)
	}

	var candidates []string
	if l.HomeDir != "" {
		candidates = append(candidates, filepath.Join(l.HomeDir, FileName))
	}
	if l.Getenv != nil {
		for _, p := range rcListSeparator.Split(l.Getenv("FUZZRC"), -1) {
			if p != "" {
				candidates = append(candidates, p)
			}
		}
	}
	for _, path := range candidates {
		if err := l.merge(cfg, path, false); err != nil {
			return nil, err
		}
	}
	for _, path := range explicit {
		if err := l.merge(cfg, path, true); err != nil {
			return nil, err
		}
	}

	for _, path := range l.workDirFiles() {
		if err := l.merge(cfg, path, false); err != nil {
			return nil, err
		}
	}

	cfg.Merge(overrides)
	return cfg, nil
}

// LoadFile reads and parses the config file at path, resolving its rule paths.
func (l *Loader) LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	getenv := l.Getenv
	if getenv == nil {
		getenv = os.Getenv
	}
	cfg.RulePaths = resolveRulePaths(cfg.RulePaths, path, l.WorkDir, getenv)
	return cfg, nil
}

func (l *Loader) merge(cfg *Config, path string, required bool) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("failed to resolve config path %s: %w", path, err)
	}
	if slices.Contains(l.loaded, abs) {
		l.trace("Ignoring already loaded config " + abs)
		return nil
	}
	if _, err := os.Stat(abs); err != nil {
		if required {
			return fmt.Errorf("%w: %s: %v", ErrUnreadableConfig, path, err)
		}
		l.trace("Ignoring inaccessible config " + abs)
		return nil
	}

	l.trace("Loading config " + abs)
	fileCfg, err := l.LoadFile(abs)
	if err != nil {
		return err
	}
	cfg.Merge(fileCfg)
	l.loaded = append(l.loaded, abs)
	return nil
}

// workDirFiles returns the .fuzzrc files from the filesystem root down to
// the working directory, outermost first.
func (l *Loader) workDirFiles() []string {
	if l.WorkDir == "" {
		return nil
	}
	current, err := filepath.Abs(l.WorkDir)
	if err != nil {
		return nil
	}

	var found []string
	for {
		candidate := filepath.Join(current, FileName)
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			found = append(found, candidate)
		}
		parent := filepath.Dir(current)
		if parent == current {
			break
		}
		current = parent
	}

	slices.Reverse(found)
	return found
}

func (l *Loader) trace(msg string) {
	if l.Log != nil {
		l.Log.LogTrace(msg)
	}
}
