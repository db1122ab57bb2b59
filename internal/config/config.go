// Package config loads, merges and saves .fuzzrc YAML configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"slices"

	"github.com/harrison/fuzz/internal/filelock"
	"github.com/harrison/fuzz/internal/rule"
	"gopkg.in/yaml.v3"
)

// FileName is the name of fuzz configuration files.
const FileName = ".fuzzrc"

// DefaultExtensions are the file extensions checked when none are configured.
var DefaultExtensions = []string{
	"h", "hxx", "hpp", "c", "cc", "cxx", "cpp", "H", "C", "inl", "asm",
	"rb", "erb", "pl", "pm", "py",
	"idl", "pidl",
	"mwc", "mpc", "mpb", "mpt", "mpd",
	"cdp", "xml", "conf", "html",
	"asc", "adoc",
}

// DefaultFilenames are the bare file names checked when none are configured.
var DefaultFilenames = []string{"ChangeLog", "README"}

// Config represents fuzz configuration options
type Config struct {
	// FollowSymlinks visits symlinked paths; nil means not set in this layer
	FollowSymlinks *bool `yaml:"follow_symlinks,omitempty"`

	// Extensions restricts checked files to these extensions (no leading dot)
	Extensions []string `yaml:"extensions,omitempty"`

	// Filenames adds bare file names to check
	Filenames []string `yaml:"filenames,omitempty"`

	// Excludes are regexes on the full path excluded from every rule
	Excludes []string `yaml:"excludes,omitempty"`

	// AddFiles adds Extensions and Filenames to the defaults instead of replacing them
	AddFiles bool `yaml:"add_files,omitempty"`

	// RulePaths are searched for "<rule-id>.excludes" files
	RulePaths []string `yaml:"rule_paths,omitempty"`

	// RuleOptions holds per-rule settings keyed by rule id
	RuleOptions map[string]map[string]any `yaml:"rule_options,omitempty"`

	// DisabledRules lists rule ids that never run
	DisabledRules []string `yaml:"disabled_rules,omitempty"`
}

// DefaultConfig returns a Config with sensible default values
func DefaultConfig() *Config {
	follow := true
	return &Config{
		FollowSymlinks: &follow,
		RuleOptions:    map[string]map[string]any{},
	}
}

// Parse decodes a YAML config document.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return &cfg, nil
}

// Merge folds from into c. Lists append without duplicates, rule options
// merge key by key and scalars override only when from sets them.
func (c *Config) Merge(from *Config) {
	if from == nil {
		return
	}
	if from.FollowSymlinks != nil {
		follow := *from.FollowSymlinks
		c.FollowSymlinks = &follow
	}
	if from.AddFiles {
		c.AddFiles = true
	}
	c.Extensions = appendUnique(c.Extensions, from.Extensions...)
	c.Filenames = appendUnique(c.Filenames, from.Filenames...)
	c.Excludes = appendUnique(c.Excludes, from.Excludes...)
	c.RulePaths = appendUnique(c.RulePaths, from.RulePaths...)
	c.DisabledRules = appendUnique(c.DisabledRules, from.DisabledRules...)

	for id, opts := range from.RuleOptions {
		if c.RuleOptions == nil {
			c.RuleOptions = map[string]map[string]any{}
		}
		dst, ok := c.RuleOptions[id]
		if !ok || dst == nil {
			dst = make(map[string]any, len(opts))
			c.RuleOptions[id] = dst
		}
		for k, v := range opts {
			dst[k] = v
		}
	}
}

// Follows reports the effective symlink policy.
func (c *Config) Follows() bool {
	return c.FollowSymlinks == nil || *c.FollowSymlinks
}

// FileTypes returns the effective extensions and file names. Configured
// values replace the defaults unless AddFiles is set.
func (c *Config) FileTypes() (extensions, filenames []string) {
	extensions = slices.Clone(c.Extensions)
	if len(extensions) == 0 || c.AddFiles {
		extensions = appendUnique(extensions, DefaultExtensions...)
	}
	filenames = slices.Clone(c.Filenames)
	if len(filenames) == 0 || c.AddFiles {
		filenames = appendUnique(filenames, DefaultFilenames...)
	}
	return extensions, filenames
}

// Includes returns the include regexes for the effective file types.
func (c *Config) Includes() []string {
	return rule.IncludePatterns(c.FileTypes())
}

// RuleSettings converts RuleOptions into per-rule settings.
func (c *Config) RuleSettings() map[string]rule.Settings {
	settings := make(map[string]rule.Settings, len(c.RuleOptions))
	for id, opts := range c.RuleOptions {
		settings[id] = rule.Settings(opts)
	}
	return settings
}

// Marshal renders c as YAML.
func (c *Config) Marshal() ([]byte, error) {
	data, err := yaml.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal config: %w", err)
	}
	return data, nil
}

// Save writes c to path atomically.
func (c *Config) Save(path string) error {
	data, err := c.Marshal()
	if err != nil {
		return err
	}
	if err := filelock.AtomicWrite(path, data, 0644); err != nil {
		return fmt.Errorf("failed to save config %s: %w", path, err)
	}
	return nil
}

var envRefRE = regexp.MustCompile(`\$([^\s/]+)`)

// resolveRulePaths expands $VAR references in the rule paths read from the
// file at rcPath. A path naming an existing directory relative to workDir
// is kept there; otherwise it is taken relative to the file's directory.
func resolveRulePaths(paths []string, rcPath, workDir string, getenv func(string) string) []string {
	resolved := make([]string, 0, len(paths))
	for _, p := range paths {
		p = envRefRE.ReplaceAllStringFunc(p, func(ref string) string {
			return getenv(ref[1:])
		})
		candidate := p
		if !filepath.IsAbs(candidate) {
			candidate = filepath.Join(workDir, p)
		}
		if info, err := os.Stat(candidate); err == nil && info.IsDir() {
			resolved = append(resolved, filepath.Clean(candidate))
			continue
		}
		if filepath.IsAbs(p) {
			resolved = append(resolved, filepath.Clean(p))
			continue
		}
		resolved = append(resolved, filepath.Join(filepath.Dir(rcPath), p))
	}
	return resolved
}

func appendUnique(dst []string, items ...string) []string {
	for _, item := range items {
		if !slices.Contains(dst, item) {
			dst = append(dst, item)
		}
	}
	return dst
}
