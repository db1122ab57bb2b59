package rule

import (
	"bufio"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/harrison/fuzz/internal/target"
)

// ExcludesFileSuffix names the per-rule exclude file: "<rule-id>.excludes".
const ExcludesFileSuffix = ".excludes"

// PathFilter decides, per rule, which targets are out of scope.
// Patterns are regular expressions matched against the target's full path.
type PathFilter struct {
	includes []*regexp.Regexp
	excludes []*regexp.Regexp
}

// NewPathFilter compiles include and exclude patterns.
func NewPathFilter(includes, excludes []string) (*PathFilter, error) {
	inc, err := compileAll(includes)
	if err != nil {
		return nil, fmt.Errorf("invalid include pattern: %w", err)
	}
	exc, err := compileAll(excludes)
	if err != nil {
		return nil, fmt.Errorf("invalid exclude pattern: %w", err)
	}
	return &PathFilter{includes: inc, excludes: exc}, nil
}

// Excludes reports whether t is out of scope: a file matching no include
// pattern, or any target matching an exclude pattern. Directories are
// always included. A nil filter excludes nothing.
func (f *PathFilter) Excludes(t *target.Target) bool {
	if f == nil {
		return false
	}
	path := filepath.ToSlash(t.FullPath)
	if !f.included(t, path) {
		return true
	}
	return matchAny(f.excludes, path)
}

// Matches reports whether path matches one of the exclude patterns,
// ignoring the include set.
func (f *PathFilter) Matches(path string) bool {
	if f == nil {
		return false
	}
	return matchAny(f.excludes, filepath.ToSlash(path))
}

func (f *PathFilter) included(t *target.Target, path string) bool {
	if t.IsDir() || len(f.includes) == 0 {
		return true
	}
	return matchAny(f.includes, path)
}

// IncludePatterns builds the include regexes for the configured file
// extensions and bare file names.
func IncludePatterns(extensions, filenames []string) []string {
	var patterns []string
	if len(extensions) > 0 {
		patterns = append(patterns, `\.(`+quoteJoin(extensions)+`)$`)
	}
	if len(filenames) > 0 {
		patterns = append(patterns, `(^|/)(`+quoteJoin(filenames)+`)$`)
	}
	return patterns
}

// ParseExcludes reads an excludes file body. Each non-blank line is an
// exclude pattern; lines starting with "!" are include patterns.
func ParseExcludes(content string) (excludes, includes []string) {
	scanner := bufio.NewScanner(strings.NewReader(content))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		switch {
		case line == "":
		case strings.HasPrefix(line, "!"):
			if incl := strings.TrimSpace(line[1:]); incl != "" {
				includes = append(includes, incl)
			}
		default:
			excludes = append(excludes, line)
		}
	}
	return excludes, includes
}

// LoadExcludes collects the patterns of every readable
// "<ruleID>.excludes" file found in dirs. Missing files are skipped.
func LoadExcludes(ruleID string, dirs []string) (excludes, includes []string, err error) {
	for _, dir := range dirs {
		path := filepath.Join(dir, ruleID+ExcludesFileSuffix)
		data, readErr := os.ReadFile(path)
		if readErr != nil {
			if errors.Is(readErr, fs.ErrNotExist) {
				continue
			}
			return nil, nil, fmt.Errorf("failed to read %s: %w", path, readErr)
		}
		exc, inc := ParseExcludes(string(data))
		excludes = append(excludes, exc...)
		includes = append(includes, inc...)
	}
	return excludes, includes, nil
}

// BuildFilter assembles the filter for one rule from the global include and
// exclude patterns plus the rule's excludes files in searchDirs.
func BuildFilter(ruleID string, searchDirs, includes, excludes []string) (*PathFilter, error) {
	exc, inc, err := LoadExcludes(ruleID, searchDirs)
	if err != nil {
		return nil, err
	}
	allInc := append(append([]string{}, includes...), inc...)
	allExc := append(append([]string{}, excludes...), exc...)
	f, err := NewPathFilter(allInc, allExc)
	if err != nil {
		return nil, fmt.Errorf("rule %s: %w", ruleID, err)
	}
	return f, nil
}

func compileAll(patterns []string) ([]*regexp.Regexp, error) {
	out := make([]*regexp.Regexp, 0, len(patterns))
	for _, p := range patterns {
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, err
		}
		out = append(out, re)
	}
	return out, nil
}

func matchAny(res []*regexp.Regexp, s string) bool {
	for _, re := range res {
		if re.MatchString(s) {
			return true
		}
	}
	return false
}

func quoteJoin(items []string) string {
	quoted := make([]string, len(items))
	for i, item := range items {
		quoted[i] = regexp.QuoteMeta(item)
	}
	return strings.Join(quoted, "|")
}
