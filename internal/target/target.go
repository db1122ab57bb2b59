// Package target models the files and directories a fuzz run inspects.
//
// A Target is created per walker visit and discarded once the engine has
// finished with it. File targets load their content lazily, keep a snapshot
// of what was read from disk and expose a line Cursor to rules through
// Iterate. Directory targets carry identity only.
package target

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
)

// Kind distinguishes file targets from directory targets.
type Kind int

const (
	// KindFile is a regular file with line content.
	KindFile Kind = iota
	// KindDirectory is a directory node; it never holds lines.
	KindDirectory
)

// String returns the short label used in log messages.
func (k Kind) String() string {
	if k == KindDirectory {
		return "Dir"
	}
	return "File"
}

// Target is a file or directory node being checked.
type Target struct {
	// Path is the path as given by the walker (possibly relative)
	Path string
	// FullPath is the absolute, cleaned path
	FullPath string
	// Name is the base name
	Name string
	// Ext is the extension without the leading dot
	Ext string
	// Kind is file or directory
	Kind Kind

	lines    []string
	original []string
	loaded   bool
}

// New creates a target of the given kind for path.
func New(path string, kind Kind) (*Target, error) {
	full, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve path %s: %w", path, err)
	}
	return &Target{
		Path:     path,
		FullPath: full,
		Name:     filepath.Base(path),
		Ext:      strings.TrimPrefix(filepath.Ext(path), "."),
		Kind:     kind,
	}, nil
}

// NewFile is shorthand for New(path, KindFile).
func NewFile(path string) (*Target, error) {
	return New(path, KindFile)
}

// NewDirectory is shorthand for New(path, KindDirectory).
func NewDirectory(path string) (*Target, error) {
	return New(path, KindDirectory)
}

// IsFile reports whether the target is a regular file.
func (t *Target) IsFile() bool {
	return t.Kind == KindFile
}

// IsDir reports whether the target is a directory.
func (t *Target) IsDir() bool {
	return t.Kind == KindDirectory
}

// String returns "File:<fullpath>" or "Dir:<path>".
func (t *Target) String() string {
	if t.IsDir() {
		return "Dir:" + t.Path
	}
	return "File:" + t.FullPath
}

// Lines returns the file's lines, reading them on first use.
// Line terminators are preserved. Directories return nil.
func (t *Target) Lines() ([]string, error) {
	if t.IsDir() {
		return nil, nil
	}
	if !t.loaded {
		data, err := os.ReadFile(t.FullPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", t.Path, err)
		}
		t.lines = SplitLines(string(data))
		t.original = slices.Clone(t.lines)
		t.loaded = true
	}
	return t.lines, nil
}

// SetLines replaces the in-memory content. It is intended for tests and
// for targets built without a backing file.
func (t *Target) SetLines(lines []string) {
	if !t.loaded {
		t.original = slices.Clone(lines)
		t.loaded = true
	}
	t.lines = lines
}

// Changed reports whether the in-memory lines differ from what was loaded.
func (t *Target) Changed() bool {
	if !t.loaded || t.IsDir() {
		return false
	}
	return !slices.Equal(t.lines, t.original)
}

// Content joins the current lines into the bytes a fix write persists.
func (t *Target) Content() []byte {
	return []byte(strings.Join(t.lines, ""))
}

// Iterate drives fn over the file's lines for the rule identified by ruleID.
//
// fn is called once per line while the rule is not suppressed by an in-file
// directive, then the cursor advances one line, until end of file. fn may
// move the cursor itself. An error from fn or from directive scanning ends
// the pass and is returned together with the lines flagged so far.
// Iterating a directory is a no-op success.
func (t *Target) Iterate(ruleID string, fn func(c *Cursor) error) ([]int, error) {
	if t.IsDir() {
		return nil, nil
	}
	lines, err := t.Lines()
	if err != nil {
		return nil, err
	}
	c, err := NewCursor(lines, ruleID)
	if err != nil {
		return nil, err
	}
	for !c.EOF() {
		if !c.Suppressed() {
			if err := fn(c); err != nil {
				return c.Flagged(), err
			}
		}
		if _, err := c.Advance(1); err != nil {
			return c.Flagged(), err
		}
	}
	return c.Flagged(), nil
}

// SplitLines splits s after each "\n", keeping the terminators.
// A final line without a terminator is kept as is.
func SplitLines(s string) []string {
	if s == "" {
		return []string{}
	}
	lines := strings.SplitAfter(s, "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}
