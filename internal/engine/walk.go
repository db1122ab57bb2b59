package engine

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/harrison/fuzz/internal/target"
)

// Walk visits every path depth-first and reports whether all of them, and
// everything beneath them, passed. A path that cannot be read or is a
// symlink that may not be followed is logged, counted as failed and
// skipped; the walk always continues with the next sibling.
func (e *Engine) Walk(paths []string) bool {
	ok := true
	for _, path := range paths {
		if !e.visit(path) {
			ok = false
		}
	}
	return ok
}

func (e *Engine) visit(path string) bool {
	info, err := os.Lstat(path)
	if err != nil {
		return e.unreadable(path)
	}
	if info.Mode()&os.ModeSymlink != 0 {
		if !e.opts.FollowSymlinks {
			e.log.LogWarn("cannot follow symlink " + path)
			e.stats.Failed++
			return false
		}
		if info, err = os.Stat(path); err != nil {
			return e.unreadable(path)
		}
	}
	if !readable(path) {
		return e.unreadable(path)
	}

	switch {
	case info.IsDir():
		return e.visitDir(path)
	case info.Mode().IsRegular():
		t, err := target.NewFile(path)
		if err != nil {
			return e.unreadable(path)
		}
		return e.Handle(t) == Passed
	default:
		// devices, sockets and pipes are not checked
		return true
	}
}

func (e *Engine) visitDir(path string) bool {
	t, err := target.NewDirectory(path)
	if err != nil {
		return e.unreadable(path)
	}
	ok := e.Handle(t) == Passed

	if !e.opts.Recurse || e.excludes.Matches(t.FullPath) {
		return ok
	}

	e.log.LogDebug("Iterating " + path)
	children, err := e.listChildren(path)
	if err != nil {
		e.log.LogWarn("cannot read " + path)
		if ok {
			// the directory was counted already if its rules failed it
			e.stats.Failed++
		}
		return false
	}
	if !e.Walk(children) {
		ok = false
	}
	return ok
}

func (e *Engine) unreadable(path string) bool {
	e.log.LogWarn("cannot read " + path)
	e.stats.Failed++
	return false
}

// listChildren returns the sorted, non-hidden entries of dir, the same set
// a shell "*" glob expands to.
func (e *Engine) listChildren(dir string) ([]string, error) {
	entries, err := e.readDir(dir)
	if err != nil {
		return nil, err
	}
	children := make([]string, 0, len(entries))
	for _, entry := range entries {
		if strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		children = append(children, filepath.Join(dir, entry.Name()))
	}
	return children, nil
}

// readable reports whether path can be opened for reading.
func readable(path string) bool {
	f, err := os.Open(path)
	if err != nil {
		return false
	}
	f.Close()
	return true
}
