package filelock

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// ErrNotWritable is returned when the file to replace cannot be opened for writing.
var ErrNotWritable = errors.New("file is not writable")

// Replacer persists fixed file content without ever leaving the original
// missing or half-written.
//
// A path that is a symlink is resolved first, so the file it points to is
// updated and the link itself is left in place.
//
// The sequence is:
//  1. check the destination is writable
//  2. write the new content to a temp file in the same directory
//  3. move the original aside to a backup in the same directory
//  4. move the temp file into place
//  5. restore the original permission bits
//  6. on failure in 3-5, move the backup back into place
//  7. on success, remove the backup
type Replacer struct {
	rename func(oldpath, newpath string) error
	chmod  func(name string, mode os.FileMode) error
	remove func(name string) error
}

// NewReplacer creates a Replacer backed by the os package.
func NewReplacer() *Replacer {
	return &Replacer{
		rename: os.Rename,
		chmod:  os.Chmod,
		remove: os.Remove,
	}
}

// Replace atomically replaces the content of the existing file at path.
func (r *Replacer) Replace(path string, data []byte) error {
	resolved, err := filepath.EvalSymlinks(path)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrNotWritable, path, err)
	}
	path = resolved

	if err := checkWritable(path); err != nil {
		return err
	}

	release, err := lockTransient(lockPath(path))
	if err != nil {
		return err
	}
	defer release()

	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("failed to stat %s: %w", path, err)
	}
	mode := info.Mode() & (os.ModePerm | os.ModeSetuid | os.ModeSetgid | os.ModeSticky)

	dir := filepath.Dir(path)
	name := filepath.Base(path)

	tempPath, err := writeTemp(dir, name, data)
	if err != nil {
		return err
	}

	backupPath := filepath.Join(dir, fmt.Sprintf(".%s.%s.fuzz-bak", name, uuid.NewString()))
	if err := r.rename(path, backupPath); err != nil {
		r.remove(tempPath)
		return fmt.Errorf("failed to back up %s: %w", path, err)
	}

	// from here on the original lives at backupPath
	restore := func(cause error) error {
		r.remove(tempPath)
		if rerr := r.rename(backupPath, path); rerr != nil {
			return fmt.Errorf("%w; restoring %s from backup %s also failed: %v", cause, path, backupPath, rerr)
		}
		return cause
	}

	if err := r.rename(tempPath, path); err != nil {
		return restore(fmt.Errorf("failed to move new content into %s: %w", path, err))
	}
	if err := r.chmod(path, mode); err != nil {
		return restore(fmt.Errorf("failed to restore permissions on %s: %w", path, err))
	}

	if err := r.remove(backupPath); err != nil {
		return fmt.Errorf("updated %s but failed to remove backup %s: %w", path, backupPath, err)
	}
	return nil
}

// checkWritable opens path for writing without truncating it.
func checkWritable(path string) error {
	f, err := os.OpenFile(path, os.O_WRONLY, 0)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrNotWritable, path, err)
	}
	return f.Close()
}

// lockPath returns the sibling lock file guarding replacements of path.
// The original cannot be locked itself: it is renamed away mid-sequence.
func lockPath(path string) string {
	return filepath.Join(filepath.Dir(path), "."+filepath.Base(path)+".fuzz-lock")
}

// lockTransient takes an exclusive lock on path and returns a release
// function that removes the lock file before unlocking it. A waiter that
// wakes up holding a lock file which was removed in the meantime retries
// on the current one.
func lockTransient(path string) (func(), error) {
	for {
		lock := NewFileLock(path)
		if err := lock.Lock(); err != nil {
			return nil, err
		}
		if lock.current() {
			return func() {
				os.Remove(path)
				lock.Unlock()
			}, nil
		}
		lock.Unlock()
	}
}
