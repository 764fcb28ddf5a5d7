// Package filelock guards an output directory against concurrent
// flattening runs and provides atomic file writes for converted output.
package filelock

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
)

// RunLock is an exclusive advisory lock taken for the duration of a
// flattening run so two processes cannot interleave writes into the same
// output directory.
type RunLock struct {
	flock *flock.Flock
	path  string
}

// LockPath derives the lock file location for an output directory: a
// sibling file named after the directory with a .lock suffix, so the
// lock never pollutes the flattened output itself.
func LockPath(outputDir string) string {
	return filepath.Clean(outputDir) + ".lock"
}

// Acquire takes the run lock for the given output directory without
// blocking. It returns an error when another run already holds the lock.
func Acquire(outputDir string) (*RunLock, error) {
	path := LockPath(outputDir)
	fl := flock.New(path)

	acquired, err := fl.TryLock()
	if err != nil {
		return nil, fmt.Errorf("failed to acquire run lock %s: %w", path, err)
	}
	if !acquired {
		return nil, fmt.Errorf("another run is already writing to %s (lock held: %s)", outputDir, path)
	}

	return &RunLock{flock: fl, path: path}, nil
}

// Release unlocks and removes the lock file. Removal failure is ignored;
// a stale lock file does not block future runs since flock state lives
// in the kernel, not the file contents.
func (l *RunLock) Release() error {
	if err := l.flock.Unlock(); err != nil {
		return fmt.Errorf("failed to release run lock %s: %w", l.path, err)
	}
	_ = os.Remove(l.path)
	return nil
}

// Path returns the lock file location.
func (l *RunLock) Path() string {
	return l.path
}

// AtomicWrite writes data to path via a temp file and rename, so a
// crashed run never leaves a half-written output file behind.
func AtomicWrite(path string, data []byte) error {
	dir := filepath.Dir(path)

	// Temp file in the target directory keeps the rename on one
	// filesystem, which is what makes it atomic.
	tmp, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmp.Name()

	defer func() {
		if tmp != nil {
			tmp.Close()
			os.Remove(tmpPath)
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	if err := os.Chmod(tmpPath, 0644); err != nil {
		return fmt.Errorf("failed to set permissions: %w", err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("failed to rename temp file to %s: %w", path, err)
	}

	// Rename succeeded; disarm the cleanup.
	tmp = nil

	return nil
}
