// Package lock serializes writers of a catalog database across processes.
//
// SQLite handles concurrent readers itself. Imports and deletes take this
// lock as well so two modulemd processes never interleave batch writes.
package lock

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"golang.org/x/sys/unix"
)

// ErrLocked matches a HeldError with errors.Is.
var ErrLocked = errors.New("catalog is locked")

// HeldError reports a catalog that another process is writing.
type HeldError struct {
	Catalog string
	// PID of the holder, 0 when the lock file could not be read.
	PID int
}

func (e *HeldError) Error() string {
	if e.PID > 0 {
		return fmt.Sprintf("catalog %s is being written by pid %d", e.Catalog, e.PID)
	}
	return fmt.Sprintf("catalog %s is being written by another process", e.Catalog)
}

func (e *HeldError) Is(target error) bool { return target == ErrLocked }

// Lock is an exclusive writer lock on one catalog.
type Lock struct {
	catalog string
	path    string
	file    *os.File
}

// New returns the lock for the catalog database at path. The lock file
// sits next to it with a .lock suffix.
func New(catalog string) *Lock {
	return &Lock{catalog: catalog, path: catalog + ".lock"}
}

// Path returns the lock file path.
func (l *Lock) Path() string { return l.path }

// Acquire takes the lock without blocking. A busy lock returns a
// *HeldError.
func (l *Lock) Acquire() error {
	// The catalog directory may not exist before the first import
	if err := os.MkdirAll(filepath.Dir(l.path), 0755); err != nil {
		return fmt.Errorf("create catalog directory: %w", err)
	}

	f, err := os.OpenFile(l.path, os.O_CREATE|os.O_RDWR, 0644)
	if err != nil {
		return fmt.Errorf("open catalog lock: %w", err)
	}

	if err := unix.Flock(int(f.Fd()), unix.LOCK_EX|unix.LOCK_NB); err != nil {
		f.Close()
		l.file = nil
		if errors.Is(err, unix.EWOULDBLOCK) {
			return &HeldError{Catalog: l.catalog, PID: holder(l.path)}
		}
		return fmt.Errorf("lock catalog %s: %w", l.catalog, err)
	}

	// Record the holder so a blocked writer can name it
	f.Truncate(0)
	f.Seek(0, 0)
	fmt.Fprintf(f, "%d\n", os.Getpid())

	l.file = f
	return nil
}

// Release drops the lock and removes the lock file. Releasing a lock that
// is not held is a no-op.
func (l *Lock) Release() error {
	if l.file == nil {
		return nil
	}
	defer func() { l.file = nil }()

	if err := unix.Flock(int(l.file.Fd()), unix.LOCK_UN); err != nil {
		l.file.Close()
		return fmt.Errorf("unlock catalog %s: %w", l.catalog, err)
	}

	// Close and remove the lock file
	l.file.Close()
	os.Remove(l.path)
	return nil
}

// WithLock runs fn while holding the writer lock of catalog.
func WithLock(catalog string, fn func() error) error {
	lock := New(catalog)
	if err := lock.Acquire(); err != nil {
		return err
	}
	defer lock.Release()

	return fn()
}

// holder reads the pid recorded in a lock file.
func holder(path string) int {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0
	}
	pid, err := strconv.Atoi(string(bytes.TrimSpace(data)))
	if err != nil {
		return 0
	}
	return pid
}
