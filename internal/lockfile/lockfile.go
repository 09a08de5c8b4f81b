// Package lockfile provides best-effort advisory locks for task document
// rewrites.
//
// A lock is a sidecar file next to the data it guards, held via flock on
// unix and LockFileEx on windows. Acquisition is non-blocking with a short
// poll loop; ErrLockBusy after the timeout means another process is mid-write.
// Callers treat the lock as advice: on platforms without lock support the
// acquire succeeds trivially and the rewrite proceeds unlocked.
package lockfile

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// ErrLockBusy is returned when the lock is held by another process.
var ErrLockBusy = errors.New("lock held by another process")

// pollInterval is how often Acquire retries a busy lock.
const pollInterval = 50 * time.Millisecond

// Lock is a held advisory lock. Release it when the guarded write completes.
type Lock struct {
	file *os.File
	path string
}

// Acquire takes an exclusive advisory lock on path, creating the file if
// needed. It retries every pollInterval until timeout expires, then returns
// ErrLockBusy. A zero timeout tries exactly once.
func Acquire(path string, timeout time.Duration) (*Lock, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return nil, fmt.Errorf("create lock dir: %w", err)
	}

	// #nosec G304 - path is derived from the project layout, not user input
	f, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open lock file: %w", err)
	}

	if err := flockExclusive(f); err == nil {
		return &Lock{file: f, path: path}, nil
	} else if !errors.Is(err, ErrLockBusy) {
		_ = f.Close()
		return nil, fmt.Errorf("acquire lock: %w", err)
	}

	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		time.Sleep(pollInterval)

		if err := flockExclusive(f); err == nil {
			return &Lock{file: f, path: path}, nil
		} else if !errors.Is(err, ErrLockBusy) {
			_ = f.Close()
			return nil, fmt.Errorf("acquire lock: %w", err)
		}
	}

	_ = f.Close()
	return nil, fmt.Errorf("lock timeout (%v) on %s: %w", timeout, path, ErrLockBusy)
}

// Release drops the lock and closes the underlying file.
// Safe to call multiple times and on a nil receiver.
func (l *Lock) Release() {
	if l == nil || l.file == nil {
		return
	}
	_ = flockUnlock(l.file)
	_ = l.file.Close()
	l.file = nil
}

// Path returns the lock file path, for diagnostics.
func (l *Lock) Path() string {
	if l == nil {
		return ""
	}
	return l.path
}
