// Package runlock enforces one render run per output directory. Two runs
// writing the same numbered output files would clobber each other, so a
// flock-backed lock file guards the directory for a run's lifetime.
package runlock

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
)

// ErrBusy marks an output directory already claimed by another run.
var ErrBusy = errors.New("output directory locked by another run")

// Lock guards one output directory.
type Lock struct {
	path string
	lock *flock.Flock
}

// Acquire claims the output directory, creating it if needed. The caller
// must Release when the run finishes.
func Acquire(outputDir string) (*Lock, error) {
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}
	path := filepath.Join(outputDir, ".megacut.lock")
	lock := flock.New(path)

	ok, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire run lock: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrBusy, outputDir)
	}
	return &Lock{path: path, lock: lock}, nil
}

// Path returns the lock file location.
func (l *Lock) Path() string {
	return l.path
}

// Release frees the lock. Safe to call on a nil lock.
func (l *Lock) Release() error {
	if l == nil || l.lock == nil {
		return nil
	}
	return l.lock.Unlock()
}
