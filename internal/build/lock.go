package build

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"

	serrors "github.com/Aman-CERP/sitesearch/internal/errors"
)

// LockFileName is created in the output directory while a build runs.
const LockFileName = ".sitesearch.lock"

// FileLock serializes builds of the same output directory across
// processes, so two builds never interleave writes of the client module.
type FileLock struct {
	path   string
	flock  *flock.Flock
	locked bool
}

// NewFileLock creates a lock for outDir. The directory must exist.
func NewFileLock(outDir string) *FileLock {
	path := filepath.Join(outDir, LockFileName)
	return &FileLock{
		path:  path,
		flock: flock.New(path),
	}
}

// Acquire takes the lock, retrying every retry until timeout elapses or
// ctx is done. A zero timeout tries once.
func (l *FileLock) Acquire(ctx context.Context, timeout, retry time.Duration) error {
	var (
		acquired bool
		err      error
	)
	if timeout <= 0 {
		acquired, err = l.flock.TryLock()
	} else {
		lockCtx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()
		acquired, err = l.flock.TryLockContext(lockCtx, retry)
		if errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil {
			err = nil
		}
	}
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return serrors.New(serrors.ErrCodeFilePermission, "failed to acquire build lock", err).
			WithDetail("path", l.path)
	}
	if !acquired {
		return serrors.New(serrors.ErrCodeLockHeld, "another build is running for this output directory", nil).
			WithDetail("path", l.path).
			WithSuggestion(fmt.Sprintf("Wait for the other build to finish, or remove %s if no build is running", l.path))
	}
	l.locked = true
	return nil
}

// Release unlocks. Safe to call multiple times or on an unlocked FileLock.
func (l *FileLock) Release() error {
	if !l.locked {
		return nil
	}
	l.locked = false
	if err := l.flock.Unlock(); err != nil {
		return fmt.Errorf("failed to release lock: %w", err)
	}
	return nil
}

// Path returns the path to the lock file.
func (l *FileLock) Path() string {
	return l.path
}

// IsLocked returns true if the lock is currently held.
func (l *FileLock) IsLocked() bool {
	return l.locked
}
