package storage

import (
	"context"
	"errors"
	"os"
	"time"

	"github.com/gofrs/flock"
)

// ErrLockTimeout indicates the lock could not be acquired in time.
var ErrLockTimeout = errors.New("storage: lock timeout")

const lockRetryDelay = 10 * time.Millisecond

// FileLock provides advisory file locking for cross-process synchronization.
// The lock is held on a sibling file so the guarded path itself can be
// replaced by rename while locked.
type FileLock struct {
	path string
	lock *flock.Flock
}

// NewFileLock creates a file lock. The lock is not acquired until Lock() is called.
// The lock file will be created at path + ".lock".
func NewFileLock(path string) *FileLock {
	lockPath := path + ".lock"
	return &FileLock{path: lockPath, lock: flock.New(lockPath)}
}

// Path returns the lock file path.
func (l *FileLock) Path() string { return l.path }

// Lock acquires an exclusive lock with the specified timeout.
// Returns ErrLockTimeout if the lock cannot be acquired within the timeout.
func (l *FileLock) Lock(ctx context.Context, timeout time.Duration) error {
	lockCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	locked, err := l.lock.TryLockContext(lockCtx, lockRetryDelay)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return ErrLockTimeout
		}
		return &StorageError{Op: "lock", Path: l.path, Err: err}
	}
	if !locked {
		return ErrLockTimeout
	}
	return nil
}

// Unlock releases the lock and removes the lock file.
func (l *FileLock) Unlock() error {
	if !l.lock.Locked() {
		return nil
	}
	if err := l.lock.Unlock(); err != nil {
		return &StorageError{Op: "unlock", Path: l.path, Err: err}
	}
	_ = os.Remove(l.path)
	return nil
}
