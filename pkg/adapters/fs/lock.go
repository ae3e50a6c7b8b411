package fs

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"

	"github.com/aretw0/flow/pkg/core"
)

const lockRetryDelay = 50 * time.Millisecond

// Lock takes the advisory single-writer lock of the graph, retrying until ctx
// ends. It returns core.ErrLocked if another process keeps holding it.
// Sessions that never call Lock are not coordinated with other processes.
func (s *Session) Lock(ctx context.Context) error {
	path := filepath.Join(s.root, SystemDir, LockFile)

	s.mu.Lock()
	if s.lock == nil {
		s.lock = flock.New(path)
	}
	fl := s.lock
	s.mu.Unlock()

	if fl.Locked() {
		return nil
	}

	ok, err := fl.TryLockContext(ctx, lockRetryDelay)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return fmt.Errorf("%w: %s", core.ErrLocked, s.root)
		}
		return core.NewIOError("lock", path, err)
	}
	if !ok {
		return fmt.Errorf("%w: %s", core.ErrLocked, s.root)
	}

	s.logger().Debug("graph locked", "path", path)
	return nil
}

// Unlock releases the lock taken by Lock. It is a no-op when the lock is not held.
func (s *Session) Unlock() error {
	s.mu.Lock()
	fl := s.lock
	s.mu.Unlock()

	if fl == nil || !fl.Locked() {
		return nil
	}
	if err := fl.Unlock(); err != nil {
		return core.NewIOError("unlock", fl.Path(), err)
	}
	s.logger().Debug("graph unlocked", "path", fl.Path())
	return nil
}

// Locked reports whether this session holds the graph lock.
func (s *Session) Locked() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lock != nil && s.lock.Locked()
}
