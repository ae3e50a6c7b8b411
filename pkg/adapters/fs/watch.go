package fs

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/aretw0/flow/pkg/core"
)

// WatchOptions configures Watch.
type WatchOptions struct {
	// Pattern selects the document ids to reconcile. Defaults to JournalPattern.
	Pattern string
	// Debounce is how long a file must stay quiet before it is reconciled.
	Debounce time.Duration
	// Reindex folds every journal file once when the watcher starts.
	Reindex bool
	// Lock takes the graph lock around each reconciliation, for watchers
	// running next to other flow processes.
	Lock bool
	// LockTimeout bounds the wait for the graph lock. Defaults to 5s.
	LockTimeout time.Duration
}

// Watch reconciles journal files edited by other programs until ctx ends.
// Every reconciled document is saved immediately and reported on the returned
// channel, which is closed when the watcher stops. Writes made by the session
// itself are recognised by their content and not reported.
func (s *Session) Watch(ctx context.Context, opts WatchOptions) (<-chan core.Event, error) {
	if opts.Pattern == "" {
		opts.Pattern = s.JournalPattern()
	}
	if opts.Debounce <= 0 {
		opts.Debounce = debounceDelay
	}
	if opts.LockTimeout <= 0 {
		opts.LockTimeout = 5 * time.Second
	}

	events := make(chan core.Event, 16)
	w := newWatchWorker(s, opts, events)
	if err := w.Start(ctx); err != nil {
		return nil, err
	}
	return events, nil
}

// reconcile folds the file backing id into the store and saves when it
// changed. It reports whether the file carried changes.
func (s *Session) reconcile(ctx context.Context, opts WatchOptions, id string) (changed bool, err error) {
	err = s.withWatchLock(ctx, opts, func() error {
		s.mu.Lock()
		defer s.mu.Unlock()

		if err := s.refreshLocked(); err != nil {
			return err
		}
		ok, err := s.foldFile(id)
		if err != nil || !ok {
			return err
		}
		s.markDirty(id)
		if err := s.saveLocked(); err != nil {
			return err
		}
		s.recordReconcile()
		changed = true
		return nil
	})
	return changed, err
}

// reconcileAll is Reindex followed by a save when anything changed.
func (s *Session) reconcileAll(ctx context.Context, opts WatchOptions) (changed []string, err error) {
	err = s.withWatchLock(ctx, opts, func() error {
		s.mu.Lock()
		defer s.mu.Unlock()

		if err := s.refreshLocked(); err != nil {
			return err
		}
		ids, err := s.reindexLocked()
		if err != nil || len(ids) == 0 {
			return err
		}
		if err := s.saveLocked(); err != nil {
			return err
		}
		s.recordReconcile()
		changed = ids
		return nil
	})
	return changed, err
}

func (s *Session) withWatchLock(ctx context.Context, opts WatchOptions, fn func() error) error {
	if !opts.Lock || s.Locked() {
		return fn()
	}

	lockCtx, cancel := context.WithTimeout(ctx, opts.LockTimeout)
	defer cancel()
	if err := s.Lock(lockCtx); err != nil {
		return err
	}
	defer s.Unlock()
	return fn()
}

// refreshLocked merges the snapshot on disk into the store, picking up saves
// made by other processes since the session was loaded.
func (s *Session) refreshLocked() error {
	snapPath := filepath.Join(s.root, SystemDir, SnapshotFile)
	data, err := os.ReadFile(snapPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return core.NewIOError("read", snapPath, err)
	}
	if err := s.store.Import(data); err != nil {
		return fmt.Errorf("failed to import %s: %w", snapPath, err)
	}
	return nil
}

func (s *Session) setWatcherActive(active bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.watcherActive = active
}

// recordReconcile must be called with s.mu held.
func (s *Session) recordReconcile() {
	now := time.Now()
	s.lastReconcile = &now
}
