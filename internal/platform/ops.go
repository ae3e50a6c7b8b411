package platform

import (
	"context"
	"fmt"

	"github.com/aretw0/flow/pkg/adapters/fs"
)

// Init creates a new graph at path.
func Init(path string, opts ...Option) (*fs.Session, error) {
	o := buildOptions(opts)
	return fs.Init(o.config(path), o.name)
}

// Load opens the graph at path.
func Load(path string, opts ...Option) (*fs.Session, error) {
	o := buildOptions(opts)
	return fs.Load(o.config(path))
}

// Exists reports whether path holds a graph.
func Exists(path string) bool {
	return fs.Exists(path)
}

// AddToJournal appends content to today's journal of the graph at path and
// saves it, holding the graph lock for the whole load, add and save sequence.
func AddToJournal(ctx context.Context, path, content string, opts ...Option) (*fs.Session, error) {
	return withLockedSession(ctx, path, opts, func(s *fs.Session) error {
		return s.Add(content)
	})
}

// Reindex folds every journal file of the graph at path into its store and
// saves it under the graph lock. It returns the ids that changed.
func Reindex(ctx context.Context, path string, opts ...Option) ([]string, error) {
	var changed []string
	_, err := withLockedSession(ctx, path, opts, func(s *fs.Session) error {
		var err error
		changed, err = s.Reindex()
		return err
	})
	return changed, err
}

func withLockedSession(ctx context.Context, path string, opts []Option, fn func(*fs.Session) error) (_ *fs.Session, err error) {
	o := buildOptions(opts)

	holder, err := fs.Load(o.config(path))
	if err != nil {
		return nil, err
	}

	lockCtx, cancel := context.WithTimeout(ctx, o.lockTimeout)
	defer cancel()
	if err := holder.Lock(lockCtx); err != nil {
		return nil, err
	}
	defer func() {
		if uerr := holder.Unlock(); uerr != nil && err == nil {
			err = uerr
		}
	}()

	// Reload under the lock so the mutation starts from the latest snapshot.
	locked, err := fs.Load(o.config(path))
	if err != nil {
		return nil, err
	}

	if err := fn(locked); err != nil {
		return nil, err
	}
	if err := locked.Save(); err != nil {
		return nil, fmt.Errorf("failed to save graph: %w", err)
	}
	return locked, nil
}
