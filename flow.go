package flow

import (
	"context"
	"log/slog"
	"time"

	"github.com/aretw0/flow/internal/platform"
	"github.com/aretw0/flow/pkg/adapters/fs"
	"github.com/aretw0/flow/pkg/core"
)

// Version is the flow release written into new graph metadata.
const Version = core.Version

// --- Types ---

// Session is an open graph.
type Session = fs.Session

// Event reports a journal document reconciled by Watch.
type Event = core.Event

// WatchOptions configures Session.Watch.
type WatchOptions = fs.WatchOptions

// --- Configuration ---

// Option defines a functional option for configuring flow.
type Option = platform.Option

// WithLogger sets the logger used by the session and its watcher.
func WithLogger(logger *slog.Logger) Option {
	return platform.WithLogger(logger)
}

// WithClock replaces time.Now when resolving today's journal entry.
func WithClock(clock func() time.Time) Option {
	return platform.WithClock(clock)
}

// WithJournalDir sets the directory holding journal files.
func WithJournalDir(dir string) Option {
	return platform.WithJournalDir(dir)
}

// WithName sets the graph name written by Init.
func WithName(name string) Option {
	return platform.WithName(name)
}

// WithLockTimeout bounds how long write helpers wait for the graph lock.
func WithLockTimeout(d time.Duration) Option {
	return platform.WithLockTimeout(d)
}

// --- Factory ---

// Init creates a new graph at path.
func Init(path string, opts ...Option) (*Session, error) {
	return platform.Init(path, opts...)
}

// Load opens the graph at path.
func Load(path string, opts ...Option) (*Session, error) {
	return platform.Load(path, opts...)
}

// Exists reports whether path holds a graph.
func Exists(path string) bool {
	return platform.Exists(path)
}

// FindRoot returns the closest directory at or above dir holding a graph.
func FindRoot(dir string) (string, error) {
	return platform.FindRoot(dir)
}

// --- Operations ---

// AddToJournal appends content to today's journal and saves the graph,
// holding the graph lock for the whole sequence.
func AddToJournal(ctx context.Context, path, content string, opts ...Option) (*Session, error) {
	return platform.AddToJournal(ctx, path, content, opts...)
}

// Reindex folds every journal file into the store and saves the graph.
func Reindex(ctx context.Context, path string, opts ...Option) ([]string, error) {
	return platform.Reindex(ctx, path, opts...)
}
