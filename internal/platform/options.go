package platform

import (
	"log/slog"
	"time"

	"github.com/aretw0/flow/pkg/adapters/fs"
)

// DefaultLockTimeout bounds how long write operations wait for the graph lock.
const DefaultLockTimeout = 5 * time.Second

// options holds the internal configuration for a graph session.
type options struct {
	logger      *slog.Logger
	clock       func() time.Time
	journalDir  string
	name        string
	lockTimeout time.Duration
}

// Option defines a functional option for configuring flow.
type Option func(*options)

// defaultOptions returns the default configuration.
func defaultOptions() *options {
	return &options{
		lockTimeout: DefaultLockTimeout,
	}
}

func buildOptions(opts []Option) *options {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}
	return o
}

func (o *options) config(path string) fs.Config {
	return fs.Config{
		Path:       path,
		JournalDir: o.journalDir,
		Logger:     o.logger,
		Clock:      o.clock,
	}
}

// WithLogger sets the logger used by the session and its watcher.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithClock replaces time.Now when resolving today's journal entry.
func WithClock(clock func() time.Time) Option {
	return func(o *options) {
		o.clock = clock
	}
}

// WithJournalDir sets the directory, relative to the graph root, holding
// journal files. Defaults to "journal".
func WithJournalDir(dir string) Option {
	return func(o *options) {
		o.journalDir = dir
	}
}

// WithName sets the graph name written by Init.
// Defaults to the final component of the graph path.
func WithName(name string) Option {
	return func(o *options) {
		o.name = name
	}
}

// WithLockTimeout bounds how long AddToJournal and Reindex wait for the
// graph lock. Zero or negative means DefaultLockTimeout.
func WithLockTimeout(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.lockTimeout = d
		}
	}
}
