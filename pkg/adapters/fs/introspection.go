package fs

import (
	"time"

	"github.com/aretw0/introspection"
)

// SessionState exposes internal state for observability.
type SessionState struct {
	Path          string     `json:"path" yaml:"path"`
	Name          string     `json:"name" yaml:"name"`
	Version       string     `json:"version" yaml:"version"`
	JournalDir    string     `json:"journal_dir" yaml:"journal_dir"`
	Documents     []string   `json:"documents" yaml:"documents"`
	Dirty         []string   `json:"dirty" yaml:"dirty"`
	Locked        bool       `json:"locked" yaml:"locked"`
	WatcherActive bool       `json:"watcher_active" yaml:"watcher_active"`
	LastReconcile *time.Time `json:"last_reconcile,omitempty" yaml:"last_reconcile,omitempty"`
}

// State implements introspection.Introspectable.
func (s *Session) State() any {
	s.mu.Lock()
	defer s.mu.Unlock()

	return SessionState{
		Path:          s.root,
		Name:          s.metadata.Name,
		Version:       s.metadata.Version,
		JournalDir:    s.config.JournalDir,
		Documents:     s.store.IDs(),
		Dirty:         s.dirtyLocked(),
		Locked:        s.lock != nil && s.lock.Locked(),
		WatcherActive: s.watcherActive,
		LastReconcile: s.lastReconcile,
	}
}

// ComponentType implements introspection.Component.
func (s *Session) ComponentType() string {
	return "graph-session"
}

var _ introspection.Introspectable = (*Session)(nil)
var _ introspection.Component = (*Session)(nil)
