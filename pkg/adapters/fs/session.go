// Package fs implements a graph session on the local filesystem.
//
// A graph is a directory holding a replicated document store under .flow/
// and a set of journal files that are materialized views of that store.
package fs

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/gofrs/flock"
	"github.com/pelletier/go-toml/v2"

	"github.com/aretw0/flow/internal/fsutil"
	"github.com/aretw0/flow/pkg/core"
	"github.com/aretw0/flow/pkg/crdt"
)

// Graph layout, relative to the graph root.
const (
	SystemDir    = ".flow"
	MetadataFile = "graph.toml"
	SnapshotFile = "graph.loro"
	LockFile     = "graph.lock"

	DefaultName = "flow-graph"
)

// Config holds the configuration for a graph session.
type Config struct {
	Path       string
	JournalDir string           // relative to Path, defaults to core.JournalDir
	Logger     *slog.Logger     // optional
	Clock      func() time.Time // defaults to time.Now
	Version    string           // written into new metadata, defaults to core.Version
}

func (c Config) withDefaults() (Config, error) {
	if c.JournalDir == "" {
		c.JournalDir = core.JournalDir
	}
	if c.Clock == nil {
		c.Clock = time.Now
	}
	if c.Version == "" {
		c.Version = core.Version
	}
	abs, err := filepath.Abs(c.Path)
	if err != nil {
		return c, core.NewIOError("resolve", c.Path, err)
	}
	c.Path = abs
	return c, nil
}

// Session is an open graph: its metadata, its replicated store and the set of
// documents changed since the last save.
//
// A Session is meant to be driven by one goroutine. The journal watcher is the
// only other writer and serializes through the session mutex.
type Session struct {
	root     string
	config   Config
	metadata core.GraphMetadata
	store    *crdt.Store
	dirty    map[string]struct{}

	// materialized holds the content last written or folded per id.
	materialized map[string]string

	mu            sync.Mutex
	lock          *flock.Flock
	watcherActive bool
	lastReconcile *time.Time
}

func newSession(config Config, metadata core.GraphMetadata, store *crdt.Store) *Session {
	return &Session{
		root:     config.Path,
		config:   config,
		metadata: metadata,
		store:    store,
		dirty:    make(map[string]struct{}),

		materialized: make(map[string]string),
	}
}

// Exists reports whether path holds a graph. Only the system directory is
// checked; its contents are not validated.
func Exists(path string) bool {
	_, err := os.Stat(filepath.Join(path, SystemDir))
	return err == nil
}

// Init creates a new graph at config.Path. An empty name defaults to the final
// path component. Init fails with core.ErrAlreadyExists, touching nothing, if
// the directory already holds a graph. On any other failure the system
// directory is removed again.
func Init(config Config, name string) (_ *Session, err error) {
	config, err = config.withDefaults()
	if err != nil {
		return nil, err
	}
	root := config.Path

	if Exists(root) {
		return nil, fmt.Errorf("%w: %s", core.ErrAlreadyExists, root)
	}

	// A half-created system dir would make every later Init fail.
	defer func() {
		if err != nil {
			_ = os.RemoveAll(filepath.Join(root, SystemDir))
		}
	}()

	for _, dir := range []string{
		filepath.Join(root, SystemDir),
		filepath.Join(root, filepath.FromSlash(config.JournalDir)),
	} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, core.NewIOError("create directory", dir, err)
		}
	}

	if name == "" {
		name = DefaultNameFor(root)
	}

	s := newSession(config, core.GraphMetadata{Name: name, Version: config.Version}, crdt.NewStore())
	if err := s.writeMetadata(); err != nil {
		return nil, err
	}
	if err := s.writeSnapshot(); err != nil {
		return nil, err
	}

	s.logger().Debug("graph initialized", "path", root, "name", name)
	return s, nil
}

// Load opens the graph at config.Path.
//
// It fails with core.ErrNotFound when the metadata file is missing, with
// core.ErrCorruptMetadata when it cannot be parsed and with
// core.ErrCorruptSnapshot when the snapshot cannot be imported. A missing
// snapshot yields an empty store.
func Load(config Config) (*Session, error) {
	config, err := config.withDefaults()
	if err != nil {
		return nil, err
	}
	root := config.Path

	metaPath := filepath.Join(root, SystemDir, MetadataFile)
	data, err := os.ReadFile(metaPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", core.ErrNotFound, root)
		}
		return nil, core.NewIOError("read", metaPath, err)
	}

	var metadata core.GraphMetadata
	if err := toml.Unmarshal(data, &metadata); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", core.ErrCorruptMetadata, metaPath, err)
	}

	store := crdt.NewStore()
	snapPath := filepath.Join(root, SystemDir, SnapshotFile)
	snapshot, err := os.ReadFile(snapPath)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return nil, core.NewIOError("read", snapPath, err)
	default:
		if err := store.Import(snapshot); err != nil {
			return nil, fmt.Errorf("failed to import %s: %w", snapPath, err)
		}
	}

	s := newSession(config, metadata, store)
	s.logger().Debug("graph loaded", "path", root, "name", metadata.Name, "documents", len(store.IDs()))
	return s, nil
}

// Save persists the metadata and the store snapshot, then writes every dirty
// document to its file. Each document leaves the dirty set as soon as its
// file is written, so a failure leaves only unwritten documents dirty.
func (s *Session) Save() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saveLocked()
}

func (s *Session) saveLocked() error {
	if err := s.writeMetadata(); err != nil {
		return err
	}
	if err := s.writeSnapshot(); err != nil {
		return err
	}

	for _, id := range s.dirtyLocked() {
		target := s.filePath(id)
		if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
			return core.NewIOError("create directory", filepath.Dir(target), err)
		}
		content := s.store.Text(id).String()
		if err := fsutil.WriteFileAtomic(target, []byte(content), 0644); err != nil {
			return core.NewIOError("write", target, err)
		}
		delete(s.dirty, id)
		s.materialized[id] = content
		s.logger().Debug("document written", "id", id, "bytes", len(content))
	}
	return nil
}

func (s *Session) writeMetadata() error {
	data, err := toml.Marshal(s.metadata)
	if err != nil {
		return fmt.Errorf("failed to encode metadata: %w", err)
	}
	target := filepath.Join(s.root, SystemDir, MetadataFile)
	if err := fsutil.WriteFileAtomic(target, data, 0644); err != nil {
		return core.NewIOError("write", target, err)
	}
	return nil
}

func (s *Session) writeSnapshot() error {
	data, err := s.store.Export()
	if err != nil {
		return fmt.Errorf("failed to export snapshot: %w", err)
	}
	target := filepath.Join(s.root, SystemDir, SnapshotFile)
	if err := fsutil.WriteFileAtomic(target, data, 0644); err != nil {
		return core.NewIOError("write", target, err)
	}
	return nil
}

// Path returns the absolute graph root.
func (s *Session) Path() string {
	return s.root
}

// Name returns the graph name from its metadata.
func (s *Session) Name() string {
	return s.metadata.Name
}

// Version returns the version recorded in the graph metadata.
func (s *Session) Version() string {
	return s.metadata.Version
}

// Documents returns the ids of every document in the store.
func (s *Session) Documents() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store.IDs()
}

// Dirty returns the sorted ids changed since the last successful save.
func (s *Session) Dirty() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dirtyLocked()
}

func (s *Session) dirtyLocked() []string {
	ids := make([]string, 0, len(s.dirty))
	for id := range s.dirty {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func (s *Session) markDirty(id string) {
	s.dirty[id] = struct{}{}
}

// filePath maps a document id to its file on disk.
func (s *Session) filePath(id string) string {
	return filepath.Join(s.root, filepath.FromSlash(id))
}

func (s *Session) logger() *slog.Logger {
	if s.config.Logger != nil {
		return s.config.Logger
	}
	return slog.New(slog.DiscardHandler)
}

// DefaultNameFor returns the graph name used when Init is given none.
func DefaultNameFor(root string) string {
	name := filepath.Base(root)
	if name == "" || name == "." || name == string(filepath.Separator) {
		return DefaultName
	}
	return name
}
