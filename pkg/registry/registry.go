// Package registry keeps the user-level list of known graphs and the active one.
//
// The registry is a TOML file:
//
//	active_graph = 'notes'
//
//	[graphs.notes]
//	path = '/home/me/notes'
package registry

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/pelletier/go-toml/v2"

	"github.com/aretw0/flow/internal/fsutil"
)

const (
	// EnvConfig overrides the registry file location.
	EnvConfig = "FLOW_CONFIG"

	appDir   = "flow"
	fileName = "flow.toml"
)

// ErrGraphNotFound is returned when a name or path is not registered.
var ErrGraphNotFound = errors.New("graph not registered")

// Graph is one registered graph.
type Graph struct {
	Path string `toml:"path"`
}

// Entry is a registered graph together with its name.
type Entry struct {
	Name   string `json:"name" yaml:"name"`
	Path   string `json:"path" yaml:"path"`
	Active bool   `json:"active" yaml:"active"`
}

type file struct {
	ActiveGraph string           `toml:"active_graph,omitempty"`
	Graphs      map[string]Graph `toml:"graphs"`
}

// Registry maps graph names to canonical directories.
type Registry struct {
	path   string
	active string
	graphs map[string]Graph
}

// DefaultPath returns the registry location: $FLOW_CONFIG, else
// $XDG_CONFIG_HOME/flow/flow.toml, else ~/.config/flow/flow.toml.
func DefaultPath() (string, error) {
	if p := os.Getenv(EnvConfig); p != "" {
		return p, nil
	}
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, appDir, fileName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to resolve home directory: %w", err)
	}
	return filepath.Join(home, ".config", appDir, fileName), nil
}

// New returns an empty registry stored at path.
func New(path string) *Registry {
	return &Registry{path: path, graphs: make(map[string]Graph)}
}

// Load reads the registry at path. A missing file yields an empty registry.
func Load(path string) (*Registry, error) {
	r := New(path)

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return r, nil
		}
		return nil, fmt.Errorf("failed to read registry %s: %w", path, err)
	}

	var f file
	if err := toml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse registry %s: %w", path, err)
	}
	for name, g := range f.Graphs {
		r.graphs[name] = g
	}
	if _, ok := r.graphs[f.ActiveGraph]; ok {
		r.active = f.ActiveGraph
	}
	return r, nil
}

// Save writes the registry atomically, creating its directory.
func (r *Registry) Save() error {
	data, err := toml.Marshal(file{ActiveGraph: r.active, Graphs: r.graphs})
	if err != nil {
		return fmt.Errorf("failed to encode registry: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(r.path), 0755); err != nil {
		return fmt.Errorf("failed to create registry directory: %w", err)
	}
	if err := fsutil.WriteFileAtomic(r.path, data, 0644); err != nil {
		return fmt.Errorf("failed to write registry: %w", err)
	}
	return nil
}

// Path returns the registry file location.
func (r *Registry) Path() string {
	return r.path
}

// Add registers path under name, replacing any previous entry with that name.
// The path must exist; it is stored absolute with symlinks resolved. The first
// graph registered becomes active.
func (r *Registry) Add(name, path string) error {
	canonical, err := Canonicalize(path)
	if err != nil {
		return err
	}
	r.graphs[name] = Graph{Path: canonical}
	if r.active == "" {
		r.active = name
	}
	return nil
}

// Lookup resolves a name, or failing that a path, to its entry.
func (r *Registry) Lookup(nameOrPath string) (Entry, bool) {
	name, ok := r.resolve(nameOrPath)
	if !ok {
		return Entry{}, false
	}
	return r.entry(name), true
}

// IsRegistered reports whether path belongs to a registered graph.
func (r *Registry) IsRegistered(path string) bool {
	_, ok := r.nameByPath(path)
	return ok
}

// NameOf returns the name under which path is registered.
func (r *Registry) NameOf(path string) (string, bool) {
	return r.nameByPath(path)
}

// SetActive makes the graph named (or located at) nameOrPath active.
func (r *Registry) SetActive(nameOrPath string) error {
	name, ok := r.resolve(nameOrPath)
	if !ok {
		return fmt.Errorf("%w: %s", ErrGraphNotFound, nameOrPath)
	}
	r.active = name
	return nil
}

// Active returns the active graph, if any.
func (r *Registry) Active() (Entry, bool) {
	if r.active == "" {
		return Entry{}, false
	}
	return r.entry(r.active), true
}

// ActiveName returns the name of the active graph or "".
func (r *Registry) ActiveName() string {
	return r.active
}

// Remove unregisters a graph. When it was active, the alphabetically first
// remaining graph becomes active.
func (r *Registry) Remove(nameOrPath string) error {
	name, ok := r.resolve(nameOrPath)
	if !ok {
		return fmt.Errorf("%w: %s", ErrGraphNotFound, nameOrPath)
	}
	delete(r.graphs, name)
	if r.active == name {
		r.active = ""
		if names := r.names(); len(names) > 0 {
			r.active = names[0]
		}
	}
	return nil
}

// Len returns the number of registered graphs.
func (r *Registry) Len() int {
	return len(r.graphs)
}

// All returns every registered graph sorted by name.
func (r *Registry) All() []Entry {
	entries := make([]Entry, 0, len(r.graphs))
	for _, name := range r.names() {
		entries = append(entries, r.entry(name))
	}
	return entries
}

// Canonicalize returns path absolute, cleaned and with symlinks resolved.
func Canonicalize(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("failed to resolve %s: %w", path, err)
	}
	resolved, err := filepath.EvalSymlinks(abs)
	if err != nil {
		return "", fmt.Errorf("failed to resolve %s: %w", path, err)
	}
	return resolved, nil
}

func (r *Registry) resolve(nameOrPath string) (string, bool) {
	if _, ok := r.graphs[nameOrPath]; ok {
		return nameOrPath, true
	}
	return r.nameByPath(nameOrPath)
}

func (r *Registry) nameByPath(path string) (string, bool) {
	candidates := []string{filepath.Clean(path)}
	if abs, err := filepath.Abs(path); err == nil {
		candidates = append(candidates, abs)
	}
	if canonical, err := Canonicalize(path); err == nil {
		candidates = append(candidates, canonical)
	}

	for _, name := range r.names() {
		for _, c := range candidates {
			if r.graphs[name].Path == c {
				return name, true
			}
		}
	}
	return "", false
}

func (r *Registry) names() []string {
	names := make([]string, 0, len(r.graphs))
	for name := range r.graphs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (r *Registry) entry(name string) Entry {
	return Entry{Name: name, Path: r.graphs[name].Path, Active: name == r.active}
}
