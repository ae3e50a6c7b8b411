// Package crdt implements the replicated text store backing a graph.
//
// Each text value is an RGA sequence: every rune is an item identified by a
// (peer, counter) pair and anchored to the item on its left at the time it
// was inserted. Deleted items stay in the sequence as tombstones so that
// snapshots from other replicas can always be integrated. Counters are Lamport
// clocks, which gives every replica the same total order for concurrent
// inserts after the same anchor.
package crdt

import (
	"encoding/binary"
	"sort"

	"github.com/google/uuid"
)

// ID identifies one item of a text value.
// The zero ID is reserved for the start of a document.
type ID struct {
	Peer    uint64
	Counter uint64
}

// IsZero reports whether id denotes the start of a document.
func (id ID) IsZero() bool {
	return id.Peer == 0 && id.Counter == 0
}

// less orders ids by Lamport counter, breaking ties by peer.
func (id ID) less(other ID) bool {
	if id.Counter != other.Counter {
		return id.Counter < other.Counter
	}
	return id.Peer < other.Peer
}

// Store is a keyed collection of replicated text values.
// A Store is not safe for concurrent use.
type Store struct {
	peer  uint64
	clock uint64
	texts map[string]*Text
}

// NewStore returns an empty store with a fresh replica id.
func NewStore() *Store {
	u := uuid.New()
	return newStore(binary.BigEndian.Uint64(u[:8]))
}

func newStore(peer uint64) *Store {
	if peer == 0 {
		peer = 1
	}
	return &Store{
		peer:  peer,
		texts: make(map[string]*Text),
	}
}

// Peer returns the replica id used for local edits.
func (s *Store) Peer() uint64 {
	return s.peer
}

// Text returns the text value bound to id, creating an empty one on first use.
func (s *Store) Text(id string) *Text {
	if t, ok := s.texts[id]; ok {
		return t
	}
	t := &Text{key: id, store: s}
	s.texts[id] = t
	return t
}

// Lookup returns the text value bound to id without creating it.
func (s *Store) Lookup(id string) (*Text, bool) {
	t, ok := s.texts[id]
	return t, ok
}

// IDs returns the sorted ids of every known text value.
func (s *Store) IDs() []string {
	ids := make([]string, 0, len(s.texts))
	for id := range s.texts {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func (s *Store) nextID() ID {
	s.clock++
	return ID{Peer: s.peer, Counter: s.clock}
}

func (s *Store) observe(counter uint64) {
	if counter > s.clock {
		s.clock = counter
	}
}
