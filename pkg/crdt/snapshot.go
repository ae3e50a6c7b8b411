package crdt

import (
	"bytes"
	"fmt"
	"sort"
	"unicode/utf8"

	"github.com/aretw0/flow/pkg/core"
	"github.com/klauspost/compress/zstd"
	"github.com/vmihailenco/msgpack/v5"
)

const (
	snapshotMagic   = "FLOWSNAP"
	snapshotVersion = byte(1)
)

type snapshot struct {
	Texts []textRecord `msgpack:"texts"`
}

type textRecord struct {
	Key   string       `msgpack:"key"`
	Items []itemRecord `msgpack:"items"`
}

type itemRecord struct {
	_msgpack struct{} `msgpack:",as_array"`

	Peer          uint64
	Counter       uint64
	OriginPeer    uint64
	OriginCounter uint64
	Rune          int32
	Deleted       bool
}

func (r itemRecord) toItem() item {
	return item{
		id:      ID{Peer: r.Peer, Counter: r.Counter},
		origin:  ID{Peer: r.OriginPeer, Counter: r.OriginCounter},
		r:       rune(r.Rune),
		deleted: r.Deleted,
	}
}

// Export encodes every text value into a snapshot. Texts are sorted by key
// and items are kept in document order, so equal states export equal bytes.
func (s *Store) Export() ([]byte, error) {
	snap := snapshot{Texts: make([]textRecord, 0, len(s.texts))}
	for _, key := range s.IDs() {
		t := s.texts[key]
		rec := textRecord{Key: key, Items: make([]itemRecord, 0, len(t.items))}
		for _, it := range t.items {
			rec.Items = append(rec.Items, itemRecord{
				Peer:          it.id.Peer,
				Counter:       it.id.Counter,
				OriginPeer:    it.origin.Peer,
				OriginCounter: it.origin.Counter,
				Rune:          it.r,
				Deleted:       it.deleted,
			})
		}
		snap.Texts = append(snap.Texts, rec)
	}

	payload, err := msgpack.Marshal(&snap)
	if err != nil {
		return nil, fmt.Errorf("failed to encode snapshot: %w", err)
	}

	enc, err := zstd.NewWriter(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create snapshot encoder: %w", err)
	}
	defer enc.Close()

	out := make([]byte, 0, len(snapshotMagic)+1+len(payload)/2)
	out = append(out, snapshotMagic...)
	out = append(out, snapshotVersion)
	return enc.EncodeAll(payload, out), nil
}

// Import merges a snapshot produced by Export into the store. Items already
// known are kept, missing items are integrated and deletions are unioned.
// Import is idempotent and commutative. On error the store is unchanged.
func (s *Store) Import(data []byte) error {
	snap, err := decodeSnapshot(data)
	if err != nil {
		return err
	}

	for _, rec := range snap.Texts {
		if err := s.validate(rec); err != nil {
			return fmt.Errorf("%w: text %q: %v", core.ErrCorruptSnapshot, rec.Key, err)
		}
	}

	for _, rec := range snap.Texts {
		s.merge(rec)
	}
	return nil
}

func decodeSnapshot(data []byte) (snapshot, error) {
	var snap snapshot

	if len(data) < len(snapshotMagic)+1 || !bytes.Equal(data[:len(snapshotMagic)], []byte(snapshotMagic)) {
		return snap, fmt.Errorf("%w: missing header", core.ErrCorruptSnapshot)
	}
	if v := data[len(snapshotMagic)]; v != snapshotVersion {
		return snap, fmt.Errorf("%w: unsupported format version %d", core.ErrCorruptSnapshot, v)
	}

	dec, err := zstd.NewReader(nil)
	if err != nil {
		return snap, fmt.Errorf("failed to create snapshot decoder: %w", err)
	}
	defer dec.Close()

	payload, err := dec.DecodeAll(data[len(snapshotMagic)+1:], nil)
	if err != nil {
		return snap, fmt.Errorf("%w: %v", core.ErrCorruptSnapshot, err)
	}

	if err := msgpack.Unmarshal(payload, &snap); err != nil {
		return snap, fmt.Errorf("%w: %v", core.ErrCorruptSnapshot, err)
	}
	return snap, nil
}

// validate checks that every item of rec can be integrated into the store.
func (s *Store) validate(rec textRecord) error {
	seen := make(map[ID]struct{}, len(rec.Items))
	for _, r := range rec.Items {
		it := r.toItem()
		if it.id.IsZero() {
			return fmt.Errorf("item with reserved id")
		}
		if _, dup := seen[it.id]; dup {
			return fmt.Errorf("duplicate item %d@%d", it.id.Counter, it.id.Peer)
		}
		if !utf8.ValidRune(it.r) {
			return fmt.Errorf("invalid rune %d", it.r)
		}
		seen[it.id] = struct{}{}
	}

	local := s.texts[rec.Key]
	for _, r := range rec.Items {
		it := r.toItem()
		if it.origin.IsZero() {
			continue
		}
		if !it.origin.less(it.id) {
			return fmt.Errorf("item %d@%d precedes its origin", it.id.Counter, it.id.Peer)
		}
		if _, ok := seen[it.origin]; ok {
			continue
		}
		if local != nil && local.indexOf(it.origin) >= 0 {
			continue
		}
		return fmt.Errorf("item %d@%d has unknown origin", it.id.Counter, it.id.Peer)
	}
	return nil
}

func (s *Store) merge(rec textRecord) {
	t := s.Text(rec.Key)

	if len(t.items) == 0 {
		t.items = make([]item, 0, len(rec.Items))
		for _, r := range rec.Items {
			it := r.toItem()
			s.observe(it.id.Counter)
			t.items = append(t.items, it)
		}
		return
	}

	known := make(map[ID]int, len(t.items))
	for i, it := range t.items {
		known[it.id] = i
	}

	var missing []item
	for _, r := range rec.Items {
		it := r.toItem()
		s.observe(it.id.Counter)
		if i, ok := known[it.id]; ok {
			if it.deleted {
				t.items[i].deleted = true
			}
			continue
		}
		missing = append(missing, it)
	}

	sort.Slice(missing, func(i, j int) bool {
		return missing[i].id.less(missing[j].id)
	})
	for _, it := range missing {
		t.integrate(it)
	}
}
