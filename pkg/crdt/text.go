package crdt

import (
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/sergi/go-diff/diffmatchpatch"
)

type item struct {
	id      ID
	origin  ID
	r       rune
	deleted bool
}

// Text is a handle to one replicated text value of a Store.
type Text struct {
	key   string
	store *Store
	items []item
}

// ID returns the key the text is bound to.
func (t *Text) ID() string {
	return t.key
}

// String renders the visible content.
func (t *Text) String() string {
	var b strings.Builder
	for _, it := range t.items {
		if !it.deleted {
			b.WriteRune(it.r)
		}
	}
	return b.String()
}

// Len returns the number of visible runes.
func (t *Text) Len() int {
	n := 0
	for _, it := range t.items {
		if !it.deleted {
			n++
		}
	}
	return n
}

// IsEmpty reports whether the rendering is empty.
func (t *Text) IsEmpty() bool {
	for _, it := range t.items {
		if !it.deleted {
			return false
		}
	}
	return true
}

// Append inserts s at the end of the rendering.
func (t *Text) Append(s string) {
	if s == "" {
		return
	}

	origin := ID{}
	at := 0
	for i := len(t.items) - 1; i >= 0; i-- {
		if !t.items[i].deleted {
			origin = t.items[i].id
			at = i + 1
			break
		}
	}

	inserted := make([]item, 0, utf8.RuneCountInString(s))
	for _, r := range s {
		id := t.store.nextID()
		inserted = append(inserted, item{id: id, origin: origin, r: r})
		origin = id
	}

	t.items = slices.Insert(t.items, at, inserted...)
}

// Update replaces the rendering with newText, expressed as a minimal set of
// rune insertions and deletions so that unchanged items keep their identity.
func (t *Text) Update(newText string) {
	oldRunes := []rune(t.String())
	newRunes := []rune(newText)

	dmp := diffmatchpatch.New()
	dmp.DiffTimeout = 0
	diffs := dmp.DiffMainRunes(oldRunes, newRunes, false)

	out := make([]item, 0, len(t.items)+len(newRunes))
	next := 0

	// New items always go directly after their origin, ahead of any
	// tombstones, which is where a remote replica integrates them.
	last := ID{}
	at := 0

	// advance copies items up to and including the next visible one.
	advance := func(remove bool) {
		for next < len(t.items) {
			it := t.items[next]
			next++
			if it.deleted {
				out = append(out, it)
				continue
			}
			if remove {
				it.deleted = true
				out = append(out, it)
			} else {
				out = append(out, it)
				last = it.id
				at = len(out)
			}
			return
		}
	}

	for _, d := range diffs {
		n := utf8.RuneCountInString(d.Text)
		switch d.Type {
		case diffmatchpatch.DiffEqual:
			for i := 0; i < n; i++ {
				advance(false)
			}
		case diffmatchpatch.DiffDelete:
			for i := 0; i < n; i++ {
				advance(true)
			}
		case diffmatchpatch.DiffInsert:
			run := make([]item, 0, n)
			for _, r := range d.Text {
				id := t.store.nextID()
				run = append(run, item{id: id, origin: last, r: r})
				last = id
			}
			out = slices.Insert(out, at, run...)
			at += len(run)
		}
	}

	t.items = append(out, t.items[next:]...)
}

func (t *Text) indexOf(id ID) int {
	for i := range t.items {
		if t.items[i].id == id {
			return i
		}
	}
	return -1
}

// integrate places a remote item after its origin, skipping any item with a
// greater id so that concurrent inserts after the same anchor converge.
func (t *Text) integrate(it item) {
	i := 0
	if !it.origin.IsZero() {
		i = t.indexOf(it.origin) + 1
	}
	for i < len(t.items) && it.id.less(t.items[i].id) {
		i++
	}
	t.items = slices.Insert(t.items, i, it)
}
