package crdt

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTextAppend(t *testing.T) {
	s := newStore(1)
	txt := s.Text("journal/2024-01-01.md")

	assert.True(t, txt.IsEmpty())
	assert.Equal(t, "", txt.String())

	txt.Append("- hello")
	txt.Append("\n- wörld")

	assert.False(t, txt.IsEmpty())
	assert.Equal(t, "- hello\n- wörld", txt.String())
	assert.Equal(t, 15, txt.Len())
	assert.Same(t, txt, s.Text("journal/2024-01-01.md"))
}

func TestTextUpdate(t *testing.T) {
	cases := []struct {
		name   string
		before string
		after  string
	}{
		{"Insert Middle", "- a\n- c", "- a\n- b\n- c"},
		{"Delete Line", "- a\n- b\n- c", "- a\n- c"},
		{"Replace All", "abc", "xyz"},
		{"Clear", "abc", ""},
		{"From Empty", "", "fresh"},
		{"Unicode", "naïve ☕", "naïve 🍵 tea"},
		{"CRLF", "a\r\nb", "a\r\nb\r\nc"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s := newStore(1)
			txt := s.Text("doc")
			txt.Append(tc.before)

			txt.Update(tc.after)
			assert.Equal(t, tc.after, txt.String())

			txt.Update(tc.after)
			assert.Equal(t, tc.after, txt.String())
		})
	}
}

func TestTextUpdatePreservesIdentity(t *testing.T) {
	s := newStore(1)
	txt := s.Text("doc")
	txt.Append("- a")
	first := txt.items[0].id

	txt.Update("- a\n- b")

	require.NotEmpty(t, txt.items)
	assert.Equal(t, first, txt.items[0].id)
	assert.Equal(t, uint64(3), txt.items[2].id.Counter)
}

func TestUpdateAppendsAfterTombstones(t *testing.T) {
	s := newStore(1)
	txt := s.Text("doc")
	txt.Append("abc")
	txt.Update("a")
	txt.Append("d")

	assert.Equal(t, "ad", txt.String())
	// New items sit directly after their origin, ahead of the tombstones.
	assert.Equal(t, 'd', txt.items[1].r)
	assert.False(t, txt.items[1].deleted)
}

func TestStoreIDs(t *testing.T) {
	s := NewStore()
	s.Text("b")
	s.Text("a")
	s.Text("c")

	assert.Equal(t, []string{"a", "b", "c"}, s.IDs())
	assert.NotZero(t, s.Peer())
}

func TestTextUpdateLargeInsert(t *testing.T) {
	s := newStore(1)
	txt := s.Text("doc")
	txt.Append("[]")

	body := strings.Repeat("- line\n", 5000)
	txt.Update("[" + body + "]")
	assert.Equal(t, "["+body+"]", txt.String())

	// The inserted run keeps its order and chains each rune to the previous one.
	for i := 2; i < len(txt.items)-1; i++ {
		assert.Equal(t, txt.items[i-1].id, txt.items[i].origin)
	}
	assert.Equal(t, ']', txt.items[len(txt.items)-1].r)
}
