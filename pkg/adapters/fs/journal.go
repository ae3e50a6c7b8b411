package fs

import (
	"errors"
	"fmt"
	"os"
	"time"
	"unicode/utf8"

	"github.com/sergi/go-diff/diffmatchpatch"

	"github.com/aretw0/flow/pkg/core"
)

// JournalID returns the document id of the journal entry for date.
func (s *Session) JournalID(date time.Time) string {
	return core.JournalID(s.config.JournalDir, date)
}

// Add appends content as a bullet to today's journal entry.
// Edits made to the journal file since the last save are merged first.
// The change is kept in memory until Save.
func (s *Session) Add(content string) error {
	return s.AddAt(s.config.Clock(), content)
}

// AddAt appends content as a bullet to the journal entry for date.
func (s *Session) AddAt(date time.Time, content string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.JournalID(date)
	if _, err := s.foldFile(id); err != nil {
		return err
	}

	text := s.store.Text(id)
	line := "- " + content
	if !text.IsEmpty() {
		line = "\n" + line
	}
	text.Append(line)
	s.markDirty(id)

	s.logger().Debug("journal entry added", "id", id)
	return nil
}

// Journal renders the journal entry for date. A day without an entry renders
// as the empty string.
func (s *Session) Journal(date time.Time) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	if text, ok := s.store.Lookup(s.JournalID(date)); ok {
		return text.String()
	}
	return ""
}

// foldFile merges the file backing id into its text value and reports whether
// the rendering changed. A missing or unreadable file leaves the store untouched.
//
// The file is compared with the content this session last wrote or folded for
// id. An unchanged file is ignored, so unsaved edits survive. When id is dirty,
// the edit made on disk is rebased onto the rendering instead of replacing it.
func (s *Session) foldFile(id string) (bool, error) {
	target := s.filePath(id)
	data, err := os.ReadFile(target)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return false, nil
		}
		return false, core.NewIOError("read", target, err)
	}
	if !utf8.Valid(data) {
		return false, fmt.Errorf("%w: %s", core.ErrInvalidEncoding, target)
	}

	contents := string(data)
	base, known := s.materialized[id]
	if known && contents == base {
		return false, nil
	}

	text := s.store.Text(id)
	current := text.String()
	merged := contents
	if _, dirty := s.dirty[id]; dirty && contents != current {
		var ok bool
		merged, ok = rebase(base, contents, current)
		if !ok {
			s.logger().Warn("edit on disk only partly merged", "id", id)
		}
	}
	s.materialized[id] = contents

	if merged == current {
		return false, nil
	}
	text.Update(merged)
	return true, nil
}

// rebase applies the change from base to theirs onto ours. It reports whether
// every hunk applied.
func rebase(base, theirs, ours string) (string, bool) {
	dmp := diffmatchpatch.New()
	patches := dmp.PatchMake(base, theirs)
	merged, applied := dmp.PatchApply(patches, ours)
	for _, ok := range applied {
		if !ok {
			return merged, false
		}
	}
	return merged, true
}
