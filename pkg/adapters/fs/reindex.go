package fs

import (
	"fmt"
	"os"
	"path"
	"sort"

	"github.com/bmatcuk/doublestar/v4"
)

// JournalPattern returns the glob, relative to the graph root, matching every
// journal file.
func (s *Session) JournalPattern() string {
	return path.Join(s.config.JournalDir, "*.md")
}

// Reindex folds every journal file on disk into the store and returns the
// sorted ids whose content changed. Changed ids are marked dirty. Files that
// are not valid UTF-8 are skipped with a warning.
func (s *Session) Reindex() ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reindexLocked()
}

func (s *Session) reindexLocked() ([]string, error) {
	matches, err := doublestar.Glob(os.DirFS(s.root), s.JournalPattern(), doublestar.WithFilesOnly())
	if err != nil {
		return nil, fmt.Errorf("failed to list journal files: %w", err)
	}
	sort.Strings(matches)

	var changed []string
	for _, id := range matches {
		ok, err := s.foldFile(id)
		if err != nil {
			s.logger().Warn("skipping journal file", "id", id, "error", err)
			continue
		}
		if ok {
			s.markDirty(id)
			changed = append(changed, id)
		}
	}

	s.logger().Debug("reindex finished", "files", len(matches), "changed", len(changed))
	return changed, nil
}
