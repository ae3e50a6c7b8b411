package platform

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/flow/pkg/core"
)

func fixedClock() Option {
	return WithClock(func() time.Time {
		return time.Date(2025, time.June, 1, 8, 30, 0, 0, time.Local)
	})
}

func TestInitAndLoad(t *testing.T) {
	dir := t.TempDir()

	s, err := Init(dir, WithName("garden"), WithJournalDir("days"))
	require.NoError(t, err)
	assert.Equal(t, "garden", s.Name())
	assert.True(t, Exists(dir))
	assert.DirExists(t, filepath.Join(dir, "days"))

	_, err = Init(dir)
	assert.ErrorIs(t, err, core.ErrAlreadyExists)

	loaded, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, "garden", loaded.Name())
}

func TestAddToJournal(t *testing.T) {
	dir := t.TempDir()
	_, err := Init(dir)
	require.NoError(t, err)

	ctx := context.Background()
	_, err = AddToJournal(ctx, dir, "one", fixedClock())
	require.NoError(t, err)
	s, err := AddToJournal(ctx, dir, "two", fixedClock())
	require.NoError(t, err)

	assert.Empty(t, s.Dirty())
	assert.False(t, s.Locked())

	data, err := os.ReadFile(filepath.Join(dir, "journal", "2025-06-01.md"))
	require.NoError(t, err)
	assert.Equal(t, "- one\n- two", string(data))
}

func TestAddToJournalSerializesWriters(t *testing.T) {
	dir := t.TempDir()
	_, err := Init(dir)
	require.NoError(t, err)

	const writers = 5
	var wg sync.WaitGroup
	errs := make(chan error, writers)
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := AddToJournal(context.Background(), dir, "entry", fixedClock())
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	loaded, err := Load(dir, fixedClock())
	require.NoError(t, err)
	assert.Equal(t, "- entry\n- entry\n- entry\n- entry\n- entry",
		loaded.Journal(time.Date(2025, time.June, 1, 0, 0, 0, 0, time.Local)))
}

func TestAddToJournalLockTimeout(t *testing.T) {
	dir := t.TempDir()
	holder, err := Init(dir)
	require.NoError(t, err)
	require.NoError(t, holder.Lock(context.Background()))
	defer holder.Unlock()

	_, err = AddToJournal(context.Background(), dir, "blocked", WithLockTimeout(100*time.Millisecond))
	assert.ErrorIs(t, err, core.ErrLocked)
}

func TestAddToJournalMissingGraph(t *testing.T) {
	_, err := AddToJournal(context.Background(), t.TempDir(), "x")
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestReindex(t *testing.T) {
	dir := t.TempDir()
	_, err := Init(dir)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "journal", "2025-05-31.md"), []byte("- offline"), 0644))

	changed, err := Reindex(context.Background(), dir)
	require.NoError(t, err)
	assert.Equal(t, []string{"journal/2025-05-31.md"}, changed)

	changed, err = Reindex(context.Background(), dir)
	require.NoError(t, err)
	assert.Empty(t, changed)
}
