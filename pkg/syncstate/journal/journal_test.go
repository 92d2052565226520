package journal

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestJournal returns an in-memory journal whose clock advances one
// minute per entry starting at start.
func newTestJournal(t *testing.T, start time.Time) *Journal {
	t.Helper()

	j, err := NewWithFs(afero.NewMemMapFs(), "/journal")
	require.NoError(t, err)

	next := start
	j.now = func() time.Time {
		now := next
		next = next.Add(time.Minute)
		return now
	}
	return j
}

func TestNew_EmptyDir(t *testing.T) {
	_, err := New("")
	assert.Error(t, err)
}

func TestRecord(t *testing.T) {
	j := newTestJournal(t, time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC))

	entry, err := j.Record(Batch{
		Snapshot: "sync-file.data",
		Created:  []string{"/file1.txt", "/test/file2.txt"},
		Removed:  []string{"/old.txt"},
		Total:    2,
	})
	require.NoError(t, err)

	assert.NotEmpty(t, entry.ID)
	assert.Equal(t, "sync-file.data", entry.Snapshot)
	assert.Equal(t, Summary{Created: 2, Removed: 1, Total: 2}, entry.Summary)

	got, err := j.Get(entry.ID)
	require.NoError(t, err)
	assert.Equal(t, entry.Created, got.Created)
	assert.True(t, entry.Timestamp.Equal(got.Timestamp))
}

func TestList_NewestFirstWithLimit(t *testing.T) {
	j := newTestJournal(t, time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC))

	var ids []string
	for i := 0; i < 3; i++ {
		e, err := j.Record(Batch{Snapshot: "s", Total: i})
		require.NoError(t, err)
		ids = append(ids, e.ID)
	}

	all, err := j.List(0)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, ids[2], all[0].ID)
	assert.Equal(t, ids[0], all[2].ID)

	limited, err := j.List(2)
	require.NoError(t, err)
	assert.Len(t, limited, 2)
}

func TestList_MissingDirectory(t *testing.T) {
	j, err := New(filepath.Join(t.TempDir(), "never-created"))
	require.NoError(t, err)

	entries, err := j.List(0)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestList_SkipsCorruptFiles(t *testing.T) {
	j := newTestJournal(t, time.Now())
	_, err := j.Record(Batch{Snapshot: "s"})
	require.NoError(t, err)

	require.NoError(t, afero.WriteFile(j.fs, "/journal/broken.json", []byte("{"), 0o644))

	entries, err := j.List(0)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestGet_NotFound(t *testing.T) {
	j := newTestJournal(t, time.Now())

	_, err := j.Get("missing")
	assert.ErrorIs(t, err, ErrEntryNotFound)

	_, err = j.Get("")
	assert.Error(t, err)
}

func TestPrune(t *testing.T) {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	j := newTestJournal(t, start)

	old, err := j.Record(Batch{Snapshot: "s"})
	require.NoError(t, err)

	// Jump the clock forward 40 days for the second entry and the prune.
	j.now = func() time.Time { return start.AddDate(0, 0, 40) }
	recent, err := j.Record(Batch{Snapshot: "s"})
	require.NoError(t, err)

	removed, err := j.Prune(30)
	require.NoError(t, err)
	assert.Equal(t, 1, removed)

	_, err = j.Get(old.ID)
	assert.ErrorIs(t, err, ErrEntryNotFound)
	_, err = j.Get(recent.ID)
	assert.NoError(t, err)

	removed, err = j.Prune(0)
	require.NoError(t, err)
	assert.Zero(t, removed)
}
