package blob

import (
	"path/filepath"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// backends returns a fresh instance of every Backend implementation.
func backends(t *testing.T) map[string]Backend {
	t.Helper()

	badgerStore, err := OpenBadger(filepath.Join(t.TempDir(), "badger"))
	require.NoError(t, err)

	memBadger, err := OpenBadgerInMemory()
	require.NoError(t, err)

	dirStore, err := OpenDir(filepath.Join(t.TempDir(), "dir"))
	require.NoError(t, err)

	sqliteStore, err := OpenSQLite(filepath.Join(t.TempDir(), "blobs.db"))
	require.NoError(t, err)

	all := map[string]Backend{
		"badger":        badgerStore,
		"badger-memory": memBadger,
		"dir":           dirStore,
		"memory":        NewMemStore(),
		"sqlite":        sqliteStore,
	}
	for _, b := range all {
		t.Cleanup(func() { _ = b.Close() })
	}
	return all
}

func TestStore_FindByNameNotFound(t *testing.T) {
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			_, err := s.FindByName("sync-file.data")
			assert.ErrorIs(t, err, ErrNotFound)
		})
	}
}

func TestStore_CreateFindRead(t *testing.T) {
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			data := []byte("snapshot bytes")
			require.NoError(t, s.CreateOrUpdate("sync-file.data", data))

			h, err := s.FindByName("sync-file.data")
			require.NoError(t, err)
			assert.Equal(t, "sync-file.data", h.Name)
			assert.Equal(t, int64(len(data)), h.Size)
			assert.False(t, h.ModTime.IsZero())

			got, err := s.GetContent(h)
			require.NoError(t, err)
			assert.Equal(t, data, got)
		})
	}
}

func TestStore_Overwrite(t *testing.T) {
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, s.CreateOrUpdate("snap", []byte("first version")))
			require.NoError(t, s.CreateOrUpdate("snap", []byte("second")))

			h, err := s.FindByName("snap")
			require.NoError(t, err)
			assert.Equal(t, int64(6), h.Size)

			got, err := s.GetContent(h)
			require.NoError(t, err)
			assert.Equal(t, []byte("second"), got)
		})
	}
}

func TestStore_EmptyBlob(t *testing.T) {
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, s.CreateOrUpdate("empty", nil))

			h, err := s.FindByName("empty")
			require.NoError(t, err)

			got, err := s.GetContent(h)
			require.NoError(t, err)
			assert.Empty(t, got)
		})
	}
}

func TestStore_PathLikeNames(t *testing.T) {
	names := []string{"/test/dir/state", "..", ".", ".hidden", "state.tmp", "a b%c", "roots/home.snapshot"}

	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			for _, n := range names {
				require.NoError(t, s.CreateOrUpdate(n, []byte(n)))
			}

			handles, err := s.List()
			require.NoError(t, err)

			var listed []string
			for _, h := range handles {
				listed = append(listed, h.Name)
			}
			assert.ElementsMatch(t, names, listed)

			for _, n := range names {
				h, err := s.FindByName(n)
				require.NoError(t, err)
				got, err := s.GetContent(h)
				require.NoError(t, err)
				assert.Equal(t, []byte(n), got)
			}
		})
	}
}

func TestStore_Delete(t *testing.T) {
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, s.CreateOrUpdate("snap", []byte("x")))
			require.NoError(t, s.Delete("snap"))

			_, err := s.FindByName("snap")
			assert.ErrorIs(t, err, ErrNotFound)

			assert.ErrorIs(t, s.Delete("snap"), ErrNotFound)
		})
	}
}

func TestStore_ListSorted(t *testing.T) {
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			for _, n := range []string{"c", "a", "b"} {
				require.NoError(t, s.CreateOrUpdate(n, []byte(n)))
			}

			handles, err := s.List()
			require.NoError(t, err)
			require.Len(t, handles, 3)
			assert.Equal(t, "a", handles[0].Name)
			assert.Equal(t, "b", handles[1].Name)
			assert.Equal(t, "c", handles[2].Name)
		})
	}
}

func TestFileStore_ListSkipsInFlightWrites(t *testing.T) {
	fsys := afero.NewMemMapFs()
	s, err := NewFileStore(fsys, "/store")
	require.NoError(t, err)

	require.NoError(t, s.CreateOrUpdate("state.tmp", []byte("kept")))
	require.NoError(t, afero.WriteFile(fsys, "/store/.state.tmp.123456", []byte("partial"), 0o644))

	handles, err := s.List()
	require.NoError(t, err)
	require.Len(t, handles, 1)
	assert.Equal(t, "state.tmp", handles[0].Name)
}

func TestEscapeName_NoLeadingDot(t *testing.T) {
	for _, name := range []string{".", "..", ".hidden", "a.b", "/x/.y"} {
		escaped := escapeName(name)
		assert.NotEqual(t, byte('.'), escaped[0], name)
		assert.NotContains(t, escaped, "/", name)
	}
}

func TestBadgerStore_Reopen(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "badger")

	s, err := OpenBadger(dir)
	require.NoError(t, err)
	require.NoError(t, s.CreateOrUpdate("snap", []byte("persisted")))
	require.NoError(t, s.Close())

	s, err = OpenBadger(dir)
	require.NoError(t, err)
	defer s.Close()

	h, err := s.FindByName("snap")
	require.NoError(t, err)
	got, err := s.GetContent(h)
	require.NoError(t, err)
	assert.Equal(t, []byte("persisted"), got)
}

func TestOpenSQLite_Directory(t *testing.T) {
	dir := t.TempDir()

	s, err := OpenSQLite(dir)
	require.NoError(t, err)
	defer s.Close()

	assert.FileExists(t, filepath.Join(dir, "blobs.db"))
}

func TestOpen(t *testing.T) {
	for _, backend := range Backends() {
		t.Run(backend, func(t *testing.T) {
			s, err := Open(backend, filepath.Join(t.TempDir(), backend))
			require.NoError(t, err)
			require.NoError(t, s.Close())
		})
	}

	_, err := Open("s3", t.TempDir())
	assert.ErrorIs(t, err, ErrUnknownBackend)
}
