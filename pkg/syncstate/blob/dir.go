package blob

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/afero"

	"github.com/jamesainslie/syncstate/pkg/syncstate/logging"
)

// tempPrefix marks in-flight writes. escapeName never yields a leading
// dot, so files starting with one are never blobs.
const tempPrefix = "."

// FileStore keeps one file per blob in a directory.
// Blob names are path-escaped so names containing "/" stay flat.
type FileStore struct {
	fs     afero.Fs
	dir    string
	logger *logging.Logger
}

// OpenDir opens a file store rooted at dir on the OS filesystem,
// creating the directory if needed.
func OpenDir(dir string) (*FileStore, error) {
	return NewFileStore(afero.NewOsFs(), dir)
}

// NewMemStore returns a file store backed by an in-memory filesystem.
func NewMemStore() *FileStore {
	s, _ := NewFileStore(afero.NewMemMapFs(), "/")
	return s
}

// NewFileStore returns a file store rooted at dir on fsys.
func NewFileStore(fsys afero.Fs, dir string) (*FileStore, error) {
	if err := fsys.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating store directory: %w", err)
	}
	return &FileStore{fs: fsys, dir: dir, logger: logging.Get("blob")}, nil
}

// Close is a no-op; FileStore holds no open handles.
func (s *FileStore) Close() error {
	return nil
}

// path returns the on-disk path for a blob name.
func (s *FileStore) path(name string) string {
	return filepath.Join(s.dir, escapeName(name))
}

// escapeName maps a blob name to a single path element.
// PathEscape leaves dots alone, so a leading dot is spelled out. That also
// keeps "." and ".." from naming a directory.
func escapeName(name string) string {
	escaped := url.PathEscape(name)
	if strings.HasPrefix(escaped, ".") {
		escaped = "%2E" + escaped[1:]
	}
	return escaped
}

// FindByName implements Store.
func (s *FileStore) FindByName(name string) (Handle, error) {
	info, err := s.fs.Stat(s.path(name))
	if errors.Is(err, fs.ErrNotExist) {
		return Handle{}, ErrNotFound
	}
	if err != nil {
		return Handle{}, err
	}
	if info.IsDir() {
		return Handle{}, fmt.Errorf("blob %s: is a directory", name)
	}

	return Handle{Name: name, Size: info.Size(), ModTime: info.ModTime()}, nil
}

// GetContent implements Store.
func (s *FileStore) GetContent(h Handle) ([]byte, error) {
	data, err := afero.ReadFile(s.fs, s.path(h.Name))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrNotFound
	}
	return data, err
}

// CreateOrUpdate implements Store. Data is written to a temporary file and
// renamed over the target so readers never observe a partial blob.
func (s *FileStore) CreateOrUpdate(name string, data []byte) error {
	target := s.path(name)

	tmp, err := afero.TempFile(s.fs, s.dir, tempPrefix+escapeName(name)+".*")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = s.fs.Remove(tmpName)
		return fmt.Errorf("writing blob %s: %w", name, err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		_ = s.fs.Remove(tmpName)
		return fmt.Errorf("syncing blob %s: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		_ = s.fs.Remove(tmpName)
		return fmt.Errorf("closing blob %s: %w", name, err)
	}

	if err := s.fs.Rename(tmpName, target); err != nil {
		_ = s.fs.Remove(tmpName)
		s.logger.Error("blob rename failed", "name", name, "err", err)
		return fmt.Errorf("replacing blob %s: %w", name, err)
	}

	s.logger.Debug("blob written", "name", name, "bytes", len(data))
	return nil
}

// Delete removes a blob.
func (s *FileStore) Delete(name string) error {
	err := s.fs.Remove(s.path(name))
	if errors.Is(err, fs.ErrNotExist) {
		return ErrNotFound
	}
	return err
}

// List returns every blob handle sorted by name.
func (s *FileStore) List() ([]Handle, error) {
	entries, err := afero.ReadDir(s.fs, s.dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading store directory: %w", err)
	}

	var handles []Handle
	for _, info := range entries {
		if info.IsDir() || strings.HasPrefix(info.Name(), tempPrefix) {
			continue
		}

		name, err := url.PathUnescape(info.Name())
		if err != nil {
			continue // not written by this store
		}

		handles = append(handles, Handle{
			Name:    name,
			Size:    info.Size(),
			ModTime: info.ModTime(),
		})
	}

	sort.Slice(handles, func(i, j int) bool {
		return handles[i].Name < handles[j].Name
	})
	return handles, nil
}

// Ensure FileStore implements Backend.
var _ Backend = (*FileStore)(nil)
