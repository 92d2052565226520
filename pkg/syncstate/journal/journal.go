package journal

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/afero"

	"github.com/jamesainslie/syncstate/pkg/syncstate/logging"
)

// ErrEntryNotFound is returned by Get for an unknown entry ID.
var ErrEntryNotFound = errors.New("journal entry not found")

// Journal writes entries to a directory.
type Journal struct {
	fs     afero.Fs
	dir    string
	mu     sync.Mutex
	now    func() time.Time
	logger *logging.Logger
}

// New creates a journal in dir on the OS filesystem.
// The directory is created on the first write.
func New(dir string) (*Journal, error) {
	return NewWithFs(afero.NewOsFs(), dir)
}

// NewWithFs creates a journal in dir on fsys.
func NewWithFs(fsys afero.Fs, dir string) (*Journal, error) {
	if dir == "" {
		return nil, errors.New("journal directory cannot be empty")
	}
	return &Journal{
		fs:     fsys,
		dir:    dir,
		now:    time.Now,
		logger: logging.Get("journal"),
	}, nil
}

// Dir returns the journal directory.
func (j *Journal) Dir() string {
	return j.dir
}

// Record persists an entry for b and returns it.
func (j *Journal) Record(b Batch) (*Entry, error) {
	j.mu.Lock()
	defer j.mu.Unlock()

	entry := &Entry{
		ID:        uuid.NewString(),
		Timestamp: j.now().UTC(),
		Snapshot:  b.Snapshot,
		Created:   b.Created,
		Updated:   b.Updated,
		Removed:   b.Removed,
		Summary: Summary{
			Created: len(b.Created),
			Updated: len(b.Updated),
			Removed: len(b.Removed),
			Total:   b.Total,
		},
	}

	if err := j.writeEntry(entry); err != nil {
		return nil, fmt.Errorf("failed to write journal entry: %w", err)
	}

	j.logger.Debug("journal entry written", "id", entry.ID, "snapshot", entry.Snapshot)
	return entry, nil
}

// writeEntry writes entry atomically using a temp file and rename.
func (j *Journal) writeEntry(entry *Entry) error {
	if err := j.fs.MkdirAll(j.dir, 0o755); err != nil {
		return fmt.Errorf("creating journal directory: %w", err)
	}

	data, err := json.MarshalIndent(entry, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal entry: %w", err)
	}

	path := filepath.Join(j.dir, entryFilename(entry))
	tmpPath := path + ".tmp"
	if err := afero.WriteFile(j.fs, tmpPath, data, 0o644); err != nil {
		return fmt.Errorf("failed to write temp file: %w", err)
	}

	if err := j.fs.Rename(tmpPath, path); err != nil {
		_ = j.fs.Remove(tmpPath)
		return fmt.Errorf("failed to rename temp file: %w", err)
	}

	return nil
}

// entryFilename orders files by time, then ID.
func entryFilename(entry *Entry) string {
	return fmt.Sprintf("%s-%s.json", entry.Timestamp.Format("20060102T150405.000000000Z"), entry.ID)
}

// List returns entries newest first. A limit <= 0 returns all entries.
func (j *Journal) List(limit int) ([]Entry, error) {
	j.mu.Lock()
	defer j.mu.Unlock()

	entries, err := j.readAll()
	if err != nil {
		return nil, err
	}

	sort.SliceStable(entries, func(a, b int) bool {
		return entries[a].Timestamp.After(entries[b].Timestamp)
	})

	if limit > 0 && len(entries) > limit {
		entries = entries[:limit]
	}
	return entries, nil
}

// Get returns the entry with the given ID.
func (j *Journal) Get(id string) (*Entry, error) {
	if id == "" {
		return nil, errors.New("entry ID cannot be empty")
	}

	j.mu.Lock()
	defer j.mu.Unlock()

	entries, err := j.readAll()
	if err != nil {
		return nil, err
	}
	for i := range entries {
		if entries[i].ID == id {
			return &entries[i], nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrEntryNotFound, id)
}

// Prune removes entries older than retentionDays and returns how many were
// removed. A retention of zero or less keeps everything.
func (j *Journal) Prune(retentionDays int) (int, error) {
	if retentionDays <= 0 {
		return 0, nil
	}

	j.mu.Lock()
	defer j.mu.Unlock()

	cutoff := j.now().AddDate(0, 0, -retentionDays)

	names, err := j.entryFiles()
	if err != nil {
		return 0, err
	}

	removed := 0
	for _, name := range names {
		entry, err := j.readEntryFile(name)
		if err != nil {
			continue
		}
		if !entry.Timestamp.Before(cutoff) {
			continue
		}
		if err := j.fs.Remove(filepath.Join(j.dir, name)); err != nil {
			j.logger.Warn("journal prune failed", "file", name, "err", err)
			continue
		}
		removed++
	}

	return removed, nil
}

// readAll parses every entry file, skipping unreadable ones.
func (j *Journal) readAll() ([]Entry, error) {
	names, err := j.entryFiles()
	if err != nil {
		return nil, err
	}

	entries := []Entry{}
	for _, name := range names {
		entry, err := j.readEntryFile(name)
		if err != nil {
			j.logger.Warn("skipping unreadable journal entry", "file", name, "err", err)
			continue
		}
		entries = append(entries, *entry)
	}
	return entries, nil
}

// entryFiles lists entry file names in the journal directory.
func (j *Journal) entryFiles() ([]string, error) {
	infos, err := afero.ReadDir(j.fs, j.dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read journal directory: %w", err)
	}

	var names []string
	for _, info := range infos {
		if info.IsDir() || !strings.HasSuffix(info.Name(), ".json") {
			continue
		}
		names = append(names, info.Name())
	}
	return names, nil
}

// readEntryFile reads and parses one entry file.
func (j *Journal) readEntryFile(name string) (*Entry, error) {
	data, err := afero.ReadFile(j.fs, filepath.Join(j.dir, name))
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	var entry Entry
	if err := json.Unmarshal(data, &entry); err != nil {
		return nil, fmt.Errorf("failed to unmarshal entry: %w", err)
	}
	return &entry, nil
}
