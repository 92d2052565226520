// Package index implements the synchronized-state index: the set of files
// already synchronized, loaded from a named snapshot blob and written back
// after every change set.
//
// A sync pass looks like:
//
//	idx, err := index.New(store, "sync-file.data")
//	if err != nil {
//	    return err
//	}
//	for _, f := range discovered {
//	    idx.MarkFileAsDirty(f)
//	    if prev, ok := idx.FindFile(f); !ok || prev.Hash() != f.Hash() {
//	        // new or changed
//	    }
//	}
//	gone := idx.NotDirtyFiles()
//	err = idx.UpdateRepository(created, updated, gone)
//
// An Index is not safe for concurrent use, and only one Index should own a
// snapshot name at a time: concurrent owners overwrite each other's writes.
package index

import (
	"errors"
	"fmt"

	"github.com/jamesainslie/syncstate/pkg/syncstate/blob"
	"github.com/jamesainslie/syncstate/pkg/syncstate/codec"
	"github.com/jamesainslie/syncstate/pkg/syncstate/journal"
	"github.com/jamesainslie/syncstate/pkg/syncstate/logging"
	"github.com/jamesainslie/syncstate/pkg/syncstate/record"
)

// Index tracks the last synchronized state of a set of files.
type Index struct {
	store   blob.Store
	name    string
	codec   codec.Codec
	journal BatchRecorder
	logger  *logging.Logger

	files map[string]record.File
	dirty map[string]record.File
}

// New builds an index over the snapshot blob called name and loads it.
//
// A missing or unreadable blob yields an empty index. A blob that is read
// but fails to decode returns ErrCorruptSnapshot.
func New(store blob.Store, name string, opts ...Option) (*Index, error) {
	if store == nil {
		return nil, errors.New("index: nil store")
	}
	if name == "" {
		return nil, ErrInvalidName
	}

	idx := &Index{
		store:  store,
		name:   name,
		codec:  codec.Default(),
		logger: logging.Get("index"),
		files:  make(map[string]record.File),
		dirty:  make(map[string]record.File),
	}
	for _, opt := range opts {
		opt(idx)
	}

	if err := idx.load(); err != nil {
		return nil, err
	}
	return idx, nil
}

// load populates the record set from the snapshot blob.
func (idx *Index) load() error {
	h, err := idx.store.FindByName(idx.name)
	if errors.Is(err, blob.ErrNotFound) {
		idx.logger.Debug("no snapshot, starting empty", "snapshot", idx.name)
		return nil
	}
	if err != nil {
		idx.logger.Warn("snapshot lookup failed, starting empty", "snapshot", idx.name, "err", err)
		return nil
	}

	data, err := idx.store.GetContent(h)
	if err != nil {
		idx.logger.Warn("snapshot unreadable, starting empty", "snapshot", idx.name, "err", err)
		return nil
	}

	records, err := idx.codec.Decode(data)
	if err != nil {
		idx.logger.Error("snapshot corrupt", "snapshot", idx.name, "bytes", len(data), "err", err)
		return fmt.Errorf("%w: %s: %w", ErrCorruptSnapshot, idx.name, err)
	}

	for _, r := range records {
		idx.files[r.Name] = r
	}

	idx.logger.Debug("snapshot loaded", "snapshot", idx.name, "records", len(idx.files))
	return nil
}

// Name returns the snapshot blob name.
func (idx *Index) Name() string {
	return idx.name
}

// IsEmpty reports whether the record set has no entries.
func (idx *Index) IsEmpty() bool {
	return len(idx.files) == 0
}

// Len returns the number of records.
func (idx *Index) Len() int {
	return len(idx.files)
}

// FindFile returns the stored record with candidate's unique name.
func (idx *Index) FindFile(candidate record.File) (record.File, bool) {
	f, ok := idx.files[candidate.UniqueName()]
	return f, ok
}

// Files returns every record sorted by unique name.
func (idx *Index) Files() []record.File {
	files := make([]record.File, 0, len(idx.files))
	for _, f := range idx.files {
		files = append(files, f)
	}
	record.SortByName(files)
	return files
}

// MarkFileAsDirty records that f was seen in the current pass.
// f need not be in the record set.
func (idx *Index) MarkFileAsDirty(f record.File) {
	idx.dirty[f.UniqueName()] = f
}

// DirtyCount returns the number of names marked in this pass.
func (idx *Index) DirtyCount() int {
	return len(idx.dirty)
}

// NotDirtyFiles returns the records not marked dirty, sorted by unique
// name. These were not seen in the current pass and are deletion
// candidates.
func (idx *Index) NotDirtyFiles() []record.File {
	var files []record.File
	for name, f := range idx.files {
		if _, seen := idx.dirty[name]; !seen {
			files = append(files, f)
		}
	}
	record.SortByName(files)
	return files
}

// UpdateRepository applies a change set and persists the record set.
//
// Phases run in order: remove, create, update, persist. Removing or
// updating a name that is not in the record set returns ErrRecordNotFound
// at that point; changes made by earlier phases of the same call stay
// applied in memory and nothing is persisted. Create overwrites
// unconditionally. A store failure returns ErrPersistFailed and also
// leaves the in-memory changes in place. Exactly one write is attempted
// per call.
func (idx *Index) UpdateRepository(created, updated, removed []record.File) error {
	if err := idx.removeFiles(removed); err != nil {
		return err
	}
	idx.createFiles(created)
	if err := idx.updateFiles(updated); err != nil {
		return err
	}
	if err := idx.persist(); err != nil {
		return err
	}

	idx.logger.Info("change set applied",
		"snapshot", idx.name,
		"created", len(created),
		"updated", len(updated),
		"removed", len(removed),
		"total", len(idx.files),
	)

	if idx.journal != nil {
		_, err := idx.journal.Record(journal.Batch{
			Snapshot: idx.name,
			Created:  record.Names(created),
			Updated:  record.Names(updated),
			Removed:  record.Names(removed),
			Total:    len(idx.files),
		})
		if err != nil {
			idx.logger.Warn("journal write failed", "snapshot", idx.name, "err", err)
		}
	}

	return nil
}

func (idx *Index) removeFiles(files []record.File) error {
	for _, f := range files {
		name := f.UniqueName()
		if _, ok := idx.files[name]; !ok {
			return fmt.Errorf("%w: cannot remove %s", ErrRecordNotFound, name)
		}
		delete(idx.files, name)
	}
	return nil
}

func (idx *Index) createFiles(files []record.File) {
	for _, f := range files {
		idx.files[f.UniqueName()] = f
	}
}

func (idx *Index) updateFiles(files []record.File) error {
	for _, f := range files {
		name := f.UniqueName()
		if _, ok := idx.files[name]; !ok {
			return fmt.Errorf("%w: cannot update %s", ErrRecordNotFound, name)
		}
		idx.files[name] = f
	}
	return nil
}

// persist encodes the record set and writes it to the snapshot blob.
func (idx *Index) persist() error {
	records := make([]record.Record, 0, len(idx.files))
	for _, f := range idx.files {
		records = append(records, record.From(f))
	}

	data, err := idx.codec.Encode(records)
	if err != nil {
		idx.logger.Error("snapshot encode failed", "snapshot", idx.name, "err", err)
		return fmt.Errorf("%w: encoding %s: %w", ErrPersistFailed, idx.name, err)
	}

	if err := idx.store.CreateOrUpdate(idx.name, data); err != nil {
		idx.logger.Error("snapshot write failed", "snapshot", idx.name, "err", err)
		return fmt.Errorf("%w: writing %s: %w", ErrPersistFailed, idx.name, err)
	}
	return nil
}
