package blob

import (
	"encoding/binary"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/jamesainslie/syncstate/pkg/syncstate/logging"
)

// Key prefixes for the two records kept per blob.
const (
	prefixBlob = "b:" // blob content
	prefixMeta = "m:" // write time, 8 bytes big-endian UnixNano
)

// BadgerStore keeps blobs in a Badger database.
type BadgerStore struct {
	db     *badger.DB
	logger *logging.Logger
}

// OpenBadger opens or creates a Badger store at path.
func OpenBadger(path string) (*BadgerStore, error) {
	opts := badger.DefaultOptions(path)
	opts.Logger = nil // Disable badger logging

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("opening badger store: %w", err)
	}

	return &BadgerStore{db: db, logger: logging.Get("blob")}, nil
}

// OpenBadgerInMemory opens a Badger store that never touches disk.
func OpenBadgerInMemory() (*BadgerStore, error) {
	opts := badger.DefaultOptions("").WithInMemory(true)
	opts.Logger = nil

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("opening in-memory badger store: %w", err)
	}

	return &BadgerStore{db: db, logger: logging.Get("blob")}, nil
}

// Close closes the store.
func (s *BadgerStore) Close() error {
	return s.db.Close()
}

// FindByName implements Store.
func (s *BadgerStore) FindByName(name string) (Handle, error) {
	var h Handle

	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(prefixBlob + name))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrNotFound
		}
		if err != nil {
			return err
		}

		h = Handle{Name: name, Size: item.ValueSize()}
		h.ModTime, err = readModTime(txn, name)
		return err
	})

	if err != nil {
		return Handle{}, err
	}
	return h, nil
}

// GetContent implements Store.
func (s *BadgerStore) GetContent(h Handle) ([]byte, error) {
	var data []byte

	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(prefixBlob + h.Name))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrNotFound
		}
		if err != nil {
			return err
		}

		data, err = item.ValueCopy(nil)
		return err
	})

	if err != nil {
		return nil, err
	}
	return data, nil
}

// CreateOrUpdate implements Store. Content and write time are stored in
// one transaction.
func (s *BadgerStore) CreateOrUpdate(name string, data []byte) error {
	var stamp [8]byte
	binary.BigEndian.PutUint64(stamp[:], uint64(time.Now().UnixNano()))

	err := s.db.Update(func(txn *badger.Txn) error {
		if err := txn.Set([]byte(prefixBlob+name), data); err != nil {
			return err
		}
		return txn.Set([]byte(prefixMeta+name), stamp[:])
	})
	if err != nil {
		s.logger.Error("blob write failed", "name", name, "err", err)
		return fmt.Errorf("writing blob %s: %w", name, err)
	}

	s.logger.Debug("blob written", "name", name, "bytes", len(data))
	return nil
}

// Delete removes a blob and its metadata.
func (s *BadgerStore) Delete(name string) error {
	return s.db.Update(func(txn *badger.Txn) error {
		if _, err := txn.Get([]byte(prefixBlob + name)); errors.Is(err, badger.ErrKeyNotFound) {
			return ErrNotFound
		} else if err != nil {
			return err
		}

		if err := txn.Delete([]byte(prefixBlob + name)); err != nil {
			return err
		}
		return txn.Delete([]byte(prefixMeta + name))
	})
}

// List returns every blob handle in key order.
func (s *BadgerStore) List() ([]Handle, error) {
	var handles []Handle
	prefix := []byte(prefixBlob)

	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			item := it.Item()
			name := strings.TrimPrefix(string(item.Key()), prefixBlob)

			modTime, err := readModTime(txn, name)
			if err != nil {
				return err
			}

			handles = append(handles, Handle{
				Name:    name,
				Size:    item.ValueSize(),
				ModTime: modTime,
			})
		}
		return nil
	})

	if err != nil {
		return nil, err
	}
	return handles, nil
}

// readModTime loads the write time stored next to a blob.
// A missing or short metadata value yields the zero time.
func readModTime(txn *badger.Txn, name string) (time.Time, error) {
	item, err := txn.Get([]byte(prefixMeta + name))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return time.Time{}, nil
	}
	if err != nil {
		return time.Time{}, err
	}

	var modTime time.Time
	err = item.Value(func(val []byte) error {
		if len(val) < 8 {
			return nil
		}
		modTime = time.Unix(0, int64(binary.BigEndian.Uint64(val)))
		return nil
	})
	return modTime, err
}

// Ensure BadgerStore implements Backend.
var _ Backend = (*BadgerStore)(nil)
