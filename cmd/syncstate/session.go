package main

import (
	"errors"
	"fmt"

	"github.com/jamesainslie/syncstate/pkg/syncstate/blob"
	"github.com/jamesainslie/syncstate/pkg/syncstate/codec"
	"github.com/jamesainslie/syncstate/pkg/syncstate/index"
	"github.com/jamesainslie/syncstate/pkg/syncstate/journal"
	"github.com/jamesainslie/syncstate/pkg/syncstate/output"
)

// session is an open store with the configured index loaded over it.
type session struct {
	store   blob.Backend
	index   *index.Index
	journal *journal.Journal
	backend string
	path    string
	format  string
}

// openSession opens the configured store and loads the index.
func openSession() (*session, error) {
	cfg := appConfig

	c, err := codec.Get(cfg.Snapshot.Format)
	if err != nil {
		return nil, err
	}

	path := cfg.StorePath()
	store, err := blob.Open(cfg.Store.Backend, path)
	if err != nil {
		return nil, err
	}

	s := &session{
		store:   store,
		backend: cfg.Store.Backend,
		path:    path,
		format:  c.Format(),
	}

	opts := []index.Option{index.WithCodec(c)}
	if cfg.Journal.Enabled {
		j, err := journal.New(cfg.JournalPath())
		if err != nil {
			_ = store.Close()
			return nil, err
		}
		s.journal = j
		opts = append(opts, index.WithJournal(j))
	}

	idx, err := index.New(store, cfg.Snapshot.Name, opts...)
	if err != nil {
		_ = store.Close()
		return nil, err
	}
	s.index = idx

	logger.Debug("session opened", "backend", s.backend, "path", path, "records", idx.Len())
	return s, nil
}

// Close releases the store.
func (s *session) Close() error {
	if err := s.store.Close(); err != nil {
		return fmt.Errorf("closing store: %w", err)
	}
	return nil
}

// snapshotInfo describes the stored snapshot blob.
func (s *session) snapshotInfo() output.Snapshot {
	info := output.Snapshot{
		Name:    s.index.Name(),
		Backend: s.backend,
		Path:    s.path,
		Format:  s.format,
	}

	h, err := s.store.FindByName(s.index.Name())
	switch {
	case err == nil:
		info.Size = h.Size
		info.ModTime = h.ModTime
	case !errors.Is(err, blob.ErrNotFound):
		logger.Warn("snapshot lookup failed", "snapshot", s.index.Name(), "err", err)
	}
	return info
}

// withSession opens a session, runs fn and closes the session.
func withSession(fn func(s *session) error) error {
	s, err := openSession()
	if err != nil {
		return err
	}
	runErr := fn(s)
	if err := s.Close(); err != nil && runErr == nil {
		return err
	}
	return runErr
}
