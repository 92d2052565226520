package blob

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"

	"github.com/jamesainslie/syncstate/pkg/syncstate/logging"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS blobs (
	name       TEXT PRIMARY KEY,
	content    BLOB NOT NULL,
	updated_at INTEGER NOT NULL
)`

// SQLiteStore keeps blobs in a single SQLite table.
type SQLiteStore struct {
	conn   *sql.DB
	logger *logging.Logger
}

// OpenSQLite opens or creates a SQLite store. path may name the database
// file or a directory, in which case blobs.db is created inside it.
func OpenSQLite(path string) (*SQLiteStore, error) {
	if info, err := os.Stat(path); err == nil && info.IsDir() {
		path = filepath.Join(path, "blobs.db")
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating database directory: %w", err)
	}

	conn, err := sql.Open("sqlite3", "file:"+path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// One writer; the index is single-owner anyway.
	conn.SetMaxOpenConns(1)

	for _, stmt := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		sqliteSchema,
	} {
		if _, err := conn.Exec(stmt); err != nil {
			_ = conn.Close()
			return nil, fmt.Errorf("initializing database: %w", err)
		}
	}

	return &SQLiteStore{conn: conn, logger: logging.Get("blob")}, nil
}

// Close closes the database.
func (s *SQLiteStore) Close() error {
	if s.conn == nil {
		return nil
	}
	err := s.conn.Close()
	s.conn = nil
	return err
}

// FindByName implements Store.
func (s *SQLiteStore) FindByName(name string) (Handle, error) {
	var (
		size      int64
		updatedAt int64
	)

	err := s.conn.QueryRow(
		`SELECT length(content), updated_at FROM blobs WHERE name = ?`, name,
	).Scan(&size, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Handle{}, ErrNotFound
	}
	if err != nil {
		return Handle{}, fmt.Errorf("finding blob %s: %w", name, err)
	}

	return Handle{Name: name, Size: size, ModTime: time.Unix(0, updatedAt)}, nil
}

// GetContent implements Store.
func (s *SQLiteStore) GetContent(h Handle) ([]byte, error) {
	var data []byte

	err := s.conn.QueryRow(`SELECT content FROM blobs WHERE name = ?`, h.Name).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("reading blob %s: %w", h.Name, err)
	}
	if data == nil {
		data = []byte{}
	}
	return data, nil
}

// CreateOrUpdate implements Store.
func (s *SQLiteStore) CreateOrUpdate(name string, data []byte) error {
	if data == nil {
		data = []byte{}
	}

	_, err := s.conn.Exec(`
		INSERT INTO blobs (name, content, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET content = excluded.content, updated_at = excluded.updated_at`,
		name, data, time.Now().UnixNano(),
	)
	if err != nil {
		s.logger.Error("blob write failed", "name", name, "err", err)
		return fmt.Errorf("writing blob %s: %w", name, err)
	}

	s.logger.Debug("blob written", "name", name, "bytes", len(data))
	return nil
}

// Delete removes a blob.
func (s *SQLiteStore) Delete(name string) error {
	res, err := s.conn.Exec(`DELETE FROM blobs WHERE name = ?`, name)
	if err != nil {
		return fmt.Errorf("deleting blob %s: %w", name, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// List returns every blob handle sorted by name.
func (s *SQLiteStore) List() ([]Handle, error) {
	rows, err := s.conn.Query(`SELECT name, length(content), updated_at FROM blobs ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("listing blobs: %w", err)
	}
	defer rows.Close()

	var handles []Handle
	for rows.Next() {
		var (
			h         Handle
			updatedAt int64
		)
		if err := rows.Scan(&h.Name, &h.Size, &updatedAt); err != nil {
			return nil, err
		}
		h.ModTime = time.Unix(0, updatedAt)
		handles = append(handles, h)
	}
	return handles, rows.Err()
}

// Ensure SQLiteStore implements Backend.
var _ Backend = (*SQLiteStore)(nil)
