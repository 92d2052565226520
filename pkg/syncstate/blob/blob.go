// Package blob provides named-blob storage for index snapshots.
//
// A store keeps opaque byte blobs under string names. The index only needs
// FindByName, GetContent and CreateOrUpdate; the remaining methods serve the
// CLI and tests.
package blob

import (
	"errors"
	"fmt"
	"time"
)

// ErrNotFound is returned when no blob exists under a name.
var ErrNotFound = errors.New("blob not found")

// ErrUnknownBackend is returned by Open for an unsupported backend name.
var ErrUnknownBackend = errors.New("unknown store backend")

// Handle identifies a located blob.
type Handle struct {
	// Name is the blob name.
	Name string `json:"name" yaml:"name"`

	// Size is the blob length in bytes.
	Size int64 `json:"size" yaml:"size"`

	// ModTime is when the blob was last written.
	ModTime time.Time `json:"mod_time" yaml:"mod_time"`
}

// Store is the persistence contract consumed by the index.
type Store interface {
	// FindByName locates a blob. It returns ErrNotFound when absent.
	FindByName(name string) (Handle, error)

	// GetContent reads the bytes of a located blob.
	GetContent(h Handle) ([]byte, error)

	// CreateOrUpdate writes data under name, replacing any existing blob.
	CreateOrUpdate(name string, data []byte) error
}

// Backend is a Store that owns resources and can enumerate its blobs.
type Backend interface {
	Store

	// List returns handles for every blob, sorted by name.
	List() ([]Handle, error)

	// Delete removes a blob. Deleting a missing blob returns ErrNotFound.
	Delete(name string) error

	// Close releases the backend.
	Close() error
}

// Backend names accepted by Open.
const (
	BackendBadger = "badger"
	BackendDir    = "dir"
	BackendSQLite = "sqlite"
)

// Open opens the named backend rooted at path.
func Open(backend, path string) (Backend, error) {
	switch backend {
	case BackendBadger, "":
		return OpenBadger(path)
	case BackendDir:
		return OpenDir(path)
	case BackendSQLite:
		return OpenSQLite(path)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownBackend, backend)
	}
}

// Backends returns the supported backend names.
func Backends() []string {
	return []string{BackendBadger, BackendDir, BackendSQLite}
}
