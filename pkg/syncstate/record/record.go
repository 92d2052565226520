// Package record provides the file record types shared by the index,
// the snapshot codecs and the CLI.
package record

import (
	"cmp"
	"slices"
)

// File is a previously observed filesystem entry as supplied by the
// synchronization tool. Implementations are treated as read-only values.
type File interface {
	// UniqueName is the stable identity of the entry (usually a path).
	UniqueName() string

	// Hash is the content fingerprint. Directories may report "".
	Hash() string

	// IsDir reports whether the entry is a directory.
	IsDir() bool
}

// Record is the concrete, serializable File.
type Record struct {
	// Name is the unique name of the entry.
	Name string `json:"name" yaml:"name" toml:"name"`

	// Checksum is the content fingerprint.
	Checksum string `json:"hash" yaml:"hash" toml:"hash"`

	// Dir is the directory flag.
	Dir bool `json:"is_dir" yaml:"is_dir" toml:"is_dir"`
}

// New returns a file record.
func New(name, hash string) Record {
	return Record{Name: name, Checksum: hash}
}

// NewDir returns a directory record with an empty hash.
func NewDir(name string) Record {
	return Record{Name: name, Dir: true}
}

// UniqueName implements File.
func (r Record) UniqueName() string { return r.Name }

// Hash implements File.
func (r Record) Hash() string { return r.Checksum }

// IsDir implements File.
func (r Record) IsDir() bool { return r.Dir }

// Ensure Record implements File.
var _ File = Record{}

// From copies any File into a Record.
func From(f File) Record {
	if r, ok := f.(Record); ok {
		return r
	}
	return Record{
		Name:     f.UniqueName(),
		Checksum: f.Hash(),
		Dir:      f.IsDir(),
	}
}

// Equal reports whether two files carry the same name, hash and directory flag.
func Equal(a, b File) bool {
	return a.UniqueName() == b.UniqueName() &&
		a.Hash() == b.Hash() &&
		a.IsDir() == b.IsDir()
}

// SortByName sorts files in place by unique name.
func SortByName[F File](files []F) {
	slices.SortFunc(files, func(a, b F) int {
		return cmp.Compare(a.UniqueName(), b.UniqueName())
	})
}

// Names returns the unique names of files, in order.
func Names[F File](files []F) []string {
	names := make([]string, len(files))
	for i, f := range files {
		names[i] = f.UniqueName()
	}
	return names
}
