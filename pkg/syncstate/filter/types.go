// Package filter provides filtering, sorting, and limiting of index
// records for listing. It supports include/exclude glob patterns and a
// directory/file kind selector.
package filter

import (
	"errors"
	"fmt"
	"strings"
)

// SortField specifies the field to sort records by.
type SortField int

const (
	// SortName sorts records by unique name.
	SortName SortField = iota
	// SortHash sorts records by hash, then name.
	SortHash
	// SortKind sorts directories before files, then by name.
	SortKind
)

const (
	sortFieldName = "name"
	sortFieldHash = "hash"
	sortFieldKind = "kind"
)

// String returns the string representation of the sort field.
func (s SortField) String() string {
	switch s {
	case SortHash:
		return sortFieldHash
	case SortKind:
		return sortFieldKind
	default:
		return sortFieldName
	}
}

// ErrInvalidSortField indicates that the sort field string could not be parsed.
var ErrInvalidSortField = errors.New("invalid sort field")

// ParseSortField parses "name", "hash" or "kind" (case-insensitive).
func ParseSortField(s string) (SortField, error) {
	switch strings.ToLower(s) {
	case sortFieldName, "":
		return SortName, nil
	case sortFieldHash:
		return SortHash, nil
	case sortFieldKind:
		return SortKind, nil
	default:
		return SortName, fmt.Errorf("%w: %q", ErrInvalidSortField, s)
	}
}

// Kind selects directories, files, or both.
type Kind int

const (
	// KindAll matches every record.
	KindAll Kind = iota
	// KindDirs matches directory records only.
	KindDirs
	// KindFiles matches non-directory records only.
	KindFiles
)

// String returns the string representation of the kind.
func (k Kind) String() string {
	switch k {
	case KindDirs:
		return "dirs"
	case KindFiles:
		return "files"
	default:
		return "all"
	}
}
