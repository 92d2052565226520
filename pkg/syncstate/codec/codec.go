// Package codec encodes the synchronized record set into a snapshot blob
// and decodes it back.
//
// Every codec produces a versioned document holding the records sorted by
// unique name, so encoding is deterministic. Decode reports malformed input
// with an error wrapping ErrInvalid and returns an empty, non-nil slice for a
// valid snapshot with no records.
//
// Basic usage:
//
//	c, err := codec.Get("gob")
//	if err != nil {
//	    return err
//	}
//	data, err := c.Encode(records)
package codec

import (
	"errors"
	"fmt"
	"slices"
	"sort"
	"unicode/utf8"

	"github.com/jamesainslie/syncstate/pkg/syncstate/record"
)

// DocumentVersion is incremented when the snapshot document layout changes.
const DocumentVersion = 1

// DefaultFormat is the format used when none is configured.
const DefaultFormat = "gob"

var (
	// ErrInvalid is returned when data cannot be decoded into a record set.
	ErrInvalid = errors.New("invalid snapshot")

	// ErrUnknownFormat is returned for an unregistered format name.
	ErrUnknownFormat = errors.New("unknown snapshot format")
)

// Codec converts a record set to bytes and back.
type Codec interface {
	// Format returns the registered format name.
	Format() string

	// Encode serializes records. The input slice is not modified.
	Encode(records []record.Record) ([]byte, error)

	// Decode deserializes data produced by Encode.
	Decode(data []byte) ([]record.Record, error)
}

// document is the payload written by every format.
type document struct {
	Version int             `json:"version" yaml:"version" toml:"version"`
	Records []record.Record `json:"records" yaml:"records" toml:"records"`
}

// newDocument returns a document with a sorted copy of records.
func newDocument(records []record.Record) document {
	sorted := slices.Clone(records)
	record.SortByName(sorted)
	if sorted == nil {
		sorted = []record.Record{}
	}
	return document{Version: DocumentVersion, Records: sorted}
}

// validate checks a decoded document and returns its records.
func (d document) validate() ([]record.Record, error) {
	if d.Version != DocumentVersion {
		return nil, fmt.Errorf("%w: unsupported version %d", ErrInvalid, d.Version)
	}
	if d.Records == nil {
		return []record.Record{}, nil
	}
	return d.Records, nil
}

// requireUTF8 rejects records whose text fields a format cannot carry
// byte for byte.
func requireUTF8(format string, records []record.Record) error {
	for _, r := range records {
		if !utf8.ValidString(r.Name) {
			return fmt.Errorf("%w: %s cannot encode non-UTF-8 name %q", ErrInvalid, format, r.Name)
		}
		if !utf8.ValidString(r.Checksum) {
			return fmt.Errorf("%w: %s cannot encode non-UTF-8 hash of %q", ErrInvalid, format, r.Name)
		}
	}
	return nil
}

// formatIDs assigns the byte written into a frame header for each format.
var formatIDs = map[string]byte{
	"gob":  1,
	"json": 2,
	"yaml": 3,
	"toml": 4,
}

// raw returns the unframed codec for a format name.
func raw(format string) (Codec, error) {
	switch format {
	case "gob":
		return Gob{}, nil
	case "json":
		return JSON{}, nil
	case "yaml", "yml":
		return YAML{}, nil
	case "toml":
		return TOML{}, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownFormat, format)
	}
}

// Get returns the framed codec for a format name.
// An empty name selects DefaultFormat.
func Get(format string) (Codec, error) {
	if format == "" {
		format = DefaultFormat
	}
	inner, err := raw(format)
	if err != nil {
		return nil, err
	}
	return Framed(inner), nil
}

// Default returns the framed codec for DefaultFormat.
func Default() Codec {
	return Framed(Gob{})
}

// Available returns the sorted list of format names.
func Available() []string {
	names := make([]string, 0, len(formatIDs))
	for name := range formatIDs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
