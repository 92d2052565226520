// Package output provides formatters for displaying index records and
// snapshot statistics in various output formats (pretty, plain, json,
// yaml, etc.).
//
// Formatters are looked up by name in a registry:
//
//	formatter, err := output.Get("pretty")
//	if err != nil {
//	    return err
//	}
//	var buf bytes.Buffer
//	if err := formatter.Format(&buf, output.NewResult(idx.Files())); err != nil {
//	    return err
//	}
package output

import (
	"bytes"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/jamesainslie/syncstate/pkg/syncstate/record"
)

// Kind labels used in every format.
const (
	KindDir  = "dir"
	KindFile = "file"
)

// Record is one row of output.
type Record struct {
	// Name is the unique name of the entry.
	Name string `json:"name" yaml:"name"`

	// Hash is the content fingerprint; empty for most directories.
	Hash string `json:"hash" yaml:"hash"`

	// Kind is KindDir or KindFile.
	Kind string `json:"kind" yaml:"kind"`
}

// FromFile converts an index record to an output row.
func FromFile(f record.File) Record {
	kind := KindFile
	if f.IsDir() {
		kind = KindDir
	}
	return Record{Name: f.UniqueName(), Hash: f.Hash(), Kind: kind}
}

// Snapshot describes the stored snapshot blob.
type Snapshot struct {
	// Name is the blob name.
	Name string `json:"name" yaml:"name"`

	// Backend is the blob store backend.
	Backend string `json:"backend,omitempty" yaml:"backend,omitempty"`

	// Path is the blob store location.
	Path string `json:"path,omitempty" yaml:"path,omitempty"`

	// Format is the configured snapshot codec.
	Format string `json:"format,omitempty" yaml:"format,omitempty"`

	// Size is the encoded snapshot size in bytes; 0 if not stored yet.
	Size int64 `json:"size" yaml:"size"`

	// ModTime is when the snapshot was last written; zero when there is
	// no snapshot yet.
	ModTime time.Time `json:"mod_time,omitzero" yaml:"mod_time,omitempty"`
}

// Result contains the complete output data for formatting.
type Result struct {
	// Records are the rows to print, in display order.
	Records []Record `json:"records" yaml:"records"`

	// Snapshot describes where the records came from.
	Snapshot Snapshot `json:"snapshot" yaml:"snapshot"`

	// Total is the number of records in the index, before filtering.
	Total int `json:"total" yaml:"total"`

	// Warnings contains messages to show after the table.
	Warnings []string `json:"warnings,omitempty" yaml:"warnings,omitempty"`
}

// NewResult builds a Result from index records. Total is set to the
// number of records given.
func NewResult(files []record.File) *Result {
	rows := make([]Record, len(files))
	for i, f := range files {
		rows[i] = FromFile(f)
	}
	return &Result{Records: rows, Total: len(files)}
}

// Dirs returns the number of directory rows.
func (r *Result) Dirs() int {
	n := 0
	for _, rec := range r.Records {
		if rec.Kind == KindDir {
			n++
		}
	}
	return n
}

// Files returns the number of file rows.
func (r *Result) Files() int {
	return len(r.Records) - r.Dirs()
}

// Formatter is the interface that all output formatters must implement.
type Formatter interface {
	// Format writes the formatted output to the buffer.
	Format(w *bytes.Buffer, r *Result) error
}

// FormatterFactory is a function that creates a new Formatter instance.
type FormatterFactory func() Formatter

// Registry manages formatter registration and lookup.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]FormatterFactory
}

// NewRegistry creates a new formatter registry.
func NewRegistry() *Registry {
	return &Registry{
		factories: make(map[string]FormatterFactory),
	}
}

// Register adds a formatter factory to the registry, replacing any
// existing formatter with the same name.
func (r *Registry) Register(name string, factory FormatterFactory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[name] = factory
}

// Get returns a new formatter instance by name.
func (r *Registry) Get(name string) (Formatter, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	factory, ok := r.factories[name]
	if !ok {
		return nil, fmt.Errorf("unknown formatter: %s", name)
	}
	return factory(), nil
}

// Available returns a sorted list of all registered formatter names.
func (r *Registry) Available() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// DefaultRegistry is the global formatter registry.
var DefaultRegistry = NewRegistry()

// Register adds a formatter factory to the default registry.
func Register(name string, factory FormatterFactory) {
	DefaultRegistry.Register(name, factory)
}

// Get returns a new formatter instance from the default registry.
func Get(name string) (Formatter, error) {
	return DefaultRegistry.Get(name)
}

// Available returns all formatter names from the default registry.
func Available() []string {
	return DefaultRegistry.Available()
}
