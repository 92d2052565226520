package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/jamesainslie/syncstate/pkg/syncstate/record"
)

// ErrInvalidChangeSet indicates a change set that cannot be applied.
var ErrInvalidChangeSet = errors.New("invalid change set")

// changeSet is the on-disk form of one UpdateRepository call.
//
//	created:
//	  - {name: /a.txt, hash: 9f2c}
//	  - {name: /dir, is_dir: true}
//	updated:
//	  - {name: /b.txt, hash: 77aa}
//	removed: [/old.txt]
type changeSet struct {
	Created []record.Record `json:"created" yaml:"created"`
	Updated []record.Record `json:"updated" yaml:"updated"`
	Removed []string        `json:"removed" yaml:"removed"`
}

// parseChangeSet decodes a change set. JSON is used when source ends in
// .json or the content starts with '{'; YAML otherwise. Unknown fields are
// rejected.
func parseChangeSet(data []byte, source string) (*changeSet, error) {
	var cs changeSet

	trimmed := bytes.TrimSpace(data)
	if strings.EqualFold(filepath.Ext(source), ".json") || bytes.HasPrefix(trimmed, []byte("{")) {
		dec := json.NewDecoder(bytes.NewReader(trimmed))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&cs); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidChangeSet, err)
		}
	} else if len(trimmed) > 0 {
		dec := yaml.NewDecoder(bytes.NewReader(trimmed))
		dec.KnownFields(true)
		if err := dec.Decode(&cs); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidChangeSet, err)
		}
	}

	if err := cs.validate(); err != nil {
		return nil, err
	}
	return &cs, nil
}

func (cs *changeSet) validate() error {
	for i, r := range cs.Created {
		if r.Name == "" {
			return fmt.Errorf("%w: created[%d] has no name", ErrInvalidChangeSet, i)
		}
	}
	for i, r := range cs.Updated {
		if r.Name == "" {
			return fmt.Errorf("%w: updated[%d] has no name", ErrInvalidChangeSet, i)
		}
	}
	for i, name := range cs.Removed {
		if name == "" {
			return fmt.Errorf("%w: removed[%d] is empty", ErrInvalidChangeSet, i)
		}
	}
	return nil
}

// Empty reports whether the change set has no entries.
func (cs *changeSet) Empty() bool {
	return len(cs.Created) == 0 && len(cs.Updated) == 0 && len(cs.Removed) == 0
}

func (cs *changeSet) created() []record.File { return asFiles(cs.Created) }
func (cs *changeSet) updated() []record.File { return asFiles(cs.Updated) }
func (cs *changeSet) removed() []record.File { return namesAsFiles(cs.Removed) }

func asFiles(records []record.Record) []record.File {
	files := make([]record.File, len(records))
	for i, r := range records {
		files[i] = r
	}
	return files
}

// namesAsFiles wraps bare names; removal matches by name only.
func namesAsFiles(names []string) []record.File {
	files := make([]record.File, len(names))
	for i, n := range names {
		files[i] = record.New(n, "")
	}
	return files
}
