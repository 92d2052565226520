// Package journal keeps a history of the change sets applied to a
// synchronized-state snapshot, one JSON file per successful update.
package journal

import "time"

// Batch describes one applied change set by unique name.
type Batch struct {
	// Snapshot is the blob name the change set was persisted to.
	Snapshot string

	// Created, Updated and Removed hold the unique names of each phase.
	Created []string
	Updated []string
	Removed []string

	// Total is the record count after the change set was applied.
	Total int
}

// Entry is a persisted journal record.
type Entry struct {
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	Snapshot  string    `json:"snapshot"`
	Created   []string  `json:"created,omitempty"`
	Updated   []string  `json:"updated,omitempty"`
	Removed   []string  `json:"removed,omitempty"`
	Summary   Summary   `json:"summary"`
}

// Summary contains counts for an entry.
type Summary struct {
	Created int `json:"created"`
	Updated int `json:"updated"`
	Removed int `json:"removed"`
	Total   int `json:"total"`
}
