// Package config provides configuration management for syncstate.
package config

// Default configuration values for syncstate.
const (
	// DefaultBackend is the snapshot store backend.
	DefaultBackend = "badger"

	// DefaultSnapshotName is the blob name the index persists to.
	DefaultSnapshotName = "sync-file.data"

	// DefaultFormat is the snapshot encoding.
	DefaultFormat = "gob"

	// DefaultRetentionDays is the default number of days to keep journal entries.
	DefaultRetentionDays = 30

	// DefaultLogMaxSize is the default log size before rotation.
	DefaultLogMaxSize = "10MB"
)

// DefaultComponentLevels are the per-component log levels written by default.
var DefaultComponentLevels = map[string]string{
	"index":   "info",
	"blob":    "warn",
	"journal": "info",
	"cli":     "info",
}
