package index

import "errors"

var (
	// ErrCorruptSnapshot is returned by New when the snapshot blob exists and
	// is readable but does not decode into a record set.
	ErrCorruptSnapshot = errors.New("corrupt snapshot")

	// ErrRecordNotFound is returned by UpdateRepository when a removed or
	// updated file is not in the record set.
	ErrRecordNotFound = errors.New("record not found")

	// ErrPersistFailed is returned by UpdateRepository when the record set
	// could not be written back to the store. In-memory changes are kept.
	ErrPersistFailed = errors.New("persisting snapshot failed")

	// ErrInvalidName is returned by New for an empty snapshot name.
	ErrInvalidName = errors.New("snapshot name cannot be empty")
)
