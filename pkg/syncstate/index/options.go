package index

import (
	"github.com/jamesainslie/syncstate/pkg/syncstate/codec"
	"github.com/jamesainslie/syncstate/pkg/syncstate/journal"
	"github.com/jamesainslie/syncstate/pkg/syncstate/logging"
)

// BatchRecorder receives a description of every persisted change set.
// *journal.Journal implements it.
type BatchRecorder interface {
	Record(b journal.Batch) (*journal.Entry, error)
}

// Option configures an Index.
type Option func(*Index)

// WithCodec sets the snapshot codec. The default is codec.Default().
func WithCodec(c codec.Codec) Option {
	return func(idx *Index) {
		if c != nil {
			idx.codec = c
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *logging.Logger) Option {
	return func(idx *Index) {
		if l != nil {
			idx.logger = l
		}
	}
}

// WithJournal records every successful UpdateRepository call to r.
func WithJournal(r BatchRecorder) Option {
	return func(idx *Index) {
		idx.journal = r
	}
}
