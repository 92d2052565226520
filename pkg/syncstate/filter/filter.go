package filter

import (
	"cmp"
	"errors"
	"fmt"
	"slices"

	"github.com/gobwas/glob"

	"github.com/jamesainslie/syncstate/pkg/syncstate/record"
)

// ErrInvalidPattern indicates that a glob pattern could not be compiled.
var ErrInvalidPattern = errors.New("invalid glob pattern")

// Filter defines criteria for filtering, sorting, and limiting record lists.
type Filter struct {
	// Include contains glob patterns. If non-empty, names must match at least one.
	Include []string

	// Exclude contains glob patterns. Matching names are excluded.
	Exclude []string

	// Kind restricts results to directories or files.
	Kind Kind

	// SortBy specifies the field to sort results by.
	SortBy SortField

	// SortDescending reverses the sort order.
	SortDescending bool

	// Limit is the maximum number of records to return. 0 means unlimited.
	Limit int
}

// Option is a functional option for configuring a Filter.
type Option func(*Filter)

// New creates a Filter with the given options. The zero configuration
// matches everything, sorted by name ascending, unlimited.
func New(opts ...Option) *Filter {
	f := &Filter{}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// WithLimit sets the maximum number of records to return.
// Negative values mean unlimited.
func WithLimit(limit int) Option {
	return func(f *Filter) {
		if limit < 0 {
			limit = 0
		}
		f.Limit = limit
	}
}

// WithInclude sets the include glob patterns.
func WithInclude(patterns ...string) Option {
	return func(f *Filter) {
		f.Include = patterns
	}
}

// WithExclude sets the exclude glob patterns.
func WithExclude(patterns ...string) Option {
	return func(f *Filter) {
		f.Exclude = patterns
	}
}

// WithKind restricts results to directories or files.
func WithKind(k Kind) Option {
	return func(f *Filter) {
		f.Kind = k
	}
}

// WithSortBy sets the field to sort results by.
func WithSortBy(field SortField) Option {
	return func(f *Filter) {
		f.SortBy = field
	}
}

// WithSortDescending sets whether to sort in descending order.
func WithSortDescending(desc bool) Option {
	return func(f *Filter) {
		f.SortDescending = desc
	}
}

// Validate compiles every pattern and reports the first one that fails.
func (f *Filter) Validate() error {
	for _, p := range append(slices.Clone(f.Include), f.Exclude...) {
		if _, err := glob.Compile(p, '/'); err != nil {
			return fmt.Errorf("%w: %q: %w", ErrInvalidPattern, p, err)
		}
	}
	return nil
}

// Match reports whether r passes the kind and pattern criteria.
func (f *Filter) Match(r record.File) bool {
	switch f.Kind {
	case KindDirs:
		if !r.IsDir() {
			return false
		}
	case KindFiles:
		if r.IsDir() {
			return false
		}
	}

	name := r.UniqueName()
	if matchesAny(name, f.Exclude) {
		return false
	}
	if len(f.Include) > 0 && !matchesAny(name, f.Include) {
		return false
	}
	return true
}

// matchesAny returns true if name matches any of the glob patterns.
// Invalid patterns never match.
func matchesAny(name string, patterns []string) bool {
	for _, pattern := range patterns {
		g, err := glob.Compile(pattern, '/')
		if err != nil {
			continue
		}
		if g.Match(name) {
			return true
		}
	}
	return false
}

// Sort returns a sorted copy of records. The input is not modified.
func (f *Filter) Sort(records []record.File) []record.File {
	sorted := slices.Clone(records)
	if sorted == nil {
		return []record.File{}
	}

	slices.SortStableFunc(sorted, func(a, b record.File) int {
		var result int
		switch f.SortBy {
		case SortHash:
			result = cmp.Or(
				cmp.Compare(a.Hash(), b.Hash()),
				cmp.Compare(a.UniqueName(), b.UniqueName()),
			)
		case SortKind:
			result = cmp.Or(
				compareDirFirst(a, b),
				cmp.Compare(a.UniqueName(), b.UniqueName()),
			)
		default:
			result = cmp.Compare(a.UniqueName(), b.UniqueName())
		}

		if f.SortDescending {
			return -result
		}
		return result
	})

	return sorted
}

func compareDirFirst(a, b record.File) int {
	switch {
	case a.IsDir() == b.IsDir():
		return 0
	case a.IsDir():
		return -1
	default:
		return 1
	}
}

// Apply runs Match, Sort and Limit and returns a new slice.
func (f *Filter) Apply(records []record.File) []record.File {
	var matched []record.File
	for _, r := range records {
		if f.Match(r) {
			matched = append(matched, r)
		}
	}

	sorted := f.Sort(matched)

	if f.Limit > 0 && len(sorted) > f.Limit {
		return sorted[:f.Limit]
	}
	return sorted
}
