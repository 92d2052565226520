package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jamesainslie/syncstate/pkg/syncstate/filter"
	"github.com/jamesainslie/syncstate/pkg/syncstate/index"
	"github.com/jamesainslie/syncstate/pkg/syncstate/output"
	"github.com/jamesainslie/syncstate/pkg/syncstate/record"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List snapshot records",
	Long: `List the records in the snapshot.

Patterns use glob syntax with '/' as the separator: '*' stays within one
path segment, '**' crosses segments.`,
	Args: cobra.NoArgs,
	RunE: runList,
}

var showCmd = &cobra.Command{
	Use:   "show NAME",
	Short: "Show one record",
	Args:  cobra.ExactArgs(1),
	RunE:  runShow,
}

var (
	listInclude []string
	listExclude []string
	listDirs    bool
	listFiles   bool
	listSort    string
	listReverse bool
	listLimit   int
)

func init() {
	listCmd.Flags().StringArrayVarP(&listInclude, "include", "i", nil, "include glob (repeatable)")
	listCmd.Flags().StringArrayVarP(&listExclude, "exclude", "e", nil, "exclude glob (repeatable)")
	listCmd.Flags().BoolVar(&listDirs, "dirs", false, "directories only")
	listCmd.Flags().BoolVar(&listFiles, "files", false, "files only")
	listCmd.Flags().StringVar(&listSort, "sort", "name", "sort by name, hash or kind")
	listCmd.Flags().BoolVarP(&listReverse, "reverse", "r", false, "reverse sort order")
	listCmd.Flags().IntVarP(&listLimit, "limit", "l", 0, "maximum records to show (0 = all)")
	listCmd.MarkFlagsMutuallyExclusive("dirs", "files")

	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(showCmd)
}

// buildFilter converts list flags into a filter.
func buildFilter() (*filter.Filter, error) {
	sortBy, err := filter.ParseSortField(listSort)
	if err != nil {
		return nil, err
	}

	kind := filter.KindAll
	switch {
	case listDirs:
		kind = filter.KindDirs
	case listFiles:
		kind = filter.KindFiles
	}

	f := filter.New(
		filter.WithInclude(listInclude...),
		filter.WithExclude(listExclude...),
		filter.WithKind(kind),
		filter.WithSortBy(sortBy),
		filter.WithSortDescending(listReverse),
		filter.WithLimit(listLimit),
	)
	if err := f.Validate(); err != nil {
		return nil, err
	}
	return f, nil
}

func runList(cmd *cobra.Command, _ []string) error {
	f, err := buildFilter()
	if err != nil {
		return err
	}

	return withSession(func(s *session) error {
		all := s.index.Files()
		r := output.NewResult(f.Apply(all))
		r.Total = len(all)
		r.Snapshot = s.snapshotInfo()
		return render(cmd, r)
	})
}

func runShow(cmd *cobra.Command, args []string) error {
	name := args[0]
	return withSession(func(s *session) error {
		f, ok := s.index.FindFile(record.New(name, ""))
		if !ok {
			return fmt.Errorf("%w: %s", index.ErrRecordNotFound, name)
		}
		r := output.NewResult([]record.File{f})
		r.Total = s.index.Len()
		r.Snapshot = s.snapshotInfo()
		return render(cmd, r)
	})
}
