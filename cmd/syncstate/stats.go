package main

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/jamesainslie/syncstate/pkg/syncstate/output"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show snapshot statistics",
	Args:  cobra.NoArgs,
	RunE:  runStats,
}

func init() {
	rootCmd.AddCommand(statsCmd)
}

// statsReport is the structured form of the stats command.
type statsReport struct {
	Snapshot   output.Snapshot `json:"snapshot" yaml:"snapshot"`
	Records    int             `json:"records" yaml:"records"`
	Dirs       int             `json:"dirs" yaml:"dirs"`
	Files      int             `json:"files" yaml:"files"`
	JournalDir string          `json:"journal_dir,omitempty" yaml:"journal_dir,omitempty"`
	Journal    int             `json:"journal_entries" yaml:"journal_entries"`
	LastApply  time.Time       `json:"last_apply,omitzero" yaml:"last_apply,omitempty"`
}

func runStats(cmd *cobra.Command, _ []string) error {
	return withSession(func(s *session) error {
		r := output.NewResult(s.index.Files())
		report := statsReport{
			Snapshot: s.snapshotInfo(),
			Records:  r.Total,
			Dirs:     r.Dirs(),
			Files:    r.Files(),
		}

		if s.journal != nil {
			entries, err := s.journal.List(0)
			if err != nil {
				logger.Warn("journal unreadable", "dir", s.journal.Dir(), "err", err)
			} else {
				report.JournalDir = s.journal.Dir()
				report.Journal = len(entries)
				if len(entries) > 0 {
					report.LastApply = entries[0].Timestamp
				}
			}
		}

		return writeStats(cmd.OutOrStdout(), report)
	})
}

func writeStats(w io.Writer, r statsReport) error {
	switch outputFormat {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(r)
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(r); err != nil {
			return err
		}
		return enc.Close()
	}

	label := func(s string) string { return s }
	if outputFormat == "pretty" {
		label = func(s string) string { return output.LabelStyle.Render(s) }
	}

	size := "not written"
	if r.Snapshot.Size > 0 {
		size = fmt.Sprintf("%s (%s bytes)", humanize.IBytes(uint64(r.Snapshot.Size)), humanize.Comma(r.Snapshot.Size))
	}
	written := "never"
	if !r.Snapshot.ModTime.IsZero() {
		written = humanize.Time(r.Snapshot.ModTime)
	}

	rows := [][2]string{
		{"Snapshot:", r.Snapshot.Name},
		{"Backend:", r.Snapshot.Backend},
		{"Path:", r.Snapshot.Path},
		{"Format:", r.Snapshot.Format},
		{"Size:", size},
		{"Written:", written},
		{"Records:", humanize.Comma(int64(r.Records))},
		{"Dirs:", humanize.Comma(int64(r.Dirs))},
		{"Files:", humanize.Comma(int64(r.Files))},
	}
	if r.JournalDir != "" {
		rows = append(rows, [2]string{"Journal:", fmt.Sprintf("%d entries in %s", r.Journal, r.JournalDir)})
	}

	for _, row := range rows {
		if _, err := fmt.Fprintf(w, "%s %s\n", label(fmt.Sprintf("%-10s", row[0])), row[1]); err != nil {
			return err
		}
	}
	return nil
}
