package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/jamesainslie/syncstate/pkg/syncstate/journal"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "View applied change sets",
	Long: `View the journal of change sets applied to snapshots.

Every successful update writes one entry with the names created, updated
and removed.`,
	Args: cobra.NoArgs,
	RunE: runHistory,
}

var historyShowCmd = &cobra.Command{
	Use:   "show ID",
	Short: "Show one journal entry",
	Args:  cobra.ExactArgs(1),
	RunE:  runHistoryShow,
}

var historyPruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Remove old journal entries",
	Long:  `Remove journal entries older than the retention period.`,
	Args:  cobra.NoArgs,
	RunE:  runHistoryPrune,
}

var (
	historyLimit int
	pruneDays    int
)

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "l", 20, "maximum number of entries to show")
	historyPruneCmd.Flags().IntVar(&pruneDays, "days", 0, "retention in days (default from config)")

	historyCmd.AddCommand(historyShowCmd)
	historyCmd.AddCommand(historyPruneCmd)
	rootCmd.AddCommand(historyCmd)
}

// openJournal opens the configured journal directory.
func openJournal() (*journal.Journal, error) {
	j, err := journal.New(appConfig.JournalPath())
	if err != nil {
		return nil, fmt.Errorf("failed to open journal: %w", err)
	}
	return j, nil
}

func runHistory(cmd *cobra.Command, _ []string) error {
	j, err := openJournal()
	if err != nil {
		return err
	}

	entries, err := j.List(historyLimit)
	if err != nil {
		return fmt.Errorf("failed to list history: %w", err)
	}

	out := cmd.OutOrStdout()
	if outputFormat == "json" {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(entries)
	}

	if len(entries) == 0 {
		printInfo(cmd, "No history entries found.")
		return nil
	}

	fmt.Fprintf(out, "%-36s  %-16s  %-20s  %7s %7s %7s %7s\n",
		"ID", "WHEN", "SNAPSHOT", "CREATED", "UPDATED", "REMOVED", "TOTAL")
	fmt.Fprintln(out, strings.Repeat("-", 110))
	for _, e := range entries {
		fmt.Fprintf(out, "%-36s  %-16s  %-20s  %7d %7d %7d %7d\n",
			e.ID,
			humanize.Time(e.Timestamp),
			truncateString(e.Snapshot, 20),
			e.Summary.Created,
			e.Summary.Updated,
			e.Summary.Removed,
			e.Summary.Total,
		)
	}
	printInfo(cmd, "\nShowing %d entries. Use 'syncstate history show <id>' for details.", len(entries))
	return nil
}

func runHistoryShow(cmd *cobra.Command, args []string) error {
	j, err := openJournal()
	if err != nil {
		return err
	}

	e, err := j.Get(args[0])
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if outputFormat == "json" {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(e)
	}

	fmt.Fprintf(out, "ID:        %s\n", e.ID)
	fmt.Fprintf(out, "Timestamp: %s\n", e.Timestamp.Format("2006-01-02 15:04:05 MST"))
	fmt.Fprintf(out, "Snapshot:  %s\n", e.Snapshot)
	fmt.Fprintf(out, "Total:     %d\n", e.Summary.Total)

	for _, group := range []struct {
		title string
		sign  string
		names []string
	}{
		{"Removed", "-", e.Removed},
		{"Created", "+", e.Created},
		{"Updated", "~", e.Updated},
	} {
		if len(group.names) == 0 {
			continue
		}
		fmt.Fprintf(out, "\n%s (%d):\n", group.title, len(group.names))
		for _, n := range group.names {
			fmt.Fprintf(out, "  %s %s\n", group.sign, n)
		}
	}
	return nil
}

func runHistoryPrune(cmd *cobra.Command, _ []string) error {
	j, err := openJournal()
	if err != nil {
		return err
	}

	days := pruneDays
	if days <= 0 {
		days = appConfig.Journal.RetentionDays
	}

	removed, err := j.Prune(days)
	if err != nil {
		return fmt.Errorf("failed to prune history: %w", err)
	}
	printInfo(cmd, "Removed %d journal entries older than %d days.", removed, days)
	return nil
}

// truncateString truncates s to maxLen, adding "..." if truncated.
func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}
