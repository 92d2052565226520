package main

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jamesainslie/syncstate/pkg/syncstate/output"
	"github.com/jamesainslie/syncstate/pkg/syncstate/record"
)

var applyCmd = &cobra.Command{
	Use:   "apply FILE|-",
	Short: "Apply a change set to the snapshot",
	Long: `Apply a YAML or JSON change set and persist the snapshot.

Removals run first, then creations, then updates. Removing or updating a
name that is not in the snapshot fails before anything is written.

  created:
    - {name: /a.txt, hash: 9f2c}
  updated:
    - {name: /b.txt, hash: 77aa}
  removed: [/old.txt]`,
	Args: cobra.ExactArgs(1),
	RunE: runApply,
}

var forgetCmd = &cobra.Command{
	Use:   "forget NAME...",
	Short: "Remove records from the snapshot",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runForget,
}

var pendingCmd = &cobra.Command{
	Use:   "pending FILE|-",
	Short: "List records not seen in a pass",
	Long: `Read the names seen during a synchronization pass, one per line, and
list the snapshot records that were not among them. These are the deletion
candidates. With --forget they are removed from the snapshot.`,
	Args: cobra.ExactArgs(1),
	RunE: runPending,
}

var pendingForget bool

func init() {
	pendingCmd.Flags().BoolVar(&pendingForget, "forget", false, "remove the unseen records")

	rootCmd.AddCommand(applyCmd)
	rootCmd.AddCommand(forgetCmd)
	rootCmd.AddCommand(pendingCmd)
}

// readInput reads a named file, or stdin for "-".
func readInput(cmd *cobra.Command, name string) ([]byte, error) {
	if name == "-" {
		return io.ReadAll(cmd.InOrStdin())
	}
	data, err := os.ReadFile(name)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", name, err)
	}
	return data, nil
}

func runApply(cmd *cobra.Command, args []string) error {
	data, err := readInput(cmd, args[0])
	if err != nil {
		return err
	}
	cs, err := parseChangeSet(data, args[0])
	if err != nil {
		return err
	}

	return withSession(func(s *session) error {
		if err := s.index.UpdateRepository(cs.created(), cs.updated(), cs.removed()); err != nil {
			return err
		}
		if cs.Empty() {
			logger.Debug("empty change set applied", "source", args[0])
			printInfo(cmd, "Nothing to change; snapshot rewritten (%d records)", s.index.Len())
			return nil
		}
		printInfo(cmd, "Applied: %d created, %d updated, %d removed (%d records)",
			len(cs.Created), len(cs.Updated), len(cs.Removed), s.index.Len())
		return nil
	})
}

func runForget(cmd *cobra.Command, args []string) error {
	return withSession(func(s *session) error {
		if err := s.index.UpdateRepository(nil, nil, namesAsFiles(args)); err != nil {
			return err
		}
		printInfo(cmd, "Forgot %d record(s); %d remain", len(args), s.index.Len())
		return nil
	})
}

// readNames parses newline-separated names, skipping blank lines.
func readNames(r io.Reader) ([]string, error) {
	var names []string
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		names = append(names, line)
	}
	return names, scanner.Err()
}

func runPending(cmd *cobra.Command, args []string) error {
	data, err := readInput(cmd, args[0])
	if err != nil {
		return err
	}
	names, err := readNames(bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("reading names: %w", err)
	}

	return withSession(func(s *session) error {
		for _, n := range names {
			s.index.MarkFileAsDirty(record.New(n, ""))
		}
		unseen := s.index.NotDirtyFiles()

		logger.Info("pass compared", "seen", len(names), "unseen", len(unseen), "total", s.index.Len())

		r := output.NewResult(unseen)
		r.Total = s.index.Len()
		r.Snapshot = s.snapshotInfo()
		if err := render(cmd, r); err != nil {
			return err
		}

		if !pendingForget || len(unseen) == 0 {
			return nil
		}
		if err := s.index.UpdateRepository(nil, nil, unseen); err != nil {
			return err
		}
		printInfo(cmd, "Forgot %d unseen record(s)", len(unseen))
		return nil
	})
}
