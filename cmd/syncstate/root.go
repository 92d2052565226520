package main

import (
	"bytes"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jamesainslie/syncstate/pkg/syncstate/config"
	"github.com/jamesainslie/syncstate/pkg/syncstate/logging"
	"github.com/jamesainslie/syncstate/pkg/syncstate/output"
)

var (
	cfgFile      string
	snapshotName string
	backendName  string
	storePath    string
	snapFormat   string
	outputFormat string
	verbose      bool
	quiet        bool

	// appConfig is loaded by bootstrap before any command runs.
	appConfig *config.Config

	logger = logging.Get("cli")
)

var rootCmd = &cobra.Command{
	Use:   "syncstate",
	Short: "Inspect and maintain synchronized-state snapshots",
	Long: `syncstate manages the snapshot a file synchronizer keeps of what it has
already transferred: one record per file or directory, keyed by unique name,
persisted as a single blob in a badger, directory or sqlite store.

Examples:
  syncstate list                       # Show every record
  syncstate list --include '/docs/**'  # Filter by glob
  syncstate apply changes.yaml         # Apply a created/updated/removed change set
  find . | syncstate pending -         # Records not seen in this pass
  syncstate stats                      # Snapshot summary
  syncstate history                    # Applied change sets`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: bootstrap,
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "config file (default: ~/.config/syncstate/config.yaml)")
	flags.StringVar(&snapshotName, "snapshot", "", "snapshot blob name (default from config)")
	flags.StringVar(&backendName, "backend", "", "store backend: badger, dir or sqlite")
	flags.StringVar(&storePath, "store-path", "", "store location")
	flags.StringVar(&snapFormat, "format", "", "snapshot encoding: gob, json, yaml or toml")
	flags.StringVarP(&outputFormat, "output", "o", "pretty", "output format")
	flags.BoolVarP(&verbose, "verbose", "v", false, "debug output on stderr")
	flags.BoolVarP(&quiet, "quiet", "q", false, "minimal output")
}

// bootstrap loads configuration, applies flag overrides and starts logging.
func bootstrap(_ *cobra.Command, _ []string) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return err
	}

	if snapshotName != "" {
		cfg.Snapshot.Name = snapshotName
	}
	if backendName != "" {
		cfg.Store.Backend = backendName
	}
	if storePath != "" {
		expanded, err := config.ExpandPath(storePath)
		if err != nil {
			return err
		}
		cfg.Store.Path = expanded
	}
	if snapFormat != "" {
		cfg.Snapshot.Format = snapFormat
	}
	appConfig = cfg

	logCfg, err := cfg.LogConfig()
	if err != nil {
		return err
	}
	switch {
	case quiet:
		logCfg.ConsoleLevel = ""
	case verbose:
		logCfg.ConsoleLevel = "debug"
		logCfg.Level = "debug"
	default:
		logCfg.ConsoleLevel = "warn"
	}
	if err := logging.Init(logCfg); err != nil {
		return fmt.Errorf("initializing logging: %w", err)
	}

	logger.Debug("configuration loaded",
		"backend", cfg.Store.Backend,
		"store", cfg.StorePath(),
		"snapshot", cfg.Snapshot.Name,
		"format", cfg.Snapshot.Format,
	)
	return nil
}

// Execute runs the root command.
func Execute() error {
	err := rootCmd.Execute()
	if err != nil {
		printError(rootCmd, "%v", err)
	}
	_ = logging.Close()
	return err
}

// render writes r in the selected output format.
func render(cmd *cobra.Command, r *output.Result) error {
	formatter, err := output.Get(outputFormat)
	if err != nil {
		return fmt.Errorf("%w (available: %v)", err, output.Available())
	}

	var buf bytes.Buffer
	if err := formatter.Format(&buf, r); err != nil {
		return fmt.Errorf("formatting output: %w", err)
	}
	_, err = cmd.OutOrStdout().Write(buf.Bytes())
	return err
}

// printInfo prints a message unless quiet mode is enabled.
func printInfo(cmd *cobra.Command, format string, args ...interface{}) {
	if !quiet {
		fmt.Fprintf(cmd.OutOrStdout(), format+"\n", args...)
	}
}

// printError prints an error message to stderr.
func printError(cmd *cobra.Command, format string, args ...interface{}) {
	fmt.Fprintf(cmd.ErrOrStderr(), "Error: "+format+"\n", args...)
}
