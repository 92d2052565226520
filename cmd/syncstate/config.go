package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jamesainslie/syncstate/pkg/syncstate/blob"
	"github.com/jamesainslie/syncstate/pkg/syncstate/codec"
	"github.com/jamesainslie/syncstate/pkg/syncstate/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
	Long: `Manage syncstate configuration settings.

Configuration is loaded from:
  1. --config FILE
  2. $XDG_CONFIG_HOME/syncstate/config.yaml (if set)
  3. ~/.config/syncstate/config.yaml

Environment variables override file settings using the SYNCSTATE_ prefix:
  SYNCSTATE_STORE_BACKEND=sqlite
  SYNCSTATE_SNAPSHOT_FORMAT=yaml
  SYNCSTATE_JOURNAL_ENABLED=false`,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	RunE:  runConfigShow,
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Create default configuration file",
	RunE:  runConfigInit,
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Show configuration file path",
	RunE:  runConfigPath,
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configPathCmd)
	rootCmd.AddCommand(configCmd)
}

// configFilePath returns the --config file or the default location.
func configFilePath() (string, error) {
	if cfgFile != "" {
		return cfgFile, nil
	}
	return config.ConfigPath()
}

func runConfigShow(cmd *cobra.Command, _ []string) error {
	cfg := appConfig
	out := cmd.OutOrStdout()

	path, err := configFilePath()
	if err != nil {
		return err
	}
	if _, err := os.Stat(path); err == nil {
		fmt.Fprintf(out, "Config file: %s\n\n", path)
	} else {
		fmt.Fprintf(out, "Config file: (using defaults, no file found)\n\n")
	}

	fmt.Fprintln(out, "Current Configuration:")
	fmt.Fprintln(out, "----------------------")
	fmt.Fprintf(out, "store.backend:          %s  (%v)\n", cfg.Store.Backend, blob.Backends())
	fmt.Fprintf(out, "store.path:             %s\n", cfg.StorePath())
	fmt.Fprintf(out, "snapshot.name:          %s\n", cfg.Snapshot.Name)
	fmt.Fprintf(out, "snapshot.format:        %s  (%v)\n", cfg.Snapshot.Format, codec.Available())
	fmt.Fprintf(out, "journal.enabled:        %t\n", cfg.Journal.Enabled)
	fmt.Fprintf(out, "journal.path:           %s\n", cfg.JournalPath())
	fmt.Fprintf(out, "journal.retention_days: %d\n", cfg.Journal.RetentionDays)
	fmt.Fprintf(out, "logging.level:          %s\n", cfg.Logging.Level)
	fmt.Fprintf(out, "logging.path:           %s\n", cfg.Logging.Path)

	fmt.Fprintln(out, "\nEnvironment Overrides:")
	fmt.Fprintln(out, "----------------------")
	overridden := false
	for _, name := range []string{
		"SYNCSTATE_STORE_BACKEND",
		"SYNCSTATE_STORE_PATH",
		"SYNCSTATE_SNAPSHOT_NAME",
		"SYNCSTATE_SNAPSHOT_FORMAT",
		"SYNCSTATE_JOURNAL_ENABLED",
		"SYNCSTATE_JOURNAL_PATH",
		"SYNCSTATE_JOURNAL_RETENTION_DAYS",
		"SYNCSTATE_LOGGING_LEVEL",
	} {
		if val := os.Getenv(name); val != "" {
			fmt.Fprintf(out, "%s=%s\n", name, val)
			overridden = true
		}
	}
	if !overridden {
		fmt.Fprintln(out, "(none)")
	}
	return nil
}

func runConfigInit(cmd *cobra.Command, _ []string) error {
	path, err := config.ConfigPath()
	if err != nil {
		return fmt.Errorf("failed to get config path: %w", err)
	}
	if _, err := os.Stat(path); err == nil {
		printInfo(cmd, "Config file already exists: %s", path)
		return nil
	}

	if _, err := config.WriteDefault(); err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	printInfo(cmd, "Created default config file: %s", path)
	return nil
}

func runConfigPath(cmd *cobra.Command, _ []string) error {
	path, err := configFilePath()
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), path)
	return nil
}
