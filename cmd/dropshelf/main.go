// Package main is the entry point for the dropshelf command.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/justyntemme/dropshelf/internal/config"
	"github.com/justyntemme/dropshelf/internal/store"
)

// rootOptions are the flags shared by every subcommand.
type rootOptions struct {
	configPath string
	dbPath     string
}

func (o *rootOptions) loadConfig() (*config.Manager, error) {
	m := config.NewManager()
	path := o.configPath
	if path == "" {
		path = config.ConfigPath()
	}
	if err := m.LoadFrom(path); err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return m, nil
}

func (o *rootOptions) openStore() (*store.DB, error) {
	path := o.dbPath
	if path == "" {
		path = store.DefaultPath()
	}
	db := store.NewDB()
	if err := db.Open(path); err != nil {
		return nil, err
	}
	return db, nil
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	run := newRunCmd(opts)

	root := &cobra.Command{
		Use:           "dropshelf",
		Short:         "Shake while dragging files to drop them on a temporary shelf",
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE:          run.RunE,
	}
	root.PersistentFlags().StringVar(&opts.configPath, "config", "", "config file (.json, .toml or .yaml; default ~/.config/dropshelf/config.json)")
	root.PersistentFlags().StringVar(&opts.dbPath, "db", "", "settings database (default ~/.config/dropshelf/settings.db)")
	root.Flags().AddFlagSet(run.Flags())

	root.AddCommand(
		run,
		newSettingsCmd(opts),
		newConfigCmd(opts),
		newStatusCmd(opts),
	)
	return root
}

func main() {
	manageConsole()

	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "dropshelf:", err)
		os.Exit(1)
	}
}
