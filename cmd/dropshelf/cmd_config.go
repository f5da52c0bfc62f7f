package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/justyntemme/dropshelf/internal/config"
)

func newConfigCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage the config file",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "init",
		Short: "Write a default config file, backing up any existing one",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := opts.configPath
			if path == "" {
				path = config.ConfigPath()
			}
			backup, err := config.GenerateConfig(path)
			if err != nil {
				return fmt.Errorf("config init: %w", err)
			}
			if backup != "" {
				fmt.Fprintf(cmd.OutOrStdout(), "Backed up existing config to %s\n", backup)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote default config to %s\n", path)
			return nil
		},
	})
	return cmd
}
