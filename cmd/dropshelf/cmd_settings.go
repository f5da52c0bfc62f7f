package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/justyntemme/dropshelf/internal/app"
	"github.com/justyntemme/dropshelf/internal/store"
)

func newSettingsCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Show or change stored shelf preferences",
	}
	cmd.AddCommand(newSettingsListCmd(opts), newSettingsSetCmd(opts))
	return cmd
}

func newSettingsListCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List effective shelf preferences and where each comes from",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			mgr, err := opts.loadConfig()
			if err != nil {
				return err
			}
			db, err := opts.openStore()
			if err != nil {
				return fmt.Errorf("settings: %w", err)
			}
			defer db.Close()

			stored, err := db.Settings()
			if err != nil {
				return fmt.Errorf("settings: %w", err)
			}
			effective := store.SettingsFromOptions(store.ApplySettings(app.ShelfOptions(mgr.Get().Shelf), stored))

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "KEY\tVALUE\tSOURCE")
			for _, key := range store.SortedKeys(effective) {
				source := "config"
				if _, ok := stored[key]; ok {
					source = "stored"
				}
				fmt.Fprintf(tw, "%s\t%s\t%s\n", key, effective[key], source)
			}
			return tw.Flush()
		},
	}
}

func newSettingsSetCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Store a shelf preference",
		Long:  "Store a shelf preference. Known keys: max_recent_items, auto_expire_days,\nprevent_duplicates, auto_cleanup. A running shelf picks the value up on restart.",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := opts.openStore()
			if err != nil {
				return fmt.Errorf("settings: %w", err)
			}
			defer db.Close()

			if err := db.Save(args[0], args[1]); err != nil {
				return fmt.Errorf("settings: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s = %s\n", args[0], args[1])
			return nil
		},
	}
}
