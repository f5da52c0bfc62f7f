package main

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/justyntemme/dropshelf/internal/ingest"
)

func newStatusCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show config location and temp area usage",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			mgr, err := opts.loadConfig()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			cfg := mgr.Get()

			fmt.Fprintf(out, "Config:    %s\n", mgr.Path())
			if perr := mgr.ParseError(); perr != nil {
				fmt.Fprintf(out, "           invalid, using defaults: %v\n", perr)
			}

			temp := ingest.NewTempDir(ingest.DefaultTempRoot(cfg.Ingest.TempDirName), nil)
			files, size, err := temp.Usage()
			if err != nil {
				return fmt.Errorf("status: %w", err)
			}
			fmt.Fprintf(out, "Temp area: %s\n", temp.Path())
			fmt.Fprintf(out, "           %d files, %s\n", files, humanize.Bytes(uint64(size)))
			fmt.Fprintf(out, "Shelf:     up to %d items, expire after %d days\n", cfg.Shelf.MaxRecentItems, cfg.Shelf.AutoExpireDays)
			return nil
		},
	}
}
