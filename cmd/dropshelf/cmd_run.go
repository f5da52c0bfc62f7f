package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"

	gioapp "gioui.org/app"
	"github.com/spf13/cobra"

	"github.com/justyntemme/dropshelf/internal/app"
	"github.com/justyntemme/dropshelf/internal/debug"
	"github.com/justyntemme/dropshelf/internal/platform"
	"github.com/justyntemme/dropshelf/internal/ui"
)

func newRunCmd(opts *rootOptions) *cobra.Command {
	var openShelf bool
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Watch for shake gestures and collect drops (default)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runApp(opts, openShelf)
		},
	}
	cmd.Flags().BoolVar(&openShelf, "shelf", false, "open the shelf window at startup")
	return cmd
}

// runApp starts the engine and hands the main goroutine to Gio. It only
// returns on setup errors; shutdown exits the process.
func runApp(opts *rootOptions, openShelf bool) error {
	mgr, err := opts.loadConfig()
	if err != nil {
		return err
	}
	if perr := mgr.ParseError(); perr != nil {
		log.Printf("Config Error: %v (using defaults)", perr)
	}
	cfg := mgr.Get()

	deps := app.Deps{Config: cfg}
	deps.Pointer, deps.Pasteboard = platform.NewSystem()

	db, err := opts.openStore()
	if err != nil {
		log.Printf("Failed to open settings DB: %v", err)
	} else {
		deps.Store = db
	}

	if cfg.Watch.Enabled {
		fw, err := app.NewFileWatcher(cfg.Watch.Debounce())
		if err != nil {
			log.Printf("File watcher disabled: %v", err)
		} else {
			deps.Watcher = fw
		}
	}

	overlay := ui.NewFloatingSurface(cfg.Surface)
	deps.Overlay = overlay
	c := app.NewCoordinator(deps)
	overlay.Bind(c)

	platform.SetDropHandler(func(items []platform.DropItem) {
		debug.Log(debug.UI, "Native drop of %d items", len(items))
		c.Drop(ui.PayloadsFromDrop(items))
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	go func() {
		defer stop()
		err := c.Run(ctx)
		st := c.Status()
		log.Printf("Dropshelf stopped: %d items on shelf, %d unresolved drops discarded", st.Entries, st.Pending)
		if db != nil {
			db.Close()
		}
		if err != nil && !errors.Is(err, context.Canceled) {
			log.Printf("Dropshelf Error: %v", err)
			os.Exit(1)
		}
		os.Exit(0)
	}()

	if openShelf {
		go func() {
			if err := ui.NewShelfWindow(c).Run(); err != nil {
				log.Printf("Shelf window: %v", err)
			}
		}()
	}

	gioapp.Main()
	return nil
}
