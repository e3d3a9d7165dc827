package main

import (
	"log/slog"

	"cycleplanner/internal/logging"
	"cycleplanner/internal/ui"

	"github.com/spf13/cobra"
)

func (o *options) newUICmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ui",
		Short: "Open the terminal UI (default)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return o.runUI(cmd)
		},
	}
}

// runUI starts the browser with an index watcher. A watcher that cannot
// start only disables live reload.
func (o *options) runUI(cmd *cobra.Command) error {
	return o.withEnv(cmd, func(e *env) error {
		log := logging.WithComponent(e.log.Logger, "ui")

		appCfg := &ui.AppConfig{
			Logger:     e.log.Logger,
			PickStart:  currentDir(),
			Opacity:    e.cfg.Window.Opacity,
			CellWidth:  e.cfg.Window.CellWidth,
			CellHeight: e.cfg.Window.CellHeight,
		}

		watcher, err := ui.WatchIndex(e.store.IndexPath())
		if err != nil {
			log.Warn("index watcher disabled", slog.Any("err", err))
		} else {
			defer watcher.Close()
			appCfg.Changes = watcher.Changes()
		}

		log.Info("starting", slog.String("data_dir", e.store.DataDir()))
		return ui.Run(e.store, ui.NewStyles(e.cfg), appCfg)
	})
}
