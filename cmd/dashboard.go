package cmd

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/bnema/rclctl/internal/adapters/tui"
	"github.com/bnema/rclctl/internal/ports"
)

func newDashboardCmd(app *app) *cobra.Command {
	var collapsed bool
	var noEvents bool

	cmd := &cobra.Command{
		Use:   "dashboard",
		Short: "Open the interactive admin dashboard",
		Long:  "Open the interactive dashboard. ctrl+k opens and collapses it, tab and 1-9 switch panels, r reloads, q quits. Pushed backend events reload the affected panel while it is registered.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			b, err := app.connect(ctx)
			if err != nil {
				return err
			}

			var source ports.EventSource
			if !noEvents {
				channel, err := app.newChannel(b, nil)
				if err != nil {
					return err
				}
				source = channel
			}

			app.logger.Info("dashboard starting")
			return tui.Run(ctx, tui.Config{
				Panels:    b.panels,
				Session:   app.newSession(b),
				Debt:      b.debt,
				Service:   b.service,
				Renderer:  app.renderer(),
				Logger:    app.logger,
				StartOpen: !collapsed,
			}, source)
		},
	}

	cmd.Flags().BoolVar(&collapsed, "collapsed", false, "Start with the dashboard collapsed")
	cmd.Flags().BoolVar(&noEvents, "no-events", false, "Do not connect to the event WebSocket")

	return cmd
}
