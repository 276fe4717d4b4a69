package cmd

import (
	"context"
	"strings"

	"github.com/spf13/cobra"

	"github.com/bnema/rclctl/internal/application"
	"github.com/bnema/rclctl/internal/domain"
)

func newIQLCmd(app *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "iql",
		Short: "Run introspection queries",
	}

	cmd.AddCommand(
		newIQLQueryCmd(app),
		newPanelCmd(app, "examples", "Show example IQL queries", application.PanelIQL),
	)

	return cmd
}

func newIQLQueryCmd(app *app) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "query QUERY...",
		Short: "Run an IQL query",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			query := strings.Join(args, " ")
			if err := domain.RequireText("query", query); err != nil {
				return err
			}

			b, err := app.connect(cmd.Context())
			if err != nil {
				return err
			}

			result, err := fetch(cmd, asJSON, "Running query...", func(ctx context.Context) (domain.IQLResult, error) {
				return b.service.RunIQL(ctx, query)
			})
			if err != nil {
				return err
			}
			return writeResult(cmd, result, asJSON, func() string {
				return app.renderer().IQLResult(result)
			})
		},
	}
	addJSONFlag(cmd, &asJSON)

	return cmd
}
