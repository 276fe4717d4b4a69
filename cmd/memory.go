package cmd

import (
	"context"
	"strings"

	"github.com/spf13/cobra"

	"github.com/bnema/rclctl/internal/application"
	"github.com/bnema/rclctl/internal/domain"
)

func newMemoryCmd(app *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "memory",
		Aliases: []string{"eigenmemory"},
		Short:   "Query and prune eigenmemory",
	}

	cmd.AddCommand(
		newPanelCmd(app, "stats", "Show eigenmemory statistics", application.PanelMemory),
		newMemoryQueryCmd(app),
		newMemoryForgetCmd(app),
	)

	return cmd
}

func newMemoryQueryCmd(app *app) *cobra.Command {
	var queryType string
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "query TEXT...",
		Short: "Query eigenmemory",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			parsed, err := domain.ParseQueryType(queryType)
			if err != nil {
				return err
			}
			query := strings.Join(args, " ")
			if err := domain.RequireText("query", query); err != nil {
				return err
			}

			b, err := app.connect(cmd.Context())
			if err != nil {
				return err
			}

			result, err := fetch(cmd, asJSON, "Querying eigenmemory...", func(ctx context.Context) (domain.MemoryQueryResult, error) {
				return b.service.QueryMemory(ctx, query, parsed)
			})
			if err != nil {
				return err
			}
			return writeResult(cmd, result, asJSON, func() string {
				return app.renderer().MemoryQuery(result)
			})
		},
	}

	cmd.Flags().StringVar(&queryType, "type", string(domain.QueryTypeSemantic), "Query type (semantic|subject|temporal)")
	addJSONFlag(cmd, &asJSON)

	return cmd
}

func newMemoryForgetCmd(app *app) *cobra.Command {
	var noConfirm bool
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "forget SUBJECT",
		Short: "Ask the backend to forget everything about a subject",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := domain.RequireText("subject", args[0]); err != nil {
				return err
			}

			b, err := app.connect(cmd.Context())
			if err != nil {
				return err
			}

			result, err := b.service.ForgetSubject(cmd.Context(), args[0], !noConfirm)
			if err != nil {
				return err
			}
			return writeResult(cmd, result, asJSON, func() string {
				return app.renderer().Forget(result)
			})
		},
	}

	cmd.Flags().BoolVar(&noConfirm, "no-confirm", false, "Send require_confirmation=false")
	addJSONFlag(cmd, &asJSON)

	return cmd
}
