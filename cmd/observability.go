package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/bnema/rclctl/internal/application"
	"github.com/bnema/rclctl/internal/domain"
)

func newDecisionsCmd(app *app) *cobra.Command {
	var limit int
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "decisions",
		Short: "List recent decisions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			b, err := app.connect(cmd.Context())
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("limit") {
				limit = app.cfg.GetInt(keyDecisionLimit)
			}

			records, err := fetch(cmd, asJSON, "Loading decisions...", func(ctx context.Context) ([]domain.DecisionRecord, error) {
				return b.service.Decisions(ctx, limit)
			})
			if err != nil {
				return err
			}
			return writeResult(cmd, records, asJSON, func() string {
				return app.renderer().Decisions(records)
			})
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "Number of decisions")
	addJSONFlag(cmd, &asJSON)

	return cmd
}

func newCognitiveCmd(app *app) *cobra.Command {
	return newPanelCmd(app, "cognitive", "Show cognitive state, recent decisions and audit chain validity", application.PanelObservability)
}

func newSecurityCmd(app *app) *cobra.Command {
	return newPanelCmd(app, "security", "Show backend security status", application.PanelSecurity)
}
