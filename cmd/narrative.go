package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bnema/rclctl/internal/application"
	"github.com/bnema/rclctl/internal/domain"
)

func newNarrativeCmd(app *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "narrative",
		Short: "Inspect narrative memory",
	}

	cmd.AddCommand(
		newPanelCmd(app, "show", "Show the narrative summary, recent events and consolidation", application.PanelNarrative),
		newNarrativeEventsCmd(app),
		newNarrativeConsolidateCmd(app),
	)

	return cmd
}

func newNarrativeEventsCmd(app *app) *cobra.Command {
	var limit int
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "events",
		Short: "List recent narrative events",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			b, err := app.connect(cmd.Context())
			if err != nil {
				return err
			}

			events, err := fetch(cmd, asJSON, "Loading narrative events...", func(ctx context.Context) ([]domain.NarrativeEvent, error) {
				return b.client.ListNarrativeEvents(ctx, limit)
			})
			if err != nil {
				return err
			}
			return writeResult(cmd, events, asJSON, func() string {
				rows := make([][]string, 0, len(events))
				for _, event := range events {
					rows = append(rows, []string{
						formatTimestamp(event.Timestamp),
						event.Kind,
						fmt.Sprintf("%.2f", event.Importance),
						event.Description,
					})
				}
				return renderTable([]string{"When", "Kind", "Importance", "Description"}, rows)
			})
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "Number of events")
	addJSONFlag(cmd, &asJSON)

	return cmd
}

func newNarrativeConsolidateCmd(app *app) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "consolidate",
		Short: "Trigger narrative consolidation",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			b, err := app.connect(cmd.Context())
			if err != nil {
				return err
			}

			status, err := fetch(cmd, asJSON, "Consolidating...", b.service.Consolidate)
			if err != nil {
				return err
			}
			return writeResult(cmd, status, asJSON, func() string {
				return app.renderer().Consolidation(status)
			})
		},
	}
	addJSONFlag(cmd, &asJSON)

	return cmd
}
