package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/bnema/rclctl/internal/application"
	"github.com/bnema/rclctl/internal/domain"
)

func newCouncilCmd(app *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "council",
		Short: "Inspect the deliberation council",
	}

	cmd.AddCommand(
		newPanelCmd(app, "status", "Show council members and recent deliberations", application.PanelCouncil),
		newCouncilDeliberationsCmd(app),
		newCouncilDeliberateCmd(app),
	)

	return cmd
}

func newCouncilDeliberationsCmd(app *app) *cobra.Command {
	var limit int
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "deliberations",
		Short: "List recent deliberations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			b, err := app.connect(cmd.Context())
			if err != nil {
				return err
			}

			deliberations, err := fetch(cmd, asJSON, "Loading deliberations...", func(ctx context.Context) ([]domain.Deliberation, error) {
				return b.client.ListDeliberations(ctx, limit)
			})
			if err != nil {
				return err
			}
			return writeResult(cmd, deliberations, asJSON, func() string {
				if len(deliberations) == 0 {
					return "No deliberations yet."
				}
				renderer := app.renderer()
				blocks := make([]string, 0, len(deliberations))
				for _, d := range deliberations {
					blocks = append(blocks, renderer.Deliberation(d))
				}
				return strings.Join(blocks, "\n\n")
			})
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 10, "Number of deliberations")
	addJSONFlag(cmd, &asJSON)

	return cmd
}

func newCouncilDeliberateCmd(app *app) *cobra.Command {
	var req domain.DeliberationRequest
	var stakes string
	var contextFile string
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "deliberate",
		Short: "Ask the council to deliberate on a proposed action",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			parsed, err := domain.ParseStakes(stakes)
			if err != nil {
				return err
			}
			req.Stakes = parsed

			if contextFile != "" {
				req.Context, err = readContextFile(contextFile)
				if err != nil {
					return err
				}
			}

			b, err := app.connect(cmd.Context())
			if err != nil {
				return err
			}

			result, err := fetch(cmd, asJSON, "Deliberating...", func(ctx context.Context) (domain.Deliberation, error) {
				return b.service.Deliberate(ctx, req)
			})
			if err != nil {
				return err
			}
			return writeResult(cmd, result, asJSON, func() string {
				return app.renderer().Deliberation(result)
			})
		},
	}

	cmd.Flags().StringVar(&req.ActionType, "action-type", "", "Kind of action under deliberation")
	cmd.Flags().StringVar(&req.Description, "description", "", "What the action would do")
	cmd.Flags().StringVar(&req.ActionID, "action-id", "", "Action ID (default: a new UUID)")
	cmd.Flags().StringVar(&stakes, "stakes", string(domain.StakesMedium), "Stakes (low|medium|high|critical)")
	cmd.Flags().StringVar(&contextFile, "context-file", "", "YAML or JSON file with extra deliberation context")
	_ = cmd.MarkFlagRequired("action-type")
	_ = cmd.MarkFlagRequired("description")
	addJSONFlag(cmd, &asJSON)

	return cmd
}

// readContextFile decodes a YAML mapping; JSON parses as YAML too.
func readContextFile(path string) (map[string]any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read context file: %w", err)
	}

	out := map[string]any{}
	if err := yaml.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("%w: decode context file %s: %v", domain.ErrValidation, path, err)
	}
	return out, nil
}
