package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/bnema/rclctl/internal/adapters/render/panels"
	"github.com/bnema/rclctl/internal/application"
)

// fetch runs load behind a spinner on stderr; JSON output skips the spinner
// so stdout and stderr stay machine-readable.
func fetch[T any](cmd *cobra.Command, asJSON bool, label string, load func(context.Context) (T, error)) (T, error) {
	if asJSON {
		return load(cmd.Context())
	}
	return spinWhile(cmd.Context(), cmd.ErrOrStderr(), label, time.Now, load)
}

func writeJSON(cmd *cobra.Command, value any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(value)
}

func (a *app) renderer() *panels.Renderer {
	return panels.NewRenderer(panels.Options{Now: a.now()})
}

func writeText(cmd *cobra.Command, text string) error {
	_, err := fmt.Fprintln(cmd.OutOrStdout(), text)
	return err
}

func writeView(cmd *cobra.Command, app *app, view application.View, asJSON bool) error {
	if asJSON {
		return writeJSON(cmd, view)
	}

	rendered, err := panels.Render(view, panels.Options{Now: app.now()})
	if err != nil {
		return fmt.Errorf("render %s: %w", view.PanelName(), err)
	}
	return writeText(cmd, rendered)
}

// writeResult prints value as JSON or through render.
func writeResult(cmd *cobra.Command, value any, asJSON bool, render func() string) error {
	if asJSON {
		return writeJSON(cmd, value)
	}
	return writeText(cmd, render())
}

var tableHeaderStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("69")).Padding(0, 1)

func renderTable(headers []string, rows [][]string) string {
	if len(rows) == 0 {
		return "(none)"
	}

	return table.New().
		Border(lipgloss.NormalBorder()).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return tableHeaderStyle
			}
			return lipgloss.NewStyle().Padding(0, 1)
		}).
		String()
}

func addJSONFlag(cmd *cobra.Command, target *bool) {
	cmd.Flags().BoolVar(target, "json", false, "Render JSON output")
}

func newPanelCmd(app *app, use, short, panel string) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runPanel(cmd, app, panel, asJSON)
		},
	}
	addJSONFlag(cmd, &asJSON)

	return cmd
}

func runPanel(cmd *cobra.Command, app *app, name string, asJSON bool) error {
	b, err := app.connect(cmd.Context())
	if err != nil {
		return err
	}
	panel := b.panel(name)
	if panel == nil {
		return fmt.Errorf("unknown panel %q", name)
	}

	view, err := fetch(cmd, asJSON, "Loading "+panel.Title()+"...", panel.Load)
	if err != nil {
		return fmt.Errorf("load %s: %w", name, err)
	}
	return writeView(cmd, app, view, asJSON)
}

func formatTimestamp(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format("2006-01-02 15:04")
}
