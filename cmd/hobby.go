package cmd

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/bnema/rclctl/internal/application"
	"github.com/bnema/rclctl/internal/domain"
)

func newHobbyCmd(app *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "hobby",
		Short: "Inspect and control the Hobby subsystem",
	}

	cmd.AddCommand(
		newPanelCmd(app, "status", "Show Hobby status, activities, insights and config", application.PanelHobby),
		newHobbyActivitiesCmd(app),
		newHobbyInsightsCmd(app),
		newHobbyConfigCmd(app),
		newHobbyToggleCmd(app, "start", "Start the Hobby loop", func(s *application.Service) func(context.Context) (string, error) { return s.StartHobby }),
		newHobbyToggleCmd(app, "stop", "Stop the Hobby loop", func(s *application.Service) func(context.Context) (string, error) { return s.StopHobby }),
	)

	return cmd
}

func newHobbyActivitiesCmd(app *app) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "activities",
		Short: "List recent Hobby activities",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			b, err := app.connect(cmd.Context())
			if err != nil {
				return err
			}

			activities, err := fetch(cmd, asJSON, "Loading activities...", b.client.ListHobbyActivities)
			if err != nil {
				return err
			}
			return writeResult(cmd, activities, asJSON, func() string {
				rows := make([][]string, 0, len(activities))
				for _, activity := range activities {
					rows = append(rows, []string{
						formatTimestamp(activity.Timestamp),
						activity.Kind,
						activity.Duration.String(),
						activity.Summary,
					})
				}
				return renderTable([]string{"When", "Kind", "Duration", "Summary"}, rows)
			})
		},
	}
	addJSONFlag(cmd, &asJSON)

	return cmd
}

func newHobbyInsightsCmd(app *app) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "insights",
		Short: "List Hobby insights",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			b, err := app.connect(cmd.Context())
			if err != nil {
				return err
			}

			insights, err := fetch(cmd, asJSON, "Loading insights...", b.client.ListHobbyInsights)
			if err != nil {
				return err
			}
			return writeResult(cmd, insights, asJSON, func() string {
				rows := make([][]string, 0, len(insights))
				for _, insight := range insights {
					rows = append(rows, []string{
						formatTimestamp(insight.Timestamp),
						insight.Topic,
						fmt.Sprintf("%.0f%%", insight.Confidence*100),
						insight.Insight,
					})
				}
				return renderTable([]string{"When", "Topic", "Confidence", "Insight"}, rows)
			})
		},
	}
	addJSONFlag(cmd, &asJSON)

	return cmd
}

func newHobbyConfigCmd(app *app) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show the Hobby configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			b, err := app.connect(cmd.Context())
			if err != nil {
				return err
			}

			config, err := fetch(cmd, asJSON, "Loading config...", b.client.GetHobbyConfig)
			if err != nil {
				return err
			}
			return writeResult(cmd, config, asJSON, func() string { return formatHobbyConfig(config) })
		},
	}
	addJSONFlag(cmd, &asJSON)

	return cmd
}

func formatHobbyConfig(config domain.HobbyConfig) string {
	rows := [][]string{
		{"enabled", fmt.Sprintf("%t", config.Enabled)},
		{"interval", config.Interval.String()},
		{"topics", strings.Join(config.Topics, ", ")},
	}
	keys := make([]string, 0, len(config.Settings))
	for key := range config.Settings {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		rows = append(rows, []string{key, fmt.Sprint(config.Settings[key])})
	}
	return renderTable([]string{"Setting", "Value"}, rows)
}

func newHobbyToggleCmd(app *app, use, short string, action func(*application.Service) func(context.Context) (string, error)) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			b, err := app.connect(cmd.Context())
			if err != nil {
				return err
			}

			message, err := action(b.service)(cmd.Context())
			if err != nil {
				return err
			}
			if message == "" {
				message = "Hobby " + use + " requested."
			}
			return writeText(cmd, message)
		},
	}
}
