package cmd

import (
	"github.com/spf13/cobra"

	"github.com/bnema/rclctl/internal/domain"
)

func newProfileCmd(app *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Manage backend connection profiles",
	}

	cmd.AddCommand(
		newProfileListCmd(app),
		newProfileSetCmd(app),
		newProfileUseCmd(app),
		newProfileRemoveCmd(app),
	)

	return cmd
}

func newProfileListCmd(app *app) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List connection profiles",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			profiles, err := app.profiles.List(cmd.Context())
			if err != nil {
				return err
			}
			return writeResult(cmd, profiles, asJSON, func() string {
				rows := make([][]string, 0, len(profiles))
				for _, profile := range profiles {
					marker := ""
					if profile.Active {
						marker = "*"
					}
					rows = append(rows, []string{marker, profile.Name, profile.BaseURL, profile.WSPath, profile.TokenRef})
				}
				return renderTable([]string{"", "Name", "Base URL", "WS path", "Token ref"}, rows)
			})
		},
	}
	addJSONFlag(cmd, &asJSON)

	return cmd
}

func newProfileSetCmd(app *app) *cobra.Command {
	var profile domain.Profile
	var activate bool

	cmd := &cobra.Command{
		Use:   "set NAME",
		Short: "Create or update a connection profile",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			profile.Name = args[0]
			profile.Active = activate
			if err := app.profiles.Save(cmd.Context(), profile); err != nil {
				return err
			}
			return writeText(cmd, "Saved profile "+profile.Name+".")
		},
	}

	cmd.Flags().StringVar(&profile.BaseURL, "url", "", "Backend base URL")
	cmd.Flags().StringVar(&profile.WSPath, "ws-path", "", "Event WebSocket path (default /rcl2/ws)")
	cmd.Flags().StringVar(&profile.TokenRef, "token-ref", "", "Secret-store key holding the API key")
	cmd.Flags().BoolVar(&activate, "use", false, "Make this the active profile")
	_ = cmd.MarkFlagRequired("url")

	return cmd
}

func newProfileUseCmd(app *app) *cobra.Command {
	return &cobra.Command{
		Use:   "use NAME",
		Short: "Make a profile the active one",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.profiles.SetActive(cmd.Context(), args[0]); err != nil {
				return err
			}
			return writeText(cmd, "Active profile: "+args[0])
		},
	}
}

func newProfileRemoveCmd(app *app) *cobra.Command {
	return &cobra.Command{
		Use:     "remove NAME",
		Aliases: []string{"rm"},
		Short:   "Remove a connection profile",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.profiles.Delete(cmd.Context(), args[0]); err != nil {
				return err
			}
			return writeText(cmd, "Removed profile "+args[0]+".")
		},
	}
}
