package cmd

import (
	"bufio"
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/bnema/rclctl/internal/domain"
)

func newTokenCmd(app *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Manage the backend API key",
	}

	cmd.AddCommand(newTokenSetCmd(app), newTokenRemoveCmd(app))

	return cmd
}

func newTokenSetCmd(app *app) *cobra.Command {
	var ref string
	var value string

	cmd := &cobra.Command{
		Use:   "set",
		Short: "Store the API key in pass, or the file store when pass is unavailable",
		Long:  "Store the API key sent as X-API-Key. Without --value the key is read from the first line of stdin.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if value == "" {
				line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
				if err != nil && line == "" {
					return fmt.Errorf("%w: api key is required", domain.ErrValidation)
				}
				value = line
			}
			value = strings.TrimSpace(value)
			if err := domain.RequireText("api key", value); err != nil {
				return err
			}

			resolved, err := app.tokenRef(cmd.Context(), ref)
			if err != nil {
				return err
			}
			if err := app.secretStore.Put(cmd.Context(), resolved, value); err != nil {
				return fmt.Errorf("store api key: %w", err)
			}
			return writeText(cmd, "Stored API key under "+resolved+".")
		},
	}

	cmd.Flags().StringVar(&ref, "ref", "", "Secret-store key (default: the profile's token ref)")
	cmd.Flags().StringVar(&value, "value", "", "API key value")

	return cmd
}

func newTokenRemoveCmd(app *app) *cobra.Command {
	var ref string

	cmd := &cobra.Command{
		Use:   "remove",
		Short: "Remove the stored API key",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			resolved, err := app.tokenRef(cmd.Context(), ref)
			if err != nil {
				return err
			}
			if err := app.secretStore.Delete(cmd.Context(), resolved); err != nil {
				return fmt.Errorf("remove api key: %w", err)
			}
			return writeText(cmd, "Removed API key "+resolved+".")
		},
	}

	cmd.Flags().StringVar(&ref, "ref", "", "Secret-store key (default: the profile's token ref)")

	return cmd
}

// tokenRef picks the secret key for token commands. A selected profile
// without a ref gets one derived from its name and saved back.
func (a *app) tokenRef(ctx context.Context, explicit string) (string, error) {
	if ref := strings.TrimSpace(explicit); ref != "" {
		return ref, nil
	}

	profile, found, err := a.selectedProfile(ctx)
	if err != nil {
		return "", err
	}
	if !found {
		if ref := strings.TrimSpace(a.cfg.GetString(keyTokenRef)); ref != "" {
			return ref, nil
		}
		return defaultTokenRef, nil
	}
	if profile.TokenRef != "" {
		return profile.TokenRef, nil
	}

	profile.TokenRef = "rclctl/" + profile.Name + "/api_key"
	if err := a.profiles.Save(ctx, profile); err != nil {
		return "", fmt.Errorf("record token ref on profile %s: %w", profile.Name, err)
	}
	return profile.TokenRef, nil
}
