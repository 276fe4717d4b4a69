package cmd

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/bnema/rclctl/internal/adapters/render/panels"
	"github.com/bnema/rclctl/internal/application"
	"github.com/bnema/rclctl/internal/domain"
)

func newRestraintsCmd(app *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "restraints",
		Short: "Inspect and tune the restraint matrix",
	}

	cmd.AddCommand(
		newPanelCmd(app, "show", "Show current restraint values, hard limits and the audit chain", application.PanelRestraints),
		newRestraintsSetCmd(app),
		newRestraintsAuditCmd(app),
	)

	return cmd
}

type restraintSetOutput struct {
	Saved      []domain.Dimension
	Failed     map[domain.Dimension]string
	Messages   map[domain.Dimension]string
	Refreshed  bool
	RefreshErr string `json:",omitempty"`
	Matrix     application.RestraintMatrix
}

func newRestraintsSetCmd(app *app) *cobra.Command {
	var authorizationKey string
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "set DIMENSION=VALUE...",
		Short: "Write one or more restraint values",
		Long:  "Write restraint values one request per dimension. A value above a dimension's hard limit is refused locally unless --authorization-key is given; the key is only checked by the backend.",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			edits, err := parseRestraintEdits(args)
			if err != nil {
				return err
			}

			b, err := app.connect(cmd.Context())
			if err != nil {
				return err
			}
			session := app.newSession(b)
			if err := session.Load(cmd.Context()); err != nil {
				return err
			}
			if authorizationKey != "" {
				if err := session.Authorize(authorizationKey); err != nil {
					return err
				}
			}

			for _, dim := range sortedDimensions(edits) {
				if _, err := session.Edit(dim, edits[dim]); err != nil {
					if errors.Is(err, domain.ErrDimensionLocked) {
						return fmt.Errorf("%w; pass --authorization-key to change it", err)
					}
					return err
				}
			}

			result, err := session.Save(cmd.Context())
			if errors.Is(err, domain.ErrAuthorizationRequired) {
				return fmt.Errorf("%w; pass --authorization-key", err)
			}
			if err != nil {
				return err
			}
			if result.Attempted() == 0 {
				return writeText(cmd, "No pending changes.")
			}

			out := restraintSetOutput{
				Saved:     result.Saved,
				Failed:    map[domain.Dimension]string{},
				Messages:  result.Messages,
				Refreshed: result.Refreshed,
				Matrix:    session.Snapshot(),
			}
			for dim, failure := range result.Failed {
				out.Failed[dim] = failure.Error()
			}
			if result.RefreshErr != nil {
				out.RefreshErr = result.RefreshErr.Error()
			}

			if err := writeResult(cmd, out, asJSON, func() string {
				return formatSaveResult(app.renderer(), out)
			}); err != nil {
				return err
			}
			if len(result.Failed) > 0 {
				return fmt.Errorf("%d of %d restraint update(s) failed", len(result.Failed), result.Attempted())
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&authorizationKey, "authorization-key", "", "Authorization key sent with every update (needed above a hard limit)")
	addJSONFlag(cmd, &asJSON)

	return cmd
}

func newRestraintsAuditCmd(app *app) *cobra.Command {
	var limit int
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "audit",
		Short: "Show the restraint audit trail",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			b, err := app.connect(cmd.Context())
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("limit") {
				limit = app.cfg.GetInt(keyAuditLimit)
			}

			trail, err := fetch(cmd, asJSON, "Loading audit trail...", func(ctx context.Context) (domain.AuditTrail, error) {
				return b.service.AuditTrail(ctx, limit)
			})
			if err != nil {
				return err
			}
			return writeResult(cmd, trail, asJSON, func() string {
				return app.renderer().AuditTrail(trail)
			})
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "Number of audit entries")
	addJSONFlag(cmd, &asJSON)

	return cmd
}

func parseRestraintEdits(args []string) (map[domain.Dimension]float64, error) {
	edits := make(map[domain.Dimension]float64, len(args))
	for _, arg := range args {
		name, raw, ok := strings.Cut(arg, "=")
		name = strings.TrimSpace(name)
		if !ok || name == "" {
			return nil, fmt.Errorf("%w: expected DIMENSION=VALUE, got %q", domain.ErrValidation, arg)
		}
		value, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
		if err != nil {
			return nil, fmt.Errorf("%w: value for %s: %v", domain.ErrValidation, name, err)
		}
		edits[domain.Dimension(strings.ToUpper(name))] = value
	}
	return edits, nil
}

func sortedDimensions(edits map[domain.Dimension]float64) []domain.Dimension {
	dims := make([]domain.Dimension, 0, len(edits))
	for dim := range edits {
		dims = append(dims, dim)
	}
	sort.Slice(dims, func(i, j int) bool { return dims[i] < dims[j] })
	return dims
}

func formatSaveResult(renderer *panels.Renderer, out restraintSetOutput) string {
	lines := make([]string, 0, len(out.Saved)+len(out.Failed)+2)
	for _, dim := range out.Saved {
		line := "✓ " + string(dim)
		if message := out.Messages[dim]; message != "" {
			line += ": " + message
		}
		lines = append(lines, line)
	}
	failed := make([]string, 0, len(out.Failed))
	for dim := range out.Failed {
		failed = append(failed, string(dim))
	}
	sort.Strings(failed)
	for _, dim := range failed {
		lines = append(lines, "✗ "+dim+": "+out.Failed[domain.Dimension(dim)])
	}
	if out.RefreshErr != "" {
		lines = append(lines, "refresh failed: "+out.RefreshErr)
	}
	lines = append(lines, "", renderer.Matrix(out.Matrix, panels.NoCursor))
	return strings.Join(lines, "\n")
}
