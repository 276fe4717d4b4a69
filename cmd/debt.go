package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/bnema/rclctl/internal/application"
	"github.com/bnema/rclctl/internal/domain"
)

func newDebtCmd(app *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "debt",
		Short: "Inspect and repay cognitive debt",
	}

	cmd.AddCommand(
		newPanelCmd(app, "show", "Show outstanding cognitive debt by priority", application.PanelDebt),
		newDebtRepayCmd(app),
		newDebtRepayAllCmd(app),
	)

	return cmd
}

func newDebtRepayCmd(app *app) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "repay DECISION_ID",
		Short: "Repay the debt logged for one decision",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := app.connect(cmd.Context())
			if err != nil {
				return err
			}

			summary, err := b.debt.Repay(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return writeResult(cmd, summary, asJSON, func() string {
				return fmt.Sprintf("Repaid %s. Outstanding debt: %.2f", args[0], summary.Outstanding)
			})
		},
	}
	addJSONFlag(cmd, &asJSON)

	return cmd
}

type repayAllOutput struct {
	Succeeded int
	Failed    int
	Failures  map[string]string
}

func newDebtRepayAllCmd(app *app) *cobra.Command {
	var yes bool
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "repay-all",
		Short: "Repay every outstanding debt item, one request each",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			b, err := app.connect(cmd.Context())
			if err != nil {
				return err
			}

			summary, err := fetch(cmd, asJSON, "Loading cognitive debt...", func(ctx context.Context) (domain.DebtSummary, error) {
				return b.debt.Summary(ctx)
			})
			if err != nil {
				return err
			}

			confirm := func(count int) bool {
				if yes {
					return true
				}
				return promptYesNo(cmd, fmt.Sprintf("Repay all %d debt item(s)? [y/N] ", count))
			}

			tally, err := b.debt.RepayAll(cmd.Context(), summary.Ordered(), confirm)
			switch {
			case errors.Is(err, domain.ErrNothingToRepay):
				return writeText(cmd, "No cognitive debt to repay.")
			case errors.Is(err, domain.ErrConfirmationRequired):
				return writeText(cmd, "Repay cancelled.")
			case err != nil:
				return err
			}

			out := repayAllOutput{Succeeded: tally.Succeeded, Failed: tally.Failed, Failures: map[string]string{}}
			for id, failure := range tally.Failures {
				out.Failures[id] = failure.Error()
			}
			if err := writeResult(cmd, out, asJSON, func() string { return formatRepayTally(out) }); err != nil {
				return err
			}
			if tally.Failed > 0 {
				return fmt.Errorf("%d of %d repay request(s) failed", tally.Failed, tally.Total())
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Skip the confirmation prompt")
	addJSONFlag(cmd, &asJSON)

	return cmd
}

func promptYesNo(cmd *cobra.Command, question string) bool {
	_, _ = fmt.Fprint(cmd.ErrOrStderr(), question)
	line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
	if err != nil && line == "" {
		return false
	}
	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "y" || answer == "yes"
}

func formatRepayTally(out repayAllOutput) string {
	lines := []string{fmt.Sprintf("Repaid %d, failed %d.", out.Succeeded, out.Failed)}
	ids := make([]string, 0, len(out.Failures))
	for id := range out.Failures {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		lines = append(lines, "✗ "+id+": "+out.Failures[id])
	}
	return strings.Join(lines, "\n")
}
