package rcl2

import (
	"context"

	"github.com/bnema/rclctl/internal/domain"
)

const (
	debtPath      = "/rcl2/debt"
	debtRepayPath = "/rcl2/debt/repay"
)

type debtItemWire struct {
	DecisionID string    `json:"decision_id"`
	Reason     string    `json:"reason"`
	Priority   string    `json:"priority"`
	LoggedAt   timestamp `json:"logged_at"`
}

type debtResponse struct {
	OutstandingDebt float64        `json:"outstanding_debt"`
	DebtItems       []debtItemWire `json:"debt_items"`
}

type repayRequest struct {
	DecisionID string `json:"decision_id"`
}

func (r debtResponse) toDomain() domain.DebtSummary {
	summary := domain.DebtSummary{
		Outstanding: r.OutstandingDebt,
		Items:       make([]domain.DebtItem, 0, len(r.DebtItems)),
	}
	for _, item := range r.DebtItems {
		summary.Items = append(summary.Items, domain.DebtItem{
			DecisionID: item.DecisionID,
			Reason:     item.Reason,
			Priority:   domain.Priority(item.Priority),
			LoggedAt:   item.LoggedAt.Time,
		})
	}
	return summary
}

func (c *Client) GetDebt(ctx context.Context) (domain.DebtSummary, error) {
	var resp debtResponse
	if err := c.get(ctx, debtPath, nil, &resp); err != nil {
		return domain.DebtSummary{}, err
	}
	return resp.toDomain(), nil
}

func (c *Client) RepayDebt(ctx context.Context, decisionID string) (domain.DebtSummary, error) {
	var resp debtResponse
	if err := c.post(ctx, debtRepayPath, repayRequest{DecisionID: decisionID}, &resp); err != nil {
		return domain.DebtSummary{}, err
	}
	return resp.toDomain(), nil
}
