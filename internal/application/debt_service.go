package application

import (
	"context"
	"fmt"

	"github.com/bnema/rclctl/internal/domain"
	"github.com/bnema/rclctl/internal/ports"
)

type RepayTally struct {
	Succeeded int
	Failed    int
	Failures  map[string]error
}

func (t RepayTally) Total() int {
	return t.Succeeded + t.Failed
}

type DebtService struct {
	backend ports.DebtBackend
}

func NewDebtService(backend ports.DebtBackend) *DebtService {
	return &DebtService{backend: backend}
}

func (s *DebtService) Summary(ctx context.Context) (domain.DebtSummary, error) {
	summary, err := s.backend.GetDebt(ctx)
	if err != nil {
		return domain.DebtSummary{}, fmt.Errorf("get debt: %w", err)
	}
	return summary, nil
}

func (s *DebtService) Repay(ctx context.Context, decisionID string) (domain.DebtSummary, error) {
	if err := domain.RequireText("decision id", decisionID); err != nil {
		return domain.DebtSummary{}, err
	}

	summary, err := s.backend.RepayDebt(ctx, decisionID)
	if err != nil {
		return domain.DebtSummary{}, fmt.Errorf("repay debt %s: %w", decisionID, err)
	}
	return summary, nil
}

// RepayAll repays items one request at a time. An empty queue and a declined
// confirmation both return before any request is made.
func (s *DebtService) RepayAll(ctx context.Context, items []domain.DebtItem, confirm func(count int) bool) (RepayTally, error) {
	if len(items) == 0 {
		return RepayTally{}, domain.ErrNothingToRepay
	}
	if confirm == nil || !confirm(len(items)) {
		return RepayTally{}, domain.ErrConfirmationRequired
	}

	tally := RepayTally{Failures: map[string]error{}}
	for _, item := range items {
		if _, err := s.Repay(ctx, item.DecisionID); err != nil {
			tally.Failed++
			tally.Failures[item.DecisionID] = err
			continue
		}
		tally.Succeeded++
	}

	return tally, nil
}
