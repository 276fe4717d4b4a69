package application

import (
	"context"
	"fmt"
	"strings"

	"github.com/bnema/rclctl/internal/domain"
	"github.com/bnema/rclctl/internal/ports"
	"github.com/google/uuid"
)

// Service holds the one-shot panel actions. Input is validated before any
// request is issued.
type Service struct {
	backend ports.Backend
	newID   func() string
}

func NewService(backend ports.Backend) *Service {
	return &Service{
		backend: backend,
		newID:   func() string { return uuid.NewString() },
	}
}

func (s *Service) Deliberate(ctx context.Context, req domain.DeliberationRequest) (domain.Deliberation, error) {
	if err := req.Validate(); err != nil {
		return domain.Deliberation{}, err
	}
	if strings.TrimSpace(req.ActionID) == "" {
		req.ActionID = s.newID()
	}
	if req.Stakes == "" {
		req.Stakes = domain.StakesMedium
	}
	if req.Context == nil {
		req.Context = map[string]any{}
	}

	result, err := s.backend.Deliberate(ctx, req)
	if err != nil {
		return domain.Deliberation{}, fmt.Errorf("deliberate %s: %w", req.ActionID, err)
	}
	return result, nil
}

func (s *Service) QueryMemory(ctx context.Context, query string, queryType domain.QueryType) (domain.MemoryQueryResult, error) {
	if err := domain.RequireText("query", query); err != nil {
		return domain.MemoryQueryResult{}, err
	}
	if queryType == "" {
		queryType = domain.QueryTypeSemantic
	}

	result, err := s.backend.QueryMemory(ctx, strings.TrimSpace(query), queryType)
	if err != nil {
		return domain.MemoryQueryResult{}, fmt.Errorf("query eigenmemory: %w", err)
	}
	return result, nil
}

func (s *Service) ForgetSubject(ctx context.Context, subject string, requireConfirmation bool) (domain.ForgetResult, error) {
	if err := domain.RequireText("subject", subject); err != nil {
		return domain.ForgetResult{}, err
	}

	result, err := s.backend.ForgetSubject(ctx, strings.TrimSpace(subject), requireConfirmation)
	if err != nil {
		return domain.ForgetResult{}, fmt.Errorf("forget subject: %w", err)
	}
	return result, nil
}

func (s *Service) RunIQL(ctx context.Context, query string) (domain.IQLResult, error) {
	if err := domain.RequireText("query", query); err != nil {
		return domain.IQLResult{}, err
	}

	result, err := s.backend.RunIQL(ctx, strings.TrimSpace(query))
	if err != nil {
		return domain.IQLResult{}, fmt.Errorf("run iql: %w", err)
	}
	return result, nil
}

func (s *Service) Consolidate(ctx context.Context) (domain.ConsolidationStatus, error) {
	status, err := s.backend.TriggerConsolidation(ctx)
	if err != nil {
		return domain.ConsolidationStatus{}, fmt.Errorf("trigger consolidation: %w", err)
	}
	return status, nil
}

func (s *Service) StartHobby(ctx context.Context) (string, error) {
	message, err := s.backend.StartHobby(ctx)
	if err != nil {
		return "", fmt.Errorf("start hobby: %w", err)
	}
	return message, nil
}

func (s *Service) StopHobby(ctx context.Context) (string, error) {
	message, err := s.backend.StopHobby(ctx)
	if err != nil {
		return "", fmt.Errorf("stop hobby: %w", err)
	}
	return message, nil
}

func (s *Service) AuditTrail(ctx context.Context, limit int) (domain.AuditTrail, error) {
	trail, err := s.backend.GetAuditTrail(ctx, limit)
	if err != nil {
		return domain.AuditTrail{}, fmt.Errorf("get audit trail: %w", err)
	}
	return trail, nil
}

func (s *Service) Decisions(ctx context.Context, limit int) ([]domain.DecisionRecord, error) {
	decisions, err := s.backend.ListDecisions(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("list decisions: %w", err)
	}
	return decisions, nil
}

func (s *Service) CognitiveState(ctx context.Context) (domain.CognitiveState, error) {
	state, err := s.backend.GetCognitiveState(ctx)
	if err != nil {
		return domain.CognitiveState{}, fmt.Errorf("get cognitive state: %w", err)
	}
	return state, nil
}
