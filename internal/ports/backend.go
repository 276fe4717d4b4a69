package ports

import (
	"context"

	"github.com/bnema/rclctl/internal/domain"
)

// RestraintUpdate is one per-dimension write. AuthorizationKey is forwarded
// verbatim; the backend is the only place it is checked.
type RestraintUpdate struct {
	Dimension        domain.Dimension
	Value            float64
	Authorized       bool
	AuthorizationKey string
}

type RestraintBackend interface {
	GetRestraints(ctx context.Context) (domain.RestraintSet, error)
	UpdateRestraint(ctx context.Context, update RestraintUpdate) (string, error)
	GetAuditTrail(ctx context.Context, limit int) (domain.AuditTrail, error)
}

type CouncilBackend interface {
	GetCouncilStatus(ctx context.Context) ([]domain.CouncilMember, error)
	ListDeliberations(ctx context.Context, limit int) ([]domain.Deliberation, error)
	Deliberate(ctx context.Context, req domain.DeliberationRequest) (domain.Deliberation, error)
}

type DebtBackend interface {
	GetDebt(ctx context.Context) (domain.DebtSummary, error)
	RepayDebt(ctx context.Context, decisionID string) (domain.DebtSummary, error)
}

type ObservabilityBackend interface {
	GetCognitiveState(ctx context.Context) (domain.CognitiveState, error)
	ListDecisions(ctx context.Context, limit int) ([]domain.DecisionRecord, error)
}

type NarrativeBackend interface {
	GetNarrative(ctx context.Context) (domain.NarrativeSummary, error)
	ListNarrativeEvents(ctx context.Context, limit int) ([]domain.NarrativeEvent, error)
	GetConsolidation(ctx context.Context) (domain.ConsolidationStatus, error)
	TriggerConsolidation(ctx context.Context) (domain.ConsolidationStatus, error)
}

type MemoryBackend interface {
	GetMemoryStats(ctx context.Context) (domain.MemoryStats, error)
	QueryMemory(ctx context.Context, query string, queryType domain.QueryType) (domain.MemoryQueryResult, error)
	ForgetSubject(ctx context.Context, subject string, requireConfirmation bool) (domain.ForgetResult, error)
}

type IQLBackend interface {
	RunIQL(ctx context.Context, query string) (domain.IQLResult, error)
	ListIQLExamples(ctx context.Context) ([]domain.IQLExample, error)
}

type HobbyBackend interface {
	GetHobbyStatus(ctx context.Context) (domain.HobbyStatus, error)
	ListHobbyActivities(ctx context.Context) ([]domain.HobbyActivity, error)
	ListHobbyInsights(ctx context.Context) ([]domain.HobbyInsight, error)
	GetHobbyConfig(ctx context.Context) (domain.HobbyConfig, error)
	StartHobby(ctx context.Context) (string, error)
	StopHobby(ctx context.Context) (string, error)
}

type SecurityBackend interface {
	GetSecurityStatus(ctx context.Context) (domain.SecurityStatus, error)
}

type Backend interface {
	RestraintBackend
	CouncilBackend
	DebtBackend
	ObservabilityBackend
	NarrativeBackend
	MemoryBackend
	IQLBackend
	HobbyBackend
	SecurityBackend
}
