package application

import (
	"context"
	"sync"

	"github.com/bnema/rclctl/internal/domain"
	"github.com/bnema/rclctl/internal/ports"
)

// fakeBackend serves canned data and fails any method listed in errs.
type fakeBackend struct {
	mu    sync.Mutex
	errs  map[string]error
	calls map[string]int

	restraints    domain.RestraintSet
	audit         domain.AuditTrail
	members       []domain.CouncilMember
	deliberations []domain.Deliberation
	debt          domain.DebtSummary
	lastDeliberation domain.DeliberationRequest
	lastMemoryQuery  string
	lastIQL          string
}

var _ ports.Backend = (*fakeBackend)(nil)

func newFakeBackend() *fakeBackend {
	return &fakeBackend{errs: map[string]error{}, calls: map[string]int{}}
}

func (f *fakeBackend) hit(name string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[name]++
	return f.errs[name]
}

func (f *fakeBackend) count(name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[name]
}

func (f *fakeBackend) GetRestraints(context.Context) (domain.RestraintSet, error) {
	return f.restraints, f.hit("GetRestraints")
}

func (f *fakeBackend) UpdateRestraint(context.Context, ports.RestraintUpdate) (string, error) {
	return "", f.hit("UpdateRestraint")
}

func (f *fakeBackend) GetAuditTrail(context.Context, int) (domain.AuditTrail, error) {
	return f.audit, f.hit("GetAuditTrail")
}

func (f *fakeBackend) GetCouncilStatus(context.Context) ([]domain.CouncilMember, error) {
	return f.members, f.hit("GetCouncilStatus")
}

func (f *fakeBackend) ListDeliberations(context.Context, int) ([]domain.Deliberation, error) {
	return f.deliberations, f.hit("ListDeliberations")
}

func (f *fakeBackend) Deliberate(_ context.Context, req domain.DeliberationRequest) (domain.Deliberation, error) {
	f.mu.Lock()
	f.lastDeliberation = req
	f.mu.Unlock()
	return domain.Deliberation{ID: req.ActionID, Decision: domain.DecisionApprove}, f.hit("Deliberate")
}

func (f *fakeBackend) GetDebt(context.Context) (domain.DebtSummary, error) {
	return f.debt, f.hit("GetDebt")
}

func (f *fakeBackend) RepayDebt(context.Context, string) (domain.DebtSummary, error) {
	return f.debt, f.hit("RepayDebt")
}

func (f *fakeBackend) GetCognitiveState(context.Context) (domain.CognitiveState, error) {
	return domain.CognitiveState{Escalations: 3}, f.hit("GetCognitiveState")
}

func (f *fakeBackend) ListDecisions(context.Context, int) ([]domain.DecisionRecord, error) {
	return []domain.DecisionRecord{{ID: "dec-1"}}, f.hit("ListDecisions")
}

func (f *fakeBackend) GetNarrative(context.Context) (domain.NarrativeSummary, error) {
	return domain.NarrativeSummary{Summary: "steady"}, f.hit("GetNarrative")
}

func (f *fakeBackend) ListNarrativeEvents(context.Context, int) ([]domain.NarrativeEvent, error) {
	return nil, f.hit("ListNarrativeEvents")
}

func (f *fakeBackend) GetConsolidation(context.Context) (domain.ConsolidationStatus, error) {
	return domain.ConsolidationStatus{}, f.hit("GetConsolidation")
}

func (f *fakeBackend) TriggerConsolidation(context.Context) (domain.ConsolidationStatus, error) {
	return domain.ConsolidationStatus{Running: true}, f.hit("TriggerConsolidation")
}

func (f *fakeBackend) GetMemoryStats(context.Context) (domain.MemoryStats, error) {
	return domain.MemoryStats{TotalMemories: 42}, f.hit("GetMemoryStats")
}

func (f *fakeBackend) QueryMemory(_ context.Context, query string, qt domain.QueryType) (domain.MemoryQueryResult, error) {
	f.mu.Lock()
	f.lastMemoryQuery = query
	f.mu.Unlock()
	return domain.MemoryQueryResult{Query: query, Type: qt}, f.hit("QueryMemory")
}

func (f *fakeBackend) ForgetSubject(_ context.Context, subject string, confirm bool) (domain.ForgetResult, error) {
	return domain.ForgetResult{Subject: subject, ConfirmationRequired: confirm}, f.hit("ForgetSubject")
}

func (f *fakeBackend) RunIQL(_ context.Context, query string) (domain.IQLResult, error) {
	f.mu.Lock()
	f.lastIQL = query
	f.mu.Unlock()
	return domain.IQLResult{Status: "success", Query: query}, f.hit("RunIQL")
}

func (f *fakeBackend) ListIQLExamples(context.Context) ([]domain.IQLExample, error) {
	return []domain.IQLExample{{Name: "all"}}, f.hit("ListIQLExamples")
}

func (f *fakeBackend) GetHobbyStatus(context.Context) (domain.HobbyStatus, error) {
	return domain.HobbyStatus{Running: true}, f.hit("GetHobbyStatus")
}

func (f *fakeBackend) ListHobbyActivities(context.Context) ([]domain.HobbyActivity, error) {
	return nil, f.hit("ListHobbyActivities")
}

func (f *fakeBackend) ListHobbyInsights(context.Context) ([]domain.HobbyInsight, error) {
	return nil, f.hit("ListHobbyInsights")
}

func (f *fakeBackend) GetHobbyConfig(context.Context) (domain.HobbyConfig, error) {
	return domain.HobbyConfig{}, f.hit("GetHobbyConfig")
}

func (f *fakeBackend) StartHobby(context.Context) (string, error) {
	return "started", f.hit("StartHobby")
}

func (f *fakeBackend) StopHobby(context.Context) (string, error) {
	return "stopped", f.hit("StopHobby")
}

func (f *fakeBackend) GetSecurityStatus(context.Context) (domain.SecurityStatus, error) {
	return domain.SecurityStatus{Status: "secure"}, f.hit("GetSecurityStatus")
}
