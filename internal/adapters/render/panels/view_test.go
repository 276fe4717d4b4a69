package panels

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bnema/rclctl/internal/application"
	"github.com/bnema/rclctl/internal/domain"
)

type namedPanel struct{ name, title string }

func (p namedPanel) Name() string  { return p.name }
func (p namedPanel) Title() string { return p.title }

func (p namedPanel) Load(context.Context) (application.View, error) { return nil, nil }

func limit(v float64) *float64 { return &v }

func testRenderer() *Renderer {
	return NewRenderer(Options{
		Now:           time.Date(2026, 2, 14, 11, 0, 0, 0, time.UTC),
		Width:         80,
		MarkdownStyle: "notty",
	})
}

func TestRenderErrorViewCarriesUnderlyingMessage(t *testing.T) {
	view := application.ErrorView{
		Panel:   application.PanelDebt,
		Title:   "Cognitive Debt",
		Message: "Failed to load Cognitive Debt",
		Err:     "GET /rcl2/debt: status 503: backend warming up",
	}

	output, err := Render(view, Options{})
	require.NoError(t, err)
	assert.Contains(t, output, "Failed to load Cognitive Debt")
	assert.Contains(t, output, "backend warming up")
}

func TestRenderMatrixShowsPendingAndAuthorization(t *testing.T) {
	matrix := application.RestraintMatrix{
		State:        application.SessionDirty,
		PendingCount: 1,
		RequiresAuth: true,
		Rows: []application.RestraintRow{
			{
				Dimension:    "HALLUCINATION_RESISTANCE",
				Label:        "Hallucination Resistance",
				Baseline:     0.40,
				Value:        0.75,
				HardLimit:    limit(0.70),
				Pending:      true,
				ExceedsLimit: true,
			},
			{
				Dimension: "THINKING_BUDGET_MS",
				Label:     "Thinking Budget (ms)",
				Baseline:  1500,
				Value:     1500,
				Budget:    true,
			},
		},
	}

	output := testRenderer().Matrix(matrix, 0)
	assert.Contains(t, output, "state: dirty (1 pending)")
	assert.Contains(t, output, "> ")
	assert.Contains(t, output, "0.75")
	assert.Contains(t, output, "limit 0.70")
	assert.Contains(t, output, "* was 0.40")
	assert.Contains(t, output, "! exceeds limit")
	assert.Contains(t, output, "1500 ms")
	assert.Contains(t, output, "Authorization required")
}

func TestRenderMatrixMarksLockedRows(t *testing.T) {
	set := domain.RestraintSet{
		Values:     map[domain.Dimension]float64{"SAFETY": 0.9},
		HardLimits: map[domain.Dimension]*float64{"SAFETY": limit(0.9)},
	}

	output := testRenderer().Matrix(application.MatrixOf(set), NoCursor)
	assert.Contains(t, output, "state: clean")
	assert.Contains(t, output, "[locked]")
	assert.NotContains(t, output, "Authorization required")
}

func TestRenderRestraintsViewIncludesAuditTrail(t *testing.T) {
	view := application.RestraintsView{
		Set: domain.RestraintSet{Values: map[domain.Dimension]float64{"CURIOSITY": 0.3}},
		Audit: domain.AuditTrail{
			ChainValid: false,
			Changes: []domain.AuditEntry{{
				Dimension: "CURIOSITY", OldValue: 0.2, NewValue: 0.3, Authorized: true,
				Timestamp: time.Date(2026, 2, 14, 10, 55, 0, 0, time.UTC),
			}},
			UnauthorizedAttempts: []domain.UnauthorizedAttempt{{Dimension: "SAFETY", Value: 1, Reason: "missing key"}},
		},
	}

	output := testRenderer().View(view)
	assert.Contains(t, output, "Curiosity")
	assert.Contains(t, output, "0.20 -> 0.30")
	assert.Contains(t, output, "(authorized)")
	assert.Contains(t, output, "5m ago")
	assert.Contains(t, output, "CHAIN BROKEN")
	assert.Contains(t, output, "1 unauthorized attempt(s)")
}

func TestRenderDebtOrdersByPriority(t *testing.T) {
	view := application.DebtView{Summary: domain.DebtSummary{
		Outstanding: 2.5,
		Items: []domain.DebtItem{
			{DecisionID: "dec-low", Priority: domain.PriorityLow},
			{DecisionID: "dec-high", Priority: domain.PriorityHigh},
		},
	}}

	output := testRenderer().View(view)
	assert.Contains(t, output, "outstanding: 2.50")
	assert.Contains(t, output, "high 1, medium 0, low 1")
	assert.Less(t, strings.Index(output, "dec-high"), strings.Index(output, "dec-low"))

	empty := testRenderer().View(application.DebtView{})
	assert.Contains(t, empty, "No outstanding debt.")
}

func TestRenderCouncilDeliberation(t *testing.T) {
	d := domain.Deliberation{
		ID:          "act-1",
		Description: "raise curiosity",
		Decision:    domain.DecisionModify,
		Perspectives: []domain.Perspective{
			{Role: "skeptic", Vote: domain.DecisionReject, Confidence: 0.6, Concerns: []string{"drift"}},
		},
		Conflicts: []domain.Conflict{{Roles: [2]string{"ethicist", "skeptic"}, Issue: "scope"}},
	}

	r := testRenderer()
	list := r.View(application.CouncilView{
		Members:       []domain.CouncilMember{{Role: "skeptic", Active: false, Weight: 1}},
		Deliberations: []domain.Deliberation{d},
	})
	assert.Contains(t, list, "inactive")
	assert.Contains(t, list, "MODIFY")
	assert.Contains(t, list, "1 conflict(s)")

	detail := r.Deliberation(d)
	assert.Contains(t, detail, "REJECT")
	assert.Contains(t, detail, "60%")
	assert.Contains(t, detail, "- drift")
	assert.Contains(t, detail, "conflict ethicist vs skeptic: scope")
}

func TestRenderNarrativeUsesMarkdown(t *testing.T) {
	output := testRenderer().View(application.NarrativeView{
		Summary: domain.NarrativeSummary{Summary: "The agent **learned** patience.", Themes: []string{"growth"}, EventCount: 4},
		Events:  []domain.NarrativeEvent{{Kind: "reflection", Description: "looked back"}},
	})
	assert.Contains(t, output, "learned")
	assert.Contains(t, output, "themes: growth")
	assert.Contains(t, output, "reflection")
	assert.Contains(t, output, "idle")
}

func TestRenderIQLResultAndExamples(t *testing.T) {
	output := testRenderer().View(application.IQLView{
		Examples: []domain.IQLExample{{Name: "mood", Query: "SELECT mood FROM self", Description: "current mood"}},
		LastResult: &domain.IQLResult{
			Status: "success", Query: "SELECT mood", Fields: map[string]any{"mood": "calm"},
			ConstraintsSatisfied: true,
		},
	})
	assert.Contains(t, output, "SELECT mood FROM self")
	assert.Contains(t, output, "current mood")
	assert.Contains(t, output, "mood = calm")
	assert.Contains(t, output, "constraints satisfied")
}

func TestRenderMemoryForgetAndQuery(t *testing.T) {
	r := testRenderer()
	output := r.View(application.MemoryView{
		Stats:      domain.MemoryStats{TotalMemories: 12, Extra: map[string]any{"backend": "faiss"}},
		LastQuery:  &domain.MemoryQueryResult{Query: "cats", Type: domain.QueryTypeSemantic, Matches: []domain.MemoryMatch{{Subject: "pets", Score: 0.9}}},
		LastForget: &domain.ForgetResult{Subject: "pets", ConfirmationRequired: true},
	})
	assert.Contains(t, output, "memories: 12")
	assert.Contains(t, output, "backend: faiss")
	assert.Contains(t, output, `Query "cats" (semantic): 1 match(es)`)
	assert.Contains(t, output, "needs confirmation")

	assert.Contains(t, r.Forget(domain.ForgetResult{Subject: "pets", Forgotten: 1}), "Forgot 1 memory")
}

func TestRenderSecurityAndHobby(t *testing.T) {
	r := testRenderer()
	security := r.View(application.SecurityView{Status: domain.SecurityStatus{
		Status:           "degraded",
		APIKeyProtection: domain.ProtectionStatus{Enabled: true},
		SkillScanning:    domain.ProtectionStatus{Enabled: false, Detail: "scanner offline"},
	}})
	assert.Contains(t, security, "degraded")
	assert.Contains(t, security, "scanner offline")
	assert.Contains(t, security, "disabled")

	hobby := r.View(application.HobbyView{
		Status: domain.HobbyStatus{Running: true, CurrentActivity: "reading"},
		Config: domain.HobbyConfig{Enabled: true, Interval: 5 * time.Minute, Topics: []string{"go"}},
	})
	assert.Contains(t, hobby, "running")
	assert.Contains(t, hobby, "now: reading")
	assert.Contains(t, hobby, "every 5m0s")
	assert.Contains(t, hobby, "No insights yet.")
}

func TestRenderObservability(t *testing.T) {
	output := testRenderer().View(application.ObservabilityView{
		State: domain.CognitiveState{
			System1:     domain.SystemStats{Calls: 10, TotalTimeMS: 50},
			Escalations: 2,
		},
		Decisions: []domain.DecisionRecord{{ID: "d-1", Type: "tool_call", Confidence: 0.9}},
		Audit:     domain.AuditTrail{ChainValid: true},
	})
	assert.Contains(t, output, "avg 5.0 ms")
	assert.Contains(t, output, "escalations 2 (20% of system 1 calls)")
	assert.Contains(t, output, "d-1")
	assert.Contains(t, output, "chain valid")
}

func TestNewErrorViewRendersThroughPanelTitle(t *testing.T) {
	panel := namedPanel{name: application.PanelSecurity, title: "Security"}
	view := application.NewErrorView(panel, errors.New("dial tcp: connection refused"))

	output := testRenderer().View(view)
	assert.Contains(t, output, "Failed to load Security")
	assert.Contains(t, output, "connection refused")
}
