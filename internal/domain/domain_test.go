package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func limit(v float64) *float64 { return &v }

func TestPendingChangeSetTracksOnlyDivergentValues(t *testing.T) {
	pending := PendingChangeSet{}

	assert.True(t, pending.Track("SAFETY", 0.40, 0.45))
	assert.False(t, pending.Track("CURIOSITY", 0.40, 0.4005))
	assert.Equal(t, PendingChangeSet{"SAFETY": 0.45}, pending)

	// dragging back within epsilon removes the entry
	assert.False(t, pending.Track("SAFETY", 0.40, 0.4009))
	assert.Empty(t, pending)
}

func TestPendingChangeSetEpsilonBoundary(t *testing.T) {
	tests := []struct {
		name     string
		baseline float64
		value    float64
		want     bool
	}{
		{name: "equal", baseline: 0.5, value: 0.5, want: false},
		{name: "below epsilon", baseline: 0.5, value: 0.5009, want: false},
		{name: "above epsilon", baseline: 0.5, value: 0.502, want: true},
		{name: "negative delta", baseline: 0.5, value: 0.49, want: true},
		{name: "budget ms", baseline: 250, value: 300, want: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pending := PendingChangeSet{}
			assert.Equal(t, tt.want, pending.Track("DIM", tt.baseline, tt.value))
			_, ok := pending["DIM"]
			assert.Equal(t, tt.want, ok)
		})
	}
}

func TestRequiresAuth(t *testing.T) {
	set := RestraintSet{
		Values: map[Dimension]float64{
			"HALLUCINATION_RESISTANCE": 0.40,
			"CURIOSITY":                0.30,
		},
		HardLimits: map[Dimension]*float64{
			"HALLUCINATION_RESISTANCE": limit(0.70),
			"CURIOSITY":                nil,
		},
	}

	assert.True(t, RequiresAuth(PendingChangeSet{"HALLUCINATION_RESISTANCE": 0.75}, set))
	assert.False(t, RequiresAuth(PendingChangeSet{"HALLUCINATION_RESISTANCE": 0.70}, set))
	assert.False(t, RequiresAuth(PendingChangeSet{"CURIOSITY": 1.0}, set), "null hard limit never requires auth")
	assert.False(t, RequiresAuth(PendingChangeSet{}, set))
}

func TestHardLimitLookupIsCaseInsensitive(t *testing.T) {
	set := RestraintSet{
		Values:     map[Dimension]float64{"hallucination_resistance": 0.8},
		HardLimits: map[Dimension]*float64{"HALLUCINATION_RESISTANCE": limit(0.7)},
	}

	got, ok := set.HardLimit("hallucination_resistance")
	require.True(t, ok)
	assert.InDelta(t, 0.7, got, 1e-9)
	assert.True(t, set.Locked("hallucination_resistance"))

	_, ok = set.HardLimit("unknown")
	assert.False(t, ok)
}

func TestRestraintSetCloneIsDeep(t *testing.T) {
	set := RestraintSet{
		Values:     map[Dimension]float64{"A": 0.1},
		HardLimits: map[Dimension]*float64{"A": limit(0.5)},
	}
	clone := set.Clone()
	clone.Values["A"] = 0.9
	*clone.HardLimits["A"] = 0.9

	assert.InDelta(t, 0.1, set.Values["A"], 1e-9)
	assert.InDelta(t, 0.5, *set.HardLimits["A"], 1e-9)
}

func TestDimensionHelpers(t *testing.T) {
	assert.Equal(t, "Hallucination Resistance", Dimension("HALLUCINATION_RESISTANCE").Label())
	assert.Equal(t, "Latency Budget (ms)", Dimension("LATENCY_BUDGET_MS").Label())
	assert.True(t, Dimension("LATENCY_BUDGET_MS").IsBudget())
	assert.False(t, Dimension("CURIOSITY").IsBudget())
	assert.InDelta(t, 1.0, Dimension("CURIOSITY").Clamp(1.4), 1e-9)
	assert.InDelta(t, 1400.0, Dimension("LATENCY_BUDGET_MS").Clamp(1400), 1e-9)
	assert.InDelta(t, 0.0, Dimension("CURIOSITY").Clamp(-0.2), 1e-9)
}

func TestDebtSummaryOrdered(t *testing.T) {
	base := time.Date(2026, 2, 14, 12, 0, 0, 0, time.UTC)
	summary := DebtSummary{Items: []DebtItem{
		{DecisionID: "low-1", Priority: PriorityLow, LoggedAt: base},
		{DecisionID: "high-2", Priority: PriorityHigh, LoggedAt: base.Add(time.Hour)},
		{DecisionID: "high-1", Priority: PriorityHigh, LoggedAt: base},
		{DecisionID: "med-1", Priority: PriorityMedium, LoggedAt: base},
	}}

	var ids []string
	for _, item := range summary.Ordered() {
		ids = append(ids, item.DecisionID)
	}
	assert.Equal(t, []string{"high-1", "high-2", "med-1", "low-1"}, ids)
	assert.Equal(t, 2, summary.CountByPriority()[PriorityHigh])
}

func TestDeliberationDissenters(t *testing.T) {
	d := Deliberation{
		Decision: DecisionApprove,
		Perspectives: []Perspective{
			{Role: "ethicist", Vote: DecisionApprove},
			{Role: "skeptic", Vote: DecisionReject},
		},
	}
	assert.Equal(t, []string{"skeptic"}, d.Dissenters())
}

func TestRequireTextAndParsers(t *testing.T) {
	require.ErrorIs(t, RequireText("query", "   "), ErrValidation)
	require.NoError(t, RequireText("query", "x"))

	stakes, err := ParseStakes("")
	require.NoError(t, err)
	assert.Equal(t, StakesMedium, stakes)
	_, err = ParseStakes("extreme")
	require.ErrorIs(t, err, ErrValidation)

	qt, err := ParseQueryType("")
	require.NoError(t, err)
	assert.Equal(t, QueryTypeSemantic, qt)
	_, err = ParseQueryType("graph")
	require.ErrorIs(t, err, ErrValidation)
}

func TestCognitiveStateRates(t *testing.T) {
	state := CognitiveState{
		System1:     SystemStats{Calls: 200, TotalTimeMS: 1000},
		System2:     SystemStats{Calls: 0},
		Escalations: 10,
	}
	assert.InDelta(t, 5.0, state.System1.AverageMS(), 1e-9)
	assert.InDelta(t, 0.0, state.System2.AverageMS(), 1e-9)
	assert.InDelta(t, 0.05, state.EscalationRate(), 1e-9)
}

func TestProfileValidate(t *testing.T) {
	assert.NoError(t, Profile{Name: "local", BaseURL: "http://127.0.0.1:8000"}.Validate())
	assert.Error(t, Profile{Name: "", BaseURL: "http://x"}.Validate())
	assert.Error(t, Profile{Name: "x", BaseURL: "ftp://x"}.Validate())
}
