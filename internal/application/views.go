package application

import "github.com/bnema/rclctl/internal/domain"

// View is the result of a panel load, computed without touching the display.
type View interface {
	PanelName() string
}

type RestraintsView struct {
	Set   domain.RestraintSet
	Audit domain.AuditTrail
}

type CouncilView struct {
	Members       []domain.CouncilMember
	Deliberations []domain.Deliberation
}

type DebtView struct {
	Summary domain.DebtSummary
}

type NarrativeView struct {
	Summary       domain.NarrativeSummary
	Events        []domain.NarrativeEvent
	Consolidation domain.ConsolidationStatus
}

type MemoryView struct {
	Stats      domain.MemoryStats
	LastQuery  *domain.MemoryQueryResult
	LastForget *domain.ForgetResult
}

type IQLView struct {
	Examples   []domain.IQLExample
	LastResult *domain.IQLResult
}

type HobbyView struct {
	Status     domain.HobbyStatus
	Activities []domain.HobbyActivity
	Insights   []domain.HobbyInsight
	Config     domain.HobbyConfig
}

type SecurityView struct {
	Status domain.SecurityStatus
}

type ObservabilityView struct {
	State     domain.CognitiveState
	Decisions []domain.DecisionRecord
	Audit     domain.AuditTrail
}

// ErrorView replaces a panel whose load failed. Err carries the underlying
// error text so the panel is never blank.
type ErrorView struct {
	Panel   string
	Title   string
	Message string
	Err     string
}

func NewErrorView(panel Panel, err error) ErrorView {
	view := ErrorView{
		Panel:   panel.Name(),
		Title:   panel.Title(),
		Message: "Failed to load " + panel.Title(),
	}
	if err != nil {
		view.Err = err.Error()
	}
	return view
}

func (RestraintsView) PanelName() string    { return PanelRestraints }
func (CouncilView) PanelName() string       { return PanelCouncil }
func (DebtView) PanelName() string          { return PanelDebt }
func (NarrativeView) PanelName() string     { return PanelNarrative }
func (MemoryView) PanelName() string        { return PanelMemory }
func (IQLView) PanelName() string           { return PanelIQL }
func (HobbyView) PanelName() string         { return PanelHobby }
func (SecurityView) PanelName() string      { return PanelSecurity }
func (ObservabilityView) PanelName() string { return PanelObservability }
func (v ErrorView) PanelName() string       { return v.Panel }
