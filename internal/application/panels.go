package application

import (
	"context"
	"fmt"
	"sync"

	"github.com/bnema/rclctl/internal/domain"
	"github.com/bnema/rclctl/internal/ports"
	"golang.org/x/sync/errgroup"
)

const (
	PanelRestraints    = "restraints"
	PanelCouncil       = "council"
	PanelDebt          = "debt"
	PanelNarrative     = "narrative"
	PanelMemory        = "eigenmemory"
	PanelIQL           = "iql"
	PanelHobby         = "hobby"
	PanelSecurity      = "security"
	PanelObservability = "observability"
)

// Panel loads one slice of backend state. A failed fetch fails the whole
// load; there is no partial view and no automatic retry.
type Panel interface {
	Name() string
	Title() string
	Load(ctx context.Context) (View, error)
}

type PanelLimits struct {
	Audit         int
	Deliberations int
	Decisions     int
	Events        int
}

func DefaultPanelLimits() PanelLimits {
	return PanelLimits{Audit: 20, Deliberations: 10, Decisions: 20, Events: 20}
}

// NewPanels builds every panel in tab order.
func NewPanels(backend ports.Backend, limits PanelLimits) []Panel {
	return []Panel{
		&RestraintsPanel{backend: backend, auditLimit: limits.Audit},
		&CouncilPanel{backend: backend, limit: limits.Deliberations},
		&DebtPanel{backend: backend},
		&NarrativePanel{backend: backend, limit: limits.Events},
		&MemoryPanel{backend: backend},
		&IQLPanel{backend: backend},
		&HobbyPanel{backend: backend},
		&SecurityPanel{backend: backend},
		&ObservabilityPanel{backend: backend, decisionLimit: limits.Decisions, auditLimit: limits.Audit},
	}
}

type RestraintsPanel struct {
	backend    ports.RestraintBackend
	auditLimit int
}

func (p *RestraintsPanel) Name() string  { return PanelRestraints }
func (p *RestraintsPanel) Title() string { return "Restraint Matrix" }

func (p *RestraintsPanel) Load(ctx context.Context) (View, error) {
	var view RestraintsView
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		set, err := p.backend.GetRestraints(gctx)
		if err != nil {
			return fmt.Errorf("get restraints: %w", err)
		}
		view.Set = set
		return nil
	})
	g.Go(func() error {
		trail, err := p.backend.GetAuditTrail(gctx, p.auditLimit)
		if err != nil {
			return fmt.Errorf("get audit trail: %w", err)
		}
		view.Audit = trail
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return view, nil
}

type CouncilPanel struct {
	backend ports.CouncilBackend
	limit   int
}

func (p *CouncilPanel) Name() string  { return PanelCouncil }
func (p *CouncilPanel) Title() string { return "Council" }

func (p *CouncilPanel) Load(ctx context.Context) (View, error) {
	var view CouncilView
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		members, err := p.backend.GetCouncilStatus(gctx)
		if err != nil {
			return fmt.Errorf("get council status: %w", err)
		}
		view.Members = members
		return nil
	})
	g.Go(func() error {
		deliberations, err := p.backend.ListDeliberations(gctx, p.limit)
		if err != nil {
			return fmt.Errorf("list deliberations: %w", err)
		}
		view.Deliberations = deliberations
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return view, nil
}

type DebtPanel struct {
	backend ports.DebtBackend
}

func (p *DebtPanel) Name() string  { return PanelDebt }
func (p *DebtPanel) Title() string { return "Cognitive Debt" }

func (p *DebtPanel) Load(ctx context.Context) (View, error) {
	summary, err := p.backend.GetDebt(ctx)
	if err != nil {
		return nil, fmt.Errorf("get debt: %w", err)
	}
	return DebtView{Summary: summary}, nil
}

type NarrativePanel struct {
	backend ports.NarrativeBackend
	limit   int
}

func (p *NarrativePanel) Name() string  { return PanelNarrative }
func (p *NarrativePanel) Title() string { return "Narrative" }

func (p *NarrativePanel) Load(ctx context.Context) (View, error) {
	var view NarrativeView
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		summary, err := p.backend.GetNarrative(gctx)
		if err != nil {
			return fmt.Errorf("get narrative: %w", err)
		}
		view.Summary = summary
		return nil
	})
	g.Go(func() error {
		events, err := p.backend.ListNarrativeEvents(gctx, p.limit)
		if err != nil {
			return fmt.Errorf("list narrative events: %w", err)
		}
		view.Events = events
		return nil
	})
	g.Go(func() error {
		status, err := p.backend.GetConsolidation(gctx)
		if err != nil {
			return fmt.Errorf("get consolidation status: %w", err)
		}
		view.Consolidation = status
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return view, nil
}

// MemoryPanel remembers the last query and forget result of the session so a
// reload keeps showing them next to fresh stats.
type MemoryPanel struct {
	backend ports.MemoryBackend

	mu         sync.Mutex
	lastQuery  *domain.MemoryQueryResult
	lastForget *domain.ForgetResult
}

func (p *MemoryPanel) Name() string  { return PanelMemory }
func (p *MemoryPanel) Title() string { return "Eigenmemory" }

func (p *MemoryPanel) Load(ctx context.Context) (View, error) {
	stats, err := p.backend.GetMemoryStats(ctx)
	if err != nil {
		return nil, fmt.Errorf("get eigenmemory stats: %w", err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	return MemoryView{Stats: stats, LastQuery: p.lastQuery, LastForget: p.lastForget}, nil
}

func (p *MemoryPanel) RecordQuery(result domain.MemoryQueryResult) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.lastQuery = &result
}

func (p *MemoryPanel) RecordForget(result domain.ForgetResult) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.lastForget = &result
}

type IQLPanel struct {
	backend ports.IQLBackend

	mu         sync.Mutex
	lastResult *domain.IQLResult
}

func (p *IQLPanel) Name() string  { return PanelIQL }
func (p *IQLPanel) Title() string { return "IQL" }

func (p *IQLPanel) Load(ctx context.Context) (View, error) {
	examples, err := p.backend.ListIQLExamples(ctx)
	if err != nil {
		return nil, fmt.Errorf("list iql examples: %w", err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	return IQLView{Examples: examples, LastResult: p.lastResult}, nil
}

func (p *IQLPanel) RecordResult(result domain.IQLResult) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.lastResult = &result
}

type HobbyPanel struct {
	backend ports.HobbyBackend
}

func (p *HobbyPanel) Name() string  { return PanelHobby }
func (p *HobbyPanel) Title() string { return "Hobby" }

func (p *HobbyPanel) Load(ctx context.Context) (View, error) {
	var view HobbyView
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		status, err := p.backend.GetHobbyStatus(gctx)
		if err != nil {
			return fmt.Errorf("get hobby status: %w", err)
		}
		view.Status = status
		return nil
	})
	g.Go(func() error {
		activities, err := p.backend.ListHobbyActivities(gctx)
		if err != nil {
			return fmt.Errorf("list hobby activities: %w", err)
		}
		view.Activities = activities
		return nil
	})
	g.Go(func() error {
		insights, err := p.backend.ListHobbyInsights(gctx)
		if err != nil {
			return fmt.Errorf("list hobby insights: %w", err)
		}
		view.Insights = insights
		return nil
	})
	g.Go(func() error {
		config, err := p.backend.GetHobbyConfig(gctx)
		if err != nil {
			return fmt.Errorf("get hobby config: %w", err)
		}
		view.Config = config
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return view, nil
}

type SecurityPanel struct {
	backend ports.SecurityBackend
}

func (p *SecurityPanel) Name() string  { return PanelSecurity }
func (p *SecurityPanel) Title() string { return "Security" }

func (p *SecurityPanel) Load(ctx context.Context) (View, error) {
	status, err := p.backend.GetSecurityStatus(ctx)
	if err != nil {
		return nil, fmt.Errorf("get security status: %w", err)
	}
	return SecurityView{Status: status}, nil
}

type ObservabilityPanel struct {
	backend interface {
		ports.ObservabilityBackend
		ports.RestraintBackend
	}
	decisionLimit int
	auditLimit    int
}

func (p *ObservabilityPanel) Name() string  { return PanelObservability }
func (p *ObservabilityPanel) Title() string { return "Observability" }

func (p *ObservabilityPanel) Load(ctx context.Context) (View, error) {
	var view ObservabilityView
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		state, err := p.backend.GetCognitiveState(gctx)
		if err != nil {
			return fmt.Errorf("get cognitive state: %w", err)
		}
		view.State = state
		return nil
	})
	g.Go(func() error {
		decisions, err := p.backend.ListDecisions(gctx, p.decisionLimit)
		if err != nil {
			return fmt.Errorf("list decisions: %w", err)
		}
		view.Decisions = decisions
		return nil
	})
	g.Go(func() error {
		trail, err := p.backend.GetAuditTrail(gctx, p.auditLimit)
		if err != nil {
			return fmt.Errorf("get audit trail: %w", err)
		}
		view.Audit = trail
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return view, nil
}
