package application

import (
	"sync"

	"github.com/bnema/rclctl/internal/ports"
	"go.uber.org/zap"
)

// Registry holds the panels that have been opened at least once. Pushed
// events only reach registered panels.
type Registry struct {
	mu     sync.RWMutex
	panels map[string]Panel
}

func NewRegistry() *Registry {
	return &Registry{panels: map[string]Panel{}}
}

func (r *Registry) Register(panel Panel) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.panels[panel.Name()] = panel
}

func (r *Registry) Unregister(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.panels, name)
}

func (r *Registry) Get(name string) (Panel, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	panel, ok := r.panels[name]
	return panel, ok
}

var eventPanels = map[string]string{
	ports.EventRestraintUpdate:      PanelRestraints,
	ports.EventDeliberationComplete: PanelCouncil,
	ports.EventDebtRepaid:           PanelDebt,
}

// PanelForEvent maps a pushed event type to the panel it dirties.
func PanelForEvent(eventType string) (string, bool) {
	panel, ok := eventPanels[eventType]
	return panel, ok
}

// Dispatcher turns pushed events into reloads. The payload is only a dirty
// signal: the target panel reloads in full. Unknown types are logged and
// dropped; events for panels that were never opened are discarded.
type Dispatcher struct {
	registry *Registry
	reload   func(panel string)
	logger   *zap.Logger
}

func NewDispatcher(registry *Registry, reload func(panel string), logger *zap.Logger) *Dispatcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Dispatcher{registry: registry, reload: reload, logger: logger}
}

func (d *Dispatcher) Handle(event ports.Event) {
	name, ok := PanelForEvent(event.Type)
	if !ok {
		d.logger.Warn("dropping unrecognized event", zap.String("type", event.Type))
		return
	}
	if _, ok := d.registry.Get(name); !ok {
		d.logger.Debug("discarding event for unregistered panel",
			zap.String("type", event.Type),
			zap.String("panel", name))
		return
	}
	d.reload(name)
}

// Generations guards against superseded loads: each load takes a new
// generation and only the latest one for a panel may commit its result.
type Generations struct {
	mu   sync.Mutex
	gens map[string]uint64
}

func NewGenerations() *Generations {
	return &Generations{gens: map[string]uint64{}}
}

func (g *Generations) Next(panel string) uint64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.gens[panel]++
	return g.gens[panel]
}

func (g *Generations) Current(panel string, gen uint64) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.gens[panel] == gen
}
