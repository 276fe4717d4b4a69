package ports

import (
	"context"
	"encoding/json"
)

const (
	EventRestraintUpdate      = "restraint_update"
	EventDeliberationComplete = "deliberation_complete"
	EventDebtRepaid           = "debt_repaid"
)

// Event is one pushed message. Payload keeps the raw JSON object; consumers
// treat it as a dirty signal and do not rely on its contents.
type Event struct {
	Type    string
	Payload json.RawMessage
}

type EventHandler func(Event)

// EventSource delivers pushed events until ctx is cancelled.
type EventSource interface {
	Run(ctx context.Context, handle EventHandler) error
}
