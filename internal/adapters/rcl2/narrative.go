package rcl2

import (
	"context"

	"github.com/bnema/rclctl/internal/domain"
)

const (
	narrativePath              = "/rcl2/narrative"
	narrativeEventsPath        = "/rcl2/narrative/events"
	narrativeConsolidationPath = "/rcl2/narrative/consolidation"
)

type narrativeResponse struct {
	Summary     string    `json:"summary"`
	Narrative   string    `json:"narrative"`
	Themes      []string  `json:"themes"`
	EventCount  int       `json:"event_count"`
	LastUpdated timestamp `json:"last_updated"`
}

type narrativeEventWire struct {
	ID          string    `json:"id"`
	Type        string    `json:"type"`
	EventType   string    `json:"event_type"`
	Description string    `json:"description"`
	Importance  float64   `json:"importance"`
	Timestamp   timestamp `json:"timestamp"`
}

type narrativeEventsResponse struct {
	Events []narrativeEventWire `json:"events"`
}

type consolidationResponse struct {
	Running        bool      `json:"running"`
	LastRun        timestamp `json:"last_run"`
	PendingEvents  int       `json:"pending_events"`
	Consolidations int       `json:"consolidations"`
	Message        string    `json:"message"`
}

func (r consolidationResponse) toDomain() domain.ConsolidationStatus {
	return domain.ConsolidationStatus{
		Running:        r.Running,
		LastRun:        r.LastRun.Time,
		PendingEvents:  r.PendingEvents,
		Consolidations: r.Consolidations,
		Message:        r.Message,
	}
}

func (c *Client) GetNarrative(ctx context.Context) (domain.NarrativeSummary, error) {
	var resp narrativeResponse
	if err := c.get(ctx, narrativePath, nil, &resp); err != nil {
		return domain.NarrativeSummary{}, err
	}

	return domain.NarrativeSummary{
		Summary:     firstNonEmpty(resp.Summary, resp.Narrative),
		Themes:      resp.Themes,
		EventCount:  resp.EventCount,
		LastUpdated: resp.LastUpdated.Time,
	}, nil
}

func (c *Client) ListNarrativeEvents(ctx context.Context, limit int) ([]domain.NarrativeEvent, error) {
	var resp narrativeEventsResponse
	if err := c.get(ctx, narrativeEventsPath, limitQuery(limit), &resp); err != nil {
		return nil, err
	}

	events := make([]domain.NarrativeEvent, 0, len(resp.Events))
	for _, e := range resp.Events {
		events = append(events, domain.NarrativeEvent{
			ID:          e.ID,
			Kind:        firstNonEmpty(e.Type, e.EventType),
			Description: e.Description,
			Importance:  e.Importance,
			Timestamp:   e.Timestamp.Time,
		})
	}
	return events, nil
}

func (c *Client) GetConsolidation(ctx context.Context) (domain.ConsolidationStatus, error) {
	var resp consolidationResponse
	if err := c.get(ctx, narrativeConsolidationPath, nil, &resp); err != nil {
		return domain.ConsolidationStatus{}, err
	}
	return resp.toDomain(), nil
}

func (c *Client) TriggerConsolidation(ctx context.Context) (domain.ConsolidationStatus, error) {
	var resp consolidationResponse
	if err := c.post(ctx, narrativeConsolidationPath, struct{}{}, &resp); err != nil {
		return domain.ConsolidationStatus{}, err
	}
	return resp.toDomain(), nil
}
