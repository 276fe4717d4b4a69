package rcl2

import (
	"context"

	"github.com/bnema/rclctl/internal/domain"
)

const (
	cognitiveStatePath = "/rcl2/cognitive-state"
	decisionsPath      = "/rcl2/decisions"
)

type systemStatsWire struct {
	Calls       int64   `json:"calls"`
	TotalTimeMS float64 `json:"total_time_ms"`
}

type cognitiveStateResponse struct {
	System1     systemStatsWire `json:"system1"`
	System2     systemStatsWire `json:"system2"`
	Escalations int64           `json:"escalations"`
}

type decisionWire struct {
	ID         string    `json:"id"`
	DecisionID string    `json:"decision_id"`
	Type       string    `json:"type"`
	Outcome    string    `json:"outcome"`
	System     string    `json:"system"`
	Confidence float64   `json:"confidence"`
	Timestamp  timestamp `json:"timestamp"`
}

type decisionsResponse struct {
	Decisions []decisionWire `json:"decisions"`
	Count     int            `json:"count"`
}

func (c *Client) GetCognitiveState(ctx context.Context) (domain.CognitiveState, error) {
	var resp cognitiveStateResponse
	if err := c.get(ctx, cognitiveStatePath, nil, &resp); err != nil {
		return domain.CognitiveState{}, err
	}

	return domain.CognitiveState{
		System1:     domain.SystemStats(resp.System1),
		System2:     domain.SystemStats(resp.System2),
		Escalations: resp.Escalations,
	}, nil
}

func (c *Client) ListDecisions(ctx context.Context, limit int) ([]domain.DecisionRecord, error) {
	var resp decisionsResponse
	if err := c.get(ctx, decisionsPath, limitQuery(limit), &resp); err != nil {
		return nil, err
	}

	records := make([]domain.DecisionRecord, 0, len(resp.Decisions))
	for _, d := range resp.Decisions {
		records = append(records, domain.DecisionRecord{
			ID:         firstNonEmpty(d.ID, d.DecisionID),
			Type:       d.Type,
			Outcome:    d.Outcome,
			System:     d.System,
			Confidence: d.Confidence,
			Timestamp:  d.Timestamp.Time,
		})
	}
	return records, nil
}
