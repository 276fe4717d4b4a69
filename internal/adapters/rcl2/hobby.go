package rcl2

import (
	"context"

	"github.com/bnema/rclctl/internal/domain"
)

const (
	hobbyStatusPath     = "/hobby/status"
	hobbyActivitiesPath = "/hobby/activities"
	hobbyInsightsPath   = "/hobby/insights"
	hobbyConfigPath     = "/hobby/config"
	hobbyStartPath      = "/hobby/start"
	hobbyStopPath       = "/hobby/stop"
)

type hobbyStatusResponse struct {
	Running         bool      `json:"running"`
	CurrentActivity string    `json:"current_activity"`
	StartedAt       timestamp `json:"started_at"`
	ActivitiesToday int       `json:"activities_today"`
	Message         string    `json:"message"`
}

type hobbyActivityWire struct {
	ID              string    `json:"id"`
	Type            string    `json:"type"`
	ActivityType    string    `json:"activity_type"`
	Summary         string    `json:"summary"`
	DurationSeconds float64   `json:"duration_seconds"`
	Timestamp       timestamp `json:"timestamp"`
}

type hobbyActivitiesResponse struct {
	Activities []hobbyActivityWire `json:"activities"`
}

type hobbyInsightWire struct {
	Topic      string    `json:"topic"`
	Insight    string    `json:"insight"`
	Content    string    `json:"content"`
	Confidence float64   `json:"confidence"`
	Timestamp  timestamp `json:"timestamp"`
}

type hobbyInsightsResponse struct {
	Insights []hobbyInsightWire `json:"insights"`
}

type hobbyConfigResponse struct {
	Enabled         bool           `json:"enabled"`
	IntervalSeconds float64        `json:"interval_seconds"`
	Topics          []string       `json:"topics"`
	Settings        map[string]any `json:"settings"`
}

func (c *Client) GetHobbyStatus(ctx context.Context) (domain.HobbyStatus, error) {
	var resp hobbyStatusResponse
	if err := c.get(ctx, hobbyStatusPath, nil, &resp); err != nil {
		return domain.HobbyStatus{}, err
	}

	return domain.HobbyStatus{
		Running:         resp.Running,
		CurrentActivity: resp.CurrentActivity,
		StartedAt:       resp.StartedAt.Time,
		ActivitiesToday: resp.ActivitiesToday,
		Message:         resp.Message,
	}, nil
}

func (c *Client) ListHobbyActivities(ctx context.Context) ([]domain.HobbyActivity, error) {
	var resp hobbyActivitiesResponse
	if err := c.get(ctx, hobbyActivitiesPath, nil, &resp); err != nil {
		return nil, err
	}

	activities := make([]domain.HobbyActivity, 0, len(resp.Activities))
	for _, a := range resp.Activities {
		activities = append(activities, domain.HobbyActivity{
			ID:        a.ID,
			Kind:      firstNonEmpty(a.Type, a.ActivityType),
			Summary:   a.Summary,
			Duration:  secondsToDuration(a.DurationSeconds),
			Timestamp: a.Timestamp.Time,
		})
	}
	return activities, nil
}

func (c *Client) ListHobbyInsights(ctx context.Context) ([]domain.HobbyInsight, error) {
	var resp hobbyInsightsResponse
	if err := c.get(ctx, hobbyInsightsPath, nil, &resp); err != nil {
		return nil, err
	}

	insights := make([]domain.HobbyInsight, 0, len(resp.Insights))
	for _, i := range resp.Insights {
		insights = append(insights, domain.HobbyInsight{
			Topic:      i.Topic,
			Insight:    firstNonEmpty(i.Insight, i.Content),
			Confidence: i.Confidence,
			Timestamp:  i.Timestamp.Time,
		})
	}
	return insights, nil
}

func (c *Client) GetHobbyConfig(ctx context.Context) (domain.HobbyConfig, error) {
	var resp hobbyConfigResponse
	if err := c.get(ctx, hobbyConfigPath, nil, &resp); err != nil {
		return domain.HobbyConfig{}, err
	}

	return domain.HobbyConfig{
		Enabled:  resp.Enabled,
		Interval: secondsToDuration(resp.IntervalSeconds),
		Topics:   resp.Topics,
		Settings: resp.Settings,
	}, nil
}

func (c *Client) StartHobby(ctx context.Context) (string, error) {
	var resp messageResponse
	if err := c.post(ctx, hobbyStartPath, struct{}{}, &resp); err != nil {
		return "", err
	}
	return resp.Message, nil
}

func (c *Client) StopHobby(ctx context.Context) (string, error) {
	var resp messageResponse
	if err := c.post(ctx, hobbyStopPath, struct{}{}, &resp); err != nil {
		return "", err
	}
	return resp.Message, nil
}
