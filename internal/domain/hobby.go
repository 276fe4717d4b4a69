package domain

import "time"

type HobbyStatus struct {
	Running         bool
	CurrentActivity string
	StartedAt       time.Time
	ActivitiesToday int
	Message         string
}

type HobbyActivity struct {
	ID        string
	Kind      string
	Summary   string
	Duration  time.Duration
	Timestamp time.Time
}

type HobbyInsight struct {
	Topic      string
	Insight    string
	Confidence float64
	Timestamp  time.Time
}

type HobbyConfig struct {
	Enabled  bool
	Interval time.Duration
	Topics   []string
	Settings map[string]any
}
