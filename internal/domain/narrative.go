package domain

import "time"

type NarrativeSummary struct {
	Summary     string
	Themes      []string
	EventCount  int
	LastUpdated time.Time
}

type NarrativeEvent struct {
	ID          string
	Kind        string
	Description string
	Importance  float64
	Timestamp   time.Time
}

type ConsolidationStatus struct {
	Running        bool
	LastRun        time.Time
	PendingEvents  int
	Consolidations int
	Message        string
}
