package domain

import "time"

type SystemStats struct {
	Calls       int64
	TotalTimeMS float64
}

func (s SystemStats) AverageMS() float64 {
	if s.Calls == 0 {
		return 0
	}
	return s.TotalTimeMS / float64(s.Calls)
}

type CognitiveState struct {
	System1     SystemStats
	System2     SystemStats
	Escalations int64
}

// EscalationRate is the share of fast-path calls escalated to the slow path.
func (c CognitiveState) EscalationRate() float64 {
	if c.System1.Calls == 0 {
		return 0
	}
	return float64(c.Escalations) / float64(c.System1.Calls)
}

type DecisionRecord struct {
	ID         string
	Type       string
	Outcome    string
	System     string
	Confidence float64
	Timestamp  time.Time
}
