package domain

import (
	"fmt"
	"strings"
	"time"
)

type Decision string

const (
	DecisionApprove Decision = "approve"
	DecisionReject  Decision = "reject"
	DecisionModify  Decision = "modify"
	DecisionDefer   Decision = "defer"
)

func (d Decision) Known() bool {
	switch d {
	case DecisionApprove, DecisionReject, DecisionModify, DecisionDefer:
		return true
	default:
		return false
	}
}

type Stakes string

const (
	StakesLow      Stakes = "low"
	StakesMedium   Stakes = "medium"
	StakesHigh     Stakes = "high"
	StakesCritical Stakes = "critical"
)

func ParseStakes(raw string) (Stakes, error) {
	stakes := Stakes(strings.ToLower(strings.TrimSpace(raw)))
	switch stakes {
	case "":
		return StakesMedium, nil
	case StakesLow, StakesMedium, StakesHigh, StakesCritical:
		return stakes, nil
	default:
		return "", fmt.Errorf("%w: unsupported stakes %q", ErrValidation, raw)
	}
}

type Perspective struct {
	Role       string
	Vote       Decision
	Reasoning  string
	Confidence float64
	Concerns   []string
}

type Conflict struct {
	Roles [2]string
	Issue string
}

// Deliberation is immutable once returned by the backend.
type Deliberation struct {
	ID           string
	Type         string
	Description  string
	Decision     Decision
	Unanimous    bool
	Perspectives []Perspective
	Conflicts    []Conflict
	Timestamp    time.Time
}

// Dissenters lists the roles whose vote differs from the final decision.
func (d Deliberation) Dissenters() []string {
	var roles []string
	for _, p := range d.Perspectives {
		if p.Vote != d.Decision {
			roles = append(roles, p.Role)
		}
	}
	return roles
}

type CouncilMember struct {
	Role   string
	Name   string
	Focus  string
	Weight float64
	Active bool
}

type DeliberationRequest struct {
	ActionID    string
	ActionType  string
	Description string
	Context     map[string]any
	Stakes      Stakes
}

func (r DeliberationRequest) Validate() error {
	if err := RequireText("action type", r.ActionType); err != nil {
		return err
	}
	return RequireText("description", r.Description)
}
