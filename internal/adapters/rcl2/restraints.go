package rcl2

import (
	"context"

	"github.com/bnema/rclctl/internal/domain"
	"github.com/bnema/rclctl/internal/ports"
)

const (
	restraintsPath = "/rcl2/restraints"
	auditTrailPath = "/rcl2/audit-trail"
)

type restraintsResponse struct {
	Restraints map[string]float64  `json:"restraints"`
	HardLimits map[string]*float64 `json:"hard_limits"`
}

type restraintUpdateRequest struct {
	Dimension        string  `json:"dimension"`
	Value            float64 `json:"value"`
	Authorized       bool    `json:"authorized"`
	AuthorizationKey *string `json:"authorization_key"`
}

type messageResponse struct {
	Message string `json:"message"`
}

type auditEntryWire struct {
	Dimension  string    `json:"dimension"`
	OldValue   float64   `json:"old_value"`
	NewValue   float64   `json:"new_value"`
	Hash       string    `json:"hash"`
	Authorized bool      `json:"authorized"`
	Timestamp  timestamp `json:"timestamp"`
}

type unauthorizedAttemptWire struct {
	Dimension string    `json:"dimension"`
	Value     float64   `json:"value"`
	Reason    string    `json:"reason"`
	Timestamp timestamp `json:"timestamp"`
}

type auditTrailResponse struct {
	Changes              []auditEntryWire          `json:"changes"`
	ChainValid           bool                      `json:"chain_valid"`
	UnauthorizedAttempts []unauthorizedAttemptWire `json:"unauthorized_attempts"`
}

func (c *Client) GetRestraints(ctx context.Context) (domain.RestraintSet, error) {
	var resp restraintsResponse
	if err := c.get(ctx, restraintsPath, nil, &resp); err != nil {
		return domain.RestraintSet{}, err
	}

	set := domain.RestraintSet{
		Values:     make(map[domain.Dimension]float64, len(resp.Restraints)),
		HardLimits: make(map[domain.Dimension]*float64, len(resp.HardLimits)),
	}
	for name, value := range resp.Restraints {
		set.Values[domain.Dimension(name)] = value
	}
	for name, limit := range resp.HardLimits {
		set.HardLimits[domain.Dimension(name)] = limit
	}
	return set, nil
}

func (c *Client) UpdateRestraint(ctx context.Context, update ports.RestraintUpdate) (string, error) {
	body := restraintUpdateRequest{
		Dimension:  string(update.Dimension),
		Value:      update.Value,
		Authorized: update.Authorized,
	}
	if update.AuthorizationKey != "" {
		key := update.AuthorizationKey
		body.AuthorizationKey = &key
	}

	var resp messageResponse
	if err := c.post(ctx, restraintsPath, body, &resp); err != nil {
		return "", err
	}
	return resp.Message, nil
}

func (c *Client) GetAuditTrail(ctx context.Context, limit int) (domain.AuditTrail, error) {
	var resp auditTrailResponse
	if err := c.get(ctx, auditTrailPath, limitQuery(limit), &resp); err != nil {
		return domain.AuditTrail{}, err
	}

	trail := domain.AuditTrail{
		ChainValid:           resp.ChainValid,
		Changes:              make([]domain.AuditEntry, 0, len(resp.Changes)),
		UnauthorizedAttempts: make([]domain.UnauthorizedAttempt, 0, len(resp.UnauthorizedAttempts)),
	}
	for _, change := range resp.Changes {
		trail.Changes = append(trail.Changes, domain.AuditEntry{
			Dimension:  domain.Dimension(change.Dimension),
			OldValue:   change.OldValue,
			NewValue:   change.NewValue,
			Hash:       change.Hash,
			Authorized: change.Authorized,
			Timestamp:  change.Timestamp.Time,
		})
	}
	for _, attempt := range resp.UnauthorizedAttempts {
		trail.UnauthorizedAttempts = append(trail.UnauthorizedAttempts, domain.UnauthorizedAttempt{
			Dimension: domain.Dimension(attempt.Dimension),
			Value:     attempt.Value,
			Reason:    attempt.Reason,
			Timestamp: attempt.Timestamp.Time,
		})
	}
	return trail, nil
}
