package rcl2

import (
	"context"
	"encoding/json"

	"github.com/bnema/rclctl/internal/domain"
)

const (
	councilStatusPath        = "/rcl2/council/status"
	councilDeliberationsPath = "/rcl2/council/deliberations"
	councilDeliberatePath    = "/rcl2/council/deliberate"
)

type councilMemberWire struct {
	Role   string  `json:"role"`
	Name   string  `json:"name"`
	Focus  string  `json:"focus"`
	Weight float64 `json:"weight"`
	Active *bool   `json:"active"`
}

type councilStatusResponse struct {
	Members []councilMemberWire `json:"members"`
}

type perspectiveWire struct {
	Role       string   `json:"role"`
	Vote       string   `json:"vote"`
	Reasoning  string   `json:"reasoning"`
	Confidence float64  `json:"confidence"`
	Concerns   []string `json:"concerns"`
}

type conflictWire struct {
	Roles []string `json:"roles"`
	Issue string   `json:"issue"`
}

// conflicts arrive either as {roles:[a,b], issue} or as {role_a, role_b, issue}.
func (w *conflictWire) UnmarshalJSON(data []byte) error {
	var raw struct {
		Roles []string `json:"roles"`
		RoleA string   `json:"role_a"`
		RoleB string   `json:"role_b"`
		Issue string   `json:"issue"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	w.Issue = raw.Issue
	w.Roles = raw.Roles
	if len(w.Roles) == 0 && (raw.RoleA != "" || raw.RoleB != "") {
		w.Roles = []string{raw.RoleA, raw.RoleB}
	}
	return nil
}

type deliberationWire struct {
	ID           string            `json:"id"`
	ActionID     string            `json:"action_id"`
	Type         string            `json:"type"`
	ActionType   string            `json:"action_type"`
	Description  string            `json:"description"`
	Decision     string            `json:"decision"`
	Unanimous    bool              `json:"unanimous"`
	Perspectives []perspectiveWire `json:"perspectives"`
	Conflicts    []conflictWire    `json:"conflicts"`
	Timestamp    timestamp         `json:"timestamp"`
}

type deliberationsResponse struct {
	Deliberations []deliberationWire `json:"deliberations"`
}

type deliberateRequest struct {
	ActionID    string         `json:"action_id"`
	ActionType  string         `json:"action_type"`
	Description string         `json:"description"`
	Context     map[string]any `json:"context"`
	Stakes      string         `json:"stakes"`
}

func (w deliberationWire) toDomain() domain.Deliberation {
	d := domain.Deliberation{
		ID:          firstNonEmpty(w.ID, w.ActionID),
		Type:        firstNonEmpty(w.Type, w.ActionType),
		Description: w.Description,
		Decision:    domain.Decision(w.Decision),
		Unanimous:   w.Unanimous,
		Timestamp:   w.Timestamp.Time,
	}
	for _, p := range w.Perspectives {
		d.Perspectives = append(d.Perspectives, domain.Perspective{
			Role:       p.Role,
			Vote:       domain.Decision(p.Vote),
			Reasoning:  p.Reasoning,
			Confidence: p.Confidence,
			Concerns:   p.Concerns,
		})
	}
	for _, c := range w.Conflicts {
		conflict := domain.Conflict{Issue: c.Issue}
		copy(conflict.Roles[:], c.Roles)
		d.Conflicts = append(d.Conflicts, conflict)
	}
	return d
}

func (c *Client) GetCouncilStatus(ctx context.Context) ([]domain.CouncilMember, error) {
	var resp councilStatusResponse
	if err := c.get(ctx, councilStatusPath, nil, &resp); err != nil {
		return nil, err
	}

	members := make([]domain.CouncilMember, 0, len(resp.Members))
	for _, m := range resp.Members {
		members = append(members, domain.CouncilMember{
			Role:   m.Role,
			Name:   m.Name,
			Focus:  m.Focus,
			Weight: m.Weight,
			Active: m.Active == nil || *m.Active,
		})
	}
	return members, nil
}

func (c *Client) ListDeliberations(ctx context.Context, limit int) ([]domain.Deliberation, error) {
	var resp deliberationsResponse
	if err := c.get(ctx, councilDeliberationsPath, limitQuery(limit), &resp); err != nil {
		return nil, err
	}

	out := make([]domain.Deliberation, 0, len(resp.Deliberations))
	for _, d := range resp.Deliberations {
		out = append(out, d.toDomain())
	}
	return out, nil
}

func (c *Client) Deliberate(ctx context.Context, req domain.DeliberationRequest) (domain.Deliberation, error) {
	body := deliberateRequest{
		ActionID:    req.ActionID,
		ActionType:  req.ActionType,
		Description: req.Description,
		Context:     req.Context,
		Stakes:      string(req.Stakes),
	}
	if body.Context == nil {
		body.Context = map[string]any{}
	}

	var resp deliberationWire
	if err := c.post(ctx, councilDeliberatePath, body, &resp); err != nil {
		return domain.Deliberation{}, err
	}

	d := resp.toDomain()
	if d.ID == "" {
		d.ID = req.ActionID
	}
	if d.Type == "" {
		d.Type = req.ActionType
	}
	if d.Description == "" {
		d.Description = req.Description
	}
	return d, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
