package rcl2

import (
	"bytes"
	"context"
	"encoding/json"

	"github.com/bnema/rclctl/internal/domain"
)

const securityStatusPath = "/ui-api/security/status"

// protectionWire accepts a bare boolean, a status string, or an object with
// enabled and an optional detail.
type protectionWire struct {
	Enabled bool
	Detail  string
}

func (p *protectionWire) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		return nil
	}

	switch data[0] {
	case 't', 'f':
		return json.Unmarshal(data, &p.Enabled)
	case '"':
		var status string
		if err := json.Unmarshal(data, &status); err != nil {
			return err
		}
		p.Detail = status
		switch status {
		case "enabled", "active", "on", "ok":
			p.Enabled = true
		}
		return nil
	}

	var obj struct {
		Enabled bool   `json:"enabled"`
		Active  bool   `json:"active"`
		Detail  string `json:"detail"`
		Status  string `json:"status"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return err
	}
	p.Enabled = obj.Enabled || obj.Active
	p.Detail = firstNonEmpty(obj.Detail, obj.Status)
	return nil
}

type securityStatusResponse struct {
	Status              string         `json:"status"`
	APIKeyProtection    protectionWire `json:"api_key_protection"`
	SkillScanning       protectionWire `json:"skill_scanning"`
	ContainerProtection protectionWire `json:"container_protection"`
}

func (c *Client) GetSecurityStatus(ctx context.Context) (domain.SecurityStatus, error) {
	var resp securityStatusResponse
	if err := c.get(ctx, securityStatusPath, nil, &resp); err != nil {
		return domain.SecurityStatus{}, err
	}

	return domain.SecurityStatus{
		Status:              resp.Status,
		APIKeyProtection:    domain.ProtectionStatus(resp.APIKeyProtection),
		SkillScanning:       domain.ProtectionStatus(resp.SkillScanning),
		ContainerProtection: domain.ProtectionStatus(resp.ContainerProtection),
	}, nil
}
