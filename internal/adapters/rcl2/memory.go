package rcl2

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/bnema/rclctl/internal/domain"
)

const (
	memoryPath       = "/rcl2/eigenmemory"
	memoryQueryPath  = "/rcl2/eigenmemory/query"
	memoryForgetPath = "/rcl2/eigenmemory/forget"
)

var memoryStatsKeys = map[string]struct{}{
	"success":           {},
	"total_memories":    {},
	"dimensions":        {},
	"subjects":          {},
	"compression_ratio": {},
}

type memoryStatsWire struct {
	TotalMemories    int     `json:"total_memories"`
	Dimensions       int     `json:"dimensions"`
	Subjects         int     `json:"subjects"`
	CompressionRatio float64 `json:"compression_ratio"`
}

type memoryQueryRequest struct {
	Query     string `json:"query"`
	QueryType string `json:"query_type"`
}

type memoryMatchWire struct {
	ID      string  `json:"id"`
	Subject string  `json:"subject"`
	Content string  `json:"content"`
	Score   float64 `json:"score"`
}

type memoryQueryResponse struct {
	Results []memoryMatchWire `json:"results"`
}

type forgetRequest struct {
	Subject             string `json:"subject"`
	RequireConfirmation bool   `json:"require_confirmation"`
}

type forgetResponse struct {
	Subject              string `json:"subject"`
	Forgotten            int    `json:"forgotten"`
	ConfirmationRequired bool   `json:"confirmation_required"`
	Message              string `json:"message"`
}

// GetMemoryStats keeps any stats field it does not model in Extra so the
// panel can still show it.
func (c *Client) GetMemoryStats(ctx context.Context) (domain.MemoryStats, error) {
	var raw json.RawMessage
	if err := c.get(ctx, memoryPath, nil, &raw); err != nil {
		return domain.MemoryStats{}, err
	}

	var known memoryStatsWire
	if err := json.Unmarshal(raw, &known); err != nil {
		return domain.MemoryStats{}, fmt.Errorf("decode eigenmemory stats: %w", err)
	}
	var all map[string]any
	if err := json.Unmarshal(raw, &all); err != nil {
		return domain.MemoryStats{}, fmt.Errorf("decode eigenmemory stats: %w", err)
	}

	stats := domain.MemoryStats{
		TotalMemories: known.TotalMemories,
		Dimensions:    known.Dimensions,
		Subjects:      known.Subjects,
		Compression:   known.CompressionRatio,
	}
	for key, value := range all {
		if _, ok := memoryStatsKeys[key]; ok {
			continue
		}
		if stats.Extra == nil {
			stats.Extra = map[string]any{}
		}
		stats.Extra[key] = value
	}
	return stats, nil
}

func (c *Client) QueryMemory(ctx context.Context, query string, queryType domain.QueryType) (domain.MemoryQueryResult, error) {
	var resp memoryQueryResponse
	body := memoryQueryRequest{Query: query, QueryType: string(queryType)}
	if err := c.post(ctx, memoryQueryPath, body, &resp); err != nil {
		return domain.MemoryQueryResult{}, err
	}

	result := domain.MemoryQueryResult{Query: query, Type: queryType}
	for _, m := range resp.Results {
		result.Matches = append(result.Matches, domain.MemoryMatch(m))
	}
	return result, nil
}

func (c *Client) ForgetSubject(ctx context.Context, subject string, requireConfirmation bool) (domain.ForgetResult, error) {
	var resp forgetResponse
	body := forgetRequest{Subject: subject, RequireConfirmation: requireConfirmation}
	if err := c.post(ctx, memoryForgetPath, body, &resp); err != nil {
		return domain.ForgetResult{}, err
	}

	return domain.ForgetResult{
		Subject:              firstNonEmpty(resp.Subject, subject),
		Forgotten:            resp.Forgotten,
		ConfirmationRequired: resp.ConfirmationRequired,
		Message:              resp.Message,
	}, nil
}
