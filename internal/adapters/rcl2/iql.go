package rcl2

import (
	"context"

	"github.com/bnema/rclctl/internal/domain"
)

const (
	iqlPath         = "/rcl2/iql"
	iqlExamplesPath = "/rcl2/iql/examples"
)

type iqlRequest struct {
	Query string `json:"query"`
}

type iqlResponse struct {
	Status string `json:"status"`
	Result struct {
		Fields               map[string]any `json:"fields"`
		ExecutionTimeMS      float64        `json:"execution_time_ms"`
		Errors               []string       `json:"errors"`
		ConstraintsSatisfied bool           `json:"constraints_satisfied"`
		Query                string         `json:"query"`
	} `json:"result"`
}

type iqlExampleWire struct {
	Name        string `json:"name"`
	Query       string `json:"query"`
	Description string `json:"description"`
}

type iqlExamplesResponse struct {
	Examples []iqlExampleWire `json:"examples"`
}

func (c *Client) RunIQL(ctx context.Context, query string) (domain.IQLResult, error) {
	var resp iqlResponse
	if err := c.post(ctx, iqlPath, iqlRequest{Query: query}, &resp); err != nil {
		return domain.IQLResult{}, err
	}

	return domain.IQLResult{
		Status:               resp.Status,
		Query:                firstNonEmpty(resp.Result.Query, query),
		Fields:               resp.Result.Fields,
		ExecutionTimeMS:      resp.Result.ExecutionTimeMS,
		Errors:               resp.Result.Errors,
		ConstraintsSatisfied: resp.Result.ConstraintsSatisfied,
	}, nil
}

func (c *Client) ListIQLExamples(ctx context.Context) ([]domain.IQLExample, error) {
	var resp iqlExamplesResponse
	if err := c.get(ctx, iqlExamplesPath, nil, &resp); err != nil {
		return nil, err
	}

	examples := make([]domain.IQLExample, 0, len(resp.Examples))
	for _, e := range resp.Examples {
		examples = append(examples, domain.IQLExample(e))
	}
	return examples, nil
}
