package domain

import (
	"fmt"
	"strings"
)

type MemoryStats struct {
	TotalMemories int
	Dimensions    int
	Subjects      int
	Compression   float64
	Extra         map[string]any
}

type QueryType string

const (
	QueryTypeSemantic QueryType = "semantic"
	QueryTypeSubject  QueryType = "subject"
	QueryTypeTemporal QueryType = "temporal"
)

func ParseQueryType(raw string) (QueryType, error) {
	qt := QueryType(strings.ToLower(strings.TrimSpace(raw)))
	switch qt {
	case "":
		return QueryTypeSemantic, nil
	case QueryTypeSemantic, QueryTypeSubject, QueryTypeTemporal:
		return qt, nil
	default:
		return "", fmt.Errorf("%w: unsupported query type %q", ErrValidation, raw)
	}
}

type MemoryMatch struct {
	ID      string
	Subject string
	Content string
	Score   float64
}

type MemoryQueryResult struct {
	Query   string
	Type    QueryType
	Matches []MemoryMatch
}

type ForgetResult struct {
	Subject              string
	Forgotten            int
	ConfirmationRequired bool
	Message              string
}
