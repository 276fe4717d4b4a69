package domain

import (
	"sort"
	"time"
)

type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

func (p Priority) rank() int {
	switch p {
	case PriorityHigh:
		return 0
	case PriorityMedium:
		return 1
	case PriorityLow:
		return 2
	default:
		return 3
	}
}

type DebtItem struct {
	DecisionID string
	Reason     string
	Priority   Priority
	LoggedAt   time.Time
}

type DebtSummary struct {
	Outstanding float64
	Items       []DebtItem
}

// Ordered returns the items highest priority first, oldest first within a priority.
func (s DebtSummary) Ordered() []DebtItem {
	items := append([]DebtItem(nil), s.Items...)
	sort.SliceStable(items, func(i, j int) bool {
		ri, rj := items[i].Priority.rank(), items[j].Priority.rank()
		if ri != rj {
			return ri < rj
		}
		return items[i].LoggedAt.Before(items[j].LoggedAt)
	})
	return items
}

func (s DebtSummary) CountByPriority() map[Priority]int {
	counts := make(map[Priority]int, 3)
	for _, item := range s.Items {
		counts[item.Priority]++
	}
	return counts
}
