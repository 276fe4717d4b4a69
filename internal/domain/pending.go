package domain

import (
	"math"
	"sort"
)

// Epsilon is the smallest difference from baseline that counts as an edit.
const Epsilon = 0.001

func Diverges(value, baseline float64) bool {
	return math.Abs(value-baseline) > Epsilon
}

// PendingChangeSet holds unsent restraint edits. It never holds a value
// within Epsilon of its baseline.
type PendingChangeSet map[Dimension]float64

// Track records value for dim when it diverges from baseline and forgets the
// dimension otherwise. It reports whether dim is pending afterwards.
func (p PendingChangeSet) Track(dim Dimension, baseline, value float64) bool {
	if !Diverges(value, baseline) {
		delete(p, dim)
		return false
	}
	p[dim] = value
	return true
}

func (p PendingChangeSet) Dimensions() []Dimension {
	dims := make([]Dimension, 0, len(p))
	for dim := range p {
		dims = append(dims, dim)
	}
	sort.Slice(dims, func(i, j int) bool { return dims[i] < dims[j] })
	return dims
}

func (p PendingChangeSet) Clear() {
	for dim := range p {
		delete(p, dim)
	}
}

// RequiresAuth is true iff some pending value exceeds its non-null hard limit.
func RequiresAuth(pending PendingChangeSet, set RestraintSet) bool {
	for dim, value := range pending {
		limit, ok := set.HardLimit(dim)
		if ok && value > limit {
			return true
		}
	}
	return false
}
