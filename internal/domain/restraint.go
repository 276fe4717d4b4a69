package domain

import (
	"sort"
	"strings"
)

type Dimension string

// Label turns HALLUCINATION_RESISTANCE into "Hallucination Resistance".
func (d Dimension) Label() string {
	words := strings.FieldsFunc(strings.ToLower(string(d)), func(r rune) bool {
		return r == '_' || r == '-' || r == ' '
	})
	for i, word := range words {
		if word == "ms" {
			words[i] = "(ms)"
			continue
		}
		words[i] = strings.ToUpper(word[:1]) + word[1:]
	}
	return strings.Join(words, " ")
}

// IsBudget reports whether the dimension is expressed in milliseconds
// rather than as a ratio in [0,1].
func (d Dimension) IsBudget() bool {
	upper := strings.ToUpper(string(d))
	return strings.HasSuffix(upper, "_MS") || strings.Contains(upper, "BUDGET")
}

// Step is the increment applied by a single slider nudge.
func (d Dimension) Step() float64 {
	if d.IsBudget() {
		return 50
	}
	return 0.01
}

// Clamp keeps a proposed value inside the dimension's domain.
func (d Dimension) Clamp(value float64) float64 {
	if value < 0 {
		return 0
	}
	if !d.IsBudget() && value > 1 {
		return 1
	}
	return value
}

type RestraintSet struct {
	Values     map[Dimension]float64
	HardLimits map[Dimension]*float64
}

func (s RestraintSet) Dimensions() []Dimension {
	dims := make([]Dimension, 0, len(s.Values))
	for dim := range s.Values {
		dims = append(dims, dim)
	}
	sort.Slice(dims, func(i, j int) bool { return dims[i] < dims[j] })
	return dims
}

func (s RestraintSet) Value(dim Dimension) (float64, bool) {
	value, ok := s.Values[dim]
	return value, ok
}

// HardLimit looks the limit up case-insensitively; the backend keys limits in
// upper case while values may arrive in any case. A nil limit means unbounded.
func (s RestraintSet) HardLimit(dim Dimension) (float64, bool) {
	if limit, ok := s.HardLimits[dim]; ok {
		return deref(limit)
	}
	if limit, ok := s.HardLimits[Dimension(strings.ToUpper(string(dim)))]; ok {
		return deref(limit)
	}
	for key, limit := range s.HardLimits {
		if strings.EqualFold(string(key), string(dim)) {
			return deref(limit)
		}
	}
	return 0, false
}

// Locked reports whether the current value already sits at or above its hard limit.
func (s RestraintSet) Locked(dim Dimension) bool {
	limit, ok := s.HardLimit(dim)
	if !ok {
		return false
	}
	value, ok := s.Values[dim]
	return ok && value >= limit
}

func (s RestraintSet) Clone() RestraintSet {
	clone := RestraintSet{
		Values:     make(map[Dimension]float64, len(s.Values)),
		HardLimits: make(map[Dimension]*float64, len(s.HardLimits)),
	}
	for dim, value := range s.Values {
		clone.Values[dim] = value
	}
	for dim, limit := range s.HardLimits {
		if limit == nil {
			clone.HardLimits[dim] = nil
			continue
		}
		v := *limit
		clone.HardLimits[dim] = &v
	}
	return clone
}

func deref(limit *float64) (float64, bool) {
	if limit == nil {
		return 0, false
	}
	return *limit, true
}
