package application

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/bnema/rclctl/internal/domain"
	"github.com/bnema/rclctl/internal/ports"
)

// DefaultRefreshDelay is how long a save waits before re-reading the
// server-confirmed restraint set.
const DefaultRefreshDelay = 500 * time.Millisecond

type SessionState int

const (
	SessionClean SessionState = iota
	SessionDirty
)

func (s SessionState) String() string {
	if s == SessionDirty {
		return "dirty"
	}
	return "clean"
}

type SaveResult struct {
	Saved      []domain.Dimension
	Failed     map[domain.Dimension]error
	Messages   map[domain.Dimension]string
	Refreshed  bool
	RefreshErr error
}

func (r SaveResult) Attempted() int {
	return len(r.Saved) + len(r.Failed)
}

// RestraintSession tracks one editing session over the restraint matrix:
// the last fetched baseline, the values currently shown, and the pending
// diff between them.
type RestraintSession struct {
	backend      ports.RestraintBackend
	clock        ports.Clock
	refreshDelay time.Duration

	mu       sync.Mutex
	loaded   bool
	baseline domain.RestraintSet
	current  map[domain.Dimension]float64
	pending  domain.PendingChangeSet
	authKey  string
}

func NewRestraintSession(backend ports.RestraintBackend, clock ports.Clock, refreshDelay time.Duration) *RestraintSession {
	if clock == nil {
		clock = ports.SystemClock{}
	}
	if refreshDelay < 0 {
		refreshDelay = 0
	}

	return &RestraintSession{
		backend:      backend,
		clock:        clock,
		refreshDelay: refreshDelay,
		current:      map[domain.Dimension]float64{},
		pending:      domain.PendingChangeSet{},
	}
}

func (s *RestraintSession) Load(ctx context.Context) error {
	set, err := s.backend.GetRestraints(ctx)
	if err != nil {
		return fmt.Errorf("get restraints: %w", err)
	}

	s.Apply(set)
	return nil
}

// Apply installs a freshly fetched set as the new baseline. Dimensions that
// are still pending keep their displayed value and are re-diffed against the
// new baseline; every other dimension snaps to the server value.
func (s *RestraintSession) Apply(set domain.RestraintSet) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.baseline = set.Clone()
	s.loaded = true

	current := make(map[domain.Dimension]float64, len(set.Values))
	for dim, value := range set.Values {
		current[dim] = value
	}
	for dim, value := range s.pending {
		baseline, ok := set.Values[dim]
		if !ok {
			delete(s.pending, dim)
			continue
		}
		if s.pending.Track(dim, baseline, value) {
			current[dim] = value
		}
	}
	s.current = current
}

func (s *RestraintSession) Loaded() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loaded
}

func (s *RestraintSession) State() SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stateLocked()
}

func (s *RestraintSession) stateLocked() SessionState {
	if len(s.pending) == 0 {
		return SessionClean
	}
	return SessionDirty
}

func (s *RestraintSession) Pending() domain.PendingChangeSet {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make(domain.PendingChangeSet, len(s.pending))
	for dim, value := range s.pending {
		out[dim] = value
	}
	return out
}

func (s *RestraintSession) RequiresAuth() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return domain.RequiresAuth(s.pending, s.baseline)
}

func (s *RestraintSession) Authorized() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.authKey != ""
}

// Authorize captures the key sent with every update of the next save. The
// key is not checked locally.
func (s *RestraintSession) Authorize(key string) error {
	if err := domain.RequireText("authorization key", key); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.authKey = key
	return nil
}

// Edit moves the displayed value of dim and reports whether it is pending afterwards.
func (s *RestraintSession) Edit(dim domain.Dimension, value float64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	baseline, ok := s.baseline.Values[dim]
	if !ok {
		return false, fmt.Errorf("%w: %s", domain.ErrUnknownDimension, dim)
	}
	if s.baseline.Locked(dim) && s.authKey == "" {
		return false, fmt.Errorf("%w: %s", domain.ErrDimensionLocked, dim)
	}

	value = dim.Clamp(value)
	s.current[dim] = value
	return s.pending.Track(dim, baseline, value), nil
}

// Nudge moves dim by steps slider increments.
func (s *RestraintSession) Nudge(dim domain.Dimension, steps int) (bool, error) {
	s.mu.Lock()
	value, ok := s.current[dim]
	s.mu.Unlock()
	if !ok {
		return false, fmt.Errorf("%w: %s", domain.ErrUnknownDimension, dim)
	}

	return s.Edit(dim, value+float64(steps)*dim.Step())
}

// Reset restores every pending dimension to its baseline without contacting
// the backend and returns the dimensions it restored.
func (s *RestraintSession) Reset() []domain.Dimension {
	s.mu.Lock()
	defer s.mu.Unlock()

	restored := s.pending.Dimensions()
	for _, dim := range restored {
		s.current[dim] = s.baseline.Values[dim]
	}
	s.pending.Clear()
	s.authKey = ""
	return restored
}

// Save writes every pending change, one request per dimension, in name order.
// It refuses to send anything while a change crosses a hard limit and no
// authorization key has been captured.
func (s *RestraintSession) Save(ctx context.Context) (SaveResult, error) {
	s.mu.Lock()
	if len(s.pending) == 0 {
		s.mu.Unlock()
		return SaveResult{}, nil
	}
	if domain.RequiresAuth(s.pending, s.baseline) && s.authKey == "" {
		s.mu.Unlock()
		return SaveResult{}, domain.ErrAuthorizationRequired
	}
	dims := s.pending.Dimensions()
	values := make(map[domain.Dimension]float64, len(dims))
	for _, dim := range dims {
		values[dim] = s.pending[dim]
	}
	key := s.authKey
	s.mu.Unlock()

	result := SaveResult{
		Failed:   map[domain.Dimension]error{},
		Messages: map[domain.Dimension]string{},
	}
	for _, dim := range dims {
		message, err := s.backend.UpdateRestraint(ctx, ports.RestraintUpdate{
			Dimension:        dim,
			Value:            values[dim],
			Authorized:       key != "",
			AuthorizationKey: key,
		})
		if err != nil {
			result.Failed[dim] = err
			continue
		}
		result.Saved = append(result.Saved, dim)
		if message != "" {
			result.Messages[dim] = message
		}
	}

	s.mu.Lock()
	for _, dim := range result.Saved {
		// accepted values stand in as baseline until the refresh below
		// replaces them with what the server actually stored
		if s.pending[dim] == values[dim] {
			delete(s.pending, dim)
			s.baseline.Values[dim] = values[dim]
		}
	}
	if len(s.pending) == 0 {
		s.authKey = ""
	}
	s.mu.Unlock()

	if len(result.Saved) == 0 {
		return result, nil
	}

	select {
	case <-ctx.Done():
		result.RefreshErr = ctx.Err()
		return result, nil
	case <-s.clock.After(s.refreshDelay):
	}

	if err := s.Load(ctx); err != nil {
		result.RefreshErr = err
		return result, nil
	}
	result.Refreshed = true
	return result, nil
}

type RestraintRow struct {
	Dimension    domain.Dimension
	Label        string
	Baseline     float64
	Value        float64
	HardLimit    *float64
	Locked       bool
	Pending      bool
	ExceedsLimit bool
	Budget       bool
}

type RestraintMatrix struct {
	Rows         []RestraintRow
	State        SessionState
	PendingCount int
	RequiresAuth bool
	Authorized   bool
}

// Snapshot is the view model of the matrix; it never exposes the key itself.
func (s *RestraintSession) Snapshot() RestraintMatrix {
	s.mu.Lock()
	defer s.mu.Unlock()

	dims := s.baseline.Dimensions()
	rows := make([]RestraintRow, 0, len(dims))
	for _, dim := range dims {
		baseline := s.baseline.Values[dim]
		value, ok := s.current[dim]
		if !ok {
			value = baseline
		}
		row := RestraintRow{
			Dimension: dim,
			Label:     dim.Label(),
			Baseline:  baseline,
			Value:     value,
			Locked:    s.baseline.Locked(dim),
			Budget:    dim.IsBudget(),
		}
		_, row.Pending = s.pending[dim]
		if limit, ok := s.baseline.HardLimit(dim); ok {
			l := limit
			row.HardLimit = &l
			row.ExceedsLimit = value > limit
		}
		rows = append(rows, row)
	}

	return RestraintMatrix{
		Rows:         rows,
		State:        s.stateLocked(),
		PendingCount: len(s.pending),
		RequiresAuth: domain.RequiresAuth(s.pending, s.baseline),
		Authorized:   s.authKey != "",
	}
}

// MatrixOf is the matrix of set with no edits applied.
func MatrixOf(set domain.RestraintSet) RestraintMatrix {
	session := NewRestraintSession(nil, nil, 0)
	session.Apply(set)
	return session.Snapshot()
}
