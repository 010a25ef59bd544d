package machine

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"github.com/mpz/devops/tools/value-distribution/internal/constants"
	"github.com/mpz/devops/tools/value-distribution/internal/types"
)

// Store owns the live state of the form and the activity log of the
// actions applied to it.
type Store struct {
	mu        sync.RWMutex
	state     types.State
	events    []types.Event
	sequence  int64
	maxEvents int
	logger    *slog.Logger
	now       func() time.Time
}

// StoreConfig contains configuration for the store.
type StoreConfig struct {
	Logger *slog.Logger
	// MaxEvents bounds the activity log. Older events are dropped first.
	MaxEvents int
}

// NewStore creates a store holding the initial state.
func NewStore(cfg StoreConfig) *Store {
	s := &Store{
		state:     InitialState(),
		maxEvents: cfg.MaxEvents,
		logger:    cfg.Logger,
		now:       time.Now,
	}

	if s.logger == nil {
		s.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if s.maxEvents <= 0 {
		s.maxEvents = constants.DefaultMaxEvents
	}

	return s
}

// Dispatch applies one action and returns the resulting state.
func (s *Store) Dispatch(ctx context.Context, action types.Action) (types.State, error) {
	if err := ctx.Err(); err != nil {
		return types.State{}, errors.Wrap(err, "dispatch")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.state = Reduce(s.state, action)
	s.recordEvent(action)

	s.logger.Debug("action dispatched",
		slog.String("type", string(action.Type)),
		slog.Int("distributions", len(s.state.Distributions)),
		slog.String("total_value", s.state.TotalValue))

	return s.state.Clone(), nil
}

// DispatchAll applies the actions plan builds from the current state as one
// batch: no other dispatch runs in between, and nothing is applied when plan
// fails.
func (s *Store) DispatchAll(ctx context.Context, plan func(types.State) ([]types.Action, error)) (types.State, error) {
	if err := ctx.Err(); err != nil {
		return types.State{}, errors.Wrap(err, "dispatch batch")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	actions, err := plan(s.state.Clone())
	if err != nil {
		return types.State{}, err
	}

	for _, action := range actions {
		s.state = Reduce(s.state, action)
		s.recordEvent(action)
	}

	s.logger.Debug("action batch dispatched",
		slog.Int("actions", len(actions)),
		slog.Int("distributions", len(s.state.Distributions)))

	return s.state.Clone(), nil
}

// State returns a copy of the current state.
func (s *Store) State() types.State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Clone()
}

// Events returns the activity log, oldest first.
func (s *Store) Events() []types.Event {
	s.mu.RLock()
	defer s.mu.RUnlock()

	events := make([]types.Event, len(s.events))
	copy(events, s.events)
	return events
}

// recordEvent appends an event for action. Must be called with s.mu held.
func (s *Store) recordEvent(action types.Action) {
	s.sequence++
	event := types.Event{
		ID:            uuid.New().String(),
		Sequence:      s.sequence,
		Type:          action.Type,
		Distributions: len(s.state.Distributions),
		Timestamp:     s.now(),
	}
	if action.Index != nil {
		index := *action.Index
		event.Index = &index
	}

	s.events = append(s.events, event)
	if over := len(s.events) - s.maxEvents; over > 0 {
		s.events = append([]types.Event(nil), s.events[over:]...)
	}
}
