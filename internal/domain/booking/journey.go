package booking

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/ministryofjustice/hmpps-activities-management-sub006/internal/platform/session"
)

// JourneyStore keeps at most one BookingJourney per owner and flow. Each
// wizard step reads the journey to pre-populate and merges back only the
// fields it owns, so state accumulates across arbitrary navigation. Two tabs
// on the same flow are last-write-wins; that is accepted, not defended.
type JourneyStore struct {
	store session.Store
}

func NewJourneyStore(store session.Store) *JourneyStore {
	return &JourneyStore{store: store}
}

func journeyKey(owner string, flow Flow) string {
	return fmt.Sprintf("journey:%s:%s", owner, flow.Key())
}

// Get returns the in-flight journey, or ok=false when none exists.
func (s *JourneyStore) Get(ctx context.Context, owner string, flow Flow) (*BookingJourney, bool, error) {
	raw, ok, err := s.store.Get(ctx, journeyKey(owner, flow))
	if err != nil {
		return nil, false, fmt.Errorf("journey get: %w", err)
	}
	if !ok {
		return nil, false, nil
	}
	var j BookingJourney
	if err := json.Unmarshal(raw, &j); err != nil {
		return nil, false, fmt.Errorf("journey decode: %w", err)
	}
	return &j, true, nil
}

// Put replaces the journey outright. Used when a flow starts, including the
// amend hydration from an existing booking; a stale journey of the same flow
// is simply superseded.
func (s *JourneyStore) Put(ctx context.Context, owner string, flow Flow, j *BookingJourney) error {
	raw, err := json.Marshal(j)
	if err != nil {
		return fmt.Errorf("journey encode: %w", err)
	}
	if err := s.store.Put(ctx, journeyKey(owner, flow), raw); err != nil {
		return fmt.Errorf("journey put: %w", err)
	}
	return nil
}

// Merge applies a step's mutation to the current journey, creating one when
// absent, and writes the result back. Fields the mutation does not touch are
// preserved.
func (s *JourneyStore) Merge(ctx context.Context, owner string, flow Flow, apply func(*BookingJourney)) (*BookingJourney, error) {
	j, ok, err := s.Get(ctx, owner, flow)
	if err != nil {
		return nil, err
	}
	if !ok {
		j = &BookingJourney{BookingType: flow.Type}
	}
	apply(j)
	if err := s.Put(ctx, owner, flow, j); err != nil {
		return nil, err
	}
	return j, nil
}

// Clear removes the journey. Called exactly once per journey, on terminal
// success or explicit abandonment.
func (s *JourneyStore) Clear(ctx context.Context, owner string, flow Flow) error {
	if err := s.store.Delete(ctx, journeyKey(owner, flow)); err != nil {
		return fmt.Errorf("journey clear: %w", err)
	}
	return nil
}
