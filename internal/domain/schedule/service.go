package schedule

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ministryofjustice/hmpps-activities-management-sub006/internal/platform/rest"
)

type Service struct {
	locations LocationClient
	events    EventsClient
}

func NewService(locations LocationClient, events EventsClient) *Service {
	return &Service{locations: locations, events: events}
}

// DaySchedule builds the merged single-day view for a prisoner and a set of
// candidate rooms. The prisoner fetch and the room-occupancy fetch run
// concurrently; any upstream failure fails the whole aggregation, because a
// partial schedule reads as a falsely clear one.
func (s *Service) DaySchedule(ctx context.Context, prisonCode, prisonerNumber, date string, locationKeys []string) (*DaySchedule, error) {
	if _, err := time.Parse("2006-01-02", date); err != nil {
		return nil, fmt.Errorf("invalid date %q: %w", date, err)
	}

	keys := dedupeKeys(locationKeys)
	resolved := make(map[string]*Location, len(keys))
	ids := make([]int64, 0, len(keys))
	for _, key := range keys {
		loc, err := s.locations.ResolveLocationKey(ctx, key)
		if errors.Is(err, rest.ErrNotFound) {
			return nil, fmt.Errorf("unknown location %s: %w", key, err)
		}
		if err != nil {
			return nil, unavailable(fmt.Errorf("resolve location %s: %w", key, err))
		}
		resolved[key] = loc
		ids = append(ids, loc.ID)
	}

	var (
		prisonerEvents []ScheduleEvent
		prisonerErr    error
		byLocationID   map[int64][]ScheduleEvent
		locationErr    error
		done           = make(chan struct{}, 2)
	)
	go func() {
		prisonerEvents, prisonerErr = s.events.PrisonerEvents(ctx, prisonCode, prisonerNumber, date)
		done <- struct{}{}
	}()
	go func() {
		byLocationID, locationErr = s.events.LocationEvents(ctx, prisonCode, date, ids)
		done <- struct{}{}
	}()
	<-done
	<-done

	if prisonerErr != nil {
		return nil, unavailable(fmt.Errorf("prisoner events for %s: %w", prisonerNumber, prisonerErr))
	}
	if locationErr != nil {
		return nil, unavailable(fmt.Errorf("location events: %w", locationErr))
	}

	seen := make(map[[2]int64]bool, len(prisonerEvents))
	for _, ev := range prisonerEvents {
		if key, ok := ev.dedupKey(); ok {
			seen[key] = true
		}
	}

	byKey := make(map[string][]ScheduleEvent, len(keys))
	for _, key := range keys {
		events := byLocationID[resolved[key].ID]
		kept := make([]ScheduleEvent, 0, len(events))
		for _, ev := range events {
			if dk, ok := ev.dedupKey(); ok && seen[dk] {
				continue
			}
			kept = append(kept, ev)
		}
		byKey[key] = kept
	}

	return &DaySchedule{
		PrisonCode:     prisonCode,
		PrisonerNumber: prisonerNumber,
		Date:           date,
		PrisonerEvents: prisonerEvents,
		LocationEvents: byKey,
	}, nil
}

// AppointmentLocations lists the rooms offered on the location step.
func (s *Service) AppointmentLocations(ctx context.Context, prisonCode string) ([]Location, error) {
	locations, err := s.locations.AppointmentLocations(ctx, prisonCode)
	if err != nil {
		return nil, unavailable(fmt.Errorf("appointment locations for %s: %w", prisonCode, err))
	}
	return locations, nil
}

// dedupeKeys drops repeats while keeping first-seen order; pre, main and post
// frequently share one room.
func dedupeKeys(keys []string) []string {
	out := make([]string, 0, len(keys))
	seen := make(map[string]bool, len(keys))
	for _, k := range keys {
		if k == "" || seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, k)
	}
	return out
}

func unavailable(err error) error {
	if errors.Is(err, rest.ErrUnavailable) {
		return err
	}
	return fmt.Errorf("%v: %w", err, rest.ErrUnavailable)
}
