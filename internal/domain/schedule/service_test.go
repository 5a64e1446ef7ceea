package schedule

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/ministryofjustice/hmpps-activities-management-sub006/internal/platform/rest"
)

// -- Mock clients --

type mockLocationClient struct {
	locations map[string]*Location
	resolved  []string
	failWith  error
}

func newMockLocationClient(locations ...Location) *mockLocationClient {
	m := &mockLocationClient{locations: make(map[string]*Location)}
	for i := range locations {
		m.locations[locations[i].Key] = &locations[i]
	}
	return m
}

func (m *mockLocationClient) AppointmentLocations(_ context.Context, _ string) ([]Location, error) {
	if m.failWith != nil {
		return nil, m.failWith
	}
	var out []Location
	for _, l := range m.locations {
		out = append(out, *l)
	}
	return out, nil
}

func (m *mockLocationClient) ResolveLocationKey(_ context.Context, key string) (*Location, error) {
	if m.failWith != nil {
		return nil, m.failWith
	}
	m.resolved = append(m.resolved, key)
	loc, ok := m.locations[key]
	if !ok {
		return nil, fmt.Errorf("location %s: %w", key, rest.ErrNotFound)
	}
	return loc, nil
}

type mockEventsClient struct {
	prisonerEvents []ScheduleEvent
	locationEvents map[int64][]ScheduleEvent
	prisonerErr    error
	locationErr    error

	// When set, each fetch blocks until the other arrives, so a sequential
	// caller would time out instead of passing.
	rendezvous chan struct{}
}

func (m *mockEventsClient) PrisonerEvents(_ context.Context, _, _, _ string) ([]ScheduleEvent, error) {
	if err := m.meet(); err != nil {
		return nil, err
	}
	if m.prisonerErr != nil {
		return nil, m.prisonerErr
	}
	return m.prisonerEvents, nil
}

func (m *mockEventsClient) LocationEvents(_ context.Context, _, _ string, _ []int64) (map[int64][]ScheduleEvent, error) {
	if err := m.meet(); err != nil {
		return nil, err
	}
	if m.locationErr != nil {
		return nil, m.locationErr
	}
	return m.locationEvents, nil
}

func (m *mockEventsClient) meet() error {
	if m.rendezvous == nil {
		return nil
	}
	select {
	case m.rendezvous <- struct{}{}:
		return nil
	case <-m.rendezvous:
		return nil
	case <-time.After(2 * time.Second):
		return errors.New("fetches were not concurrent")
	}
}

func i64(v int64) *int64 { return &v }

func TestDayScheduleMergesSources(t *testing.T) {
	locations := newMockLocationClient(
		Location{Key: "MDI-VCC-1", ID: 101},
		Location{Key: "MDI-VCC-2", ID: 102},
	)
	events := &mockEventsClient{
		prisonerEvents: []ScheduleEvent{
			{ID: 1, SourceType: SourceActivity, ScheduledInstanceID: i64(5), StartTime: "09:00", EndTime: "10:00"},
			{ID: 2, SourceType: SourceVisit, StartTime: "14:00", EndTime: "15:00"},
		},
		locationEvents: map[int64][]ScheduleEvent{
			101: {{ID: 3, SourceType: SourceAppointment, AppointmentID: i64(7), StartTime: "11:00", EndTime: "11:30"}},
			102: {},
		},
	}
	svc := NewService(locations, events)

	day, err := svc.DaySchedule(context.Background(), "MDI", "A1234AA", "2022-03-20", []string{"MDI-VCC-1", "MDI-VCC-2"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(day.PrisonerEvents) != 2 {
		t.Errorf("prisoner events = %d, want 2", len(day.PrisonerEvents))
	}
	if len(day.LocationEvents["MDI-VCC-1"]) != 1 {
		t.Errorf("room 1 events = %d, want 1", len(day.LocationEvents["MDI-VCC-1"]))
	}
	if len(day.LocationEvents["MDI-VCC-2"]) != 0 {
		t.Errorf("room 2 events = %d, want 0", len(day.LocationEvents["MDI-VCC-2"]))
	}
}

func TestDayScheduleDedupesSharedOccurrences(t *testing.T) {
	locations := newMockLocationClient(Location{Key: "MDI-VCC-1", ID: 101})
	events := &mockEventsClient{
		prisonerEvents: []ScheduleEvent{
			{ID: 1, ScheduledInstanceID: i64(5), StartTime: "09:00", EndTime: "10:00"},
		},
		locationEvents: map[int64][]ScheduleEvent{
			101: {
				// Same occurrence seen from the room side; must not repeat.
				{ID: 9, ScheduledInstanceID: i64(5), StartTime: "09:00", EndTime: "10:00"},
				{ID: 10, AppointmentID: i64(8), StartTime: "12:00", EndTime: "12:30"},
			},
		},
	}
	svc := NewService(locations, events)

	day, err := svc.DaySchedule(context.Background(), "MDI", "A1234AA", "2022-03-20", []string{"MDI-VCC-1"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	room := day.LocationEvents["MDI-VCC-1"]
	if len(room) != 1 || room[0].ID != 10 {
		t.Errorf("room events = %+v, want only the unshared appointment", room)
	}
}

func TestDayScheduleNilIdentifiersNeverCollapse(t *testing.T) {
	locations := newMockLocationClient(Location{Key: "MDI-VCC-1", ID: 101})
	events := &mockEventsClient{
		prisonerEvents: []ScheduleEvent{
			{ID: 1, SourceType: SourceVisit, StartTime: "09:00", EndTime: "10:00"},
		},
		locationEvents: map[int64][]ScheduleEvent{
			101: {{ID: 2, SourceType: SourceVisit, StartTime: "09:00", EndTime: "10:00"}},
		},
	}
	svc := NewService(locations, events)

	day, err := svc.DaySchedule(context.Background(), "MDI", "A1234AA", "2022-03-20", []string{"MDI-VCC-1"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(day.PrisonerEvents) != 1 || len(day.LocationEvents["MDI-VCC-1"]) != 1 {
		t.Errorf("identifier-less events were collapsed: %+v", day)
	}
}

func TestDayScheduleDedupesLocationKeys(t *testing.T) {
	locations := newMockLocationClient(Location{Key: "MDI-VCC-1", ID: 101})
	events := &mockEventsClient{locationEvents: map[int64][]ScheduleEvent{101: {}}}
	svc := NewService(locations, events)

	// Pre, main and post all in the same room.
	_, err := svc.DaySchedule(context.Background(), "MDI", "A1234AA", "2022-03-20",
		[]string{"MDI-VCC-1", "MDI-VCC-1", "MDI-VCC-1"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(locations.resolved) != 1 {
		t.Errorf("resolved %d times, want 1", len(locations.resolved))
	}
}

func TestDayScheduleAllOrNothing(t *testing.T) {
	cases := []struct {
		name   string
		events *mockEventsClient
	}{
		{"prisoner feed down", &mockEventsClient{prisonerErr: fmt.Errorf("dial: %w", rest.ErrUnavailable)}},
		{"location feed down", &mockEventsClient{locationErr: fmt.Errorf("dial: %w", rest.ErrUnavailable)}},
		{"unwrapped failure", &mockEventsClient{prisonerErr: errors.New("boom")}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			locations := newMockLocationClient(Location{Key: "MDI-VCC-1", ID: 101})
			svc := NewService(locations, tc.events)
			day, err := svc.DaySchedule(context.Background(), "MDI", "A1234AA", "2022-03-20", []string{"MDI-VCC-1"})
			if !errors.Is(err, rest.ErrUnavailable) {
				t.Fatalf("error = %v, want ErrUnavailable", err)
			}
			if day != nil {
				t.Error("partial schedule returned on failure")
			}
		})
	}
}

func TestDayScheduleFetchesConcurrently(t *testing.T) {
	locations := newMockLocationClient(Location{Key: "MDI-VCC-1", ID: 101})
	events := &mockEventsClient{
		locationEvents: map[int64][]ScheduleEvent{101: {}},
		rendezvous:     make(chan struct{}),
	}
	svc := NewService(locations, events)

	if _, err := svc.DaySchedule(context.Background(), "MDI", "A1234AA", "2022-03-20", []string{"MDI-VCC-1"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestDayScheduleUnknownLocation(t *testing.T) {
	svc := NewService(newMockLocationClient(), &mockEventsClient{})
	_, err := svc.DaySchedule(context.Background(), "MDI", "A1234AA", "2022-03-20", []string{"NOPE"})
	if !errors.Is(err, rest.ErrNotFound) {
		t.Errorf("error = %v, want ErrNotFound", err)
	}
}

func TestDayScheduleRejectsBadDate(t *testing.T) {
	svc := NewService(newMockLocationClient(), &mockEventsClient{})
	_, err := svc.DaySchedule(context.Background(), "MDI", "A1234AA", "20/03/2022", nil)
	if err == nil {
		t.Fatal("expected error for malformed date")
	}
}
