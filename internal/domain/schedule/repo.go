package schedule

import "context"

// LocationClient resolves room keys against the locations service.
type LocationClient interface {
	// AppointmentLocations lists the video-link capable rooms of a prison.
	AppointmentLocations(ctx context.Context, prisonCode string) ([]Location, error)
	// ResolveLocationKey looks one room up by its business key.
	ResolveLocationKey(ctx context.Context, key string) (*Location, error)
}

// EventsClient reads single-day timelines from the upstream schedule feeds.
type EventsClient interface {
	// PrisonerEvents returns every event on the prisoner's day, all source
	// types included.
	PrisonerEvents(ctx context.Context, prisonCode, prisonerNumber, date string) ([]ScheduleEvent, error)
	// LocationEvents returns the occupancy of each location for the day,
	// keyed by internal location id.
	LocationEvents(ctx context.Context, prisonCode, date string, locationIDs []int64) (map[int64][]ScheduleEvent, error)
}
