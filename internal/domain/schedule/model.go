package schedule

// Location is a bookable room inside a prison, as known to the locations
// service. Key is the business identifier used on booking payloads; ID is
// the internal identifier the events services index on.
type Location struct {
	Key         string `json:"key"`
	ID          int64  `json:"locationId"`
	Description string `json:"description"`
	Enabled     bool   `json:"enabled"`
}

// ScheduleEvent is one occurrence on a prisoner's or a room's timeline for a
// day. Events are owned by the upstream systems; this service only reads and
// merges them.
type ScheduleEvent struct {
	ID                  int64  `json:"id"`
	SourceType          string `json:"sourceType"`
	PrisonerNumber      string `json:"prisonerNumber,omitempty"`
	LocationID          int64  `json:"locationId,omitempty"`
	ScheduledInstanceID *int64 `json:"scheduledInstanceId,omitempty"`
	AppointmentID       *int64 `json:"appointmentId,omitempty"`
	Description         string `json:"description,omitempty"`
	Date                string `json:"date"`
	StartTime           string `json:"startTime"`
	EndTime             string `json:"endTime"`
	Cancelled           bool   `json:"cancelled"`
}

// Event source types as reported by the upstream schedule feeds.
const (
	SourceActivity     = "activity"
	SourceAppointment  = "appointment"
	SourceCourtHearing = "courtHearing"
	SourceVisit        = "visit"
	SourceTransfer     = "transfer"
	SourceAdjudication = "adjudication"
)

// DaySchedule is the merged single-day view rendered on the schedule review
// step: the prisoner's own events plus the occupancy of each candidate room,
// keyed by location key. Overlaps are shown to the user, never blocked here.
type DaySchedule struct {
	PrisonCode     string                     `json:"prisonCode"`
	PrisonerNumber string                     `json:"prisonerNumber"`
	Date           string                     `json:"date"`
	PrisonerEvents []ScheduleEvent            `json:"prisonerEvents"`
	LocationEvents map[string][]ScheduleEvent `json:"locationEvents"`
}

// dedupKey identifies one occurrence across the prisoner-centric and
// location-centric feeds. Events with neither identifier never match
// anything, so ok is false for them.
func (e ScheduleEvent) dedupKey() (key [2]int64, ok bool) {
	if e.ScheduledInstanceID == nil && e.AppointmentID == nil {
		return key, false
	}
	if e.ScheduledInstanceID != nil {
		key[0] = *e.ScheduledInstanceID
	} else {
		key[0] = -1
	}
	if e.AppointmentID != nil {
		key[1] = *e.AppointmentID
	} else {
		key[1] = -1
	}
	return key, true
}
