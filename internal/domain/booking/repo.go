package booking

import "context"

// BookingRequest is the booking API's create/amend payload: journey metadata
// plus one typed appointment entry per derived time slot.
type BookingRequest struct {
	BookingType  BookingType          `json:"bookingType"`
	Prisoner     Prisoner             `json:"prisoner"`
	AgencyCode   string               `json:"agencyCode"`
	HearingCode  string               `json:"hearingOrMeetingTypeCode"`
	Appointments []AppointmentRequest `json:"appointments"`

	VideoLinkURL string `json:"videoLinkUrl,omitempty"`
	HMCTSNumber  string `json:"hmctsNumber,omitempty"`
	GuestPin     string `json:"guestPin,omitempty"`

	Officer *ProbationOfficer `json:"officer,omitempty"`

	Comments          string `json:"comments,omitempty"`
	NotesForStaff     string `json:"notesForStaff,omitempty"`
	NotesForPrisoners string `json:"notesForPrisoners,omitempty"`
}

// AppointmentRequest is one slot of the payload.
type AppointmentRequest struct {
	TypeCode     string `json:"appointmentType"`
	LocationCode string `json:"locationKey"`
	Date         string `json:"date"`
	StartTime    string `json:"startTime"`
	EndTime      string `json:"endTime"`
}

// BookingClient is the booking API, the system of record for video-link
// bookings. This service holds no booking state of its own.
type BookingClient interface {
	Create(ctx context.Context, req BookingRequest) (int64, error)
	// Amend replaces the booking's slots and metadata wholesale; the
	// upstream de-duplicates by id, so retrying an unchanged amend is safe.
	Amend(ctx context.Context, id int64, req BookingRequest) (int64, error)
	Get(ctx context.Context, id int64) (*Booking, error)
	Cancel(ctx context.Context, id int64) error
}

// AppointmentSearchResult is one hit from the appointment search index.
type AppointmentSearchResult struct {
	BookingID      int64  `json:"videoLinkBookingId"`
	PrisonerNumber string `json:"prisonerNumber"`
	Date           string `json:"date"`
	StartTime      string `json:"startTime"`
	EndTime        string `json:"endTime"`
}

// AppointmentSearcher queries the eventually-consistent appointment search
// index used to confirm a just-written booking has become visible.
type AppointmentSearcher interface {
	SearchAppointments(ctx context.Context, prisonCode, date string) ([]AppointmentSearchResult, error)
}
