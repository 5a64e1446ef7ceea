package booking

import (
	"fmt"
	"time"
)

// BookingType distinguishes the two video-link variants.
type BookingType string

const (
	TypeCourt     BookingType = "COURT"
	TypeProbation BookingType = "PROBATION"
)

// ParseBookingType maps a URL segment onto a BookingType.
func ParseBookingType(s string) (BookingType, error) {
	switch s {
	case "court":
		return TypeCourt, nil
	case "probation":
		return TypeProbation, nil
	}
	return "", &FieldError{Field: "type", Message: fmt.Sprintf("unknown booking type %q", s)}
}

// BookingStatus as reported by the booking API.
type BookingStatus string

const (
	StatusActive    BookingStatus = "ACTIVE"
	StatusCancelled BookingStatus = "CANCELLED"
)

// SlotType tags the three windows of one booking.
type SlotType string

const (
	SlotPre  SlotType = "PRE"
	SlotMain SlotType = "MAIN"
	SlotPost SlotType = "POST"
)

// Appointment type codes the booking API expects per slot.
const (
	CodeCourtPre  = "VLB_COURT_PRE"
	CodeCourtMain = "VLB_COURT_MAIN"
	CodeCourtPost = "VLB_COURT_POST"
	CodeProbation = "VLB_PROBATION"
)

// Wire formats for the timezone-naive, prison-local dates and wall-clock
// times carried throughout.
const (
	DateFormat = "2006-01-02"
	TimeFormat = "15:04"
)

// TimeSlot is one discrete window in one room. Immutable value type, derived
// by the slot calculator and consumed downstream.
type TimeSlot struct {
	Type         SlotType `json:"type"`
	LocationCode string   `json:"locationCode"`
	Date         string   `json:"date"`
	StartTime    string   `json:"startTime"`
	EndTime      string   `json:"endTime"`
}

// Prisoner identifies the single subject of a booking. Group bookings are
// out of scope.
type Prisoner struct {
	PrisonCode string `json:"prisonCode"`
	Number     string `json:"number"`
	Name       string `json:"name"`
}

// ProbationOfficer holds the supervising officer's contact details, or marks
// them as not yet known.
type ProbationOfficer struct {
	NotYetKnown bool   `json:"notYetKnown"`
	FullName    string `json:"fullName,omitempty"`
	Email       string `json:"email,omitempty"`
	Telephone   string `json:"telephone,omitempty"`
}

// BookingJourney is the session-scoped state of one in-progress wizard. Each
// step writes only the fields it owns; the journey accumulates across steps
// and is cleared on terminal success.
type BookingJourney struct {
	BookingID   *int64      `json:"bookingId,omitempty"`
	BookingType BookingType `json:"bookingType"`
	Prisoner    Prisoner    `json:"prisoner"`

	AgencyCode  string `json:"agencyCode,omitempty"`
	HearingCode string `json:"hearingOrMeetingTypeCode,omitempty"`

	Date      string `json:"date,omitempty"`
	MainStart string `json:"mainStart,omitempty"`
	MainEnd   string `json:"mainEnd,omitempty"`

	PreRequired     bool   `json:"preRequired"`
	PreStart        string `json:"preStart,omitempty"`
	PreEnd          string `json:"preEnd,omitempty"`
	PreLocationCode string `json:"preLocationCode,omitempty"`

	PostRequired     bool   `json:"postRequired"`
	PostStart        string `json:"postStart,omitempty"`
	PostEnd          string `json:"postEnd,omitempty"`
	PostLocationCode string `json:"postLocationCode,omitempty"`

	LocationCode string `json:"locationCode,omitempty"`

	VideoLinkURL string `json:"videoLinkUrl,omitempty"`
	HMCTSNumber  string `json:"hmctsNumber,omitempty"`
	GuestPin     string `json:"guestPin,omitempty"`

	Officer *ProbationOfficer `json:"officer,omitempty"`

	Comments          string `json:"comments,omitempty"`
	NotesForStaff     string `json:"notesForStaff,omitempty"`
	NotesForPrisoners string `json:"notesForPrisoners,omitempty"`
}

// Amending reports whether the journey is editing an existing booking.
func (j *BookingJourney) Amending() bool { return j.BookingID != nil }

// Booking is the upstream record as returned by the booking API.
type Booking struct {
	ID           int64         `json:"bookingId"`
	Type         BookingType   `json:"bookingType"`
	Status       BookingStatus `json:"status"`
	Prisoner     Prisoner      `json:"prisoner"`
	AgencyCode   string        `json:"agencyCode"`
	HearingCode  string        `json:"hearingOrMeetingTypeCode"`
	Appointments []Appointment `json:"appointments"`
	VideoLinkURL string        `json:"videoLinkUrl,omitempty"`
	HMCTSNumber  string        `json:"hmctsNumber,omitempty"`
	GuestPin     string        `json:"guestPin,omitempty"`

	Officer *ProbationOfficer `json:"officer,omitempty"`

	Comments          string `json:"comments,omitempty"`
	NotesForStaff     string `json:"notesForStaff,omitempty"`
	NotesForPrisoners string `json:"notesForPrisoners,omitempty"`
}

// Appointment is one typed slot of an upstream booking.
type Appointment struct {
	TypeCode     string `json:"appointmentType"`
	LocationCode string `json:"locationKey"`
	Date         string `json:"date"`
	StartTime    string `json:"startTime"`
	EndTime      string `json:"endTime"`
}

// MainAppointment returns the booking's main slot, the one the amendability
// policy measures against.
func (b *Booking) MainAppointment() *Appointment {
	for i := range b.Appointments {
		switch b.Appointments[i].TypeCode {
		case CodeCourtMain, CodeProbation:
			return &b.Appointments[i]
		}
	}
	return nil
}

func parseDate(field, value string) (time.Time, error) {
	t, err := time.Parse(DateFormat, value)
	if err != nil {
		return time.Time{}, &FieldError{Field: field, Message: fmt.Sprintf("invalid date %q, expected YYYY-MM-DD", value)}
	}
	return t, nil
}

func parseClock(field, value string) (time.Time, error) {
	t, err := time.Parse(TimeFormat, value)
	if err != nil {
		return time.Time{}, &FieldError{Field: field, Message: fmt.Sprintf("invalid time %q, expected HH:MM", value)}
	}
	return t, nil
}
