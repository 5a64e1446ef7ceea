package booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ministryofjustice/hmpps-activities-management-sub006/internal/platform/rest"
)

type Service struct {
	bookings BookingClient
	search   AppointmentSearcher

	slots SlotPolicy
	amend AmendPolicy

	confirmAttempts int
	confirmBackoff  time.Duration
}

// ServiceOptions tunes slot derivation, the amendability clock and the
// confirmation poll. Zero values fall back to defaults.
type ServiceOptions struct {
	Slots           SlotPolicy
	Amend           AmendPolicy
	ConfirmAttempts int
	ConfirmBackoff  time.Duration
}

func NewService(bookings BookingClient, search AppointmentSearcher, opts ServiceOptions) *Service {
	if opts.Slots.PrePostLength == 0 {
		opts.Slots = DefaultSlotPolicy
	}
	if opts.ConfirmAttempts <= 0 {
		opts.ConfirmAttempts = 3
	}
	if opts.ConfirmBackoff <= 0 {
		opts.ConfirmBackoff = 500 * time.Millisecond
	}
	return &Service{
		bookings:        bookings,
		search:          search,
		slots:           opts.Slots,
		amend:           opts.Amend,
		confirmAttempts: opts.ConfirmAttempts,
		confirmBackoff:  opts.ConfirmBackoff,
	}
}

// Submit reconciles a completed journey into one upstream mutation: an amend
// when the journey carries a booking id, a create otherwise. The same id
// comes back either way. Creates are never retried automatically; amends are
// retry-safe because the upstream de-duplicates by id.
func (s *Service) Submit(ctx context.Context, j *BookingJourney) (int64, error) {
	if err := validateComplete(j); err != nil {
		return 0, err
	}
	slots, err := s.slots.SlotsFromJourney(j)
	if err != nil {
		return 0, err
	}
	req := buildRequest(j, slots)

	var id int64
	if j.Amending() {
		id, err = s.bookings.Amend(ctx, *j.BookingID, req)
	} else {
		id, err = s.bookings.Create(ctx, req)
	}
	if err != nil {
		var se *rest.StatusError
		if errors.As(err, &se) {
			return 0, &RejectedError{StatusCode: se.StatusCode, Message: se.Body}
		}
		return 0, err
	}
	return id, nil
}

// Slots derives the journey's time slots under the service's slot policy.
func (s *Service) Slots(j *BookingJourney) ([]TimeSlot, error) {
	return s.slots.SlotsFromJourney(j)
}

// Booking fetches the upstream record.
func (s *Service) Booking(ctx context.Context, id int64) (*Booking, error) {
	return s.bookings.Get(ctx, id)
}

// Amendable applies the amendability policy to a booking.
func (s *Service) Amendable(b *Booking) bool {
	return s.amend.AmendableBooking(b)
}

// StartAmend hydrates a fresh journey from an existing booking. Bookings
// that are missing, cancelled or already started come back as ErrNotFound,
// which ends the amend wizard before it opens.
func (s *Service) StartAmend(ctx context.Context, id int64) (*BookingJourney, error) {
	b, err := s.bookings.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !s.amend.AmendableBooking(b) {
		return nil, fmt.Errorf("booking %d is no longer amendable: %w", id, ErrNotFound)
	}

	j := &BookingJourney{
		BookingID:         &b.ID,
		BookingType:       b.Type,
		Prisoner:          b.Prisoner,
		AgencyCode:        b.AgencyCode,
		HearingCode:       b.HearingCode,
		VideoLinkURL:      b.VideoLinkURL,
		HMCTSNumber:       b.HMCTSNumber,
		GuestPin:          b.GuestPin,
		Officer:           b.Officer,
		Comments:          b.Comments,
		NotesForStaff:     b.NotesForStaff,
		NotesForPrisoners: b.NotesForPrisoners,
	}
	for _, a := range b.Appointments {
		switch a.TypeCode {
		case CodeCourtMain, CodeProbation:
			j.Date = a.Date
			j.MainStart = a.StartTime
			j.MainEnd = a.EndTime
			j.LocationCode = a.LocationCode
		case CodeCourtPre:
			j.PreRequired = true
			j.PreStart = a.StartTime
			j.PreEnd = a.EndTime
			j.PreLocationCode = a.LocationCode
		case CodeCourtPost:
			j.PostRequired = true
			j.PostStart = a.StartTime
			j.PostEnd = a.EndTime
			j.PostLocationCode = a.LocationCode
		}
	}
	return j, nil
}

// Cancel removes a booking, gated on the same amendability rule as edits.
func (s *Service) Cancel(ctx context.Context, id int64) error {
	b, err := s.bookings.Get(ctx, id)
	if err != nil {
		return err
	}
	if !s.amend.AmendableBooking(b) {
		return fmt.Errorf("booking %d is no longer amendable: %w", id, ErrNotFound)
	}
	return s.bookings.Cancel(ctx, id)
}

// ConfirmVisible polls the appointment search index until the just-written
// booking shows up. The index is eventually consistent, so absence within
// the retry budget is a transient condition, not a failure: after the last
// attempt the result is simply nil.
func (s *Service) ConfirmVisible(ctx context.Context, prisonCode string, bookingID int64, date string) (*AppointmentSearchResult, error) {
	for attempt := 0; attempt < s.confirmAttempts; attempt++ {
		if attempt > 0 {
			select {
			case <-time.After(s.confirmBackoff):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}
		results, err := s.search.SearchAppointments(ctx, prisonCode, date)
		if err != nil {
			return nil, err
		}
		for i := range results {
			if results[i].BookingID == bookingID {
				return &results[i], nil
			}
		}
	}
	return nil, nil
}

// validateComplete checks the journey collected everything submission needs,
// reporting the first missing field.
func validateComplete(j *BookingJourney) error {
	required := []struct {
		field string
		value string
	}{
		{"prisoner.prisonCode", j.Prisoner.PrisonCode},
		{"prisoner.number", j.Prisoner.Number},
		{"agencyCode", j.AgencyCode},
		{"hearingOrMeetingTypeCode", j.HearingCode},
		{"date", j.Date},
		{"mainStart", j.MainStart},
		{"mainEnd", j.MainEnd},
		{"locationCode", j.LocationCode},
	}
	for _, r := range required {
		if r.value == "" {
			return &IncompleteJourneyError{Field: r.field}
		}
	}
	if j.PreRequired && j.PreLocationCode == "" {
		return &IncompleteJourneyError{Field: "preLocationCode"}
	}
	if j.PostRequired && j.PostLocationCode == "" {
		return &IncompleteJourneyError{Field: "postLocationCode"}
	}
	if j.VideoLinkURL != "" && j.HMCTSNumber != "" {
		return &FieldError{Field: "videoLinkUrl", Message: "enter either a link or an HMCTS number, not both"}
	}
	if j.BookingType == TypeProbation && j.Officer == nil {
		return &IncompleteJourneyError{Field: "officer"}
	}
	return nil
}

// buildRequest maps the journey and its derived slots onto the booking API
// payload, tagging each slot with the type code of the booking variant.
func buildRequest(j *BookingJourney, slots []TimeSlot) BookingRequest {
	req := BookingRequest{
		BookingType:       j.BookingType,
		Prisoner:          j.Prisoner,
		AgencyCode:        j.AgencyCode,
		HearingCode:       j.HearingCode,
		VideoLinkURL:      j.VideoLinkURL,
		HMCTSNumber:       j.HMCTSNumber,
		GuestPin:          j.GuestPin,
		Officer:           j.Officer,
		Comments:          j.Comments,
		NotesForStaff:     j.NotesForStaff,
		NotesForPrisoners: j.NotesForPrisoners,
	}
	for _, slot := range slots {
		req.Appointments = append(req.Appointments, AppointmentRequest{
			TypeCode:     typeCodeFor(j.BookingType, slot.Type),
			LocationCode: slot.LocationCode,
			Date:         slot.Date,
			StartTime:    slot.StartTime,
			EndTime:      slot.EndTime,
		})
	}
	return req
}

func typeCodeFor(t BookingType, s SlotType) string {
	if t == TypeProbation {
		return CodeProbation
	}
	switch s {
	case SlotPre:
		return CodeCourtPre
	case SlotPost:
		return CodeCourtPost
	default:
		return CodeCourtMain
	}
}
