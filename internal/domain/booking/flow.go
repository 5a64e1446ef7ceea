package booking

import "fmt"

// Mode says whether a wizard edits an existing booking or builds a new one.
type Mode string

const (
	ModeCreate Mode = "create"
	ModeAmend  Mode = "amend"
)

// ParseMode maps a URL segment onto a Mode.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case ModeCreate, ModeAmend:
		return Mode(s), nil
	}
	return "", &FieldError{Field: "mode", Message: fmt.Sprintf("unknown mode %q", s)}
}

// Step names one page of the wizard.
type Step string

const (
	StepHearingDetails   Step = "hearing-details"
	StepLocation         Step = "location"
	StepDateAndTime      Step = "date-and-time"
	StepSchedule         Step = "schedule"
	StepVideoLink        Step = "video-link"
	StepExtraInformation Step = "extra-information"
	StepCheckAnswers     Step = "check-answers"
)

// Flow is one row of the decision table: a booking type and mode resolved to
// its step sequence, success banner and redirect target. All branching on
// type and mode goes through here rather than inline conditionals.
type Flow struct {
	Type  BookingType
	Mode  Mode
	Steps []Step

	SuccessMessage string
	// redirectFormat takes the booking id.
	redirectFormat string
}

// Key is the journey-store key component for this flow, e.g. "court-create".
// At most one journey per owner exists under each key.
func (f Flow) Key() string {
	if f.Type == TypeProbation {
		return "probation-" + string(f.Mode)
	}
	return "court-" + string(f.Mode)
}

// SubmitsPerStep reports whether every step POST submits upstream
// immediately. Amend flows have no final check-answers gate.
func (f Flow) SubmitsPerStep() bool { return f.Mode == ModeAmend }

// Has reports whether the step belongs to this flow.
func (f Flow) Has(step Step) bool {
	for _, s := range f.Steps {
		if s == step {
			return true
		}
	}
	return false
}

// Next returns the step after the given one, or "" at the end of the flow.
func (f Flow) Next(step Step) Step {
	for i, s := range f.Steps {
		if s == step && i+1 < len(f.Steps) {
			return f.Steps[i+1]
		}
	}
	return ""
}

// RedirectFor is where the UI should land after a successful submission.
func (f Flow) RedirectFor(bookingID int64) string {
	return fmt.Sprintf(f.redirectFormat, bookingID)
}

var flows = map[BookingType]map[Mode]Flow{
	TypeCourt: {
		ModeCreate: {
			Type: TypeCourt, Mode: ModeCreate,
			Steps: []Step{
				StepHearingDetails, StepLocation, StepDateAndTime, StepSchedule,
				StepVideoLink, StepExtraInformation, StepCheckAnswers,
			},
			SuccessMessage: "The video link has been booked",
			redirectFormat: "/booking/court/confirmation/%d",
		},
		ModeAmend: {
			Type: TypeCourt, Mode: ModeAmend,
			Steps: []Step{
				StepHearingDetails, StepLocation, StepDateAndTime, StepSchedule,
				StepVideoLink, StepExtraInformation,
			},
			SuccessMessage: "The video link booking has been updated",
			redirectFormat: "/bookings/%d",
		},
	},
	TypeProbation: {
		ModeCreate: {
			Type: TypeProbation, Mode: ModeCreate,
			Steps: []Step{
				StepHearingDetails, StepLocation, StepDateAndTime, StepSchedule,
				StepExtraInformation, StepCheckAnswers,
			},
			SuccessMessage: "The video link has been booked",
			redirectFormat: "/booking/probation/confirmation/%d",
		},
		ModeAmend: {
			Type: TypeProbation, Mode: ModeAmend,
			Steps: []Step{
				StepHearingDetails, StepLocation, StepDateAndTime, StepSchedule,
				StepExtraInformation,
			},
			SuccessMessage: "The video link booking has been updated",
			redirectFormat: "/bookings/%d",
		},
	},
}

// FlowFor resolves the decision-table row for a booking type and mode.
func FlowFor(t BookingType, m Mode) (Flow, error) {
	byMode, ok := flows[t]
	if !ok {
		return Flow{}, &FieldError{Field: "type", Message: fmt.Sprintf("unknown booking type %q", t)}
	}
	flow, ok := byMode[m]
	if !ok {
		return Flow{}, &FieldError{Field: "mode", Message: fmt.Sprintf("unknown mode %q", m)}
	}
	return flow, nil
}
