package booking

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/ministryofjustice/hmpps-activities-management-sub006/internal/domain/schedule"
	"github.com/ministryofjustice/hmpps-activities-management-sub006/internal/platform/auth"
)

type Handler struct {
	svc      *Service
	journeys *JourneyStore
	schedule *schedule.Service
}

func NewHandler(svc *Service, journeys *JourneyStore, scheduleSvc *schedule.Service) *Handler {
	return &Handler{svc: svc, journeys: journeys, schedule: scheduleSvc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	wizard := api.Group("/booking", auth.RequireRole(auth.RoleCourtUser, auth.RoleProbationUser))
	wizard.POST("/:type/create/start", h.StartCreate)
	wizard.POST("/:type/amend/:id/start", h.StartAmend)
	wizard.GET("/:type/:mode/:step", h.GetStep)
	wizard.POST("/:type/:mode/:step", h.PostStep)

	bookings := api.Group("/bookings", auth.RequireRole(auth.RoleCourtUser, auth.RoleProbationUser))
	bookings.GET("/:id", h.GetBooking)
	bookings.POST("/:id/cancel", h.CancelBooking)
}

// stepResponse is what every non-terminal step POST returns.
type stepResponse struct {
	Journey *BookingJourney `json:"journey"`
	Next    Step            `json:"next,omitempty"`
}

// submitResponse closes a wizard: terminal in create mode, per-step in amend
// mode.
type submitResponse struct {
	BookingID int64  `json:"bookingId"`
	Message   string `json:"message"`
	Redirect  string `json:"redirect"`
	// Confirmed reports whether the booking was already visible in the
	// appointment search index. Advisory: the mutation has succeeded
	// regardless.
	Confirmed bool `json:"confirmed"`
}

// StartCreate opens a fresh create journey for the given prisoner,
// superseding any stale one of the same flow.
func (h *Handler) StartCreate(c echo.Context) error {
	flow, err := h.resolveFlow(c, ModeCreate)
	if err != nil {
		return err
	}

	var body struct {
		Prisoner Prisoner `json:"prisoner"`
	}
	if err := c.Bind(&body); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if body.Prisoner.PrisonCode == "" || body.Prisoner.Number == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "prisoner.prisonCode and prisoner.number are required")
	}

	j := &BookingJourney{BookingType: flow.Type, Prisoner: body.Prisoner}
	if err := h.journeys.Put(c.Request().Context(), h.owner(c), flow, j); err != nil {
		return mapError(err)
	}
	return c.JSON(http.StatusCreated, stepResponse{Journey: j, Next: flow.Steps[0]})
}

// StartAmend hydrates an amend journey from the existing booking. A booking
// that is missing or no longer amendable is a 404, ending the wizard before
// it opens.
func (h *Handler) StartAmend(c echo.Context) error {
	flow, err := h.resolveFlow(c, ModeAmend)
	if err != nil {
		return err
	}
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid booking id")
	}

	j, err := h.svc.StartAmend(c.Request().Context(), id)
	if err != nil {
		return mapError(err)
	}
	if j.BookingType != flow.Type {
		return echo.NewHTTPError(http.StatusNotFound, "booking not found")
	}
	if err := h.journeys.Put(c.Request().Context(), h.owner(c), flow, j); err != nil {
		return mapError(err)
	}
	return c.JSON(http.StatusCreated, stepResponse{Journey: j, Next: flow.Steps[0]})
}

// GetStep rehydrates a step from the journey so the user sees their prior
// answers when navigating back. The schedule step additionally builds the
// merged day view.
func (h *Handler) GetStep(c echo.Context) error {
	flow, step, err := h.resolveStep(c)
	if err != nil {
		return err
	}

	j, ok, err := h.journeys.Get(c.Request().Context(), h.owner(c), flow)
	if err != nil {
		return mapError(err)
	}
	if !ok {
		return echo.NewHTTPError(http.StatusNotFound, "no "+flow.Key()+" journey in progress")
	}

	if step == StepSchedule {
		return h.scheduleReview(c, j)
	}
	return c.JSON(http.StatusOK, stepResponse{Journey: j})
}

// scheduleReview pairs the journey's derived slots with the prisoner's and
// rooms' merged day schedule. Overlaps are presented, never blocked.
func (h *Handler) scheduleReview(c echo.Context, j *BookingJourney) error {
	slots, err := h.svc.Slots(j)
	if err != nil {
		return mapError(err)
	}
	keys := make([]string, 0, len(slots))
	for _, s := range slots {
		keys = append(keys, s.LocationCode)
	}
	day, err := h.schedule.DaySchedule(c.Request().Context(), j.Prisoner.PrisonCode, j.Prisoner.Number, j.Date, keys)
	if err != nil {
		return mapError(err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"journey":  j,
		"slots":    slots,
		"schedule": day,
	})
}

// PostStep writes one step's fields into the journey. In create mode it
// advances to the next step, submitting only from check-answers; in amend
// mode every step submits upstream immediately and closes the journey.
func (h *Handler) PostStep(c echo.Context) error {
	flow, step, err := h.resolveStep(c)
	if err != nil {
		return err
	}
	if step == StepSchedule {
		return echo.NewHTTPError(http.StatusMethodNotAllowed, "the schedule step is review only")
	}
	ctx := c.Request().Context()
	owner := h.owner(c)

	if step == StepCheckAnswers {
		j, ok, err := h.journeys.Get(ctx, owner, flow)
		if err != nil {
			return mapError(err)
		}
		if !ok {
			return echo.NewHTTPError(http.StatusNotFound, "no "+flow.Key()+" journey in progress")
		}
		return h.submit(c, flow, j)
	}

	apply, err := h.stepMutation(c, flow, step)
	if err != nil {
		return err
	}
	j, err := h.journeys.Merge(ctx, owner, flow, apply)
	if err != nil {
		return mapError(err)
	}

	if flow.SubmitsPerStep() {
		return h.submit(c, flow, j)
	}
	return c.JSON(http.StatusOK, stepResponse{Journey: j, Next: flow.Next(step)})
}

// submit runs the reconciler and, on success, clears the journey exactly
// once and reports where the UI should land.
func (h *Handler) submit(c echo.Context, flow Flow, j *BookingJourney) error {
	ctx := c.Request().Context()

	id, err := h.svc.Submit(ctx, j)
	if err != nil {
		return mapError(err)
	}
	if err := h.journeys.Clear(ctx, h.owner(c), flow); err != nil {
		return mapError(err)
	}

	// Visibility in the search index is eventually consistent and purely
	// advisory once the mutation has succeeded.
	confirmed := false
	if res, err := h.svc.ConfirmVisible(ctx, j.Prisoner.PrisonCode, id, j.Date); err == nil && res != nil {
		confirmed = true
	}

	return c.JSON(http.StatusOK, submitResponse{
		BookingID: id,
		Message:   flow.SuccessMessage,
		Redirect:  flow.RedirectFor(id),
		Confirmed: confirmed,
	})
}

// stepMutation binds and validates one step's form, returning the mutation
// that writes only that step's fields.
func (h *Handler) stepMutation(c echo.Context, flow Flow, step Step) (func(*BookingJourney), error) {
	switch step {
	case StepHearingDetails:
		var form struct {
			AgencyCode  string            `json:"agencyCode"`
			HearingCode string            `json:"hearingOrMeetingTypeCode"`
			Officer     *ProbationOfficer `json:"officer"`
		}
		if err := c.Bind(&form); err != nil {
			return nil, echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		if form.AgencyCode == "" {
			return nil, mapError(&FieldError{Field: "agencyCode", Message: "select an agency"})
		}
		if form.HearingCode == "" {
			return nil, mapError(&FieldError{Field: "hearingOrMeetingTypeCode", Message: "select a type"})
		}
		if flow.Type == TypeProbation {
			if form.Officer == nil {
				return nil, mapError(&FieldError{Field: "officer", Message: "enter the officer's details or mark them as not yet known"})
			}
			if !form.Officer.NotYetKnown && form.Officer.FullName == "" {
				return nil, mapError(&FieldError{Field: "officer.fullName", Message: "enter the officer's full name"})
			}
		}
		return func(j *BookingJourney) {
			j.AgencyCode = form.AgencyCode
			j.HearingCode = form.HearingCode
			if flow.Type == TypeProbation {
				j.Officer = form.Officer
			}
		}, nil

	case StepLocation:
		var form struct {
			LocationCode string `json:"locationCode"`
		}
		if err := c.Bind(&form); err != nil {
			return nil, echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		if form.LocationCode == "" {
			return nil, mapError(&FieldError{Field: "locationCode", Message: "select a room"})
		}
		return func(j *BookingJourney) { j.LocationCode = form.LocationCode }, nil

	case StepDateAndTime:
		var form struct {
			Date             string `json:"date"`
			MainStart        string `json:"mainStart"`
			MainEnd          string `json:"mainEnd"`
			PreRequired      bool   `json:"preRequired"`
			PreStart         string `json:"preStart"`
			PreEnd           string `json:"preEnd"`
			PreLocationCode  string `json:"preLocationCode"`
			PostRequired     bool   `json:"postRequired"`
			PostStart        string `json:"postStart"`
			PostEnd          string `json:"postEnd"`
			PostLocationCode string `json:"postLocationCode"`
		}
		if err := c.Bind(&form); err != nil {
			return nil, echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		// Contradictory times fail here, before anything reaches upstream.
		if _, err := ComputeSlots(SlotInput{
			Date: form.Date, MainStart: form.MainStart, MainEnd: form.MainEnd,
			PreRequired: form.PreRequired, PreStart: form.PreStart, PreEnd: form.PreEnd,
			PostRequired: form.PostRequired, PostStart: form.PostStart, PostEnd: form.PostEnd,
		}); err != nil {
			return nil, mapError(err)
		}
		return func(j *BookingJourney) {
			j.Date = form.Date
			j.MainStart = form.MainStart
			j.MainEnd = form.MainEnd
			j.PreRequired = form.PreRequired
			j.PreStart = form.PreStart
			j.PreEnd = form.PreEnd
			j.PreLocationCode = form.PreLocationCode
			j.PostRequired = form.PostRequired
			j.PostStart = form.PostStart
			j.PostEnd = form.PostEnd
			j.PostLocationCode = form.PostLocationCode
		}, nil

	case StepVideoLink:
		var form struct {
			VideoLinkURL string `json:"videoLinkUrl"`
			HMCTSNumber  string `json:"hmctsNumber"`
			GuestPin     string `json:"guestPin"`
		}
		if err := c.Bind(&form); err != nil {
			return nil, echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		if form.VideoLinkURL != "" && form.HMCTSNumber != "" {
			return nil, mapError(&FieldError{Field: "videoLinkUrl", Message: "enter either a link or an HMCTS number, not both"})
		}
		if form.GuestPin != "" && form.HMCTSNumber == "" {
			return nil, mapError(&FieldError{Field: "guestPin", Message: "a guest pin needs an HMCTS number"})
		}
		return func(j *BookingJourney) {
			j.VideoLinkURL = form.VideoLinkURL
			j.HMCTSNumber = form.HMCTSNumber
			j.GuestPin = form.GuestPin
		}, nil

	case StepExtraInformation:
		var form struct {
			Comments          string `json:"comments"`
			NotesForStaff     string `json:"notesForStaff"`
			NotesForPrisoners string `json:"notesForPrisoners"`
		}
		if err := c.Bind(&form); err != nil {
			return nil, echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		return func(j *BookingJourney) {
			j.Comments = form.Comments
			j.NotesForStaff = form.NotesForStaff
			j.NotesForPrisoners = form.NotesForPrisoners
		}, nil
	}
	return nil, echo.NewHTTPError(http.StatusNotFound, "unknown step")
}

// GetBooking serves the booking-details page behind amend and cancel.
func (h *Handler) GetBooking(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid booking id")
	}
	b, err := h.svc.Booking(c.Request().Context(), id)
	if err != nil {
		return mapError(err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"booking":   b,
		"amendable": h.svc.Amendable(b),
	})
}

func (h *Handler) CancelBooking(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid booking id")
	}
	if err := h.svc.Cancel(c.Request().Context(), id); err != nil {
		return mapError(err)
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "The video link booking has been cancelled"})
}

func (h *Handler) owner(c echo.Context) string {
	return auth.UsernameFromContext(c.Request().Context())
}

// resolveFlow checks the URL's booking type against the caller's roles and
// looks the flow up in the decision table.
func (h *Handler) resolveFlow(c echo.Context, mode Mode) (Flow, error) {
	t, err := ParseBookingType(c.Param("type"))
	if err != nil {
		return Flow{}, mapError(err)
	}
	if !roleAllows(c, t) {
		return Flow{}, echo.NewHTTPError(http.StatusForbidden, "insufficient role for this booking type")
	}
	flow, err := FlowFor(t, mode)
	if err != nil {
		return Flow{}, mapError(err)
	}
	return flow, nil
}

func (h *Handler) resolveStep(c echo.Context) (Flow, Step, error) {
	mode, err := ParseMode(c.Param("mode"))
	if err != nil {
		return Flow{}, "", mapError(err)
	}
	flow, err := h.resolveFlow(c, mode)
	if err != nil {
		return Flow{}, "", err
	}
	step := Step(c.Param("step"))
	if !flow.Has(step) {
		return Flow{}, "", echo.NewHTTPError(http.StatusNotFound, "unknown step for this flow")
	}
	return flow, step, nil
}

func roleAllows(c echo.Context, t BookingType) bool {
	need := auth.RoleCourtUser
	if t == TypeProbation {
		need = auth.RoleProbationUser
	}
	for _, r := range auth.RolesFromContext(c.Request().Context()) {
		if r == need || r == auth.RoleAdmin {
			return true
		}
	}
	return false
}

// mapError translates the domain error taxonomy onto HTTP statuses.
// Validation-class errors stay 4xx with the field named; only upstream
// failures become gateway errors.
func mapError(err error) error {
	var fe *FieldError
	var ij *IncompleteJourneyError
	var rej *RejectedError
	switch {
	case errors.As(err, &fe):
		return echo.NewHTTPError(http.StatusBadRequest, map[string]string{"field": fe.Field, "message": fe.Message})
	case errors.As(err, &ij):
		return echo.NewHTTPError(http.StatusBadRequest, map[string]string{"field": ij.Field, "message": "this field is required before submission"})
	case errors.As(err, &rej):
		return echo.NewHTTPError(http.StatusConflict, rej.Message)
	case errors.Is(err, ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, "booking not found")
	case errors.Is(err, ErrUpstreamUnavailable):
		return echo.NewHTTPError(http.StatusBadGateway, "upstream services unavailable")
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
}
