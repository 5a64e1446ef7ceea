package schedule

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/ministryofjustice/hmpps-activities-management-sub006/internal/platform/auth"
	"github.com/ministryofjustice/hmpps-activities-management-sub006/internal/platform/rest"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	g := api.Group("", auth.RequireRole(auth.RoleCourtUser, auth.RoleProbationUser))
	g.GET("/schedule", h.GetDaySchedule)
	g.GET("/prisons/:prisonCode/locations", h.ListAppointmentLocations)
}

// GetDaySchedule returns the merged day view for a prisoner and the candidate
// rooms, query-driven: prisonCode, prisonerNumber, date, locations (comma
// separated keys).
func (h *Handler) GetDaySchedule(c echo.Context) error {
	prisonCode := c.QueryParam("prisonCode")
	prisonerNumber := c.QueryParam("prisonerNumber")
	date := c.QueryParam("date")
	if prisonCode == "" || prisonerNumber == "" || date == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "prisonCode, prisonerNumber and date are required")
	}

	var keys []string
	if raw := c.QueryParam("locations"); raw != "" {
		keys = strings.Split(raw, ",")
	}

	day, err := h.svc.DaySchedule(c.Request().Context(), prisonCode, prisonerNumber, date, keys)
	switch {
	case errors.Is(err, rest.ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	case errors.Is(err, rest.ErrUnavailable):
		return echo.NewHTTPError(http.StatusBadGateway, "schedule sources unavailable")
	case err != nil:
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, day)
}

func (h *Handler) ListAppointmentLocations(c echo.Context) error {
	locations, err := h.svc.AppointmentLocations(c.Request().Context(), c.Param("prisonCode"))
	if errors.Is(err, rest.ErrUnavailable) {
		return echo.NewHTTPError(http.StatusBadGateway, "locations service unavailable")
	}
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, locations)
}
