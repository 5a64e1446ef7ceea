package reference

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/ministryofjustice/hmpps-activities-management-sub006/internal/platform/auth"
	"github.com/ministryofjustice/hmpps-activities-management-sub006/internal/platform/middleware"
	"github.com/ministryofjustice/hmpps-activities-management-sub006/internal/platform/rest"
	"github.com/ministryofjustice/hmpps-activities-management-sub006/pkg/pagination"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// RegisterRoutes exposes the catalogues read-only, cached. Reference data
// changes rarely, so responses are held for five minutes.
func (h *Handler) RegisterRoutes(api *echo.Group, cache middleware.CacheStore) {
	g := api.Group("/reference",
		auth.RequireRole(auth.RoleCourtUser, auth.RoleProbationUser),
		middleware.ResponseCache(cache, 5*time.Minute))
	g.GET("/:catalogue", h.ListCatalogue)
}

func (h *Handler) ListCatalogue(c echo.Context) error {
	includeDisabled := c.QueryParam("includeDisabled") == "true"
	items, err := h.svc.List(c.Request().Context(), c.Param("catalogue"), includeDisabled)
	if err != nil {
		if errors.Is(err, rest.ErrUnavailable) {
			return echo.NewHTTPError(http.StatusBadGateway, "reference data unavailable")
		}
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	}

	pg := pagination.FromContext(c)
	page := pagination.Page(items, pg)
	return c.JSON(http.StatusOK, pagination.NewResponse(page, len(items), pg.Limit, pg.Offset))
}
