package transport

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"marketDash/internal/modules/dashboard/application/usecase"
	"marketDash/internal/modules/dashboard/infrastructure"
	"marketDash/internal/shared/httputil"
)

// DefaultResource is the view the root path redirects to.
const DefaultResource = "orders"

var dashboardErrors = httputil.NewErrorMapper().
	WithExposedMapping(usecase.ErrUnknownResource, http.StatusNotFound, "unknown resource").
	WithExposedMapping(ErrInvalidPayload, http.StatusBadRequest, "invalid payload").
	WithExposedMapping(ErrUnsupportedAction, http.StatusBadRequest, "unsupported action")

// RegisterRoutes mounts the dashboard views. dashboard backs the HTTP views; every websocket
// session builds its own through factory.
func RegisterRoutes(e *echo.Echo, dashboard *usecase.Dashboard, hub *infrastructure.Hub, factory DashboardFactory) {
	e.GET("/", func(c echo.Context) error {
		return c.Redirect(http.StatusFound, "/dashboard/"+DefaultResource)
	})
	e.GET("/dashboard", NewResourcesHandler(dashboard))
	e.GET("/dashboard/:resource", NewStateHandler(dashboard))
	e.POST("/dashboard/:resource/:action", NewCommandHandler(dashboard))
	e.GET("/ws/dashboard", NewWebsocketHandler(hub, factory, DefaultResource))
}

// NewResourcesHandler lists the configured resources in display order.
func NewResourcesHandler(dashboard *usecase.Dashboard) echo.HandlerFunc {
	return func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]any{"resources": dashboard.Resources()})
	}
}

// NewStateHandler renders one store. ?refresh=true fetches before rendering.
func NewStateHandler(dashboard *usecase.Dashboard) echo.HandlerFunc {
	return func(c echo.Context) error {
		store, err := dashboard.Store(c.Param("resource"))
		if err != nil {
			return writeError(c, err)
		}

		refresh, _ := strconv.ParseBool(c.QueryParam("refresh"))
		if refresh {
			return c.JSON(http.StatusOK, store.Fetch(c.Request().Context()))
		}
		return c.JSON(http.StatusOK, store.State())
	}
}

// NewCommandHandler runs a store operation (applyFilters, sort, nextPage...) with the JSON body
// as payload and returns the new state.
func NewCommandHandler(dashboard *usecase.Dashboard) echo.HandlerFunc {
	return func(c echo.Context) error {
		store, err := dashboard.Store(c.Param("resource"))
		if err != nil {
			return writeError(c, err)
		}

		body, err := io.ReadAll(io.LimitReader(c.Request().Body, 1<<16))
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
		}
		if len(body) > 0 && !json.Valid(body) {
			return writeError(c, ErrInvalidPayload)
		}

		state, err := executeStoreAction(c.Request().Context(), store, c.Param("action"), body)
		if err != nil {
			return writeError(c, err)
		}
		return c.JSON(http.StatusOK, state)
	}
}

func writeError(c echo.Context, err error) error {
	info := dashboardErrors.Map(err)
	if info.Status >= http.StatusInternalServerError {
		slog.Error("dashboard request failed", slog.String("path", c.Request().URL.Path), slog.Any("error", err))
	}
	return c.JSON(info.Status, info.Body())
}
