package transport

import (
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"marketDash/internal/modules/forwarder/application/usecase"
	"marketDash/internal/shared/httputil"
)

// Route is the relay endpoint the dashboard stores call.
const Route = "/api/api"

// ErrorEnvelope is the body returned when the relay itself fails.
type ErrorEnvelope struct {
	Error   string `json:"error"`
	Details string `json:"details"`
}

var forwardErrors = httputil.NewErrorMapper().
	WithMapping(usecase.ErrMissingPath, http.StatusBadRequest, "missing path parameter").
	WithMatcher(httputil.MatchType[*usecase.RequestError](), http.StatusInternalServerError, "api request failed", true).
	WithDefault(http.StatusInternalServerError, "api request failed").
	WithDetails()

// RegisterRoutes mounts the relay under /api with permissive CORS.
func RegisterRoutes(e *echo.Echo, forward *usecase.ForwardUseCase) {
	group := e.Group("/api", middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{http.MethodGet, http.MethodOptions},
		AllowHeaders: []string{echo.HeaderContentType},
	}))
	handler := NewForwardHandler(forward)
	group.GET("/api", handler)
	group.OPTIONS("/api", func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})
}

// NewForwardHandler relays GET /api/api?path=<resource>&... to the reporting API and answers with
// the upstream status and JSON body unchanged.
func NewForwardHandler(forward *usecase.ForwardUseCase) echo.HandlerFunc {
	return func(c echo.Context) error {
		params := c.QueryParams()
		out, err := forward.Execute(c.Request().Context(), usecase.ForwardInput{
			Path:   params.Get("path"),
			Params: params,
		})
		if err != nil {
			info := forwardErrors.Map(err)
			slog.Warn("forward request failed", slog.String("path", params.Get("path")), slog.Int("status", info.Status), slog.Any("error", err))
			return c.JSON(info.Status, ErrorEnvelope{Error: info.Message, Details: info.Details})
		}
		return c.JSONBlob(out.Status, out.Body)
	}
}
