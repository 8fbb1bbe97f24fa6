package transport

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"marketDash/internal/modules/dashboard/application/usecase"
	"marketDash/internal/modules/dashboard/domain"
	"marketDash/internal/modules/dashboard/infrastructure"
)

const fetchTimeout = 30 * time.Second

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// DashboardFactory builds the dashboard owned by one websocket session.
type DashboardFactory func() (*usecase.Dashboard, error)

// NewWebsocketHandler exposes /ws/dashboard. Every connection gets its own dashboard so sessions
// never share filter or paging state.
func NewWebsocketHandler(hub *infrastructure.Hub, factory DashboardFactory, defaultResource string) echo.HandlerFunc {
	return func(c echo.Context) error {
		logger := c.Logger()
		peerIP := c.RealIP()

		dashboard, err := factory()
		if err != nil {
			slog.Error("ws handler dashboard init failed", slog.Any("error", err))
			return echo.NewHTTPError(http.StatusInternalServerError, "dashboard unavailable")
		}

		resource := strings.TrimSpace(c.QueryParam("resource"))
		if resource == "" {
			resource = defaultResource
		}
		store, err := dashboard.Store(resource)
		if err != nil {
			dashboard.Close()
			slog.Warn("ws handler unknown resource", slog.String("resource", resource))
			return echo.NewHTTPError(http.StatusNotFound, "resource "+resource+" is not configured")
		}
		resource = store.Resource().Name

		conn, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
		if err != nil {
			dashboard.Close()
			slog.Error("ws handler upgrade failed", slog.String("resource", resource), slog.Any("error", err))
			logger.Errorf("ws upgrade failed resource=%s ip=%s: %v", resource, peerIP, err)
			return err
		}

		sessionID := uuid.NewString()
		client := infrastructure.NewClient(hub, conn, sessionID, resource, 16, func(p *infrastructure.CommandProcessor) {
			registerDashboardCommands(p, hub, dashboard)
		})
		client.AddCloseHook(func(*infrastructure.Client) {
			dashboard.Close()
		})

		topics := buildTopics(dashboard.Resources())
		hub.AttachClient(client, topics)

		go client.WritePump()
		go client.ReadPump()

		client.SendDomainMessage(&domain.Message{
			Topic:    domain.TopicSystemConnected,
			Entity:   domain.SystemEntity,
			Action:   domain.ActionConnected,
			Metadata: domain.Metadata{"sessionId": sessionID},
			Data: map[string]any{
				"resource":      resource,
				"resources":     dashboard.Resources(),
				"allowedTopics": topics,
				"limitOptions":  domain.LimitOptions,
			},
			Timestamp: time.Now().UTC(),
		})
		hub.Broadcast(c.Request().Context(), domain.BuildStateMessage(store.State(), sessionID, time.Now()))

		logger.Infof("ws connected resource=%s session=%s ip=%s", resource, sessionID, peerIP)
		return nil
	}
}

func registerDashboardCommands(p *infrastructure.CommandProcessor, hub *infrastructure.Hub, dashboard *usecase.Dashboard) {
	handler := storeCommandHandler(hub, dashboard)
	for _, action := range storeActions {
		if action == actionFetch {
			p.RegisterAsync(action, fetchTimeout, handler)
			continue
		}
		p.Register(action, handler)
	}
	p.RegisterAsync("refresh", fetchTimeout, handler)
	p.RegisterAsync(actionFetchAll, fetchTimeout, fetchAllHandler(hub, dashboard))
}

func storeCommandHandler(hub *infrastructure.Hub, dashboard *usecase.Dashboard) infrastructure.CommandHandler {
	return func(ctx context.Context, client *infrastructure.Client, cmd infrastructure.Command) {
		resource := strings.TrimSpace(cmd.Resource)
		if resource == "" {
			resource = client.Resource()
		}
		store, err := dashboard.Store(resource)
		if err != nil {
			sendCommandError(ctx, hub, client, "", cmd.Action, err)
			return
		}

		state, err := executeStoreAction(ctx, store, cmd.Action, cmd.Payload)
		if err != nil {
			slog.Warn("ws command failed", slog.String("sessionId", client.SessionID()), slog.String("resource", resource), slog.String("action", cmd.Action), slog.Any("error", err))
			sendCommandError(ctx, hub, client, store.Resource().Name, cmd.Action, err)
			return
		}
		hub.Broadcast(ctx, domain.BuildStateMessage(state, client.SessionID(), time.Now()))
	}
}

func fetchAllHandler(hub *infrastructure.Hub, dashboard *usecase.Dashboard) infrastructure.CommandHandler {
	return func(ctx context.Context, client *infrastructure.Client, _ infrastructure.Command) {
		states, err := dashboard.FetchAll(ctx)
		if err != nil {
			slog.Warn("ws fetchAll interrupted", slog.String("sessionId", client.SessionID()), slog.Any("error", err))
		}
		for _, name := range dashboard.Resources() {
			state, ok := states[name]
			if !ok {
				continue
			}
			hub.Broadcast(ctx, domain.BuildStateMessage(state, client.SessionID(), time.Now()))
		}
	}
}

func sendCommandError(ctx context.Context, hub *infrastructure.Hub, client *infrastructure.Client, resource, action string, err error) {
	reason := "command failed"
	switch {
	case errors.Is(err, usecase.ErrUnknownResource), errors.Is(err, ErrInvalidPayload), errors.Is(err, ErrUnsupportedAction):
		reason = err.Error()
	}
	msg := domain.BuildErrorMessage(resource, reason, time.Now())
	msg.Metadata = domain.Metadata{"sessionId": client.SessionID(), "action": action}
	hub.Broadcast(ctx, msg)
}

// buildTopics lists the per-session topics: state and errors of every resource plus system errors.
func buildTopics(resources []string) []string {
	topics := make([]string, 0, len(resources)*2+1)
	for _, resource := range resources {
		topics = append(topics, domain.StateTopic(resource), domain.ErrorTopic(resource))
	}
	return append(topics, domain.TopicSystemError)
}
