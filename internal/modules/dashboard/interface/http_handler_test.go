package transport

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"marketDash/internal/modules/dashboard/application/usecase"
	"marketDash/internal/modules/dashboard/domain"
	"marketDash/internal/modules/dashboard/infrastructure"
)

type stubFetcher struct{}

func (stubFetcher) FetchPage(_ context.Context, path string, _ domain.PageQuery) (*domain.Page, error) {
	return &domain.Page{
		Data: []domain.Record{
			{"date": "2024-01-01", "barcode": "A", "quantity": "5", "source": path},
			{"date": "2024-01-02", "barcode": "B", "quantity": "12", "source": path},
			{"date": "2024-01-03", "barcode": "C", "quantity": "7", "source": path},
		},
		Total: 3,
	}, nil
}

func fixedClock() time.Time {
	return time.Date(2024, time.January, 2, 9, 0, 0, 0, time.UTC)
}

func newTestDashboard(t *testing.T) *usecase.Dashboard {
	t.Helper()
	dashboard, err := usecase.NewDashboard(domain.DefaultResources(), stubFetcher{}, usecase.WithClock(fixedClock))
	if err != nil {
		t.Fatalf("dashboard init: %v", err)
	}
	return dashboard
}

func newTestServer(t *testing.T) (*echo.Echo, *usecase.Dashboard) {
	t.Helper()
	e := echo.New()
	dashboard := newTestDashboard(t)
	factory := func() (*usecase.Dashboard, error) {
		return usecase.NewDashboard(domain.DefaultResources(), stubFetcher{}, usecase.WithClock(fixedClock))
	}
	RegisterRoutes(e, dashboard, infrastructure.NewHub(), factory)
	return e, dashboard
}

func decodeState(t *testing.T, rec *httptest.ResponseRecorder) domain.State {
	t.Helper()
	var state domain.State
	if err := json.Unmarshal(rec.Body.Bytes(), &state); err != nil {
		t.Fatalf("decode state: %v (%s)", err, rec.Body.String())
	}
	return state
}

func TestRootRedirectsToOrders(t *testing.T) {
	e, _ := newTestServer(t)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	if rec.Code != http.StatusFound {
		t.Fatalf("unexpected status: %d", rec.Code)
	}
	if got := rec.Header().Get("Location"); got != "/dashboard/orders" {
		t.Fatalf("unexpected location: %s", got)
	}
}

func TestStateHandlerRefreshAndAliases(t *testing.T) {
	e, _ := newTestServer(t)

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/dashboard/order?refresh=true", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status: %d %s", rec.Code, rec.Body.String())
	}
	state := decodeState(t, rec)
	if state.Resource != "orders" || state.FetchedCount != 3 || state.FilteredCount != 2 {
		t.Fatalf("unexpected state: %+v", state)
	}

	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/dashboard/orders", nil))
	if cached := decodeState(t, rec); cached.FetchedCount != 3 {
		t.Fatalf("expected cached records, got %+v", cached)
	}
}

func TestStateHandlerUnknownResource(t *testing.T) {
	e, _ := newTestServer(t)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/dashboard/refunds", nil))

	if rec.Code != http.StatusNotFound {
		t.Fatalf("unexpected status: %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "unknown resource") || !strings.Contains(rec.Body.String(), "refunds") {
		t.Fatalf("unexpected body: %s", rec.Body.String())
	}
}

func TestCommandHandlerRunsStoreOperations(t *testing.T) {
	e, dashboard := newTestServer(t)
	store, _ := dashboard.Store("sales")
	store.Fetch(context.Background())

	post := func(path, body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)
		return rec
	}

	rec := post("/dashboard/sales/applyFilters", `{"criteria":{"dateFrom":"2024-01-01","dateTo":"2024-01-03","limit":1}}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status: %d %s", rec.Code, rec.Body.String())
	}
	if state := decodeState(t, rec); state.TotalPages != 3 || state.CurrentPage != 1 {
		t.Fatalf("unexpected paging: %+v", state)
	}

	rec = post("/dashboard/sales/sort", `{"field":"quantity","direction":"desc"}`)
	if state := decodeState(t, rec); state.Records[0]["barcode"] != "B" {
		t.Fatalf("unexpected first record: %v", state.Records)
	}

	rec = post("/dashboard/sales/next_page", ``)
	if state := decodeState(t, rec); state.CurrentPage != 2 || state.Records[0]["barcode"] != "C" {
		t.Fatalf("unexpected page 2: %+v", state)
	}

	rec = post("/dashboard/sales/clearSort", ``)
	if state := decodeState(t, rec); state.Sort.Active() || state.Records[0]["barcode"] != "B" {
		t.Fatalf("unexpected state after clearSort: %+v", state)
	}

	rec = post("/dashboard/sales/sort", `{"direction":"desc"}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for missing sort field, got %d", rec.Code)
	}

	rec = post("/dashboard/sales/explode", ``)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for unknown action, got %d", rec.Code)
	}
}

func TestWebsocketSessionLifecycle(t *testing.T) {
	e, _ := newTestServer(t)
	server := httptest.NewServer(e)
	defer server.Close()

	url := "ws" + strings.TrimPrefix(server.URL, "http") + "/ws/dashboard?resource=stocks"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	type envelope struct {
		Topic    string            `json:"topic"`
		Metadata map[string]string `json:"metadata"`
		Data     json.RawMessage   `json:"data"`
	}
	read := func() envelope {
		t.Helper()
		_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
		var msg envelope
		if err := conn.ReadJSON(&msg); err != nil {
			t.Fatalf("read: %v", err)
		}
		return msg
	}

	connected := read()
	if connected.Topic != domain.TopicSystemConnected || connected.Metadata["sessionId"] == "" {
		t.Fatalf("unexpected connect message: %+v", connected)
	}
	initial := read()
	if initial.Topic != "stocks.state" {
		t.Fatalf("unexpected initial topic: %s", initial.Topic)
	}

	if err := conn.WriteJSON(map[string]any{"action": "fetch"}); err != nil {
		t.Fatalf("write: %v", err)
	}
	fetched := read()
	var state domain.State
	if err := json.Unmarshal(fetched.Data, &state); err != nil {
		t.Fatalf("decode state: %v", err)
	}
	if fetched.Topic != "stocks.state" || state.FetchedCount != 3 || state.FilteredCount != 1 {
		t.Fatalf("unexpected fetched state: %s %+v", fetched.Topic, state)
	}

	if err := conn.WriteJSON(map[string]any{"action": "sort", "resource": "stocks", "payload": map[string]any{}}); err != nil {
		t.Fatalf("write: %v", err)
	}
	if rejected := read(); rejected.Topic != "stocks.error" {
		t.Fatalf("unexpected error topic: %s", rejected.Topic)
	}
}
