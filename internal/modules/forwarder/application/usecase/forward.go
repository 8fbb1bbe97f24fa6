package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"marketDash/internal/modules/forwarder/application/port"
)

const (
	OutcomeRelayed = "relayed"
	OutcomeFailed  = "failed"
	OutcomeInvalid = "invalid"
)

var ErrMissingPath = errors.New("missing path parameter")

// ForwardedParams lists the query parameters relayed to the reporting API.
var ForwardedParams = []string{"key", "page", "limit", "dateFrom", "dateTo"}

// RequestError wraps any failure of the upstream round trip: transport errors and bodies that
// are not JSON alike.
type RequestError struct {
	Err error
}

func (e *RequestError) Error() string {
	return e.Err.Error()
}

func (e *RequestError) Unwrap() error {
	return e.Err
}

type ForwardInput struct {
	Path   string
	Params url.Values
}

// ForwardOutput is the upstream answer passed back verbatim.
type ForwardOutput struct {
	Status int
	Body   json.RawMessage
}

// ForwardUseCase relays dashboard requests to the reporting API. It keeps no state between calls.
type ForwardUseCase struct {
	upstream port.Upstream
	apiKey   string
	observer port.ForwardObserver
	now      func() time.Time
}

// NewForwardUseCase builds the relay. apiKey is injected when a caller does not pass its own;
// observer may be nil.
func NewForwardUseCase(upstream port.Upstream, apiKey string, observer port.ForwardObserver) *ForwardUseCase {
	return &ForwardUseCase{
		upstream: upstream,
		apiKey:   strings.TrimSpace(apiKey),
		observer: observer,
		now:      time.Now,
	}
}

func (uc *ForwardUseCase) Execute(ctx context.Context, input ForwardInput) (*ForwardOutput, error) {
	started := uc.now()
	path := strings.Trim(strings.TrimSpace(input.Path), "/")
	if path == "" {
		uc.observe("", OutcomeInvalid, 0, started)
		return nil, ErrMissingPath
	}

	query := selectParams(input.Params)
	if query.Get("key") == "" && uc.apiKey != "" {
		query.Set("key", uc.apiKey)
	}

	res, err := uc.upstream.Get(ctx, path, query)
	if err != nil {
		slog.Warn("forward upstream request failed", slog.String("path", path), slog.Any("error", err))
		uc.observe(path, OutcomeFailed, 0, started)
		return nil, &RequestError{Err: err}
	}

	if !json.Valid(res.Body) {
		slog.Warn("forward upstream returned invalid json", slog.String("path", path), slog.Int("status", res.Status), slog.Int("bytes", len(res.Body)))
		uc.observe(path, OutcomeFailed, res.Status, started)
		return nil, &RequestError{Err: fmt.Errorf("invalid JSON in upstream response (status %d)", res.Status)}
	}

	uc.observe(path, OutcomeRelayed, res.Status, started)
	slog.Debug("forward relayed", slog.String("path", path), slog.Int("status", res.Status), slog.Int("bytes", len(res.Body)))
	return &ForwardOutput{Status: res.Status, Body: json.RawMessage(res.Body)}, nil
}

func (uc *ForwardUseCase) observe(path, outcome string, status int, started time.Time) {
	if uc.observer == nil {
		return
	}
	uc.observer.ObserveForward(path, outcome, status, uc.now().Sub(started).Seconds())
}

// selectParams keeps the first non-empty value of every relayed parameter.
func selectParams(params url.Values) url.Values {
	selected := url.Values{}
	for _, name := range ForwardedParams {
		if value := strings.TrimSpace(params.Get(name)); value != "" {
			selected.Set(name, value)
		}
	}
	return selected
}
