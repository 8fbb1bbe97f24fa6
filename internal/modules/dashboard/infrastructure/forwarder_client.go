package infrastructure

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"marketDash/internal/modules/dashboard/application/port"
	"marketDash/internal/modules/dashboard/domain"
	"marketDash/internal/shared/httputil"
	"marketDash/internal/shared/logging"
)

// ForwarderEndpoint is the relay route exposed by the forwarder module.
const ForwarderEndpoint = "/api/api"

// ForwarderHTTPClient implements port.RecordFetcher against the forwarder's HTTP contract.
type ForwarderHTTPClient struct {
	rest   *httputil.RESTClient
	apiKey string
}

// NewForwarderHTTPClient builds a client rooted at the forwarder base URL. apiKey is optional:
// when empty the forwarder injects its own configured key.
func NewForwarderHTTPClient(baseURL, apiKey string, timeout time.Duration) *ForwarderHTTPClient {
	return &ForwarderHTTPClient{
		rest:   httputil.NewRESTClient(baseURL, timeout, nil),
		apiKey: strings.TrimSpace(apiKey),
	}
}

func (c *ForwarderHTTPClient) FetchPage(ctx context.Context, resourcePath string, query domain.PageQuery) (*domain.Page, error) {
	path := strings.TrimSpace(resourcePath)
	if path == "" {
		return nil, errors.New("missing resource path")
	}

	req, err := c.rest.NewRequest(ctx, http.MethodGet, ForwarderEndpoint, nil)
	if err != nil {
		slog.Error("forwarder request build failed", slog.String("path", path), slog.Any("error", err))
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	values := query.ToURLValues()
	values.Set("path", path)
	if c.apiKey != "" {
		values.Set("key", c.apiKey)
	}
	req.URL.RawQuery = values.Encode()
	redacted := logging.RedactURL(req.URL.String(), "key")
	slog.Debug("forwarder request", slog.String("url", redacted))

	res, err := c.rest.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		slog.Error("forwarder request error", slog.String("path", path), slog.Any("error", err))
		return nil, fmt.Errorf("%w: %v", port.ErrUpstreamUnavailable, err)
	}
	defer res.Body.Close()
	slog.Debug("forwarder response", slog.Int("status", res.StatusCode), slog.String("url", redacted))

	if res.StatusCode < http.StatusOK || res.StatusCode >= http.StatusMultipleChoices {
		body, _ := io.ReadAll(io.LimitReader(res.Body, 4096))
		slog.Warn("forwarder unexpected status", slog.Int("status", res.StatusCode), slog.String("url", redacted), slog.String("body", strings.TrimSpace(string(body))))
		return nil, &port.UpstreamError{Status: res.StatusCode, Message: decodeErrorMessage(body)}
	}

	return decodePage(res.Body)
}
