package infrastructure

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"marketDash/internal/modules/forwarder/application/port"
	"marketDash/internal/shared/httputil"
	"marketDash/internal/shared/logging"
)

const maxUpstreamBody = 32 << 20

// UpstreamHTTPClient implements port.Upstream against the reporting API base URL.
type UpstreamHTTPClient struct {
	rest *httputil.RESTClient
}

// NewUpstreamHTTPClient roots requests at baseURL (for example http://host:6969/api). A zero
// timeout leaves the transport default in place.
func NewUpstreamHTTPClient(baseURL string, timeout time.Duration) *UpstreamHTTPClient {
	return &UpstreamHTTPClient{rest: httputil.NewRESTClient(baseURL, timeout, nil)}
}

func (c *UpstreamHTTPClient) Get(ctx context.Context, resourcePath string, query url.Values) (*port.UpstreamResponse, error) {
	segments := strings.Split(strings.Trim(resourcePath, "/"), "/")
	for i, segment := range segments {
		segments[i] = url.PathEscape(segment)
	}

	req, err := c.rest.NewRequest(ctx, http.MethodGet, strings.Join(segments, "/"), nil)
	if err != nil {
		return nil, fmt.Errorf("build upstream request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.URL.RawQuery = query.Encode()

	redacted := logging.RedactURL(req.URL.String(), "key")
	slog.Log(ctx, logging.LevelTrace, "upstream request", slog.String("url", redacted))

	res, err := c.rest.Do(req)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	body, err := io.ReadAll(io.LimitReader(res.Body, maxUpstreamBody))
	if err != nil {
		return nil, fmt.Errorf("read upstream body: %w", err)
	}
	slog.Log(ctx, logging.LevelTrace, "upstream response", slog.Int("status", res.StatusCode), slog.String("url", redacted), slog.Int("bytes", len(body)))
	return &port.UpstreamResponse{Status: res.StatusCode, Body: body}, nil
}
