package httputil

import (
	"context"
	"io"
	"net/http"
	"strings"
	"time"
)

// RESTClient wraps http.Client with base URL handling so adapters only deal with endpoints.
type RESTClient struct {
	baseURL string
	client  *http.Client
}

// NewRESTClient builds a client rooted at baseURL. A zero timeout keeps the transport default,
// which is what the forwarder relies on.
func NewRESTClient(baseURL string, timeout time.Duration, client *http.Client) *RESTClient {
	trimmed := strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if trimmed == "" {
		trimmed = "http://localhost:8080"
	}
	if client == nil {
		client = &http.Client{Timeout: timeout}
	} else if timeout > 0 {
		client.Timeout = timeout
	}
	return &RESTClient{baseURL: trimmed, client: client}
}

// BaseURL returns the normalized base URL.
func (c *RESTClient) BaseURL() string {
	return c.baseURL
}

func (c *RESTClient) NewRequest(ctx context.Context, method, endpoint string, body io.Reader) (*http.Request, error) {
	url := c.baseURL
	if trimmed := strings.TrimLeft(endpoint, "/"); trimmed != "" {
		url += "/" + trimmed
	}
	return http.NewRequestWithContext(ctx, method, url, body)
}

func (c *RESTClient) Do(req *http.Request) (*http.Response, error) {
	return c.client.Do(req)
}
