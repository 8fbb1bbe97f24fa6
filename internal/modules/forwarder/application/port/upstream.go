package port

import (
	"context"
	"net/url"
)

// UpstreamResponse is the raw answer of the reporting API.
type UpstreamResponse struct {
	Status int
	Body   []byte
}

// Upstream issues GET requests against the reporting API.
type Upstream interface {
	Get(ctx context.Context, resourcePath string, query url.Values) (*UpstreamResponse, error)
}

// ForwardObserver records the outcome of every forwarded request.
type ForwardObserver interface {
	ObserveForward(resourcePath, outcome string, status int, seconds float64)
}
