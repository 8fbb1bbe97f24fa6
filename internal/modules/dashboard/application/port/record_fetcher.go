package port

import (
	"context"
	"errors"
	"fmt"

	"marketDash/internal/modules/dashboard/domain"
)

var (
	// ErrUpstreamUnavailable indicates the forwarder could not be reached.
	ErrUpstreamUnavailable = errors.New("forwarder unavailable")
	// ErrMalformedResponse indicates the forwarder answered with a body that is not a record page.
	ErrMalformedResponse = errors.New("malformed forwarder response")
)

// UpstreamError carries a non-2xx answer from the forwarder. Status and Message may be zero
// when the response did not provide them.
type UpstreamError struct {
	Status  int
	Message string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("upstream responded %d: %s", e.Status, e.Message)
}

// RecordFetcher retrieves one page of a resource through the forwarder.
type RecordFetcher interface {
	FetchPage(ctx context.Context, resourcePath string, query domain.PageQuery) (*domain.Page, error)
}
