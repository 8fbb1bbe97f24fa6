package httputil

import (
	"context"
	"errors"
	"net/http"
)

// HTTPErrorInfo is the response a handler writes for a failed request.
type HTTPErrorInfo struct {
	Status  int
	Message string
	// Details is the wrapped error text, set only when the mapping exposes it.
	Details string
}

// Body renders the {error, details} envelope; details is omitted when empty.
func (i HTTPErrorInfo) Body() map[string]string {
	body := map[string]string{"error": i.Message}
	if i.Details != "" {
		body["details"] = i.Details
	}
	return body
}

type errorMapping struct {
	match   func(error) bool
	status  int
	message string
	expose  bool
}

// ErrorMapper turns errors into HTTP responses so every handler of a module answers the same
// way. Mappings are checked in registration order.
type ErrorMapper struct {
	mappings       []errorMapping
	defaultStatus  int
	defaultMessage string
	exposeAll      bool
}

func NewErrorMapper() *ErrorMapper {
	return &ErrorMapper{
		defaultStatus:  http.StatusInternalServerError,
		defaultMessage: "internal server error",
	}
}

// WithMapping maps errors wrapping target.
func (m *ErrorMapper) WithMapping(target error, status int, message string) *ErrorMapper {
	return m.WithMatcher(func(err error) bool { return errors.Is(err, target) }, status, message, false)
}

// WithExposedMapping is WithMapping that also reports the error text as details.
func (m *ErrorMapper) WithExposedMapping(target error, status int, message string) *ErrorMapper {
	return m.WithMatcher(func(err error) bool { return errors.Is(err, target) }, status, message, true)
}

// WithMatcher maps every error match accepts.
func (m *ErrorMapper) WithMatcher(match func(error) bool, status int, message string, expose bool) *ErrorMapper {
	m.mappings = append(m.mappings, errorMapping{match: match, status: status, message: message, expose: expose})
	return m
}

// WithDefault sets the response for unmatched errors.
func (m *ErrorMapper) WithDefault(status int, message string) *ErrorMapper {
	m.defaultStatus = status
	m.defaultMessage = message
	return m
}

// WithDetails reports the error text as details for every mapped error.
func (m *ErrorMapper) WithDetails() *ErrorMapper {
	m.exposeAll = true
	return m
}

// MatchType matches errors that errors.As can convert to T.
func MatchType[T error]() func(error) bool {
	return func(err error) bool {
		var target T
		return errors.As(err, &target)
	}
}

// Map converts err into a response. Registered mappings win over the context checks so a
// wrapped sentinel keeps its status even when the cause was a deadline.
func (m *ErrorMapper) Map(err error) HTTPErrorInfo {
	if err == nil {
		return HTTPErrorInfo{Status: http.StatusOK}
	}

	info := HTTPErrorInfo{Status: m.defaultStatus, Message: m.defaultMessage}
	expose := m.exposeAll
	matched := false
	for _, mapping := range m.mappings {
		if mapping.match(err) {
			info = HTTPErrorInfo{Status: mapping.status, Message: mapping.message}
			expose = expose || mapping.expose
			matched = true
			break
		}
	}
	if !matched {
		switch {
		case errors.Is(err, context.DeadlineExceeded):
			info = HTTPErrorInfo{Status: http.StatusGatewayTimeout, Message: "request timeout"}
		case errors.Is(err, context.Canceled):
			info = HTTPErrorInfo{Status: http.StatusServiceUnavailable, Message: "request cancelled"}
		}
	}
	if expose {
		info.Details = err.Error()
	}
	return info
}
