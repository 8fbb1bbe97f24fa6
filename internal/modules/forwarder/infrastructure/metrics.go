package infrastructure

import (
	"strconv"
	"strings"

	"github.com/prometheus/client_golang/prometheus"

	"marketDash/internal/shared/normalization"
)

// otherPathLabel collects every path that is not a configured resource.
const otherPathLabel = "other"

// Metrics exports forwarder request counts and latencies.
type Metrics struct {
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
	paths    map[string]struct{}
}

// NewMetrics registers the forwarder collectors on reg. Only the given resource paths get their
// own path label; without any, the built-in resources are used.
func NewMetrics(reg prometheus.Registerer, paths ...string) (*Metrics, error) {
	if len(paths) == 0 {
		paths = normalization.KnownResources()
	}
	known := make(map[string]struct{}, len(paths))
	for _, path := range paths {
		if trimmed := strings.Trim(strings.TrimSpace(path), "/"); trimmed != "" {
			known[trimmed] = struct{}{}
		}
	}

	m := &Metrics{
		paths: known,
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "marketdash",
			Subsystem: "forwarder",
			Name:      "requests_total",
			Help:      "Forwarded requests by resource path, outcome and upstream status.",
		}, []string{"path", "outcome", "status"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "marketdash",
			Subsystem: "forwarder",
			Name:      "request_duration_seconds",
			Help:      "Round trip time of forwarded requests.",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
		}, []string{"path"}),
	}
	for _, collector := range []prometheus.Collector{m.requests, m.duration} {
		if err := reg.Register(collector); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *Metrics) ObserveForward(resourcePath, outcome string, status int, seconds float64) {
	code := "none"
	if status > 0 {
		code = strconv.Itoa(status)
	}
	path := m.pathLabel(resourcePath)
	m.requests.WithLabelValues(path, outcome, code).Inc()
	m.duration.WithLabelValues(path).Observe(seconds)
}

func (m *Metrics) pathLabel(resourcePath string) string {
	if _, ok := m.paths[resourcePath]; ok {
		return resourcePath
	}
	return otherPathLabel
}
