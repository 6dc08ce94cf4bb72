package apiclient

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics records request latency by method and status code.
type Metrics struct {
	requests *prometheus.HistogramVec
}

// NewMetrics registers the client collectors with reg.
// A nil reg creates unregistered collectors.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		requests: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "sessionkit",
			Subsystem: "api",
			Name:      "request_duration_seconds",
			Help:      "Duration of auth API requests by method and status code (0 = transport failure).",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "code"}),
	}
	if reg != nil {
		reg.MustRegister(m.requests)
	}
	return m
}

// Requests exposes the histogram for tests and custom registration.
func (m *Metrics) Requests() *prometheus.HistogramVec {
	return m.requests
}

func (m *Metrics) observe(method string, status int, d time.Duration) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(method, strconv.Itoa(status)).Observe(d.Seconds())
}
