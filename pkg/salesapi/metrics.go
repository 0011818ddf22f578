package salesapi

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// TransportMetrics counts backend calls per endpoint and status.
type TransportMetrics struct {
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// NewTransportMetrics registers the backend call metrics on reg. A nil
// registerer uses the Prometheus default.
func NewTransportMetrics(reg prometheus.Registerer) (*TransportMetrics, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	m := &TransportMetrics{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "sales_backend_requests_total",
			Help: "Sales backend calls by endpoint and status code.",
		}, []string{"endpoint", "code"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "sales_backend_request_duration_seconds",
			Help:    "Sales backend call latency by endpoint.",
			Buckets: prometheus.DefBuckets,
		}, []string{"endpoint"}),
	}
	for _, c := range []prometheus.Collector{m.requests, m.duration} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// InstrumentedTransport wraps an http.RoundTripper with TransportMetrics.
type InstrumentedTransport struct {
	Base    http.RoundTripper
	Metrics *TransportMetrics
}

// RoundTrip records the call outcome. Network failures are labelled "error".
func (t *InstrumentedTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	base := t.Base
	if base == nil {
		base = http.DefaultTransport
	}
	start := time.Now()
	resp, err := base.RoundTrip(req)
	if t.Metrics == nil {
		return resp, err
	}
	endpoint := req.URL.Path
	code := "error"
	if err == nil {
		code = strconv.Itoa(resp.StatusCode)
	}
	t.Metrics.requests.WithLabelValues(endpoint, code).Inc()
	t.Metrics.duration.WithLabelValues(endpoint).Observe(time.Since(start).Seconds())
	return resp, err
}
