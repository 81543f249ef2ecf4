package rpc

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
)

type httpMetrics struct {
	requests *prometheus.CounterVec
}

func newHTTPMetrics(reg prometheus.Registerer) *httpMetrics {
	m := &httpMetrics{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "books_http_requests_total",
			Help: "HTTP requests answered by the book endpoint, by route and status code.",
		}, []string{"route", "code"}),
	}
	reg.MustRegister(m.requests)
	return m
}

func (m *httpMetrics) observe(route string, status int) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(route, strconv.Itoa(status)).Inc()
}
