// Package prom contains the prometheus metrics exported by the task backend.
package prom

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Handler returns a handler that exports metrics.
func Handler() http.Handler {
	return promhttp.Handler()
}

// InstrumentHandler decorates an HTTP handler with in-flight, request count,
// latency and response size metrics labeled with the handler name.
func InstrumentHandler(name string, handler http.Handler) http.Handler {
	labels := prometheus.Labels{"handler": name}

	inFlight := prometheus.NewGauge(prometheus.GaugeOpts{
		Name:        "todocal_requests_in_flight",
		Help:        "Number of requests currently being served by the handler.",
		ConstLabels: labels,
	})
	inFlight = register(inFlight).(prometheus.Gauge)
	handler = promhttp.InstrumentHandlerInFlight(inFlight, handler)

	counter := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name:        "todocal_requests_total",
			Help:        "Total number of requests for the handler.",
			ConstLabels: labels,
		},
		[]string{"code", "method"},
	)
	counter = register(counter).(*prometheus.CounterVec)
	handler = promhttp.InstrumentHandlerCounter(counter, handler)

	duration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:        "todocal_response_duration_seconds",
			Help:        "A histogram of request latencies.",
			Buckets:     prometheus.DefBuckets,
			ConstLabels: labels,
		},
		[]string{},
	)
	duration = register(duration).(*prometheus.HistogramVec)
	handler = promhttp.InstrumentHandlerDuration(duration, handler)

	responseSize := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:        "todocal_response_size_bytes",
			Help:        "A histogram of response sizes.",
			Buckets:     prometheus.ExponentialBuckets(100, 4, 8),
			ConstLabels: labels,
		},
		[]string{},
	)
	responseSize = register(responseSize).(*prometheus.HistogramVec)
	handler = promhttp.InstrumentHandlerResponseSize(responseSize, handler)

	return handler
}

// register registers c, returning the already registered collector when an
// identical one exists. Handlers are built once per test server, so
// double registration is expected.
func register(c prometheus.Collector) prometheus.Collector {
	err := prometheus.Register(c)
	if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
		return are.ExistingCollector
	}
	if err != nil {
		panic(err)
	}
	return c
}
