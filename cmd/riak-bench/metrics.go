package main

import (
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/tautek/riak"
)

// benchMetrics exports benchmark progress and client stats to Prometheus.
// A nil *benchMetrics records nothing.
type benchMetrics struct {
	registry *prometheus.Registry

	opsTotal *prometheus.CounterVec
	latency  *prometheus.HistogramVec

	exchanges     *prometheus.CounterVec
	streamBatches *prometheus.CounterVec
	errorsTotal   *prometheus.CounterVec
	reconnects    *prometheus.CounterVec
	bytesTotal    *prometheus.CounterVec
}

func newBenchMetrics() *benchMetrics {
	m := &benchMetrics{
		registry: prometheus.NewRegistry(),
		opsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "riak_bench_operations_total",
				Help: "Total number of timed riak calls",
			},
			[]string{"operation", "status"}, // success, failed
		),
		latency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "riak_bench_latency_seconds",
				Help:    "Latency of timed riak calls",
				Buckets: prometheus.ExponentialBuckets(0.0001, 2, 16),
			},
			[]string{"operation"},
		),
		exchanges: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "riak_client_exchanges_total",
				Help: "Completed request/reply exchanges",
			},
			[]string{"operation"},
		),
		streamBatches: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "riak_client_stream_batches_total",
				Help: "Batches delivered by listing streams",
			},
			[]string{"operation"},
		),
		errorsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "riak_client_errors_total",
				Help: "Client errors by kind",
			},
			[]string{"operation", "kind"}, // server, other
		),
		reconnects: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "riak_client_reconnects_total",
				Help: "Successful reconnects",
			},
			[]string{"operation"},
		),
		bytesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "riak_client_bytes_total",
				Help: "Payload bytes by direction",
			},
			[]string{"operation", "direction"}, // sent, received
		),
	}

	m.registry.MustRegister(
		m.opsTotal,
		m.latency,
		m.exchanges,
		m.streamBatches,
		m.errorsTotal,
		m.reconnects,
		m.bytesTotal,
	)
	return m
}

// observe records one timed call.
func (m *benchMetrics) observe(op OperationType, elapsed time.Duration, err error) {
	if m == nil {
		return
	}
	status := "success"
	if err != nil {
		status = "failed"
	}
	m.opsTotal.WithLabelValues(string(op), status).Inc()
	m.latency.WithLabelValues(string(op)).Observe(elapsed.Seconds())
}

// addClientStats folds the final stats of one worker client into the counters.
func (m *benchMetrics) addClientStats(op OperationType, s riak.ClientStats) {
	if m == nil {
		return
	}
	name := string(op)
	m.exchanges.WithLabelValues(name).Add(float64(s.Exchanges))
	m.streamBatches.WithLabelValues(name).Add(float64(s.StreamBatches))
	m.errorsTotal.WithLabelValues(name, "server").Add(float64(s.ServerErrors))
	m.errorsTotal.WithLabelValues(name, "other").Add(float64(s.Errors - s.ServerErrors))
	m.reconnects.WithLabelValues(name).Add(float64(s.Reconnects))
	m.bytesTotal.WithLabelValues(name, "sent").Add(float64(s.BytesSent))
	m.bytesTotal.WithLabelValues(name, "received").Add(float64(s.BytesReceived))
}

// Handler returns an HTTP handler for the /metrics endpoint
func (m *benchMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// serve exposes /metrics on addr until the process exits.
func (m *benchMetrics) serve(addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())

	err := http.ListenAndServe(addr, mux)
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}
