package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	BookingsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{Namespace: "roboride", Name: "bookings_total", Help: "Booking attempts by outcome"},
		[]string{"outcome"},
	)
	EmergencyStopsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{Namespace: "roboride", Name: "emergency_stops_total", Help: "Emergency stop attempts by outcome"},
		[]string{"outcome"},
	)
	GatewayFailuresTotal = promauto.NewCounter(
		prometheus.CounterOpts{Namespace: "roboride", Name: "gateway_failures_total", Help: "Vehicle command failures (network, timeout or rejection)"},
	)
	ConsistencyDriftTotal = promauto.NewCounter(
		prometheus.CounterOpts{Namespace: "roboride", Name: "consistency_drift_total", Help: "Partial writes left between registry and ledger"},
	)
	TelemetryReportsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{Namespace: "roboride", Name: "telemetry_reports_total", Help: "Telemetry reports ingested by source"},
		[]string{"source"},
	)

	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{Namespace: "roboride", Name: "http_requests_total", Help: "Total HTTP requests handled"},
		[]string{"method", "path", "status"},
	)
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "roboride",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency distribution",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)
)
