package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTPRequestsTotal counts HTTP requests by method, path and status code.
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fieldops_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	// HTTPRequestDuration tracks request latency by method and path.
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "fieldops_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	// InvoicesIssued counts successfully issued inventory invoices.
	InvoicesIssued = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "fieldops_invoices_issued_total",
			Help: "Total inventory invoices issued",
		},
	)

	// WasteReported counts waste entries recorded. Deliberately unlabeled:
	// item names are operator input and would blow up series cardinality.
	WasteReported = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "fieldops_waste_entries_total",
			Help: "Total waste entries recorded",
		},
	)

	// DrumUsageRecorded counts cable drum usage events.
	DrumUsageRecorded = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "fieldops_drum_usage_total",
			Help: "Total drum usage events recorded",
		},
	)

	// PaymentsComputed counts worker payment computations, by payment type.
	PaymentsComputed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fieldops_payments_computed_total",
			Help: "Total worker payments computed",
		},
		[]string{"payment_type"},
	)
)
