// Package metrics exposes Prometheus instrumentation for dataset loading,
// view recomputation and the dashboard API.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	RowsLoaded = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "outlets_dataset_rows_loaded_total",
			Help: "Rows kept per dataset at load time",
		},
		[]string{"dataset"},
	)

	RowsDropped = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "outlets_dataset_rows_dropped_total",
			Help: "Rows excluded or degraded per dataset at load time",
		},
		[]string{"dataset", "reason"}, // "unparseable", "no_coordinates", "null_population", "no_name", "geometry"
	)

	UnmatchedJoinKeys = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "outlets_unmatched_join_keys",
			Help: "Outlet-table names with no exact match in another dataset",
		},
		[]string{"join"}, // "population", "district_boundary", "state_boundary"
	)

	ViewDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "outlets_view_duration_seconds",
			Help:    "Time spent recomputing a dashboard view",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"view"},
	)

	SessionsCreated = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "outlets_sessions_created_total",
			Help: "Dashboard sessions created",
		},
	)

	SessionsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "outlets_sessions_active",
			Help: "Dashboard sessions currently held in memory",
		},
	)

	RegionMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "outlets_region_not_found_total",
			Help: "Zoom requests for a region missing from the state boundaries",
		},
	)

	APIRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "outlets_api_requests_total",
			Help: "Dashboard API requests",
		},
		[]string{"method", "route", "status"},
	)

	APIRateLimited = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "outlets_api_rate_limited_total",
			Help: "Requests rejected by the rate limiter",
		},
	)
)

// ObserveView records how long a view took to compute.
func ObserveView(view string, start time.Time) {
	ViewDuration.WithLabelValues(view).Observe(time.Since(start).Seconds())
}
