// Package metrics provides Prometheus metrics for the drive server.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// HTTP request metrics
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "drive_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "drive_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	// Navigation metrics
	navigationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "drive_navigations_total",
			Help: "Total navigation actions by kind",
		},
		[]string{"action"},
	)

	unresolvedFoldersTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "drive_unresolved_folders_total",
			Help: "Listings requested for a folder that does not exist",
		},
	)

	themeTogglesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "drive_theme_toggles_total",
			Help: "Theme toggles by resulting theme",
		},
		[]string{"theme"},
	)

	// Tree and session gauges
	treeNodes = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "drive_tree_nodes",
			Help: "Number of nodes in the loaded tree",
		},
		[]string{"kind"},
	)

	sessionsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "drive_sessions_active",
			Help: "Number of live browser sessions",
		},
	)

	rateLimitHitsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "drive_rate_limit_hits_total",
			Help: "Total rate limit rejections (429s)",
		},
	)
)

// Handler returns the Prometheus metrics HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}

// RecordHTTPRequest records an HTTP request metric.
func RecordHTTPRequest(method, path string, status int, duration time.Duration) {
	httpRequestsTotal.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	httpRequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

// RecordNavigation counts an open or back action.
func RecordNavigation(action string) {
	navigationsTotal.WithLabelValues(action).Inc()
}

func RecordUnresolvedFolder() {
	unresolvedFoldersTotal.Inc()
}

func RecordThemeToggle(theme string) {
	themeTogglesTotal.WithLabelValues(theme).Inc()
}

// SetTreeSize publishes the loaded tree's file and folder counts.
func SetTreeSize(files, folders int) {
	treeNodes.WithLabelValues("file").Set(float64(files))
	treeNodes.WithLabelValues("folder").Set(float64(folders))
}

func SetSessionsActive(count int) {
	sessionsActive.Set(float64(count))
}

func RecordRateLimitHit() {
	rateLimitHitsTotal.Inc()
}
