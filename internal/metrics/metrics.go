// Package metrics exposes daemon counters in Prometheus format.
//
// A nil *Metrics is valid and records nothing, so components can be built
// without a registry in tests.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Result labels.
const (
	ResultSuccess = "success"
	ResultFailure = "failure"
)

// Metrics holds the daemon's collectors.
type Metrics struct {
	reg prometheus.Gatherer

	applies        *prometheus.CounterVec
	downloadErrors prometheus.Counter
	refreshes      *prometheus.CounterVec
	cleanupDeleted prometheus.Counter
	overrides      prometheus.Counter
	lastApplied    prometheus.Gauge
}

// New registers the collectors on reg.
func New(reg *prometheus.Registry) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		reg: reg,
		applies: f.NewCounterVec(prometheus.CounterOpts{
			Name: "daily_wallpaper_applies_total",
			Help: "Wallpaper apply attempts by result",
		}, []string{"result"}),
		downloadErrors: f.NewCounter(prometheus.CounterOpts{
			Name: "daily_wallpaper_download_errors_total",
			Help: "Image downloads that failed after retries",
		}),
		refreshes: f.NewCounterVec(prometheus.CounterOpts{
			Name: "daily_schedule_refreshes_total",
			Help: "Schedule refresh attempts by result",
		}, []string{"result"}),
		cleanupDeleted: f.NewCounter(prometheus.CounterOpts{
			Name: "daily_cache_files_deleted_total",
			Help: "Cached images removed by cleanup",
		}),
		overrides: f.NewCounter(prometheus.CounterOpts{
			Name: "daily_overrides_total",
			Help: "Temporary wallpaper overrides accepted",
		}),
		lastApplied: f.NewGauge(prometheus.GaugeOpts{
			Name: "daily_wallpaper_last_applied_timestamp_seconds",
			Help: "Unix time of the last successful wallpaper change",
		}),
	}
}

func result(ok bool) string {
	if ok {
		return ResultSuccess
	}
	return ResultFailure
}

// Apply records a wallpaper apply attempt.
func (m *Metrics) Apply(ok bool) {
	if m == nil {
		return
	}
	m.applies.WithLabelValues(result(ok)).Inc()
	if ok {
		m.lastApplied.SetToCurrentTime()
	}
}

// DownloadFailed records an image download failure.
func (m *Metrics) DownloadFailed() {
	if m == nil {
		return
	}
	m.downloadErrors.Inc()
}

// Refresh records a schedule refresh attempt.
func (m *Metrics) Refresh(ok bool) {
	if m == nil {
		return
	}
	m.refreshes.WithLabelValues(result(ok)).Inc()
}

// CleanupDeleted adds n removed cache files.
func (m *Metrics) CleanupDeleted(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.cleanupDeleted.Add(float64(n))
}

// Override records an accepted override.
func (m *Metrics) Override() {
	if m == nil {
		return
	}
	m.overrides.Inc()
}

// Handler serves the registry in exposition format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.reg, promhttp.HandlerOpts{EnableOpenMetrics: true})
}
