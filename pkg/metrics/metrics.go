// Package metrics exports launch argument resolution events as Prometheus
// metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	launchargs "github.com/goliatone/go-launchargs"
)

const metricsNamespace = "launchargs"

// ResolutionMetrics implements launchargs.ResolutionLogger.
type ResolutionMetrics struct {
	// ResolutionsTotal counts launches by platform and status.
	// Labels: platform (android, ios, unknown), status (success, error)
	ResolutionsTotal *prometheus.CounterVec

	// FilteredKeysTotal counts reserved keys dropped before launch.
	// Labels: platform, key
	FilteredKeysTotal *prometheus.CounterVec

	// DeletedKeysTotal counts keys suppressed by an overlay deletion.
	DeletedKeysTotal prometheus.Counter

	// ResolutionDurationSeconds measures resolve-and-launch latency.
	ResolutionDurationSeconds prometheus.Histogram
}

var _ launchargs.ResolutionLogger = (*ResolutionMetrics)(nil)

// New registers the resolution metrics with reg. A nil reg uses the default
// Prometheus registerer.
func New(reg prometheus.Registerer) *ResolutionMetrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)
	return &ResolutionMetrics{
		ResolutionsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "resolutions_total",
			Help:      "Total number of launch argument resolutions by platform and status",
		}, []string{"platform", "status"}),
		FilteredKeysTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "filtered_keys_total",
			Help:      "Total number of reserved launch argument keys dropped",
		}, []string{"platform", "key"}),
		DeletedKeysTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "deleted_keys_total",
			Help:      "Total number of launch argument keys removed by a deletion marker",
		}),
		ResolutionDurationSeconds: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Name:      "resolution_duration_seconds",
			Help:      "Time spent resolving launch arguments and invoking the launch",
			Buckets:   []float64{0.0001, 0.001, 0.01, 0.1, 1, 5},
		}),
	}
}

// LogResolution implements launchargs.ResolutionLogger.
func (m *ResolutionMetrics) LogResolution(event launchargs.ResolutionLogEvent) {
	platform := event.Platform.String()
	status := "success"
	if event.Err != nil {
		status = "error"
	}
	m.ResolutionsTotal.WithLabelValues(platform, status).Inc()
	for _, key := range event.Filtered {
		m.FilteredKeysTotal.WithLabelValues(platform, key).Inc()
	}
	m.DeletedKeysTotal.Add(float64(len(event.Deleted)))
	m.ResolutionDurationSeconds.Observe(event.Duration.Seconds())
}
