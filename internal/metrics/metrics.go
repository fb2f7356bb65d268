package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	GeocodeRequests *prometheus.CounterVec
	SearchAttempts  *prometheus.CounterVec
	SkippedFeatures *prometheus.CounterVec
	BusinessesFound prometheus.Counter
	RequestSeconds  *prometheus.HistogramVec
	ArchiveErrors   *prometheus.CounterVec
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	return &Metrics{
		GeocodeRequests: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "scout_geocode_requests_total",
			Help: "Total number of place lookups by outcome.",
		}, []string{"outcome"}),
		SearchAttempts: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "scout_search_attempts_total",
			Help: "Total number of feature search attempts by outcome.",
		}, []string{"outcome"}),
		SkippedFeatures: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "scout_skipped_features_total",
			Help: "Total number of map features dropped during normalisation.",
		}, []string{"reason"}),
		BusinessesFound: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Name: "scout_businesses_found_total",
			Help: "Total number of business records accepted.",
		}),
		RequestSeconds: promauto.With(reg).NewHistogramVec(prometheus.HistogramOpts{
			Name:    "scout_upstream_request_duration_seconds",
			Help:    "Duration of requests to upstream APIs.",
			Buckets: prometheus.DefBuckets,
		}, []string{"upstream"}),
		ArchiveErrors: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "scout_archive_errors_total",
			Help: "Total number of search archive failures by stage.",
		}, []string{"stage"}),
	}
}

// Flush writes the gathered metrics to path in the text exposition format, for
// pickup by a node_exporter textfile collector.
func Flush(path string, g prometheus.Gatherer) error {
	if err := prometheus.WriteToTextfile(path, g); err != nil {
		return fmt.Errorf("failed to write metrics textfile: %w", err)
	}

	return nil
}
