// Package metrics registers the Prometheus instruments exposed on /metrics.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	MetadataCacheHits = promauto.NewCounter(prometheus.CounterOpts{
		Name: "cinestream_metadata_cache_hits_total",
		Help: "Metadata detail lookups served from the response cache.",
	})

	MetadataCacheMisses = promauto.NewCounter(prometheus.CounterOpts{
		Name: "cinestream_metadata_cache_misses_total",
		Help: "Metadata detail lookups that missed the response cache.",
	})

	MetadataFetches = promauto.NewCounter(prometheus.CounterOpts{
		Name: "cinestream_metadata_fetches_total",
		Help: "Successful upstream metadata detail fetches.",
	})

	AvailabilityRefreshes = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "cinestream_availability_refreshes_total",
		Help: "Availability snapshot refresh attempts by outcome.",
	}, []string{"outcome"})

	AvailabilityChecks = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "cinestream_availability_checks_total",
		Help: "Availability membership checks by verdict.",
	}, []string{"verdict"})

	Resolutions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "cinestream_resolutions_total",
		Help: "Identity resolution outcomes.",
	}, []string{"outcome"})

	PreferenceWrites = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "cinestream_preference_writes_total",
		Help: "Genre preference tracking writes by outcome.",
	}, []string{"outcome"})
)

// Handler returns the HTTP handler serving the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
