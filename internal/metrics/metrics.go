package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// SubmissionsTotal counts committed clip submissions by outcome.
	SubmissionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "soundjury_submissions_total",
		Help: "Clip submissions by outcome.",
	}, []string{"outcome"})

	// RatingsTotal counts rating mutations by operation.
	RatingsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "soundjury_ratings_total",
		Help: "Rating operations by type.",
	}, []string{"op"})

	// FeedFallbackTotal counts how often the feed degraded to per-clip
	// author lookups.
	FeedFallbackTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "soundjury_feed_fallback_total",
		Help: "Feed loads that used the degraded author-lookup path.",
	})
)

// Handler exposes the Prometheus scrape endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}
