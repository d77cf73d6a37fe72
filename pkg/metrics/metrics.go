// Package metrics exposes the process's Prometheus metrics.
package metrics

import (
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	visitsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "topbestgames_visits_total",
		Help: "Page visits recorded by the tracking middleware.",
	})

	httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "topbestgames_http_requests_total",
		Help: "HTTP requests served, by method and status code.",
	}, []string{"method", "status"})

	ratingRecomputesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "topbestgames_rating_recomputes_total",
		Help: "Game rating recomputations triggered by review mutations.",
	})
)

// RecordVisit counts one tracked page visit.
func RecordVisit() { visitsTotal.Inc() }

// RecordRequest counts one served HTTP request.
func RecordRequest(method string, status int) {
	httpRequestsTotal.WithLabelValues(method, strconv.Itoa(status)).Inc()
}

// RecordRatingRecompute counts one rating recomputation.
func RecordRatingRecompute() { ratingRecomputesTotal.Inc() }

// Handler serves the metrics endpoint.
func Handler() http.Handler { return promhttp.Handler() }
