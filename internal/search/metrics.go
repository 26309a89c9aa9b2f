package search

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// searchesTotal counts executed searches.
	// Labels: outcome (ok, empty, no_mmr, fail)
	searchesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "partyfinder",
		Subsystem: "search",
		Name:      "runs_total",
		Help:      "Total candidate searches by outcome",
	}, []string{"outcome"})

	// searchResults observes how many candidates a search returned.
	searchResults = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "partyfinder",
		Subsystem: "search",
		Name:      "results",
		Help:      "Candidates returned per search",
		Buckets:   []float64{0, 1, 2, 5, 10, 20, 30},
	})

	// searchLatency measures store query time.
	searchLatency = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "partyfinder",
		Subsystem: "search",
		Name:      "latency_seconds",
		Help:      "Candidate query latency in seconds",
		Buckets:   prometheus.DefBuckets,
	})
)
