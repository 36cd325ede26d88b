package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Search outcomes used as the "outcome" label.
const (
	OutcomeFound    = "found"
	OutcomeNotFound = "not_found"
	OutcomeError    = "error"
)

// Recorder collects route search metrics on its own registry.
type Recorder struct {
	registry *prometheus.Registry
	searches *prometheus.CounterVec
	hops     prometheus.Histogram
	visited  prometheus.Histogram
	duration prometheus.Histogram
	pairs    prometheus.Gauge
}

// NewRecorder registers the dexroute collectors plus Go runtime and process
// collectors on a fresh registry.
func NewRecorder() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		searches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "dexroute_route_searches_total",
			Help: "Route searches by outcome",
		}, []string{"outcome"}),
		hops: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "dexroute_route_hops",
			Help:    "Hops in routes that were found",
			Buckets: prometheus.LinearBuckets(0, 1, 8),
		}),
		visited: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "dexroute_route_visited_assets",
			Help:    "Assets expanded per search",
			Buckets: prometheus.ExponentialBuckets(1, 2, 12),
		}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "dexroute_route_search_duration_seconds",
			Help:    "Wall time of a route search including pair loading",
			Buckets: prometheus.DefBuckets,
		}),
		pairs: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "dexroute_pairs_loaded",
			Help: "Pairs in the most recently loaded edge list",
		}),
	}
	r.registry.MustRegister(
		r.searches, r.hops, r.visited, r.duration, r.pairs,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return r
}

// ObserveSearch records one completed search. A nil Recorder is a no-op.
func (r *Recorder) ObserveSearch(outcome string, hops, visited int, elapsed time.Duration) {
	if r == nil {
		return
	}
	r.searches.WithLabelValues(outcome).Inc()
	if outcome == OutcomeFound {
		r.hops.Observe(float64(hops))
	}
	if outcome != OutcomeError {
		r.visited.Observe(float64(visited))
	}
	r.duration.Observe(elapsed.Seconds())
}

// SetPairsLoaded records the size of the latest edge list.
func (r *Recorder) SetPairsLoaded(n int) {
	if r == nil {
		return
	}
	r.pairs.Set(float64(n))
}

// Handler serves the registry in the Prometheus exposition format.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{Registry: r.registry})
}
