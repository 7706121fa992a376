package tripengine

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics are the application counters exposed on /metrics next to the
// per-route HTTP metrics.
type Metrics struct {
	Registry        *prometheus.Registry
	PagesBuilt      prometheus.Counter
	GeocodeSearches *prometheus.CounterVec
	PostsSaved      prometheus.Counter
}

// NewMetrics registers the tripengine counters on a fresh registry.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		Registry: reg,
		PagesBuilt: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "tripengine",
			Name:      "pages_built_total",
			Help:      "Static pages written by the site build.",
		}),
		GeocodeSearches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "tripengine",
			Name:      "geocode_searches_total",
			Help:      "Location picker searches by result.",
		}, []string{"result"}),
		PostsSaved: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "tripengine",
			Name:      "posts_saved_total",
			Help:      "Drafts saved as post files.",
		}),
	}
	reg.MustRegister(m.PagesBuilt, m.GeocodeSearches, m.PostsSaved)
	return m
}
