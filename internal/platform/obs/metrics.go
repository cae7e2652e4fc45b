package obs

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Outcome labels for resolved intersections.
const (
	OutcomeFound    = "found"
	OutcomeNotFound = "not_found"
	OutcomeFailed   = "failed"
)

// Metrics collects per-run counters. A batch run has no scrape endpoint, so
// the registry is written to a node_exporter textfile when the run ends.
// All methods are no-ops on a nil receiver.
type Metrics struct {
	reg *prometheus.Registry

	Queries       *prometheus.CounterVec
	QueryDuration *prometheus.HistogramVec
	Intersections *prometheus.CounterVec
	NodesFound    prometheus.Histogram
}

func NewMetrics() (*Metrics, error) {
	reg := prometheus.NewRegistry()

	m := &Metrics{
		reg: reg,
		Queries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "xrds2gps",
			Name:      "queries_total",
			Help:      "Overpass queries sent, labeled by kind and result.",
		}, []string{"kind", "result"}),
		QueryDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "xrds2gps",
			Name:      "query_duration_seconds",
			Help:      "Overpass round trip latency in seconds.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
		}, []string{"kind"}),
		Intersections: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "xrds2gps",
			Name:      "intersections_total",
			Help:      "Intersections processed, labeled by outcome.",
		}, []string{"outcome"}),
		NodesFound: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "xrds2gps",
			Name:      "nodes_found",
			Help:      "Nodes returned per resolved intersection.",
			Buckets:   prometheus.LinearBuckets(0, 1, 9),
		}),
	}

	for _, c := range []prometheus.Collector{m.Queries, m.QueryDuration, m.Intersections, m.NodesFound} {
		if err := reg.Register(c); err != nil {
			return nil, fmt.Errorf("register metrics: %w", err)
		}
	}

	return m, nil
}

func (m *Metrics) ObserveQuery(kind string, dur time.Duration, err error) {
	if m == nil {
		return
	}

	result := "ok"
	if err != nil {
		result = "error"
	}
	m.Queries.WithLabelValues(kind, result).Inc()
	m.QueryDuration.WithLabelValues(kind).Observe(dur.Seconds())
}

// ObserveIntersection records the outcome of one intersection; nodes is
// ignored when err is set.
func (m *Metrics) ObserveIntersection(nodes int, err error) {
	if m == nil {
		return
	}

	switch {
	case err != nil:
		m.Intersections.WithLabelValues(OutcomeFailed).Inc()
		return
	case nodes == 0:
		m.Intersections.WithLabelValues(OutcomeNotFound).Inc()
	default:
		m.Intersections.WithLabelValues(OutcomeFound).Inc()
	}
	m.NodesFound.Observe(float64(nodes))
}

func (m *Metrics) Gatherer() prometheus.Gatherer {
	if m == nil {
		return prometheus.NewRegistry()
	}
	return m.reg
}

// WriteTextfile writes every metric to path in the text exposition format.
func (m *Metrics) WriteTextfile(path string) error {
	if m == nil || path == "" {
		return nil
	}
	if err := prometheus.WriteToTextfile(path, m.reg); err != nil {
		return fmt.Errorf("write metrics textfile %q: %w", path, err)
	}
	return nil
}
