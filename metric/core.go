package metric

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics contains the service-level metrics of the observation pipeline.
type Metrics struct {
	CodecLookups      *prometheus.CounterVec
	CodecLookupMisses *prometheus.CounterVec

	ObservationsReconstituted prometheus.Counter
	ObservationsMerged        prometheus.Counter
	ObservationsUnfolded      prometheus.Counter
	ReconcileDuration         prometheus.Histogram
	HeapGuardTrips            prometheus.Counter
}

// New creates a Metrics instance with all pipeline metrics.
func New() *Metrics {
	return &Metrics{
		CodecLookups: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "sos",
				Subsystem: "coding",
				Name:      "lookups_total",
				Help:      "Total number of codec registry lookups that resolved an implementation",
			},
			[]string{"kind"},
		),
		CodecLookupMisses: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "sos",
				Subsystem: "coding",
				Name:      "lookup_misses_total",
				Help:      "Total number of codec registry lookups without a matching implementation",
			},
			[]string{"kind"},
		),
		ObservationsReconstituted: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: "sos",
				Subsystem: "reconcile",
				Name:      "observations_total",
				Help:      "Total number of observations reconstituted from persisted rows",
			},
		),
		ObservationsMerged: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: "sos",
				Subsystem: "reconcile",
				Name:      "merged_total",
				Help:      "Total number of observations absorbed into merge groups",
			},
		),
		ObservationsUnfolded: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: "sos",
				Subsystem: "reconcile",
				Name:      "unfolded_total",
				Help:      "Total number of single observations produced by unfolding array values",
			},
		),
		ReconcileDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: "sos",
				Subsystem: "reconcile",
				Name:      "duration_seconds",
				Help:      "Duration of one reconciliation pass in seconds",
				Buckets:   prometheus.DefBuckets,
			},
		),
		HeapGuardTrips: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: "sos",
				Subsystem: "reconcile",
				Name:      "heap_guard_trips_total",
				Help:      "Total number of reconciliation passes aborted by the free-heap guard",
			},
		),
	}
}

// Register registers all metrics with the given registerer.
func (m *Metrics) Register(reg prometheus.Registerer) error {
	collectors := []prometheus.Collector{
		m.CodecLookups,
		m.CodecLookupMisses,
		m.ObservationsReconstituted,
		m.ObservationsMerged,
		m.ObservationsUnfolded,
		m.ReconcileDuration,
		m.HeapGuardTrips,
	}
	for _, c := range collectors {
		if err := reg.Register(c); err != nil {
			return err
		}
	}
	return nil
}

// LookupHit implements coding.Instrumentation.
func (m *Metrics) LookupHit(kind string) {
	m.CodecLookups.WithLabelValues(kind).Inc()
}

// LookupMiss implements coding.Instrumentation.
func (m *Metrics) LookupMiss(kind string) {
	m.CodecLookupMisses.WithLabelValues(kind).Inc()
}
