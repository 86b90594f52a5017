// Package metrics registers the Prometheus instrumentation for the
// refresh/aggregation layer.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

type Metrics struct {
	RefreshDuration *prometheus.HistogramVec
	RefreshTotal    *prometheus.CounterVec
	FetchErrors     *prometheus.CounterVec
	SnapshotRecords *prometheus.GaugeVec
}

// New creates and registers the metric set on the given registerer.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		RefreshDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "courtside",
			Name:      "refresh_duration_seconds",
			Help:      "Time spent on a full re-fetch-and-rejoin pass",
			Buckets:   prometheus.DefBuckets,
		}, []string{"screen"}),
		RefreshTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "courtside",
			Name:      "refresh_total",
			Help:      "Refresh passes by outcome",
		}, []string{"screen", "outcome"}),
		FetchErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "courtside",
			Name:      "fetch_errors_total",
			Help:      "Non-fatal auxiliary fetch failures by resource",
		}, []string{"resource"}),
		SnapshotRecords: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "courtside",
			Name:      "snapshot_records",
			Help:      "Joined records in the last published snapshot",
		}, []string{"screen"}),
	}
	reg.MustRegister(m.RefreshDuration, m.RefreshTotal, m.FetchErrors, m.SnapshotRecords)
	return m
}
