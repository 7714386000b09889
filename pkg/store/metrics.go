package store

import "github.com/prometheus/client_golang/prometheus"

var (
	lookupsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "seqstore_lookups_total",
		Help: "Accession lookups by planner strategy (direct vs staged).",
	}, []string{"strategy"})

	rowsDecoded = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "seqstore_rows_decoded_total",
		Help: "Result rows shaped through a codec decoder.",
	})

	stagingSeconds = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "seqstore_staging_populate_seconds",
		Help:    "Time spent populating staging tables for large lookups.",
		Buckets: prometheus.DefBuckets,
	})
)

// RegisterMetrics attaches the store's planner metrics to reg. The counters
// are always maintained; registration only makes them scrapeable.
func RegisterMetrics(reg prometheus.Registerer) error {
	for _, c := range []prometheus.Collector{lookupsTotal, rowsDecoded, stagingSeconds} {
		if err := reg.Register(c); err != nil {
			return err
		}
	}
	return nil
}
