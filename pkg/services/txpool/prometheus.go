package txpool

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics for monitoring service.
var (
	// mempoolUnsortedTx prometheus metric.
	mempoolUnsortedTx = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Help:      "Mempool unsorted transactions",
			Name:      "mempool_unsorted_tx",
			Namespace: "txrelay",
		},
	)
	// journaledTx prometheus metric.
	journaledTx = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Help:      "Locally submitted transactions kept in the journal",
			Name:      "journaled_tx",
			Namespace: "txrelay",
		},
	)
	// prunedTx prometheus metric.
	prunedTx = prometheus.NewCounter(
		prometheus.CounterOpts{
			Help:      "Transactions removed from the pool after block inclusion",
			Name:      "pruned_tx_total",
			Namespace: "txrelay",
		},
	)
	// localTx prometheus metric.
	localTx = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Help:      "Locally submitted transactions",
			Name:      "local_tx_total",
			Namespace: "txrelay",
		},
		[]string{"result"},
	)
)

func init() {
	prometheus.MustRegister(
		mempoolUnsortedTx,
		journaledTx,
		prunedTx,
		localTx,
	)
}

func updateMempoolMetrics(unsortedTxnLen int) {
	mempoolUnsortedTx.Set(float64(unsortedTxnLen))
}

func updateJournalMetric(n int) {
	journaledTx.Set(float64(n))
}

func addPrunedMetric(n int) {
	prunedTx.Add(float64(n))
}

func addLocalTxMetric(accepted bool) {
	result := "accepted"
	if !accepted {
		result = "rejected"
	}
	localTx.WithLabelValues(result).Inc()
}
