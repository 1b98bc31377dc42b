package blockfeed

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics for monitoring service.
var (
	//blockHeight prometheus metric.
	blockHeight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Help:      "Current index of processed block",
			Name:      "current_block_height",
			Namespace: "txrelay",
		},
	)
	//blockTxs prometheus metric.
	blockTxs = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Help:      "Number of transactions in processed blocks",
			Name:      "block_transactions",
			Namespace: "txrelay",
			Buckets:   []float64{0, 1, 10, 100, 1000, 10000},
		},
	)
)

func init() {
	prometheus.MustRegister(
		blockHeight,
		blockTxs,
	)
}

func updateBlockMetrics(index uint32, txs int) {
	blockHeight.Set(float64(index))
	blockTxs.Observe(float64(txs))
}
