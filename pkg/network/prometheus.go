package network

import (
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metric used in monitoring service.
var (
	peersConnected = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Help:      "Number of connected peers",
			Name:      "peers_connected",
			Namespace: "txrelay",
		},
	)

	pendingRequests = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Help:      "Number of transactions requested from peers and not yet received",
			Name:      "pending_tx_requests",
			Namespace: "txrelay",
		},
	)

	relayResults = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Help:      "Results of adding transactions received from peers",
			Name:      "p2p_tx_relay_results_total",
			Namespace: "txrelay",
		},
		[]string{"result"},
	)

	txsSent = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Help:      "Number of transactions propagated to peers",
			Name:      "p2p_txs_sent_total",
			Namespace: "txrelay",
		},
		[]string{"mode"},
	)

	droppedMessages = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Help:      "Number of inbound messages dropped without processing",
			Name:      "p2p_dropped_messages_total",
			Namespace: "txrelay",
		},
		[]string{"command", "reason"},
	)

	p2pCmds = make(map[CommandType]prometheus.Histogram)
)

func init() {
	prometheus.MustRegister(
		peersConnected,
		pendingRequests,
		relayResults,
		txsSent,
		droppedMessages,
	)
	for _, cmd := range []CommandType{CMDTX, CMDPooledTxHashes, CMDGetData, CMDNotFound} {
		p2pCmds[cmd] = prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Help:      "P2P " + cmd.String() + " handling time",
				Name:      "p2p_" + strings.ToLower(cmd.String()) + "_time",
				Namespace: "txrelay",
			},
		)
		prometheus.MustRegister(p2pCmds[cmd])
	}
}

func updatePeersConnectedMetric(pConnected int) {
	peersConnected.Set(float64(pConnected))
}

func updatePendingRequestsMetric(n int) {
	pendingRequests.Set(float64(n))
}

func addRelayResultMetric(r RelayReason) {
	relayResults.WithLabelValues(r.String()).Inc()
}

func addTxsSentMetric(mode string, n int) {
	txsSent.WithLabelValues(mode).Add(float64(n))
}

func addDroppedMessageMetric(cmd CommandType, reason string) {
	droppedMessages.WithLabelValues(cmd.String(), reason).Inc()
}

func addCmdTimeMetric(cmd CommandType, t time.Duration) {
	// Only known commands are measured.
	if p2pCmds[cmd] == nil {
		return
	}
	p2pCmds[cmd].Observe(t.Seconds())
}
