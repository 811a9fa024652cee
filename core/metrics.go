package core

import "github.com/prometheus/client_golang/prometheus"

const prometheusNamespace = "web3watch"

var PollsCounter = prometheus.NewCounter(prometheus.CounterOpts{
	Namespace: prometheusNamespace,
	Name:      "polls_total",
	Help:      "Number of filter-change polls issued",
})

var EventsMatchedCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
	Namespace: prometheusNamespace,
	Name:      "events_matched_total",
	Help:      "Number of logs accepted by a caller matcher",
}, []string{"event"})

var ErrorsCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
	Namespace: prometheusNamespace,
	Name:      "errors_total",
	Help:      "Number of failed remote calls by operation",
}, []string{"op"})

var FilterLeaksCounter = prometheus.NewCounter(prometheus.CounterOpts{
	Namespace: prometheusNamespace,
	Name:      "filter_leaks_total",
	Help:      "Number of filters whose uninstall call failed",
})

var TxSentCounter = prometheus.NewCounter(prometheus.CounterOpts{
	Namespace: prometheusNamespace,
	Name:      "txs_sent_total",
	Help:      "Number of raw transactions submitted",
})

var LastScannedBlockGauge = prometheus.NewGauge(prometheus.GaugeOpts{
	Namespace: prometheusNamespace,
	Name:      "last_scanned_block",
	Help:      "Upper bound of the most recent range scan",
})

// RegisterMetrics registers all collectors on the given registerer.
func RegisterMetrics(r prometheus.Registerer) {
	r.MustRegister(
		PollsCounter,
		EventsMatchedCounter,
		ErrorsCounter,
		FilterLeaksCounter,
		TxSentCounter,
		LastScannedBlockGauge,
	)
}
