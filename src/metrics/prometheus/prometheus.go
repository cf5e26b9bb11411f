package prometheus

import (
	"time"

	"cashlytic-server/src/metrics"

	"github.com/prometheus/client_golang/prometheus"
)

// Collector implements metrics.Collector on top of client_golang.
type Collector struct {
	mutations       *prometheus.CounterVec
	mutationLatency *prometheus.HistogramVec
	rateLimited     prometheus.Counter
	receiptScans    *prometheus.CounterVec
	receiptLatency  prometheus.Histogram
	emails          *prometheus.CounterVec
}

var _ metrics.Collector = (*Collector)(nil)

func NewCollector(namespace string) *Collector {
	return &Collector{
		mutations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "ledger_mutations_total",
				Help:      "Ledger units of work by operation and outcome",
			},
			[]string{"op", "outcome"},
		),
		mutationLatency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "ledger_mutation_duration_seconds",
				Help:      "Latency of ledger units of work",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"op"},
		),
		rateLimited: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "rate_limited_total",
				Help:      "Transaction creations rejected by the rate limiter",
			},
		),
		receiptScans: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "receipt_scans_total",
				Help:      "Receipt scans by outcome",
			},
			[]string{"outcome"},
		),
		receiptLatency: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "receipt_scan_duration_seconds",
				Help:      "Latency of receipt extraction including the model call",
				Buckets:   []float64{0.25, 0.5, 1, 2, 5, 10, 30, 60},
			},
		),
		emails: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "emails_total",
				Help:      "Outgoing emails by outcome",
			},
			[]string{"outcome"},
		),
	}
}

// Register adds every metric to reg.
func (c *Collector) Register(reg prometheus.Registerer) error {
	for _, col := range []prometheus.Collector{
		c.mutations, c.mutationLatency, c.rateLimited, c.receiptScans, c.receiptLatency, c.emails,
	} {
		if err := reg.Register(col); err != nil {
			return err
		}
	}
	return nil
}

func (c *Collector) RecordMutation(op string, success bool, duration time.Duration) {
	c.mutations.WithLabelValues(op, outcome(success)).Inc()
	c.mutationLatency.WithLabelValues(op).Observe(duration.Seconds())
}

func (c *Collector) RecordRateLimited() {
	c.rateLimited.Inc()
}

func (c *Collector) RecordReceiptScan(result string, duration time.Duration) {
	c.receiptScans.WithLabelValues(result).Inc()
	c.receiptLatency.Observe(duration.Seconds())
}

func (c *Collector) RecordEmail(success bool) {
	c.emails.WithLabelValues(outcome(success)).Inc()
}

func outcome(success bool) string {
	if success {
		return "success"
	}
	return "failure"
}
