// Package metrics exposes optional Prometheus instrumentation for the
// notification queue and indication round-trips. Nothing here is
// required for correctness: every exported function is nil-safe, so a
// module embedder that never calls New pays no cost and gets no side
// effects.
package metrics

import "github.com/prometheus/client_golang/prometheus"

// Collectors groups the gauges/histograms this package maintains.
// A nil *Collectors is valid and all its methods are no-ops, so the
// link layer can hold one unconditionally.
type Collectors struct {
	queueDepth       prometheus.Gauge
	indicationRTT    prometheus.Histogram
	notificationsOut prometheus.Counter
}

// New constructs collectors and registers them with reg. Pass nil for reg
// to use the default Prometheus registry.
func New(reg prometheus.Registerer) *Collectors {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	c := &Collectors{
		queueDepth: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "ble_gatt",
			Name:      "notification_queue_depth",
			Help:      "Number of notifications/indications currently queued per connection.",
		}),
		indicationRTT: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "ble_gatt",
			Name:      "indication_confirm_seconds",
			Help:      "Time from sending an indication to receiving its confirmation.",
			Buckets:   prometheus.DefBuckets,
		}),
		notificationsOut: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "ble_gatt",
			Name:      "notifications_sent_total",
			Help:      "Total notifications and indications transmitted.",
		}),
	}
	reg.MustRegister(c.queueDepth, c.indicationRTT, c.notificationsOut)
	return c
}

// SetQueueDepth records the current notification queue depth.
func (c *Collectors) SetQueueDepth(n int) {
	if c == nil {
		return
	}
	c.queueDepth.Set(float64(n))
}

// ObserveIndicationRTT records the confirmation latency of an indication.
func (c *Collectors) ObserveIndicationRTT(seconds float64) {
	if c == nil {
		return
	}
	c.indicationRTT.Observe(seconds)
}

// IncNotificationsSent bumps the outbound notification/indication counter.
func (c *Collectors) IncNotificationsSent() {
	if c == nil {
		return
	}
	c.notificationsOut.Inc()
}
