// Package metrics adapts the store's Observer contract onto Prometheus
// client metrics, registered against a caller-supplied registry rather
// than the global default (spec §6.10's ambient observability layer).
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	raleighsl "github.com/ehrlich-b/raleighsl"
)

// PromObserver implements raleighsl.Observer, recording every
// observation as Prometheus counters and a latency histogram.
type PromObserver struct {
	ops       *prometheus.CounterVec
	errors    *prometheus.CounterVec
	aborts    prometheus.Counter
	latencyNs *prometheus.HistogramVec
}

// NewPromObserver registers its metrics against reg and returns an
// Observer ready to pass to raleighsl.Options.Observer.
func NewPromObserver(reg prometheus.Registerer) *PromObserver {
	o := &PromObserver{
		ops: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "raleighsl_ops_total",
			Help: "Object store operations by kind.",
		}, []string{"kind"}),
		errors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "raleighsl_errors_total",
			Help: "Object store operation errors by kind.",
		}, []string{"kind"}),
		aborts: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "raleighsl_aborts_total",
			Help: "Transaction rollbacks.",
		}),
		latencyNs: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "raleighsl_op_latency_seconds",
			Help:    "Object store operation latency.",
			Buckets: prometheus.ExponentialBuckets(5e-6, 10, 7),
		}, []string{"kind"}),
	}
	reg.MustRegister(o.ops, o.errors, o.aborts, o.latencyNs)
	return o
}

func (o *PromObserver) observe(kind string, latencyNs uint64, success bool) {
	o.ops.WithLabelValues(kind).Inc()
	if !success {
		o.errors.WithLabelValues(kind).Inc()
	}
	o.latencyNs.WithLabelValues(kind).Observe(float64(latencyNs) / 1e9)
}

func (o *PromObserver) ObserveGet(latencyNs uint64, success bool)    { o.observe("get", latencyNs, success) }
func (o *PromObserver) ObserveSet(latencyNs uint64, success bool)    { o.observe("set", latencyNs, success) }
func (o *PromObserver) ObserveCommit(latencyNs uint64, success bool) { o.observe("commit", latencyNs, success) }
func (o *PromObserver) ObserveAbort()                                { o.aborts.Inc() }

var _ raleighsl.Observer = (*PromObserver)(nil)
