// Package metrics собирает Prometheus-метрики жизненного цикла назначений.
// Методы Collector безопасно вызывать на nil.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "shiftboard"

type Collector struct {
	registry *prometheus.Registry

	transitions   *prometheus.CounterVec
	applications  *prometheus.CounterVec
	conflicts     *prometheus.CounterVec
	exports       *prometheus.CounterVec
	inconsistency prometheus.Counter
	autoRejected  prometheus.Counter
}

func New() *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "status_transitions_total",
			Help:      "Status transitions committed, by target kind and new status.",
		}, []string{"kind", "to"}),
		applications: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "applications_total",
			Help:      "Application state changes, by resulting status.",
		}, []string{"status"}),
		conflicts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "concurrent_modifications_total",
			Help:      "Conditional updates that lost a race, by operation.",
		}, []string{"operation"}),
		exports: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "payroll_exports_total",
			Help:      "Payroll export attempts, by result code.",
		}, []string{"result"}),
		inconsistency: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "payroll_partial_inconsistencies_total",
			Help:      "Ledger records written without the matching status advance.",
		}),
		autoRejected: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "applications_auto_rejected_total",
			Help:      "Sibling applications rejected by an accept.",
		}),
	}

	c.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		c.transitions, c.applications, c.conflicts, c.exports, c.inconsistency, c.autoRejected,
	)
	return c
}

func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

func (c *Collector) Registry() *prometheus.Registry {
	if c == nil {
		return nil
	}
	return c.registry
}

func (c *Collector) Transition(kind, to string) {
	if c == nil {
		return
	}
	c.transitions.WithLabelValues(kind, to).Inc()
}

func (c *Collector) Application(status string) {
	if c == nil {
		return
	}
	c.applications.WithLabelValues(status).Inc()
}

func (c *Collector) AutoRejected(n int) {
	if c == nil || n <= 0 {
		return
	}
	c.autoRejected.Add(float64(n))
}

func (c *Collector) Conflict(operation string) {
	if c == nil {
		return
	}
	c.conflicts.WithLabelValues(operation).Inc()
}

func (c *Collector) Export(result string) {
	if c == nil {
		return
	}
	c.exports.WithLabelValues(result).Inc()
}

func (c *Collector) PartialInconsistency() {
	if c == nil {
		return
	}
	c.inconsistency.Inc()
}
