// Package metrics holds the prometheus collectors of the reconciliation engine.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "pos"

// Metrics groups the collectors registered on one registry.
type Metrics struct {
	registry *prometheus.Registry

	PaymentsApplied  *prometheus.CounterVec
	Overpayments     *prometheus.CounterVec
	DebtsSettled     *prometheus.CounterVec
	Returns          *prometheus.CounterVec
	StockShortfalls  *prometheus.CounterVec
	SalesRecorded    *prometheus.CounterVec
	OperationLatency *prometheus.HistogramVec
	HTTPRequests     *prometheus.CounterVec
	HTTPLatency      *prometheus.HistogramVec
}

// New creates the collectors on a fresh registry, so tests can build as many as they like.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		registry: reg,
		PaymentsApplied: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "payments_applied_total",
			Help: "Payments applied, by record kind.",
		}, []string{"kind"}),
		Overpayments: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "overpayments_total",
			Help: "Payments that left an overpayment, by record kind and currency.",
		}, []string{"kind", "currency"}),
		DebtsSettled: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "debts_settled_total",
			Help: "Debts that reached a zero remaining balance, by record kind.",
		}, []string{"kind"}),
		Returns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "returns_total",
			Help: "Processed returns, by record kind and scope (whole or item).",
		}, []string{"kind", "scope"}),
		StockShortfalls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "stock_shortfall_units_total",
			Help: "Units that could not be moved in or out of inventory during returns.",
		}, []string{"kind"}),
		SalesRecorded: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "sales_recorded_total",
			Help: "Recorded sales, by currency and whether on credit.",
		}, []string{"currency", "credit"}),
		OperationLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace, Name: "operation_duration_seconds",
			Help:    "Duration of ledger units of work.",
			Buckets: prometheus.DefBuckets,
		}, []string{"operation", "outcome"}),
		HTTPRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "http_requests_total",
			Help: "HTTP requests, by route and status code.",
		}, []string{"method", "route", "status"}),
		HTTPLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace, Name: "http_request_duration_seconds",
			Help:    "HTTP request latency, by route.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.PaymentsApplied, m.Overpayments, m.DebtsSettled, m.Returns,
		m.StockShortfalls, m.SalesRecorded, m.OperationLatency,
		m.HTTPRequests, m.HTTPLatency,
	)
	return m
}

// Handler serves the registry for the /metrics endpoint.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Registry exposes the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// ObserveOperation records the duration of a unit of work started at start.
func (m *Metrics) ObserveOperation(operation string, start time.Time, err error) {
	if m == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.OperationLatency.WithLabelValues(operation, outcome).Observe(time.Since(start).Seconds())
}

// RecordPayment counts one applied payment.
func (m *Metrics) RecordPayment(kind string, overpaidUSD, overpaidIQD, settled bool) {
	if m == nil {
		return
	}
	m.PaymentsApplied.WithLabelValues(kind).Inc()
	if overpaidUSD {
		m.Overpayments.WithLabelValues(kind, "USD").Inc()
	}
	if overpaidIQD {
		m.Overpayments.WithLabelValues(kind, "IQD").Inc()
	}
	if settled {
		m.DebtsSettled.WithLabelValues(kind).Inc()
	}
}

// RecordReturn counts one processed return and the units it could not move.
func (m *Metrics) RecordReturn(kind, scope string, shortfallUnits int) {
	if m == nil {
		return
	}
	m.Returns.WithLabelValues(kind, scope).Inc()
	if shortfallUnits > 0 {
		m.StockShortfalls.WithLabelValues(kind).Add(float64(shortfallUnits))
	}
}

// RecordSale counts one recorded sale.
func (m *Metrics) RecordSale(currency string, credit bool) {
	if m == nil {
		return
	}
	m.SalesRecorded.WithLabelValues(currency, strconv.FormatBool(credit)).Inc()
}
