// Package metrics expone las métricas Prometheus del libro de stock y del API HTTP.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics agrupa los colectores registrados en un Registry propio (sin estado global).
type Metrics struct {
	registry *prometheus.Registry

	ledgerOperations *prometheus.CounterVec
	ledgerDuration   *prometheus.HistogramVec
	storeUp          prometheus.Gauge

	httpRequests *prometheus.CounterVec
	httpDuration *prometheus.HistogramVec
}

// New crea el registry con colectores de proceso y runtime de Go.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	f := promauto.With(reg)

	return &Metrics{
		registry: reg,
		ledgerOperations: f.NewCounterVec(prometheus.CounterOpts{
			Name: "ledger_operations_total",
			Help: "Operaciones del libro de stock por tipo de movimiento y resultado",
		}, []string{"operation", "kind", "outcome"}),
		ledgerDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "ledger_operation_duration_seconds",
			Help:    "Duración de apply/reverse incluida la transacción",
			Buckets: prometheus.DefBuckets,
		}, []string{"operation"}),
		storeUp: f.NewGauge(prometheus.GaugeOpts{
			Name: "store_available",
			Help: "1 si la base de datos responde al último ping",
		}),
		httpRequests: f.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total de requests HTTP",
		}, []string{"method", "path", "status"}),
		httpDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Latencia de requests HTTP",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "path"}),
	}
}

// Registry para el handler de /metrics.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// ObserveOperation implementa inventory.Recorder.
func (m *Metrics) ObserveOperation(operation, kind, outcome string, elapsed time.Duration) {
	if kind == "" {
		kind = "unknown"
	}
	m.ledgerOperations.WithLabelValues(operation, kind, outcome).Inc()
	m.ledgerDuration.WithLabelValues(operation).Observe(elapsed.Seconds())
}

// SetStoreAvailable refleja el estado del monitor de base de datos.
func (m *Metrics) SetStoreAvailable(up bool) {
	if up {
		m.storeUp.Set(1)
		return
	}
	m.storeUp.Set(0)
}

// ObserveHTTP registra un request. path debe ser la ruta registrada, no la URL con ids.
func (m *Metrics) ObserveHTTP(method, path, status string, elapsed time.Duration) {
	m.httpRequests.WithLabelValues(method, path, status).Inc()
	m.httpDuration.WithLabelValues(method, path).Observe(elapsed.Seconds())
}
