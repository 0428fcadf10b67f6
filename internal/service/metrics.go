package service

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
)

// Metrics holds the gateway's business counters. A nil *Metrics is valid and
// records nothing, which keeps tests and METRICS_ENABLED=false cheap.
type Metrics struct {
	cobros        *prometheus.CounterVec
	montoVendido  *prometheus.CounterVec
	outbox        *prometheus.CounterVec
	servicios     *prometheus.CounterVec
	catalogoCache *prometheus.CounterVec
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		cobros: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "comercioapp",
			Name:      "cobros_total",
			Help:      "Checkouts by payment method and result.",
		}, []string{"medio_pago", "resultado"}),
		montoVendido: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "comercioapp",
			Name:      "monto_vendido_total",
			Help:      "Sum of registered sale totals.",
		}, []string{"medio_pago"}),
		outbox: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "comercioapp",
			Name:      "movimientos_pendientes_total",
			Help:      "Paired movements by outbox transition.",
		}, []string{"evento"}),
		servicios: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "comercioapp",
			Name:      "servicios_total",
			Help:      "Recargas and bill payments registered.",
		}, []string{"tipo"}),
		catalogoCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "comercioapp",
			Name:      "catalogo_cache_total",
			Help:      "Catalog cache lookups by result.",
		}, []string{"resultado"}),
	}
	reg.MustRegister(m.cobros, m.montoVendido, m.outbox, m.servicios, m.catalogoCache)
	return m
}

// Resultados of a checkout.
const (
	ResultadoOK         = "ok"
	ResultadoPendiente  = "pendiente"
	ResultadoVentaError = "venta_error"
	ResultadoMovError   = "movimiento_error"
)

func (m *Metrics) Cobro(medio, resultado string, total decimal.Decimal) {
	if m == nil {
		return
	}
	m.cobros.WithLabelValues(medio, resultado).Inc()
	if resultado == ResultadoOK || resultado == ResultadoPendiente {
		m.montoVendido.WithLabelValues(medio).Add(total.InexactFloat64())
	}
}

// Outbox events: encolado, enviado, agotado.
func (m *Metrics) Outbox(evento string) {
	if m == nil {
		return
	}
	m.outbox.WithLabelValues(evento).Inc()
}

func (m *Metrics) Servicio(tipo string) {
	if m == nil {
		return
	}
	m.servicios.WithLabelValues(tipo).Inc()
}

func (m *Metrics) CatalogoCache(hit bool) {
	if m == nil {
		return
	}
	r := "miss"
	if hit {
		r = "hit"
	}
	m.catalogoCache.WithLabelValues(r).Inc()
}
