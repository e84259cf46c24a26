package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// DomainMetrics counts order, billing and stock side effects.
type DomainMetrics struct {
	orders        *prometheus.CounterVec
	billing       *prometheus.CounterVec
	stockMoves    *prometheus.CounterVec
	eventFailures *prometheus.CounterVec
}

// NewDomainMetrics registers the domain counters on the provided registerer.
func NewDomainMetrics(reg prometheus.Registerer) *DomainMetrics {
	if reg == nil {
		return &DomainMetrics{}
	}
	orders := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "orders_total",
		Help:      "Order writes by operation (created, updated, cancelled).",
	}, []string{"operation"})
	billing := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "billing_transitions_total",
		Help:      "Billing status transitions by target status.",
	}, []string{"status"})
	stockMoves := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "stock_adjustments_total",
		Help:      "Stock adjustments by direction (in, out).",
	}, []string{"direction"})
	eventFailures := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "event_publish_failures_total",
		Help:      "Domain events that could not be published.",
	}, []string{"event"})
	reg.MustRegister(orders, billing, stockMoves, eventFailures)
	return &DomainMetrics{
		orders:        orders,
		billing:       billing,
		stockMoves:    stockMoves,
		eventFailures: eventFailures,
	}
}

func (d *DomainMetrics) IncOrder(operation string) {
	if d == nil || d.orders == nil {
		return
	}
	d.orders.WithLabelValues(normalizeLabel(operation)).Inc()
}

func (d *DomainMetrics) IncBillingTransition(status string) {
	if d == nil || d.billing == nil {
		return
	}
	d.billing.WithLabelValues(normalizeLabel(status)).Inc()
}

// IncStockAdjustment counts one adjustment; positive deltas are "in".
func (d *DomainMetrics) IncStockAdjustment(positive bool) {
	if d == nil || d.stockMoves == nil {
		return
	}
	direction := "out"
	if positive {
		direction = "in"
	}
	d.stockMoves.WithLabelValues(direction).Inc()
}

func (d *DomainMetrics) IncEventFailure(event string) {
	if d == nil || d.eventFailures == nil {
		return
	}
	d.eventFailures.WithLabelValues(normalizeLabel(event)).Inc()
}
