package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// OrderMetrics counts order lifecycle outcomes and wallet movements.
type OrderMetrics struct {
	placed       *prometheus.CounterVec
	rejected     *prometheus.CounterVec
	cancelled    *prometheus.CounterVec
	walletCents  *prometheus.CounterVec
	walletDrifts prometheus.Gauge
}

// NewOrderMetrics registers the order metrics on reg. A nil registerer
// yields a no-op recorder.
func NewOrderMetrics(reg prometheus.Registerer) *OrderMetrics {
	if reg == nil {
		return &OrderMetrics{}
	}
	m := &OrderMetrics{
		placed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "orders",
			Name:      "placed_total",
			Help:      "Orders placed, by source (cart or direct) and payment method.",
		}, []string{"source", "payment_method"}),
		rejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "orders",
			Name:      "rejected_total",
			Help:      "Order operations rejected, by operation and error code.",
		}, []string{"operation", "code"}),
		cancelled: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "orders",
			Name:      "cancelled_total",
			Help:      "Orders cancelled, by actor.",
		}, []string{"actor"}),
		walletCents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "wallet",
			Name:      "movement_cents_total",
			Help:      "Wallet cents moved, by transaction type.",
		}, []string{"type"}),
		walletDrifts: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "wallet",
			Name:      "drifted_accounts",
			Help:      "Accounts whose balance disagreed with the ledger at the last reconciliation.",
		}),
	}
	reg.MustRegister(m.placed, m.rejected, m.cancelled, m.walletCents, m.walletDrifts)
	return m
}

func (m *OrderMetrics) IncPlaced(source, paymentMethod string) {
	if m == nil || m.placed == nil {
		return
	}
	m.placed.WithLabelValues(normalizeLabel(source), normalizeLabel(paymentMethod)).Inc()
}

func (m *OrderMetrics) IncRejected(operation, code string) {
	if m == nil || m.rejected == nil {
		return
	}
	m.rejected.WithLabelValues(normalizeLabel(operation), normalizeLabel(code)).Inc()
}

func (m *OrderMetrics) IncCancelled(actor string) {
	if m == nil || m.cancelled == nil {
		return
	}
	m.cancelled.WithLabelValues(normalizeLabel(actor)).Inc()
}

func (m *OrderMetrics) AddWalletMovement(txType string, cents int64) {
	if m == nil || m.walletCents == nil || cents <= 0 {
		return
	}
	m.walletCents.WithLabelValues(normalizeLabel(txType)).Add(float64(cents))
}

func (m *OrderMetrics) SetWalletDrift(accounts int) {
	if m == nil || m.walletDrifts == nil {
		return
	}
	m.walletDrifts.Set(float64(accounts))
}
