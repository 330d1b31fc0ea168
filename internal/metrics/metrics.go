// Package metrics exposes Prometheus collectors for the simulation core.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the collectors updated by the engine. All fields are safe for
// concurrent use.
type Metrics struct {
	TicksTotal     prometheus.Counter
	OrdersExecuted *prometheus.CounterVec // label: kind (market, limit)
	OrdersRejected *prometheus.CounterVec // label: reason
	TriggerCloses  *prometheus.CounterVec // label: trigger (target, stoploss)
	LimitFills     prometheus.Counter
	Capital        prometheus.Gauge
	OpenPositions  prometheus.Gauge
}

// New registers all collectors on reg and returns them.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		TicksTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "niftymoney_ticks_total",
			Help: "Simulation ticks processed.",
		}),
		OrdersExecuted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "niftymoney_orders_executed_total",
			Help: "Order records appended with EXECUTED status.",
		}, []string{"kind"}),
		OrdersRejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "niftymoney_orders_rejected_total",
			Help: "Manual order requests refused by validation or funding.",
		}, []string{"reason"}),
		TriggerCloses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "niftymoney_trigger_closes_total",
			Help: "Positions auto-closed by target or stoploss.",
		}, []string{"trigger"}),
		LimitFills: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "niftymoney_limit_fills_total",
			Help: "Pending limit orders filled by the matcher.",
		}),
		Capital: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "niftymoney_capital",
			Help: "Free cash / margin balance.",
		}),
		OpenPositions: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "niftymoney_open_positions",
			Help: "Number of open positions.",
		}),
	}

	reg.MustRegister(
		m.TicksTotal,
		m.OrdersExecuted,
		m.OrdersRejected,
		m.TriggerCloses,
		m.LimitFills,
		m.Capital,
		m.OpenPositions,
	)
	return m
}
