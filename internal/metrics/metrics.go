// Package metrics exposes catbus counters in Prometheus format.
package metrics

import (
	"errors"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/idilsaglam/catbus/internal/registry"
	"github.com/idilsaglam/catbus/internal/wallet"
)

// Outcome label values.
const (
	OutcomeOK       = "ok"
	OutcomeRejected = "rejected"
	OutcomeError    = "error"
)

// Metrics holds the catbus collectors on a private prometheus.Registry.
type Metrics struct {
	reg *prometheus.Registry

	proposals      prometheus.Gauge
	submitted      prometheus.Counter
	upvotes        prometheus.Counter
	walletConnects *prometheus.CounterVec
	orders         *prometheus.CounterVec
}

// New creates and registers the collectors.
func New() *Metrics {
	m := &Metrics{
		reg: prometheus.NewRegistry(),
		proposals: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "catbus_proposals",
			Help: "Number of proposals in the registry",
		}),
		submitted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "catbus_proposals_submitted_total",
			Help: "Proposals accepted by submit",
		}),
		upvotes: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "catbus_upvotes_total",
			Help: "Upvotes applied",
		}),
		walletConnects: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "catbus_wallet_connects_total",
			Help: "Wallet connect attempts by outcome",
		}, []string{"outcome"}),
		orders: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "catbus_orders_total",
			Help: "Runes orders by kind and outcome",
		}, []string{"kind", "outcome"}),
	}
	m.reg.MustRegister(m.proposals, m.submitted, m.upvotes, m.walletConnects, m.orders)
	return m
}

// Track follows r's mutations and returns the unsubscribe func.
func (m *Metrics) Track(r *registry.Registry) func() {
	m.proposals.Set(float64(r.Len()))
	return r.Subscribe(func(ev registry.Event) {
		switch ev.Kind {
		case registry.EventSubmitted:
			m.submitted.Inc()
			m.proposals.Inc()
		case registry.EventUpvoted:
			m.upvotes.Inc()
		}
	})
}

// ObserveConnect records a wallet connect result.
func (m *Metrics) ObserveConnect(err error) {
	m.walletConnects.WithLabelValues(outcome(err)).Inc()
}

// ObserveOrder records an order result.
func (m *Metrics) ObserveOrder(kind wallet.OrderKind, err error) {
	m.orders.WithLabelValues(string(kind), outcome(err)).Inc()
}

// Registry is the underlying prometheus registry.
func (m *Metrics) Registry() *prometheus.Registry { return m.reg }

// Handler serves the exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.reg, promhttp.HandlerOpts{})
}

func outcome(err error) string {
	switch {
	case err == nil:
		return OutcomeOK
	case errors.Is(err, wallet.ErrRejected):
		return OutcomeRejected
	}
	return OutcomeError
}
