package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Metrics struct {
	CheckoutTotal *prometheus.CounterVec
	PaymentTotal  *prometheus.CounterVec
}

func New() *Metrics {
	return NewFor(prometheus.DefaultRegisterer)
}

// NewFor registers on an explicit registerer; tests use a fresh registry so
// repeated construction does not collide.
func NewFor(reg prometheus.Registerer) *Metrics {
	checkout := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "lojinha",
		Name:      "checkout_total",
		Help:      "Checkout confirmations by outcome.",
	}, []string{"outcome"})
	payments := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "lojinha",
		Name:      "payment_total",
		Help:      "Payment attempts by method and result.",
	}, []string{"method", "result"})

	reg.MustRegister(checkout, payments)
	return &Metrics{CheckoutTotal: checkout, PaymentTotal: payments}
}

func Handler() http.Handler {
	return promhttp.Handler()
}
