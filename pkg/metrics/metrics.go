package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	OrdersCreated = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "cosmarket",
		Name:      "orders_created_total",
		Help:      "Total number of orders created at checkout.",
	})
	OrdersPaid = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "cosmarket",
		Name:      "orders_paid_total",
		Help:      "Total number of successfully settled orders.",
	})
	SettlementsFailed = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "cosmarket",
		Name:      "settlements_failed_total",
		Help:      "Settlement attempts rejected, by reason.",
	}, []string{"reason"})
	DepositsCreated = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "cosmarket",
		Name:      "deposits_created_total",
		Help:      "Total number of deposit transactions initiated.",
	})
	DepositsConfirmed = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "cosmarket",
		Name:      "deposits_confirmed_total",
		Help:      "Total number of deposits confirmed by the gateway.",
	})
)

func init() {
	prometheus.MustRegister(OrdersCreated, OrdersPaid, SettlementsFailed, DepositsCreated, DepositsConfirmed)
}

func Handler() http.Handler {
	return promhttp.Handler()
}
