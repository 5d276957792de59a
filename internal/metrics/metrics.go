// Package metrics holds the Prometheus collectors for payment reconciliation.
package metrics

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Notifications counts webhook deliveries by gateway status and result.
	Notifications = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "kantin",
			Subsystem: "payment",
			Name:      "notifications_total",
			Help:      "Payment gateway notifications received.",
		},
		[]string{"transaction_status", "result"}, // result: "ok" | error kind
	)

	// StatusUpdates counts order status writes by new status and source.
	StatusUpdates = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "kantin",
			Subsystem: "orders",
			Name:      "status_updates_total",
			Help:      "Order status updates applied.",
		},
		[]string{"status", "source"}, // source: "webhook" | "browser" | "admin"
	)

	// Tokens counts payment token requests by result.
	Tokens = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "kantin",
			Subsystem: "payment",
			Name:      "tokens_total",
			Help:      "Payment token requests sent to the gateway.",
		},
		[]string{"kind", "result"}, // kind: "single" | "batch"
	)
)

// Registry is the registry served on /metrics.
var Registry = prometheus.NewRegistry()

func init() {
	Registry.MustRegister(collectors.NewGoCollector())
	Registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	Registry.MustRegister(Notifications, StatusUpdates, Tokens)
}

// Handler serves the registry in the Prometheus text format.
func Handler() fiber.Handler {
	return adaptor.HTTPHandler(promhttp.HandlerFor(Registry, promhttp.HandlerOpts{}))
}
