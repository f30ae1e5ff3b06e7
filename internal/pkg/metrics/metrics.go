// Package metrics exposes the application's Prometheus counters.
package metrics

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	TemplateDownloads = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "templateforge",
		Name:      "template_downloads_total",
		Help:      "Full-content template downloads served.",
	})

	CopiesCreated = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "templateforge",
		Name:      "copies_created_total",
		Help:      "Template copies forked for editing.",
	})

	Subscriptions = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "templateforge",
		Name:      "subscriptions_total",
		Help:      "Subscriptions created, by plan.",
	}, []string{"plan"})

	AccessDenied = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "templateforge",
		Name:      "access_denied_total",
		Help:      "Requests refused by entitlement or ownership checks, by reason.",
	}, []string{"reason"})
)

func init() {
	prometheus.MustRegister(TemplateDownloads, CopiesCreated, Subscriptions, AccessDenied)
}

// Handler serves the default registry in the Prometheus text format
func Handler() fiber.Handler {
	return adaptor.HTTPHandler(promhttp.Handler())
}
