// Package metrics holds the Prometheus collectors for the API, the socket
// layer and the order pipeline, all on a private registry.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Registry holds the application-specific Prometheus collectors.
	Registry = prometheus.NewRegistry()

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "saree",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests handled.",
		},
		[]string{"method", "path", "status"},
	)

	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "saree",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 10),
		},
		[]string{"method", "path"},
	)

	// SocketConnections is the number of registered live sockets.
	SocketConnections = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "saree",
			Subsystem: "realtime",
			Name:      "connections",
			Help:      "Registered real-time connections by role.",
		},
		[]string{"role"},
	)

	// NotificationsPushed counts live pushes by outcome
	// ("delivered" = enqueued on a socket, "offline", "dropped").
	NotificationsPushed = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "saree",
			Subsystem: "realtime",
			Name:      "notifications_total",
			Help:      "Live notification pushes by outcome.",
		},
		[]string{"outcome"},
	)

	OrderTransitions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "saree",
			Subsystem: "orders",
			Name:      "transitions_total",
			Help:      "Accepted order status transitions.",
		},
		[]string{"to", "actor"},
	)

	OfferRedemptions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "saree",
			Subsystem: "offers",
			Name:      "redemptions_total",
			Help:      "Offer redemption attempts by result.",
		},
		[]string{"result"},
	)
)

func init() {
	Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		httpRequests,
		httpDuration,
		SocketConnections,
		NotificationsPushed,
		OrderTransitions,
		OfferRedemptions,
	)
}

// Middleware records request counts and latency per route template.
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		httpRequests.WithLabelValues(c.Request.Method, path, strconv.Itoa(c.Writer.Status())).Inc()
		httpDuration.WithLabelValues(c.Request.Method, path).Observe(time.Since(start).Seconds())
	}
}

// Handler exposes the registry.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}
