package middleware

import (
	"net/http"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
)

var (
	RequestCount = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storepay_requests_total",
			Help: "Total number of requests processed by the storepay API.",
		},
		[]string{"path", "status"},
	)

	ErrorCount = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storepay_requests_errors_total",
			Help: "Total number of error responses served by the storepay API.",
		},
		[]string{"path", "status"},
	)
)

// PrometheusInit registers the API request metrics.
func PrometheusInit() {
	prometheus.MustRegister(RequestCount)
	prometheus.MustRegister(ErrorCount)
}

// TrackMetrics counts every request and error by path and status text.
func TrackMetrics() fiber.Handler {
	return func(c *fiber.Ctx) error {
		path := c.Path()
		err := c.Next()
		status := c.Response().StatusCode()

		RequestCount.WithLabelValues(path, http.StatusText(status)).Inc()

		if status >= 400 {
			ErrorCount.WithLabelValues(path, http.StatusText(status)).Inc()
		}

		return err
	}
}
