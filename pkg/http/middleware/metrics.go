package middleware

import (
	"strconv"
	"sync"
	"time"

	applogger "MarketLens/pkg/logger"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
)

var (
	httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"route", "method", "status"},
	)

	httpRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"route", "method", "status"},
	)

	httpInFlight = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "http_in_flight_requests",
			Help: "Current number of in-flight HTTP requests",
		},
		[]string{"route", "method"},
	)

	regOnce sync.Once
)

// Metrics records request metrics with low cardinality labels. Routes are
// the templated Echo paths, not raw URLs. Slow requests and 5xx responses
// are additionally logged.
func Metrics(l *applogger.Logger, slowThreshold time.Duration) echo.MiddlewareFunc {
	regOnce.Do(func() {
		prometheus.MustRegister(httpRequestsTotal, httpRequestDuration, httpInFlight)
	})
	if slowThreshold <= 0 {
		slowThreshold = time.Second
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			route := c.Path()
			if route == "" {
				route = "unmatched"
			}
			method := c.Request().Method

			httpInFlight.WithLabelValues(route, method).Inc()
			start := time.Now()

			err := next(c)

			dur := time.Since(start)
			status := c.Response().Status
			statusLabel := strconv.Itoa(status)

			httpRequestsTotal.WithLabelValues(route, method, statusLabel).Inc()
			httpRequestDuration.WithLabelValues(route, method, statusLabel).Observe(dur.Seconds())
			httpInFlight.WithLabelValues(route, method).Dec()

			if l != nil {
				if status >= 500 {
					l.Error("http request failed",
						applogger.String("route", route),
						applogger.String("method", method),
						applogger.Int("status", status),
						applogger.Duration("took", dur),
					)
				} else if dur >= slowThreshold {
					l.Warn("http request slow",
						applogger.String("route", route),
						applogger.String("method", method),
						applogger.Int("status", status),
						applogger.Duration("took", dur),
					)
				}
			}

			return err
		}
	}
}
