package httpapi

import (
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	requestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tripd_http_requests_total",
		Help: "Total HTTP requests by method, route, and status code.",
	}, []string{"method", "route", "status"})

	requestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "tripd_http_request_duration_seconds",
		Help:    "HTTP request duration in seconds by method and route.",
		Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0},
	}, []string{"method", "route"})

	activitiesProcessed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "tripd_extraction_activities_total",
		Help: "Total activities submitted for POI extraction.",
	})

	poisExtracted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "tripd_extraction_pois_total",
		Help: "Total POIs returned by the extraction endpoint.",
	})
)

// metricsMiddleware records request counts and latency. Routes are
// labeled by their registered pattern, not the raw URI, to keep
// cardinality bounded.
func metricsMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)

			route := c.Path()
			if route == "" {
				route = "unmatched"
			}
			method := c.Request().Method
			status := strconv.Itoa(c.Response().Status)

			requestsTotal.WithLabelValues(method, route, status).Inc()
			requestDuration.WithLabelValues(method, route).Observe(time.Since(start).Seconds())

			return err
		}
	}
}

func recordExtraction(activities, pois int) {
	activitiesProcessed.Add(float64(activities))
	poisExtracted.Add(float64(pois))
}
