package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "storefront"

// Outcome labels.
const (
	OutcomeOK           = "ok"
	OutcomeInsufficient = "insufficient_stock"
	OutcomeCreated      = "created"
	OutcomeReplayed     = "replayed"
	OutcomeUnpaid       = "unpaid"
	OutcomeError        = "error"
)

// Metrics is safe to use as a nil pointer; every method is then a no-op.
type Metrics struct {
	reservations  *prometheus.CounterVec
	finalizations *prometheus.CounterVec
	httpDuration  *prometheus.HistogramVec
	gatherer      prometheus.Gatherer
}

func New(reg *prometheus.Registry) *Metrics {
	m := &Metrics{
		reservations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "stock_reservations_total",
			Help:      "Stock reservation attempts by outcome.",
		}, []string{"outcome"}),
		finalizations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "orders_finalized_total",
			Help:      "Order finalization calls by outcome.",
		}, []string{"outcome"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route", "status"}),
		gatherer: reg,
	}
	reg.MustRegister(m.reservations, m.finalizations, m.httpDuration)
	return m
}

func (m *Metrics) Reservation(outcome string) {
	if m == nil {
		return
	}
	m.reservations.WithLabelValues(outcome).Inc()
}

func (m *Metrics) Finalization(outcome string) {
	if m == nil {
		return
	}
	m.finalizations.WithLabelValues(outcome).Inc()
}

// Middleware records request latency labelled by the route template.
func (m *Metrics) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if m == nil {
				return next(c)
			}
			start := time.Now()
			err := next(c)
			status := c.Response().Status
			if he, ok := err.(*echo.HTTPError); ok {
				status = he.Code
			}
			m.httpDuration.
				WithLabelValues(c.Request().Method, c.Path(), strconv.Itoa(status)).
				Observe(time.Since(start).Seconds())
			return err
		}
	}
}

func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}

func (m *Metrics) ReservationCounter(outcome string) prometheus.Counter {
	return m.reservations.WithLabelValues(outcome)
}

func (m *Metrics) FinalizationCounter(outcome string) prometheus.Counter {
	return m.finalizations.WithLabelValues(outcome)
}
