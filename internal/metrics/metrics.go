package metrics

import (
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "barbershop"

var (
	once sync.Once

	bookingOutcomes = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "booking_create_total",
			Help:      "Booking create attempts by outcome (created, conflict, rejected).",
		},
		[]string{"outcome"},
	)

	bookingTransitions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "booking_transition_total",
			Help:      "Successful booking status transitions by target status.",
		},
		[]string{"status"},
	)

	eventPublishes = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "event_publish_total",
			Help:      "Domain event publish attempts by publisher and result.",
		},
		[]string{"publisher", "result"},
	)

	availabilityLookups = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "availability_lookup_total",
			Help:      "Availability lookups by cache result (hit, miss, bypass).",
		},
		[]string{"cache"},
	)

	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route and status.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "route", "status"},
	)
)

// Register registers metrics with the default registry (idempotent).
func Register() {
	once.Do(func() {
		prometheus.MustRegister(bookingOutcomes, bookingTransitions, eventPublishes, availabilityLookups, httpDuration)
	})
}

func IncBookingOutcome(outcome string) {
	bookingOutcomes.WithLabelValues(outcome).Inc()
}

func IncBookingTransition(status string) {
	bookingTransitions.WithLabelValues(status).Inc()
}

func IncEventPublish(publisher string, ok bool) {
	result := "ok"
	if !ok {
		result = "error"
	}
	eventPublishes.WithLabelValues(publisher, result).Inc()
}

func IncAvailabilityLookup(cache string) {
	availabilityLookups.WithLabelValues(cache).Inc()
}

// GinMiddleware observes request latency per matched route.
func GinMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		httpDuration.
			WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).
			Observe(time.Since(start).Seconds())
	}
}
