package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// DomainMetrics counts account and reservation activity.
type DomainMetrics struct {
	logins       *prometheus.CounterVec
	reservations *prometheus.CounterVec
}

func NewDomainMetrics(reg prometheus.Registerer) *DomainMetrics {
	if reg == nil {
		return &DomainMetrics{}
	}
	logins := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "logins_total",
		Help:      "Login attempts by outcome (registered, authenticated, denied).",
	}, []string{"outcome"})
	reservations := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "reservation_changes_total",
		Help:      "Reservation rows created or deleted, by operation.",
	}, []string{"operation", "change"})
	reg.MustRegister(logins, reservations)
	return &DomainMetrics{logins: logins, reservations: reservations}
}

func (m *DomainMetrics) IncLogin(outcome string) {
	if m == nil || m.logins == nil {
		return
	}
	m.logins.WithLabelValues(normalizeLabel(outcome)).Inc()
}

// AddReservationChanges records how many rows an operation created and deleted.
func (m *DomainMetrics) AddReservationChanges(operation string, created, deleted int) {
	if m == nil || m.reservations == nil {
		return
	}
	if created > 0 {
		m.reservations.WithLabelValues(normalizeLabel(operation), "created").Add(float64(created))
	}
	if deleted > 0 {
		m.reservations.WithLabelValues(normalizeLabel(operation), "deleted").Add(float64(deleted))
	}
}

// HTTPMetrics tracks request latency by route pattern.
type HTTPMetrics struct {
	duration *prometheus.HistogramVec
}

func NewHTTPMetrics(reg prometheus.Registerer) *HTTPMetrics {
	if reg == nil {
		return &HTTPMetrics{}
	}
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "HTTP request latency by method, route and status.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "route", "status"})
	reg.MustRegister(duration)
	return &HTTPMetrics{duration: duration}
}

func (m *HTTPMetrics) Observe(method, route string, status int, elapsed time.Duration) {
	if m == nil || m.duration == nil {
		return
	}
	m.duration.WithLabelValues(method, normalizeLabel(route), strconv.Itoa(status)).Observe(elapsed.Seconds())
}
