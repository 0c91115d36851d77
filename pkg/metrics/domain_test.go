package metrics

import (
	"net/http"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

func TestDomainMetricsCounters(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewDomainMetrics(reg)
	m.IncLogin("denied")
	m.IncLogin("denied")
	m.AddReservationChanges("reconcile", 3, 1)
	m.AddReservationChanges("toggle", 0, 0)

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}
	if got, err := fetchCounterValue(mfs, "erancho_logins_total", "outcome", "denied"); err != nil || got != 2 {
		t.Fatalf("expected 2 denied logins, got %f err=%v", got, err)
	}
	if got, err := fetchCounterValue(mfs, "erancho_reservation_changes_total", "change", "created"); err != nil || got != 3 {
		t.Fatalf("expected 3 created rows, got %f err=%v", got, err)
	}
}

func TestHTTPMetricsObserve(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewHTTPMetrics(reg)
	m.Observe(http.MethodGet, "/api/v1/sectors", http.StatusOK, 20*time.Millisecond)

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}
	if got, err := fetchHistogramSum(mfs, "erancho_http_request_duration_seconds", "route", "/api/v1/sectors"); err != nil || got <= 0 {
		t.Fatalf("expected observed latency, got %f err=%v", got, err)
	}
}

func TestNilMetricsAreSafe(t *testing.T) {
	var d *DomainMetrics
	d.IncLogin("x")
	d.AddReservationChanges("x", 1, 1)
	var h *HTTPMetrics
	h.Observe("GET", "/", 200, time.Millisecond)
	NewCronJobMetrics(nil).IncSuccess("x")
}
