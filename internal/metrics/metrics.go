package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "driveshare",
			Name:      "http_requests_total",
			Help:      "HTTP requests by endpoint.",
		},
		[]string{"endpoint"},
	)

	geocodeResults = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "driveshare",
			Name:      "geocode_results_total",
			Help:      "Geocode lookups by outcome (resolved, no_match, unavailable).",
		},
		[]string{"outcome"},
	)

	bookingTransitions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "driveshare",
			Name:      "booking_transitions_total",
			Help:      "Booking status transitions by target status.",
		},
		[]string{"status"},
	)
)

// Register registers Prometheus metrics. Safe to call multiple times.
func Register() {
	once.Do(func() {
		prometheus.MustRegister(httpRequests, geocodeResults, bookingTransitions)
	})
}

// IncHTTP increments the counter for an endpoint label.
func IncHTTP(endpoint string) {
	httpRequests.WithLabelValues(endpoint).Inc()
}

// IncGeocode increments the geocode outcome counter.
func IncGeocode(outcome string) {
	geocodeResults.WithLabelValues(outcome).Inc()
}

// IncBookingTransition increments the transition counter for a status.
func IncBookingTransition(status string) {
	bookingTransitions.WithLabelValues(status).Inc()
}
