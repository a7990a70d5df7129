package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	bookingCreated = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "mise",
			Name:      "booking_created_total",
			Help:      "Count of bookings created, by booking type.",
		},
		[]string{"booking_type"},
	)

	bookingConfirmed = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "mise",
			Name:      "booking_confirmed_total",
			Help:      "Count of bookings confirmed after successful payment.",
		},
	)

	bookingCancelled = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "mise",
			Name:      "booking_cancelled_total",
			Help:      "Count of parent bookings cancelled (cascades included).",
		},
	)

	bookingConflict = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "mise",
			Name:      "booking_conflict_total",
			Help:      "Count of booking attempts rejected as unavailable, by phase.",
		},
		[]string{"phase"}, // validation or commit
	)

	overstaySweep = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "mise",
			Name:      "overstay_sweep_total",
			Help:      "Count of overstay sweep runs.",
		},
	)

	extensionRequested = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "mise",
			Name:      "extension_requested_total",
			Help:      "Count of storage extension requests, by outcome.",
		},
		[]string{"outcome"},
	)
)

// Register registers all counters (idempotent).
func Register() {
	once.Do(func() {
		prometheus.MustRegister(
			bookingCreated,
			bookingConfirmed,
			bookingCancelled,
			bookingConflict,
			overstaySweep,
			extensionRequested,
		)
	})
}

func IncBookingCreated(bookingType string) {
	bookingCreated.WithLabelValues(bookingType).Inc()
}

func IncBookingConfirmed() {
	bookingConfirmed.Inc()
}

func IncBookingCancelled() {
	bookingCancelled.Inc()
}

func IncBookingConflict(phase string) {
	bookingConflict.WithLabelValues(phase).Inc()
}

func IncOverstaySweep() {
	overstaySweep.Inc()
}

func IncExtensionRequested(outcome string) {
	extensionRequested.WithLabelValues(outcome).Inc()
}
