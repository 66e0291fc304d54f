package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "frontdesk_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "frontdesk_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	ClassSchedulingTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "frontdesk_class_scheduling_total",
			Help: "Class scheduling attempts by result",
		},
		[]string{"result"},
	)

	BookingsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "frontdesk_bookings_total",
			Help: "Booking attempts by outcome",
		},
		[]string{"outcome", "attendee_kind"},
	)

	BookingCancellationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "frontdesk_booking_cancellations_total",
			Help: "Total number of booking cancellations",
		},
		[]string{"promoted"},
	)

	WaitlistPromotionsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "frontdesk_waitlist_promotions_total",
			Help: "Waitlisted attendees moved onto a class roster",
		},
	)

	CheckInsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "frontdesk_check_ins_total",
			Help: "Check-in attempts by person kind and result",
		},
		[]string{"kind", "result"},
	)

	AdvisoriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "frontdesk_check_in_advisories_total",
			Help: "Advisories raised during check-in evaluation",
		},
		[]string{"code"},
	)

	MembershipsExpiredTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "frontdesk_memberships_expired_total",
			Help: "Memberships moved to expired by the sweeper",
		},
	)

	LedgerEntriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "frontdesk_ledger_entries_total",
			Help: "Member ledger entries by kind",
		},
		[]string{"kind"},
	)

	NotificationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "frontdesk_notifications_total",
			Help: "Notifications by type and delivery status",
		},
		[]string{"type", "status"},
	)

	NotificationQueueLength = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "frontdesk_notification_queue_length",
			Help: "Current length of the notification queue",
		},
	)
)

func RecordHTTPRequest(method, path, status string, duration float64) {
	HTTPRequestsTotal.WithLabelValues(method, path, status).Inc()
	HTTPRequestDuration.WithLabelValues(method, path).Observe(duration)
}

func RecordScheduling(result string) {
	ClassSchedulingTotal.WithLabelValues(result).Inc()
}

func RecordBooking(outcome, attendeeKind string) {
	BookingsTotal.WithLabelValues(outcome, attendeeKind).Inc()
}

func RecordBookingCancellation(promoted int) {
	BookingCancellationsTotal.WithLabelValues(strconv.FormatBool(promoted > 0)).Inc()
	WaitlistPromotionsTotal.Add(float64(promoted))
}

func RecordWaitlistPromotions(n int) {
	WaitlistPromotionsTotal.Add(float64(n))
}

func RecordCheckIn(kind, result string) {
	CheckInsTotal.WithLabelValues(kind, result).Inc()
}

func RecordAdvisory(code string) {
	AdvisoriesTotal.WithLabelValues(code).Inc()
}

func RecordMembershipsExpired(n int) {
	MembershipsExpiredTotal.Add(float64(n))
}

func RecordLedgerEntry(kind string) {
	LedgerEntriesTotal.WithLabelValues(kind).Inc()
}

func RecordNotification(notificationType, status string) {
	NotificationsTotal.WithLabelValues(notificationType, status).Inc()
}
