package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRecordHTTPRequest(t *testing.T) {
	HTTPRequestsTotal.Reset()
	HTTPRequestDuration.Reset()

	RecordHTTPRequest("POST", "/classes/:classID/bookings", "201", 0.05)
	RecordHTTPRequest("POST", "/classes/:classID/bookings", "201", 0.07)
	RecordHTTPRequest("POST", "/classes/:classID/bookings", "409", 0.01)

	assert.Equal(t, float64(2), testutil.ToFloat64(HTTPRequestsTotal.WithLabelValues("POST", "/classes/:classID/bookings", "201")))
	assert.Equal(t, float64(1), testutil.ToFloat64(HTTPRequestsTotal.WithLabelValues("POST", "/classes/:classID/bookings", "409")))
	assert.Equal(t, 1, testutil.CollectAndCount(HTTPRequestDuration))
}

func TestRecordScheduling(t *testing.T) {
	ClassSchedulingTotal.Reset()

	RecordScheduling("scheduled")
	RecordScheduling("room_conflict")
	RecordScheduling("room_conflict")

	assert.Equal(t, float64(1), testutil.ToFloat64(ClassSchedulingTotal.WithLabelValues("scheduled")))
	assert.Equal(t, float64(2), testutil.ToFloat64(ClassSchedulingTotal.WithLabelValues("room_conflict")))
}

func TestRecordBooking(t *testing.T) {
	BookingsTotal.Reset()

	RecordBooking("confirmed", "member")
	RecordBooking("waitlisted", "guest")

	assert.Equal(t, float64(1), testutil.ToFloat64(BookingsTotal.WithLabelValues("confirmed", "member")))
	assert.Equal(t, float64(1), testutil.ToFloat64(BookingsTotal.WithLabelValues("waitlisted", "guest")))
}

func TestRecordBookingCancellationCountsPromotions(t *testing.T) {
	BookingCancellationsTotal.Reset()

	promotions := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "frontdesk_waitlist_promotions_total_test",
		Help: "Waitlisted attendees moved onto a class roster",
	})
	old := WaitlistPromotionsTotal
	WaitlistPromotionsTotal = promotions
	defer func() { WaitlistPromotionsTotal = old }()

	RecordBookingCancellation(0)
	RecordBookingCancellation(1)
	RecordWaitlistPromotions(2)

	assert.Equal(t, float64(1), testutil.ToFloat64(BookingCancellationsTotal.WithLabelValues("false")))
	assert.Equal(t, float64(1), testutil.ToFloat64(BookingCancellationsTotal.WithLabelValues("true")))
	assert.Equal(t, float64(3), testutil.ToFloat64(promotions))
}

func TestRecordCheckInAndAdvisories(t *testing.T) {
	CheckInsTotal.Reset()
	AdvisoriesTotal.Reset()

	RecordCheckIn("member", "eligible")
	RecordCheckIn("member", "blocked")
	RecordAdvisory("birthday")
	RecordAdvisory("birthday")

	assert.Equal(t, float64(1), testutil.ToFloat64(CheckInsTotal.WithLabelValues("member", "eligible")))
	assert.Equal(t, float64(1), testutil.ToFloat64(CheckInsTotal.WithLabelValues("member", "blocked")))
	assert.Equal(t, float64(2), testutil.ToFloat64(AdvisoriesTotal.WithLabelValues("birthday")))
}

func TestRecordMembershipsExpired(t *testing.T) {
	counter := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "frontdesk_memberships_expired_total_test",
		Help: "Memberships moved to expired by the sweeper",
	})
	old := MembershipsExpiredTotal
	MembershipsExpiredTotal = counter
	defer func() { MembershipsExpiredTotal = old }()

	RecordMembershipsExpired(3)
	RecordMembershipsExpired(0)

	assert.Equal(t, float64(3), testutil.ToFloat64(counter))
}

func TestRecordNotificationAndQueue(t *testing.T) {
	NotificationsTotal.Reset()
	LedgerEntriesTotal.Reset()

	RecordNotification("booking_confirmed", "queued")
	RecordNotification("booking_confirmed", "failed")
	RecordLedgerEntry("charge")
	NotificationQueueLength.Set(4)

	assert.Equal(t, float64(1), testutil.ToFloat64(NotificationsTotal.WithLabelValues("booking_confirmed", "queued")))
	assert.Equal(t, float64(1), testutil.ToFloat64(NotificationsTotal.WithLabelValues("booking_confirmed", "failed")))
	assert.Equal(t, float64(1), testutil.ToFloat64(LedgerEntriesTotal.WithLabelValues("charge")))
	assert.Equal(t, float64(4), testutil.ToFloat64(NotificationQueueLength))
}
