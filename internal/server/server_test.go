package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"frontdesk/internal/checkin"
	"frontdesk/internal/clock"
	"frontdesk/internal/config"
	"frontdesk/internal/guest"
	"frontdesk/internal/gymclass"
	"frontdesk/internal/keylock"
	"frontdesk/internal/ledger"
	"frontdesk/internal/member"
	"frontdesk/internal/scheduling"
	"frontdesk/internal/trainer"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T, health HealthCheck) http.Handler {
	t.Helper()
	clk := clock.NewFixed(time.Date(2024, 6, 1, 7, 0, 0, 0, time.UTC))
	locks := keylock.New()
	members := member.NewMemoryRepository()
	guests := guest.NewMemoryRepository()
	trainers := trainer.NewMemoryRepository()
	ledgerSvc := ledger.NewService(ledger.NewMemoryRepository(), members, clk)

	h := Handlers{
		Scheduling: scheduling.NewHandler(scheduling.NewService(
			gymclass.NewMemoryRepository(), trainers, clk, locks, nil, scheduling.Options{WaitlistDefault: true},
		)),
		CheckIn: checkin.NewHandler(checkin.NewService(
			members, guests, ledgerSvc, clk, locks, checkin.DefaultPolicy(),
		)),
		Members:  member.NewHandler(member.NewService(members, clk, locks, time.UTC)),
		Guests:   guest.NewHandler(guests, clk),
		Trainers: trainer.NewHandler(trainers, clk),
		Ledger:   ledger.NewHandler(ledgerSvc),
	}
	cfg := &config.Config{Port: "0"}
	return New(cfg, h, health).Handler()
}

func send(r http.Handler, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestHealth(t *testing.T) {
	r := newTestServer(t, HealthCheck{Storage: "memory"})
	w := get(r, "/health")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok","storage":"memory"}`, w.Body.String())

	r = newTestServer(t, HealthCheck{Storage: "postgres", Ping: func(context.Context) error {
		return errors.New("connection refused")
	}})
	assert.Equal(t, http.StatusServiceUnavailable, get(r, "/health").Code)
}

func TestMetricsEndpoint(t *testing.T) {
	r := newTestServer(t, HealthCheck{})
	get(r, "/health")

	w := get(r, "/metrics")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "frontdesk_http_requests_total")
}

func TestFrontDeskFlow(t *testing.T) {
	r := newTestServer(t, HealthCheck{})

	w := send(r, http.MethodPost, "/members", `{"first_name":"Ada","last_name":"Lovelace","tags":["Special Needs"],"end_date":"2024-06-05T00:00:00Z"}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var m member.Member
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &m))

	w = send(r, http.MethodPost, "/members/"+m.ID+"/ledger", `{"kind":"charge","amount_cents":1500,"description":"towel rental"}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = send(r, http.MethodPost, "/members/"+m.ID+"/check-ins", "")
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var checkedIn checkin.MemberCheckInResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &checkedIn))
	assert.True(t, checkedIn.Evaluation.Has(checkin.AdvisoryExpiringSoon))
	assert.True(t, checkedIn.Evaluation.Has(checkin.AdvisoryWaiverRequired))
	assert.True(t, checkedIn.Evaluation.Has(checkin.AdvisoryOutstandingBalance))
	assert.True(t, checkedIn.Evaluation.Has(checkin.AdvisoryFirstVisit))

	w = send(r, http.MethodPost, "/members/"+m.ID+"/freeze", "")
	require.Equal(t, http.StatusOK, w.Code)
	w = send(r, http.MethodPost, "/members/"+m.ID+"/check-ins", "")
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = send(r, http.MethodPost, "/classes", `{"type":"Spin","room":"Spin Room","date":"2024-06-01","start":"18:00","end":"19:00","trainer_id":"t1","capacity":1}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var class scheduling.ClassView
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &class))

	w = send(r, http.MethodPost, "/classes/"+class.ID+"/bookings", `{"kind":"member","id":"`+m.ID+`"}`)
	assert.Equal(t, http.StatusCreated, w.Code)

	w = send(r, http.MethodPost, "/guests", `{"first_name":"Sam","visit_purpose":"trial"}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var g guest.Guest
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &g))

	w = send(r, http.MethodPost, "/classes/"+class.ID+"/bookings", `{"kind":"guest","id":"`+g.ID+`"}`)
	assert.Equal(t, http.StatusAccepted, w.Code)

	w = send(r, http.MethodPost, "/guests/"+g.ID+"/check-in", "")
	assert.Equal(t, http.StatusOK, w.Code)

	w = get(r, "/rooms/available?date=2024-06-01&start=18:30&end=19:30")
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotContains(t, w.Body.String(), "Spin Room")

	w = send(r, http.MethodPost, "/trainers", `{"first_name":"Maya"}`)
	assert.Equal(t, http.StatusCreated, w.Code)
}
