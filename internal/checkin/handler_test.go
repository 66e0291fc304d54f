package checkin

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"frontdesk/internal/member"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRouter(t *testing.T) (*gin.Engine, *fixture) {
	gin.SetMode(gin.TestMode)
	f := newFixture(t, nil)
	h := NewHandler(f.svc)

	r := gin.New()
	r.GET("/members/:memberID/eligibility", h.MemberEligibility)
	r.POST("/members/:memberID/check-ins", h.CheckInMember)
	r.GET("/guests/:guestID/eligibility", h.GuestEligibility)
	r.POST("/guests/:guestID/check-in", h.CheckInGuest)
	r.POST("/guests/:guestID/check-out", h.CheckOutGuest)
	r.POST("/guests/:guestID/convert", h.ConvertGuest)
	return r, f
}

func do(r http.Handler, method, path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestHandlerMemberCheckIn(t *testing.T) {
	r, f := newTestRouter(t)
	f.seedMember(t, activeMember(now.AddDate(0, 0, 5)))

	w := do(r, http.MethodGet, "/members/m1/eligibility")
	require.Equal(t, http.StatusOK, w.Code)
	var eval Evaluation
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &eval))
	assert.Equal(t, VerdictEligible, eval.Verdict.Status)
	assert.True(t, eval.Has(AdvisoryExpiringSoon))

	w = do(r, http.MethodPost, "/members/m1/check-ins")
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var resp MemberCheckInResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.CheckIn.ID)

	w = do(r, http.MethodPost, "/members/m404/check-ins")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestHandlerBlockedCheckIn(t *testing.T) {
	r, f := newTestRouter(t)
	m := activeMember(time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC))
	f.seedMember(t, m)

	w := do(r, http.MethodPost, "/members/m1/check-ins")
	require.Equal(t, http.StatusForbidden, w.Code)
	var blocked BlockedResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &blocked))
	assert.Equal(t, "membership expired", blocked.Error)
	assert.Equal(t, ReasonExpired, blocked.Evaluation.Verdict.Reason)
}

func TestHandlerGuestFlow(t *testing.T) {
	r, f := newTestRouter(t)
	f.seedGuest(t)

	w := do(r, http.MethodGet, "/guests/g1/eligibility")
	require.Equal(t, http.StatusOK, w.Code)

	w = do(r, http.MethodPost, "/guests/g1/check-out")
	assert.Equal(t, http.StatusConflict, w.Code)

	w = do(r, http.MethodPost, "/guests/g1/check-in")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = do(r, http.MethodPost, "/guests/g1/check-in")
	assert.Equal(t, http.StatusConflict, w.Code)

	f.clock.Advance(75 * time.Minute)
	w = do(r, http.MethodPost, "/guests/g1/check-out")
	require.Equal(t, http.StatusOK, w.Code)
	var out CheckOutResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	assert.Equal(t, "1h 15m", out.VisitDuration)

	w = do(r, http.MethodPost, "/guests/g1/convert")
	require.Equal(t, http.StatusCreated, w.Code)
	var m member.Member
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &m))
	assert.Equal(t, member.StatusPending, m.MembershipStatus)

	w = do(r, http.MethodPost, "/guests/g1/convert")
	assert.Equal(t, http.StatusConflict, w.Code)

	w = do(r, http.MethodPost, "/guests/nobody/check-in")
	assert.Equal(t, http.StatusNotFound, w.Code)
}
