package trainer

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"frontdesk/internal/clock"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewHandler(NewMemoryRepository(), clock.NewFixed(time.Date(2024, 6, 1, 8, 0, 0, 0, time.UTC)))

	r := gin.New()
	r.POST("/trainers", h.Register)
	r.GET("/trainers", h.List)
	r.GET("/trainers/:trainerID", h.Get)
	return r
}

func post(r http.Handler, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/trainers", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestHandlerRegister(t *testing.T) {
	r := newTestRouter()

	w := post(r, `{"first_name":"Maya","specialties":["yoga"],"availability":[
		{"weekday":6,"interval":{"start":"13:00","end":"17:00"}},
		{"weekday":6,"interval":{"start":"08:00","end":"12:00"}}]}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var tr Trainer
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &tr))
	require.Len(t, tr.Availability, 2)
	assert.Equal(t, "08:00", tr.Availability[0].Interval.Start.String())

	req := httptest.NewRequest(http.MethodGet, "/trainers/"+tr.ID, nil)
	got := httptest.NewRecorder()
	r.ServeHTTP(got, req)
	assert.Equal(t, http.StatusOK, got.Code)

	req = httptest.NewRequest(http.MethodGet, "/trainers/unknown", nil)
	got = httptest.NewRecorder()
	r.ServeHTTP(got, req)
	assert.Equal(t, http.StatusNotFound, got.Code)
}

func TestHandlerRegisterRejectsOverlappingWindows(t *testing.T) {
	r := newTestRouter()

	w := post(r, `{"first_name":"Maya","availability":[
		{"weekday":1,"interval":{"start":"08:00","end":"12:00"}},
		{"weekday":1,"interval":{"start":"11:00","end":"14:00"}}]}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "overlap")

	w = post(r, `{"last_name":"NoFirst"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
