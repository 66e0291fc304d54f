package ledger

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandlerRecordAndStatement(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := NewHandler(newTestService(t))
	r := gin.New()
	r.POST("/members/:memberID/ledger", h.Record)
	r.GET("/members/:memberID/ledger", h.Statement)

	post := func(path, body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, path, bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w
	}

	w := post("/members/m1/ledger", `{"kind":"charge","amount_cents":1200,"description":"towel"}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = post("/members/m1/ledger", `{"kind":"refund","amount_cents":1200}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = post("/members/ghost/ledger", `{"kind":"charge","amount_cents":100}`)
	assert.Equal(t, http.StatusNotFound, w.Code)

	req := httptest.NewRequest(http.MethodGet, "/members/m1/ledger", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var st Statement
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &st))
	assert.Equal(t, int64(1200), st.OutstandingCents)
	assert.Len(t, st.Entries, 1)
}
