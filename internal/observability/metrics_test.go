package observability

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetricsExposition(t *testing.T) {
	m := NewMetrics()
	m.Verification("expired")
	m.Authentication("rejected")
	m.RecordRequest("/auth/me", http.MethodGet, http.StatusBadRequest, 5*time.Millisecond)
	m.RecordError("/auth/me", http.MethodGet, "INVALID_TOKEN")

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	out := string(body)
	assert.Contains(t, out, `token_verifications_total{result="expired"} 1`)
	assert.Contains(t, out, `authentications_total{outcome="rejected"} 1`)
	assert.Contains(t, out, `http_requests_total{method="GET",path="/auth/me",status="400"} 1`)
	assert.Contains(t, out, `http_errors_total{code="INVALID_TOKEN",method="GET",path="/auth/me"} 1`)
}

func TestNilMetricsIsSafe(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.Verification("valid")
		m.Authentication("anonymous")
		m.RecordRequest("/", http.MethodGet, http.StatusOK, time.Millisecond)
		m.RecordError("/", http.MethodGet, "X")
	})
}
