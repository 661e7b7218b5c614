package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollectors(t *testing.T) {
	m := New()
	m.SessionsStarted.Inc()
	m.StrokeEvents.WithLabelValues("begin").Add(2)
	m.Wins.Inc()
	m.RevealedAtWin.Observe(0.33)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.SessionsStarted))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.StrokeEvents.WithLabelValues("begin")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Wins))
	assert.Equal(t, 1, testutil.CollectAndCount(m.RevealedAtWin))
}

func TestHandler(t *testing.T) {
	m := New()
	m.Claims.Inc()

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "scratchcard_claims_total 1")
	assert.Contains(t, string(body), "go_goroutines")
}
