package server

import (
	"bytes"
	"encoding/json"
	"image/png"
	"math/rand"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scratchCard/internal/card"
	"scratchCard/internal/config"
	"scratchCard/internal/metrics"
	"scratchCard/internal/session"
)

func testConfig() config.Config {
	return config.Config{
		Addr:         ":0",
		CardWidth:    60,
		CardHeight:   30,
		BrushRadius:  5,
		WinThreshold: 0.30,
		SessionTTL:   time.Minute,
		MaxSessions:  4,
	}
}

func newTestServer(t *testing.T, cfg config.Config, opts ...Option) (*Server, http.Handler, *metrics.Metrics) {
	t.Helper()
	catalog := &card.Catalog{Prizes: []card.Prize{
		{ID: "mug", Label: "Mug", Caption: "A mug", Weight: 1, Background: "#ffffff", Foreground: "#000000"},
	}}
	m := metrics.New()
	opts = append([]Option{WithRand(rand.New(rand.NewSource(1)))}, opts...)
	srv, err := New(cfg, catalog, nil, m, opts...)
	require.NoError(t, err)
	return srv, srv.Routes(), m
}

func do(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if s, ok := body.(string); ok {
			buf.WriteString(s)
		} else {
			require.NoError(t, json.NewEncoder(&buf).Encode(body))
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func start(t *testing.T, h http.Handler) StartResponse {
	t.Helper()
	rec := do(t, h, http.MethodPost, "/api/scratch/start", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var rsp StartResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&rsp))
	return rsp
}

func stroke(t *testing.T, h http.Handler, id string, events []session.Event) StrokeResponse {
	t.Helper()
	rec := do(t, h, http.MethodPost, "/api/scratch/"+id+"/strokes", StrokeRequest{Events: events})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var rsp StrokeResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&rsp))
	return rsp
}

func rowStroke(y int) []session.Event {
	events := []session.Event{{Kind: session.EventBegin, X: 0, Y: y}}
	for x := 2; x < 60; x += 2 {
		events = append(events, session.Event{Kind: session.EventMove, X: x, Y: y})
	}
	return append(events, session.Event{Kind: session.EventEnd})
}

func TestHealthz(t *testing.T) {
	_, h, _ := newTestServer(t, testConfig())
	rec := do(t, h, http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", strings.TrimSpace(rec.Body.String()))
}

func TestStart(t *testing.T) {
	srv, h, m := newTestServer(t, testConfig())
	rsp := start(t, h)

	assert.NotEmpty(t, rsp.UUID)
	assert.Equal(t, 60, rsp.Width)
	assert.Equal(t, 30, rsp.Height)
	assert.Equal(t, 5, rsp.Radius)
	assert.True(t, strings.HasPrefix(rsp.Image, "data:image/png;base64,"))
	assert.Equal(t, 1, srv.Store().Len())
	assert.Equal(t, 1.0, testutil.ToFloat64(m.SessionsStarted))
}

func TestStartStoreFull(t *testing.T) {
	cfg := testConfig()
	cfg.MaxSessions = 1
	_, h, _ := newTestServer(t, cfg)
	start(t, h)

	rec := do(t, h, http.MethodPost, "/api/scratch/start", nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	var er ErrorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&er))
	assert.Equal(t, "too_many_sessions", er.Error)
}

func TestScratchToWinAndClaim(t *testing.T) {
	_, h, m := newTestServer(t, testConfig())
	id := start(t, h).UUID

	rec := do(t, h, http.MethodPost, "/api/scratch/"+id+"/claim", nil)
	assert.Equal(t, http.StatusConflict, rec.Code)

	first := stroke(t, h, id, []session.Event{{Kind: session.EventBegin, X: 30, Y: 15}, {Kind: session.EventEnd}})
	assert.False(t, first.Won)
	assert.Greater(t, first.Revealed, 0.0)

	win := stroke(t, h, id, rowStroke(5))
	assert.True(t, win.Won)
	assert.True(t, win.WinSignal)
	assert.Greater(t, win.Revealed, 0.30)

	again := stroke(t, h, id, rowStroke(25))
	assert.True(t, again.Won)
	assert.False(t, again.WinSignal)
	assert.GreaterOrEqual(t, again.Revealed, win.Revealed)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.Wins))
	assert.Equal(t, 1, testutil.CollectAndCount(m.RevealedAtWin))

	rec = do(t, h, http.MethodPost, "/api/scratch/"+id+"/claim", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var claim ClaimResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&claim))
	assert.Equal(t, "mug", claim.Prize.ID)
	assert.Equal(t, "Mug", claim.Prize.Label)

	rec = do(t, h, http.MethodPost, "/api/scratch/"+id+"/claim", nil)
	assert.Equal(t, http.StatusGone, rec.Code)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Claims))
}

func TestStrokeErrors(t *testing.T) {
	_, h, _ := newTestServer(t, testConfig())
	id := start(t, h).UUID

	tests := []struct {
		name string
		path string
		body any
		want int
	}{
		{"unknown session", "/api/scratch/nope/strokes", StrokeRequest{}, http.StatusNotFound},
		{"invalid json", "/api/scratch/" + id + "/strokes", "{", http.StatusBadRequest},
		{"unknown kind", "/api/scratch/" + id + "/strokes", StrokeRequest{Events: []session.Event{{Kind: "tap"}}}, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, h, http.MethodPost, tt.path, tt.body)
			assert.Equal(t, tt.want, rec.Code, rec.Body.String())
			assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
		})
	}
}

func TestOutOfBoundsStrokeIsClamped(t *testing.T) {
	_, h, _ := newTestServer(t, testConfig())
	id := start(t, h).UUID

	rsp := stroke(t, h, id, []session.Event{
		{Kind: session.EventBegin, X: -50, Y: -50},
		{Kind: session.EventMove, X: 500, Y: 500},
		{Kind: session.EventEnd},
	})
	assert.Greater(t, rsp.Revealed, 0.0)
	assert.False(t, rsp.Won)
}

func TestImage(t *testing.T) {
	_, h, _ := newTestServer(t, testConfig())
	id := start(t, h).UUID
	stroke(t, h, id, rowStroke(15))

	rec := do(t, h, http.MethodGet, "/api/scratch/"+id+"/image", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))
	img, err := png.Decode(rec.Body)
	require.NoError(t, err)
	assert.Equal(t, 60, img.Bounds().Dx())
	assert.Equal(t, 30, img.Bounds().Dy())

	rec = do(t, h, http.MethodGet, "/api/scratch/"+id+"/image?width=30", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	img, err = png.Decode(rec.Body)
	require.NoError(t, err)
	assert.Equal(t, 30, img.Bounds().Dx())
	assert.Equal(t, 15, img.Bounds().Dy())

	for _, q := range []string{"0", "abc", "61"} {
		rec = do(t, h, http.MethodGet, "/api/scratch/"+id+"/image?width="+q, nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code, q)
	}
}

func TestDelete(t *testing.T) {
	srv, h, _ := newTestServer(t, testConfig())
	id := start(t, h).UUID

	rec := do(t, h, http.MethodDelete, "/api/scratch/"+id, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Zero(t, srv.Store().Len())

	rec = do(t, h, http.MethodDelete, "/api/scratch/"+id, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	rec = do(t, h, http.MethodGet, "/api/scratch/"+id+"/image", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSweep(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }
	srv, h, m := newTestServer(t, testConfig(), WithClock(clock))
	start(t, h)
	start(t, h)

	assert.Zero(t, srv.Sweep())
	now = now.Add(2 * time.Minute)
	assert.Equal(t, 2, srv.Sweep())
	assert.Equal(t, 2.0, testutil.ToFloat64(m.SessionsExpired))
	assert.Zero(t, testutil.ToFloat64(m.SessionsActive))
}

func TestMetricsEndpoint(t *testing.T) {
	_, h, _ := newTestServer(t, testConfig())
	id := start(t, h).UUID
	stroke(t, h, id, rowStroke(10))

	rec := do(t, h, http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "scratchcard_sessions_started_total 1")
	assert.Contains(t, body, `scratchcard_stroke_events_total{kind="move"}`)
}

func TestNewRejectsEmptyCatalog(t *testing.T) {
	_, err := New(testConfig(), &card.Catalog{}, nil, nil)
	assert.ErrorIs(t, err, card.ErrEmptyCatalog)
}
