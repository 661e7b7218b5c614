// File: handler.go
package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"scratchCard/internal/card"
	"scratchCard/internal/observability"
	"scratchCard/internal/session"
)

const maxStrokeBody = 1 << 20

func (s *Server) handleStart(w http.ResponseWriter, r *http.Request) {
	logger := observability.FromContext(r.Context())

	prize := s.pickPrize()
	surface, err := s.newSurface()
	if err != nil {
		logger.Error("allocate surface", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "surface_unavailable", err.Error())
		return
	}
	sess, err := s.store.Create(surface, s.layers[prize.ID], prize)
	if errors.Is(err, session.ErrStoreFull) {
		writeError(w, http.StatusServiceUnavailable, "too_many_sessions", "too many active sessions, try again later")
		return
	}
	if err != nil {
		logger.Error("create session", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal_error", "failed to create session")
		return
	}

	s.metrics.SessionsStarted.Inc()
	s.metrics.SessionsActive.Set(float64(s.store.Len()))
	logger.Info("session started", zap.String("session_id", sess.ID), zap.String("prize_id", prize.ID))

	writeJSON(w, http.StatusOK, StartResponse{
		UUID:   sess.ID,
		Width:  surface.Width(),
		Height: surface.Height(),
		Radius: surface.Radius(),
		Image:  s.coverURI,
	})
}

func (s *Server) handleStrokes(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.lookup(w, r)
	if !ok {
		return
	}
	var req StrokeRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxStrokeBody)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "invalid json")
		return
	}

	res, err := sess.Apply(req.Events)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_event", err.Error())
		return
	}
	for _, ev := range req.Events {
		s.metrics.StrokeEvents.WithLabelValues(string(ev.Kind)).Inc()
	}
	if res.WinSignal {
		s.metrics.Wins.Inc()
		s.metrics.RevealedAtWin.Observe(res.Revealed)
		observability.FromContext(r.Context()).Info("card won",
			zap.String("session_id", sess.ID),
			zap.Float64("revealed", res.Revealed),
		)
	}

	writeJSON(w, http.StatusOK, StrokeResponse{
		Revealed:  res.Revealed,
		Won:       res.HasWon,
		WinSignal: res.WinSignal,
	})
}

func (s *Server) handleImage(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.lookup(w, r)
	if !ok {
		return
	}
	img, err := sess.Snapshot()
	if err != nil {
		observability.FromContext(r.Context()).Error("composite card", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "render_failed", "failed to render card")
		return
	}

	out := img
	if q := r.URL.Query().Get("width"); q != "" {
		width, err := strconv.Atoi(q)
		if err != nil || width <= 0 || width > img.Bounds().Dx() {
			writeError(w, http.StatusBadRequest, "invalid_width", "width must be between 1 and the card width")
			return
		}
		height := img.Bounds().Dy() * width / img.Bounds().Dx()
		if height < 1 {
			height = 1
		}
		out = card.Scale(img, width, height)
	}

	b, err := card.EncodePNG(out)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "render_failed", "failed to encode card")
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(b)
}

func (s *Server) handleClaim(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.lookup(w, r)
	if !ok {
		return
	}
	prize, err := sess.Claim()
	switch {
	case errors.Is(err, session.ErrNotWon):
		writeError(w, http.StatusConflict, "not_won", "scratch more of the card first")
		return
	case errors.Is(err, session.ErrAlreadyClaimed):
		writeError(w, http.StatusGone, "already_claimed", "prize already claimed")
		return
	case err != nil:
		writeError(w, http.StatusInternalServerError, "internal_error", err.Error())
		return
	}

	s.metrics.Claims.Inc()
	observability.FromContext(r.Context()).Info("prize claimed",
		zap.String("session_id", sess.ID),
		zap.String("prize_id", prize.ID),
	)
	writeJSON(w, http.StatusOK, ClaimResponse{Prize: prize})
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	if err := s.store.Delete(chi.URLParam(r, "id")); err != nil {
		writeError(w, http.StatusNotFound, "session_not_found", "uuid not found")
		return
	}
	s.metrics.SessionsActive.Set(float64(s.store.Len()))
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) lookup(w http.ResponseWriter, r *http.Request) (*session.Session, bool) {
	sess, err := s.store.Get(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusNotFound, "session_not_found", "uuid not found")
		return nil, false
	}
	return sess, true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, msg string) {
	writeJSON(w, status, ErrorResponse{Error: code, Message: msg})
}
