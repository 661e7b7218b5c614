// File: server.go
package server

import (
	"fmt"
	"math/rand"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"scratchCard/internal/card"
	"scratchCard/internal/config"
	"scratchCard/internal/metrics"
	"scratchCard/internal/observability"
	"scratchCard/internal/reveal"
	"scratchCard/internal/session"
)

// Server hosts reveal sessions over HTTP.
type Server struct {
	cfg      config.Config
	catalog  *card.Catalog
	layers   map[string]*card.Layers // by prize id
	coverURI string

	store   *session.Store
	logger  *zap.Logger
	metrics *metrics.Metrics

	rngMu sync.Mutex
	rng   *rand.Rand
}

// Option customises a Server.
type Option func(*Server)

// WithRand replaces the prize-picking source.
func WithRand(rng *rand.Rand) Option {
	return func(s *Server) { s.rng = rng }
}

// WithClock replaces the session store clock.
func WithClock(now func() time.Time) Option {
	return func(s *Server) {
		s.store = session.NewStore(s.cfg.SessionTTL, s.cfg.MaxSessions, now)
	}
}

// New paints the layers for every prize up front; they are shared read-only by all
// sessions.
func New(cfg config.Config, catalog *card.Catalog, logger *zap.Logger, m *metrics.Metrics, opts ...Option) (*Server, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if m == nil {
		m = metrics.New()
	}
	if catalog == nil || len(catalog.Prizes) == 0 {
		return nil, card.ErrEmptyCatalog
	}
	rcfg, err := card.NewRenderConfig(cfg.CardWidth, cfg.CardHeight)
	if err != nil {
		return nil, err
	}

	s := &Server{
		cfg:     cfg,
		catalog: catalog,
		layers:  make(map[string]*card.Layers, len(catalog.Prizes)),
		store:   session.NewStore(cfg.SessionTTL, cfg.MaxSessions, nil),
		logger:  logger,
		metrics: m,
		rng:     rand.New(rand.NewSource(time.Now().UnixNano())),
	}
	for _, p := range catalog.Prizes {
		l, err := card.NewLayers(rcfg, p)
		if err != nil {
			return nil, fmt.Errorf("render prize %q: %w", p.ID, err)
		}
		s.layers[p.ID] = l
	}
	if s.coverURI, err = card.DataURI(s.layers[catalog.Prizes[0].ID].Cover); err != nil {
		return nil, fmt.Errorf("encode cover: %w", err)
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Store exposes the session store.
func (s *Server) Store() *session.Store { return s.store }

// Routes builds the HTTP handler.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(observability.RequestLogger(s.logger))
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Method(http.MethodGet, "/metrics", s.metrics.Handler())

	r.Route("/api/scratch", func(r chi.Router) {
		r.Post("/start", s.handleStart)
		r.Route("/{id}", func(r chi.Router) {
			r.Post("/strokes", s.handleStrokes)
			r.Get("/image", s.handleImage)
			r.Post("/claim", s.handleClaim)
			r.Delete("/", s.handleDelete)
		})
	})
	return r
}

// Sweep drops expired sessions; run periodically by the serve command.
func (s *Server) Sweep() int {
	n := s.store.Sweep()
	if n > 0 {
		s.metrics.SessionsExpired.Add(float64(n))
		s.logger.Info("expired sessions swept", zap.Int("count", n))
	}
	s.metrics.SessionsActive.Set(float64(s.store.Len()))
	return n
}

func (s *Server) pickPrize() card.Prize {
	s.rngMu.Lock()
	defer s.rngMu.Unlock()
	return s.catalog.Pick(s.rng)
}

func (s *Server) newSurface() (*reveal.Surface, error) {
	return reveal.New(s.cfg.CardWidth, s.cfg.CardHeight,
		reveal.WithRadius(s.cfg.BrushRadius),
		reveal.WithThreshold(s.cfg.WinThreshold),
	)
}
