// Package server exposes the week store over HTTP, WebSocket and Prometheus.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/verte-zerg/weekboard/internal/metrics"
	"github.com/verte-zerg/weekboard/internal/model"
	"github.com/verte-zerg/weekboard/internal/refresh"
	"github.com/verte-zerg/weekboard/internal/store"
)

const shutdownTimeout = 5 * time.Second

// Refresher starts refresh cycles and reports their status.
type Refresher interface {
	Trigger()
	Status() refresh.Status
	Subscribe(fn func(refresh.Status)) func()
}

// Server serves the JSON API.
type Server struct {
	st       *store.Store
	refresh  Refresher
	metrics  *metrics.Metrics
	log      *zap.Logger
	targets  model.Targets
	limiter  *rate.Limiter
	validate *validator.Validate
	hub      *Hub
}

// New builds a server. m may be nil, in which case /metrics is not served.
func New(st *store.Store, r Refresher, m *metrics.Metrics, log *zap.Logger, targets model.Targets, cfg model.ServeConfig) *Server {
	return &Server{
		st:       st,
		refresh:  r,
		metrics:  m,
		log:      log,
		targets:  targets,
		limiter:  rate.NewLimiter(rate.Limit(cfg.RefreshRPS), cfg.RefreshBurst),
		validate: validator.New(),
		hub:      NewHub(log),
	}
}

// Handler returns the router.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.requestLogger)

	r.Route("/api", func(r chi.Router) {
		r.Use(render.SetContentType(render.ContentTypeJSON))
		r.Get("/weeks", s.listWeeks)
		r.Get("/weeks/current", s.currentWeek)
		r.Get("/weeks/{index}", s.weekAt)
		r.Post("/weeks/select", s.selectWeek)
		r.Post("/refresh", s.triggerRefresh)
		r.Get("/status", s.status)
		r.Get("/standings", s.standings)
	})
	r.Get("/ws", s.serveWS)
	if s.metrics != nil {
		r.Handle("/metrics", s.metrics.Handler())
	}
	return r
}

// Run serves on addr until ctx is done, pushing store and refresh events to
// websocket clients.
func (s *Server) Run(ctx context.Context, addr string) error {
	defer s.watch()()

	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}
	errCh := make(chan error, 1)
	go func() {
		s.log.Info("http server listening", zap.String("addr", addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		s.hub.Close()
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("http server failed: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	s.hub.Close()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down http server: %w", err)
	}
	<-errCh
	return nil
}

// watch forwards store and refresh events to the hub until the returned
// function is called.
func (s *Server) watch() func() {
	unsubStore := s.st.Subscribe(func(ev store.Event) { s.hub.Broadcast(s.storeMessage(ev)) })
	unsubStatus := s.refresh.Subscribe(func(st refresh.Status) {
		s.hub.Broadcast(Message{Type: TypeStatus, Data: st})
	})
	return func() {
		unsubStore()
		unsubStatus()
	}
}

func (s *Server) storeMessage(ev store.Event) Message {
	if ev.Kind == store.EventSelect {
		return Message{Type: TypeSelect, Data: map[string]int{"current": ev.Current}}
	}
	return Message{Type: TypeWeeks, Data: s.weeksPayload()}
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		started := time.Now()
		next.ServeHTTP(ww, r)
		s.log.Debug("http request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Duration("elapsed", time.Since(started)),
			zap.String("request_id", middleware.GetReqID(r.Context())),
		)
	})
}

func (s *Server) serveWS(w http.ResponseWriter, r *http.Request) {
	initial := Message{Type: TypeWeeks, Data: s.weeksPayload()}
	s.hub.ServeWS(w, r, &initial)
}
