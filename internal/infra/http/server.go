package http

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"telegram-pinmsg-bot/internal/config"
	"telegram-pinmsg-bot/internal/infra/metrics"
)

// Mount adds routes to the server's router.
type Mount func(r chi.Router)

// Server hosts health, metrics and any mounted routes (the webhook in webhook mode).
type Server struct {
	addr   string
	router *chi.Mux
	server *http.Server
	log    *zerolog.Logger
}

func NewServer(cfg *config.HTTPConfig, logger *zerolog.Logger, mounts ...Mount) *Server {
	l := logger.With().Str("component", "HTTPServer").Logger()
	r := chi.NewRouter()
	r.Use(TraceID(), Recover(&l), RequestLog(&l))

	r.Get("/health", handleHealthCheck)
	r.Handle("/metrics", metrics.Handler())
	for _, m := range mounts {
		m(r)
	}
	r.NotFound(handleNotFound)

	addr := fmt.Sprintf(":%d", cfg.Port)
	return &Server{
		addr:   addr,
		router: r,
		server: &http.Server{
			Addr:              addr,
			Handler:           r,
			ReadHeaderTimeout: 10 * time.Second,
		},
		log: &l,
	}
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler { return s.router }

// Start blocks serving until Shutdown. It returns nil once shut down, even when
// Shutdown ran first.
func (s *Server) Start() error {
	s.log.Info().Str("addr", s.addr).Msg("HTTP server listening")
	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

func handleHealthCheck(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	fmt.Fprintf(w, "OK")
}

func handleNotFound(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusTeapot)
	fmt.Fprintf(w, "I'm a teapot")
}
