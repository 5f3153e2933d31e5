// Package server wires storage, services and transport into the moves HTTP server.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"connectrpc.com/connect"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"
	"golang.org/x/sync/errgroup"

	"github.com/mmynk/moves/internal/auth"
	"github.com/mmynk/moves/internal/config"
	"github.com/mmynk/moves/internal/metrics"
	"github.com/mmynk/moves/internal/middleware"
	"github.com/mmynk/moves/internal/moves"
	"github.com/mmynk/moves/internal/notify"
	"github.com/mmynk/moves/internal/service"
	"github.com/mmynk/moves/internal/storage"
	"github.com/mmynk/moves/internal/sweeper"
	"github.com/mmynk/moves/pkg/api"
)

const shutdownTimeout = 10 * time.Second

// Server is a configured moves server.
type Server struct {
	cfg     config.Config
	logger  *slog.Logger
	sweeper *sweeper.Sweeper
	handler http.Handler
}

// New builds the server on top of store. Extra moves options, such as a test
// clock, are applied after the configured ones.
func New(cfg config.Config, store storage.Store, logger *slog.Logger, opts ...moves.Option) *Server {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.New(registry)

	broker := notify.NewBroker(notify.WithDropHandler(func(e notify.Event) {
		m.EventsDropped.Inc()
		logger.Debug("Event dropped for slow subscriber", "type", e.Type, "group_id", e.GroupID)
	}))

	moveSvc := moves.NewService(store, append([]moves.Option{
		moves.WithBroker(broker),
		moves.WithMetrics(m),
		moves.WithLogger(logger),
		moves.WithSweepLimit(cfg.SweepBatchLimit),
		moves.WithSweepOnList(cfg.SweepOnList),
	}, opts...)...)

	jwtManager := auth.NewJWTManager(cfg.JWTSecret, cfg.TokenTTL)
	authenticator := auth.NewPasswordAuthenticator(store)

	// Auth runs first so the logging interceptor sees the caller's identity.
	authed := connect.WithInterceptors(middleware.RequireAuth(jwtManager), middleware.LoggingInterceptor(logger))
	public := connect.WithInterceptors(middleware.LoggingInterceptor(logger))

	mux := http.NewServeMux()
	mux.Handle(api.NewAuthServiceHandler(service.NewAuthService(authenticator, jwtManager, logger), public))
	mux.Handle(api.NewGroupServiceHandler(service.NewGroupService(store, moveSvc, logger), authed))
	mux.Handle(api.NewMoveServiceHandler(service.NewMoveService(moveSvc, logger), authed))
	mux.Handle(api.NewVoteServiceHandler(service.NewVoteService(moveSvc, logger), authed))
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{Registry: registry}))
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("ok\n"))
	})

	sw := sweeper.New(store, moveSvc, sweeper.Config{
		Interval:    cfg.SweepInterval,
		Concurrency: cfg.SweepConcurrency,
	}, m, logger)

	return &Server{
		cfg:     cfg,
		logger:  logger,
		sweeper: sw,
		handler: loggingMiddleware(logger, corsMiddleware(cfg.CORSOrigin, mux)),
	}
}

// Handler returns the HTTP handler serving every route.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Run serves on the configured address and runs the periodic sweeper until ctx
// is done, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	// Wrap with h2c for HTTP/2 without TLS (required for Connect streaming)
	httpServer := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           h2c.NewHandler(s.handler, &http2.Server{}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	eg, egCtx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		s.logger.Info("Connect server starting", "address", s.cfg.Addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	})
	eg.Go(func() error {
		return s.sweeper.Run(egCtx)
	})
	eg.Go(func() error {
		<-egCtx.Done()
		s.logger.Info("Shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	})
	return eg.Wait()
}
