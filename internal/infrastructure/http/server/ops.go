package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/basketful/storefront/internal/infrastructure/monitoring"
	"github.com/basketful/storefront/pkg/healthcheck"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// OpsServer exposes metrics and probes on a separate port
type OpsServer struct {
	logger *zap.Logger
	server *http.Server
}

// NewOpsRouter mounts /metrics, /livez and /readyz. Metrics may be nil.
func NewOpsRouter(metrics *monitoring.MetricsCollector, health *healthcheck.HealthCheck, logger *zap.Logger) http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(opsLogger(logger))

	r.Get("/livez", health.LivenessHandler())
	r.Get("/readyz", health.ReadinessHandler())
	if metrics != nil {
		r.Handle("/metrics", metrics.Handler())
	}

	return r
}

// NewOpsServer creates the operations listener
func NewOpsServer(port int, handler http.Handler, logger *zap.Logger) *OpsServer {
	return &OpsServer{
		logger: logger,
		server: &http.Server{
			Addr:              fmt.Sprintf(":%d", port),
			Handler:           handler,
			ReadHeaderTimeout: 5 * time.Second,
		},
	}
}

// Start serves until Shutdown is called
func (s *OpsServer) Start() error {
	s.logger.Info("Starting ops server", zap.String("address", s.server.Addr))
	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops the ops server
func (s *OpsServer) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

// opsLogger logs failed probe and scrape requests only
func opsLogger(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			if ww.Status() >= 400 {
				logger.Warn("Ops request failed",
					zap.String("path", r.URL.Path),
					zap.Int("status", ww.Status()),
					zap.Duration("duration", time.Since(start)),
				)
			}
		})
	}
}
