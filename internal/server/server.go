// Package server provides the HTTP server implementation.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/vyrodovalexey/listapp/internal/config"
	"github.com/vyrodovalexey/listapp/internal/handler"
	"github.com/vyrodovalexey/listapp/internal/middleware"
	"github.com/vyrodovalexey/listapp/internal/store"
)

// unmatchedRouteLabel is the metrics path label for requests that match no route.
const unmatchedRouteLabel = "unmatched"

// Server runs the item API and, when configured, a separate probe server
// for health, readiness and metrics.
type Server struct {
	httpServer  *http.Server
	probeServer *http.Server
	router      *mux.Router
	probeRouter *mux.Router
	handler     http.Handler
	probe       http.Handler
	registry    *prometheus.Registry
	config      *config.Config
	logger      *zap.Logger
	events      *handler.EventHub
}

// New creates a new Server instance serving itemStore.
func New(cfg *config.Config, logger *zap.Logger, itemStore store.Store) (*Server, error) {
	s := &Server{
		router:      mux.NewRouter(),
		probeRouter: mux.NewRouter(),
		registry:    prometheus.NewRegistry(),
		config:      cfg,
		logger:      logger,
	}

	if cfg.MetricsEnabled {
		s.registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)

		instrumented, err := store.NewInstrumentedStore(context.Background(), itemStore, s.registry)
		if err != nil {
			return nil, fmt.Errorf("instrumenting item store: %w", err)
		}
		itemStore = instrumented
	}

	s.setupRoutes(itemStore)
	s.setupMiddleware()
	s.setupHTTPServers()

	return s, nil
}

// setupRoutes configures the API and probe routes.
func (s *Server) setupRoutes(itemStore store.Store) {
	var publisher handler.EventPublisher
	if s.config.EventsEnabled {
		s.events = handler.NewEventHub(s.logger)
		s.events.RegisterRoutes(s.router)
		publisher = s.events
	}

	itemHandler := handler.NewItemHandler(itemStore, publisher, s.logger)
	itemHandler.RegisterRoutes(s.router)

	probeHandler := handler.NewProbeHandler(itemStore, s.logger)
	probeHandler.RegisterRoutes(s.probeRouter)

	if s.config.MetricsEnabled {
		s.probeRouter.Handle("/metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{})).
			Methods(http.MethodGet)
	}
}

// setupMiddleware wraps the API router. The chain sits outside the router so
// that unmatched routes are logged and measured too.
func (s *Server) setupMiddleware() {
	allowedOrigins := []string{"*"}
	allowedMethods := []string{
		http.MethodGet,
		http.MethodPost,
		http.MethodPatch,
		http.MethodDelete,
		http.MethodOptions,
	}
	allowedHeaders := []string{
		"Content-Type",
		middleware.RequestIDHeader,
	}

	chain := []middleware.Middleware{
		middleware.Recovery(s.logger),
		middleware.RequestID(),
	}

	if s.config.MetricsEnabled {
		metrics := middleware.NewMetrics(s.registry)
		chain = append(chain, metrics.Middleware(s.routeTemplate))
	}

	var limiter *middleware.RateLimiter
	if s.config.RateLimitPerMin > 0 {
		limiter = middleware.NewRateLimiter(s.config.RateLimitPerMin, s.config.RateLimitBurst)
	}

	chain = append(chain,
		middleware.Logging(s.logger),
		middleware.CORS(allowedOrigins, allowedMethods, allowedHeaders),
		middleware.RateLimit(limiter, s.logger),
		middleware.MaxBodyBytes(s.config.MaxBodyBytes),
	)

	s.handler = middleware.Chain(chain...)(s.router)

	s.probe = middleware.Chain(
		middleware.Recovery(s.logger),
		middleware.RequestID(),
		middleware.Logging(s.logger),
	)(s.probeRouter)
}

// setupHTTPServers configures the API and probe HTTP servers.
func (s *Server) setupHTTPServers() {
	s.httpServer = newHTTPServer(s.config.Address(), s.handler)

	if s.config.ProbePort != 0 {
		s.probeServer = newHTTPServer(s.config.ProbeAddress(), s.probe)
	}
}

func newHTTPServer(addr string, h http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           h,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    1 << 20, // 1 MB
	}
}

// routeTemplate returns the matched route template, keeping metric labels
// free of item names.
func (s *Server) routeTemplate(r *http.Request) string {
	var match mux.RouteMatch
	if s.router.Match(r, &match) && match.Route != nil {
		if tmpl, err := match.Route.GetPathTemplate(); err == nil {
			return tmpl
		}
	}
	return unmatchedRouteLabel
}

// Start starts the HTTP servers and blocks until one of them fails.
func (s *Server) Start() error {
	s.logger.Info("starting server",
		zap.String("address", s.config.Address()),
		zap.Bool("metrics_enabled", s.config.MetricsEnabled),
		zap.Bool("events_enabled", s.config.EventsEnabled),
	)

	errs := make(chan error, 2)

	if s.probeServer != nil {
		s.logger.Info("starting probe server", zap.String("address", s.config.ProbeAddress()))
		go func() {
			errs <- listen(s.probeServer, "probe server")
		}()
	}

	go func() {
		errs <- listen(s.httpServer, "server")
	}()

	return <-errs
}

func listen(srv *http.Server, name string) error {
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("%s listen and serve: %w", name, err)
	}
	return nil
}

// Shutdown gracefully shuts down the servers.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down server")

	// WebSocket connections are hijacked and not tracked by http.Server.
	if s.events != nil {
		s.events.CloseAllConnections()
	}

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	if s.probeServer != nil {
		if err := s.probeServer.Shutdown(ctx); err != nil {
			return fmt.Errorf("probe server shutdown: %w", err)
		}
	}

	s.logger.Info("server shutdown complete")
	return nil
}

// Handler returns the API handler with its middleware chain.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// ProbeHandler returns the probe router with its middleware chain.
func (s *Server) ProbeHandler() http.Handler {
	return s.probe
}

// Registry returns the Prometheus registry backing /metrics.
func (s *Server) Registry() *prometheus.Registry {
	return s.registry
}
