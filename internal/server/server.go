// Package server exposes the dashboard API over HTTP: REST endpoints for
// quotes, bars, analytics, and ideas, CRUD for watchlists and alerts, a
// WebSocket feed for live updates, and the Prometheus scrape endpoint.
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"stockdeck/internal/advisor"
	"stockdeck/internal/analysis/indicators"
	"stockdeck/internal/config"
	"stockdeck/internal/logging"
	"stockdeck/internal/provider"
	"stockdeck/internal/store"
	"stockdeck/internal/strategy"
	"stockdeck/internal/stream"
)

// Server wires the service components behind the HTTP API.
type Server struct {
	cfg        config.ServerConfig
	logger     zerolog.Logger
	provider   provider.Provider
	indicators *indicators.Engine
	strategies *strategy.Engine
	advisor    *advisor.Advisor
	store      *store.Store
	hub        *stream.Hub
	poller     *stream.Poller
	monitor    *stream.AlertMonitor

	httpSrv *http.Server
}

// Deps carries the components the server serves.
type Deps struct {
	Provider   provider.Provider
	Indicators *indicators.Engine
	Strategies *strategy.Engine
	Advisor    *advisor.Advisor
	Store      *store.Store
	Hub        *stream.Hub
	Poller     *stream.Poller
	Monitor    *stream.AlertMonitor
}

// New creates a server.
func New(cfg config.ServerConfig, deps Deps, logger zerolog.Logger) *Server {
	s := &Server{
		cfg:        cfg,
		logger:     logging.WithComponent(logger, "server"),
		provider:   deps.Provider,
		indicators: deps.Indicators,
		strategies: deps.Strategies,
		advisor:    deps.Advisor,
		store:      deps.Store,
		hub:        deps.Hub,
		poller:     deps.Poller,
		monitor:    deps.Monitor,
	}

	s.httpSrv = &http.Server{
		Addr:         cfg.Addr,
		Handler:      s.routes(),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}
	return s
}

func (s *Server) routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.Handle("GET /metrics", promhttp.Handler())
	mux.HandleFunc("GET /ws", s.handleWS)

	api := func(pattern, name string, h http.HandlerFunc) {
		mux.Handle(pattern, s.instrument(name, h))
	}

	api("GET /api/v1/quote/{symbol}", "quote", s.handleQuote)
	api("GET /api/v1/bars/{symbol}", "bars", s.handleBars)
	api("GET /api/v1/indicators/{symbol}", "indicators", s.handleIndicators)
	api("GET /api/v1/options/{symbol}", "options", s.handleOptions)
	api("GET /api/v1/sentiment/{symbol}", "sentiment", s.handleSentiment)
	api("GET /api/v1/ideas/{symbol}", "ideas", s.handleIdeas)

	api("GET /api/v1/watchlists", "watchlists", s.handleListWatchlists)
	api("POST /api/v1/watchlists", "watchlists", s.handleCreateWatchlist)
	api("GET /api/v1/watchlists/{name}", "watchlist", s.handleGetWatchlist)
	api("DELETE /api/v1/watchlists/{name}", "watchlist", s.handleDeleteWatchlist)
	api("POST /api/v1/watchlists/{name}/symbols/{symbol}", "watchlist_symbols", s.handleAddSymbol)
	api("DELETE /api/v1/watchlists/{name}/symbols/{symbol}", "watchlist_symbols", s.handleRemoveSymbol)

	api("GET /api/v1/alerts", "alerts", s.handleListAlerts)
	api("POST /api/v1/alerts", "alerts", s.handleCreateAlert)
	api("GET /api/v1/alerts/{id}", "alert", s.handleGetAlert)
	api("DELETE /api/v1/alerts/{id}", "alert", s.handleDeleteAlert)

	return s.withCORS(s.withRequestLog(mux))
}

// Run starts the server and the background streaming machinery, blocking
// until the context is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	s.hub.Start(ctx)
	s.monitor.Reload()
	s.hub.RegisterConsumer(s.monitor)
	go s.poller.Run(ctx)

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info().Str("addr", s.cfg.Addr).Msg("HTTP server listening")
		if err := s.httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout())
	defer cancel()

	s.logger.Info().Msg("Shutting down")
	err := s.httpSrv.Shutdown(shutdownCtx)
	s.hub.Stop()
	return err
}

func (s *Server) shutdownTimeout() time.Duration {
	if s.cfg.ShutdownTimeout > 0 {
		return s.cfg.ShutdownTimeout
	}
	return 10 * time.Second
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	status := map[string]any{
		"status":   "ok",
		"provider": s.provider.Name(),
	}
	if fp, ok := s.provider.(*provider.FallbackProvider); ok {
		status["live"] = fp.Live()
	}
	writeJSON(w, http.StatusOK, status)
}
