package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/Temutjin2k/vehicle-tracker/config"
	"github.com/Temutjin2k/vehicle-tracker/internal/adapter/http/handler"
	"github.com/Temutjin2k/vehicle-tracker/internal/adapter/http/middleware"
	"github.com/Temutjin2k/vehicle-tracker/pkg/logger"
	wrap "github.com/Temutjin2k/vehicle-tracker/pkg/logger/wrapper"
)

const defaultShutdownTimeout = 5 * time.Second

type API struct {
	mux    *http.ServeMux
	server *http.Server
	routes *handlers // routes/handlers
	m      *middleware.Middleware

	addr            string
	shutdownTimeout time.Duration
	log             logger.Logger
}

type handlers struct {
	health  *handler.Health
	tracker *handler.Tracker
	mapWS   *handler.MapSocket
}

func New(
	cfg config.Config,
	tracker handler.TrackerService,
	hub handler.SubscriberHub,
	replay handler.Replayer,
	logger logger.Logger,
) (*API, error) {
	if tracker == nil {
		return nil, errors.New("tracker service is required")
	}
	if hub == nil {
		return nil, errors.New("map hub is required")
	}

	api := &API{
		mux: http.NewServeMux(),
		routes: &handlers{
			health:  handler.NewHealth(cfg.ServiceName, logger),
			tracker: handler.NewTracker(tracker, logger),
			mapWS:   handler.NewMapSocket(hub, replay, logger),
		},
		m:               middleware.NewMiddleware(logger),
		addr:            net.JoinHostPort("0.0.0.0", cfg.HTTP.Port),
		shutdownTimeout: cfg.HTTP.ShutdownTimeout,
		log:             logger,
	}
	if api.shutdownTimeout <= 0 {
		api.shutdownTimeout = defaultShutdownTimeout
	}

	api.setupRoutes()

	api.server = &http.Server{
		Addr:              api.addr,
		Handler:           api.withMiddleware(),
		ReadHeaderTimeout: cfg.HTTP.ReadTimeout,
	}

	return api, nil
}

func (a *API) setupRoutes() {
	setupRoutes(a.mux, a.routes)
}

// Handler returns the full handler chain, used by tests.
func (a *API) Handler() http.Handler {
	return a.server.Handler
}

func (a *API) Stop(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, a.shutdownTimeout)
	defer cancel()
	ctx = wrap.WithAction(ctx, "http_server_stop")

	a.log.Debug(ctx, "shutting down HTTP server...", "address", a.addr)
	if err := a.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("error shutting down server: %w", err)
	}
	a.log.Debug(ctx, "shutting down HTTP server completed")

	return nil
}

// Run serves until Stop is called. It returns nil after a graceful shutdown.
func (a *API) Run(ctx context.Context) error {
	ctx = wrap.WithAction(ctx, "http_server_start")
	a.log.Info(ctx, "started http server", "address", a.addr)

	if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to start HTTP server: %w", err)
	}
	return nil
}

// withMiddleware applies middlewares to the mux
func (a *API) withMiddleware() http.Handler {
	return a.m.Recover(a.m.RequestID(a.m.Logging(a.m.Metrics(a.mux))))
}
