package app

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/Temutjin2k/vehicle-tracker/config"
	"github.com/Temutjin2k/vehicle-tracker/internal/adapter/http/server"
	locationiq "github.com/Temutjin2k/vehicle-tracker/internal/adapter/locationIQ"
	"github.com/Temutjin2k/vehicle-tracker/internal/adapter/nominatim"
	"github.com/Temutjin2k/vehicle-tracker/internal/adapter/osrm"
	"github.com/Temutjin2k/vehicle-tracker/internal/adapter/platform"
	"github.com/Temutjin2k/vehicle-tracker/internal/adapter/push"
	rabbitmap "github.com/Temutjin2k/vehicle-tracker/internal/adapter/rabbit"
	"github.com/Temutjin2k/vehicle-tracker/internal/adapter/render"
	"github.com/Temutjin2k/vehicle-tracker/internal/adapter/session"
	"github.com/Temutjin2k/vehicle-tracker/internal/domain/types"
	"github.com/Temutjin2k/vehicle-tracker/internal/service/geocode"
	"github.com/Temutjin2k/vehicle-tracker/internal/service/route"
	"github.com/Temutjin2k/vehicle-tracker/internal/service/tracker"
	"github.com/Temutjin2k/vehicle-tracker/pkg/logger"
	wrap "github.com/Temutjin2k/vehicle-tracker/pkg/logger/wrapper"
	"github.com/Temutjin2k/vehicle-tracker/pkg/rabbit"
	ws "github.com/Temutjin2k/vehicle-tracker/pkg/wsHub"
)

var ErrServiceNotInitialized = errors.New("service not initialized")

type App struct {
	engine     *tracker.Engine
	httpServer *server.API
	hub        *ws.ConnectionHub
	rabbit     *rabbit.RabbitMQ
	publisher  *rabbitmap.MapPublisher
	creds      *session.Static

	cfg config.Config
	log logger.Logger
}

// NewApplication wires the tracking view for cfg.IMEI. Nothing talks to the
// network until Run, except the optional RabbitMQ dial.
func NewApplication(ctx context.Context, cfg config.Config, log logger.Logger) (*App, error) {
	app := &App{
		cfg: cfg,
		log: log,
	}

	creds := session.NewStatic(cfg.Platform.Token)
	app.creds = creds
	app.hub = ws.NewConnHub(log)

	sinks := []render.Sink{render.NewHubSink(app.hub)}
	if cfg.RabbitMQ.Enabled {
		r, err := rabbit.New(ctx, cfg.RabbitMQ.GetDSN(), log)
		if err != nil {
			log.Error(ctx, "Failed to setup rabbitMQ", err)
			return nil, err
		}
		app.rabbit = r
		app.publisher = rabbitmap.NewMapPublisher(r, cfg.RabbitMQ.Exchange, cfg.RabbitMQ.Buffer, log)
		sinks = append(sinks, app.publisher)
	}
	commands := render.New(cfg.IMEI, sinks...)

	conn := push.New(push.Config{
		URL:              cfg.Push.URL,
		InitialDelay:     cfg.Push.InitialDelay,
		MaxDelay:         cfg.Push.MaxDelay,
		Multiplier:       cfg.Push.Multiplier,
		MaxRetries:       cfg.Push.MaxRetries,
		PingInterval:     cfg.Push.PingInterval,
		HandshakeTimeout: cfg.Push.HandshakeTimeout,
	}, creds, log)

	app.engine = tracker.New(
		tracker.Config{
			IMEI:            cfg.IMEI,
			RefreshInterval: cfg.Geocode.RefreshInterval,
			MovingSpeed:     cfg.Route.MovingSpeed,
			Route: route.Config{
				Capacity:          cfg.Route.Capacity,
				MinDistanceMeters: cfg.Route.MinDistanceMeters,
			},
		},
		platform.New(cfg.Platform.BaseURL, creds, cfg.Platform.Timeout),
		conn,
		commands,
		newGeocoder(cfg.Geocode, log),
		newRouter(cfg.Route),
		log,
	)

	httpServer, err := server.New(cfg, app.engine, app.hub, commands, log)
	if err != nil {
		log.Error(ctx, "Failed to setup http server", err)
		return nil, err
	}
	app.httpServer = httpServer

	return app, nil
}

// newGeocoder orders the providers: LocationIQ first when a key is set, then Nominatim.
func newGeocoder(cfg config.GeocodeConfig, log logger.Logger) *geocode.Resolver {
	var providers []geocode.Provider
	if cfg.LocationIQKey != "" {
		providers = append(providers, locationiq.New(cfg.LocationIQKey, cfg.LocationIQURL, cfg.Timeout))
	}
	if cfg.NominatimURL != "" {
		providers = append(providers, nominatim.New(cfg.NominatimURL, cfg.UserAgent, cfg.Timeout))
	}
	return geocode.New(cfg.Timeout, log, providers...)
}

// newRouter returns a nil interface when snapping is off, so the trail stays straight.
func newRouter(cfg config.RouteConfig) route.Router {
	if !cfg.SnapToRoads || cfg.OSRMBaseURL == "" {
		return nil
	}
	return osrm.New(cfg.OSRMBaseURL, cfg.Timeout)
}

// Run starts the engine and the HTTP server and blocks until SIGINT/SIGTERM,
// ctx cancellation or a fatal error. Only a failed bootstrap or a server that
// can't listen is returned.
func (a *App) Run(ctx context.Context) error {
	if a.engine == nil || a.httpServer == nil {
		return ErrServiceNotInitialized
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a.cfg.OnChange(func(c *config.Config) {
		a.log.SetLevel(c.LogLevel)
		// picked up by the next platform request or push reconnect
		if c.Platform.Token != "" {
			a.creds.Set(c.Platform.Token)
		}
		a.log.Info(wrap.WithAction(ctx, types.ActionConfigReload), "config reloaded", "log_level", c.LogLevel)
	})

	g, gctx := errgroup.WithContext(ctx)

	if a.publisher != nil {
		g.Go(func() error {
			// the map socket keeps working without the broker
			if err := a.publisher.Run(gctx); err != nil {
				a.log.Error(wrap.ErrorCtx(gctx, err), "map publisher stopped", err)
			}
			return nil
		})
	}

	g.Go(func() error {
		return a.httpServer.Run(gctx)
	})

	g.Go(func() error {
		if err := a.engine.Start(gctx); err != nil {
			return fmt.Errorf("failed to start tracker: %w", err)
		}
		a.log.Info(gctx, "vehicle tracker has been started", "imei", a.cfg.IMEI)
		<-a.engine.Done()
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		a.log.Info(ctx, "shutting down application")
		a.close(context.WithoutCancel(ctx))
		return nil
	})

	return g.Wait()
}

func (a *App) close(ctx context.Context) {
	a.engine.Stop()

	if err := a.httpServer.Stop(ctx); err != nil {
		a.log.Warn(ctx, "Failed to gracefully close http server", "error", err.Error())
	}

	a.hub.Close()

	if a.rabbit != nil {
		if err := a.rabbit.Close(ctx); err != nil {
			a.log.Warn(ctx, "Failed to close rabbitMQ connection", "error", err.Error())
		}
	}

	a.log.Info(ctx, "vehicle tracker closed")
}
