// Package tracker runs the live tracking view of one vehicle. All state is
// owned by a single event loop goroutine; socket frames, connection events,
// timers, async lookup results and user commands are all serialized through it.
package tracker

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Temutjin2k/vehicle-tracker/internal/domain/models"
	"github.com/Temutjin2k/vehicle-tracker/internal/domain/types"
	"github.com/Temutjin2k/vehicle-tracker/internal/service/dispatcher"
	"github.com/Temutjin2k/vehicle-tracker/internal/service/geocode"
	"github.com/Temutjin2k/vehicle-tracker/internal/service/heading"
	"github.com/Temutjin2k/vehicle-tracker/internal/service/reconciler"
	"github.com/Temutjin2k/vehicle-tracker/internal/service/route"
	"github.com/Temutjin2k/vehicle-tracker/pkg/logger"
	wrap "github.com/Temutjin2k/vehicle-tracker/pkg/logger/wrapper"
)

const (
	DefaultRefreshInterval = 60 * time.Second
	DefaultMovingSpeed     = 5.0
)

type Config struct {
	IMEI            string
	RefreshInterval time.Duration
	// km/h, strictly above means moving
	MovingSpeed float64
	Route       route.Config
}

type Engine struct {
	cfg      Config
	boot     Bootstrapper
	conn     Connection
	render   Renderer
	geocoder Geocoder
	router   route.Router
	log      logger.Logger

	// owned by the loop after Start
	rec     *reconciler.Reconciler
	trail   *route.Tracker
	heading *heading.Controller
	disp    *dispatcher.Dispatcher
	address models.Address
	addr    addressLookup

	posts   chan func(context.Context)
	done    chan struct{}
	cancel  context.CancelFunc
	workers sync.WaitGroup

	startOnce sync.Once
	stopOnce  sync.Once
	started   chan struct{}
}

// addressLookup coalesces geocoding: one lookup in flight, at most one queued.
type addressLookup struct {
	seq      uint64
	inFlight bool
	dirty    bool
}

func New(cfg Config, boot Bootstrapper, conn Connection, render Renderer, geocoder Geocoder, router route.Router, log logger.Logger) *Engine {
	if cfg.RefreshInterval <= 0 {
		cfg.RefreshInterval = DefaultRefreshInterval
	}
	if cfg.MovingSpeed <= 0 {
		cfg.MovingSpeed = DefaultMovingSpeed
	}

	return &Engine{
		cfg:      cfg,
		boot:     boot,
		conn:     conn,
		render:   render,
		geocoder: geocoder,
		router:   router,
		log:      log,
		address:  geocode.Idle(),
		posts:    make(chan func(context.Context)),
		done:     make(chan struct{}),
		started:  make(chan struct{}),
	}
}

// Start fetches the bootstrap snapshot, draws it, starts the loop and opens
// the push socket. A bootstrap failure is returned and nothing is started.
// The loop runs until ctx is cancelled or Stop is called.
func (e *Engine) Start(ctx context.Context) error {
	err := types.ErrEngineStopped
	e.startOnce.Do(func() {
		err = e.start(ctx)
	})
	return err
}

func (e *Engine) start(ctx context.Context) error {
	const op = "Engine.Start"

	ctx = wrap.WithIMEI(ctx, e.cfg.IMEI)
	ctx = wrap.WithSessionID(ctx, uuid.NewString())
	bctx := wrap.WithAction(ctx, types.ActionBootstrap)

	b, err := e.boot.FetchTracking(bctx, e.cfg.IMEI)
	if err != nil {
		e.log.Error(bctx, "initial tracking fetch failed", err)
		close(e.done)
		return wrap.Error(bctx, fmt.Errorf("%s: %w", op, err))
	}
	if b.Vehicle.IMEI == "" {
		b.Vehicle.IMEI = e.cfg.IMEI
	}

	e.rec = reconciler.New(b.Vehicle)
	e.trail = route.New(e.cfg.Route, e.router, e.log)
	e.heading = heading.New(e.render)
	e.disp = dispatcher.New(e.cfg.IMEI, e, e.log)

	change := e.rec.Seed(b)
	if pos, ok := e.rec.Position(); ok {
		e.trail.Clear(&pos)
	}
	e.log.Info(bctx, "tracking view bootstrapped",
		"vehicle", b.Vehicle.Name,
		"has_location", b.HasLocation,
		"has_status", b.HasStatus,
		"historical", b.LocationIsHistorical,
		"fields", change.String(),
	)

	loopCtx, cancel := context.WithCancel(ctx)
	e.cancel = cancel

	e.drawAll(loopCtx)
	e.requestAddress(loopCtx, true)

	go e.run(loopCtx)
	close(e.started)

	if err := e.conn.Connect(loopCtx); err != nil {
		e.log.Warn(wrap.WithAction(loopCtx, types.ActionPushConnect), "push socket not connected", "error", err.Error())
		if errors.Is(err, types.ErrNoCredential) || errors.Is(err, types.ErrCredentialExpired) {
			// no retry follows a credential failure
			e.post(loopCtx, func(ctx context.Context) {
				e.onConnEvent(ctx, types.ConnEventFailed)
			})
		}
	}

	return nil
}

// Stop tears the view down: the socket is closed, timers are stopped and
// no posted callback runs afterwards. It blocks until in-flight lookups return.
func (e *Engine) Stop() {
	e.stopOnce.Do(func() {
		// waits for a Start in progress; a later Start is refused
		e.startOnce.Do(func() { close(e.done) })
		select {
		case <-e.started:
		default:
			return
		}
		e.cancel()
		<-e.done
		e.workers.Wait()
	})
}

// Done is closed when the loop has exited.
func (e *Engine) Done() <-chan struct{} {
	return e.done
}

func (e *Engine) run(ctx context.Context) {
	defer close(e.done)

	refresh := time.NewTicker(e.cfg.RefreshInterval)
	defer refresh.Stop()

	for {
		select {
		case <-ctx.Done():
			e.teardown(ctx)
			return
		case raw := <-e.conn.Messages():
			e.disp.Dispatch(ctx, raw)
		case ev := <-e.conn.Events():
			e.onConnEvent(ctx, ev)
		case <-refresh.C:
			e.requestAddress(ctx, false)
		case fn := <-e.posts:
			if ctx.Err() == nil {
				fn(ctx)
			}
		}
	}
}

func (e *Engine) teardown(ctx context.Context) {
	e.conn.Disconnect()
	e.log.Info(wrap.WithAction(ctx, types.ActionEngineStop), "tracking view stopped",
		"route_points", e.trail.Len(),
	)
}

// post hands fn to the loop. It reports false when the loop is gone or ctx ended first.
func (e *Engine) post(ctx context.Context, fn func(context.Context)) bool {
	select {
	case e.posts <- fn:
		return true
	case <-e.done:
		return false
	case <-ctx.Done():
		return false
	}
}

// call runs fn on the loop and waits for its result.
func call[T any](ctx context.Context, e *Engine, fn func(context.Context) T) (T, error) {
	var zero T

	select {
	case <-e.started:
	case <-e.done:
		return zero, types.ErrEngineStopped
	case <-ctx.Done():
		return zero, ctx.Err()
	}

	reply := make(chan T, 1)
	if !e.post(ctx, func(ctx context.Context) { reply <- fn(ctx) }) {
		if ctx.Err() != nil {
			return zero, ctx.Err()
		}
		return zero, types.ErrEngineStopped
	}

	select {
	case v := <-reply:
		return v, nil
	case <-e.done:
		// the loop may have exited right after accepting fn
		select {
		case v := <-reply:
			return v, nil
		default:
			return zero, types.ErrEngineStopped
		}
	case <-ctx.Done():
		return zero, ctx.Err()
	}
}

// async runs work off the loop and posts its continuation back.
func (e *Engine) async(ctx context.Context, work func(context.Context) func(context.Context)) {
	e.workers.Add(1)
	go func() {
		defer e.workers.Done()
		if next := work(ctx); next != nil {
			e.post(ctx, next)
		}
	}()
}
