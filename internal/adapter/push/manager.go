// Package push keeps the single push-update socket of the tracking view open.
package push

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/looplab/fsm"

	"github.com/Temutjin2k/vehicle-tracker/internal/domain/types"
	"github.com/Temutjin2k/vehicle-tracker/pkg/logger"
	wrap "github.com/Temutjin2k/vehicle-tracker/pkg/logger/wrapper"
	"github.com/Temutjin2k/vehicle-tracker/pkg/metrics"
	ws "github.com/Temutjin2k/vehicle-tracker/pkg/wsHub"
)

const (
	eventsBuffer   = 32
	messagesBuffer = 256
)

type CredentialSource interface {
	Token(ctx context.Context) (string, error)
}

type Config struct {
	URL              string
	InitialDelay     time.Duration
	MaxDelay         time.Duration
	Multiplier       float64
	MaxRetries       int
	PingInterval     time.Duration
	HandshakeTimeout time.Duration
}

// Manager owns one push socket. Connect, Disconnect and State are safe for
// concurrent use. Inbound frames arrive on Messages in receive order.
type Manager struct {
	cfg    Config
	creds  CredentialSource
	dialer *websocket.Dialer
	log    logger.Logger

	mu       sync.Mutex
	state    *fsm.FSM
	conn     *ws.Conn
	ctx      context.Context
	manual   bool
	attempts int
	backoff  *backoff.ExponentialBackOff
	retry    *time.Timer
	// gen invalidates dial results, readers and timers of older attempts
	gen uint64

	events   chan types.ConnEvent
	messages chan []byte
}

func New(cfg Config, creds CredentialSource, log logger.Logger) *Manager {
	cfg = cfg.withDefaults()

	return &Manager{
		cfg:   cfg,
		creds: creds,
		dialer: &websocket.Dialer{
			HandshakeTimeout: cfg.HandshakeTimeout,
		},
		log:      log,
		state:    newStateMachine(),
		ctx:      context.Background(),
		backoff:  newBackOff(cfg),
		events:   make(chan types.ConnEvent, eventsBuffer),
		messages: make(chan []byte, messagesBuffer),
	}
}

// Events delivers connection state changes for the UI layer.
func (m *Manager) Events() <-chan types.ConnEvent {
	return m.events
}

// Messages delivers raw inbound frames.
func (m *Manager) Messages() <-chan []byte {
	return m.messages
}

func (m *Manager) State() types.ConnState {
	m.mu.Lock()
	defer m.mu.Unlock()
	return types.ConnState(m.state.Current())
}

// Connect opens the socket unless one is already open or opening. A missing
// or expired credential is returned as is and no retry is scheduled. A
// failed dial is returned too, but a reconnect is scheduled for it.
func (m *Manager) Connect(ctx context.Context) error {
	return m.connect(ctx, false)
}

func (m *Manager) connect(ctx context.Context, retry bool) error {
	const op = "Manager.Connect"
	ctx = wrap.WithAction(ctx, types.ActionPushConnect)

	m.mu.Lock()
	if types.ConnState(m.state.Current()) != types.StateDisconnected {
		m.mu.Unlock()
		return nil
	}
	m.manual = false
	m.ctx = ctx
	if !retry {
		m.attempts = 0
		m.backoff.Reset()
	}

	token, err := m.creds.Token(ctx)
	if err != nil {
		m.mu.Unlock()
		m.log.Warn(ctx, "push connect aborted", "reason", err.Error())
		return fmt.Errorf("%s: %w", op, err)
	}

	target, err := m.target(token)
	if err != nil {
		m.mu.Unlock()
		return fmt.Errorf("%s: %w", op, err)
	}

	m.stopRetry()
	m.gen++
	gen := m.gen
	m.transition(ctx, eventConnect)
	m.emit(ctx, types.ConnEventConnecting)
	m.mu.Unlock()

	raw, _, err := m.dialer.DialContext(ctx, target, nil)

	m.mu.Lock()
	defer m.mu.Unlock()

	if gen != m.gen {
		// disconnected or reconnected while dialing
		if raw != nil {
			_ = raw.Close()
		}
		return nil
	}

	if err != nil {
		m.log.Warn(ctx, "push dial failed", "url", m.cfg.URL, "attempt", m.attempts, "err", err.Error())
		m.transition(ctx, eventDrop)
		m.emit(ctx, types.ConnEventDisconnected)
		m.scheduleRetry(ctx)
		return fmt.Errorf("%s: dial: %w", op, err)
	}

	conn := ws.NewConn(context.Background(), uuid.New(), raw)
	m.conn = conn
	m.attempts = 0
	m.backoff.Reset()
	m.transition(ctx, eventOpen)
	metrics.SetPushConnected(true)
	m.emit(ctx, types.ConnEventConnected)
	m.log.Info(ctx, "push socket connected", "url", m.cfg.URL)

	go m.read(ctx, gen, conn)
	go m.keepalive(ctx, conn)

	return nil
}

// Disconnect closes the socket on purpose. No reconnect follows and a
// pending retry is cancelled.
func (m *Manager) Disconnect() {
	ctx := wrap.WithAction(context.Background(), types.ActionPushClosed)

	m.mu.Lock()
	m.manual = true
	m.gen++
	m.stopRetry()

	conn := m.conn
	m.conn = nil
	if types.ConnState(m.state.Current()) != types.StateDisconnected {
		m.transition(ctx, eventClose)
		metrics.SetPushConnected(false)
		m.emit(ctx, types.ConnEventDisconnected)
	}
	m.mu.Unlock()

	if conn != nil {
		if err := conn.Close(); err != nil {
			m.log.Debug(ctx, "push socket close", "err", err.Error())
		}
	}
}

func (m *Manager) read(ctx context.Context, gen uint64, conn *ws.Conn) {
	err := conn.Listen(func(msg []byte) error {
		select {
		case m.messages <- msg:
			return nil
		case <-conn.Done():
			return ws.ErrConnClosed
		}
	})
	m.dropped(ctx, gen, conn, err)
}

func (m *Manager) keepalive(ctx context.Context, conn *ws.Conn) {
	ticker := time.NewTicker(m.cfg.PingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-conn.Done():
			return
		case <-ticker.C:
			if err := conn.Ping(); err != nil {
				if !errors.Is(err, ws.ErrConnClosed) {
					m.log.Warn(ctx, "push keepalive failed", "err", err.Error())
				}
				// the reader notices the close and reports the drop
				_ = conn.Close()
				return
			}
		}
	}
}

// dropped handles the end of a reader. Readers of superseded connections are ignored.
func (m *Manager) dropped(ctx context.Context, gen uint64, conn *ws.Conn, err error) {
	_ = conn.Close()

	m.mu.Lock()
	defer m.mu.Unlock()

	if gen != m.gen || m.conn != conn {
		return
	}
	m.conn = nil

	m.log.Warn(ctx, "push socket closed unexpectedly", "err", errString(err))
	m.transition(ctx, eventDrop)
	metrics.SetPushConnected(false)
	m.emit(ctx, types.ConnEventDisconnected)

	if !m.manual {
		m.scheduleRetry(ctx)
	}
}

// scheduleRetry must be called with mu held.
func (m *Manager) scheduleRetry(ctx context.Context) {
	ctx = wrap.WithAction(ctx, types.ActionPushReconnect)

	if m.attempts >= m.cfg.MaxRetries {
		m.log.Error(wrap.WithAction(ctx, types.ActionPushFailed), "push reconnect gave up",
			types.ErrMaxRetries, "attempts", m.attempts)
		m.emit(ctx, types.ConnEventFailed)
		return
	}

	m.attempts++
	delay := m.backoff.NextBackOff()
	gen := m.gen
	metrics.PushReconnectsTotal.Inc()
	m.log.Info(ctx, "push reconnect scheduled", "attempt", m.attempts, "delay", delay.String())

	m.retry = time.AfterFunc(delay, func() {
		m.mu.Lock()
		if gen != m.gen || m.manual || m.ctx.Err() != nil {
			m.mu.Unlock()
			return
		}
		m.retry = nil
		base := m.ctx
		m.mu.Unlock()

		if err := m.connect(base, true); err != nil {
			m.log.Debug(ctx, "push reconnect attempt failed", "err", err.Error())
		}
	})
}

func (m *Manager) stopRetry() {
	if m.retry != nil {
		m.retry.Stop()
		m.retry = nil
	}
}

func (m *Manager) transition(ctx context.Context, event string) {
	if err := m.state.Event(ctx, event); err != nil {
		m.log.Warn(ctx, "push state transition rejected", "event", event, "state", m.state.Current(), "err", err.Error())
	}
}

// emit never blocks; the receiver is the engine loop, which may itself be
// waiting on mu inside Disconnect.
func (m *Manager) emit(ctx context.Context, ev types.ConnEvent) {
	select {
	case m.events <- ev:
	default:
		m.log.Warn(ctx, "push event dropped, receiver is behind", "event", string(ev))
	}
}

func (m *Manager) target(token string) (string, error) {
	u, err := url.Parse(m.cfg.URL)
	if err != nil {
		return "", fmt.Errorf("invalid push url: %w", err)
	}
	q := u.Query()
	q.Set("token", token)
	u.RawQuery = q.Encode()
	return u.String(), nil
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
