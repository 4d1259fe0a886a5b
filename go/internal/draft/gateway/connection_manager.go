package gateway

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"slices"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"

	"github.com/mcdev12/draftsync/go/internal/draft/protocol"
)

var (
	// ErrNotConnected is returned by SendMessage while the channel is down
	ErrNotConnected = errors.New("draft channel is not connected")
	// ErrSendBufferFull is returned when the write pump cannot keep up
	ErrSendBufferFull = errors.New("draft channel send buffer full")
)

// Dialer opens the physical channel. *websocket.Dialer satisfies it.
type Dialer interface {
	DialContext(ctx context.Context, urlStr string, requestHeader http.Header) (*websocket.Conn, *http.Response, error)
}

// ConnectionManager keeps one logical draft session alive across transient
// network failures. It owns the channel status and the reconnect state;
// nothing else writes them.
type ConnectionManager struct {
	config   ConnectionConfig
	identity IdentityProvider
	handler  EventHandler
	clock    clockwork.Clock
	dialer   Dialer

	mu          sync.Mutex
	status      Status
	attempt     int
	pending     clockwork.Timer
	pendingSeq  uint64
	intentional bool
	current     *connection
	cancelDial  context.CancelFunc
	// generation is bumped whenever an in-flight dial or open socket must be
	// forgotten; callbacks carrying an older value are ignored.
	generation uint64

	hooksMu        sync.RWMutex
	statusHooks    []func(Status)
	reconnectHooks []func(attempt int, delay time.Duration)
}

// NewConnectionManager creates a manager in the disconnected state. Events
// read from the channel are passed to handler.
func NewConnectionManager(config ConnectionConfig, identity IdentityProvider, handler EventHandler) *ConnectionManager {
	return &ConnectionManager{
		config:   config,
		identity: identity,
		handler:  handler,
		clock:    clockwork.NewRealClock(),
		dialer: &websocket.Dialer{
			Proxy:            http.ProxyFromEnvironment,
			HandshakeTimeout: config.HandshakeTimeout,
			ReadBufferSize:   config.ReadBufferSize,
			WriteBufferSize:  config.WriteBufferSize,
		},
		status: StatusDisconnected,
	}
}

// OnStatusChange registers fn to be called after every status transition
func (m *ConnectionManager) OnStatusChange(fn func(Status)) {
	m.hooksMu.Lock()
	defer m.hooksMu.Unlock()
	m.statusHooks = append(m.statusHooks, fn)
}

// OnReconnectScheduled registers fn to be called whenever a reconnect timer
// is armed. attempt is 1 for the first retry after a loss.
func (m *ConnectionManager) OnReconnectScheduled(fn func(attempt int, delay time.Duration)) {
	m.hooksMu.Lock()
	defer m.hooksMu.Unlock()
	m.reconnectHooks = append(m.reconnectHooks, fn)
}

// Status returns the current channel status
func (m *ConnectionManager) Status() Status {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.status
}

// Attempt returns the number of consecutive failed connection attempts
func (m *ConnectionManager) Attempt() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.attempt
}

// connectTrigger says who asked for a dial
type connectTrigger int

const (
	triggerConnect connectTrigger = iota
	triggerReconnectNow
	triggerTimer
)

// Connect opens the channel unless it is already open or opening. It returns
// immediately; the dial happens in the background.
func (m *ConnectionManager) Connect() {
	m.connect(triggerConnect, 0)
}

// connect starts a dial. Every check that decides whether the dial happens
// is made under the same lock that moves the status to connecting, so a
// Disconnect racing a timer always wins.
func (m *ConnectionManager) connect(trigger connectTrigger, seq uint64) {
	id, ok := m.identity.Identity()
	if !ok {
		log.Error().Msg("cannot connect draft channel: no local user selected")
		return
	}

	target, err := endpoint(m.config.URL, id)
	if err != nil {
		log.Error().Err(err).Str("url", m.config.URL).Msg("invalid draft channel url")
		return
	}

	m.mu.Lock()
	if trigger == triggerTimer && (seq != m.pendingSeq || m.pending == nil || m.intentional) {
		m.mu.Unlock()
		return
	}
	if m.status != StatusDisconnected {
		m.mu.Unlock()
		return
	}
	m.stopPendingLocked()
	if trigger != triggerTimer {
		m.intentional = false
	}
	if trigger == triggerReconnectNow {
		m.attempt++
	}
	m.generation++
	gen := m.generation
	ctx, cancel := context.WithCancel(context.Background())
	m.cancelDial = cancel
	m.status = StatusConnecting
	attempt := m.attempt
	m.mu.Unlock()

	log.Info().
		Int("user_id", int(id.UserID)).
		Int("attempt", attempt).
		Msg("connecting draft channel")
	m.notifyStatus(StatusConnecting)

	go m.dial(ctx, gen, target, id)
}

// Disconnect closes the channel on purpose. No reconnect happens afterwards
// until Connect or ReconnectNow is called.
func (m *ConnectionManager) Disconnect() {
	m.mu.Lock()
	m.intentional = true
	m.stopPendingLocked()
	m.attempt = 0
	m.generation++
	if m.cancelDial != nil {
		m.cancelDial()
		m.cancelDial = nil
	}
	c := m.current
	m.current = nil
	changed := m.status != StatusDisconnected
	m.status = StatusDisconnected
	m.mu.Unlock()

	if c != nil {
		c.close(websocket.CloseNormalClosure, "client disconnect")
		log.Info().Str("connection_id", c.id).Msg("draft channel closed by client")
	}
	if changed {
		m.notifyStatus(StatusDisconnected)
	}
}

// ReconnectNow skips any scheduled wait and tries to connect immediately.
// It does nothing while the channel is open or opening.
func (m *ConnectionManager) ReconnectNow() {
	m.connect(triggerReconnectNow, 0)
}

// SendMessage writes cmd to the channel. Commands are never queued while
// disconnected; the caller gets ErrNotConnected instead.
func (m *ConnectionManager) SendMessage(cmd protocol.Command) error {
	data, err := protocol.EncodeCommand(cmd)
	if err != nil {
		return fmt.Errorf("encode command: %w", err)
	}

	m.mu.Lock()
	c := m.current
	connected := m.status == StatusConnected && c != nil
	m.mu.Unlock()

	if !connected {
		log.Error().Str("type", string(cmd.Type())).Msg("draft channel is not connected, dropping command")
		return ErrNotConnected
	}

	if err := c.enqueue(data); err != nil {
		log.Error().
			Err(err).
			Str("connection_id", c.id).
			Str("type", string(cmd.Type())).
			Msg("failed to queue command")
		return err
	}
	return nil
}

func (m *ConnectionManager) dial(ctx context.Context, gen uint64, target string, id Identity) {
	if m.config.HandshakeTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, m.config.HandshakeTimeout)
		defer cancel()
	}

	conn, resp, err := m.dialer.DialContext(ctx, target, nil)
	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}
	if err != nil {
		log.Warn().Err(err).Int("user_id", int(id.UserID)).Msg("draft channel dial failed")
		m.connectionLost(gen, err)
		return
	}

	m.mu.Lock()
	if gen != m.generation || m.status != StatusConnecting {
		m.mu.Unlock()
		conn.Close()
		return
	}
	c := newConnection(m, conn, gen)
	m.current = c
	m.status = StatusConnected
	m.attempt = 0
	m.cancelDial = nil
	m.mu.Unlock()

	log.Info().
		Str("connection_id", c.id).
		Int("user_id", int(id.UserID)).
		Msg("draft channel connected")
	m.notifyStatus(StatusConnected)

	go c.writePump()
	go c.readPump()
}

// connectionLost handles every way a channel can end other than Disconnect:
// failed dial, read error, write error, missed pong.
func (m *ConnectionManager) connectionLost(gen uint64, cause error) {
	m.mu.Lock()
	if gen != m.generation {
		m.mu.Unlock()
		return
	}
	m.generation++
	m.current = nil
	m.cancelDial = nil
	changed := m.status != StatusDisconnected
	m.status = StatusDisconnected

	if m.intentional {
		m.mu.Unlock()
		if changed {
			m.notifyStatus(StatusDisconnected)
		}
		return
	}

	delay := m.config.ReconnectDelay(m.attempt)
	m.attempt++
	attempt := m.attempt
	m.scheduleLocked(delay)
	m.mu.Unlock()

	log.Warn().
		Err(cause).
		Int("attempt", attempt).
		Dur("delay", delay).
		Msg("draft channel lost, scheduling reconnect")
	if changed {
		m.notifyStatus(StatusDisconnected)
	}
	m.notifyReconnect(attempt, delay)
}

// scheduleLocked arms the single reconnect timer, replacing any earlier one
func (m *ConnectionManager) scheduleLocked(delay time.Duration) {
	m.stopPendingLocked()
	m.pendingSeq++
	seq := m.pendingSeq
	m.pending = m.clock.AfterFunc(delay, func() { m.reconnectFired(seq) })
}

func (m *ConnectionManager) reconnectFired(seq uint64) {
	m.connect(triggerTimer, seq)
}

func (m *ConnectionManager) stopPendingLocked() {
	if m.pending != nil {
		m.pending.Stop()
		m.pending = nil
	}
	m.pendingSeq++
}

func (m *ConnectionManager) notifyStatus(s Status) {
	m.hooksMu.RLock()
	hooks := slices.Clone(m.statusHooks)
	m.hooksMu.RUnlock()

	for _, fn := range hooks {
		fn(s)
	}
}

func (m *ConnectionManager) notifyReconnect(attempt int, delay time.Duration) {
	m.hooksMu.RLock()
	hooks := slices.Clone(m.reconnectHooks)
	m.hooksMu.RUnlock()

	for _, fn := range hooks {
		fn(attempt, delay)
	}
}
