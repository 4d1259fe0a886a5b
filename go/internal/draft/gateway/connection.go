package gateway

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/mcdev12/draftsync/go/internal/draft/protocol"
)

// connection is one physical socket. A logical session goes through many of
// them; only the manager's current one may report a loss.
type connection struct {
	id      string
	gen     uint64
	conn    *websocket.Conn
	send    chan []byte
	done    chan struct{}
	manager *ConnectionManager

	closeOnce   sync.Once
	connectedAt time.Time
}

func newConnection(m *ConnectionManager, conn *websocket.Conn, gen uint64) *connection {
	size := m.config.SendBufferSize
	if size <= 0 {
		size = 1
	}
	return &connection{
		id:          uuid.New().String(),
		gen:         gen,
		conn:        conn,
		send:        make(chan []byte, size),
		done:        make(chan struct{}),
		manager:     m,
		connectedAt: time.Now(),
	}
}

func (c *connection) enqueue(data []byte) error {
	select {
	case <-c.done:
		return ErrNotConnected
	default:
	}

	select {
	case c.send <- data:
		return nil
	case <-c.done:
		return ErrNotConnected
	default:
		return ErrSendBufferFull
	}
}

// close sends a close frame and tears the socket down. Safe to call more
// than once and from any goroutine.
func (c *connection) close(code int, reason string) {
	c.closeOnce.Do(func() {
		close(c.done)
		if err := c.conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(code, reason), c.writeDeadline()); err != nil &&
			!errors.Is(err, websocket.ErrCloseSent) {
			log.Debug().Err(err).Str("connection_id", c.id).Msg("failed to send close frame")
		}
		c.conn.Close()
	})
}

// writePump sends queued commands and keepalive pings
func (c *connection) writePump() {
	cfg := c.manager.config
	interval := cfg.PingInterval
	if interval <= 0 {
		interval = DefaultConnectionConfig().PingInterval
	}
	ticker := c.manager.clock.NewTicker(interval)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case <-c.done:
			return

		case message := <-c.send:
			c.conn.SetWriteDeadline(c.writeDeadline())
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				log.Error().
					Err(err).
					Str("connection_id", c.id).
					Msg("failed to write message to draft channel")
				return
			}

		case <-ticker.Chan():
			c.conn.SetWriteDeadline(c.writeDeadline())
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				log.Error().
					Err(err).
					Str("connection_id", c.id).
					Msg("failed to send ping")
				return
			}
		}
	}
}

// readPump decodes server events and hands them to the manager's handler.
// It is the only goroutine that delivers events, so handler calls are
// ordered as the server sent them.
func (c *connection) readPump() {
	cfg := c.manager.config

	if cfg.MaxMessageSize > 0 {
		c.conn.SetReadLimit(cfg.MaxMessageSize)
	}
	c.extendReadDeadline()
	c.conn.SetPongHandler(func(string) error {
		c.extendReadDeadline()
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Error().
					Err(err).
					Str("connection_id", c.id).
					Dur("connected_for", time.Since(c.connectedAt)).
					Msg("unexpected draft channel close")
			}
			c.close(websocket.CloseGoingAway, "")
			c.manager.connectionLost(c.gen, err)
			return
		}
		c.extendReadDeadline()

		evt, err := protocol.DecodeEvent(message)
		if err != nil {
			log.Warn().
				Err(err).
				Str("connection_id", c.id).
				Int("size", len(message)).
				Msg("dropping malformed draft message")
			continue
		}

		if c.manager.handler != nil {
			c.manager.handler.HandleEvent(evt)
		}
	}
}

func (c *connection) extendReadDeadline() {
	if timeout := c.manager.config.ReadTimeout; timeout > 0 {
		c.conn.SetReadDeadline(time.Now().Add(timeout))
	}
}

// writeDeadline returns the zero time (no deadline) when no timeout is set
func (c *connection) writeDeadline() time.Time {
	if timeout := c.manager.config.WriteTimeout; timeout > 0 {
		return time.Now().Add(timeout)
	}
	return time.Time{}
}
