package gateway

import "time"

// ConnectionConfig holds configuration for the draft channel
type ConnectionConfig struct {
	// URL is the channel endpoint, e.g. ws://localhost:8080/ws/draft
	URL string

	HandshakeTimeout time.Duration
	WriteTimeout     time.Duration
	ReadTimeout      time.Duration
	PingInterval     time.Duration
	MaxMessageSize   int64
	ReadBufferSize   int
	WriteBufferSize  int
	SendBufferSize   int

	// Reconnect delay is min(ReconnectBaseDelay * 2^attempt, ReconnectMaxDelay)
	ReconnectBaseDelay time.Duration
	ReconnectMaxDelay  time.Duration
}

// DefaultConnectionConfig returns default channel configuration
func DefaultConnectionConfig() ConnectionConfig {
	return ConnectionConfig{
		URL:                "ws://localhost:8080/ws/draft",
		HandshakeTimeout:   10 * time.Second,
		WriteTimeout:       10 * time.Second,
		ReadTimeout:        60 * time.Second,
		PingInterval:       30 * time.Second,
		MaxMessageSize:     1 << 20, // draft_state carries the whole player pool
		ReadBufferSize:     4096,
		WriteBufferSize:    1024,
		SendBufferSize:     64,
		ReconnectBaseDelay: time.Second,
		ReconnectMaxDelay:  30 * time.Second,
	}
}

// ReconnectDelay returns the wait before the reconnect that follows attempt
// previous failures.
func (c ConnectionConfig) ReconnectDelay(attempt int) time.Duration {
	if c.ReconnectBaseDelay <= 0 {
		return 0
	}
	delay := c.ReconnectBaseDelay
	for i := 0; i < attempt; i++ {
		delay *= 2
		if c.ReconnectMaxDelay > 0 && delay >= c.ReconnectMaxDelay {
			return c.ReconnectMaxDelay
		}
	}
	if c.ReconnectMaxDelay > 0 && delay > c.ReconnectMaxDelay {
		return c.ReconnectMaxDelay
	}
	return delay
}
