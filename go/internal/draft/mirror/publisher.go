// Package mirror republishes the draft events this client applies onto NATS
// so local tooling can follow a draft without opening its own channel.
package mirror

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog/log"

	"github.com/mcdev12/draftsync/go/internal/draft/protocol"
)

type Config struct {
	URL           string
	SubjectPrefix string
	MaxReconnects int
	ReconnectWait time.Duration

	// StreamName switches to JetStream publishing when set
	StreamName      string
	MaxAge          time.Duration
	DuplicateWindow time.Duration
	PublishTimeout  time.Duration
}

func DefaultConfig() Config {
	return Config{
		URL:             nats.DefaultURL,
		SubjectPrefix:   "draftsync.events",
		MaxReconnects:   -1, // Infinite
		ReconnectWait:   2 * time.Second,
		MaxAge:          24 * time.Hour,
		DuplicateWindow: 2 * time.Minute,
		PublishTimeout:  5 * time.Second,
	}
}

func (c Config) withDefaults() Config {
	def := DefaultConfig()
	if c.SubjectPrefix == "" {
		c.SubjectPrefix = def.SubjectPrefix
	}
	if c.PublishTimeout <= 0 {
		c.PublishTimeout = def.PublishTimeout
	}
	return c
}

// MsgPublisher is the part of *nats.Conn the mirror uses
type MsgPublisher interface {
	PublishMsg(msg *nats.Msg) error
}

// Envelope is the JSON body of every mirrored message
type Envelope struct {
	EventID   string          `json:"eventId"`
	EventType string          `json:"eventType"`
	DraftID   int             `json:"draftId"`
	UserID    int             `json:"userId"`
	Timestamp time.Time       `json:"timestamp"`
	Payload   json.RawMessage `json:"payload"`
}

// Publisher mirrors events for one draft event and local participant
type Publisher struct {
	pub     MsgPublisher
	nc      *nats.Conn
	clock   clockwork.Clock
	config  Config
	draftID int
	userID  protocol.UserID
}

// Connect dials NATS and returns a publisher bound to draftID. With a
// StreamName the stream is created or updated before the first publish.
func Connect(cfg Config, draftID int, userID protocol.UserID) (*Publisher, error) {
	cfg = cfg.withDefaults()
	opts := []nats.Option{
		nats.Name("draftsync-mirror"),
		nats.MaxReconnects(cfg.MaxReconnects),
		nats.ReconnectWait(cfg.ReconnectWait),
		nats.DisconnectErrHandler(func(nc *nats.Conn, err error) {
			log.Error().Err(err).Msg("NATS disconnected")
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			log.Info().Str("url", nc.ConnectedUrl()).Msg("NATS reconnected")
		}),
		nats.ErrorHandler(func(nc *nats.Conn, sub *nats.Subscription, err error) {
			log.Error().Err(err).Msg("NATS error")
		}),
	}

	nc, err := nats.Connect(cfg.URL, opts...)
	if err != nil {
		return nil, fmt.Errorf("connect to NATS: %w", err)
	}

	var pub MsgPublisher = nc
	if cfg.StreamName != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		sink, err := newJetStreamSink(ctx, nc, cfg)
		if err != nil {
			nc.Close()
			return nil, err
		}
		pub = sink
	}

	p := NewPublisher(pub, cfg, draftID, userID)
	p.nc = nc
	return p, nil
}

// NewPublisher wraps an existing connection
func NewPublisher(pub MsgPublisher, cfg Config, draftID int, userID protocol.UserID) *Publisher {
	return &Publisher{
		pub:     pub,
		clock:   clockwork.NewRealClock(),
		config:  cfg.withDefaults(),
		draftID: draftID,
		userID:  userID,
	}
}

// Subject returns where events of kind are published
func (p *Publisher) Subject(kind protocol.MessageType) string {
	return fmt.Sprintf("%s.%d.%s", p.config.SubjectPrefix, p.draftID, kind)
}

// HandleEvent publishes evt. Failures are logged; the mirror never affects
// the draft session itself.
func (p *Publisher) HandleEvent(evt protocol.Event) {
	if err := p.Publish(evt); err != nil {
		log.Warn().Err(err).Str("event_type", string(evt.Type())).Msg("failed to mirror draft event")
	}
}

// Publish sends one event
func (p *Publisher) Publish(evt protocol.Event) error {
	payload, err := protocol.EncodeEvent(evt)
	if err != nil {
		return fmt.Errorf("encode event: %w", err)
	}

	env := Envelope{
		EventID:   uuid.New().String(),
		EventType: string(evt.Type()),
		DraftID:   p.draftID,
		UserID:    int(p.userID),
		Timestamp: p.clock.Now().UTC(),
		Payload:   payload,
	}
	data, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	subject := p.Subject(evt.Type())
	err = p.pub.PublishMsg(&nats.Msg{
		Subject: subject,
		Data:    data,
		Header: nats.Header{
			"Event-Type": []string{env.EventType},
			"Draft-ID":   []string{strconv.Itoa(p.draftID)},
			"Event-ID":   []string{env.EventID},
		},
	})
	if err != nil {
		return fmt.Errorf("publish to NATS: %w", err)
	}

	log.Debug().
		Str("subject", subject).
		Str("event_id", env.EventID).
		Msg("mirrored draft event")
	return nil
}

// Close drains the connection if the publisher owns one
func (p *Publisher) Close() error {
	if p.nc == nil {
		return nil
	}
	if err := p.nc.Drain(); err != nil {
		p.nc.Close()
		return fmt.Errorf("drain NATS connection: %w", err)
	}
	return nil
}
