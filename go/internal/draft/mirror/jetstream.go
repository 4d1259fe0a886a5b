package mirror

import (
	"context"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
	"github.com/rs/zerolog/log"
)

// jetStreamSink publishes through JetStream so mirrored events are persisted
// and deduplicated by Event-ID.
type jetStreamSink struct {
	js      jetstream.JetStream
	stream  string
	timeout time.Duration
}

func newJetStreamSink(ctx context.Context, nc *nats.Conn, cfg Config) (*jetStreamSink, error) {
	js, err := jetstream.New(nc)
	if err != nil {
		return nil, fmt.Errorf("create JetStream context: %w", err)
	}

	_, err = js.CreateOrUpdateStream(ctx, jetstream.StreamConfig{
		Name:        cfg.StreamName,
		Description: "Draft events mirrored by draftsync clients",
		Subjects:    []string{cfg.SubjectPrefix + ".>"},
		Retention:   jetstream.LimitsPolicy,
		MaxAge:      cfg.MaxAge,
		Storage:     jetstream.FileStorage,
		Duplicates:  cfg.DuplicateWindow,
	})
	if err != nil {
		return nil, fmt.Errorf("ensure stream: %w", err)
	}
	log.Info().Str("stream", cfg.StreamName).Msg("JetStream stream ready")

	return &jetStreamSink{js: js, stream: cfg.StreamName, timeout: cfg.PublishTimeout}, nil
}

func (s *jetStreamSink) PublishMsg(msg *nats.Msg) error {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	ack, err := s.js.PublishMsg(ctx, msg,
		jetstream.WithMsgID(msg.Header.Get("Event-ID")),
		jetstream.WithExpectStream(s.stream),
	)
	if err != nil {
		return err
	}
	log.Debug().
		Str("stream", ack.Stream).
		Uint64("sequence", ack.Sequence).
		Bool("duplicate", ack.Duplicate).
		Msg("published to JetStream")
	return nil
}
