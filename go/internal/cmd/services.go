package main

import (
	"io"

	"github.com/rs/zerolog/log"

	"github.com/mcdev12/draftsync/go/clients/draftapi"
	"github.com/mcdev12/draftsync/go/internal/draft/gateway"
	"github.com/mcdev12/draftsync/go/internal/draft/mirror"
	"github.com/mcdev12/draftsync/go/internal/draft/protocol"
	"github.com/mcdev12/draftsync/go/internal/draft/session"
	"github.com/mcdev12/draftsync/go/internal/draft/state"
	"github.com/mcdev12/draftsync/go/internal/identity"
	"github.com/mcdev12/draftsync/go/internal/models"
)

type Services struct {
	API      *draftapi.Client
	Store    *state.Store
	Channel  *gateway.ConnectionManager
	Session  *session.Session
	Mirror   *mirror.Publisher
	Renderer *Renderer
}

func setupServices(cfg Config, api *draftapi.Client, local identity.Local, out io.Writer) *Services {
	// Wire up dependency chain
	// ConnectionManager → Store → (mirror), Session → Renderer
	userID := protocol.UserID(local.UserID)
	store := state.NewStore(userID)

	var pub *mirror.Publisher
	if mc, ok := cfg.MirrorConfig(); ok {
		p, err := mirror.Connect(mc, local.EventID, userID)
		if err != nil {
			log.Warn().Err(err).Str("nats_url", mc.URL).Msg("event mirror disabled")
		} else {
			pub = p
			store.OnApplied(p.HandleEvent)
		}
	}

	channel := gateway.NewConnectionManager(cfg.ConnectionConfig(), session.IdentityFor(store), store)
	sess := session.New(store, channel, local.EventID, nil)

	renderer := NewRenderer(out, sess)
	store.Subscribe(renderer.OnSnapshot)
	channel.OnStatusChange(renderer.OnStatus)
	channel.OnReconnectScheduled(renderer.OnReconnect)

	return &Services{
		API:      api,
		Store:    store,
		Channel:  channel,
		Session:  sess,
		Mirror:   pub,
		Renderer: renderer,
	}
}

// Load seeds the session with the event's registered users and player pool
func (s *Services) Load(users []models.User, players []models.Player) {
	s.Session.SetUsers(users)
	s.Session.SetPlayers(players)

	snap := s.Store.Snapshot()
	s.Renderer.ConnectedAs(snap.Username(snap.LocalUserID), snap.LocalUserID)
}

func (s *Services) Close() {
	s.Session.Leave()
	if s.Mirror != nil {
		if err := s.Mirror.Close(); err != nil {
			log.Error().Err(err).Msg("failed to close event mirror")
		}
	}
}
