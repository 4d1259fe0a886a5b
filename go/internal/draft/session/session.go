// Package session ties the local participant, the draft channel and the
// snapshot store together and exposes the operations a participant or admin
// can perform.
package session

import (
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/mcdev12/draftsync/go/internal/draft/gateway"
	"github.com/mcdev12/draftsync/go/internal/draft/protocol"
	"github.com/mcdev12/draftsync/go/internal/draft/state"
	"github.com/mcdev12/draftsync/go/internal/models"
)

// ErrInvalidStart is returned for a start request the server would reject
var ErrInvalidStart = errors.New("invalid start parameters")

// Channel is what a session needs from the connection manager
type Channel interface {
	Connect()
	Disconnect()
	ReconnectNow()
	SendMessage(cmd protocol.Command) error
	Status() gateway.Status
}

// Session is one participant's view of one draft event
type Session struct {
	store   *state.Store
	channel Channel
	eventID int
	picker  AutoPickStrategy

	mu      sync.RWMutex
	players map[protocol.PlayerID]models.Player
	pool    []protocol.PlayerID
}

// New creates a session. picker may be nil, in which case autopick chooses
// at random.
func New(store *state.Store, channel Channel, eventID int, picker AutoPickStrategy) *Session {
	if picker == nil {
		picker = NewRandomStrategy()
	}
	return &Session{
		store:   store,
		channel: channel,
		eventID: eventID,
		picker:  picker,
		players: make(map[protocol.PlayerID]models.Player),
	}
}

// IdentityFor builds the channel handshake from the store: the local user id
// and, once registered users are known, its display name.
func IdentityFor(store *state.Store) gateway.IdentityProvider {
	return gateway.IdentityFunc(func() (gateway.Identity, bool) {
		s := store.Snapshot()
		if s.LocalUserID <= 0 {
			return gateway.Identity{}, false
		}
		id := gateway.Identity{UserID: s.LocalUserID}
		for _, u := range s.RegisteredUsers {
			if u.ID == s.LocalUserID {
				id.Username = u.Username
			}
		}
		return id, true
	})
}

func (s *Session) Store() *state.Store { return s.store }

func (s *Session) EventID() int { return s.eventID }

// ConnectionStatus reports the draft channel status
func (s *Session) ConnectionStatus() gateway.Status {
	return s.channel.Status()
}

func (s *Session) Connect()      { s.channel.Connect() }
func (s *Session) Disconnect()   { s.channel.Disconnect() }
func (s *Session) ReconnectNow() { s.channel.ReconnectNow() }

// Leave closes the channel and drops the draft state, keeping the
// registered users so a later Connect starts from a clean snapshot.
func (s *Session) Leave() {
	s.channel.Disconnect()
	s.store.Reset()
}

// SetUsers loads the registered participants into the store
func (s *Session) SetUsers(users []models.User) {
	registered := make([]state.User, 0, len(users))
	for _, u := range users {
		registered = append(registered, state.User{ID: protocol.UserID(u.ID), Username: u.Username})
	}
	s.store.SetRegisteredUsers(registered)
}

// SetPlayers loads the event's player pool, used to name players and to seed
// the available list when starting a draft.
func (s *Session) SetPlayers(players []models.Player) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.players = make(map[protocol.PlayerID]models.Player, len(players))
	s.pool = make([]protocol.PlayerID, 0, len(players))
	for _, p := range players {
		id := protocol.PlayerID(p.ID)
		if _, dup := s.players[id]; dup {
			continue
		}
		s.players[id] = p
		s.pool = append(s.pool, id)
	}
}

// PlayerName resolves a player id for display
func (s *Session) PlayerName(id protocol.PlayerID) string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if p, ok := s.players[id]; ok {
		return p.DisplayName()
	}
	return fmt.Sprintf("Player %d", id)
}

// Player looks up a pool player
func (s *Session) Player(id protocol.PlayerID) (models.Player, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.players[id]
	return p, ok
}

// StartDraft asks the server to begin. An empty pickOrder uses the
// registered users in id order.
func (s *Session) StartDraft(pickOrder []protocol.UserID, totalRounds int, timer time.Duration) error {
	if len(pickOrder) == 0 {
		for _, u := range s.store.Snapshot().RegisteredUsers {
			pickOrder = append(pickOrder, u.ID)
		}
		slices.Sort(pickOrder)
	}
	if len(pickOrder) == 0 {
		return fmt.Errorf("%w: no participants in pick order", ErrInvalidStart)
	}
	if totalRounds <= 0 {
		return fmt.Errorf("%w: total rounds must be positive", ErrInvalidStart)
	}
	if timer < time.Second {
		return fmt.Errorf("%w: pick timer must be at least one second", ErrInvalidStart)
	}

	s.mu.RLock()
	pool := slices.Clone(s.pool)
	s.mu.RUnlock()
	if pool == nil {
		pool = []protocol.PlayerID{}
	}

	return s.send(protocol.StartDraftCommand{
		EventID:          s.eventID,
		PickOrder:        pickOrder,
		TotalRounds:      totalRounds,
		TimerDuration:    int(timer / time.Second),
		AvailablePlayers: pool,
	})
}

func (s *Session) Pause() error  { return s.send(protocol.PauseDraftCommand{}) }
func (s *Session) Resume() error { return s.send(protocol.ResumeDraftCommand{}) }

// Pick submits a selection on behalf of user. The snapshot only changes when
// the server confirms it with pick_made.
func (s *Session) Pick(user protocol.UserID, player protocol.PlayerID) error {
	return s.send(protocol.MakePickCommand{UserID: user, PlayerID: player})
}

// PickForMe submits a selection for the local participant
func (s *Session) PickForMe(player protocol.PlayerID) error {
	return s.Pick(s.store.Snapshot().LocalUserID, player)
}

// Autopick picks for whoever is on the clock using the session strategy
func (s *Session) Autopick() (protocol.UserID, protocol.PlayerID, error) {
	user, player, err := s.picker.Choose(s.store.Snapshot())
	if err != nil {
		log.Warn().Err(err).Msg("autopick skipped")
		return 0, 0, err
	}
	log.Info().
		Int("user_id", int(user)).
		Int("player_id", int(player)).
		Msg("autopicking player")
	return user, player, s.Pick(user, player)
}

func (s *Session) send(cmd protocol.Command) error {
	if err := s.channel.SendMessage(cmd); err != nil {
		return fmt.Errorf("send %s: %w", cmd.Type(), err)
	}
	return nil
}
