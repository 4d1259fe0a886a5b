package state

import (
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/mcdev12/draftsync/go/internal/draft/protocol"
)

// DraftStatus is the client's view of where the draft is
type DraftStatus string

const (
	StatusIdle       DraftStatus = "idle"
	StatusInProgress DraftStatus = "in_progress"
	StatusPaused     DraftStatus = "paused"
	StatusCompleted  DraftStatus = "completed"
)

// User is a registered participant
type User struct {
	ID       protocol.UserID `json:"id"`
	Username string          `json:"username"`
}

// Pick is one confirmed selection. PickNumber is 1-based and dense.
type Pick struct {
	UserID     protocol.UserID   `json:"userID"`
	PlayerID   protocol.PlayerID `json:"playerID"`
	PickNumber int               `json:"pickNumber"`
	Round      int               `json:"round"`
	AutoDraft  bool              `json:"autoDraft"`
}

// PlayerSet is a set of player ids. A nil PlayerSet means the set is unknown,
// which is different from a known empty set.
type PlayerSet map[protocol.PlayerID]struct{}

// NewPlayerSet builds a known set from ids. It never returns nil.
func NewPlayerSet(ids ...protocol.PlayerID) PlayerSet {
	set := make(PlayerSet, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}

// Known reports whether the set carries information
func (ps PlayerSet) Known() bool {
	return ps != nil
}

// Contains reports membership; always false for an unknown set
func (ps PlayerSet) Contains(id protocol.PlayerID) bool {
	_, ok := ps[id]
	return ok
}

// Sorted returns the members in ascending order, nil for an unknown set
func (ps PlayerSet) Sorted() []protocol.PlayerID {
	if ps == nil {
		return nil
	}
	ids := make([]protocol.PlayerID, 0, len(ps))
	for id := range ps {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// Snapshot is the local read model of a draft. Values are treated as
// immutable: Reduce returns a new Snapshot and never writes into the slices
// or maps of its input.
type Snapshot struct {
	Status           DraftStatus
	PickOrder        []protocol.UserID
	CurrentTurn      *protocol.UserID
	RoundNumber      int
	TotalRounds      int
	CurrentPickIndex int
	Available        PlayerSet
	PickHistory      []Pick
	TurnDeadline     *time.Time
	RemainingTime    time.Duration
	ConnectedUserIDs map[protocol.UserID]struct{}
	RegisteredUsers  []User
	LocalUserID      protocol.UserID
	LastError        string
}

// NewSnapshot returns the idle snapshot for a participant joining a draft
func NewSnapshot(local protocol.UserID) Snapshot {
	return Snapshot{
		Status:           StatusIdle,
		ConnectedUserIDs: map[protocol.UserID]struct{}{},
		LocalUserID:      local,
	}
}

// IsConnected reports whether a participant has a live connection
func (s Snapshot) IsConnected(id protocol.UserID) bool {
	_, ok := s.ConnectedUserIDs[id]
	return ok
}

// Connected returns connected user ids in ascending order
func (s Snapshot) Connected() []protocol.UserID {
	ids := make([]protocol.UserID, 0, len(s.ConnectedUserIDs))
	for id := range s.ConnectedUserIDs {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// IsMyTurn reports whether the local participant is on the clock
func (s Snapshot) IsMyTurn() bool {
	return s.Status == StatusInProgress && s.CurrentTurn != nil && *s.CurrentTurn == s.LocalUserID
}

// Username resolves a display name, falling back to "User <id>"
func (s Snapshot) Username(id protocol.UserID) string {
	for _, u := range s.RegisteredUsers {
		if u.ID == id && u.Username != "" {
			return u.Username
		}
	}
	return fmt.Sprintf("User %d", id)
}

// IsRegistered reports whether id belongs to a known user
func (s Snapshot) IsRegistered(id protocol.UserID) bool {
	return slices.ContainsFunc(s.RegisteredUsers, func(u User) bool { return u.ID == id })
}

// PickedPlayers returns the set of players already taken
func (s Snapshot) PickedPlayers() PlayerSet {
	picked := make(PlayerSet, len(s.PickHistory))
	for _, p := range s.PickHistory {
		picked[p.PlayerID] = struct{}{}
	}
	return picked
}

// Validate reports every invariant the snapshot violates, joined into one
// error, or nil when the snapshot is consistent.
func (s Snapshot) Validate() error {
	var errs []error

	if s.Status == StatusInProgress && s.CurrentTurn != nil && !slices.Contains(s.PickOrder, *s.CurrentTurn) {
		errs = append(errs, fmt.Errorf("current turn %d is not in pick order", *s.CurrentTurn))
	}

	if s.Available.Known() {
		for _, p := range s.PickHistory {
			if s.Available.Contains(p.PlayerID) {
				errs = append(errs, fmt.Errorf("player %d is both picked and available", p.PlayerID))
			}
		}
	}

	for id := range s.ConnectedUserIDs {
		if id != s.LocalUserID && !s.IsRegistered(id) {
			errs = append(errs, fmt.Errorf("connected user %d is not registered", id))
		}
	}

	if s.TurnDeadline != nil && s.Status != StatusInProgress {
		errs = append(errs, fmt.Errorf("turn deadline set while %s", s.Status))
	}
	if s.RemainingTime != 0 && s.Status != StatusPaused {
		errs = append(errs, fmt.Errorf("remaining time set while %s", s.Status))
	}

	for i, p := range s.PickHistory {
		if p.PickNumber != i+1 {
			errs = append(errs, fmt.Errorf("pick at position %d has number %d", i+1, p.PickNumber))
			break
		}
	}

	return errors.Join(errs...)
}
