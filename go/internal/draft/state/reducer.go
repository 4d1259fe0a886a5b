package state

import (
	"maps"
	"slices"
	"time"

	"github.com/mcdev12/draftsync/go/internal/draft/protocol"
)

// Reduce folds one server event into a snapshot and returns the result. It is
// pure: the input is never modified and the same inputs always give the same
// output. Events the client does not understand return s unchanged.
//
// A completed draft ignores incremental draft events; a draft_state resync is
// authoritative and always applied.
// Applies reports whether Reduce takes evt into account for s. A completed
// draft only accepts full state, presence changes and errors.
func Applies(s Snapshot, evt protocol.Event) bool {
	switch evt.(type) {
	case protocol.UnknownEvent:
		return false
	case protocol.DraftStateEvent, protocol.UserJoinedEvent, protocol.UserLeftEvent, protocol.ErrorEvent:
		return true
	}
	return s.Status != StatusCompleted
}

func Reduce(s Snapshot, evt protocol.Event) Snapshot {
	switch e := evt.(type) {
	case protocol.DraftStateEvent:
		return applyDraftState(s, e)
	case protocol.UserJoinedEvent:
		return applyUserJoined(s, e)
	case protocol.UserLeftEvent:
		return applyUserLeft(s, e)
	case protocol.ErrorEvent:
		s.LastError = e.Error
		return s
	}

	if !Applies(s, evt) {
		return s
	}

	switch e := evt.(type) {
	case protocol.DraftStartedEvent:
		return applyDraftStarted(s, e)
	case protocol.PickMadeEvent:
		return applyPickMade(s, e)
	case protocol.TurnChangedEvent:
		turn := e.CurrentTurn
		s.CurrentTurn = &turn
		s.RoundNumber = e.RoundNumber
		if s.Status == StatusInProgress {
			s.TurnDeadline = deadlineFromWire(e.TurnDeadline)
		}
		return s
	case protocol.DraftCompletedEvent:
		s.Status = StatusCompleted
		s.TotalRounds = e.TotalRounds
		s.CurrentTurn = nil
		s.TurnDeadline = nil
		s.RemainingTime = 0
		return s
	case protocol.DraftPausedEvent:
		s.Status = StatusPaused
		s.RemainingTime = secondsToDuration(e.RemainingTime)
		s.TurnDeadline = nil
		return s
	case protocol.DraftResumedEvent:
		turn := e.CurrentTurn
		s.Status = StatusInProgress
		s.CurrentTurn = &turn
		s.RoundNumber = e.RoundNumber
		s.TurnDeadline = deadlineFromWire(e.TurnDeadline)
		s.RemainingTime = 0
		return s
	default:
		return s
	}
}

func applyDraftStarted(s Snapshot, e protocol.DraftStartedEvent) Snapshot {
	turn := e.CurrentTurn
	s.Status = StatusInProgress
	s.CurrentTurn = &turn
	s.RoundNumber = e.RoundNumber
	s.TurnDeadline = deadlineFromWire(e.TurnDeadline)
	s.RemainingTime = 0
	s.PickOrder = slices.Clone(e.PickOrder)
	s.TotalRounds = e.TotalRounds
	s.Available = availableFromWire(e.AvailablePlayers, s.PickHistory)
	s.LastError = ""
	return s
}

func applyDraftState(s Snapshot, e protocol.DraftStateEvent) Snapshot {
	s.Status = statusFromWire(e.Status)
	s.CurrentTurn = nil
	if e.CurrentTurn != nil {
		turn := *e.CurrentTurn
		s.CurrentTurn = &turn
	}
	s.RoundNumber = e.RoundNumber
	s.TotalRounds = e.TotalRounds
	s.CurrentPickIndex = e.CurrentPickIndex
	s.PickOrder = slices.Clone(e.PickOrder)

	s.PickHistory = make([]Pick, 0, len(e.PickHistory))
	for i, p := range e.PickHistory {
		s.PickHistory = append(s.PickHistory, Pick{
			UserID:     p.UserID,
			PlayerID:   p.PlayerID,
			PickNumber: i + 1,
			Round:      p.Round,
			AutoDraft:  p.AutoDraft,
		})
	}
	s.Available = availableFromWire(e.AvailablePlayers, s.PickHistory)

	s.TurnDeadline = nil
	s.RemainingTime = 0
	switch s.Status {
	case StatusInProgress:
		s.TurnDeadline = deadlineFromWire(e.TurnDeadline)
	case StatusPaused:
		s.RemainingTime = secondsToDuration(e.RemainingTime)
	}

	s.ConnectedUserIDs = make(map[protocol.UserID]struct{}, len(e.ConnectedUserIDs))
	for _, id := range e.ConnectedUserIDs {
		if id == s.LocalUserID || s.IsRegistered(id) {
			s.ConnectedUserIDs[id] = struct{}{}
		}
	}

	s.LastError = ""
	return s
}

func applyPickMade(s Snapshot, e protocol.PickMadeEvent) Snapshot {
	history := make([]Pick, len(s.PickHistory), len(s.PickHistory)+1)
	copy(history, s.PickHistory)
	s.PickHistory = append(history, Pick{
		UserID:     e.UserID,
		PlayerID:   e.PlayerID,
		PickNumber: len(history) + 1,
		Round:      e.Round,
		AutoDraft:  e.AutoDraft,
	})

	if s.Available.Contains(e.PlayerID) {
		available := maps.Clone(s.Available)
		delete(available, e.PlayerID)
		s.Available = available
	}
	return s
}

func applyUserJoined(s Snapshot, e protocol.UserJoinedEvent) Snapshot {
	if s.IsConnected(e.UserID) {
		return s
	}

	if !s.IsRegistered(e.UserID) {
		registered := make([]User, len(s.RegisteredUsers), len(s.RegisteredUsers)+1)
		copy(registered, s.RegisteredUsers)
		s.RegisteredUsers = append(registered, User{ID: e.UserID, Username: e.Username})
	}

	connected := maps.Clone(s.ConnectedUserIDs)
	if connected == nil {
		connected = map[protocol.UserID]struct{}{}
	}
	connected[e.UserID] = struct{}{}
	s.ConnectedUserIDs = connected
	return s
}

func applyUserLeft(s Snapshot, e protocol.UserLeftEvent) Snapshot {
	if !s.IsConnected(e.UserID) {
		return s
	}
	connected := maps.Clone(s.ConnectedUserIDs)
	delete(connected, e.UserID)
	s.ConnectedUserIDs = connected
	return s
}

func statusFromWire(status string) DraftStatus {
	switch status {
	case protocol.WireStatusInProgress:
		return StatusInProgress
	case protocol.WireStatusPaused:
		return StatusPaused
	case protocol.WireStatusNotStarted:
		return StatusIdle
	default:
		return StatusCompleted
	}
}

// availableFromWire keeps a nil wire list as "unknown" and drops anything
// already in the pick history.
func availableFromWire(ids []protocol.PlayerID, history []Pick) PlayerSet {
	if ids == nil {
		return nil
	}
	set := NewPlayerSet(ids...)
	for _, p := range history {
		delete(set, p.PlayerID)
	}
	return set
}

func deadlineFromWire(unixSeconds *int64) *time.Time {
	if unixSeconds == nil {
		return nil
	}
	t := time.Unix(*unixSeconds, 0)
	return &t
}

func secondsToDuration(seconds float64) time.Duration {
	if seconds <= 0 {
		return 0
	}
	return time.Duration(seconds * float64(time.Second))
}
