package session

import (
	"fmt"
	"time"

	"github.com/mcdev12/draftsync/go/internal/draft/protocol"
	"github.com/mcdev12/draftsync/go/internal/draft/state"
)

// Report is the admin status table
type Report struct {
	DraftStatus      state.DraftStatus `json:"draftStatus"`
	ConnectionStatus string            `json:"connectionStatus"`
	CurrentTurn      *protocol.UserID  `json:"currentTurn"`
	RoundNumber      int               `json:"roundNumber"`
	TotalRounds      int               `json:"totalRounds"`
	CurrentPickIndex int               `json:"currentPickIndex"`
	PickCount        int               `json:"pickCount"`
	TurnDeadline     *time.Time        `json:"turnDeadline"`
	LastError        string            `json:"lastError,omitempty"`
}

// Status builds the current report
func (s *Session) Status() Report {
	snap := s.store.Snapshot()
	return Report{
		DraftStatus:      snap.Status,
		ConnectionStatus: s.channel.Status().String(),
		CurrentTurn:      snap.CurrentTurn,
		RoundNumber:      snap.RoundNumber,
		TotalRounds:      snap.TotalRounds,
		CurrentPickIndex: snap.CurrentPickIndex,
		PickCount:        len(snap.PickHistory),
		TurnDeadline:     snap.TurnDeadline,
		LastError:        snap.LastError,
	}
}

// Users returns connected and registered participants
func (s *Session) Users() (connected, registered []state.User) {
	snap := s.store.Snapshot()
	for _, id := range snap.Connected() {
		connected = append(connected, state.User{ID: id, Username: snap.Username(id)})
	}
	registered = append(registered, snap.RegisteredUsers...)
	return connected, registered
}

// HistoryEntry is one pick as shown in the results list
type HistoryEntry struct {
	Label     string `json:"label"`
	Player    string `json:"player"`
	User      string `json:"user"`
	AutoDraft bool   `json:"autoDraft"`
}

// History returns the pick history newest first with R<round>P<slot> labels
func (s *Session) History() []HistoryEntry {
	snap := s.store.Snapshot()
	teams := len(snap.PickOrder)

	entries := make([]HistoryEntry, 0, len(snap.PickHistory))
	for i := len(snap.PickHistory) - 1; i >= 0; i-- {
		p := snap.PickHistory[i]
		slot := p.PickNumber
		if teams > 0 {
			slot = (p.PickNumber-1)%teams + 1
		}
		entries = append(entries, HistoryEntry{
			Label:     fmt.Sprintf("R%dP%d", p.Round, slot),
			Player:    s.PlayerName(p.PlayerID),
			User:      snap.Username(p.UserID),
			AutoDraft: p.AutoDraft,
		})
	}
	return entries
}
