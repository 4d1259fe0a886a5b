// Package inspect serves a read-only JSON view of the local draft session.
package inspect

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"

	"github.com/mcdev12/draftsync/go/internal/draft/countdown"
	"github.com/mcdev12/draftsync/go/internal/draft/protocol"
	"github.com/mcdev12/draftsync/go/internal/draft/session"
	"github.com/mcdev12/draftsync/go/internal/draft/state"
)

// SessionView is what the handler reads from a running session
type SessionView interface {
	EventID() int
	Status() session.Report
	Users() (connected, registered []state.User)
	History() []session.HistoryEntry
	Store() *state.Store
}

// StateResponse is the body of GET /api/draft/state
type StateResponse struct {
	EventID         int                    `json:"eventID"`
	LocalUserID     protocol.UserID        `json:"localUserID"`
	IsMyTurn        bool                   `json:"isMyTurn"`
	Report          session.Report         `json:"report"`
	PickOrder       []protocol.UserID      `json:"pickOrder"`
	Available       []protocol.PlayerID    `json:"availablePlayers"`
	AvailableKnown  bool                   `json:"availableKnown"`
	ConnectedUsers  []state.User           `json:"connectedUsers"`
	RegisteredUsers []state.User           `json:"registeredUsers"`
	Countdown       *CountdownInfo         `json:"countdown,omitempty"`
	RecentPicks     []session.HistoryEntry `json:"recentPicks"`
	GeneratedAt     time.Time              `json:"generatedAt"`
}

// CountdownInfo is the projected clock at response time
type CountdownInfo struct {
	Text    string `json:"text"`
	Seconds int    `json:"seconds"`
	Paused  bool   `json:"paused"`
	Urgent  bool   `json:"urgent"`
}

// StateHandler handles HTTP requests for the local draft state
type StateHandler struct {
	view  SessionView
	clock clockwork.Clock
}

func NewStateHandler(view SessionView) *StateHandler {
	return &StateHandler{
		view:  view,
		clock: clockwork.NewRealClock(),
	}
}

// HandleGetState handles GET /api/draft/state
func (h *StateHandler) HandleGetState(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	now := h.clock.Now()
	snap := h.view.Store().Snapshot()
	connected, registered := h.view.Users()

	resp := StateResponse{
		EventID:         h.view.EventID(),
		LocalUserID:     snap.LocalUserID,
		IsMyTurn:        snap.IsMyTurn(),
		Report:          h.view.Status(),
		PickOrder:       snap.PickOrder,
		Available:       snap.Available.Sorted(),
		AvailableKnown:  snap.Available.Known(),
		ConnectedUsers:  connected,
		RegisteredUsers: registered,
		RecentPicks:     h.view.History(),
		GeneratedAt:     now.UTC(),
	}
	if reading := countdown.Project(snap, now); reading.Shown {
		resp.Countdown = &CountdownInfo{
			Text:    reading.Text,
			Seconds: reading.Seconds,
			Paused:  reading.Paused,
			Urgent:  reading.Urgent,
		}
	}

	writeJSON(w, resp)
}

// HandleGetHistory handles GET /api/draft/picks
func (h *StateHandler) HandleGetHistory(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, h.view.History())
}

// RegisterRoutes registers the inspect routes on mux
func (h *StateHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/api/draft/state", h.HandleGetState)
	mux.HandleFunc("/api/draft/picks", h.HandleGetHistory)
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("failed to encode inspect response")
	}
}
