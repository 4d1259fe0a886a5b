package main

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/mcdev12/draftsync/go/internal/draft/countdown"
	"github.com/mcdev12/draftsync/go/internal/draft/gateway"
	"github.com/mcdev12/draftsync/go/internal/draft/protocol"
	"github.com/mcdev12/draftsync/go/internal/draft/state"
)

// playerNamer resolves player ids to display names
type playerNamer interface {
	PlayerName(id protocol.PlayerID) string
}

// Renderer prints state transitions to the terminal. It only prints what
// changed since the previous snapshot.
type Renderer struct {
	out     io.Writer
	players playerNamer

	mu        sync.Mutex
	status    state.DraftStatus
	turn      protocol.UserID
	picks     int
	lastError string
	clock     string
}

func NewRenderer(out io.Writer, players playerNamer) *Renderer {
	return &Renderer{
		out:     out,
		players: players,
		status:  state.StatusIdle,
	}
}

// OnSnapshot is subscribed to the state store
func (r *Renderer) OnSnapshot(s state.Snapshot) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, p := range s.PickHistory[min(r.picks, len(s.PickHistory)):] {
		line := fmt.Sprintf("pick %d (round %d): %s -> %s", p.PickNumber, p.Round, s.Username(p.UserID), r.players.PlayerName(p.PlayerID))
		if p.AutoDraft {
			line += " (auto)"
		}
		fmt.Fprintln(r.out, line)
	}
	r.picks = len(s.PickHistory)

	if s.Status != r.status {
		fmt.Fprintf(r.out, "draft %s\n", statusLabel(s.Status))
		r.status = s.Status
		r.clock = ""
	}

	var turn protocol.UserID
	if s.CurrentTurn != nil && s.Status == state.StatusInProgress {
		turn = *s.CurrentTurn
	}
	if turn != r.turn {
		switch {
		case turn == 0:
		case s.IsMyTurn():
			fmt.Fprintln(r.out, "*** YOUR TURN ***")
		default:
			fmt.Fprintf(r.out, "on the clock: %s\n", s.Username(turn))
		}
		r.turn = turn
	}

	if s.LastError != r.lastError {
		if s.LastError != "" {
			fmt.Fprintf(r.out, "server error: %s\n", s.LastError)
		}
		r.lastError = s.LastError
	}
}

// OnCountdown is the countdown ticker callback. Only paused, urgent and
// quarter-minute readings are printed.
func (r *Renderer) OnCountdown(reading countdown.Reading) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !reading.Shown || reading.Text == r.clock {
		return
	}
	r.clock = reading.Text
	if reading.Paused || reading.Urgent || reading.Seconds%15 == 0 {
		fmt.Fprintf(r.out, "clock %s\n", reading.Text)
	}
}

// OnStatus is the connection status hook
func (r *Renderer) OnStatus(status gateway.Status) {
	r.mu.Lock()
	defer r.mu.Unlock()
	fmt.Fprintf(r.out, "channel %s\n", status)
}

// OnReconnect is the reconnect-scheduled hook
func (r *Renderer) OnReconnect(attempt int, delay time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	fmt.Fprintf(r.out, "reconnecting in %s (attempt %d)\n", delay, attempt)
}

// ConnectedAs prints the identity line shown once the participant is known
func (r *Renderer) ConnectedAs(username string, id protocol.UserID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	fmt.Fprintf(r.out, "Connected as %s (user %d)\n", username, id)
}

func statusLabel(s state.DraftStatus) string {
	switch s {
	case state.StatusInProgress:
		return "in progress"
	case state.StatusPaused:
		return "paused"
	case state.StatusCompleted:
		return "completed"
	default:
		return "idle"
	}
}
