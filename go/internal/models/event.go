package models

import "time"

// EventStatus is the lifecycle state of a draft event as stored by the server
type EventStatus string

const (
	EventStatusNotStarted EventStatus = "not_started"
	EventStatusInProgress EventStatus = "in_progress"
	EventStatusPaused     EventStatus = "paused"
	EventStatusCompleted  EventStatus = "completed"
)

// Event is one draft: a set of participants drafting from a player pool
type Event struct {
	ID            int         `json:"id"`
	Name          string      `json:"name"`
	Status        EventStatus `json:"status"`
	MaxUsers      int         `json:"maxUsers,omitempty"`
	TotalRounds   int         `json:"totalRounds,omitempty"`
	TimerDuration int         `json:"timerDuration,omitempty"` // seconds per pick
	CreatedAt     time.Time   `json:"createdAt"`
}
