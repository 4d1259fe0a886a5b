package models

import (
	"time"
)

// User is a participant registered for a draft event
type User struct {
	ID        int       `json:"id"`
	EventID   int       `json:"eventID"`
	Username  string    `json:"username"`
	CreatedAt time.Time `json:"createdAt"`
}
