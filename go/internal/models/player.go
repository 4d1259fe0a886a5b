package models

import (
	"fmt"
	"strings"
)

// Player represents a draftable player
type Player struct {
	ID        int    `json:"id"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Position  string `json:"position,omitempty"`
	Team      string `json:"team,omitempty"`
	Status    string `json:"status,omitempty"`
}

// DisplayName returns "First Last", or "Player <id>" when no name is known
func (p Player) DisplayName() string {
	name := strings.TrimSpace(p.FirstName + " " + p.LastName)
	if name == "" {
		return fmt.Sprintf("Player %d", p.ID)
	}
	return name
}
