package draftapi

import (
	"context"
	"fmt"

	"github.com/mcdev12/draftsync/go/internal/models"
)

func (c *Client) ListEvents(ctx context.Context) ([]models.Event, error) {
	var events []models.Event
	if err := c.GetJSON(ctx, EventsEndpoint, &events); err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}
	return events, nil
}

func (c *Client) GetEvent(ctx context.Context, id int) (*models.Event, error) {
	var event models.Event
	if err := c.GetJSON(ctx, fmt.Sprintf("%s/%d", EventsEndpoint, id), &event); err != nil {
		return nil, fmt.Errorf("failed to get event %d: %w", id, err)
	}
	return &event, nil
}

// ListEventPlayers returns the player pool of one event
func (c *Client) ListEventPlayers(ctx context.Context, eventID int) ([]models.Player, error) {
	var players []models.Player
	if err := c.GetJSON(ctx, fmt.Sprintf("%s/%d%s", EventsEndpoint, eventID, PlayersEndpoint), &players); err != nil {
		return nil, fmt.Errorf("failed to list players for event %d: %w", eventID, err)
	}
	return players, nil
}
