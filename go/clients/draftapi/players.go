package draftapi

import (
	"context"
	"fmt"

	"github.com/mcdev12/draftsync/go/internal/models"
)

func (c *Client) ListPlayers(ctx context.Context) ([]models.Player, error) {
	var players []models.Player
	if err := c.GetJSON(ctx, PlayersEndpoint, &players); err != nil {
		return nil, fmt.Errorf("failed to list players: %w", err)
	}
	return players, nil
}

func (c *Client) GetPlayer(ctx context.Context, id int) (*models.Player, error) {
	var player models.Player
	if err := c.GetJSON(ctx, fmt.Sprintf("%s/%d", PlayersEndpoint, id), &player); err != nil {
		return nil, fmt.Errorf("failed to get player %d: %w", id, err)
	}
	return &player, nil
}
