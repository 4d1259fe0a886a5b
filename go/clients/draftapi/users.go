package draftapi

import (
	"context"
	"fmt"

	"github.com/mcdev12/draftsync/go/internal/models"
)

func (c *Client) ListUsers(ctx context.Context) ([]models.User, error) {
	var users []models.User
	if err := c.GetJSON(ctx, UsersEndpoint, &users); err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return users, nil
}

func (c *Client) GetUser(ctx context.Context, id int) (*models.User, error) {
	var user models.User
	if err := c.GetJSON(ctx, fmt.Sprintf("%s/%d", UsersEndpoint, id), &user); err != nil {
		return nil, fmt.Errorf("failed to get user %d: %w", id, err)
	}
	return &user, nil
}
