// Package draftapi reads draft reference data (events, players, users) from
// the draft server's REST API. It never retries; callers decide what a
// failure means.
package draftapi

import (
	"github.com/mcdev12/draftsync/go/clients"
)

// UserAgent identifies this client to the draft server
const UserAgent = "draftsync"

type Client struct {
	*clients.BaseClient
}

func NewClient(baseURL string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	base := clients.NewBaseClient(baseURL)
	base.SetHeader("User-Agent", UserAgent)
	return &Client{
		BaseClient: base,
	}
}
