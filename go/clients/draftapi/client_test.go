package draftapi

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcdev12/draftsync/go/clients"
	"github.com/mcdev12/draftsync/go/internal/models"
)

func newTestServer(t *testing.T, routes map[string]string) (*Client, *atomic.Int32) {
	t.Helper()
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		body, ok := routes[r.URL.Path]
		if !ok {
			http.Error(w, `{"error": "not found"}`, http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	client := NewClient(srv.URL + "/")
	client.SetHTTPClient(srv.Client())
	return client, &hits
}

func TestClient_Resources(t *testing.T) {
	client, _ := newTestServer(t, map[string]string{
		"/events":           `[{"id":4,"name":"Sunday league","status":"not_started"}]`,
		"/events/4":         `{"id":4,"name":"Sunday league","status":"in_progress","totalRounds":2}`,
		"/events/4/players": `[{"id":101,"firstName":"Ada","lastName":"Lovelace"},{"id":102}]`,
		"/players":          `[{"id":101,"firstName":"Ada","lastName":"Lovelace"}]`,
		"/players/101":      `{"id":101,"firstName":"Ada","lastName":"Lovelace","position":"QB"}`,
		"/users":            `[{"id":7,"eventID":4,"username":"ana"},{"id":3,"eventID":4,"username":"bo"}]`,
		"/users/7":          `{"id":7,"eventID":4,"username":"ana"}`,
	})
	ctx := context.Background()

	events, err := client.ListEvents(ctx)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, models.EventStatusNotStarted, events[0].Status)

	event, err := client.GetEvent(ctx, 4)
	require.NoError(t, err)
	assert.Equal(t, 2, event.TotalRounds)

	pool, err := client.ListEventPlayers(ctx, 4)
	require.NoError(t, err)
	require.Len(t, pool, 2)
	assert.Equal(t, "Ada Lovelace", pool[0].DisplayName())
	assert.Equal(t, "Player 102", pool[1].DisplayName())

	players, err := client.ListPlayers(ctx)
	require.NoError(t, err)
	assert.Len(t, players, 1)

	player, err := client.GetPlayer(ctx, 101)
	require.NoError(t, err)
	assert.Equal(t, "QB", player.Position)

	users, err := client.ListUsers(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"ana", "bo"}, []string{users[0].Username, users[1].Username})

	user, err := client.GetUser(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, 4, user.EventID)
}

func TestClient_StatusErrorIsNotRetried(t *testing.T) {
	client, hits := newTestServer(t, map[string]string{})

	_, err := client.GetUser(context.Background(), 99)
	require.Error(t, err)

	var statusErr *clients.StatusError
	require.True(t, errors.As(err, &statusErr))
	assert.Equal(t, http.StatusNotFound, statusErr.StatusCode)
	assert.Equal(t, "HTTP 404: Not Found", statusErr.Error())
	assert.Contains(t, statusErr.Body, "not found")
	assert.Equal(t, int32(1), hits.Load())
}

func TestClient_MalformedBody(t *testing.T) {
	client, _ := newTestServer(t, map[string]string{"/users": `{"oops":`})

	_, err := client.ListUsers(context.Background())
	assert.ErrorContains(t, err, "failed to unmarshal")
}

func TestClient_ContextCancelled(t *testing.T) {
	client, _ := newTestServer(t, map[string]string{"/events": `[]`})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := client.ListEvents(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestClient_SendsUserAgent(t *testing.T) {
	agents := make(chan string, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		agents <- r.Header.Get("User-Agent")
		w.Write([]byte(`[]`))
	}))
	t.Cleanup(srv.Close)
	client := NewClient(srv.URL)

	_, err := client.ListUsers(context.Background())
	require.NoError(t, err)
	assert.Equal(t, UserAgent, <-agents)
}

func TestClient_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	t.Cleanup(srv.Close)
	client := NewClient(srv.URL)
	client.SetHTTPClient(srv.Client())
	client.SetTimeout(50 * time.Millisecond)

	_, err := client.ListEvents(context.Background())
	assert.ErrorContains(t, err, "Client.Timeout")
}
