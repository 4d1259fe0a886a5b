package inspect

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcdev12/draftsync/go/internal/draft/gateway"
	"github.com/mcdev12/draftsync/go/internal/draft/protocol"
	"github.com/mcdev12/draftsync/go/internal/draft/session"
	"github.com/mcdev12/draftsync/go/internal/draft/state"
	"github.com/mcdev12/draftsync/go/internal/models"
)

type idleChannel struct{}

func (idleChannel) Connect()                           {}
func (idleChannel) Disconnect()                        {}
func (idleChannel) ReconnectNow()                      {}
func (idleChannel) Status() gateway.Status             { return gateway.StatusConnected }
func (idleChannel) SendMessage(protocol.Command) error { return nil }

func newView(t *testing.T) *session.Session {
	t.Helper()
	store := state.NewStore(7)
	s := session.New(store, idleChannel{}, 4, session.NewRandomStrategy())
	s.SetUsers([]models.User{{ID: 7, Username: "ana"}, {ID: 3, Username: "bo"}})
	s.SetPlayers([]models.Player{{ID: 101, FirstName: "Ada", LastName: "Lovelace"}})
	return s
}

func TestStateHandler_GetState(t *testing.T) {
	view := newView(t)
	now := time.Unix(1_700_000_000, 0)
	deadline := now.Add(15 * time.Second).Unix()
	view.Store().Dispatch(protocol.UserJoinedEvent{UserID: 7, Username: "ana"})
	view.Store().Dispatch(protocol.DraftStartedEvent{
		CurrentTurn:      7,
		RoundNumber:      1,
		PickOrder:        []protocol.UserID{7, 3},
		TotalRounds:      1,
		AvailablePlayers: []protocol.PlayerID{101, 102},
		TurnDeadline:     &deadline,
	})

	h := NewStateHandler(view)
	h.clock = clockwork.NewFakeClockAt(now)

	rec := httptest.NewRecorder()
	h.HandleGetState(rec, httptest.NewRequest(http.MethodGet, "/api/draft/state", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var resp StateResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 4, resp.EventID)
	assert.True(t, resp.IsMyTurn)
	assert.True(t, resp.AvailableKnown)
	assert.Equal(t, []protocol.PlayerID{101, 102}, resp.Available)
	assert.Equal(t, state.StatusInProgress, resp.Report.DraftStatus)
	assert.Equal(t, "connected", resp.Report.ConnectionStatus)
	assert.Equal(t, []state.User{{ID: 7, Username: "ana"}}, resp.ConnectedUsers)
	require.NotNil(t, resp.Countdown)
	assert.Equal(t, "0:15", resp.Countdown.Text)
	assert.False(t, resp.Countdown.Paused)
}

func TestStateHandler_IdleHasNoCountdown(t *testing.T) {
	h := NewStateHandler(newView(t))

	rec := httptest.NewRecorder()
	h.HandleGetState(rec, httptest.NewRequest(http.MethodGet, "/api/draft/state", nil))

	var resp StateResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Nil(t, resp.Countdown)
	assert.False(t, resp.AvailableKnown)
	assert.Equal(t, state.StatusIdle, resp.Report.DraftStatus)
}

func TestStateHandler_MethodNotAllowed(t *testing.T) {
	h := NewStateHandler(newView(t))

	rec := httptest.NewRecorder()
	h.HandleGetState(rec, httptest.NewRequest(http.MethodPost, "/api/draft/state", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestNewHandler_Routes(t *testing.T) {
	view := newView(t)
	view.Store().Dispatch(protocol.DraftStartedEvent{
		CurrentTurn: 7,
		RoundNumber: 1,
		PickOrder:   []protocol.UserID{7, 3},
		TotalRounds: 1,
	})
	view.Store().Dispatch(protocol.PickMadeEvent{UserID: 7, PlayerID: 101, Round: 1})

	srv := httptest.NewServer(NewHandler(view))
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/health")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	req, err := http.NewRequest(http.MethodGet, srv.URL+"/api/draft/picks", nil)
	require.NoError(t, err)
	req.Header.Set("Origin", "http://localhost:3000")
	resp, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))

	var picks []session.HistoryEntry
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&picks))
	assert.Equal(t, []session.HistoryEntry{{Label: "R1P1", Player: "Ada Lovelace", User: "ana"}}, picks)
}
