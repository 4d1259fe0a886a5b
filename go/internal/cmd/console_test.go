package main

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcdev12/draftsync/go/internal/draft/gateway"
	"github.com/mcdev12/draftsync/go/internal/draft/protocol"
	"github.com/mcdev12/draftsync/go/internal/draft/session"
	"github.com/mcdev12/draftsync/go/internal/draft/state"
	"github.com/mcdev12/draftsync/go/internal/models"
)

type recordingChannel struct {
	status     gateway.Status
	sent       []protocol.Command
	reconnects int
}

func (c *recordingChannel) Connect()               { c.status = gateway.StatusConnected }
func (c *recordingChannel) Disconnect()            { c.status = gateway.StatusDisconnected }
func (c *recordingChannel) ReconnectNow()          { c.reconnects++; c.Connect() }
func (c *recordingChannel) Status() gateway.Status { return c.status }

func (c *recordingChannel) SendMessage(cmd protocol.Command) error {
	if c.status != gateway.StatusConnected {
		return gateway.ErrNotConnected
	}
	c.sent = append(c.sent, cmd)
	return nil
}

func TestParseCommand(t *testing.T) {
	tests := []struct {
		line string
		want command
	}{
		{"", command{kind: cmdHelp}},
		{"start", command{kind: cmdStart, rounds: defaultRounds, timer: defaultTimer}},
		{"start 2 90", command{kind: cmdStart, rounds: 2, timer: 90 * time.Second}},
		{"START 1 30 3,7", command{kind: cmdStart, rounds: 1, timer: 30 * time.Second, pickOrder: []protocol.UserID{3, 7}}},
		{"pause", command{kind: cmdPause}},
		{"resume", command{kind: cmdResume}},
		{"pick 101", command{kind: cmdPick, player: 101}},
		{"pick 3 101", command{kind: cmdPick, user: 3, hasUser: true, player: 101}},
		{"autopick", command{kind: cmdAutopick}},
		{"status", command{kind: cmdStatus}},
		{"users", command{kind: cmdUsers}},
		{"history", command{kind: cmdHistory}},
		{"reconnect", command{kind: cmdReconnect}},
		{"quit", command{kind: cmdQuit}},
	}

	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			got, err := parseCommand(tt.line)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseCommand_Errors(t *testing.T) {
	for _, line := range []string{"draft", "pick", "pick a", "pick 1 2 3", "start x", "start 1 y", "start 1 2 3,z", "pick -4"} {
		_, err := parseCommand(line)
		assert.Error(t, err, line)
	}

	_, err := parseCommand("draft")
	assert.ErrorIs(t, err, errUnknownCommand)
}

func newConsole(t *testing.T) (*Console, *recordingChannel, *bytes.Buffer) {
	t.Helper()
	channel := &recordingChannel{status: gateway.StatusConnected}
	sess := session.New(state.NewStore(7), channel, 4, nil)
	sess.SetUsers([]models.User{{ID: 7, Username: "ana"}, {ID: 3, Username: "bo"}})
	sess.SetPlayers([]models.Player{{ID: 101, FirstName: "Ada", LastName: "Lovelace"}})
	out := &bytes.Buffer{}
	return NewConsole(sess, out), channel, out
}

func TestConsole_Run(t *testing.T) {
	c, channel, out := newConsole(t)

	input := strings.Join([]string{
		"start 1 45",
		"pick 101",
		"pick 3 102",
		"pause",
		"bogus",
		"reconnect",
		"quit",
		"resume",
	}, "\n")
	require.NoError(t, c.Run(context.Background(), strings.NewReader(input)))

	assert.Equal(t, []protocol.Command{
		protocol.StartDraftCommand{
			EventID:          4,
			PickOrder:        []protocol.UserID{3, 7},
			TotalRounds:      1,
			TimerDuration:    45,
			AvailablePlayers: []protocol.PlayerID{101},
		},
		protocol.MakePickCommand{UserID: 7, PlayerID: 101},
		protocol.MakePickCommand{UserID: 3, PlayerID: 102},
		protocol.PauseDraftCommand{},
	}, channel.sent)
	assert.Equal(t, 1, channel.reconnects)
	assert.Contains(t, out.String(), `unknown command: "bogus"`)
}

func TestConsole_ReportsErrors(t *testing.T) {
	c, channel, out := newConsole(t)
	channel.status = gateway.StatusDisconnected

	require.NoError(t, c.Run(context.Background(), strings.NewReader("pause\nautopick\n")))

	assert.Empty(t, channel.sent)
	assert.Contains(t, out.String(), "draft channel is not connected")
	assert.Contains(t, out.String(), "error: draft is not in progress")
}

func TestConsole_StatusUsersHistory(t *testing.T) {
	c, _, out := newConsole(t)
	store := c.session.Store()
	store.Dispatch(protocol.UserJoinedEvent{UserID: 7})
	store.Dispatch(protocol.DraftStartedEvent{
		CurrentTurn: 7,
		RoundNumber: 1,
		PickOrder:   []protocol.UserID{7, 3},
		TotalRounds: 1,
	})
	store.Dispatch(protocol.PickMadeEvent{UserID: 7, PlayerID: 101, Round: 1, AutoDraft: true})

	require.NoError(t, c.Run(context.Background(), strings.NewReader("status\nusers\nhistory\n")))

	text := out.String()
	assert.Contains(t, text, "in_progress")
	assert.Regexp(t, `picks made\s+1`, text)
	assert.Regexp(t, `7\s+ana\s+true`, text)
	assert.Regexp(t, `3\s+bo\s+false`, text)
	assert.Contains(t, text, "R1P1   Ada Lovelace (ana) (auto)")
}
