package protocol

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeEvent_KnownKinds(t *testing.T) {
	deadline := int64(1700000060)
	turn := UserID(3)

	testCases := []struct {
		name    string
		payload string
		want    Event
	}{
		{
			name:    "draft started",
			payload: `{"type":"draft_started","currentTurn":7,"roundNumber":1,"turnDeadline":1700000060,"pickOrder":[7,3,9],"totalRounds":2,"availablePlayers":[101,102,103]}`,
			want: DraftStartedEvent{
				CurrentTurn:      7,
				RoundNumber:      1,
				TurnDeadline:     &deadline,
				PickOrder:        []UserID{7, 3, 9},
				TotalRounds:      2,
				AvailablePlayers: []PlayerID{101, 102, 103},
			},
		},
		{
			name:    "pick made without server number",
			payload: `{"type":"pick_made","userID":7,"playerID":101,"round":1,"autoDraft":true}`,
			want:    PickMadeEvent{UserID: 7, PlayerID: 101, Round: 1, AutoDraft: true},
		},
		{
			name:    "draft state with nulls",
			payload: `{"type":"draft_state","status":"not_started","currentTurn":null,"availablePlayers":null,"pickHistory":[],"turnDeadline":null,"remainingTime":0,"connectedUserIDs":[3]}`,
			want: DraftStateEvent{
				Status:           WireStatusNotStarted,
				PickHistory:      []PickRecord{},
				ConnectedUserIDs: []UserID{3},
			},
		},
		{
			name:    "draft resumed",
			payload: `{"type":"draft_resumed","currentTurn":3,"roundNumber":2,"turnDeadline":1700000060}`,
			want:    DraftResumedEvent{CurrentTurn: turn, RoundNumber: 2, TurnDeadline: &deadline},
		},
		{
			name:    "paused",
			payload: `{"type":"draft_paused","remainingTime":42.5}`,
			want:    DraftPausedEvent{RemainingTime: 42.5},
		},
		{
			name:    "error",
			payload: `{"type":"error","error":"not your turn"}`,
			want:    ErrorEvent{Error: "not your turn"},
		},
		{
			name:    "user joined",
			payload: `{"type":"user_joined","userID":12,"username":"gus"}`,
			want:    UserJoinedEvent{UserID: 12, Username: "gus"},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := DecodeEvent([]byte(tc.payload))
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestDecodeEvent_UnknownKindIsNotAnError(t *testing.T) {
	raw := []byte(`{"type":"chat_message","text":"gl hf"}`)

	got, err := DecodeEvent(raw)
	require.NoError(t, err)

	unknown, ok := got.(UnknownEvent)
	require.True(t, ok, "expected UnknownEvent, got %T", got)
	assert.Equal(t, MessageType("chat_message"), unknown.Type())
	assert.JSONEq(t, string(raw), string(unknown.Raw))
}

func TestDecodeEvent_Malformed(t *testing.T) {
	testCases := []struct {
		name    string
		payload string
	}{
		{name: "not json", payload: `{type:`},
		{name: "missing discriminator", payload: `{"userID":1}`},
		{name: "wrong field type", payload: `{"type":"pick_made","userID":"seven"}`},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			evt, err := DecodeEvent([]byte(tc.payload))
			assert.Error(t, err)
			assert.Nil(t, evt)
		})
	}
}

func TestEncodeCommand_AddsDiscriminator(t *testing.T) {
	raw, err := EncodeCommand(MakePickCommand{UserID: 7, PlayerID: 101})
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"make_pick","userID":7,"playerID":101}`, string(raw))

	raw, err = EncodeCommand(PauseDraftCommand{})
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"pause_draft"}`, string(raw))

	raw, err = EncodeCommand(StartDraftCommand{
		EventID:          4,
		PickOrder:        []UserID{7, 3, 9},
		TotalRounds:      2,
		TimerDuration:    60,
		AvailablePlayers: []PlayerID{101, 102},
	})
	require.NoError(t, err)

	var fields map[string]any
	require.NoError(t, json.Unmarshal(raw, &fields))
	assert.Equal(t, "start_draft", fields["type"])
	assert.EqualValues(t, 60, fields["timerDuration"])
	assert.Len(t, fields["pickOrder"], 3)

	cmd, err := DecodeCommand(raw)
	require.NoError(t, err)
	assert.Equal(t, StartDraftCommand{
		EventID:          4,
		PickOrder:        []UserID{7, 3, 9},
		TotalRounds:      2,
		TimerDuration:    60,
		AvailablePlayers: []PlayerID{101, 102},
	}, cmd)
}

func TestEncodeCommand_Nil(t *testing.T) {
	_, err := EncodeCommand(nil)
	assert.Error(t, err)
}

func TestEncodeEvent_UnknownWrittenVerbatim(t *testing.T) {
	raw := []byte(`{"type":"future_thing","x":1}`)
	out, err := EncodeEvent(UnknownEvent{Kind: "future_thing", Raw: raw})
	require.NoError(t, err)
	assert.Equal(t, raw, out)

	out, err = EncodeEvent(UserLeftEvent{UserID: 9})
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"user_left","userID":9}`, string(out))
}
