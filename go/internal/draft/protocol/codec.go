package protocol

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrMissingType is returned when a payload has no "type" discriminator
var ErrMissingType = errors.New("message has no type")

type envelope struct {
	Type MessageType `json:"type"`
}

// DecodeEvent parses one server message. Unrecognised kinds are not an error;
// they come back as UnknownEvent so callers can ignore them.
func DecodeEvent(data []byte) (Event, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("unmarshal message envelope: %w", err)
	}
	if env.Type == "" {
		return nil, ErrMissingType
	}

	switch env.Type {
	case TypeDraftStarted:
		return decodeEventAs[DraftStartedEvent](data)
	case TypeDraftState:
		return decodeEventAs[DraftStateEvent](data)
	case TypePickMade:
		return decodeEventAs[PickMadeEvent](data)
	case TypeTurnChanged:
		return decodeEventAs[TurnChangedEvent](data)
	case TypeDraftCompleted:
		return decodeEventAs[DraftCompletedEvent](data)
	case TypeDraftPaused:
		return decodeEventAs[DraftPausedEvent](data)
	case TypeDraftResumed:
		return decodeEventAs[DraftResumedEvent](data)
	case TypeUserJoined:
		return decodeEventAs[UserJoinedEvent](data)
	case TypeUserLeft:
		return decodeEventAs[UserLeftEvent](data)
	case TypeError:
		return decodeEventAs[ErrorEvent](data)
	default:
		return UnknownEvent{Kind: env.Type, Raw: append([]byte(nil), data...)}, nil
	}
}

// DecodeCommand parses one client message. Unknown kinds are an error because
// only the server side (and tests standing in for it) calls this.
func DecodeCommand(data []byte) (Command, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("unmarshal message envelope: %w", err)
	}

	switch env.Type {
	case "":
		return nil, ErrMissingType
	case TypeStartDraft:
		return decodeCommandAs[StartDraftCommand](data)
	case TypePauseDraft:
		return PauseDraftCommand{}, nil
	case TypeResumeDraft:
		return ResumeDraftCommand{}, nil
	case TypeMakePick:
		return decodeCommandAs[MakePickCommand](data)
	default:
		return nil, fmt.Errorf("unknown command type: %s", env.Type)
	}
}

// EncodeCommand serialises a command with its discriminator
func EncodeCommand(cmd Command) ([]byte, error) {
	if cmd == nil {
		return nil, errors.New("nil command")
	}
	return encodeTagged(cmd.Type(), cmd)
}

// EncodeEvent serialises an event with its discriminator. UnknownEvent is
// written back verbatim.
func EncodeEvent(evt Event) ([]byte, error) {
	if evt == nil {
		return nil, errors.New("nil event")
	}
	if u, ok := evt.(UnknownEvent); ok {
		return u.Raw, nil
	}
	return encodeTagged(evt.Type(), evt)
}

func decodeEventAs[T Event](data []byte) (Event, error) {
	var msg T
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, fmt.Errorf("unmarshal %s: %w", msg.Type(), err)
	}
	return msg, nil
}

func decodeCommandAs[T Command](data []byte) (Command, error) {
	var msg T
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, fmt.Errorf("unmarshal %s: %w", msg.Type(), err)
	}
	return msg, nil
}

func encodeTagged(kind MessageType, body any) ([]byte, error) {
	raw, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshal %s: %w", kind, err)
	}

	fields := map[string]json.RawMessage{}
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, fmt.Errorf("flatten %s: %w", kind, err)
	}
	tag, err := json.Marshal(kind)
	if err != nil {
		return nil, fmt.Errorf("marshal type tag: %w", err)
	}
	fields["type"] = tag

	return json.Marshal(fields)
}
