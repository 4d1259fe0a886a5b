package gateway

import (
	"net/url"
	"strconv"

	"github.com/mcdev12/draftsync/go/internal/draft/protocol"
)

// Status is the state of the draft channel
type Status int

const (
	StatusDisconnected Status = iota
	StatusConnecting
	StatusConnected
)

func (s Status) String() string {
	switch s {
	case StatusConnecting:
		return "connecting"
	case StatusConnected:
		return "connected"
	default:
		return "disconnected"
	}
}

// MarshalText lets Status render as its name in JSON
func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Identity is the handshake sent when opening the channel
type Identity struct {
	UserID   protocol.UserID
	Username string
}

// IdentityProvider supplies the local participant. ok is false when no
// participant has been chosen yet.
type IdentityProvider interface {
	Identity() (id Identity, ok bool)
}

// IdentityFunc adapts a function to IdentityProvider
type IdentityFunc func() (Identity, bool)

func (f IdentityFunc) Identity() (Identity, bool) { return f() }

// EventHandler receives decoded server events in arrival order
type EventHandler interface {
	HandleEvent(evt protocol.Event)
}

// endpoint appends the identity handshake to the configured channel URL
func endpoint(base string, id Identity) (string, error) {
	u, err := url.Parse(base)
	if err != nil {
		return "", err
	}
	q := u.Query()
	q.Set("userID", strconv.Itoa(int(id.UserID)))
	if id.Username != "" {
		q.Set("username", id.Username)
	}
	u.RawQuery = q.Encode()
	return u.String(), nil
}
