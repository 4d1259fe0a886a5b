package main

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcdev12/draftsync/go/internal/identity"
	"github.com/mcdev12/draftsync/go/internal/models"
)

type fakeDirectory struct {
	events []models.Event
	users  []models.User
	err    error
}

func (f *fakeDirectory) ListEvents(context.Context) ([]models.Event, error) {
	return f.events, f.err
}

func (f *fakeDirectory) ListUsers(context.Context) ([]models.User, error) {
	return f.users, f.err
}

func newDirectory() *fakeDirectory {
	return &fakeDirectory{
		events: []models.Event{
			{ID: 4, Name: "Sunday League", Status: models.EventStatusNotStarted},
			{ID: 5, Name: "Office Draft", Status: models.EventStatusCompleted},
		},
		users: []models.User{
			{ID: 7, EventID: 4, Username: "ana"},
			{ID: 3, EventID: 4, Username: "bo"},
			{ID: 9, EventID: 5, Username: "cy"},
		},
	}
}

func TestJoin_PromptsAndPersists(t *testing.T) {
	ids := identity.NewFileStore(filepath.Join(t.TempDir(), "id.yaml"))
	in := bufio.NewReader(strings.NewReader("42\n4\n9\n3\n"))
	out := &bytes.Buffer{}

	local, users, err := join(context.Background(), newDirectory(), ids, 0, in, out)
	require.NoError(t, err)

	assert.Equal(t, identity.Local{EventID: 4, UserID: 3}, local)
	assert.Len(t, users, 2)
	assert.Contains(t, out.String(), `no event "42"`)
	assert.Contains(t, out.String(), `no user "9"`)

	reloaded, err := identity.NewFileStore(ids.Path()).Load()
	require.NoError(t, err)
	assert.Equal(t, local, reloaded)
}

func TestJoin_ReusesSavedIdentity(t *testing.T) {
	ids := identity.NewFileStore(filepath.Join(t.TempDir(), "id.yaml"))
	require.NoError(t, ids.Save(identity.Local{EventID: 4, UserID: 7}))

	local, _, err := join(context.Background(), newDirectory(), ids, 0, bufio.NewReader(strings.NewReader("")), &bytes.Buffer{})
	require.NoError(t, err)
	assert.Equal(t, identity.Local{EventID: 4, UserID: 7}, local)
}

func TestJoin_EventOverrideDropsSavedUser(t *testing.T) {
	ids := identity.NewFileStore(filepath.Join(t.TempDir(), "id.yaml"))
	require.NoError(t, ids.Save(identity.Local{EventID: 4, UserID: 7}))

	// event 5 has a single user, chosen without asking
	local, users, err := join(context.Background(), newDirectory(), ids, 5, bufio.NewReader(strings.NewReader("")), &bytes.Buffer{})
	require.NoError(t, err)
	assert.Equal(t, identity.Local{EventID: 5, UserID: 9}, local)
	assert.Equal(t, []models.User{{ID: 9, EventID: 5, Username: "cy"}}, users)
}

func TestJoin_Errors(t *testing.T) {
	ids := identity.NewFileStore(filepath.Join(t.TempDir(), "id.yaml"))

	dir := newDirectory()
	dir.err = errors.New("HTTP 503: Service Unavailable")
	_, _, err := join(context.Background(), dir, ids, 0, bufio.NewReader(strings.NewReader("")), &bytes.Buffer{})
	assert.ErrorContains(t, err, "list events")

	_, _, err = join(context.Background(), &fakeDirectory{}, ids, 0, bufio.NewReader(strings.NewReader("")), &bytes.Buffer{})
	assert.ErrorIs(t, err, errNoChoice)

	// input ends before a valid choice
	_, _, err = join(context.Background(), newDirectory(), ids, 0, bufio.NewReader(strings.NewReader("8")), &bytes.Buffer{})
	assert.Error(t, err)
}
