package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/mcdev12/draftsync/go/internal/identity"
	"github.com/mcdev12/draftsync/go/internal/models"
)

var errNoChoice = errors.New("nothing to choose from")

// directory is the part of the REST client the join flow needs
type directory interface {
	ListEvents(ctx context.Context) ([]models.Event, error)
	ListUsers(ctx context.Context) ([]models.User, error)
}

type choice struct {
	id    int
	label string
}

// join resolves which event and user this client drafts as. Persisted ids
// are reused when they are still valid; otherwise the operator is asked and
// the answer is saved.
func join(ctx context.Context, api directory, ids *identity.FileStore, eventOverride int, in *bufio.Reader, out io.Writer) (identity.Local, []models.User, error) {
	local, err := ids.Load()
	if err != nil {
		return identity.Local{}, nil, err
	}

	if eventOverride > 0 && eventOverride != local.EventID {
		local = identity.Local{EventID: eventOverride}
	}

	if local.EventID <= 0 {
		events, err := api.ListEvents(ctx)
		if err != nil {
			return identity.Local{}, nil, fmt.Errorf("list events: %w", err)
		}
		options := make([]choice, 0, len(events))
		for _, e := range events {
			options = append(options, choice{id: e.ID, label: fmt.Sprintf("%s [%s]", e.Name, e.Status)})
		}
		eventID, err := choose(in, out, "event", options)
		if err != nil {
			return identity.Local{}, nil, err
		}
		local = identity.Local{EventID: eventID}
	}

	all, err := api.ListUsers(ctx)
	if err != nil {
		return identity.Local{}, nil, fmt.Errorf("list users: %w", err)
	}
	users := usersForEvent(all, local.EventID)

	if local.HasUser() && !slices.ContainsFunc(users, func(u models.User) bool { return u.ID == local.UserID }) {
		log.Warn().
			Int("user_id", local.UserID).
			Int("event_id", local.EventID).
			Msg("saved user is not registered for this event")
		local.UserID = 0
	}

	if !local.HasUser() {
		options := make([]choice, 0, len(users))
		for _, u := range users {
			options = append(options, choice{id: u.ID, label: u.Username})
		}
		userID, err := choose(in, out, "user", options)
		if err != nil {
			return identity.Local{}, nil, err
		}
		local.UserID = userID
	}

	if err := ids.Save(local); err != nil {
		return identity.Local{}, nil, err
	}
	return local, users, nil
}

// usersForEvent keeps users registered for eventID. Users without an event
// are kept as well, for servers that do not scope users.
func usersForEvent(users []models.User, eventID int) []models.User {
	var out []models.User
	for _, u := range users {
		if u.EventID == 0 || u.EventID == eventID {
			out = append(out, u)
		}
	}
	return out
}

// choose prints options and reads an id until a valid one is entered. A single
// option is chosen without asking.
func choose(in *bufio.Reader, out io.Writer, what string, options []choice) (int, error) {
	if len(options) == 0 {
		return 0, fmt.Errorf("choose %s: %w", what, errNoChoice)
	}
	if len(options) == 1 {
		fmt.Fprintf(out, "using %s %d: %s\n", what, options[0].id, options[0].label)
		return options[0].id, nil
	}

	for _, o := range options {
		fmt.Fprintf(out, "  %d) %s\n", o.id, o.label)
	}
	for {
		fmt.Fprintf(out, "choose %s: ", what)
		line, err := in.ReadString('\n')
		line = strings.TrimSpace(line)
		if line != "" {
			id, perr := parseID(line)
			if perr == nil && slices.ContainsFunc(options, func(o choice) bool { return o.id == id }) {
				return id, nil
			}
			fmt.Fprintf(out, "no %s %q\n", what, line)
		}
		if err != nil {
			return 0, fmt.Errorf("choose %s: %w", what, err)
		}
	}
}
