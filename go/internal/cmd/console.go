package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/mcdev12/draftsync/go/internal/draft/protocol"
	"github.com/mcdev12/draftsync/go/internal/draft/session"
)

const (
	defaultRounds = 3
	defaultTimer  = 60 * time.Second
)

var errUnknownCommand = errors.New("unknown command")

type commandKind int

const (
	cmdHelp commandKind = iota
	cmdStart
	cmdPause
	cmdResume
	cmdPick
	cmdAutopick
	cmdStatus
	cmdUsers
	cmdHistory
	cmdReconnect
	cmdQuit
)

// command is one parsed console line
type command struct {
	kind      commandKind
	user      protocol.UserID
	hasUser   bool
	player    protocol.PlayerID
	rounds    int
	timer     time.Duration
	pickOrder []protocol.UserID
}

const helpText = `commands:
  start [rounds] [timer-seconds] [user,user,...]   start the draft
  pause | resume                                   pause or resume the clock
  pick [user] <player>                             pick for yourself or for user
  autopick                                         random available player for the current turn
  status | users | history                         show draft state
  reconnect                                        reconnect now
  quit`

// parseCommand turns one console line into a command
func parseCommand(line string) (command, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return command{kind: cmdHelp}, nil
	}
	args := fields[1:]

	switch strings.ToLower(fields[0]) {
	case "help", "?":
		return command{kind: cmdHelp}, nil
	case "start":
		return parseStart(args)
	case "pause":
		return command{kind: cmdPause}, nil
	case "resume":
		return command{kind: cmdResume}, nil
	case "pick":
		return parsePick(args)
	case "autopick", "auto":
		return command{kind: cmdAutopick}, nil
	case "status":
		return command{kind: cmdStatus}, nil
	case "users":
		return command{kind: cmdUsers}, nil
	case "history", "picks":
		return command{kind: cmdHistory}, nil
	case "reconnect":
		return command{kind: cmdReconnect}, nil
	case "quit", "exit":
		return command{kind: cmdQuit}, nil
	}
	return command{}, fmt.Errorf("%w: %q", errUnknownCommand, fields[0])
}

func parseStart(args []string) (command, error) {
	cmd := command{kind: cmdStart, rounds: defaultRounds, timer: defaultTimer}
	if len(args) > 3 {
		return command{}, fmt.Errorf("start takes at most 3 arguments")
	}
	if len(args) > 0 {
		n, err := strconv.Atoi(args[0])
		if err != nil {
			return command{}, fmt.Errorf("invalid rounds %q", args[0])
		}
		cmd.rounds = n
	}
	if len(args) > 1 {
		secs, err := strconv.Atoi(args[1])
		if err != nil {
			return command{}, fmt.Errorf("invalid timer %q", args[1])
		}
		cmd.timer = time.Duration(secs) * time.Second
	}
	if len(args) > 2 {
		for _, part := range strings.Split(args[2], ",") {
			id, err := parseID(part)
			if err != nil {
				return command{}, fmt.Errorf("invalid pick order: %w", err)
			}
			cmd.pickOrder = append(cmd.pickOrder, protocol.UserID(id))
		}
	}
	return cmd, nil
}

func parsePick(args []string) (command, error) {
	switch len(args) {
	case 1:
		player, err := parseID(args[0])
		if err != nil {
			return command{}, err
		}
		return command{kind: cmdPick, player: protocol.PlayerID(player)}, nil
	case 2:
		user, err := parseID(args[0])
		if err != nil {
			return command{}, err
		}
		player, err := parseID(args[1])
		if err != nil {
			return command{}, err
		}
		return command{
			kind:    cmdPick,
			user:    protocol.UserID(user),
			hasUser: true,
			player:  protocol.PlayerID(player),
		}, nil
	}
	return command{}, fmt.Errorf("usage: pick [user] <player>")
}

func parseID(s string) (int, error) {
	id, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q", s)
	}
	return id, nil
}

// Console reads admin commands line by line and runs them against a session
type Console struct {
	session *session.Session
	out     io.Writer
}

func NewConsole(s *session.Session, out io.Writer) *Console {
	return &Console{session: s, out: out}
}

// Run processes lines until quit, EOF or ctx is done
func (c *Console) Run(ctx context.Context, in io.Reader) error {
	lines := make(chan string)
	scanErr := make(chan error, 1)
	go func() {
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
		scanErr <- scanner.Err()
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case err := <-scanErr:
			return err
		case line := <-lines:
			cmd, err := parseCommand(line)
			if err != nil {
				fmt.Fprintf(c.out, "%v (type help)\n", err)
				continue
			}
			if cmd.kind == cmdQuit {
				return nil
			}
			if err := c.execute(cmd); err != nil {
				fmt.Fprintf(c.out, "error: %v\n", err)
			}
		}
	}
}

func (c *Console) execute(cmd command) error {
	switch cmd.kind {
	case cmdHelp:
		fmt.Fprintln(c.out, helpText)
	case cmdStart:
		return c.session.StartDraft(cmd.pickOrder, cmd.rounds, cmd.timer)
	case cmdPause:
		return c.session.Pause()
	case cmdResume:
		return c.session.Resume()
	case cmdPick:
		if cmd.hasUser {
			return c.session.Pick(cmd.user, cmd.player)
		}
		return c.session.PickForMe(cmd.player)
	case cmdAutopick:
		user, player, err := c.session.Autopick()
		if err != nil {
			return err
		}
		fmt.Fprintf(c.out, "autopick: %s for user %d\n", c.session.PlayerName(player), user)
	case cmdStatus:
		c.printStatus()
	case cmdUsers:
		c.printUsers()
	case cmdHistory:
		printHistory(c.out, c.session.History())
	case cmdReconnect:
		c.session.ReconnectNow()
	}
	return nil
}

func (c *Console) printStatus() {
	r := c.session.Status()
	tw := tabwriter.NewWriter(c.out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "draft\t%s\n", r.DraftStatus)
	fmt.Fprintf(tw, "connection\t%s\n", r.ConnectionStatus)
	if r.CurrentTurn != nil {
		fmt.Fprintf(tw, "current turn\t%d\n", *r.CurrentTurn)
	} else {
		fmt.Fprintf(tw, "current turn\t-\n")
	}
	fmt.Fprintf(tw, "round\t%d/%d\n", r.RoundNumber, r.TotalRounds)
	fmt.Fprintf(tw, "pick index\t%d\n", r.CurrentPickIndex)
	fmt.Fprintf(tw, "picks made\t%d\n", r.PickCount)
	if r.TurnDeadline != nil {
		fmt.Fprintf(tw, "deadline\t%s\n", r.TurnDeadline.Format(time.TimeOnly))
	}
	if r.LastError != "" {
		fmt.Fprintf(tw, "last error\t%s\n", r.LastError)
	}
	tw.Flush()
}

func (c *Console) printUsers() {
	connected, registered := c.session.Users()
	online := make(map[protocol.UserID]bool, len(connected))
	for _, u := range connected {
		online[u.ID] = true
	}

	tw := tabwriter.NewWriter(c.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tUSERNAME\tONLINE")
	for _, u := range registered {
		fmt.Fprintf(tw, "%d\t%s\t%t\n", u.ID, u.Username, online[u.ID])
	}
	tw.Flush()
}

func printHistory(out io.Writer, history []session.HistoryEntry) {
	if len(history) == 0 {
		fmt.Fprintln(out, "no picks yet")
		return
	}
	for _, h := range history {
		line := fmt.Sprintf("%-6s %s (%s)", h.Label, h.Player, h.User)
		if h.AutoDraft {
			line += " (auto)"
		}
		fmt.Fprintln(out, line)
	}
}
