// Package countdown projects the pick clock from a draft snapshot. The value
// is always recomputed from the absolute deadline and the current time, so a
// stalled or delayed redraw never makes the clock drift.
package countdown

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/mcdev12/draftsync/go/internal/draft/state"
)

// DefaultInterval is the redraw period
const DefaultInterval = 100 * time.Millisecond

// UrgentThreshold marks the last seconds of a pick
const UrgentThreshold = 10 * time.Second

// Remaining returns the time left on the current pick and whether a clock
// should be shown at all.
func Remaining(s state.Snapshot, now time.Time) (time.Duration, bool) {
	switch s.Status {
	case state.StatusPaused:
		return max(0, s.RemainingTime), true
	case state.StatusInProgress:
		if s.TurnDeadline == nil {
			return 0, false
		}
		return max(0, s.TurnDeadline.Sub(now)), true
	default:
		return 0, false
	}
}

// Reading is one rendered value of the clock
type Reading struct {
	Shown   bool
	Paused  bool
	Urgent  bool
	Seconds int
	Text    string
}

// Project renders the clock for s at now. Running clocks round up so "0:00"
// only appears once the deadline has passed; a paused clock rounds down.
func Project(s state.Snapshot, now time.Time) Reading {
	remaining, ok := Remaining(s, now)
	if !ok {
		return Reading{}
	}

	paused := s.Status == state.StatusPaused
	var secs int
	if paused {
		secs = int(math.Floor(remaining.Seconds()))
	} else {
		secs = int(math.Ceil(remaining.Seconds()))
	}

	text := fmt.Sprintf("%d:%02d", secs/60, secs%60)
	if paused {
		text += " PAUSED"
	}

	return Reading{
		Shown:   true,
		Paused:  paused,
		Urgent:  !paused && time.Duration(secs)*time.Second <= UrgentThreshold,
		Seconds: secs,
		Text:    text,
	}
}

// Display is Project(s, now).Text, empty when no clock is shown
func Display(s state.Snapshot, now time.Time) string {
	return Project(s, now).Text
}

// SnapshotSource supplies the latest snapshot on every tick
type SnapshotSource interface {
	Snapshot() state.Snapshot
}

// Ticker redraws the clock on a fixed interval. It only reports readings
// that differ from the previous one.
type Ticker struct {
	clock    clockwork.Clock
	source   SnapshotSource
	interval time.Duration
	onChange func(Reading)
}

// NewTicker creates a ticker; a zero interval uses DefaultInterval
func NewTicker(clock clockwork.Clock, source SnapshotSource, interval time.Duration, onChange func(Reading)) *Ticker {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Ticker{
		clock:    clock,
		source:   source,
		interval: interval,
		onChange: onChange,
	}
}

// Run emits the current reading immediately and then on every change until
// ctx is done.
func (t *Ticker) Run(ctx context.Context) {
	ticker := t.clock.NewTicker(t.interval)
	defer ticker.Stop()

	last := Project(t.source.Snapshot(), t.clock.Now())
	t.onChange(last)

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.Chan():
			r := Project(t.source.Snapshot(), t.clock.Now())
			if r != last {
				last = r
				t.onChange(r)
			}
		}
	}
}
