package countdown

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcdev12/draftsync/go/internal/draft/protocol"
	"github.com/mcdev12/draftsync/go/internal/draft/state"
)

var epoch = time.Unix(1700000000, 0)

func deadlineIn(d time.Duration) *int64 {
	v := epoch.Add(d).Unix()
	return &v
}

func started(d time.Duration) state.Snapshot {
	return state.Reduce(state.NewSnapshot(1), protocol.DraftStartedEvent{
		CurrentTurn:  1,
		RoundNumber:  1,
		TurnDeadline: deadlineIn(d),
		PickOrder:    []protocol.UserID{1, 2},
		TotalRounds:  1,
	})
}

func TestRemaining(t *testing.T) {
	s := started(60 * time.Second)

	got, ok := Remaining(s, epoch.Add(15*time.Second))
	require.True(t, ok)
	assert.Equal(t, 45*time.Second, got)

	got, ok = Remaining(s, epoch.Add(2*time.Minute))
	require.True(t, ok)
	assert.Zero(t, got)

	_, ok = Remaining(state.NewSnapshot(1), epoch)
	assert.False(t, ok)

	done := state.Reduce(s, protocol.DraftCompletedEvent{TotalRounds: 1})
	_, ok = Remaining(done, epoch)
	assert.False(t, ok)
}

func TestProject_Format(t *testing.T) {
	s := started(90 * time.Second)

	testCases := []struct {
		name   string
		at     time.Duration
		text   string
		urgent bool
	}{
		{name: "full", at: 0, text: "1:30"},
		{name: "rounds up while running", at: 300 * time.Millisecond, text: "1:30"},
		{name: "under a minute", at: 31 * time.Second, text: "0:59"},
		{name: "urgent", at: 80 * time.Second, text: "0:10", urgent: true},
		{name: "expired", at: 95 * time.Second, text: "0:00", urgent: true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			r := Project(s, epoch.Add(tc.at))
			assert.True(t, r.Shown)
			assert.Equal(t, tc.text, r.Text)
			assert.Equal(t, tc.urgent, r.Urgent)
		})
	}

	assert.Empty(t, Display(state.NewSnapshot(1), epoch))
}

// A paused clock shows the frozen remainder however long the pause lasts,
// and after resume the value follows the new deadline only.
func TestProject_PauseResumeIgnoresPauseLength(t *testing.T) {
	s := started(60 * time.Second)
	s = state.Reduce(s, protocol.DraftPausedEvent{RemainingTime: 42.7})

	for _, wait := range []time.Duration{0, time.Minute, 3 * time.Hour} {
		r := Project(s, epoch.Add(wait))
		assert.Equal(t, "0:42 PAUSED", r.Text)
		assert.True(t, r.Paused)
		assert.False(t, r.Urgent)
	}

	resumedAt := epoch.Add(3 * time.Hour)
	newDeadline := resumedAt.Add(42 * time.Second).Unix()
	s = state.Reduce(s, protocol.DraftResumedEvent{CurrentTurn: 1, RoundNumber: 1, TurnDeadline: &newDeadline})

	assert.Equal(t, "0:42", Display(s, resumedAt))
	assert.Equal(t, "0:32", Display(s, resumedAt.Add(10*time.Second)))
}

type snapshotBox struct {
	mu sync.Mutex
	s  state.Snapshot
}

func (b *snapshotBox) Snapshot() state.Snapshot {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.s
}

func (b *snapshotBox) set(s state.Snapshot) {
	b.mu.Lock()
	b.s = s
	b.mu.Unlock()
}

func TestTicker_EmitsOnlyChanges(t *testing.T) {
	clock := clockwork.NewFakeClockAt(epoch)
	box := &snapshotBox{s: started(3 * time.Second)}
	readings := make(chan Reading, 16)

	ticker := NewTicker(clock, box, 0, func(r Reading) { readings <- r })

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	done := make(chan struct{})
	go func() {
		ticker.Run(ctx)
		close(done)
	}()

	first := <-readings
	assert.Equal(t, "0:03", first.Text)
	require.NoError(t, clock.BlockUntilContext(ctx, 1))

	// Nine ticks inside the same second produce nothing new.
	for range 9 {
		clock.Advance(DefaultInterval)
	}
	clock.Advance(DefaultInterval)

	select {
	case r := <-readings:
		assert.Equal(t, "0:02", r.Text)
	case <-ctx.Done():
		t.Fatal("expected a reading after one second")
	}
	assert.Empty(t, readings)

	box.set(state.Reduce(box.Snapshot(), protocol.DraftPausedEvent{RemainingTime: 2}))
	clock.Advance(DefaultInterval)

	select {
	case r := <-readings:
		assert.Equal(t, "0:02 PAUSED", r.Text)
	case <-ctx.Done():
		t.Fatal("expected a paused reading")
	}

	cancel()
	<-done
}
