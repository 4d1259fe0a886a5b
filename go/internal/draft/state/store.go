package state

import (
	"slices"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/mcdev12/draftsync/go/internal/draft/protocol"
)

// Subscriber receives every snapshot the Store publishes, in order
type Subscriber func(Snapshot)

// AppliedFunc receives each event the Store actually reduced, in order
type AppliedFunc func(protocol.Event)

// Store owns the current snapshot for one participant's session. Writers are
// serialised so each Dispatch is one atomic reduction; readers get a value
// that will never change underneath them.
type Store struct {
	local protocol.UserID

	// writeMu orders Dispatch/SetRegisteredUsers/Reset and the notifications
	// that follow them.
	writeMu sync.Mutex

	mu       sync.RWMutex
	snapshot Snapshot

	subMu       sync.Mutex
	subscribers map[int]Subscriber
	applied     map[int]AppliedFunc
	nextSubID   int
}

// NewStore creates a store holding the idle snapshot for local
func NewStore(local protocol.UserID) *Store {
	return &Store{
		local:       local,
		snapshot:    NewSnapshot(local),
		subscribers: make(map[int]Subscriber),
		applied:     make(map[int]AppliedFunc),
	}
}

// Snapshot returns the current snapshot
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshot
}

// Subscribe registers fn for every future snapshot and returns a function
// that removes it.
func (s *Store) Subscribe(fn Subscriber) func() {
	s.subMu.Lock()
	id := s.nextSubID
	s.nextSubID++
	s.subscribers[id] = fn
	s.subMu.Unlock()

	return func() {
		s.subMu.Lock()
		delete(s.subscribers, id)
		s.subMu.Unlock()
	}
}

// OnApplied registers fn for every event that changes the draft from now on.
// Unknown events and moves arriving after completion are not reported.
func (s *Store) OnApplied(fn AppliedFunc) func() {
	s.subMu.Lock()
	id := s.nextSubID
	s.nextSubID++
	s.applied[id] = fn
	s.subMu.Unlock()

	return func() {
		s.subMu.Lock()
		delete(s.applied, id)
		s.subMu.Unlock()
	}
}

// HandleEvent implements the connection manager's event sink
func (s *Store) HandleEvent(evt protocol.Event) {
	s.Dispatch(evt)
}

// Dispatch reduces evt into the current snapshot, publishes the result and
// returns it.
func (s *Store) Dispatch(evt protocol.Event) Snapshot {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	prev := s.Snapshot()

	if e, ok := evt.(protocol.PickMadeEvent); ok {
		checkPickSequence(prev, e)
	}
	if u, ok := evt.(protocol.UnknownEvent); ok {
		log.Debug().Str("type", string(u.Kind)).Msg("ignoring unknown draft event")
		return prev
	}
	if !Applies(prev, evt) {
		log.Debug().Str("event_type", string(evt.Type())).Msg("ignoring event for completed draft")
		return prev
	}

	next := Reduce(prev, evt)
	if err := next.Validate(); err != nil {
		log.Warn().
			Err(err).
			Str("event_type", string(evt.Type())).
			Msg("draft snapshot violates invariants")
	}
	if e, ok := evt.(protocol.ErrorEvent); ok {
		log.Warn().Str("error", e.Error).Msg("server reported error")
	}

	s.publish(next)
	s.notifyApplied(evt)
	return next
}

// SetRegisteredUsers replaces the list of known participants
func (s *Store) SetRegisteredUsers(users []User) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	next := s.Snapshot()
	next.RegisteredUsers = slices.Clone(users)
	s.publish(next)
}

// Reset returns the store to the idle snapshot, keeping registered users
func (s *Store) Reset() {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	next := NewSnapshot(s.local)
	next.RegisteredUsers = s.Snapshot().RegisteredUsers
	s.publish(next)
}

func (s *Store) publish(next Snapshot) {
	s.mu.Lock()
	s.snapshot = next
	s.mu.Unlock()

	s.subMu.Lock()
	subs := make([]Subscriber, 0, len(s.subscribers))
	for _, id := range sortedKeys(s.subscribers) {
		subs = append(subs, s.subscribers[id])
	}
	s.subMu.Unlock()

	for _, fn := range subs {
		fn(next)
	}
}

func (s *Store) notifyApplied(evt protocol.Event) {
	s.subMu.Lock()
	fns := make([]AppliedFunc, 0, len(s.applied))
	for _, id := range sortedKeys(s.applied) {
		fns = append(fns, s.applied[id])
	}
	s.subMu.Unlock()

	for _, fn := range fns {
		fn(evt)
	}
}

// checkPickSequence flags a server pick number that disagrees with the one
// derived locally. The numbering itself stays local; the next draft_state
// repairs any gap.
func checkPickSequence(prev Snapshot, e protocol.PickMadeEvent) {
	if e.PickNumber == nil || prev.Status == StatusCompleted {
		return
	}
	expected := len(prev.PickHistory) + 1
	if *e.PickNumber != expected {
		log.Warn().
			Int("server_pick_number", *e.PickNumber).
			Int("local_pick_number", expected).
			Int("player_id", int(e.PlayerID)).
			Msg("pick sequence gap")
	}
}

func sortedKeys[V any](m map[int]V) []int {
	keys := make([]int, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
