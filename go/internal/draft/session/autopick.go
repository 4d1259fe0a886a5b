package session

import (
	"errors"
	"math/rand"
	"sync"
	"time"

	"github.com/mcdev12/draftsync/go/internal/draft/protocol"
	"github.com/mcdev12/draftsync/go/internal/draft/state"
)

var (
	ErrDraftNotInProgress = errors.New("draft is not in progress")
	ErrNoAvailablePlayers = errors.New("no current turn or no available players")
)

// AutoPickStrategy chooses a player for whoever is on the clock
type AutoPickStrategy interface {
	Choose(s state.Snapshot) (protocol.UserID, protocol.PlayerID, error)
}

// RandomStrategy picks uniformly from the known available players
type RandomStrategy struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewRandomStrategy constructs a RandomStrategy with its own seed.
func NewRandomStrategy() *RandomStrategy {
	return NewRandomStrategyWithSource(rand.NewSource(time.Now().UnixNano()))
}

func NewRandomStrategyWithSource(src rand.Source) *RandomStrategy {
	return &RandomStrategy{rng: rand.New(src)}
}

// Choose implements AutoPickStrategy.Choose
func (r *RandomStrategy) Choose(s state.Snapshot) (protocol.UserID, protocol.PlayerID, error) {
	if s.Status != state.StatusInProgress {
		return 0, 0, ErrDraftNotInProgress
	}
	available := s.Available.Sorted()
	if s.CurrentTurn == nil || len(available) == 0 {
		return 0, 0, ErrNoAvailablePlayers
	}
	r.mu.Lock()
	i := r.rng.Intn(len(available))
	r.mu.Unlock()
	return *s.CurrentTurn, available[i], nil
}
