package app

import (
	"sync"

	"github.com/google/uuid"

	"quizcraft-service/internal/domain"
)

// LeaderboardFeed fans leaderboard snapshots out to live subscribers. All
// state is in-process; each server instance serves its own subscribers.
type LeaderboardFeed struct {
	mu   sync.RWMutex
	subs map[uuid.UUID]map[chan []domain.LeaderboardRow]struct{}
}

func NewLeaderboardFeed() *LeaderboardFeed {
	return &LeaderboardFeed{
		subs: make(map[uuid.UUID]map[chan []domain.LeaderboardRow]struct{}),
	}
}

// Subscribe registers a listener for one quiz and delivers the initial
// snapshot immediately. The cancel func must be invoked to avoid leaks.
func (f *LeaderboardFeed) Subscribe(quizID uuid.UUID, initial []domain.LeaderboardRow) (<-chan []domain.LeaderboardRow, func()) {
	ch := make(chan []domain.LeaderboardRow, 8)

	f.mu.Lock()
	if f.subs[quizID] == nil {
		f.subs[quizID] = make(map[chan []domain.LeaderboardRow]struct{})
	}
	f.subs[quizID][ch] = struct{}{}
	f.mu.Unlock()

	ch <- initial

	cancel := func() {
		f.mu.Lock()
		defer f.mu.Unlock()
		quizSubs, ok := f.subs[quizID]
		if !ok {
			return
		}
		if _, ok := quizSubs[ch]; ok {
			delete(quizSubs, ch)
			close(ch)
		}
		if len(quizSubs) == 0 {
			delete(f.subs, quizID)
		}
	}
	return ch, cancel
}

// HasSubscribers reports whether anyone is listening on a quiz, so callers
// can skip recomputing standings nobody will see.
func (f *LeaderboardFeed) HasSubscribers(quizID uuid.UUID) bool {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return len(f.subs[quizID]) > 0
}

// Publish pushes a fresh snapshot to every subscriber of the quiz. Slow
// listeners have their stale snapshot dropped rather than blocking the rest.
func (f *LeaderboardFeed) Publish(quizID uuid.UUID, rows []domain.LeaderboardRow) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	for ch := range f.subs[quizID] {
		select {
		case ch <- rows:
		default:
			select {
			case <-ch:
			default:
			}
			ch <- rows
		}
	}
}
