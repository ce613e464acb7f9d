package services

import "sync"

// MatchLocker serializes mutating operations per match within this process.
// Score submission, roster approval and vote tallying all read match state
// and decide an outcome; the lock plus the row lock taken inside the
// transaction make that read-decide-write section single-writer per match.
type MatchLocker struct {
	mu    sync.Mutex
	locks map[int]*matchLock
}

type matchLock struct {
	mu sync.Mutex
	// refs counts holders and waiters; the entry is evicted when it drops
	// to zero, so the map stays bounded by in-flight matches.
	refs int
}

func NewMatchLocker() *MatchLocker {
	return &MatchLocker{locks: make(map[int]*matchLock)}
}

// Lock acquires the mutex for the given match and returns the unlock func.
func (l *MatchLocker) Lock(matchID int) func() {
	l.mu.Lock()
	m, ok := l.locks[matchID]
	if !ok {
		m = &matchLock{}
		l.locks[matchID] = m
	}
	m.refs++
	l.mu.Unlock()

	m.mu.Lock()
	return func() {
		m.mu.Unlock()
		l.mu.Lock()
		m.refs--
		if m.refs == 0 {
			delete(l.locks, matchID)
		}
		l.mu.Unlock()
	}
}
