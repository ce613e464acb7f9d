package services

import (
	"sync"
	"testing"
)

func TestMatchLockerEvictsReleasedLocks(t *testing.T) {
	l := NewMatchLocker()

	unlockA := l.Lock(1)
	unlockB := l.Lock(2)
	if got := len(l.locks); got != 2 {
		t.Fatalf("held locks = %d, want 2", got)
	}

	unlockA()
	if got := len(l.locks); got != 1 {
		t.Errorf("locks after first release = %d, want 1", got)
	}
	unlockB()
	if got := len(l.locks); got != 0 {
		t.Errorf("locks after all releases = %d, want 0", got)
	}
}

func TestMatchLockerSerializesSameMatch(t *testing.T) {
	l := NewMatchLocker()

	const goroutines = 32
	counter := 0
	var wg sync.WaitGroup
	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock := l.Lock(7)
			counter++
			unlock()
		}()
	}
	wg.Wait()

	if counter != goroutines {
		t.Errorf("counter = %d, want %d", counter, goroutines)
	}
	if got := len(l.locks); got != 0 {
		t.Errorf("locks left after contention = %d, want 0", got)
	}
}
