package app

import (
	"sort"
	"sync"
)

// dayLocks serializes work on the same date. Different dates never wait on
// each other.
type dayLocks struct {
	mu   sync.Mutex
	held map[string]*dayLock
}

type dayLock struct {
	sync.Mutex
	refs int
}

// lock takes the locks for dates in a fixed order and returns the release.
func (l *dayLocks) lock(dates ...string) func() {
	uniq := make([]string, 0, len(dates))
	seen := make(map[string]bool, len(dates))
	for _, d := range dates {
		if !seen[d] {
			seen[d] = true
			uniq = append(uniq, d)
		}
	}
	sort.Strings(uniq)

	taken := make([]*dayLock, 0, len(uniq))
	for _, d := range uniq {
		dl := l.acquire(d)
		dl.Lock()
		taken = append(taken, dl)
	}
	return func() {
		for i := len(taken) - 1; i >= 0; i-- {
			taken[i].Unlock()
			l.release(uniq[i])
		}
	}
}

func (l *dayLocks) acquire(date string) *dayLock {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.held == nil {
		l.held = make(map[string]*dayLock)
	}
	dl, ok := l.held[date]
	if !ok {
		dl = &dayLock{}
		l.held[date] = dl
	}
	dl.refs++
	return dl
}

func (l *dayLocks) release(date string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if dl := l.held[date]; dl != nil {
		dl.refs--
		if dl.refs == 0 {
			delete(l.held, date)
		}
	}
}
