package clock

import (
	"sync"
	"time"
)

// Clock provides time to the engines so tests can pin "now".
type Clock interface {
	Now() time.Time
}

// System returns the current wall-clock time in a fixed location.
type System struct {
	loc *time.Location
}

func NewSystem(loc *time.Location) System {
	if loc == nil {
		loc = time.UTC
	}
	return System{loc: loc}
}

func (s System) Now() time.Time {
	loc := s.loc
	if loc == nil {
		loc = time.UTC
	}
	return time.Now().In(loc)
}

// Fixed is a controllable clock for tests.
type Fixed struct {
	mu  sync.Mutex
	now time.Time
}

func NewFixed(now time.Time) *Fixed {
	return &Fixed{now: now}
}

func (f *Fixed) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

func (f *Fixed) Set(now time.Time) {
	f.mu.Lock()
	f.now = now
	f.mu.Unlock()
}

func (f *Fixed) Advance(d time.Duration) time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.now = f.now.Add(d)
	return f.now
}
