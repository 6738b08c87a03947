package ticketing

import (
	"sync"
	"time"
)

// Scheduler runs delayed tasks that can be cancelled individually or all at once.
type Scheduler struct {
	mu      sync.Mutex
	next    uint64
	timers  map[uint64]*time.Timer
	stopped bool
}

// NewScheduler creates an empty scheduler.
func NewScheduler() *Scheduler {
	return &Scheduler{
		timers: make(map[uint64]*time.Timer),
	}
}

// After runs fn once d has elapsed. The returned function cancels the task and reports whether it was still pending.
// Tasks scheduled after Stop are never run.
func (s *Scheduler) After(d time.Duration, fn func()) (cancel func() bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stopped {
		return func() bool { return false }
	}

	id := s.next
	s.next++

	s.timers[id] = time.AfterFunc(d, func() {
		if !s.take(id) {
			return
		}
		fn()
	})

	return func() bool {
		s.mu.Lock()
		defer s.mu.Unlock()
		t, ok := s.timers[id]
		if !ok {
			return false
		}
		delete(s.timers, id)
		return t.Stop()
	}
}

// take removes the task from the pending set. It returns false if the task was cancelled in the meantime.
func (s *Scheduler) take(id uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.timers[id]; !ok {
		return false
	}
	delete(s.timers, id)
	return true
}

// Pending returns the number of tasks that have not run yet.
func (s *Scheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.timers)
}

// Stop cancels every pending task and returns how many were cancelled.
func (s *Scheduler) Stop() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.stopped = true
	n := 0
	for id, t := range s.timers {
		if t.Stop() {
			n++
		}
		delete(s.timers, id)
	}
	return n
}
