package lifecycle

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"
)

// errWaitTimeout reports that a latch wait gave up before the count reached
// zero. Timeouts are an observability event, never surfaced to callers of
// the Processor.
var errWaitTimeout = errors.New("lifecycle: wait timed out")

// countdownLatch blocks a waiter until a fixed number of countDown calls
// have happened. Counting down past zero is a no-op, which lets a group
// release slots for members another walk already handled.
type countdownLatch struct {
	mu    sync.Mutex
	count int
	done  chan struct{}
}

func newCountdownLatch(n int) *countdownLatch {
	l := &countdownLatch{count: n, done: make(chan struct{})}
	if n <= 0 {
		close(l.done)
	}
	return l
}

func (l *countdownLatch) countDown() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.count == 0 {
		return
	}
	l.count--
	if l.count == 0 {
		close(l.done)
	}
}

// pending returns the number of outstanding countDown calls.
func (l *countdownLatch) pending() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.count
}

// wait blocks until the count reaches zero, the timeout elapses, or ctx is
// cancelled. Cancellation is returned as ctx.Err so callers can propagate
// it; timeout is returned as errWaitTimeout.
func (l *countdownLatch) wait(ctx context.Context, timeout time.Duration) error {
	timer := time.NewTimer(timeout)
	defer timer.Stop()
	select {
	case <-l.done:
		return nil
	case <-timer.C:
		return errWaitTimeout
	case <-ctx.Done():
		return ctx.Err()
	}
}

// nameSet is a concurrency-safe set of component names. The stop path writes
// to it from both the controlling goroutine and completion callbacks.
type nameSet struct {
	mu    sync.Mutex
	names map[string]struct{}
}

func newNameSet() *nameSet {
	return &nameSet{names: make(map[string]struct{})}
}

func (s *nameSet) add(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.names[name] = struct{}{}
}

func (s *nameSet) remove(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.names, name)
}

func (s *nameSet) len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.names)
}

// sorted returns the members in lexical order for stable reporting.
func (s *nameSet) sorted() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, 0, len(s.names))
	for name := range s.names {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}
