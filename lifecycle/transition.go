package lifecycle

import (
	"log/slog"
	"sync"
)

// transition is the shared state of one start or stop pass: the full set of
// eligible components plus the remaining-work set the recursive walks drain.
// Draining a name before expanding its edges is what terminates cycles and
// self-dependencies, so the same structure serves as work queue and visited
// set. Only the controlling goroutine mutates remaining; completion
// callbacks never touch it.
type transition struct {
	entries map[string]Entry
	graph   graphView
	logger  *slog.Logger
	metrics *metrics

	mu        sync.Mutex
	remaining map[string]struct{}
}

func newTransition(entries []Entry, graph graphView, logger *slog.Logger, m *metrics) *transition {
	t := &transition{
		entries:   make(map[string]Entry, len(entries)),
		graph:     graph,
		logger:    logger,
		metrics:   m,
		remaining: make(map[string]struct{}, len(entries)),
	}
	for _, e := range entries {
		t.entries[e.Name] = e
		t.remaining[e.Name] = struct{}{}
	}
	return t
}

// claim removes name from the remaining-work set and returns its entry.
// It reports false when the name is unknown or already handled, which is
// how the walks skip foreign dependency names and avoid re-entry.
func (t *transition) claim(name string) (Entry, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, ok := t.remaining[name]; !ok {
		return Entry{}, false
	}
	delete(t.remaining, name)
	return t.entries[name], true
}

// pending reports whether name is still awaiting processing.
func (t *transition) pending(name string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	_, ok := t.remaining[name]
	return ok
}

// doStart starts name as part of this transition, starting its declared
// dependencies first regardless of their phase. autoStartOnly restricts the
// actual Start invocation to components that opted in, but the walk still
// drains excluded names so a later group does not revisit them.
func (t *transition) doStart(name string, autoStartOnly bool) error {
	e, ok := t.claim(name)
	if !ok {
		return nil
	}
	for _, dep := range t.graph.dependenciesOf(name) {
		if err := t.doStart(dep, autoStartOnly); err != nil {
			return err
		}
	}
	c := e.Component
	if !c.IsRunning() && (!autoStartOnly || e.AutoStart) {
		t.logger.Debug("starting component", "component", name, "phase", e.Phase)
		if err := c.Start(); err != nil {
			t.metrics.startFailed()
			return &StartError{Component: name, Err: err}
		}
		t.metrics.started()
		t.logger.Debug("started component", "component", name)
	}
	return nil
}

// doStop stops name as part of this transition, stopping its declared
// dependents first regardless of their phase. Async members signal the
// group's latch through their completion callback; sync members stop inline.
// Stop errors are logged and suppressed so the rest of the group still gets
// a chance to stop.
func (t *transition) doStop(name string, latch *countdownLatch, awaiting *nameSet) {
	e, ok := t.claim(name)
	if !ok {
		return
	}
	for _, dep := range t.graph.dependentsOf(name) {
		t.doStop(dep, latch, awaiting)
	}
	c := e.Component
	switch {
	case c.IsRunning() && e.Async != nil:
		t.logger.Debug("asking component to stop", "component", name, "phase", e.Phase)
		awaiting.add(name)
		e.Async.StopAsync(func() {
			latch.countDown()
			awaiting.remove(name)
			t.metrics.stopped()
			t.logger.Debug("component completed its stop procedure", "component", name)
		})
	case c.IsRunning():
		t.logger.Debug("stopping component", "component", name, "phase", e.Phase)
		if err := c.Stop(); err != nil {
			t.metrics.stopFailed()
			t.logger.Warn("failed to stop component", "component", name, "error", err)
			return
		}
		t.metrics.stopped()
		t.logger.Debug("stopped component", "component", name)
	case e.Async != nil:
		// Not running: nothing will ever invoke the callback, so release
		// the slot instead of waiting for it.
		latch.countDown()
	}
}
