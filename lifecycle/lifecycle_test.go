package lifecycle_test

import (
	"sync"
	"time"

	"github.com/slipway-io/slipway/lifecycle"
)

// callLog records component invocations in order so tests can assert the
// relative ordering guarantees of a transition.
type callLog struct {
	mu    sync.Mutex
	calls []string
}

func (l *callLog) record(call string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.calls = append(l.calls, call)
}

func (l *callLog) snapshot() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.calls...)
}

// indexOf returns the position of call in the log, or -1.
func (l *callLog) indexOf(call string) int {
	for i, c := range l.snapshot() {
		if c == call {
			return i
		}
	}
	return -1
}

func (l *callLog) count(call string) int {
	n := 0
	for _, c := range l.snapshot() {
		if c == call {
			n++
		}
	}
	return n
}

// fakeComponent is a synchronous test component.
type fakeComponent struct {
	name     string
	log      *callLog
	startErr error
	stopErr  error

	mu      sync.Mutex
	running bool
}

func newFake(name string, log *callLog) *fakeComponent {
	return &fakeComponent{name: name, log: log}
}

func (f *fakeComponent) IsRunning() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.running
}

func (f *fakeComponent) Start() error {
	if f.startErr != nil {
		return f.startErr
	}
	f.log.record("start:" + f.name)
	f.mu.Lock()
	f.running = true
	f.mu.Unlock()
	return nil
}

func (f *fakeComponent) Stop() error {
	f.log.record("stop:" + f.name)
	f.mu.Lock()
	f.running = false
	f.mu.Unlock()
	return f.stopErr
}

// asyncFake confirms its stop on a separate goroutine after stopDelay.
// With neverConfirm set, the done callback is never invoked.
type asyncFake struct {
	fakeComponent
	stopDelay    time.Duration
	neverConfirm bool
}

func newAsyncFake(name string, log *callLog) *asyncFake {
	return &asyncFake{fakeComponent: fakeComponent{name: name, log: log}}
}

func (f *asyncFake) StopAsync(done func()) {
	f.log.record("stopAsync:" + f.name)
	f.mu.Lock()
	f.running = false
	f.mu.Unlock()
	if f.neverConfirm {
		return
	}
	go func() {
		if f.stopDelay > 0 {
			time.Sleep(f.stopDelay)
		}
		done()
	}()
}

var _ lifecycle.Component = (*fakeComponent)(nil)
var _ lifecycle.AsyncComponent = (*asyncFake)(nil)
