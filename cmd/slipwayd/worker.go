package main

import (
	"log/slog"
	"sync/atomic"
	"time"
)

// heartbeat is a demo component: a ticker loop that stops asynchronously,
// confirming completion once its goroutine has drained.
type heartbeat struct {
	logger   *slog.Logger
	interval time.Duration
	quit     chan struct{}
	running  atomic.Bool
}

func newHeartbeat(logger *slog.Logger, interval time.Duration) *heartbeat {
	return &heartbeat{logger: logger, interval: interval}
}

func (h *heartbeat) IsRunning() bool { return h.running.Load() }

func (h *heartbeat) Start() error {
	h.quit = make(chan struct{})
	h.running.Store(true)
	go func() {
		ticker := time.NewTicker(h.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				h.logger.Debug("heartbeat")
			case <-h.quit:
				return
			}
		}
	}()
	return nil
}

func (h *heartbeat) Stop() error {
	h.running.Store(false)
	close(h.quit)
	return nil
}

func (h *heartbeat) StopAsync(done func()) {
	h.running.Store(false)
	quit := h.quit
	go func() {
		defer done()
		close(quit)
	}()
}
