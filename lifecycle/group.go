package lifecycle

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"time"
)

// phaseGroup collects the members of one transition that share a phase
// value. Groups are created fresh per transition and discarded after use.
type phaseGroup struct {
	phase      int
	timeout    time.Duration
	tx         *transition
	logger     *slog.Logger
	metrics    *metrics
	members    []Entry
	asyncCount int
}

func (g *phaseGroup) add(e Entry) {
	g.members = append(g.members, e)
	if e.Async != nil {
		g.asyncCount++
	}
}

// start runs the start walk for every member still pending in the
// transition. Members are sorted ascending by phase; groups are
// phase-uniform, so this only fixes residual ties deterministically.
func (g *phaseGroup) start(ctx context.Context, autoStartOnly bool) error {
	if len(g.members) == 0 {
		return nil
	}
	g.logger.Debug("starting components in phase", "phase", g.phase)
	sort.SliceStable(g.members, func(i, j int) bool {
		return g.members[i].Phase < g.members[j].Phase
	})
	for _, m := range g.members {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := g.tx.doStart(m.Name, autoStartOnly); err != nil {
			return err
		}
	}
	return nil
}

// stop runs the stop walk for the group and blocks until every async member
// has confirmed completion or the per-phase timeout elapses. Members a
// previous walk already drained (dependents stopped from another phase)
// release their latch slot immediately: their callback, if any, belongs to
// the group that actually stopped them.
func (g *phaseGroup) stop(ctx context.Context) error {
	if len(g.members) == 0 {
		return nil
	}
	g.logger.Debug("stopping components in phase", "phase", g.phase)
	sort.SliceStable(g.members, func(i, j int) bool {
		return g.members[i].Phase > g.members[j].Phase
	})

	latch := newCountdownLatch(g.asyncCount)
	awaiting := newNameSet()
	for _, m := range g.members {
		if g.tx.pending(m.Name) {
			g.tx.doStop(m.Name, latch, awaiting)
		} else if m.Async != nil {
			latch.countDown()
		}
	}

	err := latch.wait(ctx, g.timeout)
	switch {
	case errors.Is(err, errWaitTimeout):
		if names := awaiting.sorted(); len(names) > 0 {
			g.metrics.stopTimedOut(g.phase)
			g.logger.Info("components failed to shut down within timeout",
				"phase", g.phase,
				"timeout", g.timeout,
				"components", names,
			)
		}
		return nil
	case err != nil:
		// Context cancellation propagates to the caller untouched.
		return err
	}
	return nil
}
