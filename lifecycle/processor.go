// Package lifecycle orchestrates the start and stop of managed components.
//
// Components register with a Registry along with an optional phase and
// declared dependency edges. The Processor starts them phase by phase in
// ascending order and stops them in descending order, and within each pass
// recursively honors dependency edges across phase boundaries: a
// component's dependencies always start before it, and its dependents
// always stop before it. Components that confirm their stop asynchronously
// are waited on with a per-phase timeout, so shutdown always makes
// progress even when a component never signals completion.
package lifecycle

import (
	"context"
	"log/slog"
	"sort"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// DefaultShutdownTimeout bounds the wait for asynchronous stop
// confirmations within a single phase.
const DefaultShutdownTimeout = 30 * time.Second

// Processor drives lifecycle transitions over the components of a Registry.
// A single goroutine is expected to call the transition methods; IsRunning
// is safe to call from anywhere.
type Processor struct {
	registry Registry
	logger   *slog.Logger
	timeout  time.Duration
	metrics  *metrics
	running  atomic.Bool
}

// ProcessorOption configures a Processor.
type ProcessorOption func(*Processor)

// WithShutdownTimeout sets the maximum time allotted for the shutdown of
// any one phase. The default is DefaultShutdownTimeout.
func WithShutdownTimeout(d time.Duration) ProcessorOption {
	return func(p *Processor) { p.timeout = d }
}

// WithLogger sets the logger used for transition events.
func WithLogger(l *slog.Logger) ProcessorOption {
	return func(p *Processor) { p.logger = l }
}

// WithMetrics registers the processor's collectors with reg and enables
// instrumentation of transitions.
func WithMetrics(reg prometheus.Registerer) ProcessorOption {
	return func(p *Processor) { p.metrics = newMetrics(reg) }
}

// NewProcessor creates a Processor over the given registry. A nil registry
// is a misconfiguration and returns ErrNoRegistry.
func NewProcessor(reg Registry, opts ...ProcessorOption) (*Processor, error) {
	if reg == nil {
		return nil, ErrNoRegistry
	}
	p := &Processor{
		registry: reg,
		logger:   slog.Default(),
		timeout:  DefaultShutdownTimeout,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// Start starts all registered components that are not already running,
// phase by phase in ascending order. The first start failure aborts the
// pass and is returned wrapped as a StartError; components started before
// the failure stay started.
func (p *Processor) Start(ctx context.Context) error {
	if err := p.startComponents(ctx, false); err != nil {
		return err
	}
	p.setRunning(true)
	return nil
}

// OnRefresh performs a start pass restricted to components that opted into
// auto-start. The dependency walk still visits components that did not opt
// in, so a later explicit pass will not reorder around them, but only
// opted-in components are actually started.
func (p *Processor) OnRefresh(ctx context.Context) error {
	if err := p.startComponents(ctx, true); err != nil {
		return err
	}
	p.setRunning(true)
	return nil
}

// Stop stops all registered components that are currently running, phase by
// phase in descending order. Stop failures and confirmation timeouts are
// logged, never returned; the only error is a propagated context
// cancellation of the coordinator's wait.
func (p *Processor) Stop(ctx context.Context) error {
	err := p.stopComponents(ctx)
	p.setRunning(false)
	return err
}

// OnClose is Stop under its shutdown-event name.
func (p *Processor) OnClose(ctx context.Context) error {
	return p.Stop(ctx)
}

// IsRunning reports whether the last completed transition was a start. It
// reflects only the processor's own flag, not individual component states.
func (p *Processor) IsRunning() bool {
	return p.running.Load()
}

func (p *Processor) setRunning(running bool) {
	p.running.Store(running)
	p.metrics.setRunning(running)
}

func (p *Processor) startComponents(ctx context.Context, autoStartOnly bool) error {
	all := p.registry.Components()
	// The transition snapshot always holds the full set so a filtered pass
	// can still reach excluded components as dependencies.
	tx := newTransition(all, graphView{reg: p.registry}, p.logger, p.metrics)
	groups := p.groupByPhase(eligible(all, autoStartOnly), tx)
	for _, phase := range sortedPhases(groups, false) {
		if err := groups[phase].start(ctx, autoStartOnly); err != nil {
			return err
		}
	}
	return nil
}

func (p *Processor) stopComponents(ctx context.Context) error {
	all := p.registry.Components()
	tx := newTransition(all, graphView{reg: p.registry}, p.logger, p.metrics)
	groups := p.groupByPhase(all, tx)
	for _, phase := range sortedPhases(groups, true) {
		if err := groups[phase].stop(ctx); err != nil {
			return err
		}
	}
	return nil
}

// eligible filters the pass members: an auto-start pass includes only
// opted-in components.
func eligible(entries []Entry, autoStartOnly bool) []Entry {
	if !autoStartOnly {
		return entries
	}
	out := make([]Entry, 0, len(entries))
	for _, e := range entries {
		if e.AutoStart {
			out = append(out, e)
		}
	}
	return out
}

func (p *Processor) groupByPhase(entries []Entry, tx *transition) map[int]*phaseGroup {
	groups := make(map[int]*phaseGroup)
	for _, e := range entries {
		g, ok := groups[e.Phase]
		if !ok {
			g = &phaseGroup{
				phase:   e.Phase,
				timeout: p.timeout,
				tx:      tx,
				logger:  p.logger,
				metrics: p.metrics,
			}
			groups[e.Phase] = g
		}
		g.add(e)
	}
	return groups
}

func sortedPhases(groups map[int]*phaseGroup, descending bool) []int {
	phases := make([]int, 0, len(groups))
	for phase := range groups {
		phases = append(phases, phase)
	}
	sort.Ints(phases)
	if descending {
		for i, j := 0, len(phases)-1; i < j; i, j = i+1, j-1 {
			phases[i], phases[j] = phases[j], phases[i]
		}
	}
	return phases
}
