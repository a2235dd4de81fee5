package lifecycle_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slipway-io/slipway/lifecycle"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newProcessor(t *testing.T, reg lifecycle.Registry, opts ...lifecycle.ProcessorOption) *lifecycle.Processor {
	t.Helper()
	opts = append([]lifecycle.ProcessorOption{lifecycle.WithLogger(quietLogger())}, opts...)
	p, err := lifecycle.NewProcessor(reg, opts...)
	require.NoError(t, err)
	return p
}

func TestNewProcessor_NoRegistry(t *testing.T) {
	t.Parallel()

	_, err := lifecycle.NewProcessor(nil)
	assert.ErrorIs(t, err, lifecycle.ErrNoRegistry)
}

func TestProcessor_StartStopScenario(t *testing.T) {
	t.Parallel()

	// A phase=0, B phase=0 depends on A, C phase=10.
	log := &callLog{}
	reg := lifecycle.NewRegistry()
	require.NoError(t, reg.Register("A", newFake("A", log)))
	require.NoError(t, reg.Register("B", newFake("B", log)))
	require.NoError(t, reg.Register("C", newFake("C", log), lifecycle.WithPhase(10)))
	reg.DependsOn("B", "A")

	p := newProcessor(t, reg)
	require.NoError(t, p.Start(context.Background()))
	assert.True(t, p.IsRunning())

	calls := log.snapshot()
	require.Equal(t, 3, len(calls))
	assert.Less(t, log.indexOf("start:A"), log.indexOf("start:B"))
	// C is dispatched only after the phase-0 group completes.
	assert.Equal(t, "start:C", calls[2])

	require.NoError(t, p.Stop(context.Background()))
	assert.False(t, p.IsRunning())

	calls = log.snapshot()
	require.Equal(t, 6, len(calls))
	// Phase 10 stops before phase 0; within phase 0, B stops before A.
	assert.Equal(t, "stop:C", calls[3])
	assert.Equal(t, "stop:B", calls[4])
	assert.Equal(t, "stop:A", calls[5])
}

func TestProcessor_EachComponentStartsOnce(t *testing.T) {
	t.Parallel()

	log := &callLog{}
	reg := lifecycle.NewRegistry()
	for _, name := range []string{"one", "two", "three", "four"} {
		require.NoError(t, reg.Register(name, newFake(name, log)))
	}

	p := newProcessor(t, reg)
	require.NoError(t, p.Start(context.Background()))

	for _, name := range []string{"one", "two", "three", "four"} {
		assert.Equal(t, 1, log.count("start:"+name), "component %s", name)
	}
}

func TestProcessor_DependencyCrossesPhaseBoundary(t *testing.T) {
	t.Parallel()

	// consumer (phase 0) depends on broker (phase 10): broker must start
	// first regardless of its higher phase, and must not start again when
	// its own group is reached.
	log := &callLog{}
	reg := lifecycle.NewRegistry()
	require.NoError(t, reg.Register("consumer", newFake("consumer", log)))
	require.NoError(t, reg.Register("broker", newFake("broker", log), lifecycle.WithPhase(10)))
	reg.DependsOn("consumer", "broker")

	p := newProcessor(t, reg)
	require.NoError(t, p.Start(context.Background()))

	assert.Equal(t, []string{"start:broker", "start:consumer"}, log.snapshot())

	// Mirror on stop: consumer (the dependent) stops before broker, pulled
	// forward into the phase-10 group's walk.
	require.NoError(t, p.Stop(context.Background()))
	assert.Equal(t, []string{
		"start:broker", "start:consumer",
		"stop:consumer", "stop:broker",
	}, log.snapshot())
}

func TestProcessor_AlreadyRunningComponentSkipped(t *testing.T) {
	t.Parallel()

	log := &callLog{}
	reg := lifecycle.NewRegistry()
	warm := newFake("warm", log)
	warm.running = true
	require.NoError(t, reg.Register("warm", warm))
	require.NoError(t, reg.Register("cold", newFake("cold", log)))

	p := newProcessor(t, reg)
	require.NoError(t, p.Start(context.Background()))

	assert.Equal(t, 0, log.count("start:warm"))
	assert.Equal(t, 1, log.count("start:cold"))
}

func TestProcessor_StartFailureAbortsChain(t *testing.T) {
	t.Parallel()

	// solo starts first in an independent chain. bad fails; worse depends
	// on bad and must never start.
	log := &callLog{}
	reg := lifecycle.NewRegistry()
	require.NoError(t, reg.Register("solo", newFake("solo", log)))
	bad := newFake("bad", log)
	bad.startErr = errors.New("boom")
	require.NoError(t, reg.Register("bad", bad))
	require.NoError(t, reg.Register("worse", newFake("worse", log)))
	reg.DependsOn("worse", "bad")

	p := newProcessor(t, reg)
	err := p.Start(context.Background())
	require.Error(t, err)

	var startErr *lifecycle.StartError
	require.ErrorAs(t, err, &startErr)
	assert.Equal(t, "bad", startErr.Component)
	assert.ErrorIs(t, err, bad.startErr)

	assert.Equal(t, 1, log.count("start:solo"), "earlier independent chain stays started")
	assert.Equal(t, 0, log.count("start:worse"), "dependent of the failed component must not start")
	assert.False(t, p.IsRunning())
}

func TestProcessor_StopFailureDoesNotAbortGroup(t *testing.T) {
	t.Parallel()

	log := &callLog{}
	reg := lifecycle.NewRegistry()
	flaky := newFake("flaky", log)
	flaky.stopErr = errors.New("stuck pipe")
	require.NoError(t, reg.Register("flaky", flaky))
	require.NoError(t, reg.Register("steady", newFake("steady", log)))

	p := newProcessor(t, reg)
	require.NoError(t, p.Start(context.Background()))
	require.NoError(t, p.Stop(context.Background()))

	assert.Equal(t, 1, log.count("stop:flaky"))
	assert.Equal(t, 1, log.count("stop:steady"), "remaining members still stop")
	assert.False(t, p.IsRunning())
}

func TestProcessor_AsyncStopConfirms(t *testing.T) {
	t.Parallel()

	log := &callLog{}
	reg := lifecycle.NewRegistry()
	slow := newAsyncFake("slow", log)
	slow.stopDelay = 20 * time.Millisecond
	require.NoError(t, reg.Register("slow", slow, lifecycle.WithAsyncStop()))

	p := newProcessor(t, reg)
	require.NoError(t, p.Start(context.Background()))

	start := time.Now()
	require.NoError(t, p.Stop(context.Background()))
	assert.GreaterOrEqual(t, time.Since(start), 20*time.Millisecond,
		"coordinator must wait for the confirmation")
	assert.Equal(t, 1, log.count("stopAsync:slow"))
}

func TestProcessor_AsyncStopTimeout(t *testing.T) {
	t.Parallel()

	log := &callLog{}
	reg := lifecycle.NewRegistry()
	wedged := newAsyncFake("wedged", log)
	wedged.neverConfirm = true
	require.NoError(t, reg.Register("wedged", wedged, lifecycle.WithAsyncStop()))

	p := newProcessor(t, reg, lifecycle.WithShutdownTimeout(100*time.Millisecond))
	require.NoError(t, p.Start(context.Background()))

	start := time.Now()
	err := p.Stop(context.Background())
	elapsed := time.Since(start)

	assert.NoError(t, err, "timeout is reported, not returned")
	assert.GreaterOrEqual(t, elapsed, 100*time.Millisecond)
	assert.Less(t, elapsed, 5*time.Second)
	assert.False(t, p.IsRunning())
}

func TestProcessor_AsyncNotRunningReleasesSlot(t *testing.T) {
	t.Parallel()

	// The async component never started, so no callback will ever arrive:
	// its countdown slot must be released immediately instead of waiting
	// out the timeout.
	log := &callLog{}
	reg := lifecycle.NewRegistry()
	idle := newAsyncFake("idle", log)
	require.NoError(t, reg.Register("idle", idle, lifecycle.WithAsyncStop()))

	p := newProcessor(t, reg, lifecycle.WithShutdownTimeout(5*time.Second))

	start := time.Now()
	require.NoError(t, p.Stop(context.Background()))
	assert.Less(t, time.Since(start), time.Second)
	assert.Equal(t, 0, log.count("stopAsync:idle"))
}

func TestProcessor_StopIdempotentWhenNotRunning(t *testing.T) {
	t.Parallel()

	log := &callLog{}
	reg := lifecycle.NewRegistry()
	require.NoError(t, reg.Register("svc", newFake("svc", log)))

	p := newProcessor(t, reg)
	require.NoError(t, p.Stop(context.Background()))

	assert.Empty(t, log.snapshot(), "no component invocations for an already-stopped process")
	assert.False(t, p.IsRunning())
}

func TestProcessor_SelfDependencyTerminates(t *testing.T) {
	t.Parallel()

	log := &callLog{}
	reg := lifecycle.NewRegistry()
	require.NoError(t, reg.Register("narcissus", newFake("narcissus", log)))
	reg.DependsOn("narcissus", "narcissus")

	p := newProcessor(t, reg)
	require.NoError(t, p.Start(context.Background()))
	assert.Equal(t, 1, log.count("start:narcissus"))

	require.NoError(t, p.Stop(context.Background()))
	assert.Equal(t, 1, log.count("stop:narcissus"))
}

func TestProcessor_DependencyCycleTerminates(t *testing.T) {
	t.Parallel()

	log := &callLog{}
	reg := lifecycle.NewRegistry()
	require.NoError(t, reg.Register("ouro", newFake("ouro", log)))
	require.NoError(t, reg.Register("boros", newFake("boros", log)))
	reg.DependsOn("ouro", "boros")
	reg.DependsOn("boros", "ouro")

	p := newProcessor(t, reg)
	require.NoError(t, p.Start(context.Background()))
	assert.Equal(t, 1, log.count("start:ouro"))
	assert.Equal(t, 1, log.count("start:boros"))

	require.NoError(t, p.Stop(context.Background()))
	assert.Equal(t, 1, log.count("stop:ouro"))
	assert.Equal(t, 1, log.count("stop:boros"))
}

func TestProcessor_UnknownDependencyTolerated(t *testing.T) {
	t.Parallel()

	log := &callLog{}
	reg := lifecycle.NewRegistry()
	require.NoError(t, reg.Register("app", newFake("app", log)))
	reg.DependsOn("app", "ghost")

	p := newProcessor(t, reg)
	require.NoError(t, p.Start(context.Background()))
	assert.Equal(t, []string{"start:app"}, log.snapshot())
}

func TestProcessor_OnRefreshFiltersAutoStart(t *testing.T) {
	t.Parallel()

	log := &callLog{}
	reg := lifecycle.NewRegistry()
	require.NoError(t, reg.Register("eager", newFake("eager", log), lifecycle.WithAutoStart()))
	require.NoError(t, reg.Register("manual", newFake("manual", log)))

	p := newProcessor(t, reg)
	require.NoError(t, p.OnRefresh(context.Background()))

	assert.Equal(t, 1, log.count("start:eager"))
	assert.Equal(t, 0, log.count("start:manual"), "refresh starts only opted-in components")
	assert.True(t, p.IsRunning())

	// An explicit start pass picks up the rest.
	require.NoError(t, p.Start(context.Background()))
	assert.Equal(t, 1, log.count("start:eager"), "already running, not restarted")
	assert.Equal(t, 1, log.count("start:manual"))
}

func TestProcessor_StopCancellationPropagates(t *testing.T) {
	t.Parallel()

	log := &callLog{}
	reg := lifecycle.NewRegistry()
	wedged := newAsyncFake("wedged", log)
	wedged.neverConfirm = true
	require.NoError(t, reg.Register("wedged", wedged, lifecycle.WithAsyncStop()))

	p := newProcessor(t, reg, lifecycle.WithShutdownTimeout(10*time.Second))
	require.NoError(t, p.Start(context.Background()))

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(30 * time.Millisecond)
		cancel()
	}()

	start := time.Now()
	err := p.Stop(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Less(t, time.Since(start), 5*time.Second)
}

func TestProcessor_PhasesStartAscendingStopDescending(t *testing.T) {
	t.Parallel()

	log := &callLog{}
	reg := lifecycle.NewRegistry()
	require.NoError(t, reg.Register("p5", newFake("p5", log), lifecycle.WithPhase(5)))
	require.NoError(t, reg.Register("p1", newFake("p1", log), lifecycle.WithPhase(1)))
	require.NoError(t, reg.Register("pneg", newFake("pneg", log), lifecycle.WithPhase(-3)))

	p := newProcessor(t, reg)
	require.NoError(t, p.Start(context.Background()))
	assert.Equal(t, []string{"start:pneg", "start:p1", "start:p5"}, log.snapshot())

	require.NoError(t, p.Stop(context.Background()))
	assert.Equal(t, []string{
		"start:pneg", "start:p1", "start:p5",
		"stop:p5", "stop:p1", "stop:pneg",
	}, log.snapshot())
}
