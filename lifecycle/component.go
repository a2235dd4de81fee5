package lifecycle

// Component is a unit with a managed start/stop lifecycle. Implementations
// report their own running state; the Processor never starts a component
// that is already running and never stops one that is not.
type Component interface {
	// IsRunning reports whether the component is currently running.
	IsRunning() bool
	// Start begins the component's work. It is expected to return once the
	// component is up; a non-nil error aborts the surrounding start pass.
	Start() error
	// Stop halts the component synchronously.
	Stop() error
}

// AsyncComponent is a Component whose stop procedure completes on its own
// goroutine. StopAsync must arrange for done to be invoked exactly once when
// the stop has finished; the Processor bounds its wait for that signal with
// the per-phase shutdown timeout.
type AsyncComponent interface {
	Component
	StopAsync(done func())
}

// Options captures the capabilities a component declares at registration
// time. Capabilities are fixed at registration so the orchestrator never has
// to interrogate component types mid-transition.
type Options struct {
	// Phase orders components coarsely: lower phases start first and stop
	// last. Components that don't declare a phase run in phase 0.
	Phase int

	// AutoStart opts the component into refresh-triggered start passes.
	// Explicit Start/Stop passes include every component regardless.
	AutoStart bool

	// AsyncStop declares that the component confirms its stop through the
	// AsyncComponent callback rather than returning synchronously.
	AsyncStop bool
}

// Option configures a component registration.
type Option func(*Options)

// WithPhase sets the component's lifecycle phase.
func WithPhase(phase int) Option {
	return func(o *Options) { o.Phase = phase }
}

// WithAutoStart opts the component into auto-start on refresh events.
func WithAutoStart() Option {
	return func(o *Options) { o.AutoStart = true }
}

// WithAsyncStop declares asynchronous stop confirmation. The registered
// component must implement AsyncComponent.
func WithAsyncStop() Option {
	return func(o *Options) { o.AsyncStop = true }
}

// Entry is a registered component together with its declared capabilities.
type Entry struct {
	Name      string
	Component Component
	// Async is non-nil when the component declared asynchronous stop
	// confirmation at registration.
	Async     AsyncComponent
	Phase     int
	AutoStart bool
}
