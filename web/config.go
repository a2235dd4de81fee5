package web

// Options collects the route and middleware hooks a Server is built with.
type Options struct {
	// Routes are called during NewServer to register handlers.
	Routes []func(r Router)
	// Middlewares run after the built-in chain (request ID, recovery,
	// access log).
	Middlewares []Handler
}

// Option configures a Server.
type Option func(*Options)

// WithRoutes registers a route-mounting hook.
func WithRoutes(f func(r Router)) Option {
	return func(o *Options) { o.Routes = append(o.Routes, f) }
}

// WithMiddlewares appends middlewares to the built-in chain.
func WithMiddlewares(m ...Handler) Option {
	return func(o *Options) { o.Middlewares = append(o.Middlewares, m...) }
}
