package config

import "context"

// Source is one origin of configuration data: a file tree, the process
// environment, command-line flags, or anything else that can produce a
// string-keyed map.
//
// Load must be safe for concurrent use. Watch is optional; sources that
// cannot detect changes return nil immediately.
type Source interface {
	// Load retrieves the source's current values, possibly nested. The
	// returned map must be a copy the caller is free to mutate.
	Load(ctx context.Context) (map[string]any, error)

	// Watch sends an Event on ch whenever the source detects a change,
	// until ctx is cancelled. Sources without change detection return nil.
	Watch(ctx context.Context, ch chan<- Event) error

	// Name identifies the source in errors and logs, e.g. "file" or "env".
	Name() string
}

// Event describes a configuration change detected on reload.
type Event struct {
	// ChangedKeys lists the top-level struct fields whose values differ
	// between OldConfig and NewConfig.
	ChangedKeys []string

	// OldConfig and NewConfig hold the configuration before and after the
	// change; their concrete type is the struct given to NewManager.
	OldConfig any
	NewConfig any
}
