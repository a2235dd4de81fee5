package config

import (
	"context"
	"fmt"
	"log/slog"
	"reflect"
	"sync"
)

// Manager loads configuration from an ordered list of sources, validates the
// merged result, and notifies subscribers when a reload changes any field.
// Later sources override earlier ones, so a typical chain is
// [file, env, cli]: flags beat environment variables beat files.
//
// Updates are atomic: a reload that fails to load, bind, or validate leaves
// the current configuration untouched. All methods are safe for concurrent
// use.
type Manager struct {
	sources []Source
	config  any
	binder  *Binder
	logger  *slog.Logger
	mu      sync.RWMutex
	subs    []chan Event
}

// Options configures a Manager.
type Options struct {
	// AutoReload starts a watcher per source (for sources that support
	// watching) and reloads the configuration whenever one reports a
	// change.
	AutoReload bool

	// Logger receives reload diagnostics. Defaults to slog.Default().
	Logger *slog.Logger
}

// NewManager builds a Manager over cfg, a pointer to the configuration
// struct, performs the initial load, and optionally starts source watchers.
// Struct fields use `config` tags for mapping and `validate` tags for
// validation rules. The watcher goroutines live until ctx is cancelled.
func NewManager(ctx context.Context, cfg any, opts Options, sources ...Source) (*Manager, error) {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	m := &Manager{
		sources: sources,
		config:  cfg,
		binder:  NewBinder(),
		logger:  opts.Logger,
	}

	if err := m.Reload(ctx); err != nil {
		return nil, err
	}

	if opts.AutoReload {
		m.startWatchers(ctx)
	}

	return m, nil
}

// Reload loads every source in order, merges the results, and atomically
// swaps in the new configuration if binding and validation succeed. When
// any field changed, subscribers are notified with a diff Event. On failure
// the previous configuration stays in effect.
func (m *Manager) Reload(ctx context.Context) error {
	merged := map[string]any{}
	for _, src := range m.sources {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		vals, err := src.Load(ctx)
		if err != nil {
			return fmt.Errorf("failed to load config from %s: %w", src.Name(), err)
		}
		mergeMaps(merged, vals)
	}

	newCfg := reflect.New(reflect.TypeOf(m.config).Elem()).Interface()
	if err := m.binder.Bind(merged, newCfg); err != nil {
		return fmt.Errorf("failed to bind config: %w", err)
	}

	m.mu.Lock()
	oldCfg := reflect.New(reflect.TypeOf(m.config).Elem()).Interface()
	reflect.ValueOf(oldCfg).Elem().Set(reflect.ValueOf(m.config).Elem())
	reflect.ValueOf(m.config).Elem().Set(reflect.ValueOf(newCfg).Elem())
	m.mu.Unlock()

	if !reflect.DeepEqual(oldCfg, newCfg) {
		m.notify(diffEvent(oldCfg, newCfg))
	}
	return nil
}

// Subscribe registers ch to receive change events. Events are delivered
// non-blocking: use a buffered channel or risk dropped events. The Manager
// never closes the channel.
func (m *Manager) Subscribe(ch chan Event) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.subs = append(m.subs, ch)
}

func (m *Manager) notify(evt Event) {
	m.mu.RLock()
	subs := append([]chan Event(nil), m.subs...)
	m.mu.RUnlock()
	for _, ch := range subs {
		select {
		case ch <- evt:
		default:
		}
	}
}

func (m *Manager) startWatchers(ctx context.Context) {
	for _, src := range m.sources {
		src := src
		ch := make(chan Event, 1)
		go func() {
			if err := src.Watch(ctx, ch); err != nil {
				m.logger.Warn("config source watch failed", "source", src.Name(), "error", err)
				return
			}
			for {
				select {
				case <-ctx.Done():
					return
				case <-ch:
					if err := m.Reload(ctx); err != nil {
						m.logger.Warn("config reload failed", "source", src.Name(), "error", err)
					}
				}
			}
		}()
	}
}
