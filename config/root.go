package config

import "time"

// AppInfo identifies the application in logs and the actuator /info payload.
type AppInfo struct {
	Name    string `config:"name" validate:"required"`
	Version string `config:"version"`
}

// ServerConfig configures the lifecycle API HTTP server.
type ServerConfig struct {
	Addr         string        `config:"addr"`
	ReadTimeout  time.Duration `config:"readTimeout"`
	WriteTimeout time.Duration `config:"writeTimeout"`
	IdleTimeout  time.Duration `config:"idleTimeout"`
}

// LifecycleConfig tunes the component orchestrator.
type LifecycleConfig struct {
	// ShutdownTimeout bounds the wait for asynchronous stop confirmations
	// within any one phase. Zero means the orchestrator default of 30s.
	ShutdownTimeout time.Duration `config:"shutdownTimeout"`

	// AutoRefresh starts auto-start components whenever the configuration
	// is reloaded.
	AutoRefresh bool `config:"autoRefresh"`
}

// MetricsConfig toggles the Prometheus endpoint.
type MetricsConfig struct {
	Enabled bool `config:"enabled"`
}

// ObservabilityConfig groups observability settings.
type ObservabilityConfig struct {
	Metrics MetricsConfig `config:"metrics"`
}

// ActuatorConfig configures the management endpoints.
type ActuatorConfig struct {
	BasePath string `config:"basePath"`
}

// Root is the full application configuration.
type Root struct {
	App           AppInfo             `config:"app"`
	Server        ServerConfig        `config:"server"`
	Lifecycle     LifecycleConfig     `config:"lifecycle"`
	Observability ObservabilityConfig `config:"observability"`
	Actuator      ActuatorConfig      `config:"actuator"`
}

// Normalize fills in defaults for fields the sources left empty.
func (r *Root) Normalize() {
	if r.Server.Addr == "" {
		r.Server.Addr = ":8080"
	}
	if r.Actuator.BasePath == "" {
		r.Actuator.BasePath = "/actuator"
	}
	if r.Lifecycle.ShutdownTimeout <= 0 {
		r.Lifecycle.ShutdownTimeout = 30 * time.Second
	}
}
