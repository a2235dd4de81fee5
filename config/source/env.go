package source

import (
	"context"
	"os"
	"strings"

	"github.com/slipway-io/slipway/config"
)

// EnvPrefix is the required prefix for environment variables. Only
// variables starting with this prefix are loaded.
const EnvPrefix = "SLIPWAY_"

// EnvSource loads configuration from environment variables.
//
// Variables are filtered by the SLIPWAY_ prefix, lowercased, and split on
// underscores into a nested map:
//
//	SLIPWAY_SERVER_ADDR=:9090        -> {server: {addr: ":9090"}}
//	SLIPWAY_LIFECYCLE_AUTOREFRESH=true -> {lifecycle: {autorefresh: "true"}}
//
// All values are strings; type conversion happens during binding. When a
// leaf value already occupies a path, deeper keys for that path are skipped
// rather than overwriting it.
type EnvSource struct{}

// Name returns the identifier for this source.
func (e *EnvSource) Name() string { return "env" }

// Load reads all environment variables with the SLIPWAY_ prefix. It never
// fails; malformed entries are ignored.
func (e *EnvSource) Load(ctx context.Context) (map[string]any, error) {
	result := make(map[string]any)

	for _, env := range os.Environ() {
		key, value, found := strings.Cut(env, "=")
		if !found || !strings.HasPrefix(key, EnvPrefix) {
			continue
		}

		key = strings.ToLower(strings.TrimPrefix(key, EnvPrefix))
		segments := strings.Split(key, "_")
		if len(segments) == 0 {
			continue
		}
		setNestedValue(result, segments, value)
	}

	return result, nil
}

// Watch is a no-op: the environment does not change for the process
// lifetime.
func (e *EnvSource) Watch(ctx context.Context, ch chan<- config.Event) error {
	return nil
}

func setNestedValue(m map[string]any, segments []string, value string) {
	current := m

	for i, segment := range segments {
		if segment == "" {
			continue
		}

		if i == len(segments)-1 {
			current[segment] = value
			return
		}

		existing, exists := current[segment]
		if exists {
			nested, ok := existing.(map[string]any)
			if !ok {
				// A leaf already occupies this path.
				return
			}
			current = nested
			continue
		}

		nested := make(map[string]any)
		current[segment] = nested
		current = nested
	}
}
