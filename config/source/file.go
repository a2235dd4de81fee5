package source

import (
	"context"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/slipway-io/slipway/config"
)

// FileSource loads configuration from YAML files under BasePath. The base
// file is application.yaml (or .yml); when Profile is set, an
// application.{profile}.yaml overlay replaces matching top-level keys.
//
//	configs/
//	  application.yaml       # base
//	  application.prod.yaml  # production overlay
type FileSource struct {
	// BasePath is the directory containing the configuration files.
	BasePath string

	// Profile selects an optional overlay file. A missing overlay is
	// silently ignored; a missing base file is an error.
	Profile string
}

// Name returns the identifier for this source.
func (f *FileSource) Name() string { return "file" }

// Load reads the base file and, if configured, the profile overlay.
// Returns os.ErrNotExist when the base file is absent.
func (f *FileSource) Load(ctx context.Context) (map[string]any, error) {
	baseFile := findYAMLFile(f.BasePath, "application")
	if baseFile == "" {
		return nil, os.ErrNotExist
	}

	data := map[string]any{}
	if err := readYAML(baseFile, data); err != nil {
		return nil, err
	}

	if f.Profile != "" {
		if profileFile := findYAMLFile(f.BasePath, "application."+f.Profile); profileFile != "" {
			if err := readYAML(profileFile, data); err != nil {
				return nil, err
			}
		}
	}

	return data, nil
}

// Watch is a no-op; wire up fsnotify here if hot file reload becomes a
// requirement.
func (f *FileSource) Watch(ctx context.Context, ch chan<- config.Event) error { return nil }

// findYAMLFile looks for a file with either .yaml or .yml extension.
func findYAMLFile(dir, basename string) string {
	for _, ext := range []string{".yaml", ".yml"} {
		path := filepath.Join(dir, basename+ext)
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

func readYAML(path string, out map[string]any) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(b, &out)
}
