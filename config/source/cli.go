package source

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/pflag"

	"github.com/slipway-io/slipway/config"
)

// CLISource loads configuration from command-line flags. Dots in a flag
// name express nesting:
//
//	--server.addr=:9090 --lifecycle.shutdownTimeout 5s
//	  -> {server: {addr: ":9090"}, lifecycle: {shutdownTimeout: "5s"}}
//
// Both --flag=value and --flag value work, as does single-dash for long
// flags. Values stay strings until binding. CLISource should usually be the
// last source in the chain so flags override everything else.
type CLISource struct{}

// Name returns the identifier for this source.
func (c *CLISource) Name() string { return "cli" }

// Load parses os.Args. It never fails; unrecognized arguments are ignored.
func (c *CLISource) Load(ctx context.Context) (map[string]any, error) {
	return parseCliFlags()
}

// Watch is a no-op; arguments are static for the process lifetime.
func (c *CLISource) Watch(ctx context.Context, ch chan<- config.Event) error {
	return nil
}

func parseCliFlags() (map[string]any, error) {
	result := make(map[string]any)
	fs := pflag.NewFlagSet("config", pflag.ContinueOnError)
	fs.SetOutput(io.Discard)

	// Register every flag-shaped argument as a string flag so pflag will
	// accept it; nobody declares config flags up front.
	registered := make(map[string]bool)
	args := normalizeArgs(os.Args[1:])
	for i := 0; i < len(args); i++ {
		arg := args[i]
		if !strings.HasPrefix(arg, "-") {
			continue
		}
		name := extractFlagName(arg)
		if name == "" {
			continue
		}
		if !registered[name] {
			fs.String(name, "", fmt.Sprintf("Config value for %s", name))
			registered[name] = true
		}
		if !strings.Contains(arg, "=") && i+1 < len(args) && !strings.HasPrefix(args[i+1], "-") {
			i++
		}
	}

	_ = fs.Parse(args)

	fs.VisitAll(func(flag *pflag.Flag) {
		if !flag.Changed {
			return
		}
		value := flag.Value.String()
		if value == "" {
			return
		}
		segments := strings.Split(flag.Name, ".")
		if len(segments) == 0 {
			return
		}
		setNestedValue(result, segments, value)
	})

	return result, nil
}

// normalizeArgs converts single-dash long flags to double-dash for pflag.
func normalizeArgs(args []string) []string {
	normalized := make([]string, len(args))
	for i, arg := range args {
		if strings.HasPrefix(arg, "-") && !strings.HasPrefix(arg, "--") {
			withoutDash := strings.TrimPrefix(arg, "-")
			if len(withoutDash) > 1 && withoutDash[0] != '=' {
				normalized[i] = "-" + arg
				continue
			}
		}
		normalized[i] = arg
	}
	return normalized
}

// extractFlagName strips dashes and an =value suffix from an argument.
func extractFlagName(arg string) string {
	arg = strings.TrimLeft(arg, "-")
	if arg == "" {
		return ""
	}
	if idx := strings.Index(arg, "="); idx != -1 {
		return arg[:idx]
	}
	return arg
}
