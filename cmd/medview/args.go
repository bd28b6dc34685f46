package main

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"medview/internal/config"
	"medview/internal/logging"
	"medview/internal/profile"
	"medview/internal/volume"
)

// cliArgs holds the parsed arguments of one subcommand
type cliArgs struct {
	positional []string
	values     map[string]string
	switches   map[string]bool
}

var errMissingValue = errors.New("flag needs a value")

// parseArgs splits args into positionals, --flag value pairs for the names
// in valueFlags, and bare switches. "--flag=value" is accepted as well.
func parseArgs(args []string, valueFlags ...string) (cliArgs, error) {
	parsed := cliArgs{
		values:   make(map[string]string),
		switches: make(map[string]bool),
	}
	takesValue := make(map[string]bool, len(valueFlags))
	for _, f := range valueFlags {
		takesValue[f] = true
	}

	for i := 0; i < len(args); i++ {
		arg := args[i]
		if !strings.HasPrefix(arg, "--") {
			parsed.positional = append(parsed.positional, arg)
			continue
		}

		name, value, hasValue := strings.Cut(strings.TrimPrefix(arg, "--"), "=")
		if !takesValue[name] {
			if hasValue {
				return cliArgs{}, fmt.Errorf("--%s does not take a value", name)
			}
			parsed.switches[name] = true
			continue
		}
		if !hasValue {
			if i+1 >= len(args) {
				return cliArgs{}, fmt.Errorf("--%s: %w", name, errMissingValue)
			}
			i++
			value = args[i]
		}
		parsed.values[name] = value
	}
	return parsed, nil
}

// intValue returns the integer value of flag, or def when it is absent.
func (a cliArgs) intValue(flag string, def int) (int, error) {
	raw, ok := a.values[flag]
	if !ok {
		return def, nil
	}
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, fmt.Errorf("--%s: %w", flag, err)
	}
	return n, nil
}

// parsePoint parses "x,y" into a data-space point.
func parsePoint(s string) (profile.Point, error) {
	xs, ys, ok := strings.Cut(s, ",")
	if !ok {
		return profile.Point{}, fmt.Errorf("invalid point %q: want x,y", s)
	}
	x, err := strconv.ParseFloat(strings.TrimSpace(xs), 64)
	if err != nil {
		return profile.Point{}, fmt.Errorf("invalid point %q: %w", s, err)
	}
	y, err := strconv.ParseFloat(strings.TrimSpace(ys), 64)
	if err != nil {
		return profile.Point{}, fmt.Errorf("invalid point %q: %w", s, err)
	}
	return profile.Point{X: x, Y: y}, nil
}

// parseTitles splits a comma separated title list. Empty input yields nil.
func parseTitles(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	for i, p := range parts {
		parts[i] = strings.TrimSpace(p)
	}
	return parts
}

// resolveView picks the view from the flag, falling back to the config. An
// unrecognized token leaves the volumes unpermuted.
func resolveView(flag string, cfg config.Config, logger *logging.Logger) volume.View {
	token := cfg.Viewer.View
	if flag != "" {
		token = flag
	}
	view, ok := volume.ParseView(token)
	if !ok {
		logger.Warn("view.unrecognized", "Unrecognized view, using transverse", map[string]interface{}{
			"view": token,
		})
	}
	return view
}

// loadConfig loads path when given, else the merged system and user config.
func loadConfig(path string) (config.Config, error) {
	if path != "" {
		return config.LoadFrom(path)
	}
	return config.Load()
}
