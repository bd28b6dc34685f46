package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"medview/internal/config"
	"medview/internal/fsutil"
	"medview/internal/logging"
	"medview/internal/navigator"
	"medview/internal/profile"
	"medview/internal/tui"
	"medview/internal/volume"
)

const (
	version = "0.1.0-dev"
	// logFileName is the default TUI log inside the state directory
	logFileName = "medview.log"
	// pickKey is the modifier the headless profile command holds while clicking
	pickKey = "pick"
)

func main() {
	if len(os.Args) <= 1 {
		printUsage()
		os.Exit(1)
	}

	command := strings.ToLower(os.Args[1])
	if handler, ok := commandHandlers()[command]; ok {
		handler(os.Args[2:])
		return
	}

	fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
	printUsage()
	os.Exit(1)
}

func commandHandlers() map[string]func([]string) {
	usage := func([]string) { printUsage() }
	return map[string]func([]string){
		"view":    runView,
		"info":    runInfo,
		"profile": runProfile,
		"config":  runConfig,
		"version": func([]string) { runVersion() },
		"help":    usage,
		"--help":  usage,
		"-h":      usage,
	}
}

func runVersion() {
	fmt.Printf("medview version %s\n", version)
}

// fail prints err, records it and exits with status 1
func fail(logger *logging.Logger, eventType string, err error) {
	logger.Error(eventType, "Command failed", map[string]interface{}{
		"error": err.Error(),
	})
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	os.Exit(1)
}

// commandLogger writes events to stderr at the configured level
func commandLogger(cfg config.Config) *logging.Logger {
	return logging.NewWriterLogger(logging.ParseLevel(cfg.Logging.Level), logging.Format(cfg.Logging.Format), os.Stderr)
}

func stateDir(cfg config.Config) string {
	dir := cfg.State.Dir
	if dir == "" {
		dir = fsutil.DefaultStateDir()
	}
	return fsutil.GetStateDir(dir)
}

// loadSources reads every path. Each becomes one panel titled by its base name.
func loadSources(paths []string, logger *logging.Logger) (volume.Mapping, error) {
	loader := volume.NewFileLoader(logger)
	sources := make(volume.Mapping, 0, len(paths))
	for _, path := range paths {
		arr, err := loader.Load(path)
		if err != nil {
			return nil, fmt.Errorf("failed to load %s: %w", path, err)
		}
		sources = append(sources, volume.Entry{Name: filepath.Base(path), Array: arr})
	}
	return sources, nil
}

// openSet loads paths side by side and arranges them for view
func openSet(paths []string, titles []string, view volume.View, logger *logging.Logger) (volume.Set, error) {
	sources, err := loadSources(paths, logger)
	if err != nil {
		return volume.Set{}, err
	}
	return volume.Resolve(sources, titles, view, nil)
}

// runView starts the interactive viewer
func runView(args []string) {
	parsed, err := parseArgs(args, "view", "titles", "config")
	if err != nil || len(parsed.positional) == 0 {
		fmt.Fprintln(os.Stderr, "Usage: medview view <path>... [--view v] [--titles a,b] [--config file] [--resume]")
		os.Exit(1)
	}

	cfg, err := loadConfig(parsed.values["config"])
	if err != nil {
		fail(nil, "config.error", err)
	}

	// the TUI owns the terminal, so events go to a file
	dir := stateDir(cfg)
	logPath := cfg.Logging.File
	if logPath == "" {
		logPath = filepath.Join(dir, logFileName)
	}
	logger, err := logging.NewFileLogger(logging.ParseLevel(cfg.Logging.Level), logging.Format(cfg.Logging.Format), logPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: logging disabled: %v\n", err)
		logger = nil
	}
	defer fsutil.CloseWithError(logger.Close, nil, "log file")

	view := resolveView(parsed.values["view"], cfg, logger)
	paths := absPaths(parsed.positional)
	source := strings.Join(paths, ",")

	set, err := openSet(paths, parseTitles(parsed.values["titles"]), view, logger)
	if err != nil {
		fail(logger, "view.error", err)
	}

	opts := tui.Options{
		Source:    source,
		View:      view,
		FastKey:   cfg.Viewer.FastKey,
		FastStep:  cfg.Viewer.FastStep,
		Render:    navigator.RenderOptions{VMin: cfg.Render.VMin, VMax: cfg.Render.VMax, Palette: cfg.Render.Palette},
		MaxWidth:  cfg.Render.MaxWidth,
		MaxHeight: cfg.Render.MaxHeight,
		StateDir:  dir,
		Resume:    parsed.switches["resume"],
		Logger:    logger,
	}
	if cfg.PickingEnabled() {
		opts.PickKey = cfg.Viewer.PickKey
	}

	model, err := tui.NewModel(set, opts)
	if err != nil {
		fail(logger, "view.error", err)
	}

	startTime := time.Now()
	logger.Info("app.started", "Application started", map[string]interface{}{
		"version": version,
		"source":  source,
		"view":    view.String(),
		"volumes": set.Len(),
		"ts":      startTime.UTC().Format(time.RFC3339),
	})

	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithMouseCellMotion())
	if _, err := p.Run(); err != nil {
		logger.Error("app.error", "Application error", map[string]interface{}{
			"error": err.Error(),
		})
		if saveErr := tui.NewUIStateManager(dir, logger).SaveError(err.Error()); saveErr != nil {
			fmt.Fprintf(os.Stderr, "Warning: failed to save UI state: %v\n", saveErr)
		}
		fmt.Fprintf(os.Stderr, "Error running TUI: %v\n", err)
		os.Exit(1)
	}

	logger.Info("app.exited", "Application exited", map[string]interface{}{
		"ts":       time.Now().UTC().Format(time.RFC3339),
		"duration": time.Since(startTime).String(),
	})
}

// runInfo prints shapes, slice bound and initial index per view
func runInfo(args []string) {
	parsed, err := parseArgs(args, "view", "titles", "config")
	if err != nil || len(parsed.positional) == 0 {
		fmt.Fprintln(os.Stderr, "Usage: medview info <path>... [--view v] [--titles a,b] [--config file]")
		os.Exit(1)
	}

	cfg, err := loadConfig(parsed.values["config"])
	if err != nil {
		fail(nil, "config.error", err)
	}
	logger := commandLogger(cfg)

	views := []volume.View{volume.Transverse, volume.Coronal, volume.Sagittal}
	if flag := parsed.values["view"]; flag != "" {
		views = []volume.View{resolveView(flag, cfg, logger)}
	}

	sources, err := loadSources(parsed.positional, logger)
	if err != nil {
		fail(logger, "info.error", err)
	}
	titles := parseTitles(parsed.values["titles"])

	for i, src := range sources {
		fmt.Printf("Source: %s\n", parsed.positional[i])
		fmt.Printf("Shape:  %v\n", src.Array.Shape)
	}
	for _, view := range views {
		set, err := volume.Resolve(sources, titles, view, nil)
		if err != nil {
			fail(logger, "info.error", err)
		}
		printSetInfo(os.Stdout, view, set)
	}
}

// absPaths makes every path absolute where possible.
func absPaths(paths []string) []string {
	out := make([]string, len(paths))
	for i, p := range paths {
		out[i] = p
		if abs, err := filepath.Abs(p); err == nil {
			out[i] = abs
		}
	}
	return out
}

func printSetInfo(w io.Writer, view volume.View, set volume.Set) {
	bound := set.Bound()
	fmt.Fprintf(w, "\n%s: %d volume(s), %d slices, initial index %d\n", view, set.Len(), bound, bound/2)
	for i, v := range set.Volumes {
		title := set.Titles[i]
		if title == "" {
			title = "-"
		}
		fmt.Fprintf(w, "  [%d] %-12s (%d, %d, %d)\n", i, title, v.Depth, v.Height, v.Width)
	}
}

// runProfile extracts a two-point profile without a terminal
func runProfile(args []string) {
	parsed, err := parseArgs(args, "view", "titles", "config", "from", "to", "index", "panel", "out")
	if err != nil || len(parsed.positional) == 0 || parsed.values["from"] == "" || parsed.values["to"] == "" {
		fmt.Fprintln(os.Stderr, "Usage: medview profile <path>... --from x,y --to x,y [--index n] [--view v] [--panel i] [--out file.jsonl]")
		os.Exit(1)
	}

	cfg, err := loadConfig(parsed.values["config"])
	if err != nil {
		fail(nil, "config.error", err)
	}
	logger := commandLogger(cfg)

	from, err := parsePoint(parsed.values["from"])
	if err != nil {
		fail(logger, "profile.error", err)
	}
	to, err := parsePoint(parsed.values["to"])
	if err != nil {
		fail(logger, "profile.error", err)
	}
	panel, err := parsed.intValue("panel", 0)
	if err != nil {
		fail(logger, "profile.error", err)
	}
	var index *int
	if _, ok := parsed.values["index"]; ok {
		n, err := parsed.intValue("index", 0)
		if err != nil {
			fail(logger, "profile.error", err)
		}
		index = &n
	}
	view := resolveView(parsed.values["view"], cfg, logger)

	set, err := openSet(parsed.positional, parseTitles(parsed.values["titles"]), view, logger)
	if err != nil {
		fail(logger, "profile.error", err)
	}

	rec, err := extractProfile(set, view, panel, index, from, to, logger)
	if err != nil {
		fail(logger, "profile.error", err)
	}
	rec.Source = parsed.positional[panel]

	printProfile(os.Stdout, rec)

	if out := parsed.values["out"]; out != "" {
		if err := profile.NewWriter(logger).Write(rec, out); err != nil {
			fail(logger, "profile.error", err)
		}
		fmt.Printf("\nAppended to %s\n", out)
	}
}

// extractProfile drives a navigator on a headless canvas through one pick.
// A nil index keeps the navigator's initial slice.
func extractProfile(set volume.Set, view volume.View, panel int, index *int, from, to profile.Point, logger *logging.Logger) (profile.Record, error) {
	canvas := navigator.NewHeadlessCanvas()
	var navigators navigator.Registry
	defer navigators.Clear()

	nav, err := navigator.New(set, canvas, navigator.Options{
		PickKey: pickKey,
		Logger:  logger,
	})
	if err != nil {
		return profile.Record{}, err
	}
	navigators.Track(nav)

	if panel < 0 || panel >= set.Len() {
		return profile.Record{}, fmt.Errorf("panel %d out of range [0, %d)", panel, set.Len())
	}
	if index != nil {
		nav.SetIndex(*index)
	}

	canvas.Key(pickKey, true)
	canvas.Click(navigator.ClickEvent{Panel: panel, At: from})
	canvas.Click(navigator.ClickEvent{Panel: panel, At: to})
	if len(canvas.Plots) == 0 || len(canvas.Plots[0].Profiles) == 0 {
		return profile.Record{}, fmt.Errorf("no profile extracted")
	}

	p := canvas.Plots[0].Profiles[0]
	return profile.Record{
		View:    view.String(),
		Panel:   panel,
		Index:   nav.Index(),
		Summary: p.Summary(),
		Profile: p,
	}, nil
}

func printProfile(w io.Writer, rec profile.Record) {
	p := rec.Profile
	fmt.Fprintf(w, "Profile (%.2f, %.2f) → (%.2f, %.2f) on %s slice %d, panel %d\n",
		p.Start.X, p.Start.Y, p.End.X, p.End.Y, rec.View, rec.Index, rec.Panel)
	fmt.Fprintf(w, "Samples: %d  distance: %.3f\n", p.Len(), p.Start.Dist(p.End))
	fmt.Fprintf(w, "Min: %.6g  Max: %.6g  Mean: %.6g  StdDev: %.6g\n\n",
		rec.Summary.Min, rec.Summary.Max, rec.Summary.Mean, rec.Summary.StdDev)
	for i, v := range p.Values {
		fmt.Fprintf(w, "%4d  %.6g\n", i, v)
	}
}

func runConfig(args []string) {
	if len(args) < 1 {
		fmt.Fprintf(os.Stderr, "Usage: medview config <subcommand>\n")
		fmt.Fprintf(os.Stderr, "Subcommands:\n")
		fmt.Fprintf(os.Stderr, "  test [path]  Test configuration file for validity\n")
		os.Exit(1)
	}

	subcommand := strings.ToLower(args[0])

	switch subcommand {
	case "test":
		runConfigTest(args[1:])
	default:
		fmt.Fprintf(os.Stderr, "Unknown config subcommand: %s\n", subcommand)
		fmt.Fprintf(os.Stderr, "Valid subcommands: test\n")
		os.Exit(1)
	}
}

// runConfigTest validates configuration file(s)
func runConfigTest(args []string) {
	logger := logging.NewLogger(logging.LevelInfo)

	var cfg config.Config
	var configErr error

	if len(args) > 0 {
		path := args[0]
		fmt.Printf("Testing configuration file: %s\n", path)
		cfg, configErr = config.LoadFrom(path)
	} else {
		fmt.Println("Testing configuration (system + user merge):")
		fmt.Printf("  System config: %s\n", config.SystemConfigPath())
		if userPath := config.UserConfigPath(); userPath != "" {
			fmt.Printf("  User config:   %s\n", userPath)
		}
		fmt.Println()

		cfg, configErr = config.Load()
	}

	if configErr != nil {
		fmt.Fprintf(os.Stderr, "❌ Configuration validation FAILED:\n")
		fmt.Fprintf(os.Stderr, "   %v\n", configErr)

		logger.Error("config.validation.error", "Configuration validation failed", map[string]interface{}{
			"error": configErr.Error(),
		})
		os.Exit(1)
	}

	fmt.Println("✓ Configuration is VALID")
	for _, w := range cfg.Warnings() {
		fmt.Printf("  ⚠ %s\n", w.Error())
		logger.Warn("config.validation.warning", "Configuration warning", map[string]interface{}{
			"path":    w.Path,
			"message": w.Message,
		})
	}
	fmt.Println()
	printConfigSummary(os.Stdout, cfg)

	logger.Info("config.validation.ok", "Configuration validation passed", map[string]interface{}{
		"view":    cfg.Viewer.View,
		"palette": cfg.Render.Palette,
	})
}

func printConfigSummary(w io.Writer, cfg config.Config) {
	window := "auto"
	if cfg.Render.VMin != nil && cfg.Render.VMax != nil {
		window = fmt.Sprintf("[%g, %g]", *cfg.Render.VMin, *cfg.Render.VMax)
	}

	fmt.Fprintln(w, "Configuration Summary:")
	fmt.Fprintf(w, "  View:                 %s\n", cfg.Viewer.View)
	fmt.Fprintf(w, "  Fast Key / Step:      %s / %d\n", cfg.Viewer.FastKey, cfg.Viewer.FastStep)
	fmt.Fprintf(w, "  Picking:              %t (key %s)\n", cfg.PickingEnabled(), cfg.Viewer.PickKey)
	fmt.Fprintf(w, "  Palette:              %s\n", cfg.Render.Palette)
	fmt.Fprintf(w, "  Window:               %s\n", window)
	fmt.Fprintf(w, "  Panel Size:           %dx%d\n", cfg.Render.MaxWidth, cfg.Render.MaxHeight)
	fmt.Fprintf(w, "  Log Level:            %s\n", cfg.Logging.Level)
	fmt.Fprintf(w, "  Log Format:           %s\n", cfg.Logging.Format)
	fmt.Fprintf(w, "  State Dir:            %s\n", stateDir(cfg))
}

func printUsage() {
	fmt.Printf(`medview - terminal slice viewer for volumetric images (version %s)

Usage:
  medview view <path>... [flags]      Browse volumes side by side, one panel per path
  medview info <path>... [flags]      Show shapes, slice bound and initial index per view
  medview profile <path>... [flags]   Extract a two-point intensity profile
  medview config test [path]       Test configuration file for validity (defaults to system/user configs)
  medview version                  Print version information
  medview help                     Show this help message

A path is a directory of numbered PNG, JPEG or TIFF slices, or a single image.

Flags:
  --view <transverse|coronal|sagittal>  Slice axis (default from config)
  --titles a,b                          Panel titles, one per path (default: base names)
  --config <file>                       Use this config file instead of system/user configs
  --resume                              (view) Return to the last slice viewed for this source
  --from x,y --to x,y                   (profile) End points in data coordinates
  --index n                             (profile) Slice index (default: middle slice)
  --panel i                             (profile) Panel to sample (default: 0)
  --out file.jsonl                      (profile) Append the profile as a JSON line

Viewer keys:
  up/down or wheel   previous/next slice (shift or pgup/pgdown for fast steps)
  p, ctrl+click      pick two points for a profile
  x                  close newest profile
  q                  quit
`, version)
}
