package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/pflag"

	"github.com/offlinefirst/actioncap/internal/buildinfo"
	"github.com/offlinefirst/actioncap/pkg/capture"
	"github.com/offlinefirst/actioncap/pkg/config"
	"github.com/offlinefirst/actioncap/pkg/emitter"
	"github.com/offlinefirst/actioncap/pkg/events"
	"github.com/offlinefirst/actioncap/pkg/region"
	"github.com/offlinefirst/actioncap/pkg/runmanifest"
	"github.com/offlinefirst/actioncap/pkg/session"
	"github.com/offlinefirst/actioncap/pkg/source"
)

func newRecordCommand() command {
	return command{
		name:        "record",
		description: "Record keyboard and pointer actions as JSON lines",
		configure: func(fs *pflag.FlagSet) {
			fs.String("window", "", "Only admit pointer events inside this X11 window id (decimal or 0x hex)")
			fs.IntSlice("rect", nil, "Only admit pointer events inside LEFT,TOP,RIGHT,BOTTOM")
			fs.String("screen", "", "Only admit pointer events on this xrandr output (or \"primary\")")
			fs.StringP("output", "o", "", "Record output path (\"-\" for stdout)")
			fs.String("manifest", "", "Write a session manifest to this path")
			fs.String("source", "", "Input source (evdev, synthetic)")
			fs.StringSlice("keyboard-device", nil, "Keyboard event device node (repeatable)")
			fs.StringSlice("pointer-device", nil, "Pointer event device node (repeatable)")
			fs.Bool("flush-on-exit", false, "Emit the pending action on shutdown instead of discarding it")
			fs.Bool("plan-only", false, "Print the resolved configuration without starting capture")
		},
		run: runRecord,
	}
}

var (
	timeNow      = time.Now
	hostname     = os.Hostname
	manifestSave = runmanifest.Save
	newLocator   = func(cfg config.Config) *region.XLocator {
		return region.NewXLocator(region.XOptions{
			XdotoolBinary: cfg.Capture.Locator.XdotoolBinary,
			XrandrBinary:  cfg.Capture.Locator.XrandrBinary,
		})
	}
	syntheticInterval = 50 * time.Millisecond
	shutdownSignals   = []os.Signal{os.Interrupt, syscall.SIGTERM}
)

func runRecord(fs *pflag.FlagSet, args []string, app *AppContext, stdout io.Writer, stderr io.Writer) error {
	if app == nil {
		return fmt.Errorf("application context unavailable")
	}
	if len(args) > 0 {
		return fmt.Errorf("unexpected arguments: %s", strings.Join(args, " "))
	}

	cfg := app.Config
	if err := applyRecordFlags(fs, &cfg); err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	target, err := cfg.Capture.Target.Resolve()
	if err != nil {
		return err
	}

	planOnly, _ := fs.GetBool("plan-only")
	logger := app.Logger
	logger.Info("record command invoked", "plan_only", planOnly, "source", cfg.Capture.Source, "target", target.String(), "config_source", cfg.Source)

	if planOnly {
		printRecordPlan(cfg, target, stdout)
		return nil
	}

	ctx, stop := signal.NotifyContext(context.Background(), shutdownSignals...)
	defer stop()

	locator := newLocator(cfg)
	sources, devices, err := buildSources(cfg, locator, logger)
	if err != nil {
		return err
	}

	writer, err := openWriter(cfg.Output.Path, stdout)
	if err != nil {
		return err
	}

	provider := region.NewProvider(ctx, target, region.Options{Locator: locator, Logger: logger})
	machine, err := session.New(session.Options{
		Emitter:         writer,
		Regions:         provider,
		Clock:           timeNow,
		Logger:          logger,
		SuppressRepeats: cfg.Capture.SuppressRepeats,
	})
	if err != nil {
		_ = writer.Close()
		return err
	}

	host, err := hostname()
	if err != nil {
		host = "unknown"
	}
	manifest := runmanifest.New(runmanifest.Options{
		CreatedAt:  timeNow(),
		Hostname:   host,
		AppVersion: buildinfo.Version(),
		Config:     cfg,
		Devices:    devices,
		Target:     provider.String(),
	})
	logger = logger.With("session_id", manifest.SessionID)
	manifest.MarkStarted(timeNow())
	if err := saveManifest(cfg, manifest); err != nil {
		_ = writer.Close()
		return err
	}

	controller := capture.NewController()
	stopWatching := watchControlSignals(controller, func(state, reason string) {
		logger.Info("input gate changed", "state", state, "signal", reason)
		manifest.RecordController(state, reason, timeNow())
	})

	summary, runErr := capture.Run(ctx, capture.Options{
		Sources: sources,
		Handler: machine,
		Logger:  logger,
		Clock:   timeNow,
		Control: controller,
	})
	stopWatching()

	pending := machine.Stats().Pending
	closeErr := machine.Close(cfg.Capture.FlushOnExit)
	writeErr := writer.Close()
	stats := machine.Stats()

	counters := runmanifest.Counters{
		Delivered: summary.Delivered,
		Gated:     summary.Gated,
		Accepted:  stats.Accepted,
		Filtered:  stats.Filtered,
		Ignored:   stats.Ignored,
		Repeats:   stats.Repeats,
		Records:   stats.Records,
	}
	if !cfg.Capture.FlushOnExit {
		counters.Abandoned = pending
	}

	termination := summary.Termination
	err = errors.Join(runErr, closeErr, writeErr)
	if err != nil {
		termination = capture.TerminationError
	}
	manifest.MarkFinished(timeNow(), termination, counters, err)
	if saveErr := saveManifest(cfg, manifest); saveErr != nil {
		err = errors.Join(err, saveErr)
	}

	logger.Info("recording finished",
		"termination", termination,
		"records", counters.Records,
		"accepted", counters.Accepted,
		"filtered", counters.Filtered,
		"ignored", counters.Ignored,
		"repeats", counters.Repeats,
		"gated", counters.Gated,
		"abandoned", counters.Abandoned,
	)
	if cfg.Output.Manifest != "" {
		fmt.Fprintf(stderr, "Manifest: %s\n", cfg.Output.Manifest)
	}

	if err != nil {
		logger.Error("recording failed", "error", err)
		return fmt.Errorf("record session: %w", err)
	}
	return nil
}

// applyRecordFlags overlays explicitly set record flags on cfg.
func applyRecordFlags(fs *pflag.FlagSet, cfg *config.Config) error {
	var targets []string
	for _, name := range []string{"window", "rect", "screen"} {
		if fs.Changed(name) {
			targets = append(targets, "--"+name)
		}
	}
	if len(targets) > 1 {
		return fmt.Errorf("%s are mutually exclusive", strings.Join(targets, " and "))
	}

	switch {
	case fs.Changed("window"):
		window, _ := fs.GetString("window")
		cfg.Capture.Target = config.TargetConfig{Mode: region.ModeWindow, Window: window}
	case fs.Changed("rect"):
		rect, err := fs.GetIntSlice("rect")
		if err != nil {
			return err
		}
		cfg.Capture.Target = config.TargetConfig{Mode: region.ModeRect, Rect: rect}
	case fs.Changed("screen"):
		screen, _ := fs.GetString("screen")
		cfg.Capture.Target = config.TargetConfig{Mode: region.ModeScreen, Screen: screen}
	}

	if fs.Changed("output") {
		cfg.Output.Path, _ = fs.GetString("output")
	}
	if fs.Changed("manifest") {
		cfg.Output.Manifest, _ = fs.GetString("manifest")
	}
	if fs.Changed("source") {
		src, _ := fs.GetString("source")
		cfg.Capture.Source = strings.ToLower(strings.TrimSpace(src))
	}
	if fs.Changed("keyboard-device") {
		cfg.Capture.KeyboardDevices, _ = fs.GetStringSlice("keyboard-device")
	}
	if fs.Changed("pointer-device") {
		cfg.Capture.PointerDevices, _ = fs.GetStringSlice("pointer-device")
	}
	if fs.Changed("flush-on-exit") {
		cfg.Capture.FlushOnExit, _ = fs.GetBool("flush-on-exit")
	}
	return nil
}

// buildSources returns the input sources for cfg and the device nodes they read.
func buildSources(cfg config.Config, locator *region.XLocator, logger *slog.Logger) ([]capture.Source, []string, error) {
	if cfg.Capture.Source == config.SourceSynthetic {
		return []capture.Source{
			{Name: "keyboard", Source: source.Scripted{Timeline: source.DemoKeyboard(), Interval: syntheticInterval}},
			{Name: "pointer", Source: source.Scripted{Timeline: source.DemoPointer(), Interval: syntheticInterval}},
		}, nil, nil
	}

	var pointerLocator source.PointerLocator
	if cfg.Capture.AbsolutePointer {
		if xdotool, _ := locator.Available(); xdotool {
			pointerLocator = locator
		} else {
			logger.Warn("xdotool not found, pointer coordinates are relative to the start position")
		}
	}

	var (
		sources []capture.Source
		devices []string
	)
	classes := []struct {
		device events.Device
		paths  []string
	}{
		{device: events.DeviceKeyboard, paths: cfg.Capture.KeyboardDevices},
		{device: events.DevicePointer, paths: cfg.Capture.PointerDevices},
	}
	for _, class := range classes {
		src, err := source.NewEvdev(source.EvdevOptions{
			Device:  class.device,
			Paths:   class.paths,
			Locator: pointerLocator,
			Logger:  logger,
		})
		if errors.Is(err, source.ErrNoDevices) {
			logger.Warn("no input devices found, skipping", "device_class", class.device.String())
			continue
		}
		if err != nil {
			return nil, nil, err
		}
		sources = append(sources, capture.Source{Name: class.device.String(), Source: src})
		devices = append(devices, src.Paths()...)
	}
	if len(sources) == 0 {
		return nil, nil, fmt.Errorf("evdev capture: %w", source.ErrNoDevices)
	}
	return sources, devices, nil
}

func openWriter(path string, stdout io.Writer) (*emitter.Writer, error) {
	if strings.TrimSpace(path) == emitter.Stdout {
		return emitter.NewWriter(stdout), nil
	}
	return emitter.Open(path)
}

func saveManifest(cfg config.Config, manifest runmanifest.Manifest) error {
	if cfg.Output.Manifest == "" {
		return nil
	}
	if err := manifestSave(manifest, cfg.Output.Manifest); err != nil {
		return fmt.Errorf("write manifest: %w", err)
	}
	return nil
}

func printRecordPlan(cfg config.Config, target region.Target, stdout io.Writer) {
	fmt.Fprintf(stdout, "Resolved configuration (source: %s)\n", cfg.Source)
	fmt.Fprintf(stdout, "  capture.source: %s\n", cfg.Capture.Source)
	fmt.Fprintf(stdout, "  capture.keyboard_devices: %s\n", deviceList(cfg.Capture.KeyboardDevices))
	fmt.Fprintf(stdout, "  capture.pointer_devices: %s\n", deviceList(cfg.Capture.PointerDevices))
	fmt.Fprintf(stdout, "  capture.target: %s\n", target.String())
	fmt.Fprintf(stdout, "  capture.absolute_pointer: %t\n", cfg.Capture.AbsolutePointer)
	fmt.Fprintf(stdout, "  capture.suppress_repeats: %t\n", cfg.Capture.SuppressRepeats)
	fmt.Fprintf(stdout, "  capture.flush_on_exit: %t\n", cfg.Capture.FlushOnExit)
	fmt.Fprintf(stdout, "  output.path: %s\n", cfg.Output.Path)
	if cfg.Output.Manifest != "" {
		fmt.Fprintf(stdout, "  output.manifest: %s\n", cfg.Output.Manifest)
	}
	fmt.Fprintf(stdout, "  logging.level: %s\n", cfg.Logging.Level)
	fmt.Fprintf(stdout, "  logging.format: %s\n", cfg.Logging.Format)
}

func deviceList(paths []string) string {
	if len(paths) == 0 {
		return "auto"
	}
	return strings.Join(paths, ", ")
}
