// Package config loads the recorder configuration from YAML.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/offlinefirst/actioncap/pkg/region"
)

// DefaultFileName is read from the working directory when no path is given.
const DefaultFileName = "actioncap.yaml"

// Source kinds.
const (
	SourceEvdev     = "evdev"
	SourceSynthetic = "synthetic"
)

// Config captures the user-adjustable knobs for a recording session.
type Config struct {
	Capture CaptureConfig `yaml:"capture"`
	Output  OutputConfig  `yaml:"output"`
	Logging LoggingConfig `yaml:"logging"`

	// Source indicates where the configuration originated (defaults or a file path).
	Source string `yaml:"-"`
}

// CaptureConfig controls input sources and grouping.
type CaptureConfig struct {
	Source          string        `yaml:"source"`
	KeyboardDevices []string      `yaml:"keyboard_devices"`
	PointerDevices  []string      `yaml:"pointer_devices"`
	AbsolutePointer bool          `yaml:"absolute_pointer"`
	SuppressRepeats bool          `yaml:"suppress_repeats"`
	FlushOnExit     bool          `yaml:"flush_on_exit"`
	Target          TargetConfig  `yaml:"target"`
	Locator         LocatorConfig `yaml:"locator"`
}

// TargetConfig selects the display region pointer events are admitted from.
type TargetConfig struct {
	Mode   string `yaml:"mode"`
	Window string `yaml:"window"`
	Rect   []int  `yaml:"rect"`
	Screen string `yaml:"screen"`
}

// LocatorConfig names the X11 helper binaries.
type LocatorConfig struct {
	XdotoolBinary string `yaml:"xdotool_binary"`
	XrandrBinary  string `yaml:"xrandr_binary"`
}

// OutputConfig controls where records and the session manifest go.
type OutputConfig struct {
	Path     string `yaml:"path"`
	Manifest string `yaml:"manifest"`
}

// LoggingConfig defines log verbosity and formatting.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Default returns the baseline configuration used when no overrides are supplied.
func Default() Config {
	return Config{
		Capture: CaptureConfig{
			Source:          SourceEvdev,
			AbsolutePointer: true,
			SuppressRepeats: true,
			FlushOnExit:     false,
			Target:          TargetConfig{Mode: region.ModeNone},
			Locator: LocatorConfig{
				XdotoolBinary: "xdotool",
				XrandrBinary:  "xrandr",
			},
		},
		Output: OutputConfig{
			Path: "-",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "auto",
		},
		Source: "<defaults>",
	}
}

// Load reads configuration from disk if present, otherwise returning defaults.
// When path is empty, the loader attempts to read ./actioncap.yaml but tolerates a missing file.
func Load(path string) (Config, error) {
	cfg := Default()

	candidate := strings.TrimSpace(path)
	explicit := candidate != ""
	if !explicit {
		candidate = DefaultFileName
	}

	file, err := os.Open(candidate)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			if explicit {
				return cfg, fmt.Errorf("config file %q not found", candidate)
			}
			return cfg, nil
		}
		return cfg, fmt.Errorf("open config file %q: %w", candidate, err)
	}
	defer file.Close()

	if err := decode(file, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config file %q: %w", candidate, err)
	}
	cfg.Source = candidate
	cfg.normalize()

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}

	return cfg, nil
}

func decode(r io.Reader, cfg *Config) error {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return err
	}
	return nil
}

// Validate ensures essential configuration values are present and sensible.
func (c Config) Validate() error {
	if _, err := NormalizeLogLevel(c.Logging.Level); err != nil {
		return err
	}
	if _, err := NormalizeFormat(c.Logging.Format); err != nil {
		return err
	}
	switch c.Capture.Source {
	case SourceEvdev, SourceSynthetic:
	default:
		return fmt.Errorf("capture.source must be %q or %q, got %q", SourceEvdev, SourceSynthetic, c.Capture.Source)
	}
	if _, err := c.Capture.Target.Resolve(); err != nil {
		return err
	}
	if strings.TrimSpace(c.Output.Path) == "" {
		return errors.New("output.path must not be empty")
	}
	return nil
}

// Resolve converts the target section into a region target.
func (t TargetConfig) Resolve() (region.Target, error) {
	mode := strings.ToLower(strings.TrimSpace(t.Mode))
	switch mode {
	case "", region.ModeNone:
		return region.Target{Mode: region.ModeNone}, nil
	case region.ModeWindow:
		if strings.TrimSpace(t.Window) == "" {
			return region.Target{}, errors.New("capture.target.window must be set for window mode")
		}
		return region.Target{Mode: region.ModeWindow, Window: strings.TrimSpace(t.Window)}, nil
	case region.ModeScreen:
		if strings.TrimSpace(t.Screen) == "" {
			return region.Target{}, errors.New("capture.target.screen must be set for screen mode")
		}
		return region.Target{Mode: region.ModeScreen, Screen: strings.TrimSpace(t.Screen)}, nil
	case region.ModeRect:
		if len(t.Rect) != 4 {
			return region.Target{}, fmt.Errorf("capture.target.rect must have four values (left, top, right, bottom), got %d", len(t.Rect))
		}
		return region.Target{Mode: region.ModeRect, Rect: region.Rect{
			Left:   t.Rect[0],
			Top:    t.Rect[1],
			Right:  t.Rect[2],
			Bottom: t.Rect[3],
		}}, nil
	default:
		return region.Target{}, fmt.Errorf("unsupported capture.target.mode %q", t.Mode)
	}
}

func (c *Config) normalize() {
	defaults := Default()
	c.Capture.Source = strings.ToLower(strings.TrimSpace(c.Capture.Source))
	if c.Capture.Source == "" {
		c.Capture.Source = defaults.Capture.Source
	}
	c.Capture.Target.Mode = strings.ToLower(strings.TrimSpace(c.Capture.Target.Mode))
	if c.Capture.Target.Mode == "" {
		c.Capture.Target.Mode = defaults.Capture.Target.Mode
	}
	if strings.TrimSpace(c.Capture.Locator.XdotoolBinary) == "" {
		c.Capture.Locator.XdotoolBinary = defaults.Capture.Locator.XdotoolBinary
	}
	if strings.TrimSpace(c.Capture.Locator.XrandrBinary) == "" {
		c.Capture.Locator.XrandrBinary = defaults.Capture.Locator.XrandrBinary
	}
	c.Capture.KeyboardDevices = trimList(c.Capture.KeyboardDevices)
	c.Capture.PointerDevices = trimList(c.Capture.PointerDevices)
	if strings.TrimSpace(c.Output.Path) == "" {
		c.Output.Path = defaults.Output.Path
	}
	if level, err := NormalizeLogLevel(c.Logging.Level); err == nil {
		c.Logging.Level = level
	}
	if format, err := NormalizeFormat(c.Logging.Format); err == nil {
		c.Logging.Format = format
	}
}

func trimList(values []string) []string {
	var out []string
	for _, v := range values {
		if trimmed := strings.TrimSpace(v); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

// NormalizeLogLevel validates and lowercases known logging levels.
func NormalizeLogLevel(level string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "", "info":
		return "info", nil
	case "debug":
		return "debug", nil
	case "warn", "warning":
		return "warn", nil
	case "error":
		return "error", nil
	default:
		return "", fmt.Errorf("unsupported log level %q", level)
	}
}

// NormalizeFormat validates and canonicalizes logging format identifiers.
func NormalizeFormat(format string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "", "auto":
		return "auto", nil
	case "json":
		return "json", nil
	case "console", "text":
		return "console", nil
	default:
		return "", fmt.Errorf("unsupported log format %q", format)
	}
}
