package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/offlinefirst/actioncap/pkg/region"
)

func TestLoadDefaultsWhenFileMissing(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "<defaults>", cfg.Source)
	assert.Equal(t, SourceEvdev, cfg.Capture.Source)
	assert.Equal(t, region.ModeNone, cfg.Capture.Target.Mode)
	assert.True(t, cfg.Capture.SuppressRepeats)
	assert.False(t, cfg.Capture.FlushOnExit)
	assert.Equal(t, "-", cfg.Output.Path)
	assert.Equal(t, "auto", cfg.Logging.Format)
}

func TestLoadExplicitMissingFileFails(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoadFromFileOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "actioncap.yaml")
	content := `capture:
  source: Synthetic
  keyboard_devices:
    - /dev/input/event3
    - "  "
  suppress_repeats: false
  flush_on_exit: true
  target:
    mode: rect
    rect: [0, 0, 1920, 1080]
  locator:
    xdotool_binary: /opt/bin/xdotool
output:
  path: actions.jsonl
  manifest: session.json
logging:
  level: DEBUG
  format: text
`
	require.NoError(t, os.WriteFile(cfgPath, []byte(content), 0o644))

	cfg, err := Load(cfgPath)
	require.NoError(t, err)

	assert.Equal(t, cfgPath, cfg.Source)
	assert.Equal(t, SourceSynthetic, cfg.Capture.Source)
	assert.Equal(t, []string{"/dev/input/event3"}, cfg.Capture.KeyboardDevices)
	assert.False(t, cfg.Capture.SuppressRepeats)
	assert.True(t, cfg.Capture.FlushOnExit)
	assert.True(t, cfg.Capture.AbsolutePointer, "unset keys keep defaults")
	assert.Equal(t, "/opt/bin/xdotool", cfg.Capture.Locator.XdotoolBinary)
	assert.Equal(t, "xrandr", cfg.Capture.Locator.XrandrBinary)
	assert.Equal(t, "actions.jsonl", cfg.Output.Path)
	assert.Equal(t, "session.json", cfg.Output.Manifest)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "console", cfg.Logging.Format)

	target, err := cfg.Capture.Target.Resolve()
	require.NoError(t, err)
	assert.Equal(t, region.Target{Mode: region.ModeRect, Rect: region.Rect{Right: 1920, Bottom: 1080}}, target)
}

func TestLoadRejectsUnknownKeys(t *testing.T) {
	cfgPath := filepath.Join(t.TempDir(), "actioncap.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("capture:\n  sorce: evdev\n"), 0o644))

	_, err := Load(cfgPath)
	assert.Error(t, err)
}

func TestLoadEmptyFileUsesDefaults(t *testing.T) {
	cfgPath := filepath.Join(t.TempDir(), "actioncap.yaml")
	require.NoError(t, os.WriteFile(cfgPath, nil, 0o644))

	cfg, err := Load(cfgPath)
	require.NoError(t, err)
	assert.Equal(t, SourceEvdev, cfg.Capture.Source)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{name: "log level", mutate: func(c *Config) { c.Logging.Level = "verbose" }},
		{name: "log format", mutate: func(c *Config) { c.Logging.Format = "xml" }},
		{name: "source", mutate: func(c *Config) { c.Capture.Source = "x11" }},
		{name: "rect arity", mutate: func(c *Config) { c.Capture.Target = TargetConfig{Mode: "rect", Rect: []int{1, 2, 3}} }},
		{name: "window id", mutate: func(c *Config) { c.Capture.Target = TargetConfig{Mode: "window"} }},
		{name: "screen name", mutate: func(c *Config) { c.Capture.Target = TargetConfig{Mode: "screen"} }},
		{name: "target mode", mutate: func(c *Config) { c.Capture.Target = TargetConfig{Mode: "monitor"} }},
		{name: "output", mutate: func(c *Config) { c.Output.Path = " " }},
	}
	require.NoError(t, Default().Validate())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestTargetResolveModes(t *testing.T) {
	target, err := TargetConfig{Mode: "Window", Window: " 0x3a00007 "}.Resolve()
	require.NoError(t, err)
	assert.Equal(t, region.Target{Mode: region.ModeWindow, Window: "0x3a00007"}, target)

	target, err = TargetConfig{Mode: "screen", Screen: "HDMI-1"}.Resolve()
	require.NoError(t, err)
	assert.Equal(t, "screen:HDMI-1", target.String())

	target, err = TargetConfig{}.Resolve()
	require.NoError(t, err)
	assert.Equal(t, region.ModeNone, target.Mode)
}

func TestNormalizeFormat(t *testing.T) {
	for in, want := range map[string]string{"": "auto", "JSON": "json", "text": "console", "console": "console"} {
		got, err := NormalizeFormat(in)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
}
