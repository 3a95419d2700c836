// Package region resolves the display area that pointer events are admitted
// from. A target is either nothing (no filtering), an explicit rectangle, a
// named screen or a specific window.
package region

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
)

// Target modes accepted in configuration.
const (
	ModeNone   = "none"
	ModeWindow = "window"
	ModeRect   = "rect"
	ModeScreen = "screen"
)

// Target describes the configured capture surface.
type Target struct {
	Mode   string
	Window string
	Rect   Rect
	Screen string
}

func (t Target) String() string {
	switch t.Mode {
	case ModeWindow:
		return "window:" + t.Window
	case ModeRect:
		return "rect:" + t.Rect.String()
	case ModeScreen:
		return "screen:" + t.Screen
	default:
		return ModeNone
	}
}

// Provider returns the current bounding rectangle of the capture surface.
// ok is false when no filtering applies.
type Provider interface {
	Resolve(ctx context.Context) (rect Rect, ok bool)
	String() string
}

// Options configure provider construction.
type Options struct {
	Locator Locator
	Logger  *slog.Logger
}

// NewProvider builds the provider for target. Targets that cannot be
// resolved at configuration time degrade to the unfiltered provider; the
// fallback is logged, never returned.
func NewProvider(ctx context.Context, target Target, opts Options) Provider {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	locator := opts.Locator
	if locator == nil {
		locator = NewXLocator(XOptions{})
	}

	switch target.Mode {
	case "", ModeNone:
		return Unfiltered{}
	case ModeRect:
		if target.Rect.Empty() {
			logger.Warn("display rectangle is empty, pointer events will not be filtered", "rect", target.Rect.String())
			return Unfiltered{}
		}
		return Fixed{Rect: target.Rect, Label: target.String()}
	case ModeScreen:
		screens, err := locator.Screens(ctx)
		if err != nil {
			logger.Warn("screen lookup failed, pointer events will not be filtered", "screen", target.Screen, "error", err)
			return Unfiltered{}
		}
		rect, ok := lookupScreen(screens, target.Screen)
		if !ok {
			logger.Warn("screen not found, pointer events will not be filtered", "screen", target.Screen, "error", ErrTargetNotFound)
			return Unfiltered{}
		}
		logger.Debug("screen resolved", "screen", target.Screen, "rect", rect.String())
		return Fixed{Rect: rect, Label: target.String()}
	case ModeWindow:
		id, err := parseWindowID(target.Window)
		if err != nil {
			logger.Warn("invalid window identifier, pointer events will not be filtered", "window", target.Window, "error", err)
			return Unfiltered{}
		}
		if _, err := locator.WindowGeometry(ctx, target.Window); err != nil {
			logger.Warn("window lookup failed, pointer events will not be filtered", "window", target.Window, "error", err)
			return Unfiltered{}
		}
		return &Window{id: id, raw: target.Window, locator: locator, logger: logger}
	default:
		logger.Warn("unknown display target mode, pointer events will not be filtered", "mode", target.Mode)
		return Unfiltered{}
	}
}

// Unfiltered admits every pointer event.
type Unfiltered struct{}

// Resolve always reports that no filter applies.
func (Unfiltered) Resolve(context.Context) (Rect, bool) { return Rect{}, false }

func (Unfiltered) String() string { return ModeNone }

// Fixed admits pointer events inside a static rectangle.
type Fixed struct {
	Rect  Rect
	Label string
}

// Resolve returns the configured rectangle.
func (f Fixed) Resolve(context.Context) (Rect, bool) { return f.Rect, true }

func (f Fixed) String() string {
	if f.Label != "" {
		return f.Label
	}
	return "rect:" + f.Rect.String()
}

// Window tracks a specific window. While the window is not focused every
// query yields Inactive.
type Window struct {
	id      uint64
	raw     string
	locator Locator
	logger  *slog.Logger
}

// Resolve queries the focused window and, when it matches, its geometry.
func (w *Window) Resolve(ctx context.Context) (Rect, bool) {
	active, err := w.locator.ActiveWindow(ctx)
	if err != nil {
		w.logger.Debug("active window query failed", "error", err)
		return Inactive, true
	}
	activeID, err := parseWindowID(active)
	if err != nil || activeID != w.id {
		return Inactive, true
	}
	rect, err := w.locator.WindowGeometry(ctx, w.raw)
	if err != nil {
		w.logger.Debug("window geometry query failed", "window", w.raw, "error", err)
		return Inactive, true
	}
	return rect, true
}

func (w *Window) String() string { return "window:" + w.raw }

// parseWindowID accepts decimal or 0x-prefixed hexadecimal identifiers.
func parseWindowID(raw string) (uint64, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return 0, fmt.Errorf("empty window identifier: %w", ErrTargetNotFound)
	}
	digits, base := trimmed, 10
	if hex, ok := strings.CutPrefix(strings.ToLower(trimmed), "0x"); ok {
		digits, base = hex, 16
	}
	id, err := strconv.ParseUint(digits, base, 64)
	if err != nil {
		return 0, fmt.Errorf("parse window identifier %q: %w", raw, err)
	}
	return id, nil
}

func lookupScreen(screens map[string]Rect, name string) (Rect, bool) {
	key := strings.TrimSpace(name)
	if rect, ok := screens[key]; ok {
		return rect, true
	}
	for candidate, rect := range screens {
		if strings.EqualFold(candidate, key) {
			return rect, true
		}
	}
	return Rect{}, false
}
