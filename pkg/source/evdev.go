package source

import (
	"context"
	"encoding/binary"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"sort"

	"github.com/offlinefirst/actioncap/pkg/events"
)

// Device discovery globs per device class.
var discoveryPatterns = map[events.Device][]string{
	events.DeviceKeyboard: {"/dev/input/by-path/*-event-kbd", "/dev/input/by-id/*-event-kbd"},
	events.DevicePointer:  {"/dev/input/by-path/*-event-mouse", "/dev/input/by-id/*-event-mouse"},
}

// EvdevOptions configure an evdev source.
type EvdevOptions struct {
	// Device selects which class of notifications the source produces.
	Device events.Device
	// Paths lists event device nodes; empty discovers them.
	Paths []string
	// Locator refines pointer coordinates to absolute screen positions.
	Locator PointerLocator
	Logger  *slog.Logger
}

// Evdev reads Linux input event devices of one class. All devices of the
// class are multiplexed on the goroutine calling Stream.
type Evdev struct {
	device   events.Device
	paths    []string
	locator  PointerLocator
	logger   *slog.Logger
	keyboard keyboardState
	pointer  pointerState
}

// NewEvdev validates options and resolves device paths.
func NewEvdev(opts EvdevOptions) (*Evdev, error) {
	if opts.Device != events.DeviceKeyboard && opts.Device != events.DevicePointer {
		return nil, fmt.Errorf("unsupported device class %q", opts.Device.String())
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	paths := opts.Paths
	if len(paths) == 0 {
		paths = Discover(opts.Device)
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("%s: %w", opts.Device.String(), ErrNoDevices)
	}
	return &Evdev{
		device:  opts.Device,
		paths:   paths,
		locator: opts.Locator,
		logger:  logger.With("device_class", opts.Device.String()),
	}, nil
}

// Paths returns the device nodes the source reads.
func (e *Evdev) Paths() []string {
	return append([]string(nil), e.paths...)
}

// Discover lists event device nodes for a device class, resolving symlinks
// and removing duplicates.
func Discover(device events.Device) []string {
	seen := make(map[string]struct{})
	var paths []string
	for _, pattern := range discoveryPatterns[device] {
		matches, err := filepath.Glob(pattern)
		if err != nil {
			continue
		}
		for _, match := range matches {
			resolved, err := filepath.EvalSymlinks(match)
			if err != nil {
				continue
			}
			if _, ok := seen[resolved]; ok {
				continue
			}
			seen[resolved] = struct{}{}
			paths = append(paths, resolved)
		}
	}
	sort.Strings(paths)
	return paths
}

// dispatch handles one decoded input_event.
func (e *Evdev) dispatch(ctx context.Context, typ, code uint16, value int32, emit func(events.Raw) error) error {
	switch e.device {
	case events.DeviceKeyboard:
		if typ != evKey {
			return nil
		}
		if _, isButton := translateButton(code); isButton {
			return nil
		}
		raw, ok := e.keyboard.translate(code, value)
		if !ok {
			return nil
		}
		return emit(raw)
	case events.DevicePointer:
		switch typ {
		case evRel:
			e.pointer.move(code, value)
			return nil
		case evKey:
			if _, isButton := translateButton(code); !isButton || value == valueRepeat {
				return nil
			}
			if e.locator != nil {
				if x, y, err := e.locator.PointerPosition(ctx); err == nil {
					e.pointer.x, e.pointer.y = x, y
				} else {
					e.logger.Debug("pointer position lookup failed", "error", err)
				}
			}
			raw, ok := e.pointer.translate(code, value)
			if !ok {
				return nil
			}
			return emit(raw)
		}
	}
	return nil
}

// decodeEvents walks a buffer of native-endian input_event records of the
// given size, calling fn for every non-sync event. It returns the number of
// bytes consumed.
func decodeEvents(buf []byte, size int, fn func(typ, code uint16, value int32) error) (int, error) {
	consumed := 0
	for len(buf)-consumed >= size {
		record := buf[consumed : consumed+size]
		consumed += size
		tail := record[size-8:]
		typ := binary.NativeEndian.Uint16(tail[0:2])
		code := binary.NativeEndian.Uint16(tail[2:4])
		value := int32(binary.NativeEndian.Uint32(tail[4:8]))
		if typ == evSyn {
			continue
		}
		if err := fn(typ, code, value); err != nil {
			return consumed, err
		}
	}
	return consumed, nil
}
