// Package source delivers raw keyboard and pointer notifications. On Linux
// the evdev source reads input devices directly; a scripted source replays a
// fixed timeline for demos and tests.
package source

import (
	"context"

	"github.com/offlinefirst/actioncap/pkg/events"
)

// EventSource streams raw notifications until ctx is done or emit fails.
// Each source runs on its own goroutine.
type EventSource interface {
	Stream(ctx context.Context, emit func(events.Raw) error) error
}

// EventSourceFunc adapts a function literal to the EventSource interface.
type EventSourceFunc func(ctx context.Context, emit func(events.Raw) error) error

// Stream calls the underlying function.
func (f EventSourceFunc) Stream(ctx context.Context, emit func(events.Raw) error) error {
	return f(ctx, emit)
}

// Kinds of source selectable in configuration.
const (
	KindEvdev     = "evdev"
	KindSynthetic = "synthetic"
)

// PointerLocator reports the absolute pointer position on screen.
type PointerLocator interface {
	PointerPosition(ctx context.Context) (x, y int, err error)
}
