//go:build !linux

package source

import (
	"context"

	"github.com/offlinefirst/actioncap/pkg/events"
)

// Stream reports that evdev capture is unavailable on this platform.
func (e *Evdev) Stream(context.Context, func(events.Raw) error) error {
	return ErrUnsupported
}
