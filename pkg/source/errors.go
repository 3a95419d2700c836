package source

import "errors"

var (
	// ErrUnsupported indicates evdev capture is not available on this platform.
	ErrUnsupported = errors.New("evdev input capture is only supported on linux")
	// ErrNoDevices indicates no readable input device was found.
	ErrNoDevices = errors.New("no input devices found")
)
