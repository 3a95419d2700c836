package region

import "errors"

var (
	// ErrLocatorUnavailable indicates the window/screen helper binaries are missing.
	ErrLocatorUnavailable = errors.New("window locator unavailable")
	// ErrTargetNotFound indicates the configured window or screen does not exist.
	ErrTargetNotFound = errors.New("display target not found")
)
