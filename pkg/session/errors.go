package session

import "errors"

var (
	// ErrNoEmitter is returned when a machine is built without an emitter.
	ErrNoEmitter = errors.New("session emitter must be provided")
	// ErrClosed is returned for events delivered after Close.
	ErrClosed = errors.New("session closed")
)
