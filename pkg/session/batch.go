package session

import "github.com/offlinefirst/actioncap/pkg/events"

// Batch is a sealed group of events. Times are milliseconds since the Unix
// epoch.
type Batch struct {
	Events    []events.Event `json:"events"`
	StartTime int64          `json:"startTime"`
	EndTime   int64          `json:"endTime"`
}

// Emitter receives sealed batches in flush order. Emit is called with the
// machine lock held and must not call back into the machine.
type Emitter interface {
	Emit(Batch) error
}

// EmitterFunc adapts a function to the Emitter interface.
type EmitterFunc func(Batch) error

// Emit calls f.
func (f EmitterFunc) Emit(b Batch) error { return f(b) }
