// Package session groups canonical input events into action batches. A
// Machine classifies each event against its current state (Normal, Pointer or
// Special), buffers it, and seals the buffer into a Batch when an action is
// complete.
package session

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/offlinefirst/actioncap/pkg/events"
	"github.com/offlinefirst/actioncap/pkg/region"
)

// State is the classification state of a Machine.
type State uint8

const (
	// StateNormal groups ordinary key presses.
	StateNormal State = iota
	// StatePointer groups a pointer gesture until a button release.
	StatePointer
	// StateSpecial groups everything while a special key is held.
	StateSpecial
)

func (s State) String() string {
	switch s {
	case StateNormal:
		return "normal"
	case StatePointer:
		return "pointer"
	case StateSpecial:
		return "special"
	default:
		return "unknown"
	}
}

// Options configure a Machine.
type Options struct {
	Emitter Emitter
	// Regions resolves the capture region for pointer notifications passed
	// to Handle. Nil disables filtering.
	Regions region.Provider
	Clock   func() time.Time
	Logger  *slog.Logger
	// SuppressRepeats drops a key press that repeats the currently held key.
	SuppressRepeats bool
}

// Stats counts what a Machine did with the events it received.
type Stats struct {
	Accepted int `json:"accepted"`
	Filtered int `json:"filtered"`
	Ignored  int `json:"ignored"`
	Repeats  int `json:"repeats"`
	Records  int `json:"records"`
	Pending  int `json:"pending"`
}

// Machine is the per-session classifier. All methods are safe for concurrent
// use; classification and any resulting emit happen under one lock so record
// order matches event arrival order across producers.
type Machine struct {
	mu      sync.Mutex
	state   State
	trigger events.Key
	buf     Buffer

	emitter Emitter
	regions region.Provider
	clock   func() time.Time
	logger  *slog.Logger

	suppressRepeats bool
	held            events.Key

	closed bool
	stats  Stats
}

// New constructs a machine in StateNormal with an empty buffer.
func New(opts Options) (*Machine, error) {
	if opts.Emitter == nil {
		return nil, ErrNoEmitter
	}
	regions := opts.Regions
	if regions == nil {
		regions = region.Unfiltered{}
	}
	clock := opts.Clock
	if clock == nil {
		clock = time.Now
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Machine{
		state:           StateNormal,
		emitter:         opts.Emitter,
		regions:         regions,
		clock:           clock,
		logger:          logger,
		suppressRepeats: opts.SuppressRepeats,
	}, nil
}

// Handle normalizes a raw notification and classifies the result. Pointer
// notifications first query the region provider; those falling outside the
// resolved region are discarded.
func (m *Machine) Handle(ctx context.Context, raw events.Raw) error {
	var display *region.Rect
	if raw.Device == events.DevicePointer {
		if rect, ok := m.regions.Resolve(ctx); ok {
			display = &rect
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrClosed
	}

	if raw.Device == events.DeviceKeyboard && m.repeated(raw) {
		m.stats.Repeats++
		return nil
	}

	event, ok := events.Normalize(raw, display)
	if !ok {
		m.stats.Filtered++
		return nil
	}
	return m.update(event)
}

// Update classifies an already-normalized event.
func (m *Machine) Update(event events.Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrClosed
	}
	return m.update(event)
}

// State returns the current classification state.
func (m *Machine) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Trigger returns the held special key while in StateSpecial.
func (m *Machine) Trigger() (events.Key, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.trigger, !m.trigger.IsZero()
}

// Stats returns a snapshot of the counters.
func (m *Machine) Stats() Stats {
	m.mu.Lock()
	defer m.mu.Unlock()
	stats := m.stats
	stats.Pending = m.buf.Len()
	return stats
}

// Close stops the machine. A pending batch is emitted when flush is true and
// abandoned otherwise. Events delivered after Close return ErrClosed.
func (m *Machine) Close(flush bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return nil
	}
	m.closed = true
	if flush {
		return m.flush()
	}
	if pending := m.buf.Len(); pending > 0 {
		m.logger.Info("abandoning pending batch", "events", pending, "state", m.state.String())
		m.buf.Reset()
	}
	return nil
}

func (m *Machine) update(event events.Event) error {
	switch m.state {
	case StateNormal:
		return m.handleNormal(event)
	case StatePointer:
		return m.handlePointer(event)
	case StateSpecial:
		return m.handleSpecial(event)
	default:
		return fmt.Errorf("invalid session state %d", m.state)
	}
}

func (m *Machine) handleNormal(event events.Event) error {
	switch e := event.(type) {
	case events.KeyEvent:
		if !e.Pressed {
			m.ignore(e)
			return nil
		}
		if e.Key.IsSpecial() && m.trigger.IsZero() {
			err := m.flush()
			m.append(e)
			m.trigger = e.Key
			m.transition(StateSpecial)
			return err
		}
		m.append(e)
		return nil
	case events.PointerEvent:
		err := m.flush()
		m.append(e)
		m.transition(StatePointer)
		return err
	default:
		return fmt.Errorf("unsupported event %T", event)
	}
}

func (m *Machine) handlePointer(event events.Event) error {
	switch e := event.(type) {
	case events.PointerEvent:
		m.append(e)
		if e.Pressed {
			return nil
		}
		err := m.flush()
		m.transition(StateNormal)
		return err
	case events.KeyEvent:
		if !e.Pressed {
			m.ignore(e)
			return nil
		}
		m.append(e)
		return nil
	default:
		return fmt.Errorf("unsupported event %T", event)
	}
}

func (m *Machine) handleSpecial(event events.Event) error {
	switch e := event.(type) {
	case events.KeyEvent:
		if e.Pressed {
			m.append(e)
			return nil
		}
		if e.Key != m.trigger {
			m.ignore(e)
			return nil
		}
		// The trigger release closes its own record: a, ctrl, c, ctrl-up emits [a] then [ctrl, c, ctrl-up].
		m.append(e)
		m.trigger = events.Key{}
		err := m.flush()
		m.transition(StateNormal)
		return err
	case events.PointerEvent:
		if !e.Pressed {
			m.ignore(e)
			return nil
		}
		m.append(e)
		return nil
	default:
		return fmt.Errorf("unsupported event %T", event)
	}
}

func (m *Machine) append(event events.Event) {
	m.buf.Append(event, m.now())
	m.stats.Accepted++
}

func (m *Machine) ignore(event events.Event) {
	m.stats.Ignored++
	m.logger.Debug("release ignored", "kind", event.Kind().String(), "state", m.state.String())
}

func (m *Machine) transition(next State) {
	if next == m.state {
		return
	}
	m.logger.Debug("state transition", "from", m.state.String(), "to", next.String())
	m.state = next
}

// flush seals the buffer and hands the batch to the emitter. The buffer is
// cleared even when the emitter fails.
func (m *Machine) flush() error {
	batch, ok := m.buf.Seal(m.now())
	if !ok {
		return nil
	}
	m.stats.Records++
	m.logger.Debug("batch sealed", "events", len(batch.Events), "duration_ms", batch.EndTime-batch.StartTime)
	if err := m.emitter.Emit(batch); err != nil {
		return fmt.Errorf("emit batch: %w", err)
	}
	return nil
}

// repeated reports whether raw is an auto-repeat of the held key and keeps
// track of which key is held.
func (m *Machine) repeated(raw events.Raw) bool {
	if !m.suppressRepeats {
		return false
	}
	if !raw.Pressed {
		if raw.Key == m.held {
			m.held = events.Key{}
		}
		return false
	}
	if !raw.Key.IsZero() && raw.Key == m.held {
		return true
	}
	m.held = raw.Key
	return false
}

func (m *Machine) now() int64 {
	return m.clock().UnixMilli()
}
