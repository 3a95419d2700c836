package session

import "github.com/offlinefirst/actioncap/pkg/events"

// Buffer is the in-progress batch: ordered events plus the time of the first
// append since the last reset. It is empty exactly when openedAt is zero.
type Buffer struct {
	events   []events.Event
	openedAt int64
}

// Append adds event, stamping openedAt with now on the first append.
func (b *Buffer) Append(event events.Event, now int64) {
	if len(b.events) == 0 {
		b.openedAt = now
	}
	b.events = append(b.events, event)
}

// Len returns the number of buffered events.
func (b *Buffer) Len() int { return len(b.events) }

// OpenedAt returns the first-append timestamp in milliseconds, or zero.
func (b *Buffer) OpenedAt() int64 { return b.openedAt }

// Seal returns the buffered events as a batch ending at now, or at openedAt
// if the clock stepped backwards, and resets the buffer. ok is false when the
// buffer is empty.
func (b *Buffer) Seal(now int64) (batch Batch, ok bool) {
	if len(b.events) == 0 {
		return Batch{}, false
	}
	if now < b.openedAt {
		now = b.openedAt
	}
	batch = Batch{
		Events:    b.events,
		StartTime: b.openedAt,
		EndTime:   now,
	}
	b.Reset()
	return batch, true
}

// Reset discards buffered events.
func (b *Buffer) Reset() {
	b.events = nil
	b.openedAt = 0
}
