package source

import (
	"context"
	"time"

	"github.com/offlinefirst/actioncap/pkg/events"
)

// Scripted replays a fixed list of raw notifications.
type Scripted struct {
	Timeline []events.Raw
	// Interval is the pause between notifications; zero replays immediately.
	Interval time.Duration
}

// Stream emits the timeline in order.
func (s Scripted) Stream(ctx context.Context, emit func(events.Raw) error) error {
	if ctx == nil {
		ctx = context.Background()
	}
	var ticker *time.Ticker
	if s.Interval > 0 {
		ticker = time.NewTicker(s.Interval)
		defer ticker.Stop()
	}
	for _, raw := range s.Timeline {
		if err := ctx.Err(); err != nil {
			return err
		}
		if ticker != nil {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-ticker.C:
			}
		}
		if err := emit(raw); err != nil {
			return err
		}
	}
	return nil
}

// DemoKeyboard types a word and copies it with ctrl+c.
func DemoKeyboard() []events.Raw {
	ctrl := events.Named(events.NameCtrlL)
	var timeline []events.Raw
	for _, r := range "hello" {
		key := events.Character(string(r))
		timeline = append(timeline, events.RawKey(key, true), events.RawKey(key, false))
	}
	return append(timeline,
		events.RawKey(ctrl, true),
		events.RawKey(events.Character("c"), true),
		events.RawKey(events.Character("c"), false),
		events.RawKey(ctrl, false),
	)
}

// DemoPointer performs a click and a short drag.
func DemoPointer() []events.Raw {
	return []events.Raw{
		events.RawPointer(120, 80, events.ButtonLeft, true),
		events.RawPointer(120, 80, events.ButtonLeft, false),
		events.RawPointer(300, 200, events.ButtonLeft, true),
		events.RawPointer(420, 260, events.ButtonLeft, false),
	}
}
