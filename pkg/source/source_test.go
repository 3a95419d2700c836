package source

import (
	"context"
	"encoding/binary"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/offlinefirst/actioncap/pkg/events"
)

const testEventSize = 24

func record(typ, code uint16, value int32) []byte {
	buf := make([]byte, testEventSize)
	binary.NativeEndian.PutUint16(buf[16:18], typ)
	binary.NativeEndian.PutUint16(buf[18:20], code)
	binary.NativeEndian.PutUint32(buf[20:24], uint32(value))
	return buf
}

type fakePointer struct {
	x, y int
	err  error
}

func (f fakePointer) PointerPosition(context.Context) (int, int, error) { return f.x, f.y, f.err }

func collect(t *testing.T, e *Evdev, recs ...[]byte) []events.Raw {
	t.Helper()
	var buf []byte
	for _, r := range recs {
		buf = append(buf, r...)
	}
	var got []events.Raw
	consumed, err := decodeEvents(buf, testEventSize, func(typ, code uint16, value int32) error {
		return e.dispatch(context.Background(), typ, code, value, func(raw events.Raw) error {
			got = append(got, raw)
			return nil
		})
	})
	require.NoError(t, err)
	assert.Equal(t, len(buf), consumed)
	return got
}

func TestKeyboardTranslation(t *testing.T) {
	e, err := NewEvdev(EvdevOptions{Device: events.DeviceKeyboard, Paths: []string{"/dev/null"}})
	require.NoError(t, err)

	got := collect(t, e,
		record(evKey, 30, valuePress),
		record(evSyn, 0, 0),
		record(evKey, 30, valueRepeat),
		record(evKey, 30, valueRelease),
		record(evKey, keyLeftShift, valuePress),
		record(evKey, 40, valuePress),
		record(evKey, keyLeftShift, valueRelease),
		record(evKey, 29, valuePress),
		record(evKey, 240, valuePress),
		record(evKey, btnLeft, valuePress),
	)

	assert.Equal(t, []events.Raw{
		events.RawKey(events.Character("a"), true),
		events.RawKey(events.Character("a"), false),
		events.RawKey(events.Named(events.NameShiftL), true),
		events.RawKey(events.Character(`"`), true),
		events.RawKey(events.Named(events.NameShiftL), false),
		events.RawKey(events.Named(events.NameCtrlL), true),
		events.RawKey(events.RawCode(240), true),
	}, got)
}

func TestPointerTranslation(t *testing.T) {
	e, err := NewEvdev(EvdevOptions{Device: events.DevicePointer, Paths: []string{"/dev/null"}})
	require.NoError(t, err)

	got := collect(t, e,
		record(evRel, relX, 15),
		record(evRel, relY, -4),
		record(evKey, btnLeft, valuePress),
		record(evKey, 30, valuePress),
		record(evRel, relX, 5),
		record(evKey, btnLeft, valueRelease),
		record(evKey, btnExtra, valuePress),
	)

	assert.Equal(t, []events.Raw{
		events.RawPointer(15, -4, events.ButtonLeft, true),
		events.RawPointer(20, -4, events.ButtonLeft, false),
		events.RawPointer(20, -4, events.ButtonX2, true),
	}, got)
}

func TestPointerUsesLocatorPosition(t *testing.T) {
	e, err := NewEvdev(EvdevOptions{Device: events.DevicePointer, Paths: []string{"/dev/null"}, Locator: fakePointer{x: 800, y: 450}})
	require.NoError(t, err)

	got := collect(t, e, record(evRel, relX, 3), record(evKey, btnRight, valuePress))
	assert.Equal(t, []events.Raw{events.RawPointer(800, 450, events.ButtonRight, true)}, got)

	e, err = NewEvdev(EvdevOptions{Device: events.DevicePointer, Paths: []string{"/dev/null"}, Locator: fakePointer{err: errors.New("no display")}})
	require.NoError(t, err)
	got = collect(t, e, record(evRel, relY, 7), record(evKey, btnMiddle, valuePress))
	assert.Equal(t, []events.Raw{events.RawPointer(0, 7, events.ButtonMiddle, true)}, got)
}

func TestDecodeEventsStopsOnError(t *testing.T) {
	boom := errors.New("boom")
	buf := append(record(evKey, 30, 1), record(evKey, 31, 1)...)
	calls := 0
	consumed, err := decodeEvents(append(buf, 0x01, 0x02), testEventSize, func(uint16, uint16, int32) error {
		calls++
		return boom
	})
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 1, calls)
	assert.Equal(t, testEventSize, consumed)
}

func TestNewEvdevRejectsUnknownDevice(t *testing.T) {
	_, err := NewEvdev(EvdevOptions{Device: events.Device(9), Paths: []string{"/dev/null"}})
	assert.Error(t, err)
}

func TestScriptedReplaysTimeline(t *testing.T) {
	src := Scripted{Timeline: DemoKeyboard()}

	var got []events.Raw
	require.NoError(t, src.Stream(context.Background(), func(raw events.Raw) error {
		got = append(got, raw)
		return nil
	}))
	assert.Equal(t, DemoKeyboard(), got)
	assert.Equal(t, events.RawKey(events.Named(events.NameCtrlL), false), got[len(got)-1])
}

func TestScriptedPropagatesEmitError(t *testing.T) {
	boom := errors.New("boom")
	err := Scripted{Timeline: DemoPointer()}.Stream(context.Background(), func(events.Raw) error { return boom })
	assert.ErrorIs(t, err, boom)
}

func TestScriptedRespectsCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := Scripted{Timeline: DemoPointer(), Interval: time.Hour}.Stream(ctx, func(events.Raw) error { return nil })
	assert.ErrorIs(t, err, context.Canceled)
}
