package capture

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/offlinefirst/actioncap/pkg/events"
	"github.com/offlinefirst/actioncap/pkg/source"
)

type recordingHandler struct {
	mu   sync.Mutex
	raws []events.Raw
	err  error
}

func (h *recordingHandler) Handle(_ context.Context, raw events.Raw) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.raws = append(h.raws, raw)
	return h.err
}

func (h *recordingHandler) count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.raws)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func blockingSource() source.EventSource {
	return source.EventSourceFunc(func(ctx context.Context, _ func(events.Raw) error) error {
		<-ctx.Done()
		return ctx.Err()
	})
}

func TestRunDeliversEverySource(t *testing.T) {
	handler := &recordingHandler{}
	base := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

	summary, err := Run(context.Background(), Options{
		Sources: []Source{
			{Name: "keyboard", Source: source.Scripted{Timeline: source.DemoKeyboard()}},
			{Name: "pointer", Source: source.Scripted{Timeline: source.DemoPointer()}},
		},
		Handler: handler,
		Logger:  discardLogger(),
		Clock:   func() time.Time { return base },
	})
	require.NoError(t, err)

	want := len(source.DemoKeyboard()) + len(source.DemoPointer())
	assert.Equal(t, want, handler.count())
	assert.Equal(t, int64(want), summary.Delivered)
	assert.Zero(t, summary.Gated)
	assert.Equal(t, TerminationCompleted, summary.Termination)
	assert.Equal(t, base, summary.StartedAt)
	assert.Equal(t, base, summary.EndedAt)
}

func TestRunDiscardsWhilePaused(t *testing.T) {
	controller := NewController()
	handler := &recordingHandler{}
	key := events.RawKey(events.Character("a"), true)

	src := source.EventSourceFunc(func(_ context.Context, emit func(events.Raw) error) error {
		if err := emit(key); err != nil {
			return err
		}
		controller.Pause()
		if err := emit(key); err != nil {
			return err
		}
		controller.Resume()
		return emit(key)
	})

	summary, err := Run(context.Background(), Options{
		Sources: []Source{{Name: "keyboard", Source: src}},
		Handler: handler,
		Logger:  discardLogger(),
		Control: controller,
	})
	require.NoError(t, err)
	assert.Equal(t, 2, handler.count())
	assert.Equal(t, int64(2), summary.Delivered)
	assert.Equal(t, int64(1), summary.Gated)
}

func TestRunSourceFailureCancelsOthers(t *testing.T) {
	boom := errors.New("device vanished")
	failing := source.EventSourceFunc(func(context.Context, func(events.Raw) error) error {
		return boom
	})

	summary, err := Run(context.Background(), Options{
		Sources: []Source{
			{Name: "keyboard", Source: blockingSource()},
			{Name: "pointer", Source: failing},
		},
		Handler: &recordingHandler{},
		Logger:  discardLogger(),
	})
	require.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "pointer source")
	assert.Equal(t, TerminationError, summary.Termination)
}

func TestRunHandlerFailureStopsCapture(t *testing.T) {
	boom := errors.New("write failed")
	handler := &recordingHandler{err: boom}

	summary, err := Run(context.Background(), Options{
		Sources: []Source{
			{Name: "keyboard", Source: source.Scripted{Timeline: source.DemoKeyboard()}},
			{Name: "pointer", Source: blockingSource()},
		},
		Handler: handler,
		Logger:  discardLogger(),
	})
	require.ErrorIs(t, err, boom)
	assert.Equal(t, 1, handler.count())
	assert.Equal(t, TerminationError, summary.Termination)
}

func TestRunKillWithoutCauseIsCleanStop(t *testing.T) {
	controller := NewController()
	time.AfterFunc(20*time.Millisecond, func() { controller.Kill(nil) })

	summary, err := Run(context.Background(), Options{
		Sources: []Source{{Name: "keyboard", Source: blockingSource()}},
		Handler: &recordingHandler{},
		Logger:  discardLogger(),
		Control: controller,
	})
	require.NoError(t, err)
	assert.Equal(t, TerminationStopped, summary.Termination)
}

func TestRunKillWithCauseReturnsIt(t *testing.T) {
	controller := NewController()
	boom := errors.New("emitter closed")
	time.AfterFunc(20*time.Millisecond, func() { controller.Kill(boom) })

	summary, err := Run(context.Background(), Options{
		Sources: []Source{{Name: "keyboard", Source: blockingSource()}},
		Handler: &recordingHandler{},
		Logger:  discardLogger(),
		Control: controller,
	})
	require.ErrorIs(t, err, boom)
	assert.Equal(t, TerminationError, summary.Termination)
}

func TestRunParentCancellationIsCleanStop(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	summary, err := Run(ctx, Options{
		Sources: []Source{{Name: "pointer", Source: blockingSource()}},
		Handler: &recordingHandler{},
		Logger:  discardLogger(),
	})
	require.Error(t, err, "deadline is not a requested stop")
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, TerminationError, summary.Termination)

	ctx, cancel = context.WithCancel(context.Background())
	time.AfterFunc(20*time.Millisecond, cancel)
	summary, err = Run(ctx, Options{
		Sources: []Source{{Name: "pointer", Source: blockingSource()}},
		Handler: &recordingHandler{},
		Logger:  discardLogger(),
	})
	require.NoError(t, err)
	assert.Equal(t, TerminationStopped, summary.Termination)
}

func TestRunStartedPausedWaitsForResume(t *testing.T) {
	controller := NewController()
	controller.Pause()
	handler := &recordingHandler{}
	time.AfterFunc(20*time.Millisecond, controller.Resume)

	summary, err := Run(context.Background(), Options{
		Sources: []Source{{Name: "keyboard", Source: source.Scripted{Timeline: source.DemoKeyboard()}}},
		Handler: handler,
		Logger:  discardLogger(),
		Control: controller,
	})
	require.NoError(t, err)
	assert.Equal(t, len(source.DemoKeyboard()), handler.count())
	assert.Equal(t, TerminationCompleted, summary.Termination)
}

func TestRunValidatesOptions(t *testing.T) {
	_, err := Run(context.Background(), Options{Handler: &recordingHandler{}, Sources: []Source{{Name: "k", Source: blockingSource()}}})
	assert.Error(t, err)

	_, err = Run(context.Background(), Options{Logger: discardLogger(), Sources: []Source{{Name: "k", Source: blockingSource()}}})
	assert.Error(t, err)

	_, err = Run(context.Background(), Options{Logger: discardLogger(), Handler: &recordingHandler{}})
	assert.Error(t, err)
}
