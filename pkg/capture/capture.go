// Package capture runs the input sources of a recording session and feeds
// their notifications to the classifier.
package capture

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/offlinefirst/actioncap/pkg/events"
	"github.com/offlinefirst/actioncap/pkg/source"
)

// Termination causes reported in a Summary.
const (
	TerminationCompleted = "completed"
	TerminationStopped   = "stopped"
	TerminationError     = "error"
)

// Handler consumes raw notifications. *session.Machine satisfies it.
type Handler interface {
	Handle(ctx context.Context, raw events.Raw) error
}

// Source names an event source for logs and errors.
type Source struct {
	Name   string
	Source source.EventSource
}

// Options controls capture orchestration.
type Options struct {
	Sources []Source
	Handler Handler
	Logger  *slog.Logger
	Clock   func() time.Time
	Control *Controller
}

// Summary reports how a capture ended.
type Summary struct {
	StartedAt   time.Time
	EndedAt     time.Time
	Delivered   int64
	Gated       int64
	Termination string
}

// Run streams every source on its own goroutine until all of them finish,
// one fails, ctx is cancelled or the controller is killed. Notifications that
// arrive while the controller is paused are discarded. A requested stop is
// not an error.
func Run(ctx context.Context, opts Options) (Summary, error) {
	if opts.Logger == nil {
		return Summary{}, errors.New("logger must be provided")
	}
	if opts.Handler == nil {
		return Summary{}, errors.New("handler must be provided")
	}
	if len(opts.Sources) == 0 {
		return Summary{}, errors.New("at least one source must be provided")
	}
	clock := opts.Clock
	if clock == nil {
		clock = time.Now
	}
	controller := opts.Control
	if controller == nil {
		controller = NewController()
	}

	summary := Summary{StartedAt: clock()}
	finish := func(termination string, err error) (Summary, error) {
		summary.EndedAt = clock()
		summary.Termination = termination
		return summary, err
	}

	if err := controller.Wait(ctx); err != nil {
		if stopRequested(ctx, controller, err) {
			return finish(TerminationStopped, nil)
		}
		return finish(TerminationError, err)
	}

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	go func() {
		select {
		case <-runCtx.Done():
		case <-controller.Done():
			cancel()
		}
	}()

	var delivered, gated atomic.Int64
	g, gctx := errgroup.WithContext(runCtx)
	for _, src := range opts.Sources {
		logger := opts.Logger.With("source", src.Name)
		deliver := func(raw events.Raw) error {
			if controller.Paused() {
				gated.Add(1)
				return nil
			}
			delivered.Add(1)
			return opts.Handler.Handle(gctx, raw)
		}
		g.Go(func() error {
			logger.Debug("source started")
			if err := src.Source.Stream(gctx, deliver); err != nil {
				return fmt.Errorf("%s source: %w", src.Name, err)
			}
			logger.Debug("source finished")
			return nil
		})
	}
	opts.Logger.Info("capture started", "sources", len(opts.Sources))

	err := g.Wait()
	summary.Delivered = delivered.Load()
	summary.Gated = gated.Load()

	switch {
	case err == nil && !stopping(ctx, controller):
		return finish(TerminationCompleted, nil)
	case err == nil || stopRequested(ctx, controller, err):
		if killErr := controller.Err(); killErr != nil && !errors.Is(killErr, context.Canceled) {
			return finish(TerminationError, killErr)
		}
		opts.Logger.Info("capture stopped", "delivered", summary.Delivered, "gated", summary.Gated)
		return finish(TerminationStopped, nil)
	default:
		controller.Kill(err)
		if killErr := controller.Err(); killErr != nil && !errors.Is(err, killErr) {
			err = killErr
		}
		return finish(TerminationError, err)
	}
}

func stopping(ctx context.Context, controller *Controller) bool {
	if ctx.Err() != nil {
		return true
	}
	select {
	case <-controller.Done():
		return true
	default:
		return false
	}
}

// stopRequested reports whether err is the cancellation produced by a parent
// cancel or a Kill without a cause.
func stopRequested(ctx context.Context, controller *Controller, err error) bool {
	if !errors.Is(err, context.Canceled) || !stopping(ctx, controller) {
		return false
	}
	killErr := controller.Err()
	return killErr == nil || errors.Is(killErr, context.Canceled)
}
