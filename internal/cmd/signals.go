package cmd

import (
	"os"
	"os/signal"

	"github.com/offlinefirst/actioncap/pkg/capture"
)

// watchControlSignals maps the pause and resume signals onto controller until
// the returned function is called.
func watchControlSignals(controller *capture.Controller, onChange func(state, reason string)) (stop func()) {
	pause, resume, ok := controlSignals()
	if !ok {
		return func() {}
	}

	ch := make(chan os.Signal, 4)
	signal.Notify(ch, pause, resume)
	done := make(chan struct{})
	exited := make(chan struct{})
	go func() {
		defer close(exited)
		for {
			select {
			case <-done:
				return
			case sig := <-ch:
				handleControlSignal(controller, sig, pause, resume, onChange)
			}
		}
	}()

	return func() {
		signal.Stop(ch)
		close(done)
		<-exited
	}
}

func handleControlSignal(controller *capture.Controller, sig, pause, resume os.Signal, onChange func(state, reason string)) {
	switch sig {
	case pause:
		if controller.Paused() {
			return
		}
		controller.Pause()
	case resume:
		if !controller.Paused() {
			return
		}
		controller.Resume()
	default:
		return
	}
	if onChange != nil {
		onChange(controller.State(), sig.String())
	}
}
