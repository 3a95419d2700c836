//go:build unix

package cmd

import (
	"os"

	"golang.org/x/sys/unix"
)

func controlSignals() (pause, resume os.Signal, ok bool) {
	return unix.SIGUSR1, unix.SIGUSR2, true
}
