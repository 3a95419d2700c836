//go:build !unix

package cmd

import "os"

func controlSignals() (pause, resume os.Signal, ok bool) {
	return nil, nil, false
}
