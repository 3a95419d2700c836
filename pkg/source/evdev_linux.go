//go:build linux

package source

import (
	"context"
	"errors"
	"fmt"
	"unsafe"

	"golang.org/x/sys/unix"

	"github.com/offlinefirst/actioncap/pkg/events"
)

// inputEventSize is sizeof(struct input_event) for this architecture.
var inputEventSize = int(unsafe.Sizeof(unix.Timeval{})) + 8

const pollTimeoutMillis = 200

// Stream reads the configured devices until ctx is done. Devices that cannot
// be opened are skipped; the stream fails only when none can be.
func (e *Evdev) Stream(ctx context.Context, emit func(events.Raw) error) error {
	if ctx == nil {
		ctx = context.Background()
	}

	var fds []unix.PollFd
	for _, path := range e.paths {
		fd, err := unix.Open(path, unix.O_RDONLY|unix.O_NONBLOCK|unix.O_CLOEXEC, 0)
		if err != nil {
			e.logger.Warn("skipping input device", "path", path, "error", err)
			continue
		}
		fds = append(fds, unix.PollFd{Fd: int32(fd), Events: unix.POLLIN})
	}
	if len(fds) == 0 {
		return fmt.Errorf("open %s devices: %w", e.device.String(), ErrNoDevices)
	}
	defer func() {
		for _, pfd := range fds {
			_ = unix.Close(int(pfd.Fd))
		}
	}()
	e.logger.Info("reading input devices", "devices", len(fds))

	buf := make([]byte, inputEventSize*64)
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		n, err := unix.Poll(fds, pollTimeoutMillis)
		if err != nil {
			if errors.Is(err, unix.EINTR) {
				continue
			}
			return fmt.Errorf("poll input devices: %w", err)
		}
		if n == 0 {
			continue
		}
		for i := range fds {
			revents := fds[i].Revents
			if revents&(unix.POLLERR|unix.POLLHUP|unix.POLLNVAL) != 0 {
				return fmt.Errorf("input device %d disconnected", fds[i].Fd)
			}
			if revents&unix.POLLIN == 0 {
				continue
			}
			if err := e.drain(ctx, int(fds[i].Fd), buf, emit); err != nil {
				return err
			}
		}
	}
}

func (e *Evdev) drain(ctx context.Context, fd int, buf []byte, emit func(events.Raw) error) error {
	for {
		n, err := unix.Read(fd, buf)
		if err != nil {
			if errors.Is(err, unix.EAGAIN) || errors.Is(err, unix.EINTR) {
				return nil
			}
			return fmt.Errorf("read input device: %w", err)
		}
		if n <= 0 {
			return nil
		}
		if _, err := decodeEvents(buf[:n], inputEventSize, func(typ, code uint16, value int32) error {
			return e.dispatch(ctx, typ, code, value, emit)
		}); err != nil {
			return err
		}
	}
}
