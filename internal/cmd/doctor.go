package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/pflag"

	"github.com/offlinefirst/actioncap/pkg/events"
	"github.com/offlinefirst/actioncap/pkg/permissions"
	"github.com/offlinefirst/actioncap/pkg/source"
)

func newDoctorCommand() command {
	return command{
		name:        "doctor",
		description: "Check input device access and desktop helper availability",
		run:         runDoctor,
	}
}

var (
	probeInputDevices = permissions.ProbeInputDevices
	discoverDevices   = source.Discover
)

func runDoctor(fs *pflag.FlagSet, args []string, app *AppContext, stdout io.Writer, stderr io.Writer) error {
	if app == nil {
		return fmt.Errorf("application context unavailable")
	}
	cfg := app.Config

	keyboards := cfg.Capture.KeyboardDevices
	if len(keyboards) == 0 {
		keyboards = discoverDevices(events.DeviceKeyboard)
	}
	pointers := cfg.Capture.PointerDevices
	if len(pointers) == 0 {
		pointers = discoverDevices(events.DevicePointer)
	}
	paths := append(append([]string(nil), keyboards...), pointers...)

	probe := probeInputDevices(nil, nil, paths)
	app.Logger.Debug("input device probe", "status", probe.StatusString(), "devices", len(paths))

	fmt.Fprintf(stdout, "Configuration: %s\n", cfg.Source)
	fmt.Fprintf(stdout, "Input devices: %s (%s)\n", probe.StatusString(), probe.Message)
	fmt.Fprintf(stdout, "  keyboard: %s\n", deviceList(keyboards))
	fmt.Fprintf(stdout, "  pointer: %s\n", deviceList(pointers))
	for _, denied := range probe.Denied {
		fmt.Fprintf(stdout, "  not readable: %s\n", denied)
	}
	if probe.Guidance != "" {
		fmt.Fprintf(stdout, "  hint: %s\n", probe.Guidance)
	}

	xdotool, xrandr := newLocator(cfg).Available()
	fmt.Fprintf(stdout, "xdotool (%s): %s\n", cfg.Capture.Locator.XdotoolBinary, availability(xdotool))
	fmt.Fprintf(stdout, "xrandr (%s): %s\n", cfg.Capture.Locator.XrandrBinary, availability(xrandr))
	if !xdotool {
		fmt.Fprintln(stdout, "  window targets and absolute pointer positions are unavailable")
	}
	if !xrandr {
		fmt.Fprintln(stdout, "  screen targets are unavailable")
	}

	if target, err := cfg.Capture.Target.Resolve(); err == nil {
		fmt.Fprintf(stdout, "Target: %s\n", target.String())
	}
	return nil
}

func availability(found bool) string {
	if found {
		return "found"
	}
	return "missing"
}
