package permissions

import (
	"fmt"
	"os"
	"runtime"
	"strings"
)

// Status enumerates coarse permission results for input capture.
type Status string

const (
	// StatusUnknown indicates no explicit signal about permission state.
	StatusUnknown Status = "unknown"
	// StatusGranted signals that every probed device is readable.
	StatusGranted Status = "granted"
	// StatusDenied indicates the process cannot read the input devices.
	StatusDenied Status = "denied"
	// StatusPartial means some but not all devices are readable.
	StatusPartial Status = "partial"
	// StatusUnavailable reports that the capability is not supported.
	StatusUnavailable Status = "unavailable"
)

// EnvInputAccess overrides the input device probe, e.g. in CI.
const EnvInputAccess = "ACTIONCAP_INPUT_ACCESS"

// ProbeResult represents the coarse state for a permission surface.
type ProbeResult struct {
	Status   Status
	Message  string
	Guidance string
	Readable []string
	Denied   []string
}

// LookupEnvFunc exposes environment probing for testability.
type LookupEnvFunc func(string) (string, bool)

// AccessFunc reports whether path can be opened for reading.
type AccessFunc func(path string) error

// lookupEnv is declared for swapping in tests.
var lookupEnv = func(key string) (string, bool) {
	return os.LookupEnv(key)
}

// ProbeInputDevices checks read access to the given event device nodes.
func ProbeInputDevices(lookup LookupEnvFunc, access AccessFunc, paths []string) ProbeResult {
	if lookup == nil {
		lookup = lookupEnv
	}
	if value, ok := lookup(EnvInputAccess); ok {
		return interpretPermissionFlag("input device", value)
	}
	if runtime.GOOS != "linux" {
		return ProbeResult{Status: StatusUnavailable, Message: "evdev input capture unsupported on this platform"}
	}
	if access == nil {
		access = defaultAccess
	}
	if len(paths) == 0 {
		return ProbeResult{Status: StatusUnavailable, Message: "no input devices found", Guidance: "check /dev/input/by-path for *-event-kbd and *-event-mouse nodes"}
	}

	res := ProbeResult{}
	for _, path := range paths {
		if err := access(path); err != nil {
			res.Denied = append(res.Denied, path)
			continue
		}
		res.Readable = append(res.Readable, path)
	}
	switch {
	case len(res.Denied) == 0:
		res.Status = StatusGranted
		res.Message = fmt.Sprintf("%d input devices readable", len(res.Readable))
	case len(res.Readable) == 0:
		res.Status = StatusDenied
		res.Message = fmt.Sprintf("%d input devices not readable", len(res.Denied))
		res.Guidance = "add the user to the 'input' group or run with CAP_DAC_READ_SEARCH"
	default:
		res.Status = StatusPartial
		res.Message = fmt.Sprintf("%d of %d input devices readable", len(res.Readable), len(paths))
		res.Guidance = "add the user to the 'input' group to capture every device"
	}
	return res
}

func interpretPermissionFlag(name, value string) ProbeResult {
	normalised := strings.ToLower(strings.TrimSpace(value))
	switch normalised {
	case "granted", "allow", "allowed", "yes", "true":
		return ProbeResult{Status: StatusGranted, Message: name + " permission pre-authorised via env override"}
	case "denied", "no", "false", "blocked":
		return ProbeResult{Status: StatusDenied, Message: name + " permission denied via env override", Guidance: "unset " + EnvInputAccess + " to probe the devices directly"}
	case "partial":
		return ProbeResult{Status: StatusPartial, Message: name + " permission partially granted via env override"}
	case "unavailable", "unsupported":
		return ProbeResult{Status: StatusUnavailable, Message: name + " permission unavailable on this platform"}
	default:
		return ProbeResult{Status: StatusUnknown, Message: name + " permission state unknown"}
	}
}

// StatusString returns the string representation for manifest integration.
func (p ProbeResult) StatusString() string {
	if p.Status == "" {
		return string(StatusUnknown)
	}
	return string(p.Status)
}
