package region

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"regexp"
	"strconv"
	"strings"
)

// Locator answers window and screen geometry questions for the desktop
// session.
type Locator interface {
	ActiveWindow(ctx context.Context) (string, error)
	WindowGeometry(ctx context.Context, id string) (Rect, error)
	Screens(ctx context.Context) (map[string]Rect, error)
}

// PrimaryScreen names the screen xrandr marks as primary.
const PrimaryScreen = "primary"

// XOptions configure the X11 helper-binary locator.
type XOptions struct {
	XdotoolBinary string
	XrandrBinary  string
	LookPath      func(string) (string, error)
	Run           func(ctx context.Context, name string, args ...string) ([]byte, error)
}

// XLocator shells out to xdotool and xrandr.
type XLocator struct {
	xdotool  string
	xrandr   string
	lookPath func(string) (string, error)
	run      func(ctx context.Context, name string, args ...string) ([]byte, error)
}

// NewXLocator constructs a locator, defaulting binaries to those on PATH.
func NewXLocator(opts XOptions) *XLocator {
	xdotool := strings.TrimSpace(opts.XdotoolBinary)
	if xdotool == "" {
		xdotool = "xdotool"
	}
	xrandr := strings.TrimSpace(opts.XrandrBinary)
	if xrandr == "" {
		xrandr = "xrandr"
	}
	lookPath := opts.LookPath
	if lookPath == nil {
		lookPath = exec.LookPath
	}
	run := opts.Run
	if run == nil {
		run = runCommand
	}
	return &XLocator{xdotool: xdotool, xrandr: xrandr, lookPath: lookPath, run: run}
}

// Available reports which helper binaries are present.
func (l *XLocator) Available() (xdotool, xrandr bool) {
	_, errWindow := l.lookPath(l.xdotool)
	_, errScreen := l.lookPath(l.xrandr)
	return errWindow == nil, errScreen == nil
}

// ActiveWindow returns the identifier of the focused window.
func (l *XLocator) ActiveWindow(ctx context.Context) (string, error) {
	if _, err := l.lookPath(l.xdotool); err != nil {
		return "", fmt.Errorf("%s: %w", l.xdotool, ErrLocatorUnavailable)
	}
	out, err := l.run(ctx, l.xdotool, "getactivewindow")
	if err != nil {
		return "", fmt.Errorf("query active window: %w", err)
	}
	id := strings.TrimSpace(string(out))
	if id == "" {
		return "", fmt.Errorf("query active window: %w", ErrTargetNotFound)
	}
	return id, nil
}

// WindowGeometry returns the bounding rectangle of window id.
func (l *XLocator) WindowGeometry(ctx context.Context, id string) (Rect, error) {
	if _, err := l.lookPath(l.xdotool); err != nil {
		return Rect{}, fmt.Errorf("%s: %w", l.xdotool, ErrLocatorUnavailable)
	}
	out, err := l.run(ctx, l.xdotool, "getwindowgeometry", "--shell", strings.TrimSpace(id))
	if err != nil {
		return Rect{}, fmt.Errorf("query window %s geometry: %w", id, err)
	}
	return parseWindowGeometry(out)
}

// PointerPosition returns the absolute pointer coordinates.
func (l *XLocator) PointerPosition(ctx context.Context) (int, int, error) {
	if _, err := l.lookPath(l.xdotool); err != nil {
		return 0, 0, fmt.Errorf("%s: %w", l.xdotool, ErrLocatorUnavailable)
	}
	out, err := l.run(ctx, l.xdotool, "getmouselocation", "--shell")
	if err != nil {
		return 0, 0, fmt.Errorf("query pointer location: %w", err)
	}
	values, err := parseShellInts(out, "X", "Y")
	if err != nil {
		return 0, 0, fmt.Errorf("parse pointer location: %w", err)
	}
	return values["X"], values["Y"], nil
}

// Screens lists connected monitors keyed by output name. The primary monitor
// is additionally listed under PrimaryScreen.
func (l *XLocator) Screens(ctx context.Context) (map[string]Rect, error) {
	if _, err := l.lookPath(l.xrandr); err != nil {
		return nil, fmt.Errorf("%s: %w", l.xrandr, ErrLocatorUnavailable)
	}
	out, err := l.run(ctx, l.xrandr, "--listmonitors")
	if err != nil {
		return nil, fmt.Errorf("list monitors: %w", err)
	}
	return parseMonitors(out)
}

func runCommand(ctx context.Context, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	out, err := cmd.Output()
	if err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return nil, fmt.Errorf("%s: %w (%s)", name, err, msg)
		}
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return out, nil
}

// parseWindowGeometry reads `xdotool getwindowgeometry --shell` output.
func parseWindowGeometry(out []byte) (Rect, error) {
	values, err := parseShellInts(out, "X", "Y", "WIDTH", "HEIGHT")
	if err != nil {
		return Rect{}, fmt.Errorf("parse window geometry: %w", err)
	}
	return FromGeometry(values["X"], values["Y"], values["WIDTH"], values["HEIGHT"]), nil
}

// parseShellInts extracts integer KEY=VALUE pairs from xdotool --shell
// output. Every key in required must be present.
func parseShellInts(out []byte, required ...string) (map[string]int, error) {
	values := make(map[string]int, len(required))
	scanner := bufio.NewScanner(bytes.NewReader(out))
	for scanner.Scan() {
		key, value, found := strings.Cut(strings.TrimSpace(scanner.Text()), "=")
		if !found {
			continue
		}
		for _, want := range required {
			if key != want {
				continue
			}
			n, err := strconv.Atoi(strings.TrimSpace(value))
			if err != nil {
				return nil, fmt.Errorf("%s: %w", key, err)
			}
			values[key] = n
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	for _, key := range required {
		if _, ok := values[key]; !ok {
			return nil, fmt.Errorf("missing %s", key)
		}
	}
	return values, nil
}

var monitorGeometry = regexp.MustCompile(`^(\d+)/\d+x(\d+)/\d+\+(-?\d+)\+(-?\d+)$`)

// parseMonitors reads `xrandr --listmonitors` output, e.g.
//
//	Monitors: 2
//	 0: +*eDP-1 1920/344x1080/194+0+0  eDP-1
//	 1: +HDMI-1 2560/597x1440/336+1920+0  HDMI-1
func parseMonitors(out []byte) (map[string]Rect, error) {
	screens := make(map[string]Rect)
	scanner := bufio.NewScanner(bytes.NewReader(out))
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) < 4 || !strings.HasSuffix(fields[0], ":") {
			continue
		}
		match := monitorGeometry.FindStringSubmatch(fields[2])
		if match == nil {
			continue
		}
		width, _ := strconv.Atoi(match[1])
		height, _ := strconv.Atoi(match[2])
		x, _ := strconv.Atoi(match[3])
		y, _ := strconv.Atoi(match[4])
		rect := FromGeometry(x, y, width, height)

		flags := fields[1]
		name := strings.TrimLeft(flags, "+*")
		screens[name] = rect
		screens[fields[len(fields)-1]] = rect
		if strings.Contains(flags, "*") {
			screens[PrimaryScreen] = rect
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read monitor list: %w", err)
	}
	if len(screens) == 0 {
		return nil, fmt.Errorf("no monitors listed: %w", ErrTargetNotFound)
	}
	return screens, nil
}
