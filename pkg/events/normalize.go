package events

import "github.com/offlinefirst/actioncap/pkg/region"

// Normalize maps a raw notification to a canonical event. display is the
// capture region resolved for this notification, or nil when no region
// filter applies. Pointer notifications outside display are rejected; key
// notifications always pass.
func Normalize(raw Raw, display *region.Rect) (Event, bool) {
	switch raw.Device {
	case DeviceKeyboard:
		return KeyEvent{Key: raw.Key, Pressed: raw.Pressed}, true
	case DevicePointer:
		event := PointerEvent{X: raw.X, Y: raw.Y, Button: raw.Button, Pressed: raw.Pressed}
		if display != nil {
			if !display.Contains(raw.X, raw.Y) {
				return nil, false
			}
			snapshot := *display
			event.Display = &snapshot
		}
		if event.Button == "" {
			event.Button = ButtonUnknown
		}
		return event, true
	default:
		return nil, false
	}
}
