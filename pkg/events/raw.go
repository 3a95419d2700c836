package events

// Device identifies the hook that delivered a raw notification.
type Device uint8

const (
	DeviceKeyboard Device = iota + 1
	DevicePointer
)

func (d Device) String() string {
	switch d {
	case DeviceKeyboard:
		return "keyboard"
	case DevicePointer:
		return "pointer"
	default:
		return "unknown"
	}
}

// Raw is a notification as delivered by a hook, before normalization.
// Keyboard notifications populate Key; pointer notifications populate Button
// and the coordinates.
type Raw struct {
	Device  Device
	Pressed bool
	Key     Key
	Button  Button
	X, Y    int
}

// RawKey builds a keyboard notification.
func RawKey(key Key, pressed bool) Raw {
	return Raw{Device: DeviceKeyboard, Key: key, Pressed: pressed}
}

// RawPointer builds a pointer notification.
func RawPointer(x, y int, button Button, pressed bool) Raw {
	return Raw{Device: DevicePointer, X: x, Y: y, Button: button, Pressed: pressed}
}
