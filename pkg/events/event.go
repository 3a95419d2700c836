package events

import "github.com/offlinefirst/actioncap/pkg/region"

// Kind tags the variant of a canonical Event.
type Kind uint8

const (
	KindKey Kind = iota + 1
	KindPointer
)

func (k Kind) String() string {
	switch k {
	case KindKey:
		return "key"
	case KindPointer:
		return "pointer"
	default:
		return "unknown"
	}
}

// Event is a canonical input event: either a KeyEvent or a PointerEvent.
// The interface is sealed.
type Event interface {
	Kind() Kind
	IsPressed() bool
	event()
}

// Button names a pointer button.
type Button string

// Buttons reported by the hook layer.
const (
	ButtonLeft    Button = "left"
	ButtonRight   Button = "right"
	ButtonMiddle  Button = "middle"
	ButtonX1      Button = "x1"
	ButtonX2      Button = "x2"
	ButtonUnknown Button = "unknown"
)

// KeyEvent is a key press or release.
type KeyEvent struct {
	Key     Key
	Pressed bool
}

func (KeyEvent) Kind() Kind        { return KindKey }
func (e KeyEvent) IsPressed() bool { return e.Pressed }
func (KeyEvent) event()            {}

// MarshalJSON encodes only the key identifier; press state is implied by the
// batch it belongs to.
func (e KeyEvent) MarshalJSON() ([]byte, error) {
	return e.Key.MarshalJSON()
}

// PointerEvent is a pointer button press or release at absolute screen
// coordinates. Display holds the capture region resolved for the event, or
// nil when no region filter is configured.
type PointerEvent struct {
	X       int          `json:"x"`
	Y       int          `json:"y"`
	Button  Button       `json:"button"`
	Pressed bool         `json:"pressed"`
	Display *region.Rect `json:"display"`
}

func (PointerEvent) Kind() Kind        { return KindPointer }
func (e PointerEvent) IsPressed() bool { return e.Pressed }
func (PointerEvent) event()            {}
