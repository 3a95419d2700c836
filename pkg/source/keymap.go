package source

import "github.com/offlinefirst/actioncap/pkg/events"

// Linux input event codes (linux/input-event-codes.h).
const (
	evSyn = 0x00
	evKey = 0x01
	evRel = 0x02

	relX = 0x00
	relY = 0x01

	keyLeftShift  = 42
	keyRightShift = 54

	btnLeft   = 0x110
	btnRight  = 0x111
	btnMiddle = 0x112
	btnSide   = 0x113
	btnExtra  = 0x114

	// Key event values.
	valueRelease = 0
	valuePress   = 1
	valueRepeat  = 2
)

// namedCodes maps evdev key codes to symbolic names.
var namedCodes = map[uint16]events.NamedKey{
	1:   events.NameEsc,
	14:  events.NameBackspace,
	15:  events.NameTab,
	28:  events.NameEnter,
	29:  events.NameCtrlL,
	42:  events.NameShiftL,
	54:  events.NameShiftR,
	56:  events.NameAltL,
	57:  events.NameSpace,
	58:  events.NameCapsLock,
	69:  events.NameNumLock,
	70:  events.NameScrollLock,
	96:  events.NameEnter,
	97:  events.NameCtrlR,
	99:  events.NamePrintScreen,
	100: events.NameAltR,
	102: events.NameHome,
	103: events.NameUp,
	104: events.NamePageUp,
	105: events.NameLeft,
	106: events.NameRight,
	107: events.NameEnd,
	108: events.NameDown,
	109: events.NamePageDown,
	110: events.NameInsert,
	111: events.NameDelete,
	119: events.NamePause,
	125: events.NameCmdL,
	126: events.NameCmdR,
	127: events.NameMenu,
	59:  "f1",
	60:  "f2",
	61:  "f3",
	62:  "f4",
	63:  "f5",
	64:  "f6",
	65:  "f7",
	66:  "f8",
	67:  "f9",
	68:  "f10",
	87:  "f11",
	88:  "f12",
}

// charCodes maps evdev key codes to US-layout characters, unshifted and
// shifted.
var charCodes = map[uint16][2]string{
	2: {"1", "!"}, 3: {"2", "@"}, 4: {"3", "#"}, 5: {"4", "$"}, 6: {"5", "%"},
	7: {"6", "^"}, 8: {"7", "&"}, 9: {"8", "*"}, 10: {"9", "("}, 11: {"0", ")"},
	12: {"-", "_"}, 13: {"=", "+"},
	16: {"q", "Q"}, 17: {"w", "W"}, 18: {"e", "E"}, 19: {"r", "R"}, 20: {"t", "T"},
	21: {"y", "Y"}, 22: {"u", "U"}, 23: {"i", "I"}, 24: {"o", "O"}, 25: {"p", "P"},
	26: {"[", "{"}, 27: {"]", "}"},
	30: {"a", "A"}, 31: {"s", "S"}, 32: {"d", "D"}, 33: {"f", "F"}, 34: {"g", "G"},
	35: {"h", "H"}, 36: {"j", "J"}, 37: {"k", "K"}, 38: {"l", "L"},
	39: {";", ":"}, 40: {"'", `"`}, 41: {"`", "~"}, 43: {`\`, "|"},
	44: {"z", "Z"}, 45: {"x", "X"}, 46: {"c", "C"}, 47: {"v", "V"}, 48: {"b", "B"},
	49: {"n", "N"}, 50: {"m", "M"},
	51: {",", "<"}, 52: {".", ">"}, 53: {"/", "?"},
	55: {"*", "*"}, 74: {"-", "-"}, 78: {"+", "+"}, 98: {"/", "/"},
}

// translateKey resolves an evdev key code. Codes without a name or a
// character fall back to the raw code.
func translateKey(code uint16, shifted bool) events.Key {
	if name, ok := namedCodes[code]; ok {
		return events.Named(name)
	}
	if chars, ok := charCodes[code]; ok {
		if shifted {
			return events.Character(chars[1])
		}
		return events.Character(chars[0])
	}
	return events.RawCode(int(code))
}

// translateButton resolves an evdev button code. ok is false for key codes.
func translateButton(code uint16) (events.Button, bool) {
	switch code {
	case btnLeft:
		return events.ButtonLeft, true
	case btnRight:
		return events.ButtonRight, true
	case btnMiddle:
		return events.ButtonMiddle, true
	case btnSide:
		return events.ButtonX1, true
	case btnExtra:
		return events.ButtonX2, true
	}
	if code >= btnLeft && code < btnLeft+0x10 {
		return events.ButtonUnknown, true
	}
	return "", false
}

// keyboardState turns a stream of evdev key events into raw notifications,
// tracking shift so character keys resolve to the produced character.
type keyboardState struct {
	shiftL, shiftR bool
}

func (s *keyboardState) translate(code uint16, value int32) (events.Raw, bool) {
	if value == valueRepeat {
		return events.Raw{}, false
	}
	pressed := value == valuePress
	switch code {
	case keyLeftShift:
		s.shiftL = pressed
	case keyRightShift:
		s.shiftR = pressed
	}
	return events.RawKey(translateKey(code, s.shiftL || s.shiftR), pressed), true
}

// pointerState accumulates relative motion and turns button events into raw
// notifications.
type pointerState struct {
	x, y int
}

func (s *pointerState) move(code uint16, value int32) {
	switch code {
	case relX:
		s.x += int(value)
	case relY:
		s.y += int(value)
	}
}

func (s *pointerState) translate(code uint16, value int32) (events.Raw, bool) {
	if value == valueRepeat {
		return events.Raw{}, false
	}
	button, ok := translateButton(code)
	if !ok {
		return events.Raw{}, false
	}
	return events.RawPointer(s.x, s.y, button, value == valuePress), true
}
