package events

import (
	"encoding/json"
	"strconv"
)

// KeyForm identifies which key identifier representation is populated.
type KeyForm uint8

const (
	// KeyUnresolved is the zero form; it encodes as JSON null.
	KeyUnresolved KeyForm = iota
	// KeyNamed is a symbolic key such as enter or ctrl.
	KeyNamed
	// KeyChar is the literal character the key produced.
	KeyChar
	// KeyCode is a platform-specific numeric code.
	KeyCode
)

// NamedKey is the symbolic name of a non-character key.
type NamedKey string

// Named keys reported by the hook layer.
const (
	NameAlt         NamedKey = "alt"
	NameAltL        NamedKey = "alt_l"
	NameAltR        NamedKey = "alt_r"
	NameAltGr       NamedKey = "alt_gr"
	NameBackspace   NamedKey = "backspace"
	NameCapsLock    NamedKey = "caps_lock"
	NameCmd         NamedKey = "cmd"
	NameCmdL        NamedKey = "cmd_l"
	NameCmdR        NamedKey = "cmd_r"
	NameCtrl        NamedKey = "ctrl"
	NameCtrlL       NamedKey = "ctrl_l"
	NameCtrlR       NamedKey = "ctrl_r"
	NameDelete      NamedKey = "delete"
	NameDown        NamedKey = "down"
	NameEnd         NamedKey = "end"
	NameEnter       NamedKey = "enter"
	NameEsc         NamedKey = "esc"
	NameHome        NamedKey = "home"
	NameInsert      NamedKey = "insert"
	NameLeft        NamedKey = "left"
	NameMenu        NamedKey = "menu"
	NameNumLock     NamedKey = "num_lock"
	NamePageDown    NamedKey = "page_down"
	NamePageUp      NamedKey = "page_up"
	NamePause       NamedKey = "pause"
	NamePrintScreen NamedKey = "print_screen"
	NameRight       NamedKey = "right"
	NameScrollLock  NamedKey = "scroll_lock"
	NameShift       NamedKey = "shift"
	NameShiftL      NamedKey = "shift_l"
	NameShiftR      NamedKey = "shift_r"
	NameSpace       NamedKey = "space"
	NameTab         NamedKey = "tab"
	NameUp          NamedKey = "up"
)

// specialKeys is the closed set of modifier-class keys that open a chord.
var specialKeys = map[NamedKey]struct{}{
	NameEnter: {},
	NameCtrl:  {},
	NameCtrlL: {},
	NameCtrlR: {},
	NameAlt:   {},
	NameAltL:  {},
	NameAltR:  {},
	NameCmd:   {},
	NameCmdL:  {},
	NameCmdR:  {},
	NameTab:   {},
}

// Key identifies a keyboard key. The zero value is an unresolved key. Keys
// are comparable with ==.
type Key struct {
	form KeyForm
	name NamedKey
	text string
	code int
}

// Named returns the key for a symbolic name.
func Named(name NamedKey) Key {
	if name == "" {
		return Key{}
	}
	return Key{form: KeyNamed, name: name}
}

// Character returns the key that produced the literal text.
func Character(text string) Key {
	if text == "" {
		return Key{}
	}
	return Key{form: KeyChar, text: text}
}

// RawCode returns the key for a platform virtual-key or scan code.
func RawCode(code int) Key {
	return Key{form: KeyCode, code: code}
}

// Form reports which identifier is populated.
func (k Key) Form() KeyForm { return k.form }

// Name returns the symbolic name for named keys.
func (k Key) Name() NamedKey { return k.name }

// Text returns the literal character for character keys.
func (k Key) Text() string { return k.text }

// Code returns the raw code for raw-code keys.
func (k Key) Code() int { return k.code }

// IsZero reports whether the key is unresolved.
func (k Key) IsZero() bool { return k.form == KeyUnresolved }

// IsSpecial reports whether the key belongs to the chord-opening set. Only
// named keys can be special.
func (k Key) IsSpecial() bool {
	if k.form != KeyNamed {
		return false
	}
	_, ok := specialKeys[k.name]
	return ok
}

func (k Key) String() string {
	switch k.form {
	case KeyNamed:
		return string(k.name)
	case KeyChar:
		return k.text
	case KeyCode:
		return strconv.Itoa(k.code)
	default:
		return "<nil>"
	}
}

// MarshalJSON encodes the key as its name, character or decimal code string,
// or null when unresolved. HTML escaping is left to the enclosing encoder.
func (k Key) MarshalJSON() ([]byte, error) {
	if k.form == KeyUnresolved {
		return []byte("null"), nil
	}
	return json.Marshal(k.String())
}
