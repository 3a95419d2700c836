package events

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/offlinefirst/actioncap/pkg/region"
)

func encode(t *testing.T, v any) string {
	t.Helper()
	data, err := json.Marshal(v)
	require.NoError(t, err)
	return string(data)
}

func TestKeyEncoding(t *testing.T) {
	tests := []struct {
		name string
		key  Key
		want string
	}{
		{name: "named", key: Named(NameCtrl), want: `"ctrl"`},
		{name: "character", key: Character("a"), want: `"a"`},
		{name: "quote", key: Character(`"`), want: `"\""`},
		{name: "raw code", key: RawCode(65437), want: `"65437"`},
		{name: "unresolved", key: Key{}, want: `null`},
		{name: "empty character", key: Character(""), want: `null`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, encode(t, KeyEvent{Key: tt.key, Pressed: true}))
		})
	}
}

func TestKeyIsSpecial(t *testing.T) {
	for _, name := range []NamedKey{NameEnter, NameCtrl, NameCtrlL, NameCtrlR, NameAlt, NameAltL, NameAltR, NameCmd, NameCmdL, NameCmdR, NameTab} {
		assert.True(t, Named(name).IsSpecial(), "%s should be special", name)
	}
	for _, key := range []Key{Named(NameShift), Named(NameEsc), Named(NameSpace), Character("\t"), Character("a"), RawCode(36), {}} {
		assert.False(t, key.IsSpecial(), "%s should not be special", key)
	}
}

func TestKeyEquality(t *testing.T) {
	assert.Equal(t, Named(NameCtrl), Named(NameCtrl))
	assert.NotEqual(t, Named(NameCtrlL), Named(NameCtrl))
	assert.True(t, Character("c") == Character("c"))
	assert.False(t, RawCode(1) == Character("1"))
}

func TestPointerEncoding(t *testing.T) {
	event := PointerEvent{X: 12, Y: 34, Button: ButtonLeft, Pressed: true}
	assert.Equal(t, `{"x":12,"y":34,"button":"left","pressed":true,"display":null}`, encode(t, event))

	event.Display = &region.Rect{Left: 0, Top: 0, Right: 100, Bottom: 50}
	event.Pressed = false
	assert.Equal(t, `{"x":12,"y":34,"button":"left","pressed":false,"display":{"left":0,"top":0,"right":100,"bottom":50}}`, encode(t, event))
}

func TestNormalizeKeyAlwaysPasses(t *testing.T) {
	rect := region.Inactive
	event, ok := Normalize(RawKey(Character("x"), false), &rect)
	require.True(t, ok)
	assert.Equal(t, KeyEvent{Key: Character("x"), Pressed: false}, event)
}

func TestNormalizePointerFiltering(t *testing.T) {
	rect := region.Rect{Left: 0, Top: 0, Right: 100, Bottom: 100}

	event, ok := Normalize(RawPointer(100, 0, ButtonLeft, true), &rect)
	require.True(t, ok, "edges are inclusive")
	pointer := event.(PointerEvent)
	require.NotNil(t, pointer.Display)
	assert.Equal(t, rect, *pointer.Display)

	rect.Right = 1
	assert.Equal(t, 100, pointer.Display.Right, "snapshot is independent of the resolved rectangle")

	_, ok = Normalize(RawPointer(101, 50, ButtonLeft, true), &region.Rect{Right: 100, Bottom: 100})
	assert.False(t, ok)

	inactive := region.Inactive
	_, ok = Normalize(RawPointer(10, 10, ButtonLeft, true), &inactive)
	assert.False(t, ok)
}

func TestNormalizePointerWithoutFilter(t *testing.T) {
	event, ok := Normalize(RawPointer(-20, 9000, "", true), nil)
	require.True(t, ok)
	assert.Equal(t, PointerEvent{X: -20, Y: 9000, Button: ButtonUnknown, Pressed: true}, event)
	assert.Equal(t, KindPointer, event.Kind())
	assert.True(t, event.IsPressed())
}

func TestNormalizeRejectsUnknownDevice(t *testing.T) {
	_, ok := Normalize(Raw{}, nil)
	assert.False(t, ok)
}
