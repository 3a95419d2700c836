package region

import (
	"fmt"
	"math"
)

// Rect is a screen-space rectangle in absolute pixel coordinates. Both edges
// are inclusive.
type Rect struct {
	Left   int `json:"left"`
	Top    int `json:"top"`
	Right  int `json:"right"`
	Bottom int `json:"bottom"`
}

// Inactive is returned for a window target that is not currently focused.
// No real coordinate falls inside it.
var Inactive = Rect{
	Left:   math.MaxInt32,
	Top:    math.MaxInt32,
	Right:  math.MinInt32,
	Bottom: math.MinInt32,
}

// Contains reports whether (x, y) lies within the rectangle.
func (r Rect) Contains(x, y int) bool {
	return r.Left <= x && x <= r.Right && r.Top <= y && y <= r.Bottom
}

// Empty reports whether the rectangle contains no point.
func (r Rect) Empty() bool {
	return r.Left > r.Right || r.Top > r.Bottom
}

func (r Rect) String() string {
	return fmt.Sprintf("%d,%d,%d,%d", r.Left, r.Top, r.Right, r.Bottom)
}

// FromGeometry converts an origin/size pair into an inclusive rectangle.
func FromGeometry(x, y, width, height int) Rect {
	return Rect{Left: x, Top: y, Right: x + width, Bottom: y + height}
}
