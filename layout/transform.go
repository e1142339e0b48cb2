// Package layout converts page elements between the normalised form they are stored in
// and the absolute pixel form used while rendering and editing.
//
// Offsets are fractions of the page width (X) and height (Y). Scale is a fraction of the
// smaller page dimension, so an element keeps its proportions when the page is rotated.
package layout

import "math"

type Size struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

func (s Size) Min() float64 {
	return math.Min(s.Width, s.Height)
}

func (s Size) IsZero() bool {
	return s.Width <= 0 || s.Height <= 0
}

// Swap returns the size with width and height exchanged (portrait <-> landscape)
func (s Size) Swap() Size {
	return Size{Width: s.Height, Height: s.Width}
}

type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Transform is the resolution independent placement of an element on a page
type Transform struct {
	OffsetX  float64 `json:"offset_x"`
	OffsetY  float64 `json:"offset_y"`
	Scale    float64 `json:"scale"`
	Rotation float64 `json:"rotation"`
}

// Placement is a Transform resolved against a concrete page size, in pixels
type Placement struct {
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	Size     float64 `json:"size"`
	Rotation float64 `json:"rotation"`
}

func fraction(v, of float64) float64 {
	if of <= 0 {
		return 0
	}
	return v / of
}

// ToAbsolute resolves t against the page size
func ToAbsolute(t Transform, page Size) Placement {
	return Placement{
		X:        t.OffsetX * page.Width,
		Y:        t.OffsetY * page.Height,
		Size:     t.Scale * page.Min(),
		Rotation: t.Rotation,
	}
}

// ToNormalized is the inverse of ToAbsolute. Degenerate pages give zero fractions.
func ToNormalized(p Placement, page Size) Transform {
	return Transform{
		OffsetX:  fraction(p.X, page.Width),
		OffsetY:  fraction(p.Y, page.Height),
		Scale:    fraction(p.Size, page.Min()),
		Rotation: p.Rotation,
	}
}

// Clamp moves the element back inside the page. When the element is larger than the page
// along an axis it is pinned to the top/left edge.
func Clamp(t Transform, page, element Size) Transform {
	t.OffsetX = clampAxis(t.OffsetX, page.Width, element.Width)
	t.OffsetY = clampAxis(t.OffsetY, page.Height, element.Height)
	return t
}

func clampAxis(offset, page, element float64) float64 {
	if page <= 0 {
		return 0
	}
	max := (page - element) / page
	if offset > max {
		offset = max
	}
	if offset < 0 {
		offset = 0
	}
	return offset
}

// SwapAxes exchanges the offsets, used when the page orientation is toggled
func SwapAxes(t Transform) Transform {
	t.OffsetX, t.OffsetY = t.OffsetY, t.OffsetX
	return t
}

// NormalizeRotation maps any angle into [0, 360)
func NormalizeRotation(deg float64) float64 {
	if math.IsNaN(deg) || math.IsInf(deg, 0) {
		return 0
	}
	deg = math.Mod(deg, 360)
	if deg < 0 {
		deg += 360
	}
	return deg
}

// Valid reports whether offsets and scale are finite fractions within [0,1]
func Valid(t Transform) bool {
	for _, v := range []float64{t.OffsetX, t.OffsetY, t.Scale} {
		if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 || v > 1 {
			return false
		}
	}
	return !math.IsNaN(t.Rotation) && !math.IsInf(t.Rotation, 0)
}
