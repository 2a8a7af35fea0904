package mapview

import (
	"math"

	"github.com/paulmach/orb"

	"github.com/marcus/mask/internal/models"
)

// baseResolution is map units per pixel at zoom 0 on a 256px tile scheme.
const baseResolution = 156543.03392804097

// pixelsPerCell approximates the width of a terminal cell in pixels.
const pixelsPerCell = 8

// cellAspect is the height of a terminal cell relative to its width.
const cellAspect = 2

// Viewport maps terminal cells to map coordinates. Cell (0,0) is the top
// left corner.
type Viewport struct {
	Center orb.Point
	Zoom   int
	Width  int
	Height int
}

// Resolution returns map units per cell column at the current zoom.
func (v Viewport) Resolution() float64 {
	return baseResolution / math.Exp2(float64(v.Zoom)) * pixelsPerCell
}

// ToWorld returns the map coordinate at the center of cell p.
func (v Viewport) ToWorld(p models.ScreenPoint) orb.Point {
	res := v.Resolution()
	dx := (float64(p.X) + 0.5 - float64(v.Width)/2) * res
	dy := (float64(p.Y) + 0.5 - float64(v.Height)/2) * res * cellAspect
	return orb.Point{v.Center[0] + dx, v.Center[1] - dy}
}

// ToScreen returns the cell containing pt. The result may lie outside
// the viewport.
func (v Viewport) ToScreen(pt orb.Point) models.ScreenPoint {
	res := v.Resolution()
	x := (pt[0]-v.Center[0])/res + float64(v.Width)/2
	y := (v.Center[1]-pt[1])/(res*cellAspect) + float64(v.Height)/2
	return models.ScreenPoint{X: int(math.Floor(x)), Y: int(math.Floor(y))}
}

// Contains reports whether p is a cell inside the viewport.
func (v Viewport) Contains(p models.ScreenPoint) bool {
	return p.X >= 0 && p.Y >= 0 && p.X < v.Width && p.Y < v.Height
}

// Bound returns the map extent covered by the viewport.
func (v Viewport) Bound() orb.Bound {
	res := v.Resolution()
	hw := float64(v.Width) / 2 * res
	hh := float64(v.Height) / 2 * res * cellAspect
	return orb.Bound{
		Min: orb.Point{v.Center[0] - hw, v.Center[1] - hh},
		Max: orb.Point{v.Center[0] + hw, v.Center[1] + hh},
	}
}

// Pan moves the center by whole cells.
func (v Viewport) Pan(dx, dy int) Viewport {
	res := v.Resolution()
	v.Center = orb.Point{v.Center[0] + float64(dx)*res, v.Center[1] - float64(dy)*res*cellAspect}
	return v
}

// ZoomBy changes the zoom level, clamped to 0..22.
func (v Viewport) ZoomBy(delta int) Viewport {
	v.Zoom += delta
	if v.Zoom < 0 {
		v.Zoom = 0
	}
	if v.Zoom > 22 {
		v.Zoom = 22
	}
	return v
}
