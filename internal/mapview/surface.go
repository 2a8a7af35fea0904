// Package mapview is a terminal map surface: a viewport over the mask
// layer and the scratch draft, a polygon capture tool and click
// hit-testing.
package mapview

import (
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"

	"github.com/marcus/mask/internal/models"
)

// Layer ids reported in hits besides the mask layer.
const (
	ScratchLayer = "scratch"
	BasemapLayer = "basemap"
)

// Surface holds everything drawn on the map and the input tools.
type Surface struct {
	View      Viewport
	Cursor    models.ScreenPoint
	MaskLayer string
	// GridSpacing is the basemap graticule spacing in map units.
	GridSpacing float64

	features []models.Feature
	draft    *models.DraftGeometry
	selected models.ObjectID

	capturing bool
	vertices  []orb.Point
	hitTest   bool
}

// New creates a surface centered on center.
func New(maskLayer string, center orb.Point, zoom int) *Surface {
	return &Surface{
		View:        Viewport{Center: center, Zoom: zoom},
		MaskLayer:   maskLayer,
		GridSpacing: 1000,
	}
}

// Resize sets the viewport size in cells and keeps the cursor inside it.
func (s *Surface) Resize(width, height int) {
	first := s.View.Width == 0 && s.View.Height == 0
	s.View.Width = width
	s.View.Height = height
	if first {
		s.Cursor = models.ScreenPoint{X: width / 2, Y: height / 2}
	}
	s.clampCursor()
}

func (s *Surface) clampCursor() {
	s.Cursor.X = clamp(s.Cursor.X, 0, s.View.Width-1)
	s.Cursor.Y = clamp(s.Cursor.Y, 0, s.View.Height-1)
}

func clamp(v, lo, hi int) int {
	if hi < lo {
		return lo
	}
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// MoveCursor moves the crosshair, panning when it would leave the view.
func (s *Surface) MoveCursor(dx, dy int) {
	next := models.ScreenPoint{X: s.Cursor.X + dx, Y: s.Cursor.Y + dy}
	if !s.View.Contains(next) {
		s.View = s.View.Pan(dx, dy)
		return
	}
	s.Cursor = next
}

// SetCursor places the crosshair at p.
func (s *Surface) SetCursor(p models.ScreenPoint) {
	s.Cursor = p
	s.clampCursor()
}

// SetFeatures replaces the mask layer contents.
func (s *Surface) SetFeatures(features []models.Feature) {
	s.features = features
}

// Features returns the mask layer contents.
func (s *Surface) Features() []models.Feature {
	return s.features
}

// ShowDraft draws d on the scratch layer; nil clears it.
func (s *Surface) ShowDraft(d *models.DraftGeometry) {
	s.draft = d
}

// Select highlights a feature; zero clears the highlight.
func (s *Surface) Select(id models.ObjectID) {
	s.selected = id
}

// ActivateCapture starts a new polygon capture.
func (s *Surface) ActivateCapture() {
	s.capturing = true
	s.vertices = nil
}

// CancelCapture stops capture and drops the vertices placed so far.
func (s *Surface) CancelCapture() {
	s.capturing = false
	s.vertices = nil
}

// Capturing reports whether the capture tool is active.
func (s *Surface) Capturing() bool {
	return s.capturing
}

// Vertices returns the vertices placed in the current capture.
func (s *Surface) Vertices() []orb.Point {
	return s.vertices
}

// AddVertex places a vertex at the map position of cell p.
func (s *Surface) AddVertex(p models.ScreenPoint) {
	if !s.capturing {
		return
	}
	s.vertices = append(s.vertices, s.View.ToWorld(p))
}

// UndoVertex removes the last placed vertex.
func (s *Surface) UndoVertex() {
	if len(s.vertices) > 0 {
		s.vertices = s.vertices[:len(s.vertices)-1]
	}
}

// Complete ends the capture and returns the polygon drawn. The capture
// tool is inactive afterwards, whatever the polygon looks like.
func (s *Surface) Complete(wkid int) models.DraftGeometry {
	d := models.NewDraft(s.vertices, wkid)
	s.capturing = false
	s.vertices = nil
	return d
}

// SetHitTest turns click hit-testing on or off.
func (s *Surface) SetHitTest(on bool) {
	s.hitTest = on
}

// HitTesting reports whether clicks are hit-tested.
func (s *Surface) HitTesting() bool {
	return s.hitTest
}

// HitTest returns every graphic under cell p, topmost first: the scratch
// draft, then mask features in reverse draw order, then the basemap.
func (s *Surface) HitTest(p models.ScreenPoint) []models.Hit {
	pt := s.View.ToWorld(p)
	var hits []models.Hit

	if s.draft != nil && containsPoint(s.draft.Polygon, pt) {
		hits = append(hits, models.Hit{LayerID: ScratchLayer, Attributes: map[string]any{}})
	}
	for i := len(s.features) - 1; i >= 0; i-- {
		f := s.features[i]
		if !containsPoint(f.Geometry, pt) {
			continue
		}
		attrs := f.Attributes.Record()
		attrs["OBJECTID"] = int64(f.ObjectID)
		hits = append(hits, models.Hit{LayerID: s.MaskLayer, Attributes: attrs})
	}
	hits = append(hits, models.Hit{LayerID: BasemapLayer, Attributes: map[string]any{
		"x": math.Round(pt[0]),
		"y": math.Round(pt[1]),
	}})
	return hits
}

func containsPoint(p orb.Polygon, pt orb.Point) bool {
	if len(p) == 0 || !p.Bound().Contains(pt) {
		return false
	}
	return planar.PolygonContains(p, pt)
}
