package mapview

import (
	"math"
	"strings"
	"testing"

	"github.com/paulmach/orb"

	"github.com/marcus/mask/internal/models"
	"github.com/marcus/mask/internal/schema"
)

func testSurface() *Surface {
	s := New("masks", orb.Point{262907.973, 6651051.723}, 12)
	s.Resize(80, 24)
	return s
}

// square returns a feature covering the cells from a to b.
func square(s *Surface, id models.ObjectID, a, b models.ScreenPoint, keys ...string) models.Feature {
	p1 := s.View.ToWorld(a)
	p2 := s.View.ToWorld(b)
	ring := orb.Ring{{p1[0], p1[1]}, {p2[0], p1[1]}, {p2[0], p2[1]}, {p1[0], p2[1]}, {p1[0], p1[1]}}
	return models.Feature{ObjectID: id, Geometry: orb.Polygon{ring}, Attributes: schema.FromKeys(keys)}
}

func TestViewportRoundTrip(t *testing.T) {
	v := Viewport{Center: orb.Point{1000, 2000}, Zoom: 14, Width: 40, Height: 20}
	for _, p := range []models.ScreenPoint{{X: 0, Y: 0}, {X: 39, Y: 19}, {X: 20, Y: 10}, {X: 7, Y: 3}} {
		if got := v.ToScreen(v.ToWorld(p)); got != p {
			t.Errorf("ToScreen(ToWorld(%v)) = %v", p, got)
		}
	}
}

func TestViewportZoomHalvesResolution(t *testing.T) {
	v := Viewport{Zoom: 12}
	r12 := v.Resolution()
	r13 := v.ZoomBy(1).Resolution()
	if math.Abs(r12/r13-2) > 1e-9 {
		t.Errorf("resolution ratio = %v, want 2", r12/r13)
	}
	if v.ZoomBy(-40).Zoom != 0 || v.ZoomBy(40).Zoom != 22 {
		t.Error("zoom not clamped")
	}
}

func TestViewportBoundContainsCells(t *testing.T) {
	v := Viewport{Center: orb.Point{0, 0}, Zoom: 10, Width: 10, Height: 10}
	b := v.Bound()
	for _, p := range []models.ScreenPoint{{X: 0, Y: 0}, {X: 9, Y: 9}} {
		if !b.Contains(v.ToWorld(p)) {
			t.Errorf("bound %v does not contain cell %v", b, p)
		}
	}
}

func TestPan(t *testing.T) {
	v := Viewport{Center: orb.Point{0, 0}, Zoom: 10, Width: 10, Height: 10}
	moved := v.Pan(1, 0)
	if moved.Center[0] <= 0 {
		t.Errorf("pan right moved center to %v", moved.Center)
	}
	moved = v.Pan(0, 1)
	if moved.Center[1] >= 0 {
		t.Errorf("pan down moved center to %v", moved.Center)
	}
}

func TestHitTestOrder(t *testing.T) {
	s := testSurface()
	low := square(s, 1, models.ScreenPoint{X: 10, Y: 5}, models.ScreenPoint{X: 30, Y: 15}, "maskLandscape")
	high := square(s, 2, models.ScreenPoint{X: 20, Y: 8}, models.ScreenPoint{X: 40, Y: 18})
	s.SetFeatures([]models.Feature{low, high})

	hits := s.HitTest(models.ScreenPoint{X: 25, Y: 10})
	if len(hits) != 3 {
		t.Fatalf("len(hits) = %d, want 3 (two masks and basemap)", len(hits))
	}
	if id, _ := models.ParseObjectID(hits[0].Attributes); id != 2 {
		t.Errorf("topmost hit = %v, want the last drawn feature 2", id)
	}
	if id, _ := models.ParseObjectID(hits[1].Attributes); id != 1 {
		t.Errorf("second hit = %v, want 1", id)
	}
	if !schema.IsActive(schema.FromRecord(hits[1].Attributes), "maskLandscape") {
		t.Error("hit attributes missing flags")
	}
	if hits[2].LayerID != BasemapLayer {
		t.Errorf("last hit layer = %s, want basemap", hits[2].LayerID)
	}

	miss := s.HitTest(models.ScreenPoint{X: 70, Y: 2})
	if len(miss) != 1 || miss[0].LayerID != BasemapLayer {
		t.Errorf("hits outside features = %+v, want basemap only", miss)
	}
}

func TestHitTestScratchOnTop(t *testing.T) {
	s := testSurface()
	f := square(s, 3, models.ScreenPoint{X: 10, Y: 5}, models.ScreenPoint{X: 30, Y: 15})
	s.SetFeatures([]models.Feature{f})
	draft := models.DraftGeometry{Polygon: f.Geometry.Clone()}
	s.ShowDraft(&draft)

	hits := s.HitTest(models.ScreenPoint{X: 20, Y: 10})
	if hits[0].LayerID != ScratchLayer || hits[1].LayerID != "masks" {
		t.Errorf("hit layers = %s, %s, want scratch then masks", hits[0].LayerID, hits[1].LayerID)
	}
}

func TestCapture(t *testing.T) {
	s := testSurface()
	s.AddVertex(models.ScreenPoint{X: 1, Y: 1})
	if len(s.Vertices()) != 0 {
		t.Fatal("vertex placed while capture inactive")
	}

	s.ActivateCapture()
	for _, p := range []models.ScreenPoint{{X: 10, Y: 5}, {X: 30, Y: 5}, {X: 20, Y: 15}, {X: 25, Y: 10}} {
		s.AddVertex(p)
	}
	s.UndoVertex()
	d := s.Complete(models.DefaultWKID)
	if s.Capturing() {
		t.Error("still capturing after Complete")
	}
	if err := d.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if len(d.Polygon[0]) != 4 {
		t.Errorf("ring length = %d, want 4", len(d.Polygon[0]))
	}
	if d.WKID != models.DefaultWKID {
		t.Errorf("WKID = %d", d.WKID)
	}

	s.ActivateCapture()
	s.AddVertex(models.ScreenPoint{X: 3, Y: 3})
	s.CancelCapture()
	if s.Capturing() || len(s.Vertices()) != 0 {
		t.Error("CancelCapture kept state")
	}
}

func TestMoveCursorPansAtEdge(t *testing.T) {
	s := testSurface()
	s.SetCursor(models.ScreenPoint{X: 79, Y: 0})
	center := s.View.Center
	s.MoveCursor(1, 0)
	if s.Cursor.X != 79 {
		t.Errorf("cursor x = %d, want 79", s.Cursor.X)
	}
	if s.View.Center == center {
		t.Error("view did not pan")
	}
}

func TestRender(t *testing.T) {
	s := testSurface()
	s.GridSpacing = 0
	f := square(s, 4, models.ScreenPoint{X: 10, Y: 5}, models.ScreenPoint{X: 30, Y: 15})
	s.SetFeatures([]models.Feature{f})

	out := s.Render()
	lines := strings.Split(out, "\n")
	if len(lines) != 24 {
		t.Fatalf("rendered %d lines, want 24", len(lines))
	}
	if !strings.Contains(out, "░") {
		t.Error("mask fill not rendered")
	}
	if !strings.Contains(out, "+") {
		t.Error("cursor not rendered")
	}

	s.Select(4)
	if !strings.Contains(s.Render(), "▓") {
		t.Error("selected fill not rendered")
	}

	s.ActivateCapture()
	s.AddVertex(models.ScreenPoint{X: 50, Y: 3})
	s.AddVertex(models.ScreenPoint{X: 60, Y: 3})
	out = s.Render()
	if !strings.Contains(out, "●") || !strings.Contains(out, "•") {
		t.Error("capture vertices or edges not rendered")
	}
}

func TestRenderEmptyViewport(t *testing.T) {
	s := New("masks", orb.Point{}, 12)
	if s.Render() != "" {
		t.Error("zero sized viewport rendered content")
	}
}
