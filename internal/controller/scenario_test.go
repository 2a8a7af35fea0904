package controller

import (
	"context"
	"errors"
	"math/rand"
	"path/filepath"
	"testing"
	"time"

	"github.com/marcus/mask/internal/arcgis"
	"github.com/marcus/mask/internal/localstore"
	"github.com/marcus/mask/internal/models"
	"github.com/marcus/mask/internal/schema"
	masksync "github.com/marcus/mask/internal/sync"
)

// recordingStore wraps a store, keeps every edit batch and can be told
// to fail.
type recordingStore struct {
	masksync.Store
	edits     []arcgis.Edits
	failEdits bool
	failCount bool
	rng       *rand.Rand
}

var errFlaky = errors.New("connection reset")

func (s *recordingStore) fail(always bool) bool {
	if always {
		return true
	}
	return s.rng != nil && s.rng.Intn(3) == 0
}

func (s *recordingStore) ApplyEdits(ctx context.Context, e arcgis.Edits) (*arcgis.EditResults, error) {
	s.edits = append(s.edits, e)
	if s.fail(s.failEdits) {
		return nil, errFlaky
	}
	return s.Store.ApplyEdits(ctx, e)
}

func (s *recordingStore) QueryCount(ctx context.Context, where string) (int64, error) {
	if s.fail(s.failCount) {
		return 0, errFlaky
	}
	return s.Store.QueryCount(ctx, where)
}

// harness runs effects the way the editor does, but synchronously.
type harness struct {
	t       *testing.T
	m       Machine
	store   *recordingStore
	svc     *masksync.Service
	capture bool
	hitTest bool
	ui      string
	notes   []Notify
	reloads int
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	local, err := localstore.Open(filepath.Join(t.TempDir(), "masks.db"))
	if err != nil {
		t.Fatalf("localstore.Open: %v", err)
	}
	t.Cleanup(func() { local.Close() })
	store := &recordingStore{Store: local}
	return &harness{t: t, m: New(maskLayer), store: store, svc: masksync.New(store, 0, time.Second)}
}

func (h *harness) send(ev Event) {
	if _, ok := ev.(DrawComplete); ok {
		h.capture = false
	}
	m, effects := Step(h.m, ev)
	h.m = m
	for _, e := range effects {
		h.apply(e)
	}
}

func (h *harness) apply(e Effect) {
	ctx := context.Background()
	switch e := e.(type) {
	case ActivateCapture:
		h.capture = true
	case CancelCapture:
		h.capture = false
	case HoldScratch:
		h.svc.Scratch().Hold(e.Draft)
	case ClearScratch:
		h.svc.Scratch().Clear()
	case EnableHitTest:
		h.hitTest = true
	case DisableHitTest:
		h.hitTest = false
	case PresentSaveForm:
		h.ui = "save-form"
	case PresentEditForm:
		h.ui = "edit-form"
	case PresentFeatureDialog:
		h.ui = "dialog"
	case DismissUI:
		h.ui = ""
	case CreateFeature:
		id, err := h.svc.Create(ctx, e.Draft, e.Attrs)
		h.send(CreateResolved{Op: e.Op, ObjectID: id, Err: err})
	case UpdateFeature:
		err := h.svc.Update(ctx, e.ObjectID, e.Attrs)
		h.send(UpdateResolved{Op: e.Op, Err: err})
	case DeleteFeature:
		err := h.svc.Delete(ctx, e.ObjectID)
		h.send(DeleteResolved{Op: e.Op, Err: err})
	case QueryCount:
		n, err := h.svc.Count(ctx)
		h.send(CountResolved{Op: e.Op, Count: n, Err: err})
	case RefreshLayer:
		h.svc.Refresh()
		h.reloads++
	case Notify:
		h.notes = append(h.notes, e)
	default:
		h.t.Fatalf("unhandled effect %T", e)
	}
}

// hits returns hit-test results for every stored feature, as a click
// covering all of them would.
func (h *harness) hits() []models.Hit {
	features, err := h.svc.Features(context.Background())
	if err != nil {
		h.t.Fatalf("Features: %v", err)
	}
	var hits []models.Hit
	for _, f := range features {
		rec := f.Attributes.Record()
		rec["objectid"] = int64(f.ObjectID)
		hits = append(hits, models.Hit{LayerID: maskLayer, Attributes: rec})
	}
	return hits
}

func TestScenarioDrawThenCancel(t *testing.T) {
	h := newHarness(t)
	h.send(StartDraw{})
	h.send(DrawComplete{Geometry: triangle()})
	if h.svc.Scratch().Len() != 1 {
		t.Fatalf("scratch len = %d, want 1 while the form is open", h.svc.Scratch().Len())
	}
	h.send(FormCancel{})

	if h.svc.Scratch().Len() != 0 {
		t.Errorf("scratch len = %d, want 0", h.svc.Scratch().Len())
	}
	if h.m.State.Name() != "idle" {
		t.Errorf("state = %s, want idle", h.m.State.Name())
	}
	if len(h.store.edits) != 0 {
		t.Errorf("store saw %d edits, want 0", len(h.store.edits))
	}
}

func TestScenarioCreateBuildings(t *testing.T) {
	h := newHarness(t)
	h.send(RequestCount{})
	before := h.m.FeatureCount

	h.send(StartDraw{})
	h.send(DrawComplete{Geometry: triangle()})
	form := schema.Default().Toggle("maskBuildings")
	h.send(FormSubmit{Attrs: form})

	if h.m.State.Name() != "idle" {
		t.Fatalf("state = %s, want idle", h.m.State.Name())
	}
	if h.m.FeatureCount != before+1 {
		t.Errorf("FeatureCount = %d, want %d", h.m.FeatureCount, before+1)
	}
	if h.svc.Scratch().Len() != 0 {
		t.Error("scratch not cleared after save")
	}
	if h.reloads != 1 {
		t.Errorf("reloads = %d, want 1", h.reloads)
	}

	add := h.store.edits[0].Adds[0]
	want := map[string]int{"maskBuildings": 1}
	for _, k := range schema.Keys() {
		if add.Attributes[k] != want[k] {
			t.Errorf("create attrs[%q] = %v, want %d", k, add.Attributes[k], want[k])
		}
	}

	features, _ := h.svc.Features(context.Background())
	if len(features) != 1 || !schema.IsActive(features[0].Attributes, "maskBuildings") {
		t.Errorf("stored features = %+v", features)
	}
}

func TestScenarioEditVegetationOff(t *testing.T) {
	h := newHarness(t)
	id, err := h.svc.Create(context.Background(), triangle(), schema.FromKeys([]string{"maskVegetation"}))
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	h.store.edits = nil

	h.send(StartSelect{})
	h.send(MapClicked{Hits: h.hits()})
	if st, ok := h.m.State.(FeatureChosen); !ok || st.Handle.ObjectID != id {
		t.Fatalf("state = %+v, want feature %v chosen", h.m.State, id)
	}
	h.send(ChooseEdit{})
	attrs := h.m.State.(AwaitingEditForm).Attrs.Toggle("maskVegetation")
	h.send(FormSubmit{Attrs: attrs})

	if h.m.State.Name() != "selecting" {
		t.Errorf("state = %s, want selecting", h.m.State.Name())
	}
	if len(h.store.edits) != 1 {
		t.Fatalf("edits = %d, want 1", len(h.store.edits))
	}
	e := h.store.edits[0]
	if len(e.Adds) != 0 || len(e.Deletes) != 0 || len(e.Updates) != 1 {
		t.Fatalf("edit batch = %+v, want a single update", e)
	}
	if e.Updates[0].ObjectID != id || e.Updates[0].Attributes["maskVegetation"] != 0 {
		t.Errorf("update = %+v", e.Updates[0])
	}
}

func TestScenarioCreateRejectedKeepsScratch(t *testing.T) {
	h := newHarness(t)
	h.store.failEdits = true

	h.send(StartDraw{})
	h.send(DrawComplete{Geometry: triangle()})
	h.send(FormSubmit{Attrs: schema.FromKeys([]string{"maskLandscape"})})

	st, ok := h.m.State.(AwaitingSaveForm)
	if !ok {
		t.Fatalf("state = %s, want awaiting-save-form", h.m.State.Name())
	}
	if h.svc.Scratch().Len() != 1 {
		t.Error("scratch cleared after failed create")
	}
	if h.ui != "save-form" {
		t.Errorf("ui = %q, want the form still open", h.ui)
	}
	if !schema.IsActive(st.Attrs, "maskLandscape") {
		t.Error("submitted attributes lost")
	}

	// retry succeeds once the store recovers
	h.store.failEdits = false
	h.send(FormSubmit{Attrs: st.Attrs})
	if h.m.State.Name() != "idle" {
		t.Errorf("state after retry = %s, want idle", h.m.State.Name())
	}
}

func TestScenarioDeleteWithCountFailure(t *testing.T) {
	h := newHarness(t)
	if _, err := h.svc.Create(context.Background(), triangle(), schema.Default()); err != nil {
		t.Fatalf("Create: %v", err)
	}
	h.send(RequestCount{})
	if h.m.FeatureCount != 1 {
		t.Fatalf("FeatureCount = %d, want 1", h.m.FeatureCount)
	}

	h.send(StartSelect{})
	h.send(MapClicked{Hits: h.hits()})
	h.store.failCount = true
	h.send(ChooseDelete{})

	if h.m.State.Name() != "selecting" {
		t.Errorf("state = %s, want selecting", h.m.State.Name())
	}
	if h.m.FeatureCount != 1 {
		t.Errorf("FeatureCount = %d, want cached 1", h.m.FeatureCount)
	}
	var warned bool
	for _, n := range h.notes {
		if n.Level == LevelError {
			t.Errorf("unexpected error notification %q", n.Text)
		}
		if n.Level == LevelWarn {
			warned = true
		}
	}
	if !warned {
		t.Error("count failure not surfaced as a warning")
	}
	if n, _ := h.store.Store.QueryCount(context.Background(), ""); n != 0 {
		t.Errorf("stored count = %d, want 0", n)
	}
}

func TestScenarioSelectWhileDrawing(t *testing.T) {
	h := newHarness(t)
	h.send(StartDraw{})
	h.send(StartSelect{})
	if h.capture {
		t.Error("capture still active after switching to selection")
	}
	if !h.hitTest {
		t.Error("hit-testing not enabled")
	}
	if h.m.State.Name() != "selecting" {
		t.Errorf("state = %s, want selecting", h.m.State.Name())
	}
}

// TestRandomWalkInvariants drives the harness with random operator input
// against a flaky store and checks the exclusivity and scratch rules after
// every event.
func TestRandomWalkInvariants(t *testing.T) {
	h := newHarness(t)
	rng := rand.New(rand.NewSource(7))
	h.store.rng = rng

	for i := 0; i < 2000; i++ {
		var ev Event
		switch rng.Intn(11) {
		case 0:
			ev = StartDraw{}
		case 1:
			ev = CancelDraw{}
		case 2:
			if !h.capture {
				continue
			}
			ev = DrawComplete{Geometry: triangle()}
		case 3:
			ev = StartSelect{}
		case 4:
			ev = CancelSelect{}
		case 5:
			if !h.hitTest {
				continue
			}
			ev = MapClicked{Hits: h.hits()}
		case 6:
			ev = ChooseEdit{}
		case 7:
			ev = ChooseDelete{}
		case 8:
			ev = CloseDialog{}
		case 9:
			ev = FormSubmit{Attrs: schema.Default().Toggle(schema.Keys()[rng.Intn(schema.NumFlags)])}
		case 10:
			ev = FormCancel{}
		}
		h.send(ev)

		if h.capture && h.hitTest {
			t.Fatalf("step %d (%T): capture and hit-testing both active", i, ev)
		}
		if h.capture && h.m.State.Name() != "drawing" {
			t.Fatalf("step %d (%T): capture active in %s", i, ev, h.m.State.Name())
		}
		if h.hitTest && h.m.Mode() != ModeSelecting {
			t.Fatalf("step %d (%T): hit-testing active in %s", i, ev, h.m.State.Name())
		}
		if _, saving := h.m.State.(AwaitingSaveForm); h.svc.Scratch().Len() != 0 && !saving {
			t.Fatalf("step %d (%T): scratch holds a draft in %s", i, ev, h.m.State.Name())
		}
		if h.m.Busy() {
			t.Fatalf("step %d (%T): synchronous harness left a call pending", i, ev)
		}
	}
}
