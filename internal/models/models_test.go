package models

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/paulmach/orb"
)

func TestNewDraftClosesRing(t *testing.T) {
	d := NewDraft([]orb.Point{{0, 0}, {10, 0}, {10, 10}}, DefaultWKID)
	ring := d.Polygon[0]
	if len(ring) != 4 {
		t.Fatalf("len(ring) = %d, want 4", len(ring))
	}
	if !ring.Closed() {
		t.Error("ring not closed")
	}
	if err := d.Validate(); err != nil {
		t.Errorf("Validate() = %v, want nil", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name  string
		draft DraftGeometry
		ok    bool
	}{
		{"triangle", NewDraft([]orb.Point{{0, 0}, {1, 0}, {0, 1}}, DefaultWKID), true},
		{"two points", NewDraft([]orb.Point{{0, 0}, {1, 0}}, DefaultWKID), false},
		{"repeated points", NewDraft([]orb.Point{{0, 0}, {1, 0}, {1, 0}, {0, 0}}, DefaultWKID), false},
		{"empty", DraftGeometry{}, false},
		{"open ring", DraftGeometry{Polygon: orb.Polygon{{{0, 0}, {1, 0}, {0, 1}}}}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.draft.Validate()
			if tt.ok && err != nil {
				t.Errorf("Validate() = %v, want nil", err)
			}
			if !tt.ok && !errors.Is(err, ErrInvalidGeometry) {
				t.Errorf("Validate() = %v, want ErrInvalidGeometry", err)
			}
		})
	}
}

func TestCloneIsDeep(t *testing.T) {
	d := NewDraft([]orb.Point{{0, 0}, {1, 0}, {0, 1}}, DefaultWKID)
	c := d.Clone()
	c.Polygon[0][1] = orb.Point{5, 5}
	if d.Polygon[0][1] != (orb.Point{1, 0}) {
		t.Error("Clone shares vertex storage with the original")
	}
}

func TestParseObjectID(t *testing.T) {
	tests := []struct {
		name string
		rec  map[string]any
		want ObjectID
		ok   bool
	}{
		{"upper", map[string]any{"OBJECTID": 12}, 12, true},
		{"lower", map[string]any{"objectid": int64(7)}, 7, true},
		{"mixed", map[string]any{"ObjectId": 3.0}, 3, true},
		{"json number", map[string]any{"OBJECTID": json.Number("42")}, 42, true},
		{"string", map[string]any{"objectid": " 9 "}, 9, true},
		{"fraction", map[string]any{"OBJECTID": 1.5}, 0, false},
		{"zero", map[string]any{"OBJECTID": 0}, 0, false},
		{"missing", map[string]any{"maskBuildings": 1}, 0, false},
		{"wrong type", map[string]any{"OBJECTID": []int{1}}, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseObjectID(tt.rec)
			if got != tt.want || ok != tt.ok {
				t.Errorf("ParseObjectID() = %v, %v, want %v, %v", got, ok, tt.want, tt.ok)
			}
		})
	}
}
