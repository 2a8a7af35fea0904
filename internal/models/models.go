// Package models holds the masking area data types shared by the store
// clients, the sync service and the editor.
package models

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/paulmach/orb"

	"github.com/marcus/mask/internal/schema"
)

// DefaultWKID is the spatial reference used for new drafts (ETRS89 / UTM 33N).
const DefaultWKID = 25833

// ObjectID is the store-assigned feature identifier.
type ObjectID int64

// Valid reports whether the id could have been assigned by a store.
func (id ObjectID) Valid() bool { return id > 0 }

func (id ObjectID) String() string { return strconv.FormatInt(int64(id), 10) }

// ErrInvalidGeometry is returned for drafts that cannot be stored.
var ErrInvalidGeometry = errors.New("invalid polygon")

// DraftGeometry is a captured polygon that has not been stored yet.
type DraftGeometry struct {
	Polygon orb.Polygon
	WKID    int
}

// NewDraft builds a draft from captured vertices, closing the ring.
func NewDraft(vertices []orb.Point, wkid int) DraftGeometry {
	ring := make(orb.Ring, 0, len(vertices)+1)
	ring = append(ring, vertices...)
	if len(ring) > 0 && ring[0] != ring[len(ring)-1] {
		ring = append(ring, ring[0])
	}
	return DraftGeometry{Polygon: orb.Polygon{ring}, WKID: wkid}
}

// Validate checks that the draft has an outer ring with at least three
// distinct vertices.
func (d DraftGeometry) Validate() error {
	if len(d.Polygon) == 0 {
		return fmt.Errorf("%w: no rings", ErrInvalidGeometry)
	}
	outer := d.Polygon[0]
	if !outer.Closed() {
		return fmt.Errorf("%w: outer ring not closed", ErrInvalidGeometry)
	}
	seen := make(map[orb.Point]struct{}, len(outer))
	for _, p := range outer {
		if math.IsNaN(p[0]) || math.IsNaN(p[1]) || math.IsInf(p[0], 0) || math.IsInf(p[1], 0) {
			return fmt.Errorf("%w: non-finite vertex", ErrInvalidGeometry)
		}
		seen[p] = struct{}{}
	}
	if len(seen) < 3 {
		return fmt.Errorf("%w: need at least 3 vertices, got %d", ErrInvalidGeometry, len(seen))
	}
	return nil
}

// Clone returns a deep copy of the draft.
func (d DraftGeometry) Clone() DraftGeometry {
	return DraftGeometry{Polygon: d.Polygon.Clone(), WKID: d.WKID}
}

// Feature is a stored masking area.
type Feature struct {
	ObjectID   ObjectID
	Geometry   orb.Polygon
	Attributes schema.MaskAttributes
}

// SelectionHandle references a stored feature chosen by the operator.
// It carries identity and an attribute snapshot, never geometry.
type SelectionHandle struct {
	ObjectID   ObjectID
	Attributes schema.MaskAttributes
}

// ScreenPoint is a cell position on the map surface.
type ScreenPoint struct {
	X, Y int
}

// Hit is one graphic under a screen point, as reported by a hit-test.
type Hit struct {
	LayerID    string
	Attributes map[string]any
}

// ParseObjectID reads the store identifier from an attribute dictionary.
// Stores disagree on the field name (OBJECTID, objectid, ObjectId) and on
// the value type; this is the one place both are resolved.
func ParseObjectID(rec map[string]any) (ObjectID, bool) {
	if v, ok := rec["OBJECTID"]; ok {
		return objectIDValue(v)
	}
	if v, ok := rec["objectid"]; ok {
		return objectIDValue(v)
	}
	for k, v := range rec {
		if strings.EqualFold(k, "objectid") {
			return objectIDValue(v)
		}
	}
	return 0, false
}

func objectIDValue(v any) (ObjectID, bool) {
	var id int64
	switch x := v.(type) {
	case int:
		id = int64(x)
	case int32:
		id = int64(x)
	case int64:
		id = x
	case ObjectID:
		id = int64(x)
	case float64:
		if x != math.Trunc(x) {
			return 0, false
		}
		id = int64(x)
	case json.Number:
		n, err := x.Int64()
		if err != nil {
			return 0, false
		}
		id = n
	case string:
		n, err := strconv.ParseInt(strings.TrimSpace(x), 10, 64)
		if err != nil {
			return 0, false
		}
		id = n
	default:
		return 0, false
	}
	oid := ObjectID(id)
	return oid, oid.Valid()
}
