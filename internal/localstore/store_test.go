package localstore

import (
	"context"
	"path/filepath"
	"testing"

	_ "github.com/mattn/go-sqlite3"
	"github.com/paulmach/orb"

	"github.com/marcus/mask/internal/arcgis"
	"github.com/marcus/mask/internal/models"
	"github.com/marcus/mask/internal/schema"
)

var triangle = orb.Polygon{{{0, 0}, {10, 0}, {0, 10}, {0, 0}}}

// drivers runs fn against both sqlite drivers.
func drivers(t *testing.T, fn func(t *testing.T, s *Store)) {
	for _, driver := range []string{"sqlite", "sqlite3"} {
		t.Run(driver, func(t *testing.T) {
			s, err := OpenWithDriver(driver, filepath.Join(t.TempDir(), "masks.db"))
			if err != nil {
				t.Fatalf("OpenWithDriver(%s): %v", driver, err)
			}
			t.Cleanup(func() { s.Close() })
			fn(t, s)
		})
	}
}

func add(t *testing.T, s *Store, attrs schema.MaskAttributes) models.ObjectID {
	t.Helper()
	res, err := s.ApplyEdits(context.Background(), arcgis.Edits{
		Adds: []arcgis.Add{{Geometry: triangle, WKID: models.DefaultWKID, Attributes: attrs.Record()}},
	})
	if err != nil {
		t.Fatalf("ApplyEdits: %v", err)
	}
	if len(res.Adds) != 1 || !res.Adds[0].Success {
		t.Fatalf("add result = %+v", res.Adds)
	}
	return res.Adds[0].ObjectID
}

func TestAddAndQuery(t *testing.T) {
	drivers(t, func(t *testing.T, s *Store) {
		ctx := context.Background()
		id := add(t, s, schema.FromKeys([]string{"maskBuildings"}))
		if !id.Valid() {
			t.Fatalf("id = %v, want valid", id)
		}

		n, err := s.QueryCount(ctx, "1=1")
		if err != nil {
			t.Fatalf("QueryCount: %v", err)
		}
		if n != 1 {
			t.Errorf("count = %d, want 1", n)
		}

		recs, err := s.QueryFeatures(ctx, arcgis.Query{})
		if err != nil {
			t.Fatalf("QueryFeatures: %v", err)
		}
		if len(recs) != 1 {
			t.Fatalf("len(records) = %d, want 1", len(recs))
		}
		if _, ok := recs[0].Attributes["objectid"]; !ok {
			t.Error("record missing lower case objectid")
		}
		got, ok := models.ParseObjectID(recs[0].Attributes)
		if !ok || got != id {
			t.Errorf("ParseObjectID = %v, %v, want %v", got, ok, id)
		}
		if !schema.IsActive(schema.FromRecord(recs[0].Attributes), "maskBuildings") {
			t.Error("maskBuildings not stored")
		}
		if !orb.Equal(recs[0].Geometry, triangle) {
			t.Errorf("geometry = %v, want %v", recs[0].Geometry, triangle)
		}
	})
}

func TestUpdateKeepsGeometry(t *testing.T) {
	drivers(t, func(t *testing.T, s *Store) {
		ctx := context.Background()
		id := add(t, s, schema.FromKeys([]string{"maskVegetation"}))

		res, err := s.ApplyEdits(ctx, arcgis.Edits{
			Updates: []arcgis.Update{{ObjectID: id, Attributes: schema.Default().Record()}},
		})
		if err != nil {
			t.Fatalf("ApplyEdits: %v", err)
		}
		if !res.Updates[0].Success {
			t.Fatalf("update failed: %+v", res.Updates[0].Error)
		}

		recs, _ := s.QueryFeatures(ctx, arcgis.Query{})
		if schema.IsActive(schema.FromRecord(recs[0].Attributes), "maskVegetation") {
			t.Error("maskVegetation still active after update")
		}
		if !orb.Equal(recs[0].Geometry, triangle) {
			t.Error("geometry changed by attribute update")
		}
	})
}

func TestMissingIDReportedPerEdit(t *testing.T) {
	drivers(t, func(t *testing.T, s *Store) {
		res, err := s.ApplyEdits(context.Background(), arcgis.Edits{
			Updates: []arcgis.Update{{ObjectID: 99, Attributes: schema.Default().Record()}},
			Deletes: []models.ObjectID{98},
		})
		if err != nil {
			t.Fatalf("ApplyEdits: %v", err)
		}
		if res.Updates[0].Success || res.Updates[0].Error == nil {
			t.Errorf("update of missing id = %+v, want failure", res.Updates[0])
		}
		if res.Deletes[0].Success || res.Deletes[0].Error == nil {
			t.Errorf("delete of missing id = %+v, want failure", res.Deletes[0])
		}
	})
}

func TestDelete(t *testing.T) {
	drivers(t, func(t *testing.T, s *Store) {
		ctx := context.Background()
		id := add(t, s, schema.Default())
		add(t, s, schema.Default())

		res, err := s.ApplyEdits(ctx, arcgis.Edits{Deletes: []models.ObjectID{id}})
		if err != nil {
			t.Fatalf("ApplyEdits: %v", err)
		}
		if !res.Deletes[0].Success {
			t.Fatalf("delete failed: %+v", res.Deletes[0].Error)
		}
		n, _ := s.QueryCount(ctx, "")
		if n != 1 {
			t.Errorf("count = %d, want 1", n)
		}
	})
}

func TestInvalidGeometryRejected(t *testing.T) {
	drivers(t, func(t *testing.T, s *Store) {
		res, err := s.ApplyEdits(context.Background(), arcgis.Edits{
			Adds: []arcgis.Add{{Geometry: orb.Polygon{{{0, 0}, {1, 1}, {0, 0}}}}},
		})
		if err != nil {
			t.Fatalf("ApplyEdits: %v", err)
		}
		if res.Adds[0].Success || res.Adds[0].ObjectID.Valid() {
			t.Errorf("degenerate add = %+v, want failure without id", res.Adds[0])
		}
	})
}

func TestEnvelopeFilter(t *testing.T) {
	drivers(t, func(t *testing.T, s *Store) {
		add(t, s, schema.Default())
		far := orb.Bound{Min: orb.Point{100, 100}, Max: orb.Point{200, 200}}
		recs, err := s.QueryFeatures(context.Background(), arcgis.Query{Envelope: &far})
		if err != nil {
			t.Fatalf("QueryFeatures: %v", err)
		}
		if len(recs) != 0 {
			t.Errorf("len(records) = %d, want 0", len(recs))
		}
	})
}

func TestUnsupportedWhere(t *testing.T) {
	drivers(t, func(t *testing.T, s *Store) {
		if _, err := s.QueryCount(context.Background(), "maskBuildings = 1"); err == nil {
			t.Error("QueryCount with filter: expected error")
		}
	})
}
