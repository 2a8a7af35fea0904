// Package localstore is a sqlite feature store with the same applyEdits
// and query contract as a remote feature layer. It backs offline use and
// tests.
package localstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	_ "modernc.org/sqlite"

	"github.com/marcus/mask/internal/arcgis"
	"github.com/marcus/mask/internal/models"
	"github.com/marcus/mask/internal/schema"
)

// DriverName is the database/sql driver used by Open.
const DriverName = "sqlite"

// Fault codes mirror the ones a feature server returns for per-edit failures.
const (
	codeNotFound      = 1019
	codeInvalidGeom   = 1000
	codeInvalidRecord = 1001
)

// Store is a sqlite backed masking area layer.
type Store struct {
	conn *sql.DB
}

// Open opens (creating if needed) the store at path.
func Open(path string) (*Store, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, fmt.Errorf("create store dir: %w", err)
		}
	}
	return OpenWithDriver(DriverName, path)
}

// OpenWithDriver opens a store through any registered sqlite driver.
func OpenWithDriver(driver, dsn string) (*Store, error) {
	conn, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	// a single connection keeps :memory: databases alive and writes serialized
	conn.SetMaxOpenConns(1)

	if _, err := conn.Exec("PRAGMA busy_timeout=500"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("set busy timeout: %w", err)
	}
	if _, err := conn.Exec(createTableSQL()); err != nil {
		conn.Close()
		return nil, fmt.Errorf("create table: %w", err)
	}
	return &Store{conn: conn}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.conn.Close()
}

func createTableSQL() string {
	var sb strings.Builder
	sb.WriteString("CREATE TABLE IF NOT EXISTS masks (\n")
	sb.WriteString("    objectid INTEGER PRIMARY KEY AUTOINCREMENT,\n")
	sb.WriteString("    geometry TEXT NOT NULL")
	for _, k := range schema.Keys() {
		fmt.Fprintf(&sb, ",\n    %s INTEGER NOT NULL DEFAULT 0", k)
	}
	sb.WriteString("\n)")
	return sb.String()
}

// ApplyEdits applies adds, updates and deletes in one transaction.
// Edits that cannot be applied are reported per edit, not as an error.
func (s *Store) ApplyEdits(ctx context.Context, edits arcgis.Edits) (*arcgis.EditResults, error) {
	tx, err := s.conn.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	res := &arcgis.EditResults{}
	for _, a := range edits.Adds {
		r, err := addFeature(ctx, tx, a)
		if err != nil {
			return nil, err
		}
		res.Adds = append(res.Adds, r)
	}
	for _, u := range edits.Updates {
		r, err := updateFeature(ctx, tx, u)
		if err != nil {
			return nil, err
		}
		res.Updates = append(res.Updates, r)
	}
	for _, id := range edits.Deletes {
		r, err := deleteFeature(ctx, tx, id)
		if err != nil {
			return nil, err
		}
		res.Deletes = append(res.Deletes, r)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return res, nil
}

func failed(id models.ObjectID, code int, desc string) arcgis.EditResult {
	return arcgis.EditResult{ObjectID: id, Error: &arcgis.Fault{Code: code, Description: desc}}
}

func addFeature(ctx context.Context, tx *sql.Tx, a arcgis.Add) (arcgis.EditResult, error) {
	draft := models.DraftGeometry{Polygon: a.Geometry, WKID: a.WKID}
	if err := draft.Validate(); err != nil {
		return failed(0, codeInvalidGeom, err.Error()), nil
	}
	geom, err := json.Marshal(geojson.NewGeometry(a.Geometry))
	if err != nil {
		return arcgis.EditResult{}, fmt.Errorf("encode geometry: %w", err)
	}

	attrs := schema.FromRecord(a.Attributes)
	cols := append([]string{"geometry"}, schema.Keys()...)
	args := []any{string(geom)}
	for _, k := range schema.Keys() {
		args = append(args, attrs.Get(k))
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(cols)), ", ")

	query := fmt.Sprintf("INSERT INTO masks (%s) VALUES (%s)", strings.Join(cols, ", "), placeholders)
	result, err := tx.ExecContext(ctx, query, args...)
	if err != nil {
		return arcgis.EditResult{}, fmt.Errorf("insert: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return arcgis.EditResult{}, fmt.Errorf("last insert id: %w", err)
	}
	return arcgis.EditResult{ObjectID: models.ObjectID(id), Success: true}, nil
}

func updateFeature(ctx context.Context, tx *sql.Tx, u arcgis.Update) (arcgis.EditResult, error) {
	if !u.ObjectID.Valid() {
		return failed(u.ObjectID, codeInvalidRecord, "missing object id"), nil
	}

	attrs := schema.FromRecord(u.Attributes)
	var sets []string
	var args []any
	for _, k := range schema.Keys() {
		if _, ok := u.Attributes[k]; !ok {
			continue
		}
		sets = append(sets, k+" = ?")
		args = append(args, attrs.Get(k))
	}
	if len(sets) == 0 {
		return failed(u.ObjectID, codeInvalidRecord, "no recognized attributes"), nil
	}
	args = append(args, int64(u.ObjectID))

	query := fmt.Sprintf("UPDATE masks SET %s WHERE objectid = ?", strings.Join(sets, ", "))
	result, err := tx.ExecContext(ctx, query, args...)
	if err != nil {
		return arcgis.EditResult{}, fmt.Errorf("update: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return arcgis.EditResult{}, fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return failed(u.ObjectID, codeNotFound, "Update for the object was not attempted. Object may not exist."), nil
	}
	return arcgis.EditResult{ObjectID: u.ObjectID, Success: true}, nil
}

func deleteFeature(ctx context.Context, tx *sql.Tx, id models.ObjectID) (arcgis.EditResult, error) {
	result, err := tx.ExecContext(ctx, "DELETE FROM masks WHERE objectid = ?", int64(id))
	if err != nil {
		return arcgis.EditResult{}, fmt.Errorf("delete: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return arcgis.EditResult{}, fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return failed(id, codeNotFound, "Delete for the object was not attempted. Object may not exist."), nil
	}
	return arcgis.EditResult{ObjectID: id, Success: true}, nil
}

// QueryCount returns the number of stored features. Only the match-all
// where clause is supported.
func (s *Store) QueryCount(ctx context.Context, where string) (int64, error) {
	if err := checkWhere(where); err != nil {
		return 0, err
	}
	var n int64
	if err := s.conn.QueryRowContext(ctx, "SELECT COUNT(*) FROM masks").Scan(&n); err != nil {
		return 0, fmt.Errorf("count: %w", err)
	}
	return n, nil
}

// QueryFeatures returns stored features, optionally limited to those whose
// bounds intersect the query envelope. Attribute records use the lower
// case objectid key.
func (s *Store) QueryFeatures(ctx context.Context, q arcgis.Query) ([]arcgis.Record, error) {
	if err := checkWhere(q.Where); err != nil {
		return nil, err
	}

	cols := append([]string{"objectid", "geometry"}, schema.Keys()...)
	query := fmt.Sprintf("SELECT %s FROM masks ORDER BY objectid", strings.Join(cols, ", "))
	rows, err := s.conn.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	defer rows.Close()

	var records []arcgis.Record
	for rows.Next() {
		var id int64
		var geomText string
		flags := make([]int64, schema.NumFlags)
		dest := []any{&id, &geomText}
		for i := range flags {
			dest = append(dest, &flags[i])
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}

		poly, err := decodePolygon(geomText)
		if err != nil {
			return nil, fmt.Errorf("feature %d: %w", id, err)
		}
		if q.Envelope != nil && !poly.Bound().Intersects(*q.Envelope) {
			continue
		}

		attrs := map[string]any{"objectid": id}
		for i, k := range schema.Keys() {
			attrs[k] = flags[i]
		}
		records = append(records, arcgis.Record{Attributes: attrs, Geometry: poly})
	}
	return records, rows.Err()
}

func decodePolygon(text string) (orb.Polygon, error) {
	var g geojson.Geometry
	if err := json.Unmarshal([]byte(text), &g); err != nil {
		return nil, fmt.Errorf("decode geometry: %w", err)
	}
	poly, ok := g.Geometry().(orb.Polygon)
	if !ok {
		return nil, fmt.Errorf("geometry is %s, not Polygon", g.Type)
	}
	return poly, nil
}

func checkWhere(where string) error {
	w := strings.TrimSpace(where)
	if w == "" || w == "1=1" {
		return nil
	}
	return fmt.Errorf("unsupported where clause %q", where)
}
