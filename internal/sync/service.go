// Package sync performs masking area create, update, delete and count
// operations against a feature store and owns the local scratch layer.
package sync

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/marcus/mask/internal/arcgis"
	"github.com/marcus/mask/internal/models"
	"github.com/marcus/mask/internal/schema"
)

// Store is a feature layer that accepts edit batches and queries.
// *arcgis.Client and *localstore.Store both satisfy it.
type Store interface {
	ApplyEdits(ctx context.Context, edits arcgis.Edits) (*arcgis.EditResults, error)
	QueryCount(ctx context.Context, where string) (int64, error)
	QueryFeatures(ctx context.Context, q arcgis.Query) ([]arcgis.Record, error)
}

// Service is the only writer of the feature store.
type Service struct {
	store   Store
	scratch ScratchLayer
	wkid    int
	timeout time.Duration
	gen     atomic.Uint64
}

// New creates a service over store. Operations time out after timeout
// unless the caller's context ends first.
func New(store Store, wkid int, timeout time.Duration) *Service {
	if wkid == 0 {
		wkid = models.DefaultWKID
	}
	return &Service{store: store, wkid: wkid, timeout: timeout}
}

// Scratch returns the scratch layer. It must only be touched from the
// event loop.
func (s *Service) Scratch() *ScratchLayer {
	return &s.scratch
}

func (s *Service) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.timeout)
}

// Create stores a new feature and returns its store-assigned id.
// A failed create is final for this attempt; it is never retried here.
func (s *Service) Create(ctx context.Context, draft models.DraftGeometry, attrs schema.MaskAttributes) (models.ObjectID, error) {
	start := time.Now()
	if err := draft.Validate(); err != nil {
		return 0, &Failure{Kind: RemoteRejected, Op: OpCreate, Detail: err.Error(), Err: err}
	}
	wkid := draft.WKID
	if wkid == 0 {
		wkid = s.wkid
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	res, err := s.store.ApplyEdits(ctx, arcgis.Edits{
		Adds: []arcgis.Add{{Geometry: draft.Polygon, WKID: wkid, Attributes: attrs.Record()}},
	})
	if err != nil {
		f := classify(OpCreate, 0, err)
		slog.Warn("create masking area", "kind", f.Kind, "err", err)
		return 0, f
	}
	if !confirmed(res.Adds) {
		f := unconfirmed(OpCreate, 0, res.Adds)
		slog.Warn("create masking area", "kind", f.Kind, "err", f.Err)
		return 0, f
	}

	id := res.Adds[0].ObjectID
	slog.Info("created masking area", "objectid", id, "masks", attrs.ActiveKeys(), "dur", time.Since(start))
	return id, nil
}

// Update replaces the attributes of a stored feature. Geometry is never sent.
func (s *Service) Update(ctx context.Context, id models.ObjectID, attrs schema.MaskAttributes) error {
	start := time.Now()
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	res, err := s.store.ApplyEdits(ctx, arcgis.Edits{
		Updates: []arcgis.Update{{ObjectID: id, Attributes: attrs.Record()}},
	})
	if err != nil {
		f := classify(OpUpdate, id, err)
		slog.Warn("update masking area", "objectid", id, "kind", f.Kind, "err", err)
		return f
	}
	if !confirmed(res.Updates) {
		f := unconfirmed(OpUpdate, id, res.Updates)
		slog.Warn("update masking area", "objectid", id, "kind", f.Kind, "err", f.Err)
		return f
	}

	slog.Info("updated masking area", "objectid", id, "masks", attrs.ActiveKeys(), "dur", time.Since(start))
	return nil
}

// Delete removes a stored feature.
func (s *Service) Delete(ctx context.Context, id models.ObjectID) error {
	start := time.Now()
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	res, err := s.store.ApplyEdits(ctx, arcgis.Edits{Deletes: []models.ObjectID{id}})
	if err != nil {
		f := classify(OpDelete, id, err)
		slog.Warn("delete masking area", "objectid", id, "kind", f.Kind, "err", err)
		return f
	}
	if !confirmed(res.Deletes) {
		f := unconfirmed(OpDelete, id, res.Deletes)
		slog.Warn("delete masking area", "objectid", id, "kind", f.Kind, "err", f.Err)
		return f
	}

	slog.Info("deleted masking area", "objectid", id, "dur", time.Since(start))
	return nil
}

// Count returns the number of stored features. Any failure is a
// CountRefreshFailure.
func (s *Service) Count(ctx context.Context) (int64, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	n, err := s.store.QueryCount(ctx, "1=1")
	if err != nil {
		slog.Warn("count masking areas", "err", err)
		return 0, &Failure{Kind: CountRefreshFailure, Op: OpCount, Detail: faultDetail(err), Err: err}
	}
	return n, nil
}

// Refresh marks the rendered layer stale. Loads started before the most
// recent Refresh are superseded; see Generation.
func (s *Service) Refresh() {
	gen := s.gen.Add(1)
	slog.Debug("refresh masking layer", "gen", gen)
}

// Generation increases with every Refresh.
func (s *Service) Generation() uint64 {
	return s.gen.Load()
}

// Features loads every stored feature for rendering. Records without a
// usable id are skipped.
func (s *Service) Features(ctx context.Context) ([]models.Feature, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	recs, err := s.store.QueryFeatures(ctx, arcgis.Query{WKID: s.wkid})
	if err != nil {
		return nil, classify(OpLoad, 0, err)
	}

	features := make([]models.Feature, 0, len(recs))
	for _, r := range recs {
		id, ok := models.ParseObjectID(r.Attributes)
		if !ok {
			slog.Warn("skipping feature without object id", "attrs", r.Attributes)
			continue
		}
		features = append(features, models.Feature{
			ObjectID:   id,
			Geometry:   r.Geometry,
			Attributes: schema.FromRecord(r.Attributes),
		})
	}
	return features, nil
}

// HandleFromHit builds a selection handle from a hit-test graphic.
// It reports false when the graphic has no usable object id.
func HandleFromHit(hit models.Hit) (models.SelectionHandle, bool) {
	id, ok := models.ParseObjectID(hit.Attributes)
	if !ok {
		return models.SelectionHandle{}, false
	}
	return models.SelectionHandle{ObjectID: id, Attributes: schema.FromRecord(hit.Attributes)}, true
}

func confirmed(results []arcgis.EditResult) bool {
	return len(results) > 0 && results[0].Success && results[0].ObjectID.Valid()
}
