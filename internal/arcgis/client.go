// Package arcgis is a client for a single FeatureServer layer: applyEdits
// and query, speaking esri JSON.
package arcgis

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/paulmach/orb"

	"github.com/marcus/mask/internal/models"
)

// Sentinel errors for common rejection classes.
var (
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrNotFound     = errors.New("not found")
)

// Client talks to one feature layer, e.g.
// https://services.arcgis.com/<org>/arcgis/rest/services/<name>/FeatureServer/0
type Client struct {
	LayerURL string
	Token    string
	HTTP     *http.Client
}

// New creates a client for the layer at layerURL.
func New(layerURL, token string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		LayerURL: strings.TrimRight(layerURL, "/"),
		Token:    token,
		HTTP:     &http.Client{Timeout: timeout},
	}
}

// Fault is a structured error reported by the server, either for the
// whole request or for a single edit.
type Fault struct {
	Code        int      `json:"code"`
	Message     string   `json:"message,omitempty"`
	Description string   `json:"description,omitempty"`
	Details     []string `json:"details,omitempty"`
}

func (f *Fault) Error() string {
	msg := f.Message
	if msg == "" {
		msg = f.Description
	}
	if len(f.Details) > 0 {
		msg += " (" + strings.Join(f.Details, "; ") + ")"
	}
	if f.Code != 0 {
		return fmt.Sprintf("%d: %s", f.Code, msg)
	}
	return msg
}

// Unwrap maps well-known fault codes onto the sentinel errors.
func (f *Fault) Unwrap() error {
	switch f.Code {
	case 401, 498, 499:
		return ErrUnauthorized
	case 403:
		return ErrForbidden
	case 404:
		return ErrNotFound
	}
	return nil
}

// IsRejection reports whether err came from the server refusing the
// request, as opposed to the request not completing.
func IsRejection(err error) bool {
	var f *Fault
	return errors.As(err, &f) ||
		errors.Is(err, ErrUnauthorized) ||
		errors.Is(err, ErrForbidden) ||
		errors.Is(err, ErrNotFound)
}

// Add is a new feature to create.
type Add struct {
	Geometry   orb.Polygon
	WKID       int
	Attributes map[string]any
}

// Update changes the attributes of an existing feature. It has no
// geometry field; updates never move a feature.
type Update struct {
	ObjectID   models.ObjectID
	Attributes map[string]any
}

// Edits is one applyEdits batch.
type Edits struct {
	Adds    []Add
	Updates []Update
	Deletes []models.ObjectID
}

// EditResult is the outcome of a single edit in a batch.
type EditResult struct {
	ObjectID models.ObjectID
	Success  bool
	Error    *Fault
}

// EditResults holds the per-edit outcomes of an applyEdits call.
type EditResults struct {
	Adds    []EditResult
	Updates []EditResult
	Deletes []EditResult
}

// Query selects features.
type Query struct {
	Where    string
	Envelope *orb.Bound
	WKID     int
}

// Record is one feature returned by a query.
type Record struct {
	Attributes map[string]any
	Geometry   orb.Polygon
}

type wireFeature struct {
	Geometry   *Polygon       `json:"geometry,omitempty"`
	Attributes map[string]any `json:"attributes"`
}

type wireResult struct {
	ObjectID json.Number `json:"objectId"`
	Success  bool        `json:"success"`
	Error    *Fault      `json:"error,omitempty"`
}

type applyEditsResponse struct {
	AddResults    []wireResult `json:"addResults"`
	UpdateResults []wireResult `json:"updateResults"`
	DeleteResults []wireResult `json:"deleteResults"`
}

type countResponse struct {
	Count int64 `json:"count"`
}

type queryResponse struct {
	Features []wireFeature `json:"features"`
}

// ApplyEdits posts a batch of adds, updates and deletes.
func (c *Client) ApplyEdits(ctx context.Context, edits Edits) (*EditResults, error) {
	form := url.Values{}
	if len(edits.Adds) > 0 {
		adds := make([]wireFeature, len(edits.Adds))
		for i, a := range edits.Adds {
			g := PolygonToEsri(a.Geometry, a.WKID)
			adds[i] = wireFeature{Geometry: &g, Attributes: a.Attributes}
		}
		data, err := json.Marshal(adds)
		if err != nil {
			return nil, fmt.Errorf("marshal adds: %w", err)
		}
		form.Set("adds", string(data))
	}

	if len(edits.Updates) > 0 {
		updates := make([]wireFeature, len(edits.Updates))
		for i, u := range edits.Updates {
			attrs := make(map[string]any, len(u.Attributes)+1)
			for k, v := range u.Attributes {
				attrs[k] = v
			}
			attrs["OBJECTID"] = int64(u.ObjectID)
			updates[i] = wireFeature{Attributes: attrs}
		}
		data, err := json.Marshal(updates)
		if err != nil {
			return nil, fmt.Errorf("marshal updates: %w", err)
		}
		form.Set("updates", string(data))
	}

	if len(edits.Deletes) > 0 {
		ids := make([]string, len(edits.Deletes))
		for i, id := range edits.Deletes {
			ids[i] = id.String()
		}
		form.Set("deletes", strings.Join(ids, ","))
	}

	var resp applyEditsResponse
	if err := c.doRequest(ctx, http.MethodPost, "/applyEdits", form, &resp); err != nil {
		return nil, err
	}

	return &EditResults{
		Adds:    convertResults(resp.AddResults),
		Updates: convertResults(resp.UpdateResults),
		Deletes: convertResults(resp.DeleteResults),
	}, nil
}

func convertResults(in []wireResult) []EditResult {
	out := make([]EditResult, len(in))
	for i, r := range in {
		id, _ := r.ObjectID.Int64()
		out[i] = EditResult{ObjectID: models.ObjectID(id), Success: r.Success, Error: r.Error}
	}
	return out
}

// QueryCount returns the number of features matching where.
func (c *Client) QueryCount(ctx context.Context, where string) (int64, error) {
	if where == "" {
		where = "1=1"
	}
	q := url.Values{}
	q.Set("where", where)
	q.Set("returnCountOnly", "true")

	var resp countResponse
	if err := c.doRequest(ctx, http.MethodGet, "/query", q, &resp); err != nil {
		return 0, err
	}
	return resp.Count, nil
}

// QueryFeatures returns all features matching the query with their
// geometry and every attribute.
func (c *Client) QueryFeatures(ctx context.Context, query Query) ([]Record, error) {
	where := query.Where
	if where == "" {
		where = "1=1"
	}
	q := url.Values{}
	q.Set("where", where)
	q.Set("outFields", "*")
	q.Set("returnGeometry", "true")
	if query.WKID != 0 {
		q.Set("outSR", strconv.Itoa(query.WKID))
	}
	if b := query.Envelope; b != nil {
		q.Set("geometryType", "esriGeometryEnvelope")
		q.Set("spatialRel", "esriSpatialRelIntersects")
		q.Set("geometry", fmt.Sprintf("%g,%g,%g,%g", b.Min[0], b.Min[1], b.Max[0], b.Max[1]))
		if query.WKID != 0 {
			q.Set("inSR", strconv.Itoa(query.WKID))
		}
	}

	var resp queryResponse
	if err := c.doRequest(ctx, http.MethodGet, "/query", q, &resp); err != nil {
		return nil, err
	}

	records := make([]Record, 0, len(resp.Features))
	for _, f := range resp.Features {
		rec := Record{Attributes: f.Attributes}
		if f.Geometry != nil {
			p, err := EsriToPolygon(*f.Geometry)
			if err != nil {
				return nil, fmt.Errorf("decode geometry: %w", err)
			}
			rec.Geometry = p
		}
		records = append(records, rec)
	}
	return records, nil
}

// faultEnvelope is the top-level error body. The server often sends it
// with HTTP 200.
type faultEnvelope struct {
	Error *Fault `json:"error"`
}

// redactToken masks the token query parameter in the URL a transport
// error reports.
func redactToken(err error) error {
	var ue *url.Error
	if !errors.As(err, &ue) {
		return err
	}
	u, perr := url.Parse(ue.URL)
	if perr != nil {
		ue.URL = "<redacted url>"
		return err
	}
	q := u.Query()
	if q.Has("token") {
		q.Set("token", "REDACTED")
		u.RawQuery = q.Encode()
		ue.URL = u.String()
	}
	return err
}

func (c *Client) doRequest(ctx context.Context, method, path string, params url.Values, result any) error {
	params.Set("f", "json")
	if c.Token != "" {
		params.Set("token", c.Token)
	}

	endpoint := c.LayerURL + path
	var body io.Reader
	if method == http.MethodGet {
		endpoint += "?" + params.Encode()
	} else {
		body = strings.NewReader(params.Encode())
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return fmt.Errorf("http request: %w", redactToken(err))
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	var env faultEnvelope
	if json.Unmarshal(respBody, &env) == nil && env.Error != nil {
		if env.Error.Code == 0 && resp.StatusCode >= 400 {
			env.Error.Code = resp.StatusCode
		}
		return env.Error
	}

	if resp.StatusCode >= 400 {
		switch resp.StatusCode {
		case http.StatusUnauthorized:
			return fmt.Errorf("%w: HTTP %d", ErrUnauthorized, resp.StatusCode)
		case http.StatusForbidden:
			return fmt.Errorf("%w: HTTP %d", ErrForbidden, resp.StatusCode)
		case http.StatusNotFound:
			return fmt.Errorf("%w: HTTP %d", ErrNotFound, resp.StatusCode)
		}
		return fmt.Errorf("HTTP %d: %s", resp.StatusCode, string(respBody))
	}

	if result != nil && len(respBody) > 0 {
		dec := json.NewDecoder(bytes.NewReader(respBody))
		dec.UseNumber()
		if err := dec.Decode(result); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}
