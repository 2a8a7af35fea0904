package arcgis

import (
	"fmt"

	"github.com/paulmach/orb"
)

// SpatialReference identifies a coordinate system by well-known id.
type SpatialReference struct {
	WKID int `json:"wkid,omitempty"`
}

// Polygon is the esri JSON polygon representation.
type Polygon struct {
	Rings            [][][2]float64    `json:"rings"`
	SpatialReference *SpatialReference `json:"spatialReference,omitempty"`
}

// PolygonToEsri converts an orb polygon into esri JSON rings.
// Rings are closed on the way out.
func PolygonToEsri(p orb.Polygon, wkid int) Polygon {
	out := Polygon{Rings: make([][][2]float64, 0, len(p))}
	for _, ring := range p {
		r := make([][2]float64, 0, len(ring)+1)
		for _, pt := range ring {
			r = append(r, [2]float64{pt[0], pt[1]})
		}
		if len(ring) > 0 && !ring.Closed() {
			r = append(r, [2]float64{ring[0][0], ring[0][1]})
		}
		out.Rings = append(out.Rings, r)
	}
	if wkid != 0 {
		out.SpatialReference = &SpatialReference{WKID: wkid}
	}
	return out
}

// EsriToPolygon converts esri JSON rings into an orb polygon.
func EsriToPolygon(g Polygon) (orb.Polygon, error) {
	if len(g.Rings) == 0 {
		return nil, fmt.Errorf("polygon has no rings")
	}
	p := make(orb.Polygon, 0, len(g.Rings))
	for i, r := range g.Rings {
		if len(r) < 4 {
			return nil, fmt.Errorf("ring %d has %d points", i, len(r))
		}
		ring := make(orb.Ring, len(r))
		for j, pt := range r {
			ring[j] = orb.Point{pt[0], pt[1]}
		}
		p = append(p, ring)
	}
	return p, nil
}
