package rest

import (
	"math"

	"github.com/lintang-b-s/isochronex/pkg/batch"
	"github.com/lintang-b-s/isochronex/pkg/engine/isochrone"
	"github.com/lintang-b-s/isochronex/pkg/geo"
	"github.com/lintang-b-s/isochronex/pkg/kv"
	"github.com/lintang-b-s/isochronex/pkg/server/rest/service"
	"github.com/lintang-b-s/isochronex/pkg/util"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/paulmach/orb/planar"
	"github.com/twpayne/go-polyline"
)

// IsochroneResponse model info
//
//	@Description	GeoJSON FeatureCollection, one feature per trip time
type IsochroneResponse struct {
	Type     string             `json:"type"`
	Features []IsochroneFeature `json:"features"`
}

// IsochroneFeature model info
//
//	@Description	isochrone polygon in EPSG:4326
type IsochroneFeature struct {
	Type       string              `json:"type"`
	Geometry   *geojson.Geometry   `json:"geometry" swaggertype:"object"`
	Properties IsochroneProperties `json:"properties"`
}

// IsochroneProperties model info
//
//	@Description	isochrone attributes
type IsochroneProperties struct {
	OriginID       string   `json:"origin_id,omitempty"`
	OriginName     string   `json:"origin_name,omitempty"`
	Category       string   `json:"primary_category,omitempty"`
	Minutes        float64  `json:"minutes"`
	Strategy       string   `json:"strategy"`
	AreaM2         float64  `json:"area_m2"`
	ReachM         float64  `json:"reach_m"`
	ReachableNodes int      `json:"reachable_nodes"`
	ReachableEdges int      `json:"reachable_edges,omitempty"`
	SnappedNodeID  int64    `json:"snapped_node_id,omitempty"`
	SnapDistanceM  float64  `json:"snap_distance_m,omitempty"`
	Fallback       bool     `json:"fallback"`
	Fill           [4]uint8 `json:"fill"`
	// Polyline google encoded exterior ring of the largest polygon part.
	Polyline string   `json:"polyline"`
	H3Cells  []string `json:"h3_cells,omitempty"`
}

func NewIsochroneResponse(features []IsochroneFeature) *IsochroneResponse {
	return &IsochroneResponse{
		Type:     "FeatureCollection",
		Features: features,
	}
}

func RenderIsochroneFeature(q service.IsochroneQuery, res isochrone.Result, h3Resolution int) IsochroneFeature {
	origin := q.Origin
	props := IsochroneProperties{
		OriginID:       q.OriginID,
		OriginName:     q.OriginName,
		Category:       q.OriginCategory,
		Minutes:        res.BudgetMinutes,
		Strategy:       res.Strategy.String(),
		AreaM2:         util.RoundFloat(res.AreaM2, 2),
		ReachM:         util.RoundFloat(geo.MaxDistanceMeters(origin, res.Geometry), 2),
		ReachableNodes: res.ReachableNodes,
		ReachableEdges: res.ReachableEdges,
		SnappedNodeID:  res.SnappedNode.ID,
		SnapDistanceM:  util.RoundFloat(res.SnapDistance, 2),
		Fallback:       res.Fallback,
		Fill:           batch.FillColor(res.BudgetMinutes),
		Polyline:       exteriorPolyline(res.Geometry),
	}
	if h3Resolution > 0 {
		props.H3Cells = geo.CoverCells(res.Geometry, h3Resolution)
	}
	return IsochroneFeature{
		Type:       "Feature",
		Geometry:   geojson.NewGeometry(res.Geometry),
		Properties: props,
	}
}

func RenderStoredFeature(rec kv.Record) (IsochroneFeature, error) {
	geom, err := rec.Polygon()
	if err != nil {
		return IsochroneFeature{}, err
	}
	origin := orb.Point{rec.OriginLon, rec.OriginLat}
	return IsochroneFeature{
		Type:     "Feature",
		Geometry: geojson.NewGeometry(geom),
		Properties: IsochroneProperties{
			OriginID:       rec.OriginID,
			OriginName:     rec.OriginName,
			Category:       rec.OriginCategory,
			Minutes:        rec.Minutes,
			Strategy:       rec.Strategy,
			AreaM2:         util.RoundFloat(rec.AreaM2, 2),
			ReachM:         util.RoundFloat(geo.MaxDistanceMeters(origin, geom), 2),
			ReachableNodes: rec.ReachableNodes,
			Fallback:       rec.Fallback,
			Fill:           batch.FillColor(rec.Minutes),
			Polyline:       exteriorPolyline(geom),
		},
	}, nil
}

func exteriorPolyline(g orb.Geometry) string {
	var exterior orb.Ring
	switch gg := g.(type) {
	case orb.Polygon:
		if len(gg) > 0 {
			exterior = gg[0]
		}
	case orb.MultiPolygon:
		largest := -1.0
		for _, poly := range gg {
			if len(poly) == 0 {
				continue
			}
			if area := math.Abs(planar.Area(poly)); area > largest {
				largest = area
				exterior = poly[0]
			}
		}
	}

	coords := make([][]float64, 0, len(exterior))
	for _, p := range exterior {
		coords = append(coords, []float64{p.Lat(), p.Lon()})
	}
	return string(polyline.EncodeCoords(coords))
}
