package geo

import (
	"github.com/paulmach/orb"
	"github.com/uber/h3-go/v4"
)

const (
	DefaultH3Resolution = 9
)

// OriginCell h3 cell of a (lon, lat) point.
func OriginCell(p orb.Point, resolution int) string {
	return h3.LatLngToCell(h3.NewLatLng(p.Lat(), p.Lon()), resolution).String()
}

// CoverCells h3 cells whose centers fall inside an isochrone polygon or multipolygon.
func CoverCells(g orb.Geometry, resolution int) []string {
	var polygons []orb.Polygon
	switch gg := g.(type) {
	case orb.Polygon:
		polygons = append(polygons, gg)
	case orb.MultiPolygon:
		polygons = append(polygons, gg...)
	default:
		return []string{}
	}

	seen := make(map[h3.Cell]struct{})
	cells := make([]string, 0)
	for _, poly := range polygons {
		if len(poly) == 0 {
			continue
		}
		geoPolygon := h3.GeoPolygon{GeoLoop: toGeoLoop(poly[0])}
		for _, hole := range poly[1:] {
			geoPolygon.Holes = append(geoPolygon.Holes, toGeoLoop(hole))
		}
		for _, cell := range h3.PolygonToCells(geoPolygon, resolution) {
			if _, ok := seen[cell]; ok {
				continue
			}
			seen[cell] = struct{}{}
			cells = append(cells, cell.String())
		}
	}
	return cells
}

func toGeoLoop(r orb.Ring) h3.GeoLoop {
	loop := make(h3.GeoLoop, 0, len(r))
	for _, p := range r {
		loop = append(loop, h3.NewLatLng(p.Lat(), p.Lon()))
	}
	return loop
}
