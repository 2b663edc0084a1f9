package geo

import (
	"github.com/golang/geo/s2"
	"github.com/paulmach/orb"
)

const (
	earthRadiusM = 6371007
)

// DistanceMeters great circle distance between two (lon, lat) points.
func DistanceMeters(a, b orb.Point) float64 {
	aLatLng := s2.LatLngFromDegrees(a.Lat(), a.Lon())
	bLatLng := s2.LatLngFromDegrees(b.Lat(), b.Lon())
	return aLatLng.Distance(bLatLng).Radians() * earthRadiusM
}

// MaxDistanceMeters is the great circle distance from origin to the farthest vertex of g.
// used to report how far an isochrone reaches and to sanity check it against the walking budget.
func MaxDistanceMeters(origin orb.Point, g orb.Geometry) float64 {
	maxDist := 0.0
	forEachPoint(g, func(p orb.Point) {
		if d := DistanceMeters(origin, p); d > maxDist {
			maxDist = d
		}
	})
	return maxDist
}

func forEachPoint(g orb.Geometry, fn func(p orb.Point)) {
	switch gg := g.(type) {
	case orb.Point:
		fn(gg)
	case orb.MultiPoint:
		for _, p := range gg {
			fn(p)
		}
	case orb.LineString:
		for _, p := range gg {
			fn(p)
		}
	case orb.MultiLineString:
		for _, ls := range gg {
			forEachPoint(ls, fn)
		}
	case orb.Ring:
		for _, p := range gg {
			fn(p)
		}
	case orb.Polygon:
		for _, r := range gg {
			forEachPoint(r, fn)
		}
	case orb.MultiPolygon:
		for _, poly := range gg {
			forEachPoint(poly, fn)
		}
	case orb.Collection:
		for _, c := range gg {
			forEachPoint(c, fn)
		}
	}
}
