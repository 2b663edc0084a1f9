package isochrone

import "github.com/paulmach/orb"

// Projector moves the origin into the graph working crs and the finished polygon back to EPSG:4326.
type Projector interface {
	ToWorking(crs string, p orb.Point) (orb.Point, error)
	ToGeographic(crs string, g orb.Geometry) (orb.Geometry, error)
}

// Geometry metric geometry operations in the working crs.
type Geometry interface {
	Buffer(g orb.Geometry, distance float64) (orb.Geometry, error)
	Union(geoms []orb.Geometry) (orb.Geometry, error)
	ConcaveHull(points orb.MultiPoint, ratio float64) (orb.Geometry, error)
	ConvexHull(points orb.MultiPoint) (orb.Geometry, error)
}
