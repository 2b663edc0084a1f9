package geometry

import (
	"errors"
	"fmt"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/encoding/wkb"
	"github.com/twpayne/go-geos"
)

const (
	// quadrant segments used to approximate buffer arcs.
	bufferQuadSegs = 16
)

var (
	ErrGeometry      = errors.New("geometry operation failed")
	ErrEmptyGeometry = errors.New("geometry operation returned an empty geometry")
)

// GEOS implements buffer, union and hull operations on orb geometries with libgeos.
// geometries cross the boundary as WKB.
type GEOS struct {
	ctx *geos.Context
}

func NewGEOS() *GEOS {
	return &GEOS{ctx: geos.NewContext()}
}

// Buffer grows g by distance in every direction. for points this is a circle, for lines a ribbon.
func (gs *GEOS) Buffer(g orb.Geometry, distance float64) (result orb.Geometry, err error) {
	defer recoverGEOS(&err)

	gg, err := gs.toGEOS(g)
	if err != nil {
		return nil, err
	}
	return fromGEOS(gg.Buffer(distance, bufferQuadSegs))
}

// Union dissolves all geometries into a single (multi)polygon.
func (gs *GEOS) Union(geoms []orb.Geometry) (result orb.Geometry, err error) {
	defer recoverGEOS(&err)

	if len(geoms) == 0 {
		return nil, ErrEmptyGeometry
	}
	parts := make([]*geos.Geom, 0, len(geoms))
	for _, g := range geoms {
		gg, err := gs.toGEOS(g)
		if err != nil {
			return nil, err
		}
		parts = append(parts, gg)
	}
	collection := gs.ctx.NewCollection(geos.TypeIDGeometryCollection, parts)
	return fromGEOS(collection.UnaryUnion())
}

// ConcaveHull of a point set using the GEOS ratio convention: 1 is the convex hull, 0 the tightest hull.
func (gs *GEOS) ConcaveHull(points orb.MultiPoint, ratio float64) (result orb.Geometry, err error) {
	defer recoverGEOS(&err)

	gg, err := gs.toGEOS(points)
	if err != nil {
		return nil, err
	}
	return fromGEOS(gg.ConcaveHull(ratio, 0))
}

func (gs *GEOS) ConvexHull(points orb.MultiPoint) (result orb.Geometry, err error) {
	defer recoverGEOS(&err)

	gg, err := gs.toGEOS(points)
	if err != nil {
		return nil, err
	}
	return fromGEOS(gg.ConvexHull())
}

func (gs *GEOS) toGEOS(g orb.Geometry) (*geos.Geom, error) {
	b, err := wkb.Marshal(g)
	if err != nil {
		return nil, fmt.Errorf("%w: marshal wkb: %v", ErrGeometry, err)
	}
	gg, err := gs.ctx.NewGeomFromWKB(b)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGeometry, err)
	}
	return gg, nil
}

func fromGEOS(gg *geos.Geom) (orb.Geometry, error) {
	if gg == nil || gg.IsEmpty() {
		return nil, ErrEmptyGeometry
	}
	g, err := wkb.Unmarshal(gg.ToWKB())
	if err != nil {
		return nil, fmt.Errorf("%w: unmarshal wkb: %v", ErrGeometry, err)
	}
	return g, nil
}

// go-geos reports GEOS errors by panicking.
func recoverGEOS(err *error) {
	if r := recover(); r != nil {
		*err = fmt.Errorf("%w: %v", ErrGeometry, r)
	}
}
