package isochrone

import (
	"fmt"
	"strings"

	"github.com/paulmach/orb"
)

// Strategy selects how the reachable subgraph becomes a polygon.
type Strategy int

const (
	// EdgeBufferUnion buffers every reachable street segment and dissolves the ribbons.
	EdgeBufferUnion Strategy = iota
	// ConcaveHullOverNodes wraps the reachable nodes in a concave hull.
	ConcaveHullOverNodes
)

func (s Strategy) String() string {
	switch s {
	case EdgeBufferUnion:
		return "edge_buffer_union"
	case ConcaveHullOverNodes:
		return "concave_hull"
	default:
		return fmt.Sprintf("strategy(%d)", int(s))
	}
}

// MinNodes below this reachable node count the fixed radius fallback is returned.
func (s Strategy) MinNodes() int {
	if s == ConcaveHullOverNodes {
		return 3
	}
	return 2
}

func (s Strategy) valid() bool {
	return s == EdgeBufferUnion || s == ConcaveHullOverNodes
}

func ParseStrategy(name string) (Strategy, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "edge_buffer_union", "edge_buffer", "buffer":
		return EdgeBufferUnion, nil
	case "concave_hull", "concave_hull_over_nodes", "hull":
		return ConcaveHullOverNodes, nil
	default:
		return 0, fmt.Errorf("%w: unknown strategy %q", ErrInvalidArgument, name)
	}
}

// PolygonBuilder turns a reachable subgraph into an area in the working crs.
type PolygonBuilder interface {
	BuildPolygon(reachable Reachable, params Params) (orb.Geometry, error)
}

func newPolygonBuilder(s Strategy, geom Geometry) (PolygonBuilder, error) {
	switch s {
	case EdgeBufferUnion:
		return edgeBufferUnion{geom: geom}, nil
	case ConcaveHullOverNodes:
		return concaveHullOverNodes{geom: geom}, nil
	default:
		return nil, fmt.Errorf("%w: unknown strategy %v", ErrInvalidArgument, s)
	}
}

type edgeBufferUnion struct {
	geom Geometry
}

// BuildPolygon straight segment per reachable edge, buffered, then unioned.
func (b edgeBufferUnion) BuildPolygon(reachable Reachable, params Params) (orb.Geometry, error) {
	segments := reachable.Segments()
	ribbons := make([]orb.Geometry, 0, len(segments))
	for _, segment := range segments {
		ribbon, err := b.geom.Buffer(segment, params.BufferMeters)
		if err != nil {
			return nil, err
		}
		ribbons = append(ribbons, ribbon)
	}
	return b.geom.Union(ribbons)
}

type concaveHullOverNodes struct {
	geom Geometry
}

func (b concaveHullOverNodes) BuildPolygon(reachable Reachable, params Params) (orb.Geometry, error) {
	points := reachable.Points()

	convex, err := b.geom.ConvexHull(points)
	if err != nil {
		return nil, err
	}
	if !isAreal(convex) {
		// every reachable node lies on one line.
		return b.geom.Buffer(convex, params.BufferMeters)
	}
	if params.HullRatio == 0 {
		return convex, nil
	}

	// GEOS counts the ratio the other way round: 1 is convex, 0 is tightest.
	hull, err := b.geom.ConcaveHull(points, 1-params.HullRatio)
	if err != nil {
		return nil, err
	}
	if !isAreal(hull) {
		return convex, nil
	}
	return hull, nil
}

func isAreal(g orb.Geometry) bool {
	switch g.(type) {
	case orb.Polygon, orb.MultiPolygon:
		return true
	default:
		return false
	}
}
