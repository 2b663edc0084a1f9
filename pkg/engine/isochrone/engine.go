package isochrone

import (
	"fmt"
	"math"

	"github.com/lintang-b-s/isochronex/pkg/datastructure"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
	"github.com/paulmach/orb/simplify"
)

// Result of one isochrone query.
type Result struct {
	// Geometry polygon or multipolygon in EPSG:4326.
	Geometry orb.Geometry
	// WorkingGeometry the same area in the graph working crs, before reprojection.
	WorkingGeometry orb.Geometry

	Strategy      Strategy
	BudgetMinutes float64
	// SnappedNode graph node the origin was snapped to.
	SnappedNode datastructure.Node
	// SnapDistance meters between the projected origin and SnappedNode.
	SnapDistance   float64
	ReachableNodes int
	ReachableEdges int
	// AreaM2 planar area in the working crs.
	AreaM2 float64
	// Fallback true when too few nodes were reachable and the result is the fixed radius circle.
	Fallback bool
}

// Engine reachability polygon engine. it holds no per query state and never writes to the
// networks it is given, so one Engine can serve concurrent queries.
type Engine struct {
	projector Projector
	geom      Geometry
}

func NewEngine(projector Projector, geom Geometry) *Engine {
	return &Engine{projector: projector, geom: geom}
}

/*
Generate isochrone polygon of everything reachable from origin within budgetMinutes.

origin is (lon, lat) in EPSG:4326, it is projected once into the network working crs, snapped to the nearest
node and expanded with a bounded dijkstra. the reachable subgraph becomes a polygon with the chosen strategy
and the polygon is projected once back to EPSG:4326.
*/
func (e *Engine) Generate(net *Network, origin orb.Point, budgetMinutes float64, strategy Strategy,
	params Params) (Result, error) {
	if !isFinite(budgetMinutes) || budgetMinutes <= 0 {
		return Result{}, fmt.Errorf("%w: budget must be > 0 minutes, got %v", ErrInvalidArgument, budgetMinutes)
	}
	if !strategy.valid() {
		return Result{}, fmt.Errorf("%w: unknown strategy %v", ErrInvalidArgument, strategy)
	}
	if err := params.Validate(); err != nil {
		return Result{}, err
	}
	if net == nil || net.Graph().NumNodes() == 0 {
		return Result{}, fmt.Errorf("%w: graph has no nodes", ErrPreconditionFailed)
	}

	crs := net.CRS()
	workingOrigin, err := e.projector.ToWorking(crs, origin)
	if err != nil {
		return Result{}, fmt.Errorf("%w: project origin %v to %s: %v", ErrPreconditionFailed, origin, crs, err)
	}

	source, snapDist, ok := net.SnapToNode(workingOrigin)
	if !ok {
		return Result{}, fmt.Errorf("%w: no node to snap origin %v", ErrPreconditionFailed, origin)
	}

	reachable := ReachableSubgraph(net.Graph(), source, budgetMinutes)
	sourceNode := net.Graph().GetNode(source)

	result := Result{
		Strategy:       strategy,
		BudgetMinutes:  budgetMinutes,
		SnappedNode:    sourceNode,
		SnapDistance:   snapDist,
		ReachableNodes: len(reachable.Nodes),
		ReachableEdges: len(reachable.Edges),
	}

	var polygon orb.Geometry
	if isDegenerate(reachable, strategy) {
		polygon, err = e.geom.Buffer(orb.Point{sourceNode.X, sourceNode.Y}, params.FallbackRadius)
		result.Fallback = true
	} else {
		var builder PolygonBuilder
		builder, err = newPolygonBuilder(strategy, e.geom)
		if err != nil {
			return Result{}, err
		}
		polygon, err = builder.BuildPolygon(reachable, params)
	}
	if err != nil {
		return Result{}, fmt.Errorf("%w: build %v polygon: %w", ErrGeometryFailed, strategy, err)
	}

	if params.SimplifyMeters > 0 {
		polygon = simplifyPolygon(polygon, params.SimplifyMeters)
	}

	result.WorkingGeometry = polygon
	result.AreaM2 = math.Abs(planar.Area(polygon))

	geographic, err := e.projector.ToGeographic(crs, polygon)
	if err != nil {
		return Result{}, fmt.Errorf("%w: project isochrone from %s: %v", ErrPreconditionFailed, crs, err)
	}
	result.Geometry = geographic

	return result, nil
}

// ReachableFrom reachable subgraph of the node nearest to origin, without building a polygon.
func (e *Engine) ReachableFrom(net *Network, origin orb.Point, budgetMinutes float64) (Reachable, error) {
	if !isFinite(budgetMinutes) || budgetMinutes <= 0 {
		return Reachable{}, fmt.Errorf("%w: budget must be > 0 minutes, got %v", ErrInvalidArgument, budgetMinutes)
	}
	if net == nil || net.Graph().NumNodes() == 0 {
		return Reachable{}, fmt.Errorf("%w: graph has no nodes", ErrPreconditionFailed)
	}
	workingOrigin, err := e.projector.ToWorking(net.CRS(), origin)
	if err != nil {
		return Reachable{}, fmt.Errorf("%w: project origin %v to %s: %v", ErrPreconditionFailed, origin, net.CRS(), err)
	}
	source, _, ok := net.SnapToNode(workingOrigin)
	if !ok {
		return Reachable{}, fmt.Errorf("%w: no node to snap origin %v", ErrPreconditionFailed, origin)
	}
	return ReachableSubgraph(net.Graph(), source, budgetMinutes), nil
}

func isDegenerate(reachable Reachable, strategy Strategy) bool {
	if len(reachable.Nodes) < strategy.MinNodes() {
		return true
	}
	return strategy == EdgeBufferUnion && len(reachable.Segments()) == 0
}

// simplifyPolygon keeps the original polygon when simplification collapses it.
func simplifyPolygon(polygon orb.Geometry, tolerance float64) orb.Geometry {
	simplified := simplify.DouglasPeucker(tolerance).Simplify(orb.Clone(polygon))
	if simplified == nil || planar.Area(simplified) == 0 {
		return polygon
	}
	return simplified
}
