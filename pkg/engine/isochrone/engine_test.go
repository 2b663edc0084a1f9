package isochrone

import (
	"errors"
	"math"
	"sync"
	"testing"

	"github.com/lintang-b-s/isochronex/pkg/datastructure"
	"github.com/lintang-b-s/isochronex/pkg/geometry"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/rand"
)

func newTestEngine() *Engine {
	return NewEngine(identityProjector{}, geometry.NewGEOS())
}

func maxDistance(origin orb.Point, g orb.Geometry) float64 {
	maxD := 0.0
	var visit func(g orb.Geometry)
	visit = func(g orb.Geometry) {
		switch gg := g.(type) {
		case orb.Polygon:
			for _, ring := range gg {
				for _, p := range ring {
					maxD = math.Max(maxD, planar.Distance(origin, p))
				}
			}
		case orb.MultiPolygon:
			for _, poly := range gg {
				visit(poly)
			}
		}
	}
	visit(g)
	return maxD
}

func TestGenerateSquare(t *testing.T) {
	e := newTestEngine()
	net := NewNetwork(newSquareGraph(t))

	res, err := e.Generate(net, orb.Point{0, 0}, 2, EdgeBufferUnion, DefaultParams(EdgeBufferUnion))
	require.NoError(t, err)

	assert.False(t, res.Fallback)
	assert.Equal(t, int64(10), res.SnappedNode.ID)
	assert.Equal(t, 3, res.ReachableNodes)
	assert.Equal(t, 2, res.ReachableEdges)

	_, isPoly := res.Geometry.(orb.Polygon)
	assert.True(t, isPoly)

	// two 100m ribbons sharing the origin end cap
	ribbon := 100*30 + math.Pi*15*15
	assert.Greater(t, res.AreaM2, ribbon)
	assert.Less(t, res.AreaM2, 2*ribbon)

	// the far corner is not covered
	assert.False(t, planar.PolygonContains(res.Geometry.(orb.Polygon), orb.Point{100, 100}))
	assert.True(t, planar.PolygonContains(res.Geometry.(orb.Polygon), orb.Point{50, 0}))

	hull, err := e.Generate(net, orb.Point{0, 0}, 2, ConcaveHullOverNodes, DefaultParams(ConcaveHullOverNodes))
	require.NoError(t, err)
	assert.False(t, hull.Fallback)
	assert.InDelta(t, 5000, hull.AreaM2, 1e-6)
}

func TestGenerateSnapsOrigin(t *testing.T) {
	e := newTestEngine()
	net := NewNetwork(newSquareGraph(t))

	res, err := e.Generate(net, orb.Point{97, 104}, 2, EdgeBufferUnion, DefaultParams(EdgeBufferUnion))
	require.NoError(t, err)
	assert.Equal(t, int64(12), res.SnappedNode.ID)
	assert.InDelta(t, 5.0, res.SnapDistance, 1e-9)
}

func TestGenerateInvalidArgument(t *testing.T) {
	e := newTestEngine()
	net := NewNetwork(newSquareGraph(t))
	params := DefaultParams(EdgeBufferUnion)

	for _, budget := range []float64{0, -1, math.NaN(), math.Inf(1)} {
		_, err := e.Generate(net, orb.Point{0, 0}, budget, EdgeBufferUnion, params)
		assert.ErrorIs(t, err, ErrInvalidArgument, "budget %v", budget)
	}

	_, err := e.Generate(net, orb.Point{0, 0}, 5, Strategy(9), params)
	assert.ErrorIs(t, err, ErrInvalidArgument)

	bad := params
	bad.BufferMeters = 0
	_, err = e.Generate(net, orb.Point{0, 0}, 5, EdgeBufferUnion, bad)
	assert.ErrorIs(t, err, ErrInvalidArgument)

	bad = params
	bad.HullRatio = 1.5
	_, err = e.Generate(net, orb.Point{0, 0}, 5, ConcaveHullOverNodes, bad)
	assert.ErrorIs(t, err, ErrInvalidArgument)

	// budget is checked before the graph
	_, err = e.Generate(nil, orb.Point{0, 0}, 0, EdgeBufferUnion, params)
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

type failingProjector struct{}

func (failingProjector) ToWorking(crs string, p orb.Point) (orb.Point, error) {
	return orb.Point{}, errors.New("no transformation")
}

func (failingProjector) ToGeographic(crs string, g orb.Geometry) (orb.Geometry, error) {
	return nil, errors.New("no transformation")
}

func TestGeneratePreconditionFailed(t *testing.T) {
	e := newTestEngine()
	params := DefaultParams(EdgeBufferUnion)

	empty, err := datastructure.NewGraph(testCRS, nil, nil)
	require.NoError(t, err)

	_, err = e.Generate(NewNetwork(empty), orb.Point{0, 0}, 5, EdgeBufferUnion, params)
	assert.ErrorIs(t, err, ErrPreconditionFailed)

	_, err = e.Generate(nil, orb.Point{0, 0}, 5, EdgeBufferUnion, params)
	assert.ErrorIs(t, err, ErrPreconditionFailed)

	failing := NewEngine(failingProjector{}, geometry.NewGEOS())
	_, err = failing.Generate(NewNetwork(newSquareGraph(t)), orb.Point{0, 0}, 5, EdgeBufferUnion, params)
	assert.ErrorIs(t, err, ErrPreconditionFailed)
}

var errTopology = errors.New("topology exception")

type failingGeometry struct{}

func (failingGeometry) Buffer(g orb.Geometry, distance float64) (orb.Geometry, error) {
	return nil, errTopology
}

func (failingGeometry) Union(geoms []orb.Geometry) (orb.Geometry, error) {
	return nil, errTopology
}

func (failingGeometry) ConcaveHull(points orb.MultiPoint, ratio float64) (orb.Geometry, error) {
	return nil, errTopology
}

func (failingGeometry) ConvexHull(points orb.MultiPoint) (orb.Geometry, error) {
	return nil, errTopology
}

func TestGenerateGeometryFailed(t *testing.T) {
	e := NewEngine(identityProjector{}, failingGeometry{})
	net := NewNetwork(newSquareGraph(t))

	for _, s := range []Strategy{EdgeBufferUnion, ConcaveHullOverNodes} {
		_, err := e.Generate(net, orb.Point{0, 0}, 5, s, DefaultParams(s))
		assert.ErrorIs(t, err, ErrGeometryFailed, s.String())
		assert.ErrorIs(t, err, errTopology, s.String())
		assert.NotErrorIs(t, err, ErrPreconditionFailed, s.String())
	}
}

func TestGenerateFallback(t *testing.T) {
	e := newTestEngine()

	b, err := datastructure.NewGraphBuilder(testCRS, datastructure.DefaultWalkSpeed)
	require.NoError(t, err)
	require.NoError(t, b.AddNode(1, 5, 5))
	g, err := b.Build()
	require.NoError(t, err)
	isolated := NewNetwork(g)

	cases := []struct {
		strategy Strategy
		radius   float64
	}{
		{EdgeBufferUnion, DefaultEdgeBufferFallbackRadius},
		{ConcaveHullOverNodes, DefaultConcaveHullFallbackRadius},
	}
	for _, tc := range cases {
		res, err := e.Generate(isolated, orb.Point{30, -20}, 10, tc.strategy, DefaultParams(tc.strategy))
		require.NoError(t, err)
		assert.True(t, res.Fallback)
		assert.Equal(t, 1, res.ReachableNodes)
		assert.InDelta(t, math.Pi*tc.radius*tc.radius, res.AreaM2, 0.01*math.Pi*tc.radius*tc.radius)

		// centred on the snapped node, not the raw origin
		c, _ := planar.CentroidArea(res.Geometry.(orb.Polygon))
		assert.InDelta(t, 5, c.X(), 1e-6)
		assert.InDelta(t, 5, c.Y(), 1e-6)
	}

	// two reachable nodes are enough for ribbons but not for a hull
	onePair, err := datastructure.NewGraph(testCRS,
		[]datastructure.Node{datastructure.NewNode(1, 0, 0), datastructure.NewNode(2, 60, 0)},
		[]datastructure.Edge{{From: 0, To: 1, Length: 60, TravelTime: 0.8}})
	require.NoError(t, err)

	res, err := e.Generate(NewNetwork(onePair), orb.Point{0, 0}, 1, ConcaveHullOverNodes, DefaultParams(ConcaveHullOverNodes))
	require.NoError(t, err)
	assert.True(t, res.Fallback)
	assert.Equal(t, 2, res.ReachableNodes)

	res, err = e.Generate(NewNetwork(onePair), orb.Point{0, 0}, 1, EdgeBufferUnion, DefaultParams(EdgeBufferUnion))
	require.NoError(t, err)
	assert.False(t, res.Fallback)

	// reachable edges without extent
	coincident, err := datastructure.NewGraph(testCRS,
		[]datastructure.Node{datastructure.NewNode(1, 0, 0), datastructure.NewNode(2, 0, 0)},
		[]datastructure.Edge{{From: 0, To: 1, TravelTime: 0}})
	require.NoError(t, err)

	res, err = e.Generate(NewNetwork(coincident), orb.Point{0, 0}, 1, EdgeBufferUnion, DefaultParams(EdgeBufferUnion))
	require.NoError(t, err)
	assert.True(t, res.Fallback)

	// the radius is a parameter
	params := DefaultParams(EdgeBufferUnion)
	params.FallbackRadius = 10
	res, err = e.Generate(isolated, orb.Point{5, 5}, 10, EdgeBufferUnion, params)
	require.NoError(t, err)
	assert.InDelta(t, math.Pi*100, res.AreaM2, 0.01*math.Pi*100)
}

func TestGenerateCollinearHull(t *testing.T) {
	e := newTestEngine()

	b, err := datastructure.NewGraphBuilder(testCRS, datastructure.DefaultWalkSpeed)
	require.NoError(t, err)
	require.NoError(t, b.AddNode(1, 0, 0))
	require.NoError(t, b.AddNode(2, 50, 0))
	require.NoError(t, b.AddNode(3, 100, 0))
	require.NoError(t, b.AddStraightEdge(1, 2))
	require.NoError(t, b.AddStraightEdge(2, 3))
	g, err := b.Build()
	require.NoError(t, err)

	res, err := e.Generate(NewNetwork(g), orb.Point{0, 0}, 5, ConcaveHullOverNodes, DefaultParams(ConcaveHullOverNodes))
	require.NoError(t, err)
	assert.False(t, res.Fallback)

	_, isPoly := res.Geometry.(orb.Polygon)
	assert.True(t, isPoly)
	assert.InDelta(t, 100*30+math.Pi*15*15, res.AreaM2, 5)
}

func TestGenerateIdempotent(t *testing.T) {
	e := newTestEngine()
	net := NewNetwork(newGridGraph(t, 6, 80))

	for _, s := range []Strategy{EdgeBufferUnion, ConcaveHullOverNodes} {
		first, err := e.Generate(net, orb.Point{170, 170}, 5, s, DefaultParams(s))
		require.NoError(t, err)
		second, err := e.Generate(net, orb.Point{170, 170}, 5, s, DefaultParams(s))
		require.NoError(t, err)

		assert.Equal(t, first.Geometry, second.Geometry)
		assert.Equal(t, first.AreaM2, second.AreaM2)
	}
}

func TestGenerateBufferSparserThanHull(t *testing.T) {
	e := newTestEngine()
	net := NewNetwork(newGridGraph(t, 5, 100))

	buffer, err := e.Generate(net, orb.Point{0, 0}, 20, EdgeBufferUnion, DefaultParams(EdgeBufferUnion))
	require.NoError(t, err)
	hull, err := e.Generate(net, orb.Point{0, 0}, 20, ConcaveHullOverNodes, DefaultParams(ConcaveHullOverNodes))
	require.NoError(t, err)

	assert.Equal(t, 25, buffer.ReachableNodes)
	assert.Equal(t, 40, buffer.ReachableEdges)
	assert.Less(t, buffer.AreaM2, hull.AreaM2)

	// ribbons leave the interior of every block uncovered
	poly, ok := buffer.Geometry.(orb.Polygon)
	require.True(t, ok)
	assert.Len(t, poly, 17)
}

func TestGenerateSanityBound(t *testing.T) {
	e := newTestEngine()
	rng := rand.New(rand.NewSource(2024))

	for iter := 0; iter < 10; iter++ {
		net := NewNetwork(newRandomGraph(t, rng, 60, 140))
		origin := orb.Point{rng.Float64() * 1000, rng.Float64() * 1000}

		for _, budget := range []float64{1, 3, 6} {
			for _, s := range []Strategy{EdgeBufferUnion, ConcaveHullOverNodes} {
				params := DefaultParams(s)
				res, err := e.Generate(net, origin, budget, s, params)
				require.NoError(t, err)

				snapped := orb.Point{res.SnappedNode.X, res.SnappedNode.Y}
				bound := budget*datastructure.DefaultWalkSpeed + params.BufferMeters
				if res.Fallback {
					bound = params.FallbackRadius
				}
				assert.LessOrEqual(t, maxDistance(snapped, res.WorkingGeometry), bound+1e-6)
				assert.Greater(t, res.AreaM2, 0.0)
			}
		}
	}
}

func TestGenerateMonotoneReach(t *testing.T) {
	e := newTestEngine()
	rng := rand.New(rand.NewSource(99))
	net := NewNetwork(newRandomGraph(t, rng, 100, 250))
	origin := orb.Point{500, 500}

	prev, err := e.ReachableFrom(net, origin, 1)
	require.NoError(t, err)
	for _, budget := range []float64{2, 4, 8, 16} {
		curr, err := e.ReachableFrom(net, origin, budget)
		require.NoError(t, err)
		for _, v := range prev.Nodes {
			assert.True(t, curr.Contains(v))
		}
		prev = curr
	}

	_, err = e.ReachableFrom(net, origin, -3)
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestGenerateSimplify(t *testing.T) {
	e := newTestEngine()
	net := NewNetwork(newGridGraph(t, 4, 100))

	params := DefaultParams(EdgeBufferUnion)
	full, err := e.Generate(net, orb.Point{0, 0}, 4, EdgeBufferUnion, params)
	require.NoError(t, err)

	params.SimplifyMeters = 2
	simplified, err := e.Generate(net, orb.Point{0, 0}, 4, EdgeBufferUnion, params)
	require.NoError(t, err)

	assert.Less(t, countPoints(simplified.Geometry), countPoints(full.Geometry))
	assert.InDelta(t, full.AreaM2, simplified.AreaM2, 0.05*full.AreaM2)
}

func countPoints(g orb.Geometry) int {
	n := 0
	switch gg := g.(type) {
	case orb.Polygon:
		for _, ring := range gg {
			n += len(ring)
		}
	case orb.MultiPolygon:
		for _, poly := range gg {
			n += countPoints(poly)
		}
	}
	return n
}

func TestGenerateConcurrent(t *testing.T) {
	e := newTestEngine()
	net := NewNetwork(newGridGraph(t, 8, 60))

	want, err := e.Generate(net, orb.Point{200, 200}, 4, EdgeBufferUnion, DefaultParams(EdgeBufferUnion))
	require.NoError(t, err)

	var wg sync.WaitGroup
	areas := make([]float64, 16)
	for i := range areas {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			res, err := e.Generate(net, orb.Point{200, 200}, 4, EdgeBufferUnion, DefaultParams(EdgeBufferUnion))
			if err == nil {
				areas[i] = res.AreaM2
			}
		}(i)
	}
	wg.Wait()

	for _, area := range areas {
		assert.InDelta(t, want.AreaM2, area, 1e-6)
	}
}

func TestParseStrategy(t *testing.T) {
	s, err := ParseStrategy("concave_hull")
	require.NoError(t, err)
	assert.Equal(t, ConcaveHullOverNodes, s)

	s, err = ParseStrategy(" Edge_Buffer_Union ")
	require.NoError(t, err)
	assert.Equal(t, EdgeBufferUnion, s)
	assert.Equal(t, "edge_buffer_union", s.String())

	_, err = ParseStrategy("voronoi")
	assert.ErrorIs(t, err, ErrInvalidArgument)
}
