package isochrone

import (
	"testing"

	"github.com/lintang-b-s/isochronex/pkg/datastructure"
	"github.com/paulmach/orb"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/rand"
)

const testCRS = "EPSG:32618"

// graph coordinates are already meters, origins are given in the same plane.
type identityProjector struct{}

func (identityProjector) ToWorking(crs string, p orb.Point) (orb.Point, error) {
	return p, nil
}

func (identityProjector) ToGeographic(crs string, g orb.Geometry) (orb.Geometry, error) {
	return orb.Clone(g), nil
}

/*
square graph

	13 (0,100) ---- 12 (100,100)
	|                |
	|                |
	10 (0,0) ------ 11 (100,0)

travel time of every edge = 100/75 minutes.
*/
func newSquareGraph(t *testing.T) *datastructure.Graph {
	t.Helper()
	b, err := datastructure.NewGraphBuilder(testCRS, datastructure.DefaultWalkSpeed)
	require.NoError(t, err)

	require.NoError(t, b.AddNode(10, 0, 0))
	require.NoError(t, b.AddNode(11, 100, 0))
	require.NoError(t, b.AddNode(12, 100, 100))
	require.NoError(t, b.AddNode(13, 0, 100))

	require.NoError(t, b.AddStraightEdge(10, 11))
	require.NoError(t, b.AddStraightEdge(11, 12))
	require.NoError(t, b.AddStraightEdge(12, 13))
	require.NoError(t, b.AddStraightEdge(13, 10))

	g, err := b.Build()
	require.NoError(t, err)
	return g
}

// newGridGraph size x size grid with spacing meters between neighbours, node id = row*size + col.
func newGridGraph(t *testing.T, size int, spacing float64) *datastructure.Graph {
	t.Helper()
	b, err := datastructure.NewGraphBuilder(testCRS, datastructure.DefaultWalkSpeed)
	require.NoError(t, err)

	for r := 0; r < size; r++ {
		for c := 0; c < size; c++ {
			require.NoError(t, b.AddNode(int64(r*size+c), float64(c)*spacing, float64(r)*spacing))
		}
	}
	for r := 0; r < size; r++ {
		for c := 0; c < size; c++ {
			id := int64(r*size + c)
			if c+1 < size {
				require.NoError(t, b.AddStraightEdge(id, id+1))
			}
			if r+1 < size {
				require.NoError(t, b.AddStraightEdge(id, id+int64(size)))
			}
		}
	}
	g, err := b.Build()
	require.NoError(t, err)
	return g
}

// newRandomGraph n nodes scattered over a 1km square, m random straight edges.
func newRandomGraph(t *testing.T, rng *rand.Rand, n, m int) *datastructure.Graph {
	t.Helper()
	b, err := datastructure.NewGraphBuilder(testCRS, datastructure.DefaultWalkSpeed)
	require.NoError(t, err)

	for i := 0; i < n; i++ {
		require.NoError(t, b.AddNode(int64(i), rng.Float64()*1000, rng.Float64()*1000))
	}
	for i := 0; i < m; i++ {
		u := int64(rng.Intn(n))
		v := int64(rng.Intn(n))
		require.NoError(t, b.AddStraightEdge(u, v))
	}
	g, err := b.Build()
	require.NoError(t, err)
	return g
}
