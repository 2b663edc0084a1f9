package isochrone

import (
	"math"

	"github.com/dhconnelly/rtreego"
	"github.com/lintang-b-s/isochronex/pkg/datastructure"
	"github.com/paulmach/orb"
)

const (
	rtreeMinChildren = 25
	rtreeMaxChildren = 50
	// half size of the bounding box of a node in the r-tree, meters.
	nodeBoundTolerance = 1e-6
	// distances closer than this are treated as a tie.
	snapTieEpsilon = 1e-9
)

type nodeEntry struct {
	idx int32
	id  int64
	loc rtreego.Point
}

func (n *nodeEntry) Bounds() rtreego.Rect {
	return n.loc.ToRect(nodeBoundTolerance)
}

// Network graph plus an r-tree over its nodes for nearest node snapping.
// like the graph it wraps, a Network is read only once built.
type Network struct {
	graph *datastructure.Graph
	rtree *rtreego.Rtree
}

func NewNetwork(g *datastructure.Graph) *Network {
	entries := make([]rtreego.Spatial, 0, g.NumNodes())
	g.ForEachNode(func(idx int32, n datastructure.Node) {
		entries = append(entries, &nodeEntry{idx: idx, id: n.ID, loc: rtreego.Point{n.X, n.Y}})
	})
	return &Network{
		graph: g,
		rtree: rtreego.NewTree(2, rtreeMinChildren, rtreeMaxChildren, entries...),
	}
}

func (net *Network) Graph() *datastructure.Graph {
	return net.graph
}

func (net *Network) CRS() string {
	return net.graph.CRS()
}

/*
SnapToNode nearest graph node to p under euclidean distance in the working crs.
ties are broken by the lowest node id so the result does not depend on r-tree insertion order:
after the nearest neighbour query every node inside the box of the best distance is compared.
*/
func (net *Network) SnapToNode(p orb.Point) (int32, float64, bool) {
	if net.rtree.Size() == 0 {
		return -1, 0, false
	}
	query := rtreego.Point{p.X(), p.Y()}

	nearest := net.rtree.NearestNeighbor(query).(*nodeEntry)
	best := distance(query, nearest.loc)

	bestEntry := nearest
	for _, obj := range net.rtree.SearchIntersect(query.ToRect(best + 2*nodeBoundTolerance)) {
		candidate := obj.(*nodeEntry)
		d := distance(query, candidate.loc)
		if d < best-snapTieEpsilon || (math.Abs(d-best) <= snapTieEpsilon && candidate.id < bestEntry.id) {
			best = d
			bestEntry = candidate
		}
	}
	return bestEntry.idx, best, true
}

func distance(a, b rtreego.Point) float64 {
	return math.Hypot(a[0]-b[0], a[1]-b[1])
}
