package isochrone

import (
	"sort"

	"github.com/lintang-b-s/isochronex/pkg/datastructure"
	"github.com/paulmach/orb"
)

// Reachable ego network of a source node: nodes whose shortest travel time from the source is <= budget,
// and the edges induced by them.
type Reachable struct {
	Source int32
	// Nodes sorted node indexes, source included.
	Nodes []int32
	// Edges sorted edge indexes with both endpoints in Nodes.
	Edges []int32
	// Cost shortest travel time in minutes for every node in Nodes.
	Cost map[int32]float64

	graph *datastructure.Graph
}

/*
ReachableSubgraph bounded dijkstra from source over the undirected graph.
a node is settled only if its cost is <= budget, the search stops at the first queue item above the budget.
edges are then taken from the induced subgraph: an edge between two reachable nodes is kept even if
walking its whole length would exceed the budget.

O((V+E)logV) with the binary heap, V and E restricted to the nodes and edges inside the budget.
*/
func ReachableSubgraph(g *datastructure.Graph, source int32, budget float64) Reachable {
	cost := make(map[int32]float64)
	settled := make(map[int32]struct{})

	pq := datastructure.NewMinHeap[int32]()
	pq.Insert(datastructure.NewPriorityQueueNode(0.0, source))
	cost[source] = 0

	nodes := make([]int32, 0)
	for pq.Size() > 0 {
		curr, _ := pq.ExtractMin()
		if curr.Rank > budget {
			break
		}
		settled[curr.Item] = struct{}{}
		nodes = append(nodes, curr.Item)

		for _, edgeID := range g.GetNodeEdges(curr.Item) {
			edge := g.GetEdge(edgeID)
			toNID := edge.Other(curr.Item)
			if _, ok := settled[toNID]; ok {
				continue
			}

			newCost := curr.Rank + edge.TravelTime
			if newCost > budget {
				continue
			}

			oldCost, ok := cost[toNID]
			if !ok {
				cost[toNID] = newCost
				pq.Insert(datastructure.NewPriorityQueueNode(newCost, toNID))
			} else if newCost < oldCost {
				cost[toNID] = newCost
				pq.DecreaseKey(datastructure.NewPriorityQueueNode(newCost, toNID))
			}
		}
	}

	edgeSet := make(map[int32]struct{})
	for _, nodeID := range nodes {
		for _, edgeID := range g.GetNodeEdges(nodeID) {
			edge := g.GetEdge(edgeID)
			if _, ok := settled[edge.Other(nodeID)]; ok {
				edgeSet[edgeID] = struct{}{}
			}
		}
	}
	edges := make([]int32, 0, len(edgeSet))
	for edgeID := range edgeSet {
		edges = append(edges, edgeID)
	}

	nodeCost := make(map[int32]float64, len(nodes))
	for _, nodeID := range nodes {
		nodeCost[nodeID] = cost[nodeID]
	}

	sort.Slice(nodes, func(i, j int) bool { return nodes[i] < nodes[j] })
	sort.Slice(edges, func(i, j int) bool { return edges[i] < edges[j] })

	return Reachable{
		Source: source,
		Nodes:  nodes,
		Edges:  edges,
		Cost:   nodeCost,
		graph:  g,
	}
}

// Contains reports whether node idx is inside the budget.
func (r Reachable) Contains(idx int32) bool {
	_, ok := r.Cost[idx]
	return ok
}

// Points reachable node coordinates.
func (r Reachable) Points() orb.MultiPoint {
	points := make(orb.MultiPoint, 0, len(r.Nodes))
	for _, nodeID := range r.Nodes {
		n := r.graph.GetNode(nodeID)
		points = append(points, orb.Point{n.X, n.Y})
	}
	return points
}

// Segments straight line per reachable edge. self loops and zero length edges have no extent and are skipped.
func (r Reachable) Segments() []orb.LineString {
	segments := make([]orb.LineString, 0, len(r.Edges))
	for _, edgeID := range r.Edges {
		edge := r.graph.GetEdge(edgeID)
		from, to := r.graph.GetNode(edge.From), r.graph.GetNode(edge.To)
		if from.X == to.X && from.Y == to.Y {
			continue
		}
		segments = append(segments, orb.LineString{{from.X, from.Y}, {to.X, to.Y}})
	}
	return segments
}
