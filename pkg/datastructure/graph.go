package datastructure

import (
	"errors"
	"fmt"
	"math"
)

const (
	// DefaultWalkSpeed in meters per minute (4.5 km/h).
	DefaultWalkSpeed = 75.0
)

var (
	ErrDuplicateNode = errors.New("duplicate node id")
	ErrUnknownNode   = errors.New("edge references unknown node")
	ErrInvalidWeight = errors.New("edge weight must be finite and >= 0")
	ErrInvalidSpeed  = errors.New("speed must be finite and > 0")
	ErrInvalidCoord  = errors.New("node coordinate must be finite")
)

// Node is a street network vertex in the graph working projection (meters).
type Node struct {
	ID int64
	X  float64
	Y  float64
}

func NewNode(id int64, x, y float64) Node {
	return Node{ID: id, X: x, Y: y}
}

// Edge connects two node indexes. TravelTime is in minutes and never changes after the graph is built.
type Edge struct {
	From       int32
	To         int32
	Length     float64
	TravelTime float64
}

// Other returns the endpoint of e that is not v.
func (e Edge) Other(v int32) int32 {
	if e.From == v {
		return e.To
	}
	return e.From
}

// TravelTime derives edge cost in minutes from a length in meters and a speed in meters per minute.
func TravelTime(lengthMeters, speed float64) float64 {
	return lengthMeters / speed
}

// Graph undirected travel time weighted planar graph. adjacency list keyed by node index.
// a built Graph is read only, so it can be shared between goroutines without locking.
type Graph struct {
	crs     string
	nodes   []Node
	edges   []Edge
	adj     [][]int32
	idIndex map[int64]int32
}

// NewGraph builds a graph from nodes and edges whose From/To are indexes into nodes.
func NewGraph(crs string, nodes []Node, edges []Edge) (*Graph, error) {
	g := &Graph{
		crs:     crs,
		nodes:   make([]Node, len(nodes)),
		edges:   make([]Edge, len(edges)),
		adj:     make([][]int32, len(nodes)),
		idIndex: make(map[int64]int32, len(nodes)),
	}
	copy(g.nodes, nodes)
	copy(g.edges, edges)

	for i, n := range g.nodes {
		if !isFinite(n.X) || !isFinite(n.Y) {
			return nil, fmt.Errorf("node %d: %w", n.ID, ErrInvalidCoord)
		}
		if _, ok := g.idIndex[n.ID]; ok {
			return nil, fmt.Errorf("node %d: %w", n.ID, ErrDuplicateNode)
		}
		g.idIndex[n.ID] = int32(i)
	}

	for i, e := range g.edges {
		if e.From < 0 || int(e.From) >= len(g.nodes) || e.To < 0 || int(e.To) >= len(g.nodes) {
			return nil, fmt.Errorf("edge %d (%d,%d): %w", i, e.From, e.To, ErrUnknownNode)
		}
		if !isFinite(e.TravelTime) || e.TravelTime < 0 {
			return nil, fmt.Errorf("edge %d travel time %v: %w", i, e.TravelTime, ErrInvalidWeight)
		}
		g.adj[e.From] = append(g.adj[e.From], int32(i))
		if e.To != e.From {
			g.adj[e.To] = append(g.adj[e.To], int32(i))
		}
	}
	return g, nil
}

func (g *Graph) CRS() string {
	return g.crs
}

func (g *Graph) NumNodes() int {
	return len(g.nodes)
}

func (g *Graph) NumEdges() int {
	return len(g.edges)
}

func (g *Graph) GetNode(idx int32) Node {
	return g.nodes[idx]
}

func (g *Graph) GetEdge(idx int32) Edge {
	return g.edges[idx]
}

// GetNodeIndex maps an external node id to its index.
func (g *Graph) GetNodeIndex(id int64) (int32, bool) {
	idx, ok := g.idIndex[id]
	return idx, ok
}

// GetNodeEdges edge indexes incident to node idx. the returned slice must not be modified.
func (g *Graph) GetNodeEdges(idx int32) []int32 {
	return g.adj[idx]
}

// ForEachNode visits nodes in index order.
func (g *Graph) ForEachNode(fn func(idx int32, n Node)) {
	for i, n := range g.nodes {
		fn(int32(i), n)
	}
}

// GraphBuilder accumulates nodes by id and edges by length, deriving travel time with a fixed speed.
type GraphBuilder struct {
	crs   string
	speed float64
	nodes []Node
	edges []Edge
	ids   map[int64]int32
}

func NewGraphBuilder(crs string, speed float64) (*GraphBuilder, error) {
	if !isFinite(speed) || speed <= 0 {
		return nil, fmt.Errorf("speed %v: %w", speed, ErrInvalidSpeed)
	}
	return &GraphBuilder{
		crs:   crs,
		speed: speed,
		ids:   make(map[int64]int32),
	}, nil
}

func (b *GraphBuilder) HasNode(id int64) bool {
	_, ok := b.ids[id]
	return ok
}

func (b *GraphBuilder) AddNode(id int64, x, y float64) error {
	if _, ok := b.ids[id]; ok {
		return fmt.Errorf("node %d: %w", id, ErrDuplicateNode)
	}
	b.ids[id] = int32(len(b.nodes))
	b.nodes = append(b.nodes, NewNode(id, x, y))
	return nil
}

// AddEdge adds an edge between two known node ids with the given length in meters.
func (b *GraphBuilder) AddEdge(fromID, toID int64, length float64) error {
	from, ok := b.ids[fromID]
	if !ok {
		return fmt.Errorf("node %d: %w", fromID, ErrUnknownNode)
	}
	to, ok := b.ids[toID]
	if !ok {
		return fmt.Errorf("node %d: %w", toID, ErrUnknownNode)
	}
	if !isFinite(length) || length < 0 {
		return fmt.Errorf("edge (%d,%d) length %v: %w", fromID, toID, length, ErrInvalidWeight)
	}
	b.edges = append(b.edges, Edge{
		From:       from,
		To:         to,
		Length:     length,
		TravelTime: TravelTime(length, b.speed),
	})
	return nil
}

// AddEdgeWithTravelTime adds an edge whose travel time was already computed by the provider.
func (b *GraphBuilder) AddEdgeWithTravelTime(fromID, toID int64, length, travelTime float64) error {
	if err := b.AddEdge(fromID, toID, length); err != nil {
		return err
	}
	if !isFinite(travelTime) || travelTime < 0 {
		b.edges = b.edges[:len(b.edges)-1]
		return fmt.Errorf("edge (%d,%d) travel time %v: %w", fromID, toID, travelTime, ErrInvalidWeight)
	}
	b.edges[len(b.edges)-1].TravelTime = travelTime
	return nil
}

// AddStraightEdge adds an edge whose length is the euclidean distance between its endpoints.
func (b *GraphBuilder) AddStraightEdge(fromID, toID int64) error {
	from, ok := b.ids[fromID]
	if !ok {
		return fmt.Errorf("node %d: %w", fromID, ErrUnknownNode)
	}
	to, ok := b.ids[toID]
	if !ok {
		return fmt.Errorf("node %d: %w", toID, ErrUnknownNode)
	}
	u, v := b.nodes[from], b.nodes[to]
	return b.AddEdge(fromID, toID, math.Hypot(u.X-v.X, u.Y-v.Y))
}

func (b *GraphBuilder) Build() (*Graph, error) {
	return NewGraph(b.crs, b.nodes, b.edges)
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
