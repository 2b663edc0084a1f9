package graphio

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"math"
	"os"

	"github.com/lintang-b-s/isochronex/pkg/datastructure"
	"github.com/paulmach/orb"
	"github.com/paulmach/osm"
	"github.com/paulmach/osm/osmpbf"
	"github.com/paulmach/osm/osmxml"
)

var (
	ErrNoProjector = errors.New("openstreetmap input needs a projector into the working crs")
)

// Projector projects (lon, lat) into a working crs.
type Projector interface {
	ToWorking(crs string, pt orb.Point) (orb.Point, error)
}

var (
	// highways pedestrians can not use.
	skipHighway = map[string]struct{}{
		"motorway":      {},
		"motorway_link": {},
		"trunk":         {},
		"trunk_link":    {},
		"construction":  {},
		"proposed":      {},
		"abandoned":     {},
		"platform":      {},
		"raceway":       {},
		"bus_guideway":  {},
		"busway":        {},
		"elevator":      {},
	}

	noAccess = map[string]struct{}{
		"no":      {},
		"private": {},
	}
)

// acceptWalkWay reports whether way is part of the walking network.
func acceptWalkWay(way *osm.Way) bool {
	if len(way.Nodes) < 2 {
		return false
	}
	highway := way.Tags.Find("highway")
	if highway == "" || way.Tags.Find("area") == "yes" {
		return false
	}
	if _, ok := skipHighway[highway]; ok {
		return false
	}

	foot := way.Tags.Find("foot")
	if _, ok := noAccess[foot]; ok {
		return false
	}
	if foot == "yes" || foot == "designated" {
		return true
	}
	if _, ok := noAccess[way.Tags.Find("access")]; ok {
		return false
	}
	return true
}

// ScannerFunc opens a fresh scanner over the same openstreetmap data. it is called once per pass.
type ScannerFunc func(ctx context.Context) (osm.Scanner, error)

/*
LoadOSM builds a walking graph from openstreetmap data.

first pass keeps walkable ways and remembers their node refs, second pass reads those nodes
and projects them into opts.CRS. every pair of consecutive way nodes becomes one undirected edge
whose length is the planar distance in the working crs. segments touching a node missing from the
extract are dropped.
*/
func LoadOSM(ctx context.Context, open ScannerFunc, opts Options) (*datastructure.Graph, error) {
	if opts.CRS == "" {
		return nil, ErrNoCRS
	}
	if opts.Projector == nil {
		return nil, ErrNoProjector
	}
	speed := opts.WalkSpeed
	if speed == 0 {
		speed = datastructure.DefaultWalkSpeed
	}

	ways := make([][]osm.NodeID, 0)
	wayNodes := make(map[osm.NodeID]struct{})

	scanner, err := open(ctx)
	if err != nil {
		return nil, err
	}
	countWays := 0
	for scanner.Scan() {
		way, ok := scanner.Object().(*osm.Way)
		if !ok || !acceptWalkWay(way) {
			continue
		}
		if (countWays+1)%50000 == 0 {
			log.Printf("reading openstreetmap ways: %d...", countWays+1)
		}
		countWays++

		refs := way.Nodes.NodeIDs()
		for _, id := range refs {
			wayNodes[id] = struct{}{}
		}
		ways = append(ways, refs)
	}
	if err := closeScanner(scanner); err != nil {
		return nil, fmt.Errorf("scan openstreetmap ways: %w", err)
	}
	if len(ways) == 0 {
		return nil, ErrNoEdges
	}

	coords := make(map[osm.NodeID]orb.Point, len(wayNodes))
	scanner, err = open(ctx)
	if err != nil {
		return nil, err
	}
	for scanner.Scan() {
		node, ok := scanner.Object().(*osm.Node)
		if !ok {
			continue
		}
		if _, ok := wayNodes[node.ID]; !ok {
			continue
		}
		p, err := opts.Projector.ToWorking(opts.CRS, orb.Point{node.Lon, node.Lat})
		if err != nil {
			scanner.Close()
			return nil, fmt.Errorf("node %d: %w", node.ID, err)
		}
		coords[node.ID] = p
	}
	if err := closeScanner(scanner); err != nil {
		return nil, fmt.Errorf("scan openstreetmap nodes: %w", err)
	}

	builder, err := datastructure.NewGraphBuilder(opts.CRS, speed)
	if err != nil {
		return nil, err
	}
	ensureNode := func(id osm.NodeID) error {
		if builder.HasNode(int64(id)) {
			return nil
		}
		p := coords[id]
		return builder.AddNode(int64(id), p.X(), p.Y())
	}

	numEdges := 0
	for _, refs := range ways {
		for i := 0; i+1 < len(refs); i++ {
			u, v := refs[i], refs[i+1]
			pu, okU := coords[u]
			pv, okV := coords[v]
			if !okU || !okV || u == v {
				continue
			}
			if err := ensureNode(u); err != nil {
				return nil, err
			}
			if err := ensureNode(v); err != nil {
				return nil, err
			}
			if err := builder.AddEdge(int64(u), int64(v), math.Hypot(pu.X()-pv.X(), pu.Y()-pv.Y())); err != nil {
				return nil, err
			}
			numEdges++
		}
	}
	if numEdges == 0 {
		return nil, ErrNoEdges
	}

	g, err := builder.Build()
	if err != nil {
		return nil, err
	}
	log.Printf("loaded openstreetmap walking graph: %d ways, %d nodes, %d edges, crs %s",
		len(ways), g.NumNodes(), g.NumEdges(), opts.CRS)
	return g, nil
}

func closeScanner(scanner osm.Scanner) error {
	if err := scanner.Err(); err != nil {
		scanner.Close()
		return err
	}
	return scanner.Close()
}

// LoadOSMFile reads an .osm.pbf or .osm (xml) extract.
func LoadOSMFile(ctx context.Context, path string, opts Options) (*datastructure.Graph, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	pbf := isPBF(path)
	open := func(ctx context.Context) (osm.Scanner, error) {
		if _, err := f.Seek(0, io.SeekStart); err != nil {
			return nil, err
		}
		if pbf {
			scanner := osmpbf.New(ctx, f, 1)
			scanner.SkipRelations = true
			return scanner, nil
		}
		return osmxml.New(ctx, f), nil
	}
	return LoadOSM(ctx, open, opts)
}
