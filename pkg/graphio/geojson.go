package graphio

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"github.com/lintang-b-s/isochronex/pkg/datastructure"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/paulmach/orb/planar"
)

var (
	ErrNoCRS        = errors.New("graph working crs is neither configured nor declared in the file")
	ErrNoEdges      = errors.New("graph file has no linestring features")
	ErrNodeConflict = errors.New("node id reused at a different coordinate")
)

type Options struct {
	// CRS working crs of the coordinates. when empty the FeatureCollection "crs" member is used.
	CRS string
	// WalkSpeed meters per minute, used for edges without a travel_time property.
	WalkSpeed float64
	// Projector is only needed for openstreetmap input, which is in EPSG:4326.
	Projector Projector
}

/*
Load builds a street graph from a GeoJSON FeatureCollection in a projected crs.

every LineString (or MultiLineString part) is one undirected edge between its first and last vertex.
endpoints are node ids from the "u" and "v" properties, or nodes keyed by coordinate when those are missing.
u and v are only read from features with a single line part. Point features with an "id" property declare
nodes explicitly. explicit ids are all declared before any coordinate keyed node gets a generated id, and an
explicit id seen at two different coordinates is an error.
"length" (meters) and "travel_time" (minutes) properties are used when present, otherwise length is the
planar length of the line and travel time is length / WalkSpeed.
*/
func Load(r io.Reader, opts Options) (*datastructure.Graph, error) {
	bb, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	fc, err := geojson.UnmarshalFeatureCollection(bb)
	if err != nil {
		return nil, fmt.Errorf("parse graph: %w", err)
	}

	crs := opts.CRS
	if crs == "" {
		crs = crsFromMembers(fc.ExtraMembers)
	}
	if crs == "" {
		return nil, ErrNoCRS
	}
	speed := opts.WalkSpeed
	if speed == 0 {
		speed = datastructure.DefaultWalkSpeed
	}

	builder, err := datastructure.NewGraphBuilder(crs, speed)
	if err != nil {
		return nil, err
	}
	l := &loader{
		builder:  builder,
		coordIDs: make(map[orb.Point]int64),
		explicit: make(map[int64]orb.Point),
		nextID:   1,
	}

	for i, f := range fc.Features {
		p, ok := f.Geometry.(orb.Point)
		if !ok {
			continue
		}
		id, ok := propInt(f.Properties, "id")
		if !ok {
			continue
		}
		if err := l.declare(id, p); err != nil {
			return nil, fmt.Errorf("feature %d: %w", i, err)
		}
	}

	featureLines := make([][]orb.LineString, len(fc.Features))
	for i, f := range fc.Features {
		featureLines[i] = lineParts(f.Geometry)
		if len(featureLines[i]) != 1 {
			continue
		}
		ls := featureLines[i][0]
		if u, ok := propInt(f.Properties, "u"); ok {
			if err := l.declare(u, ls[0]); err != nil {
				return nil, fmt.Errorf("feature %d: %w", i, err)
			}
		}
		if v, ok := propInt(f.Properties, "v"); ok {
			if err := l.declare(v, ls[len(ls)-1]); err != nil {
				return nil, fmt.Errorf("feature %d: %w", i, err)
			}
		}
	}

	numEdges := 0
	for i, f := range fc.Features {
		lines := featureLines[i]
		props := f.Properties
		if len(lines) != 1 {
			props = withoutEndpoints(props)
		}
		for _, ls := range lines {
			if err := l.addEdge(ls, props); err != nil {
				return nil, fmt.Errorf("feature %d: %w", i, err)
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
	log.Printf("loaded street graph: %d nodes, %d edges, crs %s", g.NumNodes(), g.NumEdges(), crs)
	return g, nil
}

// lineParts line parts of g with at least two vertices.
func lineParts(g orb.Geometry) []orb.LineString {
	var lines []orb.LineString
	switch gg := g.(type) {
	case orb.LineString:
		lines = append(lines, gg)
	case orb.MultiLineString:
		lines = append(lines, gg...)
	}
	parts := make([]orb.LineString, 0, len(lines))
	for _, ls := range lines {
		if len(ls) >= 2 {
			parts = append(parts, ls)
		}
	}
	return parts
}

func withoutEndpoints(props geojson.Properties) geojson.Properties {
	out := make(geojson.Properties, len(props))
	for k, v := range props {
		if k == "u" || k == "v" {
			continue
		}
		out[k] = v
	}
	return out
}

// LoadFile reads a street graph, openstreetmap extracts (.osm, .osm.pbf) go through LoadOSMFile.
func LoadFile(path string, opts Options) (*datastructure.Graph, error) {
	if isPBF(path) || strings.HasSuffix(strings.ToLower(path), ".osm") {
		return LoadOSMFile(context.Background(), path, opts)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Load(f, opts)
}

type loader struct {
	builder  *datastructure.GraphBuilder
	coordIDs map[orb.Point]int64
	// explicit coordinate of every id given by the file.
	explicit map[int64]orb.Point
	nextID   int64
}

// declare registers a node id given by the file. the same id at another coordinate is rejected.
func (l *loader) declare(id int64, p orb.Point) error {
	if q, ok := l.explicit[id]; ok {
		if q != p {
			return fmt.Errorf("node %d at %v and %v: %w", id, q, p, ErrNodeConflict)
		}
		return nil
	}
	if err := l.builder.AddNode(id, p.X(), p.Y()); err != nil {
		return err
	}
	l.explicit[id] = p
	if _, ok := l.coordIDs[p]; !ok {
		l.coordIDs[p] = id
	}
	return nil
}

// nodeAt id of the node at p, creating one with a fresh id when needed.
// every explicit id is declared before the first call, so generated ids never shadow one.
func (l *loader) nodeAt(p orb.Point) (int64, error) {
	if id, ok := l.coordIDs[p]; ok {
		return id, nil
	}
	for l.builder.HasNode(l.nextID) {
		l.nextID++
	}
	id := l.nextID
	if err := l.builder.AddNode(id, p.X(), p.Y()); err != nil {
		return 0, err
	}
	l.coordIDs[p] = id
	return id, nil
}

func (l *loader) endpoint(props geojson.Properties, key string, p orb.Point) (int64, error) {
	if id, ok := propInt(props, key); ok {
		return id, nil
	}
	return l.nodeAt(p)
}

func (l *loader) addEdge(ls orb.LineString, props geojson.Properties) error {
	from, err := l.endpoint(props, "u", ls[0])
	if err != nil {
		return err
	}
	to, err := l.endpoint(props, "v", ls[len(ls)-1])
	if err != nil {
		return err
	}

	length, ok := propFloat(props, "length")
	if !ok {
		length = planar.Length(ls)
	}
	if travelTime, ok := propFloat(props, "travel_time"); ok {
		return l.builder.AddEdgeWithTravelTime(from, to, length, travelTime)
	}
	return l.builder.AddEdge(from, to, length)
}

func propFloat(props geojson.Properties, key string) (float64, bool) {
	switch v := props[key].(type) {
	case float64:
		return v, true
	case json.Number:
		f, err := v.Float64()
		return f, err == nil
	default:
		return 0, false
	}
}

func propInt(props geojson.Properties, key string) (int64, bool) {
	f, ok := propFloat(props, key)
	if !ok || f != float64(int64(f)) {
		return 0, false
	}
	return int64(f), true
}

// crsFromMembers reads the legacy GeoJSON crs member, e.g. {"type":"name","properties":{"name":"urn:ogc:def:crs:EPSG::32618"}}.
func crsFromMembers(members map[string]interface{}) string {
	crs, ok := members["crs"].(map[string]interface{})
	if !ok {
		return ""
	}
	props, ok := crs["properties"].(map[string]interface{})
	if !ok {
		return ""
	}
	name, ok := props["name"].(string)
	if !ok {
		return ""
	}
	if i := strings.LastIndex(name, "EPSG::"); i >= 0 {
		return "EPSG:" + name[i+len("EPSG::"):]
	}
	return name
}

func isPBF(path string) bool {
	return strings.HasSuffix(strings.ToLower(path), ".pbf")
}
