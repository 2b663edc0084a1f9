package graphio

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/lintang-b-s/isochronex/pkg/datastructure"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const squareByID = `{
  "type": "FeatureCollection",
  "crs": {"type": "name", "properties": {"name": "urn:ogc:def:crs:EPSG::32618"}},
  "features": [
    {"type": "Feature", "geometry": {"type": "Point", "coordinates": [0, 0]}, "properties": {"id": 10}},
    {"type": "Feature", "geometry": {"type": "LineString", "coordinates": [[0, 0], [100, 0]]},
     "properties": {"u": 10, "v": 11}},
    {"type": "Feature", "geometry": {"type": "LineString", "coordinates": [[100, 0], [150, 50], [100, 100]]},
     "properties": {"u": 11, "v": 12, "length": 141.42, "travel_time": 3}},
    {"type": "Feature", "geometry": {"type": "LineString", "coordinates": [[100, 100], [0, 100]]},
     "properties": {"u": 12, "v": 13}},
    {"type": "Feature", "geometry": {"type": "LineString", "coordinates": [[0, 100], [0, 0]]},
     "properties": {"u": 13, "v": 10}}
  ]
}`

func TestLoadByNodeID(t *testing.T) {
	g, err := Load(strings.NewReader(squareByID), Options{})
	require.NoError(t, err)

	assert.Equal(t, "EPSG:32618", g.CRS())
	assert.Equal(t, 4, g.NumNodes())
	assert.Equal(t, 4, g.NumEdges())

	e := g.GetEdge(0)
	assert.Equal(t, 100.0, e.Length)
	assert.InDelta(t, 100.0/datastructure.DefaultWalkSpeed, e.TravelTime, 1e-12)

	// provider supplied length and travel time win over the geometry
	e = g.GetEdge(1)
	assert.Equal(t, 141.42, e.Length)
	assert.Equal(t, 3.0, e.TravelTime)

	idx, ok := g.GetNodeIndex(12)
	require.True(t, ok)
	n := g.GetNode(idx)
	assert.Equal(t, 100.0, n.X)
	assert.Equal(t, 100.0, n.Y)
}

func TestLoadByCoordinate(t *testing.T) {
	fc := `{
	  "type": "FeatureCollection",
	  "features": [
	    {"type": "Feature", "geometry": {"type": "LineString", "coordinates": [[0, 0], [30, 40]]}, "properties": {}},
	    {"type": "Feature", "geometry": {"type": "MultiLineString",
	      "coordinates": [[[30, 40], [30, 100]], [[30, 100], [0, 0]]]}, "properties": null},
	    {"type": "Feature", "geometry": {"type": "LineString", "coordinates": [[5, 5]]}, "properties": {}}
	  ]
	}`
	g, err := Load(strings.NewReader(fc), Options{CRS: "EPSG:3857", WalkSpeed: 50})
	require.NoError(t, err)

	assert.Equal(t, "EPSG:3857", g.CRS())
	assert.Equal(t, 3, g.NumNodes())
	assert.Equal(t, 3, g.NumEdges())

	e := g.GetEdge(0)
	assert.Equal(t, 50.0, e.Length)
	assert.Equal(t, 1.0, e.TravelTime)
	assert.Len(t, g.GetNodeEdges(0), 2)
}

func TestLoadMixedKeyedAndUnkeyed(t *testing.T) {
	fc := `{
	  "type": "FeatureCollection",
	  "features": [
	    {"type": "Feature", "geometry": {"type": "LineString", "coordinates": [[0, 0], [100, 0]]}, "properties": {}},
	    {"type": "Feature", "geometry": {"type": "LineString", "coordinates": [[500, 500], [600, 500]]},
	     "properties": {"u": 1, "v": 7}}
	  ]
	}`
	g, err := Load(strings.NewReader(fc), Options{CRS: "EPSG:3857"})
	require.NoError(t, err)

	assert.Equal(t, 4, g.NumNodes())
	assert.Equal(t, 2, g.NumEdges())

	idx, ok := g.GetNodeIndex(1)
	require.True(t, ok)
	n := g.GetNode(idx)
	assert.Equal(t, 500.0, n.X)
	assert.Equal(t, 500.0, n.Y)

	unkeyed := g.GetEdge(0)
	from, to := g.GetNode(unkeyed.From), g.GetNode(unkeyed.To)
	assert.NotEqual(t, int64(1), from.ID)
	assert.NotEqual(t, int64(7), to.ID)
	assert.Equal(t, [2]float64{0, 0}, [2]float64{from.X, from.Y})
	assert.Equal(t, [2]float64{100, 0}, [2]float64{to.X, to.Y})

	keyed := g.GetEdge(1)
	assert.Equal(t, int64(1), g.GetNode(keyed.From).ID)
	assert.Equal(t, int64(7), g.GetNode(keyed.To).ID)
	assert.Equal(t, 100.0, keyed.Length)
}

func TestLoadNodeConflict(t *testing.T) {
	twoPlaces := `{
	  "type": "FeatureCollection",
	  "features": [
	    {"type": "Feature", "geometry": {"type": "LineString", "coordinates": [[0, 0], [100, 0]]},
	     "properties": {"u": 1, "v": 2}},
	    {"type": "Feature", "geometry": {"type": "LineString", "coordinates": [[5, 5], [0, 100]]},
	     "properties": {"u": 1, "v": 3}}
	  ]
	}`
	_, err := Load(strings.NewReader(twoPlaces), Options{CRS: "EPSG:3857"})
	assert.ErrorIs(t, err, ErrNodeConflict)

	pointAndLine := `{
	  "type": "FeatureCollection",
	  "features": [
	    {"type": "Feature", "geometry": {"type": "Point", "coordinates": [0, 0]}, "properties": {"id": 3}},
	    {"type": "Feature", "geometry": {"type": "LineString", "coordinates": [[1, 1], [0, 100]]},
	     "properties": {"u": 3, "v": 4}}
	  ]
	}`
	_, err = Load(strings.NewReader(pointAndLine), Options{CRS: "EPSG:3857"})
	assert.ErrorIs(t, err, ErrNodeConflict)
}

func TestLoadMultiLineIgnoresEndpointIDs(t *testing.T) {
	fc := `{
	  "type": "FeatureCollection",
	  "features": [
	    {"type": "Feature", "geometry": {"type": "MultiLineString",
	      "coordinates": [[[0, 0], [100, 0]], [[100, 0], [100, 100]]]}, "properties": {"u": 1, "v": 2}}
	  ]
	}`
	g, err := Load(strings.NewReader(fc), Options{CRS: "EPSG:3857"})
	require.NoError(t, err)
	assert.Equal(t, 3, g.NumNodes())
	assert.Equal(t, 2, g.NumEdges())
	assert.Len(t, g.GetNodeEdges(1), 2)
}

func TestLoadErrors(t *testing.T) {
	_, err := Load(strings.NewReader(`{"type": "FeatureCollection", "features": [
	  {"type": "Feature", "geometry": {"type": "LineString", "coordinates": [[0, 0], [1, 1]]}, "properties": {}}]}`), Options{})
	assert.ErrorIs(t, err, ErrNoCRS)

	_, err = Load(strings.NewReader(`{"type": "FeatureCollection", "features": []}`), Options{CRS: "EPSG:3857"})
	assert.ErrorIs(t, err, ErrNoEdges)

	_, err = Load(strings.NewReader(`{"type": "FeatureCollection", "features": [
	  {"type": "Feature", "geometry": {"type": "LineString", "coordinates": [[0, 0], [1, 1]]},
	   "properties": {"travel_time": -1}}]}`), Options{CRS: "EPSG:3857"})
	assert.ErrorIs(t, err, datastructure.ErrInvalidWeight)

	_, err = Load(strings.NewReader(`{`), Options{CRS: "EPSG:3857"})
	assert.Error(t, err)
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "graph.geojson")
	require.NoError(t, os.WriteFile(path, []byte(squareByID), 0o644))

	g, err := LoadFile(path, Options{CRS: "EPSG:32618"})
	require.NoError(t, err)
	assert.Equal(t, 4, g.NumNodes())

	_, err = LoadFile(filepath.Join(t.TempDir(), "missing.geojson"), Options{})
	assert.Error(t, err)
}
