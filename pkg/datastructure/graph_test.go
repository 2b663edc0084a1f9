package datastructure

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGraphBuilderSquare(t *testing.T) {
	b, err := NewGraphBuilder("EPSG:32618", DefaultWalkSpeed)
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

	assert.Equal(t, "EPSG:32618", g.CRS())
	assert.Equal(t, 4, g.NumNodes())
	assert.Equal(t, 4, g.NumEdges())

	idx, ok := g.GetNodeIndex(12)
	assert.True(t, ok)
	assert.Equal(t, int32(2), idx)
	assert.Len(t, g.GetNodeEdges(idx), 2)

	e := g.GetEdge(0)
	assert.Equal(t, 100.0, e.Length)
	assert.InDelta(t, 100.0/75.0, e.TravelTime, 1e-12)
	assert.Equal(t, int32(1), e.Other(0))
	assert.Equal(t, int32(0), e.Other(1))
}

func TestGraphBuilderErrors(t *testing.T) {
	_, err := NewGraphBuilder("EPSG:3857", 0)
	assert.ErrorIs(t, err, ErrInvalidSpeed)

	b, err := NewGraphBuilder("EPSG:3857", DefaultWalkSpeed)
	require.NoError(t, err)
	require.NoError(t, b.AddNode(1, 0, 0))

	assert.ErrorIs(t, b.AddNode(1, 5, 5), ErrDuplicateNode)
	assert.ErrorIs(t, b.AddEdge(1, 2, 10), ErrUnknownNode)

	require.NoError(t, b.AddNode(2, 10, 0))
	assert.ErrorIs(t, b.AddEdge(1, 2, -1), ErrInvalidWeight)
	assert.ErrorIs(t, b.AddEdge(1, 2, math.Inf(1)), ErrInvalidWeight)
	assert.ErrorIs(t, b.AddEdgeWithTravelTime(1, 2, 10, math.NaN()), ErrInvalidWeight)

	g, err := b.Build()
	require.NoError(t, err)
	assert.Equal(t, 0, g.NumEdges())
}

func TestNewGraphValidation(t *testing.T) {
	nodes := []Node{NewNode(1, 0, 0), NewNode(2, 1, 1)}

	_, err := NewGraph("EPSG:3857", nodes, []Edge{{From: 0, To: 5, TravelTime: 1}})
	assert.ErrorIs(t, err, ErrUnknownNode)

	_, err = NewGraph("EPSG:3857", nodes, []Edge{{From: 0, To: 1, TravelTime: -2}})
	assert.ErrorIs(t, err, ErrInvalidWeight)

	_, err = NewGraph("EPSG:3857", []Node{NewNode(1, 0, 0), NewNode(1, 2, 2)}, nil)
	assert.ErrorIs(t, err, ErrDuplicateNode)

	_, err = NewGraph("EPSG:3857", []Node{NewNode(1, math.NaN(), 0)}, nil)
	assert.ErrorIs(t, err, ErrInvalidCoord)

	// self loops are kept once in the adjacency list
	g, err := NewGraph("EPSG:3857", nodes, []Edge{{From: 0, To: 0, TravelTime: 0}, {From: 0, To: 1, TravelTime: 1}})
	require.NoError(t, err)
	assert.Len(t, g.GetNodeEdges(0), 2)
	assert.Len(t, g.GetNodeEdges(1), 1)

	empty, err := NewGraph("EPSG:3857", nil, nil)
	require.NoError(t, err)
	assert.Equal(t, 0, empty.NumNodes())
}
