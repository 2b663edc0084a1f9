package geo

import (
	"math"
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProjProjectorRoundTrip(t *testing.T) {
	p := NewProjProjector()
	defer p.Close()

	working, err := p.ToWorking("EPSG:3857", orb.Point{10, 0})
	require.NoError(t, err)
	assert.InDelta(t, 1113194.9079, working.X(), 1e-3)
	assert.InDelta(t, 0, working.Y(), 1e-6)

	// burlington, vt in utm zone 18n
	origin := orb.Point{-73.2121, 44.4759}
	utm, err := p.ToWorking("EPSG:32618", origin)
	require.NoError(t, err)
	assert.InDelta(t, 642000, utm.X(), 2000)
	assert.InDelta(t, 4926000, utm.Y(), 2000)

	ring := orb.Ring{utm, {utm.X() + 100, utm.Y()}, {utm.X() + 100, utm.Y() + 100}, utm}
	back, err := p.ToGeographic("EPSG:32618", orb.Polygon{ring})
	require.NoError(t, err)

	poly, ok := back.(orb.Polygon)
	require.True(t, ok)
	assert.InDelta(t, origin.Lon(), poly[0][0].Lon(), 1e-7)
	assert.InDelta(t, origin.Lat(), poly[0][0].Lat(), 1e-7)

	// the input geometry is left untouched
	assert.Equal(t, utm, ring[0])
}

func TestProjProjectorNorthingFirstCRS(t *testing.T) {
	p := NewProjProjector()
	defer p.Close()

	// EPSG:3035 declares (northing, easting), the projector still answers (easting, northing)
	center, err := p.ToWorking("EPSG:3035", orb.Point{10, 52})
	require.NoError(t, err)
	assert.InDelta(t, 4321000, center.X(), 1)
	assert.InDelta(t, 3210000, center.Y(), 1)

	berlin := orb.Point{13.405, 52.52}
	working, err := p.ToWorking("EPSG:3035", berlin)
	require.NoError(t, err)
	assert.Greater(t, working.X(), center.X())
	assert.Greater(t, working.Y(), center.Y())

	back, err := p.ToGeographic("EPSG:3035", orb.LineString{working, {working.X() + 1000, working.Y()}})
	require.NoError(t, err)
	ls, ok := back.(orb.LineString)
	require.True(t, ok)
	assert.InDelta(t, berlin.Lon(), ls[0].Lon(), 1e-7)
	assert.InDelta(t, berlin.Lat(), ls[0].Lat(), 1e-7)
	// 1km east keeps the latitude and moves the longitude east
	assert.Greater(t, ls[1].Lon(), ls[0].Lon())
	assert.InDelta(t, ls[0].Lat(), ls[1].Lat(), 0.01)
}

func TestProjProjectorErrors(t *testing.T) {
	p := NewProjProjector()
	defer p.Close()

	_, err := p.ToWorking("EPSG:3857", orb.Point{200, 0})
	assert.ErrorIs(t, err, ErrNotReprojectable)

	_, err = p.ToWorking("EPSG:3857", orb.Point{math.NaN(), 0})
	assert.ErrorIs(t, err, ErrNotReprojectable)

	_, err = p.ToWorking("not a crs", orb.Point{0, 0})
	assert.ErrorIs(t, err, ErrUnknownCRS)
}
