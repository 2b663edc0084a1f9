package geo

import (
	"errors"
	"fmt"
	"math"
	"sync"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/project"
	"github.com/twpayne/go-proj/v10"
)

const (
	// GeographicCRS is the crs of origins and of every isochrone handed back to callers.
	GeographicCRS = "EPSG:4326"
)

var (
	ErrUnknownCRS       = errors.New("unknown coordinate reference system")
	ErrNotReprojectable = errors.New("coordinate can not be reprojected")
)

// ProjProjector transforms between EPSG:4326 and projected working crs using PROJ.
// one transformer is created per working crs and reused.
//
// transformers are normalized for visualization: (lon, lat) in and (easting, northing) out whatever the
// authority axis order of either crs is, matching the x, y of orb points and GeoJSON graphs.
type ProjProjector struct {
	mu           sync.Mutex
	transformers map[string]*proj.PJ
}

func NewProjProjector() *ProjProjector {
	return &ProjProjector{
		transformers: make(map[string]*proj.PJ),
	}
}

func (p *ProjProjector) transformer(crs string) (*proj.PJ, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if pj, ok := p.transformers[crs]; ok {
		return pj, nil
	}
	authority, err := proj.NewCRSToCRS(GeographicCRS, crs, nil)
	if err != nil {
		return nil, fmt.Errorf("%w %q: %v", ErrUnknownCRS, crs, err)
	}
	defer authority.Destroy()
	pj, err := authority.NormalizeForVisualization()
	if err != nil {
		return nil, fmt.Errorf("%w %q: %v", ErrUnknownCRS, crs, err)
	}
	p.transformers[crs] = pj
	return pj, nil
}

// ToWorking projects a (lon, lat) point into crs.
func (p *ProjProjector) ToWorking(crs string, pt orb.Point) (orb.Point, error) {
	if !validLonLat(pt) {
		return orb.Point{}, fmt.Errorf("%w: %v", ErrNotReprojectable, pt)
	}
	pj, err := p.transformer(crs)
	if err != nil {
		return orb.Point{}, err
	}
	c, err := pj.Forward(proj.NewCoord(pt.Lon(), pt.Lat(), 0, 0))
	if err != nil {
		return orb.Point{}, fmt.Errorf("%w: %v", ErrNotReprojectable, err)
	}
	out := orb.Point{c.X(), c.Y()}
	if !finitePoint(out) {
		return orb.Point{}, fmt.Errorf("%w: %v", ErrNotReprojectable, pt)
	}
	return out, nil
}

// ToGeographic reprojects every vertex of g from crs back to (lon, lat). g is not modified.
func (p *ProjProjector) ToGeographic(crs string, g orb.Geometry) (orb.Geometry, error) {
	pj, err := p.transformer(crs)
	if err != nil {
		return nil, err
	}

	var transformErr error
	out := project.Geometry(orb.Clone(g), func(pt orb.Point) orb.Point {
		if transformErr != nil {
			return pt
		}
		c, err := pj.Inverse(proj.NewCoord(pt.X(), pt.Y(), 0, 0))
		if err != nil {
			transformErr = err
			return pt
		}
		return orb.Point{c.X(), c.Y()}
	})
	if transformErr != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotReprojectable, transformErr)
	}
	return out, nil
}

// Close releases every cached PROJ transformer.
func (p *ProjProjector) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	for crs, pj := range p.transformers {
		pj.Destroy()
		delete(p.transformers, crs)
	}
}

func validLonLat(pt orb.Point) bool {
	return finitePoint(pt) && pt.Lon() >= -180 && pt.Lon() <= 180 && pt.Lat() >= -90 && pt.Lat() <= 90
}

func finitePoint(pt orb.Point) bool {
	return !math.IsNaN(pt[0]) && !math.IsNaN(pt[1]) && !math.IsInf(pt[0], 0) && !math.IsInf(pt[1], 0)
}
