package isochrone

import (
	"fmt"
	"math"
)

const (
	DefaultBufferMeters              = 15.0
	DefaultHullRatio                 = 0.3
	DefaultEdgeBufferFallbackRadius  = 50.0
	DefaultConcaveHullFallbackRadius = 100.0
)

// Params strategy tuning. all distances are meters in the working crs.
type Params struct {
	// BufferMeters half width of every street ribbon. hulls of collinear nodes are buffered by it too.
	BufferMeters float64
	// HullRatio in [0,1]. 0 is the convex hull, 1 the tightest hull.
	HullRatio float64
	// FallbackRadius of the circle returned when too few nodes are reachable.
	FallbackRadius float64
	// SimplifyMeters douglas peucker tolerance applied before reprojection. 0 keeps every vertex.
	SimplifyMeters float64
}

func DefaultParams(s Strategy) Params {
	p := Params{
		BufferMeters:   DefaultBufferMeters,
		HullRatio:      DefaultHullRatio,
		FallbackRadius: DefaultEdgeBufferFallbackRadius,
	}
	if s == ConcaveHullOverNodes {
		p.FallbackRadius = DefaultConcaveHullFallbackRadius
	}
	return p
}

func (p Params) Validate() error {
	if !isFinite(p.BufferMeters) || p.BufferMeters <= 0 {
		return fmt.Errorf("%w: buffer must be > 0 meters, got %v", ErrInvalidArgument, p.BufferMeters)
	}
	if math.IsNaN(p.HullRatio) || p.HullRatio < 0 || p.HullRatio > 1 {
		return fmt.Errorf("%w: hull ratio must be in [0,1], got %v", ErrInvalidArgument, p.HullRatio)
	}
	if !isFinite(p.FallbackRadius) || p.FallbackRadius <= 0 {
		return fmt.Errorf("%w: fallback radius must be > 0 meters, got %v", ErrInvalidArgument, p.FallbackRadius)
	}
	if !isFinite(p.SimplifyMeters) || p.SimplifyMeters < 0 {
		return fmt.Errorf("%w: simplify tolerance must be >= 0 meters, got %v", ErrInvalidArgument, p.SimplifyMeters)
	}
	return nil
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
