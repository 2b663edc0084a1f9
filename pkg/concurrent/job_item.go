package concurrent

import (
	"context"

	"github.com/lintang-b-s/isochronex/pkg/engine/isochrone"
	"github.com/paulmach/orb"
)

// IsochroneJob one (origin, budget, strategy) query of a batch.
type IsochroneJob struct {
	Ctx            context.Context
	OriginIdx      int
	OriginID       string
	OriginName     string
	OriginCategory string
	Origin         orb.Point
	Minutes        float64
	Strategy       isochrone.Strategy
	Params         isochrone.Params
}

func NewIsochroneJob(ctx context.Context, originIdx int, originID, originName, originCategory string, origin orb.Point,
	minutes float64, strategy isochrone.Strategy, params isochrone.Params) IsochroneJob {
	return IsochroneJob{
		Ctx:            ctx,
		OriginIdx:      originIdx,
		OriginID:       originID,
		OriginName:     originName,
		OriginCategory: originCategory,
		Origin:         origin,
		Minutes:        minutes,
		Strategy:       strategy,
		Params:         params,
	}
}

type JobI interface {
	IsochroneJob
}

type JobFunc[T JobI, G any] func(job T) G
