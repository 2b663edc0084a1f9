package service

import (
	"context"

	"github.com/lintang-b-s/isochronex/pkg/engine/isochrone"
	"github.com/lintang-b-s/isochronex/pkg/kv"
	"github.com/paulmach/orb"
)

type IsochroneEngine interface {
	Generate(net *isochrone.Network, origin orb.Point, budgetMinutes float64, strategy isochrone.Strategy,
		params isochrone.Params) (isochrone.Result, error)
}

type ResultStore interface {
	PutBatch(ctx context.Context, recs []kv.Record) error
	ListByOrigin(originID string) ([]kv.Record, error)
	ListNear(lat, lon, radiusKm float64) ([]kv.Record, error)
}
