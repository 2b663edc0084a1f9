package service

import (
	"context"
	"errors"

	"github.com/lintang-b-s/isochronex/pkg/engine/isochrone"
	"github.com/lintang-b-s/isochronex/pkg/kv"
	"github.com/lintang-b-s/isochronex/pkg/server"
	"github.com/paulmach/orb"
)

type IsochroneService struct {
	engine IsochroneEngine
	net    *isochrone.Network
	store  ResultStore
}

// NewIsochroneService store may be nil, stored isochrone queries then fail with ErrNotFound.
func NewIsochroneService(engine IsochroneEngine, net *isochrone.Network, store ResultStore) *IsochroneService {
	return &IsochroneService{engine: engine, net: net, store: store}
}

type IsochroneQuery struct {
	OriginID       string
	OriginName     string
	OriginCategory string
	Origin         orb.Point
	Minutes        []float64
	Strategy       isochrone.Strategy
	Params         isochrone.Params
	// Save stores every result under OriginID.
	Save bool
}

// Isochrones one result per trip time of q, in the order of q.Minutes.
func (uc *IsochroneService) Isochrones(ctx context.Context, q IsochroneQuery) ([]isochrone.Result, error) {
	if len(q.Minutes) == 0 {
		return nil, server.NewErrorf(server.ErrBadParamInput, "at least one trip time is required")
	}
	if q.Save && q.OriginID == "" {
		return nil, server.NewErrorf(server.ErrBadParamInput, "origin_id is required to save isochrones")
	}

	results := make([]isochrone.Result, 0, len(q.Minutes))
	for _, minutes := range q.Minutes {
		if err := ctx.Err(); err != nil {
			return nil, server.WrapErrorf(err, server.ErrInternalServerError, "request cancelled")
		}
		res, err := uc.engine.Generate(uc.net, q.Origin, minutes, q.Strategy, q.Params)
		if err != nil {
			return nil, wrapEngineError(err)
		}
		results = append(results, res)
	}

	if q.Save {
		if err := uc.save(ctx, q, results); err != nil {
			return nil, err
		}
	}
	return results, nil
}

func (uc *IsochroneService) save(ctx context.Context, q IsochroneQuery, results []isochrone.Result) error {
	if uc.store == nil {
		return server.NewErrorf(server.ErrBadParamInput, "result store is disabled")
	}
	recs := make([]kv.Record, 0, len(results))
	for _, res := range results {
		rec, err := kv.NewRecord(q.OriginID, q.OriginName, q.OriginCategory, q.Origin, res)
		if err != nil {
			return wrapStoreError(err)
		}
		recs = append(recs, rec)
	}
	if err := uc.store.PutBatch(ctx, recs); err != nil {
		return wrapStoreError(err)
	}
	return nil
}

// StoredIsochrones every stored isochrone of one origin.
func (uc *IsochroneService) StoredIsochrones(ctx context.Context, originID string) ([]kv.Record, error) {
	if uc.store == nil {
		return nil, server.NewErrorf(server.ErrNotFound, "result store is disabled")
	}
	recs, err := uc.store.ListByOrigin(originID)
	if err != nil {
		return nil, wrapStoreError(err)
	}
	if len(recs) == 0 {
		return nil, server.NewErrorf(server.ErrNotFound, "no stored isochrones for origin %s", originID)
	}
	return recs, nil
}

// StoredIsochronesNear stored isochrones whose origin is within about radiusKm of (lat, lon).
func (uc *IsochroneService) StoredIsochronesNear(ctx context.Context, lat, lon, radiusKm float64) ([]kv.Record, error) {
	if uc.store == nil {
		return nil, server.NewErrorf(server.ErrNotFound, "result store is disabled")
	}
	recs, err := uc.store.ListNear(lat, lon, radiusKm)
	if err != nil {
		return nil, wrapStoreError(err)
	}
	return recs, nil
}

func wrapEngineError(err error) error {
	switch {
	case errors.Is(err, isochrone.ErrInvalidArgument):
		return server.WrapErrorf(err, server.ErrBadParamInput, "invalid isochrone query")
	case errors.Is(err, isochrone.ErrGeometryFailed):
		return server.WrapErrorf(err, server.ErrInternalServerError, "failed to build the isochrone polygon")
	case errors.Is(err, isochrone.ErrPreconditionFailed):
		return server.WrapErrorf(err, server.ErrNotFound, "the origin is not covered by the street graph")
	default:
		return server.WrapErrorf(err, server.ErrInternalServerError, "internal server error")
	}
}

func wrapStoreError(err error) error {
	switch {
	case errors.Is(err, kv.ErrInvalidKey):
		return server.WrapErrorf(err, server.ErrBadParamInput, "invalid origin id")
	case errors.Is(err, kv.ErrRecordNotFound):
		return server.WrapErrorf(err, server.ErrNotFound, "isochrone not found")
	default:
		return server.WrapErrorf(err, server.ErrInternalServerError, "internal server error")
	}
}
