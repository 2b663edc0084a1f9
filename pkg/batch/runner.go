package batch

import (
	"context"
	"log"
	"sort"
	"sync/atomic"

	"github.com/lintang-b-s/isochronex/pkg/concurrent"
	"github.com/lintang-b-s/isochronex/pkg/engine/isochrone"
)

const (
	progressEvery = 100
)

// DefaultMinutes trip times computed for every origin when none are given.
var DefaultMinutes = []float64{5, 10, 15}

// Record result of one (origin, minutes, strategy) job. Err is set when the engine rejected the job.
type Record struct {
	Origin   Origin
	Minutes  float64
	Strategy isochrone.Strategy
	Result   isochrone.Result
	Err      error

	originIdx int
}

// Runner fans (origin, minutes, strategy) jobs out to a worker pool over one shared network.
type Runner struct {
	engine  *isochrone.Engine
	net     *isochrone.Network
	workers int
	params  map[isochrone.Strategy]isochrone.Params
}

func NewRunner(engine *isochrone.Engine, net *isochrone.Network, workers int) *Runner {
	return &Runner{
		engine:  engine,
		net:     net,
		workers: workers,
		params: map[isochrone.Strategy]isochrone.Params{
			isochrone.EdgeBufferUnion:      isochrone.DefaultParams(isochrone.EdgeBufferUnion),
			isochrone.ConcaveHullOverNodes: isochrone.DefaultParams(isochrone.ConcaveHullOverNodes),
		},
	}
}

// SetParams overrides the params used for every job of strategy s.
func (r *Runner) SetParams(s isochrone.Strategy, params isochrone.Params) {
	r.params[s] = params
}

/*
Run computes an isochrone for every origin x minutes x strategies combination.
records come back ordered by origin, strategy and minutes. a cancelled ctx stops the batch between jobs,
jobs already running finish, and Run returns ctx.Err().
*/
func (r *Runner) Run(ctx context.Context, origins []Origin, minutes []float64,
	strategies []isochrone.Strategy) ([]Record, error) {
	if len(minutes) == 0 {
		minutes = DefaultMinutes
	}
	if len(strategies) == 0 {
		strategies = []isochrone.Strategy{isochrone.EdgeBufferUnion}
	}

	numJobs := len(origins) * len(minutes) * len(strategies)
	log.Printf("computing %d isochrones for %d origins with %d workers...", numJobs, len(origins), r.workers)

	workers := concurrent.NewWorkerPool[concurrent.IsochroneJob, Record](r.workers, numJobs)
	for i, origin := range origins {
		for _, s := range strategies {
			for _, m := range minutes {
				workers.AddJob(concurrent.NewIsochroneJob(ctx, i, origin.ID, origin.Name, origin.Category, origin.Point, m, s, r.params[s]))
			}
		}
	}
	workers.Close()

	var done int64
	workers.Start(func(job concurrent.IsochroneJob) Record {
		rec := r.computeIsochrone(job)
		if n := atomic.AddInt64(&done, 1); n%progressEvery == 0 {
			log.Printf("computed %d/%d isochrones", n, numJobs)
		}
		return rec
	})
	workers.Wait()

	records := make([]Record, 0, numJobs)
	for rec := range workers.CollectResults() {
		records = append(records, rec)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	sort.Slice(records, func(i, j int) bool {
		if records[i].originIdx != records[j].originIdx {
			return records[i].originIdx < records[j].originIdx
		}
		if records[i].Strategy != records[j].Strategy {
			return records[i].Strategy < records[j].Strategy
		}
		return records[i].Minutes < records[j].Minutes
	})

	log.Printf("computing %d isochrones done", numJobs)
	return records, nil
}

func (r *Runner) computeIsochrone(job concurrent.IsochroneJob) Record {
	rec := Record{
		Origin:    Origin{ID: job.OriginID, Name: job.OriginName, Category: job.OriginCategory, Point: job.Origin},
		Minutes:   job.Minutes,
		Strategy:  job.Strategy,
		originIdx: job.OriginIdx,
	}
	if err := job.Ctx.Err(); err != nil {
		rec.Err = err
		return rec
	}

	res, err := r.engine.Generate(r.net, job.Origin, job.Minutes, job.Strategy, job.Params)
	if err != nil {
		log.Printf("isochrone %s %v min %v: %v", job.OriginID, job.Minutes, job.Strategy, err)
		rec.Err = err
		return rec
	}
	rec.Result = res
	return rec
}
