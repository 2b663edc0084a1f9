package concurrent

import (
	"context"
	"sort"
	"sync/atomic"
	"testing"

	"github.com/lintang-b-s/isochronex/pkg/engine/isochrone"
	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
)

func TestWorkerPool(t *testing.T) {
	ctx := context.Background()
	minutes := []float64{5, 10, 15, 20, 25, 30, 35}

	var calls int32
	workers := NewWorkerPool[IsochroneJob, float64](3, len(minutes))
	for i, m := range minutes {
		workers.AddJob(NewIsochroneJob(ctx, i, "origin", "", "", orb.Point{0, 0}, m,
			isochrone.EdgeBufferUnion, isochrone.DefaultParams(isochrone.EdgeBufferUnion)))
	}
	workers.Close()
	workers.Start(func(job IsochroneJob) float64 {
		atomic.AddInt32(&calls, 1)
		return job.Minutes * 75
	})
	workers.Wait()

	reach := make([]float64, 0)
	for r := range workers.CollectResults() {
		reach = append(reach, r)
	}
	sort.Float64s(reach)

	assert.Equal(t, []float64{375, 750, 1125, 1500, 1875, 2250, 2625}, reach)
	assert.Equal(t, int32(len(minutes)), atomic.LoadInt32(&calls))
}

func TestWorkerPoolNoJobs(t *testing.T) {
	workers := NewWorkerPool[IsochroneJob, int](0, 0)
	workers.Close()
	workers.Start(func(job IsochroneJob) int { return 1 })
	workers.Wait()

	count := 0
	for range workers.CollectResults() {
		count++
	}
	assert.Equal(t, 0, count)
}
