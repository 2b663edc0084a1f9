package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"runtime/pprof"
	"strconv"
	"strings"
	"syscall"

	"github.com/lintang-b-s/isochronex/pkg/batch"
	"github.com/lintang-b-s/isochronex/pkg/config"
	"github.com/lintang-b-s/isochronex/pkg/engine/isochrone"
	"github.com/lintang-b-s/isochronex/pkg/geo"
	"github.com/lintang-b-s/isochronex/pkg/geometry"
	"github.com/lintang-b-s/isochronex/pkg/graphio"
	"github.com/lintang-b-s/isochronex/pkg/kv"
)

var (
	envFile     = flag.String("env", ".env", "env file with ISOCHRONE_* settings")
	originsFile = flag.String("origins", "origins.geojson", "GeoJSON FeatureCollection of origin points with id and name properties")
	outFile     = flag.String("o", "isochrones.geojson", "output GeoJSON FeatureCollection")
	minutesArg  = flag.String("minutes", "5,10,15", "comma separated trip times in minutes")
	strategyArg = flag.String("strategy", "edge_buffer_union", "comma separated strategies: edge_buffer_union, concave_hull")
	bufferM     = flag.Float64("buffer", isochrone.DefaultBufferMeters, "street ribbon buffer in meters")
	hullRatio   = flag.Float64("ratio", isochrone.DefaultHullRatio, "concave hull ratio, 0 convex, 1 tightest")
	simplifyM   = flag.Float64("simplify", 0, "douglas peucker tolerance in meters, 0 keeps every vertex")
	cpuprofile  = flag.String("cpuprofile", "", "write cpu profile to file")
)

func main() {
	cfg, err := config.Load(config.EnvFileArg(os.Args[1:], *envFile))
	if err != nil {
		log.Fatal(err)
	}
	cfg.RegisterFlags(flag.CommandLine)
	flag.Parse()

	if *cpuprofile != "" {
		f, err := os.Create(*cpuprofile)
		if err != nil {
			log.Fatal(err)
		}
		defer f.Close()

		pprof.StartCPUProfile(f)
		defer pprof.StopCPUProfile()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	minutes, err := parseMinutes(*minutesArg)
	if err != nil {
		log.Fatal(err)
	}
	strategies, err := parseStrategies(*strategyArg)
	if err != nil {
		log.Fatal(err)
	}

	projector := geo.NewProjProjector()
	defer projector.Close()

	log.Printf("reading street graph %s", cfg.GraphFile)
	g, err := graphio.LoadFile(cfg.GraphFile, graphio.Options{CRS: cfg.CRS, WalkSpeed: cfg.WalkSpeed, Projector: projector})
	if err != nil {
		log.Fatal(err)
	}
	origins, err := batch.LoadOriginsFile(*originsFile)
	if err != nil {
		log.Fatal(err)
	}
	log.Printf("loaded %d origins from %s", len(origins), *originsFile)

	runner := batch.NewRunner(isochrone.NewEngine(projector, geometry.NewGEOS()), isochrone.NewNetwork(g), cfg.Workers)
	for _, s := range strategies {
		params := isochrone.DefaultParams(s)
		params.BufferMeters = *bufferM
		params.HullRatio = *hullRatio
		params.SimplifyMeters = *simplifyM
		if err := params.Validate(); err != nil {
			log.Fatal(err)
		}
		runner.SetParams(s, params)
	}

	records, err := runner.Run(ctx, origins, minutes, strategies)
	if err != nil {
		log.Fatal(err)
	}

	out, err := os.Create(*outFile)
	if err != nil {
		log.Fatal(err)
	}
	if err := batch.WriteGeoJSON(out, records); err != nil {
		out.Close()
		log.Fatal(err)
	}
	out.Close()
	log.Printf("isochrones written to %s", *outFile)

	store, err := kv.Open(cfg.Store, cfg.StoreDir)
	if err != nil {
		log.Fatal(err)
	}
	if store != nil {
		defer store.Close()
		if err := batch.SaveRecords(ctx, store, records); err != nil {
			log.Fatal(err)
		}
		log.Printf("isochrones saved to %s store %s", cfg.Store, cfg.StoreDir)
	}
}

func parseMinutes(s string) ([]float64, error) {
	minutes := make([]float64, 0)
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		m, err := strconv.ParseFloat(part, 64)
		if err != nil {
			return nil, err
		}
		minutes = append(minutes, m)
	}
	return minutes, nil
}

func parseStrategies(s string) ([]isochrone.Strategy, error) {
	strategies := make([]isochrone.Strategy, 0)
	for _, part := range strings.Split(s, ",") {
		if strings.TrimSpace(part) == "" {
			continue
		}
		strategy, err := isochrone.ParseStrategy(part)
		if err != nil {
			return nil, err
		}
		strategies = append(strategies, strategy)
	}
	return strategies, nil
}
