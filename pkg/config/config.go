package config

import (
	"flag"
	"fmt"
	"os"
	"runtime"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/lintang-b-s/isochronex/pkg/datastructure"
	"github.com/lintang-b-s/isochronex/pkg/kv"
)

const (
	EnvGraphFile  = "ISOCHRONE_GRAPH_FILE"
	EnvCRS        = "ISOCHRONE_CRS"
	EnvWalkSpeed  = "ISOCHRONE_WALK_SPEED"
	EnvListenAddr = "ISOCHRONE_LISTEN_ADDR"
	EnvStore      = "ISOCHRONE_STORE"
	EnvStoreDir   = "ISOCHRONE_STORE_DIR"
	EnvWorkers    = "ISOCHRONE_WORKERS"
)

type Config struct {
	// GraphFile GeoJSON street graph in a projected crs.
	GraphFile string
	// CRS working crs of GraphFile, empty to read it from the file.
	CRS string
	// WalkSpeed meters per minute for edges without travel time.
	WalkSpeed  float64
	ListenAddr string
	// Store result store backend: none, badger or pebble.
	Store    string
	StoreDir string
	Workers  int
}

func Default() Config {
	return Config{
		GraphFile:  "street_graph.geojson",
		WalkSpeed:  datastructure.DefaultWalkSpeed,
		ListenAddr: ":5000",
		Store:      kv.StoreNone,
		StoreDir:   "./isochronex.db",
		Workers:    runtime.NumCPU(),
	}
}

// Load defaults overridden by envFile (a missing file is fine) and then by the process environment.
func Load(envFile string) (Config, error) {
	cfg := Default()
	fileEnv, _ := godotenv.Read(envFile)

	lookup := func(key string) (string, bool) {
		if v := os.Getenv(key); v != "" {
			return v, true
		}
		v, ok := fileEnv[key]
		return v, ok && v != ""
	}

	if v, ok := lookup(EnvGraphFile); ok {
		cfg.GraphFile = v
	}
	if v, ok := lookup(EnvCRS); ok {
		cfg.CRS = v
	}
	if v, ok := lookup(EnvListenAddr); ok {
		cfg.ListenAddr = v
	}
	if v, ok := lookup(EnvStore); ok {
		cfg.Store = v
	}
	if v, ok := lookup(EnvStoreDir); ok {
		cfg.StoreDir = v
	}
	if v, ok := lookup(EnvWalkSpeed); ok {
		speed, err := strconv.ParseFloat(v, 64)
		if err != nil || speed <= 0 {
			return Config{}, fmt.Errorf("%s=%q: walk speed must be a positive number", EnvWalkSpeed, v)
		}
		cfg.WalkSpeed = speed
	}
	if v, ok := lookup(EnvWorkers); ok {
		workers, err := strconv.Atoi(v)
		if err != nil || workers < 1 {
			return Config{}, fmt.Errorf("%s=%q: workers must be a positive integer", EnvWorkers, v)
		}
		cfg.Workers = workers
	}
	return cfg, nil
}

// RegisterFlags binds cfg to command line flags, the current values become the flag defaults so flags win.
func (cfg *Config) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&cfg.GraphFile, "f", cfg.GraphFile, "GeoJSON street graph (LineString edges in a projected crs)")
	fs.StringVar(&cfg.CRS, "crs", cfg.CRS, "working crs of the graph file, e.g. EPSG:32749. empty reads the file crs member")
	fs.Float64Var(&cfg.WalkSpeed, "speed", cfg.WalkSpeed, "walking speed in meters per minute")
	fs.StringVar(&cfg.ListenAddr, "listenaddr", cfg.ListenAddr, "server listen address")
	fs.StringVar(&cfg.Store, "store", cfg.Store, "result store: none, badger or pebble")
	fs.StringVar(&cfg.StoreDir, "storedir", cfg.StoreDir, "result store directory")
	fs.IntVar(&cfg.Workers, "workers", cfg.Workers, "number of batch workers")
}

// EnvFileArg value of the -env flag in args, or def. the env file has to be known before flag.Parse
// because its values become the defaults of the other flags.
func EnvFileArg(args []string, def string) string {
	for i, arg := range args {
		switch {
		case strings.HasPrefix(arg, "-env="), strings.HasPrefix(arg, "--env="):
			return arg[strings.Index(arg, "=")+1:]
		case (arg == "-env" || arg == "--env") && i+1 < len(args):
			return args[i+1]
		}
	}
	return def
}
