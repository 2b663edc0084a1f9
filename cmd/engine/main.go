package main

import (
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"runtime/pprof"
	"strings"

	_ "github.com/lintang-b-s/isochronex/docs"
	"github.com/lintang-b-s/isochronex/pkg/config"
	"github.com/lintang-b-s/isochronex/pkg/engine/isochrone"
	"github.com/lintang-b-s/isochronex/pkg/geo"
	"github.com/lintang-b-s/isochronex/pkg/geometry"
	"github.com/lintang-b-s/isochronex/pkg/graphio"
	"github.com/lintang-b-s/isochronex/pkg/kv"
	"github.com/lintang-b-s/isochronex/pkg/server/rest"
	"github.com/lintang-b-s/isochronex/pkg/server/rest/service"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"

	_ "net/http/pprof"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

var (
	envFile    = flag.String("env", ".env", "env file with ISOCHRONE_* settings")
	memprofile = flag.String("memprofile", "", "write memory profile to this file")
)

//	@title			isochronex API
//	@version		1.0
//	@description	walking isochrones over a street graph. bounded dijkstra from the nearest node, then a buffered edge union or a concave hull of the reachable subgraph

//	@contact.name	lintang birda saputra

//	@license.name	GNU Affero General Public License v3.0
//	@license.url	https://www.gnu.org/licenses/gpl-3.0.en.html

// @host		localhost:5000
// @BasePath	/api
// @schemes	http
func main() {
	cfg, err := config.Load(config.EnvFileArg(os.Args[1:], *envFile))
	if err != nil {
		log.Fatal(err)
	}
	cfg.RegisterFlags(flag.CommandLine)
	flag.Parse()

	projector := geo.NewProjProjector()
	defer projector.Close()

	log.Printf("reading street graph %s", cfg.GraphFile)
	g, err := graphio.LoadFile(cfg.GraphFile, graphio.Options{CRS: cfg.CRS, WalkSpeed: cfg.WalkSpeed, Projector: projector})
	if err != nil {
		log.Fatal(err)
	}
	net := isochrone.NewNetwork(g)
	recordMemProfile(memprofile, "load_street_graph")

	store, err := kv.Open(cfg.Store, cfg.StoreDir)
	if err != nil {
		log.Fatal(err)
	}
	var resultStore service.ResultStore
	if store != nil {
		defer store.Close()
		resultStore = store
	}

	engine := isochrone.NewEngine(projector, geometry.NewGEOS())

	reg := prometheus.NewRegistry()
	m := rest.NewMetrics(reg)

	r := chi.NewRouter()

	r.Use(middleware.Logger)

	r.Use(rest.PromeHttpMiddleware(m)) // prometheus http middleware
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"https://*", "http://*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Mount("/debug", middleware.Profiler())

	r.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))

	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL(fmt.Sprintf("http://localhost%s/swagger/doc.json", cfg.ListenAddr)), //The url pointing to API definition
	))

	isochroneSvc := service.NewIsochroneService(engine, net, resultStore)
	rest.IsochroneRouter(r, isochroneSvc, m)

	fmt.Printf("\n street graph ready: %d nodes, %d edges, crs %s", g.NumNodes(), g.NumEdges(), g.CRS())
	fmt.Printf("\nserver started at %s\n", cfg.ListenAddr)

	log.Fatal(http.ListenAndServe(cfg.ListenAddr, r))
}

func recordMemProfile(memprofile *string, name string) {
	if *memprofile != "" {
		*memprofile = strings.Replace(*memprofile, ".mprof", fmt.Sprintf("%s.mprof", name), -1)
		f, err := os.Create(*memprofile)
		if err != nil {
			log.Fatal(err)
		}
		pprof.WriteHeapProfile(f)
		f.Close()
	}

}
