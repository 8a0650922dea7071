package main

import (
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"
	"github.com/lintang-b-s/roadgenx/pkg/server/rest"
	"github.com/lintang-b-s/roadgenx/pkg/server/rest/service"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// flag defaults can be overridden from the environment or a .env file.
func envOr(key, def string) string {
	if v, ok := os.LookupEnv(key); ok {
		return v
	}
	return def
}

func envIntOr(key string, def int) int {
	if v, ok := os.LookupEnv(key); ok {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
		log.Printf("ignoring %s=%q, not an integer", key, v)
	}
	return def
}

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("no .env file loaded: %v", err)
	}

	var (
		listenAddr      = flag.String("listenaddr", envOr("ROADGEN_LISTEN_ADDR", ":5000"), "server listen address")
		timeout         = flag.Duration("timeout", 30*time.Second, "deadline of one road network generation")
		numWorkers      = flag.Int("workers", envIntOr("ROADGEN_WORKERS", 4), "number of workers for batch generation & distance matrices")
		maxVisitedNodes = flag.Int("maxvisited", envIntOr("ROADGEN_MAX_VISITED", 0), "shortest path search budget, 0 = unbounded")
	)
	flag.Parse()

	if v, ok := os.LookupEnv("ROADGEN_TIMEOUT"); ok && !isFlagSet("timeout") {
		d, err := time.ParseDuration(v)
		if err != nil {
			log.Fatalf("invalid ROADGEN_TIMEOUT %q: %v", v, err)
		}
		*timeout = d
	}

	reg := prometheus.NewRegistry()
	m := rest.NewMetrics(reg)

	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

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

	roadGenSvc := service.NewGenerationService(*timeout, *numWorkers, *maxVisitedNodes)
	rest.RoadGenRouter(r, roadGenSvc, m)

	fmt.Printf("\nserver started at %s\n", *listenAddr)

	log.Fatal(http.ListenAndServe(*listenAddr, r))
}

func isFlagSet(name string) bool {
	set := false
	flag.Visit(func(f *flag.Flag) {
		if f.Name == name {
			set = true
		}
	})
	return set
}
