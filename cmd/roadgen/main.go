package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"runtime/pprof"
	"strconv"
	"time"

	"github.com/golang/geo/r2"
	"github.com/joho/godotenv"
	"github.com/lintang-b-s/roadgenx/pkg/engine/field"
	"github.com/lintang-b-s/roadgenx/pkg/engine/roadgen"
	"golang.org/x/exp/rand"
)

var (
	seedX      = flag.Float64("x", 0, "seed x")
	seedY      = flag.Float64("y", 0, "seed y")
	jitter     = flag.Float64("jitter", 0, "move the seed by a random offset in [-jitter, jitter] on both axes")
	randSeed   = flag.Uint64("randseed", 0, "random source seed for -jitter, 0 = time based")
	halfSize   = flag.Float64("size", 50, "half size of the square bounds around the origin")
	fieldKind  = flag.String("field", "grid", "ortho basis field: grid, radial or mixed")
	rotation   = flag.Float64("rotation", 0, "grid rotation in radians")
	step       = flag.Float64("step", 1, "road step interval")
	mergeR     = flag.Float64("merge", 0.5, "merge radius")
	minLen     = flag.Float64("minlen", 0.001, "segment min length")
	maxIter    = flag.Int("maxiter", 0, "max traces, 0 = unbounded")
	logEvery   = flag.Int("logevery", 1000, "log progress every n roads, 0 = silent. env ROADGEN_LOG_EVERY")
	timeout    = flag.Duration("timeout", 0, "stop generating after this long, 0 = no deadline")
	check      = flag.Bool("check", false, "verify network consistency after generation")
	cpuprofile = flag.String("cpuprofile", "", "write cpu profile to file")
)

func envIntOr(key string, def int) int {
	if v, ok := os.LookupEnv(key); ok {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
		log.Printf("ignoring %s=%q, not an integer", key, v)
	}
	return def
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

func newField(kind string) (*field.Field, error) {
	switch kind {
	case "grid":
		return field.NewField(field.NewGridOrthoBasis(r2.Point{}, 1, *rotation)), nil
	case "radial":
		return field.NewField(field.NewRadialOrthoBasis(r2.Point{}, 1)), nil
	case "mixed":
		return field.NewField(
			field.NewGridOrthoBasis(r2.Point{X: -*halfSize / 2, Y: 0}, 1, *rotation),
			field.NewRadialOrthoBasis(r2.Point{X: *halfSize / 2, Y: 0}, 1),
		), nil
	}
	return nil, fmt.Errorf("unknown field %q", kind)
}

func main() {
	_ = godotenv.Load()
	flag.Parse()
	if !isFlagSet("logevery") {
		*logEvery = envIntOr("ROADGEN_LOG_EVERY", *logEvery)
	}

	if *cpuprofile != "" {
		f, err := os.Create(*cpuprofile)
		if err != nil {
			log.Fatal(err)
		}
		pprof.StartCPUProfile(f)
		defer pprof.StopCPUProfile()
	}

	f, err := newField(*fieldKind)
	if err != nil {
		log.Fatal(err)
	}

	cfg := roadgen.DefaultConfig()
	cfg.RoadStepInterval = *step
	cfg.MergeRadius = *mergeR
	cfg.SegmentMinLength = *minLen
	cfg.MaxIterations = *maxIter
	cfg.LogEvery = *logEvery

	bounds := r2.RectFromPoints(r2.Point{X: -*halfSize, Y: -*halfSize}, r2.Point{X: *halfSize, Y: *halfSize})
	g, err := roadgen.NewRoadGenerator(cfg, f, roadgen.Hooks{InBounds: roadgen.BoxBounds(bounds)})
	if err != nil {
		log.Fatal(err)
	}

	seed := r2.Point{X: *seedX, Y: *seedY}
	if *jitter > 0 {
		src := *randSeed
		if src == 0 {
			src = uint64(time.Now().UnixNano())
		}
		rd := rand.New(rand.NewSource(src))
		seed = seed.Add(r2.Point{X: (rd.Float64()*2 - 1) * *jitter, Y: (rd.Float64()*2 - 1) * *jitter})
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if *timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, *timeout)
		defer cancel()
	}

	log.Printf("generating road network from seed %v inside %v...", seed, bounds)
	stats, err := g.Run(ctx, seed)
	switch {
	case errors.Is(err, roadgen.ErrIterationBudget), errors.Is(err, context.DeadlineExceeded),
		errors.Is(err, context.Canceled):
		log.Printf("generation stopped early: %v", err)
	case err != nil:
		log.Fatal(err)
	}
	log.Printf("done: %v", stats)

	if *check {
		if err := g.CheckConsistency(); err != nil {
			log.Fatalf("consistency check failed: %v", err)
		}
		log.Printf("network is consistent")
	}
}
