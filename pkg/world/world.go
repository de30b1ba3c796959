// Package world runs the full surface pipeline: seeds, diagram, clipping,
// site graph and biomes.
package world

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/tomster12/growth-sub000/pkg/biome"
	"github.com/tomster12/growth-sub000/pkg/config"
	"github.com/tomster12/growth-sub000/pkg/geo"
	"github.com/tomster12/growth-sub000/pkg/mesh"
)

// ErrAttemptsExhausted reports that every generation attempt failed.
var ErrAttemptsExhausted = errors.New("world generation failed on every attempt")

// seedRadiusFraction keeps seeds clear of the noisy boundary.
const seedRadiusFraction = 0.9

// Pipeline stages, as reported in Attempt.Stage.
const (
	StageSeeds   = "seeds"
	StageDiagram = "diagram"
	StageClip    = "clip"
	StageGraph   = "graph"
	StageBiomes  = "biomes"
	StageDone    = "done"
)

// World is one generated surface skeleton.
type World struct {
	ID          string         `json:"id"`
	Seed        int64          `json:"seed"`
	Attempt     int            `json:"attempt"`
	GeneratedAt time.Time      `json:"generated_at"`
	Config      *config.Config `json:"config"`
	Seeds       []geo.Point2D  `json:"seeds"`
	Bounds      geo.Polygon    `json:"bounds"`
	Triangles   [][3]int       `json:"triangles"`
	Graph       *mesh.Graph    `json:"graph"`
	Biomes      *biome.Result  `json:"biomes"`
	Runs        []biome.Run    `json:"runs"`
}

// Attempt describes one pass through the pipeline.
type Attempt struct {
	RunID    string
	Seed     int64
	Attempt  int
	Stage    string
	Err      error
	Elapsed  time.Duration
	World    *World
	Finished time.Time
}

type options struct {
	logger   *zap.Logger
	observer func(Attempt)
}

// Option configures Generate.
type Option func(*options)

// WithLogger sets the logger attempts are reported to.
func WithLogger(l *zap.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithObserver registers a callback run after every attempt, successful or
// not.
func WithObserver(fn func(Attempt)) Option {
	return func(o *options) { o.observer = fn }
}

// Generate builds a world from cfg. A failed attempt is retried with the
// next seed, up to cfg.MaxAttempts attempts.
func Generate(ctx context.Context, cfg *config.Config, opts ...Option) (*World, error) {
	o := options{logger: zap.NewNop()}
	for _, opt := range opts {
		opt(&o)
	}

	attempts := cfg.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}

	var lastErr error
	for attempt := 0; attempt < attempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		seed := cfg.Seed + int64(attempt)
		start := time.Now()
		w, stage, err := build(cfg, seed)

		a := Attempt{
			RunID:    uuid.NewString(),
			Seed:     seed,
			Attempt:  attempt,
			Stage:    stage,
			Err:      err,
			Elapsed:  time.Since(start),
			World:    w,
			Finished: time.Now(),
		}
		if w != nil {
			w.ID = a.RunID
			w.Attempt = attempt
			w.GeneratedAt = a.Finished
		}
		if o.observer != nil {
			o.observer(a)
		}

		if err != nil {
			o.logger.Warn("generation attempt failed",
				zap.String("run_id", a.RunID),
				zap.Int64("seed", seed),
				zap.Int("attempt", attempt),
				zap.String("stage", stage),
				zap.Duration("elapsed", a.Elapsed),
				zap.Error(err),
			)
			lastErr = err
			continue
		}

		o.logger.Info("world generated",
			zap.String("run_id", a.RunID),
			zap.Int64("seed", seed),
			zap.Int("attempt", attempt),
			zap.Int("sites", len(w.Graph.Sites)),
			zap.Int("boundary_edges", len(w.Graph.Boundary)),
			zap.Float64("boundary_length", w.Graph.BoundaryLength()),
			zap.Int("runs", len(w.Runs)),
			zap.Duration("elapsed", a.Elapsed),
		)
		return w, nil
	}
	return nil, fmt.Errorf("%w (%d attempts from seed %d): %w", ErrAttemptsExhausted, attempts, cfg.Seed, lastErr)
}

// build runs the pipeline once, returning the stage that failed.
func build(cfg *config.Config, seed int64) (*World, string, error) {
	rng := rand.New(rand.NewSource(seed))

	seedRadius := cfg.Radius * (1 - cfg.SurfaceNoise) * seedRadiusFraction
	seeds, err := ScatterSeeds(rng, seedRadius, cfg.SiteCount, cfg.MinSiteSpacing)
	if err != nil {
		return nil, StageSeeds, err
	}

	d, err := geo.BuildDiagram(seeds)
	if err != nil {
		return nil, StageDiagram, err
	}

	bounds := geo.NoisyCircle(geo.Origin, cfg.Radius, cfg.BoundarySegments, cfg.SurfaceNoise, seed)
	cells, err := geo.ClipCells(d, bounds, cfg.ClipWorkers)
	if err != nil {
		return nil, StageClip, err
	}

	g, err := mesh.Build(cells, d.Triangles, bounds.Len())
	if err != nil {
		return nil, StageGraph, err
	}

	res, err := biome.Generate(g.BoundaryLengths(), g.BoundaryOwners(), g.NeighbourLists(), g.Distance, cfg.Biomes.Params(), rng)
	if err != nil {
		return nil, StageBiomes, err
	}

	return &World{
		Seed:      seed,
		Config:    cfg,
		Seeds:     seeds,
		Bounds:    bounds,
		Triangles: d.Triangles,
		Graph:     g,
		Biomes:    res,
		Runs:      res.Allocation.Runs(),
	}, StageDone, nil
}
