package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/tomster12/growth-sub000/internal/index"
	"github.com/tomster12/growth-sub000/internal/server"
	"github.com/tomster12/growth-sub000/pkg/config"
	"github.com/tomster12/growth-sub000/pkg/export"
	"github.com/tomster12/growth-sub000/pkg/snapshot"
	"github.com/tomster12/growth-sub000/pkg/validation"
	"github.com/tomster12/growth-sub000/pkg/world"
)

type generateOptions struct {
	seed    int64
	seedSet bool
	out     string
	geojson string
	index   string
	verbose bool
}

func newLogger(verbose bool) (*zap.Logger, error) {
	if verbose {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

// loadAndValidate loads the config and runs schema and analytical validation.
func loadAndValidate(projectPath string) (*config.Config, *validation.Report, error) {
	cfg, err := config.LoadProject(projectPath)
	if err != nil {
		return nil, nil, fmt.Errorf("loading config: %w", err)
	}
	report := validation.ValidateSchema(cfg)
	report.Merge(validation.ValidateAnalytic(cfg))
	return cfg, report, nil
}

func runValidate(projectPath string) error {
	_, report, err := loadAndValidate(projectPath)
	if err != nil {
		return err
	}

	printValidationReport(report)

	if !report.Valid {
		os.Exit(1)
	}
	return nil
}

func runGenerate(ctx context.Context, projectPath string, opts generateOptions) error {
	cfg, report, err := loadAndValidate(projectPath)
	if err != nil {
		return err
	}
	if opts.seedSet {
		cfg.Seed = opts.seed
	}
	if !report.Valid {
		printValidationReport(report)
		return fmt.Errorf("config has validation errors")
	}

	logger, err := newLogger(opts.verbose)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	genOpts := []world.Option{world.WithLogger(logger)}
	if opts.index != "" {
		idx, err := index.Open(opts.index)
		if err != nil {
			return fmt.Errorf("opening index: %w", err)
		}
		defer idx.Close()
		genOpts = append(genOpts, world.WithObserver(func(a world.Attempt) {
			if err := idx.Record(ctx, index.FromAttempt(a)); err != nil {
				logger.Warn("recording run failed", zap.String("run_id", a.RunID), zap.Error(err))
			}
		}))
	}

	w, err := world.Generate(ctx, cfg, genOpts...)
	if err != nil {
		return err
	}

	generated := validation.ValidateGenerated(w.Graph, w.Biomes, cfg.Biomes.MaxBiomeCount)
	if !generated.Valid {
		printValidationReport(generated)
		return generated.Err()
	}

	if opts.out != "" {
		if err := snapshot.Write(opts.out, w); err != nil {
			return fmt.Errorf("writing snapshot: %w", err)
		}
	}
	if opts.geojson != "" {
		b, err := export.GeoJSON(w)
		if err != nil {
			return fmt.Errorf("exporting geojson: %w", err)
		}
		if err := os.WriteFile(opts.geojson, b, 0o644); err != nil {
			return err
		}
	}

	printWorldSummary(w.Summarize())
	return nil
}

func runServe(ctx context.Context, projectPath string, port int, idxPath string, verbose bool) error {
	cfg, report, err := loadAndValidate(projectPath)
	if err != nil {
		return err
	}
	if !report.Valid {
		printValidationReport(report)
		return fmt.Errorf("config has validation errors")
	}

	logger, err := newLogger(verbose)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	opts := []server.Option{server.WithLogger(logger)}
	if idxPath != "" {
		idx, err := index.Open(idxPath)
		if err != nil {
			return fmt.Errorf("opening index: %w", err)
		}
		defer idx.Close()
		opts = append(opts, server.WithIndex(idx))
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	return server.New(cfg, port, opts...).Start(ctx)
}

func runRuns(ctx context.Context, dbPath string, limit int) error {
	idx, err := index.Open(dbPath)
	if err != nil {
		return fmt.Errorf("opening index: %w", err)
	}
	defer idx.Close()

	runs, err := idx.Recent(ctx, limit)
	if err != nil {
		return err
	}
	printRuns(runs)
	return nil
}
