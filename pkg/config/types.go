// Package config holds the world generation parameters.
package config

import "github.com/tomster12/growth-sub000/pkg/biome"

// Config is the top-level definition of one generated world.
type Config struct {
	Seed int64 `yaml:"seed" json:"seed"`
	// Radius of the bounding circle, in world units.
	Radius           float64 `yaml:"radius" json:"radius"`
	BoundarySegments int     `yaml:"boundary_segments" json:"boundary_segments"`
	// SurfaceNoise is the relative amplitude of the Perlin perturbation of
	// the bounding circle. Zero keeps it a regular polygon.
	SurfaceNoise   float64 `yaml:"surface_noise" json:"surface_noise"`
	SiteCount      int     `yaml:"site_count" json:"site_count"`
	MinSiteSpacing float64 `yaml:"min_site_spacing" json:"min_site_spacing"`
	MaxAttempts    int     `yaml:"max_attempts" json:"max_attempts"`
	ClipWorkers    int     `yaml:"clip_workers" json:"clip_workers"`
	Biomes         Biomes  `yaml:"biomes" json:"biomes"`
}

// Biomes configures the boundary allocation and the inward spread.
type Biomes struct {
	MaxBiomeCount  int                 `yaml:"max_biome_count" json:"max_biome_count"`
	Depth          int                 `yaml:"depth" json:"depth"`
	GradientOffset int                 `yaml:"gradient_offset" json:"gradient_offset"`
	GradientPct    float64             `yaml:"gradient_pct" json:"gradient_pct"`
	Underground    string              `yaml:"underground" json:"underground"`
	Requirements   []biome.Requirement `yaml:"requirements" json:"requirements"`
}

// Default returns the parameters of a small world with three surface biomes.
func Default() *Config {
	return &Config{
		Seed:             1,
		Radius:           100,
		BoundarySegments: 96,
		SurfaceNoise:     0.05,
		SiteCount:        120,
		MinSiteSpacing:   4,
		MaxAttempts:      5,
		ClipWorkers:      4,
		Biomes: Biomes{
			MaxBiomeCount:  8,
			Depth:          3,
			GradientOffset: 1,
			GradientPct:    0.5,
			Underground:    "stone",
			Requirements: []biome.Requirement{
				{ID: "grass", MinCount: 2, MinLength: 60},
				{ID: "desert", MinCount: 1, MinLength: 80},
				{ID: "snow", MinCount: 1, MinLength: 40},
			},
		},
	}
}

// Params converts the biome block to allocator parameters.
func (b Biomes) Params() biome.Params {
	return biome.Params{
		Requirements:   append([]biome.Requirement(nil), b.Requirements...),
		MaxBiomeCount:  b.MaxBiomeCount,
		Depth:          b.Depth,
		GradientOffset: b.GradientOffset,
		GradientPct:    b.GradientPct,
		Underground:    b.Underground,
	}
}
