package validation

import (
	"fmt"
	"math"

	"github.com/tomster12/growth-sub000/pkg/biome"
	"github.com/tomster12/growth-sub000/pkg/config"
	"github.com/tomster12/growth-sub000/pkg/mesh"
)

// tightPacking is the share of the boundary above which required runs leave
// the allocator little room to place them naturally.
const tightPacking = 0.8

// BoundaryEstimate returns the perimeter of the regular polygon the
// boundary starts from, before surface noise.
func BoundaryEstimate(c *config.Config) float64 {
	n := float64(c.BoundarySegments)
	if n < 3 {
		return 0
	}
	return 2 * n * c.Radius * math.Sin(math.Pi/n)
}

// ValidateAnalytic performs analytical validation: checks that need
// arithmetic over several fields but no generation.
func ValidateAnalytic(c *config.Config) *Report {
	r := NewReport()

	validateBoundaryBudget(c, r)
	validateRunBudget(c, r)
	validateSiteDensity(c, r)

	return r
}

func validateBoundaryBudget(c *config.Config, r *Report) {
	perimeter := BoundaryEstimate(c)
	required := 0.0
	for _, req := range c.Biomes.Requirements {
		required += float64(req.MinCount) * req.MinLength
	}

	r.AddInfo(Result{
		Level:       LevelAnalytical,
		Message:     fmt.Sprintf("boundary length ~%.1f, required run length %.1f", perimeter, required),
		Path:        "biomes.requirements",
		ActualValue: required,
	})

	switch {
	case required > perimeter:
		r.AddError(Result{
			Level:       LevelAnalytical,
			Message:     fmt.Sprintf("required run length %.1f exceeds boundary length ~%.1f", required, perimeter),
			Path:        "biomes.requirements",
			ActualValue: required,
			Expected:    fmt.Sprintf("<= %.1f", perimeter),
			Suggestions: []string{
				"Reduce min_length or min_count of the requirements",
				fmt.Sprintf("Increase radius to at least %.1f", c.Radius*required/perimeter),
			},
		})
	case required > tightPacking*perimeter:
		r.AddWarning(Result{
			Level:       LevelAnalytical,
			Message:     fmt.Sprintf("required runs cover %.0f%% of the boundary; expect pushed placements and retries", 100*required/perimeter),
			Path:        "biomes.requirements",
			ActualValue: required,
			Expected:    fmt.Sprintf("<= %.1f", tightPacking*perimeter),
		})
	}

	for i, req := range c.Biomes.Requirements {
		if req.MinLength > perimeter {
			r.AddError(Result{
				Level:       LevelAnalytical,
				Message:     fmt.Sprintf("biome %q min_length %.1f is longer than the boundary", req.ID, req.MinLength),
				Path:        fmt.Sprintf("biomes.requirements.%d.min_length", i),
				ActualValue: req.MinLength,
				Expected:    fmt.Sprintf("<= %.1f", perimeter),
			})
		}
	}
}

func validateRunBudget(c *config.Config, r *Report) {
	count := 0
	for _, req := range c.Biomes.Requirements {
		count += req.MinCount
	}
	if count > c.Biomes.MaxBiomeCount {
		r.AddError(Result{
			Level:       LevelAnalytical,
			Message:     fmt.Sprintf("%d required runs exceed max_biome_count %d", count, c.Biomes.MaxBiomeCount),
			Path:        "biomes.max_biome_count",
			ActualValue: c.Biomes.MaxBiomeCount,
			Expected:    fmt.Sprintf(">= %d", count),
			Suggestions: []string{fmt.Sprintf("Set max_biome_count to at least %d", count)},
		})
	}
}

func validateSiteDensity(c *config.Config, r *Report) {
	if c.MinSiteSpacing <= 0 || c.Radius <= 0 {
		return
	}
	// Disks of diameter min_site_spacing around every seed.
	covered := float64(c.SiteCount) * math.Pi * c.MinSiteSpacing * c.MinSiteSpacing / 4
	area := math.Pi * c.Radius * c.Radius
	if covered > 0.7*area {
		r.AddWarning(Result{
			Level:       LevelAnalytical,
			Message:     fmt.Sprintf("%d sites at spacing %.1f crowd the disk; seed scattering may not finish", c.SiteCount, c.MinSiteSpacing),
			Path:        "min_site_spacing",
			ActualValue: c.MinSiteSpacing,
			Suggestions: []string{"Reduce site_count or min_site_spacing"},
		})
	}
}

// ValidateGenerated checks a generated graph and its biome result.
func ValidateGenerated(g *mesh.Graph, res *biome.Result, maxBiomeCount int) *Report {
	r := NewReport()

	if err := g.Validate(); err != nil {
		r.AddError(Result{
			Level:   LevelGenerated,
			Message: err.Error(),
			Path:    "graph",
		})
	}

	interior := 0
	for _, d := range g.Distance {
		if d > 0 {
			interior++
		}
	}
	r.AddInfo(Result{
		Level:   LevelGenerated,
		Message: fmt.Sprintf("%d sites (%d interior), %d boundary edges, boundary length %.1f", len(g.Sites), interior, len(g.Boundary), g.BoundaryLength()),
		Path:    "graph",
	})

	if res == nil {
		return r
	}
	if err := res.Allocation.Validate(maxBiomeCount); err != nil {
		r.AddError(Result{
			Level:   LevelGenerated,
			Message: err.Error(),
			Path:    "biomes",
		})
	}
	for i, b := range res.EdgeBiomes {
		if b == "" && len(res.Allocation.Requirements) > 0 {
			r.AddError(Result{
				Level:   LevelGenerated,
				Message: fmt.Sprintf("boundary position %d has no biome", i),
				Path:    fmt.Sprintf("boundary.%d", i),
			})
			break
		}
	}
	r.AddInfo(Result{
		Level:   LevelGenerated,
		Message: fmt.Sprintf("%d biome runs placed", len(res.Allocation.Runs())),
		Path:    "biomes",
	})
	return r
}
