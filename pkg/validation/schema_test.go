package validation

import (
	"strings"
	"testing"

	"github.com/tomster12/growth-sub000/pkg/biome"
	"github.com/tomster12/growth-sub000/pkg/config"
)

func validConfig() *config.Config {
	return config.Default()
}

func hasErrorAt(r *Report, path string) bool {
	for _, e := range r.Errors {
		if e.Path == path {
			return true
		}
	}
	return false
}

func TestValidateSchemaValid(t *testing.T) {
	r := ValidateSchema(validConfig())
	if !r.Valid {
		for _, e := range r.Errors {
			t.Errorf("unexpected error: %s (%s)", e.Message, e.Path)
		}
	}
}

func TestValidateSchemaRadius(t *testing.T) {
	c := validConfig()
	c.Radius = 0
	r := ValidateSchema(c)
	if r.Valid {
		t.Fatal("expected invalid for zero radius")
	}
	if !hasErrorAt(r, "radius") {
		t.Errorf("expected error at radius, got %+v", r.Errors)
	}
}

func TestValidateSchemaBoundarySegments(t *testing.T) {
	c := validConfig()
	c.BoundarySegments = 2
	if r := ValidateSchema(c); !hasErrorAt(r, "boundary_segments") {
		t.Errorf("expected error at boundary_segments, got %+v", r.Errors)
	}
}

func TestValidateSchemaRequirement(t *testing.T) {
	c := validConfig()
	c.Biomes.Requirements[1].MinLength = -5
	r := ValidateSchema(c)
	if !hasErrorAt(r, "biomes.requirements.1.min_length") {
		t.Errorf("expected error at biomes.requirements.1.min_length, got %+v", r.Errors)
	}
}

func TestValidateSchemaGradientPct(t *testing.T) {
	c := validConfig()
	c.Biomes.GradientPct = 1.5
	if r := ValidateSchema(c); !hasErrorAt(r, "biomes.gradient_pct") {
		t.Errorf("expected error at biomes.gradient_pct, got %+v", r.Errors)
	}
}

func TestValidateSchemaDuplicateBiome(t *testing.T) {
	c := validConfig()
	c.Biomes.Requirements = append(c.Biomes.Requirements, biome.Requirement{ID: "grass", MinCount: 0, MinLength: 10})
	r := ValidateSchema(c)
	if !hasErrorAt(r, "biomes.requirements.3.id") {
		t.Errorf("expected duplicate id error, got %+v", r.Errors)
	}
}

func TestValidateSchemaGradientOffset(t *testing.T) {
	c := validConfig()
	c.Biomes.GradientOffset = c.Biomes.Depth + 1
	if r := ValidateSchema(c); !hasErrorAt(r, "biomes.gradient_offset") {
		t.Errorf("expected gradient_offset error, got %+v", r.Errors)
	}
}

func TestValidateSchemaNoRequirements(t *testing.T) {
	c := validConfig()
	c.Biomes.Requirements = nil
	r := ValidateSchema(c)
	if !r.Valid {
		t.Errorf("missing requirements should only warn, got %+v", r.Errors)
	}
	if len(r.Warnings) == 0 {
		t.Error("expected a warning for missing requirements")
	}
}

// --- Analytical checks ---

func TestValidateAnalyticValid(t *testing.T) {
	r := ValidateAnalytic(validConfig())
	if !r.Valid {
		t.Errorf("unexpected errors: %+v", r.Errors)
	}
	if len(r.Info) == 0 {
		t.Error("expected boundary budget info")
	}
}

func TestValidateAnalyticBoundaryBudget(t *testing.T) {
	c := validConfig()
	c.Biomes.Requirements = []biome.Requirement{{ID: "grass", MinCount: 1, MinLength: 700}}
	r := ValidateAnalytic(c)
	if r.Valid {
		t.Fatal("expected length budget error")
	}
	found := false
	for _, e := range r.Errors {
		if strings.Contains(e.Message, "exceeds boundary length") {
			found = true
		}
	}
	if !found {
		t.Errorf("expected boundary length error, got %+v", r.Errors)
	}
}

func TestValidateAnalyticTightPacking(t *testing.T) {
	c := validConfig()
	perimeter := BoundaryEstimate(c)
	c.Biomes.Requirements = []biome.Requirement{{ID: "grass", MinCount: 1, MinLength: 0.9 * perimeter}}
	r := ValidateAnalytic(c)
	if !r.Valid {
		t.Errorf("tight packing should only warn, got %+v", r.Errors)
	}
	if len(r.Warnings) == 0 {
		t.Error("expected tight packing warning")
	}
}

func TestValidateAnalyticRunBudget(t *testing.T) {
	c := validConfig()
	c.Biomes.MaxBiomeCount = 2
	if r := ValidateAnalytic(c); !hasErrorAt(r, "biomes.max_biome_count") {
		t.Errorf("expected max_biome_count error, got %+v", r.Errors)
	}
}

func TestValidateAnalyticCrowdedSites(t *testing.T) {
	c := validConfig()
	c.MinSiteSpacing = 20
	r := ValidateAnalytic(c)
	if len(r.Warnings) == 0 {
		t.Error("expected crowding warning")
	}
}

func TestBoundaryEstimate(t *testing.T) {
	c := validConfig()
	c.Radius = 10
	c.BoundarySegments = 4
	// A square inscribed in a circle of radius 10 has side 10*sqrt(2).
	want := 4 * 10 * 1.4142135623730951
	if got := BoundaryEstimate(c); got < want-1e-9 || got > want+1e-9 {
		t.Errorf("BoundaryEstimate = %f, want %f", got, want)
	}
}
