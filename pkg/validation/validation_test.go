package validation

import (
	"errors"
	"math/rand"
	"strings"
	"testing"

	"github.com/tomster12/growth-sub000/pkg/biome"
	"github.com/tomster12/growth-sub000/pkg/geo"
	"github.com/tomster12/growth-sub000/pkg/mesh"
)

func TestNewReport(t *testing.T) {
	r := NewReport()
	if !r.Valid {
		t.Error("new report should be valid")
	}
	if len(r.Errors) != 0 || len(r.Warnings) != 0 || len(r.Info) != 0 {
		t.Error("new report should have empty slices")
	}
	if r.Summary != "0 errors, 0 warnings, 0 info" {
		t.Errorf("unexpected summary: %s", r.Summary)
	}
}

func TestAddError(t *testing.T) {
	r := NewReport()
	r.AddError(Result{
		Level:       LevelSchema,
		Path:        "boundary_segments",
		Message:     "need at least 3 segments",
		ActualValue: 2,
	})
	if r.Valid {
		t.Error("report with error should be invalid")
	}
	if len(r.Errors) != 1 {
		t.Fatalf("expected 1 error, got %d", len(r.Errors))
	}
	if r.Errors[0].Severity != SeverityError || r.Errors[0].Path != "boundary_segments" {
		t.Errorf("unexpected error %+v", r.Errors[0])
	}
	if r.Summary != "1 errors, 0 warnings, 0 info" {
		t.Errorf("unexpected summary: %s", r.Summary)
	}
}

func TestWarningsAndInfoKeepReportValid(t *testing.T) {
	r := NewReport()
	r.AddWarning(Result{Level: LevelAnalytical, Path: "site_count", Message: "sites are tightly packed"})
	r.AddInfo(Result{Level: LevelGenerated, Path: "graph", Message: "120 sites"})
	if !r.Valid {
		t.Error("warnings and info should not invalidate a report")
	}
	if r.Warnings[0].Severity != SeverityWarning || r.Info[0].Severity != SeverityInfo {
		t.Errorf("severities %s, %s", r.Warnings[0].Severity, r.Info[0].Severity)
	}
}

func TestMergeConfigAndGenerated(t *testing.T) {
	cfg := NewReport()
	cfg.AddWarning(Result{Level: LevelAnalytical, Path: "biomes.requirements", Message: "runs use most of the boundary"})

	gen := NewReport()
	gen.AddError(Result{Level: LevelGenerated, Path: "boundary.4", Message: "boundary position 4 has no biome"})
	gen.AddInfo(Result{Level: LevelGenerated, Path: "biomes", Message: "3 biome runs placed"})

	cfg.Merge(gen)

	if cfg.Valid {
		t.Error("merged report should be invalid when the generated report has errors")
	}
	if len(cfg.Errors) != 1 || cfg.Errors[0].Level != LevelGenerated {
		t.Errorf("errors = %+v", cfg.Errors)
	}
	if cfg.Summary != "1 errors, 1 warnings, 1 info" {
		t.Errorf("unexpected summary: %s", cfg.Summary)
	}
}

func TestReportErr(t *testing.T) {
	r := NewReport()
	if r.Err() != nil {
		t.Fatalf("valid report returned %v", r.Err())
	}
	r.AddError(Result{Level: LevelSchema, Path: "radius", Message: "must be positive"})
	r.AddError(Result{Level: LevelGenerated, Message: "broken boundary"})
	err := r.Err()
	if !errors.Is(err, ErrInvalid) {
		t.Fatalf("expected ErrInvalid, got %v", err)
	}
	if !strings.Contains(err.Error(), "radius: must be positive; broken boundary") {
		t.Errorf("unexpected message %q", err.Error())
	}
}

// --- Generated worlds ---

func splitSquareGraph(t *testing.T) *mesh.Graph {
	t.Helper()
	bi := func(i int, x, y float64) geo.ClippedVertex {
		return geo.ClippedVertex{Pos: geo.Pt(x, y), Kind: geo.BoundaryIntersection, Index: i}
	}
	bv := func(i int, x, y float64) geo.ClippedVertex {
		return geo.ClippedVertex{Pos: geo.Pt(x, y), Kind: geo.BoundaryVertex, Index: i}
	}
	cells := [][]geo.ClippedVertex{
		{bi(0, 0, -10), bi(2, 0, 10), bv(3, -10, 10), bv(0, -10, -10)},
		{bi(0, 0, -10), bv(1, 10, -10), bv(2, 10, 10), bi(2, 0, 10)},
	}
	g, err := mesh.Build(cells, nil, 4)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	return g
}

func generated(t *testing.T, g *mesh.Graph) *biome.Result {
	t.Helper()
	p := biome.Params{
		Requirements:  []biome.Requirement{{ID: "sand", MinCount: 1, MinLength: 20}},
		MaxBiomeCount: 2,
		Depth:         1,
		Underground:   "stone",
	}
	res, err := biome.Generate(g.BoundaryLengths(), g.BoundaryOwners(), g.NeighbourLists(), g.Distance, p, rand.New(rand.NewSource(1)))
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	return res
}

func TestValidateGeneratedValid(t *testing.T) {
	g := splitSquareGraph(t)
	r := ValidateGenerated(g, generated(t, g), 2)
	if !r.Valid {
		t.Fatalf("expected valid, got errors: %+v", r.Errors)
	}
	for _, info := range r.Info {
		if info.Level != LevelGenerated {
			t.Errorf("info %q at level %s", info.Message, info.Level)
		}
	}
	if len(r.Info) != 2 || r.Info[0].Path != "graph" || r.Info[1].Path != "biomes" {
		t.Errorf("info = %+v", r.Info)
	}
}

func TestValidateGeneratedMissingEdgeBiome(t *testing.T) {
	g := splitSquareGraph(t)
	res := generated(t, g)
	res.EdgeBiomes[2] = ""

	r := ValidateGenerated(g, res, 2)
	if r.Valid {
		t.Fatal("expected a boundary position without biome to be an error")
	}
	if r.Errors[0].Path != "boundary.2" || r.Errors[0].Level != LevelGenerated {
		t.Errorf("error = %+v", r.Errors[0])
	}
}

func TestValidateGeneratedOverMaxBiomeCount(t *testing.T) {
	g := splitSquareGraph(t)
	res := generated(t, g)

	r := ValidateGenerated(g, res, 0)
	if r.Valid {
		t.Fatal("expected runs above the max biome count to be an error")
	}
	if r.Errors[0].Path != "biomes" {
		t.Errorf("error path %q, want biomes", r.Errors[0].Path)
	}
}
