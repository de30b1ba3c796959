package export

import (
	"context"
	"testing"

	geojson "github.com/paulmach/go.geojson"

	"github.com/tomster12/growth-sub000/pkg/config"
	"github.com/tomster12/growth-sub000/pkg/world"
)

func generate(t *testing.T) *world.World {
	t.Helper()
	cfg := config.Default()
	cfg.SiteCount = 40
	w, err := world.Generate(context.Background(), cfg)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	return w
}

func TestGeoJSONFeatures(t *testing.T) {
	w := generate(t)
	data, err := GeoJSON(w)
	if err != nil {
		t.Fatalf("GeoJSON failed: %v", err)
	}
	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		t.Fatalf("output is not a feature collection: %v", err)
	}

	counts := make(map[string]int)
	for _, f := range fc.Features {
		kind, _ := f.Properties["kind"].(string)
		counts[kind]++
		switch kind {
		case KindSite, KindBounds:
			if !f.Geometry.IsPolygon() {
				t.Fatalf("%s feature has geometry %s", kind, f.Geometry.Type)
			}
			outer := f.Geometry.Polygon[0]
			first, last := outer[0], outer[len(outer)-1]
			if first[0] != last[0] || first[1] != last[1] {
				t.Errorf("%s ring is not closed", kind)
			}
		case KindBoundary:
			if !f.Geometry.IsLineString() || len(f.Geometry.LineString) != 2 {
				t.Errorf("boundary feature has geometry %s", f.Geometry.Type)
			}
			if b, _ := f.Properties["biome"].(string); b == "" {
				t.Errorf("boundary feature %v has no biome", f.Properties["position"])
			}
		}
	}
	if counts[KindBounds] != 1 {
		t.Errorf("expected 1 bounds feature, got %d", counts[KindBounds])
	}
	if counts[KindSite] != len(w.Graph.Sites) {
		t.Errorf("expected %d site features, got %d", len(w.Graph.Sites), counts[KindSite])
	}
	if counts[KindBoundary] != len(w.Graph.Boundary) {
		t.Errorf("expected %d boundary features, got %d", len(w.Graph.Boundary), counts[KindBoundary])
	}
}

func TestGeoJSONRequiresGraph(t *testing.T) {
	if _, err := GeoJSON(&world.World{ID: "empty"}); err == nil {
		t.Error("expected error for a world without a graph")
	}
}
