// Package export writes generated worlds in interchange formats.
package export

import (
	"fmt"

	geojson "github.com/paulmach/go.geojson"

	"github.com/tomster12/growth-sub000/pkg/geo"
	"github.com/tomster12/growth-sub000/pkg/world"
)

// Feature kinds, stored in the "kind" property.
const (
	KindBounds   = "bounds"
	KindSite     = "site"
	KindBoundary = "boundary"
)

// FeatureCollection converts a world into GeoJSON features: the bounding
// polygon, one polygon per site and one line string per boundary loop
// position.
func FeatureCollection(w *world.World) (*geojson.FeatureCollection, error) {
	if w.Graph == nil || w.Biomes == nil {
		return nil, fmt.Errorf("world %s has no graph", w.ID)
	}
	fc := geojson.NewFeatureCollection()

	bounds := geojson.NewPolygonFeature([][][]float64{ring(w.Bounds.Vertices)})
	bounds.SetProperty("kind", KindBounds)
	bounds.SetProperty("world", w.ID)
	bounds.SetProperty("seed", w.Seed)
	fc.AddFeature(bounds)

	for i, s := range w.Graph.Sites {
		f := geojson.NewPolygonFeature([][][]float64{ring(geo.LoopPolygon(s.Loop).Vertices)})
		f.SetProperty("kind", KindSite)
		f.SetProperty("site", i)
		f.SetProperty("biome", w.Biomes.SiteBiomes[i])
		f.SetProperty("distance", w.Graph.Distance[i])
		f.SetProperty("outside", s.IsOutside)
		fc.AddFeature(f)
	}

	for i, e := range w.Graph.Boundary {
		f := geojson.NewLineStringFeature([][]float64{
			{e.From.Pos.X, e.From.Pos.Y},
			{e.To.Pos.X, e.To.Pos.Y},
		})
		f.SetProperty("kind", KindBoundary)
		f.SetProperty("position", i)
		f.SetProperty("site", e.Site)
		f.SetProperty("biome", w.Biomes.EdgeBiomes[i])
		f.SetProperty("length", e.Length)
		fc.AddFeature(f)
	}
	return fc, nil
}

// GeoJSON returns the world's feature collection encoded as JSON.
func GeoJSON(w *world.World) ([]byte, error) {
	fc, err := FeatureCollection(w)
	if err != nil {
		return nil, err
	}
	data, err := fc.MarshalJSON()
	if err != nil {
		return nil, fmt.Errorf("encoding geojson: %w", err)
	}
	return data, nil
}

// ring closes a point loop the way GeoJSON linear rings require.
func ring(pts []geo.Point2D) [][]float64 {
	out := make([][]float64, 0, len(pts)+1)
	for _, p := range pts {
		out = append(out, []float64{p.X, p.Y})
	}
	if len(pts) > 0 {
		out = append(out, []float64{pts[0].X, pts[0].Y})
	}
	return out
}
