package world

import (
	"errors"
	"fmt"
	"math"

	"github.com/tomster12/growth-sub000/pkg/biome"
	"github.com/tomster12/growth-sub000/pkg/geo"
)

// ErrCrowded reports that the requested seeds do not fit at the spacing.
var ErrCrowded = errors.New("seeds do not fit at the requested spacing")

// scatterTriesPerSeed bounds rejection sampling.
const scatterTriesPerSeed = 200

// ScatterSeeds places count points uniformly in the disk of the given radius
// around the origin, rejecting points closer than minSpacing to one already
// placed.
func ScatterSeeds(rng biome.Rand, radius float64, count int, minSpacing float64) ([]geo.Point2D, error) {
	seeds := make([]geo.Point2D, 0, count)
	minSq := minSpacing * minSpacing
	for tries := 0; len(seeds) < count; tries++ {
		if tries >= count*scatterTriesPerSeed {
			return nil, fmt.Errorf("placed %d of %d seeds in radius %.1f: %w", len(seeds), count, radius, ErrCrowded)
		}
		r := radius * math.Sqrt(rng.Float64())
		theta := 2 * math.Pi * rng.Float64()
		p := geo.Pt(r*math.Cos(theta), r*math.Sin(theta))

		ok := true
		for _, q := range seeds {
			d := p.Sub(q)
			if d.Dot(d) < minSq {
				ok = false
				break
			}
		}
		if ok {
			seeds = append(seeds, p)
		}
	}
	return seeds, nil
}
