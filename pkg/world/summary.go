package world

import "github.com/tomster12/growth-sub000/pkg/biome"

// Summary is the compact description of a world pushed to stream clients
// and printed by the CLI.
type Summary struct {
	ID             string         `json:"id"`
	Seed           int64          `json:"seed"`
	Attempt        int            `json:"attempt"`
	Sites          int            `json:"sites"`
	InteriorSites  int            `json:"interior_sites"`
	BoundaryEdges  int            `json:"boundary_edges"`
	BoundaryLength float64        `json:"boundary_length"`
	Runs           []biome.Run    `json:"runs"`
	SiteBiomes     map[string]int `json:"site_biomes"`
}

// Summarize counts the sites, boundary and biomes of w.
func (w *World) Summarize() Summary {
	s := Summary{
		ID:             w.ID,
		Seed:           w.Seed,
		Attempt:        w.Attempt,
		Sites:          len(w.Graph.Sites),
		BoundaryEdges:  len(w.Graph.Boundary),
		BoundaryLength: w.Graph.BoundaryLength(),
		Runs:           w.Runs,
		SiteBiomes:     make(map[string]int),
	}
	for _, d := range w.Graph.Distance {
		if d > 0 {
			s.InteriorSites++
		}
	}
	for _, b := range w.Biomes.SiteBiomes {
		s.SiteBiomes[b]++
	}
	return s
}
