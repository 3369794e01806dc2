// Package worldgen produces the initial terrain grid and agent placements
// written by `townloop init`. No library in the retrieved corpus addresses
// procedural terrain generation, so this is built directly on
// math/rand/v2's seeded generator — the one ambient concern in this module
// with no third-party grounding (see DESIGN.md).
package worldgen

import (
	"math/rand/v2"

	"github.com/townloop/engine/domain"
)

// Options configures terrain generation.
type Options struct {
	Width, Height int
	Seed          uint64
	// LakeCount/ForestCount/HillCount/StoneCount bound how many blobs of
	// each non-grass terrain are scattered across the grid.
	LakeCount   int
	ForestCount int
	HillCount   int
	StoneCount  int
}

// DefaultOptions scales blob counts to the requested world size.
func DefaultOptions(width, height, seed uint64) Options {
	area := int(width * height)
	return Options{
		Width:       int(width),
		Height:      int(height),
		Seed:        seed,
		LakeCount:   area / 400,
		ForestCount: area / 150,
		HillCount:   area / 300,
		StoneCount:  area / 250,
	}
}

// GenerateTerrain returns a sparse cell map (entries only for non-default
// terrain) by scattering random-walk blobs of each terrain kind onto an
// otherwise all-grass grid, then deriving coastline from water adjacency.
func GenerateTerrain(opts Options) map[domain.Position]domain.Cell {
	rng := rand.New(rand.NewPCG(opts.Seed, opts.Seed^0x9e3779b97f4a7c15))
	cells := map[domain.Position]domain.Cell{}

	place := func(terrain domain.Terrain, blobs, blobSize int) {
		for i := 0; i < blobs; i++ {
			x, y := rng.IntN(opts.Width), rng.IntN(opts.Height)
			walkBlob(cells, rng, x, y, opts.Width, opts.Height, terrain, blobSize)
		}
	}

	place(domain.TerrainWater, opts.LakeCount, 6)
	place(domain.TerrainForest, opts.ForestCount, 5)
	place(domain.TerrainHill, opts.HillCount, 4)
	place(domain.TerrainSand, opts.StoneCount, 4)
	place(domain.TerrainStone, opts.StoneCount, 3)

	applyCoastline(cells, opts.Width, opts.Height)
	return cells
}

// walkBlob marks up to n cells starting from (x,y) as terrain, performing a
// short random walk so blobs are irregular rather than perfect squares.
func walkBlob(cells map[domain.Position]domain.Cell, rng *rand.Rand, x, y, width, height int, terrain domain.Terrain, n int) {
	for i := 0; i < n; i++ {
		if x < 0 || y < 0 || x >= width || y >= height {
			break
		}
		pos := domain.Position{X: x, Y: y}
		c := cells[pos]
		if c.Terrain == "" {
			c = domain.DefaultCell()
		}
		c.Terrain = terrain
		cells[pos] = c

		dir := domain.AllDirections[rng.IntN(len(domain.AllDirections))]
		dx, dy := dir.Delta()
		x, y = x+dx, y+dy
	}
}

// applyCoastline turns any grass cell orthogonally adjacent to water into
// coast, so shorelines never abut open grass directly.
func applyCoastline(cells map[domain.Position]domain.Cell, width, height int) {
	water := map[domain.Position]bool{}
	for pos, c := range cells {
		if c.Terrain == domain.TerrainWater {
			water[pos] = true
		}
	}
	for pos := range water {
		for _, dir := range domain.AllDirections {
			dx, dy := dir.Delta()
			n := domain.Position{X: pos.X + dx, Y: pos.Y + dy}
			if n.X < 0 || n.Y < 0 || n.X >= width || n.Y >= height {
				continue
			}
			c, ok := cells[n]
			if !ok {
				c = domain.DefaultCell()
			}
			if c.Terrain == domain.TerrainGrass || c.Terrain == "" {
				c.Terrain = domain.TerrainCoast
				cells[n] = c
			}
		}
	}
}

// PlaceAgents returns a deterministic spread of starting positions, one per
// requested agent, skipping impassable terrain.
func PlaceAgents(cells map[domain.Position]domain.Cell, width, height int, seed uint64, count int) []domain.Position {
	rng := rand.New(rand.NewPCG(seed^0xa5a5a5a5, seed))
	var out []domain.Position
	seen := map[domain.Position]bool{}
	for len(out) < count {
		pos := domain.Position{X: rng.IntN(width), Y: rng.IntN(height)}
		if seen[pos] {
			continue
		}
		seen[pos] = true
		c, ok := cells[pos]
		if !ok {
			c = domain.DefaultCell()
		}
		if !c.Terrain.Passable() && c.Terrain != "" {
			continue
		}
		out = append(out, pos)
	}
	return out
}
