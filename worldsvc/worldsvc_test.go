package worldsvc

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/townloop/engine/domain"
	"github.com/townloop/engine/storage"
)

func newData(width, height int) *storage.WorldData {
	d := storage.NewWorldData()
	d.World.Width, d.World.Height = width, height
	return d
}

func TestGetCellDefaultsWhenUnstored(t *testing.T) {
	w := New(newData(10, 10))
	cell := w.GetCell(domain.Position{X: 3, Y: 3})
	require.Equal(t, domain.DefaultTerrain, cell.Terrain)
	require.True(t, cell.IsDefault())
}

func TestPassableRejectsWaterAndOccupiedCells(t *testing.T) {
	data := newData(10, 10)
	data.Cells[domain.Position{X: 1, Y: 1}] = domain.Cell{Terrain: domain.TerrainWater, Walls: map[domain.Direction]bool{}, Doors: map[domain.Direction]bool{}}
	data.Agents["ada"] = &domain.Agent{Name: "ada", Position: domain.Position{X: 2, Y: 2}}
	w := New(data)

	require.False(t, w.Passable(domain.Position{X: 1, Y: 1}))
	require.False(t, w.Passable(domain.Position{X: 2, Y: 2}))
	require.True(t, w.Passable(domain.Position{X: 5, Y: 5}))
}

func TestCanStepBlockedByWallUnlessDoor(t *testing.T) {
	data := newData(10, 10)
	origin := domain.Position{X: 5, Y: 5}
	data.Cells[origin] = domain.Cell{
		Terrain: domain.TerrainGrass,
		Walls:   map[domain.Direction]bool{domain.North: true},
		Doors:   map[domain.Direction]bool{},
	}
	w := New(data)
	require.False(t, w.CanStep(origin, domain.North))

	data.Cells[origin] = domain.Cell{
		Terrain: domain.TerrainGrass,
		Walls:   map[domain.Direction]bool{domain.North: true},
		Doors:   map[domain.Direction]bool{domain.North: true},
	}
	require.True(t, w.CanStep(origin, domain.North))
}

func TestPlaceWallIsSymmetricEvent(t *testing.T) {
	w := New(newData(10, 10))
	ev, err := w.PlaceWall("ada", domain.Position{X: 4, Y: 4}, domain.East)
	require.NoError(t, err)
	require.Equal(t, domain.EventWallPlaced, ev.Type)
	require.Equal(t, 5, ev.Data["x2"])
	require.Equal(t, 4, ev.Data["y2"])
	require.Equal(t, "west", ev.Data["direction2"])
}

func TestPlaceDoorRequiresExistingWall(t *testing.T) {
	w := New(newData(10, 10))
	_, err := w.PlaceDoor("ada", domain.Position{X: 0, Y: 0}, domain.South)
	require.Error(t, err)
}

func TestDetectStructureEnclosedRoom(t *testing.T) {
	data := newData(10, 10)
	center := domain.Position{X: 5, Y: 5}
	for dx := -1; dx <= 1; dx++ {
		for dy := -1; dy <= 1; dy++ {
			p := domain.Position{X: center.X + dx, Y: center.Y + dy}
			data.Cells[p] = domain.Cell{Terrain: domain.TerrainGrass, Walls: map[domain.Direction]bool{}, Doors: map[domain.Direction]bool{}}
		}
	}
	// wall off the entire 3x3 boundary.
	for dx := -1; dx <= 1; dx++ {
		for dy := -1; dy <= 1; dy++ {
			p := domain.Position{X: center.X + dx, Y: center.Y + dy}
			cell := data.Cells[p]
			if dx == -1 {
				cell.Walls[domain.West] = true
			}
			if dx == 1 {
				cell.Walls[domain.East] = true
			}
			if dy == -1 {
				cell.Walls[domain.North] = true
			}
			if dy == 1 {
				cell.Walls[domain.South] = true
			}
			data.Cells[p] = cell
		}
	}
	w := New(data)
	structure, ok := w.DetectStructure(center)
	require.True(t, ok)
	require.Len(t, structure.Interior, 9)
}

func TestDetectStructureEscapesWorldWithoutEnclosure(t *testing.T) {
	w := New(newData(20, 20))
	_, ok := w.DetectStructure(domain.Position{X: 10, Y: 10})
	require.False(t, ok)
}
