package agentsvc

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/townloop/engine/domain"
	"github.com/townloop/engine/storage"
	"github.com/townloop/engine/worldsvc"
)

func TestPlanJourneyStraightLine(t *testing.T) {
	data := storage.NewWorldData()
	data.World.Width, data.World.Height = 10, 10
	w := worldsvc.New(data)

	j, ok := PlanJourney(w, domain.Position{X: 0, Y: 0}, domain.Position{X: 3, Y: 0})
	require.True(t, ok)
	require.Equal(t, domain.Position{X: 3, Y: 0}, j.Destination)
	require.Len(t, j.Path, 4)
	require.True(t, j.Valid(domain.Position{X: 0, Y: 0}))
}

func TestPlanJourneyAroundWall(t *testing.T) {
	data := storage.NewWorldData()
	data.World.Width, data.World.Height = 5, 5
	for x := 0; x < 3; x++ {
		p := domain.Position{X: x, Y: 2}
		data.Cells[p] = domain.Cell{Terrain: domain.TerrainGrass, Walls: map[domain.Direction]bool{domain.South: true}, Doors: map[domain.Direction]bool{}}
		below := domain.Position{X: x, Y: 3}
		data.Cells[below] = domain.Cell{Terrain: domain.TerrainGrass, Walls: map[domain.Direction]bool{domain.North: true}, Doors: map[domain.Direction]bool{}}
	}
	w := worldsvc.New(data)

	j, ok := PlanJourney(w, domain.Position{X: 0, Y: 0}, domain.Position{X: 0, Y: 4})
	require.True(t, ok)
	require.True(t, j.Valid(domain.Position{X: 0, Y: 0}))
	for i := 1; i < len(j.Path); i++ {
		prev, cur := j.Path[i-1], j.Path[i]
		crossesWall := prev.X == cur.X && prev.X < 3 && prev.Y+cur.Y == 5 // a step between rows 2 and 3
		require.False(t, crossesWall, "path must detour around the wall, crossed at %v", prev)
	}
}

func TestPlanJourneyNoPath(t *testing.T) {
	data := storage.NewWorldData()
	data.World.Width, data.World.Height = 3, 1
	w := worldsvc.New(data)
	data.Cells[domain.Position{X: 1, Y: 0}] = domain.Cell{Terrain: domain.TerrainWater, Walls: map[domain.Direction]bool{}, Doors: map[domain.Direction]bool{}}

	_, ok := PlanJourney(w, domain.Position{X: 0, Y: 0}, domain.Position{X: 2, Y: 0})
	require.False(t, ok)
}

func TestVisionRadiusAppliesNightFactorWithFloor(t *testing.T) {
	require.Equal(t, 10, VisionRadius(10, domain.Afternoon, 0.6))
	require.Equal(t, 6, VisionRadius(10, domain.Night, 0.6))
	require.Equal(t, 1, VisionRadius(1, domain.Night, 0.6))
}

func TestSenseOthersOmitsUnknownAgents(t *testing.T) {
	ada := domain.NewAgent("ada", "m", "", domain.Position{X: 0, Y: 0})
	bo := domain.NewAgent("bo", "m", "", domain.Position{X: 1, Y: 0})
	cy := domain.NewAgent("cy", "m", "", domain.Position{X: 2, Y: 0})
	ada.Learn("bo")
	all := map[string]*domain.Agent{"ada": ada, "bo": bo, "cy": cy}

	sightings := SenseOthers(ada, all, 10)
	require.Len(t, sightings, 1)
	require.Equal(t, "bo", sightings[0].Other)
	require.Equal(t, "E", sightings[0].DirectionBucket)
	require.Equal(t, domain.DistanceNearby, sightings[0].DistanceBucket)
}

func TestUpdateMeetingLedgerIsSymmetricAndMonotonic(t *testing.T) {
	ada := domain.NewAgent("ada", "m", "", domain.Position{X: 0, Y: 0})
	bo := domain.NewAgent("bo", "m", "", domain.Position{X: 1, Y: 0})
	all := map[string]*domain.Agent{"ada": ada, "bo": bo}

	UpdateMeetingLedger(all, 5)
	require.True(t, ada.Knows("bo"))
	require.True(t, bo.Knows("ada"))

	bo.Position = domain.Position{X: 50, Y: 50}
	UpdateMeetingLedger(all, 5)
	require.True(t, ada.Knows("bo"), "known_agents must never be forgotten once learned")
}
