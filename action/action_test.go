package action

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/townloop/engine/domain"
	"github.com/townloop/engine/storage"
	"github.com/townloop/engine/worldsvc"
)

func newTestContext(t *testing.T, self *domain.Agent, others ...*domain.Agent) (*Context, *storage.WorldData) {
	t.Helper()
	data := storage.NewWorldData()
	data.World.Width, data.World.Height = 50, 50
	agents := map[string]*domain.Agent{self.Name: self}
	for _, o := range others {
		agents[o.Name] = o
	}
	data.Agents = agents
	world := worldsvc.New(data)
	recipes := NewRecipeTable(DefaultRecipes)
	return NewContext(1, self, agents, world, recipes, 10), data
}

func TestHandleWalkMovesOnSuccess(t *testing.T) {
	self := domain.NewAgent("ada", "m", "", domain.Position{X: 5, Y: 5})
	c, _ := newTestContext(t, self)

	res := handleWalk(c, map[string]any{"direction": "east"})
	require.True(t, res.Success)
	require.Equal(t, domain.Position{X: 6, Y: 5}, self.Position)
	require.Len(t, res.Events, 1)
	require.Equal(t, domain.EventAgentMoved, res.Events[0].Type)
}

func TestHandleWalkFailsIntoWall(t *testing.T) {
	self := domain.NewAgent("ada", "m", "", domain.Position{X: 5, Y: 5})
	c, data := newTestContext(t, self)
	data.Cells[self.Position] = domain.Cell{Terrain: domain.TerrainGrass, Walls: map[domain.Direction]bool{domain.North: true}, Doors: map[domain.Direction]bool{}}

	res := handleWalk(c, map[string]any{"direction": "north"})
	require.False(t, res.Success)
	require.Empty(t, res.Events)
}

func TestHandleGatherYieldsTerrainResource(t *testing.T) {
	self := domain.NewAgent("ada", "m", "", domain.Position{X: 0, Y: 0})
	c, data := newTestContext(t, self)
	data.Cells[self.Position] = domain.Cell{Terrain: domain.TerrainForest, Walls: map[domain.Direction]bool{}, Doors: map[domain.Direction]bool{}}

	res := handleGather(c, nil)
	require.True(t, res.Success)
	require.Equal(t, 1, self.Inventory.Count(domain.ResourceWood))
}

func TestHandleGatherFailsOnWater(t *testing.T) {
	self := domain.NewAgent("ada", "m", "", domain.Position{X: 0, Y: 0})
	c, data := newTestContext(t, self)
	data.Cells[self.Position] = domain.Cell{Terrain: domain.TerrainWater, Walls: map[domain.Direction]bool{}, Doors: map[domain.Direction]bool{}}

	res := handleGather(c, nil)
	require.False(t, res.Success)
}

func TestHandleGiveRequiresProximityAndStock(t *testing.T) {
	self := domain.NewAgent("ada", "m", "", domain.Position{X: 0, Y: 0})
	bo := domain.NewAgent("bo", "m", "", domain.Position{X: 1, Y: 0})
	c, _ := newTestContext(t, self, bo)

	res := handleGive(c, map[string]any{"kind": "wood", "recipient": "bo"})
	require.False(t, res.Success, "no wood to give")

	self.Inventory.Add(domain.ResourceWood, 1)
	res = handleGive(c, map[string]any{"kind": "wood", "recipient": "bo"})
	require.True(t, res.Success)
	require.Equal(t, 0, self.Inventory.Count(domain.ResourceWood))
	require.Equal(t, 1, bo.Inventory.Count(domain.ResourceWood))
}

func TestCraftWorkPlanksFromWood(t *testing.T) {
	self := domain.NewAgent("ada", "m", "", domain.Position{X: 0, Y: 0})
	c, _ := newTestContext(t, self)
	self.Inventory.Add(domain.ResourceWood, 1)

	res := handleWork(c, map[string]any{"material": "wood", "technique": "saw"})
	require.True(t, res.Success)
	require.Equal(t, 0, self.Inventory.Count(domain.ResourceWood))
	require.Equal(t, 2, self.Inventory.Count("planks"))
}

func TestCraftMissReturnsHintsAndConsumesNothing(t *testing.T) {
	self := domain.NewAgent("ada", "m", "", domain.Position{X: 0, Y: 0})
	c, _ := newTestContext(t, self)
	self.Inventory.Add(domain.ResourceWood, 1)

	res := handleWork(c, map[string]any{"material": "wood", "technique": "unknown_technique"})
	require.False(t, res.Success)
	require.NotEmpty(t, res.Data["hints"])
	require.Equal(t, 1, self.Inventory.Count(domain.ResourceWood))
}

func TestCombineMissHintsCrossActionRecipeUsingSameInput(t *testing.T) {
	self := domain.NewAgent("ada", "m", "", domain.Position{X: 0, Y: 0})
	c, _ := newTestContext(t, self)
	self.Inventory.Add(domain.ResourceWood, 1)
	self.Inventory.Add(domain.ResourceKind("water"), 1)

	res := handleCombine(c, map[string]any{"inputs": []any{"wood", "water"}})
	require.False(t, res.Success)
	hints, _ := res.Data["hints"].([]string)
	require.NotEmpty(t, hints, "combine(wood, water) should hint at recipes using wood even though none of them are combine recipes")
	require.Contains(t, hints, "planks")
}

func TestHandlePlaceWallThenPlaceDoor(t *testing.T) {
	self := domain.NewAgent("ada", "m", "", domain.Position{X: 5, Y: 5})
	c, _ := newTestContext(t, self)

	// PlaceWall mutates c.World's cells directly, so the wall is already
	// visible to the door placement below without any manual replay step.
	res := handlePlaceWall(c, map[string]any{"direction": "north"})
	require.True(t, res.Success)

	res = handlePlaceDoor(c, map[string]any{"direction": "north"})
	require.True(t, res.Success)
}

func TestHandlePlaceDoorFailsWithoutWall(t *testing.T) {
	self := domain.NewAgent("ada", "m", "", domain.Position{X: 5, Y: 5})
	c, _ := newTestContext(t, self)
	res := handlePlaceDoor(c, map[string]any{"direction": "north"})
	require.False(t, res.Success)
}

func TestBuildShelterEnclosesAgent(t *testing.T) {
	self := domain.NewAgent("ada", "m", "", domain.Position{X: 10, Y: 10})
	self.Facing = domain.South
	c, data := newTestContext(t, self)

	res := handleBuildShelter(c, nil)
	require.True(t, res.Success)
	require.NotEmpty(t, res.Events)

	var detected *domain.Event
	for i, ev := range res.Events {
		if ev.Type == domain.EventStructureDetected {
			detected = &res.Events[i]
		}
	}
	require.NotNil(t, detected, "build_shelter should detect the enclosure it just walled")
	creators, _ := detected.Data["creators"].([]string)
	require.Equal(t, []string{"ada"}, creators, "ada built every bounding wall, so is the sole creator")

	require.Len(t, data.Structures, 1)
	for _, s := range data.Structures {
		require.True(t, s.Creators["ada"])
		require.True(t, s.Interior[domain.Position{X: 10, Y: 10}])
	}
}

func TestHandleWriteSignThenReadSign(t *testing.T) {
	self := domain.NewAgent("ada", "m", "", domain.Position{X: 0, Y: 0})
	c, data := newTestContext(t, self)

	res := handleWriteSign(c, map[string]any{"text": "hello world"})
	require.True(t, res.Success)
	id := res.Data["id"].(string)
	data.Objects[id] = domain.NewSign(id, self.Position, "hello world", "ada", 1)

	res = handleReadSign(c, map[string]any{"direction": "down"})
	require.True(t, res.Success)
	require.Equal(t, "hello world", res.Data["text"])
}

func TestHandleSleepThenAlreadyAsleep(t *testing.T) {
	self := domain.NewAgent("ada", "m", "", domain.Position{X: 0, Y: 0})
	c, _ := newTestContext(t, self)

	res := handleSleep(c, nil)
	require.True(t, res.Success)
	require.True(t, self.Sleeping)

	res = handleSleep(c, nil)
	require.False(t, res.Success)
}

func TestRegistryDispatchesAllActions(t *testing.T) {
	r := NewRegistry()
	self := domain.NewAgent("ada", "m", "", domain.Position{X: 0, Y: 0})
	c, _ := newTestContext(t, self)
	for _, name := range domain.AllActions {
		res := r.Dispatch(c, domain.ActionCall{Name: name, Args: map[string]any{}})
		require.NotNil(t, res)
	}
}
