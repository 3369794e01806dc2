package domain

// Terrain is one of the seven fixed terrain variants. Terrain never changes
// after world generation; only the cell's walls/doors/objects change at
// runtime.
type Terrain string

const (
	TerrainGrass  Terrain = "grass"
	TerrainWater  Terrain = "water"
	TerrainCoast  Terrain = "coast"
	TerrainSand   Terrain = "sand"
	TerrainStone  Terrain = "stone"
	TerrainForest Terrain = "forest"
	TerrainHill   Terrain = "hill"
)

// ResourceKind names a stackable inventory resource. Declared centrally here
// so the crafting recipe table and gather action agree on valid kinds.
type ResourceKind string

const (
	ResourceWood       ResourceKind = "wood"
	ResourceStone      ResourceKind = "stone"
	ResourceClay       ResourceKind = "clay"
	ResourceGrassFiber ResourceKind = "grass_fiber"
	ResourcePlanks     ResourceKind = "planks"
)

// terrainProperties describes the fixed, immutable properties of a terrain
// variant.
type terrainProperties struct {
	passable           bool
	gatherableResource ResourceKind
	hasResource        bool
}

var terrainTable = map[Terrain]terrainProperties{
	TerrainGrass:  {passable: true, gatherableResource: ResourceGrassFiber, hasResource: true},
	TerrainWater:  {passable: false},
	TerrainCoast:  {passable: true},
	TerrainSand:   {passable: true, gatherableResource: ResourceClay, hasResource: true},
	TerrainStone:  {passable: true, gatherableResource: ResourceStone, hasResource: true},
	TerrainForest: {passable: true, gatherableResource: ResourceWood, hasResource: true},
	TerrainHill:   {passable: true},
}

// Passable reports whether an agent may ever occupy this terrain, ignoring
// occupancy and walls.
func (t Terrain) Passable() bool {
	return terrainTable[t].passable
}

// GatherableResource returns the resource kind gather() yields on this
// terrain, and whether one exists at all.
func (t Terrain) GatherableResource() (ResourceKind, bool) {
	p := terrainTable[t]
	return p.gatherableResource, p.hasResource
}

// DefaultTerrain is the terrain sparse cells are assumed to have when not
// stored.
const DefaultTerrain = TerrainGrass

// Weather is one of the four weather variants tracked by WorldState.
type Weather string

const (
	WeatherClear  Weather = "clear"
	WeatherCloudy Weather = "cloudy"
	WeatherRainy  Weather = "rainy"
	WeatherFoggy  Weather = "foggy"
)

// TimeOfDay is derived from tick mod 4.
type TimeOfDay string

const (
	Morning   TimeOfDay = "morning"
	Afternoon TimeOfDay = "afternoon"
	Evening   TimeOfDay = "evening"
	Night     TimeOfDay = "night"
)

var timeOfDayCycle = [4]TimeOfDay{Morning, Afternoon, Evening, Night}

// TimeOfDayForTick derives the time-of-day bucket for a given tick.
func TimeOfDayForTick(tick int) TimeOfDay {
	return timeOfDayCycle[((tick%4)+4)%4]
}
