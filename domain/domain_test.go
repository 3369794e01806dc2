package domain

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPositionOrdering(t *testing.T) {
	require.True(t, Position{X: 1, Y: 0}.Less(Position{X: 0, Y: 1}))
	require.True(t, Position{X: 0, Y: 0}.Less(Position{X: 1, Y: 0}))
	require.False(t, Position{X: 1, Y: 1}.Less(Position{X: 1, Y: 1}))
}

func TestDirectionOpposite(t *testing.T) {
	require.Equal(t, South, North.Opposite())
	require.Equal(t, West, East.Opposite())
}

func TestChebyshevAndBuckets(t *testing.T) {
	p := Position{X: 0, Y: 0}
	require.Equal(t, 5, p.ChebyshevDistance(Position{X: 5, Y: 3}))
	require.Equal(t, DistanceNearby, BucketFor(10))
	require.Equal(t, DistanceFar, BucketFor(11))
	require.Equal(t, DistanceFar, BucketFor(30))
	require.Equal(t, DistanceVeryFar, BucketFor(31))
}

func TestDirectionBucket(t *testing.T) {
	p := Position{X: 5, Y: 5}
	bucket, ok := p.DirectionBucket(Position{X: 10, Y: 0})
	require.True(t, ok)
	require.Equal(t, "NE", bucket)

	_, ok = p.DirectionBucket(p)
	require.False(t, ok)
}

func TestCellSparseDefault(t *testing.T) {
	c := DefaultCell()
	require.True(t, c.IsDefault())

	c2 := c.Clone()
	c2.Walls[North] = true
	require.False(t, c2.IsDefault())
	require.True(t, c.IsDefault(), "clone must not mutate original")
}

func TestCellDoorImpliesWallInvariant(t *testing.T) {
	c := DefaultCell()
	c.Doors[North] = true
	require.False(t, c.Valid(), "door without wall must be invalid")
	c.Walls[North] = true
	require.True(t, c.Valid())
}

func TestTerrainGatherable(t *testing.T) {
	kind, ok := TerrainForest.GatherableResource()
	require.True(t, ok)
	require.Equal(t, ResourceWood, kind)

	_, ok = TerrainWater.GatherableResource()
	require.False(t, ok)
	require.False(t, TerrainWater.Passable())
}

func TestTimeOfDayCycle(t *testing.T) {
	require.Equal(t, Morning, TimeOfDayForTick(0))
	require.Equal(t, Afternoon, TimeOfDayForTick(1))
	require.Equal(t, Night, TimeOfDayForTick(3))
	require.Equal(t, Morning, TimeOfDayForTick(4))
}

func TestInventoryNeverNegative(t *testing.T) {
	inv := NewInventory()
	inv.Add(ResourceWood, 2)
	require.True(t, inv.Has(ResourceWood, 2))
	require.True(t, inv.Valid())
	inv.Add(ResourceWood, -3)
	require.False(t, inv.Valid(), "test helper intentionally violates invariant to assert detection")
}

func TestJourneyValid(t *testing.T) {
	start := Position{X: 0, Y: 0}
	j := Journey{Destination: Position{X: 2, Y: 0}, Path: []Position{
		{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 2, Y: 0},
	}}
	require.True(t, j.Valid(start))

	bad := Journey{Path: []Position{{X: 0, Y: 0}, {X: 2, Y: 0}}}
	require.False(t, bad.Valid(start))
}

func TestConversationLifecycle(t *testing.T) {
	c := NewConversation("c1", PrivacyPublic, 1, "A", "B")
	require.Len(t, c.Participants, 2)

	c.AddTurn("A", "hello", 2)
	require.Len(t, c.UnseenTurns("B"), 1)
	c.MarkSeen("B", 2)
	require.Empty(t, c.UnseenTurns("B"))

	ended := c.Leave("A", 3)
	require.False(t, ended)
	ended = c.Leave("B", 3)
	require.True(t, ended)
	require.True(t, c.Ended())
}

func TestInvitationExpiry(t *testing.T) {
	inv := Invitation{Status: InvitationPending, CreatedTick: 1}
	require.False(t, inv.Expired(2, 2))
	require.True(t, inv.Expired(3, 2))
}

func TestRecipeKeyOrderIndependent(t *testing.T) {
	k1 := RecipeKeyFor(RecipeCombine, []ResourceKind{ResourceWood, ResourceClay}, "")
	k2 := RecipeKeyFor(RecipeCombine, []ResourceKind{ResourceClay, ResourceWood}, "")
	require.Equal(t, k1, k2)
}
