package action

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/townloop/engine/domain"
)

func TestToolSchemaCoversExactlyTheClosedVocabulary(t *testing.T) {
	tools := ToolSchema()
	require.Len(t, tools, len(domain.AllActions))

	names := map[string]bool{}
	for _, tool := range tools {
		names[tool.Name] = true
		require.NotNil(t, tool.Parameters)
	}
	for _, name := range domain.AllActions {
		require.True(t, names[string(name)], "missing tool schema for %s", name)
	}
}

func TestRecipeLookupIsInputOrderIndependent(t *testing.T) {
	table := NewRecipeTable(DefaultRecipes)
	a, ok1 := table.Lookup(domain.RecipeCombine, []domain.ResourceKind{domain.ResourceClay, domain.ResourceStone}, "")
	b, ok2 := table.Lookup(domain.RecipeCombine, []domain.ResourceKind{domain.ResourceStone, domain.ResourceClay}, "")
	require.True(t, ok1)
	require.True(t, ok2)
	require.Equal(t, a.OutputKind, b.OutputKind)
}

func TestPartialMatchHintsOnMiss(t *testing.T) {
	table := NewRecipeTable(DefaultRecipes)
	hints := table.PartialMatchHints(domain.RecipeWork, []domain.ResourceKind{domain.ResourceWood})
	require.NotEmpty(t, hints)
}
