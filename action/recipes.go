package action

import (
	"github.com/google/uuid"

	"github.com/townloop/engine/domain"
)

// RecipeTable is the data-driven crafting lookup consulted by
// combine/work/apply, keyed by (action, sorted inputs, technique).
type RecipeTable struct {
	byKey map[domain.RecipeKey]domain.Recipe
}

// NewRecipeTable builds a lookup table from a flat recipe list, typically
// DefaultRecipes.
func NewRecipeTable(recipes []domain.Recipe) *RecipeTable {
	t := &RecipeTable{byKey: map[domain.RecipeKey]domain.Recipe{}}
	for _, r := range recipes {
		t.byKey[r.Key()] = r
	}
	return t
}

// Lookup finds an exact match. ok is false on a miss.
func (t *RecipeTable) Lookup(action domain.RecipeAction, inputs []domain.ResourceKind, technique string) (domain.Recipe, bool) {
	r, ok := t.byKey[domain.RecipeKeyFor(action, inputs, technique)]
	return r, ok
}

// PartialMatchHints returns the output kinds of every recipe that shares
// at least one input kind with the attempted inputs, used to hint the
// reasoner on a miss. Recipes are not restricted to the attempted action:
// an agent fumbling a combine call still benefits from being told that
// one of its inputs is useful to work or apply, since the closed action
// vocabulary means a single resource kind is often only consumed by a
// recipe in a different action family. Same-action recipes are sorted
// first, since they're the likeliest fix for what the agent was trying
// to do.
func (t *RecipeTable) PartialMatchHints(action domain.RecipeAction, inputs []domain.ResourceKind) []string {
	attempted := map[domain.ResourceKind]bool{}
	for _, k := range inputs {
		attempted[k] = true
	}
	seen := map[string]bool{}
	var sameAction, otherAction []string
	for _, r := range t.byKey {
		for _, in := range r.Inputs {
			if attempted[in] && !seen[r.OutputKind] {
				seen[r.OutputKind] = true
				if r.Action == action {
					sameAction = append(sameAction, r.OutputKind)
				} else {
					otherAction = append(otherAction, r.OutputKind)
				}
				break
			}
		}
	}
	return append(sameAction, otherAction...)
}

// DefaultRecipes is the seed crafting table: raw resources gathered from
// terrain (wood, stone, clay, grass_fiber) combine and are worked into
// planks and simple tools. The recipe set itself is a design choice left
// open by the closed action vocabulary, which only fixes the recipe
// shape (action, inputs, technique) -> (output kind, quantity).
var DefaultRecipes = []domain.Recipe{
	{
		Action: domain.RecipeWork, Inputs: []domain.ResourceKind{domain.ResourceWood}, Technique: "saw",
		OutputKind: "planks", OutputQuantity: 2, OutputStackable: true,
	},
	{
		Action: domain.RecipeCombine, Inputs: []domain.ResourceKind{domain.ResourceGrassFiber, domain.ResourceGrassFiber}, Technique: "",
		OutputKind: "cord", OutputQuantity: 1, OutputStackable: true,
	},
	{
		Action: domain.RecipeCombine, Inputs: []domain.ResourceKind{domain.ResourceClay, domain.ResourceStone}, Technique: "",
		OutputKind: "kiln_brick", OutputQuantity: 1, OutputStackable: true,
		Discoveries: []string{"clay hardens when paired with stone"},
	},
	{
		Action: domain.RecipeWork, Inputs: []domain.ResourceKind{domain.ResourceStone}, Technique: "knap",
		OutputKind: "stone_tool", OutputQuantity: 1, OutputStackable: false,
		Properties: map[string]string{"durability": "3"},
	},
	{
		Action: domain.RecipeApply, Inputs: []domain.ResourceKind{domain.ResourceWood}, Technique: "stone_tool",
		OutputKind: "planks", OutputQuantity: 1, OutputStackable: true,
		Discoveries: []string{"a stone tool splits wood into planks without a saw"},
	},
}

// handleCombine consults the recipe table for the "combine" action.
func handleCombine(c *Context, args map[string]any) domain.ActionResult {
	return craft(c, domain.RecipeCombine, args)
}

// handleWork consults the recipe table for the "work" action; it takes a
// single material plus an optional technique.
func handleWork(c *Context, args map[string]any) domain.ActionResult {
	return craft(c, domain.RecipeWork, args)
}

// handleApply consults the recipe table for the "apply" action, where the
// tool (technique) is not itself consumed.
func handleApply(c *Context, args map[string]any) domain.ActionResult {
	return craft(c, domain.RecipeApply, args)
}

func craft(c *Context, recipeAction domain.RecipeAction, args map[string]any) domain.ActionResult {
	inputs := extractInputs(args)
	technique, _ := argString(args, "technique")
	if len(inputs) == 0 {
		return domain.Failf("%s requires at least one input material", recipeAction)
	}
	for _, in := range inputs {
		if !c.Self.Inventory.Has(in, countOf(inputs, in)) {
			return domain.Failf("insufficient %s", in)
		}
	}
	recipe, ok := c.Recipes.Lookup(recipeAction, inputs, technique)
	if !ok {
		hints := c.Recipes.PartialMatchHints(recipeAction, inputs)
		return domain.ActionResult{Success: false, Message: "no matching recipe", Data: map[string]any{"hints": hints}}
	}

	// The tool named by `technique` in an apply call is never part of
	// inputs, so the consumption count is the same for every recipe kind:
	// every listed input is consumed.
	consumed := map[string]any{}
	for _, in := range inputs {
		n, _ := consumed[string(in)].(int)
		consumed[string(in)] = n + 1
	}

	data := map[string]any{
		"agent": c.Self.Name, "output_kind": recipe.OutputKind, "quantity": recipe.OutputQuantity,
		"stackable": recipe.OutputStackable, "consumed": consumed,
	}
	if !recipe.OutputStackable {
		data["item_id"] = uuid.NewString()
		data["properties"] = recipe.Properties
	}
	ev := domain.NewEvent(c.Tick, domain.EventCraftSucceeded, data)

	for kind, n := range consumed {
		qty, _ := n.(int)
		c.Self.Inventory.Add(domain.ResourceKind(kind), -qty)
	}
	if recipe.OutputStackable {
		c.Self.Inventory.Add(domain.ResourceKind(recipe.OutputKind), recipe.OutputQuantity)
	} else {
		item := domain.Item{UniqueID: data["item_id"].(string), Kind: recipe.OutputKind, Properties: recipe.Properties}
		c.Self.Inventory.AddItem(item)
	}

	return domain.Ok("crafted "+recipe.OutputKind, []domain.Event{ev}, map[string]any{"discoveries": recipe.Discoveries})
}

func countOf(inputs []domain.ResourceKind, kind domain.ResourceKind) int {
	n := 0
	for _, in := range inputs {
		if in == kind {
			n++
		}
	}
	return n
}

func extractInputs(args map[string]any) []domain.ResourceKind {
	raw, ok := args["inputs"].([]any)
	if !ok {
		if single, ok := argString(args, "material"); ok {
			return []domain.ResourceKind{domain.ResourceKind(single)}
		}
		return nil
	}
	out := make([]domain.ResourceKind, 0, len(raw))
	for _, v := range raw {
		if s, ok := v.(string); ok {
			out = append(out, domain.ResourceKind(s))
		}
	}
	return out
}
