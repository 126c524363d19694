package shopping

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"recipe-ingest/internal/core/ingredient"
)

func assign(serves float64, lines ...string) Assignment {
	ings := make([]ingredient.ParsedIngredient, 0, len(lines))
	for _, l := range lines {
		ings = append(ings, ingredient.ParseIngredient(l))
	}
	return Assignment{ServeCount: &serves, Recipe: Recipe{Ingredients: ings}}
}

func TestAggregatePastaAcrossDays(t *testing.T) {
	plan := MealPlan{Days: []Day{
		{Date: "2026-01-05", Recipes: []Assignment{assign(1, "1 lb pasta")}},
		{Date: "2026-01-06", Recipes: []Assignment{assign(1, "2 lb pasta")}},
	}}

	items := Aggregate(plan)

	require.Len(t, items, 1)
	assert.Equal(t, Item{Name: "pasta", Quantity: 3, Unit: "lb"}, items[0])
}

func TestAggregateServeCount(t *testing.T) {
	unset := assign(1, "1 lb pasta")
	unset.ServeCount = nil

	plan := MealPlan{Days: []Day{
		{Recipes: []Assignment{assign(0, "1 lb pasta"), assign(2, "1 lb pasta")}},
		{Recipes: []Assignment{unset, assign(-1, "5 lb pasta")}},
	}}

	items := Aggregate(plan)

	// 0 與負數不計入，未提供視為 1
	require.Len(t, items, 1)
	assert.Equal(t, Item{Name: "pasta", Quantity: 3, Unit: "lb"}, items[0])
}

func TestAssignmentServeCountJSON(t *testing.T) {
	var plan MealPlan
	require.NoError(t, json.Unmarshal([]byte(`{"days":[{"recipes":[
		{"recipe":{"id":"a"}},
		{"serveCount":0,"recipe":{"id":"b"}},
		{"serveCount":2.5,"recipe":{"id":"c"}}
	]}]}`), &plan))

	recipes := plan.Days[0].Recipes
	require.Len(t, recipes, 3)
	assert.Equal(t, 1.0, recipes[0].Serves())
	assert.Equal(t, 0.0, recipes[1].Serves())
	assert.Equal(t, 2.5, recipes[2].Serves())
}

func TestAggregateKeysOnNameAndLiteralUnit(t *testing.T) {
	plan := MealPlan{Days: []Day{{Recipes: []Assignment{
		assign(1, "1 cup sugar", "240 ml sugar", "1 cup Sugar, sifted"),
		assign(2, "1 cup sugar, packed", "2 eggs"),
	}}}}

	items := Aggregate(plan)

	assert.Equal(t, []Item{
		{Name: "eggs", Quantity: 4},
		{Name: "sugar", Quantity: 4, Unit: "cup"},
		{Name: "sugar", Quantity: 240, Unit: "ml"},
	}, items)
}

func TestAggregateSumInvariant(t *testing.T) {
	plan := MealPlan{Days: []Day{
		{Recipes: []Assignment{assign(2, "3 tbsp oil"), assign(0.5, "1 tbsp oil")}},
		{Recipes: []Assignment{assign(3, "1 tbsp Oil", "1 onion")}},
	}}

	var want float64
	for _, day := range plan.Days {
		for _, a := range day.Recipes {
			for _, ing := range a.Recipe.Ingredients {
				if ing.Unit == "tbsp" {
					want += ing.Quantity * a.Serves()
				}
			}
		}
	}

	items := Aggregate(plan)

	require.Len(t, items, 2)
	assert.Equal(t, "oil", items[0].Name)
	assert.InDelta(t, want, items[0].Quantity, 1e-9)
	assert.Equal(t, "onion", items[1].Name)
}

func TestAggregateFirstNotesWin(t *testing.T) {
	plan := MealPlan{Days: []Day{{Recipes: []Assignment{
		assign(1, "2 cloves garlic, minced"),
		assign(1, "1 clove garlic (sliced)"),
	}}}}

	items := Aggregate(plan)

	// cloves 與 clove 是不同的單位字串
	require.Len(t, items, 2)
	assert.Equal(t, "minced", items[0].Notes)

	plan.Days[0].Recipes[1] = assign(1, "3 cloves garlic (sliced)")
	items = Aggregate(plan)
	require.Len(t, items, 1)
	assert.Equal(t, 5.0, items[0].Quantity)
	assert.Equal(t, "minced", items[0].Notes)
}

func TestAggregateSortsWithCollation(t *testing.T) {
	plan := MealPlan{Days: []Day{{Recipes: []Assignment{
		assign(1, "1 zucchini", "1 Éclair", "1 apple", "1 banana"),
	}}}}

	items := Aggregate(plan)

	names := make([]string, 0, len(items))
	for _, it := range items {
		names = append(names, it.Name)
	}
	assert.Equal(t, []string{"apple", "banana", "Éclair", "zucchini"}, names)
}

func TestAggregateByCanonicalUnit(t *testing.T) {
	n := ingredient.NewNormalizer(nil)
	plan := MealPlan{Days: []Day{{Recipes: []Assignment{{
		Recipe: Recipe{Ingredients: n.NormalizeAll([]ingredient.ParsedIngredient{
			ingredient.ParseIngredient("1 cup water"),
			ingredient.ParseIngredient("240 ml water"),
		})},
	}}}}}

	assert.Len(t, AggregateBy(plan, KeyUnit), 2)

	items := AggregateBy(plan, KeyCanonicalUnit)
	require.Len(t, items, 1)
	assert.Equal(t, "g", items[0].Unit)
	assert.InDelta(t, 480.0, items[0].Quantity, 1e-9)
}

func TestBuildResponse(t *testing.T) {
	plan := MealPlan{ID: "plan-1", Name: "Week 1"}

	resp := BuildResponse(plan, KeyUnit)

	assert.Equal(t, "plan-1", resp.MealPlanID)
	assert.Equal(t, "Week 1", resp.MealPlanName)
	assert.NotNil(t, resp.ShoppingList)
	assert.Zero(t, resp.TotalItems)
}

func TestParseKeyMode(t *testing.T) {
	mode, ok := ParseKeyMode("canonicalUnit")
	assert.True(t, ok)
	assert.Equal(t, KeyCanonicalUnit, mode)

	mode, ok = ParseKeyMode("")
	assert.True(t, ok)
	assert.Equal(t, KeyUnit, mode)

	_, ok = ParseKeyMode("grams")
	assert.False(t, ok)
}
