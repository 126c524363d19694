package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func page(scripts ...string) string {
	html := "<html><head><title>Recipe</title>"
	for _, s := range scripts {
		html += `<script type="application/ld+json">` + s + "</script>"
	}
	return html + "</head><body><p>Hello</p></body></html>"
}

func TestExtractJSONLD(t *testing.T) {
	raw := page(`{"@context":"https://schema.org","@type":"Recipe","name":" Pancakes ",
		"recipeIngredient":["1 cup flour","1 egg"],
		"recipeInstructions":[{"@type":"HowToStep","text":"Mix"},{"@type":"HowToStep","text":"Fry"}]}`)

	recipe := ExtractJSONLD(raw)

	require.NotNil(t, recipe)
	assert.Equal(t, ExtractedRecipe{
		Name:         "Pancakes",
		Ingredients:  []string{"1 cup flour", "1 egg"},
		Instructions: "Mix\nFry",
	}, *recipe)
}

func TestExtractJSONLDSkipsBadBlock(t *testing.T) {
	raw := page(`{"@type": "Recipe", "name": `, `{"@type":"Recipe","name":"Soup","recipeInstructions":"Simmer"}`)

	recipe := ExtractJSONLD(raw)

	require.NotNil(t, recipe)
	assert.Equal(t, "Soup", recipe.Name)
	assert.Equal(t, "Simmer", recipe.Instructions)
	assert.NotNil(t, recipe.Ingredients)
}

func TestExtractJSONLDGraphAndTypeArray(t *testing.T) {
	raw := page(`{"@context":"https://schema.org","@graph":[
		{"@type":"WebPage","name":"Site"},
		{"@type":["Recipe","NewsArticle"],"name":"Mac &amp; Cheese","recipeIngredient":["2 cups macaroni",{"bad":true},3]}
	]}`)

	recipe := ExtractJSONLD(raw)

	require.NotNil(t, recipe)
	assert.Equal(t, "Mac & Cheese", recipe.Name)
	assert.Equal(t, []string{"2 cups macaroni"}, recipe.Ingredients)
}

func TestExtractJSONLDHowToSections(t *testing.T) {
	raw := page(`[{"@type":"Organization"},{"@type":"recipe","name":"Cake",
		"recipeInstructions":[
			{"@type":"HowToSection","name":"Batter","itemListElement":[{"@type":"HowToStep","text":"Whisk"},{"@type":"HowToStep","name":"Pour"}]},
			{"@type":"HowToSection","name":"Frosting","itemListElement":[{"@type":"HowToStep","text":"Beat butter"}]}
		]}]`)

	recipe := ExtractJSONLD(raw)

	require.NotNil(t, recipe)
	assert.Equal(t, "Whisk\nPour\nBeat butter", recipe.Instructions)
}

func TestExtractJSONLDLegacyIngredientsAndCommentWrapper(t *testing.T) {
	raw := page(`<!-- {"@type":"Recipe","name":"Toast","ingredients":["1 slice bread"],"recipeInstructions":["Toast it"]} -->`)

	recipe := ExtractJSONLD(raw)

	require.NotNil(t, recipe)
	assert.Equal(t, []string{"1 slice bread"}, recipe.Ingredients)
	assert.Equal(t, "Toast it", recipe.Instructions)
}

func TestExtractJSONLDNoRecipe(t *testing.T) {
	assert.Nil(t, ExtractJSONLD(page(`{"@type":"WebSite","name":"Blog"}`)))
	assert.Nil(t, ExtractJSONLD("<html><body>No data</body></html>"))
	assert.Nil(t, ExtractJSONLD(""))
}

func TestExtractJSONLDStringInstructions(t *testing.T) {
	raw := page(`{"@type":"Recipe","name":"Lemon Water","recipeIngredient":["1 cup water","2 lemons"],"recipeInstructions":["Boil water","Add lemons"]}`)

	recipe := ExtractJSONLD(raw)

	require.NotNil(t, recipe)
	assert.Equal(t, "Lemon Water", recipe.Name)
	assert.Equal(t, []string{"1 cup water", "2 lemons"}, recipe.Ingredients)
	assert.Equal(t, "Boil water\nAdd lemons", recipe.Instructions)
}
