package ingredient

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseIngredient(t *testing.T) {
	tests := []struct {
		line string
		want ParsedIngredient
	}{
		{"1 1/2 cups milk", ParsedIngredient{Name: "milk", Quantity: 1.5, Unit: "cups"}},
		{"2 eggs", ParsedIngredient{Name: "eggs", Quantity: 2}},
		{"2 Tbsp. butter, softened", ParsedIngredient{Name: "butter", Quantity: 2, Unit: "tbsp", Notes: "softened"}},
		{"3 cloves garlic (minced)", ParsedIngredient{Name: "garlic", Quantity: 3, Unit: "cloves", Notes: "minced"}},
		{"2 cups of flour", ParsedIngredient{Name: "flour", Quantity: 2, Unit: "cups"}},
		{"4 fl oz cream", ParsedIngredient{Name: "cream", Quantity: 4, Unit: "floz"}},
		{"pinch of salt", ParsedIngredient{Name: "salt", Unit: "pinch"}},
		{"Dash hot sauce", ParsedIngredient{Name: "hot sauce", Unit: "dash"}},
		{"salt to taste", ParsedIngredient{Name: "salt to taste"}},
		{"cup sugar", ParsedIngredient{Name: "sugar", Unit: "cup"}},
		{"Tbsp butter, softened", ParsedIngredient{Name: "butter", Unit: "tbsp", Notes: "softened"}},
		{"handful of basil leaves", ParsedIngredient{Name: "basil leaves", Unit: "handful"}},
		{"fl oz cream", ParsedIngredient{Name: "cream", Unit: "floz"}},
		{"C sugar", ParsedIngredient{Name: "C sugar"}},
		{"cup", ParsedIngredient{Name: "cup"}},
		{"black pepper, freshly ground", ParsedIngredient{Name: "black pepper", Notes: "freshly ground"}},
		{"   ", ParsedIngredient{}},
		{"", ParsedIngredient{}},
	}

	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseIngredient(tt.line))
		})
	}
}

func TestParseIngredientNoQuantityIsNotZeroMeasure(t *testing.T) {
	salt := ParseIngredient("salt to taste")
	assert.False(t, salt.HasQuantity())

	pinch := ParseIngredient("pinch of salt")
	assert.True(t, pinch.HasQuantity())
}

func TestParseUnitWithoutQuantityNormalizes(t *testing.T) {
	got := NormalizeParsedIngredient(ParseIngredient("cup sugar"))

	assert.Equal(t, "sugar", got.Name)
	assert.Equal(t, 0.0, got.Quantity)
	assert.Equal(t, "cup", got.Unit)
	assert.Equal(t, "g", got.CanonicalUnit)
	assert.Nil(t, got.CanonicalQuantity)
}

func FuzzParseIngredient(f *testing.F) {
	for _, seed := range []string{
		"1 1/2 cups milk", "2 Tbsp. butter, softened", "pinch of salt", "cup sugar", "fl oz",
		"½", "1/0 cup water", "", "   ", "\xff\xfe", "(", ",", "3 cloves garlic (minced",
	} {
		f.Add(seed)
	}

	n := NewNormalizer(nil)
	f.Fuzz(func(t *testing.T, line string) {
		got := ParseIngredient(line)

		assert.False(t, math.IsNaN(got.Quantity) || math.IsInf(got.Quantity, 0), "quantity %v", got.Quantity)
		assert.GreaterOrEqual(t, got.Quantity, 0.0)
		if got.Unit != "" {
			assert.True(t, Default().IsUnit(got.Unit), "unit %q", got.Unit)
		}

		norm := n.Normalize(got)
		assert.Equal(t, got.Name, norm.Name)
		assert.Equal(t, got.Quantity, norm.Quantity)
		if norm.CanonicalQuantity != nil {
			assert.False(t, math.IsNaN(*norm.CanonicalQuantity))
		}
	})
}
