package ingredient

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultRegistry(t *testing.T) {
	reg := Default()

	assert.Equal(t, "tbsp", reg.Resolve("tablespoons"))
	assert.Equal(t, "tbsp", reg.Resolve("tbsp"))
	assert.True(t, reg.IsUnit("cups"))
	assert.False(t, reg.IsUnit("eggs"))

	kw := reg.Keywords()
	assert.Contains(t, kw, "tablespoons")
	assert.NotContains(t, kw, "can")
	assert.NotContains(t, kw, "c")
}

func TestNewRegistryRejectsInvalidTables(t *testing.T) {
	tests := map[string]string{
		"duplicate conversion": `
units: [{canonical: cup}]
conversions:
  - {unit: cup, target: ml, factor: 240}
  - {unit: cup, target: ml, factor: 250}
`,
		"bad target": `
units: [{canonical: cup}]
conversions: [{unit: cup, target: oz, factor: 8}]
`,
		"non canonical conversion": `
units: [{canonical: cup, aliases: [cups]}]
conversions: [{unit: cups, target: ml, factor: 240}]
`,
		"alias collision": `
units:
  - {canonical: tsp, aliases: [t]}
  - {canonical: tbsp, aliases: [t]}
`,
		"bad density": `
densities: [{keyword: sugar, density: 0}]
`,
	}

	for name, doc := range tests {
		t.Run(name, func(t *testing.T) {
			tables, err := LoadTables(strings.NewReader(doc))
			require.NoError(t, err)
			_, err = NewRegistry(tables)
			assert.Error(t, err)
		})
	}
}

func TestLoadRegistryFileExtendsDensities(t *testing.T) {
	doc := `
version: 99
units: [{canonical: cup, aliases: [cups]}]
conversions: [{unit: cup, target: ml, factor: 250}]
densities:
  - {keyword: molasses, density: 1.4}
`
	path := filepath.Join(t.TempDir(), "tables.yaml")
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))

	reg, err := LoadRegistryFile(path)
	require.NoError(t, err)
	assert.Equal(t, 99, reg.Version())

	got := NewNormalizer(reg).Normalize(ParsedIngredient{Name: "molasses", Quantity: 1, Unit: "cups"})
	require.NotNil(t, got.CanonicalQuantity)
	assert.Equal(t, "g", got.CanonicalUnit)
	assert.InDelta(t, 350, *got.CanonicalQuantity, 1e-9)
}

func TestLoadTablesRejectsUnknownFields(t *testing.T) {
	_, err := LoadTables(strings.NewReader("unitz: []\n"))
	assert.Error(t, err)
}
