package ingredient

import (
	"fmt"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseQuantity(t *testing.T) {
	tests := []struct {
		line     string
		want     float64
		wantRest string
		wantOK   bool
	}{
		{"2 eggs", 2, "eggs", true},
		{"1.5 cups flour", 1.5, "cups flour", true},
		{"1/2 cup milk", 0.5, "cup milk", true},
		{"1 1/2 cups milk", 1.5, "cups milk", true},
		{"½ cup sugar", 0.5, "cup sugar", true},
		{"1½ cups sugar", 1.5, "cups sugar", true},
		{"2 ¼ tsp yeast", 2.25, "tsp yeast", true},
		{"2-3 cloves garlic", 2, "cloves garlic", true},
		{".5 tsp salt", 0.5, "tsp salt", true},
		{"1/0 cup water", 0, "1/0 cup water", false},
		{"1 1/0 cup water", 0, "1 1/0 cup water", false},
		{"salt to taste", 0, "salt to taste", false},
		{"", 0, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			q, rest, ok := ParseQuantity(strings.Fields(tt.line))
			assert.Equal(t, tt.wantOK, ok)
			assert.InDelta(t, tt.want, q, 1e-9)
			assert.Equal(t, tt.wantRest, strings.Join(rest, " "))
		})
	}
}

func TestParseQuantityMixedFractionRoundTrip(t *testing.T) {
	for a := 1; a <= 12; a++ {
		for b := 1; b <= 7; b++ {
			for c := 1; c <= 9; c++ {
				line := fmt.Sprintf("%d %d/%d cup flour", a, b, c)
				q, rest, ok := ParseQuantity(strings.Fields(line))
				require.True(t, ok, line)
				assert.InDelta(t, float64(a)+float64(b)/float64(c), q, 1e-9, line)
				assert.Equal(t, []string{"cup", "flour"}, rest, line)
			}
		}
	}
}

func FuzzParseQuantity(f *testing.F) {
	for _, seed := range []string{
		"1 1/2 cups milk", "½", "1½ cups", "2 ¼ tsp", "1/0", "1 0/00 cup", ".5", "2-3 cloves",
		"", "\xff\xfe", "1 \xbd", "99999999999999999999999999999999 cups", "NaN cups", "-1 cup",
	} {
		f.Add(seed)
	}

	f.Fuzz(func(t *testing.T, line string) {
		tokens := strings.Fields(line)
		q, rest, ok := ParseQuantity(tokens)

		assert.False(t, math.IsNaN(q) || math.IsInf(q, 0), "quantity %v", q)
		assert.GreaterOrEqual(t, q, 0.0)
		require.LessOrEqual(t, len(rest), len(tokens))
		// rest 一定是 tokens 的後段
		assert.Equal(t, tokens[len(tokens)-len(rest):], rest)
		if !ok {
			assert.Zero(t, q)
			assert.Equal(t, tokens, rest)
		}
	})
}
