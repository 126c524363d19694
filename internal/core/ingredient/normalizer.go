package ingredient

import (
	"math"
	"strings"
)

// Normalizer 單位標準化
type Normalizer struct {
	units *Registry
}

// NewNormalizer 創建標準化器；units 為 nil 時使用內建資料表
func NewNormalizer(units *Registry) *Normalizer {
	if units == nil {
		units = Default()
	}
	return &Normalizer{units: units}
}

// NormalizeParsedIngredient 使用內建資料表標準化
func NormalizeParsedIngredient(ing ParsedIngredient) ParsedIngredient {
	return NewNormalizer(nil).Normalize(ing)
}

// Normalize 填入 CanonicalUnit / CanonicalQuantity，原始的 Quantity 與 Unit 不變
func (n *Normalizer) Normalize(ing ParsedIngredient) ParsedIngredient {
	out := ing
	out.CanonicalUnit = ""
	out.CanonicalQuantity = nil

	canonical := n.units.Resolve(strings.ToLower(ing.Unit))
	if canonical == "" {
		return out
	}

	conv, ok := n.units.Conversion(canonical)
	if !ok {
		// 沒有數值換算（pinch、clove...），只保留標準寫法
		out.CanonicalUnit = canonical
		return out
	}

	out.CanonicalUnit = conv.TargetUnit
	// 體積換重量；沒有數量時也回報 g，讓同一食材的行能歸在同一單位
	density, hasDensity := 0.0, false
	if conv.TargetUnit == "ml" {
		density, hasDensity = n.units.Density(ing.Name)
		if hasDensity {
			out.CanonicalUnit = "g"
		}
	}
	if ing.Quantity <= 0 {
		return out
	}

	q := round2(ing.Quantity * conv.Factor)
	if hasDensity {
		q = round2(q * density)
	}
	out.CanonicalQuantity = &q

	return out
}

// NormalizeAll 逐一標準化
func (n *Normalizer) NormalizeAll(ings []ParsedIngredient) []ParsedIngredient {
	out := make([]ParsedIngredient, len(ings))
	for i, ing := range ings {
		out[i] = n.Normalize(ing)
	}
	return out
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
