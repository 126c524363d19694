package shopping

import (
	"sort"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"recipe-ingest/internal/core/ingredient"
)

// Aggregate 以 (小寫名稱, 單位) 合併整個計畫的食材並依名稱排序
func Aggregate(plan MealPlan) []Item {
	return AggregateBy(plan, KeyUnit)
}

// AggregateBy 依指定的 KeyMode 合併
//
// 第一次出現的項目決定名稱與備註，之後相同鍵值只累加數量。
func AggregateBy(plan MealPlan, mode KeyMode) []Item {
	index := make(map[string]int)
	items := make([]Item, 0)

	for _, day := range plan.Days {
		for _, assignment := range day.Recipes {
			serves := assignment.Serves()
			for _, ing := range assignment.Recipe.Ingredients {
				unit, quantity := keyFields(ing, mode)
				key := strings.ToLower(ing.Name) + "-" + unit
				if i, ok := index[key]; ok {
					items[i].Quantity += quantity * serves
					continue
				}
				index[key] = len(items)
				items = append(items, Item{
					Name:     ing.Name,
					Quantity: quantity * serves,
					Unit:     unit,
					Notes:    ing.Notes,
				})
			}
		}
	}

	// collate.Collator 不可跨 goroutine 共用，每次呼叫各自建立
	c := collate.New(language.Und, collate.IgnoreCase)
	sort.SliceStable(items, func(i, j int) bool {
		return c.CompareString(items[i].Name, items[j].Name) < 0
	})
	return items
}

func keyFields(ing ingredient.ParsedIngredient, mode KeyMode) (string, float64) {
	if mode == KeyCanonicalUnit && ing.CanonicalUnit != "" {
		if ing.CanonicalQuantity != nil {
			return ing.CanonicalUnit, *ing.CanonicalQuantity
		}
		return ing.CanonicalUnit, ing.Quantity
	}
	return ing.Unit, ing.Quantity
}

// BuildResponse 組成購物清單回應
func BuildResponse(plan MealPlan, mode KeyMode) Response {
	items := AggregateBy(plan, mode)
	return Response{
		MealPlanID:   plan.ID,
		MealPlanName: plan.Name,
		ShoppingList: items,
		TotalItems:   len(items),
	}
}
