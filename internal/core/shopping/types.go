package shopping

import "recipe-ingest/internal/core/ingredient"

// MealPlan 餐點計畫：天 → 指定的食譜 → 食材
type MealPlan struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Days []Day  `json:"days"`
}

// Day 某一天指定的食譜
type Day struct {
	Date    string       `json:"date"`
	Recipes []Assignment `json:"recipes"`
}

// Assignment 指定的食譜與份數倍率
//
// ServeCount 未提供時為 1；明確給 0 則這份食譜不計入。
type Assignment struct {
	ServeCount *float64 `json:"serveCount,omitempty"`
	Recipe     Recipe   `json:"recipe"`
}

// Serves 實際使用的倍率，負數視為 0
func (a Assignment) Serves() float64 {
	if a.ServeCount == nil {
		return 1
	}
	if *a.ServeCount < 0 {
		return 0
	}
	return *a.ServeCount
}

// Recipe 已儲存的食譜與其結構化食材
type Recipe struct {
	ID          string                        `json:"id"`
	Name        string                        `json:"name"`
	Ingredients []ingredient.ParsedIngredient `json:"ingredients"`
}

// Item 購物清單項目
type Item struct {
	Name     string  `json:"name"`
	Quantity float64 `json:"quantity"`
	Unit     string  `json:"unit"`
	Notes    string  `json:"notes,omitempty"`
}

// Response 購物清單回應
type Response struct {
	MealPlanID   string `json:"mealPlanId"`
	MealPlanName string `json:"mealPlanName"`
	ShoppingList []Item `json:"shoppingList"`
	TotalItems   int    `json:"totalItems"`
}

// KeyMode 合併項目時使用的單位
type KeyMode int

const (
	// KeyUnit 以原始單位字串合併，"cup" 與 "ml" 不會合併
	KeyUnit KeyMode = iota
	// KeyCanonicalUnit 以標準化後的單位合併，需先經過 Normalizer
	KeyCanonicalUnit
)

// ParseKeyMode 解析 API 參數，空字串為 KeyUnit
func ParseKeyMode(s string) (KeyMode, bool) {
	switch s {
	case "", "unit":
		return KeyUnit, true
	case "canonicalUnit", "canonical":
		return KeyCanonicalUnit, true
	default:
		return KeyUnit, false
	}
}

func (m KeyMode) String() string {
	if m == KeyCanonicalUnit {
		return "canonicalUnit"
	}
	return "unit"
}
