package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"recipe-ingest/internal/core/ingredient"
	"recipe-ingest/internal/core/shopping"
)

// ShoppingListRequest 餐點計畫，keyBy 可為 "unit"（預設）或 "canonicalUnit"
type ShoppingListRequest struct {
	shopping.MealPlan
	KeyBy string `json:"keyBy"`
}

// ShoppingHandler 購物清單
type ShoppingHandler struct {
	normalizer *ingredient.Normalizer
	debug      bool
}

// NewShoppingHandler 創建購物清單處理程序
func NewShoppingHandler(units *ingredient.Registry, debug bool) *ShoppingHandler {
	return &ShoppingHandler{normalizer: ingredient.NewNormalizer(units), debug: debug}
}

// HandleShoppingList POST /shopping-list
func (h *ShoppingHandler) HandleShoppingList(c *gin.Context) {
	var req ShoppingListRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err, h.debug)
		return
	}

	keyBy := req.KeyBy
	if q := c.Query("keyBy"); q != "" {
		keyBy = q
	}
	mode, ok := shopping.ParseKeyMode(keyBy)
	if !ok {
		badRequest(c, fmt.Errorf("unknown keyBy %q", keyBy), h.debug)
		return
	}

	plan := req.MealPlan
	if mode == shopping.KeyCanonicalUnit {
		// 標準化單位後才能跨單位合併
		for d := range plan.Days {
			for r := range plan.Days[d].Recipes {
				recipe := &plan.Days[d].Recipes[r].Recipe
				recipe.Ingredients = h.normalizer.NormalizeAll(recipe.Ingredients)
			}
		}
	}

	c.JSON(http.StatusOK, shopping.BuildResponse(plan, mode))
}
