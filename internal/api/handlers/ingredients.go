package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"recipe-ingest/internal/core/ingredient"
)

// ParseIngredientsRequest 食材行
type ParseIngredientsRequest struct {
	Lines     []string `json:"lines" binding:"required"`
	Normalize bool     `json:"normalize"`
}

// NormalizeIngredientsRequest 已解析的食材
type NormalizeIngredientsRequest struct {
	Ingredients []ingredient.ParsedIngredient `json:"ingredients" binding:"required"`
}

// IngredientsResponse 解析或標準化後的食材
type IngredientsResponse struct {
	Ingredients []ingredient.ParsedIngredient `json:"ingredients"`
}

// IngredientHandler 食材解析與單位標準化
type IngredientHandler struct {
	parser     *ingredient.Parser
	normalizer *ingredient.Normalizer
	debug      bool
}

// NewIngredientHandler units 為 nil 時使用內建資料表
func NewIngredientHandler(units *ingredient.Registry, debug bool) *IngredientHandler {
	return &IngredientHandler{
		parser:     ingredient.NewParser(units),
		normalizer: ingredient.NewNormalizer(units),
		debug:      debug,
	}
}

// HandleParse POST /ingredients/parse
func (h *IngredientHandler) HandleParse(c *gin.Context) {
	var req ParseIngredientsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err, h.debug)
		return
	}

	out := make([]ingredient.ParsedIngredient, 0, len(req.Lines))
	for _, line := range req.Lines {
		ing := h.parser.Parse(line)
		if req.Normalize {
			ing = h.normalizer.Normalize(ing)
		}
		out = append(out, ing)
	}
	c.JSON(http.StatusOK, IngredientsResponse{Ingredients: out})
}

// HandleNormalize POST /ingredients/normalize
func (h *IngredientHandler) HandleNormalize(c *gin.Context) {
	var req NormalizeIngredientsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err, h.debug)
		return
	}
	c.JSON(http.StatusOK, IngredientsResponse{Ingredients: h.normalizer.NormalizeAll(req.Ingredients)})
}
