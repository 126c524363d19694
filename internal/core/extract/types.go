package extract

// ExtractedRecipe 尚未結構化的食譜，Ingredients 為原始食材行
type ExtractedRecipe struct {
	Name         string   `json:"name"`
	Ingredients  []string `json:"ingredients"`
	Instructions string   `json:"instructions"`
}

// Layout 文字中偵測到的段落標題組合
type Layout int

const (
	LayoutNoSections Layout = iota
	LayoutIngredientsOnly
	LayoutInstructionsOnly
	LayoutBoth
)

func (l Layout) String() string {
	switch l {
	case LayoutIngredientsOnly:
		return "ingredients-only"
	case LayoutInstructionsOnly:
		return "instructions-only"
	case LayoutBoth:
		return "both"
	default:
		return "no-sections"
	}
}

// 提示訊息，讓編輯畫面提醒使用者檢查
const (
	WarnNoTitle        = "no title detected"
	WarnNoIngredients  = "no ingredients detected"
	WarnNoInstructions = "no instructions detected"
	WarnHeuristic      = "no section headers found; ingredients were guessed line by line"
)
