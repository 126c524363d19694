package extract

import (
	"regexp"
	"strings"
	"sync"

	"recipe-ingest/internal/core/ingredient"
)

var (
	bulletPattern = regexp.MustCompile(`^\s*[-*•▪◦·‣]`)
	// 編號步驟 "1. Preheat"、"2) Mix"
	numberedStepPattern = regexp.MustCompile(`^\s*\d+[.)]\s`)
	// 開頭數量，後面必須接空白，"1." 不算
	leadingQuantityPattern = regexp.MustCompile(`^\s*(?:\d+(?:\.\d+)?(?:/\d+)?(?:\s+\d+/\d+)?[½⅓⅔¼¾⅕⅖⅗⅘⅙⅚⅛⅜⅝⅞]?|[½⅓⅔¼¾⅕⅖⅗⅘⅙⅚⅛⅜⅝⅞])\s`)

	metadataPattern = regexp.MustCompile(`(?i)^\W*(?:(?:prep(?:aration)?|cook(?:ing)?|total|active|inactive|rest(?:ing)?|bak(?:e|ing)|chill(?:ing)?)\s*time|servings?|serves|yield|makes|calories|author|source|course|cuisine|category|difficulty|keywords?)\s*:`)
	urlPattern      = regexp.MustCompile(`(?i)^(?:https?://|www\.)\S+$`)

	ingredientPrefix  = regexp.MustCompile(`^\s*(?:[-*•▪◦·‣]+|\d+[.)](?:\s|$))\s*`)
	instructionPrefix = regexp.MustCompile(`(?i)^\s*(?:step\s*\d+\s*[:.)-]?|\d+[.)](?:\s|$)|[-*•▪◦·‣]+)\s*`)
	markdownHeading   = regexp.MustCompile(`^\s*#+\s*`)
	forThePattern     = regexp.MustCompile(`(?i)^for\s+(?:the\s+)?[^\d]+:?$`)
)

// Classifier 判斷沒有段落資訊的單行是否像食材
type Classifier struct {
	unitKeywords *regexp.Regexp
}

var (
	defaultClassifierOnce sync.Once
	defaultClassifier     *Classifier
)

// NewClassifier 以 Registry 的單位關鍵字建立分類器；units 為 nil 時使用內建資料表
func NewClassifier(units *ingredient.Registry) *Classifier {
	if units == nil {
		units = ingredient.Default()
	}
	keywords := units.Keywords()
	quoted := make([]string, 0, len(keywords))
	for _, kw := range keywords {
		quoted = append(quoted, regexp.QuoteMeta(kw))
	}
	c := &Classifier{}
	if len(quoted) > 0 {
		c.unitKeywords = regexp.MustCompile(`(?i)\b(?:` + strings.Join(quoted, "|") + `)\b`)
	}
	return c
}

func classifier() *Classifier {
	defaultClassifierOnce.Do(func() {
		defaultClassifier = NewClassifier(nil)
	})
	return defaultClassifier
}

// IsIngredientLike 使用內建資料表判斷
func IsIngredientLike(line string) bool {
	return classifier().IsIngredientLike(line)
}

// IsIngredientLike 項目符號、開頭數量或含單位關鍵字的行視為食材；
// 中繼資料、網址與編號步驟一律不是
func (c *Classifier) IsIngredientLike(line string) bool {
	line = strings.TrimSpace(line)
	if line == "" || IsMetadataLine(line) || numberedStepPattern.MatchString(line) {
		return false
	}
	if bulletPattern.MatchString(line) {
		return true
	}
	if leadingQuantityPattern.MatchString(line + " ") {
		return true
	}
	return c.unitKeywords != nil && c.unitKeywords.MatchString(line)
}

// IsMetadataLine 準備時間、份量等中繼資料或單獨的網址
func IsMetadataLine(line string) bool {
	line = strings.TrimSpace(line)
	return metadataPattern.MatchString(line) || urlPattern.MatchString(line)
}

// isSubHeader 食材區塊中的小標題，例如 "Dry Ingredients:"、"For the dough:"
func isSubHeader(line string) bool {
	if markdownHeading.MatchString(line) {
		return true
	}
	if forThePattern.MatchString(line) {
		return true
	}
	return strings.HasSuffix(line, ":") && !strings.ContainsAny(line, "0123456789½¼¾⅓⅔⅛")
}

// cleanIngredientLine 去掉項目符號與編號
func cleanIngredientLine(line string) string {
	return strings.TrimSpace(ingredientPrefix.ReplaceAllString(strings.TrimSpace(line), ""))
}

// cleanInstructionLine 去掉步驟編號與項目符號
func cleanInstructionLine(line string) string {
	return strings.TrimSpace(instructionPrefix.ReplaceAllString(strings.TrimSpace(line), ""))
}

// cleanTitle 去掉 markdown 標題符號
func cleanTitle(line string) string {
	return strings.TrimSpace(markdownHeading.ReplaceAllString(line, ""))
}
