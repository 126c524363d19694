package ingredient

import (
	"regexp"
	"strings"
)

// ParsedIngredient 結構化的食材
//
// Quantity 為 0 且 Unit 為空代表「沒有可量測的數量」（例如 "salt to taste"），
// 與真正量到 0 的情況不同。Canonical* 欄位只由 Normalizer 填入。
type ParsedIngredient struct {
	Name              string   `json:"name"`
	Quantity          float64  `json:"quantity"`
	Unit              string   `json:"unit"`
	Notes             string   `json:"notes,omitempty"`
	CanonicalUnit     string   `json:"canonicalUnit,omitempty"`
	CanonicalQuantity *float64 `json:"canonicalQuantity,omitempty"`
}

// HasQuantity 是否偵測到可量測的數量
func (p ParsedIngredient) HasQuantity() bool {
	return p.Quantity > 0 || p.Unit != ""
}

// notesPattern 第一個逗號或左括號之後為備註，結尾的右括號去掉
var notesPattern = regexp.MustCompile(`(?s)^(.*?)\s*[,(]\s*(.*?)\)?\s*$`)

// Parser 食材行解析器
type Parser struct {
	units *Registry
}

// NewParser 創建解析器；units 為 nil 時使用內建資料表
func NewParser(units *Registry) *Parser {
	if units == nil {
		units = Default()
	}
	return &Parser{units: units}
}

// ParseIngredient 使用內建資料表解析單行食材
func ParseIngredient(line string) ParsedIngredient {
	return NewParser(nil).Parse(line)
}

// Parse 將一行食材文字轉為 ParsedIngredient，任何輸入都會得到結果
func (p *Parser) Parse(line string) ParsedIngredient {
	tokens := strings.Fields(strings.TrimSpace(line))
	if len(tokens) == 0 {
		return ParsedIngredient{}
	}

	quantity, rest, ok := ParseQuantity(tokens)
	if !ok {
		// "cup sugar"、"pinch of salt"：數量為 0 但有單位
		// 單一字母的單位（c、g、l）在行首太容易誤判，不採用
		if unit, after := p.takeUnit(tokens); len(unit) > 1 && len(after) > 0 {
			ing := splitNotes(joinTokens(after))
			ing.Unit = unit
			return ing
		}
		return splitNotes(joinTokens(tokens))
	}

	unit, rest := p.takeUnit(rest)
	ing := splitNotes(joinTokens(rest))
	ing.Quantity = quantity
	ing.Unit = unit
	return ing
}

// takeUnit 若第一個 token 是已知單位則取出，回傳單位與剩餘 token
func (p *Parser) takeUnit(tokens []string) (string, []string) {
	if len(tokens) == 0 {
		return "", tokens
	}
	unit := lettersOnly(tokens[0])
	if unit == "" || !p.units.IsUnit(unit) {
		return "", tokens
	}
	rest := tokens[1:]
	// "fl oz" 佔兩個 token
	if unit == "fl" && len(rest) > 0 && p.units.Resolve(lettersOnly(rest[0])) == "oz" {
		unit = "floz"
		rest = rest[1:]
	}
	return unit, dropConnective(rest)
}

// splitNotes 依第一個逗號或左括號切出名稱與備註
func splitNotes(text string) ParsedIngredient {
	text = strings.TrimSpace(text)
	if m := notesPattern.FindStringSubmatch(text); m != nil {
		return ParsedIngredient{
			Name:  strings.TrimSpace(m[1]),
			Notes: strings.TrimSpace(m[2]),
		}
	}
	return ParsedIngredient{Name: text}
}

func dropConnective(tokens []string) []string {
	if len(tokens) > 1 && strings.EqualFold(tokens[0], "of") {
		return tokens[1:]
	}
	return tokens
}

func joinTokens(tokens []string) string {
	return strings.Join(tokens, " ")
}
