package extract

import (
	"strings"

	"recipe-ingest/internal/core/ingredient"
)

// Assembler 將原始文字組成 ExtractedRecipe
type Assembler struct {
	classifier *Classifier
}

// NewAssembler 創建組裝器；units 為 nil 時使用內建資料表
func NewAssembler(units *ingredient.Registry) *Assembler {
	if units == nil {
		return &Assembler{classifier: classifier()}
	}
	return &Assembler{classifier: NewClassifier(units)}
}

// Assemble 使用內建資料表組裝
func Assemble(text string) (ExtractedRecipe, []string) {
	return NewAssembler(nil).Assemble(text)
}

// Assemble 單次、確定性地把文字切成標題、食材與步驟，並回傳提示訊息。
// 任何輸入都會得到格式正確的結果。
func (a *Assembler) Assemble(text string) (ExtractedRecipe, []string) {
	text = NormalizeText(text)
	probe := matchCopy(text)
	sections := DetectSections(text)

	var recipe ExtractedRecipe
	var warnings []string

	layout := sections.Layout()
	switch layout {
	case LayoutNoSections:
		recipe = a.assembleHeuristic(text)
		warnings = append(warnings, WarnHeuristic)
	case LayoutIngredientsOnly:
		recipe = a.assembleIngredientsOnly(text, probe, sections.Ingredients)
	case LayoutInstructionsOnly:
		recipe = a.assembleInstructionsOnly(text, probe, sections.Instructions)
	case LayoutBoth:
		recipe = a.assembleBoth(text, probe, sections.Ingredients, sections.Instructions)
	}

	if recipe.Ingredients == nil {
		recipe.Ingredients = []string{}
	}
	if recipe.Name == "" {
		warnings = append(warnings, WarnNoTitle)
	}
	if len(recipe.Ingredients) == 0 {
		warnings = append(warnings, WarnNoIngredients)
	}
	if recipe.Instructions == "" {
		warnings = append(warnings, WarnNoInstructions)
	}
	return recipe, warnings
}

// assembleHeuristic 沒有任何標題：第一行為標題，之後逐行分類。
// 收集到至少一個食材後，遇到第一個不像食材的行便單向切換到步驟。
func (a *Assembler) assembleHeuristic(text string) ExtractedRecipe {
	lines := nonEmptyLines(text)
	if len(lines) == 0 {
		return ExtractedRecipe{}
	}

	recipe := ExtractedRecipe{Name: cleanTitle(lines[0])}
	var preamble, steps []string
	inInstructions := false
	for _, line := range lines[1:] {
		if IsMetadataLine(line) {
			continue
		}
		if !inInstructions && a.classifier.IsIngredientLike(line) {
			recipe.Ingredients = append(recipe.Ingredients, cleanIngredientLine(line))
			continue
		}
		if len(recipe.Ingredients) == 0 {
			preamble = append(preamble, cleanInstructionLine(line))
			continue
		}
		inInstructions = true
		steps = append(steps, cleanInstructionLine(line))
	}
	recipe.Instructions = joinLines(append(preamble, steps...))
	return recipe
}

// assembleBoth 兩種標題都有
func (a *Assembler) assembleBoth(text, probe string, ing, ins *Header) ExtractedRecipe {
	recipe := ExtractedRecipe{Name: titleBefore(text, min(ing.Index, ins.Index))}

	limit := len(text)
	if ins.Index > ing.End {
		limit = ins.Index
	}
	end := blockEnd(probe, ing.End, limit, instructionsLineStart, notesLineStart, nutritionLineStart)
	recipe.Ingredients = ingredientLines(text[ing.End:end])

	end = blockEnd(probe, ins.End, len(text), ingredientsLineStart, notesLineStart, nutritionLineStart)
	recipe.Instructions = joinLines(instructionLines(text[ins.End:end]))
	return recipe
}

// assembleIngredientsOnly 只有食材標題：段落空行之後出現的敘述視為步驟
func (a *Assembler) assembleIngredientsOnly(text, probe string, ing *Header) ExtractedRecipe {
	recipe := ExtractedRecipe{Name: titleBefore(text, ing.Index)}

	end := blockEnd(probe, ing.End, len(text), notesLineStart, nutritionLineStart)
	var steps []string
	inInstructions := false
	afterBlank := false
	for _, raw := range strings.Split(text[ing.End:end], "\n") {
		line := strings.TrimSpace(raw)
		if line == "" {
			afterBlank = true
			continue
		}
		if IsMetadataLine(line) {
			continue
		}
		if !inInstructions && afterBlank && len(recipe.Ingredients) > 0 && !a.classifier.IsIngredientLike(line) {
			inInstructions = true
		}
		afterBlank = false
		if inInstructions {
			steps = append(steps, cleanInstructionLine(line))
			continue
		}
		if isSubHeader(line) {
			continue
		}
		if cleaned := cleanIngredientLine(line); cleaned != "" {
			recipe.Ingredients = append(recipe.Ingredients, cleaned)
		}
	}
	recipe.Instructions = joinLines(steps)
	return recipe
}

// assembleInstructionsOnly 只有步驟標題：標題行之後、步驟標題之前的行逐行分類
func (a *Assembler) assembleInstructionsOnly(text, probe string, ins *Header) ExtractedRecipe {
	var recipe ExtractedRecipe

	before := nonEmptyLines(text[:ins.Index])
	var lead []string
	if len(before) > 0 {
		recipe.Name = cleanTitle(before[0])
		for _, line := range before[1:] {
			if IsMetadataLine(line) {
				continue
			}
			if a.classifier.IsIngredientLike(line) {
				if cleaned := cleanIngredientLine(line); cleaned != "" {
					recipe.Ingredients = append(recipe.Ingredients, cleaned)
				}
				continue
			}
			lead = append(lead, cleanInstructionLine(line))
		}
	}

	end := blockEnd(probe, ins.End, len(text), ingredientsLineStart, notesLineStart, nutritionLineStart)
	recipe.Instructions = joinLines(append(lead, instructionLines(text[ins.End:end])...))
	return recipe
}

// titleBefore 標題之前第一個非空行
func titleBefore(text string, index int) string {
	for _, line := range nonEmptyLines(text[:index]) {
		if title := cleanTitle(line); title != "" {
			return title
		}
	}
	return ""
}

func ingredientLines(block string) []string {
	var out []string
	for _, line := range nonEmptyLines(block) {
		if IsMetadataLine(line) || isSubHeader(line) {
			continue
		}
		if cleaned := cleanIngredientLine(line); cleaned != "" {
			out = append(out, cleaned)
		}
	}
	return out
}

func instructionLines(block string) []string {
	var out []string
	for _, line := range nonEmptyLines(block) {
		if IsMetadataLine(line) {
			continue
		}
		if cleaned := cleanInstructionLine(line); cleaned != "" {
			out = append(out, cleaned)
		}
	}
	return out
}

func nonEmptyLines(text string) []string {
	var out []string
	for _, line := range strings.Split(text, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			out = append(out, line)
		}
	}
	return out
}

func joinLines(lines []string) string {
	kept := lines[:0:0]
	for _, l := range lines {
		if l != "" {
			kept = append(kept, l)
		}
	}
	return strings.Join(kept, "\n")
}
