package extract

import (
	"regexp"
	"strings"
)

// 標題字詞
const (
	ingredientsWords  = `(?:the[ \t]+)?ingredients?(?:[ \t]+(?:list|for[ \t]+[^:\n]*))?`
	instructionsWords = `instructions?|directions?|method|steps|preparation|how[ \t]+to[ \t]+make(?:[ \t]+it)?`
	notesWords        = `notes?|tips|(?:cook|chef)'?s[ \t]+notes?|recipe[ \t]+notes?`
	nutritionWords    = `nutrition(?:al)?(?:[ \t]+(?:facts|information|info))?`
)

// headerPattern 標題（允許開頭 # 與結尾冒號），用於找第一個標題
func headerPattern(words string) *regexp.Regexp {
	return regexp.MustCompile(`(?im)^[ \t]*#*[ \t]*(?:` + words + `)[ \t]*(?:\([^)\n]*\))?[ \t]*(?::|$)`)
}

// lineStartPattern 必須緊接在換行之後，只用來找區塊結尾
func lineStartPattern(words string) *regexp.Regexp {
	return regexp.MustCompile(`(?i)\n[ \t]*#*[ \t]*(?:` + words + `)[ \t]*(?:\([^)\n]*\))?[ \t]*(?::|\n|$)`)
}

var (
	ingredientsHeader  = headerPattern(ingredientsWords)
	instructionsHeader = headerPattern(instructionsWords)

	ingredientsLineStart  = lineStartPattern(ingredientsWords)
	instructionsLineStart = lineStartPattern(instructionsWords)
	notesLineStart        = lineStartPattern(notesWords)
	nutritionLineStart    = lineStartPattern(nutritionWords)

	// OCR 常把 I 認成 l、1 或 |
	ocrHeaderFix = regexp.MustCompile(`(?i)(^|[^a-z])[l1|](ngredient|nstruction)`)

	lineEndings = strings.NewReplacer("\r\n", "\n", "\r", "\n", "\t", " ", "\u00a0", " ")
)

// Header 偵測到的標題位置
type Header struct {
	Index int    // 標題在文字中的起點
	End   int    // 標題結束（區塊內容的起點）
	Text  string // 比對到的標題文字
}

// Sections 第一個食材標題與第一個步驟標題，皆可能不存在
type Sections struct {
	Ingredients  *Header
	Instructions *Header
}

// Layout 依偵測結果決定版面
func (s Sections) Layout() Layout {
	switch {
	case s.Ingredients != nil && s.Instructions != nil:
		return LayoutBoth
	case s.Ingredients != nil:
		return LayoutIngredientsOnly
	case s.Instructions != nil:
		return LayoutInstructionsOnly
	default:
		return LayoutNoSections
	}
}

// NormalizeText 統一換行，tab 與不換行空白改為一般空白
func NormalizeText(text string) string {
	return lineEndings.Replace(text)
}

// matchCopy 修正 OCR 誤判後的比對用副本，長度與原文相同
func matchCopy(text string) string {
	return ocrHeaderFix.ReplaceAllStringFunc(text, func(m string) string {
		// 只替換誤判的那一個字元
		i := len(m) - len("ngredient")
		if strings.HasSuffix(strings.ToLower(m), "nstruction") {
			i = len(m) - len("nstruction")
		}
		return m[:i-1] + "I" + m[i:]
	})
}

// DetectSections 找出第一個食材與步驟標題，text 需先經過 NormalizeText
func DetectSections(text string) Sections {
	probe := matchCopy(text)
	var s Sections
	s.Ingredients = firstHeader(text, probe, ingredientsHeader, nil)
	s.Instructions = firstHeader(text, probe, instructionsHeader, func(line string) bool {
		// 步驟標題不得落在含 ingredients 的行
		return strings.Contains(strings.ToLower(line), "ingredient")
	})
	return s
}

func firstHeader(text, probe string, re *regexp.Regexp, reject func(line string) bool) *Header {
	for _, loc := range re.FindAllStringIndex(probe, -1) {
		if reject != nil && reject(lineAt(probe, loc[0])) {
			continue
		}
		return &Header{
			Index: loc[0],
			End:   loc[1],
			Text:  strings.TrimSpace(text[loc[0]:loc[1]]),
		}
	}
	return nil
}

// lineAt 回傳包含位置 i 的整行
func lineAt(text string, i int) string {
	start := strings.LastIndexByte(text[:i], '\n') + 1
	end := strings.IndexByte(text[i:], '\n')
	if end < 0 {
		return text[start:]
	}
	return text[start : i+end]
}

// blockEnd 從 start 開始找最早出現的區塊結尾標題，找不到則回傳 limit
func blockEnd(probe string, start, limit int, terminators ...*regexp.Regexp) int {
	end := limit
	if start >= end {
		return end
	}
	for _, re := range terminators {
		if loc := re.FindStringIndex(probe[start:end]); loc != nil && start+loc[0] < end {
			end = start + loc[0]
		}
	}
	return end
}
