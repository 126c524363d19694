package ingredient

import (
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"
)

var (
	integerPattern  = regexp.MustCompile(`^\d+$`)
	fractionPattern = regexp.MustCompile(`^(\d+)/(\d+)$`)
	// 取 token 開頭的數字，"2-3" 取 2、"350F" 取 350
	leadingNumberPattern = regexp.MustCompile(`^(?:\d+(?:\.\d+)?|\.\d+)`)
)

// vulgarFractions Unicode 分數字元
var vulgarFractions = map[rune]float64{
	'½': 1.0 / 2, '⅓': 1.0 / 3, '⅔': 2.0 / 3, '¼': 1.0 / 4, '¾': 3.0 / 4,
	'⅕': 1.0 / 5, '⅖': 2.0 / 5, '⅗': 3.0 / 5, '⅘': 4.0 / 5, '⅙': 1.0 / 6,
	'⅚': 5.0 / 6, '⅛': 1.0 / 8, '⅜': 3.0 / 8, '⅝': 5.0 / 8, '⅞': 7.0 / 8,
}

// ParseQuantity 解析開頭的數量，回傳數量、剩餘 token 與是否成功
//
// 依序嘗試：帶分數 "1 1/2"、分數 "1/2"、一般數字。分母為 0 視為非數字。
// 失敗時回傳 (0, tokens, false)，不會回傳錯誤。
func ParseQuantity(tokens []string) (float64, []string, bool) {
	if len(tokens) == 0 {
		return 0, tokens, false
	}

	// 分母為 0 的分數直接視為沒有數量
	if zeroDenominator(tokens[0]) || (len(tokens) > 1 && integerPattern.MatchString(tokens[0]) && zeroDenominator(tokens[1])) {
		return 0, tokens, false
	}

	// 帶分數
	if len(tokens) > 1 && integerPattern.MatchString(tokens[0]) {
		whole, err := strconv.ParseFloat(tokens[0], 64)
		if err == nil {
			if frac, ok := parseFraction(tokens[1]); ok {
				return whole + frac, tokens[2:], true
			}
			if frac, ok := vulgarFraction(tokens[1]); ok {
				return whole + frac, tokens[2:], true
			}
		}
	}

	// 分數
	if frac, ok := parseFraction(tokens[0]); ok {
		return frac, tokens[1:], true
	}

	// Unicode 分數，可能黏在整數後面 ("1½")
	if q, ok := parseVulgar(tokens[0]); ok {
		return q, tokens[1:], true
	}

	// 一般數字
	if m := leadingNumberPattern.FindString(tokens[0]); m != "" {
		if q, err := strconv.ParseFloat(m, 64); err == nil {
			return q, tokens[1:], true
		}
	}

	return 0, tokens, false
}

// parseFraction 解析 "a/b"，分母為 0 時失敗
func parseFraction(token string) (float64, bool) {
	m := fractionPattern.FindStringSubmatch(token)
	if m == nil {
		return 0, false
	}
	num, err1 := strconv.ParseFloat(m[1], 64)
	den, err2 := strconv.ParseFloat(m[2], 64)
	if err1 != nil || err2 != nil || den == 0 {
		return 0, false
	}
	return num / den, true
}

func zeroDenominator(token string) bool {
	m := fractionPattern.FindStringSubmatch(token)
	return m != nil && strings.Trim(m[2], "0") == ""
}

// vulgarFraction 整個 token 只有一個 Unicode 分數字元
func vulgarFraction(token string) (float64, bool) {
	if utf8.RuneCountInString(token) != 1 {
		return 0, false
	}
	r, _ := utf8.DecodeRuneInString(token)
	v, ok := vulgarFractions[r]
	return v, ok
}

// parseVulgar 解析 "½" 或 "1½"
func parseVulgar(token string) (float64, bool) {
	last, size := utf8.DecodeLastRuneInString(token)
	frac, ok := vulgarFractions[last]
	if !ok {
		return 0, false
	}
	prefix := token[:len(token)-size]
	if prefix == "" {
		return frac, true
	}
	if !integerPattern.MatchString(prefix) {
		return 0, false
	}
	whole, err := strconv.ParseFloat(prefix, 64)
	if err != nil {
		return 0, false
	}
	return whole + frac, true
}

// lettersOnly 轉小寫並移除非字母字元
func lettersOnly(token string) string {
	var sb strings.Builder
	for _, r := range strings.ToLower(token) {
		if r >= 'a' && r <= 'z' {
			sb.WriteRune(r)
		}
	}
	return sb.String()
}
