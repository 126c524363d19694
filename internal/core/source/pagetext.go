package source

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/base"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/commonmark"
	"github.com/microcosm-cc/bluemonday"
)

var (
	pagePolicy  = bluemonday.UGCPolicy()
	mdConverter = converter.NewConverter(
		converter.WithPlugins(
			base.NewBasePlugin(),
			commonmark.NewCommonmarkPlugin(),
		),
	)

	mdImage     = regexp.MustCompile(`!\[[^\]]*\]\([^)]*\)`)
	mdLink      = regexp.MustCompile(`\[([^\]]*)\]\([^)]*\)`)
	mdEmphasis  = regexp.MustCompile(`\*\*([^*\n]+)\*\*|__([^_\n]+)__`)
	mdEscape    = regexp.MustCompile(`\\([\\` + "`" + `*_{}\[\]()#+\-.!|~<>])`)
	blankLines  = regexp.MustCompile(`\n{3,}`)
	trailingSpc = regexp.MustCompile(`[ \t]+\n`)
)

// PageText 將網頁 HTML 轉為保留標題與清單的純文字（markdown）
func PageText(rawHTML string) (string, error) {
	clean := pagePolicy.Sanitize(rawHTML)
	md, err := mdConverter.ConvertString(clean)
	if err != nil {
		return "", fmt.Errorf("convert page to markdown: %w", err)
	}
	return tidyMarkdown(md), nil
}

// tidyMarkdown 去掉圖片、連結網址與粗體記號
func tidyMarkdown(md string) string {
	md = mdImage.ReplaceAllString(md, "")
	md = mdLink.ReplaceAllString(md, "$1")
	md = mdEmphasis.ReplaceAllString(md, "$1$2")
	md = mdEscape.ReplaceAllString(md, "$1")
	md = trailingSpc.ReplaceAllString(md, "\n")
	md = blankLines.ReplaceAllString(md, "\n\n")
	return strings.TrimSpace(md)
}
