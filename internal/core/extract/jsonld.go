package extract

import (
	"html"
	"sort"
	"strings"

	nethtml "golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"recipe-ingest/internal/pkg/common"
)

const ldJSONType = "application/ld+json"

var scriptWrappers = strings.NewReplacer("<!--", "", "-->", "", "<![CDATA[", "", "]]>", "")

// ExtractJSONLD 從 HTML 的 JSON-LD 區塊取出第一個 Recipe；找不到時回傳 nil
func ExtractJSONLD(rawHTML string) *ExtractedRecipe {
	for _, block := range ldJSONBlocks(rawHTML) {
		var doc interface{}
		if err := common.ParseJSON(block, &doc); err != nil {
			// 單一區塊格式錯誤不影響其他區塊
			continue
		}
		if node := findRecipeNode(doc); node != nil {
			return recipeFromNode(node)
		}
	}
	return nil
}

// ldJSONBlocks 依文件順序取出所有 ld+json script 內容
func ldJSONBlocks(rawHTML string) []string {
	root, err := nethtml.Parse(strings.NewReader(rawHTML))
	if err != nil {
		return nil
	}

	var blocks []string
	var walk func(n *nethtml.Node)
	walk = func(n *nethtml.Node) {
		if n.Type == nethtml.ElementNode && n.DataAtom == atom.Script && isLDJSON(n) {
			var sb strings.Builder
			for c := n.FirstChild; c != nil; c = c.NextSibling {
				if c.Type == nethtml.TextNode {
					sb.WriteString(c.Data)
				}
			}
			if block := strings.TrimSpace(scriptWrappers.Replace(sb.String())); block != "" {
				blocks = append(blocks, block)
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(root)
	return blocks
}

func isLDJSON(n *nethtml.Node) bool {
	for _, attr := range n.Attr {
		if strings.EqualFold(attr.Key, "type") {
			mediaType, _, _ := strings.Cut(attr.Val, ";")
			return strings.EqualFold(strings.TrimSpace(mediaType), ldJSONType)
		}
	}
	return false
}

// findRecipeNode 深度優先尋找 @type 含 recipe 的節點，@graph 優先
func findRecipeNode(v interface{}) map[string]interface{} {
	switch node := v.(type) {
	case []interface{}:
		for _, item := range node {
			if found := findRecipeNode(item); found != nil {
				return found
			}
		}
	case map[string]interface{}:
		if isRecipeType(node["@type"]) || isRecipeType(node["type"]) {
			return node
		}
		if graph, ok := node["@graph"]; ok {
			if found := findRecipeNode(graph); found != nil {
				return found
			}
		}
		keys := make([]string, 0, len(node))
		for k := range node {
			if k != "@graph" {
				keys = append(keys, k)
			}
		}
		sort.Strings(keys)
		for _, k := range keys {
			if found := findRecipeNode(node[k]); found != nil {
				return found
			}
		}
	}
	return nil
}

func isRecipeType(v interface{}) bool {
	switch t := v.(type) {
	case string:
		return strings.Contains(strings.ToLower(t), "recipe")
	case []interface{}:
		for _, item := range t {
			if isRecipeType(item) {
				return true
			}
		}
	}
	return false
}

func recipeFromNode(node map[string]interface{}) *ExtractedRecipe {
	recipe := &ExtractedRecipe{Ingredients: []string{}}

	if name, ok := node["name"].(string); ok {
		recipe.Name = cleanLDText(name)
	}

	ingredients, ok := node["recipeIngredient"]
	if !ok {
		ingredients = node["ingredients"]
	}
	recipe.Ingredients = append(recipe.Ingredients, stringItems(ingredients)...)

	var steps []string
	collectInstructions(node["recipeInstructions"], &steps)
	recipe.Instructions = strings.Join(steps, "\n")
	return recipe
}

// stringItems 只取字串項目
func stringItems(v interface{}) []string {
	var out []string
	switch items := v.(type) {
	case string:
		if s := cleanLDText(items); s != "" {
			out = append(out, s)
		}
	case []interface{}:
		for _, item := range items {
			if s, ok := item.(string); ok {
				if s = cleanLDText(s); s != "" {
					out = append(out, s)
				}
			}
		}
	}
	return out
}

// collectInstructions 攤平 HowToStep / HowToSection / ItemList
func collectInstructions(v interface{}, steps *[]string) {
	switch node := v.(type) {
	case string:
		for _, line := range strings.Split(cleanLDText(node), "\n") {
			if line = strings.TrimSpace(line); line != "" {
				*steps = append(*steps, line)
			}
		}
	case []interface{}:
		for _, item := range node {
			collectInstructions(item, steps)
		}
	case map[string]interface{}:
		if list, ok := node["itemListElement"]; ok {
			collectInstructions(list, steps)
			return
		}
		for _, key := range []string{"text", "name"} {
			if s, ok := node[key].(string); ok {
				if s = cleanLDText(s); s != "" {
					*steps = append(*steps, s)
					return
				}
			}
		}
	}
}

func cleanLDText(s string) string {
	return strings.TrimSpace(html.UnescapeString(s))
}
