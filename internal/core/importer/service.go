package importer

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"recipe-ingest/internal/core/extract"
	"recipe-ingest/internal/core/ingredient"
	"recipe-ingest/internal/core/ocr"
	"recipe-ingest/internal/core/source"
	"recipe-ingest/internal/pkg/common"
)

// 匯入方式
const (
	MethodText   = "text"
	MethodJSONLD = "jsonld"
	MethodPage   = "page"
	MethodPDF    = "pdf"
	MethodDOCX   = "docx"
	MethodOCR    = "ocr"
)

// WarnTruncated 網頁超過長度上限
const WarnTruncated = "page was truncated before extraction; the recipe may be incomplete"

// ErrOCRUnavailable 未設定 OCR 時上傳圖片
var ErrOCRUnavailable = errors.New("image recognition is not enabled")

// PageFetcher 取得網頁
type PageFetcher interface {
	Fetch(ctx context.Context, rawURL string) (*source.Page, error)
}

// Recognizer 圖片轉文字
type Recognizer interface {
	Recognize(ctx context.Context, image []byte, opts ocr.Options) (string, error)
}

// Result 匯入結果，Recipe 一定是格式正確的食譜
type Result struct {
	Recipe            extract.ExtractedRecipe       `json:"recipe"`
	ParsedIngredients []ingredient.ParsedIngredient `json:"parsedIngredients"`
	Source            string                        `json:"source"`
	Method            string                        `json:"method"`
	Warnings          []string                      `json:"warnings"`
	Truncated         bool                          `json:"truncated"`
}

// Service 匯入服務
type Service struct {
	fetcher    PageFetcher
	recognizer Recognizer
	assembler  *extract.Assembler
	parser     *ingredient.Parser
	normalizer *ingredient.Normalizer
}

// NewService 創建匯入服務；recognizer 為 nil 時不接受圖片，units 為 nil 時使用內建資料表
func NewService(fetcher PageFetcher, recognizer Recognizer, units *ingredient.Registry) *Service {
	return &Service{
		fetcher:    fetcher,
		recognizer: recognizer,
		assembler:  extract.NewAssembler(units),
		parser:     ingredient.NewParser(units),
		normalizer: ingredient.NewNormalizer(units),
	}
}

// ImportText 匯入貼上的文字
func (s *Service) ImportText(ctx context.Context, text string) (*Result, error) {
	start := time.Now()
	result := s.fromText(source.CleanPastedText(text), "paste", MethodText)
	common.LogImport(result.Source, result.Method, time.Since(start), nil,
		zap.Int("ingredients", len(result.Recipe.Ingredients)))
	return result, nil
}

// ImportURL 抓取網頁，優先使用 JSON-LD，沒有時退回頁面文字
func (s *Service) ImportURL(ctx context.Context, rawURL string) (*Result, error) {
	start := time.Now()
	if s.fetcher == nil {
		return nil, fmt.Errorf("import url: no page fetcher configured")
	}

	page, err := s.fetcher.Fetch(ctx, rawURL)
	if err != nil {
		common.LogImport(rawURL, MethodPage, time.Since(start), err)
		return nil, err
	}

	result, err := s.fromHTML(page.HTML, page.FinalURL)
	if err != nil {
		common.LogImport(rawURL, MethodPage, time.Since(start), err)
		return nil, err
	}
	if page.Truncated {
		result.Truncated = true
		result.Warnings = append(result.Warnings, WarnTruncated)
	}

	common.LogImport(result.Source, result.Method, time.Since(start), nil,
		zap.Bool("from_cache", page.FromCache),
		zap.Bool("truncated", page.Truncated),
		zap.Int("ingredients", len(result.Recipe.Ingredients)),
	)
	return result, nil
}

// ImportFile 依內容判斷檔案種類；圖片交給 OCR
func (s *Service) ImportFile(ctx context.Context, filename string, data []byte, opts ocr.Options) (*Result, error) {
	start := time.Now()
	result, err := s.importFile(ctx, filename, data, opts)
	if err != nil {
		common.LogImport(filename, "file", time.Since(start), err)
		return nil, err
	}
	common.LogImport(filename, result.Method, time.Since(start), nil,
		zap.Int("bytes", len(data)),
		zap.Int("ingredients", len(result.Recipe.Ingredients)),
	)
	return result, nil
}

func (s *Service) importFile(ctx context.Context, filename string, data []byte, opts ocr.Options) (*Result, error) {
	kind, _ := source.DetectKind(data)
	switch kind {
	case source.DocumentImage:
		if s.recognizer == nil {
			return nil, ErrOCRUnavailable
		}
		text, err := s.recognizer.Recognize(ctx, data, opts)
		if err != nil {
			return nil, fmt.Errorf("recognize %s: %w", filename, err)
		}
		return s.fromText(source.CleanPastedText(text), filename, MethodOCR), nil
	case source.DocumentHTML:
		return s.fromHTML(string(data), filename)
	}

	text, kind, err := source.ExtractDocument(data)
	if err != nil {
		return nil, fmt.Errorf("extract %s: %w", filename, err)
	}
	method := MethodText
	switch kind {
	case source.DocumentPDF:
		method = MethodPDF
	case source.DocumentDOCX:
		method = MethodDOCX
	}
	return s.fromText(text, filename, method), nil
}

func (s *Service) fromHTML(rawHTML, origin string) (*Result, error) {
	if recipe := extract.ExtractJSONLD(rawHTML); recipe != nil && hasContent(recipe) {
		return s.finish(*recipe, recipeWarnings(*recipe), origin, MethodJSONLD), nil
	}

	text, err := source.PageText(rawHTML)
	if err != nil {
		return nil, fmt.Errorf("page text: %w", err)
	}
	return s.fromText(text, origin, MethodPage), nil
}

func (s *Service) fromText(text, origin, method string) *Result {
	recipe, warnings := s.assembler.Assemble(text)
	return s.finish(recipe, warnings, origin, method)
}

func (s *Service) finish(recipe extract.ExtractedRecipe, warnings []string, origin, method string) *Result {
	parsed := make([]ingredient.ParsedIngredient, 0, len(recipe.Ingredients))
	for _, line := range recipe.Ingredients {
		parsed = append(parsed, s.normalizer.Normalize(s.parser.Parse(line)))
	}
	if warnings == nil {
		warnings = []string{}
	}
	return &Result{
		Recipe:            recipe,
		ParsedIngredients: parsed,
		Source:            origin,
		Method:            method,
		Warnings:          warnings,
	}
}

// hasContent JSON-LD 只有名稱而沒有食材與步驟時改用頁面文字
func hasContent(r *extract.ExtractedRecipe) bool {
	return len(r.Ingredients) > 0 || r.Instructions != ""
}

func recipeWarnings(r extract.ExtractedRecipe) []string {
	var warnings []string
	if r.Name == "" {
		warnings = append(warnings, extract.WarnNoTitle)
	}
	if len(r.Ingredients) == 0 {
		warnings = append(warnings, extract.WarnNoIngredients)
	}
	if r.Instructions == "" {
		warnings = append(warnings, extract.WarnNoInstructions)
	}
	return warnings
}
