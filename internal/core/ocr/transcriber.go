package ocr

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"recipe-ingest/internal/infrastructure/config"
	"recipe-ingest/internal/pkg/common"
)

const openRouterBaseURL = "https://openrouter.ai/api/v1"

// Transcriber 將圖片轉為文字的引擎
type Transcriber interface {
	Transcribe(ctx context.Context, imageDataURI string, opts Options) (string, error)
}

// OpenRouterTranscriber 使用 OpenRouter 視覺模型辨識文字
type OpenRouterTranscriber struct {
	client    *resty.Client
	model     string
	maxTokens int
}

// NewOpenRouterTranscriber 創建 OpenRouter 辨識引擎
func NewOpenRouterTranscriber(cfg config.OCRConfig) *OpenRouterTranscriber {
	return newOpenRouterTranscriber(cfg, openRouterBaseURL)
}

func newOpenRouterTranscriber(cfg config.OCRConfig, baseURL string) *OpenRouterTranscriber {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(timeout).
		SetAuthToken(cfg.APIKey).
		SetHeader("HTTP-Referer", "https://recipe-ingest.local").
		SetHeader("X-Title", "Recipe Ingest")

	return &OpenRouterTranscriber{
		client:    client,
		model:     cfg.Model,
		maxTokens: cfg.MaxTokens,
	}
}

type chatContent struct {
	Type     string            `json:"type"`
	Text     string            `json:"text,omitempty"`
	ImageURL map[string]string `json:"image_url,omitempty"`
}

type chatMessage struct {
	Role    string        `json:"role"`
	Content []chatContent `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
	Temperature float64       `json:"temperature"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// Transcribe 請模型逐字抄寫圖片中的文字
func (t *OpenRouterTranscriber) Transcribe(ctx context.Context, imageDataURI string, opts Options) (string, error) {
	req := chatRequest{
		Model: t.model,
		Messages: []chatMessage{{
			Role: "user",
			Content: []chatContent{
				{Type: "text", Text: transcribePrompt(opts.Language)},
				{Type: "image_url", ImageURL: map[string]string{"url": imageDataURI}},
			},
		}},
		MaxTokens: t.maxTokens,
	}

	var result chatResponse
	resp, err := t.client.R().
		SetContext(ctx).
		SetBody(req).
		SetResult(&result).
		SetError(&result).
		Post("/chat/completions")
	if err != nil {
		return "", fmt.Errorf("failed to send request to OpenRouter: %w", err)
	}

	if resp.StatusCode() != http.StatusOK {
		msg := http.StatusText(resp.StatusCode())
		if result.Error != nil && result.Error.Message != "" {
			msg = result.Error.Message
		}
		common.LogError("OpenRouter returned error status",
			zap.Int("status_code", resp.StatusCode()),
			zap.String("model", t.model),
			zap.String("message", msg),
		)
		return "", fmt.Errorf("OpenRouter API error (status %d): %s", resp.StatusCode(), msg)
	}

	if len(result.Choices) == 0 {
		return "", fmt.Errorf("no choices in OpenRouter response")
	}

	text := stripCodeFence(result.Choices[0].Message.Content)
	if text == "" {
		return "", ErrEmptyResult
	}
	return text, nil
}

func transcribePrompt(language string) string {
	prompt := "Transcribe all text in this image exactly as written, line by line. " +
		"Keep headings, bullet markers and step numbers. Output only the text."
	if language != "" {
		prompt += " The text is most likely in language: " + language + "."
	}
	return prompt
}

// stripCodeFence 模型有時會把結果包在 ``` 中
func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[i+1:]
	}
	return strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(s), "```"))
}
