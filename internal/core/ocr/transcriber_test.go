package ocr

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"recipe-ingest/internal/infrastructure/config"
)

func TestOpenRouterTranscriber(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		var req chatRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "vision-model", req.Model)
		require.Len(t, req.Messages, 1)
		require.Len(t, req.Messages[0].Content, 2)
		assert.Contains(t, req.Messages[0].Content[0].Text, "language: fra")
		assert.Equal(t, "data:image/jpeg;base64,AAAA", req.Messages[0].Content[1].ImageURL["url"])

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"choices":[{"message":{"content":"` + "```text\\nCrêpes\\nIngredients:\\n```" + `"}}]}`))
	}))
	defer srv.Close()

	tr := newOpenRouterTranscriber(config.OCRConfig{APIKey: "test-key", Model: "vision-model"}, srv.URL)
	text, err := tr.Transcribe(context.Background(), "data:image/jpeg;base64,AAAA", Options{Language: "fra"})

	require.NoError(t, err)
	assert.Equal(t, "Crêpes\nIngredients:", text)
}

func TestOpenRouterTranscriberErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"error":{"message":"rate limited"}}`))
	}))
	defer srv.Close()

	tr := newOpenRouterTranscriber(config.OCRConfig{APIKey: "k"}, srv.URL)
	_, err := tr.Transcribe(context.Background(), "data:image/jpeg;base64,AAAA", Options{})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "rate limited")
}

func TestStripCodeFence(t *testing.T) {
	assert.Equal(t, "a\nb", stripCodeFence("```\na\nb\n```"))
	assert.Equal(t, "plain", stripCodeFence("  plain \n"))
}
