package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"google.golang.org/genai"

	"github.com/zhouzirui/speak-coach/backend/internal/config"
)

// GeminiCompleter 调用 Google Gemini
type GeminiCompleter struct {
	client *genai.Client
	model  string
	config *genai.GenerateContentConfig
}

// NewGeminiCompleter 创建 genai 客户端
func NewGeminiCompleter(ctx context.Context, cfg config.LLMConfig) (*GeminiCompleter, error) {
	clientCfg := &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if cfg.BaseURL != "" {
		clientCfg.HTTPOptions = genai.HTTPOptions{BaseURL: cfg.BaseURL}
	}

	client, err := genai.NewClient(ctx, clientCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}

	genCfg := &genai.GenerateContentConfig{}
	if cfg.Temperature != nil {
		val := float32(*cfg.Temperature)
		genCfg.Temperature = &val
	}
	if cfg.MaxTokens != nil {
		genCfg.MaxOutputTokens = int32(*cfg.MaxTokens)
	}

	return &GeminiCompleter{client: client, model: cfg.Model, config: genCfg}, nil
}

func (c *GeminiCompleter) Complete(ctx context.Context, prompt string) (string, error) {
	contents := []*genai.Content{genai.NewContentFromText(prompt, genai.RoleUser)}

	resp, err := c.client.Models.GenerateContent(ctx, c.model, contents, c.config)
	if err != nil {
		return "", mapGeminiError(err)
	}

	var textBuilder strings.Builder
	for _, cand := range resp.Candidates {
		if cand.Content != nil {
			for _, part := range cand.Content.Parts {
				textBuilder.WriteString(part.Text)
			}
		}
	}
	if textBuilder.Len() == 0 {
		return "", ErrEmptyCompletion
	}

	return textBuilder.String(), nil
}

func mapGeminiError(err error) error {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) && apiErr.Code == http.StatusTooManyRequests {
		return fmt.Errorf("%w: %s", ErrQuotaExceeded, apiErr.Message)
	}
	var apiErrPtr *genai.APIError
	if errors.As(err, &apiErrPtr) && apiErrPtr.Code == http.StatusTooManyRequests {
		return fmt.Errorf("%w: %s", ErrQuotaExceeded, apiErrPtr.Message)
	}
	return fmt.Errorf("failed to generate content: %w", err)
}
