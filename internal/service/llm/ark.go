package llm

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino-ext/components/model/ark"
	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"

	"github.com/zhouzirui/speak-coach/backend/internal/config"
)

// ArkCompleter 通过 eino chain（ChatTemplate -> ChatModel）调用火山方舟模型。
type ArkCompleter struct {
	chain compose.Runnable[map[string]any, *schema.Message]
}

// NewArkCompleter 使用配置创建方舟模型并编译调用链
func NewArkCompleter(ctx context.Context, cfg config.LLMConfig) (*ArkCompleter, error) {
	var temperature *float32
	if cfg.Temperature != nil {
		val := float32(*cfg.Temperature)
		temperature = &val
	}

	chatModel, err := ark.NewChatModel(ctx, &ark.ChatModelConfig{
		BaseURL:     cfg.BaseURL,
		Region:      cfg.Region,
		APIKey:      cfg.APIKey,
		AccessKey:   cfg.AccessKey,
		SecretKey:   cfg.SecretKey,
		Model:       cfg.Model,
		MaxTokens:   cfg.MaxTokens,
		Temperature: temperature,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create chat model: %w", err)
	}

	return newArkCompleter(ctx, chatModel)
}

func newArkCompleter(ctx context.Context, chatModel model.BaseChatModel) (*ArkCompleter, error) {
	template := prompt.FromMessages(
		schema.FString,
		schema.UserMessage("{prompt}"),
	)

	chain := compose.NewChain[map[string]any, *schema.Message]()
	chain.AppendChatTemplate(template)
	chain.AppendChatModel(chatModel)

	runnable, err := chain.Compile(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to compile chat chain: %w", err)
	}

	return &ArkCompleter{chain: runnable}, nil
}

func (c *ArkCompleter) Complete(ctx context.Context, text string) (string, error) {
	resp, err := c.chain.Invoke(ctx, map[string]any{"prompt": text})
	if err != nil {
		return "", fmt.Errorf("failed to run chat chain: %w", err)
	}
	if resp == nil {
		return "", ErrEmptyCompletion
	}
	return resp.Content, nil
}
