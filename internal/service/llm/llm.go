package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/zhouzirui/speak-coach/backend/internal/config"
)

var (
	// ErrMissingCredential 未配置调用大模型所需的密钥
	ErrMissingCredential = errors.New("llm credential is missing")
	// ErrQuotaExceeded indicates the provider returned a quota/limit error (HTTP 429 or similar).
	ErrQuotaExceeded = errors.New("llm quota exceeded")
	// ErrEmptyCompletion 模型返回了空内容
	ErrEmptyCompletion = errors.New("llm returned an empty completion")
)

const defaultTimeout = 60 * time.Second

// Completer 发送一次同步补全请求，原样返回模型文本。
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// Service 给底层 Completer 加上超时与日志。
type Service struct {
	completer Completer
	provider  string
	model     string
	timeout   time.Duration
	logger    *logrus.Entry
}

// NewService 包装一个 Completer
func NewService(completer Completer, cfg config.LLMConfig, logger *logrus.Entry) *Service {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Service{
		completer: completer,
		provider:  cfg.Provider,
		model:     cfg.Model,
		timeout:   timeout,
		logger:    logger.WithField("component", "llm"),
	}
}

// New 按配置选择供应商。凭证缺失不会报错，而是在每次调用时返回 ErrMissingCredential。
func New(ctx context.Context, cfg config.LLMConfig, logger *logrus.Entry) (*Service, error) {
	if !cfg.Configured() {
		logger.WithField("provider", cfg.Provider).Warn("llm credential missing, completions will fail until configured")
		return NewService(unconfigured{provider: cfg.Provider}, cfg, logger), nil
	}

	var (
		completer Completer
		err       error
	)
	switch cfg.Provider {
	case config.ProviderGroq, config.ProviderOpenAI:
		completer = NewOpenAICompleter(cfg)
	case config.ProviderArk:
		completer, err = NewArkCompleter(ctx, cfg)
	case config.ProviderGemini:
		completer, err = NewGeminiCompleter(ctx, cfg)
	default:
		return nil, fmt.Errorf("unsupported llm provider %q", cfg.Provider)
	}
	if err != nil {
		return nil, err
	}

	return NewService(completer, cfg, logger), nil
}

// Complete 在超时内完成一次调用
func (s *Service) Complete(ctx context.Context, prompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	start := time.Now()
	text, err := s.completer.Complete(ctx, prompt)
	log := s.logger.WithFields(logrus.Fields{
		"provider": s.provider,
		"model":    s.model,
		"elapsed":  time.Since(start).Round(time.Millisecond),
	})
	if err != nil {
		log.WithError(err).Error("completion failed")
		return "", err
	}
	if strings.TrimSpace(text) == "" {
		log.Warn("empty completion")
		return "", ErrEmptyCompletion
	}

	log.WithField("length", len(text)).Debug("completion done")
	return text, nil
}

type unconfigured struct {
	provider string
}

func (u unconfigured) Complete(context.Context, string) (string, error) {
	return "", fmt.Errorf("%w: set the API key for provider %q", ErrMissingCredential, u.provider)
}
