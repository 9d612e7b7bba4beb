package app

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/zhouzirui/speak-coach/backend/internal/config"
	speechModel "github.com/zhouzirui/speak-coach/backend/internal/model/speech"
	"github.com/zhouzirui/speak-coach/backend/internal/model/tutor"
	"github.com/zhouzirui/speak-coach/backend/internal/service/chat"
	"github.com/zhouzirui/speak-coach/backend/internal/service/coach"
	"github.com/zhouzirui/speak-coach/backend/internal/service/llm"
	"github.com/zhouzirui/speak-coach/backend/internal/service/speech"
)

// App 汇总服务端与命令行共用的服务实例
type App struct {
	Tutors   *tutor.MemoryStore
	Sessions *chat.Service
	Speech   *speech.Service
	LLM      *llm.Service
	Coach    *coach.Service
}

// Build 根据配置创建全部服务。凭证缺失不会导致失败，调用时再报错。
func Build(ctx context.Context, cfg *config.Config, logger *logrus.Logger) (*App, error) {
	entry := logrus.NewEntry(logger)

	tutors := tutor.NewMemoryStore(tutor.Seed())
	if _, ok := tutors.FindByID(cfg.Chat.DefaultTutor); !ok {
		return nil, fmt.Errorf("DEFAULT_TUTOR %q is not a known tutor", cfg.Chat.DefaultTutor)
	}

	sessions := chat.NewService(cfg.Chat.HistoryLimit)

	speechSvc := speech.NewService(SpeechConfig(cfg.Speech), entry)
	if !speechSvc.Configured() {
		entry.Warn("speech credentials missing, recordings will report the service as not configured")
	}

	llmSvc, err := llm.New(ctx, cfg.LLM, entry)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize llm: %w", err)
	}

	return &App{
		Tutors:   tutors,
		Sessions: sessions,
		Speech:   speechSvc,
		LLM:      llmSvc,
		Coach:    coach.NewService(speechSvc, llmSvc, sessions, tutors, entry),
	}, nil
}

// SpeechConfig 把进程配置转换为语音客户端配置
func SpeechConfig(cfg config.SpeechConfig) *speechModel.SpeechConfig {
	return &speechModel.SpeechConfig{
		AppID:          cfg.AppID,
		AccessToken:    cfg.AccessToken,
		BaseURL:        cfg.BaseURL,
		ConcurrentMode: cfg.ConcurrentMode,
		ASRLanguage:    cfg.Language,
		Timeout:        cfg.Timeout,
	}
}
