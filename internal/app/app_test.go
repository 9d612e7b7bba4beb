package app

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zhouzirui/speak-coach/backend/internal/config"
	speechModel "github.com/zhouzirui/speak-coach/backend/internal/model/speech"
	"github.com/zhouzirui/speak-coach/backend/internal/service/llm"
	"github.com/zhouzirui/speak-coach/backend/internal/service/speech"
)

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func TestBuildWithoutCredentials(t *testing.T) {
	cfg := &config.Config{
		LLM:    config.LLMConfig{Provider: config.ProviderGroq, Timeout: time.Second},
		Speech: config.SpeechConfig{Language: "en-US", Timeout: time.Second},
		Chat:   config.ChatConfig{HistoryLimit: 10, DefaultTutor: "hinglish"},
	}

	a, err := Build(context.Background(), cfg, quietLogger())
	require.NoError(t, err)
	assert.False(t, a.Speech.Configured())

	ctx := context.Background()
	session, err := a.Sessions.CreateSession(ctx, cfg.Chat.DefaultTutor)
	require.NoError(t, err)

	_, err = a.Coach.Ask(ctx, session.ID, "What is a gerund?")
	assert.True(t, errors.Is(err, llm.ErrMissingCredential))

	result, err := a.Coach.AnalyzeSpeech(ctx, session.ID, []byte("RIFF\x00\x00\x00\x00WAVEfmt "))
	require.NoError(t, err)
	require.False(t, result.Transcript.OK())
	assert.Equal(t, speechModel.ReasonNotConfigured, result.Transcript.Failure.Reason)
}

func TestBuildRejectsUnknownDefaultTutor(t *testing.T) {
	cfg := &config.Config{
		LLM:  config.LLMConfig{Provider: config.ProviderGroq},
		Chat: config.ChatConfig{DefaultTutor: "klingon"},
	}

	_, err := Build(context.Background(), cfg, quietLogger())
	assert.Error(t, err)
}

func TestSpeechConfigCarriesResolvedToken(t *testing.T) {
	speechCfg := SpeechConfig(config.SpeechConfig{
		AppID:       "app",
		AccessToken: "token",
		Language:    "en-US",
		Timeout:     time.Second,
	})

	assert.Equal(t, "app", speechCfg.AppID)
	assert.Equal(t, "token", speechCfg.AccessToken)
	assert.Equal(t, "en-US", speechCfg.ASRLanguage)
	assert.True(t, speech.NewService(speechCfg, logrus.NewEntry(quietLogger())).Configured())
}
