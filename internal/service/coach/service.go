package coach

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/zhouzirui/speak-coach/backend/internal/model/chat"
	speechmodel "github.com/zhouzirui/speak-coach/backend/internal/model/speech"
	"github.com/zhouzirui/speak-coach/backend/internal/model/tutor"
	"github.com/zhouzirui/speak-coach/backend/internal/service/llm"
	"github.com/zhouzirui/speak-coach/backend/internal/service/prompt"
	"github.com/zhouzirui/speak-coach/backend/internal/service/speech"
)

var (
	// ErrEmptyQuestion 空问题不发送给模型，也不写入记录
	ErrEmptyQuestion = errors.New("question is empty")
	// ErrUnknownTutor 会话绑定的导师不存在
	ErrUnknownTutor = errors.New("unknown tutor")
)

// SessionStore 是 coach 依赖的会话存储能力
type SessionStore interface {
	GetSession(ctx context.Context, sessionID string) (chat.Session, error)
	AppendTurn(ctx context.Context, sessionID string, turns ...chat.Turn) error
	LoadHistory(ctx context.Context, sessionID string) ([]chat.Turn, error)
	Touch(ctx context.Context, sessionID string) error
}

// SpeechAnalysis 是一次口语分析的结果。转写失败时 Analysis 为空。
type SpeechAnalysis struct {
	Transcript speechmodel.TranscriptResult
	Analysis   string
}

// Service 串联转写、提示词、大模型与会话记录。
type Service struct {
	transcriber speech.Transcriber
	completer   llm.Completer
	sessions    SessionStore
	tutors      tutor.Store
	logger      *logrus.Entry
}

// NewService 创建 coach 服务
func NewService(transcriber speech.Transcriber, completer llm.Completer, sessions SessionStore, tutors tutor.Store, logger *logrus.Entry) *Service {
	return &Service{
		transcriber: transcriber,
		completer:   completer,
		sessions:    sessions,
		tutors:      tutors,
		logger:      logger.WithField("component", "coach"),
	}
}

// AnalyzeSpeech 转写录音并请求反馈。录音失败不是 error，而是体现在 Transcript 里。
func (s *Service) AnalyzeSpeech(ctx context.Context, sessionID string, audio []byte) (SpeechAnalysis, error) {
	builder, err := s.promptBuilder(ctx, sessionID)
	if err != nil {
		return SpeechAnalysis{}, err
	}

	result := s.transcriber.Transcribe(ctx, sessionID, audio)
	if !result.OK() {
		s.logger.WithField("session", sessionID).Info(result.Failure.Message())
		return SpeechAnalysis{Transcript: result}, nil
	}

	return s.analyze(ctx, builder, result)
}

// AnalyzeText 对已有文字稿请求反馈
func (s *Service) AnalyzeText(ctx context.Context, sessionID, transcript string) (SpeechAnalysis, error) {
	builder, err := s.promptBuilder(ctx, sessionID)
	if err != nil {
		return SpeechAnalysis{}, err
	}
	return s.analyze(ctx, builder, speechmodel.Succeeded(transcript))
}

func (s *Service) analyze(ctx context.Context, builder prompt.Builder, transcript speechmodel.TranscriptResult) (SpeechAnalysis, error) {
	analysis, err := s.completer.Complete(ctx, builder.Analysis(transcript.Text))
	if err != nil {
		return SpeechAnalysis{Transcript: transcript}, fmt.Errorf("analyze speech: %w", err)
	}
	return SpeechAnalysis{Transcript: transcript, Analysis: analysis}, nil
}

// Ask 回答一个英语学习问题。问题与回答只在模型成功返回后一起写入记录。
func (s *Service) Ask(ctx context.Context, sessionID, question string) ([]chat.Turn, error) {
	if strings.TrimSpace(question) == "" {
		return nil, ErrEmptyQuestion
	}

	builder, err := s.promptBuilder(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	answer, err := s.completer.Complete(ctx, builder.Chat(question))
	if err != nil {
		return nil, fmt.Errorf("ask assistant: %w", err)
	}

	if err := s.sessions.AppendTurn(ctx, sessionID,
		chat.NewTurn(chat.SpeakerYou, question),
		chat.NewTurn(chat.SpeakerAssistant, answer),
	); err != nil {
		return nil, err
	}

	return s.sessions.LoadHistory(ctx, sessionID)
}

// History 返回会话的完整聊天记录
func (s *Service) History(ctx context.Context, sessionID string) ([]chat.Turn, error) {
	return s.sessions.LoadHistory(ctx, sessionID)
}

func (s *Service) promptBuilder(ctx context.Context, sessionID string) (prompt.Builder, error) {
	session, err := s.sessions.GetSession(ctx, sessionID)
	if err != nil {
		return prompt.Builder{}, err
	}
	if err := s.sessions.Touch(ctx, sessionID); err != nil {
		return prompt.Builder{}, err
	}

	t, ok := s.tutors.FindByID(session.TutorID)
	if !ok {
		return prompt.Builder{}, fmt.Errorf("%w: %s", ErrUnknownTutor, session.TutorID)
	}
	return prompt.NewBuilder(t.ExplanationLanguage), nil
}
