package speech

import (
	"bytes"
	"context"
	"errors"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/zhouzirui/speak-coach/backend/internal/model/speech"
)

const defaultTimeout = 30 * time.Second

// Transcriber 把一段录音转成文字稿。失败时返回带原因的结果，而不是 error。
type Transcriber interface {
	Transcribe(ctx context.Context, sessionID string, audio []byte) speech.TranscriptResult
}

type recognizer interface {
	Recognize(ctx context.Context, req *speech.ASRRequest) (*speech.ASRResponse, error)
}

// Service 语音转写服务
type Service struct {
	config *speech.SpeechConfig
	asr    recognizer
	logger *logrus.Entry
}

// NewService 创建语音服务实例。凭证缺失时依然可以创建，调用时返回未配置错误。
func NewService(config *speech.SpeechConfig, logger *logrus.Entry) *Service {
	if config == nil {
		config = &speech.SpeechConfig{}
	}
	return &Service{
		config: config,
		asr:    NewVolcengineASRClient(config, logger),
		logger: logger.WithField("component", "speech"),
	}
}

// Configured 报告语音凭证是否齐全
func (s *Service) Configured() bool {
	_, _, err := resolveCredentials(s.config)
	return err == nil
}

// Transcribe 识别一段录音
func (s *Service) Transcribe(ctx context.Context, sessionID string, audio []byte) speech.TranscriptResult {
	if len(audio) == 0 {
		return speech.Failed(speech.NewCaptureError(speech.ReasonNoAudio, errNoAudio))
	}

	format, err := DetectFormat(audio)
	if err != nil {
		return speech.Failed(speech.NewCaptureError(speech.ReasonUnsupportedFormat, err))
	}

	if !s.Configured() {
		return speech.Failed(speech.NewCaptureError(speech.ReasonNotConfigured, errMissingCredentials))
	}

	timeout := s.config.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	start := time.Now()
	resp, err := s.asr.Recognize(ctx, &speech.ASRRequest{
		SessionID: sessionID,
		AudioData: bytes.NewReader(audio),
		Format:    format,
		Language:  s.config.ASRLanguage,
	})
	log := s.logger.WithFields(logrus.Fields{
		"session": sessionID,
		"format":  format,
		"bytes":   len(audio),
		"elapsed": time.Since(start).Round(time.Millisecond),
	})
	if err != nil {
		capture := classify(err)
		log.WithError(err).Warn(capture.Reason)
		return speech.Failed(capture)
	}

	if resp.Text == "" {
		log.Info("empty transcript")
		return speech.Failed(speech.NewCaptureError(speech.ReasonNotRecognized, nil))
	}

	log.WithField("duration_ms", resp.Duration).Debug("transcribed")
	return speech.Succeeded(resp.Text)
}

// classify 把识别过程中的错误归类为用户可见的原因
func classify(err error) *speech.CaptureError {
	var svcErr *ServiceError
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return speech.NewCaptureError(speech.ReasonTimeout, err)
	case errors.Is(err, errNoAudio):
		return speech.NewCaptureError(speech.ReasonNoAudio, err)
	case errors.Is(err, errMissingCredentials):
		return speech.NewCaptureError(speech.ReasonNotConfigured, err)
	case errors.As(err, &svcErr) && svcErr.Silent():
		return speech.NewCaptureError(speech.ReasonNotRecognized, err)
	default:
		return speech.NewCaptureError(speech.ReasonServiceUnavailable, err)
	}
}
