package speech

import (
	"context"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"

	"github.com/zhouzirui/speak-coach/backend/internal/handler/apierror"
	speechmodel "github.com/zhouzirui/speak-coach/backend/internal/model/speech"
	"github.com/zhouzirui/speak-coach/backend/internal/service/coach"
	"github.com/zhouzirui/speak-coach/backend/pkg/utils"
)

const (
	maxUploadSize = 32 << 20 // 32MB
	maxAudioSize  = 16 << 20
)

// Analyzer 抽象口语分析业务，便于测试与替换实现
type Analyzer interface {
	AnalyzeSpeech(ctx context.Context, sessionID string, audio []byte) (coach.SpeechAnalysis, error)
	AnalyzeText(ctx context.Context, sessionID, transcript string) (coach.SpeechAnalysis, error)
}

// Handler 口语分析的HTTP处理器
type Handler struct {
	analyzer Analyzer
	logger   *logrus.Entry
}

// New 创建口语分析处理器
func New(analyzer Analyzer, logger *logrus.Entry) *Handler {
	return &Handler{
		analyzer: analyzer,
		logger:   logger.WithField("component", "speech-handler"),
	}
}

// RegisterRoutes 注册口语分析相关的路由
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/speech", func(speechRouter chi.Router) {
		speechRouter.Post("/analyze/{sessionID}", h.handleAnalyzeAudio)
		speechRouter.Post("/analyze-text/{sessionID}", h.handleAnalyzeText)
	})
}

// analysisResponse 录音失败时只有 transcript 为空和 captureError
type analysisResponse struct {
	Transcript   string `json:"transcript"`
	CaptureError string `json:"captureError,omitempty"`
	Analysis     string `json:"analysis,omitempty"`
	AnalysisHTML string `json:"analysisHtml,omitempty"`
	Error        string `json:"error,omitempty"`
}

// handleAnalyzeAudio 处理上传的录音
func (h *Handler) handleAnalyzeAudio(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "failed to parse multipart form: "+err.Error())
		return
	}
	if r.MultipartForm != nil {
		defer r.MultipartForm.RemoveAll()
	}

	file, _, err := r.FormFile("audio")
	if err != nil {
		utils.RespondError(w, http.StatusBadRequest, "audio file is required")
		return
	}
	defer file.Close()

	audio, err := io.ReadAll(io.LimitReader(file, maxAudioSize+1))
	if err != nil {
		utils.RespondError(w, http.StatusBadRequest, "failed to read audio file")
		return
	}
	// 超长录音整体拒绝，不截断后再识别
	if len(audio) > maxAudioSize {
		h.logger.WithFields(logrus.Fields{"session": sessionID, "bytes": len(audio)}).Info("recording too long")
		tooLong := speechmodel.NewCaptureError(speechmodel.ReasonTooLong, nil)
		h.respond(w, sessionID, coach.SpeechAnalysis{Transcript: speechmodel.Failed(tooLong)}, nil)
		return
	}

	result, err := h.analyzer.AnalyzeSpeech(r.Context(), sessionID, audio)
	h.respond(w, sessionID, result, err)
}

// handleAnalyzeText 处理直接输入的文字稿
func (h *Handler) handleAnalyzeText(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	var payload struct {
		Text string `json:"text"`
	}
	if err := utils.DecodeJSON(r, &payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := h.analyzer.AnalyzeText(r.Context(), sessionID, payload.Text)
	h.respond(w, sessionID, result, err)
}

func (h *Handler) respond(w http.ResponseWriter, sessionID string, result coach.SpeechAnalysis, err error) {
	resp := analysisResponse{Transcript: result.Transcript.Text}

	if err != nil {
		status, message := apierror.Classify(err)
		h.logger.WithError(err).WithField("session", sessionID).Warn("analysis failed")
		resp.Error = message
		utils.RespondJSON(w, status, resp)
		return
	}

	if !result.Transcript.OK() {
		resp.CaptureError = result.Transcript.Failure.Message()
		utils.RespondJSON(w, http.StatusOK, resp)
		return
	}

	resp.Analysis = result.Analysis
	html, err := utils.RenderMarkdown(result.Analysis)
	if err != nil {
		h.logger.WithError(err).Warn("failed to render markdown")
	}
	resp.AnalysisHTML = string(html)

	utils.RespondJSON(w, http.StatusOK, resp)
}
