package chat

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"

	"github.com/zhouzirui/speak-coach/backend/internal/handler/apierror"
	"github.com/zhouzirui/speak-coach/backend/internal/model/chat"
	"github.com/zhouzirui/speak-coach/backend/internal/model/tutor"
	chatService "github.com/zhouzirui/speak-coach/backend/internal/service/chat"
	"github.com/zhouzirui/speak-coach/backend/internal/service/coach"
	"github.com/zhouzirui/speak-coach/backend/pkg/utils"
)

// Assistant 回答英语学习问题并维护聊天记录
type Assistant interface {
	Ask(ctx context.Context, sessionID, question string) ([]chat.Turn, error)
	History(ctx context.Context, sessionID string) ([]chat.Turn, error)
}

// Handler 会话与聊天的HTTP处理器
type Handler struct {
	chatSvc      *chatService.Service
	assistant    Assistant
	tutorStore   tutor.Store
	defaultTutor string
	logger       *logrus.Entry
}

// New 创建聊天处理器
func New(chatSvc *chatService.Service, assistant Assistant, tutorStore tutor.Store, defaultTutor string, logger *logrus.Entry) *Handler {
	if defaultTutor == "" {
		defaultTutor = tutor.DefaultID
	}
	return &Handler{
		chatSvc:      chatSvc,
		assistant:    assistant,
		tutorStore:   tutorStore,
		defaultTutor: defaultTutor,
		logger:       logger.WithField("component", "chat-handler"),
	}
}

// RegisterRoutes 注册会话与聊天相关的路由
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/session", h.handleCreateSession)
	r.Get("/chat/{sessionID}", h.handleHistory)
	r.Post("/chat/{sessionID}", h.handleAsk)
}

type turnView struct {
	Speaker   chat.Speaker `json:"speaker"`
	Message   string       `json:"message"`
	HTML      string       `json:"html"`
	CreatedAt time.Time    `json:"createdAt"`
}

type historyResponse struct {
	History []turnView `json:"history"`
}

// handleCreateSession 创建会话，未指定导师时使用默认导师
func (h *Handler) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		TutorID string `json:"tutorId"`
	}

	if err := utils.DecodeJSON(r, &payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	tutorID := payload.TutorID
	if tutorID == "" {
		tutorID = h.defaultTutor
	}

	if _, ok := h.tutorStore.FindByID(tutorID); !ok {
		utils.RespondError(w, http.StatusBadRequest, "tutor not found")
		return
	}

	session, err := h.chatSvc.CreateSession(r.Context(), tutorID)
	if err != nil {
		apierror.Write(w, err)
		return
	}

	h.logger.WithFields(logrus.Fields{"session": session.ID, "tutor": tutorID}).Info("session created")
	utils.RespondJSON(w, http.StatusCreated, session)
}

func (h *Handler) handleHistory(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")
	history, err := h.assistant.History(r.Context(), sessionID)
	if err != nil {
		h.logger.WithError(err).WithField("session", sessionID).Warn("load history failed")
		apierror.Write(w, err)
		return
	}
	h.respondHistory(w, history)
}

// handleAsk 提问。空问题不调用模型，直接返回当前记录。
func (h *Handler) handleAsk(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	var payload struct {
		Question string `json:"question"`
	}
	if err := utils.DecodeJSON(r, &payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	history, err := h.assistant.Ask(r.Context(), sessionID, payload.Question)
	if errors.Is(err, coach.ErrEmptyQuestion) {
		history, err = h.assistant.History(r.Context(), sessionID)
	}
	if err != nil {
		h.logger.WithError(err).WithField("session", sessionID).Warn("ask failed")
		apierror.Write(w, err)
		return
	}

	h.respondHistory(w, history)
}

func (h *Handler) respondHistory(w http.ResponseWriter, history []chat.Turn) {
	views := make([]turnView, 0, len(history))
	for _, turn := range history {
		html, err := utils.RenderMarkdown(turn.Message)
		if err != nil {
			h.logger.WithError(err).Warn("failed to render markdown")
		}
		views = append(views, turnView{
			Speaker:   turn.Speaker,
			Message:   turn.Message,
			HTML:      string(html),
			CreatedAt: turn.CreatedAt,
		})
	}
	utils.RespondJSON(w, http.StatusOK, historyResponse{History: views})
}
