package tutor

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/zhouzirui/speak-coach/backend/internal/model/tutor"
	"github.com/zhouzirui/speak-coach/backend/pkg/utils"
)

// Handler 导师目录的HTTP处理器
type Handler struct {
	tutors tutor.Store
}

// New 创建导师处理器
func New(tutors tutor.Store) *Handler {
	return &Handler{tutors: tutors}
}

// RegisterRoutes 注册导师相关的路由
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/tutors", h.handleListTutors)
}

func (h *Handler) handleListTutors(w http.ResponseWriter, r *http.Request) {
	utils.RespondJSON(w, http.StatusOK, h.tutors.List())
}
