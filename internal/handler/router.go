package handler

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/sirupsen/logrus"

	"github.com/zhouzirui/speak-coach/backend/internal/handler/chat"
	"github.com/zhouzirui/speak-coach/backend/internal/handler/speech"
	"github.com/zhouzirui/speak-coach/backend/internal/handler/tutor"
	"github.com/zhouzirui/speak-coach/backend/internal/handler/ui"
	tutorModel "github.com/zhouzirui/speak-coach/backend/internal/model/tutor"
	chatService "github.com/zhouzirui/speak-coach/backend/internal/service/chat"
	coachService "github.com/zhouzirui/speak-coach/backend/internal/service/coach"
	"github.com/zhouzirui/speak-coach/backend/pkg/utils"
)

// Dependencies 路由需要的全部服务
type Dependencies struct {
	Logger       *logrus.Logger
	Tutors       tutorModel.Store
	Sessions     *chatService.Service
	Coach        *coachService.Service
	DefaultTutor string
	UI           ui.Options
}

// NewRouter wires HTTP routes to core services.
func NewRouter(deps Dependencies) (http.Handler, error) {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(deps.Logger))
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
		MaxAge:         300,
	}))

	entry := logrus.NewEntry(deps.Logger)

	uiHandler, err := ui.New(deps.Tutors, deps.UI, entry)
	if err != nil {
		return nil, err
	}
	uiHandler.RegisterRoutes(r)

	tutorHandler := tutor.New(deps.Tutors)
	chatHandler := chat.New(deps.Sessions, deps.Coach, deps.Tutors, deps.DefaultTutor, entry)
	speechHandler := speech.New(deps.Coach, entry)

	r.Route("/api", func(api chi.Router) {
		tutorHandler.RegisterRoutes(api)
		chatHandler.RegisterRoutes(api)
		speechHandler.RegisterRoutes(api)

		api.Get("/health", func(w http.ResponseWriter, r *http.Request) {
			utils.RespondJSON(w, http.StatusOK, map[string]any{
				"status":   "ok",
				"speech":   deps.UI.SpeechEnabled,
				"llm":      deps.UI.LLMReady,
				"sessions": deps.Sessions.Count(),
			})
		})
	})

	return r, nil
}

// requestLogger 使用 logrus 记录每个请求
func requestLogger(logger *logrus.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()

			next.ServeHTTP(ww, r)

			logger.WithFields(logrus.Fields{
				"component":  "http",
				"request_id": middleware.GetReqID(r.Context()),
				"method":     r.Method,
				"path":       r.URL.Path,
				"status":     ww.Status(),
				"bytes":      ww.BytesWritten(),
				"elapsed":    time.Since(start).Round(time.Millisecond),
			}).Info("request")
		})
	}
}
