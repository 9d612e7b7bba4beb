package ui

import (
	"bytes"
	"embed"
	"html/template"
	"io/fs"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"

	"github.com/zhouzirui/speak-coach/backend/internal/model/tutor"
)

//go:embed templates/*.html static/*
var assets embed.FS

// Options 页面渲染所需的运行时配置
type Options struct {
	DefaultTutor  string
	ListenSeconds int
	SpeechEnabled bool
	LLMReady      bool
}

type pageData struct {
	Options
	Title  string
	Tutors []tutor.Tutor
	Steps  []instruction
}

type instruction struct {
	Tab   string
	Items []string
}

// 侧边栏使用说明
var instructions = []instruction{
	{Tab: "In the Speech Analysis tab:", Items: []string{
		"Click on 'Start Recording'",
		"Speak in English",
		"View the analysis of your speech",
	}},
	{Tab: "In the Chat tab:", Items: []string{
		"Ask any questions about learning English",
		"Inquire about new words",
		"Understand grammar rules",
		"Ask for speaking tips",
	}},
}

// Handler 提供单页界面与静态资源
type Handler struct {
	page   *template.Template
	static http.Handler
	tutors tutor.Store
	opts   Options
	logger *logrus.Entry
}

// New 解析内嵌模板
func New(tutors tutor.Store, opts Options, logger *logrus.Entry) (*Handler, error) {
	page, err := template.ParseFS(assets, "templates/index.html")
	if err != nil {
		return nil, err
	}

	staticFS, err := fs.Sub(assets, "static")
	if err != nil {
		return nil, err
	}

	if opts.DefaultTutor == "" {
		opts.DefaultTutor = tutor.DefaultID
	}
	if opts.ListenSeconds < 1 {
		opts.ListenSeconds = 15
	}

	return &Handler{
		page:   page,
		static: http.StripPrefix("/static/", http.FileServer(http.FS(staticFS))),
		tutors: tutors,
		opts:   opts,
		logger: logger.WithField("component", "ui"),
	}, nil
}

// RegisterRoutes 注册页面路由
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.handleIndex)
	r.Handle("/static/*", h.static)
}

func (h *Handler) handleIndex(w http.ResponseWriter, r *http.Request) {
	data := pageData{
		Options: h.opts,
		Title:   "English Speech Improvement Assistant",
		Tutors:  h.tutors.List(),
		Steps:   instructions,
	}

	var buf bytes.Buffer
	if err := h.page.Execute(&buf, data); err != nil {
		h.logger.WithError(err).Error("failed to render page")
		http.Error(w, "failed to render page", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(buf.Bytes())
}
