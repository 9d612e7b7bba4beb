package apierror

import (
	"context"
	"errors"
	"net/http"

	"github.com/zhouzirui/speak-coach/backend/internal/service/chat"
	"github.com/zhouzirui/speak-coach/backend/internal/service/coach"
	"github.com/zhouzirui/speak-coach/backend/internal/service/llm"
	"github.com/zhouzirui/speak-coach/backend/pkg/utils"
)

// Classify 把服务层错误映射为 HTTP 状态码和可展示的提示。
// 无法识别的错误来自上游大模型，统一按 502 处理，原始错误只写日志。
func Classify(err error) (int, string) {
	switch {
	case errors.Is(err, chat.ErrSessionNotFound):
		return http.StatusNotFound, "session not found, start a new session"
	case errors.Is(err, chat.ErrTutorRequired), errors.Is(err, coach.ErrUnknownTutor):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, coach.ErrEmptyQuestion):
		return http.StatusBadRequest, "question is required"
	case errors.Is(err, llm.ErrQuotaExceeded):
		return http.StatusTooManyRequests, "the language model quota is exhausted, please try again later"
	case errors.Is(err, llm.ErrMissingCredential):
		return http.StatusServiceUnavailable, "the language model is not configured on the server"
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, "the language model took too long to answer"
	case errors.Is(err, llm.ErrEmptyCompletion):
		return http.StatusBadGateway, "the language model returned an empty answer"
	default:
		return http.StatusBadGateway, "the assistant could not answer, please try again"
	}
}

// Write 按 Classify 的结果输出错误响应
func Write(w http.ResponseWriter, err error) {
	status, message := Classify(err)
	utils.RespondError(w, status, message)
}
