package speech

import (
	"errors"
	"fmt"
)

// ErrSpeechCapture 是所有录音/识别失败的公共标记，可用 errors.Is 判断。
var ErrSpeechCapture = errors.New("speech capture failed")

// CaptureReason 是展示给用户的失败原因。
type CaptureReason string

const (
	ReasonNoAudio            CaptureReason = "no audio was captured"
	ReasonUnsupportedFormat  CaptureReason = "unsupported audio format"
	ReasonNotRecognized      CaptureReason = "speech could not be recognized"
	ReasonServiceUnavailable CaptureReason = "speech service is unavailable"
	ReasonNotConfigured      CaptureReason = "speech service is not configured"
	ReasonTimeout            CaptureReason = "speech recognition timed out"
	ReasonTooLong            CaptureReason = "recording is too long"
)

// CaptureError 表示在拿到文字稿之前发生的任何失败。
type CaptureError struct {
	Reason CaptureReason
	Cause  error
}

// NewCaptureError 创建带底层原因的采集错误。
func NewCaptureError(reason CaptureReason, cause error) *CaptureError {
	return &CaptureError{Reason: reason, Cause: cause}
}

func (e *CaptureError) Error() string {
	if e.Cause == nil {
		return fmt.Sprintf("error recording speech: %s", e.Reason)
	}
	return fmt.Sprintf("error recording speech: %s: %v", e.Reason, e.Cause)
}

// Message 返回可以直接展示给用户的提示。
func (e *CaptureError) Message() string {
	return "Error recording speech: " + string(e.Reason)
}

func (e *CaptureError) Unwrap() error { return e.Cause }

func (e *CaptureError) Is(target error) bool { return target == ErrSpeechCapture }

// TranscriptResult 是转写结果：要么成功带文字，要么失败带原因，二者互斥。
type TranscriptResult struct {
	Text    string
	Failure *CaptureError
}

// Succeeded 构造成功的转写结果。
func Succeeded(text string) TranscriptResult {
	return TranscriptResult{Text: text}
}

// Failed 构造失败的转写结果。
func Failed(err *CaptureError) TranscriptResult {
	return TranscriptResult{Failure: err}
}

// OK 报告转写是否成功。
func (r TranscriptResult) OK() bool {
	return r.Failure == nil
}
