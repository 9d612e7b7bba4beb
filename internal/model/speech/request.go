package speech

import (
	"io"
)

// ASRRequest 语音识别请求
type ASRRequest struct {
	SessionID string    `json:"sessionId"`
	AudioData io.Reader `json:"-"`
	Format    string    `json:"format"`   // wav, mp3, ogg, pcm
	Language  string    `json:"language"` // en-US, en-GB, etc.
}
