package speech

import "time"

// SpeechConfig 语音识别服务配置
type SpeechConfig struct {
	// Volcengine 配置
	AppID          string `json:"appId"`          // 火山引擎 APP ID
	AccessToken    string `json:"accessToken"`    // 火山引擎 Access Token
	BaseURL        string `json:"baseUrl"`        // 覆盖默认的 WebSocket 端点
	ConcurrentMode bool   `json:"concurrentMode"` // ASR并发模式（false为小时版）

	// ASR 配置
	ASRLanguage string `json:"asrLanguage"`

	// 通用配置
	Timeout time.Duration `json:"timeout"`
}
