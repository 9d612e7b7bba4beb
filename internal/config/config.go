package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config 聚合整个服务的配置项。
type Config struct {
	Server ServerConfig
	Log    LogConfig
	LLM    LLMConfig
	Speech SpeechConfig
	Chat   ChatConfig
}

// Load 先读取可选的 YAML 文件（CONFIG_FILE），再用环境变量覆盖。
func Load() (*Config, error) {
	file, err := loadFile(strings.TrimSpace(os.Getenv("CONFIG_FILE")))
	if err != nil {
		return nil, err
	}

	server, err := loadServerConfig(file)
	if err != nil {
		return nil, err
	}

	llm, err := loadLLMConfig(file)
	if err != nil {
		return nil, err
	}

	speech, err := loadSpeechConfig(file)
	if err != nil {
		return nil, err
	}

	chat, err := loadChatConfig(file)
	if err != nil {
		return nil, err
	}

	return &Config{
		Server: server,
		Log:    LogConfig{Level: pick("LOG_LEVEL", file.Log.Level, "info")},
		LLM:    llm,
		Speech: speech,
		Chat:   chat,
	}, nil
}

// ServerConfig 描述 HTTP 服务配置。
type ServerConfig struct {
	Addr string
}

// LogConfig 描述日志配置。
type LogConfig struct {
	Level string
}

// loadServerConfig 解析服务器监听地址。
func loadServerConfig(file fileConfig) (ServerConfig, error) {
	port := pick("PORT", file.Server.Port, "8080")

	if strings.Contains(port, ":") {
		// 允许用户直接传入 ":8080" 或 "127.0.0.1:8080"。
		return ServerConfig{Addr: port}, nil
	}

	if strings.Contains(port, " ") {
		return ServerConfig{}, fmt.Errorf("invalid PORT value: %q", port)
	}

	return ServerConfig{Addr: ":" + port}, nil
}

// 支持的大模型供应商。
const (
	ProviderGroq   = "groq"
	ProviderOpenAI = "openai"
	ProviderArk    = "ark"
	ProviderGemini = "gemini"
)

const (
	defaultGroqBaseURL = "https://api.groq.com/openai/v1"
	defaultGroqModel   = "llama-3.3-70b-versatile"
	defaultOpenAIModel = "gpt-4o-mini"
	defaultGeminiModel = "gemini-2.0-flash"
	defaultArkBaseURL  = "https://ark.cn-beijing.volces.com/api/v3"
)

// LLMConfig 描述大模型相关配置。
type LLMConfig struct {
	Provider    string
	APIKey      string
	AccessKey   string
	SecretKey   string
	BaseURL     string
	Region      string
	Model       string
	Temperature *float64
	MaxTokens   *int
	Timeout     time.Duration
}

// Configured 表示是否提供了调用所需的凭证。缺失时不在启动阶段报错，而是在首次调用时失败。
func (c LLMConfig) Configured() bool {
	if c.Provider == ProviderArk {
		return c.Model != "" && (c.APIKey != "" || (c.AccessKey != "" && c.SecretKey != ""))
	}
	return c.APIKey != ""
}

func loadLLMConfig(file fileConfig) (LLMConfig, error) {
	provider := strings.ToLower(pick("LLM_PROVIDER", file.LLM.Provider, ProviderGroq))

	temperature, err := parseOptionalFloatEnv("LLM_TEMPERATURE")
	if err != nil {
		return LLMConfig{}, err
	}
	if temperature == nil {
		temperature = file.LLM.Temperature
	}

	maxTokens, err := parseOptionalIntEnv("LLM_MAX_TOKENS")
	if err != nil {
		return LLMConfig{}, err
	}
	if maxTokens == nil {
		maxTokens = file.LLM.MaxTokens
	}

	timeout, err := parseSecondsEnv("LLM_TIMEOUT", file.LLM.TimeoutSeconds, 60)
	if err != nil {
		return LLMConfig{}, err
	}

	cfg := LLMConfig{
		Provider:    provider,
		Temperature: temperature,
		MaxTokens:   maxTokens,
		Timeout:     timeout,
	}

	switch provider {
	case ProviderGroq:
		cfg.APIKey = pick("GROQ_API_KEY", file.LLM.APIKey, "")
		cfg.BaseURL = pick("OPENAI_BASE_URL", file.LLM.BaseURL, defaultGroqBaseURL)
		cfg.Model = pick("LLM_MODEL", file.LLM.Model, defaultGroqModel)
	case ProviderOpenAI:
		cfg.APIKey = pick("OPENAI_API_KEY", file.LLM.APIKey, "")
		cfg.BaseURL = pick("OPENAI_BASE_URL", file.LLM.BaseURL, "")
		cfg.Model = pick("LLM_MODEL", file.LLM.Model, defaultOpenAIModel)
	case ProviderArk:
		cfg.APIKey = pick("ARK_API_KEY", file.LLM.APIKey, "")
		cfg.AccessKey = pick("ARK_ACCESS_KEY", "", "")
		cfg.SecretKey = pick("ARK_SECRET_KEY", "", "")
		cfg.BaseURL = pick("ARK_BASE_URL", file.LLM.BaseURL, defaultArkBaseURL)
		cfg.Region = pick("ARK_REGION", "", "cn-beijing")
		cfg.Model = pick("LLM_MODEL", file.LLM.Model, "")
	case ProviderGemini:
		cfg.APIKey = pick("GEMINI_API_KEY", file.LLM.APIKey, "")
		cfg.Model = pick("LLM_MODEL", file.LLM.Model, defaultGeminiModel)
	default:
		return LLMConfig{}, fmt.Errorf("unsupported LLM_PROVIDER %q", provider)
	}

	return cfg, nil
}

// SpeechConfig 描述语音识别服务相关配置
type SpeechConfig struct {
	AppID          string
	AccessToken    string
	BaseURL        string
	Language       string
	ConcurrentMode bool
	Timeout        time.Duration
	ListenSeconds  int
	Enabled        bool
}

func loadSpeechConfig(file fileConfig) (SpeechConfig, error) {
	timeout, err := parseSecondsEnv("SPEECH_TIMEOUT", file.Speech.TimeoutSeconds, 30)
	if err != nil {
		return SpeechConfig{}, err
	}

	listen, err := parseOptionalIntEnv("SPEECH_LISTEN_SECONDS")
	if err != nil {
		return SpeechConfig{}, err
	}
	listenSeconds := 15
	if listen != nil {
		listenSeconds = *listen
	} else if file.Speech.ListenSeconds > 0 {
		listenSeconds = file.Speech.ListenSeconds
	}
	if listenSeconds < 1 {
		listenSeconds = 1
	}

	concurrent, err := parseBoolEnv("SPEECH_CONCURRENT_MODE", file.Speech.ConcurrentMode)
	if err != nil {
		return SpeechConfig{}, err
	}

	appID := pick("SPEECH_APP_ID", file.Speech.AppID, "")
	accessToken := pick("SPEECH_ACCESS_TOKEN", file.Speech.AccessToken, "")
	if accessToken == "" {
		accessToken = pick("SPEECH_API_KEY", "", "")
	}

	return SpeechConfig{
		AppID:          appID,
		AccessToken:    accessToken,
		BaseURL:        pick("SPEECH_BASE_URL", file.Speech.BaseURL, ""),
		Language:       pick("SPEECH_LANGUAGE", file.Speech.Language, "en-US"),
		ConcurrentMode: concurrent,
		Timeout:        timeout,
		ListenSeconds:  listenSeconds,
		Enabled:        appID != "" && accessToken != "",
	}, nil
}

// ChatConfig 描述会话与历史记录配置。
type ChatConfig struct {
	HistoryLimit int
	IdleTimeout  time.Duration
	DefaultTutor string
}

func loadChatConfig(file fileConfig) (ChatConfig, error) {
	limit := 200
	if file.Chat.HistoryLimit != nil {
		limit = *file.Chat.HistoryLimit
	}
	if override, err := parseOptionalIntEnv("CHAT_HISTORY_LIMIT"); err != nil {
		return ChatConfig{}, err
	} else if override != nil {
		limit = *override
	}
	if limit < 0 {
		limit = 0
	}

	idle := 2 * time.Hour
	if raw := pick("SESSION_IDLE_TIMEOUT", file.Chat.IdleTimeout, ""); raw != "" {
		parsed, err := time.ParseDuration(raw)
		if err != nil {
			return ChatConfig{}, fmt.Errorf("invalid SESSION_IDLE_TIMEOUT value %q: %w", raw, err)
		}
		idle = parsed
	}

	return ChatConfig{
		HistoryLimit: limit,
		IdleTimeout:  idle,
		DefaultTutor: pick("DEFAULT_TUTOR", file.Chat.DefaultTutor, "hinglish"),
	}, nil
}

// pick 按 环境变量 > 配置文件 > 默认值 的顺序取值。
func pick(key, fileValue, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	if value := strings.TrimSpace(fileValue); value != "" {
		return value
	}
	return defaultValue
}

func parseBoolEnv(key string, defaultValue bool) (bool, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return defaultValue, nil
	}

	val, err := strconv.ParseBool(raw)
	if err != nil {
		return false, fmt.Errorf("invalid %s value %q: %w", key, raw, err)
	}
	return val, nil
}

func parseOptionalFloatEnv(key string) (*float64, error) {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return nil, nil
	}

	value := strings.TrimSpace(raw)
	if value == "" {
		return nil, nil
	}

	val, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid %s value %q: %w", key, value, err)
	}
	return &val, nil
}

func parseOptionalIntEnv(key string) (*int, error) {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return nil, nil
	}

	value := strings.TrimSpace(raw)
	if value == "" {
		return nil, nil
	}

	val, err := strconv.Atoi(value)
	if err != nil {
		return nil, fmt.Errorf("invalid %s value %q: %w", key, value, err)
	}
	return &val, nil
}

// parseSecondsEnv 读取以秒为单位的超时设置。
func parseSecondsEnv(key string, fileValue, defaultSeconds int) (time.Duration, error) {
	seconds := defaultSeconds
	if fileValue > 0 {
		seconds = fileValue
	}

	override, err := parseOptionalIntEnv(key)
	if err != nil {
		return 0, err
	}
	if override != nil {
		seconds = *override
	}
	if seconds < 1 {
		return 0, fmt.Errorf("invalid %s value %d: must be positive", key, seconds)
	}
	return time.Duration(seconds) * time.Second, nil
}
