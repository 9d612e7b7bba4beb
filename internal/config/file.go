package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// fileConfig 对应可选的 YAML 配置文件，所有字段都可以被环境变量覆盖。
type fileConfig struct {
	Server struct {
		Port string `yaml:"port"`
	} `yaml:"server"`

	Log struct {
		Level string `yaml:"level"`
	} `yaml:"log"`

	LLM struct {
		Provider       string   `yaml:"provider"`
		APIKey         string   `yaml:"apiKey"`
		BaseURL        string   `yaml:"baseUrl"`
		Model          string   `yaml:"model"`
		Temperature    *float64 `yaml:"temperature"`
		MaxTokens      *int     `yaml:"maxTokens"`
		TimeoutSeconds int      `yaml:"timeoutSeconds"`
	} `yaml:"llm"`

	Speech struct {
		AppID          string `yaml:"appId"`
		AccessToken    string `yaml:"accessToken"`
		BaseURL        string `yaml:"baseUrl"`
		Language       string `yaml:"language"`
		ConcurrentMode bool   `yaml:"concurrentMode"`
		TimeoutSeconds int    `yaml:"timeoutSeconds"`
		ListenSeconds  int    `yaml:"listenSeconds"`
	} `yaml:"speech"`

	Chat struct {
		HistoryLimit *int   `yaml:"historyLimit"`
		IdleTimeout  string `yaml:"idleTimeout"`
		DefaultTutor string `yaml:"defaultTutor"`
	} `yaml:"chat"`
}

// loadFile 读取 YAML 配置；path 为空时返回零值。
func loadFile(path string) (fileConfig, error) {
	var cfg fileConfig
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config file %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config file %s: %w", path, err)
	}
	return cfg, nil
}
