package config

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/cloudwego/eino-ext/components/model/ark"
	"github.com/cloudwego/eino/components/model"
)

// Config 聚合整个服务的配置项。
type Config struct {
	Server ServerConfig
	AI     AIConfig
	Game   GameConfig
}

// Load 从环境变量加载配置。
func Load() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	addr, err := resolveAddr(cfg.Server.Port)
	if err != nil {
		return nil, err
	}
	cfg.Server.Addr = addr

	cfg.AI.normalize()

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// ServerConfig 描述 HTTP 服务配置。
type ServerConfig struct {
	Port            string        `env:"PORT" envDefault:"8080"`
	Addr            string
	AllowedOrigins  []string      `env:"CORS_ALLOWED_ORIGINS" envSeparator:"," envDefault:"*"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`
}

// resolveAddr 解析服务器监听地址。
func resolveAddr(port string) (string, error) {
	port = strings.TrimSpace(port)
	if port == "" {
		port = "8080"
	}

	if strings.Contains(port, ":") {
		// 允许用户直接传入 ":8080" 或 "127.0.0.1:8080"。
		return port, nil
	}

	if strings.Contains(port, " ") {
		return "", fmt.Errorf("invalid PORT value: %q", port)
	}

	return ":" + port, nil
}

// AIConfig 描述提问模型相关配置。
type AIConfig struct {
	APIKey      string        `env:"ARK_API_KEY"`
	AccessKey   string        `env:"ARK_ACCESS_KEY"`
	SecretKey   string        `env:"ARK_SECRET_KEY"`
	Model       string        `env:"ARK_MODEL"`
	BaseURL     string        `env:"ARK_BASE_URL" envDefault:"https://ark.cn-beijing.volces.com/api/v3"`
	Region      string        `env:"ARK_REGION" envDefault:"cn-beijing"`
	Temperature float32       `env:"ARK_TEMPERATURE" envDefault:"0.7"`
	TopP        *float32      `env:"ARK_TOP_P"`
	MaxTokens   int           `env:"ARK_MAX_TOKENS" envDefault:"150"`
	CallTimeout time.Duration `env:"AI_CALL_TIMEOUT" envDefault:"30s"`
}

func (c *AIConfig) normalize() {
	c.APIKey = strings.TrimSpace(c.APIKey)
	c.AccessKey = strings.TrimSpace(c.AccessKey)
	c.SecretKey = strings.TrimSpace(c.SecretKey)
	c.Model = strings.TrimSpace(c.Model)
}

// Enabled 表示是否提供了必需的密钥。
func (c AIConfig) Enabled() bool {
	return c.Model != "" && (c.APIKey != "" || (c.AccessKey != "" && c.SecretKey != ""))
}

// NewChatModel 使用配置创建一个模型实例。Ark 客户端自身不重试，失败直接交给调用方。
func (c AIConfig) NewChatModel(ctx context.Context) (model.ChatModel, error) {
	if !c.Enabled() {
		return nil, fmt.Errorf("Ark 凭证或模型配置缺失，至少提供 ARK_API_KEY + ARK_MODEL 或 AK/SK 组合")
	}

	temperature := c.Temperature
	maxTokens := c.MaxTokens
	retries := 0

	cfg := &ark.ChatModelConfig{
		BaseURL:     c.BaseURL,
		Region:      c.Region,
		APIKey:      c.APIKey,
		AccessKey:   c.AccessKey,
		SecretKey:   c.SecretKey,
		Model:       c.Model,
		MaxTokens:   &maxTokens,
		Temperature: &temperature,
		TopP:        c.TopP,
		RetryTimes:  &retries,
	}
	if c.CallTimeout > 0 {
		timeout := c.CallTimeout
		cfg.Timeout = &timeout
	}

	return ark.NewChatModel(ctx, cfg)
}

// GameConfig 描述对局规则与会话回收策略。
type GameConfig struct {
	BaseLimit      int           `env:"GAME_BASE_LIMIT" envDefault:"20"`
	GraceLimit     int           `env:"GAME_GRACE_LIMIT" envDefault:"25"`
	IdleTimeout    time.Duration `env:"GAME_SESSION_IDLE_TIMEOUT" envDefault:"30m"`
	ReaperInterval time.Duration `env:"GAME_REAPER_INTERVAL" envDefault:"1m"`
}

func (c *Config) validate() error {
	var errs []error

	if c.AI.Temperature < 0 || c.AI.Temperature > 2 {
		errs = append(errs, fmt.Errorf("invalid ARK_TEMPERATURE value %v: must be between 0 and 2", c.AI.Temperature))
	}
	if c.AI.MaxTokens <= 0 {
		errs = append(errs, fmt.Errorf("invalid ARK_MAX_TOKENS value %d: must be positive", c.AI.MaxTokens))
	}
	if c.Server.ShutdownTimeout <= 0 {
		errs = append(errs, fmt.Errorf("invalid SHUTDOWN_TIMEOUT value %s", c.Server.ShutdownTimeout))
	}
	if c.Game.BaseLimit <= 0 {
		errs = append(errs, fmt.Errorf("invalid GAME_BASE_LIMIT value %d: must be positive", c.Game.BaseLimit))
	}
	if c.Game.GraceLimit < c.Game.BaseLimit {
		errs = append(errs, fmt.Errorf("invalid GAME_GRACE_LIMIT value %d: must not be below GAME_BASE_LIMIT %d", c.Game.GraceLimit, c.Game.BaseLimit))
	}
	if c.Game.IdleTimeout <= 0 {
		errs = append(errs, fmt.Errorf("invalid GAME_SESSION_IDLE_TIMEOUT value %s", c.Game.IdleTimeout))
	}

	return errors.Join(errs...)
}
