package config

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/cloudwego/eino-ext/components/model/ark"
	"github.com/cloudwego/eino/components/model"
)

// Config 聚合整个服务的配置项。
type Config struct {
	Server ServerConfig
	Store  StoreConfig
	Chat   ChatConfig
	AI     AIConfig
}

// Load 从环境变量加载配置。
func Load() (*Config, error) {
	server, err := loadServerConfig()
	if err != nil {
		return nil, err
	}

	store, err := loadStoreConfig()
	if err != nil {
		return nil, err
	}

	chat, err := loadChatConfig()
	if err != nil {
		return nil, err
	}

	ai, err := loadAIConfig()
	if err != nil {
		return nil, err
	}

	return &Config{Server: server, Store: store, Chat: chat, AI: ai}, nil
}

// ServerConfig 描述 HTTP 服务配置。
type ServerConfig struct {
	Addr string
}

// loadServerConfig 解析服务器监听地址。
func loadServerConfig() (ServerConfig, error) {
	port := strings.TrimSpace(os.Getenv("PORT"))
	if port == "" {
		port = "8080"
	}

	if strings.Contains(port, ":") {
		// 允许用户直接传入 ":8080" 或 "127.0.0.1:8080"。
		return ServerConfig{Addr: port}, nil
	}

	if strings.Contains(port, " ") {
		return ServerConfig{}, fmt.Errorf("invalid PORT value: %q", port)
	}

	return ServerConfig{Addr: ":" + port}, nil
}

// StoreConfig 描述会话持久化配置。
type StoreConfig struct {
	Backend   string
	Path      string
	Namespace string
}

func loadStoreConfig() (StoreConfig, error) {
	backend := strings.ToLower(getEnvOrDefault("CHAT_STORE_BACKEND", "pebble"))
	switch backend {
	case "memory", "pebble", "sqlite":
	default:
		return StoreConfig{}, fmt.Errorf("invalid CHAT_STORE_BACKEND value %q", backend)
	}

	defaultPath := "data/chat.pebble"
	if backend == "sqlite" {
		defaultPath = "data/chat.db"
	}

	return StoreConfig{
		Backend:   backend,
		Path:      getEnvOrDefault("CHAT_STORE_PATH", defaultPath),
		Namespace: getEnvOrDefault("CHAT_NAMESPACE", "mustafizur-chat"),
	}, nil
}

// ChatConfig 描述会话控制器与自动回复的行为。
type ChatConfig struct {
	ContactsFile    string
	ReplyMinDelay   time.Duration
	ReplyMaxDelay   time.Duration
	PersistDebounce time.Duration
	SendRate        float64
	SendBurst       int
}

func loadChatConfig() (ChatConfig, error) {
	minDelay, err := parseMillisEnv("CHAT_REPLY_MIN_DELAY_MS", 600*time.Millisecond)
	if err != nil {
		return ChatConfig{}, err
	}

	maxDelay, err := parseMillisEnv("CHAT_REPLY_MAX_DELAY_MS", 1600*time.Millisecond)
	if err != nil {
		return ChatConfig{}, err
	}
	if maxDelay < minDelay {
		return ChatConfig{}, fmt.Errorf("CHAT_REPLY_MAX_DELAY_MS (%s) must not be below CHAT_REPLY_MIN_DELAY_MS (%s)", maxDelay, minDelay)
	}

	debounce, err := parseMillisEnv("CHAT_PERSIST_DEBOUNCE_MS", 250*time.Millisecond)
	if err != nil {
		return ChatConfig{}, err
	}

	rate := 5.0
	if override, err := parseOptionalFloatEnv("CHAT_SEND_RATE"); err != nil {
		return ChatConfig{}, err
	} else if override != nil {
		rate = *override
	}

	burst := 10
	if override, err := parseOptionalIntEnv("CHAT_SEND_BURST"); err != nil {
		return ChatConfig{}, err
	} else if override != nil {
		if *override < 1 {
			burst = 1
		} else {
			burst = *override
		}
	}

	return ChatConfig{
		ContactsFile:    strings.TrimSpace(os.Getenv("CHAT_CONTACTS_FILE")),
		ReplyMinDelay:   minDelay,
		ReplyMaxDelay:   maxDelay,
		PersistDebounce: debounce,
		SendRate:        rate,
		SendBurst:       burst,
	}, nil
}

// AIConfig 描述大模型相关配置，用于可选的智能自动回复。
type AIConfig struct {
	APIKey      string
	AccessKey   string
	SecretKey   string
	Model       string
	BaseURL     string
	Region      string
	Temperature *float64
	MaxTokens   *int
}

// Enabled 表示是否提供了必需的密钥。
func (c AIConfig) Enabled() bool {
	return c.Model != "" && (c.APIKey != "" || (c.AccessKey != "" && c.SecretKey != ""))
}

// NewChatModel 使用配置创建一个模型实例。
func (c AIConfig) NewChatModel(ctx context.Context) (model.ChatModel, error) {
	if !c.Enabled() {
		return nil, fmt.Errorf("Ark 凭证或模型配置缺失，至少提供 ARK_API_KEY + Model 或 AK/SK 组合")
	}

	var temperature *float32
	if c.Temperature != nil {
		val := float32(*c.Temperature)
		temperature = &val
	}

	cfg := &ark.ChatModelConfig{
		BaseURL:     c.BaseURL,
		Region:      c.Region,
		APIKey:      c.APIKey,
		AccessKey:   c.AccessKey,
		SecretKey:   c.SecretKey,
		Model:       c.Model,
		MaxTokens:   c.MaxTokens,
		Temperature: temperature,
	}

	return ark.NewChatModel(ctx, cfg)
}

func loadAIConfig() (AIConfig, error) {
	temperature, err := parseOptionalFloatEnv("ARK_TEMPERATURE")
	if err != nil {
		return AIConfig{}, err
	}

	maxTokens, err := parseOptionalIntEnv("ARK_MAX_TOKENS")
	if err != nil {
		return AIConfig{}, err
	}

	return AIConfig{
		APIKey:      strings.TrimSpace(os.Getenv("ARK_API_KEY")),
		AccessKey:   strings.TrimSpace(os.Getenv("ARK_ACCESS_KEY")),
		SecretKey:   strings.TrimSpace(os.Getenv("ARK_SECRET_KEY")),
		Model:       strings.TrimSpace(os.Getenv("Model")),
		BaseURL:     getEnvOrDefault("ARK_BASE_URL", "https://ark.cn-beijing.volces.com/api/v3"),
		Region:      getEnvOrDefault("ARK_REGION", "cn-beijing"),
		Temperature: temperature,
		MaxTokens:   maxTokens,
	}, nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func parseMillisEnv(key string, defaultValue time.Duration) (time.Duration, error) {
	val, err := parseOptionalIntEnv(key)
	if err != nil {
		return 0, err
	}
	if val == nil {
		return defaultValue, nil
	}
	if *val < 0 {
		return 0, fmt.Errorf("invalid %s value %d: must not be negative", key, *val)
	}
	return time.Duration(*val) * time.Millisecond, nil
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
