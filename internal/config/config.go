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
	Chat   ChatConfig
	Log    LogConfig
}

// Load 从环境变量加载配置。
func Load() (*Config, error) {
	server, err := loadServerConfig()
	if err != nil {
		return nil, err
	}

	chat, err := loadChatConfig()
	if err != nil {
		return nil, err
	}

	logCfg, err := loadLogConfig()
	if err != nil {
		return nil, err
	}

	return &Config{Server: server, Chat: chat, Log: logCfg}, nil
}

// ServerConfig 描述 HTTP 服务配置。
type ServerConfig struct {
	Addr           string
	AllowedOrigins []string
	MaxUploadBytes int64
}

// ChatConfig controls the simulated assistant.
type ChatConfig struct {
	ReplyDelay time.Duration
	Location   *time.Location
}

// LogConfig selects zap level and encoding.
type LogConfig struct {
	Level  string
	Format string
}

// loadServerConfig 解析服务器监听地址。
func loadServerConfig() (ServerConfig, error) {
	port := strings.TrimSpace(os.Getenv("PORT"))
	if port == "" {
		port = "8080"
	}

	maxUploadMB, err := parseOptionalIntEnv("LABSENSE_MAX_UPLOAD_MB")
	if err != nil {
		return ServerConfig{}, err
	}
	maxUpload := int64(32)
	if maxUploadMB != nil {
		if *maxUploadMB < 1 {
			return ServerConfig{}, fmt.Errorf("invalid LABSENSE_MAX_UPLOAD_MB value %d: must be positive", *maxUploadMB)
		}
		maxUpload = int64(*maxUploadMB)
	}

	cfg := ServerConfig{
		AllowedOrigins: parseListEnv("LABSENSE_ALLOWED_ORIGINS", []string{"*"}),
		MaxUploadBytes: maxUpload << 20,
	}

	if strings.Contains(port, ":") {
		// 允许用户直接传入 ":8080" 或 "127.0.0.1:8080"。
		cfg.Addr = port
		return cfg, nil
	}

	if strings.Contains(port, " ") {
		return ServerConfig{}, fmt.Errorf("invalid PORT value: %q", port)
	}

	cfg.Addr = ":" + port
	return cfg, nil
}

func loadChatConfig() (ChatConfig, error) {
	delay, err := parseDurationEnv("LABSENSE_REPLY_DELAY", time.Second)
	if err != nil {
		return ChatConfig{}, err
	}
	if delay < 0 {
		return ChatConfig{}, fmt.Errorf("invalid LABSENSE_REPLY_DELAY value %s: must not be negative", delay)
	}

	zone := getEnvOrDefault("LABSENSE_TIMEZONE", "Local")
	loc, err := time.LoadLocation(zone)
	if err != nil {
		return ChatConfig{}, fmt.Errorf("invalid LABSENSE_TIMEZONE value %q: %w", zone, err)
	}

	return ChatConfig{ReplyDelay: delay, Location: loc}, nil
}

func loadLogConfig() (LogConfig, error) {
	level := strings.ToLower(getEnvOrDefault("LOG_LEVEL", "info"))
	switch level {
	case "debug", "info", "warn", "error":
	default:
		return LogConfig{}, fmt.Errorf("invalid LOG_LEVEL value %q", level)
	}

	format := strings.ToLower(getEnvOrDefault("LOG_FORMAT", "json"))
	if format != "json" && format != "console" {
		return LogConfig{}, fmt.Errorf("invalid LOG_FORMAT value %q", format)
	}

	return LogConfig{Level: level, Format: format}, nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func parseListEnv(key string, defaultValue []string) []string {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return defaultValue
	}

	var items []string
	for _, item := range strings.Split(raw, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	if len(items) == 0 {
		return defaultValue
	}
	return items
}

// parseDurationEnv accepts Go durations ("1500ms") or bare milliseconds ("1500").
func parseDurationEnv(key string, defaultValue time.Duration) (time.Duration, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return defaultValue, nil
	}

	if ms, err := strconv.Atoi(raw); err == nil {
		return time.Duration(ms) * time.Millisecond, nil
	}

	val, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s value %q: %w", key, raw, err)
	}
	return val, nil
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
