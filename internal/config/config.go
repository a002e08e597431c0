package config

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/cloudwego/eino-ext/components/model/ark"
	"github.com/cloudwego/eino/components/model"
)

// Config aggregates every setting of the service.
type Config struct {
	Server   ServerConfig
	App      AppConfig
	Store    StoreConfig
	MQTT     MQTTConfig
	AI       AIConfig
	Advisory AdvisoryConfig
}

// Load reads the configuration from environment variables.
func Load() (*Config, error) {
	server, err := loadServerConfig()
	if err != nil {
		return nil, err
	}

	app, err := loadAppConfig()
	if err != nil {
		return nil, err
	}

	mqtt, err := loadMQTTConfig()
	if err != nil {
		return nil, err
	}

	ai, err := loadAIConfig()
	if err != nil {
		return nil, err
	}

	advisory, err := loadAdvisoryConfig()
	if err != nil {
		return nil, err
	}

	return &Config{
		Server:   server,
		App:      app,
		Store:    StoreConfig{Path: getEnvOrDefault("SQLITE_PATH", "data/advisory.db")},
		MQTT:     mqtt,
		AI:       ai,
		Advisory: advisory,
	}, nil
}

// ServerConfig describes the HTTP listener.
type ServerConfig struct {
	Addr string
}

func loadServerConfig() (ServerConfig, error) {
	port := strings.TrimSpace(os.Getenv("PORT"))
	if port == "" {
		port = "8080"
	}

	if strings.Contains(port, ":") {
		// Accept ":8080" or "127.0.0.1:8080" as is.
		return ServerConfig{Addr: port}, nil
	}

	if strings.Contains(port, " ") {
		return ServerConfig{}, fmt.Errorf("invalid PORT value: %q", port)
	}

	return ServerConfig{Addr: ":" + port}, nil
}

// AppConfig selects the runtime environment and log verbosity.
type AppConfig struct {
	Env      string
	LogLevel slog.Level
}

// Dev reports whether the service runs with developer defaults.
func (c AppConfig) Dev() bool {
	return c.Env == "dev"
}

func loadAppConfig() (AppConfig, error) {
	env := getEnvOrDefault("APP_ENV", "dev")
	switch env {
	case "dev", "prod":
	default:
		return AppConfig{}, fmt.Errorf("invalid APP_ENV %q (allowed: dev, prod)", env)
	}

	level, err := ParseLogLevel(getEnvOrDefault("LOG_LEVEL", "info"))
	if err != nil {
		return AppConfig{}, err
	}
	return AppConfig{Env: env, LogLevel: level}, nil
}

// ParseLogLevel maps debug, info, warn and error to slog levels.
func ParseLogLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("invalid LOG_LEVEL %q (allowed: debug, info, warn, error)", s)
	}
}

// StoreConfig locates the SQLite database.
type StoreConfig struct {
	Path string
}

// MQTTConfig describes the field-station telemetry broker.
type MQTTConfig struct {
	Enabled  bool
	Broker   string
	Port     int
	ClientID string
	Topic    string
}

func loadMQTTConfig() (MQTTConfig, error) {
	enabled, err := parseBoolEnv("MQTT_ENABLED", false)
	if err != nil {
		return MQTTConfig{}, err
	}

	port := 1883
	if override, err := parseOptionalIntEnv("MQTT_PORT"); err != nil {
		return MQTTConfig{}, err
	} else if override != nil {
		if *override <= 0 || *override > 65535 {
			return MQTTConfig{}, fmt.Errorf("invalid MQTT_PORT value %d", *override)
		}
		port = *override
	}

	return MQTTConfig{
		Enabled:  enabled,
		Broker:   getEnvOrDefault("MQTT_BROKER", "localhost"),
		Port:     port,
		ClientID: getEnvOrDefault("MQTT_CLIENT_ID", "crop-advisory"),
		Topic:    getEnvOrDefault("MQTT_TOPIC", "farm/+/telemetry"),
	}, nil
}

// AIConfig describes the optional Ark chat model used for intent fallback.
type AIConfig struct {
	APIKey           string
	AccessKey        string
	SecretKey        string
	Model            string
	BaseURL          string
	Region           string
	Temperature      *float64
	MaxTokens        *int
	IntentLLMEnabled bool
}

// Enabled reports whether the required credentials are present.
func (c AIConfig) Enabled() bool {
	return c.Model != "" && (c.APIKey != "" || (c.AccessKey != "" && c.SecretKey != ""))
}

// NewChatModel builds an Ark chat model from the configuration.
func (c AIConfig) NewChatModel(ctx context.Context) (model.ChatModel, error) {
	if !c.Enabled() {
		return nil, fmt.Errorf("ark credentials or model missing: set ARK_MODEL and ARK_API_KEY or an AK/SK pair")
	}

	var temperature *float32
	if c.Temperature != nil {
		val := float32(*c.Temperature)
		temperature = &val
	}

	var maxTokens *int
	if c.MaxTokens != nil {
		val := *c.MaxTokens
		maxTokens = &val
	}

	cfg := &ark.ChatModelConfig{
		BaseURL:     c.BaseURL,
		Region:      c.Region,
		APIKey:      c.APIKey,
		AccessKey:   c.AccessKey,
		SecretKey:   c.SecretKey,
		Model:       c.Model,
		MaxTokens:   maxTokens,
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

	intentEnabled, err := parseBoolEnv("INTENT_LLM_ENABLED", false)
	if err != nil {
		return AIConfig{}, err
	}

	return AIConfig{
		APIKey:           strings.TrimSpace(os.Getenv("ARK_API_KEY")),
		AccessKey:        strings.TrimSpace(os.Getenv("ARK_ACCESS_KEY")),
		SecretKey:        strings.TrimSpace(os.Getenv("ARK_SECRET_KEY")),
		Model:            strings.TrimSpace(os.Getenv("ARK_MODEL")),
		BaseURL:          getEnvOrDefault("ARK_BASE_URL", "https://ark.cn-beijing.volces.com/api/v3"),
		Region:           getEnvOrDefault("ARK_REGION", "cn-beijing"),
		Temperature:      temperature,
		MaxTokens:        maxTokens,
		IntentLLMEnabled: intentEnabled,
	}, nil
}

// AdvisoryConfig holds the language and location defaults for chat sessions.
type AdvisoryConfig struct {
	Languages       []string
	DefaultLanguage string
	DefaultDistrict string
	ForecastDays    int
}

func loadAdvisoryConfig() (AdvisoryConfig, error) {
	langs := splitList(getEnvOrDefault("SUPPORTED_LANGUAGES", "en,pa"))
	if len(langs) == 0 {
		return AdvisoryConfig{}, fmt.Errorf("SUPPORTED_LANGUAGES must list at least one language")
	}

	defaultLang := strings.ToLower(getEnvOrDefault("DEFAULT_LANGUAGE", "en"))
	found := false
	for _, l := range langs {
		if l == defaultLang {
			found = true
			break
		}
	}
	if !found {
		return AdvisoryConfig{}, fmt.Errorf("DEFAULT_LANGUAGE %q is not in SUPPORTED_LANGUAGES", defaultLang)
	}

	days := 6
	if override, err := parseOptionalIntEnv("FORECAST_DAYS"); err != nil {
		return AdvisoryConfig{}, err
	} else if override != nil {
		if *override < 1 {
			return AdvisoryConfig{}, fmt.Errorf("invalid FORECAST_DAYS value %d", *override)
		}
		days = *override
	}

	return AdvisoryConfig{
		Languages:       langs,
		DefaultLanguage: defaultLang,
		DefaultDistrict: getEnvOrDefault("DEFAULT_DISTRICT", "Ludhiana"),
		ForecastDays:    days,
	}, nil
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if v := strings.ToLower(strings.TrimSpace(part)); v != "" {
			out = append(out, v)
		}
	}
	return out
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
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
