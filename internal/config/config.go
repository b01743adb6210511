package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds runtime configuration values for the API service.
type Config struct {
	AppName        string
	AppEnv         string
	AppPort        string
	AppURL         string
	DatabaseURL    string
	RedisURL       string
	CORSOrigins    string
	SessionCookie  string
	SessionTTL     time.Duration
	GoogleClientID string
	GoogleSecret   string
	OAuthRedirect  string
	LoginSuccess   string
	LoginFailure   string
	OpenAIAPIKey   string
	OpenAIBaseURL  string
	OpenAIModel    string
	ReplyMaxTokens int
	EvalMaxTokens  int
	NATSURL        string
	StreamRateMax  int
	StreamRateWin  time.Duration
}

// HTTPAddress returns the address the HTTP server should listen on.
func (c Config) HTTPAddress() string {
	if strings.HasPrefix(c.AppPort, ":") {
		return c.AppPort
	}

	return fmt.Sprintf(":%s", c.AppPort)
}

// Load reads configuration values from environment variables and optional .env file.
func Load() (Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("PREP")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("app.name", "Prepwise API")
	v.SetDefault("app.env", "development")
	v.SetDefault("app.port", "8080")
	v.SetDefault("app.url", "http://localhost:8080")
	v.SetDefault("cors.origins", "http://localhost:5173")
	v.SetDefault("session.cookie", "sid")
	v.SetDefault("session.ttl", "168h")
	v.SetDefault("login.success", "/")
	v.SetDefault("login.failure", "/")
	v.SetDefault("openai.model", "gpt-4o")
	v.SetDefault("reply.max_tokens", 512)
	v.SetDefault("eval.max_tokens", 1024)
	v.SetDefault("stream.rate_max", 10)
	v.SetDefault("stream.rate_window", "1m")

	ttl, err := time.ParseDuration(v.GetString("session.ttl"))
	if err != nil {
		return Config{}, fmt.Errorf("invalid session ttl: %w", err)
	}

	rateWindow, err := time.ParseDuration(v.GetString("stream.rate_window"))
	if err != nil {
		return Config{}, fmt.Errorf("invalid stream rate window: %w", err)
	}

	cfg := Config{
		AppName:        v.GetString("app.name"),
		AppEnv:         v.GetString("app.env"),
		AppPort:        v.GetString("app.port"),
		AppURL:         strings.TrimRight(v.GetString("app.url"), "/"),
		DatabaseURL:    v.GetString("database.url"),
		RedisURL:       v.GetString("redis.url"),
		CORSOrigins:    v.GetString("cors.origins"),
		SessionCookie:  v.GetString("session.cookie"),
		SessionTTL:     ttl,
		GoogleClientID: v.GetString("google.client_id"),
		GoogleSecret:   v.GetString("google.client_secret"),
		OAuthRedirect:  v.GetString("google.redirect_url"),
		LoginSuccess:   v.GetString("login.success"),
		LoginFailure:   v.GetString("login.failure"),
		OpenAIAPIKey:   v.GetString("openai_api_key"),
		OpenAIBaseURL:  v.GetString("openai_base_url"),
		OpenAIModel:    v.GetString("openai.model"),
		ReplyMaxTokens: v.GetInt("reply.max_tokens"),
		EvalMaxTokens:  v.GetInt("eval.max_tokens"),
		NATSURL:        v.GetString("nats.url"),
		StreamRateMax:  v.GetInt("stream.rate_max"),
		StreamRateWin:  rateWindow,
	}

	if cfg.OpenAIAPIKey == "" {
		return Config{}, fmt.Errorf("openai api key must be provided")
	}

	if cfg.OAuthRedirect == "" {
		cfg.OAuthRedirect = cfg.AppURL + "/api/auth/google/callback"
	}

	if cfg.ReplyMaxTokens <= 0 {
		cfg.ReplyMaxTokens = 512
	}

	if cfg.EvalMaxTokens <= 0 {
		cfg.EvalMaxTokens = 1024
	}

	return cfg, nil
}
