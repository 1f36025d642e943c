package config

import (
	"fmt"
	"log"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Port        string `mapstructure:"PORT"`
	Env         string `mapstructure:"ENV"`
	DatabaseURL string `mapstructure:"DATABASE_URL"`
	DBMaxConns  int32  `mapstructure:"DB_MAX_CONNS"`
	DBMinConns  int32  `mapstructure:"DB_MIN_CONNS"`

	AuthMode   string `mapstructure:"AUTH_MODE"`
	AuthSecret string `mapstructure:"AUTH_SECRET"`

	OCRWorkers            int `mapstructure:"OCR_WORKERS"`
	OCRPassTimeoutSeconds int `mapstructure:"OCR_PASS_TIMEOUT_SECONDS"`

	OpenAIKey      string `mapstructure:"OPENAI_API_KEY"`
	AnthropicKey   string `mapstructure:"ANTHROPIC_API_KEY"`
	OllamaURL      string `mapstructure:"OLLAMA_URL"`
	NarrativeModel string `mapstructure:"NARRATIVE_MODEL"`

	BodyLimit string `mapstructure:"BODY_LIMIT"`
}

func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("PORT", "8000")
	v.SetDefault("ENV", "development")
	v.SetDefault("AUTH_MODE", "") // auto-detect: "" -> inferred from ENV
	v.SetDefault("DB_MAX_CONNS", 10)
	v.SetDefault("DB_MIN_CONNS", 2)
	v.SetDefault("OCR_WORKERS", 0) // 0 -> engine default (GOMAXPROCS)
	v.SetDefault("OCR_PASS_TIMEOUT_SECONDS", 30)
	v.SetDefault("BODY_LIMIT", "20M")

	// Bind env vars explicitly so Unmarshal picks them up
	v.BindEnv("PORT")
	v.BindEnv("ENV")
	v.BindEnv("DATABASE_URL")
	v.BindEnv("DB_MAX_CONNS")
	v.BindEnv("DB_MIN_CONNS")
	v.BindEnv("AUTH_MODE")
	v.BindEnv("AUTH_SECRET")
	v.BindEnv("OCR_WORKERS")
	v.BindEnv("OCR_PASS_TIMEOUT_SECONDS")
	v.BindEnv("OPENAI_API_KEY")
	v.BindEnv("ANTHROPIC_API_KEY")
	v.BindEnv("OLLAMA_URL")
	v.BindEnv("NARRATIVE_MODEL")
	v.BindEnv("BODY_LIMIT")

	// Try reading .env file, but don't fail if missing
	_ = v.ReadInConfig()

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if cfg.ResolvedAuthMode() == "development" {
		log.Println("WARNING: Server is running in DEVELOPMENT mode (ENV=development).")
		log.Println("WARNING: Requests are not authenticated. Do NOT use in production.")
	}

	return cfg, nil
}

func (c *Config) IsDev() bool {
	return c.Env == "development"
}

// IsProduction returns true when the server is configured for production mode.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// OCRPassTimeout returns the per-recognition-pass deadline.
func (c *Config) OCRPassTimeout() time.Duration {
	return time.Duration(c.OCRPassTimeoutSeconds) * time.Second
}

// ResolvedAuthMode returns the effective auth mode. If AUTH_MODE is explicitly
// set, it is returned. Otherwise, the mode is inferred:
//   - ENV=development → "development" (no auth)
//   - otherwise       → "jwt" (HS256 bearer tokens signed with AUTH_SECRET)
func (c *Config) ResolvedAuthMode() string {
	if c.AuthMode != "" {
		return c.AuthMode
	}
	if c.IsDev() {
		return "development"
	}
	return "jwt"
}

// Validate checks that the configuration is safe to run. Outside development
// a signing secret must be present so bearer tokens are actually verified.
func (c *Config) Validate() error {
	mode := c.ResolvedAuthMode()
	if mode != "development" && mode != "jwt" {
		return fmt.Errorf("AUTH_MODE must be \"development\" or \"jwt\", got %q", mode)
	}
	if mode == "jwt" && c.AuthSecret == "" {
		return fmt.Errorf("AUTH_SECRET is required when AUTH_MODE is \"jwt\". " +
			"Refusing to start without authentication configuration")
	}
	if c.IsProduction() && mode == "development" {
		return fmt.Errorf("AUTH_MODE=development is not allowed in production")
	}
	if c.OCRWorkers < 0 {
		return fmt.Errorf("OCR_WORKERS must be >= 0, got %d", c.OCRWorkers)
	}
	if c.OCRPassTimeoutSeconds <= 0 {
		return fmt.Errorf("OCR_PASS_TIMEOUT_SECONDS must be > 0, got %d", c.OCRPassTimeoutSeconds)
	}
	return nil
}
