package config

import (
	"fmt"

	"github.com/caarlos0/env"
)

// Config holds everything the process reads from the environment. godotenv
// loads a .env file first (in main), then env.Parse fills the struct.
type Config struct {
	Environment string `env:"APP_ENV" envDefault:"production"`
	Port        string `env:"PORT" envDefault:"5000"`

	// Empty DATABASE_URL switches the server to in-memory demo stores.
	DatabaseURL string `env:"DATABASE_URL"`
	RedisURL    string `env:"REDIS_URL"`

	JWTSecret      string `env:"JWT_SECRET"`
	GoogleClientID string `env:"GOOGLE_CLIENT_ID"`
	GeminiAPIKey   string `env:"GEMINI_API_KEY"`

	ResendAPIKey string `env:"RESEND_API_KEY"`
	MailFrom     string `env:"MAIL_FROM" envDefault:"no-reply@localhost"`
	MailFromName string `env:"MAIL_FROM_NAME" envDefault:"Shri Ganesh Electricals"`
	AppBaseURL   string `env:"APP_BASE_URL" envDefault:"http://localhost:5173"`
}

// Load parses the environment into a Config.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is not set")
	}
	return cfg, nil
}

// IsDevelopment reports whether the app runs in a development environment.
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}
