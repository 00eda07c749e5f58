package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App struct {
		Name     string `envconfig:"APP_NAME" default:"Finplan"`
		Port     int    `envconfig:"PORT" default:"8080"`
		LogLevel string `envconfig:"LOG_LEVEL" default:"info"`
	}

	DB struct {
		Host     string `envconfig:"DB_HOST" default:"localhost"`
		Port     int    `envconfig:"DB_PORT" default:"5432"`
		User     string `envconfig:"DB_USER" default:"postgres"`
		Password string `envconfig:"DB_PASSWORD" default:""`
		Name     string `envconfig:"DB_NAME" default:"finplan"`
	}

	Server struct {
		Timeout time.Duration `envconfig:"SERVER_TIMEOUT" default:"30s"`
	}

	Auth struct {
		JWTSecret string `envconfig:"JWT_SECRET"`
		Disabled  bool   `envconfig:"AUTH_DISABLED" default:"false"`
	}

	CORS struct {
		AllowedOrigins []string `envconfig:"CORS_ALLOWED_ORIGINS" default:"http://localhost:3000"`
	}

	Plaid struct {
		ClientID string        `envconfig:"PLAID_CLIENT_ID"`
		Secret   string        `envconfig:"PLAID_SECRET"`
		BaseURL  string        `envconfig:"PLAID_BASE_URL" default:"https://sandbox.plaid.com"`
		PageSize int           `envconfig:"PLAID_PAGE_SIZE" default:"500"`
		Timeout  time.Duration `envconfig:"PLAID_TIMEOUT" default:"20s"`
	}

	Analysis struct {
		RetryAttempts          int           `envconfig:"ANALYSIS_RETRY_ATTEMPTS" default:"3"`
		RetryDelay             time.Duration `envconfig:"ANALYSIS_RETRY_DELAY" default:"3s"`
		WindowDays             int           `envconfig:"ANALYSIS_WINDOW_DAYS" default:"30"`
		RecurringToleranceDays int           `envconfig:"ANALYSIS_RECURRING_TOLERANCE_DAYS" default:"3"`
		RecurringMinOccurrence int           `envconfig:"ANALYSIS_RECURRING_MIN_OCCURRENCES" default:"2"`
		GoalWriters            int           `envconfig:"ANALYSIS_GOAL_WRITERS" default:"4"`
		MaxGoalMonths          int           `envconfig:"ANALYSIS_MAX_GOAL_MONTHS" default:"600"`
	}
}

func (c *Config) ConnectionString() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable",
		c.DB.User, c.DB.Password, c.DB.Host, c.DB.Port, c.DB.Name)
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}

	if !cfg.Auth.Disabled && cfg.Auth.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required unless AUTH_DISABLED is set")
	}

	if cfg.Analysis.RetryAttempts < 1 {
		return nil, fmt.Errorf("ANALYSIS_RETRY_ATTEMPTS must be at least 1, got %d", cfg.Analysis.RetryAttempts)
	}

	return &cfg, nil
}
