// Package config loads process configuration from the environment and optional .env files.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

const maxWorkers = 10

var DefaultEnvFiles = []string{".env", ".env.local"}

type ImportOptions struct {
	Workers        int           `env:"WORKERS" envDefault:"10"`
	ChunkSize      int           `env:"CHUNK_SIZE" envDefault:"500"`
	PollInterval   time.Duration `env:"POLL_INTERVAL" envDefault:"500ms"`
	TaskLease      time.Duration `env:"TASK_LEASE" envDefault:"60s"`
	MaxAttempts    int           `env:"TASK_MAX_ATTEMPTS" envDefault:"5"`
	MaxUploadSize  int64         `env:"MAX_UPLOAD_SIZE" envDefault:"10485760"`
	AdminUserID    string        `env:"ADMIN_USER_ID"`
	NotifyTemplate string        `env:"NOTIFY_TEMPLATE" envDefault:"employee_import_done"`
	BaseDir        string        `env:"BASE_DIR" envDefault:"."`
}

type SMTPOptions struct {
	Host     string        `env:"HOST"`
	Port     int           `env:"PORT" envDefault:"25"`
	Username string        `env:"USERNAME"`
	Password string        `env:"PASSWORD"`
	From     string        `env:"FROM" envDefault:"noreply@localhost"`
	Timeout  time.Duration `env:"TIMEOUT" envDefault:"30s"`
}

type Config struct {
	DatabaseURL   string `env:"DATABASE_URL"`
	Port          string `env:"PORT" envDefault:"8080"`
	LogLevel      string `env:"LOG_LEVEL" envDefault:"info"`
	AutoMigrate   bool   `env:"AUTO_MIGRATE" envDefault:"true"`
	PublicBaseURL string `env:"PUBLIC_BASE_URL"`

	Import ImportOptions `envPrefix:"IMPORT_"`
	SMTP   SMTPOptions   `envPrefix:"SMTP_"`
}

// LoadEnv loads the env files that exist. Variables already set in the process win.
func LoadEnv(envFiles []string) (int, error) {
	existing := make([]string, 0, len(envFiles))
	for _, file := range envFiles {
		if info, err := os.Stat(file); err == nil && !info.IsDir() {
			existing = append(existing, file)
		}
	}
	if len(existing) == 0 {
		return 0, nil
	}
	return len(existing), godotenv.Load(existing...)
}

func Load(envFiles ...string) (*Config, error) {
	if _, err := LoadEnv(envFiles); err != nil {
		return nil, fmt.Errorf("load env files: %w", err)
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	cfg.normalize()
	return cfg, nil
}

// RequireDatabase reports a missing DATABASE_URL.
func (c *Config) RequireDatabase() error {
	if strings.TrimSpace(c.DatabaseURL) == "" {
		return errors.New("DATABASE_URL is required")
	}
	return nil
}

func (c *Config) normalize() {
	if c.Import.Workers <= 0 || c.Import.Workers > maxWorkers {
		c.Import.Workers = maxWorkers
	}
	if c.Import.ChunkSize <= 0 {
		c.Import.ChunkSize = 500
	}
	if c.Import.MaxAttempts <= 0 {
		c.Import.MaxAttempts = 5
	}
	if c.Import.MaxUploadSize <= 0 {
		c.Import.MaxUploadSize = 10 << 20
	}
	if c.Port == "" {
		c.Port = "8080"
	}
	c.PublicBaseURL = strings.TrimRight(c.PublicBaseURL, "/")
}
