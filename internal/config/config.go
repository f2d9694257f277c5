package config

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	Port            string        `env:"PORT" envDefault:"8080"`
	DefaultLanguage string        `env:"DEFAULT_LANGUAGE" envDefault:"en"`
	ThinkingDelay   time.Duration `env:"THINKING_DELAY" envDefault:"0s"`
	KnowledgeFile   string        `env:"KNOWLEDGE_FILE"`
	ReportFontPaths []string      `env:"REPORT_FONT_PATHS" envSeparator:":" envDefault:"/usr/share/fonts/ttf-dejavu/DejaVuSans.ttf:/usr/share/fonts/dejavu/DejaVuSans.ttf:/usr/share/fonts/truetype/dejavu/DejaVuSans.ttf"`
	AllowedOrigins  []string      `env:"CORS_ALLOWED_ORIGINS" envSeparator:"," envDefault:"*"`
	LogLevel        string        `env:"LOG_LEVEL" envDefault:"info"`
}

// Load reads an optional .env file and then parses the process environment.
// Variables already set in the environment win over the file.
func Load(envFile string) (Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			return Config{}, fmt.Errorf("error loading env file %q: %w", envFile, err)
		}
	}

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("error parsing config: %w", err)
	}
	if cfg.ThinkingDelay < 0 {
		return Config{}, fmt.Errorf("THINKING_DELAY must not be negative, got %s", cfg.ThinkingDelay)
	}
	return cfg, nil
}

func (c Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
