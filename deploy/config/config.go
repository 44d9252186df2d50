package config

import (
	"log/slog"
	"net"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
	"github.com/pkg/errors"
)

type Config struct {
	HTTPServer HTTPServer
	Log        Log
}

type HTTPServer struct {
	Host            string        `env:"HTTP_HOST" env-default:"127.0.0.1"`
	Port            string        `env:"HTTP_PORT" env-default:"3000"`
	Timeout         time.Duration `env:"HTTP_TIMEOUT" env-default:"2m"`
	IdleTimeout     time.Duration `env:"HTTP_IDLE_TIMEOUT" env-default:"60s"`
	ShutdownTimeout time.Duration `env:"HTTP_SHUTDOWN_TIMEOUT" env-default:"5s"`
}

type Log struct {
	Level string `env:"LOG_LEVEL" env-default:"debug"`
}

// NewConfig reads the environment, after loading .env when one is present.
func NewConfig() (*Config, error) {
	const op = "config.NewConfig"

	cfg := &Config{}

	_ = godotenv.Load(".env")

	if err := cleanenv.ReadEnv(cfg); err != nil {
		return nil, errors.Wrap(err, op)
	}

	return cfg, nil
}

func (s HTTPServer) Addr() string {
	return net.JoinHostPort(s.Host, s.Port)
}

// SlogLevel maps LOG_LEVEL to a slog level, falling back to debug.
func (l Log) SlogLevel() slog.Level {
	switch strings.ToLower(strings.TrimSpace(l.Level)) {
	case "error":
		return slog.LevelError
	case "warn", "warning":
		return slog.LevelWarn
	case "info":
		return slog.LevelInfo
	default:
		return slog.LevelDebug
	}
}
