package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"go.uber.org/fx"
)

const (
	StoreSQLite = "sqlite"
	StoreRedis  = "redis"
	StoreMemory = "memory"
)

type Config struct {
	RiotAPIToken string
	DBPath       string
	ServerPort   string
	LogLevel     string
	StoreBackend string
	RedisURL     string
	ProxyURL     string
}

func Load(logger zerolog.Logger) (*Config, error) {
	cfg, err := LoadClient(logger)
	if err != nil {
		return nil, err
	}

	if cfg.RiotAPIToken == "" {
		return nil, fmt.Errorf("RIOT_API_TOKEN is required")
	}

	return cfg, nil
}

// LoadClient reads the same settings as Load but does not require the upstream
// token, since clients only talk to the proxy.
func LoadClient(logger zerolog.Logger) (*Config, error) {
	if err := godotenv.Load(); err != nil {
		logger.Debug().Msg(".env file not found, using environment variables or defaults")
	}

	cfg := &Config{
		RiotAPIToken: getEnv("RIOT_API_TOKEN", ""),
		DBPath:       getEnv("DB_PATH", "arena.db"),
		ServerPort:   getEnv("SERVER_PORT", "8080"),
		LogLevel:     getEnv("LOG_LEVEL", "info"),
		StoreBackend: strings.ToLower(getEnv("STORE_BACKEND", StoreSQLite)),
		RedisURL:     getEnv("REDIS_URL", ""),
		ProxyURL:     strings.TrimRight(getEnv("PROXY_URL", "http://localhost:8080"), "/"),
	}

	switch cfg.StoreBackend {
	case StoreSQLite, StoreMemory:
	case StoreRedis:
		if cfg.RedisURL == "" {
			return nil, fmt.Errorf("REDIS_URL is required when STORE_BACKEND=redis")
		}
	default:
		return nil, fmt.Errorf("unknown STORE_BACKEND %q", cfg.StoreBackend)
	}

	logger.Info().
		Str("db_path", cfg.DBPath).
		Str("server_port", cfg.ServerPort).
		Str("log_level", cfg.LogLevel).
		Str("store_backend", cfg.StoreBackend).
		Msg("configuration loaded")

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

var Module = fx.Provide(Load)
