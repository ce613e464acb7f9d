package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config хранит все конфигурационные параметры приложения.
type Config struct {
	DatabaseURL  string
	JWTSecretKey string
	ServerPort   int

	// PendingMatchTTL определяет, сколько матч может висеть в pending,
	// прежде чем фоновый проход отменит его.
	PendingMatchTTL time.Duration

	// SweepInterval задаёт период фоновых проходов обслуживания.
	SweepInterval time.Duration
}

const (
	defaultServerPort      = 8080
	defaultPendingTTLHours = 48
	defaultSweepInterval   = time.Minute
)

// Load загружает конфигурацию из переменных окружения.
// Опционально подгружает .env файл (полезно для локальной разработки).
func Load() (*Config, error) {
	// Загружаем .env файл, если он есть. Ошибку не считаем фатальной.
	_ = godotenv.Load()

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		return nil, fmt.Errorf("DATABASE_URL environment variable is not set")
	}

	jwtKey := os.Getenv("JWT_SECRET_KEY")
	if jwtKey == "" {
		return nil, fmt.Errorf("JWT_SECRET_KEY environment variable is not set")
	}

	port := defaultServerPort
	if portStr := os.Getenv("SERVER_PORT"); portStr != "" {
		p, err := strconv.Atoi(portStr)
		if err != nil {
			return nil, fmt.Errorf("invalid SERVER_PORT environment variable: %w", err)
		}
		port = p
	}
	if port <= 0 || port > 65535 {
		return nil, fmt.Errorf("SERVER_PORT must be between 1 and 65535, got %d", port)
	}

	ttlHours := defaultPendingTTLHours
	if ttlStr := os.Getenv("PENDING_MATCH_TTL_HOURS"); ttlStr != "" {
		h, err := strconv.Atoi(ttlStr)
		if err != nil || h <= 0 {
			return nil, fmt.Errorf("PENDING_MATCH_TTL_HOURS must be a positive integer, got %q", ttlStr)
		}
		ttlHours = h
	}

	sweepInterval := defaultSweepInterval
	if intervalStr := os.Getenv("SWEEP_INTERVAL"); intervalStr != "" {
		d, err := time.ParseDuration(intervalStr)
		if err != nil || d <= 0 {
			return nil, fmt.Errorf("SWEEP_INTERVAL must be a positive duration (e.g. 30s), got %q", intervalStr)
		}
		sweepInterval = d
	}

	cfg := &Config{
		DatabaseURL:     dbURL,
		JWTSecretKey:    jwtKey,
		ServerPort:      port,
		PendingMatchTTL: time.Duration(ttlHours) * time.Hour,
		SweepInterval:   sweepInterval,
	}

	return cfg, nil
}
