package config

import (
	"os"
	"strconv"
)

type Config struct {
	Port              int
	NatsURL           string
	NatsToken         string
	DatabaseURL       string
	LogLevel          string
	APIToken          string
	RequiredExchanges int
	RandomSeed        uint64
}

func Load() Config {
	return Config{
		Port:              envInt("REHEARSE_PORT", 8760),
		NatsURL:           envStr("NATS_URL", "nats://hermes:4222"),
		NatsToken:         envStr("NATS_TOKEN", ""),
		DatabaseURL:       envStr("DATABASE_URL", ""),
		LogLevel:          envStr("LOG_LEVEL", "info"),
		APIToken:          envStr("REHEARSE_API_TOKEN", ""),
		RequiredExchanges: envInt("REHEARSE_REQUIRED_EXCHANGES", 6),
		RandomSeed:        envUint64("REHEARSE_RANDOM_SEED", 0),
	}
}

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envUint64(key string, fallback uint64) uint64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseUint(v, 10, 64); err == nil {
			return n
		}
	}
	return fallback
}
