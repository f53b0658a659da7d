package main

import (
	"os"
	"strconv"

	"github.com/rs/zerolog/log"
)

// Config holds all configuration for the worker
type Config struct {
	Environment   string
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	Concurrency   int
}

// loadConfig loads configuration from environment variables
func loadConfig() *Config {
	cfg := &Config{
		Environment:   getEnv("APP_ENV", "development"),
		RedisAddr:     getEnv("REDIS_HOST", "localhost:6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvInt("REDIS_DB", 0),
		Concurrency:   getEnvInt("WORKER_CONCURRENCY", 20),
	}

	log.Info().
		Str("redis", cfg.RedisAddr).
		Int("concurrency", cfg.Concurrency).
		Msg("worker config loaded")

	return cfg
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}
