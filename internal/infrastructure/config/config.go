package config

import (
	"os"
	"strconv"
)

// Config is the process configuration, sourced from the environment.
// Main loads .env first, so a local file can supply any of these.
type Config struct {
	ServerAddress     string
	DatabaseURL       string
	RedisURL          string
	MessageTimeFormat string
	DeliveryReceipts  bool
}

// Load reads configuration from the environment with sensible defaults.
func Load() *Config {
	return &Config{
		ServerAddress:     getEnv("APP_ADDR", ":8080"),
		DatabaseURL:       os.Getenv("DB_URL"),
		RedisURL:          os.Getenv("REDIS_URL"),
		MessageTimeFormat: getEnv("MESSAGE_TIME_FORMAT", "2006-01-02 15:04:05"),
		DeliveryReceipts:  getBool("DELIVERY_RECEIPTS", false),
	}
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists && value != "" {
		return value
	}
	return fallback
}

func getBool(key string, fallback bool) bool {
	value, exists := os.LookupEnv(key)
	if !exists {
		return fallback
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		return fallback
	}
	return b
}
