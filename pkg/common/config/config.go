package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	// Server
	ServerPort string
	ServerHost string

	// Database
	PostgresHost     string
	PostgresPort     string
	PostgresUser     string
	PostgresPassword string
	PostgresDB       string
	PostgresSSLMode  string

	// Queue
	QueueDriver      string // redis or kafka
	QueueURL         string // stream key (redis) or topic (kafka)
	QueueGroup       string
	QueueWaitTime    time.Duration
	QueueMaxMessages int

	// Redis
	RedisHost     string
	RedisPort     string
	RedisPassword string
	RedisDB       int

	// Kafka
	KafkaBrokers []string

	// Transform
	CategoryMappingFile string

	// Poll loop
	ReceiveErrorBackoff time.Duration
}

func Load() *Config {
	return &Config{
		ServerPort: getEnv("SERVER_PORT", "8090"),
		ServerHost: getEnv("SERVER_HOST", "0.0.0.0"),

		PostgresHost:     getEnv("POSTGRES_HOST", "localhost"),
		PostgresPort:     getEnv("POSTGRES_PORT", "5432"),
		PostgresUser:     getEnv("POSTGRES_USER", "grantboard"),
		PostgresPassword: getEnv("POSTGRES_PASSWORD", "grantboard123"),
		PostgresDB:       getEnv("POSTGRES_DB", "grantboard"),
		PostgresSSLMode:  getEnv("POSTGRES_SSLMODE", "disable"),

		QueueDriver:      getEnv("QUEUE_DRIVER", "redis"),
		QueueURL:         getEnv("QUEUE_URL", "grant-opportunity-events"),
		QueueGroup:       getEnv("QUEUE_GROUP", "grants-ingest-worker"),
		QueueWaitTime:    getDuration("QUEUE_WAIT_TIME", 20*time.Second),
		QueueMaxMessages: getIntEnv("QUEUE_MAX_MESSAGES", 10),

		RedisHost:     getEnv("REDIS_HOST", "localhost"),
		RedisPort:     getEnv("REDIS_PORT", "6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getIntEnv("REDIS_DB", 0),

		KafkaBrokers: getStringSliceEnv("KAFKA_BROKERS", []string{"localhost:9092"}),

		CategoryMappingFile: getEnv("CATEGORY_MAPPING_FILE", ""),

		ReceiveErrorBackoff: getDuration("RECEIVE_ERROR_BACKOFF", 5*time.Second),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getStringSliceEnv(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		parts := strings.Split(value, ",")
		out := make([]string, 0, len(parts))
		for _, p := range parts {
			if trimmed := strings.TrimSpace(p); trimmed != "" {
				out = append(out, trimmed)
			}
		}
		if len(out) > 0 {
			return out
		}
	}
	return defaultValue
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
