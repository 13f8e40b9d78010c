package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	// Server
	Port        string
	Environment string
	LogLevel    string
	CORSOrigins []string
	StaticDir   string

	// Redis
	RedisURL            string
	RedisConnectTimeout time.Duration
	RedisMaxRetries     int

	// Auth
	JWTSecret          string
	JWTExpirationHours int
	AdminToken         string

	// Kafka; events are disabled when no brokers are set
	KafkaBrokers []string
	KafkaTopic   string

	// MySQL reset archive; disabled when MySQLHost is empty
	MySQLHost     string
	MySQLPort     string
	MySQLUser     string
	MySQLPassword string
	MySQLDatabase string
}

func Load() *Config {
	return &Config{
		Port:                getEnv("PORT", "8080"),
		Environment:         getEnv("ENV", "development"),
		LogLevel:            getEnv("LOG_LEVEL", "info"),
		CORSOrigins:         getEnvList("CORS_ORIGINS", []string{"http://localhost:3000"}),
		StaticDir:           getEnv("STATIC_DIR", "frontend/dist"),
		RedisURL:            getEnv("REDIS_URL", "redis://localhost:6379"),
		RedisConnectTimeout: time.Duration(getEnvInt("REDIS_CONNECT_TIMEOUT_SECONDS", 10)) * time.Second,
		RedisMaxRetries:     getEnvInt("REDIS_MAX_RETRIES", 3),
		JWTSecret:           getEnv("JWT_SECRET", ""),
		JWTExpirationHours:  getEnvInt("JWT_EXPIRATION_HOURS", 24*30),
		AdminToken:          getEnv("ADMIN_TOKEN", ""),
		KafkaBrokers:        getEnvList("KAFKA_BROKERS", nil),
		KafkaTopic:          getEnv("KAFKA_TOPIC", "batting-order-events"),
		MySQLHost:           getEnv("MYSQL_HOST", ""),
		MySQLPort:           getEnv("MYSQL_PORT", "3306"),
		MySQLUser:           getEnv("MYSQL_USER", "root"),
		MySQLPassword:       getEnv("MYSQL_PASSWORD", ""),
		MySQLDatabase:       getEnv("MYSQL_DATABASE", "batting_orders"),
	}
}

func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v, ok := os.LookupEnv(key); ok {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

// getEnvList splits a comma separated value, dropping blanks.
func getEnvList(key string, fallback []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
