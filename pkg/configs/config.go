package configs

import (
	"os"
	"strconv"
	"strings"
	"time"

	_ "github.com/joho/godotenv/autoload"
	log "github.com/sirupsen/logrus"
)

type Config struct {
	RestAddr       string
	SocketAddr     string
	AllowedOrigins []string
	GracePeriod    time.Duration
	StartingCash   int
	MaxPlayers     int
	LogLevel       string
	LogFormat      string

	RedisURL string

	DBAddr     string
	DBUser     string
	DBPassword string
	DBName     string
}

// Load reads the environment; .env is loaded on import.
func Load() Config {
	return Config{
		RestAddr:       GetEnvDefault("REST_ADDR", ":4101"),
		SocketAddr:     GetEnvDefault("SOCKET_ADDR", ":8000"),
		AllowedOrigins: splitList(GetEnvDefault("ALLOWED_ORIGINS", "http://localhost:3000")),
		GracePeriod:    durationEnv("GRACE_PERIOD", 2*time.Minute),
		StartingCash:   intEnv("STARTING_CASH", 1500),
		MaxPlayers:     intEnv("MAX_PLAYERS", 8),
		LogLevel:       GetEnvDefault("LOG_LEVEL", "info"),
		LogFormat:      GetEnvDefault("LOG_FORMAT", "text"),
		RedisURL:       os.Getenv("REDIS_URL"),
		DBAddr:         os.Getenv("DB_ADDR"),
		DBUser:         os.Getenv("DB_USER"),
		DBPassword:     os.Getenv("DB_PASSWORD"),
		DBName:         os.Getenv("DB_NAME"),
	}
}

func GetEnvDefault(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func intEnv(key string, def int) int {
	raw := os.Getenv(key)
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		log.WithField("key", key).Warnf("invalid value %q, using %d", raw, def)
		return def
	}
	return n
}

func durationEnv(key string, def time.Duration) time.Duration {
	raw := os.Getenv(key)
	if raw == "" {
		return def
	}
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		log.WithField("key", key).Warnf("invalid duration %q, using %s", raw, def)
		return def
	}
	return d
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
