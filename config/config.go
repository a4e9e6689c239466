package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port string

	StoreBackend  string
	MongoURL      string
	MongoDatabase string

	QuotaBackend  string
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	RabbitURL      string
	RabbitExchange string

	ResendAPIKey string
	EmailFrom    string
	BaseURL      string

	SecretKey string
	Timezone  string

	DailyEmailLimit  int
	RatingEmailDelay time.Duration
	VipMinOrders     int
	VipMinSpend      float64

	CorsOrigins    []string
	OrderRateLimit int

	LogLevel  string
	LogFormat string
}

// Load reads .env when present, then the process environment.
func Load() (Config, error) {
	if err := godotenv.Load(".env"); err != nil {
		log.Println("No .env file found; using system environment")
	}

	cfg := Config{
		Port:           getEnv("PORT", "8000"),
		StoreBackend:   getEnv("STORE_BACKEND", "mongo"),
		MongoURL:       getEnv("MONGODB_URL", "mongodb://localhost:27017"),
		MongoDatabase:  getEnv("MONGODB_DATABASE", "brista"),
		QuotaBackend:   getEnv("QUOTA_BACKEND", "mongo"),
		RedisAddr:      getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword:  os.Getenv("REDIS_PASSWORD"),
		RabbitURL:      os.Getenv("RABBITMQ_URL"),
		RabbitExchange: getEnv("RABBITMQ_EXCHANGE", "brista.orders"),
		ResendAPIKey:   os.Getenv("RESEND_API_KEY"),
		EmailFrom:      getEnv("EMAIL_FROM", "Brista Coffee <noreply@brista.local>"),
		BaseURL:        strings.TrimRight(getEnv("APP_BASE_URL", "http://localhost:3000"), "/"),
		SecretKey:      os.Getenv("SECRET_KEY"),
		Timezone:       getEnv("TIMEZONE", "Local"),
		CorsOrigins:    splitList(getEnv("CORS_ORIGINS", "http://localhost:3000")),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		LogFormat:      getEnv("LOG_FORMAT", "json"),
	}

	var err error
	if cfg.RedisDB, err = intEnv("REDIS_DB", 0); err != nil {
		return cfg, err
	}
	if cfg.DailyEmailLimit, err = intEnv("DAILY_EMAIL_LIMIT", 95); err != nil {
		return cfg, err
	}
	if cfg.VipMinOrders, err = intEnv("VIP_MIN_ORDERS", 10); err != nil {
		return cfg, err
	}
	if cfg.OrderRateLimit, err = intEnv("ORDER_RATE_LIMIT", 30); err != nil {
		return cfg, err
	}
	if cfg.VipMinSpend, err = floatEnv("VIP_MIN_SPEND", 100); err != nil {
		return cfg, err
	}
	if cfg.RatingEmailDelay, err = durationEnv("RATING_EMAIL_DELAY", 5*time.Minute); err != nil {
		return cfg, err
	}
	if _, err = cfg.Location(); err != nil {
		return cfg, err
	}

	switch cfg.StoreBackend {
	case "mongo", "memory":
	default:
		return cfg, fmt.Errorf("STORE_BACKEND must be mongo or memory, got %q", cfg.StoreBackend)
	}
	switch cfg.QuotaBackend {
	case "mongo", "redis", "memory":
	default:
		return cfg, fmt.Errorf("QUOTA_BACKEND must be mongo, redis or memory, got %q", cfg.QuotaBackend)
	}
	if cfg.StoreBackend == "memory" && cfg.QuotaBackend == "mongo" {
		cfg.QuotaBackend = "memory"
	}
	return cfg, nil
}

// Location is the zone used for every "today" and day-bucket key.
func (c Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid TIMEZONE %q: %w", c.Timezone, err)
	}
	return loc, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func intEnv(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: must be a number", key, v)
	}
	return n, nil
}

func floatEnv(key string, fallback float64) (float64, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: must be a number", key, v)
	}
	return f, nil
}

func durationEnv(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, v, err)
	}
	return d, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
