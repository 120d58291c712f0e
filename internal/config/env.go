package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const defaultDSN = "root:@tcp(127.0.0.1:3306)/travel_app?parseTime=true&loc=Local&charset=utf8mb4&timeout=5s&readTimeout=30s&writeTimeout=30s"

type Env struct {
	AppAddr  string
	GinMode  string
	LogLevel string

	DBDSN           string
	DefaultCurrency string

	JWTSecret string

	CouponServiceURL string
	CouponTimeout    time.Duration
	RedisAddr        string
	CouponCacheTTL   time.Duration

	CORSAllowedOrigins []string
	MetricsNamespace   string
	PDFMaxInflight     int
}

// LoadEnv reads the process environment after loading an optional .env file.
func LoadEnv() Env {
	_ = godotenv.Load()

	return Env{
		AppAddr:  getEnv("APP_ADDR", ":8080"),
		GinMode:  getEnv("GIN_MODE", ""),
		LogLevel: getEnv("LOG_LEVEL", "info"),

		DBDSN:           getEnv("DB_DSN", defaultDSN),
		DefaultCurrency: strings.ToUpper(getEnv("DEFAULT_CURRENCY", "EUR")),

		JWTSecret: getEnv("JWT_SECRET", ""),

		CouponServiceURL: strings.TrimRight(getEnv("COUPON_SERVICE_URL", ""), "/"),
		CouponTimeout:    time.Duration(getEnvAsInt("COUPON_TIMEOUT_MS", 5000)) * time.Millisecond,
		RedisAddr:        getEnv("REDIS_ADDR", ""),
		CouponCacheTTL:   time.Duration(getEnvAsInt("COUPON_CACHE_TTL_SEC", 300)) * time.Second,

		CORSAllowedOrigins: splitList(getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:3000,http://localhost:5173")),
		MetricsNamespace:   getEnv("METRICS_NAMESPACE", "tripquote"),
		PDFMaxInflight:     getEnvAsInt("PDF_MAX_INFLIGHT", 16),
	}
}

func getEnv(key, defaultValue string) string {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvAsInt(key string, defaultValue int) int {
	if value, err := strconv.Atoi(getEnv(key, "")); err == nil && value > 0 {
		return value
	}
	return defaultValue
}

func splitList(s string) []string {
	out := []string{}
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
