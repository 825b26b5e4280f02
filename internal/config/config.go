package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	Server    ServerConfig
	Auth      AuthConfig
	CORS      CORSConfig
	RateLimit RateLimitConfig
	Postgres  PostgresConfig
	Seed      SeedConfig
	Log       LogConfig
	Client    ClientConfig
}

type ServerConfig struct {
	Port string
}

type AuthConfig struct {
	JWTSecret   string
	JWTTTL      string
	RepoTimeout string
}

type CORSConfig struct {
	AllowedOrigins  []string
	TrustedPatterns []string
}

type RateLimitConfig struct {
	RPS   float64
	Burst int
}

type PostgresConfig struct {
	DatabaseURL string
	Host        string
	Port        string
	User        string
	Password    string
	Database    string
	SSLMode     string
}

type SeedConfig struct {
	Email    string
	Password string
}

// ClientConfig is read by cmd/geoclient only.
type ClientConfig struct {
	APIBaseURL   string
	Timeout      string
	SessionStore string
	SessionPath  string
}

type LogConfig struct {
	Level  string
	Format string
}

// Load reads a .env file when one exists and then builds the config from the environment.
func Load() Config {
	_ = godotenv.Load()

	allowed := splitList(getenv("CORS_ALLOWED_ORIGINS", "http://localhost:3000"))
	if frontend := strings.TrimSpace(os.Getenv("FRONTEND_URL")); frontend != "" {
		allowed = append(allowed, frontend)
	}

	return Config{
		Server: ServerConfig{
			Port: getenv("PORT", "8000"),
		},
		Auth: AuthConfig{
			JWTSecret:   os.Getenv("JWT_SECRET"),
			JWTTTL:      getenv("JWT_TTL", "1h"),
			RepoTimeout: getenv("AUTH_TIMEOUT", "5s"),
		},
		CORS: CORSConfig{
			AllowedOrigins:  allowed,
			TrustedPatterns: splitList(getenv("CORS_TRUSTED_ORIGIN_PATTERNS", `https://[a-zA-Z0-9-]+\.vercel\.app`)),
		},
		RateLimit: RateLimitConfig{
			RPS:   getenvFloat("RATE_LIMIT_RPS", 5),
			Burst: getenvInt("RATE_LIMIT_BURST", 10),
		},
		Postgres: PostgresConfig{
			DatabaseURL: os.Getenv("DATABASE_URL"),
			Host:        getenv("PGHOST", "localhost"),
			Port:        getenv("PGPORT", "5432"),
			User:        os.Getenv("PGUSER"),
			Password:    os.Getenv("PGPASSWORD"),
			Database:    os.Getenv("PGDATABASE"),
			SSLMode:     getenv("PGSSLMODE", "disable"),
		},
		Seed: SeedConfig{
			Email:    getenv("SEED_EMAIL", "test@example.com"),
			Password: getenv("SEED_PASSWORD", "password123"),
		},
		Log: LogConfig{
			Level:  getenv("LOG_LEVEL", "info"),
			Format: getenv("LOG_FORMAT", "text"),
		},
		Client: ClientConfig{
			APIBaseURL:   getenv("GEOCLIENT_API_URL", "http://localhost:8000"),
			Timeout:      getenv("GEOCLIENT_TIMEOUT", "10s"),
			SessionStore: getenv("GEOCLIENT_SESSION_STORE", "sqlite"),
			SessionPath:  os.Getenv("GEOCLIENT_SESSION_PATH"),
		},
	}
}

func getenv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getenvInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		if parsed, err := strconv.Atoi(val); err == nil {
			return parsed
		}
	}
	return fallback
}

func getenvFloat(key string, fallback float64) float64 {
	if val := os.Getenv(key); val != "" {
		if parsed, err := strconv.ParseFloat(val, 64); err == nil {
			return parsed
		}
	}
	return fallback
}

func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
