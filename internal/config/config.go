package config

import (
	"log"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const defaultAPIBase = "http://localhost:3001/api"

type Config struct {
	HTTPPort        string
	APIBaseURL      string // resolved once; every upstream call is relative to it
	APITimeout      time.Duration
	DatabaseDriver  string // "postgres" or "sqlite"
	DatabaseDSN     string
	JWTSecret       string // optional; empty means tokens are checked against /auth/me
	CORSOrigins     string
	TokenCookie     string
	WorkspaceCookie string
	SessionTTL      time.Duration
	StaticDir       string
}

func Load() *Config {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("[WARN] .env não pôde ser lido: %v", err)
	}

	cfg := &Config{
		HTTPPort:        getEnv("HTTP_PORT", "8080"),
		APIBaseURL:      ResolveAPIBase(os.Getenv("API_BASE_URL"), os.Getenv("API_URL")),
		APITimeout:      getDuration("API_TIMEOUT", 15*time.Second),
		DatabaseDriver:  strings.ToLower(getEnv("DATABASE_DRIVER", "sqlite")),
		DatabaseDSN:     getEnv("DATABASE_DSN", "gondolatrack.db"),
		JWTSecret:       getEnv("JWT_SECRET", ""),
		CORSOrigins:     getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:3000"),
		TokenCookie:     getEnv("TOKEN_COOKIE", "gt_token"),
		WorkspaceCookie: getEnv("WORKSPACE_COOKIE", "gt_ws"),
		SessionTTL:      getDuration("SESSION_TTL", 2*time.Hour),
		StaticDir:       getEnv("STATIC_DIR", ""),
	}

	switch cfg.DatabaseDriver {
	case "postgres", "sqlite":
	default:
		log.Fatalf("[FATAL] DATABASE_DRIVER inválido: %q (use postgres ou sqlite)", cfg.DatabaseDriver)
	}
	if cfg.DatabaseDriver == "sqlite" {
		log.Println("[WARN] DATABASE_DRIVER=sqlite; em produção use postgres para o log de auditoria.")
	}
	if cfg.JWTSecret != "" && len(cfg.JWTSecret) < 32 {
		log.Println("[WARN] JWT_SECRET com menos de 32 caracteres.")
	}
	if cfg.CORSOrigins == "http://localhost:3000" {
		log.Println("[WARN] CORS_ALLOWED_ORIGINS usando o valor padrão, defina o domínio de produção.")
	}
	if cfg.APIBaseURL == defaultAPIBase {
		log.Println("[WARN] API_BASE_URL/API_URL não definidos, usando " + defaultAPIBase)
	}

	return cfg
}

// ResolveAPIBase picks API_BASE_URL verbatim, else API_URL + "/api", else
// the local default.
func ResolveAPIBase(apiBaseURL, apiURL string) string {
	if v := strings.TrimSpace(apiBaseURL); v != "" {
		return v
	}
	if v := strings.TrimRight(strings.TrimSpace(apiURL), "/"); v != "" {
		return v + "/api"
	}
	return defaultAPIBase
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getDuration(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil || d < 0 {
		log.Printf("[WARN] %s inválido (%q), usando %s", key, v, def)
		return def
	}
	return d
}
