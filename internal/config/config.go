package config

import (
	"os"
	"strconv"
	"strings"
)

const (
	BackendPostgres = "postgres"
	BackendMemory   = "memory"
)

type Config struct {
	AppPort         string
	StorageBackend  string
	DBDSN           string
	JWTSecret       string
	JWTExpiresMin   int
	CookieSecure    bool
	RedisAddr       string
	RedisPassword   string
	RedisDB         int
	IDEncryptKey    string
	GoogleClientID  string
	GoogleSecret    string
	GoogleRedirect  string
	FrontendBaseURL string
	CORSOrigins     string
	LogLevel        string
}

func Load() Config {
	expires, _ := strconv.Atoi(get("JWT_EXPIRES_MIN", "10080"))
	redisDB, _ := strconv.Atoi(get("REDIS_DB", "0"))
	secure, _ := strconv.ParseBool(get("COOKIE_SECURE", "false"))

	cfg := Config{
		AppPort:         get("APP_PORT", "8080"),
		StorageBackend:  strings.ToLower(get("STORAGE_BACKEND", BackendPostgres)),
		JWTSecret:       must("JWT_SECRET"),
		JWTExpiresMin:   expires,
		CookieSecure:    secure,
		RedisAddr:       get("REDIS_ADDR", ""),
		RedisPassword:   get("REDIS_PASSWORD", ""),
		RedisDB:         redisDB,
		IDEncryptKey:    must("ID_ENCRYPT_KEY"),
		GoogleClientID:  get("GOOGLE_CLIENT_ID", ""),
		GoogleSecret:    get("GOOGLE_CLIENT_SECRET", ""),
		GoogleRedirect:  get("GOOGLE_REDIRECT_URL", ""),
		FrontendBaseURL: get("FRONTEND_BASE_URL", "http://localhost:3000"),
		CORSOrigins:     get("CORS_ORIGINS", "http://127.0.0.1:3000, http://localhost:3000"),
		LogLevel:        get("LOG_LEVEL", "info"),
	}
	switch cfg.StorageBackend {
	case BackendPostgres:
		cfg.DBDSN = must("DB_DSN")
	case BackendMemory:
		cfg.DBDSN = get("DB_DSN", "")
	default:
		panic("invalid STORAGE_BACKEND: " + cfg.StorageBackend)
	}
	switch len(cfg.IDEncryptKey) {
	case 16, 24, 32:
	default:
		panic("ID_ENCRYPT_KEY must be 16, 24 or 32 bytes")
	}
	return cfg
}

func get(k, def string) string {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	return v
}
func must(k string) string {
	v := os.Getenv(k)
	if v == "" {
		panic("missing env: " + k)
	}
	return v
}
