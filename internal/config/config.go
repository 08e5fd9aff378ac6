package config

import (
	"os"
	"strings"
	"time"
)

type Config struct {
	HTTPAddr string

	// BT backend the dashboard proxies and reconciles
	BackendBaseURL string
	RequestTimeout time.Duration

	// local snapshot cache
	CacheDriver string // sqlite|postgres
	CacheDSN    string

	RefreshInterval time.Duration

	AdminUser     string
	AdminPassHash string // bcrypt

	CORSOrigins []string
}

func FromEnv() Config {
	return Config{
		HTTPAddr:        envOr("HTTP_ADDR", ":8080"),
		BackendBaseURL:  envOr("BACKEND_BASE_URL", "http://localhost:9090/api"),
		RequestTimeout:  envDur("REQUEST_TIMEOUT", 15*time.Second),
		CacheDriver:     envOr("CACHE_DRIVER", "sqlite"),
		CacheDSN:        envOr("CACHE_DSN", ""),
		RefreshInterval: envDur("REFRESH_INTERVAL", 0), // 0 disables periodic refresh
		AdminUser:       envOr("ADMIN_USER", "admin"),
		AdminPassHash:   envOr("ADMIN_PASS_HASH", "$2y$12$pyZAiWaTfVtM7UElIRStvOC3gNbnp70nmQU4eYopLGBfCJr1DOvji"),
		CORSOrigins:     csvOr("CORS_ORIGINS", "http://localhost:3000,http://localhost:5173"),
	}
}

func envOr(k, def string) string {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	return v
}

func envDur(k string, def time.Duration) time.Duration {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return def
	}
	return d
}

func csvOr(k, def string) []string {
	v := envOr(k, def)
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			out = append(out, s)
		}
	}
	return out
}
