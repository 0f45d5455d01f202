package config

import (
	"fmt"
	"log"
	"os"
	"time"
)

// App holds the runtime configuration loaded from environment variables.
type App struct {
	Env             string
	HTTPPort        string
	UpstreamURL     string
	StateBackend    string
	StatePath       string
	RedisAddr       string
	ContentPath     string
	RateLimitPerMin int
	PollInterval    time.Duration
}

// Load returns application config populated from environment variables with sensible defaults.
// UpstreamURL is only the initial backend base URL; once session state has been
// persisted the stored value wins and can be changed through the settings route.
func Load() App {
	return App{
		Env:             getEnv("APP_ENV", "dev"),
		HTTPPort:        getEnv("HTTP_PORT", "8081"),
		UpstreamURL:     getEnv("UPSTREAM_URL", "http://localhost:3000"),
		StateBackend:    getEnv("STATE_BACKEND", "file"),
		StatePath:       getEnv("STATE_PATH", "portal-state.json"),
		RedisAddr:       getEnv("REDIS_ADDR", "localhost:6379"),
		ContentPath:     getEnv("CONTENT_PATH", "content.yaml"),
		RateLimitPerMin: intEnv("RATE_LIMIT_PER_MIN", 120),
		PollInterval:    durationEnv("STATS_POLL_INTERVAL", 5*time.Second),
	}
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func durationEnv(key string, fallback time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		d, err := time.ParseDuration(val)
		if err != nil {
			log.Printf("invalid duration for %s: %v, using fallback %s", key, err, fallback)
			return fallback
		}
		return d
	}
	return fallback
}

func intEnv(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		var parsed int
		if _, err := fmt.Sscanf(val, "%d", &parsed); err == nil {
			return parsed
		}
		log.Printf("invalid int for %s, using fallback %d", key, fallback)
	}
	return fallback
}
