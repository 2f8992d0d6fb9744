package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config defines the runtime configuration for the live-view client.
type Config struct {
	ChannelURL        string
	EventsURL         string
	HistoryCapacity   int
	ReconnectDelay    time.Duration
	KeepaliveInterval time.Duration
	MetricsAddr       string
	LogLevel          string
	LogColor          bool
}

// DefaultConfig returns a config aligned with the dashboard the
// detection pipeline serves on localhost.
func DefaultConfig() Config {
	return Config{
		ChannelURL:        "ws://localhost:8000/ws",
		EventsURL:         "http://localhost:8000/api/events",
		HistoryCapacity:   20,
		ReconnectDelay:    3000 * time.Millisecond,
		KeepaliveInterval: 30 * time.Second,
		MetricsAddr:       ":9091",
		LogLevel:          "info",
		LogColor:          true,
	}
}

// Load reads configuration from the environment on top of the
// defaults. A .env file is honored when present.
func Load() Config {
	if err := godotenv.Load(); err != nil {
		// No .env file is fine; the process environment still applies.
		log.Println("No .env file found, using system environment variables")
	}

	cfg := DefaultConfig()
	cfg.ChannelURL = getEnv("LIVEVIEW_CHANNEL_URL", cfg.ChannelURL)
	cfg.EventsURL = getEnv("LIVEVIEW_EVENTS_URL", cfg.EventsURL)
	cfg.HistoryCapacity = getEnvInt("LIVEVIEW_HISTORY_CAPACITY", cfg.HistoryCapacity)
	cfg.ReconnectDelay = getEnvDuration("LIVEVIEW_RECONNECT_DELAY", cfg.ReconnectDelay)
	cfg.KeepaliveInterval = getEnvDuration("LIVEVIEW_KEEPALIVE_INTERVAL", cfg.KeepaliveInterval)
	cfg.MetricsAddr = getEnv("LIVEVIEW_METRICS_ADDR", cfg.MetricsAddr)
	cfg.LogLevel = getEnv("LIVEVIEW_LOG_LEVEL", cfg.LogLevel)
	cfg.LogColor = getEnvBool("LIVEVIEW_LOG_COLOR", cfg.LogColor)
	return cfg
}

func getEnv(key string, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if v := os.Getenv(key); v != "" {
		if intVal, err := strconv.Atoi(v); err == nil {
			return intVal
		}
	}
	return defaultVal
}

func getEnvBool(key string, defaultVal bool) bool {
	if v := os.Getenv(key); v != "" {
		if boolVal, err := strconv.ParseBool(v); err == nil {
			return boolVal
		}
	}
	return defaultVal
}

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return defaultVal
}
