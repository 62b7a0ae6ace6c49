package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the preview agent daemon.
type Config struct {
	// API listener
	BindAddr         string
	PortCandidates   []string
	PortAutoFallback bool

	// Browser launch
	DebugPort   int
	ProfileRoot string
	BrowserPath string

	// Close protocol tuning. Explicit and tunable rather than hard-coded;
	// Load floors both so a stray env value cannot make the poll spin.
	HeartbeatMS    int
	CloseTimeoutMS int

	// Logging
	LogLevel string
	LogFile  string
}

// Load reads configuration from environment variables and an optional .env file.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Debug("failed to load .env file", "error", err)
	}

	cfg := &Config{
		BindAddr:         getEnvOrDefault("PREVIEW_BIND_ADDR", "127.0.0.1:8190"),
		PortCandidates:   getEnvListOrDefault("PREVIEW_PORT_CANDIDATES", []string{"127.0.0.1:8190", "127.0.0.1:8191", "127.0.0.1:8192"}),
		PortAutoFallback: getEnvBoolOrDefault("PREVIEW_PORT_AUTO_FALLBACK", true),
		DebugPort:        getEnvIntOrDefault("PREVIEW_DEBUG_PORT", 9222),
		ProfileRoot:      getEnvOrDefault("PREVIEW_PROFILE_ROOT", defaultProfileRoot()),
		BrowserPath:      os.Getenv("PREVIEW_BROWSER_PATH"),
		HeartbeatMS:      getEnvIntOrDefault("PREVIEW_HEARTBEAT_MS", 30),
		CloseTimeoutMS:   getEnvIntOrDefault("PREVIEW_CLOSE_TIMEOUT_MS", 10_000),
		LogLevel:         strings.ToLower(getEnvOrDefault("PREVIEW_LOG_LEVEL", "info")),
		LogFile:          getEnvOrDefault("PREVIEW_LOG_FILE", "logs/preview_agent.log"),
	}

	if cfg.HeartbeatMS < 10 {
		cfg.HeartbeatMS = 10
	}
	if cfg.CloseTimeoutMS < 1000 {
		cfg.CloseTimeoutMS = 1000
	}
	return cfg, nil
}

// DevtoolsURL returns the HTTP endpoint of the browser's remote-debugging port.
func (c *Config) DevtoolsURL() string {
	return fmt.Sprintf("http://127.0.0.1:%d", c.DebugPort)
}

func defaultProfileRoot() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		dir = os.TempDir()
	}
	return filepath.Join(dir, "preview_agent")
}

func getEnvOrDefault(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvIntOrDefault(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return defaultVal
}

func getEnvBoolOrDefault(key string, defaultVal bool) bool {
	if val := os.Getenv(key); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			return b
		}
	}
	return defaultVal
}

func getEnvListOrDefault(key string, defaultVal []string) []string {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	var out []string
	for _, part := range strings.Split(val, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	if len(out) == 0 {
		return defaultVal
	}
	return out
}
