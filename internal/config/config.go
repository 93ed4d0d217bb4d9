package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds application configuration derived from environment variables.
type Config struct {
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	ServiceName  string
	Environment  string
	// Rule configuration
	PatternsFile    string
	StrictParamKeys bool
	// WatchPatterns reloads PatternsFile when it changes on disk.
	WatchPatterns bool
	// DebugDiagnostics attaches the diagnostics dump to every API verdict.
	DebugDiagnostics bool
	// MaxBodyBytes bounds JSON request bodies.
	MaxBodyBytes int
	// Rate limiting for /api routes
	RateLimitEnabled    bool
	RateLimitCapacity   int
	RateLimitRefillRate int
	// Tracing configuration
	TracingEnabled    bool
	TempoEndpoint     string
	TracingSampleRate float64
	// Browser host configuration
	BrowserControlURL string
	BrowserHeadless   bool
	BrowserTimeout    time.Duration
}

// Load parses environment variables and returns a Config populated with
// defaults when variables are absent.
func Load() Config {
	cfg := Config{}

	cfg.Port = getenv("PORT", "8788")
	cfg.ReadTimeout = envDuration("READ_TIMEOUT", 5*time.Second)
	cfg.WriteTimeout = envDuration("WRITE_TIMEOUT", 10*time.Second)
	cfg.ServiceName = getenv("SERVICE_NAME", "adsignal")
	cfg.Environment = getenv("ENV", "production")

	cfg.PatternsFile = getenv("PATTERNS_FILE", "")
	// bare "ad" substring matching stays on unless explicitly tightened
	cfg.StrictParamKeys = envBool("STRICT_PARAM_KEYS", false)
	cfg.WatchPatterns = envBool("WATCH_PATTERNS", false)
	cfg.DebugDiagnostics = envBool("DEBUG_DIAGNOSTICS", false)
	cfg.MaxBodyBytes = envInt("MAX_BODY_BYTES", 64<<10)

	cfg.RateLimitEnabled = envBool("RATE_LIMIT_ENABLED", false)
	cfg.RateLimitCapacity = envInt("RATE_LIMIT_CAPACITY", 20)
	cfg.RateLimitRefillRate = envInt("RATE_LIMIT_REFILL_RATE", 10)

	cfg.TracingEnabled = envBool("TRACING_ENABLED", false)
	cfg.TempoEndpoint = getenv("TEMPO_ENDPOINT", "tempo:4317")
	cfg.TracingSampleRate = envFloat("TRACING_SAMPLE_RATE", 1.0)

	cfg.BrowserControlURL = getenv("BROWSER_CONTROL_URL", "")
	cfg.BrowserHeadless = envBool("BROWSER_HEADLESS", true)
	cfg.BrowserTimeout = envDuration("BROWSER_TIMEOUT", 30*time.Second)

	return cfg
}

// getenv returns the value of the environment variable if set, otherwise def.
func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// envDuration parses an environment variable into a time.Duration.
// The value can be a duration string (e.g. "5s") or a number of seconds.
// If the variable is unset or invalid, def is returned.
func envDuration(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	if d, err := time.ParseDuration(v); err == nil {
		return d
	}
	if secs, err := strconv.Atoi(v); err == nil {
		return time.Duration(secs) * time.Second
	}
	return def
}

// envBool parses a boolean environment variable. When unset or invalid, def is returned.
func envBool(key string, def bool) bool {
	if b, err := strconv.ParseBool(os.Getenv(key)); err == nil {
		return b
	}
	return def
}

// envInt parses an integer environment variable. When unset or invalid, def is returned.
func envInt(key string, def int) int {
	if i, err := strconv.Atoi(os.Getenv(key)); err == nil {
		return i
	}
	return def
}

// envFloat parses a float64 environment variable. When unset or invalid, def is returned.
func envFloat(key string, def float64) float64 {
	if f, err := strconv.ParseFloat(os.Getenv(key), 64); err == nil {
		return f
	}
	return def
}
