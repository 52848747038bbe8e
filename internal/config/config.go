// Package config provides application configuration loaded from environment
// variables with defaults and validation. It centralizes application settings
// such as the Telegram credential, relay mode, snapshot persistence, server
// timeouts, logging, rate limiting, and observability.
package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"
)

// Relay modes supported by the alert-intake endpoint.
const (
	RelayModeSingle    = "single"    // one destination per alert (explicit or default)
	RelayModeBroadcast = "broadcast" // every known destination per alert
)

// Snapshot backends for the chat registry.
const (
	SnapshotBackendFile   = "file"
	SnapshotBackendSQLite = "sqlite"
)

// CORSConfig defines Cross-Origin Resource Sharing settings.
type CORSConfig struct {
	AllowedOrigins []string
}

// SecurityConfig defines security-related settings such as HSTS.
type SecurityConfig struct {
	EnableHSTS bool
	HSTSMaxAge time.Duration
}

// OTELConfig defines OpenTelemetry observability settings.
type OTELConfig struct {
	Enabled     bool    // OTEL_ENABLED
	Endpoint    string  // OTEL_EXPORTER_OTLP_ENDPOINT (e.g. "otel:4317")
	Insecure    bool    // OTEL_EXPORTER_OTLP_INSECURE (true if no TLS)
	ServiceName string  // OTEL_SERVICE_NAME (e.g. "go-alert-relay")
	SampleRatio float64 // OTEL_TRACES_SAMPLER_ARG in [0..1]
}

// TelegramConfig defines how we talk to the Telegram Bot API.
type TelegramConfig struct {
	BotToken    string        // TELEGRAM_BOT_TOKEN (required)
	APIBase     string        // TELEGRAM_API_BASE, overridable for tests
	PollTimeout time.Duration // long-poll wait per GetUpdates call
	RetryDelay  time.Duration // pause after a failed poll cycle
}

// RelayConfig defines the alert-relay behavior and its authorization gate.
type RelayConfig struct {
	Mode          string // single|broadcast
	AuthRequired  bool   // require the shared secret on alert intake
	WebhookSecret string // shared secret compared against request secret
	DefaultChatID string // externally configured default destination
}

// SnapshotConfig selects and parameterizes the registry persistence backend.
type SnapshotConfig struct {
	Backend string // file|sqlite
	Path    string // JSON file path (file backend)
	DBPath  string // SQLite path (sqlite backend)
}

// KeepaliveConfig controls the optional self-ping that keeps free-tier hosts
// from idling the process out.
type KeepaliveConfig struct {
	ExternalURL string        // public base URL of this service; empty disables
	Interval    time.Duration // delay between pings
}

// Config holds all configuration values for the application.
type Config struct {
	// Server
	Port              string        // just the number
	ReadTimeout       time.Duration // e.g. 15s
	ReadHeaderTimeout time.Duration // e.g. 10s
	WriteTimeout      time.Duration // e.g. 20s
	IdleTimeout       time.Duration // e.g. 60s
	MaxHeaderBytes    int           // bytes
	GinMode           string        // debug|release|test

	// Logging
	LogLevel  string // debug|info|warn|error|fatal|panic
	LogPretty bool   // pretty console logs in dev

	// App
	Telegram  TelegramConfig
	Relay     RelayConfig
	Snapshot  SnapshotConfig
	Keepalive KeepaliveConfig

	// Rate limiting
	RateRPS   float64 // tokens per second (>= 0)
	RateBurst int     // bucket size (>= 1)

	// Web protection
	CORS     CORSConfig
	Security SecurityConfig

	// Observability
	OTEL OTELConfig
}

// MustLoad loads the configuration and panics if validation fails.
func MustLoad() Config {
	cfg, err := Load()
	if err != nil {
		panic(err)
	}
	return cfg
}

// Load reads configuration from environment variables,
// applies defaults, normalizes values, and validates the result.
func Load() (Config, error) {
	cfg := Config{
		// Server
		Port:              getenv("PORT", "8080"),
		ReadTimeout:       getdur("READ_TIMEOUT", 15*time.Second),
		ReadHeaderTimeout: getdur("READ_HEADER_TIMEOUT", 10*time.Second),
		WriteTimeout:      getdur("WRITE_TIMEOUT", 90*time.Second),
		IdleTimeout:       getdur("IDLE_TIMEOUT", 60*time.Second),
		MaxHeaderBytes:    getint("MAX_HEADER_BYTES", 1<<20),
		GinMode:           strings.ToLower(getenv("GIN_MODE", "release")),

		// Logging
		LogLevel:  strings.ToLower(getenv("LOG_LEVEL", "info")),
		LogPretty: getbool("LOG_PRETTY", false),

		// App
		Telegram: TelegramConfig{
			BotToken:    getenv("TELEGRAM_BOT_TOKEN", ""),
			APIBase:     getenv("TELEGRAM_API_BASE", "https://api.telegram.org"),
			PollTimeout: getdur("POLL_TIMEOUT", 30*time.Second),
			RetryDelay:  getdur("POLL_RETRY_DELAY", 5*time.Second),
		},
		Relay: RelayConfig{
			Mode:          strings.ToLower(getenv("RELAY_MODE", RelayModeSingle)),
			AuthRequired:  getbool("AUTH_REQUIRED", true),
			WebhookSecret: getenv("WEBHOOK_SECRET", ""),
			DefaultChatID: getenv("DEFAULT_CHAT_ID", ""),
		},
		Snapshot: SnapshotConfig{
			Backend: strings.ToLower(getenv("SNAPSHOT_BACKEND", SnapshotBackendFile)),
			Path:    getenv("CHAT_IDS_FILE", "chat_ids.json"),
			DBPath:  getenv("DB_PATH", "relay.db"),
		},
		Keepalive: KeepaliveConfig{
			ExternalURL: strings.TrimRight(getenv("EXTERNAL_URL", ""), "/"),
			Interval:    getdur("KEEPALIVE_INTERVAL", 14*time.Minute),
		},

		// Rate limiting
		RateRPS:   getfloat("RATE_RPS", 5.0),
		RateBurst: getint("RATE_BURST", 10),

		// Web protection
		CORS: CORSConfig{
			AllowedOrigins: splitCSV(getenv("CORS_ALLOWED_ORIGINS", "")),
		},
		Security: SecurityConfig{
			EnableHSTS: getbool("ENABLE_HSTS", false),
			HSTSMaxAge: getdur("HSTS_MAX_AGE", 180*24*time.Hour),
		},

		// Observability (OpenTelemetry)
		OTEL: OTELConfig{
			Enabled:     getbool("OTEL_ENABLED", false),
			Endpoint:    getenv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317"),
			Insecure:    getbool("OTEL_EXPORTER_OTLP_INSECURE", true),
			ServiceName: getenv("OTEL_SERVICE_NAME", "go-alert-relay"),
			SampleRatio: getfloat("OTEL_TRACES_SAMPLER_ARG", 1.0),
		},
	}

	// --- normalization ---
	if cfg.LogLevel == "warning" {
		cfg.LogLevel = "warn"
	}
	switch cfg.GinMode {
	case "debug", "release", "test":
	default:
		cfg.GinMode = "release"
	}

	// --- validation ---
	switch cfg.LogLevel {
	case "debug", "info", "warn", "error", "fatal", "panic":
	default:
		return cfg, errors.New("LOG_LEVEL must be one of: debug, info, warn, error, fatal, panic")
	}
	if strings.TrimSpace(cfg.Port) == "" {
		return cfg, errors.New("PORT must not be empty")
	}
	if cfg.ReadTimeout <= 0 || cfg.ReadHeaderTimeout <= 0 || cfg.WriteTimeout <= 0 || cfg.IdleTimeout <= 0 {
		return cfg, errors.New("timeouts must be positive durations")
	}
	if cfg.MaxHeaderBytes <= 0 {
		return cfg, errors.New("MAX_HEADER_BYTES must be > 0")
	}
	if strings.TrimSpace(cfg.Telegram.BotToken) == "" {
		return cfg, errors.New("TELEGRAM_BOT_TOKEN must not be empty")
	}
	if strings.TrimSpace(cfg.Telegram.APIBase) == "" {
		return cfg, errors.New("TELEGRAM_API_BASE must not be empty")
	}
	if cfg.Telegram.PollTimeout <= 0 || cfg.Telegram.RetryDelay <= 0 {
		return cfg, errors.New("POLL_TIMEOUT and POLL_RETRY_DELAY must be positive durations")
	}
	switch cfg.Relay.Mode {
	case RelayModeSingle, RelayModeBroadcast:
	default:
		return cfg, errors.New("RELAY_MODE must be one of: single, broadcast")
	}
	if cfg.Relay.AuthRequired && strings.TrimSpace(cfg.Relay.WebhookSecret) == "" {
		return cfg, errors.New("WEBHOOK_SECRET must be set when AUTH_REQUIRED is enabled")
	}
	switch cfg.Snapshot.Backend {
	case SnapshotBackendFile:
		if strings.TrimSpace(cfg.Snapshot.Path) == "" {
			return cfg, errors.New("CHAT_IDS_FILE must not be empty")
		}
	case SnapshotBackendSQLite:
		if strings.TrimSpace(cfg.Snapshot.DBPath) == "" {
			return cfg, errors.New("DB_PATH must not be empty")
		}
	default:
		return cfg, errors.New("SNAPSHOT_BACKEND must be one of: file, sqlite")
	}
	if cfg.Keepalive.Interval <= 0 {
		return cfg, errors.New("KEEPALIVE_INTERVAL must be > 0")
	}
	if cfg.RateRPS < 0 {
		return cfg, errors.New("RATE_RPS must be >= 0")
	}
	if cfg.RateBurst < 1 {
		return cfg, errors.New("RATE_BURST must be >= 1")
	}
	if cfg.Security.HSTSMaxAge < 0 {
		return cfg, errors.New("HSTS_MAX_AGE must be >= 0")
	}
	if cfg.OTEL.SampleRatio < 0 || cfg.OTEL.SampleRatio > 1 {
		return cfg, errors.New("OTEL_TRACES_SAMPLER_ARG must be in [0,1]")
	}

	return cfg, nil
}

// ---- helpers (no external deps) ----

func getenv(k, def string) string {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		return v
	}
	return def
}

func getfloat(k string, def float64) float64 {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return def
}

func getint(k string, def int) int {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}

func getbool(k string, def bool) bool {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "1", "true", "yes", "y", "on":
			return true
		case "0", "false", "no", "n", "off":
			return false
		}
	}
	return def
}

func getdur(k string, def time.Duration) time.Duration {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

func splitCSV(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		t := strings.TrimSpace(p)
		if t != "" {
			out = append(out, t)
		}
	}
	return out
}
