package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

const (
	BackendTray = "tray"
	BackendDBus = "dbus"
)

var ErrMissingDSN = errors.New("POSTGRES_DSN environment variable is required")

type Config struct {
	Server    ServerConfig    `koanf:"server"`
	Database  DatabaseConfig  `koanf:"database"`
	Log       LogConfig       `koanf:"log"`
	Events    EventsConfig    `koanf:"events"`
	Notify    NotifyConfig    `koanf:"notify"`
	Dispatch  DispatchConfig  `koanf:"dispatch"`
	Scheduler SchedulerConfig `koanf:"scheduler"`
	Telemetry TelemetryConfig `koanf:"telemetry"`
}

type LogConfig struct {
	Level string `koanf:"level"`
}

type ServerConfig struct {
	Host            string        `koanf:"host"`
	Port            int           `koanf:"port"`
	ReadTimeout     time.Duration `koanf:"read_timeout"`
	WriteTimeout    time.Duration `koanf:"write_timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
}

type DatabaseConfig struct {
	DSN                string        `koanf:"dsn"`
	MaxOpenConns       int           `koanf:"max_open_conns"`
	MaxIdleConns       int           `koanf:"max_idle_conns"`
	ConnMaxLifetime    time.Duration `koanf:"conn_max_lifetime"`
	SlowQueryThreshold time.Duration `koanf:"slow_query_threshold"`
}

// EventsConfig configures the optional event stream. Publishing is disabled
// when NATSURL is empty.
type EventsConfig struct {
	NATSURL string        `koanf:"nats_url"`
	MaxAge  time.Duration `koanf:"max_age"`
}

type NotifyConfig struct {
	Backend   string `koanf:"backend"`
	AppName   string `koanf:"app_name"`
	Currency  string `koanf:"currency"`
	InboxSize int    `koanf:"inbox_size"`
}

type DispatchConfig struct {
	Timeout    time.Duration `koanf:"timeout"`
	ActionWait time.Duration `koanf:"action_wait"`
}

type SchedulerConfig struct {
	RestoreLookback time.Duration `koanf:"restore_lookback"`
}

type TelemetryConfig struct {
	ServiceName  string  `koanf:"service_name"`
	Environment  string  `koanf:"environment"`
	SamplingRate float64 `koanf:"sampling_rate"`
	// OTLPEndpoint enables trace and metric export over OTLP/HTTP.
	OTLPEndpoint   string        `koanf:"otlp_endpoint"`
	MetricInterval time.Duration `koanf:"metric_interval"`
}

// envKeys maps the supported environment variables to config keys.
var envKeys = map[string]string{
	"SERVER_HOST":             "server.host",
	"SERVER_PORT":             "server.port",
	"SERVER_READ_TIMEOUT":     "server.read_timeout",
	"SERVER_WRITE_TIMEOUT":    "server.write_timeout",
	"SERVER_SHUTDOWN_TIMEOUT": "server.shutdown_timeout",
	"POSTGRES_DSN":            "database.dsn",
	"DB_MAX_OPEN_CONNS":       "database.max_open_conns",
	"DB_MAX_IDLE_CONNS":       "database.max_idle_conns",
	"DB_CONN_MAX_LIFETIME":    "database.conn_max_lifetime",
	"DB_SLOW_QUERY_THRESHOLD": "database.slow_query_threshold",
	"LOG_LEVEL":               "log.level",
	"NATS_URL":                "events.nats_url",
	"EVENTS_MAX_AGE":          "events.max_age",
	"NOTIFY_BACKEND":          "notify.backend",
	"NOTIFY_APP_NAME":         "notify.app_name",
	"CURRENCY_CODE":           "notify.currency",
	"INBOX_SIZE":              "notify.inbox_size",
	"DISPATCH_TIMEOUT":        "dispatch.timeout",
	"ACTION_WAIT":             "dispatch.action_wait",
	"RESTORE_LOOKBACK":        "scheduler.restore_lookback",
	"OTEL_SERVICE_NAME":       "telemetry.service_name",
	"ENVIRONMENT":             "telemetry.environment",
	"OTEL_SAMPLING_RATE":      "telemetry.sampling_rate",

	"OTEL_EXPORTER_OTLP_ENDPOINT": "telemetry.otlp_endpoint",
	"OTEL_METRIC_EXPORT_INTERVAL": "telemetry.metric_interval",
}

// Load reads defaults, then the YAML file named by CONFIG_FILE if it exists,
// then environment variables. Later sources win.
func Load() (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(NewDefaultProvider(), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if _, err := os.Stat(path); err == nil {
			if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
				return nil, fmt.Errorf("failed to load config file: %w", err)
			}
		}
	}

	if err := k.Load(env.Provider("", ".", func(s string) string {
		return envKeys[s]
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) Validate() error {
	if c.Database.DSN == "" {
		return ErrMissingDSN
	}

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid SERVER_PORT: %d", c.Server.Port)
	}

	switch c.Notify.Backend {
	case BackendTray, BackendDBus:
	default:
		return fmt.Errorf("invalid NOTIFY_BACKEND: %q (supported: %s, %s)", c.Notify.Backend, BackendTray, BackendDBus)
	}

	if c.Dispatch.Timeout <= 0 {
		return fmt.Errorf("invalid DISPATCH_TIMEOUT: %s", c.Dispatch.Timeout)
	}

	if c.Scheduler.RestoreLookback < 0 {
		return fmt.Errorf("invalid RESTORE_LOOKBACK: %s", c.Scheduler.RestoreLookback)
	}

	if c.Telemetry.SamplingRate < 0 || c.Telemetry.SamplingRate > 1 {
		return fmt.Errorf("invalid OTEL_SAMPLING_RATE: %v", c.Telemetry.SamplingRate)
	}

	if c.Telemetry.OTLPEndpoint != "" && c.Telemetry.MetricInterval <= 0 {
		return fmt.Errorf("invalid OTEL_METRIC_EXPORT_INTERVAL: %s", c.Telemetry.MetricInterval)
	}

	return nil
}

func (c *ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}
