package config

import (
	"github.com/knadh/koanf/providers/confmap"
)

func DefaultConfig() map[string]any {
	return map[string]any{
		"server.host":             "0.0.0.0",
		"server.port":             8080,
		"server.read_timeout":     "30s",
		"server.write_timeout":    "30s",
		"server.shutdown_timeout": "10s",

		"database.dsn":                  "",
		"database.max_open_conns":       25,
		"database.max_idle_conns":       25,
		"database.conn_max_lifetime":    "5m",
		"database.slow_query_threshold": "200ms",

		"log.level": "info",

		"events.nats_url": "",
		"events.max_age":  "168h",

		"notify.backend":    BackendTray,
		"notify.app_name":   "primind",
		"notify.currency":   "VND",
		"notify.inbox_size": 20,

		"dispatch.timeout":     "10s",
		"dispatch.action_wait": "2s",

		"scheduler.restore_lookback": "1h",

		"telemetry.service_name":    "primind-payment-reminder",
		"telemetry.environment":     "development",
		"telemetry.sampling_rate":   1.0,
		"telemetry.otlp_endpoint":   "",
		"telemetry.metric_interval": "1m",
	}
}

func NewDefaultProvider() *confmap.Confmap {
	return confmap.Provider(DefaultConfig(), ".")
}
