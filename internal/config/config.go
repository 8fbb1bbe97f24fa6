package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	defaultPort             = "8080"
	defaultUpstreamBaseURL  = "http://109.73.206.144:6969/api"
	defaultForwarderBaseURL = "http://localhost:8080"
	defaultKafkaTopic       = "dashboard.events"
	defaultShutdownTimeout  = 10 * time.Second
	defaultForwarderTimeout = 30 * time.Second
)

type Config struct {
	Server        ServerConfig
	Upstream      UpstreamConfig
	Forwarder     ForwarderConfig
	Logging       LoggingConfig
	Kafka         KafkaConfig
	ResourcesFile string
}

type ServerConfig struct {
	Port            string
	ShutdownTimeout time.Duration
}

// UpstreamConfig points the forwarder at the reporting API.
type UpstreamConfig struct {
	BaseURL string
	APIKey  string
	// Timeout of zero keeps the transport default.
	Timeout time.Duration
}

// ForwarderConfig is how dashboards reach the forwarder.
type ForwarderConfig struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
}

type LoggingConfig struct {
	Level     string
	Format    string
	Directory string
}

type KafkaConfig struct {
	Brokers []string
	Topic   string
}

// Enabled reports whether fetch events should be published.
func (k KafkaConfig) Enabled() bool {
	return len(k.Brokers) > 0
}

func Load() (*Config, error) {
	shutdownTimeout, err := durationEnv("SHUTDOWN_TIMEOUT", defaultShutdownTimeout)
	if err != nil {
		return nil, err
	}
	upstreamTimeout, err := durationEnv("UPSTREAM_TIMEOUT", 0)
	if err != nil {
		return nil, err
	}
	forwarderTimeout, err := durationEnv("FORWARDER_TIMEOUT", defaultForwarderTimeout)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Server: ServerConfig{
			Port:            stringEnv("PORT", defaultPort),
			ShutdownTimeout: shutdownTimeout,
		},
		Upstream: UpstreamConfig{
			BaseURL: strings.TrimRight(stringEnv("UPSTREAM_BASE_URL", defaultUpstreamBaseURL), "/"),
			APIKey:  strings.TrimSpace(os.Getenv("UPSTREAM_API_KEY")),
			Timeout: upstreamTimeout,
		},
		Forwarder: ForwarderConfig{
			BaseURL: strings.TrimRight(stringEnv("FORWARDER_BASE_URL", defaultForwarderBaseURL), "/"),
			APIKey:  strings.TrimSpace(os.Getenv("FORWARDER_API_KEY")),
			Timeout: forwarderTimeout,
		},
		Logging: LoggingConfig{
			Level:     stringEnv("LOG_LEVEL", "info"),
			Format:    stringEnv("LOG_FORMAT", "text"),
			Directory: stringEnv("LOG_DIRECTORY", "./logs"),
		},
		Kafka: KafkaConfig{
			Brokers: kafkaBrokers(),
			Topic:   stringEnv("KAFKA_TOPIC", defaultKafkaTopic),
		},
		ResourcesFile: strings.TrimSpace(os.Getenv("RESOURCES_FILE")),
	}

	if _, err := strconv.Atoi(cfg.Server.Port); err != nil {
		return nil, fmt.Errorf("invalid PORT %q: %w", cfg.Server.Port, err)
	}
	return cfg, nil
}

func stringEnv(key, fallback string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return fallback
}

// durationEnv accepts Go durations ("15s", "1m") or a bare number of seconds.
func durationEnv(key string, fallback time.Duration) (time.Duration, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback, nil
	}
	if seconds, err := strconv.Atoi(raw); err == nil {
		return time.Duration(seconds) * time.Second, nil
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, raw, err)
	}
	return parsed, nil
}

// kafkaBrokers reads KAFKA_BROKERS (comma separated) and falls back to KAFKA_BROKER.
func kafkaBrokers() []string {
	raw := os.Getenv("KAFKA_BROKERS")
	if strings.TrimSpace(raw) == "" {
		raw = os.Getenv("KAFKA_BROKER")
	}
	brokers := make([]string, 0)
	for _, part := range strings.Split(raw, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			brokers = append(brokers, trimmed)
		}
	}
	return brokers
}
