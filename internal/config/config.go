package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config captures all tunable parameters for the service process. Values are
// loaded from environment variables with defaults that work against a local
// MongoDB, so the binary runs without setup.
type Config struct {
	HTTPAddr        string
	ShutdownTimeout time.Duration

	MongoURI string
	MongoDB  string

	// GatewayTimeout bounds every outbound command to a vehicle so a
	// dispatch or stop request cannot hang on an unreachable unit.
	GatewayTimeout time.Duration

	// MQTTBroker enables the MQTT telemetry subscriber when non-empty.
	MQTTBroker   string
	MQTTClientID string
	MQTTTopic    string

	LogLevel string
}

func defaults() Config {
	return Config{
		HTTPAddr:        ":4000",
		ShutdownTimeout: 15 * time.Second,
		MongoURI:        "mongodb://localhost:27017",
		MongoDB:         "roboride",
		GatewayTimeout:  5 * time.Second,
		MQTTClientID:    "roboride-backend",
		MQTTTopic:       "roboride/telemetry/+",
		LogLevel:        "info",
	}
}

// Load builds a Config from the environment.
func Load() (Config, error) {
	cfg := defaults()

	if port := os.Getenv("PORT"); port != "" {
		cfg.HTTPAddr = ":" + port
	}
	setString(&cfg.HTTPAddr, "HTTP_ADDR")
	setString(&cfg.MongoURI, "MONGO_URI")
	setString(&cfg.MongoDB, "MONGO_DB")
	setString(&cfg.MQTTBroker, "MQTT_BROKER")
	setString(&cfg.MQTTClientID, "MQTT_CLIENT_ID")
	setString(&cfg.MQTTTopic, "MQTT_TOPIC")

	if err := setDuration(&cfg.GatewayTimeout, "GATEWAY_TIMEOUT"); err != nil {
		return cfg, err
	}
	if err := setDuration(&cfg.ShutdownTimeout, "SHUTDOWN_TIMEOUT"); err != nil {
		return cfg, err
	}

	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.LogLevel = strings.ToLower(strings.TrimSpace(v))
	}
	return cfg, nil
}

func setString(dst *string, key string) {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		*dst = v
	}
}

func setDuration(dst *time.Duration, key string) error {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return nil
	}
	if secs, err := strconv.Atoi(v); err == nil {
		*dst = time.Duration(secs) * time.Second
		return nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fmt.Errorf("invalid %s %q: %w", key, v, err)
	}
	*dst = d
	return nil
}
