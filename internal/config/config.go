// Package config provides configuration management for the application.
package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the review service.
//
//nolint:govet // fieldalignment: Accept minor memory overhead for better readability
type Config struct {
	RabbitMQ RabbitMQConfig
	Logging  LoggingConfig
	Database DatabaseConfig
	Server   ServerConfig
	Redis    RedisConfig
	Provider ProviderConfig
	Watcher  WatcherConfig
	Auth     AuthConfig
}

// ServerConfig contains HTTP server configuration.
type ServerConfig struct {
	Port            int
	ShutdownTimeout time.Duration
}

// DatabaseConfig contains database connection configuration.
//
//nolint:govet // fieldalignment: Accept minor memory overhead for better readability
type DatabaseConfig struct {
	Host           string
	Name           string
	User           string
	Password       string
	SSLMode        string
	Port           int
	MaxConnections int
	MinConnections int
	MaxIdleTime    time.Duration
	MaxLifetime    time.Duration
}

// ConnString renders the pgx connection string.
func (c DatabaseConfig) ConnString() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode,
	)
}

// RabbitMQConfig contains the audit event stream configuration.
//
//nolint:govet // fieldalignment: Accept minor memory overhead for better readability
type RabbitMQConfig struct {
	Host       string
	User       string
	Password   string
	Exchange   string
	Queue      string
	RoutingKey string
	Port       int
}

// RedisConfig contains the asynq broker configuration.
type RedisConfig struct {
	URL string
}

// ProviderConfig contains the video-stats provider (snapshot) configuration.
//
//nolint:govet // fieldalignment: Accept minor memory overhead for better readability
type ProviderConfig struct {
	BaseURL       string
	Token         string
	MaxAttempts   int
	InitialDelay  time.Duration
	WebhookSecret string
}

// WatcherConfig contains the background refresh poller configuration.
type WatcherConfig struct {
	Interval    time.Duration
	FetchLimit  int
	MetricsPort int
}

// AuthConfig contains dashboard API authentication configuration.
type AuthConfig struct {
	APIKeys []string
}

// LoggingConfig contains logging configuration.
type LoggingConfig struct {
	Level string
	File  string
}

// Load loads configuration from file and environment variables.
func Load() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")

	// Set defaults
	setDefaults()

	// Read environment variables
	viper.AutomaticEnv()
	viper.SetEnvPrefix("APP")

	// Try to read config file
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		// Config file not found, use defaults and env vars
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

func setDefaults() {
	// Server
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.shutdowntimeout", 30*time.Second)

	// Database
	viper.SetDefault("database.host", "localhost")
	viper.SetDefault("database.port", 5432)
	viper.SetDefault("database.name", "contest_review")
	viper.SetDefault("database.user", "postgres")
	viper.SetDefault("database.password", "postgres")
	viper.SetDefault("database.sslmode", "disable")
	viper.SetDefault("database.maxconnections", 25)
	viper.SetDefault("database.minconnections", 5)
	viper.SetDefault("database.maxidletime", 30*time.Minute)
	viper.SetDefault("database.maxlifetime", 1*time.Hour)

	// RabbitMQ
	viper.SetDefault("rabbitmq.host", "localhost")
	viper.SetDefault("rabbitmq.port", 5672)
	viper.SetDefault("rabbitmq.user", "guest")
	viper.SetDefault("rabbitmq.password", "guest")
	viper.SetDefault("rabbitmq.exchange", "contest.review")
	viper.SetDefault("rabbitmq.queue", "contest.review.events")
	viper.SetDefault("rabbitmq.routingkey", "submission.status")

	// Redis / asynq
	viper.SetDefault("redis.url", "redis://localhost:6379/0")

	// Provider snapshot polling
	viper.SetDefault("provider.baseurl", "https://api.brightdata.com/datasets/v3")
	viper.SetDefault("provider.token", "")
	viper.SetDefault("provider.maxattempts", 6)
	viper.SetDefault("provider.initialdelay", 1*time.Second)
	viper.SetDefault("provider.webhooksecret", "")

	// Watcher
	viper.SetDefault("watcher.interval", 5*time.Second)
	viper.SetDefault("watcher.fetchlimit", 500)
	viper.SetDefault("watcher.metricsport", 9091)

	// Logging
	viper.SetDefault("logging.level", "info")
	viper.SetDefault("logging.file", "")
}
