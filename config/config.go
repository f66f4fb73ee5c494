package config

import (
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

// Config is the top-level application configuration.
type Config struct {
	mu sync.Mutex `yaml:"-"`

	Database  DatabaseConfig  `yaml:"database"   envPrefix:"DATABASE_"`
	Redis     RedisConfig     `yaml:"redis"      envPrefix:"REDIS_"`
	Web       WebConfig       `yaml:"web"        envPrefix:"WEB_"`
	MagicLink MagicLinkConfig `yaml:"magic_link" envPrefix:"MAGIC_LINK_"`
	Messaging MessagingConfig `yaml:"messaging"  envPrefix:"MESSAGING_"`
}

// DatabaseConfig selects and configures the SQL backend.
type DatabaseConfig struct {
	Driver   string         `yaml:"driver"   env:"DRIVER"` // "sqlite" or "postgres"
	SQLite   SQLiteConfig   `yaml:"sqlite"   envPrefix:"SQLITE_"`
	Postgres PostgresConfig `yaml:"postgres" envPrefix:"POSTGRES_"`
}

type SQLiteConfig struct {
	Path string `yaml:"path" env:"PATH"`
}

type PostgresConfig struct {
	Host     string `yaml:"host"     env:"HOST"`
	Port     int    `yaml:"port"     env:"PORT"`
	Database string `yaml:"database" env:"DATABASE"`
	User     string `yaml:"user"     env:"USER"`
	Password string `yaml:"password" env:"PASSWORD"`
	SSLMode  string `yaml:"sslmode"  env:"SSLMODE"`
}

// RedisConfig enables the login-link rate limiter when Address is set.
type RedisConfig struct {
	Address  string `yaml:"address"  env:"ADDRESS"`
	Password string `yaml:"password" env:"PASSWORD"`
	DB       int    `yaml:"db"       env:"DB"`
}

// WebConfig defines the web server settings.
type WebConfig struct {
	Host          string `yaml:"host"           env:"HOST"`
	Port          int    `yaml:"port"           env:"PORT"`
	SessionSecret string `yaml:"session_secret" env:"SESSION_SECRET"`
	BaseURL       string `yaml:"base_url"       env:"BASE_URL"`
	SecureCookie  bool   `yaml:"secure_cookie"  env:"SECURE_COOKIE"`
}

// MagicLinkConfig controls login link lifetime and send limits.
type MagicLinkConfig struct {
	TTL        time.Duration `yaml:"ttl"         env:"TTL"`
	MaxSends   int           `yaml:"max_sends"   env:"MAX_SENDS"`
	SendWindow time.Duration `yaml:"send_window" env:"SEND_WINDOW"`
}

// MessagingConfig defines the messaging backend used to hand mail to the mailer.
type MessagingConfig struct {
	Backend             string        `yaml:"backend" env:"BACKEND"` // "mqtt", "kafka" or "" to disable
	MQTT                MQTTConfig    `yaml:"mqtt"    envPrefix:"MQTT_"`
	Kafka               KafkaConfig   `yaml:"kafka"   envPrefix:"KAFKA_"`
	MailTopic           string        `yaml:"mail_topic"            env:"MAIL_TOPIC"`
	OutboxDrainInterval time.Duration `yaml:"outbox_drain_interval" env:"OUTBOX_DRAIN_INTERVAL"`
}

// MQTTConfig defines MQTT broker settings.
type MQTTConfig struct {
	Broker   string `yaml:"broker"    env:"BROKER"`
	Port     int    `yaml:"port"      env:"PORT"`
	ClientID string `yaml:"client_id" env:"CLIENT_ID"`
}

// KafkaConfig defines Kafka broker settings.
type KafkaConfig struct {
	Brokers []string `yaml:"brokers"  env:"BROKERS" envSeparator:","`
	GroupID string   `yaml:"group_id" env:"GROUP_ID"`
}

// Defaults returns a Config with sane defaults.
func Defaults() *Config {
	return &Config{
		Database: DatabaseConfig{
			Driver: "sqlite",
			SQLite: SQLiteConfig{Path: "bracket.db"},
			Postgres: PostgresConfig{
				Host:    "localhost",
				Port:    5432,
				SSLMode: "disable",
			},
		},
		Web: WebConfig{
			Host:    "0.0.0.0",
			Port:    8090,
			BaseURL: "http://localhost:8090",
		},
		MagicLink: MagicLinkConfig{
			TTL:        15 * time.Minute,
			MaxSends:   5,
			SendWindow: time.Hour,
		},
		Messaging: MessagingConfig{
			Backend:             "mqtt",
			MailTopic:           "bracket/mail",
			OutboxDrainInterval: 5 * time.Second,
			MQTT: MQTTConfig{
				Broker:   "localhost",
				Port:     1883,
				ClientID: "bracket",
			},
		},
	}
}

// Load reads a YAML config file over the defaults, then applies BRACKET_*
// environment overrides. A missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := Defaults()
	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, err
	}
	if err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	}
	if err := env.ParseWithOptions(cfg, env.Options{Prefix: "BRACKET_"}); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks settings that would otherwise fail late at startup.
func (c *Config) Validate() error {
	switch c.Database.Driver {
	case "sqlite", "postgres":
	default:
		return fmt.Errorf("unsupported database driver: %q", c.Database.Driver)
	}
	switch c.Messaging.Backend {
	case "", "mqtt", "kafka":
	default:
		return fmt.Errorf("unsupported messaging backend: %q", c.Messaging.Backend)
	}
	if c.MagicLink.TTL <= 0 {
		return fmt.Errorf("magic_link.ttl must be positive")
	}
	return nil
}

// Save writes the config to a YAML file.
func (c *Config) Save(path string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Addr returns the HTTP listen address.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Web.Host, c.Web.Port)
}
