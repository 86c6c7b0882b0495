package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// FileName is the configuration file a book directory carries.
const FileName = "tallybook.yaml"

// Environment variables overriding file values, loaded by the daemon via
// godotenv before Load runs.
const (
	EnvStoragePath = "TALLYBOOK_DB"
	EnvAMQPURL     = "TALLYBOOK_AMQP_URL"
	EnvFireHour    = "TALLYBOOK_FIRE_HOUR"
)

// Config represents the top-level tallybook.yaml configuration.
type Config struct {
	Book      BookConfig      `yaml:"book"`
	Storage   StorageConfig   `yaml:"storage"`
	Reminders RemindersConfig `yaml:"reminders"`
	Daemon    DaemonConfig    `yaml:"daemon"`
}

// BookConfig identifies the ledger.
type BookConfig struct {
	Name     string `yaml:"name"`
	Currency string `yaml:"currency"`
}

// StorageConfig locates the transaction store.
type StorageConfig struct {
	Path string `yaml:"path"`
}

// RemindersConfig controls advance-reminder scheduling. An empty AMQPURL
// keeps reminders local: they are logged instead of published.
type RemindersConfig struct {
	FireHour int    `yaml:"fire_hour"`
	AMQPURL  string `yaml:"amqp_url,omitempty"`
}

// DaemonConfig controls the recurring-transaction daemon.
type DaemonConfig struct {
	IntervalMinutes int `yaml:"interval_minutes"`
}

// Load reads a tallybook.yaml file from disk, then overlays any environment
// overrides.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	applyEnv(&cfg)
	return &cfg, nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv(EnvStoragePath); v != "" {
		cfg.Storage.Path = v
	}
	if v := os.Getenv(EnvAMQPURL); v != "" {
		cfg.Reminders.AMQPURL = v
	}
	if v := os.Getenv(EnvFireHour); v != "" {
		if hour, err := strconv.Atoi(v); err == nil && hour >= 0 && hour <= 23 {
			cfg.Reminders.FireHour = hour
		}
	}
}

// Save writes a Config to a YAML file.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// Default returns a Config with sensible defaults for a new book.
func Default(bookName string) *Config {
	return &Config{
		Book: BookConfig{
			Name:     bookName,
			Currency: "USD",
		},
		Storage: StorageConfig{
			Path: "tallybook.db",
		},
		Reminders: RemindersConfig{
			FireHour: 9,
		},
		Daemon: DaemonConfig{
			IntervalMinutes: 60,
		},
	}
}
