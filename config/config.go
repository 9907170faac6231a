package config

import (
	"os"
	"sync"
	"time"

	"gopkg.in/yaml.v3"

	"supplytrack/refdata"
)

type Config struct {
	mu sync.RWMutex `yaml:"-"`

	Site      SiteConfig             `yaml:"site"`
	Telemetry TelemetryConfig        `yaml:"telemetry"`
	Redis     RedisConfig            `yaml:"redis"`
	Messaging MessagingConfig        `yaml:"messaging"`
	Web       WebConfig              `yaml:"web"`
	Locations []refdata.LocationSpec `yaml:"locations,omitempty"`
}

// SiteConfig identifies the local facility and its trolley fleet.
type SiteConfig struct {
	Name          string        `yaml:"name"`
	Trolleys      []string      `yaml:"trolleys"`
	CurrentOrder  string        `yaml:"current_order"`
	PollInterval  time.Duration `yaml:"poll_interval"`
	EventLookback time.Duration `yaml:"event_lookback"`
}

type TelemetryConfig struct {
	Driver   string         `yaml:"driver"`
	SQLite   SQLiteConfig   `yaml:"sqlite"`
	Postgres PostgresConfig `yaml:"postgres"`
}

type SQLiteConfig struct {
	Path string `yaml:"path"`
}

type PostgresConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Database string `yaml:"database"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	SSLMode  string `yaml:"sslmode"`
}

type RedisConfig struct {
	Address  string `yaml:"address"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type MessagingConfig struct {
	Backend string      `yaml:"backend"` // "mqtt" or "kafka"
	MQTT    MQTTConfig  `yaml:"mqtt"`
	Kafka   KafkaConfig `yaml:"kafka"`
}

type MQTTConfig struct {
	Broker   string `yaml:"broker"`
	Port     int    `yaml:"port"`
	ClientID string `yaml:"client_id"`
}

type KafkaConfig struct {
	Brokers []string `yaml:"brokers"`
	GroupID string   `yaml:"group_id"`
}

type WebConfig struct {
	Host          string `yaml:"host"`
	Port          int    `yaml:"port"`
	SessionSecret string `yaml:"session_secret"`
}

func Defaults() *Config {
	return &Config{
		Site: SiteConfig{
			Name:          "Robot_Lab",
			Trolleys:      []string{"trolley_1", "trolley_2"},
			CurrentOrder:  "current_order",
			PollInterval:  10 * time.Second,
			EventLookback: 24 * time.Hour,
		},
		Telemetry: TelemetryConfig{
			Driver: "sqlite",
			SQLite: SQLiteConfig{Path: "supplytrack.db"},
			Postgres: PostgresConfig{
				Host:     "localhost",
				Port:     5432,
				Database: "supplytrack",
				User:     "supplytrack",
				Password: "",
				SSLMode:  "disable",
			},
		},
		Redis: RedisConfig{
			Address:  "localhost:6379",
			Password: "",
			DB:       0,
		},
		Messaging: MessagingConfig{
			Backend: "mqtt",
			MQTT: MQTTConfig{
				Broker: "localhost",
				Port:   1883,
			},
			Kafka: KafkaConfig{
				Brokers: []string{"localhost:9092"},
				GroupID: "supplytrack",
			},
		},
		Web: WebConfig{
			Host:          "0.0.0.0",
			Port:          8084,
			SessionSecret: "change-me-in-production",
		},
	}
}

func Load(path string) (*Config, error) {
	cfg := Defaults()
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, err
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Save(path string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// LocationSpecs returns the configured facility layout, falling back to
// the built-in defaults when no locations are configured.
func (c *Config) LocationSpecs() []refdata.LocationSpec {
	if len(c.Locations) > 0 {
		return c.Locations
	}
	return refdata.Defaults()
}

func (c *Config) Lock()   { c.mu.Lock() }
func (c *Config) Unlock() { c.mu.Unlock() }
