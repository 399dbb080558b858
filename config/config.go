package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	log "github.com/sirupsen/logrus"
)

const (
	DriverMemory   = "memory"
	DriverMySQL    = "mysql"
	DriverPostgres = "postgres"
	DriverMongo    = "mongo"
	DriverBadger   = "badger"
)

// Config holds application configuration
type Config struct {
	Port      string `envconfig:"PORT" default:"8080"`
	Env       string `envconfig:"ENV" default:"development"`
	LogLevel  string `envconfig:"LOG_LEVEL" default:"info"`
	LogFormat string `envconfig:"LOG_FORMAT" default:"text"`

	AllowedOrigins []string `envconfig:"ALLOWED_ORIGINS" default:"http://localhost:3000,http://127.0.0.1:3000"`

	StoreDriver    string        `envconfig:"STORE_DRIVER" default:"memory"`
	DatabaseDSN    string        `envconfig:"DATABASE_DSN"`
	MongoURI       string        `envconfig:"MONGO_URI" default:"mongodb://127.0.0.1:27017"`
	MongoDatabase  string        `envconfig:"MONGO_DATABASE" default:"socialmedia"`
	BadgerPath     string        `envconfig:"BADGER_PATH" default:"data/badger"`
	ConnectTimeout time.Duration `envconfig:"CONNECT_TIMEOUT" default:"10s"`

	ShutdownTimeout time.Duration `envconfig:"SHUTDOWN_TIMEOUT" default:"10s"`

	// StrictAccountMessages makes listing the messages of an unknown account
	// an error instead of an empty list.
	StrictAccountMessages bool `envconfig:"STRICT_ACCOUNT_MESSAGES" default:"true"`
}

// Load reads an optional .env file and decodes the environment into a Config.
func Load(files ...string) (Config, error) {
	if err := godotenv.Load(files...); err != nil {
		log.WithError(err).Debug(".env file not loaded, using environment only")
	}

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to read configuration: %w", err)
	}

	for i := range cfg.AllowedOrigins {
		cfg.AllowedOrigins[i] = strings.TrimSpace(cfg.AllowedOrigins[i])
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks that the selected store driver has what it needs.
func (c Config) Validate() error {
	switch c.StoreDriver {
	case DriverMemory, DriverMongo, DriverBadger:
	case DriverMySQL, DriverPostgres:
		if c.DatabaseDSN == "" {
			return fmt.Errorf("DATABASE_DSN is required for store driver %q", c.StoreDriver)
		}
	default:
		return fmt.Errorf("unknown store driver %q", c.StoreDriver)
	}

	if c.LogFormat != "text" && c.LogFormat != "json" {
		return fmt.Errorf("unknown log format %q", c.LogFormat)
	}
	return nil
}
