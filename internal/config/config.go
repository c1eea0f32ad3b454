// Package config loads process settings from the environment.
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/sirupsen/logrus"
)

// Server configures the room server process.
type Server struct {
	Port     string `env:"PORT" envDefault:"3001"`
	LogLevel string `env:"HOLDEM_LOG_LEVEL" envDefault:"info"`

	DealDelay     time.Duration `env:"HOLDEM_DEAL_DELAY" envDefault:"2s"`
	StartingChips int           `env:"HOLDEM_STARTING_CHIPS" envDefault:"1000"`
	MaxSeats      int           `env:"HOLDEM_MAX_SEATS" envDefault:"8"`

	WriteTimeout   time.Duration `env:"HOLDEM_WRITE_TIMEOUT" envDefault:"3s"`
	OutboundBuffer int           `env:"HOLDEM_OUTBOUND_BUFFER" envDefault:"32"`
	MsgRate        float64       `env:"HOLDEM_MSG_RATE" envDefault:"10"`
	MsgBurst       int           `env:"HOLDEM_MSG_BURST" envDefault:"20"`

	Redis Redis
	OTel  OTel
}

// Redis configures the action queue. An empty Addr disables hand recording.
type Redis struct {
	Addr  string `env:"REDIS_ADDR"`
	DB    int    `env:"REDIS_DB" envDefault:"0"`
	Queue string `env:"HISTORIAN_QUEUE_NAME" envDefault:"holdem_actions"`
}

// OTel configures tracing export. Tracing is off unless Endpoint is set.
type OTel struct {
	Endpoint    string `env:"HOLDEM_OTEL_ENDPOINT"`
	Enabled     bool   `env:"HOLDEM_OTEL_ENABLED" envDefault:"true"`
	ServiceName string `env:"HOLDEM_OTEL_SERVICE" envDefault:"holdem"`
}

// Historian configures the queue-to-Postgres worker.
type Historian struct {
	LogLevel      string        `env:"HOLDEM_LOG_LEVEL" envDefault:"info"`
	BatchSize     int           `env:"HISTORIAN_BATCH_SIZE" envDefault:"20"`
	FlushInterval time.Duration `env:"HISTORIAN_FLUSH_INTERVAL" envDefault:"500ms"`
	PopTimeout    time.Duration `env:"HISTORIAN_POP_TIMEOUT" envDefault:"3s"`

	// Hands with no recorded activity for this long are marked abandoned.
	InactivityTimeout time.Duration `env:"HISTORIAN_INACTIVITY_TIMEOUT" envDefault:"10m"`

	Redis    Redis
	Postgres Postgres
}

// Postgres holds connection settings using the same variable names as the
// docker-compose database service.
type Postgres struct {
	User     string `env:"POSTGRES_USER" envDefault:"postgres"`
	Password string `env:"POSTGRES_PASSWORD"`
	Host     string `env:"PG_HOST" envDefault:"localhost"`
	Port     string `env:"PG_PORT" envDefault:"5432"`
	Database string `env:"PG_DATABASE" envDefault:"holdem"`
}

// ConnString renders a postgres:// URL for pgxpool.
func (p Postgres) ConnString() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s", p.User, p.Password, p.Host, p.Port, p.Database)
}

// LoadServer parses and validates the server configuration.
func LoadServer() (Server, error) {
	var cfg Server
	if err := env.Parse(&cfg); err != nil {
		return cfg, fmt.Errorf("parse env: %w", err)
	}
	return cfg, cfg.Validate()
}

// Validate rejects settings the room server cannot run with.
func (c Server) Validate() error {
	var errs []error
	if c.MaxSeats < 2 || c.MaxSeats > 8 {
		errs = append(errs, fmt.Errorf("HOLDEM_MAX_SEATS must be between 2 and 8, got %d", c.MaxSeats))
	}
	if c.StartingChips <= 0 {
		errs = append(errs, fmt.Errorf("HOLDEM_STARTING_CHIPS must be positive, got %d", c.StartingChips))
	}
	if c.DealDelay < 0 {
		errs = append(errs, fmt.Errorf("HOLDEM_DEAL_DELAY must not be negative, got %s", c.DealDelay))
	}
	if c.OutboundBuffer <= 0 {
		errs = append(errs, fmt.Errorf("HOLDEM_OUTBOUND_BUFFER must be positive, got %d", c.OutboundBuffer))
	}
	if c.MsgRate <= 0 || c.MsgBurst <= 0 {
		errs = append(errs, errors.New("HOLDEM_MSG_RATE and HOLDEM_MSG_BURST must be positive"))
	}
	if _, err := logrus.ParseLevel(c.LogLevel); err != nil {
		errs = append(errs, fmt.Errorf("HOLDEM_LOG_LEVEL: %w", err))
	}
	return errors.Join(errs...)
}

// LoadHistorian parses the historian configuration.
func LoadHistorian() (Historian, error) {
	var cfg Historian
	if err := env.Parse(&cfg); err != nil {
		return cfg, fmt.Errorf("parse env: %w", err)
	}
	if cfg.BatchSize <= 0 {
		return cfg, fmt.Errorf("HISTORIAN_BATCH_SIZE must be positive, got %d", cfg.BatchSize)
	}
	if cfg.Redis.Addr == "" {
		cfg.Redis.Addr = "localhost:6379"
	}
	return cfg, nil
}

// NewLogger builds the process logger at the given level, falling back to info.
func NewLogger(level string) *logrus.Logger {
	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.InfoLevel
	}
	logger.SetLevel(lvl)
	return logger
}
