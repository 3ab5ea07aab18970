package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

// MemoryEnv runs the service on the in-memory store. No database settings
// are required in this mode.
const MemoryEnv = "memory"

// Config holds all configuration for the application
type Config struct {
	Env            string `yaml:"env" env:"ENV" env-default:"development"`
	Port           string `yaml:"port" env:"PORT" env-default:"8080"`
	JWTSecret      string `yaml:"jwt_secret" env:"JWT_SECRET"`
	LogDir         string `yaml:"log_dir" env:"LOG_DIR" env-default:"logs"`
	MigrationsPath string `yaml:"migrations_path" env:"MIGRATIONS_PATH"`

	DB      Database `yaml:"db"`
	Gateway Gateway  `yaml:"gateway"`
	Kafka   Kafka    `yaml:"kafka"`
	SMTP    SMTP     `yaml:"smtp"`
}

type Database struct {
	Host     string `yaml:"host" env:"DB_HOST"`
	Port     string `yaml:"port" env:"DB_PORT" env-default:"5432"`
	User     string `yaml:"user" env:"DB_USER"`
	Password string `yaml:"password" env:"DB_PASSWORD"`
	Name     string `yaml:"name" env:"DB_NAME"`
	SSLMode  string `yaml:"sslmode" env:"DB_SSLMODE" env-default:"disable"`
}

// DSN returns the postgres connection string.
func (d Database) DSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode)
}

type Gateway struct {
	KeyID     string        `yaml:"key_id" env:"RAZORPAY_KEY_ID"`
	KeySecret string        `yaml:"key_secret" env:"RAZORPAY_KEY_SECRET"`
	Timeout   time.Duration `yaml:"timeout" env:"GATEWAY_TIMEOUT" env-default:"10s"`
	Currency  string        `yaml:"currency" env:"GATEWAY_CURRENCY" env-default:"INR"`
}

type Kafka struct {
	Brokers []string `yaml:"brokers" env:"KAFKA_BROKERS" env-separator:","`
	Topic   string   `yaml:"topic" env:"KAFKA_TOPIC" env-default:"escrow-events"`
}

type SMTP struct {
	Host     string `yaml:"host" env:"SMTP_HOST"`
	Port     int    `yaml:"port" env:"SMTP_PORT" env-default:"587"`
	Username string `yaml:"username" env:"SMTP_USERNAME"`
	Password string `yaml:"password" env:"SMTP_PASSWORD"`
	From     string `yaml:"from" env:"SMTP_FROM"`
}

// ConfigurationError is fatal at startup: a required setting is missing or
// a backing service cannot be reached.
type ConfigurationError struct {
	Missing []string
	Err     error
}

func (e *ConfigurationError) Error() string {
	if len(e.Missing) > 0 {
		return "missing required configuration: " + strings.Join(e.Missing, ", ")
	}
	return fmt.Sprintf("invalid configuration: %v", e.Err)
}

func (e *ConfigurationError) Unwrap() error {
	return e.Err
}

// LoadConfig loads configuration from .env, an optional YAML file named by
// CAREFUND_CONFIG_PATH, and the environment, in increasing precedence.
func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, &ConfigurationError{Err: fmt.Errorf("error loading .env file: %w", err)}
	}

	var cfg Config
	var err error
	if path := os.Getenv("CAREFUND_CONFIG_PATH"); path != "" {
		err = cleanenv.ReadConfig(path, &cfg)
	} else {
		err = cleanenv.ReadEnv(&cfg)
	}
	if err != nil {
		return nil, &ConfigurationError{Err: err}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type requiredKey struct {
	key, value string
}

// Validate reports every missing required key at once.
func (c *Config) Validate() error {
	required := []requiredKey{
		{"RAZORPAY_KEY_ID", c.Gateway.KeyID},
		{"RAZORPAY_KEY_SECRET", c.Gateway.KeySecret},
		{"JWT_SECRET", c.JWTSecret},
	}
	if !c.InMemory() {
		required = append(required,
			requiredKey{"DB_HOST", c.DB.Host},
			requiredKey{"DB_USER", c.DB.User},
			requiredKey{"DB_NAME", c.DB.Name},
		)
	}

	var missing []string
	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			missing = append(missing, r.key)
		}
	}
	if len(missing) > 0 {
		return &ConfigurationError{Missing: missing}
	}
	if c.Gateway.Timeout <= 0 {
		return &ConfigurationError{Err: fmt.Errorf("GATEWAY_TIMEOUT must be positive, got %s", c.Gateway.Timeout)}
	}
	return nil
}

// InMemory reports whether the service runs without a database.
func (c *Config) InMemory() bool {
	return c.Env == MemoryEnv
}

// MailEnabled reports whether donor receipts can be sent.
func (c *Config) MailEnabled() bool {
	return c.SMTP.Host != "" && c.SMTP.From != ""
}

// String describes the configuration without secrets.
func (c *Config) String() string {
	return fmt.Sprintf("env=%s port=%s db=%s@%s:%s/%s gateway_key=%s timeout=%s kafka=%v smtp=%t",
		c.Env, c.Port, c.DB.User, c.DB.Host, c.DB.Port, c.DB.Name,
		redact(c.Gateway.KeyID), c.Gateway.Timeout, c.Kafka.Brokers, c.MailEnabled())
}

func redact(s string) string {
	if len(s) <= 8 {
		return "****"
	}
	return s[:8] + "****"
}
