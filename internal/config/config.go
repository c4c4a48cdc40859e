package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joeshaw/envdecode"
	"github.com/joho/godotenv"
)

// ServerConfig configures the backend process.
type ServerConfig struct {
	Host            string        `env:"HOST"`
	Port            int           `env:"PORT,default=4000"`
	StaticToken     string        `env:"STATIC_TOKEN,default=test-token"`
	LogLevel        string        `env:"LOG_LEVEL,default=info"`
	LogFormat       string        `env:"LOG_FORMAT,default=text"`
	CORSOrigins     string        `env:"CORS_ORIGINS,default=*"`
	RateLimitRPS    int           `env:"RATE_LIMIT_RPS,default=0"`
	RateLimitBurst  int           `env:"RATE_LIMIT_BURST,default=100"`
	SeedDemo        bool          `env:"SEED_DEMO,default=false"`
	SeedFile        string        `env:"SEED_FILE"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT,default=10s"`
	ReadTimeout     time.Duration `env:"READ_TIMEOUT,default=15s"`
	WriteTimeout    time.Duration `env:"WRITE_TIMEOUT,default=15s"`
	IdleTimeout     time.Duration `env:"IDLE_TIMEOUT,default=60s"`
}

// ClientConfig configures the dashboard client commands.
type ClientConfig struct {
	APIURL    string        `env:"API_URL,default=http://localhost:4000"`
	APIToken  string        `env:"API_TOKEN,default=test-token"`
	Timeout   time.Duration `env:"API_TIMEOUT,default=30s"`
	LogLevel  string        `env:"LOG_LEVEL,default=info"`
	LogFormat string        `env:"LOG_FORMAT,default=text"`
}

// LoadEnvFile loads KEY=value pairs from path into the process environment.
// Variables already set are left alone. A missing file is not an error when
// optional is true.
func LoadEnvFile(path string, optional bool) error {
	if path == "" {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		if optional && errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("load env file %s: %w", path, err)
	}
	return nil
}

// LoadServer decodes ServerConfig from the environment.
func LoadServer() (*ServerConfig, error) {
	var cfg ServerConfig
	if err := decode(&cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadClient decodes ClientConfig from the environment.
func LoadClient() (*ClientConfig, error) {
	var cfg ClientConfig
	if err := decode(&cfg); err != nil {
		return nil, err
	}
	cfg.APIURL = strings.TrimRight(strings.TrimSpace(cfg.APIURL), "/")
	if cfg.APIURL == "" {
		return nil, fmt.Errorf("API_URL must not be empty")
	}
	return &cfg, nil
}

func decode(target interface{}) error {
	if err := envdecode.Decode(target); err != nil && !errors.Is(err, envdecode.ErrNoTargetFieldsAreSet) {
		return fmt.Errorf("decode environment: %w", err)
	}
	return nil
}

// Validate reports configuration values the server cannot start with.
func (c *ServerConfig) Validate() error {
	if c.Port < 0 || c.Port > 65535 {
		return fmt.Errorf("PORT out of range: %d", c.Port)
	}
	if c.RateLimitRPS < 0 {
		return fmt.Errorf("RATE_LIMIT_RPS must not be negative")
	}
	if c.RateLimitBurst < 0 {
		return fmt.Errorf("RATE_LIMIT_BURST must not be negative")
	}
	if c.ShutdownTimeout <= 0 {
		return fmt.Errorf("SHUTDOWN_TIMEOUT must be positive")
	}
	return nil
}

// Addr returns the listen address.
func (c *ServerConfig) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// AllowedOrigins splits CORS_ORIGINS on commas.
func (c *ServerConfig) AllowedOrigins() []string {
	var origins []string
	for _, o := range strings.Split(c.CORSOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	return origins
}
